package space

// ReadyState mirrors the WebSocket readyState values.
type ReadyState int32

const (
	StateConnecting ReadyState = 0
	StateOpen       ReadyState = 1
	StateClosing    ReadyState = 2
	StateClosed     ReadyState = 3
)

func (s ReadyState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Events are the hooks a transport fires. Implementations deliver events
// sequentially, in arrival order, from a single goroutine. Any hook may be
// nil.
type Events struct {
	OnOpen    func()
	OnMessage func(text string)
	OnError   func(err error)
	OnClose   func()
}

// Transport is one endpoint of a bidirectional text-message connection, the
// contract a Channel requires. Implementations: the in-memory [NewPipe]
// pair, adapters/websocket, adapters/nats.
type Transport interface {
	// Send transmits one text frame. Fails with ErrTransportClosed once the
	// endpoint is no longer open.
	Send(text string) error

	// Close tears the connection down. Closing one endpoint of a pair
	// drives both endpoints to StateClosed.
	Close() error

	// ReadyState reports the connection state.
	ReadyState() ReadyState

	// Bind installs the event hooks. Must be called at most once; messages
	// arriving before Bind are buffered.
	Bind(ev Events)
}
