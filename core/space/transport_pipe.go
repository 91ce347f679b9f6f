package space

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const pipeBuffer = 256

// PipeTransport is an in-memory Transport. Endpoints come in pairs from
// [NewPipe]; frames sent on one endpoint arrive at the other in order.
// Useful for tests and for bridging two spaces inside one process.
type PipeTransport struct {
	log  *slog.Logger
	peer *PipeTransport

	state atomic.Int32

	mu    sync.Mutex
	ev    Events
	bound bool

	inbox chan string
	done  chan struct{}
	once  sync.Once
}

// NewPipe creates a connected pair of in-memory transports. Both endpoints
// start in StateOpen.
func NewPipe() (*PipeTransport, *PipeTransport) {
	a := newPipeEndpoint()
	b := newPipeEndpoint()
	a.peer, b.peer = b, a
	return a, b
}

func newPipeEndpoint() *PipeTransport {
	t := &PipeTransport{
		log:   slog.New(slog.DiscardHandler),
		inbox: make(chan string, pipeBuffer),
		done:  make(chan struct{}),
	}
	t.state.Store(int32(StateOpen))
	return t
}

func (t *PipeTransport) WithLog(log *slog.Logger) *PipeTransport {
	t.log = log.With(slog.String("transport", "pipe"))
	return t
}

func (t *PipeTransport) ReadyState() ReadyState { return ReadyState(t.state.Load()) }

func (t *PipeTransport) Send(text string) error {
	if t.ReadyState() != StateOpen {
		return ErrTransportClosed
	}
	select {
	case t.peer.inbox <- text:
		return nil
	case <-t.peer.done:
		return ErrTransportClosed
	}
}

// Close closes both endpoints of the pair.
func (t *PipeTransport) Close() error {
	for _, ep := range []*PipeTransport{t, t.peer} {
		ep.once.Do(func() {
			ep.state.Store(int32(StateClosed))
			close(ep.done)
			ep.log.Debug("closed")
		})
	}
	return nil
}

func (t *PipeTransport) Bind(ev Events) {
	t.mu.Lock()
	if t.bound {
		t.mu.Unlock()
		t.log.Warn("transport already bound, ignoring")
		return
	}
	t.ev = ev
	t.bound = true
	t.mu.Unlock()

	if ev.OnOpen != nil && t.ReadyState() == StateOpen {
		ev.OnOpen()
	}
	go t.pump()
}

// pump delivers events sequentially; one goroutine per bound endpoint.
func (t *PipeTransport) pump() {
	for {
		select {
		case msg := <-t.inbox:
			if t.ev.OnMessage != nil {
				t.ev.OnMessage(msg)
			}
		case <-t.done:
			// drain frames that arrived before the close
			for {
				select {
				case msg := <-t.inbox:
					if t.ev.OnMessage != nil {
						t.ev.OnMessage(msg)
					}
				default:
					if t.ev.OnClose != nil {
						t.ev.OnClose()
					}
					return
				}
			}
		}
	}
}

var _ Transport = (*PipeTransport)(nil)
