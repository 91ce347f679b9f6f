// Package websocket adapts a gorilla/websocket connection to the
// space.Transport contract, on either side of the upgrade.
package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/codewandler/aspace-go/core/space"
)

const (
	inboxBuffer  = 256
	writeTimeout = 10 * time.Second
	closeTimeout = 3 * time.Second
)

// Options tweak a transport. The zero value works.
type Options struct {
	Log *slog.Logger
}

// Transport wraps one *websocket.Conn. Use New for a connection obtained
// from an Upgrader (server side) or from gorilla's Dialer, or Dial to
// connect to a ws:// URL directly.
type Transport struct {
	conn *gws.Conn
	log  *slog.Logger

	writeMu sync.Mutex
	state   atomic.Int32
	once    sync.Once

	inbox chan string
	done  chan struct{}

	mu    sync.Mutex
	ev    space.Events
	bound bool

	readErr atomic.Pointer[error]
}

// New wraps an already-established connection. The transport owns the
// connection's read loop from this point on.
func New(conn *gws.Conn, opts ...Options) *Transport {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	log := o.Log
	if log == nil {
		log = slog.Default()
	}

	t := &Transport{
		conn:  conn,
		log:   log.With(slog.String("transport", "websocket")),
		inbox: make(chan string, inboxBuffer),
		done:  make(chan struct{}),
	}
	t.state.Store(int32(space.StateOpen))
	go t.readLoop()
	return t
}

// Dial connects to the given ws:// or wss:// URL and wraps the result.
func Dial(ctx context.Context, url string, opts ...Options) (*Transport, error) {
	conn, _, err := gws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket: dial %s: %w", url, err)
	}
	return New(conn, opts...), nil
}

func (t *Transport) readLoop() {
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			if !gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
				t.readErr.Store(&err)
			}
			t.shutdown(true)
			return
		}
		if kind != gws.TextMessage {
			continue
		}
		select {
		case t.inbox <- string(data):
		case <-t.done:
			return
		}
	}
}

func (t *Transport) ReadyState() space.ReadyState {
	return space.ReadyState(t.state.Load())
}

func (t *Transport) Send(text string) error {
	if t.ReadyState() != space.StateOpen {
		return space.ErrTransportClosed
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteMessage(gws.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("websocket: write: %w", err)
	}
	return nil
}

// Close starts the closing handshake and tears the endpoint down. The peer
// observes the close through its own read loop.
func (t *Transport) Close() error {
	if t.state.CompareAndSwap(int32(space.StateOpen), int32(space.StateClosing)) {
		t.writeMu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
		_ = t.conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
		t.writeMu.Unlock()
	}
	t.shutdown(false)
	return nil
}

func (t *Transport) shutdown(fromRead bool) {
	t.once.Do(func() {
		t.state.Store(int32(space.StateClosed))
		close(t.done)
		_ = t.conn.Close()
		if fromRead {
			t.log.Debug("connection closed by peer")
		} else {
			t.log.Debug("closed")
		}
	})
}

func (t *Transport) Bind(ev space.Events) {
	t.mu.Lock()
	if t.bound {
		t.mu.Unlock()
		t.log.Warn("transport already bound, ignoring")
		return
	}
	t.ev = ev
	t.bound = true
	t.mu.Unlock()

	if ev.OnOpen != nil && t.ReadyState() == space.StateOpen {
		ev.OnOpen()
	}
	go t.pump()
}

func (t *Transport) pump() {
	for {
		select {
		case msg := <-t.inbox:
			if t.ev.OnMessage != nil {
				t.ev.OnMessage(msg)
			}
		case <-t.done:
			for {
				select {
				case msg := <-t.inbox:
					if t.ev.OnMessage != nil {
						t.ev.OnMessage(msg)
					}
				default:
					if errp := t.readErr.Load(); errp != nil && t.ev.OnError != nil {
						t.ev.OnError(*errp)
					}
					if t.ev.OnClose != nil {
						t.ev.OnClose()
					}
					return
				}
			}
		}
	}
}
