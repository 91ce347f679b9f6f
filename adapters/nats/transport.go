// Package nats implements the space.Transport contract on top of NATS: a
// transport pair is two endpoints publishing to each other's subject. The
// pair is addressed by a shared name; both processes dial the same name
// from opposite sides.
package nats

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	natsgo "github.com/nats-io/nats.go"
	"golang.org/x/crypto/blake2b"

	"github.com/codewandler/aspace-go/core/space"
)

const (
	defaultSubjectPrefix = "aspace"
	inboxBuffer          = 256

	headerCtl = "x-aspace-ctl"
	ctlClose  = "close"
)

// Side names one endpoint of a pair. The two processes sharing a pair must
// dial from opposite sides.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

func (s Side) peer() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// TransportConfig configures one endpoint of a NATS transport pair.
type TransportConfig struct {
	Connect       Connector    // Connect creates the underlying NATS connection. If nil, ConnectDefault() is used.
	Log           *slog.Logger // Log for diagnostics (optional)
	SubjectPrefix string       // SubjectPrefix for pair subjects, e.g. "aspace" -> aspace.pair.<token>.<side>
	Name          string       // Name of the pair; both endpoints must agree
	Side          Side         // Side of this endpoint, SideA or SideB
}

// Transport is one endpoint of a NATS-backed transport pair.
type Transport struct {
	nc       *natsgo.Conn
	closeNc  closeFunc
	log      *slog.Logger
	local    string
	peerSubj string

	sub   *natsgo.Subscription
	state atomic.Int32

	mu    sync.Mutex
	ev    space.Events
	bound bool

	inbox chan string
	done  chan struct{}
	once  sync.Once
}

// pairToken derives a subject-safe token from an arbitrary pair name.
// Caller-chosen names may contain characters NATS subjects cannot.
func pairToken(name string) string {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))
}

// Dial connects one endpoint of a pair. The endpoint is OPEN once its
// subject subscription is flushed.
func Dial(cfg TransportConfig) (*Transport, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("nats: TransportConfig.Name is required")
	}
	if cfg.Side != SideA && cfg.Side != SideB {
		return nil, fmt.Errorf("nats: TransportConfig.Side must be SideA or SideB")
	}

	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}

	nc, closeNc, err := connFn()
	if err != nil {
		return nil, err
	}

	token := pairToken(cfg.Name)
	t := &Transport{
		nc:       nc,
		closeNc:  closeNc,
		log:      log.With(slog.String("transport", "nats"), slog.String("pair", cfg.Name), slog.String("side", string(cfg.Side))),
		local:    fmt.Sprintf("%s.pair.%s.%s", prefix, token, cfg.Side),
		peerSubj: fmt.Sprintf("%s.pair.%s.%s", prefix, token, cfg.Side.peer()),
		inbox:    make(chan string, inboxBuffer),
		done:     make(chan struct{}),
	}
	t.state.Store(int32(space.StateConnecting))

	sub, err := nc.Subscribe(t.local, t.onMsg)
	if err != nil {
		closeNc()
		return nil, fmt.Errorf("nats: subscribe %s: %w", t.local, err)
	}
	t.sub = sub

	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		closeNc()
		return nil, fmt.Errorf("nats: flush: %w", err)
	}

	t.state.Store(int32(space.StateOpen))
	t.log.Debug("dialed", slog.String("subject", t.local))
	return t, nil
}

func (t *Transport) onMsg(msg *natsgo.Msg) {
	if msg.Header.Get(headerCtl) == ctlClose {
		// peer closed its endpoint; tear down without echoing
		t.shutdown(false)
		return
	}
	select {
	case t.inbox <- string(msg.Data):
	case <-t.done:
	}
}

func (t *Transport) ReadyState() space.ReadyState {
	return space.ReadyState(t.state.Load())
}

func (t *Transport) Send(text string) error {
	if t.ReadyState() != space.StateOpen {
		return space.ErrTransportClosed
	}
	if err := t.nc.Publish(t.peerSubj, []byte(text)); err != nil {
		return fmt.Errorf("nats: publish: %w", err)
	}
	return nil
}

// Close tears down this endpoint and tells the peer to do the same, so the
// pair closes symmetrically.
func (t *Transport) Close() error {
	t.shutdown(true)
	return nil
}

func (t *Transport) shutdown(notifyPeer bool) {
	t.once.Do(func() {
		t.state.Store(int32(space.StateClosed))
		if notifyPeer {
			msg := &natsgo.Msg{Subject: t.peerSubj, Header: natsgo.Header{headerCtl: []string{ctlClose}}}
			if err := t.nc.PublishMsg(msg); err != nil {
				t.log.Warn("failed to notify peer of close", slog.Any("error", err))
			}
			_ = t.nc.Flush()
		}
		_ = t.sub.Unsubscribe()
		close(t.done)
		t.closeNc()
		t.log.Debug("closed")
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
					if t.ev.OnClose != nil {
						t.ev.OnClose()
					}
					return
				}
			}
		}
	}
}

var _ space.Transport = (*Transport)(nil)
