package space

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/aspace-go/core/registry"
)

type (
	// Options configures a Space. The zero value is usable.
	Options struct {
		Log     *slog.Logger
		Metrics SpaceMetrics
		// Context is passed to actor Receive calls dispatched from
		// channels. Defaults to context.Background().
		Context context.Context
	}

	// Space owns an exposure table (GUID -> actor) and the set of channels
	// serving it. The name is a local label, not a network identity.
	Space struct {
		name    string
		log     *slog.Logger
		metrics SpaceMetrics
		ctx     context.Context

		mu        sync.RWMutex
		actors    map[string]registry.Actor
		channels  map[*Channel]struct{}
		destroyed bool
	}
)

// New creates an empty space. An empty name gets a generated label.
func New(name string, opts ...Options) *Space {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if name == "" {
		name = fmt.Sprintf("space-%s", gonanoid.Must(6))
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NopSpaceMetrics()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	return &Space{
		name:     name,
		log:      o.Log.With(slog.String("space", name)),
		metrics:  o.Metrics,
		ctx:      o.Context,
		actors:   make(map[string]registry.Actor),
		channels: make(map[*Channel]struct{}),
	}
}

func (s *Space) Name() string { return s.name }

// Register exposes an actor under a GUID, making it reachable from every
// channel attached to this space. Re-registering a GUID replaces the entry
// (last writer wins).
func (s *Space) Register(guid string, act registry.Actor) error {
	if guid == "" {
		return fmt.Errorf("guid is required")
	}
	if act == nil {
		return fmt.Errorf("actor is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSpaceDestroyed
	}
	s.actors[guid] = act
	s.metrics.ActorsExposed(s.name, len(s.actors))
	s.log.Debug("registered actor", slog.String("guid", guid))
	return nil
}

// Unregister removes a GUID from the exposure table.
func (s *Space) Unregister(guid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors[guid]; !ok {
		return
	}
	delete(s.actors, guid)
	s.metrics.ActorsExposed(s.name, len(s.actors))
	s.log.Debug("unregistered actor", slog.String("guid", guid))
}

// Lookup resolves a GUID to its exposed actor.
func (s *Space) Lookup(guid string) (registry.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	act, ok := s.actors[guid]
	return act, ok
}

// AddChannel attaches a transport endpoint and returns the channel bridging
// it to this space's exposure table. One space may hold many channels, all
// serving the same actors.
func (s *Space) AddChannel(tr Transport) (*Channel, error) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil, ErrSpaceDestroyed
	}
	c := newChannel(s, tr)
	s.channels[c] = struct{}{}
	n := len(s.channels)
	s.mu.Unlock()

	s.metrics.ChannelsActive(s.name, n)
	s.log.Debug("channel attached", slog.String("channel", c.ID()))

	c.bind()
	return c, nil
}

// removeChannel drops a closed channel from the set.
func (s *Space) removeChannel(c *Channel) {
	s.mu.Lock()
	if _, ok := s.channels[c]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.channels, c)
	n := len(s.channels)
	s.mu.Unlock()

	s.metrics.ChannelsActive(s.name, n)
	s.log.Debug("channel detached", slog.String("channel", c.ID()))
}

// Channels returns the currently attached channels.
func (s *Space) Channels() []*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Channel, 0, len(s.channels))
	for c := range s.channels {
		out = append(out, c)
	}
	return out
}

// Destroy closes every channel, clears the exposure table and makes the
// space inert: further Register and AddChannel calls fail with
// ErrSpaceDestroyed.
func (s *Space) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrSpaceDestroyed
	}
	s.destroyed = true
	chans := make([]*Channel, 0, len(s.channels))
	for c := range s.channels {
		chans = append(chans, c)
	}
	s.actors = make(map[string]registry.Actor)
	s.mu.Unlock()

	for _, c := range chans {
		_ = c.Close()
	}

	s.metrics.ActorsExposed(s.name, 0)
	s.log.Debug("destroyed")
	return nil
}
