package protocol

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type (
	// Factory builds instances of a compiled protocol. Safe for concurrent
	// use; every instance starts from its own deep copy of the defaults.
	Factory struct {
		proto    *Protocol
		defaults map[string]any
		known    []string
	}

	// Instance is one spawned declarative actor. State is mutated only
	// through Receive; a per-instance mutex makes each call atomic.
	Instance struct {
		factory *Factory
		config  map[string]any

		mu    sync.Mutex
		state map[string]any
	}
)

// Compile validates a protocol and returns a factory for it. Every action
// and return expression is checked against the state schema here, so a
// protocol that compiles cannot reference fields that do not exist or
// mismatch their types at runtime.
func Compile(p *Protocol) (*Factory, error) {
	if p == nil {
		return nil, fmt.Errorf("protocol is nil")
	}

	defaults := make(map[string]any, len(p.State.Fields))
	for name, f := range p.State.Fields {
		if !validFieldType(f.Type) {
			return nil, fmt.Errorf("field %q: invalid type %q", name, f.Type)
		}
		norm, err := normalize(f.Default)
		if err != nil {
			return nil, fmt.Errorf("field %q default: %w", name, err)
		}
		if err := typeCheck(f.Type, norm); err != nil {
			return nil, fmt.Errorf("field %q default: %w", name, err)
		}
		defaults[name] = norm
	}

	known := make([]string, 0, len(p.Receives))
	for mt, h := range p.Receives {
		known = append(known, mt)
		if h.Action != nil {
			if err := h.Action.validate(p.State); err != nil {
				return nil, fmt.Errorf("handler %q action: %w", mt, err)
			}
		}
		if h.Returns != nil {
			if err := h.Returns.validate(p.State); err != nil {
				return nil, fmt.Errorf("handler %q returns: %w", mt, err)
			}
		}
	}
	sort.Strings(known)

	return &Factory{proto: p, defaults: defaults, known: known}, nil
}

// Protocol returns the compiled definition.
func (f *Factory) Protocol() *Protocol { return f.proto }

// New spawns a fresh instance. State starts from the schema defaults;
// config is kept for introspection but not merged into state.
func (f *Factory) New(config map[string]any) *Instance {
	state := make(map[string]any, len(f.defaults))
	for k, v := range f.defaults {
		state[k] = copyValue(v)
	}
	return &Instance{factory: f, config: config, state: state}
}

// Receive dispatches one message. The handler's action runs first, then its
// return expression; both see {state, data}. Execution is synchronous and
// the instance mutex guarantees two calls never interleave.
func (i *Instance) Receive(_ context.Context, messageType string, data any) (any, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	h, ok := i.factory.proto.Receives[messageType]
	if !ok {
		return nil, &UnknownMessageTypeError{MessageType: messageType, Known: i.factory.known}
	}

	if h.Action != nil {
		if err := h.Action.apply(i.state, data); err != nil {
			return nil, &ExecutionError{MessageType: messageType, Cause: err}
		}
	}

	if h.Returns == nil {
		return nil, nil
	}
	v, err := h.Returns.eval(i.state, data)
	if err != nil {
		return nil, &ExecutionError{MessageType: messageType, Cause: err}
	}
	return v, nil
}

// Config returns the spawn configuration as given.
func (i *Instance) Config() map[string]any { return i.config }

// Snapshot returns a deep copy of the current state.
func (i *Instance) Snapshot() map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make(map[string]any, len(i.state))
	for k, v := range i.state {
		out[k] = copyValue(v)
	}
	return out
}
