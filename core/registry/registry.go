package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codewandler/aspace-go/core/ds"
	"github.com/codewandler/aspace-go/core/protocol"
)

type (
	// Actor is the single contract every actor satisfies, hand-written or
	// declarative: dispatch one message and return its result. Receive must
	// reject unrecognized message types with an error.
	Actor interface {
		Receive(ctx context.Context, messageType string, data any) (any, error)
	}

	// Descriptor is a registered actor type: exactly one of the two
	// variants below.
	Descriptor interface {
		spawn(name string, config map[string]any) (Actor, error)
	}

	// ClassDescriptor registers a hand-written actor via its constructor.
	ClassDescriptor struct {
		New func(config map[string]any) (Actor, error)
	}

	// DeclarativeDescriptor registers a protocol definition. The protocol
	// is compiled (and therefore schema-validated) at registration time.
	DeclarativeDescriptor struct {
		Protocol *protocol.Protocol
	}

	// Options configures a registry. The zero value is usable.
	Options struct {
		Log     *slog.Logger
		Metrics RegistryMetrics
	}

	// Registry maps type names to descriptors and tracks the most recently
	// spawned instance per type. Safe for concurrent use.
	Registry struct {
		log     *slog.Logger
		metrics RegistryMetrics

		mu        sync.RWMutex
		types     map[string]Descriptor
		typeOrder *ds.StringSet
		instances map[string]Actor
		instOrder *ds.StringSet
	}
)

func (d ClassDescriptor) spawn(name string, config map[string]any) (Actor, error) {
	if d.New == nil {
		return nil, fmt.Errorf("%w: class descriptor %q has no constructor", ErrBadDescriptor, name)
	}
	return d.New(config)
}

type compiledDescriptor struct {
	factory *protocol.Factory
}

func (d compiledDescriptor) spawn(_ string, config map[string]any) (Actor, error) {
	return d.factory.New(config), nil
}

func (d DeclarativeDescriptor) spawn(name string, config map[string]any) (Actor, error) {
	// only hit when a DeclarativeDescriptor bypassed Register
	f, err := protocol.Compile(d.Protocol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDescriptor, err)
	}
	return f.New(config), nil
}

// New creates an empty registry.
func New(opts ...Options) *Registry {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NopRegistryMetrics()
	}
	return &Registry{
		log:       o.Log,
		metrics:   o.Metrics,
		types:     make(map[string]Descriptor),
		typeOrder: ds.NewStringSet(),
		instances: make(map[string]Actor),
		instOrder: ds.NewStringSet(),
	}
}

// Register adds (or replaces) a type. Declarative descriptors are compiled
// here so schema violations surface at registration, not at spawn.
func (r *Registry) Register(typeName string, d Descriptor) error {
	if typeName == "" {
		return fmt.Errorf("type name is required")
	}
	if d == nil {
		return fmt.Errorf("%w: nil descriptor for %q", ErrBadDescriptor, typeName)
	}
	if decl, ok := d.(DeclarativeDescriptor); ok {
		f, err := protocol.Compile(decl.Protocol)
		if err != nil {
			return fmt.Errorf("register %q: %w", typeName, err)
		}
		d = compiledDescriptor{factory: f}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typeName] = d
	r.typeOrder.Add(typeName)
	r.metrics.TypesRegistered(len(r.types))
	r.log.Debug("registered actor type", slog.String("type", typeName))
	return nil
}

// Spawn constructs a new instance of a registered type and tracks it as the
// current instance for that name. Multiple spawns of the same type replace
// the tracked slot; earlier instances stay valid for direct callers.
func (r *Registry) Spawn(typeName string, config map[string]any) (Actor, error) {
	r.mu.RLock()
	d, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		r.metrics.SpawnCompleted(typeName, false)
		return nil, fmt.Errorf("%w: %q", ErrUnknownActorType, typeName)
	}

	inst, err := d.spawn(typeName, config)
	if err != nil {
		r.metrics.SpawnCompleted(typeName, false)
		return nil, fmt.Errorf("spawn %q: %w", typeName, err)
	}

	r.mu.Lock()
	r.instances[typeName] = inst
	r.instOrder.Add(typeName)
	r.metrics.InstancesTracked(len(r.instances))
	r.mu.Unlock()

	r.metrics.SpawnCompleted(typeName, true)
	r.log.Debug("spawned actor", slog.String("type", typeName))
	return inst, nil
}

// Get returns the tracked instance for a type name.
func (r *Registry) Get(typeName string) (Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[typeName]
	if !ok {
		return nil, fmt.Errorf("%w for type %q", ErrInstanceNotFound, typeName)
	}
	return inst, nil
}

// Destroy drops instance tracking for a type. In-flight Receive calls on
// the instance are not cancelled.
func (r *Registry) Destroy(typeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[typeName]; !ok {
		return
	}
	delete(r.instances, typeName)
	r.instOrder.Remove(typeName)
	r.metrics.InstancesTracked(len(r.instances))
	r.log.Debug("destroyed actor tracking", slog.String("type", typeName))
}

// Types returns registered type names in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typeOrder.Values()
}

// Instances returns type names with a tracked instance, in spawn order.
func (r *Registry) Instances() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instOrder.Values()
}
