// Package registry provides the actor contract and a process-local registry
// of constructible actor types.
//
// An actor is anything implementing [Actor]: a single Receive method that
// dispatches on a message type string. Types are registered under a name
// with one of two descriptor variants:
//
//   - [ClassDescriptor]: a constructor producing a hand-written actor
//   - [DeclarativeDescriptor]: a protocol definition compiled by
//     core/protocol
//
// The registry is an explicit value created with [New]; there is no package
// global, so independent registries (one per test, one per runtime) never
// observe each other.
//
//	reg := registry.New()
//	err := reg.Register("counter", registry.DeclarativeDescriptor{Protocol: counterProto})
//	inst, err := reg.Spawn("counter", nil)
//	v, err := inst.Receive(ctx, "increment", nil)
//
// Spawn tracks the most recently spawned instance per type name, acting as
// a named singleton slot readable via Get. Earlier instances stay alive for
// callers that kept a direct reference.
package registry
