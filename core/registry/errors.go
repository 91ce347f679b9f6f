package registry

import "errors"

var (
	// ErrUnknownActorType is returned by Spawn for a type name that was
	// never registered.
	ErrUnknownActorType = errors.New("unknown actor type")

	// ErrInstanceNotFound is returned by Get when no instance of the type
	// has been spawned (or tracking was dropped via Destroy).
	ErrInstanceNotFound = errors.New("no spawned instance")

	// ErrBadDescriptor is returned for descriptors that cannot construct an
	// instance: nil descriptors at Register, nil class constructors at
	// Spawn.
	ErrBadDescriptor = errors.New("malformed actor descriptor")
)
