package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMessageType matches (via errors.Is) any dispatch miss inside
	// a compiled instance.
	ErrUnknownMessageType = errors.New("unknown message type")
)

// UnknownMessageTypeError reports a receive of a message type the protocol
// does not declare, listing every type it does.
type UnknownMessageTypeError struct {
	MessageType string
	Known       []string
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q (known: %s)", e.MessageType, strings.Join(e.Known, ", "))
}

func (e *UnknownMessageTypeError) Is(target error) bool { return target == ErrUnknownMessageType }

// ExecutionError wraps a failure inside a handler's action or return
// evaluation. State reflects mutations applied before the failure point.
type ExecutionError struct {
	MessageType string
	Cause       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("handler for %q failed: %v", e.MessageType, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }
