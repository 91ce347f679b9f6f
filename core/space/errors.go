package space

import "errors"

var (
	// Transport errors
	ErrTransportClosed = errors.New("transport closed")

	// Channel errors
	ErrChannelClosed = errors.New("channel closed")
	ErrRemote        = errors.New("remote error")

	// Space errors
	ErrSpaceDestroyed = errors.New("actor space destroyed")
	ErrUnknownGUID    = errors.New("unknown guid")
)
