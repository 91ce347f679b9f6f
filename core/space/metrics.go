package space

import "github.com/codewandler/aspace-go/core/metrics"

// SpaceMetrics defines the metrics interface for spaces and channels.
// All methods are thread-safe.
type SpaceMetrics interface {
	// Outbound requests
	RequestDuration(messageType string) metrics.Timer
	RequestCompleted(messageType string, success bool)
	NotifySent(messageType string)
	RequestsPending(channelID string, count int)

	// Inbound dispatch
	InboundCompleted(messageType string, success bool)

	// Space state
	ChannelsActive(space string, count int)
	ActorsExposed(space string, count int)

	// Transport errors: decode, send, transport
	TransportError(errorType string)
}

// nopSpaceMetrics is a no-op implementation of SpaceMetrics.
type nopSpaceMetrics struct{}

func (nopSpaceMetrics) RequestDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopSpaceMetrics) RequestCompleted(string, bool)        {}
func (nopSpaceMetrics) NotifySent(string)                    {}
func (nopSpaceMetrics) RequestsPending(string, int)          {}

func (nopSpaceMetrics) InboundCompleted(string, bool) {}

func (nopSpaceMetrics) ChannelsActive(string, int) {}
func (nopSpaceMetrics) ActorsExposed(string, int)  {}

func (nopSpaceMetrics) TransportError(string) {}

// NopSpaceMetrics returns a no-op SpaceMetrics implementation.
func NopSpaceMetrics() SpaceMetrics { return nopSpaceMetrics{} }
