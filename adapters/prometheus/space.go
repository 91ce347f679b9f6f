package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/aspace-go/core/metrics"
	"github.com/codewandler/aspace-go/core/space"
)

// spaceMetrics implements space.SpaceMetrics using Prometheus.
type spaceMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	notifiesTotal   *prometheus.CounterVec
	requestsPending *prometheus.GaugeVec
	inboundTotal    *prometheus.CounterVec
	channelsActive  *prometheus.GaugeVec
	actorsExposed   *prometheus.GaugeVec
	transportErrors *prometheus.CounterVec
}

// NewSpaceMetrics creates a new Prometheus implementation of SpaceMetrics.
func NewSpaceMetrics(reg prometheus.Registerer) space.SpaceMetrics {
	m := &spaceMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aspace_request_duration_seconds",
			Help:    "Remote request latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aspace_requests_total",
			Help: "Total number of outbound remote requests",
		}, []string{"message_type", "success"}),

		notifiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aspace_notifies_total",
			Help: "Total number of fire-and-forget sends",
		}, []string{"message_type"}),

		requestsPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aspace_requests_pending",
			Help: "Number of in-flight requests per channel",
		}, []string{"channel_id"}),

		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aspace_inbound_dispatches_total",
			Help: "Total number of inbound request dispatches",
		}, []string{"message_type", "success"}),

		channelsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aspace_channels_active",
			Help: "Number of attached channels per space",
		}, []string{"space"}),

		actorsExposed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aspace_actors_exposed",
			Help: "Number of actors in the exposure table per space",
		}, []string{"space"}),

		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aspace_transport_errors_total",
			Help: "Total number of transport errors",
		}, []string{"error_type"}),
	}

	reg.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.notifiesTotal,
		m.requestsPending,
		m.inboundTotal,
		m.channelsActive,
		m.actorsExposed,
		m.transportErrors,
	)

	return m
}

func (m *spaceMetrics) RequestDuration(messageType string) metrics.Timer {
	return newTimer(m.requestDuration.WithLabelValues(messageType))
}

func (m *spaceMetrics) RequestCompleted(messageType string, success bool) {
	m.requestsTotal.WithLabelValues(messageType, boolToStr(success)).Inc()
}

func (m *spaceMetrics) NotifySent(messageType string) {
	m.notifiesTotal.WithLabelValues(messageType).Inc()
}

func (m *spaceMetrics) RequestsPending(channelID string, count int) {
	m.requestsPending.WithLabelValues(channelID).Set(float64(count))
}

func (m *spaceMetrics) InboundCompleted(messageType string, success bool) {
	m.inboundTotal.WithLabelValues(messageType, boolToStr(success)).Inc()
}

func (m *spaceMetrics) ChannelsActive(spaceName string, count int) {
	m.channelsActive.WithLabelValues(spaceName).Set(float64(count))
}

func (m *spaceMetrics) ActorsExposed(spaceName string, count int) {
	m.actorsExposed.WithLabelValues(spaceName).Set(float64(count))
}

func (m *spaceMetrics) TransportError(errorType string) {
	m.transportErrors.WithLabelValues(errorType).Inc()
}

var _ space.SpaceMetrics = (*spaceMetrics)(nil)
