package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/aspace-go/core/registry"
)

// registryMetrics implements registry.RegistryMetrics using Prometheus.
type registryMetrics struct {
	spawnsTotal      *prometheus.CounterVec
	typesRegistered  prometheus.Gauge
	instancesTracked prometheus.Gauge
}

// NewRegistryMetrics creates a new Prometheus implementation of
// RegistryMetrics.
func NewRegistryMetrics(reg prometheus.Registerer) registry.RegistryMetrics {
	m := &registryMetrics{
		spawnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aspace_registry_spawns_total",
			Help: "Total number of Spawn calls",
		}, []string{"type", "success"}),

		typesRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aspace_registry_types",
			Help: "Number of registered actor types",
		}),

		instancesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aspace_registry_instances",
			Help: "Number of tracked actor instances",
		}),
	}

	reg.MustRegister(m.spawnsTotal, m.typesRegistered, m.instancesTracked)
	return m
}

func (m *registryMetrics) SpawnCompleted(typeName string, success bool) {
	m.spawnsTotal.WithLabelValues(typeName, boolToStr(success)).Inc()
}

func (m *registryMetrics) TypesRegistered(count int) {
	m.typesRegistered.Set(float64(count))
}

func (m *registryMetrics) InstancesTracked(count int) {
	m.instancesTracked.Set(float64(count))
}

var _ registry.RegistryMetrics = (*registryMetrics)(nil)
