package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpaceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSpaceMetrics(reg)

	require.NotNil(t, m)

	timer := m.RequestDuration("increment")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.RequestCompleted("increment", true)
	m.RequestCompleted("increment", false)
	m.NotifySent("log")
	m.RequestsPending("chan-abc123", 3)

	m.InboundCompleted("increment", true)
	m.InboundCompleted("increment", false)

	m.ChannelsActive("server", 2)
	m.ActorsExposed("server", 5)

	m.TransportError("decode")
	m.TransportError("send")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["aspace_request_duration_seconds"])
	assert.True(t, names["aspace_requests_total"])
	assert.True(t, names["aspace_channels_active"])
	assert.True(t, names["aspace_transport_errors_total"])
}

func TestNewRegistryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistryMetrics(reg)

	require.NotNil(t, m)

	m.SpawnCompleted("counter", true)
	m.SpawnCompleted("counter", false)
	m.TypesRegistered(3)
	m.InstancesTracked(2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["aspace_registry_spawns_total"])
	assert.True(t, names["aspace_registry_types"])
	assert.True(t, names["aspace_registry_instances"])
}

func TestNewAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAllMetrics(reg)

	require.NotNil(t, m)
	require.NotNil(t, m.Space)
	require.NotNil(t, m.Registry)

	m.Space.RequestCompleted("test", true)
	m.Registry.SpawnCompleted("test", true)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
