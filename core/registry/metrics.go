package registry

// RegistryMetrics defines the metrics interface for the registry.
// All methods are thread-safe.
type RegistryMetrics interface {
	// SpawnCompleted records one Spawn call and whether it succeeded.
	SpawnCompleted(typeName string, success bool)
	// TypesRegistered reports the current number of registered types.
	TypesRegistered(count int)
	// InstancesTracked reports the current number of tracked instances.
	InstancesTracked(count int)
}

// nopRegistryMetrics is a no-op implementation of RegistryMetrics.
type nopRegistryMetrics struct{}

func (nopRegistryMetrics) SpawnCompleted(string, bool) {}
func (nopRegistryMetrics) TypesRegistered(int)         {}
func (nopRegistryMetrics) InstancesTracked(int)        {}

// NopRegistryMetrics returns a no-op RegistryMetrics implementation.
func NopRegistryMetrics() RegistryMetrics { return nopRegistryMetrics{} }
