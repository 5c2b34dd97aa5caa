package plan

// =============================================================================
// Resource Ceilings
// =============================================================================

// Default cluster-wide resource ceilings.
const (
	DefaultMaxCPUCores = 64.0
	DefaultMaxMemoryMB = 128_000 // 128 GB
	DefaultMaxDiskGB   = 10_000  // 10 TB
)

// Limits holds the cluster-wide resource ceilings a topology must fit
// within. A zero or negative dimension disables that check.
type Limits struct {
	MaxCPUCores float64
	MaxMemoryMB int64
	MaxDiskGB   int64
}

// DefaultLimits returns the standard cluster ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxCPUCores: DefaultMaxCPUCores,
		MaxMemoryMB: DefaultMaxMemoryMB,
		MaxDiskGB:   DefaultMaxDiskGB,
	}
}
