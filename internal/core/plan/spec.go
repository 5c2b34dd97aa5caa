package plan

// =============================================================================
// Deployment Specification Types
// =============================================================================

// NixDeploymentSpec is the fully-resolved output of translating a
// validated topology. It is created once per translation and is
// immutable thereafter; downstream emitters serialize it to JSON or a
// declarative infrastructure format.
type NixDeploymentSpec struct {
	Services       []ServiceSpec      `json:"services"`
	Databases      []DatabaseSpec     `json:"databases"`
	Agents         []AgentSpec        `json:"agents"`
	MessageBuses   []MessageBusSpec   `json:"message_buses"`
	LoadBalancers  []LoadBalancerSpec `json:"load_balancers"`
	StorageVolumes []StorageSpec      `json:"storage_volumes"`
	Dependencies   DependencyMap      `json:"dependencies"`
	Network        NetworkTopology    `json:"network_topology"`
}

// DependencyMap maps a node name to the names it must start after.
type DependencyMap map[string][]string

// ServiceSpec is the lowered form of a Service node.
type ServiceSpec struct {
	Name         string            `json:"name"`
	Command      string            `json:"command"`
	Args         []string          `json:"args"`
	Environment  map[string]string `json:"environment"`
	Port         int               `json:"port,omitempty"`
	HealthCheck  *HealthCheckSpec  `json:"health_check,omitempty"`
	Resources    ResourceSpec      `json:"resources"`
	Dependencies []string          `json:"dependencies"`
}

// DatabaseSpec is the lowered form of a Database node.
// Port is the engine's well-known port; 0 for SQLite.
type DatabaseSpec struct {
	Name           string       `json:"name"`
	Engine         string       `json:"engine"`
	Version        string       `json:"version"`
	Port           int          `json:"port"`
	Persistent     bool         `json:"persistent"`
	BackupSchedule string       `json:"backup_schedule,omitempty"`
	Resources      ResourceSpec `json:"resources"`
}

// AgentSpec is the lowered form of an Agent node.
type AgentSpec struct {
	Name          string       `json:"name"`
	Capabilities  []string     `json:"capabilities"`
	Subscriptions []string     `json:"subscriptions"`
	NATSURL       string       `json:"nats_url"`
	Resources     ResourceSpec `json:"resources"`
}

// MessageBusSpec is the lowered form of a MessageBus node.
type MessageBusSpec struct {
	Name        string `json:"name"`
	BusType     string `json:"bus_type"`
	ClusterSize int    `json:"cluster_size"`
	Persistence bool   `json:"persistence"`
	Ports       []int  `json:"ports"`
}

// LoadBalancerSpec is the lowered form of a LoadBalancer node.
type LoadBalancerSpec struct {
	Name                string        `json:"name"`
	Strategy            string        `json:"strategy"`
	Backends            []BackendSpec `json:"backends"`
	HealthCheckInterval int           `json:"health_check_interval"`
}

// BackendSpec is one resolved load balancer backend.
type BackendSpec struct {
	Service string `json:"service"`
	Port    int    `json:"port"`
	Weight  int    `json:"weight,omitempty"`
}

// StorageSpec is the lowered form of a Storage node.
type StorageSpec struct {
	Name        string      `json:"name"`
	StorageType string      `json:"storage_type"`
	Size        string      `json:"size"`
	AccessMode  string      `json:"access_mode"`
	MountPaths  []MountSpec `json:"mount_paths"`
}

// MountSpec records one consumer of a storage volume.
type MountSpec struct {
	Service  string `json:"service"`
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
}

// HealthCheckSpec is the lowered form of a service health check.
type HealthCheckSpec struct {
	Endpoint        string `json:"endpoint"`
	IntervalSeconds int    `json:"interval_seconds"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	Retries         int    `json:"retries"`
}

// ResourceSpec is the lowered form of resource requirements.
// Zero values serialize as absent.
type ResourceSpec struct {
	CPUCores float64 `json:"cpu_cores,omitempty"`
	MemoryMB int64   `json:"memory_mb,omitempty"`
	DiskGB   int64   `json:"disk_gb,omitempty"`
}

// NetworkTopology captures runtime connectivity of the topology.
type NetworkTopology struct {
	Connections  []NetworkConnection `json:"connections"`
	ExposedPorts map[string][]int    `json:"exposed_ports"`
}

// NetworkConnection is one runtime connection between two nodes.
type NetworkConnection struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Protocol  string `json:"protocol"`
	Port      int    `json:"port"`
	Encrypted bool   `json:"encrypted"`
}
