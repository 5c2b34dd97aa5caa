package topology

// =============================================================================
// Node Kinds
// =============================================================================

// NodeKind identifies the variant of a deployment node.
type NodeKind string

const (
	NodeKindService      NodeKind = "service"
	NodeKindAgent        NodeKind = "agent"
	NodeKindDatabase     NodeKind = "database"
	NodeKindMessageBus   NodeKind = "message_bus"
	NodeKindLoadBalancer NodeKind = "load_balancer"
	NodeKindStorage      NodeKind = "storage"
)

// =============================================================================
// Common Value Types
// =============================================================================

// ResourceRequirements describes the compute footprint of a node.
// Zero values mean "unspecified" and contribute nothing to budget checks.
type ResourceRequirements struct {
	CPUCores float64
	MemoryMB int64
	DiskGB   int64
}

// IsZero reports whether no resource dimension is specified.
func (r ResourceRequirements) IsZero() bool {
	return r.CPUCores == 0 && r.MemoryMB == 0 && r.DiskGB == 0
}

// HealthCheck describes an HTTP-style liveness probe for a service.
type HealthCheck struct {
	Endpoint        string
	IntervalSeconds int
	TimeoutSeconds  int
	Retries         int
}

// RateLimit caps how fast an agent consumes work.
type RateLimit struct {
	RequestsPerSecond int
	BurstSize         int
}

// TopicConfig describes a message bus topic.
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionHours    int
}

// =============================================================================
// Enumerations
// =============================================================================

// DatabaseEngine identifies a supported database engine.
type DatabaseEngine string

const (
	EnginePostgres DatabaseEngine = "postgres"
	EngineMySQL    DatabaseEngine = "mysql"
	EngineMongoDB  DatabaseEngine = "mongodb"
	EngineRedis    DatabaseEngine = "redis"
	EngineSQLite   DatabaseEngine = "sqlite"
)

// IsValid checks if the engine is one of the supported engines.
func (e DatabaseEngine) IsValid() bool {
	switch e {
	case EnginePostgres, EngineMySQL, EngineMongoDB, EngineRedis, EngineSQLite:
		return true
	default:
		return false
	}
}

// BusKind identifies a supported message bus implementation.
type BusKind string

const (
	BusNATS     BusKind = "nats"
	BusKafka    BusKind = "kafka"
	BusRabbitMQ BusKind = "rabbitmq"
	BusRedis    BusKind = "redis"
)

// IsValid checks if the bus kind is one of the supported kinds.
func (b BusKind) IsValid() bool {
	switch b {
	case BusNATS, BusKafka, BusRabbitMQ, BusRedis:
		return true
	default:
		return false
	}
}

// BalancingStrategy identifies how a load balancer picks a backend.
type BalancingStrategy string

const (
	StrategyRoundRobin       BalancingStrategy = "round_robin"
	StrategyLeastConnections BalancingStrategy = "least_connections"
	StrategyIPHash           BalancingStrategy = "ip_hash"
	StrategyRandom           BalancingStrategy = "random"
	StrategyWeighted         BalancingStrategy = "weighted"
)

// StorageKind identifies the backing medium of a storage volume.
type StorageKind string

const (
	StorageLocalDisk    StorageKind = "local_disk"
	StorageNetworkFS    StorageKind = "network_fs"
	StorageObjectStore  StorageKind = "object_store"
	StorageBlockStorage StorageKind = "block_storage"
)

// AccessMode identifies how a storage volume may be attached.
type AccessMode string

const (
	AccessReadWriteOnce AccessMode = "read_write_once"
	AccessReadOnlyMany  AccessMode = "read_only_many"
	AccessReadWriteMany AccessMode = "read_write_many"
)

// =============================================================================
// Well-Known Ports
// =============================================================================

// EnginePort returns the conventional network port for a database
// engine. SQLite has no network port and returns 0.
func EnginePort(engine DatabaseEngine) int {
	switch engine {
	case EnginePostgres:
		return 5432
	case EngineMySQL:
		return 3306
	case EngineMongoDB:
		return 27017
	case EngineRedis:
		return 6379
	default:
		return 0
	}
}

// BusPorts returns the conventional port set for a message bus kind.
func BusPorts(kind BusKind) []int {
	switch kind {
	case BusNATS:
		return []int{4222, 6222, 8222}
	case BusKafka:
		return []int{9092}
	case BusRabbitMQ:
		return []int{5672, 15672}
	case BusRedis:
		return []int{6379}
	default:
		return nil
	}
}

// NATSClientPort is the client port used when formatting NATS URLs.
const NATSClientPort = 4222

// =============================================================================
// DeploymentNode
// =============================================================================

// DeploymentNode is the closed set of deployable unit variants.
// Implementations are value types; all queries are pure.
type DeploymentNode interface {
	// NodeKind returns the variant discriminant.
	NodeKind() NodeKind

	// NodeName returns the human-readable name of the unit.
	NodeName() string

	// Resources returns the resource requirements if the variant
	// carries them. The second return is false for variants without
	// a resource footprint (message buses, load balancers, storage).
	Resources() (ResourceRequirements, bool)

	// RequiresPersistence reports whether the unit needs durable state.
	RequiresPersistence() bool

	// ExposedPorts returns the network ports this unit listens on.
	// Empty for units that expose nothing.
	ExposedPorts() []int
}

// Service is a long-running process managed as a unit.
type Service struct {
	Name        string
	Command     string
	Args        []string
	Environment map[string]string
	Port        int // 0 = no port exposed
	HealthCheck *HealthCheck
	Resource    ResourceRequirements
}

func (s Service) NodeKind() NodeKind { return NodeKindService }
func (s Service) NodeName() string   { return s.Name }

func (s Service) Resources() (ResourceRequirements, bool) { return s.Resource, true }

func (s Service) RequiresPersistence() bool { return false }

func (s Service) ExposedPorts() []int {
	if s.Port == 0 {
		return nil
	}
	return []int{s.Port}
}

// Agent is a long-running worker that processes tasks from a bus.
type Agent struct {
	Name          string
	Capabilities  []string
	Subscriptions []string
	RateLimit     *RateLimit
	Resource      ResourceRequirements
}

func (a Agent) NodeKind() NodeKind { return NodeKindAgent }
func (a Agent) NodeName() string   { return a.Name }

func (a Agent) Resources() (ResourceRequirements, bool) { return a.Resource, true }

func (a Agent) RequiresPersistence() bool { return false }
func (a Agent) ExposedPorts() []int       { return nil }

// Database is a managed database server.
type Database struct {
	Name           string
	Engine         DatabaseEngine
	Version        string
	Persistent     bool
	BackupSchedule string // cron expression, empty = no backups
	Resource       ResourceRequirements
}

func (d Database) NodeKind() NodeKind { return NodeKindDatabase }
func (d Database) NodeName() string   { return d.Name }

func (d Database) Resources() (ResourceRequirements, bool) { return d.Resource, true }

func (d Database) RequiresPersistence() bool { return d.Persistent }

func (d Database) ExposedPorts() []int {
	port := EnginePort(d.Engine)
	if port == 0 {
		return nil
	}
	return []int{port}
}

// MessageBus is a broker for inter-service communication.
type MessageBus struct {
	Name        string
	Bus         BusKind
	ClusterSize int
	Persistence bool
	Topics      []TopicConfig
}

func (m MessageBus) NodeKind() NodeKind { return NodeKindMessageBus }
func (m MessageBus) NodeName() string   { return m.Name }

func (m MessageBus) Resources() (ResourceRequirements, bool) {
	return ResourceRequirements{}, false
}

func (m MessageBus) RequiresPersistence() bool { return m.Persistence }
func (m MessageBus) ExposedPorts() []int       { return BusPorts(m.Bus) }

// LoadBalancer distributes traffic across backend services.
type LoadBalancer struct {
	Name                string
	Strategy            BalancingStrategy
	HealthCheckInterval int // seconds
	Backends            []string
	Weights             map[string]int // only meaningful for StrategyWeighted
}

func (l LoadBalancer) NodeKind() NodeKind { return NodeKindLoadBalancer }
func (l LoadBalancer) NodeName() string   { return l.Name }

func (l LoadBalancer) Resources() (ResourceRequirements, bool) {
	return ResourceRequirements{}, false
}

func (l LoadBalancer) RequiresPersistence() bool { return false }
func (l LoadBalancer) ExposedPorts() []int       { return nil }

// Storage is a provisioned volume.
type Storage struct {
	Name      string
	Kind      StorageKind
	Size      string // "10Gi", "1Ti", etc.
	MountPath string
	Access    AccessMode
}

func (s Storage) NodeKind() NodeKind { return NodeKindStorage }
func (s Storage) NodeName() string   { return s.Name }

func (s Storage) Resources() (ResourceRequirements, bool) {
	return ResourceRequirements{}, false
}

func (s Storage) RequiresPersistence() bool { return true }
func (s Storage) ExposedPorts() []int       { return nil }
