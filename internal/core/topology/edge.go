package topology

import "time"

// =============================================================================
// Edge Kinds
// =============================================================================

// EdgeKind identifies the variant of a deployment edge.
type EdgeKind string

const (
	EdgeKindDependsOn    EdgeKind = "depends_on"
	EdgeKindConnectsTo   EdgeKind = "connects_to"
	EdgeKindDataFlow     EdgeKind = "data_flow"
	EdgeKindLoadBalances EdgeKind = "load_balances"
	EdgeKindMountsVolume EdgeKind = "mounts_volume"
	EdgeKindPublishesTo  EdgeKind = "publishes_to"
	EdgeKindSubscribesTo EdgeKind = "subscribes_to"
	EdgeKindManages      EdgeKind = "manages"
)

// =============================================================================
// Enumerations
// =============================================================================

// Protocol identifies a network protocol for a connection edge.
type Protocol string

const (
	ProtocolHTTP      Protocol = "http"
	ProtocolHTTPS     Protocol = "https"
	ProtocolTCP       Protocol = "tcp"
	ProtocolUDP       Protocol = "udp"
	ProtocolGRPC      Protocol = "grpc"
	ProtocolWebSocket Protocol = "websocket"
)

// FlowDirection identifies the direction of a data flow edge.
type FlowDirection string

const (
	FlowPush          FlowDirection = "push"
	FlowPull          FlowDirection = "pull"
	FlowBidirectional FlowDirection = "bidirectional"
)

// DataFormat identifies the wire format of a data flow edge.
type DataFormat string

const (
	FormatJSON        DataFormat = "json"
	FormatProtobuf    DataFormat = "protobuf"
	FormatMessagePack DataFormat = "messagepack"
	FormatAvro        DataFormat = "avro"
	FormatXML         DataFormat = "xml"
	FormatBinary      DataFormat = "binary"
)

// DataVolume estimates the throughput of a data flow edge.
type DataVolume struct {
	MessagesPerSecond float64
	AverageSizeBytes  int
	PeakMultiplier    float64
}

// Permission is a management action an agent may perform on a target.
type Permission string

const (
	PermissionStart     Permission = "start"
	PermissionStop      Permission = "stop"
	PermissionRestart   Permission = "restart"
	PermissionConfigure Permission = "configure"
	PermissionMonitor   Permission = "monitor"
	PermissionScale     Permission = "scale"
	PermissionDeploy    Permission = "deploy"
)

// DependencyClass categorizes how strongly an edge couples two nodes.
type DependencyClass string

const (
	// DependencyHard means the target must exist and be healthy
	// before the source starts.
	DependencyHard DependencyClass = "hard"
	// DependencySoft means the source can start without the target.
	DependencySoft DependencyClass = "soft"
	// DependencyRuntime means the target is only needed during
	// operation, never for startup.
	DependencyRuntime DependencyClass = "runtime"
)

// =============================================================================
// DeploymentEdge
// =============================================================================

// DeploymentEdge is the closed set of relationship variants between
// deployment nodes. Implementations are value types; all queries are pure.
type DeploymentEdge interface {
	// EdgeKind returns the variant discriminant.
	EdgeKind() EdgeKind

	// IsStartupDependency reports whether the edge constrains startup
	// ordering. Only required DependsOn edges do; every other
	// relationship is informational or runtime-only.
	IsStartupDependency() bool

	// RequiresNetwork reports whether the edge implies network
	// connectivity between its endpoints.
	RequiresNetwork() bool

	// Class returns the dependency class of the edge.
	Class() DependencyClass
}

// DependsOn orders startup: the target must be running before the source.
type DependsOn struct {
	StartupDelay time.Duration // optional pause after target start
	Required     bool
}

func (e DependsOn) EdgeKind() EdgeKind { return EdgeKindDependsOn }

func (e DependsOn) IsStartupDependency() bool { return e.Required }

func (e DependsOn) RequiresNetwork() bool { return false }

func (e DependsOn) Class() DependencyClass {
	if e.Required {
		return DependencyHard
	}
	return DependencySoft
}

// ConnectsTo is a runtime network connection between two nodes.
type ConnectsTo struct {
	Protocol  Protocol
	Port      int
	Encrypted bool
}

func (e ConnectsTo) EdgeKind() EdgeKind        { return EdgeKindConnectsTo }
func (e ConnectsTo) IsStartupDependency() bool { return false }
func (e ConnectsTo) RequiresNetwork() bool     { return true }
func (e ConnectsTo) Class() DependencyClass    { return DependencyRuntime }
func (e ConnectsTo) RequiresEncryption() bool  { return e.Encrypted }

// DataFlow describes a data movement relationship.
type DataFlow struct {
	Direction FlowDirection
	Format    DataFormat
	Volume    *DataVolume
}

func (e DataFlow) EdgeKind() EdgeKind        { return EdgeKindDataFlow }
func (e DataFlow) IsStartupDependency() bool { return false }
func (e DataFlow) RequiresNetwork() bool     { return true }
func (e DataFlow) Class() DependencyClass    { return DependencyRuntime }

// LoadBalances links a load balancer to one of its backends.
type LoadBalances struct {
	Weight      int // 0 = unweighted
	HealthCheck bool
}

func (e LoadBalances) EdgeKind() EdgeKind        { return EdgeKindLoadBalances }
func (e LoadBalances) IsStartupDependency() bool { return false }
func (e LoadBalances) RequiresNetwork() bool     { return false }
func (e LoadBalances) Class() DependencyClass    { return DependencySoft }

// MountsVolume attaches a storage node to a consumer.
type MountsVolume struct {
	MountPath string
	ReadOnly  bool
}

func (e MountsVolume) EdgeKind() EdgeKind        { return EdgeKindMountsVolume }
func (e MountsVolume) IsStartupDependency() bool { return false }
func (e MountsVolume) RequiresNetwork() bool     { return false }
func (e MountsVolume) Class() DependencyClass    { return DependencySoft }

// PublishesTo marks a producer of a message bus topic.
type PublishesTo struct {
	Topic     string
	RateLimit int // messages per second, 0 = unlimited
}

func (e PublishesTo) EdgeKind() EdgeKind        { return EdgeKindPublishesTo }
func (e PublishesTo) IsStartupDependency() bool { return false }
func (e PublishesTo) RequiresNetwork() bool     { return true }
func (e PublishesTo) Class() DependencyClass    { return DependencySoft }

// SubscribesTo marks a consumer of a message bus topic.
type SubscribesTo struct {
	Topic         string
	ConsumerGroup string
}

func (e SubscribesTo) EdgeKind() EdgeKind        { return EdgeKindSubscribesTo }
func (e SubscribesTo) IsStartupDependency() bool { return false }
func (e SubscribesTo) RequiresNetwork() bool     { return true }
func (e SubscribesTo) Class() DependencyClass    { return DependencySoft }

// Manages grants an agent management actions over a target node.
type Manages struct {
	Permissions []Permission
}

func (e Manages) EdgeKind() EdgeKind        { return EdgeKindManages }
func (e Manages) IsStartupDependency() bool { return false }
func (e Manages) RequiresNetwork() bool     { return false }
func (e Manages) Class() DependencyClass    { return DependencySoft }

// =============================================================================
// Edge Helpers
// =============================================================================

// RequiredPorts returns the network ports an edge needs open between
// its endpoints. Only connection edges claim ports.
func RequiredPorts(edge DeploymentEdge) []int {
	if c, ok := edge.(ConnectsTo); ok {
		return []int{c.Port}
	}
	return nil
}
