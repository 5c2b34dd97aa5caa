package ingest

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Manifest Documents
// =============================================================================

// manifestDoc is the loose wire form of a topology manifest.
// JSON input parses too since YAML is a superset.
type manifestDoc struct {
	Nodes []nodeDoc `yaml:"nodes"`
	Edges []edgeDoc `yaml:"edges"`
}

type nodeDoc struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// service
	Command     string            `yaml:"command"`
	Args        []string          `yaml:"args"`
	Environment map[string]string `yaml:"environment"`
	Port        int               `yaml:"port"`
	HealthCheck *healthCheckDoc   `yaml:"health_check"`

	// agent
	Capabilities  []string      `yaml:"capabilities"`
	Subscriptions []string      `yaml:"subscriptions"`
	RateLimit     *rateLimitDoc `yaml:"rate_limit"`

	// database
	Engine         string `yaml:"engine"`
	Version        string `yaml:"version"`
	Persistent     bool   `yaml:"persistent"`
	BackupSchedule string `yaml:"backup_schedule"`

	// message bus
	BusType     string     `yaml:"bus_type"`
	ClusterSize int        `yaml:"cluster_size"`
	Persistence bool       `yaml:"persistence"`
	Topics      []topicDoc `yaml:"topics"`

	// load balancer
	Strategy            string         `yaml:"strategy"`
	HealthCheckInterval int            `yaml:"health_check_interval"`
	Backends            []string       `yaml:"backends"`
	Weights             map[string]int `yaml:"weights"`

	// storage
	StorageType string `yaml:"storage_type"`
	Size        string `yaml:"size"`
	MountPath   string `yaml:"mount_path"`
	AccessMode  string `yaml:"access_mode"`

	// shared
	Resources resourcesDoc `yaml:"resources"`
}

type edgeDoc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Type string `yaml:"type"`

	// depends_on
	Required     *bool  `yaml:"required"`
	StartupDelay string `yaml:"startup_delay"`

	// connects_to
	Protocol  string `yaml:"protocol"`
	Port      int    `yaml:"port"`
	Encrypted bool   `yaml:"encrypted"`

	// data_flow
	Direction string `yaml:"direction"`
	Format    string `yaml:"format"`

	// load_balances
	Weight      int  `yaml:"weight"`
	HealthCheck bool `yaml:"health_check"`

	// mounts_volume
	MountPath string `yaml:"mount_path"`
	ReadOnly  bool   `yaml:"read_only"`

	// publishes_to / subscribes_to
	Topic         string `yaml:"topic"`
	RateLimit     int    `yaml:"rate_limit"`
	ConsumerGroup string `yaml:"consumer_group"`

	// manages
	Permissions []string `yaml:"permissions"`
}

type resourcesDoc struct {
	CPUCores float64 `yaml:"cpu_cores"`
	MemoryMB int64   `yaml:"memory_mb"`
	DiskGB   int64   `yaml:"disk_gb"`
}

type healthCheckDoc struct {
	Endpoint        string `yaml:"endpoint"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Retries         int    `yaml:"retries"`
}

type rateLimitDoc struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type topicDoc struct {
	Name              string `yaml:"name"`
	Partitions        int    `yaml:"partitions"`
	ReplicationFactor int    `yaml:"replication_factor"`
	RetentionHours    int    `yaml:"retention_hours"`
}

// =============================================================================
// Manifest Parsing
// =============================================================================

// ParseManifest decodes a topology manifest (YAML or JSON) into a
// graph snapshot. This is a pure function - no I/O, no side effects.
func ParseManifest(content string) (*topology.Graph, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}

	var doc manifestDoc
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	if len(doc.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	seen := make(map[string]bool, len(doc.Nodes))
	nodes := make([]topology.Node, 0, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if nd.ID == "" {
			return nil, NewParseError(field+".id", "node id is required", ErrMissingField)
		}
		if seen[nd.ID] {
			return nil, NewParseError(field, "duplicate node id: "+nd.ID, ErrDuplicateNode)
		}
		seen[nd.ID] = true

		data, err := convertNode(nd, field)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, topology.Node{ID: nd.ID, Data: data})
	}

	edges := make([]topology.Edge, 0, len(doc.Edges))
	for i, ed := range doc.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if ed.From == "" || ed.To == "" {
			return nil, NewParseError(field, "edge endpoints are required", ErrMissingField)
		}
		data, err := convertEdge(ed, field)
		if err != nil {
			return nil, err
		}
		edges = append(edges, topology.Edge{From: ed.From, To: ed.To, Data: data})
	}

	return topology.NewGraph(nodes, edges), nil
}

// convertNode builds the typed node variant for a manifest entry.
// The node name defaults to the graph id when omitted.
func convertNode(nd nodeDoc, field string) (topology.DeploymentNode, error) {
	name := nd.Name
	if name == "" {
		name = nd.ID
	}

	switch topology.NodeKind(nd.Type) {
	case topology.NodeKindService:
		svc := topology.Service{
			Name:        name,
			Command:     nd.Command,
			Args:        nd.Args,
			Environment: nd.Environment,
			Port:        nd.Port,
			Resource:    convertResources(nd.Resources),
		}
		if nd.HealthCheck != nil {
			svc.HealthCheck = &topology.HealthCheck{
				Endpoint:        nd.HealthCheck.Endpoint,
				IntervalSeconds: nd.HealthCheck.IntervalSeconds,
				TimeoutSeconds:  nd.HealthCheck.TimeoutSeconds,
				Retries:         nd.HealthCheck.Retries,
			}
		}
		return svc, nil

	case topology.NodeKindAgent:
		agent := topology.Agent{
			Name:          name,
			Capabilities:  nd.Capabilities,
			Subscriptions: nd.Subscriptions,
			Resource:      convertResources(nd.Resources),
		}
		if nd.RateLimit != nil {
			agent.RateLimit = &topology.RateLimit{
				RequestsPerSecond: nd.RateLimit.RequestsPerSecond,
				BurstSize:         nd.RateLimit.BurstSize,
			}
		}
		return agent, nil

	case topology.NodeKindDatabase:
		engine := topology.DatabaseEngine(nd.Engine)
		if !engine.IsValid() {
			return nil, NewParseError(field+".engine", "unknown database engine: "+nd.Engine, ErrUnknownValue)
		}
		return topology.Database{
			Name:           name,
			Engine:         engine,
			Version:        nd.Version,
			Persistent:     nd.Persistent,
			BackupSchedule: nd.BackupSchedule,
			Resource:       convertResources(nd.Resources),
		}, nil

	case topology.NodeKindMessageBus:
		bus := topology.BusKind(nd.BusType)
		if !bus.IsValid() {
			return nil, NewParseError(field+".bus_type", "unknown bus type: "+nd.BusType, ErrUnknownValue)
		}
		clusterSize := nd.ClusterSize
		if clusterSize == 0 {
			clusterSize = 1
		}
		topics := make([]topology.TopicConfig, 0, len(nd.Topics))
		for _, tp := range nd.Topics {
			topics = append(topics, topology.TopicConfig{
				Name:              tp.Name,
				Partitions:        tp.Partitions,
				ReplicationFactor: tp.ReplicationFactor,
				RetentionHours:    tp.RetentionHours,
			})
		}
		return topology.MessageBus{
			Name:        name,
			Bus:         bus,
			ClusterSize: clusterSize,
			Persistence: nd.Persistence,
			Topics:      topics,
		}, nil

	case topology.NodeKindLoadBalancer:
		strategy := topology.BalancingStrategy(nd.Strategy)
		if strategy == "" {
			strategy = topology.StrategyRoundRobin
		}
		return topology.LoadBalancer{
			Name:                name,
			Strategy:            strategy,
			HealthCheckInterval: nd.HealthCheckInterval,
			Backends:            nd.Backends,
			Weights:             nd.Weights,
		}, nil

	case topology.NodeKindStorage:
		kind := topology.StorageKind(nd.StorageType)
		if kind == "" {
			kind = topology.StorageLocalDisk
		}
		access := topology.AccessMode(nd.AccessMode)
		if access == "" {
			access = topology.AccessReadWriteOnce
		}
		return topology.Storage{
			Name:      name,
			Kind:      kind,
			Size:      nd.Size,
			MountPath: nd.MountPath,
			Access:    access,
		}, nil

	default:
		return nil, NewParseError(field+".type", "unknown node kind: "+nd.Type, ErrUnknownNodeKind)
	}
}

// convertEdge builds the typed edge variant for a manifest entry.
// A depends_on edge without an explicit required flag is required.
func convertEdge(ed edgeDoc, field string) (topology.DeploymentEdge, error) {
	switch topology.EdgeKind(ed.Type) {
	case topology.EdgeKindDependsOn:
		required := true
		if ed.Required != nil {
			required = *ed.Required
		}
		var delay time.Duration
		if ed.StartupDelay != "" {
			d, err := time.ParseDuration(ed.StartupDelay)
			if err != nil {
				return nil, NewParseError(field+".startup_delay", "invalid duration: "+ed.StartupDelay, ErrUnknownValue)
			}
			delay = d
		}
		return topology.DependsOn{Required: required, StartupDelay: delay}, nil

	case topology.EdgeKindConnectsTo:
		protocol := topology.Protocol(ed.Protocol)
		if protocol == "" {
			protocol = topology.ProtocolTCP
		}
		return topology.ConnectsTo{
			Protocol:  protocol,
			Port:      ed.Port,
			Encrypted: ed.Encrypted,
		}, nil

	case topology.EdgeKindDataFlow:
		return topology.DataFlow{
			Direction: topology.FlowDirection(ed.Direction),
			Format:    topology.DataFormat(ed.Format),
		}, nil

	case topology.EdgeKindLoadBalances:
		return topology.LoadBalances{
			Weight:      ed.Weight,
			HealthCheck: ed.HealthCheck,
		}, nil

	case topology.EdgeKindMountsVolume:
		if ed.MountPath == "" {
			return nil, NewParseError(field+".mount_path", "mount path is required", ErrMissingField)
		}
		return topology.MountsVolume{
			MountPath: ed.MountPath,
			ReadOnly:  ed.ReadOnly,
		}, nil

	case topology.EdgeKindPublishesTo:
		return topology.PublishesTo{Topic: ed.Topic, RateLimit: ed.RateLimit}, nil

	case topology.EdgeKindSubscribesTo:
		return topology.SubscribesTo{Topic: ed.Topic, ConsumerGroup: ed.ConsumerGroup}, nil

	case topology.EdgeKindManages:
		perms := make([]topology.Permission, 0, len(ed.Permissions))
		for _, perm := range ed.Permissions {
			perms = append(perms, topology.Permission(perm))
		}
		return topology.Manages{Permissions: perms}, nil

	default:
		return nil, NewParseError(field+".type", "unknown edge kind: "+ed.Type, ErrUnknownEdgeKind)
	}
}

func convertResources(rd resourcesDoc) topology.ResourceRequirements {
	return topology.ResourceRequirements{
		CPUCores: rd.CPUCores,
		MemoryMB: rd.MemoryMB,
		DiskGB:   rd.DiskGB,
	}
}
