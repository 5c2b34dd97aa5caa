package plan

import (
	"fmt"
	"sort"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Graph to Spec Translation
// =============================================================================

// DefaultBackendPort is assumed for load balancer backends whose
// service does not configure a port.
const DefaultBackendPort = 80

// DefaultNATSURL is used for agents when the topology has no NATS bus.
const DefaultNATSURL = "nats://localhost:4222"

// Translator lowers validated topologies into deployment specifications.
type Translator struct {
	limits Limits
}

// NewTranslator creates a translator that validates against the given
// resource limits before lowering.
func NewTranslator(limits Limits) *Translator {
	return &Translator{limits: limits}
}

// Translate validates the topology, computes the deployment order, and
// lowers each node into its spec fragment. Any validation failure is
// returned verbatim and no partial specification is produced.
//
// Calling Translate twice on the same topology yields structurally
// identical output: spec fragments appear in deployment order and all
// resolved lists are sorted.
func (t *Translator) Translate(p topology.Provider) (*NixDeploymentSpec, error) {
	if err := Validate(p, t.limits); err != nil {
		return nil, err
	}

	order, err := DeploymentOrder(p)
	if err != nil {
		return nil, err
	}

	spec := &NixDeploymentSpec{
		Services:       []ServiceSpec{},
		Databases:      []DatabaseSpec{},
		Agents:         []AgentSpec{},
		MessageBuses:   []MessageBusSpec{},
		LoadBalancers:  []LoadBalancerSpec{},
		StorageVolumes: []StorageSpec{},
	}

	for _, id := range order {
		node, ok := p.Node(id)
		if !ok {
			return nil, fmt.Errorf("node %q not found in topology", id)
		}

		switch data := node.Data.(type) {
		case topology.Service:
			spec.Services = append(spec.Services, t.lowerService(data, p, id))
		case topology.Database:
			spec.Databases = append(spec.Databases, t.lowerDatabase(data))
		case topology.Agent:
			spec.Agents = append(spec.Agents, t.lowerAgent(data, p))
		case topology.MessageBus:
			spec.MessageBuses = append(spec.MessageBuses, t.lowerMessageBus(data))
		case topology.LoadBalancer:
			spec.LoadBalancers = append(spec.LoadBalancers, t.lowerLoadBalancer(data, p))
		case topology.Storage:
			spec.StorageVolumes = append(spec.StorageVolumes, t.lowerStorage(data, p, id))
		}
	}

	spec.Dependencies = extractDependencies(p)
	spec.Network = extractNetworkTopology(p)

	return spec, nil
}

// =============================================================================
// Per-Node Lowering
// =============================================================================

func (t *Translator) lowerService(svc topology.Service, p topology.Provider, id string) ServiceSpec {
	out := ServiceSpec{
		Name:         svc.Name,
		Command:      svc.Command,
		Args:         append([]string{}, svc.Args...),
		Environment:  copyStringMap(svc.Environment),
		Port:         svc.Port,
		Resources:    lowerResources(svc.Resource),
		Dependencies: nodeDependencies(p, id),
	}

	if svc.HealthCheck != nil {
		out.HealthCheck = &HealthCheckSpec{
			Endpoint:        svc.HealthCheck.Endpoint,
			IntervalSeconds: svc.HealthCheck.IntervalSeconds,
			TimeoutSeconds:  svc.HealthCheck.TimeoutSeconds,
			Retries:         svc.HealthCheck.Retries,
		}
	}

	return out
}

func (t *Translator) lowerDatabase(db topology.Database) DatabaseSpec {
	return DatabaseSpec{
		Name:           db.Name,
		Engine:         string(db.Engine),
		Version:        db.Version,
		Port:           topology.EnginePort(db.Engine),
		Persistent:     db.Persistent,
		BackupSchedule: db.BackupSchedule,
		Resources:      lowerResources(db.Resource),
	}
}

func (t *Translator) lowerAgent(agent topology.Agent, p topology.Provider) AgentSpec {
	return AgentSpec{
		Name:          agent.Name,
		Capabilities:  append([]string{}, agent.Capabilities...),
		Subscriptions: append([]string{}, agent.Subscriptions...),
		NATSURL:       findNATSURL(p),
		Resources:     lowerResources(agent.Resource),
	}
}

func (t *Translator) lowerMessageBus(bus topology.MessageBus) MessageBusSpec {
	return MessageBusSpec{
		Name:        bus.Name,
		BusType:     string(bus.Bus),
		ClusterSize: bus.ClusterSize,
		Persistence: bus.Persistence,
		Ports:       topology.BusPorts(bus.Bus),
	}
}

func (t *Translator) lowerLoadBalancer(lb topology.LoadBalancer, p topology.Provider) LoadBalancerSpec {
	return LoadBalancerSpec{
		Name:                lb.Name,
		Strategy:            string(lb.Strategy),
		Backends:            resolveBackends(lb, p),
		HealthCheckInterval: lb.HealthCheckInterval,
	}
}

func (t *Translator) lowerStorage(st topology.Storage, p topology.Provider, id string) StorageSpec {
	return StorageSpec{
		Name:        st.Name,
		StorageType: string(st.Kind),
		Size:        st.Size,
		AccessMode:  string(st.Access),
		MountPaths:  storageMounts(p, id),
	}
}

// =============================================================================
// Cross-Reference Resolution
// =============================================================================

// nodeDependencies returns the startup dependencies of a node, sorted.
func nodeDependencies(p topology.Provider, id string) []string {
	deps := []string{}
	for _, edge := range p.EdgesFrom(id) {
		if edge.Data.IsStartupDependency() {
			deps = append(deps, edge.To)
		}
	}
	sort.Strings(deps)
	return deps
}

// findNATSURL scans the topology for NATS message buses and formats a
// client URL for the lexicographically smallest bus name. Falls back
// to localhost when the topology has no NATS bus.
func findNATSURL(p topology.Provider) string {
	var buses []string
	for _, node := range p.AllNodes() {
		if bus, ok := node.Data.(topology.MessageBus); ok && bus.Bus == topology.BusNATS {
			buses = append(buses, bus.Name)
		}
	}
	if len(buses) == 0 {
		return DefaultNATSURL
	}
	sort.Strings(buses)
	return fmt.Sprintf("nats://%s:%d", buses[0], topology.NATSClientPort)
}

// resolveBackends maps a load balancer's backend names to backend
// specs. Names that do not resolve to a Service node are omitted;
// dangling LoadBalances edges are already rejected by validation.
func resolveBackends(lb topology.LoadBalancer, p topology.Provider) []BackendSpec {
	backends := []BackendSpec{}
	for _, name := range lb.Backends {
		node, ok := p.Node(name)
		if !ok {
			continue
		}
		svc, ok := node.Data.(topology.Service)
		if !ok {
			continue
		}

		port := svc.Port
		if port == 0 {
			port = DefaultBackendPort
		}

		backend := BackendSpec{Service: name, Port: port}
		if lb.Strategy == topology.StrategyWeighted {
			backend.Weight = lb.Weights[name]
		}
		backends = append(backends, backend)
	}
	return backends
}

// storageMounts collects the consumers of a storage node from its
// incoming volume mount edges.
func storageMounts(p topology.Provider, storageID string) []MountSpec {
	mounts := []MountSpec{}
	for _, edge := range p.EdgesTo(storageID) {
		if mount, ok := edge.Data.(topology.MountsVolume); ok {
			mounts = append(mounts, MountSpec{
				Service:  edge.From,
				Path:     mount.MountPath,
				ReadOnly: mount.ReadOnly,
			})
		}
	}
	return mounts
}

// extractDependencies builds the global dependency map from all
// startup-dependency edges. Each list is sorted.
func extractDependencies(p topology.Provider) DependencyMap {
	deps := DependencyMap{}
	for _, edge := range p.AllEdges() {
		if edge.Data.IsStartupDependency() {
			deps[edge.From] = append(deps[edge.From], edge.To)
		}
	}
	for from := range deps {
		sort.Strings(deps[from])
	}
	return deps
}

// extractNetworkTopology collects runtime connections and the exposed
// port map. Nodes exposing no ports are omitted from the map.
func extractNetworkTopology(p topology.Provider) NetworkTopology {
	network := NetworkTopology{
		Connections:  []NetworkConnection{},
		ExposedPorts: map[string][]int{},
	}

	for _, edge := range p.AllEdges() {
		if conn, ok := edge.Data.(topology.ConnectsTo); ok {
			network.Connections = append(network.Connections, NetworkConnection{
				From:      edge.From,
				To:        edge.To,
				Protocol:  string(conn.Protocol),
				Port:      conn.Port,
				Encrypted: conn.Encrypted,
			})
		}
	}

	for _, node := range p.AllNodes() {
		if ports := node.Data.ExposedPorts(); len(ports) > 0 {
			network.ExposedPorts[node.ID] = ports
		}
	}

	return network
}

// =============================================================================
// Helpers
// =============================================================================

func lowerResources(r topology.ResourceRequirements) ResourceSpec {
	return ResourceSpec{
		CPUCores: r.CPUCores,
		MemoryMB: r.MemoryMB,
		DiskGB:   r.DiskGB,
	}
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
