package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// ParseManifest Tests
// =============================================================================

func TestParseManifest_EmptyInput(t *testing.T) {
	_, err := ParseManifest("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ParseManifest("   \n\t  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseManifest_InvalidYAML(t *testing.T) {
	_, err := ParseManifest("nodes: [[[")
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParseManifest_NoNodes(t *testing.T) {
	_, err := ParseManifest("edges: []")
	assert.ErrorIs(t, err, ErrNoNodes)
}

func TestParseManifest_SimpleWebStack(t *testing.T) {
	manifest := `
nodes:
  - id: api
    type: service
    command: server
    args: ["--listen", ":8080"]
    port: 8080
    environment:
      DB_HOST: db
    resources:
      cpu_cores: 2
      memory_mb: 1024
  - id: db
    type: database
    engine: postgres
    version: "16"
    persistent: true
edges:
  - from: api
    to: db
    type: depends_on
`
	g, err := ParseManifest(manifest)
	require.NoError(t, err)
	require.Equal(t, 2, g.NodeCount())

	node, ok := g.Node("api")
	require.True(t, ok)
	svc, ok := node.Data.(topology.Service)
	require.True(t, ok)
	assert.Equal(t, "api", svc.Name)
	assert.Equal(t, "server", svc.Command)
	assert.Equal(t, []string{"--listen", ":8080"}, svc.Args)
	assert.Equal(t, 8080, svc.Port)
	assert.Equal(t, "db", svc.Environment["DB_HOST"])
	assert.Equal(t, 2.0, svc.Resource.CPUCores)

	node, ok = g.Node("db")
	require.True(t, ok)
	db, ok := node.Data.(topology.Database)
	require.True(t, ok)
	assert.Equal(t, topology.EnginePostgres, db.Engine)
	assert.Equal(t, "16", db.Version)
	assert.True(t, db.Persistent)

	edges := g.EdgesFrom("api")
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Data.IsStartupDependency(), "depends_on defaults to required")
}

func TestParseManifest_JSONInput(t *testing.T) {
	// JSON is a YAML subset so the same decoder accepts it.
	manifest := `{"nodes": [{"id": "api", "type": "service", "command": "run"}]}`

	g, err := ParseManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
}

func TestParseManifest_NameDefaultsToID(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: api
    type: service
    command: run
`)
	require.NoError(t, err)

	node, _ := g.Node("api")
	assert.Equal(t, "api", node.Data.NodeName())
}

func TestParseManifest_MissingNodeID(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - type: service
    command: run
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "nodes[0].id", parseErr.Field)
}

func TestParseManifest_DuplicateNodeID(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: api
    type: service
    command: run
  - id: api
    type: service
    command: run
`)
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestParseManifest_UnknownNodeKind(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: x
    type: lambda
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNodeKind)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "nodes[0].type", parseErr.Field)
}

func TestParseManifest_UnknownEngine(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: db
    type: database
    engine: oracle
    version: "19"
`)
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestParseManifest_UnknownEdgeKind(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: a
    type: service
    command: run
  - id: b
    type: service
    command: run
edges:
  - from: a
    to: b
    type: teleports_to
`)
	assert.ErrorIs(t, err, ErrUnknownEdgeKind)
}

func TestParseManifest_EdgeWithoutEndpoints(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: a
    type: service
    command: run
edges:
  - from: a
    type: depends_on
`)
	assert.ErrorIs(t, err, ErrMissingField)
}

// =============================================================================
// Edge Conversion Tests
// =============================================================================

func TestParseManifest_OptionalDependency(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: a
    type: service
    command: run
  - id: b
    type: service
    command: run
edges:
  - from: a
    to: b
    type: depends_on
    required: false
`)
	require.NoError(t, err)

	edges := g.EdgesFrom("a")
	require.Len(t, edges, 1)
	assert.False(t, edges[0].Data.IsStartupDependency())
}

func TestParseManifest_StartupDelay(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: a
    type: service
    command: run
  - id: b
    type: service
    command: run
edges:
  - from: a
    to: b
    type: depends_on
    startup_delay: 5s
`)
	require.NoError(t, err)

	dep := g.EdgesFrom("a")[0].Data.(topology.DependsOn)
	assert.Equal(t, 5*time.Second, dep.StartupDelay)
}

func TestParseManifest_InvalidStartupDelay(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: a
    type: service
    command: run
edges:
  - from: a
    to: a
    type: depends_on
    startup_delay: soon
`)
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestParseManifest_ConnectsToDefaultsTCP(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: api
    type: service
    command: run
  - id: db
    type: database
    engine: postgres
    version: "16"
edges:
  - from: api
    to: db
    type: connects_to
    port: 5432
    encrypted: true
`)
	require.NoError(t, err)

	conn := g.EdgesFrom("api")[0].Data.(topology.ConnectsTo)
	assert.Equal(t, topology.ProtocolTCP, conn.Protocol)
	assert.Equal(t, 5432, conn.Port)
	assert.True(t, conn.Encrypted)
}

func TestParseManifest_MountsVolumeRequiresPath(t *testing.T) {
	_, err := ParseManifest(`
nodes:
  - id: api
    type: service
    command: run
  - id: data
    type: storage
    size: 10Gi
edges:
  - from: api
    to: data
    type: mounts_volume
`)
	assert.ErrorIs(t, err, ErrMissingField)
}

// =============================================================================
// Node Conversion Tests
// =============================================================================

func TestParseManifest_MessageBusDefaults(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: bus
    type: message_bus
    bus_type: nats
`)
	require.NoError(t, err)

	node, _ := g.Node("bus")
	bus := node.Data.(topology.MessageBus)
	assert.Equal(t, topology.BusNATS, bus.Bus)
	assert.Equal(t, 1, bus.ClusterSize, "cluster size defaults to 1")
}

func TestParseManifest_MessageBusTopics(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: bus
    type: message_bus
    bus_type: kafka
    cluster_size: 3
    topics:
      - name: events
        partitions: 12
        replication_factor: 3
        retention_hours: 168
`)
	require.NoError(t, err)

	node, _ := g.Node("bus")
	bus := node.Data.(topology.MessageBus)
	require.Len(t, bus.Topics, 1)
	assert.Equal(t, "events", bus.Topics[0].Name)
	assert.Equal(t, 12, bus.Topics[0].Partitions)
}

func TestParseManifest_LoadBalancerDefaults(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: lb
    type: load_balancer
    backends: [api]
`)
	require.NoError(t, err)

	node, _ := g.Node("lb")
	lb := node.Data.(topology.LoadBalancer)
	assert.Equal(t, topology.StrategyRoundRobin, lb.Strategy)
	assert.Equal(t, []string{"api"}, lb.Backends)
}

func TestParseManifest_StorageDefaults(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: data
    type: storage
    size: 10Gi
`)
	require.NoError(t, err)

	node, _ := g.Node("data")
	st := node.Data.(topology.Storage)
	assert.Equal(t, topology.StorageLocalDisk, st.Kind)
	assert.Equal(t, topology.AccessReadWriteOnce, st.Access)
	assert.Equal(t, "10Gi", st.Size)
}

func TestParseManifest_AgentWithRateLimit(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: worker
    type: agent
    capabilities: [deploy, monitor]
    subscriptions: [tasks]
    rate_limit:
      requests_per_second: 100
      burst_size: 20
`)
	require.NoError(t, err)

	node, _ := g.Node("worker")
	agent := node.Data.(topology.Agent)
	assert.Equal(t, []string{"deploy", "monitor"}, agent.Capabilities)
	require.NotNil(t, agent.RateLimit)
	assert.Equal(t, 100, agent.RateLimit.RequestsPerSecond)
}

func TestParseManifest_ServiceHealthCheck(t *testing.T) {
	g, err := ParseManifest(`
nodes:
  - id: api
    type: service
    command: serve
    health_check:
      endpoint: /healthz
      interval_seconds: 10
      timeout_seconds: 2
      retries: 3
`)
	require.NoError(t, err)

	node, _ := g.Node("api")
	svc := node.Data.(topology.Service)
	require.NotNil(t, svc.HealthCheck)
	assert.Equal(t, "/healthz", svc.HealthCheck.Endpoint)
	assert.Equal(t, 3, svc.HealthCheck.Retries)
}
