package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func serviceNode(id string) topology.Node {
	return topology.Node{ID: id, Data: topology.Service{Name: id, Command: "run"}}
}

func databaseNode(id string) topology.Node {
	return topology.Node{ID: id, Data: topology.Database{
		Name:    id,
		Engine:  topology.EnginePostgres,
		Version: "16",
	}}
}

func dependsOn(from, to string) topology.Edge {
	return topology.Edge{From: from, To: to, Data: topology.DependsOn{Required: true}}
}

// =============================================================================
// DeploymentOrder Tests
// =============================================================================

func TestDeploymentOrder_Empty(t *testing.T) {
	g := topology.NewGraph(nil, nil)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Empty(t, order)
}

func TestDeploymentOrder_SingleNode(t *testing.T) {
	g := topology.NewGraph([]topology.Node{serviceNode("web")}, nil)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, order)
}

func TestDeploymentOrder_DependencyFirst(t *testing.T) {
	// api depends on db, so db must be deployed first.
	g := topology.NewGraph(
		[]topology.Node{serviceNode("api"), databaseNode("db")},
		[]topology.Edge{dependsOn("api", "db")},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "api"}, order)
}

func TestDeploymentOrder_LinearChain(t *testing.T) {
	// web -> api -> db
	g := topology.NewGraph(
		[]topology.Node{serviceNode("web"), serviceNode("api"), databaseNode("db")},
		[]topology.Edge{dependsOn("web", "api"), dependsOn("api", "db")},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "api", "web"}, order)
}

func TestDeploymentOrder_DiamondDependencies(t *testing.T) {
	//       web
	//      /   \
	//    api   cache
	//      \   /
	//       db
	g := topology.NewGraph(
		[]topology.Node{
			serviceNode("web"),
			serviceNode("api"),
			serviceNode("cache"),
			databaseNode("db"),
		},
		[]topology.Edge{
			dependsOn("web", "api"),
			dependsOn("web", "cache"),
			dependsOn("api", "db"),
			dependsOn("cache", "db"),
		},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	require.Len(t, order, 4)

	indices := make(map[string]int)
	for i, id := range order {
		indices[id] = i
	}
	assert.Equal(t, 0, indices["db"], "db should be first")
	assert.Equal(t, 3, indices["web"], "web should be last")
	assert.Less(t, indices["db"], indices["api"])
	assert.Less(t, indices["db"], indices["cache"])
}

func TestDeploymentOrder_TieBreakLexicographic(t *testing.T) {
	// No dependencies: order falls back to ID order regardless of
	// insertion order.
	g := topology.NewGraph(
		[]topology.Node{serviceNode("zeta"), serviceNode("alpha"), serviceNode("mid")},
		nil,
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
}

func TestDeploymentOrder_Deterministic(t *testing.T) {
	g := topology.NewGraph(
		[]topology.Node{
			serviceNode("web"),
			serviceNode("api"),
			serviceNode("worker"),
			databaseNode("db"),
		},
		[]topology.Edge{
			dependsOn("web", "api"),
			dependsOn("api", "db"),
			dependsOn("worker", "db"),
		},
	)

	first, err := DeploymentOrder(g)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := DeploymentOrder(g)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDeploymentOrder_OptionalDependencyIgnored(t *testing.T) {
	// An optional dependency does not constrain ordering; both nodes
	// are roots and come out in ID order.
	g := topology.NewGraph(
		[]topology.Node{serviceNode("web"), serviceNode("api")},
		[]topology.Edge{
			{From: "web", To: "api", Data: topology.DependsOn{Required: false}},
		},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "web"}, order)
}

func TestDeploymentOrder_RuntimeEdgesIgnored(t *testing.T) {
	g := topology.NewGraph(
		[]topology.Node{serviceNode("api"), databaseNode("db")},
		[]topology.Edge{
			{From: "api", To: "db", Data: topology.ConnectsTo{Protocol: topology.ProtocolTCP, Port: 5432}},
		},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "db"}, order)
}

func TestDeploymentOrder_DanglingEdgeSkipped(t *testing.T) {
	// Edges to nodes outside the topology do not block ordering here;
	// dependency validation reports them.
	g := topology.NewGraph(
		[]topology.Node{serviceNode("api")},
		[]topology.Edge{dependsOn("api", "ghost")},
	)

	order, err := DeploymentOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, order)
}

func TestDeploymentOrder_TwoNodeCycle(t *testing.T) {
	g := topology.NewGraph(
		[]topology.Node{serviceNode("a"), serviceNode("b")},
		[]topology.Edge{dependsOn("a", "b"), dependsOn("b", "a")},
	)

	_, err := DeploymentOrder(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestDeploymentOrder_SelfCycle(t *testing.T) {
	g := topology.NewGraph(
		[]topology.Node{serviceNode("a")},
		[]topology.Edge{dependsOn("a", "a")},
	)

	_, err := DeploymentOrder(g)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestDeploymentOrder_PartialCycle(t *testing.T) {
	// A valid chain plus a detached cycle still fails.
	g := topology.NewGraph(
		[]topology.Node{
			serviceNode("web"),
			databaseNode("db"),
			serviceNode("x"),
			serviceNode("y"),
		},
		[]topology.Edge{
			dependsOn("web", "db"),
			dependsOn("x", "y"),
			dependsOn("y", "x"),
		},
	)

	_, err := DeploymentOrder(g)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}
