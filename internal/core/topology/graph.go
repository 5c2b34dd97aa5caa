package topology

// =============================================================================
// Graph Snapshot
// =============================================================================

// Node is a deployment node bound to its stable identifier in the graph.
type Node struct {
	ID   string
	Data DeploymentNode
}

// Edge is a directed relationship between two nodes, referenced by ID.
type Edge struct {
	From string
	To   string
	Data DeploymentEdge
}

// Provider is the read-only view of a topology that validation and
// translation operate on. Implementations must not mutate during a call.
type Provider interface {
	// AllNodes returns every node in insertion order.
	AllNodes() []Node

	// AllEdges returns every edge in insertion order.
	AllEdges() []Edge

	// Node returns the node with the given ID.
	Node(id string) (Node, bool)

	// EdgesFrom returns all outgoing edges of a node.
	EdgesFrom(id string) []Edge

	// EdgesTo returns all incoming edges of a node.
	EdgesTo(id string) []Edge
}

// Graph is an immutable in-memory topology snapshot.
// It implements Provider and is safe for concurrent reads.
type Graph struct {
	nodes map[string]Node
	order []string
	edges []Edge
	out   map[string][]Edge
	in    map[string][]Edge
}

// NewGraph builds a snapshot from nodes and edges.
// A duplicate node ID keeps the first occurrence. Edges may reference
// IDs absent from the node set; dependency validation decides whether
// that is an error.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes: make(map[string]Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
		edges: make([]Edge, 0, len(edges)),
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
	}

	for _, n := range nodes {
		if n.Data == nil {
			continue
		}
		if _, exists := g.nodes[n.ID]; exists {
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		if e.Data == nil {
			continue
		}
		g.edges = append(g.edges, e)
		g.out[e.From] = append(g.out[e.From], e)
		g.in[e.To] = append(g.in[e.To], e)
	}

	return g
}

// AllNodes returns every node in insertion order.
func (g *Graph) AllNodes() []Node {
	result := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		result = append(result, g.nodes[id])
	}
	return result
}

// AllEdges returns every edge in insertion order.
func (g *Graph) AllEdges() []Edge {
	result := make([]Edge, len(g.edges))
	copy(result, g.edges)
	return result
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// EdgesFrom returns all outgoing edges of a node.
func (g *Graph) EdgesFrom(id string) []Edge {
	edges := g.out[id]
	result := make([]Edge, len(edges))
	copy(result, edges)
	return result
}

// EdgesTo returns all incoming edges of a node.
func (g *Graph) EdgesTo(id string) []Edge {
	edges := g.in[id]
	result := make([]Edge, len(edges))
	copy(result, edges)
	return result
}

// NodeCount returns the number of nodes in the snapshot.
func (g *Graph) NodeCount() int {
	return len(g.order)
}
