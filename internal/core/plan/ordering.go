package plan

import (
	"fmt"
	"sort"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Deployment Ordering
// =============================================================================

// DeploymentOrder computes a startup sequence over startup-dependency
// edges using Kahn's algorithm. For every startup edge u -> v (u
// depends on v), v appears before u in the result. Nodes that become
// ready at the same time are emitted in lexicographic ID order, so the
// result is fully deterministic for a given topology.
//
// Returns ErrCyclicDependency if no complete ordering exists.
func DeploymentOrder(p topology.Provider) ([]string, error) {
	nodes := p.AllNodes()
	if len(nodes) == 0 {
		return []string{}, nil
	}

	// In-degree of a node is its number of unmet startup dependencies:
	// outgoing startup edges to nodes present in the topology.
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)

	for _, node := range nodes {
		inDegree[node.ID] = 0
	}
	for _, edge := range p.AllEdges() {
		if !edge.Data.IsStartupDependency() {
			continue
		}
		if _, ok := inDegree[edge.From]; !ok {
			continue
		}
		if _, ok := inDegree[edge.To]; !ok {
			// Dangling target; dependency validation reports these.
			continue
		}
		inDegree[edge.From]++
		dependents[edge.To] = append(dependents[edge.To], edge.From)
	}

	// Seed with nodes that have no dependencies.
	var ready []string
	for _, node := range nodes {
		if inDegree[node.ID] == 0 {
			ready = append(ready, node.ID)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		result = append(result, id)

		inserted := false
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
				inserted = true
			}
		}
		if inserted {
			sort.Strings(ready)
		}
	}

	if len(result) != len(nodes) {
		return nil, fmt.Errorf("%w: cannot determine deployment order", ErrCyclicDependency)
	}

	return result, nil
}
