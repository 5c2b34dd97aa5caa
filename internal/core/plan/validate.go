package plan

import (
	"fmt"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Validation Engine
// =============================================================================

// Validate gates a topology behind six structural checks, run in a
// fixed order. The first failing check aborts the whole call and its
// error is returned verbatim (fail-fast); a nil return means the
// topology is deployable within the given limits.
//
// Check order:
//  1. Cycle detection over startup-dependency edges
//  2. Dependency completeness (required DependsOn and LoadBalances targets)
//  3. Global port conflicts
//  4. Resource budget against limits
//  5. Storage write-exclusivity per mount path
//  6. Per-variant node configuration sanity
func Validate(p topology.Provider, limits Limits) error {
	if err := checkCycles(p); err != nil {
		return err
	}
	if err := checkDependencies(p); err != nil {
		return err
	}
	if err := checkPortConflicts(p); err != nil {
		return err
	}
	if err := checkResourceBudget(p, limits); err != nil {
		return err
	}
	if err := checkStorageConflicts(p); err != nil {
		return err
	}
	return checkNodeConfigurations(p)
}

// =============================================================================
// Check 1: Cycle Detection
// =============================================================================

// checkCycles runs a depth-first search restricted to startup-dependency
// edges. A back-edge into a node still on the recursion stack is a cycle.
func checkCycles(p topology.Provider) error {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	for _, node := range p.AllNodes() {
		if visited[node.ID] {
			continue
		}
		if cycleDFS(p, node.ID, visited, onStack) {
			return fmt.Errorf("%w: topology contains circular startup dependencies", ErrCyclicDependency)
		}
	}

	return nil
}

func cycleDFS(p topology.Provider, id string, visited, onStack map[string]bool) bool {
	visited[id] = true
	onStack[id] = true

	for _, edge := range p.EdgesFrom(id) {
		if !edge.Data.IsStartupDependency() {
			continue
		}
		if !visited[edge.To] {
			if cycleDFS(p, edge.To, visited, onStack) {
				return true
			}
		} else if onStack[edge.To] {
			return true
		}
	}

	onStack[id] = false
	return false
}

// =============================================================================
// Check 2: Dependency Completeness
// =============================================================================

// checkDependencies verifies that every required DependsOn edge and
// every LoadBalances edge targets a node present in the topology.
func checkDependencies(p topology.Provider) error {
	ids := make(map[string]bool)
	for _, node := range p.AllNodes() {
		ids[node.ID] = true
	}

	for _, edge := range p.AllEdges() {
		switch data := edge.Data.(type) {
		case topology.DependsOn:
			if data.Required && !ids[edge.To] {
				return &MissingDependencyError{From: edge.From, To: edge.To}
			}
		case topology.LoadBalances:
			if !ids[edge.To] {
				return &MissingDependencyError{From: edge.From, To: edge.To}
			}
		}
	}

	return nil
}

// =============================================================================
// Check 3: Port Conflicts
// =============================================================================

// checkPortConflicts aggregates exposed ports across all nodes. Ports
// are global to the topology; any port claimed twice is a conflict.
func checkPortConflicts(p topology.Provider) error {
	usage := make(map[int][]string)
	var ports []int

	for _, node := range p.AllNodes() {
		for _, port := range node.Data.ExposedPorts() {
			if len(usage[port]) == 0 {
				ports = append(ports, port)
			}
			usage[port] = append(usage[port], node.Data.NodeName())
		}
	}

	// Report the first conflicting port in discovery order.
	for _, port := range ports {
		if services := usage[port]; len(services) > 1 {
			return &PortConflictError{Port: port, Services: services}
		}
	}

	return nil
}

// =============================================================================
// Check 4: Resource Budget
// =============================================================================

// checkResourceBudget sums per-node resource requirements and compares
// each dimension against the configured ceiling. The first exceeded
// dimension fails the check.
func checkResourceBudget(p topology.Provider, limits Limits) error {
	var totalCPU float64
	var totalMemoryMB int64
	var totalDiskGB int64

	for _, node := range p.AllNodes() {
		res, ok := node.Data.Resources()
		if !ok {
			continue
		}
		totalCPU += res.CPUCores
		totalMemoryMB += res.MemoryMB
		totalDiskGB += res.DiskGB
	}

	if limits.MaxCPUCores > 0 && totalCPU > limits.MaxCPUCores {
		return fmt.Errorf("%w: total CPU cores (%.1f) exceeds limit (%.1f)",
			ErrResourceLimitExceeded, totalCPU, limits.MaxCPUCores)
	}
	if limits.MaxMemoryMB > 0 && totalMemoryMB > limits.MaxMemoryMB {
		return fmt.Errorf("%w: total memory (%dMB) exceeds limit (%dMB)",
			ErrResourceLimitExceeded, totalMemoryMB, limits.MaxMemoryMB)
	}
	if limits.MaxDiskGB > 0 && totalDiskGB > limits.MaxDiskGB {
		return fmt.Errorf("%w: total disk (%dGB) exceeds limit (%dGB)",
			ErrResourceLimitExceeded, totalDiskGB, limits.MaxDiskGB)
	}

	return nil
}

// =============================================================================
// Check 5: Storage Conflicts
// =============================================================================

// checkStorageConflicts groups writable volume mounts by mount path.
// More than one distinct writer to the same path is a conflict;
// read-only mounts never conflict.
func checkStorageConflicts(p topology.Provider) error {
	writers := make(map[string][]string)
	var paths []string

	for _, edge := range p.AllEdges() {
		mount, ok := edge.Data.(topology.MountsVolume)
		if !ok || mount.ReadOnly {
			continue
		}
		if len(writers[mount.MountPath]) == 0 {
			paths = append(paths, mount.MountPath)
		}
		writers[mount.MountPath] = append(writers[mount.MountPath], edge.From)
	}

	for _, path := range paths {
		if ws := writers[path]; len(ws) > 1 {
			return &StorageConflictError{Path: path, Writers: ws}
		}
	}

	return nil
}

// =============================================================================
// Check 6: Node Configuration Sanity
// =============================================================================

// checkNodeConfigurations runs variant-specific structural checks.
func checkNodeConfigurations(p topology.Provider) error {
	for _, node := range p.AllNodes() {
		if node.Data.NodeName() == "" {
			return fmt.Errorf("%w: node %q has no name", ErrInvalidNodeConfig, node.ID)
		}

		switch data := node.Data.(type) {
		case topology.Service:
			if data.Command == "" {
				return fmt.Errorf("%w: service %q has empty command", ErrInvalidNodeConfig, data.Name)
			}
		case topology.Database:
			if data.Version == "" {
				return fmt.Errorf("%w: database %q has no version specified", ErrInvalidNodeConfig, data.Name)
			}
		case topology.MessageBus:
			if data.ClusterSize < 1 {
				return fmt.Errorf("%w: message bus %q cluster size must be at least 1", ErrInvalidNodeConfig, data.Name)
			}
		case topology.LoadBalancer:
			if len(data.Backends) == 0 {
				return fmt.Errorf("%w: load balancer %q must have at least one backend", ErrInvalidNodeConfig, data.Name)
			}
		}
	}

	return nil
}
