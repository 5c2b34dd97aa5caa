package plan

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrCyclicDependency is returned when startup dependencies form a cycle.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrMissingDependency is returned when a required edge targets a
	// node that does not exist in the topology.
	ErrMissingDependency = errors.New("missing required dependency")

	// ErrInvalidNodeConfig is returned when a node fails its
	// variant-specific structural checks.
	ErrInvalidNodeConfig = errors.New("invalid node configuration")

	// ErrPortConflict is returned when two nodes claim the same port.
	ErrPortConflict = errors.New("port conflict")

	// ErrResourceLimitExceeded is returned when the summed resource
	// footprint exceeds a configured ceiling.
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")

	// ErrInvalidEdge is returned when an edge is structurally invalid.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrOrphanedNode is returned when a node has no connections.
	ErrOrphanedNode = errors.New("orphaned node")

	// ErrStorageConflict is returned when two writers claim the same
	// mount path.
	ErrStorageConflict = errors.New("storage conflict")
)

// MissingDependencyError reports a required reference to a node that
// is absent from the topology.
type MissingDependencyError struct {
	From string
	To   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing required dependency: %s requires %s", e.From, e.To)
}

func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}

// PortConflictError reports a port claimed by more than one node.
type PortConflictError struct {
	Port     int
	Services []string
}

func (e *PortConflictError) Error() string {
	return fmt.Sprintf("port conflict: %d is used by multiple services: %v", e.Port, e.Services)
}

func (e *PortConflictError) Unwrap() error {
	return ErrPortConflict
}

// StorageConflictError reports a mount path with more than one writer.
type StorageConflictError struct {
	Path    string
	Writers []string
}

func (e *StorageConflictError) Error() string {
	return fmt.Sprintf("storage conflict: %s is mounted writable by multiple services: %v", e.Path, e.Writers)
}

func (e *StorageConflictError) Unwrap() error {
	return ErrStorageConflict
}
