package store

import (
	"context"
	"time"

	"github.com/gridplan/gridplan/internal/core/plan"
)

// =============================================================================
// Store Interface
// =============================================================================

// StoredPlan is a translated deployment specification persisted with
// metadata about its origin.
type StoredPlan struct {
	ID        string
	Name      string
	Source    string // "manifest" or "compose"
	NodeCount int
	Spec      *plan.NixDeploymentSpec
	CreatedAt time.Time
}

// Store persists emitted deployment plans. Topology snapshots are
// never stored; only the compiled output is.
type Store interface {
	// CreatePlan persists a new plan.
	CreatePlan(ctx context.Context, p *StoredPlan) error

	// GetPlan returns the plan with the given ID.
	GetPlan(ctx context.Context, id string) (*StoredPlan, error)

	// ListPlans returns all plans, newest first.
	ListPlans(ctx context.Context) ([]*StoredPlan, error)

	// DeletePlan removes the plan with the given ID.
	DeletePlan(ctx context.Context, id string) error

	// Close releases the underlying resources.
	Close() error
}
