package api

import (
	"time"

	"github.com/gridplan/gridplan/internal/core/plan"
)

// =============================================================================
// Request Types
// =============================================================================

// CreatePlanRequest is the request body for compiling and storing a plan.
type CreatePlanRequest struct {
	Name     string `json:"name,omitempty"`
	Format   string `json:"format,omitempty"` // "manifest" (default) or "compose"
	Topology string `json:"topology"`
}

// ValidateRequest is the request body for validation-only calls.
type ValidateRequest struct {
	Format   string `json:"format,omitempty"`
	Topology string `json:"topology"`
}

// =============================================================================
// Response Types
// =============================================================================

// PlanResponse is the response for plan operations.
type PlanResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Source    string                  `json:"source"`
	NodeCount int                     `json:"node_count"`
	Spec      *plan.NixDeploymentSpec `json:"spec"`
	CreatedAt time.Time               `json:"created_at"`
}

// PlanListResponse is the response for listing plans.
type PlanListResponse struct {
	Plans []PlanSummary `json:"plans"`
}

// PlanSummary is a plan without its full specification.
type PlanSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateResponse reports the outcome of a validation-only call.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// OrderResponse reports a computed deployment order.
type OrderResponse struct {
	Order []string `json:"order"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for the readiness endpoint.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
