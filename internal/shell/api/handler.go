// Package api provides HTTP handlers for the gridplan API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/gridplan/gridplan/internal/core/ingest"
	"github.com/gridplan/gridplan/internal/core/plan"
	"github.com/gridplan/gridplan/internal/core/topology"
	"github.com/gridplan/gridplan/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store  store.Store
	limits plan.Limits
	logger *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, limits plan.Limits, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:  s,
		limits: limits,
		logger: l,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Post("/", h.handleCreatePlan)
			r.Get("/", h.handleListPlans)
			r.Post("/validate", h.handleValidate)
			r.Post("/order", h.handleOrder)
			r.Get("/{id}", h.handleGetPlan)
			r.Delete("/{id}", h.handleDeletePlan)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Plan Handlers
// =============================================================================

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	graph, source, ok := h.ingestTopology(w, req.Format, req.Topology)
	if !ok {
		return
	}

	spec, err := plan.NewTranslator(h.limits).Translate(graph)
	if err != nil {
		h.writePlanError(w, err)
		return
	}

	name := req.Name
	id := "plan_" + uuid.New().String()[:8]
	if name == "" {
		name = id
	}

	stored := &store.StoredPlan{
		ID:        id,
		Name:      name,
		Source:    source,
		NodeCount: graph.NodeCount(),
		Spec:      spec,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreatePlan(r.Context(), stored); err != nil {
		h.logger.Error("failed to store plan", "plan_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to store plan", "store_error")
		return
	}

	h.logger.Info("plan created",
		"plan_id", id,
		"source", source,
		"nodes", stored.NodeCount,
	)

	h.writeJSON(w, http.StatusCreated, planToResponse(stored))
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.ListPlans(r.Context())
	if err != nil {
		h.logger.Error("failed to list plans", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list plans", "store_error")
		return
	}

	out := PlanListResponse{Plans: make([]PlanSummary, 0, len(plans))}
	for _, p := range plans {
		out.Plans = append(out.Plans, PlanSummary{
			ID:        p.ID,
			Name:      p.Name,
			Source:    p.Source,
			NodeCount: p.NodeCount,
			CreatedAt: p.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.GetPlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "plan not found", "not_found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get plan", "plan_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get plan", "store_error")
		return
	}

	h.writeJSON(w, http.StatusOK, planToResponse(p))
}

func (h *Handler) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.DeletePlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "plan not found", "not_found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete plan", "plan_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete plan", "store_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Validation Handlers
// =============================================================================

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	graph, _, ok := h.ingestTopology(w, req.Format, req.Topology)
	if !ok {
		return
	}

	if err := plan.Validate(graph, h.limits); err != nil {
		h.writeJSON(w, http.StatusOK, ValidateResponse{
			Valid: false,
			Error: err.Error(),
			Code:  planErrorCode(err),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}

func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	graph, _, ok := h.ingestTopology(w, req.Format, req.Topology)
	if !ok {
		return
	}

	order, err := plan.DeploymentOrder(graph)
	if err != nil {
		h.writePlanError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, OrderResponse{Order: order})
}

// =============================================================================
// Helpers
// =============================================================================

// ingestTopology decodes the request topology. On failure it writes the
// error response and returns ok=false.
func (h *Handler) ingestTopology(w http.ResponseWriter, format, content string) (*topology.Graph, string, bool) {
	switch format {
	case "", "manifest":
		graph, err := ingest.ParseManifest(content)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "parse_error")
			return nil, "", false
		}
		return graph, "manifest", true

	case "compose":
		graph, err := ingest.ParseComposeTopology(content)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "parse_error")
			return nil, "", false
		}
		return graph, "compose", true

	default:
		h.writeError(w, http.StatusBadRequest, "unknown topology format: "+format, "validation_error")
		return nil, "", false
	}
}

// writePlanError maps a validation or ordering failure to 422.
func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	h.writeError(w, http.StatusUnprocessableEntity, err.Error(), planErrorCode(err))
}

// planErrorCode maps the error taxonomy to stable API codes.
func planErrorCode(err error) string {
	switch {
	case errors.Is(err, plan.ErrCyclicDependency):
		return "cyclic_dependency"
	case errors.Is(err, plan.ErrMissingDependency):
		return "missing_dependency"
	case errors.Is(err, plan.ErrPortConflict):
		return "port_conflict"
	case errors.Is(err, plan.ErrResourceLimitExceeded):
		return "resource_limit_exceeded"
	case errors.Is(err, plan.ErrStorageConflict):
		return "storage_conflict"
	case errors.Is(err, plan.ErrInvalidNodeConfig):
		return "invalid_node_config"
	case errors.Is(err, plan.ErrInvalidEdge):
		return "invalid_edge"
	case errors.Is(err, plan.ErrOrphanedNode):
		return "orphaned_node"
	default:
		return "invalid_topology"
	}
}

func planToResponse(p *store.StoredPlan) PlanResponse {
	return PlanResponse{
		ID:        p.ID,
		Name:      p.Name,
		Source:    p.Source,
		NodeCount: p.NodeCount,
		Spec:      p.Spec,
		CreatedAt: p.CreatedAt,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
