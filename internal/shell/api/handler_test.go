package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplan/gridplan/internal/core/plan"
	"github.com/gridplan/gridplan/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

const webStackManifest = `
nodes:
  - id: api
    type: service
    command: server
    port: 8080
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

const cyclicManifest = `
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
  - from: b
    to: a
    type: depends_on
`

const portConflictManifest = `
nodes:
  - id: web
    type: service
    command: serve
    port: 8080
  - id: admin
    type: service
    command: serve
    port: 8080
`

const composeStack = `
services:
  web:
    image: nginx:latest
    ports:
      - "80:80"
    depends_on:
      - api
  api:
    image: myapp:1.0
`

func setupTestHandler(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return NewHandler(s, plan.DefaultLimits(), nil).Routes()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHandler_Health(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
}

func TestHandler_Ready(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ReadyResponse](t, rec)
	assert.Equal(t, "ready", body.Status)
}

// =============================================================================
// Create Plan Tests
// =============================================================================

func TestHandler_CreatePlan(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Name:     "web stack",
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[PlanResponse](t, rec)
	assert.True(t, strings.HasPrefix(body.ID, "plan_"))
	assert.Equal(t, "web stack", body.Name)
	assert.Equal(t, "manifest", body.Source)
	assert.Equal(t, 2, body.NodeCount)
	require.NotNil(t, body.Spec)
	require.Len(t, body.Spec.Services, 1)
	assert.Equal(t, "api", body.Spec.Services[0].Name)
	require.Len(t, body.Spec.Databases, 1)
	assert.Equal(t, 5432, body.Spec.Databases[0].Port)
}

func TestHandler_CreatePlan_NameDefaultsToID(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[PlanResponse](t, rec)
	assert.Equal(t, body.ID, body.Name)
}

func TestHandler_CreatePlan_ComposeFormat(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Name:     "compose stack",
		Format:   "compose",
		Topology: composeStack,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[PlanResponse](t, rec)
	assert.Equal(t, "compose", body.Source)
	assert.Equal(t, 2, body.NodeCount)
}

func TestHandler_CreatePlan_InvalidJSON(t *testing.T) {
	handler := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", body.Code)
}

func TestHandler_CreatePlan_ParseError(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Topology: "nodes: [[[",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "parse_error", body.Code)
}

func TestHandler_CreatePlan_UnknownFormat(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Format:   "terraform",
		Topology: webStackManifest,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreatePlan_CyclicTopology(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Topology: cyclicManifest,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "cyclic_dependency", body.Code)
}

// =============================================================================
// Get / List / Delete Tests
// =============================================================================

func TestHandler_GetPlan(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Name:     "web stack",
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[PlanResponse](t, rec)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/plans/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[PlanResponse](t, rec)
	assert.Equal(t, created.ID, body.ID)
	assert.Equal(t, "web stack", body.Name)
}

func TestHandler_GetPlan_NotFound(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/plans/plan_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "not_found", body.Code)
}

func TestHandler_ListPlans(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[PlanListResponse](t, rec).Plans)

	for _, name := range []string{"first", "second"} {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
			Name:     name,
			Topology: webStackManifest,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[PlanListResponse](t, rec)
	assert.Len(t, body.Plans, 2)
}

func TestHandler_DeletePlan(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans", CreatePlanRequest{
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[PlanResponse](t, rec)

	rec = doRequest(t, handler, http.MethodDelete, "/api/v1/plans/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/plans/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_DeletePlan_NotFound(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodDelete, "/api/v1/plans/plan_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestHandler_Validate_Valid(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans/validate", ValidateRequest{
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ValidateResponse](t, rec)
	assert.True(t, body.Valid)
	assert.Empty(t, body.Code)
}

func TestHandler_Validate_PortConflict(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans/validate", ValidateRequest{
		Topology: portConflictManifest,
	})
	require.Equal(t, http.StatusOK, rec.Code, "validation failures are a 200 with valid=false")

	body := decodeBody[ValidateResponse](t, rec)
	assert.False(t, body.Valid)
	assert.Equal(t, "port_conflict", body.Code)
	assert.Contains(t, body.Error, "8080")
}

func TestHandler_Validate_Cycle(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans/validate", ValidateRequest{
		Topology: cyclicManifest,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ValidateResponse](t, rec)
	assert.False(t, body.Valid)
	assert.Equal(t, "cyclic_dependency", body.Code)
}

// =============================================================================
// Order Tests
// =============================================================================

func TestHandler_Order(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans/order", ValidateRequest{
		Topology: webStackManifest,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[OrderResponse](t, rec)
	assert.Equal(t, []string{"db", "api"}, body.Order)
}

func TestHandler_Order_Cycle(t *testing.T) {
	handler := setupTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/plans/order", ValidateRequest{
		Topology: cyclicManifest,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "cyclic_dependency", body.Code)
}
