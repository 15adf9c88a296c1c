package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "investpath/internal/errors"
	"investpath/internal/providers"
	"investpath/internal/store"
	"investpath/internal/workflow"
)

// echoStep is a scriptable processor registered under a real step ID.
type echoStep struct {
	id       workflow.StepID
	optional bool
	fail     bool
}

func (s *echoStep) ID() workflow.StepID           { return s.id }
func (s *echoStep) Name() string                  { return string(s.id) }
func (s *echoStep) Optional() bool                { return s.optional }
func (s *echoStep) Description() string           { return "test step" }
func (s *echoStep) InputSchema() []workflow.InputField { return nil }

func (s *echoStep) ValidateInputs(inputs workflow.Inputs) workflow.ValidationResult {
	return workflow.ValidationResult{IsValid: true}
}

func (s *echoStep) Execute(ctx context.Context, env *workflow.Env, inputs workflow.Inputs) *workflow.StepResult {
	result := &workflow.StepResult{
		StepID:    s.id,
		Success:   !s.fail,
		StartedAt: time.Now().UTC(),
	}
	if s.fail {
		result.Errors = []string{"scripted failure"}
	}
	return result
}

func testRouter(t *testing.T) (chi.Router, *workflow.Orchestrator) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := workflow.NewRegistry()
	for _, id := range workflow.StepIDs() {
		step := &echoStep{id: id, optional: id == workflow.StepTechnicals}
		require.NoError(t, registry.Register(step))
	}

	catalog := providers.NewCatalog(providers.NewCache())
	orchestrator := workflow.NewOrchestrator(store.NewMemory(), registry, catalog, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Mount("/api/workflow", NewWorkflowHandler(orchestrator, errorHandler, logger).Routes())
	return r, orchestrator
}

func startSession(t *testing.T, router chi.Router) string {
	t.Helper()
	body := bytes.NewBufferString(`{"user_id":"user-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/start", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session workflow.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session.ID
}

func TestStartWorkflow(t *testing.T) {
	router, _ := testRouter(t)

	id := startSession(t, router)
	assert.NotEmpty(t, id)
}

func TestStartWorkflowRequiresUserID(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/start", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apierrors.TypeValidation)
}

func TestExecuteStepAdvancesSession(t *testing.T) {
	router, _ := testRouter(t)
	id := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/steps/profile/execute",
		bytes.NewBufferString(`{"inputs":{"capital_available":100000}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result workflow.StepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, workflow.StepProfile, result.StepID)

	// Status now points at step 2.
	statusReq := httptest.NewRequest(http.MethodGet, "/api/workflow/"+id+"/status", nil)
	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, statusReq)
	require.Equal(t, http.StatusOK, statusRec.Code)

	var status workflow.Status
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.CurrentStep)
}

func TestExecuteStepWithoutBody(t *testing.T) {
	router, _ := testRouter(t)
	id := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/steps/profile/execute", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestExecuteStepOutOfSequence(t *testing.T) {
	router, _ := testRouter(t)
	id := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/steps/valuation/execute", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apierrors.TypeValidation)
}

func TestExecuteStepUnknownSession(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/nope/steps/profile/execute", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSkipMandatoryStepRejected(t *testing.T) {
	router, _ := testRouter(t)
	id := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/steps/profile/skip", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetWorkflow(t *testing.T) {
	router, orchestrator := testRouter(t)
	id := startSession(t, router)

	_, err := orchestrator.ExecuteStep(context.Background(), id, workflow.StepProfile, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var session workflow.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, 1, session.CurrentStep)
	assert.Empty(t, session.CompletedSteps)

	req = httptest.NewRequest(http.MethodGet, "/api/workflow/"+id+"/steps/profile/result", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessionsRequiresUserID(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStepResult(t *testing.T) {
	router, orchestrator := testRouter(t)
	id := startSession(t, router)

	_, err := orchestrator.ExecuteStep(context.Background(), id, workflow.StepProfile, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/"+id+"/steps/profile/result", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result workflow.StepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
}
