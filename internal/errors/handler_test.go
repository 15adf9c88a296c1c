package errors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/providers"
	"investpath/internal/workflow"
)

func testHandler(t *testing.T) *ErrorHandler {
	t.Helper()
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorWorkflowValidation(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/abc/steps/macro/execute", nil)

	h.HandleError(rec, req, workflow.NewValidationError("step 2 cannot run before step 1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "step 2 cannot run before step 1", body["detail"])
}

func TestHandleErrorSessionNotFound(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/workflow/missing/status", nil)

	h.HandleError(rec, req, workflow.NewNotFoundError("session %s not found", "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeSessionNotFound, body["type"])
}

func TestHandleErrorProviderRateLimit(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/abc/steps/fundamentals/execute", nil)

	h.HandleError(rec, req, providers.NewRateLimitError("finnhub", 30*time.Second))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeRateLimit, body["type"])
	assert.Equal(t, "finnhub", body["provider"])
	assert.Equal(t, float64(30), body["retry_after_seconds"])
}

func TestHandleErrorChainExhausted(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/abc/steps/sectors/execute", nil)

	err := &providers.ExhaustedError{Need: "sector-data"}
	h.HandleError(rec, req, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeDataUnavailable, body["type"])
	assert.Equal(t, "sector-data", body["need"])
}

func TestHandleErrorTimeout(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/workflow/abc/status", nil)

	h.HandleError(rec, req, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, TypeTimeout, decodeProblem(t, rec)["type"])
}

func TestHandleErrorUnknown(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/workflow/abc/status", nil)

	h.HandleError(rec, req, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	// Foreign error details stay out of the response body.
	assert.NotContains(t, body["detail"], assert.AnError.Error())
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad input", "/api/x").
		WithExtension("field", "capital_available")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "capital_available", body["field"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}

func TestNotFoundHandler(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])
}
