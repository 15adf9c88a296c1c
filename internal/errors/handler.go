package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"investpath/internal/providers"
	"investpath/internal/workflow"
)

// ErrorHandler converts internal errors to RFC 7807 responses.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack attaches
// stack traces to responses; keep it off outside development.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes its RFC 7807 representation.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem maps an error to RFC 7807 Problem Details. Workflow
// errors carry kinds; provider errors are surfaced as upstream data
// failures rather than internal ones.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		return h.workflowProblem(wfErr, r)
	}

	var exhausted *providers.ExhaustedError
	if errors.As(err, &exhausted) {
		return NewProblemDetails(
			http.StatusBadGateway,
			TypeDataUnavailable,
			"Data Unavailable",
			exhausted.Error(),
			r.URL.Path,
		).WithExtension("need", exhausted.Need)
	}

	var fetchErr *providers.FetchError
	if errors.As(err, &fetchErr) {
		return h.providerProblem(fetchErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

func (h *ErrorHandler) workflowProblem(err *workflow.Error, r *http.Request) *ProblemDetails {
	switch err.Kind {
	case workflow.ErrorKindValidation:
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			err.Message,
			r.URL.Path,
		)
	case workflow.ErrorKindNotFound:
		return NewProblemDetails(
			http.StatusNotFound,
			TypeSessionNotFound,
			"Not Found",
			err.Message,
			r.URL.Path,
		)
	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			err.Message,
			r.URL.Path,
		)
	}
}

func (h *ErrorHandler) providerProblem(err *providers.FetchError, r *http.Request) *ProblemDetails {
	switch err.Kind {
	case providers.ErrorKindRateLimit:
		problem := NewProblemDetails(
			http.StatusTooManyRequests,
			TypeRateLimit,
			"Upstream Rate Limit",
			err.Error(),
			r.URL.Path,
		).WithExtension("provider", err.Provider)
		if err.RetryIn > 0 {
			problem.WithExtension("retry_after_seconds", int(err.RetryIn.Seconds()))
		}
		return problem
	case providers.ErrorKindNotFound:
		return NewProblemDetails(
			http.StatusNotFound,
			TypeNotFound,
			"Not Found",
			err.Error(),
			r.URL.Path,
		).WithExtension("provider", err.Provider)
	default:
		return NewProblemDetails(
			http.StatusBadGateway,
			TypeDataUnavailable,
			"Data Unavailable",
			err.Error(),
			r.URL.Path,
		).WithExtension("provider", err.Provider)
	}
}

// HandlePanic recovers from panics and writes an RFC 7807 error.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound is the router's fallback 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed is the router's fallback 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeValidation,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 8*1024)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
