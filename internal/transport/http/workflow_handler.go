package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apierrors "investpath/internal/errors"
	"investpath/internal/middleware"
	"investpath/internal/workflow"
)

var validate = validator.New()

// WorkflowHandler handles workflow session and step endpoints.
type WorkflowHandler struct {
	orchestrator *workflow.Orchestrator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(orchestrator *workflow.Orchestrator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *WorkflowHandler {
	if orchestrator == nil {
		panic("orchestrator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowHandler{
		orchestrator: orchestrator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "workflow")),
	}
}

// StartWorkflowRequest starts a new research session for a user.
type StartWorkflowRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Bind implements the render.Binder interface.
func (req *StartWorkflowRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// ExecuteStepRequest carries the step inputs. Inputs are free-form;
// each step validates its own schema.
type ExecuteStepRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// Bind implements the render.Binder interface.
func (req *ExecuteStepRequest) Bind(r *http.Request) error {
	return nil
}

// Routes returns a chi router for the workflow endpoints.
func (h *WorkflowHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/start", h.StartWorkflow)
	r.Get("/sessions", h.ListSessions)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Post("/reset", h.ResetWorkflow)
		r.Route("/steps/{stepID}", func(r chi.Router) {
			r.Post("/execute", h.ExecuteStep)
			r.Post("/skip", h.SkipStep)
			r.Get("/result", h.GetStepResult)
		})
	})

	return r
}

// StartWorkflow handles POST /api/workflow/start.
func (h *WorkflowHandler) StartWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("workflow-handler")

	ctx, span := tracer.Start(ctx, "workflow_handler.start",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/workflow/start"),
		),
	)
	defer span.End()

	data := &StartWorkflowRequest{}
	if err := render.Bind(r, data); err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r.WithContext(ctx), workflow.NewValidationError("user_id is required"))
		return
	}

	session, err := h.orchestrator.StartWorkflow(ctx, data.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "start workflow failed")
		h.errorHandler.HandleError(w, r.WithContext(ctx), err)
		return
	}

	span.SetAttributes(attribute.String("session.id", session.ID))
	h.logger.InfoContext(ctx, "workflow started",
		slog.String("session_id", session.ID),
		slog.String("user_id", session.UserID),
		slog.String("request_id", middleware.GetRequestID(ctx)),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, session)
}

// ExecuteStep handles POST /api/workflow/{sessionID}/steps/{stepID}/execute.
func (h *WorkflowHandler) ExecuteStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")
	stepID := workflow.StepID(chi.URLParam(r, "stepID"))
	tracer := otel.Tracer("workflow-handler")

	ctx, span := tracer.Start(ctx, "workflow_handler.execute_step",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("step.id", string(stepID)),
		),
	)
	defer span.End()

	// An absent body is fine; several steps take no inputs.
	data := &ExecuteStepRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, data); err != nil {
			span.RecordError(err)
			h.errorHandler.HandleError(w, r.WithContext(ctx), workflow.NewValidationError("malformed request body: %v", err))
			return
		}
	}

	result, err := h.orchestrator.ExecuteStep(ctx, sessionID, stepID, workflow.Inputs(data.Inputs))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step execution failed")
		h.errorHandler.HandleError(w, r.WithContext(ctx), err)
		return
	}

	span.SetAttributes(attribute.Bool("step.success", result.Success))
	h.logger.InfoContext(ctx, "step executed",
		slog.String("session_id", sessionID),
		slog.String("step", string(stepID)),
		slog.Bool("success", result.Success),
	)

	render.JSON(w, r, result)
}

// SkipStep handles POST /api/workflow/{sessionID}/steps/{stepID}/skip.
func (h *WorkflowHandler) SkipStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")
	stepID := workflow.StepID(chi.URLParam(r, "stepID"))
	tracer := otel.Tracer("workflow-handler")

	ctx, span := tracer.Start(ctx, "workflow_handler.skip_step",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("step.id", string(stepID)),
		),
	)
	defer span.End()

	session, err := h.orchestrator.SkipOptionalStep(ctx, sessionID, stepID)
	if err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "step skipped",
		slog.String("session_id", sessionID),
		slog.String("step", string(stepID)),
	)

	render.JSON(w, r, session)
}

// GetStatus handles GET /api/workflow/{sessionID}/status.
func (h *WorkflowHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.orchestrator.GetWorkflowStatus(ctx, sessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, status)
}

// GetStepResult handles GET /api/workflow/{sessionID}/steps/{stepID}/result.
func (h *WorkflowHandler) GetStepResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")
	stepID := workflow.StepID(chi.URLParam(r, "stepID"))

	result, err := h.orchestrator.GetStepResult(ctx, sessionID, stepID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// ResetWorkflow handles POST /api/workflow/{sessionID}/reset.
func (h *WorkflowHandler) ResetWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")
	tracer := otel.Tracer("workflow-handler")

	ctx, span := tracer.Start(ctx, "workflow_handler.reset",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	session, err := h.orchestrator.ResetWorkflow(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "workflow reset", slog.String("session_id", sessionID))
	render.JSON(w, r, session)
}

// ListSessions handles GET /api/workflow/sessions?user_id=...
func (h *WorkflowHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")

	sessions, err := h.orchestrator.ListSessions(ctx, userID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
