package workflow

import (
	"context"
	"log/slog"

	"investpath/internal/infrastructure"
	"investpath/internal/providers"
)

// Orchestrator drives sessions through the fixed step sequence. It
// enforces strict ordering, records results durably before advancing,
// and turns malformed requests into validation errors rather than
// crashes.
type Orchestrator struct {
	store    SessionStore
	registry *Registry
	catalog  *providers.Catalog
	logger   *slog.Logger
}

func NewOrchestrator(store SessionStore, registry *Registry, catalog *providers.Catalog, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		catalog:  catalog,
		logger:   logger,
	}
}

// StartWorkflow creates a fresh session at step 1.
func (o *Orchestrator) StartWorkflow(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, NewValidationError("user id is required")
	}
	session, err := o.store.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	o.logger.InfoContext(ctx, "workflow started",
		slog.String("session_id", session.ID),
		slog.String("user_id", userID))
	return session, nil
}

// ExecuteStep runs a step for a session. Only the session's current
// step may run, except a previously covered optional step, which may
// be re-executed. A result with Success=false is recorded and returned
// without advancing the session, leaving it retryable at the same
// step.
func (o *Orchestrator) ExecuteStep(ctx context.Context, sessionID string, stepID StepID, inputs Inputs) (*StepResult, error) {
	session, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	processor, ok := o.registry.Get(stepID)
	if !ok {
		return nil, NewValidationError("unknown step %q", stepID)
	}

	number := StepNumber(stepID)
	if number != session.CurrentStep && !(processor.Optional() && session.Completed(stepID)) {
		return nil, NewValidationError(
			"step %s (step %d) is out of sequence, session %s is at step %d",
			stepID, number, sessionID, session.CurrentStep)
	}

	if verdict := processor.ValidateInputs(inputs); !verdict.IsValid {
		return nil, NewValidationError("invalid inputs for step %s: %v", stepID, verdict.Errors)
	}

	env := &Env{Session: session, Store: o.store, Catalog: o.catalog, Logger: o.logger}
	result := processor.Execute(ctx, env, inputs)

	// Last write wins on concurrent retries of the same step.
	if err := o.store.SaveStepResult(ctx, sessionID, result); err != nil {
		return nil, NewInternalError("recording step result", err)
	}

	if result.Success {
		session.MarkCompleted(stepID)
		if err := o.store.Update(ctx, session); err != nil {
			return nil, NewInternalError("advancing session", err)
		}
	}

	infrastructure.ObserveStep(string(stepID), result.Success, result.Duration.Seconds())
	o.logger.InfoContext(ctx, "step executed",
		slog.String("session_id", sessionID),
		slog.String("step", string(stepID)),
		slog.Bool("success", result.Success),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// SkipOptionalStep covers an optional step with a placeholder result.
// Skipping a mandatory step is a validation error.
func (o *Orchestrator) SkipOptionalStep(ctx context.Context, sessionID string, stepID StepID) (*Session, error) {
	session, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	processor, ok := o.registry.Get(stepID)
	if !ok {
		return nil, NewValidationError("unknown step %q", stepID)
	}
	if !processor.Optional() {
		return nil, NewValidationError("step %s is mandatory and cannot be skipped", stepID)
	}
	if StepNumber(stepID) != session.CurrentStep {
		return nil, NewValidationError(
			"step %s is out of sequence, session %s is at step %d",
			stepID, sessionID, session.CurrentStep)
	}

	if err := o.store.SaveStepResult(ctx, sessionID, skippedResult(stepID)); err != nil {
		return nil, NewInternalError("recording skip", err)
	}
	session.MarkCompleted(stepID)
	if err := o.store.Update(ctx, session); err != nil {
		return nil, NewInternalError("advancing session", err)
	}

	o.logger.InfoContext(ctx, "step skipped",
		slog.String("session_id", sessionID),
		slog.String("step", string(stepID)))
	return session, nil
}

// ResetWorkflow returns the session to step 1 while preserving its
// identity. Stored step results are dropped so nothing from the prior
// run can be read back as live data.
func (o *Orchestrator) ResetWorkflow(ctx context.Context, sessionID string) (*Session, error) {
	session, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Reset()
	if err := o.store.DeleteStepResults(ctx, sessionID); err != nil {
		return nil, NewInternalError("clearing step results", err)
	}
	if err := o.store.Update(ctx, session); err != nil {
		return nil, NewInternalError("resetting session", err)
	}
	o.logger.InfoContext(ctx, "workflow reset", slog.String("session_id", sessionID))
	return session, nil
}

// Status is the read-only projection of a session served to clients.
type Status struct {
	SessionID      string        `json:"session_id"`
	UserID         string        `json:"user_id"`
	Status         SessionStatus `json:"status"`
	CurrentStep    int           `json:"current_step"`
	TotalSteps     int           `json:"total_steps"`
	CompletedSteps []StepID      `json:"completed_steps"`
	Progress       float64       `json:"progress"`
	CanProceed     bool          `json:"can_proceed"`
	NextStep       *NextStep     `json:"next_step,omitempty"`
}

// NextStep describes what the upcoming step requires.
type NextStep struct {
	StepID      StepID       `json:"step_id"`
	Name        string       `json:"name"`
	Optional    bool         `json:"optional"`
	Description string       `json:"description"`
	Inputs      []InputField `json:"inputs,omitempty"`
}

// GetWorkflowStatus projects a session without mutating it.
func (o *Orchestrator) GetWorkflowStatus(ctx context.Context, sessionID string) (*Status, error) {
	session, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		SessionID:      session.ID,
		UserID:         session.UserID,
		Status:         session.Status,
		CurrentStep:    session.CurrentStep,
		TotalSteps:     TotalSteps,
		CompletedSteps: session.CompletedSteps,
		Progress:       session.Progress(),
	}

	if id := StepAt(session.CurrentStep); id != "" {
		if processor, ok := o.registry.Get(id); ok {
			status.CanProceed = true
			status.NextStep = &NextStep{
				StepID:      id,
				Name:        processor.Name(),
				Optional:    processor.Optional(),
				Description: processor.Description(),
				Inputs:      processor.InputSchema(),
			}
		}
	}
	return status, nil
}

// GetStepResult returns a session's stored result for one step.
func (o *Orchestrator) GetStepResult(ctx context.Context, sessionID string, stepID StepID) (*StepResult, error) {
	if StepNumber(stepID) == 0 {
		return nil, NewValidationError("unknown step %q", stepID)
	}
	if _, err := o.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return o.store.GetStepResult(ctx, sessionID, stepID)
}

// ListSessions returns a user's session history.
func (o *Orchestrator) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	if userID == "" {
		return nil, NewValidationError("user id is required")
	}
	return o.store.ListByUser(ctx, userID)
}

// Store exposes the session store for the profile endpoints, which map
// straight onto it.
func (o *Orchestrator) Store() SessionStore { return o.store }
