package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"investpath/internal/providers"
)

// Inputs is the JSON-like input bag a client submits for one step.
type Inputs map[string]any

// String reads a string input, trimmed; ok=false when absent or not a
// string.
func (in Inputs) String(name string) (string, bool) {
	raw, exists := in[name]
	if !exists {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Number reads a numeric input, accepting both JSON float64 and int.
func (in Inputs) Number(name string) (float64, bool) {
	switch v := in[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bool reads a boolean input.
func (in Inputs) Bool(name string) (bool, bool) {
	v, ok := in[name].(bool)
	return v, ok
}

// StringSlice reads a list-of-strings input, tolerating []any from
// JSON decoding.
func (in Inputs) StringSlice(name string) ([]string, bool) {
	switch v := in[name].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// InputField describes one accepted input for schema introspection.
type InputField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// ValidationResult is a processor's verdict on an input bag.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

func valid() ValidationResult { return ValidationResult{IsValid: true} }

func invalid(errs ...string) ValidationResult {
	return ValidationResult{IsValid: false, Errors: errs}
}

// Env is the execution environment handed to a processor: the session
// being advanced plus the shared collaborators. Prior step artifacts
// are reachable through the store.
type Env struct {
	Session *Session
	Store   SessionStore
	Catalog *providers.Catalog
	Logger  *slog.Logger
}

// PriorData returns a previously recorded successful step's data, or
// an error describing what is missing.
func (e *Env) PriorData(ctx context.Context, id StepID) (*StepData, error) {
	result, err := e.Store.GetStepResult(ctx, e.Session.ID, id)
	if err != nil {
		return nil, fmt.Errorf("step %s has no recorded result: %w", id, err)
	}
	if !result.Success || result.Data == nil {
		return nil, fmt.Errorf("step %s did not produce usable data", id)
	}
	return result.Data, nil
}

// StepProcessor is the uniform contract all twelve steps implement.
// Execute never returns an error for expected failure modes; those are
// captured in the result's Errors/Warnings with Success set
// accordingly.
type StepProcessor interface {
	ID() StepID
	Name() string
	Optional() bool
	Description() string
	InputSchema() []InputField
	ValidateInputs(inputs Inputs) ValidationResult
	Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult
}
