package workflow

import (
	"context"

	"investpath/internal/analysis"
)

// SessionStore persists sessions, step results and investment
// profiles. The orchestrator depends only on this contract; memory and
// SQLite implementations live under internal/store.
//
// Not-found conditions are reported as *Error with ErrorKindNotFound.
type SessionStore interface {
	Create(ctx context.Context, userID string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)

	SaveStepResult(ctx context.Context, sessionID string, result *StepResult) error
	GetStepResult(ctx context.Context, sessionID string, stepID StepID) (*StepResult, error)
	DeleteStepResults(ctx context.Context, sessionID string) error

	SaveProfile(ctx context.Context, userID string, profile *analysis.InvestmentProfile) error
	GetProfile(ctx context.Context, userID string) (*analysis.InvestmentProfile, error)
}
