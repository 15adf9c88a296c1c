package workflow

import (
	"slices"
	"time"
)

// SessionStatus is the lifecycle state of a research session.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusComplete SessionStatus = "complete"
)

// Session is one user's pass through the workflow. CurrentStep is the
// smallest uncompleted step number, or TotalSteps+1 once every step is
// covered (the optional step counts as covered whether executed or
// skipped).
type Session struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Status         SessionStatus `json:"status"`
	CurrentStep    int           `json:"current_step"`
	CompletedSteps []StepID      `json:"completed_steps"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Completed reports whether the step is already covered.
func (s *Session) Completed(id StepID) bool {
	return slices.Contains(s.CompletedSteps, id)
}

// MarkCompleted records a covered step idempotently and recomputes the
// current step and status.
func (s *Session) MarkCompleted(id StepID) {
	if !s.Completed(id) {
		s.CompletedSteps = append(s.CompletedSteps, id)
	}
	s.recompute()
}

// Reset returns the session to step 1, forgetting progress but keeping
// its identity.
func (s *Session) Reset() {
	s.CompletedSteps = nil
	s.recompute()
}

// Progress is the completed fraction of the workflow.
func (s *Session) Progress() float64 {
	return float64(len(s.CompletedSteps)) / float64(TotalSteps)
}

func (s *Session) recompute() {
	s.CurrentStep = stepComplete
	for number := 1; number <= TotalSteps; number++ {
		if !s.Completed(StepAt(number)) {
			s.CurrentStep = number
			break
		}
	}

	if s.CurrentStep == stepComplete {
		s.Status = SessionStatusComplete
	} else {
		s.Status = SessionStatusActive
	}
}

// Clone returns a deep copy so stores can hand out sessions without
// sharing mutable state.
func (s *Session) Clone() *Session {
	copied := *s
	copied.CompletedSteps = slices.Clone(s.CompletedSteps)
	return &copied
}
