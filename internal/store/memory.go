// Package store provides the SessionStore implementations: an
// in-memory store for tests and single-run usage, and a SQLite store
// for durable sessions.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"investpath/internal/analysis"
	"investpath/internal/workflow"
)

// Memory is a mutex-guarded in-memory SessionStore. Values are cloned
// on the way in and out so callers never share mutable state.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*workflow.Session
	results  map[string]map[workflow.StepID]*workflow.StepResult
	profiles map[string]*analysis.InvestmentProfile
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*workflow.Session),
		results:  make(map[string]map[workflow.StepID]*workflow.StepResult),
		profiles: make(map[string]*analysis.InvestmentProfile),
		now:      time.Now,
	}
}

func (m *Memory) Create(_ context.Context, userID string) (*workflow.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	session := &workflow.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      workflow.SessionStatusActive,
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.sessions[session.ID] = session.Clone()
	m.results[session.ID] = make(map[workflow.StepID]*workflow.StepResult)
	return session, nil
}

func (m *Memory) Get(_ context.Context, sessionID string) (*workflow.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, workflow.NewNotFoundError("session %s not found", sessionID)
	}
	return session.Clone(), nil
}

func (m *Memory) Update(_ context.Context, session *workflow.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; !ok {
		return workflow.NewNotFoundError("session %s not found", session.ID)
	}
	updated := session.Clone()
	updated.UpdatedAt = m.now().UTC()
	m.sessions[session.ID] = updated
	return nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]*workflow.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sessions []*workflow.Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session.Clone())
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (m *Memory) SaveStepResult(_ context.Context, sessionID string, result *workflow.StepResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byStep, ok := m.results[sessionID]
	if !ok {
		return workflow.NewNotFoundError("session %s not found", sessionID)
	}
	byStep[result.StepID] = result
	return nil
}

func (m *Memory) GetStepResult(_ context.Context, sessionID string, stepID workflow.StepID) (*workflow.StepResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byStep, ok := m.results[sessionID]
	if !ok {
		return nil, workflow.NewNotFoundError("session %s not found", sessionID)
	}
	result, ok := byStep[stepID]
	if !ok {
		return nil, workflow.NewNotFoundError("no result for step %s in session %s", stepID, sessionID)
	}
	return result, nil
}

func (m *Memory) DeleteStepResults(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.results[sessionID]; !ok {
		return workflow.NewNotFoundError("session %s not found", sessionID)
	}
	m.results[sessionID] = make(map[workflow.StepID]*workflow.StepResult)
	return nil
}

func (m *Memory) SaveProfile(_ context.Context, userID string, profile *analysis.InvestmentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile
	return nil
}

func (m *Memory) GetProfile(_ context.Context, userID string) (*analysis.InvestmentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, workflow.NewNotFoundError("no profile for user %s", userID)
	}
	return profile, nil
}

// compile-time contract check
var _ workflow.SessionStore = (*Memory)(nil)
