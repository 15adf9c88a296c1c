package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepNumbering(t *testing.T) {
	assert.Equal(t, 1, StepNumber(StepProfile))
	assert.Equal(t, 9, StepNumber(StepTechnicals))
	assert.Equal(t, 12, StepNumber(StepMonitoring))
	assert.Equal(t, 0, StepNumber("bogus"))

	assert.Equal(t, StepProfile, StepAt(1))
	assert.Equal(t, StepID(""), StepAt(0))
	assert.Equal(t, StepID(""), StepAt(13))
	assert.Len(t, StepIDs(), TotalSteps)
}

func TestSessionAdvancesToSmallestUncompleted(t *testing.T) {
	session := &Session{CurrentStep: 1, Status: SessionStatusActive}

	session.MarkCompleted(StepProfile)
	assert.Equal(t, 2, session.CurrentStep)

	// Completing a later step out of band leaves the gap as current.
	session.MarkCompleted(StepSectors)
	assert.Equal(t, 2, session.CurrentStep)

	session.MarkCompleted(StepMacro)
	assert.Equal(t, 4, session.CurrentStep)
}

func TestSessionMarkCompletedIdempotent(t *testing.T) {
	session := &Session{CurrentStep: 1}
	session.MarkCompleted(StepProfile)
	session.MarkCompleted(StepProfile)
	assert.Len(t, session.CompletedSteps, 1)
}

func TestSessionCompletion(t *testing.T) {
	session := &Session{CurrentStep: 1, Status: SessionStatusActive}
	for _, id := range StepIDs() {
		session.MarkCompleted(id)
	}

	assert.Equal(t, TotalSteps+1, session.CurrentStep)
	assert.Equal(t, SessionStatusComplete, session.Status)
	assert.Equal(t, 1.0, session.Progress())
}

func TestSessionReset(t *testing.T) {
	session := &Session{ID: "s-1", UserID: "u-1", CurrentStep: 1}
	session.MarkCompleted(StepProfile)
	session.MarkCompleted(StepMacro)

	session.Reset()

	assert.Equal(t, 1, session.CurrentStep)
	assert.Empty(t, session.CompletedSteps)
	assert.Equal(t, "s-1", session.ID)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, SessionStatusActive, session.Status)
}

func TestSessionCloneIsIndependent(t *testing.T) {
	session := &Session{ID: "s-1", CurrentStep: 1}
	session.MarkCompleted(StepProfile)

	clone := session.Clone()
	clone.MarkCompleted(StepMacro)

	assert.Len(t, session.CompletedSteps, 1)
	assert.Len(t, clone.CompletedSteps, 2)
}

func TestRegistryCompleteness(t *testing.T) {
	registry, err := NewRegistryWithSteps()
	assert.NoError(t, err)
	assert.True(t, registry.Complete())

	partial := NewRegistry()
	assert.False(t, partial.Complete())
	assert.Error(t, partial.Register(&profileStep{baseStep{id: "bogus"}}))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(newProfileStep()))
	assert.Error(t, registry.Register(newProfileStep()))
}

func TestOnlyTechnicalsIsOptional(t *testing.T) {
	registry, err := NewRegistryWithSteps()
	assert.NoError(t, err)

	for _, id := range StepIDs() {
		processor, ok := registry.Get(id)
		assert.True(t, ok, id)
		assert.Equal(t, id == StepTechnicals, processor.Optional(), id)
	}
}
