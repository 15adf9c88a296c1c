package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/analysis"
	"investpath/internal/store"
	"investpath/internal/workflow"
)

// Both implementations run the same contract suite.
func forEachStore(t *testing.T, run func(t *testing.T, s workflow.SessionStore)) {
	t.Run("memory", func(t *testing.T) {
		run(t, store.NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		run(t, s)
	})
}

func TestStoreCreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()

		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, 1, session.CurrentStep)
		assert.Equal(t, workflow.SessionStatusActive, session.Status)

		loaded, err := s.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, "user-1", loaded.UserID)
		assert.Empty(t, loaded.CompletedSteps)
	})
}

func TestStoreGetMissingSession(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		_, err := s.Get(context.Background(), "nope")
		require.Error(t, err)
		assert.Equal(t, workflow.ErrorKindNotFound, workflow.KindOf(err))
	})
}

func TestStoreUpdatePersistsProgress(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		session.MarkCompleted(workflow.StepProfile)
		session.MarkCompleted(workflow.StepMacro)
		require.NoError(t, s.Update(ctx, session))

		loaded, err := s.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.CurrentStep)
		assert.Equal(t,
			[]workflow.StepID{workflow.StepProfile, workflow.StepMacro},
			loaded.CompletedSteps)
	})
}

func TestStoreUpdateMissingSession(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		err := s.Update(context.Background(), &workflow.Session{ID: "ghost"})
		require.Error(t, err)
		assert.Equal(t, workflow.ErrorKindNotFound, workflow.KindOf(err))
	})
}

func TestStoreListByUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		first, err := s.Create(ctx, "user-1")
		require.NoError(t, err)
		_, err = s.Create(ctx, "user-2")
		require.NoError(t, err)
		second, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		sessions, err := s.ListByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		ids := []string{sessions[0].ID, sessions[1].ID}
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})
}

func TestStoreStepResultRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		moat := analysis.MoatAnalysis{Symbol: "AAPL", OverallScore: 67}
		result := &workflow.StepResult{
			StepID:   workflow.StepMoat,
			Success:  true,
			Warnings: []string{"fmp: configuration: adapter not configured"},
			Data:     &workflow.StepData{Moat: &moat},
		}
		require.NoError(t, s.SaveStepResult(ctx, session.ID, result))

		loaded, err := s.GetStepResult(ctx, session.ID, workflow.StepMoat)
		require.NoError(t, err)
		assert.True(t, loaded.Success)
		require.NotNil(t, loaded.Data)
		require.NotNil(t, loaded.Data.Moat)
		assert.Equal(t, 67, loaded.Data.Moat.OverallScore)
		assert.Len(t, loaded.Warnings, 1)
	})
}

func TestStoreStepResultLastWriteWins(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		require.NoError(t, s.SaveStepResult(ctx, session.ID, &workflow.StepResult{
			StepID:  workflow.StepMacro,
			Success: false,
			Errors:  []string{"no macro indicator could be fetched"},
		}))
		require.NoError(t, s.SaveStepResult(ctx, session.ID, &workflow.StepResult{
			StepID:  workflow.StepMacro,
			Success: true,
		}))

		loaded, err := s.GetStepResult(ctx, session.ID, workflow.StepMacro)
		require.NoError(t, err)
		assert.True(t, loaded.Success)
		assert.Empty(t, loaded.Errors)
	})
}

func TestStoreDeleteStepResults(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		require.NoError(t, s.SaveStepResult(ctx, session.ID, &workflow.StepResult{
			StepID:  workflow.StepProfile,
			Success: true,
		}))
		require.NoError(t, s.SaveStepResult(ctx, session.ID, &workflow.StepResult{
			StepID:  workflow.StepMacro,
			Success: true,
		}))

		require.NoError(t, s.DeleteStepResults(ctx, session.ID))

		for _, stepID := range []workflow.StepID{workflow.StepProfile, workflow.StepMacro} {
			_, err := s.GetStepResult(ctx, session.ID, stepID)
			require.Error(t, err)
			assert.Equal(t, workflow.ErrorKindNotFound, workflow.KindOf(err))
		}

		// The session itself survives and can record fresh results.
		require.NoError(t, s.SaveStepResult(ctx, session.ID, &workflow.StepResult{
			StepID:  workflow.StepProfile,
			Success: true,
		}))
	})
}

func TestStoreMissingStepResult(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()
		session, err := s.Create(ctx, "user-1")
		require.NoError(t, err)

		_, err = s.GetStepResult(ctx, session.ID, workflow.StepValuation)
		require.Error(t, err)
		assert.Equal(t, workflow.ErrorKindNotFound, workflow.KindOf(err))
	})
}

func TestStoreProfileRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s workflow.SessionStore) {
		ctx := context.Background()

		_, err := s.GetProfile(ctx, "user-1")
		require.Error(t, err)
		assert.Equal(t, workflow.ErrorKindNotFound, workflow.KindOf(err))

		profile := &analysis.InvestmentProfile{
			UserID:           "user-1",
			CapitalAvailable: decimal.NewFromInt(250_000),
			RiskTolerance:    "medium",
			TimeHorizon:      "long",
			Objectives:       []string{"growth", "income"},
		}
		require.NoError(t, s.SaveProfile(ctx, "user-1", profile))

		loaded, err := s.GetProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "medium", loaded.RiskTolerance)
		assert.True(t, loaded.CapitalAvailable.Equal(decimal.NewFromInt(250_000)))
		assert.Equal(t, []string{"growth", "income"}, loaded.Objectives)
	})
}
