package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"investpath/internal/analysis"
)

var riskTolerances = map[string]bool{"low": true, "medium": true, "high": true}

type profileStep struct{ baseStep }

func newProfileStep() *profileStep {
	return &profileStep{baseStep{
		id:          StepProfile,
		name:        "Investment Profile",
		description: "Capture capital, risk tolerance and objectives for this research session",
		schema: []InputField{
			{Name: "capital_available", Type: "number", Required: true, Description: "Investable capital in account currency"},
			{Name: "risk_tolerance", Type: "string", Required: true, Description: "One of low, medium, high"},
			{Name: "max_position_pct", Type: "number", Description: "Optional tighter cap on a single position, percent"},
			{Name: "time_horizon", Type: "string", Description: "Investment horizon, e.g. short, medium, long"},
			{Name: "objectives", Type: "string[]", Description: "Free-form investment objectives"},
		},
	}}
}

func (s *profileStep) ValidateInputs(inputs Inputs) ValidationResult {
	var errs []string

	capital, ok := inputs.Number("capital_available")
	if !ok {
		errs = append(errs, "capital_available is required and must be a number")
	} else if capital <= 0 {
		errs = append(errs, "capital_available must be positive")
	}

	tolerance, ok := inputs.String("risk_tolerance")
	if !ok || !riskTolerances[tolerance] {
		errs = append(errs, "risk_tolerance must be one of low, medium, high")
	}

	if pct, ok := inputs.Number("max_position_pct"); ok && (pct <= 0 || pct > 100) {
		errs = append(errs, "max_position_pct must be in (0, 100]")
	}

	if len(errs) > 0 {
		return invalid(errs...)
	}
	return valid()
}

func (s *profileStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()

	capital, _ := inputs.Number("capital_available")
	tolerance, _ := inputs.String("risk_tolerance")
	horizon, _ := inputs.String("time_horizon")
	objectives, _ := inputs.StringSlice("objectives")
	maxPct, _ := inputs.Number("max_position_pct")

	profile := &analysis.InvestmentProfile{
		UserID:           env.Session.UserID,
		CapitalAvailable: decimal.NewFromFloat(capital),
		RiskTolerance:    tolerance,
		MaxPositionPct:   maxPct,
		TimeHorizon:      horizon,
		Objectives:       objectives,
	}

	if err := env.Store.SaveProfile(ctx, env.Session.UserID, profile); err != nil {
		return failedResult(s.id, startedAt, fmt.Sprintf("saving profile: %v", err))
	}

	return &StepResult{
		StepID:    s.id,
		Success:   true,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Data:      &StepData{Profile: profile},
	}
}
