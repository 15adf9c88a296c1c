package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investpath/internal/analysis"
	"investpath/internal/providers"
)

type technicalsStep struct{ baseStep }

func newTechnicalsStep() *technicalsStep {
	return &technicalsStep{baseStep{
		id:          StepTechnicals,
		name:        "Technical Indicators",
		optional:    true,
		description: "Optional moving-average and RSI read on recent price action",
		schema: []InputField{
			{Name: "symbol", Type: "string", Description: "Ticker; defaults to the one researched in fundamentals"},
		},
	}}
}

func (s *technicalsStep) ValidateInputs(Inputs) ValidationResult { return valid() }

func (s *technicalsStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	symbol, err := resolveSymbol(ctx, env, inputs)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	resp, err := fetchNeed(ctx, env, result, providers.NeedHistory,
		symbolRequest(providers.EndpointPriceHistory, symbol))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching price history for %s: %v", symbol, err))
		result.Duration = time.Since(startedAt)
		return result
	}

	history, ok := resp.Data.([]providers.PricePoint)
	if !ok {
		result.Errors = append(result.Errors, "history provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	indicators, err := analysis.ComputeTechnicals(symbol, history)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(startedAt)
		return result
	}

	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Technicals: indicators}
	return result
}

var riskModels = map[string]analysis.RiskModel{
	"conservative": analysis.RiskModelConservative,
	"balanced":     analysis.RiskModelBalanced,
	"aggressive":   analysis.RiskModelAggressive,
}

type positionStep struct{ baseStep }

func newPositionStep() *positionStep {
	return &positionStep{baseStep{
		id:          StepPosition,
		name:        "Position Sizing",
		description: "Size the position from the saved profile under the chosen risk model",
		schema: []InputField{
			{Name: "risk_model", Type: "string", Required: true, Description: "One of conservative, balanced, aggressive"},
			{Name: "symbol", Type: "string", Description: "Ticker; defaults to the one researched in fundamentals"},
		},
	}}
}

func (s *positionStep) ValidateInputs(inputs Inputs) ValidationResult {
	model, ok := inputs.String("risk_model")
	if !ok {
		return invalid("risk_model is required")
	}
	if _, known := riskModels[model]; !known {
		return invalid(fmt.Sprintf("unknown risk_model %q", model))
	}
	return valid()
}

func (s *positionStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	symbol, err := resolveSymbol(ctx, env, inputs)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	profile, err := env.Store.GetProfile(ctx, env.Session.UserID)
	if err != nil {
		return failedResult(s.id, startedAt,
			fmt.Sprintf("no saved investment profile for user %s: %v", env.Session.UserID, err))
	}

	resp, err := fetchNeed(ctx, env, result, providers.NeedQuotes,
		symbolRequest(providers.EndpointQuote, symbol))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching quote for %s: %v", symbol, err))
		result.Duration = time.Since(startedAt)
		return result
	}
	quote, ok := resp.Data.(*providers.Quote)
	if !ok || quote == nil {
		result.Errors = append(result.Errors, "quote provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	modelName, _ := inputs.String("risk_model")
	recommendation, err := analysis.DeterminePositionSize(
		*profile, decimal.NewFromFloat(quote.Price), riskModels[modelName], symbol)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(startedAt)
		return result
	}

	if recommendation.SharesToBuy == 0 {
		result.Warnings = append(result.Warnings,
			"position sized to zero shares at the current price and risk ceiling")
	}

	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Position: &recommendation}
	return result
}

type executionStep struct{ baseStep }

func newExecutionStep() *executionStep {
	return &executionStep{baseStep{
		id:          StepExecution,
		name:        "Trade Execution",
		description: "Record a simulated order for the sized position; no real order is placed",
		schema: []InputField{
			{Name: "confirm", Type: "bool", Required: true, Description: "Must be true to record the simulated order"},
		},
	}}
}

func (s *executionStep) ValidateInputs(inputs Inputs) ValidationResult {
	confirm, ok := inputs.Bool("confirm")
	if !ok || !confirm {
		return invalid("confirm must be set to true to execute")
	}
	return valid()
}

func (s *executionStep) Execute(ctx context.Context, env *Env, _ Inputs) *StepResult {
	startedAt := time.Now()

	data, err := env.PriorData(ctx, StepPosition)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}
	position := data.Position
	if position == nil {
		return failedResult(s.id, startedAt, "position step recorded no recommendation")
	}
	if position.SharesToBuy == 0 {
		return failedResult(s.id, startedAt, "position sized to zero shares, nothing to execute")
	}

	confirmation := &TradeConfirmation{
		OrderID:   uuid.NewString(),
		Symbol:    position.Symbol,
		Shares:    position.SharesToBuy,
		OrderType: position.OrderType,
		Status:    "simulated",
		PlacedAt:  time.Now().UTC(),
	}
	if position.OrderType == analysis.OrderTypeLimit {
		confirmation.LimitPrice = position.PricePerShare.StringFixed(2)
	}

	return &StepResult{
		StepID:    s.id,
		Success:   true,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Data:      &StepData{Execution: confirmation},
	}
}

type monitoringStep struct{ baseStep }

func newMonitoringStep() *monitoringStep {
	return &monitoringStep{baseStep{
		id:          StepMonitoring,
		name:        "Monitoring Plan",
		description: "Define how and when the position is re-reviewed",
	}}
}

func (s *monitoringStep) ValidateInputs(Inputs) ValidationResult { return valid() }

func (s *monitoringStep) Execute(ctx context.Context, env *Env, _ Inputs) *StepResult {
	startedAt := time.Now()

	data, err := env.PriorData(ctx, StepPosition)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}
	position := data.Position
	if position == nil {
		return failedResult(s.id, startedAt, "position step recorded no recommendation")
	}

	cadence := "monthly"
	if profile, err := env.Store.GetProfile(ctx, env.Session.UserID); err == nil && profile.TimeHorizon == "short" {
		cadence = "weekly"
	}

	plan := &MonitoringPlan{
		Symbol:        position.Symbol,
		ReviewCadence: cadence,
		Triggers: []string{
			"price moves more than 15% from entry",
			"analyst consensus downgrades below hold",
			"quarterly earnings release",
		},
		CreatedAt: time.Now().UTC(),
	}

	return &StepResult{
		StepID:    s.id,
		Success:   true,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Data:      &StepData{Monitoring: plan},
	}
}
