package workflow

import (
	"context"
	"fmt"
	"time"

	"investpath/internal/analysis"
	"investpath/internal/providers"
)

type fundamentalsStep struct{ baseStep }

func newFundamentalsStep() *fundamentalsStep {
	return &fundamentalsStep{baseStep{
		id:          StepFundamentals,
		name:        "Fundamental Review",
		description: "Pull financial statements, ratios, peers and recent filings for the chosen ticker",
		schema: []InputField{
			{Name: "symbol", Type: "string", Required: true, Description: "Ticker to research"},
		},
	}}
}

func (s *fundamentalsStep) ValidateInputs(inputs Inputs) ValidationResult {
	if symbol, ok := inputs.String("symbol"); !ok || symbol == "" {
		return invalid("symbol is required")
	}
	return valid()
}

// Execute pulls statements as the core artifact and filings as a
// best-effort supplement; a missing filings source is a warning only.
func (s *fundamentalsStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}
	symbol, _ := inputs.String("symbol")

	resp, err := fetchNeed(ctx, env, result, providers.NeedStatements,
		symbolRequest(providers.EndpointFinancialStatements, symbol))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching statements for %s: %v", symbol, err))
		result.Duration = time.Since(startedAt)
		return result
	}

	statements, ok := resp.Data.(*providers.FinancialStatements)
	if !ok || statements == nil {
		result.Errors = append(result.Errors, "statements provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	data := &StepData{Fundamentals: statements}
	if filingsResp, err := fetchNeed(ctx, env, result, providers.NeedFilings,
		symbolRequest(providers.EndpointFilings, symbol)); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("filings for %s unavailable: %v", symbol, err))
	} else if filings, ok := filingsResp.Data.([]providers.Filing); ok {
		data.Filings = filings
	}

	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = data
	return result
}

type valuationStep struct{ baseStep }

func newValuationStep() *valuationStep {
	return &valuationStep{baseStep{
		id:          StepValuation,
		name:        "Valuation",
		description: "Compare the ticker's multiples against its peer group",
	}}
}

func (s *valuationStep) ValidateInputs(Inputs) ValidationResult { return valid() }

// Execute reuses the fundamentals step's artifact, so no network call
// is needed here.
func (s *valuationStep) Execute(ctx context.Context, env *Env, _ Inputs) *StepResult {
	startedAt := time.Now()

	data, err := env.PriorData(ctx, StepFundamentals)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}
	statements := data.Fundamentals
	if statements == nil || statements.Fundamentals == nil {
		return failedResult(s.id, startedAt, "fundamentals step recorded no per-share figures")
	}

	metrics := analysis.CalculateValuations(*statements.Fundamentals, statements.Peers)
	result := &StepResult{
		StepID:    s.id,
		Success:   true,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Data:      &StepData{Valuation: &metrics},
	}
	if len(statements.Peers) == 0 {
		result.Warnings = append(result.Warnings, "no peer data, valuation lacks a comparison baseline")
	}
	return result
}

type moatStep struct{ baseStep }

func newMoatStep() *moatStep {
	return &moatStep{baseStep{
		id:          StepMoat,
		name:        "Moat Assessment",
		description: "Rate the durability of the company's competitive advantage",
		schema: []InputField{
			{Name: "symbol", Type: "string", Description: "Ticker; defaults to the one researched in fundamentals"},
		},
	}}
}

func (s *moatStep) ValidateInputs(Inputs) ValidationResult { return valid() }

func (s *moatStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	symbol, err := resolveSymbol(ctx, env, inputs)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	resp, err := fetchNeed(ctx, env, result, providers.NeedProfile,
		symbolRequest(providers.EndpointCompanyProfile, symbol))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching profile for %s: %v", symbol, err))
		result.Duration = time.Since(startedAt)
		return result
	}

	profile, ok := resp.Data.(*providers.CompanyProfile)
	if !ok || profile == nil {
		result.Errors = append(result.Errors, "profile provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	moat := analysis.AnalyzeMoat(*profile)
	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Moat: &moat}
	return result
}

type consensusStep struct{ baseStep }

func newConsensusStep() *consensusStep {
	return &consensusStep{baseStep{
		id:          StepConsensus,
		name:        "Analyst Consensus",
		description: "Aggregate analyst ratings into a consensus view",
		schema: []InputField{
			{Name: "symbol", Type: "string", Description: "Ticker; defaults to the one researched in fundamentals"},
		},
	}}
}

func (s *consensusStep) ValidateInputs(Inputs) ValidationResult { return valid() }

func (s *consensusStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	symbol, err := resolveSymbol(ctx, env, inputs)
	if err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	resp, err := fetchNeed(ctx, env, result, providers.NeedRatings,
		symbolRequest(providers.EndpointAnalystRatings, symbol))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching ratings for %s: %v", symbol, err))
		result.Duration = time.Since(startedAt)
		return result
	}

	ratings, ok := resp.Data.([]providers.AnalystRating)
	if !ok {
		result.Errors = append(result.Errors, "ratings provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	summary := analysis.AggregateAnalystSentiment(ratings, symbol)
	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Consensus: &summary}
	return result
}
