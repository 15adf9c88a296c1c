package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"investpath/internal/analysis"
	"investpath/internal/providers"
)

// macroIndicators are the series the macro step fans out for.
var macroIndicators = []string{
	"gdp-growth", "inflation", "unemployment", "fed-funds", "yield-10y",
}

type macroStep struct{ baseStep }

func newMacroStep() *macroStep {
	return &macroStep{baseStep{
		id:          StepMacro,
		name:        "Macro Conditions",
		description: "Fetch key economic indicators and assess the macro backdrop",
	}}
}

func (s *macroStep) ValidateInputs(Inputs) ValidationResult { return valid() }

// Execute fetches all indicators concurrently. Any indicator success
// yields a usable assessment; individual failures degrade to warnings.
func (s *macroStep) Execute(ctx context.Context, env *Env, _ Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	var mu sync.Mutex
	series := make(map[string]providers.MacroSeries)

	g, gctx := errgroup.WithContext(ctx)
	for _, indicator := range macroIndicators {
		indicator := indicator
		g.Go(func() error {
			chainResult, err := env.Catalog.Fetch(gctx, providers.NeedMacro, providers.Request{
				Endpoint: providers.EndpointMacroSeries,
				Params:   map[string]string{"indicator": indicator},
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("indicator %s unavailable: %v", indicator, err))
				return nil
			}
			result.Warnings = append(result.Warnings, chainResult.Warnings...)
			if s, ok := chainResult.Response.Data.(*providers.MacroSeries); ok && s != nil {
				series[indicator] = *s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	if len(series) == 0 {
		result.Errors = append(result.Errors, "no macro indicator could be fetched")
		result.Duration = time.Since(startedAt)
		return result
	}

	assessment := analysis.AssessMacroClimate(series)
	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Macro: &assessment}
	return result
}

type sectorsStep struct{ baseStep }

func newSectorsStep() *sectorsStep {
	return &sectorsStep{baseStep{
		id:          StepSectors,
		name:        "Sector Analysis",
		description: "Score and rank sectors by growth, size and momentum",
	}}
}

func (s *sectorsStep) ValidateInputs(Inputs) ValidationResult { return valid() }

func (s *sectorsStep) Execute(ctx context.Context, env *Env, _ Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	resp, err := fetchNeed(ctx, env, result, providers.NeedSector, providers.Request{
		Endpoint: providers.EndpointSectorOverview,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching sector data: %v", err))
		result.Duration = time.Since(startedAt)
		return result
	}

	overview, ok := resp.Data.(*providers.SectorOverview)
	if !ok || overview == nil {
		result.Errors = append(result.Errors, "sector provider returned an unexpected payload")
		result.Duration = time.Since(startedAt)
		return result
	}

	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Sectors: analysis.ScoreSectors(overview.Sectors, overview.Reports)}
	return result
}

const maxScreeningTickers = 10

type screeningStep struct{ baseStep }

func newScreeningStep() *screeningStep {
	return &screeningStep{baseStep{
		id:          StepScreening,
		name:        "Stock Screening",
		description: "Filter candidate tickers by sector and market-cap criteria",
		schema: []InputField{
			{Name: "tickers", Type: "string[]", Required: true, Description: "Candidate tickers to screen"},
			{Name: "sectors", Type: "string[]", Description: "Sectors to keep; empty keeps all"},
			{Name: "min_market_cap", Type: "number", Description: "Lower market-cap bound in dollars"},
			{Name: "max_market_cap", Type: "number", Description: "Upper market-cap bound in dollars"},
		},
	}}
}

func (s *screeningStep) ValidateInputs(inputs Inputs) ValidationResult {
	tickers, ok := inputs.StringSlice("tickers")
	if !ok || len(tickers) == 0 {
		return invalid("tickers is required and must be a non-empty string list")
	}
	if len(tickers) > maxScreeningTickers {
		return invalid(fmt.Sprintf("at most %d tickers can be screened at once", maxScreeningTickers))
	}
	return valid()
}

// Execute fetches each candidate's profile concurrently, then applies
// the criteria to whatever resolved. Unresolvable tickers degrade to
// warnings; the step only fails when no candidate could be profiled.
func (s *screeningStep) Execute(ctx context.Context, env *Env, inputs Inputs) *StepResult {
	startedAt := time.Now()
	result := &StepResult{StepID: s.id, StartedAt: startedAt}

	tickers, _ := inputs.StringSlice("tickers")
	sectors, _ := inputs.StringSlice("sectors")
	minCap, _ := inputs.Number("min_market_cap")
	maxCap, _ := inputs.Number("max_market_cap")

	var mu sync.Mutex
	profiles := make([]providers.CompanyProfile, 0, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			chainResult, err := env.Catalog.Fetch(gctx, providers.NeedProfile,
				symbolRequest(providers.EndpointCompanyProfile, ticker))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("profile for %s unavailable: %v", ticker, err))
				return nil
			}
			result.Warnings = append(result.Warnings, chainResult.Warnings...)
			if profile, ok := chainResult.Response.Data.(*providers.CompanyProfile); ok && profile != nil {
				profiles = append(profiles, *profile)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failedResult(s.id, startedAt, err.Error())
	}

	if len(profiles) == 0 {
		result.Errors = append(result.Errors, "no candidate profile could be fetched")
		result.Duration = time.Since(startedAt)
		return result
	}

	// Concurrent completion shuffles profiles; restore input order.
	ordered := make([]providers.CompanyProfile, 0, len(profiles))
	for _, ticker := range tickers {
		for _, profile := range profiles {
			if profile.Symbol == ticker {
				ordered = append(ordered, profile)
				break
			}
		}
	}

	matches := analysis.ScreenCandidates(ordered, analysis.ScreenCriteria{
		Sectors:      sectors,
		MinMarketCap: minCap,
		MaxMarketCap: maxCap,
	})

	result.Success = true
	result.Duration = time.Since(startedAt)
	result.Data = &StepData{Screening: matches}
	return result
}
