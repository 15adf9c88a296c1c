package workflow

import (
	"time"

	"investpath/internal/analysis"
	"investpath/internal/providers"
)

// StepResult is the recorded outcome of one step execution. Expected
// failures land in Errors with Success=false; provider degradation
// that still produced a usable artifact lands in Warnings.
type StepResult struct {
	StepID    StepID        `json:"step_id"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Data      *StepData     `json:"data,omitempty"`
}

// StepData is the union of per-step artifacts; exactly one field is
// set for a successful execution, matching the step that produced it.
type StepData struct {
	Profile      *analysis.InvestmentProfile    `json:"profile,omitempty"`
	Macro        *analysis.MacroAssessment      `json:"macro,omitempty"`
	Sectors      []analysis.SectorRanking       `json:"sectors,omitempty"`
	Screening    []analysis.ScreenMatch         `json:"screening,omitempty"`
	Fundamentals *providers.FinancialStatements `json:"fundamentals,omitempty"`
	Valuation    *analysis.ValuationMetrics     `json:"valuation,omitempty"`
	Moat         *analysis.MoatAnalysis         `json:"moat,omitempty"`
	Consensus    *analysis.AnalystSummary       `json:"consensus,omitempty"`
	Technicals   *analysis.TechnicalIndicators  `json:"technicals,omitempty"`
	Filings      []providers.Filing             `json:"filings,omitempty"`
	Position     *analysis.BuyRecommendation    `json:"position,omitempty"`
	Execution    *TradeConfirmation             `json:"execution,omitempty"`
	Monitoring   *MonitoringPlan                `json:"monitoring,omitempty"`
}

// TradeConfirmation is the simulated order record of the execution
// step. No real order is placed.
type TradeConfirmation struct {
	OrderID    string    `json:"order_id"`
	Symbol     string    `json:"symbol"`
	Shares     int64     `json:"shares"`
	OrderType  string    `json:"order_type"`
	LimitPrice string    `json:"limit_price,omitempty"`
	Status     string    `json:"status"`
	PlacedAt   time.Time `json:"placed_at"`
}

// MonitoringPlan is the final step's artifact: how and when the
// position should be re-reviewed.
type MonitoringPlan struct {
	Symbol        string    `json:"symbol"`
	ReviewCadence string    `json:"review_cadence"`
	Triggers      []string  `json:"triggers"`
	CreatedAt     time.Time `json:"created_at"`
}

// failedResult builds a Success=false result carrying the errors.
func failedResult(id StepID, startedAt time.Time, errs ...string) *StepResult {
	return &StepResult{
		StepID:    id,
		Success:   false,
		Errors:    errs,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
}

// skippedResult is the placeholder recorded for a skipped optional
// step.
func skippedResult(id StepID) *StepResult {
	now := time.Now()
	return &StepResult{
		StepID:    id,
		Success:   true,
		Skipped:   true,
		StartedAt: now,
	}
}
