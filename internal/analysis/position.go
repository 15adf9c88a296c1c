package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskModel caps the share of capital committed to a single position.
type RiskModel string

const (
	RiskModelConservative RiskModel = "conservative"
	RiskModelBalanced     RiskModel = "balanced"
	RiskModelAggressive   RiskModel = "aggressive"
)

// riskModelCeilings are the max position percentages per model.
var riskModelCeilings = map[RiskModel]float64{
	RiskModelConservative: 5,
	RiskModelBalanced:     10,
	RiskModelAggressive:   15,
}

// Order types by risk tolerance.
const (
	OrderTypeLimit  = "limit"
	OrderTypeMarket = "market"
)

// InvestmentProfile is the user's capital and risk posture, collected
// in the first workflow step and consulted by the sizing and
// execution steps.
type InvestmentProfile struct {
	UserID           string          `json:"user_id"`
	CapitalAvailable decimal.Decimal `json:"capital_available"`
	RiskTolerance    string          `json:"risk_tolerance"` // low, medium, high
	MaxPositionPct   float64         `json:"max_position_pct,omitempty"`
	TimeHorizon      string          `json:"time_horizon,omitempty"`
	Objectives       []string        `json:"objectives,omitempty"`
}

// BuyRecommendation is a concrete sizing proposal for one ticker.
type BuyRecommendation struct {
	Symbol              string          `json:"symbol"`
	SharesToBuy         int64           `json:"shares_to_buy"`
	PricePerShare       decimal.Decimal `json:"price_per_share"`
	TotalInvestment     decimal.Decimal `json:"total_investment"`
	PortfolioPercentage float64         `json:"portfolio_percentage"`
	OrderType           string          `json:"order_type"`
	Rationale           string          `json:"rationale"`
}

// DeterminePositionSize sizes a position from the profile's capital
// under the risk model's percentage ceiling, tightened further by the
// profile's own max-position override when set. Shares are whole; the
// investment is recomputed from the floored share count, so expensive
// instruments can legitimately size to zero.
func DeterminePositionSize(profile InvestmentProfile, price decimal.Decimal, model RiskModel, symbol string) (BuyRecommendation, error) {
	ceiling, ok := riskModelCeilings[model]
	if !ok {
		return BuyRecommendation{}, fmt.Errorf("unknown risk model %q", model)
	}
	if price.Sign() <= 0 {
		return BuyRecommendation{}, fmt.Errorf("price for %s must be positive, got %s", symbol, price)
	}

	pct := ceiling
	if profile.MaxPositionPct > 0 && profile.MaxPositionPct < pct {
		pct = profile.MaxPositionPct
	}

	budget := profile.CapitalAvailable.
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100))
	shares := budget.Div(price).Floor().IntPart()
	if shares < 0 {
		shares = 0
	}
	total := price.Mul(decimal.NewFromInt(shares))

	orderType := OrderTypeLimit
	if profile.RiskTolerance == "high" {
		orderType = OrderTypeMarket
	}

	return BuyRecommendation{
		Symbol:              symbol,
		SharesToBuy:         shares,
		PricePerShare:       price,
		TotalInvestment:     total,
		PortfolioPercentage: pct,
		OrderType:           orderType,
		Rationale: fmt.Sprintf("%s model caps the position at %.1f%% of capital (%s budget, %d shares at %s)",
			model, pct, budget.StringFixed(2), shares, price.StringFixed(2)),
	}, nil
}
