package analysis

import (
	"strings"

	"investpath/internal/providers"
)

// Consensus labels derived from the buy/sell split.
const (
	ConsensusStrongBuy = "strong buy"
	ConsensusBuy       = "buy"
	ConsensusSell      = "sell"
	ConsensusHold      = "hold"
)

// AnalystSummary aggregates individual analyst calls into counts, an
// average target and a consensus label.
type AnalystSummary struct {
	Symbol        string  `json:"symbol"`
	BuyCount      int     `json:"buy_count"`
	HoldCount     int     `json:"hold_count"`
	SellCount     int     `json:"sell_count"`
	AverageTarget float64 `json:"average_target,omitempty"`
	Consensus     string  `json:"consensus"`
}

// AggregateAnalystSentiment classifies each rating's free-text label
// case-insensitively by substring against known synonyms, averages the
// strictly positive price targets, and derives consensus from the
// buy/sell share of classified ratings. Empty input yields zero counts
// and a hold consensus.
func AggregateAnalystSentiment(ratings []providers.AnalystRating, symbol string) AnalystSummary {
	summary := AnalystSummary{Symbol: symbol, Consensus: ConsensusHold}

	var targetSum float64
	var targetCount int
	for _, rating := range ratings {
		switch classifyRating(rating.Rating) {
		case ConsensusBuy:
			summary.BuyCount++
		case ConsensusSell:
			summary.SellCount++
		case ConsensusHold:
			summary.HoldCount++
		}
		if rating.PriceTarget > 0 {
			targetSum += rating.PriceTarget
			targetCount++
		}
	}

	if targetCount > 0 {
		summary.AverageTarget = targetSum / float64(targetCount)
	}

	total := summary.BuyCount + summary.HoldCount + summary.SellCount
	if total == 0 {
		return summary
	}

	buyPct := float64(summary.BuyCount) / float64(total) * 100
	sellPct := float64(summary.SellCount) / float64(total) * 100
	switch {
	case buyPct >= 70:
		summary.Consensus = ConsensusStrongBuy
	case buyPct >= 50:
		summary.Consensus = ConsensusBuy
	case sellPct >= 50:
		summary.Consensus = ConsensusSell
	default:
		summary.Consensus = ConsensusHold
	}
	return summary
}

// classifyRating maps a free-text label to buy/hold/sell, or "" when
// no synonym matches.
func classifyRating(label string) string {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "buy"),
		strings.Contains(lower, "outperform"),
		strings.Contains(lower, "overweight"):
		return ConsensusBuy
	case strings.Contains(lower, "sell"),
		strings.Contains(lower, "underperform"),
		strings.Contains(lower, "underweight"):
		return ConsensusSell
	case strings.Contains(lower, "hold"),
		strings.Contains(lower, "neutral"),
		strings.Contains(lower, "equal"):
		return ConsensusHold
	}
	return ""
}
