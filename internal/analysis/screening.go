package analysis

import (
	"fmt"
	"strings"

	"investpath/internal/providers"
)

// ScreenCriteria filters candidate companies for the screening step.
// Zero values mean "no constraint".
type ScreenCriteria struct {
	Sectors      []string `json:"sectors,omitempty"`
	MinMarketCap float64  `json:"min_market_cap,omitempty"`
	MaxMarketCap float64  `json:"max_market_cap,omitempty"`
}

// ScreenMatch is one surviving candidate with the reasons it passed.
type ScreenMatch struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"market_cap"`
	Reason    string  `json:"reason"`
}

// ScreenCandidates keeps the profiles satisfying every criterion, in
// input order.
func ScreenCandidates(candidates []providers.CompanyProfile, criteria ScreenCriteria) []ScreenMatch {
	allowed := make(map[string]bool, len(criteria.Sectors))
	for _, sector := range criteria.Sectors {
		allowed[strings.ToLower(sector)] = true
	}

	var matches []ScreenMatch
	for _, candidate := range candidates {
		if len(allowed) > 0 && !allowed[strings.ToLower(candidate.Sector)] {
			continue
		}
		if criteria.MinMarketCap > 0 && candidate.MarketCap < criteria.MinMarketCap {
			continue
		}
		if criteria.MaxMarketCap > 0 && candidate.MarketCap > criteria.MaxMarketCap {
			continue
		}

		var reasons []string
		if len(allowed) > 0 {
			reasons = append(reasons, fmt.Sprintf("sector %s in scope", candidate.Sector))
		}
		if criteria.MinMarketCap > 0 || criteria.MaxMarketCap > 0 {
			reasons = append(reasons, fmt.Sprintf("market cap %.1fB within bounds", candidate.MarketCap/1e9))
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "no screening constraints configured")
		}

		matches = append(matches, ScreenMatch{
			Symbol:    candidate.Symbol,
			Name:      candidate.Name,
			Sector:    candidate.Sector,
			MarketCap: candidate.MarketCap,
			Reason:    strings.Join(reasons, "; "),
		})
	}
	return matches
}
