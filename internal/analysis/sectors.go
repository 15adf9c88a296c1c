// Package analysis holds the deterministic scoring functions of the
// research workflow. Every function is pure: normalized provider data
// in, derived artifact out, no I/O and no shared state.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"investpath/internal/providers"
)

// SectorRanking is one scored row of the sector leaderboard.
type SectorRanking struct {
	Rank       int     `json:"rank"`
	Sector     string  `json:"sector"`
	Score      float64 `json:"score"`
	GrowthRate float64 `json:"growth_rate"`
	MarketCap  float64 `json:"market_cap"`
	Momentum   float64 `json:"momentum"`
	Rationale  string  `json:"rationale"`
}

// ScoreSectors ranks sectors by a weighted composite of growth rate,
// market cap in billions and momentum. Ordering is non-increasing by
// score with input order preserved on ties. Sectors with missing
// fields still rank, scoring whatever their zero-valued inputs yield.
func ScoreSectors(sectors []providers.SectorData, reports []providers.IndustryReport) []SectorRanking {
	outlooks := make(map[string]string, len(reports))
	for _, report := range reports {
		outlooks[strings.ToLower(report.Sector)] = report.Outlook
	}

	rankings := make([]SectorRanking, 0, len(sectors))
	for _, sector := range sectors {
		score := sector.GrowthRate*0.5 + sector.MarketCap/1e9*0.3 + sector.Momentum*0.2
		rankings = append(rankings, SectorRanking{
			Sector:     sector.Name,
			Score:      round2(score),
			GrowthRate: sector.GrowthRate,
			MarketCap:  sector.MarketCap,
			Momentum:   sector.Momentum,
			Rationale:  sectorRationale(sector, outlooks[strings.ToLower(sector.Name)]),
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

func sectorRationale(sector providers.SectorData, outlook string) string {
	var growth string
	switch {
	case sector.GrowthRate > 10:
		growth = "strong growth"
	case sector.GrowthRate > 5:
		growth = "moderate growth"
	default:
		growth = "limited growth"
	}

	var momentum string
	switch {
	case sector.Momentum > 0.7:
		momentum = "positive momentum"
	case sector.Momentum > 0.4:
		momentum = "neutral momentum"
	default:
		momentum = "weak momentum"
	}

	rationale := fmt.Sprintf("%s with %s", growth, momentum)
	if outlook != "" {
		rationale += ". " + outlook
	}
	return rationale
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
