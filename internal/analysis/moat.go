package analysis

import (
	"fmt"
	"math"

	"investpath/internal/providers"
)

// MoatCategory is one of the four moat dimensions, scored 0 to 3.
type MoatCategory struct {
	Score     int    `json:"score"`
	Narrative string `json:"narrative"`
}

// MoatAnalysis rates a company's durable competitive advantage from
// four independent dimensions. OverallScore scales the sub-score sum
// onto 0..100.
type MoatAnalysis struct {
	Symbol         string       `json:"symbol"`
	Patents        MoatCategory `json:"patents"`
	Brand          MoatCategory `json:"brand"`
	CustomerBase   MoatCategory `json:"customer_base"`
	CostLeadership MoatCategory `json:"cost_leadership"`
	OverallScore   int          `json:"overall_score"`
}

// AnalyzeMoat scores each dimension from fixed thresholds on the
// profile's optional qualitative fields. A dimension with no data at
// all scores 0 with a "not assessed" narrative.
func AnalyzeMoat(profile providers.CompanyProfile) MoatAnalysis {
	result := MoatAnalysis{
		Symbol:         profile.Symbol,
		Patents:        scorePatents(profile),
		Brand:          scoreBrand(profile),
		CustomerBase:   scoreCustomerBase(profile),
		CostLeadership: scoreCostLeadership(profile),
	}

	sum := result.Patents.Score + result.Brand.Score +
		result.CustomerBase.Score + result.CostLeadership.Score
	result.OverallScore = int(math.Round(float64(sum) / 12 * 100))
	return result
}

func scorePatents(profile providers.CompanyProfile) MoatCategory {
	if profile.PatentCount == nil {
		return MoatCategory{Narrative: "patent data unavailable, not assessed"}
	}
	count := *profile.PatentCount
	var score int
	switch {
	case count >= 1000:
		score = 3
	case count >= 100:
		score = 2
	case count >= 10:
		score = 1
	}
	return MoatCategory{
		Score:     score,
		Narrative: fmt.Sprintf("%d patents held", count),
	}
}

// scoreBrand uses brand value in dollars when reported, otherwise the
// 0..100 recognition index; when both exist the stronger reading wins.
func scoreBrand(profile providers.CompanyProfile) MoatCategory {
	if profile.BrandValue == nil && profile.BrandRecognition == nil {
		return MoatCategory{Narrative: "brand data unavailable, not assessed"}
	}

	var score int
	if profile.BrandValue != nil {
		switch value := *profile.BrandValue; {
		case value >= 10e9:
			score = 3
		case value >= 1e9:
			score = 2
		case value >= 100e6:
			score = 1
		}
	}
	if profile.BrandRecognition != nil {
		var fromRecognition int
		switch recognition := *profile.BrandRecognition; {
		case recognition >= 80:
			fromRecognition = 3
		case recognition >= 60:
			fromRecognition = 2
		case recognition >= 40:
			fromRecognition = 1
		}
		if fromRecognition > score {
			score = fromRecognition
		}
	}
	return MoatCategory{
		Score:     score,
		Narrative: fmt.Sprintf("brand strength scored %d of 3", score),
	}
}

// scoreCustomerBase accumulates points for retention and scale and
// deducts one for heavy revenue concentration, clamped to 0..3.
func scoreCustomerBase(profile providers.CompanyProfile) MoatCategory {
	if profile.CustomerCount == nil && profile.CustomerRetention == nil &&
		profile.CustomerConcentration == nil {
		return MoatCategory{Narrative: "customer data unavailable, not assessed"}
	}

	score := 0
	if profile.CustomerRetention != nil {
		switch retention := *profile.CustomerRetention; {
		case retention >= 90:
			score += 2
		case retention >= 80:
			score++
		}
	}
	if profile.CustomerCount != nil && *profile.CustomerCount >= 1_000_000 {
		score++
	}
	if profile.CustomerConcentration != nil && *profile.CustomerConcentration > 50 {
		score--
	}
	if score < 0 {
		score = 0
	}
	if score > 3 {
		score = 3
	}
	return MoatCategory{
		Score:     score,
		Narrative: fmt.Sprintf("customer base scored %d of 3", score),
	}
}

func scoreCostLeadership(profile providers.CompanyProfile) MoatCategory {
	margin := profile.OperatingMargin
	if margin == nil {
		margin = profile.OperatingEfficiency
	}
	if margin == nil {
		return MoatCategory{Narrative: "cost structure data unavailable, not assessed"}
	}

	var score int
	switch m := *margin; {
	case m >= 25:
		score = 3
	case m >= 15:
		score = 2
	case m >= 5:
		score = 1
	}
	return MoatCategory{
		Score:     score,
		Narrative: fmt.Sprintf("operating margin %.1f%%", *margin),
	}
}
