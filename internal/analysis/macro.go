package analysis

import (
	"fmt"
	"sort"
	"strings"

	"investpath/internal/providers"
)

// Macro climate labels for the economic-conditions step.
const (
	ClimateFavorable   = "favorable"
	ClimateNeutral     = "neutral"
	ClimateUnfavorable = "unfavorable"
)

// MacroReading is one indicator's latest value with its trend over the
// fetched observation window.
type MacroReading struct {
	Indicator string  `json:"indicator"`
	Latest    float64 `json:"latest"`
	Trend     string  `json:"trend"` // rising, falling, flat
}

// MacroAssessment summarizes the macro backdrop for the session.
type MacroAssessment struct {
	Climate   string         `json:"climate"`
	Readings  []MacroReading `json:"readings"`
	Narrative string         `json:"narrative"`
}

// AssessMacroClimate scores the backdrop from whichever indicators
// were fetched. GDP growth above 2% and inflation below 3% each count
// favorable; unemployment above 5% and inflation above 4% each count
// unfavorable. Readings are ordered by indicator name for stable
// output.
func AssessMacroClimate(series map[string]providers.MacroSeries) MacroAssessment {
	assessment := MacroAssessment{Climate: ClimateNeutral}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	favorable, unfavorable := 0, 0
	var notes []string
	for _, name := range names {
		s := series[name]
		latest, ok := s.Latest()
		if !ok {
			continue
		}
		assessment.Readings = append(assessment.Readings, MacroReading{
			Indicator: name,
			Latest:    latest.Value,
			Trend:     seriesTrend(s),
		})

		switch name {
		case "gdp-growth":
			if latest.Value > 2 {
				favorable++
				notes = append(notes, fmt.Sprintf("GDP growing %.1f%%", latest.Value))
			} else if latest.Value < 0 {
				unfavorable++
				notes = append(notes, fmt.Sprintf("GDP contracting %.1f%%", latest.Value))
			}
		case "inflation":
			if latest.Value > 4 {
				unfavorable++
				notes = append(notes, fmt.Sprintf("inflation elevated at %.1f%%", latest.Value))
			} else if latest.Value < 3 {
				favorable++
			}
		case "unemployment":
			if latest.Value > 5 {
				unfavorable++
				notes = append(notes, fmt.Sprintf("unemployment at %.1f%%", latest.Value))
			} else {
				favorable++
			}
		}
	}

	switch {
	case favorable > unfavorable:
		assessment.Climate = ClimateFavorable
	case unfavorable > favorable:
		assessment.Climate = ClimateUnfavorable
	}

	if len(notes) == 0 {
		assessment.Narrative = fmt.Sprintf("macro backdrop is %s", assessment.Climate)
	} else {
		assessment.Narrative = fmt.Sprintf("macro backdrop is %s: %s",
			assessment.Climate, strings.Join(notes, ", "))
	}
	return assessment
}

// seriesTrend compares the latest observation against the window
// average.
func seriesTrend(s providers.MacroSeries) string {
	if len(s.Points) < 2 {
		return "flat"
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
	}
	avg := sum / float64(len(s.Points))
	latest := s.Points[len(s.Points)-1].Value

	switch {
	case latest > avg*1.02:
		return "rising"
	case latest < avg*0.98:
		return "falling"
	default:
		return "flat"
	}
}
