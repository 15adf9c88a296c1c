package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/providers"
)

func seriesOf(values ...float64) providers.MacroSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := providers.MacroSeries{}
	for i, v := range values {
		s.Points = append(s.Points, providers.MacroPoint{
			Date:  start.AddDate(0, i, 0),
			Value: v,
		})
	}
	return s
}

func TestAssessMacroClimateFavorable(t *testing.T) {
	assessment := AssessMacroClimate(map[string]providers.MacroSeries{
		"gdp-growth":   seriesOf(2.1, 2.5, 2.8),
		"inflation":    seriesOf(2.9, 2.6, 2.4),
		"unemployment": seriesOf(4.2, 4.0, 3.9),
	})

	assert.Equal(t, ClimateFavorable, assessment.Climate)
	require.Len(t, assessment.Readings, 3)
	assert.Contains(t, assessment.Narrative, "GDP growing 2.8%")
}

func TestAssessMacroClimateUnfavorable(t *testing.T) {
	assessment := AssessMacroClimate(map[string]providers.MacroSeries{
		"gdp-growth":   seriesOf(1.0, 0.4, -0.6),
		"inflation":    seriesOf(4.5, 5.2, 6.1),
		"unemployment": seriesOf(5.5, 6.0, 6.4),
	})

	assert.Equal(t, ClimateUnfavorable, assessment.Climate)
	assert.Contains(t, assessment.Narrative, "inflation elevated")
}

func TestAssessMacroClimateEmptyIsNeutral(t *testing.T) {
	assessment := AssessMacroClimate(nil)
	assert.Equal(t, ClimateNeutral, assessment.Climate)
	assert.Empty(t, assessment.Readings)
}

func TestAssessMacroReadingsSortedAndTrended(t *testing.T) {
	assessment := AssessMacroClimate(map[string]providers.MacroSeries{
		"unemployment": seriesOf(4.0, 4.0, 4.0),
		"gdp-growth":   seriesOf(1.0, 2.0, 3.0),
		"inflation":    seriesOf(5.0, 4.0, 3.2),
	})

	require.Len(t, assessment.Readings, 3)
	assert.Equal(t, "gdp-growth", assessment.Readings[0].Indicator)
	assert.Equal(t, "rising", assessment.Readings[0].Trend)
	assert.Equal(t, "falling", assessment.Readings[1].Trend)
	assert.Equal(t, "flat", assessment.Readings[2].Trend)
}
