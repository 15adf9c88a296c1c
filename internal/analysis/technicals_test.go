package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/providers"
)

func barsFromCloses(closes []float64) []providers.PricePoint {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]providers.PricePoint, len(closes))
	for i, c := range closes {
		bars[i] = providers.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestComputeTechnicalsRequiresHistory(t *testing.T) {
	_, err := ComputeTechnicals("AAPL", barsFromCloses(make([]float64, 49)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 50")
}

func TestComputeTechnicalsUptrend(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	indicators, err := ComputeTechnicals("UP", barsFromCloses(closes))
	require.NoError(t, err)

	assert.Equal(t, 159.0, indicators.LastClose)
	// SMA20 over closes 140..159 is 149.5; SMA50 over 110..159 is 134.5.
	assert.Equal(t, 149.5, indicators.SMA20)
	assert.Equal(t, 134.5, indicators.SMA50)
	assert.Equal(t, SignalBullish, indicators.Signal)
	assert.Equal(t, 100.0, indicators.RSI14, "monotonic gains max out RSI")
	assert.Contains(t, indicators.Note, "overbought")
}

func TestComputeTechnicalsDowntrend(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}

	indicators, err := ComputeTechnicals("DOWN", barsFromCloses(closes))
	require.NoError(t, err)
	assert.Equal(t, SignalBearish, indicators.Signal)
	assert.Equal(t, 0.0, indicators.RSI14)
	assert.Contains(t, indicators.Note, "oversold")
}

func TestComputeTechnicalsFlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}

	indicators, err := ComputeTechnicals("FLAT", barsFromCloses(closes))
	require.NoError(t, err)
	assert.Equal(t, SignalNeutral, indicators.Signal)
	assert.Equal(t, 50.0, indicators.RSI14)
	assert.Equal(t, 100.0, indicators.SMA20)
	assert.Equal(t, 100.0, indicators.SMA50)
	assert.Empty(t, indicators.Note)
}
