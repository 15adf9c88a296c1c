package analysis

import (
	"fmt"

	"investpath/internal/providers"
)

// Trend signals derived from moving averages and RSI.
const (
	SignalBullish = "bullish"
	SignalBearish = "bearish"
	SignalNeutral = "neutral"
)

// TechnicalIndicators is the optional technicals step's artifact.
type TechnicalIndicators struct {
	Symbol    string  `json:"symbol"`
	LastClose float64 `json:"last_close"`
	SMA20     float64 `json:"sma_20"`
	SMA50     float64 `json:"sma_50"`
	RSI14     float64 `json:"rsi_14"`
	Signal    string  `json:"signal"`
	Note      string  `json:"note,omitempty"`
}

const (
	smaShortPeriod = 20
	smaLongPeriod  = 50
	rsiPeriod      = 14
)

// ComputeTechnicals derives SMA20, SMA50 and a Wilder-smoothed RSI(14)
// from chronological daily bars. Requires at least 50 bars.
func ComputeTechnicals(symbol string, history []providers.PricePoint) (*TechnicalIndicators, error) {
	if len(history) < smaLongPeriod {
		return nil, fmt.Errorf("technicals for %s need at least %d bars, got %d",
			symbol, smaLongPeriod, len(history))
	}

	closes := make([]float64, len(history))
	for i, bar := range history {
		closes[i] = bar.Close
	}

	indicators := &TechnicalIndicators{
		Symbol:    symbol,
		LastClose: closes[len(closes)-1],
		SMA20:     round2(simpleMovingAverage(closes, smaShortPeriod)),
		SMA50:     round2(simpleMovingAverage(closes, smaLongPeriod)),
		RSI14:     round2(relativeStrengthIndex(closes, rsiPeriod)),
	}

	switch {
	case indicators.LastClose > indicators.SMA20 && indicators.SMA20 > indicators.SMA50:
		indicators.Signal = SignalBullish
	case indicators.LastClose < indicators.SMA20 && indicators.SMA20 < indicators.SMA50:
		indicators.Signal = SignalBearish
	default:
		indicators.Signal = SignalNeutral
	}

	switch {
	case indicators.RSI14 > 70:
		indicators.Note = "RSI indicates overbought conditions"
	case indicators.RSI14 < 30:
		indicators.Note = "RSI indicates oversold conditions"
	}
	return indicators, nil
}

// simpleMovingAverage averages the trailing period closes.
func simpleMovingAverage(closes []float64, period int) float64 {
	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// relativeStrengthIndex computes Wilder's RSI over the full series,
// seeding the averages from the first period and smoothing forward.
func relativeStrengthIndex(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
