package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const worldBankBaseURL = "https://api.worldbank.org"

// worldBankIndicators maps logical macro indicators onto World Bank
// indicator codes for the US.
var worldBankIndicators = map[string]string{
	"gdp-growth":   "NY.GDP.MKTP.KD.ZG",
	"inflation":    "FP.CPI.TOTL.ZG",
	"unemployment": "SL.UEM.TOTL.ZS",
}

// WorldBank is the keyless macro fallback behind FRED. Annual
// granularity only.
type WorldBank struct {
	rest  *restClient
	cache *Cache
}

func NewWorldBank(cache *Cache) *WorldBank {
	return &WorldBank{
		rest:  newRestClient("worldbank", worldBankBaseURL, NewRateLimiter("worldbank", 60)),
		cache: cache,
	}
}

func (w *WorldBank) Name() string    { return "worldbank" }
func (w *WorldBank) Available() bool { return true }

func (w *WorldBank) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointMacroSeries
}

type worldBankRow struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func (w *WorldBank) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !w.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("worldbank", req.Endpoint)
	}
	indicator, err := requireParam("worldbank", req, "indicator")
	if err != nil {
		return nil, err
	}
	code, ok := worldBankIndicators[indicator]
	if !ok {
		return nil, NewNotFoundError("worldbank", indicator)
	}

	return cachedFetch(ctx, w.cache, "worldbank", req, func(ctx context.Context) (any, error) {
		body, err := w.rest.getBody(ctx, "/v2/country/USA/indicator/"+code, map[string]string{
			"format":   "json",
			"per_page": "10",
		})
		if err != nil {
			return nil, err
		}

		// The payload is a two-element array: [metadata, rows].
		var envelope []json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil || len(envelope) < 2 {
			return nil, NewValidationError("worldbank", code,
				fmt.Errorf("unexpected envelope shape"))
		}
		var rows []worldBankRow
		if err := json.Unmarshal(envelope[1], &rows); err != nil {
			return nil, NewValidationError("worldbank", code, err)
		}

		series := &MacroSeries{Indicator: indicator, Unit: "percent"}
		// Rows arrive newest first; reverse into chronological order.
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].Value == nil {
				continue
			}
			year, err := time.Parse("2006", rows[i].Date)
			if err != nil {
				continue
			}
			series.Points = append(series.Points, MacroPoint{Date: year, Value: *rows[i].Value})
		}
		if len(series.Points) == 0 {
			return nil, NewNotFoundError("worldbank", indicator)
		}
		return series, nil
	})
}
