package providers

import (
	"context"
	"strconv"
	"time"
)

const eodhdBaseURL = "https://eodhd.com"

// EODHD serves end-of-day price history. Primary history source for
// the technicals step; free tier carries a daily call quota.
type EODHD struct {
	apiKey string
	rest   *restClient
	cache  *Cache
}

func NewEODHD(apiKey string, cache *Cache) (*EODHD, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("eodhd", "EODHD_API_KEY not set")
	}
	return &EODHD{
		apiKey: apiKey,
		rest:   newRestClient("eodhd", eodhdBaseURL, NewDailyRateLimiter("eodhd", 10, 20)),
		cache:  cache,
	}, nil
}

func (e *EODHD) Name() string    { return "eodhd" }
func (e *EODHD) Available() bool { return e.apiKey != "" }

func (e *EODHD) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointPriceHistory
}

func (e *EODHD) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !e.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("eodhd", req.Endpoint)
	}
	symbol, err := requireParam("eodhd", req, "symbol")
	if err != nil {
		return nil, err
	}
	days := historyDays(req)

	return cachedFetch(ctx, e.cache, "eodhd", req, func(ctx context.Context) (any, error) {
		var raw []struct {
			Date   string  `json:"date"`
			Open   float64 `json:"open"`
			High   float64 `json:"high"`
			Low    float64 `json:"low"`
			Close  float64 `json:"close"`
			Volume int64   `json:"volume"`
		}
		err := e.rest.getJSON(ctx, "/api/eod/"+symbol+".US", map[string]string{
			"api_token": e.apiKey,
			"fmt":       "json",
			"from":      time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02"),
			"order":     "a",
		}, &raw)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, NewNotFoundError("eodhd", symbol)
		}

		points := make([]PricePoint, 0, len(raw))
		for _, bar := range raw {
			date, err := time.Parse("2006-01-02", bar.Date)
			if err != nil {
				continue
			}
			points = append(points, PricePoint{
				Date:   date,
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: bar.Volume,
			})
		}
		return points, nil
	})
}

// historyDays reads the requested lookback, defaulting to 100 trading
// sessions' worth of calendar days (enough for an SMA50 on day one).
func historyDays(req Request) int {
	if v := req.Param("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 150
}
