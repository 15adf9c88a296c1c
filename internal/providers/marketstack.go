package providers

import (
	"context"
	"strconv"
	"time"
)

const marketstackBaseURL = "https://api.marketstack.com"

// Marketstack is the fallback price-history source behind EODHD.
type Marketstack struct {
	apiKey string
	rest   *restClient
	cache  *Cache
}

func NewMarketstack(apiKey string, cache *Cache) (*Marketstack, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("marketstack", "MARKETSTACK_API_KEY not set")
	}
	return &Marketstack{
		apiKey: apiKey,
		rest:   newRestClient("marketstack", marketstackBaseURL, NewRateLimiter("marketstack", 5)),
		cache:  cache,
	}, nil
}

func (m *Marketstack) Name() string    { return "marketstack" }
func (m *Marketstack) Available() bool { return m.apiKey != "" }

func (m *Marketstack) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointPriceHistory
}

func (m *Marketstack) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !m.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("marketstack", req.Endpoint)
	}
	symbol, err := requireParam("marketstack", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, m.cache, "marketstack", req, func(ctx context.Context) (any, error) {
		var envelope struct {
			Data []struct {
				Date   string  `json:"date"`
				Open   float64 `json:"open"`
				High   float64 `json:"high"`
				Low    float64 `json:"low"`
				Close  float64 `json:"close"`
				Volume float64 `json:"volume"`
			} `json:"data"`
		}
		err := m.rest.getJSON(ctx, "/v1/eod", map[string]string{
			"access_key": m.apiKey,
			"symbols":    symbol,
			"limit":      strconv.Itoa(historyDays(req)),
		}, &envelope)
		if err != nil {
			return nil, err
		}
		if len(envelope.Data) == 0 {
			return nil, NewNotFoundError("marketstack", symbol)
		}

		// Marketstack returns newest first; reverse into chronological
		// order to match the other history sources.
		points := make([]PricePoint, 0, len(envelope.Data))
		for i := len(envelope.Data) - 1; i >= 0; i-- {
			bar := envelope.Data[i]
			date, err := time.Parse("2006-01-02T15:04:05-0700", bar.Date)
			if err != nil {
				continue
			}
			points = append(points, PricePoint{
				Date:   date,
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: int64(bar.Volume),
			})
		}
		return points, nil
	})
}
