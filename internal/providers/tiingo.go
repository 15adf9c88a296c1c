package providers

import (
	"context"
	"time"
)

const tiingoBaseURL = "https://api.tiingo.com"

// Tiingo serves IEX-sourced quotes; tertiary in the quote chain.
type Tiingo struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewTiingo(apiKey string, cache *Cache) (*Tiingo, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("tiingo", "API key is required")
	}
	rc := newRestClient("tiingo", tiingoBaseURL, NewRateLimiter("tiingo", 50))
	rc.http.SetHeader("Authorization", "Token "+apiKey)
	return &Tiingo{rest: rc, cache: cache, apiKey: apiKey}, nil
}

func (t *Tiingo) Name() string    { return "tiingo" }
func (t *Tiingo) Available() bool { return t.apiKey != "" }

func (t *Tiingo) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointQuote
}

type tiingoIEXRow struct {
	Ticker    string  `json:"ticker"`
	Last      float64 `json:"last"`
	TngoLast  float64 `json:"tngoLast"`
	PrevClose float64 `json:"prevClose"`
	Volume    int64   `json:"volume"`
	Timestamp string  `json:"timestamp"`
}

func (t *Tiingo) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !t.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("tiingo", req.Endpoint)
	}
	symbol, err := requireParam("tiingo", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, t.cache, "tiingo", req, func(ctx context.Context) (any, error) {
		var rows []tiingoIEXRow
		if err := t.rest.getJSON(ctx, "/iex/"+symbol, nil, &rows); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, NewNotFoundError("tiingo", symbol)
		}

		raw := rows[0]
		price := raw.TngoLast
		if price == 0 {
			price = raw.Last
		}
		asOf, _ := time.Parse(time.RFC3339, raw.Timestamp)

		return &Quote{
			Symbol:        symbol,
			Price:         price,
			Change:        price - raw.PrevClose,
			PreviousClose: raw.PrevClose,
			Volume:        raw.Volume,
			Currency:      "USD",
			AsOf:          asOf,
		}, nil
	})
}
