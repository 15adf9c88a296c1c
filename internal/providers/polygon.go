package providers

import (
	"context"
	"time"
)

const polygonBaseURL = "https://api.polygon.io"

// Polygon serves previous-close quotes. Free tier: 5 calls per minute.
type Polygon struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewPolygon(apiKey string, cache *Cache) (*Polygon, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("polygon", "API key is required")
	}
	return &Polygon{
		rest:   newRestClient("polygon", polygonBaseURL, NewRateLimiter("polygon", 5)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (p *Polygon) Name() string    { return "polygon" }
func (p *Polygon) Available() bool { return p.apiKey != "" }

func (p *Polygon) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointQuote
}

type polygonPrevClose struct {
	Status  string `json:"status"`
	Results []struct {
		Close     float64 `json:"c"`
		Open      float64 `json:"o"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"`
	} `json:"results"`
}

func (p *Polygon) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !p.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("polygon", req.Endpoint)
	}
	symbol, err := requireParam("polygon", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, p.cache, "polygon", req, func(ctx context.Context) (any, error) {
		var raw polygonPrevClose
		err := p.rest.getJSON(ctx, "/v2/aggs/ticker/"+symbol+"/prev", map[string]string{
			"adjusted": "true",
			"apiKey":   p.apiKey,
		}, &raw)
		if err != nil {
			return nil, err
		}
		if len(raw.Results) == 0 {
			return nil, NewNotFoundError("polygon", symbol)
		}

		bar := raw.Results[0]
		return &Quote{
			Symbol:        symbol,
			Price:         bar.Close,
			Change:        bar.Close - bar.Open,
			PreviousClose: bar.Close,
			Volume:        int64(bar.Volume),
			Currency:      "USD",
			AsOf:          time.UnixMilli(bar.Timestamp).UTC(),
		}, nil
	})
}
