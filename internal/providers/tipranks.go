package providers

import (
	"context"
	"time"
)

const tipranksBaseURL = "https://api.tipranks.com"

// TipRanks is the secondary analyst-ratings source with per-analyst
// price targets.
type TipRanks struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewTipRanks(apiKey string, cache *Cache) (*TipRanks, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("tipranks", "API key is required")
	}
	return &TipRanks{
		rest:   newRestClient("tipranks", tipranksBaseURL, NewRateLimiter("tipranks", 20)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (t *TipRanks) Name() string    { return "tipranks" }
func (t *TipRanks) Available() bool { return t.apiKey != "" }

func (t *TipRanks) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointAnalystRatings
}

type tipranksPayload struct {
	Ticker  string `json:"ticker"`
	Experts []struct {
		Name    string `json:"name"`
		Firm    string `json:"firm"`
		Ratings []struct {
			Rating      string  `json:"rating"`
			PriceTarget float64 `json:"priceTarget"`
			Date        string  `json:"date"`
		} `json:"ratings"`
	} `json:"experts"`
}

func (t *TipRanks) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !t.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("tipranks", req.Endpoint)
	}
	symbol, err := requireParam("tipranks", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, t.cache, "tipranks", req, func(ctx context.Context) (any, error) {
		var raw tipranksPayload
		err := t.rest.getJSON(ctx, "/api/stocks/getData", map[string]string{
			"name":  symbol,
			"token": t.apiKey,
		}, &raw)
		if err != nil {
			return nil, err
		}
		if len(raw.Experts) == 0 {
			return nil, NewNotFoundError("tipranks", symbol)
		}

		var ratings []AnalystRating
		for _, expert := range raw.Experts {
			if len(expert.Ratings) == 0 {
				continue
			}
			// Most recent call per analyst only.
			latest := expert.Ratings[0]
			date, _ := time.Parse(time.RFC3339, latest.Date)
			ratings = append(ratings, AnalystRating{
				Symbol:      symbol,
				Firm:        expert.Firm,
				Analyst:     expert.Name,
				Rating:      latest.Rating,
				PriceTarget: latest.PriceTarget,
				Date:        date,
			})
		}
		if len(ratings) == 0 {
			return nil, NewNotFoundError("tipranks", symbol)
		}
		return ratings, nil
	})
}
