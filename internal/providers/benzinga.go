package providers

import (
	"context"
	"strconv"
	"time"
)

const benzingaBaseURL = "https://api.benzinga.com"

// Benzinga is the primary analyst-ratings source; each row is an
// individual firm's call with a price target.
type Benzinga struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewBenzinga(apiKey string, cache *Cache) (*Benzinga, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("benzinga", "API key is required")
	}
	return &Benzinga{
		rest:   newRestClient("benzinga", benzingaBaseURL, NewRateLimiter("benzinga", 60)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (b *Benzinga) Name() string    { return "benzinga" }
func (b *Benzinga) Available() bool { return b.apiKey != "" }

func (b *Benzinga) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointAnalystRatings
}

type benzingaRatings struct {
	Ratings []struct {
		Ticker        string `json:"ticker"`
		Analyst       string `json:"analyst"`
		AnalystName   string `json:"analyst_name"`
		RatingCurrent string `json:"rating_current"`
		PTCurrent     string `json:"pt_current"`
		Date          string `json:"date"`
	} `json:"ratings"`
}

func (b *Benzinga) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !b.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("benzinga", req.Endpoint)
	}
	symbol, err := requireParam("benzinga", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, b.cache, "benzinga", req, func(ctx context.Context) (any, error) {
		var raw benzingaRatings
		err := b.rest.getJSON(ctx, "/api/v2.1/calendar/ratings", map[string]string{
			"token":               b.apiKey,
			"parameters[tickers]": symbol,
			"pagesize":            "25",
		}, &raw)
		if err != nil {
			return nil, err
		}
		if len(raw.Ratings) == 0 {
			return nil, NewNotFoundError("benzinga", symbol)
		}

		ratings := make([]AnalystRating, 0, len(raw.Ratings))
		for _, row := range raw.Ratings {
			target, _ := strconv.ParseFloat(row.PTCurrent, 64)
			date, _ := time.Parse("2006-01-02", row.Date)
			ratings = append(ratings, AnalystRating{
				Symbol:      symbol,
				Firm:        row.Analyst,
				Analyst:     row.AnalystName,
				Rating:      row.RatingCurrent,
				PriceTarget: target,
				Date:        date,
			})
		}
		return ratings, nil
	})
}
