package providers

import (
	"context"
	"fmt"
	"time"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub serves real-time quotes, company profiles and analyst
// recommendation trends. Free tier allows 60 calls per minute.
type Finnhub struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

// NewFinnhub creates the adapter; the API key is mandatory.
func NewFinnhub(apiKey string, cache *Cache) (*Finnhub, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("finnhub", "API key is required")
	}
	return &Finnhub{
		rest:   newRestClient("finnhub", finnhubBaseURL, NewRateLimiter("finnhub", 60)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (f *Finnhub) Name() string    { return "finnhub" }
func (f *Finnhub) Available() bool { return f.apiKey != "" }

func (f *Finnhub) Supports(endpoint Endpoint) bool {
	switch endpoint {
	case EndpointQuote, EndpointCompanyProfile, EndpointAnalystRatings:
		return true
	}
	return false
}

func (f *Finnhub) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !f.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("finnhub", req.Endpoint)
	}
	symbol, err := requireParam("finnhub", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, f.cache, "finnhub", req, func(ctx context.Context) (any, error) {
		switch req.Endpoint {
		case EndpointQuote:
			return f.quote(ctx, symbol)
		case EndpointCompanyProfile:
			return f.profile(ctx, symbol)
		default:
			return f.ratings(ctx, symbol)
		}
	})
}

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (f *Finnhub) quote(ctx context.Context, symbol string) (*Quote, error) {
	var raw finnhubQuote
	err := f.rest.getJSON(ctx, "/quote", map[string]string{
		"symbol": symbol,
		"token":  f.apiKey,
	}, &raw)
	if err != nil {
		return nil, err
	}
	// Finnhub answers unknown tickers with an all-zero quote.
	if raw.Current == 0 && raw.Timestamp == 0 {
		return nil, NewNotFoundError("finnhub", symbol)
	}
	return &Quote{
		Symbol:        symbol,
		Price:         raw.Current,
		Change:        raw.Change,
		ChangePercent: raw.ChangePercent,
		PreviousClose: raw.PreviousClose,
		Currency:      "USD",
		AsOf:          time.Unix(raw.Timestamp, 0).UTC(),
	}, nil
}

type finnhubProfile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	WebURL               string  `json:"weburl"`
	Currency             string  `json:"currency"`
}

func (f *Finnhub) profile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	var raw finnhubProfile
	err := f.rest.getJSON(ctx, "/stock/profile2", map[string]string{
		"symbol": symbol,
		"token":  f.apiKey,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, NewNotFoundError("finnhub", symbol)
	}
	return &CompanyProfile{
		Symbol:    symbol,
		Name:      raw.Name,
		Sector:    raw.FinnhubIndustry,
		Industry:  raw.FinnhubIndustry,
		MarketCap: raw.MarketCapitalization * 1e6, // reported in millions
		Website:   raw.WebURL,
	}, nil
}

type finnhubRecommendation struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// ratings expands the most recent recommendation-trend row into one
// rating entry per analyst so the consensus aggregator can classify
// them uniformly with providers that report individual calls.
func (f *Finnhub) ratings(ctx context.Context, symbol string) ([]AnalystRating, error) {
	var rows []finnhubRecommendation
	err := f.rest.getJSON(ctx, "/stock/recommendation", map[string]string{
		"symbol": symbol,
		"token":  f.apiKey,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewNotFoundError("finnhub", fmt.Sprintf("recommendations for %s", symbol))
	}

	latest := rows[0]
	date, _ := time.Parse("2006-01-02", latest.Period)

	var ratings []AnalystRating
	expand := func(label string, count int) {
		for i := 0; i < count; i++ {
			ratings = append(ratings, AnalystRating{
				Symbol: symbol,
				Rating: label,
				Date:   date,
			})
		}
	}
	expand("Strong Buy", latest.StrongBuy)
	expand("Buy", latest.Buy)
	expand("Hold", latest.Hold)
	expand("Sell", latest.Sell)
	expand("Strong Sell", latest.StrongSell)
	return ratings, nil
}
