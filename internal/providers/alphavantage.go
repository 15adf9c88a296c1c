package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantage serves quotes and company fundamentals. The free tier
// is tightly metered: 5 calls per minute and 500 per day, so this
// adapter carries the daily-quota limiter variant.
type AlphaVantage struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewAlphaVantage(apiKey string, cache *Cache) (*AlphaVantage, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("alphavantage", "API key is required")
	}
	return &AlphaVantage{
		rest:   newRestClient("alphavantage", alphaVantageBaseURL, NewDailyRateLimiter("alphavantage", 5, 500)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (a *AlphaVantage) Name() string    { return "alphavantage" }
func (a *AlphaVantage) Available() bool { return a.apiKey != "" }

func (a *AlphaVantage) Supports(endpoint Endpoint) bool {
	switch endpoint {
	case EndpointQuote, EndpointCompanyProfile, EndpointFinancialStatements:
		return true
	}
	return false
}

func (a *AlphaVantage) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !a.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("alphavantage", req.Endpoint)
	}
	symbol, err := requireParam("alphavantage", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, a.cache, "alphavantage", req, func(ctx context.Context) (any, error) {
		switch req.Endpoint {
		case EndpointQuote:
			return a.quote(ctx, symbol)
		case EndpointCompanyProfile:
			overview, err := a.overview(ctx, symbol)
			if err != nil {
				return nil, err
			}
			return overview.toProfile(symbol), nil
		default:
			overview, err := a.overview(ctx, symbol)
			if err != nil {
				return nil, err
			}
			return overview.toStatements(symbol), nil
		}
	})
}

type alphaVantageQuoteEnvelope struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (a *AlphaVantage) quote(ctx context.Context, symbol string) (*Quote, error) {
	var raw alphaVantageQuoteEnvelope
	err := a.rest.getJSON(ctx, "/query", map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
		"apikey":   a.apiKey,
	}, &raw)
	if err != nil {
		return nil, err
	}
	// Alpha Vantage reports throttling inside a 200 body.
	if raw.Note != "" || raw.Information != "" {
		return nil, NewRateLimitError("alphavantage", time.Minute)
	}
	if raw.GlobalQuote.Symbol == "" {
		return nil, NewNotFoundError("alphavantage", symbol)
	}

	price, err := strconv.ParseFloat(raw.GlobalQuote.Price, 64)
	if err != nil {
		return nil, NewValidationError("alphavantage", "GLOBAL_QUOTE",
			fmt.Errorf("unparseable price %q", raw.GlobalQuote.Price))
	}
	change, _ := strconv.ParseFloat(raw.GlobalQuote.Change, 64)
	prevClose, _ := strconv.ParseFloat(raw.GlobalQuote.PreviousClose, 64)
	volume, _ := strconv.ParseInt(raw.GlobalQuote.Volume, 10, 64)

	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		PreviousClose: prevClose,
		Volume:        volume,
		Currency:      "USD",
		AsOf:          time.Now().UTC(),
	}, nil
}

type alphaVantageOverview struct {
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
	EPS                  string `json:"EPS"`
	BookValue            string `json:"BookValue"`
	PERatio              string `json:"PERatio"`
	PriceToBookRatio     string `json:"PriceToBookRatio"`
	DividendYield        string `json:"DividendYield"`
	RevenueTTM           string `json:"RevenueTTM"`
	OperatingMarginTTM   string `json:"OperatingMarginTTM"`
	Note                 string `json:"Note"`
}

func (a *AlphaVantage) overview(ctx context.Context, symbol string) (*alphaVantageOverview, error) {
	var raw alphaVantageOverview
	err := a.rest.getJSON(ctx, "/query", map[string]string{
		"function": "OVERVIEW",
		"symbol":   symbol,
		"apikey":   a.apiKey,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if raw.Note != "" {
		return nil, NewRateLimitError("alphavantage", time.Minute)
	}
	if raw.Name == "" {
		return nil, NewNotFoundError("alphavantage", symbol)
	}
	return &raw, nil
}

func (o *alphaVantageOverview) toProfile(symbol string) *CompanyProfile {
	profile := &CompanyProfile{
		Symbol:      symbol,
		Name:        o.Name,
		Sector:      o.Sector,
		Industry:    o.Industry,
		Description: o.Description,
	}
	if v, err := strconv.ParseFloat(o.MarketCapitalization, 64); err == nil {
		profile.MarketCap = v
	}
	if v, err := strconv.ParseFloat(o.OperatingMarginTTM, 64); err == nil {
		margin := v * 100 // reported as a fraction
		profile.OperatingMargin = &margin
	}
	return profile
}

func (o *alphaVantageOverview) toStatements(symbol string) *FinancialStatements {
	fund := &Fundamentals{Symbol: symbol}
	if v, err := strconv.ParseFloat(o.EPS, 64); err == nil {
		fund.EPS = &v
	}
	if v, err := strconv.ParseFloat(o.BookValue, 64); err == nil {
		fund.BookValuePerShare = &v
	}
	if v, err := strconv.ParseFloat(o.PERatio, 64); err == nil {
		fund.PERatio = &v
	}
	if v, err := strconv.ParseFloat(o.PriceToBookRatio, 64); err == nil {
		fund.PBRatio = &v
	}
	if v, err := strconv.ParseFloat(o.DividendYield, 64); err == nil {
		fund.DividendYield = &v
	}

	stmts := &FinancialStatements{
		Symbol:       symbol,
		Period:       "TTM",
		Fundamentals: fund,
	}
	if v, err := strconv.ParseFloat(o.RevenueTTM, 64); err == nil {
		stmts.Revenue = v
	}
	return stmts
}
