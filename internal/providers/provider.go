// Package providers implements the data-source adapter layer: one
// adapter per external provider, all behind a single fetch contract,
// each composing its own rate limiter, response cache and error
// classification. Fallback chains order interchangeable adapters per
// logical data need.
package providers

import (
	"context"
	"fmt"
	"time"
)

// Endpoint names a logical data need an adapter can serve.
type Endpoint string

const (
	EndpointQuote               Endpoint = "quote"
	EndpointCompanyProfile      Endpoint = "company-profile"
	EndpointFinancialStatements Endpoint = "financial-statements"
	EndpointAnalystRatings      Endpoint = "analyst-ratings"
	EndpointMacroSeries         Endpoint = "macro-series"
	EndpointSectorOverview      Endpoint = "sector-overview"
	EndpointPriceHistory        Endpoint = "price-history"
	EndpointFilings             Endpoint = "filings"
)

// Request names a logical endpoint and its parameters.
type Request struct {
	Endpoint Endpoint          `json:"endpoint"`
	Params   map[string]string `json:"params,omitempty"`
}

// Param returns a named request parameter, or "" when absent.
func (r Request) Param(name string) string {
	return r.Params[name]
}

// CacheKey derives the cache identity for this request.
func (r Request) CacheKey() string {
	key := string(r.Endpoint)
	for _, name := range []string{"symbol", "indicator", "period", "days"} {
		if v := r.Params[name]; v != "" {
			key += ":" + v
		}
	}
	return key
}

// Response is an adapter's normalized answer. Data holds one of the
// payload types below, chosen by the request endpoint.
type Response struct {
	Provider  string    `json:"provider"`
	Endpoint  Endpoint  `json:"endpoint"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	FromCache bool      `json:"from_cache"`
}

// Adapter is the uniform capability contract every provider client
// implements. Implementations validate their configuration at
// construction and fail fast with a configuration FetchError.
type Adapter interface {
	// Name returns the provider identifier (e.g. "finnhub").
	Name() string

	// Available reports whether the adapter is usable (configured).
	Available() bool

	// Supports reports whether the adapter serves the endpoint.
	Supports(endpoint Endpoint) bool

	// Fetch resolves a request, consulting the cache first, then the
	// rate limiter, then the network with adapter-local retries.
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Normalized payload types. Pointer fields mean "not reported by this
// provider"; the analysis engine treats them as absent rather than
// zero.

// Quote is a point-in-time price observation.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	Currency      string    `json:"currency"`
	AsOf          time.Time `json:"as_of"`
}

// CompanyProfile describes an issuer, including the optional
// qualitative inputs the moat scorer consumes.
type CompanyProfile struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Description string  `json:"description,omitempty"`
	MarketCap   float64 `json:"market_cap"`
	Employees   int     `json:"employees,omitempty"`
	Website     string  `json:"website,omitempty"`

	PatentCount           *int     `json:"patent_count,omitempty"`
	BrandValue            *float64 `json:"brand_value,omitempty"`
	BrandRecognition      *float64 `json:"brand_recognition,omitempty"`
	CustomerCount         *int64   `json:"customer_count,omitempty"`
	CustomerRetention     *float64 `json:"customer_retention,omitempty"`
	CustomerConcentration *float64 `json:"customer_concentration,omitempty"`
	OperatingMargin       *float64 `json:"operating_margin,omitempty"`
	OperatingEfficiency   *float64 `json:"operating_efficiency,omitempty"`
}

// Fundamentals carries the per-share figures valuation needs.
type Fundamentals struct {
	Symbol            string   `json:"symbol"`
	Price             float64  `json:"price"`
	EPS               *float64 `json:"eps,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`
	PERatio           *float64 `json:"pe_ratio,omitempty"`
	PBRatio           *float64 `json:"pb_ratio,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	Revenue           float64  `json:"revenue,omitempty"`
	NetIncome         float64  `json:"net_income,omitempty"`
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty"`
	FreeCashFlow      float64  `json:"free_cash_flow,omitempty"`
}

// FinancialStatements bundles reported statement lines for one period.
type FinancialStatements struct {
	Symbol            string         `json:"symbol"`
	Period            string         `json:"period"`
	FiscalYear        int            `json:"fiscal_year"`
	Revenue           float64        `json:"revenue"`
	GrossProfit       float64        `json:"gross_profit"`
	OperatingIncome   float64        `json:"operating_income"`
	NetIncome         float64        `json:"net_income"`
	TotalAssets       float64        `json:"total_assets"`
	TotalLiabilities  float64        `json:"total_liabilities"`
	TotalEquity       float64        `json:"total_equity"`
	OperatingCashFlow float64        `json:"operating_cash_flow"`
	Fundamentals      *Fundamentals  `json:"fundamentals,omitempty"`
	Peers             []Fundamentals `json:"peers,omitempty"`
}

// AnalystRating is a single analyst's call on a ticker.
type AnalystRating struct {
	Symbol      string    `json:"symbol"`
	Firm        string    `json:"firm,omitempty"`
	Analyst     string    `json:"analyst,omitempty"`
	Rating      string    `json:"rating"`
	PriceTarget float64   `json:"price_target,omitempty"`
	Date        time.Time `json:"date,omitempty"`
}

// MacroPoint is one observation of a macro series.
type MacroPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MacroSeries is a named macro indicator with its recent observations.
type MacroSeries struct {
	Indicator string       `json:"indicator"`
	Title     string       `json:"title,omitempty"`
	Unit      string       `json:"unit,omitempty"`
	Points    []MacroPoint `json:"points"`
}

// Latest returns the most recent observation, or ok=false when empty.
func (s *MacroSeries) Latest() (MacroPoint, bool) {
	if s == nil || len(s.Points) == 0 {
		return MacroPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// SectorData is one sector's aggregate snapshot.
type SectorData struct {
	Name       string  `json:"name"`
	GrowthRate float64 `json:"growth_rate"`
	MarketCap  float64 `json:"market_cap"`
	Momentum   float64 `json:"momentum"`
}

// IndustryReport is qualitative outlook text for a sector.
type IndustryReport struct {
	Sector  string `json:"sector"`
	Outlook string `json:"outlook"`
	Source  string `json:"source,omitempty"`
}

// SectorOverview is the sector-endpoint payload.
type SectorOverview struct {
	Sectors []SectorData     `json:"sectors"`
	Reports []IndustryReport `json:"reports,omitempty"`
}

// PricePoint is one bar of daily price history.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Filing is one registry filing reference.
type Filing struct {
	Symbol      string    `json:"symbol"`
	Type        string    `json:"type"`
	FiledAt     time.Time `json:"filed_at"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
}

// unsupportedEndpoint is the shared rejection for endpoints an adapter
// does not serve; classified as validation so fallback moves on.
func unsupportedEndpoint(provider string, endpoint Endpoint) *FetchError {
	return NewValidationError(provider, string(endpoint),
		fmt.Errorf("endpoint %s not supported", endpoint))
}
