package providers

import (
	"context"
	"time"
)

const fmpBaseURL = "https://financialmodelingprep.com/api/v3"

// maxPeerRatioFetches caps how many peers get their own ratios call in
// one statements fetch, to keep a single workflow step within quota.
const maxPeerRatioFetches = 5

// FMP (Financial Modeling Prep) is the primary source for financial
// statements, TTM ratios and peer lists.
type FMP struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewFMP(apiKey string, cache *Cache) (*FMP, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("fmp", "API key is required")
	}
	return &FMP{
		rest:   newRestClient("fmp", fmpBaseURL, NewDailyRateLimiter("fmp", 10, 250)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (f *FMP) Name() string    { return "fmp" }
func (f *FMP) Available() bool { return f.apiKey != "" }

func (f *FMP) Supports(endpoint Endpoint) bool {
	switch endpoint {
	case EndpointCompanyProfile, EndpointFinancialStatements:
		return true
	}
	return false
}

func (f *FMP) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !f.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("fmp", req.Endpoint)
	}
	symbol, err := requireParam("fmp", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, f.cache, "fmp", req, func(ctx context.Context) (any, error) {
		if req.Endpoint == EndpointCompanyProfile {
			return f.profile(ctx, symbol)
		}
		return f.statements(ctx, symbol)
	})
}

type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	Description       string  `json:"description"`
	MktCap            float64 `json:"mktCap"`
	FullTimeEmployees string  `json:"fullTimeEmployees"`
	Website           string  `json:"website"`
}

func (f *FMP) profile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	var rows []fmpProfile
	err := f.rest.getJSON(ctx, "/profile/"+symbol, map[string]string{"apikey": f.apiKey}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewNotFoundError("fmp", symbol)
	}
	raw := rows[0]
	return &CompanyProfile{
		Symbol:      symbol,
		Name:        raw.CompanyName,
		Sector:      raw.Sector,
		Industry:    raw.Industry,
		Description: raw.Description,
		MarketCap:   raw.MktCap,
		Website:     raw.Website,
	}, nil
}

type fmpIncomeStatement struct {
	Date            string  `json:"date"`
	CalendarYear    string  `json:"calendarYear"`
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NetIncome       float64 `json:"netIncome"`
	EPS             float64 `json:"eps"`
}

type fmpRatiosTTM struct {
	PERatioTTM                float64 `json:"peRatioTTM"`
	PriceToBookRatioTTM       float64 `json:"priceToBookRatioTTM"`
	DebtEquityRatioTTM        float64 `json:"debtEquityRatioTTM"`
	DividendYielPercentageTTM float64 `json:"dividendYielPercentageTTM"`
	OperatingProfitMarginTTM  float64 `json:"operatingProfitMarginTTM"`
}

type fmpPeers struct {
	Symbol    string   `json:"symbol"`
	PeersList []string `json:"peersList"`
}

// statements combines the latest annual income statement, TTM ratios
// and peer ratios into one payload. Peer failures are tolerated; the
// valuation step only needs peers that resolved.
func (f *FMP) statements(ctx context.Context, symbol string) (*FinancialStatements, error) {
	var income []fmpIncomeStatement
	err := f.rest.getJSON(ctx, "/income-statement/"+symbol, map[string]string{
		"limit":  "1",
		"apikey": f.apiKey,
	}, &income)
	if err != nil {
		return nil, err
	}
	if len(income) == 0 {
		return nil, NewNotFoundError("fmp", symbol)
	}

	stmts := &FinancialStatements{
		Symbol:          symbol,
		Period:          "annual",
		Revenue:         income[0].Revenue,
		GrossProfit:     income[0].GrossProfit,
		OperatingIncome: income[0].OperatingIncome,
		NetIncome:       income[0].NetIncome,
	}
	if date, err := time.Parse("2006-01-02", income[0].Date); err == nil {
		stmts.FiscalYear = date.Year()
	}

	fund, err := f.ratios(ctx, symbol)
	if err != nil {
		return nil, err
	}
	eps := income[0].EPS
	fund.EPS = &eps
	stmts.Fundamentals = fund

	var peers fmpPeers
	if err := f.rest.getJSON(ctx, "/stock_peers", map[string]string{
		"symbol": symbol,
		"apikey": f.apiKey,
	}, &peers); err == nil {
		for i, peer := range peers.PeersList {
			if i >= maxPeerRatioFetches {
				break
			}
			peerFund, err := f.ratios(ctx, peer)
			if err != nil {
				continue
			}
			stmts.Peers = append(stmts.Peers, *peerFund)
		}
	}

	return stmts, nil
}

func (f *FMP) ratios(ctx context.Context, symbol string) (*Fundamentals, error) {
	var rows []fmpRatiosTTM
	err := f.rest.getJSON(ctx, "/ratios-ttm/"+symbol, map[string]string{"apikey": f.apiKey}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewNotFoundError("fmp", symbol)
	}

	raw := rows[0]
	fund := &Fundamentals{Symbol: symbol}
	if raw.PERatioTTM != 0 {
		pe := raw.PERatioTTM
		fund.PERatio = &pe
	}
	if raw.PriceToBookRatioTTM != 0 {
		pb := raw.PriceToBookRatioTTM
		fund.PBRatio = &pb
	}
	if raw.DebtEquityRatioTTM != 0 {
		de := raw.DebtEquityRatioTTM
		fund.DebtToEquity = &de
	}
	if raw.DividendYielPercentageTTM != 0 {
		dy := raw.DividendYielPercentageTTM
		fund.DividendYield = &dy
	}
	return fund, nil
}
