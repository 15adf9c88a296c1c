package providers

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const stockAnalysisBaseURL = "https://stockanalysis.com"

// StockAnalysis scrapes the public sector overview table. Keyless and
// the only sector-data source, so results lean on the 24h sector
// cache.
type StockAnalysis struct {
	rest  *restClient
	cache *Cache
}

func NewStockAnalysis(cache *Cache) *StockAnalysis {
	rc := newRestClient("stockanalysis", stockAnalysisBaseURL, NewRateLimiter("stockanalysis", 10))
	rc.http.SetHeader("Accept", "text/html")
	return &StockAnalysis{rest: rc, cache: cache}
}

func (s *StockAnalysis) Name() string    { return "stockanalysis" }
func (s *StockAnalysis) Available() bool { return true }

func (s *StockAnalysis) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointSectorOverview
}

func (s *StockAnalysis) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !s.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("stockanalysis", req.Endpoint)
	}

	return cachedFetch(ctx, s.cache, "stockanalysis", req, func(ctx context.Context) (any, error) {
		body, err := s.rest.getBody(ctx, "/markets/sectors/", nil)
		if err != nil {
			return nil, err
		}
		return parseSectorTable(body)
	})
}

// parseSectorTable extracts one SectorData row per table row. Columns:
// sector name, market cap, 1M change, 1Y change. The 1Y change is the
// growth rate; momentum maps the 1M change onto [0,1] with 0.5 as
// flat and ±10% as the saturation points.
func parseSectorTable(body []byte) (*SectorOverview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, NewValidationError("stockanalysis", "sectors", err)
	}

	overview := &SectorOverview{}
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		if name == "" {
			return
		}
		marketCap, _ := parseAbbrevNumber(cells.Eq(1).Text())
		oneMonth, _ := parsePercent(cells.Eq(2).Text())
		oneYear, _ := parsePercent(cells.Eq(3).Text())

		overview.Sectors = append(overview.Sectors, SectorData{
			Name:       name,
			GrowthRate: oneYear,
			MarketCap:  marketCap,
			Momentum:   momentumFromChange(oneMonth),
		})
	})

	if len(overview.Sectors) == 0 {
		return nil, NewValidationError("stockanalysis", "sectors",
			fmt.Errorf("no sector rows found"))
	}
	return overview, nil
}

func momentumFromChange(pct float64) float64 {
	m := 0.5 + pct/20
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// parseAbbrevNumber parses figures like "$45.23T", "812.4B" or "95M".
func parseAbbrevNumber(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	cleaned = strings.TrimPrefix(cleaned, "$")
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("empty number")
	}

	multiplier := 1.0
	switch cleaned[len(cleaned)-1] {
	case 'T':
		multiplier = 1e12
		cleaned = cleaned[:len(cleaned)-1]
	case 'B':
		multiplier = 1e9
		cleaned = cleaned[:len(cleaned)-1]
	case 'M':
		multiplier = 1e6
		cleaned = cleaned[:len(cleaned)-1]
	case 'K':
		multiplier = 1e3
		cleaned = cleaned[:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return value * multiplier, nil
}

// parsePercent parses "12.41%" into 12.41.
func parsePercent(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("empty percent")
	}
	return strconv.ParseFloat(cleaned, 64)
}
