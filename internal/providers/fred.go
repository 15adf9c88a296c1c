package providers

import (
	"context"
	"strconv"
	"time"
)

const fredBaseURL = "https://api.stlouisfed.org"

// fredSeriesIDs maps logical macro indicators onto FRED series codes.
var fredSeriesIDs = map[string]string{
	"gdp-growth":   "A191RL1Q225SBEA",
	"inflation":    "CPIAUCSL",
	"unemployment": "UNRATE",
	"fed-funds":    "FEDFUNDS",
	"yield-10y":    "DGS10",
}

// FRED serves US macro series from the St. Louis Fed. Primary macro
// source.
type FRED struct {
	rest   *restClient
	cache  *Cache
	apiKey string
}

func NewFRED(apiKey string, cache *Cache) (*FRED, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("fred", "API key is required")
	}
	return &FRED{
		rest:   newRestClient("fred", fredBaseURL, NewRateLimiter("fred", 120)),
		cache:  cache,
		apiKey: apiKey,
	}, nil
}

func (f *FRED) Name() string    { return "fred" }
func (f *FRED) Available() bool { return f.apiKey != "" }

func (f *FRED) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointMacroSeries
}

type fredObservations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func (f *FRED) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !f.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("fred", req.Endpoint)
	}
	indicator, err := requireParam("fred", req, "indicator")
	if err != nil {
		return nil, err
	}
	seriesID, ok := fredSeriesIDs[indicator]
	if !ok {
		return nil, NewNotFoundError("fred", indicator)
	}

	return cachedFetch(ctx, f.cache, "fred", req, func(ctx context.Context) (any, error) {
		var raw fredObservations
		err := f.rest.getJSON(ctx, "/fred/series/observations", map[string]string{
			"series_id":  seriesID,
			"api_key":    f.apiKey,
			"file_type":  "json",
			"sort_order": "asc",
			"limit":      "24",
		}, &raw)
		if err != nil {
			return nil, err
		}
		if len(raw.Observations) == 0 {
			return nil, NewNotFoundError("fred", seriesID)
		}

		series := &MacroSeries{Indicator: indicator}
		for _, obs := range raw.Observations {
			// FRED reports missing observations as ".".
			value, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				continue
			}
			date, err := time.Parse("2006-01-02", obs.Date)
			if err != nil {
				continue
			}
			series.Points = append(series.Points, MacroPoint{Date: date, Value: value})
		}
		if len(series.Points) == 0 {
			return nil, NewValidationError("fred", seriesID, nil)
		}
		return series, nil
	})
}
