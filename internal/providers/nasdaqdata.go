package providers

import (
	"context"
	"time"
)

const nasdaqDataBaseURL = "https://data.nasdaq.com"

// nasdaqDatasets maps logical macro indicators onto Nasdaq Data Link
// dataset codes. Last macro fallback after FRED and the World Bank.
var nasdaqDatasets = map[string]string{
	"gdp-growth":   "FRED/A191RL1Q225SBEA",
	"inflation":    "RATEINF/INFLATION_USA",
	"unemployment": "FRED/UNRATE",
	"fed-funds":    "FRED/FEDFUNDS",
	"yield-10y":    "FRED/DGS10",
}

type NasdaqData struct {
	apiKey string
	rest   *restClient
	cache  *Cache
}

func NewNasdaqData(apiKey string, cache *Cache) (*NasdaqData, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("nasdaqdata", "NASDAQ_DATA_API_KEY not set")
	}
	return &NasdaqData{
		apiKey: apiKey,
		rest:   newRestClient("nasdaqdata", nasdaqDataBaseURL, NewDailyRateLimiter("nasdaqdata", 10, 50)),
		cache:  cache,
	}, nil
}

func (n *NasdaqData) Name() string    { return "nasdaqdata" }
func (n *NasdaqData) Available() bool { return n.apiKey != "" }

func (n *NasdaqData) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointMacroSeries
}

func (n *NasdaqData) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !n.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("nasdaqdata", req.Endpoint)
	}
	indicator, err := requireParam("nasdaqdata", req, "indicator")
	if err != nil {
		return nil, err
	}
	code, ok := nasdaqDatasets[indicator]
	if !ok {
		return nil, NewNotFoundError("nasdaqdata", indicator)
	}

	return cachedFetch(ctx, n.cache, "nasdaqdata", req, func(ctx context.Context) (any, error) {
		var envelope struct {
			Dataset struct {
				Name string  `json:"name"`
				Data [][]any `json:"data"`
			} `json:"dataset"`
		}
		err := n.rest.getJSON(ctx, "/api/v3/datasets/"+code+".json", map[string]string{
			"api_key": n.apiKey,
			"rows":    "24",
		}, &envelope)
		if err != nil {
			return nil, err
		}

		series := &MacroSeries{Indicator: indicator, Title: envelope.Dataset.Name}
		// Rows arrive newest first as [date, value] pairs.
		for i := len(envelope.Dataset.Data) - 1; i >= 0; i-- {
			row := envelope.Dataset.Data[i]
			if len(row) < 2 {
				continue
			}
			dateStr, ok := row[0].(string)
			if !ok {
				continue
			}
			value, ok := row[1].(float64)
			if !ok {
				continue
			}
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				continue
			}
			series.Points = append(series.Points, MacroPoint{Date: date, Value: value})
		}
		if len(series.Points) == 0 {
			return nil, NewNotFoundError("nasdaqdata", indicator)
		}
		return series, nil
	})
}
