package providers

import (
	"context"
	"time"

	"github.com/piquette/finance-go/equity"
)

// Yahoo serves quotes and trailing key stats through the unofficial
// Yahoo Finance API. Keyless; throttled defensively since Yahoo
// publishes no formal quota.
type Yahoo struct {
	cache   *Cache
	limiter *RateLimiter
	retry   RetryConfig
}

func NewYahoo(cache *Cache) *Yahoo {
	return &Yahoo{
		cache:   cache,
		limiter: NewRateLimiter("yahoo", 30),
		retry:   DefaultRetryConfig(),
	}
}

func (y *Yahoo) Name() string    { return "yahoo" }
func (y *Yahoo) Available() bool { return true }

func (y *Yahoo) Supports(endpoint Endpoint) bool {
	switch endpoint {
	case EndpointQuote, EndpointFinancialStatements:
		return true
	}
	return false
}

func (y *Yahoo) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !y.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("yahoo", req.Endpoint)
	}
	symbol, err := requireParam("yahoo", req, "symbol")
	if err != nil {
		return nil, err
	}

	return cachedFetch(ctx, y.cache, "yahoo", req, func(ctx context.Context) (any, error) {
		if err := y.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		var data any
		err := WithRetry(ctx, y.retry, func() error {
			eq, err := equity.Get(symbol)
			if err != nil {
				// The library folds transport and lookup failures into
				// one error; treat them as transient and let the chain
				// move on if retries are exhausted.
				return NewNetworkError("yahoo", symbol, err)
			}
			if eq == nil || eq.RegularMarketPrice == 0 {
				return NewNotFoundError("yahoo", symbol)
			}

			if req.Endpoint == EndpointQuote {
				data = &Quote{
					Symbol:        symbol,
					Price:         eq.RegularMarketPrice,
					Change:        eq.RegularMarketChange,
					ChangePercent: eq.RegularMarketChangePercent,
					PreviousClose: eq.RegularMarketPreviousClose,
					Volume:        int64(eq.RegularMarketVolume),
					Currency:      "USD",
					AsOf:          time.Now().UTC(),
				}
				return nil
			}

			fund := &Fundamentals{Symbol: symbol, Price: eq.RegularMarketPrice}
			if eq.EpsTrailingTwelveMonths != 0 {
				eps := eq.EpsTrailingTwelveMonths
				fund.EPS = &eps
			}
			if eq.BookValue != 0 {
				bv := eq.BookValue
				fund.BookValuePerShare = &bv
			}
			if eq.PriceToBook != 0 {
				pb := eq.PriceToBook
				fund.PBRatio = &pb
			}
			if eq.TrailingPE != 0 {
				pe := eq.TrailingPE
				fund.PERatio = &pe
			}
			data = &FinancialStatements{
				Symbol:       symbol,
				Period:       "TTM",
				Fundamentals: fund,
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return data, nil
	})
}
