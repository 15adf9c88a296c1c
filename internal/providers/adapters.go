package providers

import (
	"context"
	"fmt"
	"time"
)

// CategoryForEndpoint maps a logical endpoint onto its cache freshness
// class.
func CategoryForEndpoint(endpoint Endpoint) Category {
	switch endpoint {
	case EndpointQuote, EndpointPriceHistory:
		return CategoryQuotes
	case EndpointCompanyProfile, EndpointFilings:
		return CategoryCompanyProfiles
	case EndpointSectorOverview:
		return CategorySectorData
	case EndpointMacroSeries:
		return CategoryMacroData
	case EndpointFinancialStatements:
		return CategoryFinancialStatements
	default:
		return CategoryValuationData
	}
}

// cachedFetch is the shared read-through path every adapter uses: a
// cache hit short-circuits the network entirely, a miss runs fill and
// stores its result under the request's category key.
func cachedFetch(ctx context.Context, cache *Cache, provider string, req Request,
	fill func(ctx context.Context) (any, error)) (*Response, error) {

	category := CategoryForEndpoint(req.Endpoint)
	key := provider + ":" + req.CacheKey()

	if value, ok := cache.Get(category, key); ok {
		return &Response{
			Provider:  provider,
			Endpoint:  req.Endpoint,
			Data:      value,
			FetchedAt: time.Now(),
			FromCache: true,
		}, nil
	}

	data, err := fill(ctx)
	if err != nil {
		return nil, err
	}

	cache.Set(category, key, data)
	return &Response{
		Provider:  provider,
		Endpoint:  req.Endpoint,
		Data:      data,
		FetchedAt: time.Now(),
	}, nil
}

// requireParam extracts a mandatory request parameter.
func requireParam(provider string, req Request, name string) (string, error) {
	value := req.Param(name)
	if value == "" {
		return "", NewValidationError(provider, string(req.Endpoint),
			fmt.Errorf("parameter %q is required", name))
	}
	return value, nil
}
