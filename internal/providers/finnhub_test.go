package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinnhub(t *testing.T, handler http.Handler) *Finnhub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	adapter, err := NewFinnhub("test-key", NewCache())
	require.NoError(t, err)
	adapter.rest.http.SetBaseURL(srv.URL)
	adapter.rest.retry = fastRetryConfig()
	return adapter
}

func TestFinnhubRequiresAPIKey(t *testing.T) {
	_, err := NewFinnhub("", NewCache())
	require.Error(t, err)
	assert.Equal(t, ErrorKindConfiguration, KindOf(err))
}

func TestFinnhubQuote(t *testing.T) {
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":178.85,"d":1.25,"dp":0.7,"h":180.1,"l":177.3,"o":177.9,"pc":177.6,"t":1709913600}`))
	}))

	resp, err := adapter.Fetch(context.Background(), Request{
		Endpoint: EndpointQuote,
		Params:   map[string]string{"symbol": "AAPL"},
	})
	require.NoError(t, err)

	quote, ok := resp.Data.(*Quote)
	require.True(t, ok)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 178.85, quote.Price)
	assert.Equal(t, 177.60, quote.PreviousClose)
	assert.False(t, resp.FromCache)
}

func TestFinnhubQuoteUnknownSymbol(t *testing.T) {
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))

	_, err := adapter.Fetch(context.Background(), Request{
		Endpoint: EndpointQuote,
		Params:   map[string]string{"symbol": "ZZZZ"},
	})
	require.Error(t, err)
	assert.Equal(t, ErrorKindNotFound, KindOf(err))
}

func TestFinnhubQuoteServedFromCache(t *testing.T) {
	hits := 0
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"c":178.85,"t":1709913600}`))
	}))

	req := Request{Endpoint: EndpointQuote, Params: map[string]string{"symbol": "AAPL"}}
	ctx := context.Background()

	first, err := adapter.Fetch(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := adapter.Fetch(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, hits, "second fetch must not reach the network")
}

func TestFinnhubRateLimitResponse(t *testing.T) {
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := adapter.Fetch(context.Background(), Request{
		Endpoint: EndpointQuote,
		Params:   map[string]string{"symbol": "AAPL"},
	})
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrorKindRateLimit, fe.Kind)
	assert.Equal(t, float64(30), fe.RetryIn.Seconds())
}

func TestFinnhubServerErrorRetried(t *testing.T) {
	calls := 0
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := adapter.Fetch(context.Background(), Request{
		Endpoint: EndpointQuote,
		Params:   map[string]string{"symbol": "AAPL"},
	})
	require.Error(t, err)
	assert.Equal(t, ErrorKindNetwork, KindOf(err))
	assert.Equal(t, 3, calls)
}

func TestFinnhubRatingsExpansion(t *testing.T) {
	adapter := newTestFinnhub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/recommendation", r.URL.Path)
		w.Write([]byte(`[{"symbol":"AAPL","period":"2026-03-01","strongBuy":2,"buy":3,"hold":1,"sell":1,"strongSell":0}]`))
	}))

	resp, err := adapter.Fetch(context.Background(), Request{
		Endpoint: EndpointAnalystRatings,
		Params:   map[string]string{"symbol": "AAPL"},
	})
	require.NoError(t, err)

	ratings, ok := resp.Data.([]AnalystRating)
	require.True(t, ok)
	require.Len(t, ratings, 7)
	assert.Equal(t, "Strong Buy", ratings[0].Rating)
	assert.Equal(t, "Sell", ratings[6].Rating)
}

func TestFinnhubRejectsUnsupportedEndpoint(t *testing.T) {
	adapter, err := NewFinnhub("test-key", NewCache())
	require.NoError(t, err)

	_, err = adapter.Fetch(context.Background(), Request{Endpoint: EndpointMacroSeries})
	require.Error(t, err)
	assert.Equal(t, ErrorKindValidation, KindOf(err))
}
