package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter is a scriptable Adapter for chain tests.
type stubAdapter struct {
	name      string
	available bool
	endpoints map[Endpoint]bool
	resp      *Response
	err       error
	calls     int
}

func (s *stubAdapter) Name() string                { return s.name }
func (s *stubAdapter) Available() bool             { return s.available }
func (s *stubAdapter) Supports(e Endpoint) bool    { return s.endpoints[e] }
func (s *stubAdapter) Fetch(context.Context, Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

func quoteStub(name string, err error) *stubAdapter {
	stub := &stubAdapter{
		name:      name,
		available: true,
		endpoints: map[Endpoint]bool{EndpointQuote: true},
		err:       err,
	}
	if err == nil {
		stub.resp = &Response{
			Provider: name,
			Endpoint: EndpointQuote,
			Data:     &Quote{Symbol: "AAPL", Price: 150},
		}
	}
	return stub
}

func TestChainFirstSuccessWins(t *testing.T) {
	primary := quoteStub("finnhub", nil)
	secondary := quoteStub("yahoo", nil)
	chain := NewChain(NeedQuotes, primary, secondary)

	result, err := chain.Fetch(context.Background(), Request{
		Endpoint: EndpointQuote,
		Params:   map[string]string{"symbol": "AAPL"},
	})

	require.NoError(t, err)
	assert.Equal(t, "finnhub", result.Response.Provider)
	assert.Empty(t, result.Warnings)
	assert.Zero(t, secondary.calls, "secondary must not be consulted on primary success")
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	primary := quoteStub("finnhub", NewNetworkError("finnhub", "quote", errors.New("timeout")))
	secondary := quoteStub("yahoo", nil)
	chain := NewChain(NeedQuotes, primary, secondary)

	result, err := chain.Fetch(context.Background(), Request{Endpoint: EndpointQuote})

	require.NoError(t, err)
	assert.Equal(t, "yahoo", result.Response.Provider)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "finnhub")
}

func TestChainSkipsUnconfiguredAdapters(t *testing.T) {
	unconfigured := quoteStub("polygon", nil)
	unconfigured.available = false
	fallback := quoteStub("tiingo", nil)
	chain := NewChain(NeedQuotes, unconfigured, fallback)

	result, err := chain.Fetch(context.Background(), Request{Endpoint: EndpointQuote})

	require.NoError(t, err)
	assert.Equal(t, "tiingo", result.Response.Provider)
	assert.Zero(t, unconfigured.calls)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "not configured")
}

func TestChainExhaustion(t *testing.T) {
	first := quoteStub("finnhub", NewRateLimitError("finnhub", time.Minute))
	second := quoteStub("yahoo", NewNotFoundError("yahoo", "AAPL"))
	chain := NewChain(NeedQuotes, first, second)

	_, err := chain.Fetch(context.Background(), Request{Endpoint: EndpointQuote})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, NeedQuotes, exhausted.Need)
	assert.Len(t, exhausted.Causes, 2)
}

func TestCatalogRoutesByNeed(t *testing.T) {
	quotes := quoteStub("finnhub", nil)
	catalog := NewCatalog(NewCache(), NewChain(NeedQuotes, quotes))

	result, err := catalog.Fetch(context.Background(), NeedQuotes, Request{Endpoint: EndpointQuote})
	require.NoError(t, err)
	assert.Equal(t, "finnhub", result.Response.Provider)

	_, err = catalog.Fetch(context.Background(), NeedMacro, Request{Endpoint: EndpointMacroSeries})
	require.Error(t, err)
	assert.Equal(t, ErrorKindValidation, KindOf(err))
}

func TestCatalogStatuses(t *testing.T) {
	configured := quoteStub("finnhub", nil)
	missing := quoteStub("polygon", nil)
	missing.available = false
	catalog := NewCatalog(NewCache(), NewChain(NeedQuotes, configured, missing))

	statuses := catalog.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, AdapterStatus{Provider: "finnhub", Need: NeedQuotes, Available: true}, statuses[0])
	assert.Equal(t, AdapterStatus{Provider: "polygon", Need: NeedQuotes, Available: false}, statuses[1])
}
