package providers

import (
	"context"
	"sort"
)

// Data needs served by the catalog. Each need has one fallback chain.
const (
	NeedQuotes     = "quotes"
	NeedProfile    = "profile"
	NeedStatements = "statements"
	NeedRatings    = "ratings"
	NeedMacro      = "macro"
	NeedSector     = "sector"
	NeedHistory    = "history"
	NeedFilings    = "filings"
)

// Catalog owns the adapter fleet and its fallback chains, keyed by
// data need. Built once at startup from the configured API keys.
type Catalog struct {
	chains map[string]*Chain
	cache  *Cache
}

// NewCatalog wires chains from whatever adapters are present. Order
// inside each chain is the fallback priority.
func NewCatalog(cache *Cache, chains ...*Chain) *Catalog {
	byNeed := make(map[string]*Chain, len(chains))
	for _, chain := range chains {
		byNeed[chain.Need()] = chain
	}
	return &Catalog{chains: byNeed, cache: cache}
}

// Fetch resolves a request through the chain registered for need.
func (c *Catalog) Fetch(ctx context.Context, need string, req Request) (*ChainResult, error) {
	chain, ok := c.chains[need]
	if !ok {
		return nil, NewValidationError("catalog", need,
			errUnknownNeed(need))
	}
	return chain.Fetch(ctx, req)
}

// Chain returns the chain for a need, or nil.
func (c *Catalog) Chain(need string) *Chain {
	return c.chains[need]
}

// Cache exposes the shared response cache for stats reporting.
func (c *Catalog) Cache() *Cache { return c.cache }

// AdapterStatus is one adapter's availability snapshot for the health
// endpoint.
type AdapterStatus struct {
	Provider  string `json:"provider"`
	Need      string `json:"need"`
	Available bool   `json:"available"`
}

// Statuses reports every registered adapter's availability, ordered by
// need then chain position.
func (c *Catalog) Statuses() []AdapterStatus {
	needs := make([]string, 0, len(c.chains))
	for need := range c.chains {
		needs = append(needs, need)
	}
	sort.Strings(needs)

	var statuses []AdapterStatus
	for _, need := range needs {
		for _, adapter := range c.chains[need].Adapters() {
			statuses = append(statuses, AdapterStatus{
				Provider:  adapter.Name(),
				Need:      need,
				Available: adapter.Available(),
			})
		}
	}
	return statuses
}

type errUnknownNeed string

func (e errUnknownNeed) Error() string { return "no chain registered for need " + string(e) }
