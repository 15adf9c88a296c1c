package providers

import (
	"context"
	"encoding/xml"
	"time"
)

const secEdgarBaseURL = "https://www.sec.gov"

// SECEdgar lists recent registry filings (10-K, 10-Q, 8-K) from the
// SEC's EDGAR company browser. Keyless, but EDGAR rejects requests
// without a descriptive User-Agent.
type SECEdgar struct {
	rest  *restClient
	cache *Cache
}

func NewSECEdgar(userAgent string, cache *Cache) (*SECEdgar, error) {
	if userAgent == "" {
		return nil, NewConfigurationError("secedgar", "a contact User-Agent is required by EDGAR")
	}
	rc := newRestClient("secedgar", secEdgarBaseURL, NewRateLimiter("secedgar", 60))
	rc.http.SetHeader("User-Agent", userAgent)
	rc.http.SetHeader("Accept", "application/atom+xml")
	return &SECEdgar{rest: rc, cache: cache}, nil
}

func (s *SECEdgar) Name() string    { return "secedgar" }
func (s *SECEdgar) Available() bool { return true }

func (s *SECEdgar) Supports(endpoint Endpoint) bool {
	return endpoint == EndpointFilings
}

type edgarFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Updated string `xml:"updated"`
		Link    struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Category struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

func (s *SECEdgar) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !s.Supports(req.Endpoint) {
		return nil, unsupportedEndpoint("secedgar", req.Endpoint)
	}
	symbol, err := requireParam("secedgar", req, "symbol")
	if err != nil {
		return nil, err
	}
	filingType := req.Param("type")
	if filingType == "" {
		filingType = "10-K"
	}

	return cachedFetch(ctx, s.cache, "secedgar", req, func(ctx context.Context) (any, error) {
		body, err := s.rest.getBody(ctx, "/cgi-bin/browse-edgar", map[string]string{
			"action":  "getcompany",
			"company": symbol,
			"type":    filingType,
			"output":  "atom",
			"count":   "10",
		})
		if err != nil {
			return nil, err
		}

		var feed edgarFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return nil, NewValidationError("secedgar", "browse-edgar", err)
		}
		if len(feed.Entries) == 0 {
			return nil, NewNotFoundError("secedgar", symbol)
		}

		filings := make([]Filing, 0, len(feed.Entries))
		for _, entry := range feed.Entries {
			filedAt, _ := time.Parse(time.RFC3339, entry.Updated)
			filings = append(filings, Filing{
				Symbol:      symbol,
				Type:        entry.Category.Term,
				FiledAt:     filedAt,
				URL:         entry.Link.Href,
				Description: entry.Title,
			})
		}
		return filings, nil
	})
}
