package providers

import (
	"context"
	"fmt"
	"strings"

	"investpath/internal/infrastructure"
)

// Chain is an ordered list of interchangeable adapters for one logical
// data need. Candidates are tried strictly in order; the first fully
// parsed success wins and every earlier failure is kept as a warning.
type Chain struct {
	need     string
	adapters []Adapter
}

// ChainResult carries the winning response plus the failure notices
// collected from candidates tried before it.
type ChainResult struct {
	Response *Response `json:"response"`
	Warnings []string  `json:"warnings,omitempty"`
}

// ExhaustedError is returned when every candidate in a chain failed.
type ExhaustedError struct {
	Need   string
	Causes []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Causes))
	for i, cause := range e.Causes {
		msgs[i] = cause.Error()
	}
	return fmt.Sprintf("all providers failed for %s: %s", e.Need, strings.Join(msgs, "; "))
}

// NewChain creates a fallback chain for one data need.
func NewChain(need string, adapters ...Adapter) *Chain {
	return &Chain{need: need, adapters: adapters}
}

// Need returns the logical data need this chain serves.
func (c *Chain) Need() string { return c.need }

// Adapters returns the candidates in configured order.
func (c *Chain) Adapters() []Adapter { return c.adapters }

// Fetch tries candidates in order and returns the first success. A
// candidate that is unconfigured counts as a failed candidate so the
// chain degrades cleanly when keys are absent.
func (c *Chain) Fetch(ctx context.Context, req Request) (*ChainResult, error) {
	result := &ChainResult{}
	var causes []error

	for _, adapter := range c.adapters {
		if !adapter.Available() {
			err := NewConfigurationError(adapter.Name(), "adapter not configured")
			result.Warnings = append(result.Warnings, err.Error())
			causes = append(causes, err)
			continue
		}
		if !adapter.Supports(req.Endpoint) {
			err := unsupportedEndpoint(adapter.Name(), req.Endpoint)
			result.Warnings = append(result.Warnings, err.Error())
			causes = append(causes, err)
			continue
		}

		resp, err := adapter.Fetch(ctx, req)
		infrastructure.ObserveFetch(adapter.Name(), err)
		if err == nil {
			result.Response = resp
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Warnings = append(result.Warnings, err.Error())
		causes = append(causes, err)
	}

	return nil, &ExhaustedError{Need: c.need, Causes: causes}
}
