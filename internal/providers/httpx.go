package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultFetchTimeout = 30 * time.Second

// restClient bundles the pieces every HTTP-backed adapter composes: a
// resty client with an adapter-local timeout, the shared-per-adapter
// rate limiter, and the transient-retry policy.
type restClient struct {
	name    string
	http    *resty.Client
	limiter *RateLimiter
	retry   RetryConfig
}

func newRestClient(name, baseURL string, limiter *RateLimiter) *restClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(defaultFetchTimeout)
	client.SetHeader("Accept", "application/json")

	return &restClient{
		name:    name,
		http:    client,
		limiter: limiter,
		retry:   DefaultRetryConfig(),
	}
}

// getJSON performs a rate-limited GET and decodes the JSON body into
// out. Failures are classified into the FetchError taxonomy; network
// errors are retried per the adapter policy.
func (c *restClient) getJSON(ctx context.Context, path string, query map[string]string, out any) error {
	return WithRetry(ctx, c.retry, func() error {
		body, err := c.get(ctx, path, query)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return NewValidationError(c.name, path, err)
		}
		return nil
	})
}

// getBody performs a rate-limited GET and returns the raw body, for
// adapters that parse non-JSON payloads.
func (c *restClient) getBody(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	var body []byte
	err := WithRetry(ctx, c.retry, func() error {
		var err error
		body, err = c.get(ctx, path, query)
		return err
	})
	return body, err
}

func (c *restClient) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, NewNetworkError(c.name, path, err)
	}

	return c.classify(resp, path)
}

// classify maps an HTTP response to the error taxonomy: 429 to
// rate-limit with the Retry-After hint, 404 to not-found, 5xx to
// transient network, other non-2xx to validation.
func (c *restClient) classify(resp *resty.Response, path string) ([]byte, error) {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return resp.Body(), nil
	case code == http.StatusTooManyRequests:
		return nil, NewRateLimitError(c.name, retryAfter(resp))
	case code == http.StatusNotFound:
		return nil, NewNotFoundError(c.name, path)
	case code >= 500:
		return nil, NewNetworkError(c.name, path,
			fmt.Errorf("server error %d: %s", code, resp.Status()))
	default:
		return nil, NewValidationError(c.name, path,
			fmt.Errorf("unexpected status %d: %s", code, resp.String()))
	}
}

func retryAfter(resp *resty.Response) time.Duration {
	if header := resp.Header().Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Minute
}
