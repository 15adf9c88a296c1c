package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a provider failure. The kind decides whether the
// adapter retries the call, whether the fallback chain moves on to the
// next candidate, and how the failure is reported upstream.
type ErrorKind string

const (
	// ErrorKindNetwork covers connection failures, timeouts and 5xx
	// responses. Transient; the adapter retries these.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindRateLimit covers HTTP 429 and provider-declared quota
	// breaches. Not retried by the adapter; carries a suggested wait.
	ErrorKindRateLimit ErrorKind = "rate_limit"

	// ErrorKindValidation covers malformed or unparseable responses.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindNotFound means the requested entity does not exist at
	// this provider.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindConfiguration means the adapter is unusable until
	// reconfigured (missing API key, bad base URL).
	ErrorKindConfiguration ErrorKind = "configuration"
)

// FetchError is the error type returned by every provider adapter.
type FetchError struct {
	Kind     ErrorKind     `json:"kind"`
	Provider string        `json:"provider"`
	Endpoint string        `json:"endpoint,omitempty"`
	Message  string        `json:"message"`
	Cause    error         `json:"-"`
	RetryIn  time.Duration `json:"retry_in,omitempty"`
}

func (e *FetchError) Error() string {
	if e == nil {
		return "unknown provider error"
	}
	if e.Endpoint != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Provider, e.Kind, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retryable reports whether the adapter itself should retry the call.
// Only network failures qualify; rate limits are handed to the caller
// together with the suggested wait.
func (e *FetchError) Retryable() bool {
	return e != nil && e.Kind == ErrorKindNetwork
}

// NewNetworkError creates a transient network error.
func NewNetworkError(provider, endpoint string, cause error) *FetchError {
	msg := "request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &FetchError{
		Kind:     ErrorKindNetwork,
		Provider: provider,
		Endpoint: endpoint,
		Message:  msg,
		Cause:    cause,
	}
}

// NewRateLimitError creates a rate-limit error with a suggested wait.
func NewRateLimitError(provider string, retryIn time.Duration) *FetchError {
	return &FetchError{
		Kind:     ErrorKindRateLimit,
		Provider: provider,
		Message:  fmt.Sprintf("rate limit exceeded, retry in %s", retryIn),
		RetryIn:  retryIn,
	}
}

// NewValidationError creates a non-retryable malformed-response error.
func NewValidationError(provider, endpoint string, cause error) *FetchError {
	msg := "malformed response"
	if cause != nil {
		msg = cause.Error()
	}
	return &FetchError{
		Kind:     ErrorKindValidation,
		Provider: provider,
		Endpoint: endpoint,
		Message:  msg,
		Cause:    cause,
	}
}

// NewNotFoundError creates an entity-absent error.
func NewNotFoundError(provider, entity string) *FetchError {
	return &FetchError{
		Kind:     ErrorKindNotFound,
		Provider: provider,
		Message:  fmt.Sprintf("%s not found", entity),
	}
}

// NewConfigurationError creates a fatal configuration error.
func NewConfigurationError(provider, message string) *FetchError {
	return &FetchError{
		Kind:     ErrorKindConfiguration,
		Provider: provider,
		Message:  message,
	}
}

// KindOf returns the classification of err, or "" for nil/foreign errors.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}
