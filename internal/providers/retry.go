package providers

import (
	"context"
	"time"
)

// RetryConfig defines the adapter-local retry policy for transient
// network failures.
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// DefaultRetryConfig returns the standard adapter policy: 3 attempts
// total with 1s, 2s, 4s waits between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry executes fn with exponential backoff. Only retryable
// (network) errors trigger another attempt; everything else is
// surfaced immediately.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == cfg.MaxAttempts {
			return lastErr
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}
	return lastErr
}
