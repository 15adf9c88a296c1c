package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a per-adapter fixed-window request budget. All
// workflow sessions in the process draw from the same budget, matching
// how the upstream providers meter their quotas.
//
// A limiter with a daily quota additionally refuses calls once the
// UTC-day allowance is spent; daily exhaustion is surfaced as a
// rate-limit error with the wait until midnight rather than blocking
// the caller for hours.
type RateLimiter struct {
	mu sync.Mutex

	provider          string
	requestsPerMinute int
	requestsRemaining int
	resetTime         time.Time

	dailyLimit        int // 0 means no daily quota
	dailyRequestCount int
	dailyResetTime    time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter with a per-minute ceiling.
func NewRateLimiter(provider string, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		provider:          provider,
		requestsPerMinute: requestsPerMinute,
		requestsRemaining: requestsPerMinute,
		now:               time.Now,
		sleep:             sleepCtx,
	}
}

// NewDailyRateLimiter creates a limiter with both a per-minute ceiling
// and a daily quota that resets at UTC midnight.
func NewDailyRateLimiter(provider string, requestsPerMinute, dailyLimit int) *RateLimiter {
	rl := NewRateLimiter(provider, requestsPerMinute)
	rl.dailyLimit = dailyLimit
	return rl
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Acquire blocks until a request slot is available or ctx is done.
// Callers past the window queue on the window reset instead of
// exceeding the provider limit. Returns a rate-limit FetchError when
// the daily quota is exhausted.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := rl.now()

		if rl.dailyLimit > 0 {
			if now.After(rl.dailyResetTime) {
				rl.dailyRequestCount = 0
				rl.dailyResetTime = nextUTCMidnight(now)
			}
			if rl.dailyRequestCount >= rl.dailyLimit {
				wait := rl.dailyResetTime.Sub(now)
				rl.mu.Unlock()
				return NewRateLimitError(rl.provider, wait)
			}
		}

		if now.After(rl.resetTime) {
			rl.requestsRemaining = rl.requestsPerMinute
			rl.resetTime = now.Add(time.Minute)
		}

		if rl.requestsRemaining > 0 {
			rl.requestsRemaining--
			rl.dailyRequestCount++
			rl.mu.Unlock()
			return nil
		}

		wait := rl.resetTime.Sub(now)
		rl.mu.Unlock()

		if err := rl.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining returns the slots left in the current window.
func (rl *RateLimiter) Remaining() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.now().After(rl.resetTime) {
		return rl.requestsPerMinute
	}
	return rl.requestsRemaining
}

// DailyCount returns the number of requests made in the current UTC day.
func (rl *RateLimiter) DailyCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.dailyLimit > 0 && rl.now().After(rl.dailyResetTime) {
		return 0
	}
	return rl.dailyRequestCount
}

func nextUTCMidnight(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day()+1, 0, 0, 0, 0, time.UTC)
}
