package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWithinWindow(t *testing.T) {
	rl := NewRateLimiter("test", 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Acquire(ctx))
	}
	assert.Equal(t, 0, rl.Remaining())
}

func TestRateLimiterBlocksUntilWindowReset(t *testing.T) {
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var slept time.Duration

	rl := NewRateLimiter("test", 2)
	rl.now = func() time.Time { return current }
	rl.sleep = func(_ context.Context, d time.Duration) error {
		slept += d
		current = current.Add(d)
		return nil
	}

	ctx := context.Background()
	require.NoError(t, rl.Acquire(ctx))
	require.NoError(t, rl.Acquire(ctx))

	// Third call queues on the window reset instead of failing.
	require.NoError(t, rl.Acquire(ctx))
	assert.Equal(t, time.Minute, slept)
	assert.Equal(t, 1, rl.Remaining())
}

func TestRateLimiterDailyQuota(t *testing.T) {
	current := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	rl := NewDailyRateLimiter("test", 100, 3)
	rl.now = func() time.Time { return current }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Acquire(ctx))
	}

	err := rl.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, ErrorKindRateLimit, KindOf(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 6*time.Hour, fe.RetryIn, "wait should run to UTC midnight")
}

func TestRateLimiterDailyQuotaResetsAtMidnight(t *testing.T) {
	current := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	rl := NewDailyRateLimiter("test", 100, 2)
	rl.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, rl.Acquire(ctx))
	require.NoError(t, rl.Acquire(ctx))
	require.Error(t, rl.Acquire(ctx))

	current = time.Date(2026, 3, 11, 0, 0, 1, 0, time.UTC)
	require.NoError(t, rl.Acquire(ctx))
	assert.Equal(t, 1, rl.DailyCount())
}

func TestRateLimiterHonorsContextCancel(t *testing.T) {
	rl := NewRateLimiter("test", 1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, rl.Acquire(ctx))

	cancel()
	err := rl.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
