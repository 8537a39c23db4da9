package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0

		err := Do(ctx, fastConfig(), func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("success after retries", func(t *testing.T) {
		calls := 0

		err := Do(ctx, fastConfig(), func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		failure := errors.New("connection refused")

		err := Do(ctx, fastConfig(), func() error {
			calls++
			return failure
		})

		assert.ErrorIs(t, err, failure)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error returns immediately", func(t *testing.T) {
		cfg := fastConfig()
		cfg.RetryableErrors = []string{"connection refused"}
		calls := 0

		err := Do(ctx, cfg, func() error {
			calls++
			return errors.New("permission denied")
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalid config", func(t *testing.T) {
		err := Do(ctx, Config{MaxAttempts: 0}, func() error { return nil })
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := Do(cancelled, fastConfig(), func() error { return errors.New("eof") })

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDoWithResult(t *testing.T) {
	ctx := context.Background()

	t.Run("returns result", func(t *testing.T) {
		calls := 0

		result, err := DoWithResult(ctx, fastConfig(), func() (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("i/o timeout")
			}
			return "profile", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "profile", result)
	})
}

func TestIsRetryableError(t *testing.T) {
	cfg := HTTPConfig()

	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsRetryableError(nil, cfg))
	})

	t.Run("transient network error", func(t *testing.T) {
		assert.True(t, IsRetryableError(errors.New("dial tcp 127.0.0.1:8080: connection refused"), cfg))
	})

	t.Run("application error", func(t *testing.T) {
		assert.False(t, IsRetryableError(errors.New("team name already taken"), cfg))
	})

	t.Run("case insensitive match", func(t *testing.T) {
		assert.True(t, IsRetryableError(errors.New("503 Service Unavailable"), cfg))
	})
}

func TestCalculateDelay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 4 * time.Second, Multiplier: 2.0}

	assert.Equal(t, time.Second, calculateDelay(0, cfg))
	assert.Equal(t, 2*time.Second, calculateDelay(1, cfg))
	assert.Equal(t, 4*time.Second, calculateDelay(2, cfg))
	// Capped at MaxDelay.
	assert.Equal(t, 4*time.Second, calculateDelay(10, cfg))
	// Negative attempts are clamped.
	assert.Equal(t, time.Second, calculateDelay(-1, cfg))
}
