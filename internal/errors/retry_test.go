package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	// Given: a function that fails twice with a retryable error then succeeds
	attempts := 0
	fn := func() error {
		attempts++
		if attempts < 3 {
			return NetworkError("connection reset", nil)
		}
		return nil
	}

	// When: retrying
	err := Retry(context.Background(), fastRetryConfig(3), fn)

	// Then: succeeds after 3 attempts
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(2), func() error {
		attempts++
		return errors.New("persistent error")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, attempts) // Initial + 2 retries
}

func TestRetry_StopsOnNonRetryableRmkError(t *testing.T) {
	// Given: a function failing with a structured, non-retryable error
	attempts := 0
	fn := func() error {
		attempts++
		return New(ErrCodeTemplateVariantNotFound, "no folder nrf52840_split", nil)
	}

	// When: retrying
	err := Retry(context.Background(), fastRetryConfig(5), fn)

	// Then: the error is returned unchanged after one attempt
	assert.Equal(t, 1, attempts)
	assert.Equal(t, ErrCodeTemplateVariantNotFound, GetCode(err))
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, fastRetryConfig(3), func() error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_OnRetryCalledPerRetry(t *testing.T) {
	var seen []int
	cfg := fastRetryConfig(2)
	cfg.OnRetry = func(attempt int, _ error) { seen = append(seen, attempt) }

	_ = Retry(context.Background(), cfg, func() error { return errors.New("x") })

	assert.Equal(t, []int{1, 2}, seen)
}

func TestRetryWithResult_ReturnsValue(t *testing.T) {
	attempts := 0
	v, err := RetryWithResult(context.Background(), fastRetryConfig(3), func() (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("first")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRetryWithResult_ReturnsZeroOnFailure(t *testing.T) {
	v, err := RetryWithResult(context.Background(), fastRetryConfig(1), func() (string, error) {
		return "partial", errors.New("nope")
	})

	assert.Error(t, err)
	assert.Equal(t, "", v)
}

func TestDefaultRetryConfig_HasSensibleDefaults(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Greater(t, cfg.MaxDelay, cfg.InitialDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
}
