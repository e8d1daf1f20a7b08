package utils

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig holds the configuration for the retry mechanism.
// An empty RetryableErrors list means every error is retried.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	Timeout         time.Duration
	Jitter          bool
	RetryableErrors []string
}

// RetryableFunc defines the signature for operations that can be retried.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// DefaultRetryConfig returns the retry policy used for chat-completion calls:
// three attempts with exponential backoff and a generous per-attempt timeout.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Timeout:       30 * time.Second,
		Jitter:        true,
	}
}

// ScanRetryConfig returns the retry policy used for the per-letter id scan:
// the same attempt count with a tighter per-attempt timeout so a stuck
// letter cannot stall the whole scan.
func ScanRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Timeout:       10 * time.Second,
		Jitter:        true,
	}
}

// IsRetryableError checks if the given error is retryable based on defined patterns.
// With no patterns configured, every error is retryable.
func IsRetryableError(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	if len(patterns) == 0 {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(errMsg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// WithRetry executes the given operation with retries based on the provided config.
func WithRetry[T any](ctx context.Context, operation RetryableFunc[T], config RetryConfig) (T, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		// Create a context with timeout for this specific attempt
		attemptCtx := ctx
		cancel := func() {}
		if config.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		}

		result, err := operation(attemptCtx)
		cancel() // Release resources as soon as operation is done

		if err == nil {
			return result, nil
		}

		lastErr = err

		// If this was the last attempt, don't wait or check retryability
		if attempt == config.MaxAttempts {
			break
		}

		if !IsRetryableError(err, config.RetryableErrors) {
			break
		}

		// Backoff delay: InitialDelay * (BackoffFactor ^ (attempt - 1))
		backoff := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
		delay := time.Duration(backoff)

		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}

		if config.Jitter {
			// Up to 10% of the delay
			jitterRange := int64(delay) / 10
			if jitterRange > 0 {
				delay += time.Duration(rand.Int63n(jitterRange))
			}
		}

		// Wait for the delay or context cancellation
		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
