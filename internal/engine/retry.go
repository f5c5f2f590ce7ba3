package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/iconidentify/reelgrab/internal/domain"
)

// RetryConfig holds retry wrapper configuration.
type RetryConfig struct {
	MaxAttempts int
	// BaseDelay is the linear backoff unit: attempt n is followed by a wait
	// of n * BaseDelay, applied only between attempts.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the default attempt budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
	}
}

// WithRetry executes fn up to cfg.MaxAttempts times with linear backoff.
// Terminal failure kinds fail fast on the first attempt; everything else is
// treated as possibly transient. Panics from fn are recovered and normalized
// through the keyword classifier, then follow the same retry policy. On
// exhaustion the returned error embeds the attempt count and the last
// underlying error while preserving its failure kind.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := safeAttempt(fn)
		if err == nil {
			return result, nil
		}

		lastErr = domain.Classify(err)

		if domain.IsTerminal(lastErr) {
			return zero, lastErr
		}

		// No wait after the final attempt
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(attempt) * cfg.BaseDelay):
		}
	}

	return zero, fmt.Errorf("failed after %d attempts, last error: %w", cfg.MaxAttempts, lastErr)
}

// safeAttempt invokes fn, converting a panic into an ordinary error.
func safeAttempt[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}
