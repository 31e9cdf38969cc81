package completion

import (
	"context"
	"errors"
	"time"
)

// RetryConfig bounds the retry loop around backend calls.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig retries twice after the initial attempt with exponential
// backoff starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}
}

// RetryDo runs fn up to cfg.MaxAttempts times, retrying only on 429 and
// 5xx-class HTTP errors. Backoff doubles per attempt; a larger Retry-After
// from the server wins. Any other error propagates immediately.
func RetryDo[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		var he *HTTPError
		if !errors.As(err, &he) || !isRetryableStatus(he.Status) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := cfg.BaseDelay << attempt
		if he.RetryAfter > delay {
			delay = he.RetryAfter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
