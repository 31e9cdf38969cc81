package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// HTTPError is a non-2xx response from a backend. RetryAfter is parsed from
// the Retry-After header when present.
type HTTPError struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrChannelRateLimited is returned by the Limited wrapper when a channel's
// request budget is exhausted. Distinct from a backend 429.
var ErrChannelRateLimited = errors.New("channel rate limited")

// ErrMalformedResponse marks a backend reply that decoded but did not have
// the expected shape.
var ErrMalformedResponse = errors.New("unexpected response format")

// ParseRetryAfter handles both delta-seconds and HTTP-date forms. Returns 0
// when the header is absent or unparseable.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// IsRateLimited reports whether err is a backend 429 or the channel limiter.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrChannelRateLimited) {
		return true
	}
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusTooManyRequests
}

// IsTimeout reports whether err is a deadline or transport timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsMalformed reports whether err is a shape or decode failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
