package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"garbage", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.header); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
	// HTTP-date form yields roughly the remaining duration
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	if got := ParseRetryAfter(future); got < 25*time.Second || got > 30*time.Second {
		t.Errorf("ParseRetryAfter(date) = %v, want ~30s", got)
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped429 := fmt.Errorf("gemini: %w", &HTTPError{Status: 429, Body: "slow down"})
	if !IsRateLimited(wrapped429) {
		t.Error("wrapped 429 not recognized as rate limited")
	}
	if !IsRateLimited(ErrChannelRateLimited) {
		t.Error("channel limiter error not recognized as rate limited")
	}
	if IsRateLimited(&HTTPError{Status: 500}) {
		t.Error("500 misclassified as rate limited")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("deadline not recognized as timeout")
	}
	if !IsMalformed(fmt.Errorf("decode: %w", ErrMalformedResponse)) {
		t.Error("wrapped malformed error not recognized")
	}
}

func TestRetryDoPropagatesNonRetryable(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := RetryDo(context.Background(), RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("err = %v after %d calls, want boom after 1", err, calls)
	}
}

func TestRetryDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryDo(ctx, RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour}, func() (string, error) {
		return "", &HTTPError{Status: 429}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
