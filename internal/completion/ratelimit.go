package completion

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type channelKeyType struct{}

var channelKey channelKeyType

// WithChannelID tags ctx with the channel a request belongs to; the Limited
// wrapper buckets by it. Requests without a channel share the "" bucket.
func WithChannelID(ctx context.Context, channelID string) context.Context {
	return context.WithValue(ctx, channelKey, channelID)
}

func channelIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(channelKey).(string)
	return id
}

// LimitedGenerator enforces a per-channel requests-per-minute budget in front
// of another Generator. Over-budget requests fail fast with
// ErrChannelRateLimited instead of queueing.
type LimitedGenerator struct {
	inner     Generator
	perMinute int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Limited wraps inner with the budget. A non-positive perMinute disables
// limiting.
func Limited(inner Generator, perMinute int) Generator {
	if perMinute <= 0 {
		return inner
	}
	return &LimitedGenerator{
		inner:     inner,
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (g *LimitedGenerator) limiter(channelID string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[channelID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(g.perMinute)/60.0), g.perMinute)
		g.limiters[channelID] = l
	}
	return l
}

func (g *LimitedGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, images []ImagePart) (string, error) {
	if !g.limiter(channelIDFrom(ctx)).Allow() {
		return "", ErrChannelRateLimited
	}
	return g.inner.Generate(ctx, systemPrompt, userPrompt, images)
}
