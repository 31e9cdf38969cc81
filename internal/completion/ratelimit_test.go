package completion

import (
	"context"
	"testing"
)

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, images []ImagePart) (string, error) {
	g.calls++
	return "ok", nil
}

func TestLimitedPassthroughWhenDisabled(t *testing.T) {
	inner := &countingGenerator{}
	if g := Limited(inner, 0); g != inner {
		t.Error("Limited(0) should return the inner generator unchanged")
	}
}

func TestLimitedExhaustsPerChannel(t *testing.T) {
	inner := &countingGenerator{}
	g := Limited(inner, 2)

	ctxA := WithChannelID(context.Background(), "a")
	for i := 0; i < 2; i++ {
		if _, err := g.Generate(ctxA, "s", "u", nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	_, err := g.Generate(ctxA, "s", "u", nil)
	if !IsRateLimited(err) {
		t.Errorf("third call err = %v, want channel rate limit", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}

	// another channel has its own budget
	if _, err := g.Generate(WithChannelID(context.Background(), "b"), "s", "u", nil); err != nil {
		t.Errorf("fresh channel err = %v", err)
	}
}
