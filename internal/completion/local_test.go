package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/AykhanUV/pstream-bot/internal/faq"
	"github.com/AykhanUV/pstream-bot/internal/persona"
)

func localPrompt(history, message string) string {
	return persona.UserPrompt("general", history, message)
}

func newLocal(entries ...faq.Entry) *LocalResponder {
	return NewLocalResponder("PStreamBot", func() []faq.Entry { return entries })
}

func TestLocalNegativeSentimentIgnored(t *testing.T) {
	r := newLocal()
	supportPrompt := persona.Support("", false)

	for _, msg := range []string{"ahh another bot", "stupid bot again", "bots are useless"} {
		got, err := r.Generate(context.Background(), supportPrompt, localPrompt("", msg), nil)
		if err != nil {
			t.Fatalf("Generate(%q): %v", msg, err)
		}
		if got != persona.IgnoreMarker {
			t.Errorf("Generate(%q) = %q, want ignore marker", msg, got)
		}
	}
}

func TestLocalHumanToHumanIgnored(t *testing.T) {
	r := newLocal()
	history := "alice (replying to bob): try this fix"
	got, err := r.Generate(context.Background(), persona.Support("", false), localPrompt(history, "video problem"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != persona.IgnoreMarker {
		t.Errorf("human-to-human reply got %q, want ignore marker", got)
	}

	// replying to the bot is fine
	history = "alice (replying to PStreamBot): thanks but video problem persists"
	got, _ = r.Generate(context.Background(), persona.Support("", false), localPrompt(history, "video problem"), nil)
	if got == persona.IgnoreMarker {
		t.Error("reply to the bot was ignored")
	}
}

func TestLocalRoastDeterministic(t *testing.T) {
	r := newLocal()
	prompt := persona.RoastUserPrompt("bob", "hello")
	a, _ := r.Generate(context.Background(), persona.Roast(), prompt, nil)
	b, _ := r.Generate(context.Background(), persona.Roast(), prompt, nil)
	if a == "" || a != b {
		t.Errorf("roast replies differ for identical input: %q vs %q", a, b)
	}
}

func TestLocalFreeChat(t *testing.T) {
	r := newLocal()
	got, _ := r.Generate(context.Background(), persona.FreeChat(), localPrompt("", "hello there"), nil)
	if got != "Oh great, another human. What do you want?" {
		t.Errorf("freechat greeting = %q", got)
	}
	got, _ = r.Generate(context.Background(), persona.FreeChat(), localPrompt("", "whatever"), nil)
	if got != "Interesting. Not really, but I guess I have to respond." {
		t.Errorf("freechat fallback = %q", got)
	}
}

func TestLocalFAQScoring(t *testing.T) {
	r := newLocal(
		faq.Entry{Topic: "subtitles", Question: "Subtitles out of sync?", Answer: "Adjust subtitle timing in the captions menu."},
		faq.Entry{Topic: "download", Question: "How to download?", Answer: "Use the download button on the player."},
	)
	got, err := r.Generate(context.Background(), persona.Support("", false), localPrompt("", "my subtitles have wrong timing"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Adjust subtitle timing in the captions menu." {
		t.Errorf("FAQ match = %q", got)
	}
}

func TestLocalVideoEscalation(t *testing.T) {
	r := newLocal()
	sp := persona.Support("", false)

	got, _ := r.Generate(context.Background(), sp, localPrompt("", "my video has a problem"), nil)
	if !strings.Contains(got, "switch the video source") {
		t.Errorf("first video report = %q, want source-switch advice", got)
	}

	history := "PStreamBot: The primary solution is to switch the video source"
	got, _ = r.Generate(context.Background(), sp, localPrompt(history, "still a video problem"), nil)
	if !strings.Contains(got, "browser extension or using the FED API") {
		t.Errorf("follow-up video report = %q, want escalation", got)
	}
}

func TestLocalLagAnswer(t *testing.T) {
	r := newLocal()
	got, _ := r.Generate(context.Background(), persona.Support("", false), localPrompt("", "the site is so slow for me"), nil)
	if !strings.Contains(got, "Low Performance Mode") {
		t.Errorf("lag answer = %q", got)
	}
}

func TestLocalUnknownQuestionIgnored(t *testing.T) {
	r := newLocal()
	got, _ := r.Generate(context.Background(), persona.Support("", false), localPrompt("", "xy"), nil)
	if got != persona.IgnoreMarker {
		t.Errorf("unmatched question = %q, want ignore marker", got)
	}
}
