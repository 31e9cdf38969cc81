package router

import (
	"testing"

	"github.com/AykhanUV/pstream-bot/internal/persona"
)

func TestCleanDiscordFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strip header", "## Solution\ntry this", "Solution\ntry this"},
		{"link to url", "see [the guide](https://x.dev/guide)", "see https://x.dev/guide"},
		{"glued url", "guidehttps://x.dev", "guide https://x.dev"},
		{"colon before url untouched", "guide: https://x.dev", "guide: https://x.dev"},
		{"plain text untouched", "nothing to fix here", "nothing to fix here"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		if got := CleanDiscordFormatting(tt.in); got != tt.want {
			t.Errorf("%s: CleanDiscordFormatting(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestDisclosureFooters(t *testing.T) {
	mention := "<@1>"
	if got := disclosureFooter(footerCached, mention); got != "\n-# This content is AI Generated and Cached. | Requested: <@1>" {
		t.Errorf("cached footer = %q", got)
	}
	if got := disclosureFooter(footerAIChat, mention); got != "\n-# This is AI generated, may not be accurate | Requested: <@1>" {
		t.Errorf("ai-chat footer = %q", got)
	}
	if got := disclosureFooter(footerDefault, mention); got != "\n-# This is AI generated, and may not be accurate. | Requested: <@1>" {
		t.Errorf("default footer = %q", got)
	}
}

func TestInterpretCompletion(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		exempt bool
		want   Outcome
	}{
		{"support marker suppresses", persona.IgnoreMarker, false, Outcome{}},
		{"support marker prefix suppresses", persona.IgnoreMarker + " trailing", false, Outcome{}},
		{"support plain responds", "an answer", false, Outcome{Respond: true, Text: "an answer"}},
		{"exempt strips marker", persona.IgnoreMarker + " still talking", true, Outcome{Respond: true, Text: "still talking"}},
		{"exempt bare marker is empty", persona.IgnoreMarker, true, Outcome{}},
		{"empty never responds", "", true, Outcome{}},
	}
	for _, tt := range tests {
		if got := InterpretCompletion(tt.text, tt.exempt); got != tt.want {
			t.Errorf("%s: InterpretCompletion = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}
