package persona

import (
	"strings"
	"testing"
)

func TestSupportInjectsFAQAndModeNote(t *testing.T) {
	p := Support("Q: x\nA: y", false)
	if !strings.Contains(p, "--- FAQ START ---\nQ: x\nA: y\n--- FAQ END ---") {
		t.Error("FAQ block missing from support prompt")
	}
	if !strings.Contains(p, "can help with general questions") {
		t.Error("general mode note missing")
	}

	p = Support("", true)
	if !strings.Contains(p, "P-Stream only mode") {
		t.Error("pstream-only mode note missing")
	}
	if !strings.Contains(p, IgnoreMarker) {
		t.Error("support prompt must instruct the ignore marker")
	}
}

func TestConversationalModeNote(t *testing.T) {
	if !strings.Contains(Conversational("", false), "general AI chatbot") {
		t.Error("general note missing")
	}
	if !strings.Contains(Conversational("", true), "P-Stream only mode") {
		t.Error("pstream-only note missing")
	}
}

func TestFreeChatAndRoastAreIgnoreFree(t *testing.T) {
	// special modes never silently ignore; roast has no marker, free-chat
	// only mentions it to forbid it
	if strings.Contains(Roast(), IgnoreMarker) {
		t.Error("roast prompt mentions the ignore marker")
	}
	if !strings.Contains(FreeChat(), "Do NOT use [IGNORE]") {
		t.Error("free-chat prompt must forbid the ignore marker")
	}
}

func TestUserPrompt(t *testing.T) {
	p := UserPrompt("general", "alice: hi", "video broken")
	for _, want := range []string{"#general", "alice: hi", `"video broken"`} {
		if !strings.Contains(p, want) {
			t.Errorf("UserPrompt missing %q", want)
		}
	}
}

func TestRoastUserPrompt(t *testing.T) {
	p := RoastUserPrompt("bob", "hello world")
	if p != `The user "bob" wrote: "hello world". Destroy them.` {
		t.Errorf("RoastUserPrompt = %q", p)
	}
}
