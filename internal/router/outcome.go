package router

import (
	"strings"

	"github.com/AykhanUV/pstream-bot/internal/persona"
)

// Outcome is a completion result converted from the wire sentinel into a
// typed decision at the boundary.
type Outcome struct {
	Respond bool
	Text    string
}

// InterpretCompletion applies the ignore-marker protocol. Support-persona
// replies starting with the marker suppress the response; marker-exempt
// personas (free-chat, roast, AI-chat) always respond but have a leading
// marker stripped. An empty result after stripping never responds.
func InterpretCompletion(text string, markerExempt bool) Outcome {
	if !markerExempt && strings.HasPrefix(text, persona.IgnoreMarker) {
		return Outcome{}
	}
	if markerExempt {
		text = strings.TrimSpace(strings.TrimPrefix(text, persona.IgnoreMarker))
	}
	if text == "" {
		return Outcome{}
	}
	return Outcome{Respond: true, Text: text}
}
