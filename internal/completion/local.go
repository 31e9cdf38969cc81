package completion

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/AykhanUV/pstream-bot/internal/faq"
	"github.com/AykhanUV/pstream-bot/internal/heuristics"
	"github.com/AykhanUV/pstream-bot/internal/persona"
)

// LocalResponder is an offline rule-based Generator used when no backend is
// configured or as a fallback. It recognizes the persona from the system
// prompt and answers support questions by FAQ keyword scoring. Variant lines
// are picked by hashing the prompt, so identical input yields identical
// output.
type LocalResponder struct {
	botName string
	entries func() []faq.Entry
}

// NewLocalResponder builds a responder. entries is called per request so a
// live FAQ store can back it; nil means no FAQ.
func NewLocalResponder(botName string, entries func() []faq.Entry) *LocalResponder {
	if entries == nil {
		entries = func() []faq.Entry { return nil }
	}
	return &LocalResponder{botName: botName, entries: entries}
}

var (
	historyBlockRe  = regexp.MustCompile(`--- CHAT HISTORY START ---\n([\s\S]*?)\n--- CHAT HISTORY END ---`)
	latestMessageRe = regexp.MustCompile(`The user's latest message is: "([^"]+)"`)
)

var negativeBotPhrases = []string{
	"another bot", "clanker", "bots are useless", "not helping", "stupid bot", "bad bot",
}

var roastLines = []string{
	"Wow, that's the best you could come up with? Yikes.",
	"Your message is so bland, I'm falling asleep reading it.",
	"That was... something. Not good, but definitely something.",
	"I've seen better takes from a broken keyboard.",
	"Your opinion is as useful as a screen door on a submarine.",
}

// topicPatterns maps FAQ topics to trigger terms for score boosting.
var topicPatterns = map[string][]string{
	"audio":     {"audio", "sound", "language", "english", "dub"},
	"episode":   {"episode", "wrong episode", "incorrect"},
	"subtitles": {"subtitle", "sub", "sync", "timing"},
	"slow":      {"slow", "lag", "loading", "speed"},
	"extension": {"extension", "browser extension"},
	"fedapi":    {"fed api", "febbox", "token"},
	"safe":      {"safe", "security", "trust"},
	"download":  {"download", "save"},
	"quality":   {"quality", "resolution", "hd", "4k"},
	"source":    {"source", "sources", "switch"},
	"account":   {"account", "login", "sign in"},
	"domain":    {"domain", "url", "website", "site"},
	"down":      {"down", "not working", "broken", "error"},
}

func (r *LocalResponder) Generate(_ context.Context, systemPrompt, userPrompt string, _ []ImagePart) (string, error) {
	// Score against the user's actual message, not the wrapper text around
	// it (the wrapper mentions sources and extensions and would poison
	// keyword matching).
	message := userPrompt
	if m := latestMessageRe.FindStringSubmatch(userPrompt); m != nil {
		message = m[1]
	}
	lowerPrompt := strings.ToLower(message)

	history := ""
	if m := historyBlockRe.FindStringSubmatch(userPrompt); m != nil {
		history = m[1]
	}
	lowerHistory := strings.ToLower(history)

	for _, phrase := range negativeBotPhrases {
		if strings.Contains(lowerPrompt, phrase) || strings.Contains(lowerHistory, phrase) {
			return persona.IgnoreMarker, nil
		}
	}
	if r.botName != "" && heuristics.IsHumanToHumanReply(history, r.botName) {
		return persona.IgnoreMarker, nil
	}

	if strings.Contains(systemPrompt, "ROAST") {
		return pickVariant(roastLines, userPrompt), nil
	}
	if strings.Contains(systemPrompt, "evil conversationalist") {
		return r.freeChatReply(lowerPrompt), nil
	}
	return r.supportReply(lowerPrompt, lowerHistory), nil
}

func (r *LocalResponder) freeChatReply(lowerPrompt string) string {
	switch {
	case strings.Contains(lowerPrompt, "hello"), strings.Contains(lowerPrompt, "hi"), strings.Contains(lowerPrompt, "hey"):
		return "Oh great, another human. What do you want?"
	case strings.Contains(lowerPrompt, "how are you"):
		return "I'm fine, I guess. Not that you actually care."
	case strings.Contains(lowerPrompt, "help"):
		return "Ugh, fine. What's your problem?"
	}
	return "Interesting. Not really, but I guess I have to respond."
}

func (r *LocalResponder) supportReply(lowerPrompt, lowerHistory string) string {
	keywords := promptKeywords(lowerPrompt)

	var bestMatch *faq.Entry
	bestScore := 0
	entries := r.entries()

	for i := range entries {
		e := &entries[i]
		faqLower := strings.ToLower(e.Question + " " + e.Answer)
		score := 0

		for _, kw := range keywords {
			if strings.Contains(faqLower, kw) {
				score += 2
			}
		}

		for topic, terms := range topicPatterns {
			matched := false
			for _, term := range terms {
				if strings.Contains(lowerPrompt, term) {
					matched = true
					break
				}
			}
			if matched && (e.Topic == topic || strings.Contains(faqLower, topic)) {
				score += 5
			}
		}

		if strings.Contains(lowerPrompt, "is pstream safe") || strings.Contains(lowerPrompt, "is it safe") {
			if e.Topic == "open_source" || e.Topic == "extension_safe" {
				score += 10
			}
		}
		if strings.Contains(lowerPrompt, "video") && mentionsProblem(lowerPrompt) {
			if e.Topic == "video_quality" || e.Topic == "visual_glitches" || e.Topic == "source_error" {
				score += 8
			}
		}

		if score > bestScore {
			bestScore = score
			bestMatch = e
		}
	}

	if bestMatch != nil && bestScore >= 3 {
		return bestMatch.Answer
	}

	// two-step escalation for video/audio issues
	if (strings.Contains(lowerPrompt, "video") || strings.Contains(lowerPrompt, "audio")) && mentionsProblem(lowerPrompt) {
		if strings.Contains(lowerHistory, "switch") && strings.Contains(lowerHistory, "source") {
			return "If switching sources doesn't help, you can unlock more stable sources by downloading the browser extension or using the FED API."
		}
		return "The primary solution is to switch the video source, as P-stream does not control the media files scraped from providers."
	}

	if strings.Contains(lowerPrompt, "lag") || strings.Contains(lowerPrompt, "slow") || strings.Contains(lowerPrompt, "loading") {
		if !strings.Contains(lowerPrompt, "source") && !strings.Contains(lowerPrompt, "video") {
			return "For website lag, try checking your internet connection, clearing your browser cache, or enabling 'Low Performance Mode'."
		}
	}

	return persona.IgnoreMarker
}

func mentionsProblem(lowerPrompt string) bool {
	return strings.Contains(lowerPrompt, "issue") ||
		strings.Contains(lowerPrompt, "problem") ||
		strings.Contains(lowerPrompt, "not working")
}

func promptKeywords(lowerPrompt string) []string {
	var out []string
	for _, word := range strings.Fields(lowerPrompt) {
		if len(word) > 3 {
			out = append(out, word)
		}
	}
	return out
}

func pickVariant(lines []string, seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return lines[int(h.Sum32())%len(lines)]
}
