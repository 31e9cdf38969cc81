// Package heuristics contains the pure text checks the routing engine uses to
// gate replies. These are deliberate substring and keyword matches, not NLP;
// the contract is keyword membership and nothing stronger.
package heuristics

import (
	"regexp"
	"strings"
)

var mutePhrases = []string{
	"shut up stupid bot",
	"bot be quiet",
}

var pstreamKeywords = []string{
	"pstream", "p-stream", "streaming", "video", "movie", "show",
	"episode", "source", "extension", "febbox", "fed api", "subtitle",
	"download", "account", "proxy",
}

var offTopicKeywords = []string{
	"weather", "time", "date", "joke", "tell me a story",
	"what is", "who is", "when is",
}

var (
	answerRedirectRe = regexp.MustCompile(`(?i)\b(answer (him|her|them))\b`)
	roastTriggerRe   = regexp.MustCompile(`(?i)\b(what do you think (about|of) this|roast (him|her|them|this))\b`)
	replyLineRe      = regexp.MustCompile(`(\w+)\s*\(replying to (\w+)\):`)
)

// IsMuteTrigger reports whether text contains one of the fixed mute phrases.
// The caller still requires a bot mention or a reply to the bot before acting.
func IsMuteTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range mutePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsAnswerRedirect reports whether text asks the bot to answer the message
// being replied to.
func IsAnswerRedirect(text string) bool {
	return answerRedirectRe.MatchString(text)
}

// IsRoastTrigger reports whether text asks the bot to roast the message
// being replied to.
func IsRoastTrigger(text string) bool {
	return roastTriggerRe.MatchString(text)
}

// IsHumanToHumanReply parses a rendered history line of the form
// "author (replying to other): text" and reports whether the reply target is
// someone other than the bot. Lines without the reply annotation are not
// human-to-human. The bot-mention exception is the engine's concern.
func IsHumanToHumanReply(historyLine, botName string) bool {
	m := replyLineRe.FindStringSubmatch(historyLine)
	if m == nil {
		return false
	}
	return !strings.EqualFold(m[2], botName)
}

// IsPStreamRelevant reports whether text touches any P-Stream topic keyword.
func IsPStreamRelevant(text string) bool {
	return containsAny(text, pstreamKeywords)
}

// IsGenericOffTopicQuestion reports whether text looks like a generic
// question unrelated to P-Stream.
func IsGenericOffTopicQuestion(text string) bool {
	return containsAny(text, offTopicKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
