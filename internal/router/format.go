package router

import (
	"fmt"
	"regexp"
)

var (
	markdownHeaderRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	glueURLRe        = regexp.MustCompile(`(?i)([A-Za-z0-9])(https?://)`)
)

// CleanDiscordFormatting strips markdown constructs that render badly in
// Discord: headers are removed, links become bare URLs, and a URL glued to
// preceding text gets a separating space.
func CleanDiscordFormatting(text string) string {
	if text == "" {
		return text
	}
	text = markdownHeaderRe.ReplaceAllString(text, "")
	text = markdownLinkRe.ReplaceAllString(text, "$2")
	text = glueURLRe.ReplaceAllString(text, "$1 $2")
	return text
}

// footerKind selects the disclosure footer wording.
type footerKind int

const (
	footerDefault footerKind = iota
	footerCached
	footerAIChat
)

func disclosureFooter(kind footerKind, requesterMention string) string {
	switch kind {
	case footerCached:
		return fmt.Sprintf("\n-# This content is AI Generated and Cached. | Requested: %s", requesterMention)
	case footerAIChat:
		return fmt.Sprintf("\n-# This is AI generated, may not be accurate | Requested: %s", requesterMention)
	default:
		return fmt.Sprintf("\n-# This is AI generated, and may not be accurate. | Requested: %s", requesterMention)
	}
}
