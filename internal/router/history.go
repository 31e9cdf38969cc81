package router

import (
	"context"
	"fmt"
	"strings"
)

// renderHistory fetches the channel's recent messages and renders them
// oldest-first, one line per message, annotating resolvable replies with the
// target's author so the completion can spot in-progress human conversations.
func (e *Engine) renderHistory(ctx context.Context, channelID string) (string, error) {
	recent, err := e.ops.RecentMessages(ctx, channelID, e.historyLimit)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}

	byID := make(map[string]*Message, len(recent))
	for i := range recent {
		byID[recent[i].ID] = &recent[i]
	}

	lines := make([]string, 0, len(recent))
	// newest-first from the platform; render oldest-first
	for i := len(recent) - 1; i >= 0; i-- {
		m := &recent[i]
		line := fmt.Sprintf("%s: %s", m.AuthorName, m.Content)

		if m.ReplyToID != "" {
			if target := e.resolveReplyAuthor(ctx, byID, m.ChannelID, m.ReplyToID); target != "" {
				line = fmt.Sprintf("%s (replying to %s): %s", m.AuthorName, target, m.Content)
			}
		}
		if len(m.Embeds) > 0 {
			line += " " + embedSummary(m.Embeds[0])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// resolveReplyAuthor prefers the already-fetched batch; a miss falls back to
// one fetch and an unresolvable target drops the annotation.
func (e *Engine) resolveReplyAuthor(ctx context.Context, byID map[string]*Message, channelID, messageID string) string {
	if m, ok := byID[messageID]; ok {
		return m.AuthorName
	}
	m, err := e.ops.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		return ""
	}
	return m.AuthorName
}
