package router

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/AykhanUV/pstream-bot/internal/completion"
)

// effectiveContent assembles the text the completion sees for a message:
// trimmed content, a Title/Body wrapper for forum posts, and a bracketed
// summary of the first embed.
func effectiveContent(msg *Message) string {
	text := strings.TrimSpace(msg.Content)
	if msg.IsForumPost {
		text = fmt.Sprintf("Title: %s\nBody: %s", msg.ChannelName, text)
	}
	if len(msg.Embeds) > 0 {
		text = fmt.Sprintf("%s\n%s", text, embedSummary(msg.Embeds[0]))
	}
	return text
}

func embedSummary(e Embed) string {
	return fmt.Sprintf("[Embed Content: Title: %s, Description: %s]", e.Title, e.Description)
}

// collectImages downloads image attachments up to maxBytes each, skipping
// oversized or failing ones. Per-attachment failures never abort the message.
func (e *Engine) collectImages(ctx context.Context, msg *Message) []completion.ImagePart {
	var parts []completion.ImagePart
	for _, att := range msg.Attachments {
		if !strings.HasPrefix(att.ContentType, "image/") {
			continue
		}
		if att.Size > e.maxImageBytes {
			e.log.Warn("image attachment too large, skipping",
				"name", att.Name, "size", att.Size)
			continue
		}
		data, err := e.ops.DownloadAttachment(ctx, att.URL, e.maxImageBytes)
		if err != nil {
			e.log.Error("fetch image attachment failed", "name", att.Name, "error", err)
			continue
		}
		parts = append(parts, completion.ImagePart{
			MimeType: att.ContentType,
			Data:     base64.StdEncoding.EncodeToString(data),
		})
	}
	return parts
}
