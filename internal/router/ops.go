package router

import (
	"context"
	"errors"
)

// ErrGone means the message or channel no longer exists. Delivery paths treat
// it as expected and swallow it at debug level.
var ErrGone = errors.New("message or channel gone")

// Ops is the chat platform surface the engine needs. Everything is
// best-effort: failures are logged by the engine, never retried here.
type Ops interface {
	// FetchMessage resolves a message by ID in a channel.
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)

	// RecentMessages returns up to limit messages in a channel, newest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)

	// Reply posts content as a reply to messageID, allowing a mention of
	// mentionUserID only.
	Reply(ctx context.Context, channelID, messageID, content, mentionUserID string) error

	// React adds an emoji reaction to a message.
	React(ctx context.Context, channelID, messageID, emoji string) error

	// Typing shows the typing indicator in a channel.
	Typing(ctx context.Context, channelID string) error

	// DownloadAttachment fetches an attachment body, failing if it exceeds
	// maxBytes.
	DownloadAttachment(ctx context.Context, url string, maxBytes int64) ([]byte, error)
}
