package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/AykhanUV/pstream-bot/internal/router"
)

// channelOps implements router.Ops over a gateway session.
type channelOps struct {
	session *discordgo.Session
	httpc   *http.Client
}

func (o *channelOps) FetchMessage(_ context.Context, channelID, messageID string) (*router.Message, error) {
	m, err := o.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, mapRESTError(err)
	}
	msg := fromAPIMessage(m)
	return &msg, nil
}

func (o *channelOps) RecentMessages(_ context.Context, channelID string, limit int) ([]router.Message, error) {
	msgs, err := o.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, mapRESTError(err)
	}
	out := make([]router.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fromAPIMessage(m))
	}
	return out, nil
}

func (o *channelOps) Reply(_ context.Context, channelID, messageID, content, mentionUserID string) error {
	_, err := o.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{mentionUserID},
		},
	})
	return mapRESTError(err)
}

func (o *channelOps) React(_ context.Context, channelID, messageID, emoji string) error {
	return mapRESTError(o.session.MessageReactionAdd(channelID, messageID, emoji))
}

func (o *channelOps) Typing(_ context.Context, channelID string) error {
	return mapRESTError(o.session.ChannelTyping(channelID))
}

func (o *channelOps) DownloadAttachment(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create attachment request: %w", err)
	}
	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch attachment: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", maxBytes)
	}
	return data, nil
}

// fromAPIMessage converts a REST message. History rendering uses the raw
// account username, matching what users see in reply annotations.
func fromAPIMessage(m *discordgo.Message) router.Message {
	msg := router.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorMention = m.Author.Mention()
		msg.AuthorBot = m.Author.Bot
	}
	if m.MessageReference != nil {
		msg.ReplyToID = m.MessageReference.MessageID
	}
	for _, e := range m.Embeds {
		msg.Embeds = append(msg.Embeds, router.Embed{Title: e.Title, Description: e.Description})
	}
	return msg
}

// mapRESTError converts deleted-message and invalid-form-body REST failures
// to ErrGone; the engine swallows those at debug level.
func mapRESTError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeInvalidFormBody:
			return fmt.Errorf("%w: %v", router.ErrGone, err)
		}
	}
	return err
}
