package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/AykhanUV/pstream-bot/internal/router"
)

// toRouterMessage normalizes a gateway event into the engine's message type,
// resolving channel name, thread parent, and forum-post status.
func (b *Bot) toRouterMessage(m *discordgo.MessageCreate) (router.Message, error) {
	channel, err := b.channel(m.ChannelID)
	if err != nil {
		return router.Message{}, fmt.Errorf("resolve channel %s: %w", m.ChannelID, err)
	}

	msg := router.Message{
		ID:            m.ID,
		ChannelID:     m.ChannelID,
		ChannelName:   channel.Name,
		GuildID:       m.GuildID,
		AuthorID:      m.Author.ID,
		AuthorName:    resolveDisplayName(m),
		AuthorMention: m.Author.Mention(),
		AuthorBot:     m.Author.Bot,
		Content:       m.Content,
		MentionsBot:   mentionsUser(m, b.botUserID),
		IsThread:      channel.IsThread(),
	}

	if m.MessageReference != nil {
		msg.ReplyToID = m.MessageReference.MessageID
	}

	if channel.IsThread() && channel.ParentID != "" {
		if parent, err := b.channel(channel.ParentID); err == nil {
			msg.ParentName = parent.Name
			msg.IsForumPost = parent.Type == discordgo.ChannelTypeGuildForum
		}
	}

	for _, e := range m.Embeds {
		msg.Embeds = append(msg.Embeds, router.Embed{Title: e.Title, Description: e.Description})
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, router.Attachment{
			URL:         a.URL,
			Name:        a.Filename,
			ContentType: a.ContentType,
			Size:        int64(a.Size),
		})
	}
	return msg, nil
}

func (b *Bot) channel(id string) (*discordgo.Channel, error) {
	if ch, err := b.session.State.Channel(id); err == nil {
		return ch, nil
	}
	return b.session.Channel(id)
}

func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// resolveDisplayName prefers the server nick, then the global display name,
// then the account username.
func resolveDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
