// Package router is the message-routing decision engine: an ordered pipeline
// of gates that decides whether, and with which persona, the bot replies to an
// incoming message. It is platform-free; Discord specifics live behind the
// Ops interface.
package router

// Message is a normalized inbound chat message.
type Message struct {
	ID            string
	ChannelID     string
	ChannelName   string
	ParentName    string // parent channel name when the message is in a thread
	GuildID       string
	AuthorID      string
	AuthorName    string
	AuthorMention string
	AuthorBot     bool
	Content       string
	MentionsBot   bool
	ReplyToID     string
	IsThread      bool
	IsForumPost   bool
	Embeds        []Embed
	Attachments   []Attachment
}

// Embed is the subset of an embedded preview the engine cares about.
type Embed struct {
	Title       string
	Description string
}

// Attachment is a file attached to a message.
type Attachment struct {
	URL         string
	Name        string
	ContentType string
	Size        int64
}
