package discord

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/AykhanUV/pstream-bot/internal/channelstate"
)

var commandDefinitions = []*discordgo.ApplicationCommand{
	{
		Name:        "pstream",
		Description: "Toggle between P-Stream only mode and general AI chatbot mode",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "mode",
				Description: "What mode to use",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "P-Stream Only", Value: "pstream"},
					{Name: "General AI Chatbot", Value: "general"},
					{Name: "Check Status", Value: "status"},
				},
			},
		},
	},
	{
		Name:        "freechat",
		Description: "Enable/disable freechat mode (casual, slightly evil conversationalist)",
		Options:     actionOptions("freechat"),
	},
	{
		Name:        "roast",
		Description: "Enable/disable roast mode (savage, witty, merciless)",
		Options:     actionOptions("roast"),
	},
	{
		Name:        "support",
		Description: "Manage support bot settings for this channel",
		Options:     actionOptions("support"),
	},
	{
		Name:        "channel",
		Description: "Manage channels and their modes",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add a channel with a specific mode",
				Options: []*discordgo.ApplicationCommandOption{
					channelOption("The channel to add"),
					modeOption("The mode for this channel"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove a channel",
				Options: []*discordgo.ApplicationCommandOption{
					channelOption("The channel to remove"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List all managed channels",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "mode",
				Description: "Change mode for a channel",
				Options: []*discordgo.ApplicationCommandOption{
					channelOption("The channel to update"),
					modeOption("The new mode"),
				},
			},
		},
	},
}

func actionOptions(feature string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: fmt.Sprintf("What to do with %s", feature),
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Enable", Value: "on"},
				{Name: "Disable", Value: "off"},
				{Name: "Check Status", Value: "status"},
			},
		},
	}
}

func channelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: description,
		Required:    true,
	}
}

func modeOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "mode",
		Description: description,
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "P-Stream Only", Value: "pstream"},
			{Name: "General AI Chatbot", Value: "general"},
		},
	}
}

func (b *Bot) registerCommands() error {
	for _, def := range commandDefinitions {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", def); err != nil {
			return fmt.Errorf("register /%s: %w", def.Name, err)
		}
	}
	b.log.Info("slash commands registered", "count", len(commandDefinitions))
	return nil
}

// hasPermission allows members carrying the admin role or on the fixed
// username allow-list.
func (b *Bot) hasPermission(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}
	if b.cfg.AdminRoleID != "" && slices.Contains(i.Member.Roles, b.cfg.AdminRoleID) {
		return true
	}
	return slices.Contains(b.cfg.AdminUsernames, i.Member.User.Username)
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if !b.hasPermission(i) {
		b.respondEphemeral(i, "You don't have permission to use this command.")
		return
	}

	b.log.Info("command executed", "command", data.Name, "user", i.Member.User.Username)

	var reply string
	switch data.Name {
	case "pstream":
		reply = b.handlePStreamCommand(i.ChannelID, stringOption(data.Options, "mode"))
	case "freechat":
		reply = b.handleToggleCommand(i.ChannelID, channelstate.ModeFreeChat,
			stringOption(data.Options, "action"),
			"Freechat mode enabled. I am now a casual, slightly evil conversationalist.",
			"Freechat mode disabled. Back to support duties.",
			"Freechat")
	case "roast":
		reply = b.handleToggleCommand(i.ChannelID, channelstate.ModeRoast,
			stringOption(data.Options, "action"),
			"Roast mode enabled. Prepare to be destroyed.",
			"Roast mode disabled. I will be nice(r) now.",
			"Roast")
	case "support":
		reply = b.handleSupportCommand(i.ChannelID, stringOption(data.Options, "action"))
	case "channel":
		reply = b.handleChannelCommand(data.Options)
	default:
		return
	}
	b.respondEphemeral(i, reply)
}

func (b *Bot) handlePStreamCommand(channelID, mode string) string {
	switch mode {
	case "pstream":
		b.state.SetMode(channelID, channelstate.ModePStreamOnly)
		return "✅ Switched to **P-Stream only mode**. I will only respond to P-Stream related questions unless you ping me."
	case "general":
		b.state.ClearMode(channelID, channelstate.ModePStreamOnly)
		return "✅ Switched to **General AI Chatbot mode**. I will respond to any questions and conversations."
	default:
		if b.state.Mode(channelID) == channelstate.ModePStreamOnly {
			return "Current mode: **P-Stream only**"
		}
		return "Current mode: **General AI Chatbot**"
	}
}

func (b *Bot) handleToggleCommand(channelID string, mode channelstate.Mode, action, onText, offText, label string) string {
	switch action {
	case "on":
		// setting either of freechat/roast clears the other
		b.state.SetMode(channelID, mode)
		return onText
	case "off":
		b.state.ClearMode(channelID, mode)
		return offText
	default:
		status := "disabled"
		if b.state.Mode(channelID) == mode {
			status = "enabled"
		}
		return fmt.Sprintf("%s mode is currently **%s** for this channel.", label, status)
	}
}

func (b *Bot) handleSupportCommand(channelID, action string) string {
	switch action {
	case "on":
		b.state.SetSupportDisabled(channelID, false)
		return "✅ Support bot **enabled** for this channel."
	case "off":
		b.state.SetSupportDisabled(channelID, true)
		return "✅ Support bot **disabled** for this channel."
	default:
		status := "enabled"
		if b.state.SupportDisabled(channelID) {
			status = "disabled"
		}
		return fmt.Sprintf("Support bot is currently **%s** for this channel.", status)
	}
}

func (b *Bot) handleChannelCommand(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	if len(opts) == 0 {
		return "Invalid channel command."
	}
	sub := opts[0]

	switch sub.Name {
	case "add", "mode":
		channelID := channelOptionID(sub.Options)
		mode := stringOption(sub.Options, "mode")
		if channelID == "" {
			return "Invalid channel."
		}
		if sub.Name == "mode" {
			if _, managed := b.state.Managed(channelID); !managed {
				return fmt.Sprintf("❌ <#%s> is not a managed channel. Use `/channel add` first.", channelID)
			}
		}
		b.state.Manage(channelID, channelstate.Mode(mode))
		verb := "Added"
		if sub.Name == "mode" {
			verb = "Updated"
		}
		return fmt.Sprintf("✅ %s <#%s> with mode: **%s**", verb, channelID, modeLabel(mode))
	case "remove":
		channelID := channelOptionID(sub.Options)
		if channelID == "" {
			return "Invalid channel."
		}
		b.state.Unmanage(channelID)
		return fmt.Sprintf("✅ Removed <#%s> from managed channels", channelID)
	case "list":
		managed := b.state.ManagedChannels()
		if len(managed) == 0 {
			return "No managed channels. Use `/channel add` to add channels."
		}
		var sb strings.Builder
		sb.WriteString("**Managed Channels:**\n")
		for id, mode := range managed {
			fmt.Fprintf(&sb, "<#%s> - %s\n", id, modeLabel(string(mode)))
		}
		return sb.String()
	}
	return "Invalid channel command."
}

func modeLabel(mode string) string {
	if mode == "pstream" {
		return "P-Stream only"
	}
	return "General AI Chatbot"
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func channelOptionID(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, o := range opts {
		if o.Name == "channel" {
			if v, ok := o.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Error("interaction respond failed", "error", err)
	}
}
