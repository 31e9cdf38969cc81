// Package discord connects the routing engine to the Discord gateway: event
// conversion, platform operations, and the slash-command surface.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/AykhanUV/pstream-bot/internal/channelstate"
	"github.com/AykhanUV/pstream-bot/internal/config"
	"github.com/AykhanUV/pstream-bot/internal/router"
)

// Engine is the part of the router the bot drives.
type Engine interface {
	Process(ctx context.Context, msg router.Message)
}

// Bot owns the gateway session and dispatches events to the engine.
type Bot struct {
	session *discordgo.Session
	engine  Engine
	state   *channelstate.Registry
	cfg     config.DiscordConfig
	log     *slog.Logger

	botUserID   string
	botUsername string
}

// New creates a Bot from config. The engine is wired after construction via
// SetEngine because the engine needs the bot identity, which is only known
// once the session opens.
func New(cfg config.DiscordConfig, state *channelstate.Registry, log *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		session: session,
		state:   state,
		cfg:     cfg,
		log:     log,
	}, nil
}

// SetEngine wires the routing engine. Must be called before Start.
func (b *Bot) SetEngine(e Engine) { b.engine = e }

// BotID returns the bot's user ID, available after Start.
func (b *Bot) BotID() string { return b.botUserID }

// BotUsername returns the bot's username, available after Start.
func (b *Bot) BotUsername() string { return b.botUsername }

// Connect opens the gateway and resolves the bot identity. Split from Start
// so callers can build the engine with the identity before events flow.
func (b *Bot) Connect() error {
	b.log.Info("starting discord bot")

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	user, err := b.session.User("@me")
	if err != nil {
		b.session.Close()
		return fmt.Errorf("fetch discord bot identity: %w", err)
	}
	b.botUserID = user.ID
	b.botUsername = user.Username

	b.log.Info("discord bot connected", "username", user.Username, "id", user.ID)
	return nil
}

// Start registers handlers and slash commands and begins dispatching. Connect
// must have succeeded first.
func (b *Bot) Start(ctx context.Context) error {
	if b.engine == nil {
		return fmt.Errorf("discord bot started without an engine")
	}

	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handleMessage(ctx, m)
	})
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(i)
	})

	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	b.log.Info("stopping discord bot")
	return b.session.Close()
}

// Ops returns the platform operations backed by this session.
func (b *Bot) Ops() router.Ops {
	return &channelOps{
		session: b.session,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == b.botUserID {
		return
	}

	msg, err := b.toRouterMessage(m)
	if err != nil {
		b.log.Error("convert inbound message failed", "error", err)
		return
	}

	// each message is an independent task; the engine owns all gating
	go b.engine.Process(ctx, msg)
}
