package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AykhanUV/pstream-bot/internal/cache"
	"github.com/AykhanUV/pstream-bot/internal/channelstate"
	"github.com/AykhanUV/pstream-bot/internal/completion"
	"github.com/AykhanUV/pstream-bot/internal/config"
	"github.com/AykhanUV/pstream-bot/internal/discord"
	"github.com/AykhanUV/pstream-bot/internal/faq"
	"github.com/AykhanUV/pstream-bot/internal/router"
	"github.com/AykhanUV/pstream-bot/internal/telemetry"
)

func runServe() {
	// Setup structured logging
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	log := slog.Default()

	// Load config
	cfgPath := resolveConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	// The FAQ store degrades to empty rather than blocking startup: the bot
	// can still route, mute, and roast without a knowledge base.
	store, err := faq.NewStore(cfg.FAQPath)
	if err != nil {
		log.Warn("FAQ load failed, continuing without knowledge base", "path", cfg.FAQPath, "error", err)
	} else {
		log.Info("FAQ loaded", "path", cfg.FAQPath, "entries", len(store.Entries()))
	}

	state := channelstate.NewRegistry()
	replyCache := cache.New(cfg.CacheTTL(), cfg.Cache.MaxEntries)

	bot, err := discord.New(cfg.Discord, state, log)
	if err != nil {
		slog.Error("failed to create discord bot", "error", err)
		os.Exit(1)
	}
	if err := bot.Connect(); err != nil {
		slog.Error("failed to connect to discord", "error", err)
		os.Exit(1)
	}
	defer bot.Stop()

	gen := buildGenerator(cfg, bot.BotUsername(), store, log)

	engine := router.New(router.Config{
		Ops:             bot.Ops(),
		State:           state,
		Cache:           replyCache,
		FAQ:             store,
		Generator:       gen,
		Logger:          log,
		Tracer:          tracer,
		BotID:           bot.BotID(),
		BotName:         bot.BotUsername(),
		AllowedChannels: cfg.Routing.AllowedChannels,
		AllowedForums:   cfg.Routing.AllowedForums,
		AIChatChannelID: cfg.Routing.AIChatChannelID,
		HistoryLimit:    cfg.Routing.HistoryLimit,
		MaxImageBytes:   cfg.Routing.MaxImageBytes,
		MuteDuration:    cfg.MuteDuration(),
	})
	bot.SetEngine(engine)

	if err := bot.Start(ctx); err != nil {
		slog.Error("failed to start discord bot", "error", err)
		os.Exit(1)
	}
	log.Info("pstream-bot running", "version", Version, "backend", cfg.AI.Backend)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.FAQPath != "" {
		g.Go(func() error {
			if err := store.Watch(gctx, log); err != nil {
				log.Warn("FAQ file watcher stopped", "error", err)
			}
			return nil
		})
	}

	if cfg.Cache.SweepSeconds > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(time.Duration(cfg.Cache.SweepSeconds) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := replyCache.Sweep(); n > 0 {
						log.Debug("swept expired cache entries", "count", n)
					}
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("background worker failed", "error", err)
	}
	log.Info("graceful shutdown initiated")
}

// buildGenerator selects the completion backend from config. A nil return
// disables AI replies entirely; reactive features keep working.
func buildGenerator(cfg *config.Config, botName string, store *faq.Store, log *slog.Logger) completion.Generator {
	var gen completion.Generator
	switch cfg.AI.Backend {
	case "gemini":
		gen = completion.NewGeminiClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	case "ollama":
		gen = completion.NewOllamaClient(cfg.AI.OllamaURL, cfg.AI.Model)
	case "local":
		gen = completion.NewLocalResponder(botName, store.Entries)
	case "none":
		if cfg.AI.LocalFallback {
			log.Info("AI backend disabled, using rule-based fallback responder")
			gen = completion.NewLocalResponder(botName, store.Entries)
		} else {
			log.Info("AI backend disabled, replies limited to reactions and commands")
			return nil
		}
	}
	if gen == nil {
		return nil
	}
	return completion.Limited(gen, cfg.AI.PerChannelRPM)
}
