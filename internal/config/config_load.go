package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Backend:       "gemini",
			Model:         "gemini-2.0-flash",
			PerChannelRPM: 10,
		},
		Routing: RoutingConfig{
			AllowedChannels: FlexibleStringSlice{"general", "mobile-app-support", "bot-commands"},
			AllowedForums:   FlexibleStringSlice{"issues-and-bugs"},
			HistoryLimit:    50,
			MuteMinutes:     5,
			MaxImageBytes:   20 * 1024 * 1024,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
			MaxEntries: 1000,
		},
		FAQPath: "faq.json",
		Telemetry: TelemetryConfig{
			ServiceName: "pstream-bot",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env are often enough.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("PSTREAM_DISCORD_TOKEN", &c.Discord.Token)
	envStr("PSTREAM_AI_BACKEND", &c.AI.Backend)
	envStr("PSTREAM_AI_API_KEY", &c.AI.APIKey)
	envStr("PSTREAM_AI_BASE_URL", &c.AI.BaseURL)
	envStr("PSTREAM_AI_MODEL", &c.AI.Model)
	envStr("PSTREAM_OLLAMA_URL", &c.AI.OllamaURL)
	envStr("PSTREAM_FAQ_PATH", &c.FAQPath)
	envStr("PSTREAM_AI_CHAT_CHANNEL_ID", &c.Routing.AIChatChannelID)
	envStr("PSTREAM_OTLP_ENDPOINT", &c.Telemetry.Endpoint)

	if v := os.Getenv("PSTREAM_AI_LOCAL_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AI.LocalFallback = b
		}
	}
	if v := os.Getenv("PSTREAM_TELEMETRY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
}

// Validate checks for the configuration errors that must stop startup.
// Missing credentials for a backend that requires them is fatal; everything
// else degrades at runtime instead.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token missing: set discord.token or PSTREAM_DISCORD_TOKEN")
	}

	switch c.AI.Backend {
	case "gemini":
		// Custom wrapper base URLs may hold their own auth; only the real
		// Google endpoint strictly requires a key.
		if c.AI.APIKey == "" && (c.AI.BaseURL == "" || c.AI.BaseURL == defaultGeminiBase) {
			return fmt.Errorf("ai.api_key missing for gemini backend: set ai.api_key or PSTREAM_AI_API_KEY")
		}
		if c.AI.Model == "" {
			return fmt.Errorf("ai.model missing for gemini backend")
		}
	case "ollama":
		if c.AI.Model == "" {
			return fmt.Errorf("ai.model missing for ollama backend")
		}
	case "local":
		// Rule-based responder; no credentials needed.
	case "none", "":
		// AI disabled; the engine short-circuits unless local_fallback is set.
	default:
		return fmt.Errorf("unknown ai.backend %q (want gemini, ollama, local, or none)", c.AI.Backend)
	}

	return nil
}
