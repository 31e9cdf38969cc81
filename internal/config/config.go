package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON. Discord IDs are
// often pasted as bare numbers in config files.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the support bot.
type Config struct {
	Discord   DiscordConfig   `json:"discord"`
	AI        AIConfig        `json:"ai"`
	Routing   RoutingConfig   `json:"routing"`
	Cache     CacheConfig     `json:"cache"`
	FAQPath   string          `json:"faq_path,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// DiscordConfig configures the Discord connection and the admin surface.
// Token is NEVER read from the config file in env-only deployments; the env
// override PSTREAM_DISCORD_TOKEN always wins.
type DiscordConfig struct {
	Token          string              `json:"token"`
	AdminRoleID    string              `json:"admin_role_id,omitempty"`
	AdminUsernames FlexibleStringSlice `json:"admin_usernames,omitempty"`
}

// AIConfig selects and configures the completion backend.
type AIConfig struct {
	Backend       string `json:"backend,omitempty"`         // "gemini" (default), "ollama", "none"
	APIKey        string `json:"api_key,omitempty"`         // gemini key; optional for local wrappers
	BaseURL       string `json:"base_url,omitempty"`        // gemini-compatible wrapper base URL
	Model         string `json:"model,omitempty"`           // e.g. "gemini-2.0-flash"
	OllamaURL     string `json:"ollama_url,omitempty"`      // default http://localhost:11434
	LocalFallback bool   `json:"local_fallback,omitempty"`  // offline rule-based responder when backend is "none"
	PerChannelRPM int    `json:"per_channel_rpm,omitempty"` // completion requests per channel per minute (default 10)
}

// RoutingConfig configures channel eligibility and engine limits.
type RoutingConfig struct {
	AllowedChannels FlexibleStringSlice `json:"allowed_channels"`          // by name
	AllowedForums   FlexibleStringSlice `json:"allowed_forums"`            // forum parents, by name
	AIChatChannelID string              `json:"ai_chat_channel_id"`        // dedicated AI chat channel
	HistoryLimit    int                 `json:"history_limit,omitempty"`   // messages of context (default 50)
	MuteMinutes     int                 `json:"mute_minutes,omitempty"`    // mute command duration (default 5)
	MaxImageBytes   int64               `json:"max_image_bytes,omitempty"` // attachment ceiling (default 20MB)
}

// CacheConfig bounds the response cache.
type CacheConfig struct {
	TTLSeconds   int `json:"ttl_seconds,omitempty"`   // default 300
	MaxEntries   int `json:"max_entries,omitempty"`   // default 1000
	SweepSeconds int `json:"sweep_seconds,omitempty"` // 0 = lazy eviction only
}

// TelemetryConfig configures OpenTelemetry export for traces and spans.
// When enabled, routing and completion spans are exported to an
// OTLP-compatible backend (Jaeger, Tempo, Datadog, etc.).
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // skip TLS (local dev)
	ServiceName string            `json:"service_name,omitempty"` // default "pstream-bot"
	Headers     map[string]string `json:"headers,omitempty"`      // auth tokens for cloud backends
}

// MuteDuration returns the configured mute span.
func (c *Config) MuteDuration() time.Duration {
	m := c.Routing.MuteMinutes
	if m <= 0 {
		m = 5
	}
	return time.Duration(m) * time.Minute
}

// CacheTTL returns the response cache TTL.
func (c *Config) CacheTTL() time.Duration {
	s := c.Cache.TTLSeconds
	if s <= 0 {
		s = 300
	}
	return time.Duration(s) * time.Second
}
