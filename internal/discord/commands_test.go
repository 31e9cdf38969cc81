package discord

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/AykhanUV/pstream-bot/internal/channelstate"
	"github.com/AykhanUV/pstream-bot/internal/config"
)

func newTestBot() *Bot {
	return &Bot{
		state: channelstate.NewRegistry(),
		cfg:   config.DiscordConfig{AdminRoleID: "role-1", AdminUsernames: []string{"fs.ray"}},
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestFreeChatAndRoastExclusive(t *testing.T) {
	b := newTestBot()

	b.handleToggleCommand("c1", channelstate.ModeFreeChat, "on", "on!", "off!", "Freechat")
	if b.state.Mode("c1") != channelstate.ModeFreeChat {
		t.Fatal("freechat not enabled")
	}

	b.handleToggleCommand("c1", channelstate.ModeRoast, "on", "on!", "off!", "Roast")
	if b.state.Mode("c1") != channelstate.ModeRoast {
		t.Error("roast did not replace freechat")
	}

	// disabling a mode that is not active is a no-op
	b.handleToggleCommand("c1", channelstate.ModeFreeChat, "off", "on!", "off!", "Freechat")
	if b.state.Mode("c1") != channelstate.ModeRoast {
		t.Error("disabling inactive freechat cleared roast")
	}

	b.handleToggleCommand("c1", channelstate.ModeRoast, "off", "on!", "off!", "Roast")
	if b.state.Mode("c1") != channelstate.ModeUnset {
		t.Error("roast not cleared")
	}
}

func TestToggleStatusText(t *testing.T) {
	b := newTestBot()
	got := b.handleToggleCommand("c1", channelstate.ModeRoast, "status", "on!", "off!", "Roast")
	if !strings.Contains(got, "**disabled**") {
		t.Errorf("status = %q", got)
	}
	b.state.SetMode("c1", channelstate.ModeRoast)
	got = b.handleToggleCommand("c1", channelstate.ModeRoast, "status", "on!", "off!", "Roast")
	if !strings.Contains(got, "**enabled**") {
		t.Errorf("status = %q", got)
	}
}

func TestPStreamCommand(t *testing.T) {
	b := newTestBot()

	b.handlePStreamCommand("c1", "pstream")
	if b.state.Mode("c1") != channelstate.ModePStreamOnly {
		t.Error("pstream mode not set")
	}
	if got := b.handlePStreamCommand("c1", "status"); !strings.Contains(got, "P-Stream only") {
		t.Errorf("status = %q", got)
	}

	b.handlePStreamCommand("c1", "general")
	if b.state.Mode("c1") != channelstate.ModeUnset {
		t.Error("general did not clear pstream mode")
	}
}

func TestSupportCommand(t *testing.T) {
	b := newTestBot()

	b.handleSupportCommand("c1", "off")
	if !b.state.SupportDisabled("c1") {
		t.Error("support not disabled")
	}
	b.handleSupportCommand("c1", "on")
	if b.state.SupportDisabled("c1") {
		t.Error("support not re-enabled")
	}
	if got := b.handleSupportCommand("c1", "status"); !strings.Contains(got, "**enabled**") {
		t.Errorf("status = %q", got)
	}
}
