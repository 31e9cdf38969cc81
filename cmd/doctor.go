package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AykhanUV/pstream-bot/internal/config"
	"github.com/AykhanUV/pstream-bot/internal/faq"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and environment health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("pstream-bot doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	// Config
	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Discord:")
	fmt.Printf("    %-12s %s\n", "Token:", presence(cfg.Discord.Token))
	fmt.Printf("    %-12s %s\n", "Admin role:", orNone(cfg.Discord.AdminRoleID))
	fmt.Printf("    %-12s %d configured\n", "Admins:", len(cfg.Discord.AdminUsernames))

	fmt.Println()
	fmt.Println("  AI backend:")
	fmt.Printf("    %-12s %s\n", "Backend:", cfg.AI.Backend)
	switch cfg.AI.Backend {
	case "gemini":
		fmt.Printf("    %-12s %s\n", "API key:", presence(cfg.AI.APIKey))
		fmt.Printf("    %-12s %s\n", "Model:", cfg.AI.Model)
		if cfg.AI.BaseURL != "" {
			fmt.Printf("    %-12s %s\n", "Base URL:", cfg.AI.BaseURL)
		}
	case "ollama":
		fmt.Printf("    %-12s %s\n", "URL:", orNone(cfg.AI.OllamaURL))
		fmt.Printf("    %-12s %s\n", "Model:", cfg.AI.Model)
	case "local":
		fmt.Printf("    %-12s rule-based responder\n", "Mode:")
	case "none":
		fmt.Printf("    %-12s %t\n", "Fallback:", cfg.AI.LocalFallback)
	}
	fmt.Printf("    %-12s %d per channel per minute\n", "Rate limit:", cfg.AI.PerChannelRPM)

	fmt.Println()
	fmt.Println("  Routing:")
	fmt.Printf("    %-12s %d\n", "Channels:", len(cfg.Routing.AllowedChannels))
	fmt.Printf("    %-12s %d\n", "Forums:", len(cfg.Routing.AllowedForums))
	fmt.Printf("    %-12s %s\n", "AI chat:", orNone(cfg.Routing.AIChatChannelID))

	fmt.Println()
	fmt.Printf("  FAQ:      %s", cfg.FAQPath)
	if entries, err := faq.Load(cfg.FAQPath); err != nil {
		fmt.Printf(" (LOAD ERROR: %s)\n", err)
	} else {
		fmt.Printf(" (%d entries)\n", len(entries))
	}

	fmt.Printf("  Tracing:  ")
	if cfg.Telemetry.Enabled {
		fmt.Printf("enabled (%s via %s)\n", cfg.Telemetry.Endpoint, telemetryProtocol(cfg.Telemetry.Protocol))
	} else {
		fmt.Println("disabled")
	}

	fmt.Println()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Validation: FAILED (%s)\n", err)
	} else {
		fmt.Println("  Validation: OK")
	}
}

func presence(v string) string {
	if v == "" {
		return "MISSING"
	}
	return "configured"
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func telemetryProtocol(p string) string {
	if p == "" {
		return "grpc"
	}
	return p
}
