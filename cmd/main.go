package main

import (
	"context"
	"os"
	"strings"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	// The launcher invokes the plugin with a single JSON argument; a human
	// invokes it with subcommands. The first byte tells them apart.
	if len(os.Args) > 1 && strings.HasPrefix(strings.TrimSpace(os.Args[1]), "{") {
		runner.RunLauncher(context.Background(), os.Args[1])
		return
	}

	app := &cli.Command{
		Name:     "spotlite",
		Usage:    "Control Spotify from Flow Launcher or the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
