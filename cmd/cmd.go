// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the config file and the cache database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration and the search cache database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles the interactive OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Run the OAuth authorization flow in the browser",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser round trip",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current authorization state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// queryCommand emulates one launcher invocation for debugging
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Run a launcher query and print the menu entries as JSON",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "text"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Query,
	}
}

// searchCommand searches the catalog from the terminal
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Result type: track, artist, or album",
				Value:   "track",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, or markdown",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "Choose a result interactively and play it",
			},
		},
		Action: r.Search,
	}
}

// playCommand starts playback of a URI
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track, artist, or album by URI",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "uri"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "Target device ID",
			},
		},
		Action: r.Play,
	}
}

// devicesCommand lists playback devices
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List available playback devices",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "Choose the device to transfer playback to",
			},
		},
		Action: r.Devices,
	}
}

// controlsCommand exposes playback controls as subcommands
func controlsCommand(r *Runner) *cli.Command {
	simple := func(name, usage, command string) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Flags: []cli.Flag{configFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return r.Control(ctx, command, "")
			},
		}
	}

	return &cli.Command{
		Name:  "controls",
		Usage: "Playback controls",
		Commands: []*cli.Command{
			simple("resume", "Resume playback", "play"),
			simple("pause", "Pause playback", "pause"),
			simple("next", "Skip to the next track", "next"),
			simple("previous", "Return to the previous track", "previous"),
			simple("shuffle", "Toggle shuffle mode", "shuffle"),
			simple("repeat", "Cycle repeat mode", "repeat"),
			simple("like", "Like the current track", "like"),
			simple("unlike", "Remove the current track from liked songs", "unlike"),
			{
				Name:  "volume",
				Usage: "Set the playback volume percentage",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "percent"},
				},
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Control(ctx, "volume", cmd.StringArg("percent"))
				},
			},
			{
				Name:  "queue",
				Usage: "Add a URI to the playback queue",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "uri"},
				},
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Control(ctx, "queue", cmd.StringArg("uri"))
				},
			},
		},
	}
}

// cacheCommand manages the local search cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local search cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache row count",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached search results",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}
