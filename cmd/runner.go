package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/auth"
	"github.com/desertthunder/spotlite/internal/desktop"
	"github.com/desertthunder/spotlite/internal/plugin"
	"github.com/desertthunder/spotlite/internal/repositories"
	"github.com/desertthunder/spotlite/internal/services"
	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	broker  *auth.Broker
	client  *services.SpotifyClient
	desktop *desktop.Desktop
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Broker *auth.Broker
	Client *services.SpotifyClient
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// The broker and client are only constructed when credentials are
// present; commands that need them report the missing configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:  opts.Config,
		broker:  opts.Broker,
		client:  opts.Client,
		desktop: desktop.New(opts.Logger),
		logger:  opts.Logger,
		output:  opts.Output,
	}

	if r.broker == nil {
		spotify := opts.Config.Credentials.Spotify
		store := auth.NewFileStore(spotify.TokenPath)
		if broker, err := auth.NewBroker(spotify, store, opts.Logger); err == nil {
			r.broker = broker
		} else {
			opts.Logger.Debug("broker unavailable", "error", err)
		}
	}

	if r.client == nil && r.broker != nil {
		r.client = services.NewSpotifyClient(r.broker, opts.Logger)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, queryCommand, searchCommand, playCommand, devicesCommand, controlsCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireClient fails commands that need configured credentials.
func (r *Runner) requireClient() error {
	if r.broker == nil || r.client == nil {
		return fmt.Errorf("%w: fill in config.toml and run 'spotlite setup'", shared.ErrMissingCredentials)
	}
	return nil
}

// callbackAddr is the listener address derived from server config.
func (r *Runner) callbackAddr() string {
	return fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
}

// openCache opens the search cache database, or nil when unavailable.
// Cache failures never block a command; they only cost a network call.
func (r *Runner) openCache() (*repositories.SearchCache, func()) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Debug("search cache unavailable", "error", err)
		return nil, func() {}
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	ttl := time.Duration(r.config.Search.CacheTTL) * time.Second
	return repositories.NewSearchCache(db, ttl), func() { db.Close() }
}

// buildPlugin assembles the launcher-mode dispatcher.
func (r *Runner) buildPlugin(cache *repositories.SearchCache) *plugin.Plugin {
	var resultCache plugin.ResultCache
	if cache != nil {
		resultCache = cache
	}

	p := plugin.New(r.client, r.client, r.broker, r.desktop, resultCache, r.logger)
	p.BeginAuth = func() error {
		go func() {
			err := auth.RunFlow(context.Background(), r.broker, auth.FlowOpts{
				Addr:   r.callbackAddr(),
				Logger: r.logger,
			})
			if err != nil {
				r.logger.Warn("authorization flow ended", "error", err)
			}
		}()
		return nil
	}
	return p
}

// RunLauncher handles one launcher invocation: parse the JSON request,
// dispatch it, and emit exactly one line of JSON. Any failure still
// produces a valid response document.
func (r *Runner) RunLauncher(ctx context.Context, rawRequest string) {
	var req plugin.Request
	if err := json.Unmarshal([]byte(rawRequest), &req); err != nil {
		r.logger.Error("bad launcher request", "error", err)
		r.emit(plugin.Response{Result: []plugin.Result{{
			Title:    "Spotify Plugin Error",
			SubTitle: fmt.Sprintf("invalid request: %v", err),
			IcoPath:  services.PlaceholderIcon,
		}}})
		return
	}

	if err := r.requireClient(); err != nil {
		r.emit(plugin.Response{Result: []plugin.Result{{
			Title:    "⚙️ Configure Spotify Credentials",
			SubTitle: err.Error(),
			IcoPath:  services.PlaceholderIcon,
		}}})
		return
	}

	cache, closeCache := r.openCache()
	defer closeCache()

	r.emit(r.buildPlugin(cache).Dispatch(ctx, req))
}

// emit writes the single-line response the launcher expects.
func (r *Runner) emit(resp plugin.Response) {
	if err := r.writeJSON(resp, false); err != nil {
		r.logger.Error("failed to write response", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
