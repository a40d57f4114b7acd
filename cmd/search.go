package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlite/internal/formatter"
	"github.com/desertthunder/spotlite/internal/models"
	"github.com/desertthunder/spotlite/internal/plugin"
	"github.com/desertthunder/spotlite/internal/services"
	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/ui"
	"github.com/urfave/cli/v3"
)

// Query runs a launcher query from the terminal and prints the entries.
func (r *Runner) Query(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	cache, closeCache := r.openCache()
	defer closeCache()

	resp := r.buildPlugin(cache).Dispatch(ctx, plugin.Request{
		Method:     "query",
		Parameters: []any{cmd.StringArg("text")},
	})

	return r.writeJSON(resp, cmd.Bool("pretty"))
}

// limitFor returns the configured limit for a result kind.
func (r *Runner) limitFor(kind models.Kind) int {
	switch kind {
	case models.KindArtist:
		return r.config.Search.ArtistLimit
	case models.KindAlbum:
		return r.config.Search.AlbumLimit
	default:
		return r.config.Search.TrackLimit
	}
}

// Search queries the catalog and prints results in the chosen format.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	kind, err := models.ParseKind(cmd.String("type"))
	if err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		limit = r.limitFor(kind)
	}

	results, err := r.client.Search(ctx, query, kind, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("pick") {
		return r.pickAndPlay(ctx, query, results)
	}

	switch cmd.String("format") {
	case "csv":
		out, err := formatter.ResultsToCSV(results)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)
	case "markdown", "md":
		return r.writePlain("%s", formatter.ResultsToMarkdown(query, results))
	case "text":
		return r.writePlain("%s", formatter.ResultsToText(query, results))
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidArgument, cmd.String("format"))
	}
}

// pickAndPlay opens the interactive picker and plays the selection.
func (r *Runner) pickAndPlay(ctx context.Context, query string, results []models.SearchResult) error {
	if len(results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	choice, err := ui.PickResult(fmt.Sprintf("Results for %q", query), results)
	if err != nil {
		return err
	}
	if choice == nil {
		return nil
	}

	return r.playURI(ctx, choice.URI, "")
}

// Play starts playback of a URI from the terminal.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: playable URI", shared.ErrMissingArgument)
	}

	return r.playURI(ctx, uri, cmd.String("device"))
}

// playURI plays on the given device, or the picked one when empty.
func (r *Runner) playURI(ctx context.Context, uri, deviceID string) error {
	if deviceID == "" {
		devices, err := r.client.Devices(ctx)
		if err != nil {
			r.logger.Debug("device listing failed", "error", err)
		}
		deviceID = services.PickDevice(devices)
	}

	if err := r.client.Play(ctx, uri, deviceID); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	return r.writePlain("▶ Playing %s\n", uri)
}

// Devices lists playback devices, optionally transferring playback.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	devices, err := r.client.Devices(ctx)
	if err != nil {
		return fmt.Errorf("device listing failed: %w", err)
	}

	if cmd.Bool("pick") {
		choice, err := ui.PickDevice(devices)
		if err != nil {
			return err
		}
		if choice == nil {
			return nil
		}
		return r.writePlain("Selected device: %s (%s)\n", choice.Name, choice.ID)
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}

	return r.writePlain("%s", formatter.DevicesToText(devices))
}

// Control executes a single playback command, mirroring the launcher's
// execute_command path.
func (r *Runner) Control(ctx context.Context, command, value string) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	params := []any{command}
	if value != "" {
		params = append(params, value)
	}

	resp := r.buildPlugin(nil).Dispatch(ctx, plugin.Request{
		Method:     "execute_command",
		Parameters: params,
	})

	for _, entry := range resp.Result {
		r.writePlain("%s %s\n", entry.Title, entry.SubTitle)
	}
	return nil
}
