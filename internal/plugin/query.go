package plugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotlite/internal/models"
)

// knownCommands are the first words routed to command entries instead
// of a catalog search.
var knownCommands = map[string]bool{
	"play": true, "pause": true, "next": true, "previous": true,
	"last": true, "track": true, "artist": true, "album": true,
	"shuffle": true, "repeat": true, "volume": true, "device": true,
	"like": true, "unlike": true, "queue": true, "reconnect": true,
	"mute": true, "auth": true,
}

// commandDescriptions title the single-entry commands.
var commandDescriptions = map[string]string{
	"shuffle":   "🔀 Toggle shuffle mode",
	"repeat":    "🔁 Cycle repeat mode",
	"volume":    "🔊 Set volume",
	"mute":      "🔇 Toggle mute",
	"device":    "📱 Show available devices",
	"like":      "❤️ Like current song",
	"unlike":    "💔 Remove current song from liked",
	"queue":     "➕ Add track to queue",
	"reconnect": "🔄 Reconnect to Spotify API",
}

// handleQuery answers the launcher's live query as the user types.
func (p *Plugin) handleQuery(ctx context.Context, params []any) []Result {
	query := joinParams(params)
	if query == "" {
		return p.statusMenu()
	}

	parts := strings.Fields(query)
	first := strings.ToLower(parts[0])
	args := strings.Join(parts[1:], " ")

	if !knownCommands[first] {
		return p.generalSearch(ctx, query)
	}

	switch first {
	case "auth":
		return []Result{{
			Title:    "🔐 Authorize Spotify",
			SubTitle: "Click to start OAuth authorization process",
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "authorize_spotify",
				Parameters: []any{},
			},
		}}
	case "play", "pause", "next", "previous", "last":
		title := strings.ToUpper(first[:1]) + first[1:]
		return []Result{{
			Title:    fmt.Sprintf("🎮 %s Track", title),
			SubTitle: fmt.Sprintf("Execute %s command in Spotify app", first),
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "execute_command",
				Parameters: []any{first},
			},
		}}
	case "track":
		return p.searchEntries(ctx, models.KindTrack, args, p.limits.Tracks, "🎵 Track Search", "Usage: sp track [track name]")
	case "artist":
		return p.searchEntries(ctx, models.KindArtist, args, p.limits.Artists, "🎤 Artist Search", "Usage: sp artist [artist name]")
	case "album":
		return p.searchEntries(ctx, models.KindAlbum, args, p.limits.Albums, "💿 Album Search", "Usage: sp album [album name]")
	default:
		description, ok := commandDescriptions[first]
		if !ok {
			description = fmt.Sprintf("Execute %s", first)
		}
		entry := Result{
			Title:    description,
			SubTitle: fmt.Sprintf("Execute %s command", first),
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "execute_command",
				Parameters: []any{first},
			},
		}
		if args != "" {
			entry.JsonRPCAction.Parameters = append(entry.JsonRPCAction.Parameters, args)
		}
		return []Result{entry}
	}
}

// statusMenu is shown for an empty query: one status summary entry and
// one explicit authorize entry.
func (p *Plugin) statusMenu() []Result {
	appStatus := "🔴 Not Running"
	if p.desktop.IsRunning() {
		appStatus = "🟢 Running"
	}

	authStatus := "❌ Not Authorized"
	if p.authorizer.Authorized() {
		authStatus = "🔐 Authorized"
	}

	return []Result{
		{
			Title:    fmt.Sprintf("🎵 Spotify Controls (%s, %s)", appStatus, authStatus),
			SubTitle: "Click to see all available commands",
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "show_controls",
				Parameters: []any{},
			},
		},
		{
			Title:    "🔐 Authorize Spotify",
			SubTitle: "Required for playback control - click to authenticate",
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "execute_command",
				Parameters: []any{"auth"},
			},
		},
	}
}

// searchEntries runs a typed search, or shows usage when the query is
// empty.
func (p *Plugin) searchEntries(ctx context.Context, kind models.Kind, query string, limit int, usageTitle, usage string) []Result {
	if query == "" {
		return []Result{{Title: usageTitle, SubTitle: usage, IcoPath: placeholderIcon}}
	}

	results, err := p.cachedSearch(ctx, query, kind, limit)
	if err != nil {
		p.logger.Debug("search failed", "kind", kind, "error", err)
		return nil
	}

	return p.resultEntries(results)
}

// generalSearch combines tracks, artists, and albums for free text.
func (p *Plugin) generalSearch(ctx context.Context, query string) []Result {
	var entries []Result
	for _, part := range []struct {
		kind  models.Kind
		limit int
	}{
		{models.KindTrack, 5},
		{models.KindArtist, 3},
		{models.KindAlbum, 3},
	} {
		results, err := p.cachedSearch(ctx, query, part.kind, part.limit)
		if err != nil {
			p.logger.Debug("search failed", "kind", part.kind, "error", err)
			continue
		}
		entries = append(entries, p.resultEntries(results)...)
	}

	if len(entries) == 0 {
		return []Result{{
			Title:    fmt.Sprintf("🔍 No results found for '%s'", query),
			SubTitle: "Try different keywords or use specific commands",
			IcoPath:  placeholderIcon,
		}}
	}

	return entries
}

// cachedSearch consults the result cache before the network. Cache
// failures of any sort degrade to a live search.
func (p *Plugin) cachedSearch(ctx context.Context, query string, kind models.Kind, limit int) ([]models.SearchResult, error) {
	if p.cache != nil {
		if cached, err := p.cache.Get(query, kind); err == nil {
			return cached, nil
		}
	}

	results, err := p.search.Search(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Put(query, kind, results); err != nil {
			p.logger.Debug("cache write failed", "error", err)
		}
	}

	return results, nil
}

// resultEntries converts normalized search results into launcher
// entries with marker-prefixed titles and a playback action.
func (p *Plugin) resultEntries(results []models.SearchResult) []Result {
	entries := make([]Result, 0, len(results))
	for _, r := range results {
		entries = append(entries, Result{
			Title:    fmt.Sprintf("%s %s", r.Kind.Marker(), r.Name),
			SubTitle: r.Detail,
			IcoPath:  r.ArtworkURL,
			JsonRPCAction: &Action{
				Method:     "play_" + string(r.Kind),
				Parameters: []any{r.URI},
			},
		})
	}
	return entries
}
