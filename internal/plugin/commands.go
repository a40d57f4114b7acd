package plugin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotlite/internal/desktop"
	"github.com/desertthunder/spotlite/internal/services"
)

// showControls lists every available command as a selectable entry.
func (p *Plugin) showControls(ctx context.Context, _ []any) []Result {
	authTitle := "🔐 sp auth ❌"
	if p.authorizer.Authorized() {
		authTitle = "🔐 sp auth ✅"
	}

	controls := []struct {
		title       string
		command     string
		description string
	}{
		{authTitle, "auth", "Authorize with Spotify (required for playback control)"},
		{"▶️ sp play", "play", "Resume playback"},
		{"⏸️ sp pause", "pause", "Pause playback"},
		{"⏭️ sp next", "next", "Skip to next track"},
		{"⏮️ sp previous", "previous", "Go to previous track"},
		{"🔀 sp shuffle", "shuffle", "Toggle shuffle mode"},
		{"🔁 sp repeat", "repeat", "Cycle repeat mode"},
		{"🔊 sp volume", "volume", "Set volume (usage: sp volume 50)"},
		{"🔇 sp mute", "mute", "Toggle mute"},
		{"📱 sp device", "device", "Show available devices"},
		{"❤️ sp like", "like", "Like current song"},
		{"💔 sp unlike", "unlike", "Remove current song from liked"},
		{"➕ sp queue", "queue", "Add track to queue"},
		{"🔄 sp reconnect", "reconnect", "Reconnect to Spotify API"},
		{"🎵 sp track", "track", "Search tracks (usage: sp track [name])"},
		{"🎤 sp artist", "artist", "Search artists (usage: sp artist [name])"},
		{"💿 sp album", "album", "Search albums (usage: sp album [name])"},
	}

	entries := make([]Result, 0, len(controls))
	for _, c := range controls {
		entries = append(entries, Result{
			Title:    c.title,
			SubTitle: c.description,
			IcoPath:  placeholderIcon,
			JsonRPCAction: &Action{
				Method:     "execute_command",
				Parameters: []any{c.command},
			},
		})
	}
	return entries
}

// executeCommand runs a playback command. The first parameter names the
// command; the second, when present, is its argument.
func (p *Plugin) executeCommand(ctx context.Context, params []any) []Result {
	command := strings.ToLower(stringParam(params, 0))
	value := stringParam(params, 1)

	if command == "auth" {
		return p.authorizeSpotify(ctx, nil)
	}

	if err := p.desktop.Launch(); err != nil {
		p.logger.Debug("app launch failed", "error", err)
	}

	message, err := p.runCommand(ctx, command, value)
	if err != nil {
		p.logger.Warn("command failed", "command", command, "error", err)
		return []Result{{
			Title:    "⚠️ Action Not Completed",
			SubTitle: fmt.Sprintf("%s: %v", command, err),
			IcoPath:  placeholderIcon,
		}}
	}

	return []Result{{
		Title:    "✅ Command Executed",
		SubTitle: message,
		IcoPath:  placeholderIcon,
	}}
}

// runCommand performs the provider call for a command. Transport
// commands fall back to a synthetic media key when the API rejects
// them, which keeps the local app controllable without authorization.
func (p *Plugin) runCommand(ctx context.Context, command, value string) (string, error) {
	switch command {
	case "play":
		if err := p.controller.Resume(ctx); err != nil {
			p.logger.Debug("api resume failed, using media key", "error", err)
			return "▶️ Resuming playback", p.desktop.MediaKey(desktop.ActionPlayPause)
		}
		return "▶️ Resuming playback", nil
	case "pause":
		if err := p.controller.Pause(ctx); err != nil {
			return "⏸️ Pausing playback", p.desktop.MediaKey(desktop.ActionPlayPause)
		}
		return "⏸️ Pausing playback", nil
	case "next":
		if err := p.controller.Next(ctx); err != nil {
			return "⏭️ Skipping to next track", p.desktop.MediaKey(desktop.ActionNext)
		}
		return "⏭️ Skipping to next track", nil
	case "previous", "last":
		if err := p.controller.Previous(ctx); err != nil {
			return "⏮️ Going to previous track", p.desktop.MediaKey(desktop.ActionPrevious)
		}
		return "⏮️ Going to previous track", nil
	case "shuffle":
		if err := p.controller.ToggleShuffle(ctx); err != nil {
			return "🔀 Toggling shuffle mode", p.desktop.MediaKey(desktop.ActionShuffle)
		}
		return "🔀 Toggling shuffle mode", nil
	case "repeat":
		if err := p.controller.CycleRepeat(ctx); err != nil {
			return "🔁 Cycling repeat mode", p.desktop.MediaKey(desktop.ActionRepeat)
		}
		return "🔁 Cycling repeat mode", nil
	case "volume":
		percent, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("volume requires a number, got %q", value)
		}
		return fmt.Sprintf("🔊 Setting volume to %d", percent), p.controller.SetVolume(ctx, percent)
	case "mute":
		return "🔇 Muting playback", p.controller.SetVolume(ctx, 0)
	case "like":
		return "❤️ Liking current track", p.editLibrary(ctx, p.controller.Like)
	case "unlike":
		return "💔 Removing from liked songs", p.editLibrary(ctx, p.controller.Unlike)
	case "queue":
		if value == "" {
			return "", fmt.Errorf("queue requires a playable URI")
		}
		return "➕ Added to queue", p.controller.Queue(ctx, value)
	case "device":
		return p.deviceSummary(ctx)
	case "reconnect":
		return "🔄 Reconnecting to Spotify", nil
	default:
		return "", fmt.Errorf("unrecognized command %q", command)
	}
}

// editLibrary applies a library edit to the currently playing track.
func (p *Plugin) editLibrary(ctx context.Context, edit func(context.Context, string) error) error {
	playing, err := p.controller.CurrentlyPlaying(ctx)
	if err != nil {
		return err
	}
	if playing == nil {
		return fmt.Errorf("nothing is playing")
	}
	return edit(ctx, playing.TrackID)
}

// deviceSummary names the user's devices in one line.
func (p *Plugin) deviceSummary(ctx context.Context) (string, error) {
	devices, err := p.controller.Devices(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "📱 No devices available", nil
	}

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		name := d.Name
		if d.IsActive {
			name += " (active)"
		}
		names = append(names, name)
	}
	return "📱 " + strings.Join(names, ", "), nil
}

// authorizeSpotify opens the provider consent page and starts the
// background callback flow. The entry returns immediately; completion
// is observed through the persisted credential state.
func (p *Plugin) authorizeSpotify(ctx context.Context, _ []any) []Result {
	if err := p.desktop.OpenBrowser(p.authorizer.AuthURL()); err != nil {
		return []Result{{
			Title:    "❌ Authorization Failed",
			SubTitle: fmt.Sprintf("Error: %v", err),
			IcoPath:  placeholderIcon,
		}}
	}

	if p.BeginAuth != nil {
		if err := p.BeginAuth(); err != nil {
			return []Result{{
				Title:    "❌ Authorization Failed",
				SubTitle: fmt.Sprintf("Error: %v", err),
				IcoPath:  placeholderIcon,
			}}
		}
	}

	return []Result{{
		Title:    "🔐 Authorization Started",
		SubTitle: "Please complete authorization in your browser",
		IcoPath:  placeholderIcon,
	}}
}

// launchApp starts the desktop application.
func (p *Plugin) launchApp() []Result {
	if err := p.desktop.Launch(); err != nil {
		return []Result{{
			Title:    "❌ Launch Failed",
			SubTitle: "Could not launch Spotify desktop app",
			IcoPath:  placeholderIcon,
		}}
	}

	return []Result{{
		Title:    "✅ Spotify Launched",
		SubTitle: "Spotify desktop app is now running",
		IcoPath:  placeholderIcon,
	}}
}

// playEntity starts playback of the selected search result. The API is
// tried first against the chosen device; when it fails, the URI is
// handed to the desktop application instead.
func (p *Plugin) playEntity(ctx context.Context, params []any) []Result {
	uri := stringParam(params, 0)
	if uri == "" {
		return []Result{errorEntry("no playable identifier supplied")}
	}

	if err := p.desktop.Launch(); err != nil {
		p.logger.Debug("app launch failed", "error", err)
	}

	devices, err := p.controller.Devices(ctx)
	if err != nil {
		p.logger.Debug("device listing failed", "error", err)
	}

	if err := p.controller.Play(ctx, uri, services.PickDevice(devices)); err != nil {
		p.logger.Debug("api playback failed, opening URI", "uri", uri, "error", err)
		if err := p.desktop.OpenURI(uri); err != nil {
			return []Result{errorEntry(fmt.Sprintf("could not start playback: %v", err))}
		}
	}

	return []Result{{
		Title:    "▶️ Playing",
		SubTitle: uri,
		IcoPath:  placeholderIcon,
	}}
}
