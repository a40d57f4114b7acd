// package desktop integrates with the local Spotify application and the
// operating system: process detection, app launch, URI handoff, and
// synthetic media keys for when the Web API cannot reach a device.
package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/shared"
)

// MediaAction identifies a synthetic key sent to the desktop session.
type MediaAction string

const (
	ActionPlayPause MediaAction = "playpause"
	ActionNext      MediaAction = "next"
	ActionPrevious  MediaAction = "previous"
	ActionShuffle   MediaAction = "shuffle"
	ActionRepeat    MediaAction = "repeat"
)

// Runner abstracts process execution so platform behavior is testable.
type Runner interface {
	// Run executes a command and waits for it to finish.
	Run(name string, args ...string) error

	// Output executes a command and returns its combined stdout.
	Output(name string, args ...string) ([]byte, error)

	// Start launches a command without waiting for it.
	Start(name string, args ...string) error
}

// Desktop performs OS-level Spotify operations for the current platform.
type Desktop struct {
	goos   string
	runner Runner
	logger *log.Logger

	getenv     func(string) string
	fileExists func(string) bool
}

// New creates a Desktop for the running platform.
func New(logger *log.Logger) *Desktop {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Desktop{
		goos:   getRuntime(),
		runner: execRunner{},
		logger: logger,
		getenv: os.Getenv,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// IsRunning reports whether the Spotify desktop application is running.
// Detection failures are treated as not running.
func (d *Desktop) IsRunning() bool {
	switch d.goos {
	case "windows":
		out, err := d.runner.Output("tasklist")
		if err != nil {
			return false
		}
		return strings.Contains(string(out), "Spotify.exe")
	case "darwin":
		return d.runner.Run("pgrep", "-x", "Spotify") == nil
	default:
		return d.runner.Run("pidof", "spotify") == nil
	}
}

// windowsInstallPaths lists known Spotify install locations, checked in
// order. The Microsoft Store build lives under WindowsApps.
func (d *Desktop) windowsInstallPaths() []string {
	return []string{
		filepath.Join(d.getenv("APPDATA"), "Spotify", "Spotify.exe"),
		filepath.Join(d.getenv("LOCALAPPDATA"), "Microsoft", "WindowsApps", "SpotifyAB.SpotifyMusic_zpdnekdrzrea0", "Spotify.exe"),
		`C:\Program Files\Spotify\Spotify.exe`,
		`C:\Program Files (x86)\Spotify\Spotify.exe`,
	}
}

// Launch starts the Spotify desktop application if it is not already
// running.
func (d *Desktop) Launch() error {
	if d.IsRunning() {
		return nil
	}

	switch d.goos {
	case "windows":
		for _, path := range d.windowsInstallPaths() {
			if d.fileExists(path) {
				return d.runner.Start(path)
			}
		}
		// No install found; let the URI protocol handler resolve it.
		return d.runner.Start("cmd", "/c", "start", "spotify:")
	case "darwin":
		return d.runner.Start("open", "-a", "Spotify")
	default:
		return d.runner.Start("spotify")
	}
}

// OpenURI hands a spotify: URI to the desktop application. When the
// platform handoff fails, the web player is opened instead.
func (d *Desktop) OpenURI(uri string) error {
	var err error
	switch d.goos {
	case "windows":
		err = d.runner.Start("cmd", "/c", "start", uri)
	case "darwin":
		err = d.runner.Start("open", uri)
	default:
		err = d.runner.Start("xdg-open", uri)
	}

	if err != nil {
		d.logger.Debug("URI handoff failed, falling back to web player", "uri", uri, "error", err)
		return d.OpenBrowser(WebURL(uri))
	}

	return nil
}

// WebURL converts a spotify: URI into its open.spotify.com equivalent.
func WebURL(uri string) string {
	path := strings.ReplaceAll(uri, ":", "/")
	path = strings.TrimPrefix(path, "spotify/")
	return "https://open.spotify.com/" + path
}

// mediaKeyScript returns the powershell SendKeys expression for an
// action. Key codes 179/176/177 are the standard media keys; shuffle
// and repeat use the desktop app's Ctrl shortcuts.
func mediaKeyScript(action MediaAction) (string, bool) {
	switch action {
	case ActionPlayPause:
		return "(New-Object -com wscript.shell).SendKeys([char]179)", true
	case ActionNext:
		return "(New-Object -com wscript.shell).SendKeys([char]176)", true
	case ActionPrevious:
		return "(New-Object -com wscript.shell).SendKeys([char]177)", true
	case ActionShuffle:
		return `(New-Object -com wscript.shell).SendKeys("^s")`, true
	case ActionRepeat:
		return `(New-Object -com wscript.shell).SendKeys("^r")`, true
	default:
		return "", false
	}
}

// MediaKey sends a synthetic media key to the desktop session. Only
// implemented on Windows; a no-op elsewhere, since other platforms are
// reached through the Web API.
func (d *Desktop) MediaKey(action MediaAction) error {
	if d.goos != "windows" {
		return nil
	}

	script, ok := mediaKeyScript(action)
	if !ok {
		return fmt.Errorf("%w: media action %q", shared.ErrInvalidArgument, action)
	}

	return d.runner.Run("powershell", "-Command", script)
}

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func (d *Desktop) OpenBrowser(url string) error {
	var err error
	switch d.goos {
	case "darwin":
		err = d.runner.Start("open", url)
	case "linux":
		err = d.runner.Start("xdg-open", url)
	case "windows":
		err = d.runner.Start("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", d.goos)
	}

	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
