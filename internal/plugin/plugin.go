// Package plugin implements the Flow Launcher integration.
//
// The launcher invokes the plugin process with a single JSON argument
// describing a method call and reads one line of JSON menu entries back.
// Dispatch goes through a closed table of named operations; method names
// outside the table are rejected with an error entry rather than routed
// dynamically, so external input can never reach unintended internals.
package plugin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/desktop"
	"github.com/desertthunder/spotlite/internal/models"
	"github.com/desertthunder/spotlite/internal/shared"
)

// Request is the launcher's inbound JSON-RPC call.
type Request struct {
	Method     string `json:"method"`
	Parameters []any  `json:"parameters"`
}

// Action is an entry's follow-up call, invoked when the user selects it.
type Action struct {
	Method     string `json:"method"`
	Parameters []any  `json:"parameters"`
}

// Result is one launcher menu entry. Field names match the launcher's
// expected schema.
type Result struct {
	Title         string  `json:"Title"`
	SubTitle      string  `json:"SubTitle"`
	IcoPath       string  `json:"IcoPath"`
	JsonRPCAction *Action `json:"JsonRPCAction,omitempty"`
}

// Response wraps the entries emitted for a single invocation.
type Response struct {
	Result []Result `json:"result"`
}

// Catalog searches the provider's public catalog.
type Catalog interface {
	Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.SearchResult, error)
}

// Controller drives playback through the provider's API.
type Controller interface {
	Play(ctx context.Context, uri, deviceID string) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	Queue(ctx context.Context, uri string) error
	Like(ctx context.Context, trackID string) error
	Unlike(ctx context.Context, trackID string) error
	ToggleShuffle(ctx context.Context) error
	CycleRepeat(ctx context.Context) error
	Devices(ctx context.Context) ([]models.Device, error)
	CurrentlyPlaying(ctx context.Context) (*models.NowPlaying, error)
}

// Authorizer reports and initiates user authorization.
type Authorizer interface {
	AuthURL() string
	Authorized() bool
}

// DesktopApp integrates with the local Spotify application.
type DesktopApp interface {
	IsRunning() bool
	Launch() error
	OpenURI(uri string) error
	MediaKey(action desktop.MediaAction) error
	OpenBrowser(url string) error
}

// ResultCache stores search results between keystrokes. Implementations
// may fail freely; callers degrade to a live search.
type ResultCache interface {
	Get(query string, kind models.Kind) ([]models.SearchResult, error)
	Put(query string, kind models.Kind, results []models.SearchResult) error
}

// Limits controls how many results each search path requests.
type Limits struct {
	Tracks  int
	Artists int
	Albums  int
}

// DefaultLimits matches the launcher's usable menu height.
var DefaultLimits = Limits{Tracks: 10, Artists: 8, Albums: 8}

// Plugin wires launcher dispatch to the API client, the credential
// broker, and the desktop integration.
type Plugin struct {
	limits     Limits
	logger     *log.Logger
	search     Catalog
	controller Controller
	authorizer Authorizer
	desktop    DesktopApp
	cache      ResultCache

	// BeginAuth starts the interactive authorization flow in the
	// background. Installed by the process entry point; the dispatch
	// path only reports that the flow has started.
	BeginAuth func() error
}

// New creates a Plugin. cache may be nil.
func New(search Catalog, controller Controller, authorizer Authorizer, app DesktopApp, cache ResultCache, logger *log.Logger) *Plugin {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Plugin{
		limits:     DefaultLimits,
		logger:     logger,
		search:     search,
		controller: controller,
		authorizer: authorizer,
		desktop:    app,
		cache:      cache,
	}
}

type handler func(ctx context.Context, params []any) []Result

// table returns the closed dispatch table. Unlisted methods are
// unknown commands.
func (p *Plugin) table() map[string]handler {
	return map[string]handler{
		"query":             p.handleQuery,
		"show_controls":     p.showControls,
		"execute_command":   p.executeCommand,
		"authorize_spotify": p.authorizeSpotify,
		"launch_spotify_app": func(ctx context.Context, _ []any) []Result {
			return p.launchApp()
		},
		"play_track":  p.playEntity,
		"play_artist": p.playEntity,
		"play_album":  p.playEntity,
	}
}

// Dispatch routes a launcher request to its handler. Panics are
// recovered into a single error entry so the process always emits
// valid JSON.
func (p *Plugin) Dispatch(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("dispatch panicked", "method", req.Method, "panic", r)
			resp = Response{Result: []Result{errorEntry(fmt.Sprintf("Error: %v", r))}}
		}
	}()

	h, ok := p.table()[req.Method]
	if !ok {
		err := fmt.Errorf("%w: %q", shared.ErrUnknownCommand, req.Method)
		p.logger.Warn("rejected dispatch", "method", req.Method)
		return Response{Result: []Result{errorEntry(err.Error())}}
	}

	return Response{Result: h(ctx, req.Parameters)}
}

// errorEntry is the single entry shown when an invocation fails
// outright.
func errorEntry(detail string) Result {
	return Result{
		Title:    "Spotify Plugin Error",
		SubTitle: detail,
		IcoPath:  placeholderIcon,
	}
}

const placeholderIcon = "spotify_premium_icon.png"

// stringParam extracts parameter i as a string, tolerating absent or
// non-string values.
func stringParam(params []any, i int) string {
	if i >= len(params) {
		return ""
	}
	switch v := params[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// joinParams flattens all parameters into one query string. The
// launcher sometimes sends the query as a list of words.
func joinParams(params []any) string {
	words := make([]string, 0, len(params))
	for i := range params {
		if s := stringParam(params, i); s != "" {
			words = append(words, s)
		}
	}
	return strings.TrimSpace(strings.Join(words, " "))
}
