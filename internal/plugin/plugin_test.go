package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/spotlite/internal/models"
	"github.com/desertthunder/spotlite/internal/shared"
	itesting "github.com/desertthunder/spotlite/internal/testing"
)

func newTestPlugin(catalog *itesting.MockCatalog, controller *itesting.MockController, authorizer *itesting.MockAuthorizer, app *itesting.MockDesktop) *Plugin {
	if catalog == nil {
		catalog = &itesting.MockCatalog{}
	}
	if controller == nil {
		controller = &itesting.MockController{}
	}
	if authorizer == nil {
		authorizer = &itesting.MockAuthorizer{URL: "https://accounts.example/authorize"}
	}
	if app == nil {
		app = &itesting.MockDesktop{}
	}
	return New(catalog, controller, authorizer, app, nil, shared.NewLogger(nil))
}

func dispatch(t *testing.T, p *Plugin, method string, params ...any) []Result {
	t.Helper()
	resp := p.Dispatch(context.Background(), Request{Method: method, Parameters: params})
	return resp.Result
}

func TestDispatch(t *testing.T) {
	t.Run("Empty Query Shows Status And Authorize", func(t *testing.T) {
		app := &itesting.MockDesktop{Running: true}
		authorizer := &itesting.MockAuthorizer{IsAuthed: false}
		p := newTestPlugin(nil, nil, authorizer, app)

		results := dispatch(t, p, "query")
		if len(results) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(results))
		}

		if !strings.Contains(results[0].Title, "🟢 Running") || !strings.Contains(results[0].Title, "❌ Not Authorized") {
			t.Errorf("unexpected status title %q", results[0].Title)
		}
		if results[0].JsonRPCAction.Method != "show_controls" {
			t.Errorf("status entry should open controls, got %s", results[0].JsonRPCAction.Method)
		}

		if results[1].Title != "🔐 Authorize Spotify" {
			t.Errorf("expected authorize entry, got %q", results[1].Title)
		}
	})

	t.Run("Track Search Yields Marked Entries", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Results: map[models.Kind][]models.SearchResult{
				models.KindTrack: {
					{Kind: models.KindTrack, Name: "Believer", Detail: "by Imagine Dragons • 3:24 • Evolve", ArtworkURL: "https://img.example/300", URI: "spotify:track:t1"},
					{Kind: models.KindTrack, Name: "Believer (Acoustic)", Detail: "by Imagine Dragons • 3:40 • Evolve", ArtworkURL: "https://img.example/301", URI: "spotify:track:t2"},
				},
			},
		}
		p := newTestPlugin(catalog, nil, nil, nil)

		results := dispatch(t, p, "query", "track believer")
		if len(results) != 2 {
			t.Fatalf("expected exactly 2 entries, got %d", len(results))
		}

		for i, r := range results {
			if !strings.HasPrefix(r.Title, "🎵 ") {
				t.Errorf("entry %d missing track marker: %q", i, r.Title)
			}
			if r.JsonRPCAction == nil || r.JsonRPCAction.Method != "play_track" {
				t.Errorf("entry %d missing playback action", i)
			}
			if uri, _ := r.JsonRPCAction.Parameters[0].(string); !strings.HasPrefix(uri, "spotify:track:") {
				t.Errorf("entry %d missing playable identifier: %v", i, r.JsonRPCAction.Parameters)
			}
		}

		if catalog.Queries[0] != "believer" {
			t.Errorf("command word should be stripped from query, got %q", catalog.Queries[0])
		}
	})

	t.Run("Free Text Searches All Kinds", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Results: map[models.Kind][]models.SearchResult{
				models.KindTrack:  {{Kind: models.KindTrack, Name: "One", URI: "spotify:track:1"}},
				models.KindArtist: {{Kind: models.KindArtist, Name: "Two", URI: "spotify:artist:2"}},
				models.KindAlbum:  {{Kind: models.KindAlbum, Name: "Three", URI: "spotify:album:3"}},
			},
		}
		p := newTestPlugin(catalog, nil, nil, nil)

		results := dispatch(t, p, "query", "imagine dragons")
		if len(results) != 3 {
			t.Fatalf("expected combined results, got %d", len(results))
		}
		if results[1].JsonRPCAction.Method != "play_artist" || results[2].JsonRPCAction.Method != "play_album" {
			t.Error("expected kind-specific playback actions")
		}
	})

	t.Run("No Results Entry", func(t *testing.T) {
		p := newTestPlugin(&itesting.MockCatalog{}, nil, nil, nil)

		results := dispatch(t, p, "query", "zxqj")
		if len(results) != 1 || !strings.Contains(results[0].Title, "No results found") {
			t.Errorf("expected no-results entry, got %+v", results)
		}
	})

	t.Run("Bare Search Command Shows Usage", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "query", "track")
		if len(results) != 1 || results[0].JsonRPCAction != nil {
			t.Errorf("expected passive usage entry, got %+v", results)
		}
	})

	t.Run("Command Word Yields Command Entry", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "query", "pause")
		if len(results) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(results))
		}
		action := results[0].JsonRPCAction
		if action.Method != "execute_command" || action.Parameters[0] != "pause" {
			t.Errorf("unexpected action %+v", action)
		}
	})

	t.Run("Volume Query Carries Argument", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "query", "volume 50")
		action := results[0].JsonRPCAction
		if len(action.Parameters) != 2 || action.Parameters[1] != "50" {
			t.Errorf("expected volume argument in action, got %+v", action.Parameters)
		}
	})

	t.Run("Unknown Method Rejected", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "load_tokens")
		if len(results) != 1 || results[0].Title != "Spotify Plugin Error" {
			t.Fatalf("expected error entry, got %+v", results)
		}
		if !strings.Contains(results[0].SubTitle, "unknown command") {
			t.Errorf("expected unknown command detail, got %q", results[0].SubTitle)
		}
	})

	t.Run("Panic Recovered To Error Entry", func(t *testing.T) {
		// A nil desktop collaborator makes the status menu panic.
		p := New(&itesting.MockCatalog{}, &itesting.MockController{}, &itesting.MockAuthorizer{}, nil, nil, shared.NewLogger(nil))

		resp := p.Dispatch(context.Background(), Request{Method: "query"})
		if len(resp.Result) != 1 || resp.Result[0].Title != "Spotify Plugin Error" {
			t.Fatalf("expected recovered error entry, got %+v", resp.Result)
		}

		// The response must still serialize.
		if _, err := json.Marshal(resp); err != nil {
			t.Errorf("response not serializable: %v", err)
		}
	})
}

func TestShowControls(t *testing.T) {
	t.Run("Lists Commands", func(t *testing.T) {
		p := newTestPlugin(nil, nil, &itesting.MockAuthorizer{IsAuthed: true}, nil)

		results := dispatch(t, p, "show_controls")
		if len(results) != 17 {
			t.Fatalf("expected 17 command entries, got %d", len(results))
		}
		if !strings.Contains(results[0].Title, "✅") {
			t.Errorf("expected authorized marker on auth entry, got %q", results[0].Title)
		}
	})

	t.Run("Unauthorized Marker", func(t *testing.T) {
		p := newTestPlugin(nil, nil, &itesting.MockAuthorizer{IsAuthed: false}, nil)

		results := dispatch(t, p, "show_controls")
		if !strings.Contains(results[0].Title, "❌") {
			t.Errorf("expected unauthorized marker, got %q", results[0].Title)
		}
	})
}

func TestExecuteCommand(t *testing.T) {
	t.Run("Pause Uses API", func(t *testing.T) {
		controller := &itesting.MockController{}
		app := &itesting.MockDesktop{}
		p := newTestPlugin(nil, controller, nil, app)

		results := dispatch(t, p, "execute_command", "pause")
		if results[0].Title != "✅ Command Executed" {
			t.Errorf("expected success entry, got %+v", results[0])
		}
		if len(controller.Calls) != 1 || controller.Calls[0] != "pause" {
			t.Errorf("unexpected calls %v", controller.Calls)
		}
		if !app.Launched {
			t.Error("desktop app should be launched first")
		}
	})

	t.Run("API Failure Falls Back To Media Key", func(t *testing.T) {
		controller := &itesting.MockController{Err: shared.ErrNotAuthenticated}
		app := &itesting.MockDesktop{}
		p := newTestPlugin(nil, controller, nil, app)

		results := dispatch(t, p, "execute_command", "next")
		if results[0].Title != "✅ Command Executed" {
			t.Errorf("expected fallback success, got %+v", results[0])
		}
		if len(app.MediaKeys) != 1 {
			t.Errorf("expected media key fallback, got %v", app.MediaKeys)
		}
	})

	t.Run("Volume Takes Second Parameter", func(t *testing.T) {
		controller := &itesting.MockController{}
		p := newTestPlugin(nil, controller, nil, nil)

		dispatch(t, p, "execute_command", "volume", "50")
		if controller.Volume != 50 {
			t.Errorf("expected volume 50, got %d", controller.Volume)
		}
	})

	t.Run("Volume Without Number Fails", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "execute_command", "volume")
		if results[0].Title != "⚠️ Action Not Completed" {
			t.Errorf("expected failure entry, got %+v", results[0])
		}
	})

	t.Run("Like Targets Current Track", func(t *testing.T) {
		controller := &itesting.MockController{Playing: &models.NowPlaying{TrackID: "t1", TrackName: "Believer"}}
		p := newTestPlugin(nil, controller, nil, nil)

		dispatch(t, p, "execute_command", "like")
		if controller.EditedTrack != "t1" {
			t.Errorf("expected like on t1, got %q", controller.EditedTrack)
		}
	})

	t.Run("Like With Nothing Playing Fails", func(t *testing.T) {
		controller := &itesting.MockController{}
		p := newTestPlugin(nil, controller, nil, nil)

		results := dispatch(t, p, "execute_command", "like")
		if results[0].Title != "⚠️ Action Not Completed" {
			t.Errorf("expected failure entry, got %+v", results[0])
		}
	})

	t.Run("Device Summary", func(t *testing.T) {
		controller := &itesting.MockController{DeviceList: []models.Device{
			{Name: "Desktop"},
			{Name: "Phone", IsActive: true},
		}}
		p := newTestPlugin(nil, controller, nil, nil)

		results := dispatch(t, p, "execute_command", "device")
		if !strings.Contains(results[0].SubTitle, "Phone (active)") {
			t.Errorf("expected active device named, got %q", results[0].SubTitle)
		}
	})

	t.Run("Auth Routes To Authorization", func(t *testing.T) {
		authorizer := &itesting.MockAuthorizer{URL: "https://accounts.example/authorize"}
		app := &itesting.MockDesktop{}
		p := newTestPlugin(nil, nil, authorizer, app)

		results := dispatch(t, p, "execute_command", "auth")
		if results[0].Title != "🔐 Authorization Started" {
			t.Errorf("expected authorization entry, got %+v", results[0])
		}
		if app.OpenedURL != authorizer.URL {
			t.Errorf("expected browser opened to auth URL, got %q", app.OpenedURL)
		}
	})
}

func TestAuthorizeSpotify(t *testing.T) {
	t.Run("Starts Background Flow", func(t *testing.T) {
		app := &itesting.MockDesktop{}
		p := newTestPlugin(nil, nil, nil, app)

		var began bool
		p.BeginAuth = func() error {
			began = true
			return nil
		}

		results := dispatch(t, p, "authorize_spotify")
		if results[0].Title != "🔐 Authorization Started" {
			t.Errorf("expected started entry, got %+v", results[0])
		}
		if !began {
			t.Error("background flow should be started")
		}
	})

	t.Run("Browser Failure Reported", func(t *testing.T) {
		app := &itesting.MockDesktop{BrowserErr: errors.New("no browser")}
		p := newTestPlugin(nil, nil, nil, app)

		results := dispatch(t, p, "authorize_spotify")
		if results[0].Title != "❌ Authorization Failed" {
			t.Errorf("expected failure entry, got %+v", results[0])
		}
	})
}

func TestPlayEntity(t *testing.T) {
	t.Run("Plays On Picked Device", func(t *testing.T) {
		controller := &itesting.MockController{DeviceList: []models.Device{
			{ID: "d1"},
			{ID: "d2", IsActive: true},
		}}
		p := newTestPlugin(nil, controller, nil, nil)

		results := dispatch(t, p, "play_track", "spotify:track:t1")
		if results[0].Title != "▶️ Playing" {
			t.Errorf("expected playing entry, got %+v", results[0])
		}
		if controller.PlayedURI != "spotify:track:t1" || controller.PlayedDevice != "d2" {
			t.Errorf("unexpected playback call %q on %q", controller.PlayedURI, controller.PlayedDevice)
		}
	})

	t.Run("API Failure Opens URI", func(t *testing.T) {
		controller := &itesting.MockController{Err: shared.ErrNotAuthenticated}
		app := &itesting.MockDesktop{}
		p := newTestPlugin(nil, controller, nil, app)

		results := dispatch(t, p, "play_album", "spotify:album:a1")
		if results[0].Title != "▶️ Playing" {
			t.Errorf("expected playing entry, got %+v", results[0])
		}
		if app.OpenedURI != "spotify:album:a1" {
			t.Errorf("expected URI handoff, got %q", app.OpenedURI)
		}
	})

	t.Run("Missing URI", func(t *testing.T) {
		p := newTestPlugin(nil, nil, nil, nil)

		results := dispatch(t, p, "play_track")
		if results[0].Title != "Spotify Plugin Error" {
			t.Errorf("expected error entry, got %+v", results[0])
		}
	})
}

func TestCachedSearch(t *testing.T) {
	t.Run("Hit Skips Network", func(t *testing.T) {
		catalog := &itesting.MockCatalog{}
		cache := &itesting.MockCache{Entries: map[string][]models.SearchResult{
			"believer|track": {{Kind: models.KindTrack, Name: "Believer", URI: "spotify:track:t1"}},
		}}
		p := New(catalog, &itesting.MockController{}, &itesting.MockAuthorizer{}, &itesting.MockDesktop{}, cache, shared.NewLogger(nil))

		results := dispatch(t, p, "query", "track believer")
		if len(results) != 1 {
			t.Fatalf("expected cached entry, got %d", len(results))
		}
		if len(catalog.Queries) != 0 {
			t.Errorf("network search should be skipped, got %v", catalog.Queries)
		}
	})

	t.Run("Miss Fills Cache", func(t *testing.T) {
		catalog := &itesting.MockCatalog{Results: map[models.Kind][]models.SearchResult{
			models.KindTrack: {{Kind: models.KindTrack, Name: "Believer", URI: "spotify:track:t1"}},
		}}
		cache := &itesting.MockCache{}
		p := New(catalog, &itesting.MockController{}, &itesting.MockAuthorizer{}, &itesting.MockDesktop{}, cache, shared.NewLogger(nil))

		dispatch(t, p, "query", "track believer")
		if cache.Puts != 1 {
			t.Errorf("expected cache write, got %d", cache.Puts)
		}
	})

	t.Run("Cache Errors Degrade To Live Search", func(t *testing.T) {
		catalog := &itesting.MockCatalog{Results: map[models.Kind][]models.SearchResult{
			models.KindTrack: {{Kind: models.KindTrack, Name: "Believer", URI: "spotify:track:t1"}},
		}}
		cache := &itesting.MockCache{GetErr: errors.New("db locked"), PutErr: errors.New("db locked")}
		p := New(catalog, &itesting.MockController{}, &itesting.MockAuthorizer{}, &itesting.MockDesktop{}, cache, shared.NewLogger(nil))

		results := dispatch(t, p, "query", "track believer")
		if len(results) != 1 {
			t.Errorf("expected live search results despite cache errors, got %d", len(results))
		}
	})
}
