package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotlite/internal/plugin"
	"github.com/desertthunder/spotlite/internal/shared"
	tu "github.com/desertthunder/spotlite/internal/testing"
)

// testConfig returns a config with fake credentials and throwaway paths.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "test_client"
	config.Credentials.Spotify.ClientSecret = "test_secret"
	config.Credentials.Spotify.TokenPath = filepath.Join(dir, "tokens.json")
	config.Database.Path = filepath.Join(dir, "cache.db")
	return config
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("With Credentials", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{
				Config: testConfig(t),
				Logger: shared.NewLogger(nil),
				Output: output,
			})

			if runner.broker == nil {
				t.Error("expected broker to be constructed")
			}
			if runner.client == nil {
				t.Error("expected client to be constructed")
			}
			if runner.requireClient() != nil {
				t.Error("expected client requirement satisfied")
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = ""
			config.Credentials.Spotify.ClientSecret = ""
			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: shared.NewLogger(nil),
				Output: &bytes.Buffer{},
			})

			if runner.broker != nil {
				t.Error("expected no broker without credentials")
			}
			if runner.requireClient() == nil {
				t.Error("expected client requirement to fail")
			}
		})
	})

	t.Run("CallbackAddr", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Logger: shared.NewLogger(nil),
			Output: &bytes.Buffer{},
		})

		if runner.callbackAddr() != "localhost:8080" {
			t.Errorf("unexpected callback addr %s", runner.callbackAddr())
		}
	})

	t.Run("WriteJSON", func(t *testing.T) {
		t.Run("Compact Is One Line", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}

			text := output.String()
			if strings.Count(text, "\n") != 1 || !strings.HasSuffix(text, "\n") {
				t.Errorf("expected single line output, got %q", text)
			}
		})

		t.Run("Pretty Is Indented", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}

			if !strings.Contains(output.String(), "  \"key\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("Write Failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("RunLauncher", func(t *testing.T) {
		t.Run("Invalid JSON Still Emits Response", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output})

			runner.RunLauncher(context.Background(), "{not json")

			var resp plugin.Response
			if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if len(resp.Result) != 1 || resp.Result[0].Title != "Spotify Plugin Error" {
				t.Errorf("expected error entry, got %+v", resp.Result)
			}
		})

		t.Run("Missing Credentials Entry", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = ""
			config.Credentials.Spotify.ClientSecret = ""

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output})

			runner.RunLauncher(context.Background(), `{"method":"query","parameters":[]}`)

			var resp plugin.Response
			if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if len(resp.Result) != 1 || !strings.Contains(resp.Result[0].Title, "Configure") {
				t.Errorf("expected configuration entry, got %+v", resp.Result)
			}
		})

		t.Run("Empty Query Yields Status Menu", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output})

			runner.RunLauncher(context.Background(), `{"method":"query","parameters":[]}`)

			var resp plugin.Response
			if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if len(resp.Result) != 2 {
				t.Fatalf("expected status and authorize entries, got %d", len(resp.Result))
			}
			if !strings.Contains(resp.Result[1].Title, "Authorize Spotify") {
				t.Errorf("expected authorize entry, got %+v", resp.Result[1])
			}
		})
	})
}
