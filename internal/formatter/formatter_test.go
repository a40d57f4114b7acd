package formatter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/desertthunder/spotlite/internal/models"
)

func sampleResults() []models.SearchResult {
	return []models.SearchResult{
		{Kind: models.KindTrack, Name: "Believer", Detail: "by Imagine Dragons • 3:24 • Evolve", URI: "spotify:track:t1"},
		{Kind: models.KindArtist, Name: "Imagine Dragons", Detail: "1,234 followers • rock", URI: "spotify:artist:a1"},
	}
}

func TestFormatter(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		out := string(ResultsToText("believer", sampleResults()))

		if !strings.Contains(out, "Results for: believer") {
			t.Error("expected query header")
		}
		if !strings.Contains(out, "1. 🎵 Believer") || !strings.Contains(out, "2. 🎤 Imagine Dragons") {
			t.Errorf("expected numbered marked lines, got:\n%s", out)
		}
	})

	t.Run("CSV", func(t *testing.T) {
		out, err := ResultsToCSV(sampleResults())
		if err != nil {
			t.Fatalf("csv failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
		if err != nil {
			t.Fatalf("invalid csv: %v", err)
		}

		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(records))
		}
		if records[0][0] != "Kind" || records[1][3] != "spotify:track:t1" {
			t.Errorf("unexpected records %v", records)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		out := string(ResultsToMarkdown("believer", sampleResults()))

		if !strings.Contains(out, "# Search: believer") {
			t.Error("expected title heading")
		}
		if !strings.Contains(out, "| 1 | track | Believer |") {
			t.Errorf("expected table row, got:\n%s", out)
		}
	})

	t.Run("Devices", func(t *testing.T) {
		out := string(DevicesToText([]models.Device{
			{Name: "Desktop", Type: "Computer", VolumePercent: 40},
			{Name: "Phone", Type: "Smartphone", IsActive: true, VolumePercent: 70},
		}))

		if !strings.Contains(out, "[*] Phone") {
			t.Errorf("expected active marker, got:\n%s", out)
		}
		if !strings.Contains(out, "[ ] Desktop") {
			t.Errorf("expected inactive marker, got:\n%s", out)
		}
	})
}
