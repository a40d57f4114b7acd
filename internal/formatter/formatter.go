// package formatter renders search results and devices to terminal
// output formats (plain text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/desertthunder/spotlite/internal/models"
)

// ResultsToText converts search results to plain text, one numbered
// line per result.
func ResultsToText(query string, results []models.SearchResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Results for: %s\n\n", query))
	for i, r := range results {
		buf.WriteString(fmt.Sprintf("%d. %s %s • %s\n", i+1, r.Kind.Marker(), r.Name, r.Detail))
	}

	return buf.Bytes()
}

// ResultsToCSV converts search results to CSV with columns: Kind, Name, Detail, URI
func ResultsToCSV(results []models.SearchResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "Name", "Detail", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range results {
		record := []string{string(r.Kind), r.Name, r.Detail, r.URI}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ResultsToMarkdown converts search results to a Markdown table.
func ResultsToMarkdown(query string, results []models.SearchResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Search: %s\n\n", query))
	buf.WriteString(fmt.Sprintf("**Results**: %d\n\n", len(results)))

	buf.WriteString("| # | Kind | Name | Detail | URI |\n")
	buf.WriteString("|---|------|------|--------|-----|\n")
	for i, r := range results {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | `%s` |\n", i+1, r.Kind, r.Name, r.Detail, r.URI))
	}

	return buf.Bytes()
}

// DevicesToText converts a device list to plain text.
func DevicesToText(devices []models.Device) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Devices: %d\n\n", len(devices)))
	for i, d := range devices {
		marker := " "
		if d.IsActive {
			marker = "*"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (%s) volume %d%%\n", i+1, marker, d.Name, d.Type, d.VolumePercent))
	}

	return buf.Bytes()
}
