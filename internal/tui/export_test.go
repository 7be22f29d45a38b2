package tui

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethanolivertroy/compdef-insights/internal/export"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

func testControls() []model.ControlItem {
	return []model.ControlItem{
		{ID: "ac-1", Name: "Policy and Procedures", Family: "Access Control", Group: "ac", Covered: true, Rules: 1, Checks: 1, Components: 1},
		{ID: "au-1", Name: "Policy and Procedures", Family: "Audit and Accountability", Group: "au"},
	}
}

func TestExportScopeString(t *testing.T) {
	tests := []struct {
		scope    ExportScope
		expected string
	}{
		{ExportCurrentView, "Current View"},
		{ExportFullReport, "Full Report"},
		{ExportScope(99), ""}, // unknown scope
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.scope.String(); got != tt.expected {
				t.Errorf("ExportScope.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDefaultExportOptions(t *testing.T) {
	for _, opt := range DefaultExportOptions() {
		if opt.Scope != ExportCurrentView {
			continue
		}
		switch opt.Format {
		case export.FormatJSON, export.FormatCSV, export.FormatMarkdown:
		default:
			t.Errorf("current view option %q uses unsupported format %s", opt.Name, opt.Format)
		}
	}
}

func TestExportControls(t *testing.T) {
	tests := []struct {
		name   string
		format export.Format
		ext    string
	}{
		{"JSON export", export.FormatJSON, ".json"},
		{"CSV export", export.FormatCSV, ".csv"},
		{"Markdown export", export.FormatMarkdown, ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExportControls(testControls(), tt.format, t.TempDir())
			if result.Err != nil {
				t.Fatalf("ExportControls() error = %v", result.Err)
			}
			if result.Count != 2 {
				t.Errorf("ExportControls() count = %d, want 2", result.Count)
			}
			if !strings.HasPrefix(filepath.Base(result.FilePath), "controls_") {
				t.Errorf("filename should start with 'controls_', got %s", filepath.Base(result.FilePath))
			}
			if !strings.HasSuffix(result.FilePath, tt.ext) {
				t.Errorf("filename should end with %s, got %s", tt.ext, result.FilePath)
			}
			if _, err := os.Stat(result.FilePath); os.IsNotExist(err) {
				t.Errorf("file was not created at %s", result.FilePath)
			}
		})
	}
}

func TestExportControlsUnsupportedFormat(t *testing.T) {
	if result := ExportControls(testControls(), export.FormatYAML, t.TempDir()); result.Err == nil {
		t.Error("ExportControls() should reject YAML")
	}
}

func TestExportControlsInvalidDir(t *testing.T) {
	result := ExportControls(testControls(), export.FormatJSON, "/nonexistent/path/that/does/not/exist")
	if result.Err == nil {
		t.Error("ExportControls() should return error for invalid directory")
	}
}

func TestExportControlsJSON(t *testing.T) {
	result := ExportControls(testControls(), export.FormatJSON, t.TempDir())
	if result.Err != nil {
		t.Fatalf("ExportControls() error = %v", result.Err)
	}

	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}

	var doc struct {
		TotalCount int `json:"total_count"`
		Covered    int `json:"covered"`
		Controls   []struct {
			ID      string `json:"id"`
			Covered bool   `json:"covered"`
			Rules   int    `json:"rules"`
		} `json:"controls"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if doc.TotalCount != 2 || doc.Covered != 1 {
		t.Errorf("total = %d covered = %d, want 2 and 1", doc.TotalCount, doc.Covered)
	}
	if len(doc.Controls) != 2 || doc.Controls[0].ID != "ac-1" || !doc.Controls[0].Covered {
		t.Errorf("controls = %+v, want covered ac-1 first", doc.Controls)
	}
}

func TestExportControlsCSV(t *testing.T) {
	result := ExportControls(testControls(), export.FormatCSV, t.TempDir())
	if result.Err != nil {
		t.Fatalf("ExportControls() error = %v", result.Err)
	}

	file, err := os.Open(result.FilePath)
	if err != nil {
		t.Fatalf("Failed to open exported file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("CSV has %d rows, want 3 (header + 2)", len(records))
	}
	if records[0][0] != "Control ID" {
		t.Errorf("CSV header[0] = %q, want %q", records[0][0], "Control ID")
	}
	if records[1][4] != "Yes" || records[2][4] != "No" {
		t.Errorf("covered column = %q, %q; want Yes, No", records[1][4], records[2][4])
	}
}

func TestExportControlsMarkdown(t *testing.T) {
	result := ExportControls(testControls(), export.FormatMarkdown, t.TempDir())
	if result.Err != nil {
		t.Fatalf("ExportControls() error = %v", result.Err)
	}

	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	content := string(data)

	for _, want := range []string{"# Control Coverage", "**Total Controls:** 2", "**Covered:** 1 (50.0%)", "| AC-1 |"} {
		if !strings.Contains(content, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestExportReport(t *testing.T) {
	res := testResult(t)
	results, dir, err := ExportReport(res, export.FormatCSV, t.TempDir(), render.DefaultOptions)
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dir), "report_") {
		t.Errorf("report dir = %s, want report_ prefix", dir)
	}
	// one file per series plus anomalies, summary and metrics
	if want := len(res.Series) + 3; len(results) != want {
		t.Errorf("ExportReport() wrote %d files, want %d", len(results), want)
	}
	if _, err := os.Stat(filepath.Join(dir, export.MetricsFile)); err != nil {
		t.Errorf("metrics file missing: %v", err)
	}
}
