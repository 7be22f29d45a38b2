package tui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/export"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// ExportScope represents what data to export
type ExportScope int

const (
	ExportCurrentView ExportScope = iota
	ExportFullReport
)

func (s ExportScope) String() string {
	switch s {
	case ExportCurrentView:
		return "Current View"
	case ExportFullReport:
		return "Full Report"
	}
	return ""
}

// ExportOption represents a menu option
type ExportOption struct {
	Name   string
	Format export.Format
	Scope  ExportScope
}

// DefaultExportOptions is the export menu.
func DefaultExportOptions() []ExportOption {
	return []ExportOption{
		{Name: "JSON (Current View)", Format: export.FormatJSON, Scope: ExportCurrentView},
		{Name: "CSV (Current View)", Format: export.FormatCSV, Scope: ExportCurrentView},
		{Name: "Markdown (Current View)", Format: export.FormatMarkdown, Scope: ExportCurrentView},
		{Name: "JSON (Full Report)", Format: export.FormatJSON, Scope: ExportFullReport},
		{Name: "CSV (Full Report)", Format: export.FormatCSV, Scope: ExportFullReport},
		{Name: "Markdown (Full Report)", Format: export.FormatMarkdown, Scope: ExportFullReport},
		{Name: "YAML (Full Report)", Format: export.FormatYAML, Scope: ExportFullReport},
		{Name: "Text Charts (Full Report)", Format: export.FormatText, Scope: ExportFullReport},
	}
}

// PendingExport holds an export waiting for confirmation.
type PendingExport struct {
	Option   ExportOption
	Controls []model.ControlItem
	Count    int
}

// ExportControls writes the given controls to a timestamped file in outputDir.
func ExportControls(controls []model.ControlItem, format export.Format, outputDir string) export.Result {
	timestamp := time.Now().Format("2006-01-02_150405")
	filename := fmt.Sprintf("controls_%s%s", timestamp, format.Extension())
	path := filepath.Join(outputDir, filename)

	var err error
	switch format {
	case export.FormatJSON:
		err = exportControlsJSON(controls, path)
	case export.FormatCSV:
		err = exportControlsCSV(controls, path)
	case export.FormatMarkdown:
		err = exportControlsMarkdown(controls, path)
	default:
		err = errors.Errorf("%s is not supported for control lists", format)
	}

	if err != nil {
		return export.Result{Err: err}
	}
	return export.Result{FilePath: path, Count: len(controls)}
}

// ExportReport writes every artifact of res into a timestamped directory
// under outputDir.
func ExportReport(res *analysis.Result, format export.Format, outputDir string, chart render.Options) ([]export.Result, string, error) {
	dir := filepath.Join(outputDir, "report_"+time.Now().Format("2006-01-02_150405"))
	results, err := export.WriteReport(res.Report, res.Series, dir, export.Options{
		Formats:    []export.Format{format},
		Chart:      chart,
		Definition: res.Meta.Name,
		Metrics:    true,
	})
	return results, dir, err
}

func exportControlsJSON(controls []model.ControlItem, path string) (err error) {
	type exportControl struct {
		ID         string `json:"id"`
		Title      string `json:"title,omitempty"`
		Family     string `json:"family"`
		Group      string `json:"group,omitempty"`
		Covered    bool   `json:"covered"`
		Rules      int    `json:"rules"`
		Checks     int    `json:"checks"`
		Components int    `json:"components"`
	}

	doc := struct {
		ExportedAt string          `json:"exported_at"`
		TotalCount int             `json:"total_count"`
		Covered    int             `json:"covered"`
		Controls   []exportControl `json:"controls"`
	}{
		ExportedAt: time.Now().Format(time.RFC3339),
		TotalCount: len(controls),
		Controls:   make([]exportControl, 0, len(controls)),
	}

	for _, c := range controls {
		if c.Covered {
			doc.Covered++
		}
		doc.Controls = append(doc.Controls, exportControl{
			ID:         c.ID,
			Title:      c.Name,
			Family:     c.Family,
			Group:      c.Group,
			Covered:    c.Covered,
			Rules:      c.Rules,
			Checks:     c.Checks,
			Components: c.Components,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer export.CloseFile(file, &err)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func exportControlsCSV(controls []model.ControlItem, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer export.CloseFile(file, &err)

	writer := csv.NewWriter(file)

	header := []string{"Control ID", "Title", "Family", "Group", "Covered", "Rules", "Checks", "Components"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, c := range controls {
		covered := "No"
		if c.Covered {
			covered = "Yes"
		}
		row := []string{
			c.ID,
			c.Name,
			c.Family,
			c.Group,
			covered,
			fmt.Sprint(c.Rules),
			fmt.Sprint(c.Checks),
			fmt.Sprint(c.Components),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportControlsMarkdown(controls []model.ControlItem, path string) error {
	var b strings.Builder

	b.WriteString("# Control Coverage\n\n")
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Total Controls:** %d\n\n", len(controls)))

	covered := 0
	for _, c := range controls {
		if c.Covered {
			covered++
		}
	}
	if len(controls) > 0 {
		b.WriteString("## Summary\n\n")
		b.WriteString(fmt.Sprintf("- **Covered:** %d (%.1f%%)\n", covered, float64(covered)/float64(len(controls))*100))
		b.WriteString(fmt.Sprintf("- **Not covered:** %d\n\n", len(controls)-covered))
	}

	b.WriteString("## Controls\n\n")
	b.WriteString("| Control | Title | Family | Covered | Rules | Checks | Components |\n")
	b.WriteString("|---------|-------|--------|---------|-------|--------|------------|\n")

	for _, c := range controls {
		status := "No"
		if c.Covered {
			status = "Yes"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %d |\n",
			strings.ToUpper(c.ID), c.Name, c.Family, status, c.Rules, c.Checks, c.Components))
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
