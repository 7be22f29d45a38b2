package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/ethanolivertroy/compdef-insights/internal/insights"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// Result is the outcome of writing one file.
type Result struct {
	FilePath string
	Count    int
	Err      error
}

// Series writes s to dir as <artifact><ext>.
func Series(s insights.Series, format Format, dir string, opts render.Options) Result {
	path := filepath.Join(dir, s.Artifact+format.Extension())

	var err error
	switch format {
	case FormatJSON:
		err = writeJSON(path, s)
	case FormatCSV:
		err = exportCSV(s, path)
	case FormatMarkdown:
		err = writeString(path, Markdown(s))
	case FormatYAML:
		err = exportYAML(s, path)
	case FormatText:
		err = writeString(path, Text(s, opts))
	default:
		err = fmt.Errorf("unsupported format %d", format)
	}
	if err != nil {
		return Result{Err: errors.Wrapf(err, "exporting %s", s.Artifact)}
	}
	return Result{FilePath: path, Count: len(s.Points)}
}

func writeJSON(path string, v interface{}) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer CloseFile(file, &err)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// CloseFile closes a written file and stores the close error in err unless
// err already holds one. A failed close can lose buffered data.
func CloseFile(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func writeString(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func exportCSV(s insights.Series, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer CloseFile(file, &err)

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Label", "Value", "Class"}); err != nil {
		return err
	}
	for _, p := range s.Points {
		if err := writer.Write([]string{p.Label, p.DisplayValue(), string(p.Class)}); err != nil {
			return err
		}
	}
	if len(s.Detail) > 0 {
		if err := writer.Write(nil); err != nil {
			return err
		}
		if err := writer.Write([]string{"Item", "Value"}); err != nil {
			return err
		}
		for _, p := range s.Detail {
			if err := writer.Write([]string{p.Label, p.DisplayValue()}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportYAML(s insights.Series, path string) error {
	// Round trip through JSON so the yaml keys match the json tags.
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// Text renders the series chart without escape sequences, followed by the
// points table.
func Text(s insights.Series, opts render.Options) string {
	var b strings.Builder
	b.WriteString(render.Plain(render.RenderSeries(s, opts)))
	b.WriteString("\n\n")
	table(&b, s.Points, false)
	if len(s.Detail) > 0 {
		b.WriteString("\n")
		b.WriteString(render.Plain(render.RenderDetail(s, opts)))
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the series as a markdown document with a points table.
func Markdown(s insights.Series) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", s.Title))
	if s.Left != "" {
		b.WriteString(fmt.Sprintf("**%s**\n\n", s.Left))
	}
	if s.Right != "" {
		b.WriteString(fmt.Sprintf("**%s**\n\n", s.Right))
	}
	if s.XLabel != "" {
		b.WriteString(fmt.Sprintf("- x: %s\n", s.XLabel))
	}
	if s.YLabel != "" {
		b.WriteString(fmt.Sprintf("- y: %s\n", s.YLabel))
	}
	if s.XLabel != "" || s.YLabel != "" {
		b.WriteString("\n")
	}

	table(&b, s.Points, true)

	if len(s.Detail) > 0 {
		b.WriteString("\n## Detail\n\n")
		table(&b, s.Detail, true)
	}

	b.WriteString("\n---\n\n")
	b.WriteString("*Generated by compdef-insights*\n")
	return b.String()
}

func table(b *strings.Builder, points []insights.Point, markdown bool) {
	t := tablewriter.NewWriter(b)
	t.SetHeader([]string{"Label", "Value"})
	t.SetAutoWrapText(false)
	if markdown {
		t.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		t.SetCenterSeparator("|")
	}
	for _, p := range points {
		t.Append([]string{p.Label, p.DisplayValue()})
	}
	t.Render()
}
