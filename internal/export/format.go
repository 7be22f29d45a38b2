// Package export writes insight series and coverage reports to files.
package export

import (
	"fmt"
	"strings"
)

// Format is an export file format.
type Format int

const (
	FormatJSON Format = iota
	FormatCSV
	FormatMarkdown
	FormatYAML
	FormatText
)

// AllFormats lists every format in menu order.
var AllFormats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatYAML, FormatText}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatCSV:
		return "CSV"
	case FormatMarkdown:
		return "Markdown"
	case FormatYAML:
		return "YAML"
	case FormatText:
		return "Text"
	}
	return ""
}

func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatYAML:
		return ".yaml"
	case FormatText:
		return ".txt"
	}
	return ""
}

// ParseFormat accepts a format name or extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "txt", "text":
		return FormatText, nil
	}
	return FormatJSON, fmt.Errorf("unknown export format %q", s)
}

// ParseFormats parses a list of format names, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool)
	var out []Format
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}
