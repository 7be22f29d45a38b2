// Package render draws insight series as terminal charts.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ethanolivertroy/compdef-insights/internal/insights"
)

var (
	TitleColor  = lipgloss.Color("#7D56F4")
	SubtleColor = lipgloss.Color("#626262")
	BarColor    = lipgloss.Color("#6495ED")

	// Class colours follow mediumseagreen, gold and silver.
	GoodColor  = lipgloss.Color("#3CB371")
	WarnColor  = lipgloss.Color("#FFD700")
	OtherColor = lipgloss.Color("#C0C0C0")
)

// ClassColor returns the colour of a point class.
func ClassColor(c insights.Class) lipgloss.Color {
	switch c {
	case insights.ClassGood:
		return GoodColor
	case insights.ClassWarn:
		return WarnColor
	case insights.ClassOther:
		return OtherColor
	}
	return BarColor
}

// Options control chart rendering.
type Options struct {
	Width    int
	Height   int
	Selected int
	Footer   string
}

// DefaultOptions is used for file output.
var DefaultOptions = Options{Width: 100, Height: 30, Selected: -1}

// RenderSeries draws a series as a bar chart with a legend.
func RenderSeries(s insights.Series, opts Options) string {
	if len(s.Points) == 0 {
		return s.Title + ": no data available"
	}

	var b strings.Builder
	writeHeader(&b, s, opts.Width)

	if !allNotApplicable(s.Points) {
		b.WriteString(drawBars(s.Points, opts))
		b.WriteString("\n\n")
	}

	total := s.Total()
	for i, p := range s.Points {
		line := legendLine(s, p, total)
		marker := lipgloss.NewStyle().Foreground(ClassColor(p.Class)).Render("█")
		if i == opts.Selected {
			selected := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(TitleColor)
			b.WriteString(fmt.Sprintf("%s %s\n", marker, selected.Render(" "+line+" ")))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, line))
	}

	subtle := lipgloss.NewStyle().Foreground(SubtleColor)
	if s.XLabel != "" || s.YLabel != "" {
		b.WriteString("\n")
		if s.XLabel != "" {
			b.WriteString(subtle.Render("x: " + s.XLabel))
			b.WriteString("\n")
		}
		if s.YLabel != "" {
			b.WriteString(subtle.Render("y: " + s.YLabel))
			b.WriteString("\n")
		}
	}
	if opts.Footer != "" {
		b.WriteString("\n")
		b.WriteString(subtle.Render(opts.Footer))
	}
	return b.String()
}

// RenderDetail draws the per-item detail of a series as horizontal text
// bars, one line per item.
func RenderDetail(s insights.Series, opts Options) string {
	if len(s.Detail) == 0 {
		return s.Title + ": no detail available"
	}

	var b strings.Builder
	writeHeader(&b, s, opts.Width)

	labelWidth := 0
	maxValue := 0.0
	for _, p := range s.Detail {
		labelWidth = max(labelWidth, len(p.Label))
		maxValue = math.Max(maxValue, p.Value)
	}
	labelWidth = min(labelWidth, 32)
	barSpace := max(opts.Width-labelWidth-10, 10)

	style := lipgloss.NewStyle().Foreground(BarColor)
	for i, p := range s.Detail {
		n := 0
		if maxValue > 0 {
			n = int(math.Round(p.Value / maxValue * float64(barSpace)))
		}
		label := fmt.Sprintf("%-*s", labelWidth, truncateString(p.Label, labelWidth))
		if i == opts.Selected {
			label = lipgloss.NewStyle().Bold(true).Foreground(TitleColor).Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", label, style.Render(strings.Repeat("█", n)), p.DisplayValue()))
	}

	if s.YLabel != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(SubtleColor).Render(s.YLabel))
	}
	if opts.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(SubtleColor).Render(opts.Footer))
	}
	return b.String()
}

// Plain renders without terminal escape sequences.
func Plain(rendered string) string {
	return ansi.Strip(rendered)
}

func writeHeader(b *strings.Builder, s insights.Series, width int) {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(TitleColor).
		Padding(0, 1).
		Render(s.Title)
	b.WriteString(title)
	b.WriteString("\n")

	if s.Left != "" || s.Right != "" {
		gap := max(width-len(s.Left)-len(s.Right), 2)
		heading := s.Left + strings.Repeat(" ", gap) + s.Right
		b.WriteString(lipgloss.NewStyle().Foreground(SubtleColor).Render(heading))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func drawBars(points []insights.Point, opts Options) string {
	barWidth := 6
	if len(points) > 6 {
		barWidth = 3
	}
	bc := barchart.New(max(opts.Width-4, 10), max(opts.Height-12, 5),
		barchart.WithNoAutoBarWidth(),
		barchart.WithBarWidth(barWidth),
		barchart.WithBarGap(2),
	)

	var items []barchart.BarData
	for _, p := range points {
		if p.NotApplicable {
			continue
		}
		items = append(items, barchart.BarData{
			Label: truncateString(p.Label, barWidth+2),
			Values: []barchart.BarValue{{
				Name:  p.Label,
				Value: p.Value,
				Style: lipgloss.NewStyle().Foreground(ClassColor(p.Class)),
			}},
		})
	}
	bc.PushAll(items)
	bc.Draw()
	return bc.View()
}

func legendLine(s insights.Series, p insights.Point, total float64) string {
	if p.NotApplicable {
		return fmt.Sprintf("%s: N/A", p.Label)
	}
	switch {
	case s.Kind == insights.KindPie:
		pct := 0.0
		if total > 0 {
			pct = p.Value / total * 100
		}
		return fmt.Sprintf("%s: %s (%.0f%%)", p.Label, p.DisplayValue(), pct)
	case s.Unit == insights.UnitPercent:
		return fmt.Sprintf("%s: %.1f%%", p.Label, p.Value)
	}
	return fmt.Sprintf("%s: %s", p.Label, p.DisplayValue())
}

func allNotApplicable(points []insights.Point) bool {
	for _, p := range points {
		if !p.NotApplicable {
			return false
		}
	}
	return true
}

// truncateString cuts s to maxLen cells, ending in a dot.
func truncateString(s string, maxLen int) string {
	if maxLen <= 1 {
		return s
	}
	return ansi.Truncate(s, maxLen, ".")
}
