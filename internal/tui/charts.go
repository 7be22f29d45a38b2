package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
	"github.com/ethanolivertroy/compdef-insights/internal/families"
	"github.com/ethanolivertroy/compdef-insights/internal/insights"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// ChartOption represents a chart in the charts menu
type ChartOption struct {
	Name        string
	Description string
	Artifact    string // empty for the family chart
	View        ViewState
}

var chartDescriptions = map[string]string{
	coverage.MetricControlsCoverage:       "Covered and uncovered catalog controls",
	coverage.MetricControlsToComponents:   "How many components implement each control",
	coverage.MetricComponentsToControls:   "How many controls each component covers",
	coverage.MetricComponentCheckCoverage: "Share of each component's rules backed by checks",
	coverage.MetricRulesChecksCounts:      "Rule to check edges and check reuse",
	coverage.MetricImplementationsExist:   "Rules with and without a recorded implementation",
}

// ChartOptions lists one entry per series followed by the family chart.
func ChartOptions(series []insights.Series) []ChartOption {
	opts := make([]ChartOption, 0, len(series)+1)
	for _, s := range series {
		opts = append(opts, ChartOption{
			Name:        s.Title,
			Description: chartDescriptions[s.Artifact],
			Artifact:    s.Artifact,
			View:        ViewSeriesChart,
		})
	}
	opts = append(opts, ChartOption{
		Name:        "Control Families",
		Description: "Coverage per NIST 800-53 family",
		View:        ViewFamilies,
	})
	return opts
}

// RenderSeriesChart draws one metric series. With detail set, series that
// carry per-item data are drawn item by item.
func RenderSeriesChart(s insights.Series, width, height int, detail bool) string {
	footer := "←/→ previous/next chart • g/esc back"
	if len(s.Detail) > 0 {
		if detail {
			footer = "d histogram • " + footer
		} else {
			footer = "d per-item detail • " + footer
		}
	}
	opts := render.Options{Width: width, Height: height, Selected: -1, Footer: footer}
	if detail && len(s.Detail) > 0 {
		return render.RenderDetail(s, opts)
	}
	return render.RenderSeries(s, opts)
}

// RenderFamilyChart renders a bar chart of coverage percentage per family
func RenderFamilyChart(list []families.Coverage, width, height int, selectedIndex int) string {
	if len(list) == 0 {
		return "No family data available"
	}

	var b strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(PrimaryColor).
		Padding(0, 1).
		Render("Coverage by Control Family")
	b.WriteString(title)
	b.WriteString("\n\n")

	chartHeight := max(height-len(list)-8, 6)
	bc := barchart.New(max(width-4, 10), chartHeight,
		barchart.WithNoAutoBarWidth(),
		barchart.WithBarWidth(3),
		barchart.WithBarGap(1),
	)

	var items []barchart.BarData
	for _, f := range list {
		items = append(items, barchart.BarData{
			Label: truncateString(strings.ToUpper(f.Family), 4),
			Values: []barchart.BarValue{{
				Name:  f.Title,
				Value: f.Percentage.Value,
				Style: lipgloss.NewStyle().Foreground(percentColor(f.Percentage.Value)),
			}},
		})
	}
	bc.PushAll(items)
	bc.Draw()

	b.WriteString(bc.View())
	b.WriteString("\n\n")

	for i, f := range list {
		marker := lipgloss.NewStyle().Foreground(percentColor(f.Percentage.Value)).Render("█")
		line := fmt.Sprintf("%-4s %-42s %3d/%-3d %s",
			strings.ToUpper(f.Family), truncateString(f.Title, 42), f.Covered, f.Total, f.Percentage)
		if i == selectedIndex {
			selectedStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(PrimaryColor)
			b.WriteString(fmt.Sprintf("%s %s\n", marker, selectedStyle.Render(" "+line+" ")))
		} else {
			b.WriteString(fmt.Sprintf("%s %s\n", marker, line))
		}
	}

	b.WriteString("\n")
	footerStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(footerStyle.Render("j/k navigate • enter filter by family • g/esc back"))

	return b.String()
}

// truncateString truncates a string to maxLen cells
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}
