package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
)

// Colors (theme-aware - updated by theme.go)
var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	WarningColor   = lipgloss.Color("#FFCC00")
	ErrorColor     = lipgloss.Color("#FF5F56")
	SubtleColor    = lipgloss.Color("#626262")
	CoveredColor   = lipgloss.Color("#3CB371")
	UncoveredColor = lipgloss.Color("#FF5F56")
	RuleColor      = lipgloss.Color("#00BFFF")
	CheckColor     = lipgloss.Color("#DDA0DD")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Detail view styles
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Width(18)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	RuleStyle = lipgloss.NewStyle().
			Foreground(RuleColor)

	CheckStyle = lipgloss.NewStyle().
			Foreground(CheckColor)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC")).
				Width(80)

	// Badge styles
	ControlBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	CoveredBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(CoveredColor).
			Padding(0, 1)

	UncoveredBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(UncoveredColor).
			Padding(0, 1)

	// List item styles
	SelectedItemStyle = lipgloss.NewStyle().
				BorderLeft(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(PrimaryColor).
				PaddingLeft(1)

	NormalItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// StatsStyle for statistics header
	StatsStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 1)

	// StatHighlight for important stats
	StatHighlight = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// CoverageBadgeText returns the covered/uncovered badge.
func CoverageBadgeText(covered bool) string {
	if covered {
		return CoveredBadge.Render("COVERED")
	}
	return UncoveredBadge.Render("NOT COVERED")
}

// percentColor picks the bar colour of a percentage.
func percentColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 100:
		return CoveredColor
	case pct >= 50:
		return WarningColor
	default:
		return UncoveredColor
	}
}

// PercentBadge renders a percentage, or N/A in the subtle colour.
func PercentBadge(p coverage.Percentage) string {
	if !p.Applicable {
		return lipgloss.NewStyle().Foreground(SubtleColor).Render(p.String())
	}
	return lipgloss.NewStyle().Foreground(percentColor(p.Value)).Bold(true).Render(p.String())
}

// CoverageBar returns a bar of width cells filled to pct percent.
func CoverageBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	if filled < 1 && pct > 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}

	filledStyle := lipgloss.NewStyle().Foreground(percentColor(pct))
	emptyStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}
