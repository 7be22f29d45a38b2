package tui

import "github.com/charmbracelet/lipgloss"

// ThemeName identifies a color theme
type ThemeName string

const (
	ThemeDefault    ThemeName = "default"
	ThemeDracula    ThemeName = "dracula"
	ThemeCatppuccin ThemeName = "catppuccin"
	ThemeNord       ThemeName = "nord"
)

// Theme holds color definitions for the TUI
type Theme struct {
	Name       ThemeName
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Subtle     lipgloss.Color
	Warning    lipgloss.Color
	Covered    lipgloss.Color
	Uncovered  lipgloss.Color
	Rule       lipgloss.Color
	Check      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
}

// Themes available in the application
var Themes = map[ThemeName]Theme{
	ThemeDefault: {
		Name:       ThemeDefault,
		Primary:    lipgloss.Color("#7D56F4"),
		Secondary:  lipgloss.Color("#04B575"),
		Subtle:     lipgloss.Color("#626262"),
		Warning:    lipgloss.Color("#FFD700"),
		Covered:    lipgloss.Color("#3CB371"),
		Uncovered:  lipgloss.Color("#FF5F56"),
		Rule:       lipgloss.Color("#00BFFF"),
		Check:      lipgloss.Color("#DDA0DD"),
		Background: lipgloss.Color("#1a1a1a"),
		Foreground: lipgloss.Color("#FFFFFF"),
	},
	ThemeDracula: {
		Name:       ThemeDracula,
		Primary:    lipgloss.Color("#bd93f9"), // Purple
		Secondary:  lipgloss.Color("#50fa7b"), // Green
		Subtle:     lipgloss.Color("#6272a4"), // Comment
		Warning:    lipgloss.Color("#f1fa8c"), // Yellow
		Covered:    lipgloss.Color("#50fa7b"), // Green
		Uncovered:  lipgloss.Color("#ff5555"), // Red
		Rule:       lipgloss.Color("#8be9fd"), // Cyan
		Check:      lipgloss.Color("#ff79c6"), // Pink
		Background: lipgloss.Color("#282a36"),
		Foreground: lipgloss.Color("#f8f8f2"),
	},
	ThemeCatppuccin: {
		Name:       ThemeCatppuccin,
		Primary:    lipgloss.Color("#cba6f7"), // Mauve
		Secondary:  lipgloss.Color("#a6e3a1"), // Green
		Subtle:     lipgloss.Color("#6c7086"), // Overlay0
		Warning:    lipgloss.Color("#f9e2af"), // Yellow
		Covered:    lipgloss.Color("#a6e3a1"), // Green
		Uncovered:  lipgloss.Color("#f38ba8"), // Red
		Rule:       lipgloss.Color("#89dceb"), // Sky
		Check:      lipgloss.Color("#f5c2e7"), // Pink
		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text
	},
	ThemeNord: {
		Name:       ThemeNord,
		Primary:    lipgloss.Color("#5e81ac"), // Nord10
		Secondary:  lipgloss.Color("#a3be8c"), // Nord14
		Subtle:     lipgloss.Color("#4c566a"), // Nord3
		Warning:    lipgloss.Color("#ebcb8b"), // Nord13
		Covered:    lipgloss.Color("#a3be8c"), // Nord14
		Uncovered:  lipgloss.Color("#bf616a"), // Nord11
		Rule:       lipgloss.Color("#88c0d0"), // Nord8
		Check:      lipgloss.Color("#b48ead"), // Nord15
		Background: lipgloss.Color("#2e3440"), // Nord0
		Foreground: lipgloss.Color("#eceff4"), // Nord6
	},
}

var themeOrder = []ThemeName{ThemeDefault, ThemeDracula, ThemeCatppuccin, ThemeNord}

// CurrentTheme is the active theme
var CurrentTheme = Themes[ThemeDefault]

// SetTheme changes the active theme
func SetTheme(name ThemeName) {
	if theme, ok := Themes[name]; ok {
		CurrentTheme = theme
		updateStyles()
	}
}

// CycleTheme switches to the next theme
func CycleTheme() ThemeName {
	for i, name := range themeOrder {
		if name == CurrentTheme.Name {
			next := themeOrder[(i+1)%len(themeOrder)]
			SetTheme(next)
			return next
		}
	}
	SetTheme(ThemeDefault)
	return ThemeDefault
}

// updateStyles refreshes the global styles with current theme colors
func updateStyles() {
	PrimaryColor = CurrentTheme.Primary
	SecondaryColor = CurrentTheme.Secondary
	SubtleColor = CurrentTheme.Subtle
	WarningColor = CurrentTheme.Warning
	CoveredColor = CurrentTheme.Covered
	UncoveredColor = CurrentTheme.Uncovered
	RuleColor = CurrentTheme.Rule
	CheckColor = CurrentTheme.Check

	// Rebuild styles with new colors
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Foreground).
		Background(PrimaryColor).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor).
		Width(18)

	ValueStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Foreground)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(SubtleColor)

	RuleStyle = lipgloss.NewStyle().
		Foreground(RuleColor)

	CheckStyle = lipgloss.NewStyle().
		Foreground(CheckColor)

	ControlBadge = ControlBadge.Background(PrimaryColor)
	CoveredBadge = CoveredBadge.Background(CoveredColor)
	UncoveredBadge = UncoveredBadge.Background(UncoveredColor)

	SelectedItemStyle = lipgloss.NewStyle().
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(PrimaryColor).
		PaddingLeft(1)

	StatHighlight = StatHighlight.Foreground(PrimaryColor)

	DescriptionStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Foreground).
		Width(80)
}
