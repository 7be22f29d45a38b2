package render

import (
	"strings"
	"testing"

	"github.com/ethanolivertroy/compdef-insights/internal/insights"
)

func coverageSeries() insights.Series {
	return insights.Series{
		Artifact: "controls-coverage",
		Title:    "NIST Controls Coverage",
		Kind:     insights.KindPie,
		Left:     "version: 1.0",
		Right:    "last modified date: 2024-01-01",
		Points: []insights.Point{
			{Label: "Covered", Value: 3, Class: insights.ClassGood},
			{Label: "Not Covered", Value: 1, Class: insights.ClassOther},
		},
	}
}

func TestRenderSeriesPie(t *testing.T) {
	out := Plain(RenderSeries(coverageSeries(), DefaultOptions))

	for _, want := range []string{
		"NIST Controls Coverage",
		"version: 1.0",
		"last modified date: 2024-01-01",
		"Covered: 3 (75%)",
		"Not Covered: 1 (25%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSeries() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSeriesPercentages(t *testing.T) {
	s := insights.Series{
		Title: "Component Check Coverage",
		Kind:  insights.KindBar,
		Unit:  insights.UnitPercent,
		Points: []insights.Point{
			{Label: "api", Value: 50, Class: insights.ClassWarn},
			{Label: "db", Value: 100, Class: insights.ClassGood},
			{Label: "empty", NotApplicable: true, Class: insights.ClassOther},
		},
	}
	out := Plain(RenderSeries(s, Options{Width: 80, Height: 24, Selected: -1, Footer: "g/esc back"}))

	for _, want := range []string{"api: 50.0%", "db: 100.0%", "empty: N/A", "g/esc back"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSeries() missing %q", want)
		}
	}
}

func TestRenderSeriesEmpty(t *testing.T) {
	out := RenderSeries(insights.Series{Title: "Empty"}, DefaultOptions)
	if out != "Empty: no data available" {
		t.Errorf("RenderSeries() = %q", out)
	}
}

func TestRenderSeriesAllNotApplicable(t *testing.T) {
	s := insights.Series{
		Title: "Rule Implementation Status",
		Kind:  insights.KindPie,
		Points: []insights.Point{
			{Label: "Implementation Exists", NotApplicable: true},
			{Label: "Implementation Missing", NotApplicable: true},
		},
	}
	out := Plain(RenderSeries(s, DefaultOptions))
	if !strings.Contains(out, "Implementation Exists: N/A") {
		t.Errorf("RenderSeries() = %q, want N/A legend", out)
	}
}

func TestRenderDetail(t *testing.T) {
	s := insights.Series{
		Title:  "Controls by Number of Components",
		YLabel: "Controls: 2 covered of 4 in catalog",
		Detail: []insights.Point{
			{Label: "ac-1", Value: 1},
			{Label: "ac-2", Value: 2},
		},
	}
	out := Plain(RenderDetail(s, Options{Width: 60, Height: 20, Selected: 1}))

	lines := strings.Split(out, "\n")
	var ac1, ac2 string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "ac-1"):
			ac1 = l
		case strings.HasPrefix(l, "ac-2"):
			ac2 = l
		}
	}
	if ac1 == "" || ac2 == "" {
		t.Fatalf("RenderDetail() missing rows:\n%s", out)
	}
	if strings.Count(ac2, "█") <= strings.Count(ac1, "█") {
		t.Errorf("ac-2 bar should be longer than ac-1 bar:\n%s\n%s", ac1, ac2)
	}
	if !strings.Contains(out, "2 covered of 4") {
		t.Errorf("RenderDetail() missing y label")
	}
}

func TestRenderDetailEmpty(t *testing.T) {
	out := RenderDetail(insights.Series{Title: "X"}, DefaultOptions)
	if out != "X: no detail available" {
		t.Errorf("RenderDetail() = %q", out)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is t."},
		{"", 5, ""},
		{"ab", 1, "ab"},
		{"ÄÖÜäöü", 4, "ÄÖÜ."},
		{"Überwachung", 11, "Überwachung"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestClassColor(t *testing.T) {
	if ClassColor(insights.ClassGood) != GoodColor {
		t.Error("ClassColor(good) should be GoodColor")
	}
	if ClassColor(insights.ClassWarn) != WarnColor {
		t.Error("ClassColor(warn) should be WarnColor")
	}
	if ClassColor("") != BarColor {
		t.Error("ClassColor(\"\") should be BarColor")
	}
}
