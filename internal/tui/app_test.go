package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
	"github.com/ethanolivertroy/compdef-insights/internal/oscal"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

func testResult(t *testing.T) *analysis.Result {
	t.Helper()
	cat := model.Catalog{
		Source: "test",
		Groups: []model.Group{
			{ID: "ac", Title: "Access Control", Controls: []model.Control{
				{ID: "ac-1", Title: "Policy and Procedures"},
				{ID: "ac-2", Title: "Account Management"},
			}},
			{ID: "au", Title: "Audit", Controls: []model.Control{
				{ID: "au-1", Title: "Policy and Procedures"},
			}},
		},
	}
	def := model.Definition{
		Title:   "Component definition for Acme",
		Version: "1.0",
		Components: []model.Component{
			{
				ID: "c1", Title: "Web", Type: "Service",
				RuleSets: []model.RuleSet{{ID: "rs0", RuleID: "r1", Description: "Enforce MFA"}, {ID: "rs1", RuleID: "r2"}},
				Implementations: []model.ControlImplementation{{
					Source: "test",
					Requirements: []model.Requirement{
						{ControlID: "ac-1", Rules: []string{"r1"}},
						{ControlID: "ac-2", Rules: []string{"r1", "r2"}},
					},
				}},
			},
			{
				ID: "v", Title: "Checker", Type: model.ValidationType,
				RuleSets: []model.RuleSet{{ID: "rs0", RuleID: "r1", CheckID: "k1", Implementation: "fact"}},
			},
		},
	}
	ws := &oscal.Workspace{Path: "acme.json", Definition: def, Catalogs: []model.Catalog{cat}}
	res, err := analysis.Analyze(context.Background(), ws, analysis.Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return res
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(analysis.Options{}, t.TempDir(), render.DefaultOptions)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(ResultLoadedMsg{Result: testResult(t)})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	var next tea.Model = m
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ = next.Update(msg)
	}
	return next.(Model)
}

func visibleIDs(m Model) []string {
	var ids []string
	for _, item := range m.list.Items() {
		ids = append(ids, item.(model.ControlItem).ID)
	}
	return ids
}

func TestControlItems(t *testing.T) {
	items := ControlItems(testResult(t))
	if len(items) != 3 {
		t.Fatalf("ControlItems() returned %d items, want 3", len(items))
	}

	ac2 := items[1]
	if ac2.ID != "ac-2" || !ac2.Covered {
		t.Errorf("items[1] = %+v, want covered ac-2", ac2)
	}
	if ac2.Rules != 2 || ac2.Checks != 1 || ac2.Components != 1 {
		t.Errorf("ac-2 counts = %d rules, %d checks, %d components; want 2, 1, 1", ac2.Rules, ac2.Checks, ac2.Components)
	}
	if ac2.Family != "Access Control" {
		t.Errorf("ac-2 family = %q, want Access Control", ac2.Family)
	}
	if items[2].Covered {
		t.Error("au-1 should not be covered")
	}
}

func TestViewWhileLoading(t *testing.T) {
	m := NewModel(analysis.Options{}, "", render.DefaultOptions)
	if !strings.Contains(m.View(), "Loading") {
		t.Error("View() while loading should mention loading")
	}
	if m.outputDir != "." {
		t.Errorf("outputDir = %q, want .", m.outputDir)
	}
}

func TestViewError(t *testing.T) {
	m := NewModel(analysis.Options{}, "", render.DefaultOptions)
	next, _ := m.Update(ErrorMsg{Err: errors.New("boom")})
	if !strings.Contains(next.View(), "boom") {
		t.Error("View() should show the load error")
	}
}

func TestResultLoaded(t *testing.T) {
	m := loadedModel(t)

	if m.loading {
		t.Error("loading should be false after ResultLoadedMsg")
	}
	if m.stats.Total != 3 || m.stats.Covered != 2 || m.stats.Uncovered != 1 {
		t.Errorf("stats = %+v, want 3 total, 2 covered, 1 uncovered", m.stats)
	}
	if got := len(m.list.Items()); got != 3 {
		t.Errorf("list has %d items, want 3", got)
	}
	if got, want := len(m.chartOptions), len(m.result.Series)+1; got != want {
		t.Errorf("chartOptions has %d entries, want %d", got, want)
	}
	if m.list.Title != "Acme Controls" {
		t.Errorf("list title = %q, want %q", m.list.Title, "Acme Controls")
	}
	if m.Result() == nil {
		t.Error("Result() = nil after load")
	}
}

func TestCoverageFilters(t *testing.T) {
	m := loadedModel(t)

	m = press(t, m, "u")
	if ids := visibleIDs(m); len(ids) != 1 || ids[0] != "au-1" {
		t.Errorf("uncovered filter = %v, want [au-1]", ids)
	}

	m = press(t, m, "v")
	if ids := visibleIDs(m); len(ids) != 2 {
		t.Errorf("covered filter = %v, want 2 controls", ids)
	}

	m = press(t, m, "v")
	if m.filterMode != FilterNone {
		t.Errorf("filterMode = %v, want FilterNone after toggling off", m.filterMode)
	}
	if len(visibleIDs(m)) != 3 {
		t.Error("clearing the filter should restore every control")
	}
}

func TestSortModes(t *testing.T) {
	m := loadedModel(t)

	m = press(t, m, "s", "s", "s")
	if m.sortMode != SortByRules {
		t.Fatalf("sortMode = %v, want SortByRules", m.sortMode)
	}
	if ids := visibleIDs(m); ids[0] != "ac-2" {
		t.Errorf("first control sorted by rules = %s, want ac-2", ids[0])
	}

	m = press(t, m, "s")
	if m.sortMode != SortByCatalog {
		t.Errorf("sortMode = %v, want SortByCatalog after wrapping", m.sortMode)
	}
}

func TestSortModeString(t *testing.T) {
	tests := []struct {
		mode SortMode
		want string
	}{
		{SortByCatalog, "Catalog Order"},
		{SortByID, "Control ID"},
		{SortByComponents, "Components"},
		{SortByRules, "Rules"},
		{SortMode(99), ""},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("SortMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestFamilyFilter(t *testing.T) {
	m := loadedModel(t)

	m = press(t, m, "f")
	if m.view != ViewFamilies {
		t.Fatalf("view = %v, want ViewFamilies", m.view)
	}
	if !strings.Contains(m.View(), "Coverage by Control Family") {
		t.Error("families view missing title")
	}

	m = press(t, m, "down", "enter")
	if m.view != ViewList || m.filterMode != FilterFamily {
		t.Fatalf("view = %v filter = %v, want list filtered by family", m.view, m.filterMode)
	}
	if ids := visibleIDs(m); len(ids) != 1 || ids[0] != "au-1" {
		t.Errorf("family filter = %v, want [au-1]", ids)
	}
	if !strings.Contains(m.View(), "Audit and Accountability") {
		t.Error("list view should name the family filter")
	}
}

func TestDetailView(t *testing.T) {
	m := loadedModel(t)

	m = press(t, m, "down", "enter")
	if m.view != ViewDetail || m.selectedControl == nil {
		t.Fatalf("view = %v, want ViewDetail with a selection", m.view)
	}
	if m.selectedControl.ID != "ac-2" {
		t.Errorf("selected = %s, want ac-2", m.selectedControl.ID)
	}

	content := m.renderDetailContent()
	for _, want := range []string{"Account Management", "r1", "r2", "k1", "Web", "Enforce MFA"} {
		if !strings.Contains(content, want) {
			t.Errorf("detail content missing %q", want)
		}
	}

	m = press(t, m, "esc")
	if m.view != ViewList || m.selectedControl != nil {
		t.Error("esc should return to the list and clear the selection")
	}
}

func TestDetailSendsSelection(t *testing.T) {
	m := loadedModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a command")
	}
	msg, ok := cmd().(model.ControlSelectedMsg)
	if !ok {
		t.Fatalf("command produced %T, want model.ControlSelectedMsg", cmd())
	}
	if msg.Control == nil || msg.Control.ID != "ac-1" {
		t.Errorf("selected control = %+v, want ac-1", msg.Control)
	}
}

func TestDetailUncovered(t *testing.T) {
	m := loadedModel(t)
	m = press(t, m, "u", "enter")
	if !strings.Contains(m.renderDetailContent(), "No rule in the component definition") {
		t.Error("uncovered detail should say no rule addresses the control")
	}
}

func TestRenderDetailContentNilControl(t *testing.T) {
	m := loadedModel(t)
	m.selectedControl = nil
	if got := m.renderDetailContent(); got != "No control selected" {
		t.Errorf("renderDetailContent() = %q, want %q", got, "No control selected")
	}
}

func TestOpenAgentKey(t *testing.T) {
	m := loadedModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatal("a should return a command")
	}
	if _, ok := cmd().(OpenAgentMsg); !ok {
		t.Error("a should produce OpenAgentMsg")
	}
}

func TestSeriesChartNavigation(t *testing.T) {
	m := loadedModel(t)
	n := len(m.result.Series)

	m = press(t, m, "g", "enter")
	if m.view != ViewSeriesChart || m.seriesIndex != 0 {
		t.Fatalf("view = %v index = %d, want first series chart", m.view, m.seriesIndex)
	}
	if !strings.Contains(m.View(), m.result.Series[0].Title) {
		t.Error("chart view should show the series title")
	}

	m = press(t, m, "right")
	if m.seriesIndex != 1 {
		t.Errorf("seriesIndex = %d, want 1", m.seriesIndex)
	}
	m = press(t, m, "left", "left")
	if m.seriesIndex != n-1 {
		t.Errorf("seriesIndex = %d, want %d after wrapping", m.seriesIndex, n-1)
	}

	m = press(t, m, "d")
	if !m.showDetail {
		t.Error("d should toggle the detail view")
	}

	m = press(t, m, "g")
	if m.view != ViewChartsMenu {
		t.Errorf("view = %v, want ViewChartsMenu", m.view)
	}
}

func TestExportCurrentView(t *testing.T) {
	m := loadedModel(t)

	m = press(t, m, "u", "x", "enter")
	if m.view != ViewExportConfirm || m.pendingExport == nil {
		t.Fatalf("view = %v, want ViewExportConfirm", m.view)
	}
	if m.pendingExport.Count != 1 {
		t.Errorf("pending count = %d, want 1", m.pendingExport.Count)
	}
	if !strings.Contains(m.renderExportConfirm(), "1 control ") {
		t.Error("confirm view should mention 1 control")
	}

	m = press(t, m, "y")
	if m.view != ViewList || m.pendingExport != nil {
		t.Error("confirming should return to the list")
	}
	if !strings.Contains(m.statusMsg, "Exported 1 controls") {
		t.Errorf("statusMsg = %q, want export confirmation", m.statusMsg)
	}

	files, _ := filepath.Glob(filepath.Join(m.outputDir, "controls_*.json"))
	if len(files) != 1 {
		t.Errorf("found %d exported files, want 1", len(files))
	}
}

func TestExportCancel(t *testing.T) {
	m := loadedModel(t)
	m = press(t, m, "x", "enter", "n")
	if m.view != ViewExportMenu || m.pendingExport != nil {
		t.Errorf("view = %v, want ViewExportMenu after cancel", m.view)
	}
}

func TestExportFullReport(t *testing.T) {
	m := loadedModel(t)
	m = press(t, m, "x", "down", "down", "down", "enter")
	if m.pendingExport == nil || m.pendingExport.Option.Scope != ExportFullReport {
		t.Fatal("fourth option should be a full report export")
	}
	if !strings.Contains(m.renderExportConfirm(), "charts with anomalies") {
		t.Error("confirm view should describe the full report")
	}

	m = press(t, m, "enter")
	if !strings.Contains(m.statusMsg, "Wrote") {
		t.Errorf("statusMsg = %q, want report confirmation", m.statusMsg)
	}
	dirs, _ := filepath.Glob(filepath.Join(m.outputDir, "report_*"))
	if len(dirs) != 1 {
		t.Errorf("found %d report directories, want 1", len(dirs))
	}
}

func TestThemeKey(t *testing.T) {
	m := loadedModel(t)
	m = press(t, m, "T")
	if CurrentTheme.Name != ThemeDracula {
		t.Errorf("CurrentTheme = %v, want dracula", CurrentTheme.Name)
	}
	if !strings.Contains(m.statusMsg, "dracula") {
		t.Errorf("statusMsg = %q, want theme name", m.statusMsg)
	}
	SetTheme(ThemeDefault)
}
