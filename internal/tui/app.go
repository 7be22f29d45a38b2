// Package tui is the interactive coverage browser.
package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
	"github.com/ethanolivertroy/compdef-insights/internal/families"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// ViewState represents the current view
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewChartsMenu
	ViewSeriesChart
	ViewFamilies
	ViewExportMenu
	ViewExportConfirm
)

// SortMode represents the current sort order
type SortMode int

const (
	SortByCatalog SortMode = iota
	SortByID
	SortByComponents
	SortByRules
)

func (s SortMode) String() string {
	switch s {
	case SortByCatalog:
		return "Catalog Order"
	case SortByID:
		return "Control ID"
	case SortByComponents:
		return "Components"
	case SortByRules:
		return "Rules"
	}
	return ""
}

// FilterMode represents special filters
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterUncovered
	FilterCovered
	FilterFamily
)

// Model is the main application model
type Model struct {
	list             list.Model
	result           *analysis.Result
	opts             analysis.Options
	outputDir        string
	chart            render.Options
	allControls      []model.ControlItem
	filteredControls []list.Item
	spinner          spinner.Model
	loading          bool
	err              error
	width            int
	height           int
	view             ViewState
	selectedControl  *model.ControlItem
	keys             KeyMap
	help             help.Model
	showHelp         bool
	viewport         viewport.Model
	viewportReady    bool
	sortMode         SortMode
	filterMode       FilterMode
	stats            Stats
	statusMsg        string
	// Family chart state
	familyList          []families.Coverage
	selectedFamilyIndex int
	selectedFamily      string
	// Charts menu state
	chartOptions       []ChartOption
	selectedChartIndex int
	seriesIndex        int
	showDetail         bool
	// Export menu state
	exportOptions       []ExportOption
	selectedExportIndex int
	pendingExport       *PendingExport
}

// Stats holds the headline numbers of the loaded definition
type Stats struct {
	Total      int
	Covered    int
	Uncovered  int
	Percentage coverage.Percentage
	Anomalies  int
}

// Messages
type ResultLoadedMsg struct {
	Result *analysis.Result
}

type ErrorMsg struct {
	Err error
}

type StatusMsg struct {
	Msg string
}

// OpenAgentMsg asks the host to focus the agent panel.
type OpenAgentMsg struct{}

// NewModel creates a new application model. Nothing is loaded until Init.
func NewModel(opts analysis.Options, outputDir string, chart render.Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	h := help.New()
	h.ShowAll = false

	if outputDir == "" {
		outputDir = "."
	}

	return Model{
		spinner:       s,
		loading:       true,
		opts:          opts,
		outputDir:     outputDir,
		chart:         chart,
		keys:          DefaultKeyMap(),
		help:          h,
		sortMode:      SortByCatalog,
		exportOptions: DefaultExportOptions(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadResult())
}

func (m Model) loadResult() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		res, err := analysis.Run(context.Background(), opts)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ResultLoadedMsg{Result: res}
	}
}

// Result returns the loaded analysis, or nil while loading.
func (m Model) Result() *analysis.Result {
	return m.result
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear status message on any key press
		m.statusMsg = ""

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.loading || m.err != nil {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}

		if msg.String() == "?" && m.list.FilterState() != list.Filtering {
			m.showHelp = !m.showHelp
			return m, nil
		}

		switch m.view {
		case ViewList:
			if m.list.FilterState() != list.Filtering {
				if next, cmd, handled := m.updateList(msg); handled {
					return next, cmd
				}
			}
		case ViewDetail:
			return m.updateDetail(msg)
		case ViewChartsMenu:
			return m.updateChartsMenu(msg)
		case ViewSeriesChart:
			return m.updateSeriesChart(msg)
		case ViewFamilies:
			return m.updateFamilies(msg)
		case ViewExportMenu:
			return m.updateExportMenu(msg)
		case ViewExportConfirm:
			return m.updateExportConfirm(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.loading && m.result != nil {
			headerHeight := 4 // Title + stats
			footerHeight := 2 // Help
			m.list.SetSize(msg.Width, msg.Height-headerHeight-footerHeight)
		}
		if m.viewportReady {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 6
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case ResultLoadedMsg:
		m.setResult(msg.Result)
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Msg
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	// Update list if in list view
	if m.view == ViewList && !m.loading && m.result != nil {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) setResult(res *analysis.Result) {
	m.loading = false
	m.result = res
	m.allControls = ControlItems(res)
	m.familyList = families.Breakdown(res.Index.IDs(), res.Graph.HasRules)
	m.chartOptions = ChartOptions(res.Series)
	m.calculateStats()
	m.applySortAndFilter()

	m.list = list.New(m.filteredControls, NewControlDelegate(), m.width, max(m.height-6, 0))
	m.list.Title = "Catalog Controls"
	if res.Meta.Name != "" {
		m.list.Title = res.Meta.Name + " Controls"
	}
	m.list.SetShowStatusBar(true)
	m.list.SetFilteringEnabled(true)
	m.list.SetShowHelp(false) // Disable built-in help, we render our own
	m.list.Styles.Title = TitleStyle
}

// ControlItems lists every catalog control of res in document order.
func ControlItems(res *analysis.Result) []model.ControlItem {
	ids := res.Index.IDs()
	items := make([]model.ControlItem, 0, len(ids))
	for _, id := range ids {
		rules := res.Graph.ControlRules(id)
		checks := make(map[string]bool)
		for _, r := range rules {
			for _, c := range res.Graph.RuleChecks(r) {
				checks[c] = true
			}
		}
		items = append(items, model.ControlItem{
			ID:         id,
			Name:       res.Index.Title(id),
			Family:     families.Title(id),
			Group:      res.Index.Parent(id),
			Covered:    res.Graph.HasRules(id),
			Rules:      len(rules),
			Checks:     len(checks),
			Components: len(res.Aggregator.ControlComponents(id)),
		})
	}
	return items
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "enter":
		if item, ok := m.list.SelectedItem().(model.ControlItem); ok {
			m.selectedControl = &item
			m.view = ViewDetail
			m.viewport = viewport.New(m.width-4, m.height-6)
			m.viewport.SetContent(m.renderDetailContent())
			m.viewportReady = true
			return m, func() tea.Msg { return model.ControlSelectedMsg{Control: &item} }, true
		}
	case "s":
		m.sortMode = (m.sortMode + 1) % 4
		m.refreshList()
		m.statusMsg = fmt.Sprintf("Sorted by: %s", m.sortMode.String())
		return m, nil, true
	case "u":
		m.toggleFilter(FilterUncovered, "Showing uncovered controls only")
		return m, nil, true
	case "v":
		m.toggleFilter(FilterCovered, "Showing covered controls only")
		return m, nil, true
	case "f":
		m.selectedFamilyIndex = 0
		m.view = ViewFamilies
		return m, nil, true
	case "c":
		if item, ok := m.list.SelectedItem().(model.ControlItem); ok {
			copyToClipboard(item.ID)
			m.statusMsg = fmt.Sprintf("Copied: %s", item.ID)
			return m, nil, true
		}
	case "a":
		return m, func() tea.Msg { return OpenAgentMsg{} }, true
	case "T":
		name := CycleTheme()
		m.list.SetDelegate(NewControlDelegate())
		m.list.Styles.Title = TitleStyle
		m.statusMsg = fmt.Sprintf("Theme: %s", name)
		return m, nil, true
	case "g":
		m.selectedChartIndex = 0
		m.view = ViewChartsMenu
		return m, nil, true
	case "G", "end", "b":
		// Jump to end of list (vim style)
		if len(m.list.Items()) > 0 {
			m.list.Select(len(m.list.Items()) - 1)
		}
		return m, nil, true
	case "home", "t":
		m.list.Select(0)
		return m, nil, true
	case "x":
		m.selectedExportIndex = 0
		m.view = ViewExportMenu
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) toggleFilter(mode FilterMode, status string) {
	if m.filterMode == mode {
		m.filterMode = FilterNone
		m.selectedFamily = ""
		m.statusMsg = "Filter cleared"
	} else {
		m.filterMode = mode
		m.statusMsg = status
	}
	m.refreshList()
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "backspace":
		m.view = ViewList
		m.selectedControl = nil
		return m, nil
	case "c":
		if m.selectedControl != nil {
			copyToClipboard(m.selectedControl.ID)
			m.statusMsg = fmt.Sprintf("Copied: %s", m.selectedControl.ID)
		}
		return m, nil
	}
	if m.viewportReady {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateChartsMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.chartOptions) == 0 {
		m.view = ViewList
		return m, nil
	}
	switch msg.String() {
	case "q", "esc", "g", "backspace":
		m.view = ViewList
	case "j", "down":
		m.selectedChartIndex = (m.selectedChartIndex + 1) % len(m.chartOptions)
	case "k", "up":
		m.selectedChartIndex = (m.selectedChartIndex - 1 + len(m.chartOptions)) % len(m.chartOptions)
	case "enter":
		selected := m.chartOptions[m.selectedChartIndex]
		if selected.View == ViewSeriesChart {
			m.seriesIndex = m.selectedChartIndex
			m.showDetail = false
		} else {
			m.selectedFamilyIndex = 0
		}
		m.view = selected.View
	}
	return m, nil
}

func (m Model) updateSeriesChart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.result.Series)
	switch msg.String() {
	case "q", "esc", "g", "backspace":
		m.view = ViewChartsMenu
	case "l", "right", "tab":
		if n > 0 {
			m.seriesIndex = (m.seriesIndex + 1) % n
			m.showDetail = false
		}
	case "h", "left", "shift+tab":
		if n > 0 {
			m.seriesIndex = (m.seriesIndex - 1 + n) % n
			m.showDetail = false
		}
	case "d":
		m.showDetail = !m.showDetail
	}
	return m, nil
}

func (m Model) updateFamilies(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "backspace":
		m.view = ViewList
	case "g":
		// Clear family filter if active and go to charts menu
		if m.filterMode == FilterFamily {
			m.filterMode = FilterNone
			m.selectedFamily = ""
			m.refreshList()
		}
		m.view = ViewChartsMenu
	case "j", "down":
		if len(m.familyList) > 0 {
			m.selectedFamilyIndex = (m.selectedFamilyIndex + 1) % len(m.familyList)
		}
	case "k", "up":
		if len(m.familyList) > 0 {
			m.selectedFamilyIndex = (m.selectedFamilyIndex - 1 + len(m.familyList)) % len(m.familyList)
		}
	case "enter":
		if m.selectedFamilyIndex < len(m.familyList) {
			f := m.familyList[m.selectedFamilyIndex]
			m.selectedFamily = f.Family
			m.filterMode = FilterFamily
			m.refreshList()
			m.statusMsg = fmt.Sprintf("Filtered: %s (%d controls, %s covered)", f.Title, f.Total, f.Percentage)
			m.view = ViewList
		}
	}
	return m, nil
}

func (m Model) updateExportMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "x", "backspace":
		m.view = ViewList
	case "j", "down":
		m.selectedExportIndex = (m.selectedExportIndex + 1) % len(m.exportOptions)
	case "k", "up":
		m.selectedExportIndex = (m.selectedExportIndex - 1 + len(m.exportOptions)) % len(m.exportOptions)
	case "enter":
		selected := m.exportOptions[m.selectedExportIndex]
		pending := &PendingExport{Option: selected}
		if selected.Scope == ExportCurrentView {
			// Visible items respect the search filter
			for _, item := range m.list.VisibleItems() {
				if ci, ok := item.(model.ControlItem); ok {
					pending.Controls = append(pending.Controls, ci)
				}
			}
			pending.Count = len(pending.Controls)
		} else {
			pending.Count = len(m.result.Series)
		}
		m.pendingExport = pending
		m.view = ViewExportConfirm
	}
	return m, nil
}

func (m Model) updateExportConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.statusMsg = m.runExport()
		m.pendingExport = nil
		m.view = ViewList
	case "n", "N", "esc", "q":
		m.pendingExport = nil
		m.view = ViewExportMenu
	}
	return m, nil
}

func (m Model) runExport() string {
	p := m.pendingExport
	if p == nil {
		return ""
	}
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	if p.Option.Scope == ExportCurrentView {
		result := ExportControls(p.Controls, p.Option.Format, m.outputDir)
		if result.Err != nil {
			return fmt.Sprintf("Export failed: %v", result.Err)
		}
		return fmt.Sprintf("Exported %d controls to %s", result.Count, result.FilePath)
	}
	results, dir, err := ExportReport(m.result, p.Option.Format, m.outputDir, m.chart)
	if err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	return fmt.Sprintf("Wrote %d files to %s", len(results), dir)
}

func (m *Model) calculateStats() {
	c := m.result.Report.Coverage
	m.stats = Stats{
		Total:      c.Total,
		Covered:    c.Covered,
		Uncovered:  c.Uncovered,
		Percentage: coverage.Percent(c.Covered, c.Total),
		Anomalies:  len(m.result.Report.Anomalies),
	}
}

func (m *Model) refreshList() {
	m.applySortAndFilter()
	m.list.SetItems(m.filteredControls)
}

func (m *Model) applySortAndFilter() {
	filtered := make([]model.ControlItem, 0, len(m.allControls))
	for _, c := range m.allControls {
		switch m.filterMode {
		case FilterUncovered:
			if c.Covered {
				continue
			}
		case FilterCovered:
			if !c.Covered {
				continue
			}
		case FilterFamily:
			if m.selectedFamily != "" && !strings.EqualFold(catalog.Family(c.ID), m.selectedFamily) {
				continue
			}
		}
		filtered = append(filtered, c)
	}

	// allControls is in catalog order already
	switch m.sortMode {
	case SortByID:
		sort.SliceStable(filtered, func(i, j int) bool {
			return catalog.CompareControlIDs(filtered[i].ID, filtered[j].ID) < 0
		})
	case SortByComponents:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Components > filtered[j].Components
		})
	case SortByRules:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Rules > filtered[j].Rules
		})
	}

	m.filteredControls = make([]list.Item, len(filtered))
	for i, c := range filtered {
		m.filteredControls[i] = c
	}
}

// View renders the view
func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading component definition...\n", m.spinner.View())
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.err)
	}

	switch m.view {
	case ViewDetail:
		if m.selectedControl != nil {
			return m.renderDetailView()
		}
	case ViewChartsMenu:
		return m.renderChartsMenu()
	case ViewSeriesChart:
		if m.seriesIndex < len(m.result.Series) {
			return RenderSeriesChart(m.result.Series[m.seriesIndex], m.chartWidth(), m.chartHeight(), m.showDetail)
		}
	case ViewFamilies:
		return RenderFamilyChart(m.familyList, m.chartWidth(), m.chartHeight(), m.selectedFamilyIndex)
	case ViewExportMenu:
		return m.renderExportMenu()
	case ViewExportConfirm:
		return m.renderExportConfirm()
	}

	return m.renderListView()
}

func (m Model) chartWidth() int {
	if m.width > 0 {
		return m.width
	}
	return m.chart.Width
}

func (m Model) chartHeight() int {
	if m.height > 0 {
		return m.height
	}
	return m.chart.Height
}

func menuTitle(text string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(PrimaryColor).
		Padding(0, 1).
		Render(text)
}

func menuLine(text string, selected bool) string {
	if selected {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1).
			Render("> " + text)
	}
	return "  " + text
}

func (m Model) renderExportMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitle("Export"))
	b.WriteString("\n\n")

	// Visible items respect the search filter
	currentCount := len(m.list.VisibleItems())
	infoStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(infoStyle.Render(fmt.Sprintf("Current view: %d controls | Full report: %d charts | Output: %s",
		currentCount, len(m.result.Series), m.outputDir)))
	b.WriteString("\n\n")

	for i, opt := range m.exportOptions {
		b.WriteString(menuLine(opt.Name, i == m.selectedExportIndex))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footerStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(footerStyle.Render("j/k navigate • enter export • x/esc back"))

	return b.String()
}

func (m Model) renderExportConfirm() string {
	p := m.pendingExport
	if p == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitle("Confirm Export"))
	b.WriteString("\n\n")

	var what string
	if p.Option.Scope == ExportCurrentView {
		what = fmt.Sprintf("%d control", p.Count)
		if p.Count != 1 {
			what += "s"
		}
	} else {
		what = fmt.Sprintf("%d charts with anomalies and summary", p.Count)
	}
	b.WriteString(fmt.Sprintf("Export %s as %s to %s?\n\n", what, p.Option.Format, m.outputDir))

	footerStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(footerStyle.Render("y/enter confirm • n/esc cancel"))

	return b.String()
}

func (m Model) renderChartsMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitle("Charts"))
	b.WriteString("\n\n")

	descStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	for i, opt := range m.chartOptions {
		b.WriteString(menuLine(opt.Name, i == m.selectedChartIndex))
		b.WriteString("\n")
		if opt.Description != "" {
			b.WriteString(descStyle.Render(fmt.Sprintf("    %s", opt.Description)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(descStyle.Render("j/k navigate • enter select • g/esc back"))

	return b.String()
}

func (m Model) renderListView() string {
	var b strings.Builder

	stats := fmt.Sprintf("%s %d controls | %s %d covered | %s %d uncovered | %s %s",
		StatHighlight.Render("■"),
		m.stats.Total,
		lipgloss.NewStyle().Foreground(CoveredColor).Render("●"),
		m.stats.Covered,
		lipgloss.NewStyle().Foreground(UncoveredColor).Render("○"),
		m.stats.Uncovered,
		CoverageBar(m.stats.Percentage.Value, 12),
		PercentBadge(m.stats.Percentage),
	)
	if m.stats.Anomalies > 0 {
		stats += " | " + lipgloss.NewStyle().Foreground(WarningColor).Render(fmt.Sprintf("%d anomalies", m.stats.Anomalies))
	}
	b.WriteString(StatsStyle.Render(stats))
	b.WriteString("\n")

	indicators := []string{fmt.Sprintf("Sort: %s", m.sortMode.String())}
	switch m.filterMode {
	case FilterUncovered:
		indicators = append(indicators, lipgloss.NewStyle().Foreground(UncoveredColor).Render("Filter: Uncovered"))
	case FilterCovered:
		indicators = append(indicators, lipgloss.NewStyle().Foreground(CoveredColor).Render("Filter: Covered"))
	case FilterFamily:
		label := strings.ToUpper(m.selectedFamily)
		if f, ok := families.Find(m.familyList, m.selectedFamily); ok {
			label = f.Title
		}
		indicators = append(indicators, lipgloss.NewStyle().Foreground(PrimaryColor).Render("Filter: "+label))
	}
	b.WriteString(SubtitleStyle.Render(strings.Join(indicators, " | ")))
	b.WriteString("\n")

	b.WriteString(m.list.View())

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(m.statusMsg))
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.View(m.keys))
	} else {
		helpText := "/ filter • s sort • u uncovered • v covered • f families • g charts • x export • a agent • T theme • q quit"
		b.WriteString(SubtitleStyle.Render(helpText))
	}

	return b.String()
}

func (m Model) renderDetailView() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(ControlBadge.Render(strings.ToUpper(m.selectedControl.ID)))
	b.WriteString("  ")
	b.WriteString(CoverageBadgeText(m.selectedControl.Covered))
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	footer := "↑/↓ scroll | c copy | q/esc back"
	if m.statusMsg != "" {
		footer = m.statusMsg + " | " + footer
	}
	b.WriteString(SubtitleStyle.Render(footer))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderDetailContent() string {
	if m.selectedControl == nil || m.result == nil {
		return "No control selected"
	}
	d := m.result.Control(m.selectedControl.ID)
	var b strings.Builder

	title := d.Title
	if title == "" {
		title = strings.ToUpper(d.ID)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Foreground).Render(title))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		value string
	}{
		{"Control", strings.ToUpper(d.ID)},
		{"Family", families.Title(d.ID)},
		{"Group", d.Group},
		{"Status", m.selectedControl.CoverageStatus()},
		{"Rules", fmt.Sprint(len(d.Rules))},
		{"Components", fmt.Sprint(len(d.Components))},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		b.WriteString(LabelStyle.Render(f.label + ":"))
		switch {
		case f.label == "Status" && d.Covered:
			b.WriteString(lipgloss.NewStyle().Foreground(CoveredColor).Bold(true).Render(f.value))
		case f.label == "Status":
			b.WriteString(lipgloss.NewStyle().Foreground(UncoveredColor).Bold(true).Render(f.value))
		default:
			b.WriteString(ValueStyle.Render(f.value))
		}
		b.WriteString("\n")
	}

	if len(d.Components) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Render("Components"))
		b.WriteString("\n")
		for _, c := range d.Components {
			b.WriteString("  • " + ValueStyle.Render(c) + "\n")
		}
	}

	if len(d.Rules) == 0 {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("No rule in the component definition addresses this control."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Render("Rules"))
	b.WriteString("\n")
	for _, r := range d.Rules {
		b.WriteString("\n")
		b.WriteString(RuleStyle.Bold(true).Render(r.ID))
		b.WriteString("\n")
		if r.Description != "" {
			b.WriteString(DescriptionStyle.Render("  " + r.Description))
			b.WriteString("\n")
		}
		b.WriteString(LabelStyle.Render("  Checks:"))
		if len(r.Checks) == 0 {
			b.WriteString(SubtitleStyle.Render("none"))
		} else {
			b.WriteString(CheckStyle.Render(strings.Join(r.Checks, ", ")))
		}
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("  Implementation:"))
		if r.Implementation {
			b.WriteString(ValueStyle.Render("recorded"))
		} else {
			b.WriteString(SubtitleStyle.Render("missing"))
		}
		b.WriteString("\n")
		if len(r.Components) > 0 {
			b.WriteString(LabelStyle.Render("  Components:"))
			b.WriteString(ValueStyle.Render(strings.Join(r.Components, ", ")))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func copyToClipboard(text string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		cmd = exec.Command("xclip", "-selection", "clipboard")
	case "windows":
		cmd = exec.Command("clip")
	default:
		return
	}
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}
