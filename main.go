package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/ethanolivertroy/compdef-insights/cmd"
	"github.com/ethanolivertroy/compdef-insights/internal/agent"
	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/chat"
	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/llm"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
	"github.com/ethanolivertroy/compdef-insights/internal/tui"
)

// Layout constants
const (
	AgentPanelWidth   = 55  // Fixed width for agent sidebar
	CompactBreakpoint = 100 // Below this width, hide agent panel
	MouseThrottleMs   = 15
)

// Panel types for focus management
type PanelType int

const (
	PanelBrowser PanelType = iota
	PanelAgent
)

// Colors
var (
	primaryColor    = lipgloss.Color("#7D56F4")
	subtleColor     = lipgloss.Color("#626262")
	borderFocused   = lipgloss.Color("#7D56F4")
	borderUnfocused = lipgloss.Color("#3a3a3a")
)

// Mouse throttling
var lastMouseEvent time.Time

// AppModel lays out the control browser with the assistant sidebar.
type AppModel struct {
	tuiModel   tea.Model
	agentModel tea.Model

	llmConfig llm.Config
	outputDir string

	agentInitialized bool
	agentError       string
	focusedPanel     PanelType
	compact          bool // window too narrow for the sidebar
	agentVisible     bool // toggled with \
	pendingControl   *model.ControlItem

	width  int
	height int
}

func newAppModel(cfg *config.Config, opts analysis.Options) AppModel {
	return AppModel{
		tuiModel:     tui.NewModel(opts, cfg.OutputPath, cmd.ChartOptions(cfg)),
		llmConfig:    llm.ConfigFromEnv(),
		outputDir:    cfg.OutputPath,
		focusedPanel: PanelBrowser,
		agentVisible: true,
		width:        120,
		height:       30,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.tuiModel.Init()
}

// initAgent starts the assistant once the analysis result exists; its tools
// query that result.
func (m AppModel) initAgent(res *analysis.Result) tea.Cmd {
	cfg := m.llmConfig
	outputDir := m.outputDir
	return func() tea.Msg {
		ctx := context.Background()
		coverageAgent, err := agent.NewWithConfig(ctx, cfg, res, outputDir)
		if err != nil {
			return agentInitErrorMsg{err: err}
		}
		return agentInitMsg{agent: coverageAgent, ctx: ctx}
	}
}

type agentInitMsg struct {
	agent *agent.CoverageAgent
	ctx   context.Context
}

type agentInitErrorMsg struct {
	err error
}

func (m AppModel) agentFocused() bool {
	return m.focusedPanel == PanelAgent && m.agentModel != nil && !m.compact && m.agentVisible
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tui.ResultLoadedMsg:
		var cmd tea.Cmd
		m.tuiModel, cmd = m.tuiModel.Update(msg)
		cmds = append(cmds, cmd)
		if !m.agentInitialized && m.llmConfig.Validate() == nil {
			cmds = append(cmds, m.initAgent(msg.Result))
		}
		return m, tea.Batch(cmds...)

	case agentInitMsg:
		m.agentModel = chat.NewModel(msg.ctx, msg.agent)
		m.agentInitialized = true
		cmds = append(cmds, m.agentModel.Init())
		if m.width > 0 && !m.compact {
			var cmd tea.Cmd
			m.agentModel, cmd = m.agentModel.Update(tea.WindowSizeMsg{Width: AgentPanelWidth, Height: m.height})
			cmds = append(cmds, cmd)
		}
		// Selection made while the agent was starting.
		if m.pendingControl != nil {
			var cmd tea.Cmd
			m.agentModel, cmd = m.agentModel.Update(model.ControlSelectedMsg{Control: m.pendingControl})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case agentInitErrorMsg:
		m.agentError = msg.err.Error()
		log.WithError(msg.err).Warn("Coverage assistant unavailable")
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "\\":
			if m.compact {
				break
			}
			m.agentVisible = !m.agentVisible
			if !m.agentVisible {
				m.focusedPanel = PanelBrowser
			}
			return m, nil

		case "tab":
			if m.compact || !m.agentVisible {
				break
			}
			if m.focusedPanel == PanelBrowser {
				m.focusedPanel = PanelAgent
			} else {
				m.focusedPanel = PanelBrowser
			}
			return m, nil

		case "ctrl+k":
			return m.Update(tui.OpenAgentMsg{})
		}

		var cmd tea.Cmd
		if m.agentFocused() {
			m.agentModel, cmd = m.agentModel.Update(msg)
		} else {
			m.tuiModel, cmd = m.tuiModel.Update(msg)
		}
		return m, cmd

	case tea.MouseMsg:
		now := time.Now()
		if now.Sub(lastMouseEvent) < MouseThrottleMs*time.Millisecond {
			return m, nil
		}
		lastMouseEvent = now

		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !m.compact && m.agentVisible {
			if msg.X < m.width-AgentPanelWidth {
				m.focusedPanel = PanelBrowser
			} else {
				m.focusedPanel = PanelAgent
			}
		}

		var cmd tea.Cmd
		if m.agentFocused() {
			adjusted := msg
			adjusted.X = msg.X - (m.width - AgentPanelWidth)
			m.agentModel, cmd = m.agentModel.Update(adjusted)
		} else {
			m.tuiModel, cmd = m.tuiModel.Update(msg)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.compact = msg.Width < CompactBreakpoint

		browserWidth := msg.Width
		if !m.compact {
			browserWidth = m.width - AgentPanelWidth
		}
		var cmd tea.Cmd
		m.tuiModel, cmd = m.tuiModel.Update(tea.WindowSizeMsg{Width: browserWidth, Height: m.height})
		cmds = append(cmds, cmd)

		if !m.compact && m.agentModel != nil {
			m.agentModel, cmd = m.agentModel.Update(tea.WindowSizeMsg{Width: AgentPanelWidth, Height: m.height})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tui.OpenAgentMsg:
		if !m.compact {
			m.agentVisible = true
			m.focusedPanel = PanelAgent
		}
		return m, nil

	case model.ControlSelectedMsg:
		m.pendingControl = msg.Control
		if m.agentModel != nil {
			var cmd tea.Cmd
			m.agentModel, cmd = m.agentModel.Update(msg)
			return m, cmd
		}
		return m, nil

	case chat.AgentResponseMsg, chat.StreamChunkMsg, chat.ToolCallMsg, chat.StreamDoneMsg, chat.StreamErrorMsg:
		// Streaming events go to the chat whatever has focus.
		if m.agentModel != nil {
			var cmd tea.Cmd
			m.agentModel, cmd = m.agentModel.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Other messages go to the focused panel only, so spinner ticks don't
	// redraw both.
	var cmd tea.Cmd
	if m.agentFocused() {
		m.agentModel, cmd = m.agentModel.Update(msg)
		return m, cmd
	}
	m.tuiModel, cmd = m.tuiModel.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.compact || !m.agentVisible {
		return m.tuiModel.View()
	}

	browserWidth := m.width - AgentPanelWidth
	browserView := lipgloss.NewStyle().
		Width(browserWidth).
		Height(m.height).
		Render(m.tuiModel.View())

	agentBorder := borderUnfocused
	if m.focusedPanel == PanelAgent {
		agentBorder = borderFocused
	}

	var agentContent string
	switch {
	case m.agentModel != nil:
		agentContent = m.agentModel.View()
	case m.agentError != "":
		agentContent = m.renderError()
	case m.llmConfig.Validate() != nil:
		agentContent = m.renderNoApiKey()
	default:
		agentContent = m.renderLoading()
	}

	agentView := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(agentBorder).
		Width(AgentPanelWidth - 1).
		Height(m.height).
		Render(agentContent)

	return lipgloss.JoinHorizontal(lipgloss.Top, browserView, agentView)
}

func (m AppModel) renderNoApiKey() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		Render("Coverage Assistant")

	subtitle := lipgloss.NewStyle().
		Foreground(subtleColor).
		Render("AI Assistant")

	instruction := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		Render(m.llmConfig.SetupHelp())

	return lipgloss.JoinVertical(lipgloss.Center,
		"",
		title,
		subtitle,
		"",
		instruction,
	)
}

func (m AppModel) renderError() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5F56")).
		Render(fmt.Sprintf("Error:\n%s", m.agentError))
}

func (m AppModel) renderLoading() string {
	if !m.agentInitialized && m.tuiResult() == nil {
		return lipgloss.NewStyle().
			Foreground(subtleColor).
			Render("Waiting for analysis...")
	}
	return lipgloss.NewStyle().
		Foreground(subtleColor).
		Render("Starting assistant...")
}

func (m AppModel) tuiResult() *analysis.Result {
	if t, ok := m.tuiModel.(tui.Model); ok {
		return t.Result()
	}
	return nil
}

func main() {
	if err := cmd.NewRootCmd(config.MustLoad(), runDefaultTUI).Execute(); err != nil {
		os.Exit(1)
	}
}

func runDefaultTUI(cfg *config.Config) error {
	opts, err := cmd.AnalysisOptions(cfg)
	if err != nil {
		return err
	}
	tui.SetTheme(tui.ThemeName(cfg.Theme))

	// Logging would corrupt the alternate screen.
	log.SetOutput(io.Discard)
	p := tea.NewProgram(newAppModel(cfg, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
