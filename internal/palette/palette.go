// Package palette is a filterable command overlay for the assistant panel.
package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"
)

// rows taken by the title, input, blank line and hint
const chromeRows = 4

// Command is one palette entry.
type Command struct {
	Name   string
	Key    string // slash command or shortcut, shown right aligned
	Group  string // heading while the filter is empty
	Action string // returned as SelectedAction
}

// SelectedAction is sent when a command is chosen.
type SelectedAction string

// Styles holds the palette look.
type Styles struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Group    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Key      lipgloss.Style
	Hint     lipgloss.Style
	Prompt   lipgloss.Style
}

// DefaultStyles builds styles from an accent and a muted color.
func DefaultStyles(accent, subtle lipgloss.TerminalColor) Styles {
	return Styles{
		Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Group:    lipgloss.NewStyle().Foreground(subtle).Italic(true),
		Item:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Key:      lipgloss.NewStyle().Foreground(subtle),
		Hint:     lipgloss.NewStyle().Foreground(subtle),
		Prompt:   lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

// row is a rendered line: a group heading or a command.
type row struct {
	heading string
	cmd     int // index into filtered, -1 for headings
}

// Model is the palette state.
type Model struct {
	commands []Command
	filtered []Command
	input    textinput.Model
	styles   Styles
	selected int
	offset   int // first visible row
	Active   bool
	width    int
	height   int
}

// New returns a closed palette over commands.
func New(commands []Command) Model {
	ti := textinput.New()
	ti.Placeholder = "filter commands"
	ti.Prompt = "> "
	ti.CharLimit = 40

	m := Model{
		commands: commands,
		filtered: commands,
		input:    ti,
		width:    50,
		height:   14,
	}
	m.SetStyles(DefaultStyles(lipgloss.Color("#7D56F4"), lipgloss.Color("#626262")))
	return m
}

// SetStyles replaces the palette styles.
func (m *Model) SetStyles(s Styles) {
	m.styles = s
	m.input.PromptStyle = s.Prompt
}

// SetSize sets the outer palette size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(1, width-6)
}

// Open shows the palette with an empty filter.
func (m *Model) Open() {
	m.Active = true
	m.input.Reset()
	m.input.Focus()
	m.filtered = m.commands
	m.selected = 0
	m.offset = 0
}

// Close hides the palette.
func (m *Model) Close() {
	m.Active = false
	m.input.Blur()
}

// Update handles keys while the palette is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.Close()
			return m, nil
		case "enter":
			if m.selected >= len(m.filtered) {
				return m, nil
			}
			action := m.filtered[m.selected].Action
			m.Close()
			return m, func() tea.Msg { return SelectedAction(action) }
		case "up", "ctrl+p":
			m.move(-1)
			return m, nil
		case "down", "ctrl+n", "tab":
			m.move(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter()
	return m, cmd
}

// move steps the selection, wrapping at both ends.
func (m *Model) move(delta int) {
	n := len(m.filtered)
	if n == 0 {
		return
	}
	m.selected = (m.selected + delta + n) % n
	m.scroll()
}

// scroll keeps the selected command inside the visible rows.
func (m *Model) scroll() {
	rows := m.rows()
	at := 0
	for i, r := range rows {
		if r.cmd == m.selected {
			at = i
			break
		}
	}
	// Keep a command's heading in view with it.
	if at > 0 && rows[at-1].cmd < 0 && at-1 < m.offset {
		at--
	}
	visible := m.visibleRows()
	switch {
	case at < m.offset:
		m.offset = at
	case at >= m.offset+visible:
		m.offset = at - visible + 1
	}
}

func (m Model) visibleRows() int {
	return max(1, m.height-chromeRows-2)
}

type commandSource []Command

func (c commandSource) String(i int) string { return c[i].Name + " " + c[i].Key }
func (c commandSource) Len() int            { return len(c) }

// filter ranks commands by fuzzy match on name and key.
func (m *Model) filter() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.filtered = m.commands
	} else {
		matches := fuzzy.FindFrom(query, commandSource(m.commands))
		m.filtered = make([]Command, 0, len(matches))
		for _, match := range matches {
			m.filtered = append(m.filtered, m.commands[match.Index])
		}
	}
	m.selected = min(m.selected, max(0, len(m.filtered)-1))
	m.offset = 0
	m.scroll()
}

// rows lays out the filtered commands. Group headings appear only while the
// filter is empty; ranked results are listed flat.
func (m Model) rows() []row {
	grouped := strings.TrimSpace(m.input.Value()) == ""
	var out []row
	last := ""
	for i, c := range m.filtered {
		if grouped && c.Group != "" && c.Group != last {
			out = append(out, row{heading: c.Group, cmd: -1})
			last = c.Group
		}
		out = append(out, row{cmd: i})
	}
	return out
}

// View renders the open palette.
func (m Model) View() string {
	if !m.Active {
		return ""
	}
	inner := max(10, m.width-2)
	s := m.styles

	lines := []string{
		s.Title.Render(fmt.Sprintf("Commands %d/%d", len(m.filtered), len(m.commands))),
		m.input.View(),
	}

	rows := m.rows()
	if len(rows) == 0 {
		lines = append(lines, s.Hint.Render("no matching commands"))
	}
	end := min(len(rows), m.offset+m.visibleRows())
	for _, r := range rows[m.offset:end] {
		if r.cmd < 0 {
			lines = append(lines, s.Group.Render(r.heading))
			continue
		}
		c := m.filtered[r.cmd]
		name := ansi.Truncate(c.Name, inner-ansi.StringWidth(c.Key)-3, "…")
		pad := max(1, inner-2-ansi.StringWidth(name)-ansi.StringWidth(c.Key))
		label := " " + name + strings.Repeat(" ", pad)
		if r.cmd == m.selected {
			lines = append(lines, s.Selected.Render(label+c.Key+" "))
		} else {
			lines = append(lines, s.Item.Render(label)+s.Key.Render(c.Key))
		}
	}

	lines = append(lines, "", s.Hint.Render("↑↓ move • enter run • esc close"))
	return s.Frame.Width(inner).Render(strings.Join(lines, "\n"))
}

// Overlay draws the open palette over background, horizontally centered and
// a third of the way down.
func (m Model) Overlay(background string, width, height int) string {
	if !m.Active {
		return background
	}
	box := strings.Split(m.View(), "\n")
	x := max(0, (width-lipgloss.Width(m.View()))/2)
	y := max(0, (height-len(box))/3)

	bg := strings.Split(background, "\n")
	for len(bg) < y+len(box) {
		bg = append(bg, "")
	}
	for i, line := range box {
		bg[y+i] = splice(bg[y+i], line, x)
	}
	return strings.Join(bg, "\n")
}

// splice replaces the cells of bg under fg, starting at column x. Escape
// sequences on either side are kept.
func splice(bg, fg string, x int) string {
	if w := ansi.StringWidth(bg); w < x {
		bg += strings.Repeat(" ", x-w)
	}
	return ansi.Truncate(bg, x, "") + fg + ansi.TruncateLeft(bg, x+ansi.StringWidth(fg), "")
}
