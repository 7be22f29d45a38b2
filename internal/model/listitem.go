package model

import (
	"fmt"
	"strings"
)

// ControlItem is one catalog control in the browser list.
type ControlItem struct {
	ID         string
	Name       string
	Family     string
	Group      string
	Covered    bool
	Rules      int
	Checks     int
	Components int
}

// Title returns the display title for the list.
func (c ControlItem) Title() string {
	if c.Name == "" {
		return strings.ToUpper(c.ID)
	}
	return strings.ToUpper(c.ID) + "  " + c.Name
}

// Description returns the secondary text for the list.
func (c ControlItem) Description() string {
	if !c.Covered {
		return fmt.Sprintf("%s | not covered", c.Family)
	}
	return fmt.Sprintf("%s | %s | %s | %s",
		c.Family, plural(c.Rules, "rule"), plural(c.Checks, "check"), plural(c.Components, "component"))
}

// FilterValue returns the string used for filtering.
func (c ControlItem) FilterValue() string {
	return strings.Join([]string{c.ID, c.Name, c.Family}, " ")
}

// CoverageStatus is the short covered/uncovered label.
func (c ControlItem) CoverageStatus() string {
	if c.Covered {
		return "Covered"
	}
	return "Not covered"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ControlSelectedMsg is sent when the user opens a control's detail view.
type ControlSelectedMsg struct {
	Control *ControlItem
}
