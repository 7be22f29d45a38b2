package analysis

import (
	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
)

// RuleDetail is one rule as seen from a control.
type RuleDetail struct {
	ID             string   `json:"id"`
	Description    string   `json:"description,omitempty"`
	Checks         []string `json:"checks"`
	Components     []string `json:"components"`
	Implementation bool     `json:"implementation"`
}

// ControlDetail gathers everything known about one control.
type ControlDetail struct {
	ID         string       `json:"id"`
	Title      string       `json:"title,omitempty"`
	Family     string       `json:"family"`
	Group      string       `json:"group,omitempty"`
	InCatalog  bool         `json:"in_catalog"`
	Covered    bool         `json:"covered"`
	Components []string     `json:"components"`
	Rules      []RuleDetail `json:"rules"`
}

// Control returns the detail of a control. Component ids are reported by
// title.
func (r *Result) Control(id string) ControlDetail {
	d := ControlDetail{
		ID:        id,
		Title:     r.Index.Title(id),
		Family:    catalog.Family(id),
		Group:     r.Index.Parent(id),
		InCatalog: r.Index.Contains(id),
	}
	d.Covered = d.InCatalog && r.Graph.HasRules(id)
	d.Components = r.titles(r.Aggregator.ControlComponents(id))
	for _, rule := range r.Graph.ControlRules(id) {
		d.Rules = append(d.Rules, r.Rule(rule))
	}
	return d
}

// Rule returns the detail of a rule.
func (r *Result) Rule(id string) RuleDetail {
	return RuleDetail{
		ID:             id,
		Description:    r.Graph.RuleDescription(id),
		Checks:         r.Graph.RuleChecks(id),
		Components:     r.titles(r.Graph.RuleComponents(id)),
		Implementation: r.Graph.RuleHasImplementation(id),
	}
}

// RuleControls returns the controls a rule is recorded against, in sorted
// order.
func (r *Result) RuleControls(ruleID string) []string {
	var out []string
	for _, c := range r.Graph.ReferencedControls() {
		for _, rule := range r.Graph.ControlRules(c) {
			if rule == ruleID {
				out = append(out, c)
				break
			}
		}
	}
	catalog.SortControlIDs(out)
	return out
}

// Component returns a component by id or title.
func (r *Result) Component(name string) (graph.ComponentRef, bool) {
	for _, c := range r.Graph.Components() {
		if c.ID == name || c.Title == name {
			return c, true
		}
	}
	return graph.ComponentRef{}, false
}

func (r *Result) titles(ids []string) []string {
	byID := make(map[string]string)
	for _, c := range r.Graph.Components() {
		byID[c.ID] = c.Title
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok && t != "" {
			out = append(out, t)
			continue
		}
		out = append(out, id)
	}
	return out
}
