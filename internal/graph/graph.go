// Package graph builds the control, rule, check and component relationships
// of a component definition as adjacency maps.
package graph

import (
	"sort"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
)

type set map[string]struct{}

func (s set) add(v string) {
	s[v] = struct{}{}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func addTo(m map[string]set, key, value string) {
	s, ok := m[key]
	if !ok {
		s = make(set)
		m[key] = s
	}
	s.add(value)
}

// ComponentRef identifies a component that implements controls.
type ComponentRef struct {
	ID    string
	Title string
}

// Graph holds the relationships of one component definition. It is
// read-only after Build returns.
type Graph struct {
	components     []ComponentRef
	controlRules   map[string]set
	ruleComponents map[string]set
	ruleChecks     map[string]set
	ruleImpl       map[string]bool
	componentRules map[string]set
	componentCtrls map[string]set
	descriptions   map[string]string
	rules          set
	anomalies      []Anomaly
}

// Components returns the implementing components in document order.
// Validation components are not included.
func (g *Graph) Components() []ComponentRef {
	out := make([]ComponentRef, len(g.components))
	copy(out, g.components)
	return out
}

// ControlRules returns the rules that reference a control, sorted.
func (g *Graph) ControlRules(controlID string) []string {
	return g.controlRules[controlID].sorted()
}

// HasRules reports whether at least one rule references the control.
func (g *Graph) HasRules(controlID string) bool {
	return len(g.controlRules[controlID]) > 0
}

// ReferencedControls returns every control id with at least one rule,
// including unresolved ones kept under PolicyInclude.
func (g *Graph) ReferencedControls() []string {
	out := make([]string, 0, len(g.controlRules))
	for id := range g.controlRules {
		out = append(out, id)
	}
	catalog.SortControlIDs(out)
	return out
}

// RuleComponents returns the ids of the components whose implementations
// reference the rule, sorted.
func (g *Graph) RuleComponents(ruleID string) []string {
	return g.ruleComponents[ruleID].sorted()
}

// RuleChecks returns the checks mapped to a rule, sorted.
func (g *Graph) RuleChecks(ruleID string) []string {
	return g.ruleChecks[ruleID].sorted()
}

// RuleCheckCount returns the number of distinct checks mapped to a rule.
func (g *Graph) RuleCheckCount(ruleID string) int {
	return len(g.ruleChecks[ruleID])
}

// RuleHasImplementation reports whether a validation rule set records an
// implementation for the rule.
func (g *Graph) RuleHasImplementation(ruleID string) bool {
	return g.ruleImpl[ruleID]
}

// RuleDescription returns the description from the rule definition.
func (g *Graph) RuleDescription(ruleID string) string {
	return g.descriptions[ruleID]
}

// ComponentRules returns the union of rules across a component's
// implementations, sorted.
func (g *Graph) ComponentRules(componentID string) []string {
	return g.componentRules[componentID].sorted()
}

// ComponentControls returns the controls a component covers through its
// rules, sorted by control id order.
func (g *Graph) ComponentControls(componentID string) []string {
	out := g.componentCtrls[componentID].sorted()
	catalog.SortControlIDs(out)
	return out
}

// Rules returns every rule of the definition, sorted.
func (g *Graph) Rules() []string {
	return g.rules.sorted()
}

// Anomalies returns the unresolved references found during the build.
func (g *Graph) Anomalies() []Anomaly {
	out := make([]Anomaly, len(g.anomalies))
	copy(out, g.anomalies)
	return out
}
