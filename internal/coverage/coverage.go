// Package coverage computes coverage metrics over a relationship graph and a
// catalog index. Every query is a pure function of its inputs.
package coverage

import (
	"sort"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
)

// Metric names, also used as artifact names.
const (
	MetricControlsCoverage       = "controls-coverage"
	MetricControlsToComponents   = "controls-to-number-of-components"
	MetricComponentsToControls   = "components-to-number-of-controls"
	MetricComponentCheckCoverage = "components-to-percentage-of-controls-covered-checks"
	MetricRulesChecksCounts      = "rules-checks-counts"
	MetricImplementationsExist   = "implemenations-exist"
)

// CoverageSummary is the covered/uncovered split of the catalog.
type CoverageSummary struct {
	Total     int `json:"total"`
	Covered   int `json:"covered"`
	Uncovered int `json:"uncovered"`
}

// Bucket is one histogram bar: Count items share Value.
type Bucket struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// ControlCount is the number of components that cover one control.
type ControlCount struct {
	ControlID  string `json:"control_id"`
	Components int    `json:"components"`
}

// ComponentCount is the number of covered controls of one component.
type ComponentCount struct {
	ComponentID string `json:"component_id"`
	Title       string `json:"title"`
	Controls    int    `json:"controls"`
}

// ComponentPercentage is the share of a component's rules that have checks.
type ComponentPercentage struct {
	ComponentID     string     `json:"component_id"`
	Title           string     `json:"title"`
	Rules           int        `json:"rules"`
	RulesWithChecks int        `json:"rules_with_checks"`
	Percentage      Percentage `json:"percentage"`
}

// ReuseCounts summarises rule to check edges.
type ReuseCounts struct {
	TotalRules   int `json:"total_rules"`
	TotalEdges   int `json:"total_edges"`
	UniqueChecks int `json:"unique_checks"`
	ReusedChecks int `json:"reused_checks"`
}

// ImplementationSummary is the share of rules with a recorded
// implementation.
type ImplementationSummary struct {
	TotalRules     int        `json:"total_rules"`
	With           int        `json:"with_implementation"`
	Without        int        `json:"without_implementation"`
	PercentWith    Percentage `json:"percent_with"`
	PercentWithout Percentage `json:"percent_without"`
}

// Aggregator answers coverage queries. It holds no state besides its
// read-only inputs.
type Aggregator struct {
	g   *graph.Graph
	idx *catalog.Index
}

// New returns an Aggregator over g and idx.
func New(g *graph.Graph, idx *catalog.Index) *Aggregator {
	return &Aggregator{g: g, idx: idx}
}

// ControlCoverage counts catalog controls with at least one rule.
func (a *Aggregator) ControlCoverage() CoverageSummary {
	s := CoverageSummary{Total: a.idx.Len()}
	for _, id := range a.idx.IDs() {
		if a.g.HasRules(id) {
			s.Covered++
		}
	}
	s.Uncovered = s.Total - s.Covered
	return s
}

// CoveredControls returns the covered catalog controls in document order.
func (a *Aggregator) CoveredControls() []string {
	var out []string
	for _, id := range a.idx.IDs() {
		if a.g.HasRules(id) {
			out = append(out, id)
		}
	}
	return out
}

// UncoveredControls returns the catalog controls without rules in document
// order.
func (a *Aggregator) UncoveredControls() []string {
	var out []string
	for _, id := range a.idx.IDs() {
		if !a.g.HasRules(id) {
			out = append(out, id)
		}
	}
	return out
}

// ControlComponents returns the distinct components reaching a control
// through its rules, sorted.
func (a *Aggregator) ControlComponents(controlID string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range a.g.ControlRules(controlID) {
		for _, c := range a.g.RuleComponents(r) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ControlComponentCounts returns the component count of every covered
// control, in control id order.
func (a *Aggregator) ControlComponentCounts() []ControlCount {
	covered := a.CoveredControls()
	catalog.SortControlIDs(covered)
	out := make([]ControlCount, 0, len(covered))
	for _, id := range covered {
		out = append(out, ControlCount{ControlID: id, Components: len(a.ControlComponents(id))})
	}
	return out
}

// ControlsToComponents buckets covered controls by their component count.
func (a *Aggregator) ControlsToComponents() []Bucket {
	counts := make([]int, 0)
	for _, cc := range a.ControlComponentCounts() {
		counts = append(counts, cc.Components)
	}
	return histogram(counts)
}

// componentCoveredControls inverts control -> rule -> component.
func (a *Aggregator) componentCoveredControls() map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, id := range a.CoveredControls() {
		for _, c := range a.ControlComponents(id) {
			if out[c] == nil {
				out[c] = make(map[string]bool)
			}
			out[c][id] = true
		}
	}
	return out
}

// ComponentControlCounts returns the number of covered controls of every
// component, in document order. Components without covered controls are
// reported with zero.
func (a *Aggregator) ComponentControlCounts() []ComponentCount {
	inverted := a.componentCoveredControls()
	comps := a.g.Components()
	out := make([]ComponentCount, 0, len(comps))
	for _, c := range comps {
		out = append(out, ComponentCount{ComponentID: c.ID, Title: c.Title, Controls: len(inverted[c.ID])})
	}
	return out
}

// ComponentsToControls buckets components with at least one covered control
// by their covered control count.
func (a *Aggregator) ComponentsToControls() []Bucket {
	counts := make([]int, 0)
	for _, cc := range a.ComponentControlCounts() {
		if cc.Controls > 0 {
			counts = append(counts, cc.Controls)
		}
	}
	return histogram(counts)
}

// ComponentCheckCoverage returns, per component, the percentage of its rules
// that map to at least one check.
func (a *Aggregator) ComponentCheckCoverage() []ComponentPercentage {
	comps := a.g.Components()
	out := make([]ComponentPercentage, 0, len(comps))
	for _, c := range comps {
		rules := a.g.ComponentRules(c.ID)
		withChecks := 0
		for _, r := range rules {
			if a.g.RuleCheckCount(r) > 0 {
				withChecks++
			}
		}
		out = append(out, ComponentPercentage{
			ComponentID:     c.ID,
			Title:           c.Title,
			Rules:           len(rules),
			RulesWithChecks: withChecks,
			Percentage:      Percent(withChecks, len(rules)),
		})
	}
	return out
}

// RuleCheckCounts counts rules, rule to check edges, and check reuse.
func (a *Aggregator) RuleCheckCounts() ReuseCounts {
	rules := a.g.Rules()
	unique := make(map[string]bool)
	rc := ReuseCounts{TotalRules: len(rules)}
	for _, r := range rules {
		checks := a.g.RuleChecks(r)
		rc.TotalEdges += len(checks)
		for _, c := range checks {
			unique[c] = true
		}
	}
	rc.UniqueChecks = len(unique)
	rc.ReusedChecks = rc.TotalEdges - rc.UniqueChecks
	return rc
}

// ImplementationExistence reports the share of rules with a recorded
// implementation.
func (a *Aggregator) ImplementationExistence() ImplementationSummary {
	rules := a.g.Rules()
	s := ImplementationSummary{TotalRules: len(rules)}
	for _, r := range rules {
		if a.g.RuleHasImplementation(r) {
			s.With++
		}
	}
	s.Without = s.TotalRules - s.With
	s.PercentWith = Percent(s.With, s.TotalRules)
	s.PercentWithout = Percent(s.Without, s.TotalRules)
	return s
}

// histogram buckets values and returns the buckets in ascending value order.
func histogram(values []int) []Bucket {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	out := make([]Bucket, 0, len(counts))
	for v, n := range counts {
		out = append(out, Bucket{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Value < out[j].Value
	})
	return out
}
