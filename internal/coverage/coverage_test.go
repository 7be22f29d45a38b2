package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

func newIndex(t *testing.T, ids ...string) *catalog.Index {
	t.Helper()
	controls := make([]model.Control, 0, len(ids))
	for _, id := range ids {
		controls = append(controls, model.Control{ID: id})
	}
	idx, err := catalog.New(model.Catalog{Controls: controls})
	require.NoError(t, err)
	return idx
}

func definer(id string, reqs map[string][]string, order ...string) model.Component {
	c := model.Component{ID: id, Title: id, Type: "Service"}
	var requirements []model.Requirement
	for _, control := range order {
		requirements = append(requirements, model.Requirement{ControlID: control, Rules: reqs[control]})
	}
	c.Implementations = []model.ControlImplementation{{Source: "catalog.json", Requirements: requirements}}
	return c
}

func newAggregator(t *testing.T, def model.Definition, ids ...string) *Aggregator {
	t.Helper()
	idx := newIndex(t, ids...)
	g, err := graph.Build(def, idx)
	require.NoError(t, err)
	return New(g, idx)
}

// Controls {A..E}; X covers {A,B,C}; Y covers {B,C}.
func scenario(t *testing.T) *Aggregator {
	def := model.Definition{Components: []model.Component{
		definer("X", map[string][]string{"A": {"x1"}, "B": {"x2"}, "C": {"x3"}}, "A", "B", "C"),
		definer("Y", map[string][]string{"B": {"y1"}, "C": {"y2"}}, "B", "C"),
		{ID: "V", Title: "V", Type: model.ValidationType, RuleSets: []model.RuleSet{
			{ID: "s1", RuleID: "x1", CheckID: "chk-1", Implementation: "facts"},
			{ID: "s2", RuleID: "x2", CheckID: "chk-2"},
			{ID: "s3", RuleID: "y1", CheckID: "chk-1", Implementation: "facts"},
			{ID: "s4", RuleID: "y2", CheckID: "chk-3"},
		}},
	}}
	return newAggregator(t, def, "A", "B", "C", "D", "E")
}

func TestControlCoverageScenario(t *testing.T) {
	a := scenario(t)

	got := a.ControlCoverage()
	assert.Equal(t, CoverageSummary{Total: 5, Covered: 3, Uncovered: 2}, got)
	assert.Equal(t, []string{"A", "B", "C"}, a.CoveredControls())
	assert.Equal(t, []string{"D", "E"}, a.UncoveredControls())
}

func TestControlsToComponentsScenario(t *testing.T) {
	a := scenario(t)

	assert.Equal(t, []Bucket{{Value: 1, Count: 1}, {Value: 2, Count: 2}}, a.ControlsToComponents())
	assert.Equal(t, []ControlCount{
		{ControlID: "A", Components: 1},
		{ControlID: "B", Components: 2},
		{ControlID: "C", Components: 2},
	}, a.ControlComponentCounts())
	assert.Equal(t, []string{"X", "Y"}, a.ControlComponents("B"))
}

func TestComponentsToControlsScenario(t *testing.T) {
	a := scenario(t)

	assert.Equal(t, []ComponentCount{
		{ComponentID: "X", Title: "X", Controls: 3},
		{ComponentID: "Y", Title: "Y", Controls: 2},
	}, a.ComponentControlCounts())
	assert.Equal(t, []Bucket{{Value: 2, Count: 1}, {Value: 3, Count: 1}}, a.ComponentsToControls())
}

func TestHistogramCompleteness(t *testing.T) {
	a := scenario(t)
	cov := a.ControlCoverage()

	sum := 0
	for _, b := range a.ControlsToComponents() {
		sum += b.Count
	}
	assert.Equal(t, cov.Covered, sum)

	withControls := 0
	for _, cc := range a.ComponentControlCounts() {
		if cc.Controls > 0 {
			withControls++
		}
	}
	sum = 0
	for _, b := range a.ComponentsToControls() {
		sum += b.Count
	}
	assert.Equal(t, withControls, sum)
}

func TestComponentsToControlsSkipsEmptyComponents(t *testing.T) {
	def := model.Definition{Components: []model.Component{
		definer("X", map[string][]string{"A": {"r1"}}, "A"),
		{ID: "Empty", Title: "Empty", Type: "Service"},
	}}
	a := newAggregator(t, def, "A", "B")

	assert.Equal(t, []Bucket{{Value: 1, Count: 1}}, a.ComponentsToControls())
	counts := a.ComponentControlCounts()
	require.Len(t, counts, 2)
	assert.Equal(t, 0, counts[1].Controls)
}

func TestComponentCheckCoverage(t *testing.T) {
	def := model.Definition{Components: []model.Component{
		definer("Full", map[string][]string{"A": {"r1", "r2"}}, "A"),
		definer("Half", map[string][]string{"A": {"r3"}, "B": {"r4"}}, "A", "B"),
		{ID: "NoRules", Title: "NoRules", Type: "Service"},
		{ID: "V", Title: "V", Type: model.ValidationType, RuleSets: []model.RuleSet{
			{ID: "s1", RuleID: "r1", CheckID: "c1"},
			{ID: "s2", RuleID: "r2", CheckID: "c2"},
			{ID: "s3", RuleID: "r3", CheckID: "c1"},
		}},
	}}
	a := newAggregator(t, def, "A", "B")

	got := a.ComponentCheckCoverage()
	require.Len(t, got, 3)

	assert.Equal(t, "Full", got[0].Title)
	assert.Equal(t, Percentage{Value: 100, Applicable: true}, got[0].Percentage)
	assert.Equal(t, 2, got[0].Rules)

	assert.Equal(t, Percentage{Value: 50, Applicable: true}, got[1].Percentage)
	assert.Equal(t, 1, got[1].RulesWithChecks)

	assert.False(t, got[2].Percentage.Applicable)
	assert.Equal(t, "N/A", got[2].Percentage.String())

	for _, cp := range got {
		if cp.Percentage.Applicable {
			assert.GreaterOrEqual(t, cp.Percentage.Value, 0.0)
			assert.LessOrEqual(t, cp.Percentage.Value, 100.0)
		}
	}

	report := a.Compute()
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, MetricComponentCheckCoverage, report.Warnings[0].Metric)
	assert.Equal(t, "NoRules", report.Warnings[0].Subject)
}

// Ten rules, eight of which reference checks; six distinct checks, one of
// them shared by three rules.
func TestRuleCheckCountsReuse(t *testing.T) {
	reqs := make(map[string][]string)
	var order []string
	var sets []model.RuleSet
	checks := []string{"c1", "c1", "c1", "c2", "c3", "c4", "c5", "c6", "", ""}
	for i, check := range checks {
		rule := fmt.Sprintf("r%02d", i)
		control := fmt.Sprintf("ac-%d", i+1)
		reqs[control] = []string{rule}
		order = append(order, control)
		sets = append(sets, model.RuleSet{ID: "s" + rule, RuleID: rule, CheckID: check})
	}
	def := model.Definition{Components: []model.Component{
		definer("X", reqs, order...),
		{ID: "V", Title: "V", Type: model.ValidationType, RuleSets: sets},
	}}
	a := newAggregator(t, def, order...)

	got := a.RuleCheckCounts()
	assert.Equal(t, ReuseCounts{TotalRules: 10, TotalEdges: 8, UniqueChecks: 6, ReusedChecks: 2}, got)
	assert.LessOrEqual(t, got.UniqueChecks, got.TotalEdges)
	assert.GreaterOrEqual(t, got.ReusedChecks, 0)
}

func TestImplementationExistence(t *testing.T) {
	a := scenario(t)

	got := a.ImplementationExistence()
	assert.Equal(t, 5, got.TotalRules)
	assert.Equal(t, 2, got.With)
	assert.Equal(t, 3, got.Without)
	assert.InDelta(t, 40.0, got.PercentWith.Value, 1e-9)
	assert.InDelta(t, 60.0, got.PercentWithout.Value, 1e-9)
}

func TestEmptyDefinition(t *testing.T) {
	a := newAggregator(t, model.Definition{}, "A", "B")

	assert.Equal(t, CoverageSummary{Total: 2, Uncovered: 2}, a.ControlCoverage())
	assert.Empty(t, a.ControlsToComponents())
	assert.Empty(t, a.ComponentsToControls())
	assert.Equal(t, ReuseCounts{}, a.RuleCheckCounts())

	impl := a.ImplementationExistence()
	assert.False(t, impl.PercentWith.Applicable)
	assert.False(t, impl.PercentWithout.Applicable)

	report := a.Compute()
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, MetricImplementationsExist, report.Warnings[0].Metric)
}

func TestCoverageInvariant(t *testing.T) {
	tests := []struct {
		name string
		def  model.Definition
		ids  []string
	}{
		{"empty", model.Definition{}, []string{"A"}},
		{"all covered", model.Definition{Components: []model.Component{
			definer("X", map[string][]string{"A": {"r"}, "B": {"r"}}, "A", "B"),
		}}, []string{"A", "B"}},
		{"unresolved excluded", model.Definition{Components: []model.Component{
			definer("X", map[string][]string{"A": {"r"}, "zz": {"r"}}, "A", "zz"),
		}}, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cov := newAggregator(t, tt.def, tt.ids...).ControlCoverage()
			assert.Equal(t, cov.Total, cov.Covered+cov.Uncovered)
			assert.Equal(t, len(tt.ids), cov.Total)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	a := scenario(t)

	first, err := json.Marshal(a.Compute())
	require.NoError(t, err)
	second, err := json.Marshal(a.Compute())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestComputeConcurrentMatchesCompute(t *testing.T) {
	a := scenario(t)

	got, err := a.ComputeConcurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Compute(), got)
}

func TestComputeConcurrentCancelled(t *testing.T) {
	a := scenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ComputeConcurrent(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercentageJSON(t *testing.T) {
	b, err := json.Marshal(Percent(1, 4))
	require.NoError(t, err)
	assert.Equal(t, "25", string(b))

	b, err = json.Marshal(NotApplicable)
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(b))
	assert.Equal(t, "25.0%", Percent(1, 4).String())
}
