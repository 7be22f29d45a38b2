package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

func testIndex(t *testing.T, ids ...string) *catalog.Index {
	t.Helper()
	controls := make([]model.Control, 0, len(ids))
	for _, id := range ids {
		controls = append(controls, model.Control{ID: id})
	}
	idx, err := catalog.New(model.Catalog{Groups: []model.Group{{ID: "g", Controls: controls}}})
	require.NoError(t, err)
	return idx
}

func ruleSets(rules ...string) []model.RuleSet {
	out := make([]model.RuleSet, 0, len(rules))
	for i, r := range rules {
		out = append(out, model.RuleSet{ID: "rule_set_" + string(rune('a'+i)), RuleID: r, Description: "desc " + r})
	}
	return out
}

func component(id string, rules []string, reqs ...model.Requirement) model.Component {
	return model.Component{
		ID:       id,
		Title:    id,
		Type:     "Service",
		RuleSets: ruleSets(rules...),
		Implementations: []model.ControlImplementation{
			{Source: "catalog.json", Requirements: reqs},
		},
	}
}

func req(control string, rules ...string) model.Requirement {
	return model.Requirement{ControlID: control, Rules: rules}
}

func validator(sets ...model.RuleSet) model.Component {
	return model.Component{ID: "validator", Title: "Validator", Type: model.ValidationType, RuleSets: sets}
}

// X covers {A,B,C}, Y covers {B,C}; D and E are uncovered.
func scenarioDefinition() model.Definition {
	return model.Definition{
		Title: "Sample Component Definition",
		Components: []model.Component{
			component("X", []string{"r1", "r2", "r3"},
				req("A", "r1"),
				req("B", "r2"),
				req("C", "r3"),
			),
			component("Y", []string{"r4"},
				req("B", "r4"),
				req("C", "r4"),
			),
			validator(
				model.RuleSet{ID: "s1", RuleID: "r1", CheckID: "c1", Implementation: "fact-1"},
				model.RuleSet{ID: "s2", RuleID: "r2", CheckID: "c1"},
				model.RuleSet{ID: "s3", RuleID: "r4", CheckID: "c2", Implementation: "fact-2"},
			),
		},
	}
}

func TestBuildScenario(t *testing.T) {
	idx := testIndex(t, "A", "B", "C", "D", "E")
	g, err := Build(scenarioDefinition(), idx)
	require.NoError(t, err)

	assert.Equal(t, []ComponentRef{{ID: "X", Title: "X"}, {ID: "Y", Title: "Y"}}, g.Components())
	assert.Equal(t, []string{"r1"}, g.ControlRules("A"))
	assert.Equal(t, []string{"r2", "r4"}, g.ControlRules("B"))
	assert.Empty(t, g.ControlRules("D"))
	assert.True(t, g.HasRules("C"))
	assert.False(t, g.HasRules("E"))

	assert.Equal(t, []string{"X"}, g.RuleComponents("r1"))
	assert.Equal(t, []string{"Y"}, g.RuleComponents("r4"))

	assert.Equal(t, []string{"c1"}, g.RuleChecks("r1"))
	assert.Equal(t, []string{"c1"}, g.RuleChecks("r2"))
	assert.Empty(t, g.RuleChecks("r3"))
	assert.Equal(t, 1, g.RuleCheckCount("r4"))

	assert.True(t, g.RuleHasImplementation("r1"))
	assert.False(t, g.RuleHasImplementation("r2"))
	assert.False(t, g.RuleHasImplementation("r3"))

	assert.Equal(t, []string{"r1", "r2", "r3"}, g.ComponentRules("X"))
	assert.Equal(t, []string{"B", "C"}, g.ComponentControls("Y"))
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, g.Rules())
	assert.Equal(t, "desc r1", g.RuleDescription("r1"))
	assert.Equal(t, []string{"A", "B", "C"}, g.ReferencedControls())
	assert.Empty(t, g.Anomalies())
}

func TestBuildRuleIdentityErrors(t *testing.T) {
	idx := testIndex(t, "A")

	tests := []struct {
		name string
		def  model.Definition
		role string
	}{
		{
			name: "duplicate definition",
			def: model.Definition{Components: []model.Component{
				component("X", []string{"r1", "r1"}, req("A", "r1")),
			}},
			role: "defined",
		},
		{
			name: "duplicate validation mapping",
			def: model.Definition{Components: []model.Component{
				component("X", []string{"r1"}, req("A", "r1")),
				validator(
					model.RuleSet{ID: "s1", RuleID: "r1", CheckID: "c1"},
					model.RuleSet{ID: "s2", RuleID: "r1", CheckID: "c2"},
				),
			}},
			role: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.def, idx)
			require.Error(t, err)
			assert.Nil(t, g)

			var ruleErr *RuleIdentityError
			require.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, "r1", ruleErr.RuleID)
			assert.Equal(t, tt.role, ruleErr.Role)
		})
	}
}

func TestBuildSharedRuleAcrossComponents(t *testing.T) {
	idx := testIndex(t, "A", "B")
	def := model.Definition{Components: []model.Component{
		component("X", []string{"r1"}, req("A", "r1")),
		component("Y", []string{"r1"}, req("B", "r1")),
	}}

	g, err := Build(def, idx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, g.RuleComponents("r1"))
	assert.Equal(t, []string{"r1"}, g.Rules(), "a shared rule is one rule")
	assert.Equal(t, []string{"r1"}, g.ControlRules("A"))
	assert.Equal(t, []string{"r1"}, g.ControlRules("B"))
	assert.Empty(t, g.Anomalies())
}

func unresolvedDefinition() model.Definition {
	return model.Definition{Components: []model.Component{
		component("X", []string{"r1", "r2"},
			req("A", "r1"),
			req("zz-9", "r2"),
			req("A", "ghost"),
		),
		validator(
			model.RuleSet{ID: "s1", RuleID: "r1", CheckID: "c1"},
			model.RuleSet{ID: "s2", RuleID: "phantom", CheckID: "c2"},
			model.RuleSet{ID: "s3", CheckID: "c3"},
		),
	}}
}

func TestBuildReferencePolicies(t *testing.T) {
	idx := testIndex(t, "A")

	t.Run("exclude", func(t *testing.T) {
		g, err := Build(unresolvedDefinition(), idx)
		require.NoError(t, err)

		anomalies := g.Anomalies()
		require.Len(t, anomalies, 4)
		assert.Equal(t, UnresolvedControl, anomalies[0].Kind)
		assert.Equal(t, "zz-9", anomalies[0].ControlID)
		assert.Equal(t, UnresolvedRule, anomalies[1].Kind)
		assert.Equal(t, "ghost", anomalies[1].RuleID)
		assert.Equal(t, UnresolvedRule, anomalies[2].Kind)
		assert.Equal(t, "phantom", anomalies[2].RuleID)
		assert.Equal(t, OrphanCheck, anomalies[3].Kind)
		for _, a := range anomalies {
			assert.True(t, a.Excluded, a.String())
		}

		assert.Empty(t, g.ControlRules("zz-9"))
		assert.Equal(t, []string{"r1"}, g.ControlRules("A"))
		assert.Empty(t, g.RuleChecks("phantom"))
		assert.Equal(t, []string{"r1", "r2"}, g.Rules())
	})

	t.Run("include", func(t *testing.T) {
		g, err := Build(unresolvedDefinition(), idx, WithReferencePolicy(PolicyInclude))
		require.NoError(t, err)

		assert.Equal(t, []string{"r2"}, g.ControlRules("zz-9"))
		assert.Equal(t, []string{"ghost", "r1"}, g.ControlRules("A"))
		assert.Equal(t, []string{"c2"}, g.RuleChecks("phantom"))
		assert.Equal(t, []string{"A", "zz-9"}, g.ComponentControls("X"))

		anomalies := g.Anomalies()
		require.Len(t, anomalies, 4)
		assert.False(t, anomalies[0].Excluded)
		assert.True(t, anomalies[3].Excluded)
	})

	t.Run("fail", func(t *testing.T) {
		g, err := Build(unresolvedDefinition(), idx, WithReferencePolicy(PolicyFail))
		require.Error(t, err)
		assert.Nil(t, g)

		var refErr *UnresolvedReferenceError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, UnresolvedControl, refErr.Anomaly.Kind)
	})
}

func TestBuildWithoutRuleDefinitions(t *testing.T) {
	idx := testIndex(t, "A")
	def := model.Definition{Components: []model.Component{
		{
			ID:    "X",
			Title: "X",
			Implementations: []model.ControlImplementation{
				{Requirements: []model.Requirement{req("A", "r1")}},
			},
		},
	}}

	g, err := Build(def, idx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, g.ControlRules("A"))
	assert.Empty(t, g.Anomalies())
}

func TestBuildSkipsRequirementsWithoutRules(t *testing.T) {
	idx := testIndex(t, "A")
	def := model.Definition{Components: []model.Component{
		component("X", nil, req("A"), req("not-in-catalog")),
	}}

	g, err := Build(def, idx)
	require.NoError(t, err)
	assert.False(t, g.HasRules("A"))
	assert.Empty(t, g.Anomalies())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ReferencePolicy
		wantErr bool
	}{
		{"", PolicyExclude, false},
		{"exclude", PolicyExclude, false},
		{"Include", PolicyInclude, false},
		{" fail ", PolicyFail, false},
		{"bogus", PolicyExclude, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.String(), policyNames[got])
		})
	}
}
