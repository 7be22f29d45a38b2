package agent

import (
	"google.golang.org/adk/tool"

	"github.com/ethanolivertroy/compdef-insights/internal/families"
)

// FamilyParams for get_family_coverage tool
type FamilyParams struct {
	Family string `json:"family,omitempty" jsonschema:"Family prefix or title (e.g., 'au', 'Incident Response'); empty lists every family"`
}

// FamilyResult for get_family_coverage tool
type FamilyResult struct {
	Found    bool                `json:"found"`
	Count    int                 `json:"count"`
	Families []families.Coverage `json:"families"`
}

func (t *Toolset) familyCoverage(ctx tool.Context, params FamilyParams) (FamilyResult, error) {
	all := families.Breakdown(t.res.Index.IDs(), t.res.Graph.HasRules)
	if params.Family == "" {
		// Uncovered ids are only listed for a single family.
		for i := range all {
			all[i].Uncovered = nil
		}
		return FamilyResult{Found: len(all) > 0, Count: len(all), Families: all}, nil
	}

	f, ok := families.Find(all, params.Family)
	if !ok {
		return FamilyResult{Found: false}, nil
	}
	return FamilyResult{Found: true, Count: 1, Families: []families.Coverage{f}}, nil
}
