package oscal

import (
	oscalTypes "github.com/defenseunicorns/go-oscal/src/types/oscal-1-1-2"
	"github.com/pkg/errors"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

// ConversionError reports a document shape the model cannot represent.
type ConversionError struct {
	Path   string
	Reason string
}

func (e *ConversionError) Error() string {
	return "converting " + e.Path + ": " + e.Reason
}

// ToDefinition converts a parsed component definition.
func ToDefinition(cd *oscalTypes.ComponentDefinition) (model.Definition, error) {
	if cd == nil {
		return model.Definition{}, errors.New("nil component definition")
	}
	def := model.Definition{
		Title:        cd.Metadata.Title,
		Version:      cd.Metadata.Version,
		LastModified: cd.Metadata.LastModified,
	}
	if cd.Components == nil {
		return def, nil
	}
	for i, dc := range *cd.Components {
		c, err := toComponent(dc)
		if err != nil {
			return def, errors.Wrapf(err, "component %d", i)
		}
		def.Components = append(def.Components, c)
	}
	return def, nil
}

func toComponent(dc oscalTypes.DefinedComponent) (model.Component, error) {
	c := model.Component{
		ID:    dc.UUID,
		Title: dc.Title,
		Type:  dc.Type,
	}
	if c.ID == "" {
		c.ID = c.Title
	}
	if c.ID == "" {
		return c, &ConversionError{Path: "components", Reason: "component has neither uuid nor title"}
	}
	if dc.Props != nil {
		c.RuleSets = RuleSets(*dc.Props)
	}
	if dc.ControlImplementations == nil {
		return c, nil
	}
	for _, set := range *dc.ControlImplementations {
		ci := model.ControlImplementation{Source: set.Source}
		for _, ir := range set.ImplementedRequirements {
			if ir.ControlId == "" {
				return c, &ConversionError{Path: c.Title, Reason: "implemented requirement without control-id"}
			}
			r := model.Requirement{ControlID: ir.ControlId}
			if ir.Props != nil {
				r.Rules = ruleIDs(*ir.Props)
			}
			ci.Requirements = append(ci.Requirements, r)
		}
		c.Implementations = append(c.Implementations, ci)
	}
	return c, nil
}

// RuleSets groups props by their remarks value. Within a group the first
// prop of each name wins. Groups keep the order of first appearance.
func RuleSets(props []oscalTypes.Property) []model.RuleSet {
	var order []string
	byID := make(map[string]*model.RuleSet)
	for _, p := range props {
		rs, ok := byID[p.Remarks]
		if !ok {
			rs = &model.RuleSet{ID: p.Remarks}
			byID[p.Remarks] = rs
			order = append(order, p.Remarks)
		}
		switch p.Name {
		case model.PropRuleID:
			setOnce(&rs.RuleID, p.Value)
		case model.PropRuleDescription:
			setOnce(&rs.Description, p.Value)
		case model.PropCheckID:
			setOnce(&rs.CheckID, p.Value)
		case model.PropImplementation:
			setOnce(&rs.Implementation, p.Value)
		}
	}
	out := make([]model.RuleSet, 0, len(order))
	for _, id := range order {
		rs := byID[id]
		if rs.RuleID == "" && rs.CheckID == "" {
			continue
		}
		out = append(out, *rs)
	}
	return out
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func ruleIDs(props []oscalTypes.Property) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range props {
		if p.Name != model.PropRuleID || p.Value == "" || seen[p.Value] {
			continue
		}
		seen[p.Value] = true
		out = append(out, p.Value)
	}
	return out
}

// ToCatalog converts a parsed catalog.
func ToCatalog(source string, c *oscalTypes.Catalog) model.Catalog {
	out := model.Catalog{Source: source}
	if c == nil {
		return out
	}
	out.Title = c.Metadata.Title
	if c.Controls != nil {
		out.Controls = toControls(*c.Controls)
	}
	if c.Groups != nil {
		out.Groups = toGroups(*c.Groups)
	}
	return out
}

func toGroups(groups []oscalTypes.Group) []model.Group {
	out := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		mg := model.Group{ID: g.ID, Title: g.Title}
		if g.Controls != nil {
			mg.Controls = toControls(*g.Controls)
		}
		if g.Groups != nil {
			mg.Groups = toGroups(*g.Groups)
		}
		out = append(out, mg)
	}
	return out
}

func toControls(controls []oscalTypes.Control) []model.Control {
	out := make([]model.Control, 0, len(controls))
	for _, c := range controls {
		mc := model.Control{ID: c.ID, Title: c.Title}
		if c.Controls != nil {
			mc.Controls = toControls(*c.Controls)
		}
		out = append(out, mc)
	}
	return out
}
