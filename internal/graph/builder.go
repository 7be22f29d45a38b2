package graph

import (
	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

type builder struct {
	g       *Graph
	idx     *catalog.Index
	policy  ReferencePolicy
	defined set
	strict  bool
}

// Build constructs the relationship graph of def against idx.
//
// Rules are defined by rule sets on implementing components and mapped to
// checks by rule sets on validation components. When no component defines
// any rule, rule references are not checked.
func Build(def model.Definition, idx *catalog.Index, opts ...Option) (*Graph, error) {
	o := options{policy: PolicyExclude}
	for _, opt := range opts {
		opt(&o)
	}

	b := &builder{
		g: &Graph{
			controlRules:   make(map[string]set),
			ruleComponents: make(map[string]set),
			ruleChecks:     make(map[string]set),
			ruleImpl:       make(map[string]bool),
			componentRules: make(map[string]set),
			componentCtrls: make(map[string]set),
			descriptions:   make(map[string]string),
			rules:          make(set),
		},
		idx:     idx,
		policy:  o.policy,
		defined: make(set),
	}

	if err := b.collectDefinitions(def.Components); err != nil {
		return nil, err
	}
	b.strict = len(b.defined) > 0

	seen := make(map[string]bool)
	for _, c := range def.Components {
		if c.IsValidation() {
			continue
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			b.g.components = append(b.g.components, ComponentRef{ID: c.ID, Title: c.Title})
		}
		if err := b.addImplementations(c); err != nil {
			return nil, err
		}
	}
	for _, c := range def.Components {
		if !c.IsValidation() {
			continue
		}
		if err := b.addValidation(c); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

// collectDefinitions records rule definitions and rejects duplicates within
// one component role.
func (b *builder) collectDefinitions(components []model.Component) error {
	for _, c := range components {
		role := "defined"
		if c.IsValidation() {
			role = "validation"
		}
		local := make(set)
		for _, rs := range c.RuleSets {
			if rs.RuleID == "" {
				continue
			}
			if _, dup := local[rs.RuleID]; dup {
				return &RuleIdentityError{Component: c.Title, RuleID: rs.RuleID, Role: role}
			}
			local.add(rs.RuleID)
			if c.IsValidation() {
				continue
			}
			b.defined.add(rs.RuleID)
			b.g.rules.add(rs.RuleID)
			if _, ok := b.g.descriptions[rs.RuleID]; !ok && rs.Description != "" {
				b.g.descriptions[rs.RuleID] = rs.Description
			}
		}
	}
	return nil
}

// report records an anomaly and reports whether the reference is kept.
func (b *builder) report(a Anomaly) (bool, error) {
	a.Excluded = b.policy != PolicyInclude || a.Kind == OrphanCheck
	b.g.anomalies = append(b.g.anomalies, a)
	if b.policy == PolicyFail {
		return false, &UnresolvedReferenceError{Anomaly: a}
	}
	return !a.Excluded, nil
}

func (b *builder) addImplementations(c model.Component) error {
	for _, ci := range c.Implementations {
		for _, req := range ci.Requirements {
			if len(req.Rules) == 0 {
				continue
			}
			if !b.idx.Contains(req.ControlID) {
				keep, err := b.report(Anomaly{Kind: UnresolvedControl, Component: c.Title, ControlID: req.ControlID})
				if err != nil {
					return err
				}
				if !keep {
					continue
				}
			}
			for _, rule := range req.Rules {
				if b.strict {
					if _, ok := b.defined[rule]; !ok {
						keep, err := b.report(Anomaly{Kind: UnresolvedRule, Component: c.Title, ControlID: req.ControlID, RuleID: rule})
						if err != nil {
							return err
						}
						if !keep {
							continue
						}
					}
				}
				addTo(b.g.controlRules, req.ControlID, rule)
				addTo(b.g.ruleComponents, rule, c.ID)
				addTo(b.g.componentRules, c.ID, rule)
				addTo(b.g.componentCtrls, c.ID, req.ControlID)
				b.g.rules.add(rule)
			}
		}
	}
	return nil
}

func (b *builder) addValidation(c model.Component) error {
	for _, rs := range c.RuleSets {
		if rs.RuleID == "" {
			if rs.CheckID == "" {
				continue
			}
			if _, err := b.report(Anomaly{Kind: OrphanCheck, Component: c.Title, CheckID: rs.CheckID}); err != nil {
				return err
			}
			continue
		}
		if b.strict {
			if _, ok := b.defined[rs.RuleID]; !ok {
				keep, err := b.report(Anomaly{Kind: UnresolvedRule, Component: c.Title, RuleID: rs.RuleID, CheckID: rs.CheckID})
				if err != nil {
					return err
				}
				if !keep {
					continue
				}
			}
		}
		b.g.rules.add(rs.RuleID)
		if rs.Implementation != "" {
			b.g.ruleImpl[rs.RuleID] = true
		}
		if rs.CheckID != "" {
			addTo(b.g.ruleChecks, rs.RuleID, rs.CheckID)
		}
	}
	return nil
}
