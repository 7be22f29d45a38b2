package graph

import "fmt"

// AnomalyKind classifies an unresolved reference.
type AnomalyKind int

const (
	// UnresolvedControl is an implemented requirement whose control id is not
	// in the catalog index.
	UnresolvedControl AnomalyKind = iota
	// UnresolvedRule is a rule id referenced by a requirement or a validation
	// rule set that no component defines.
	UnresolvedRule
	// OrphanCheck is a validation rule set carrying a check but no rule.
	OrphanCheck
)

func (k AnomalyKind) String() string {
	switch k {
	case UnresolvedControl:
		return "unresolved-control"
	case UnresolvedRule:
		return "unresolved-rule"
	case OrphanCheck:
		return "orphan-check"
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

// MarshalText lets anomalies export with readable kinds.
func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Anomaly is a non-fatal unresolved reference found while building the graph.
type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	Component string      `json:"component"`
	ControlID string      `json:"control_id,omitempty"`
	RuleID    string      `json:"rule_id,omitempty"`
	CheckID   string      `json:"check_id,omitempty"`
	Excluded  bool        `json:"excluded"`
}

func (a Anomaly) String() string {
	switch a.Kind {
	case UnresolvedControl:
		return fmt.Sprintf("%s: component %q references control %q not in catalog", a.Kind, a.Component, a.ControlID)
	case UnresolvedRule:
		if a.ControlID != "" {
			return fmt.Sprintf("%s: component %q maps undefined rule %q to control %q", a.Kind, a.Component, a.RuleID, a.ControlID)
		}
		return fmt.Sprintf("%s: component %q maps checks for undefined rule %q", a.Kind, a.Component, a.RuleID)
	case OrphanCheck:
		return fmt.Sprintf("%s: component %q lists check %q without a rule", a.Kind, a.Component, a.CheckID)
	}
	return a.Kind.String()
}

// RuleIdentityError reports a rule id defined twice in the same role of one
// component.
type RuleIdentityError struct {
	Component string
	RuleID    string
	Role      string
}

func (e *RuleIdentityError) Error() string {
	return fmt.Sprintf("rule identity: %s rule %q is duplicated in component %q", e.Role, e.RuleID, e.Component)
}

// UnresolvedReferenceError is returned under PolicyFail.
type UnresolvedReferenceError struct {
	Anomaly Anomaly
}

func (e *UnresolvedReferenceError) Error() string {
	return "unresolved reference: " + e.Anomaly.String()
}
