package graph

import (
	"fmt"
	"strings"
)

// ReferencePolicy decides what happens to references that cannot be
// resolved against the catalog or the rule definitions.
type ReferencePolicy int

const (
	// PolicyExclude records an anomaly and drops the reference.
	PolicyExclude ReferencePolicy = iota
	// PolicyInclude records an anomaly and keeps the reference.
	PolicyInclude
	// PolicyFail aborts the build on the first unresolved reference.
	PolicyFail
)

var policyNames = map[ReferencePolicy]string{
	PolicyExclude: "exclude",
	PolicyInclude: "include",
	PolicyFail:    "fail",
}

func (p ReferencePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ReferencePolicy(%d)", int(p))
}

// ParsePolicy parses "exclude", "include" or "fail". An empty string is
// PolicyExclude.
func ParsePolicy(s string) (ReferencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclude", "warn":
		return PolicyExclude, nil
	case "include":
		return PolicyInclude, nil
	case "fail", "strict":
		return PolicyFail, nil
	}
	return PolicyExclude, fmt.Errorf("unknown reference policy %q (want exclude, include or fail)", s)
}

// Option configures Build.
type Option func(*options)

type options struct {
	policy ReferencePolicy
}

// WithReferencePolicy sets the policy for unresolved references.
func WithReferencePolicy(p ReferencePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
