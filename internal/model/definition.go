package model

import (
	"strings"
	"time"
)

// ValidationType is the component type that carries rule to check mappings.
const ValidationType = "Validation"

// Prop names used by trestle rule sets.
const (
	PropRuleID          = "Rule_Id"
	PropRuleDescription = "Rule_Description"
	PropCheckID         = "Check_Id"
	PropCheckDesc       = "Check_Description"
	PropImplementation  = "Rule_Data_Model_Fact_Type_Id_List"
)

// Definition is the strongly-typed view of one component definition.
type Definition struct {
	Title        string
	Version      string
	LastModified time.Time
	Components   []Component
}

// Component is one defined component.
type Component struct {
	ID              string
	Title           string
	Type            string
	RuleSets        []RuleSet
	Implementations []ControlImplementation
}

// IsValidation reports whether the component maps rules to checks.
func (c Component) IsValidation() bool {
	return c.Type == ValidationType
}

// RuleSet is the group of component props that share one remarks value.
type RuleSet struct {
	ID             string
	RuleID         string
	Description    string
	CheckID        string
	Implementation string
}

// ControlImplementation binds a component to controls of one source.
type ControlImplementation struct {
	Source       string
	Requirements []Requirement
}

// Requirement is an implemented requirement: one control and the rules that
// address it.
type Requirement struct {
	ControlID string
	Rules     []string
}

// ReducedTitle returns the last word of the definition title, used as the
// chart name prefix.
func (d Definition) ReducedTitle() string {
	words := strings.Fields(d.Title)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// Sources returns the distinct control implementation sources in document
// order, skipping empty ones and validation components.
func (d Definition) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range d.Components {
		if c.IsValidation() {
			continue
		}
		for _, ci := range c.Implementations {
			if ci.Source == "" || seen[ci.Source] {
				continue
			}
			seen[ci.Source] = true
			out = append(out, ci.Source)
		}
	}
	return out
}
