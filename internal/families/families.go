// Package families groups catalog controls by their NIST 800-53 family.
package families

import (
	"sort"
	"strings"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
)

// Family is a NIST 800-53 Rev 5 control family.
type Family struct {
	ID    string `json:"id"`    // e.g., "ac"
	Title string `json:"title"` // e.g., "Access Control"
}

// NIST80053 lists the Rev 5 families keyed by lower-case prefix.
var NIST80053 = map[string]Family{
	"ac": {ID: "ac", Title: "Access Control"},
	"at": {ID: "at", Title: "Awareness and Training"},
	"au": {ID: "au", Title: "Audit and Accountability"},
	"ca": {ID: "ca", Title: "Assessment, Authorization, and Monitoring"},
	"cm": {ID: "cm", Title: "Configuration Management"},
	"cp": {ID: "cp", Title: "Contingency Planning"},
	"ia": {ID: "ia", Title: "Identification and Authentication"},
	"ir": {ID: "ir", Title: "Incident Response"},
	"ma": {ID: "ma", Title: "Maintenance"},
	"mp": {ID: "mp", Title: "Media Protection"},
	"pe": {ID: "pe", Title: "Physical and Environmental Protection"},
	"pl": {ID: "pl", Title: "Planning"},
	"pm": {ID: "pm", Title: "Program Management"},
	"ps": {ID: "ps", Title: "Personnel Security"},
	"pt": {ID: "pt", Title: "PII Processing and Transparency"},
	"ra": {ID: "ra", Title: "Risk Assessment"},
	"sa": {ID: "sa", Title: "System and Services Acquisition"},
	"sc": {ID: "sc", Title: "System and Communications Protection"},
	"si": {ID: "si", Title: "System and Information Integrity"},
	"sr": {ID: "sr", Title: "Supply Chain Risk Management"},
}

// Lookup returns the family of a control id.
func Lookup(controlID string) (Family, bool) {
	f, ok := NIST80053[strings.ToLower(catalog.Family(controlID))]
	return f, ok
}

// Title returns the family title for a control id, or the upper-cased prefix
// for families outside NIST 800-53.
func Title(controlID string) string {
	if f, ok := Lookup(controlID); ok {
		return f.Title
	}
	return strings.ToUpper(catalog.Family(controlID))
}

// Coverage is the covered share of one family.
type Coverage struct {
	Family     string              `json:"family"`
	Title      string              `json:"title"`
	Total      int                 `json:"total"`
	Covered    int                 `json:"covered"`
	Percentage coverage.Percentage `json:"percentage"`
	Uncovered  []string            `json:"uncovered,omitempty"`
}

// Breakdown splits the catalog controls by family. Families are ordered by
// prefix; uncovered ids keep catalog order.
func Breakdown(ids []string, covered func(string) bool) []Coverage {
	byFamily := make(map[string]*Coverage)
	for _, id := range ids {
		prefix := strings.ToLower(catalog.Family(id))
		c, ok := byFamily[prefix]
		if !ok {
			c = &Coverage{Family: prefix, Title: Title(id)}
			byFamily[prefix] = c
		}
		c.Total++
		if covered(id) {
			c.Covered++
		} else {
			c.Uncovered = append(c.Uncovered, id)
		}
	}

	out := make([]Coverage, 0, len(byFamily))
	for _, c := range byFamily {
		c.Percentage = coverage.Percent(c.Covered, c.Total)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Family < out[j].Family
	})
	return out
}

// Find returns the breakdown entry of a family id or title.
func Find(list []Coverage, name string) (Coverage, bool) {
	for _, c := range list {
		if strings.EqualFold(c.Family, name) || strings.EqualFold(c.Title, name) {
			return c, true
		}
	}
	return Coverage{}, false
}
