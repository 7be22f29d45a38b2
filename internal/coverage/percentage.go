package coverage

import (
	"encoding/json"
	"fmt"
)

// Percentage is a ratio scaled to 0..100, or not applicable when its
// denominator was zero.
type Percentage struct {
	Value      float64
	Applicable bool
}

// NotApplicable is the value of a percentage over an empty set.
var NotApplicable = Percentage{}

// Percent returns 100*num/den, or NotApplicable when den is zero.
func Percent(num, den int) Percentage {
	if den == 0 {
		return NotApplicable
	}
	return Percentage{Value: 100 * float64(num) / float64(den), Applicable: true}
}

func (p Percentage) String() string {
	if !p.Applicable {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", p.Value)
}

// MarshalJSON encodes the value as a number, or the string "N/A".
func (p Percentage) MarshalJSON() ([]byte, error) {
	if !p.Applicable {
		return json.Marshal("N/A")
	}
	return json.Marshal(p.Value)
}

// EmptyDenominatorWarning records a percentage that was reported as not
// applicable.
type EmptyDenominatorWarning struct {
	Metric  string `json:"metric"`
	Subject string `json:"subject"`
}

func (w EmptyDenominatorWarning) String() string {
	return fmt.Sprintf("%s: %s has no rules, percentage not applicable", w.Metric, w.Subject)
}
