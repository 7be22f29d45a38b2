// Package insights turns coverage reports into ordered, plot-ready series.
package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

// Kind tells a renderer how to draw a series.
type Kind int

const (
	KindPie Kind = iota
	KindBar
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindPie:
		return "pie"
	case KindBar:
		return "bar"
	case KindHistogram:
		return "histogram"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Class is the colour class of a point.
type Class string

const (
	ClassGood  Class = "good"
	ClassWarn  Class = "warn"
	ClassOther Class = "other"
)

// Point is one (label, value) pair.
type Point struct {
	Label         string  `json:"label"`
	Value         float64 `json:"value"`
	NotApplicable bool    `json:"not_applicable,omitempty"`
	Class         Class   `json:"class,omitempty"`
}

// DisplayValue formats the value for labels and tables.
func (p Point) DisplayValue() string {
	if p.NotApplicable {
		return "N/A"
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

// Series is a rendering-ready metric.
type Series struct {
	Artifact string  `json:"artifact"`
	Title    string  `json:"title"`
	Kind     Kind    `json:"kind"`
	XLabel   string  `json:"x_label,omitempty"`
	YLabel   string  `json:"y_label,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Left     string  `json:"left_heading,omitempty"`
	Right    string  `json:"right_heading,omitempty"`
	Points   []Point `json:"points"`
	Detail   []Point `json:"detail,omitempty"`
}

// UnitPercent marks series whose values are percentages.
const UnitPercent = "%"

// Total sums the applicable point values.
func (s Series) Total() float64 {
	var t float64
	for _, p := range s.Points {
		if !p.NotApplicable {
			t += p.Value
		}
	}
	return t
}

// Meta carries the definition details used in titles and headings.
type Meta struct {
	Name            string
	Version         string
	LastModified    time.Time
	CatalogControls int
}

// MetaFor builds the chart metadata of a definition.
func MetaFor(def model.Definition, catalogControls int) Meta {
	return Meta{
		Name:            def.ReducedTitle(),
		Version:         def.Version,
		LastModified:    def.LastModified,
		CatalogControls: catalogControls,
	}
}

func (m Meta) controls() string {
	if m.Name == "" {
		return "Controls"
	}
	return m.Name + " Controls"
}

func (m Meta) headings(s *Series) {
	s.Left = "version: " + m.Version
	if !m.LastModified.IsZero() {
		s.Right = "last modified date: " + m.LastModified.Format("2006-01-02")
	}
}

// SortPoints orders points by ascending value, then ascending label.
// Not-applicable points go last, ordered by label.
func SortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.NotApplicable != b.NotApplicable {
			return !a.NotApplicable
		}
		if !a.NotApplicable && a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Label < b.Label
	})
}
