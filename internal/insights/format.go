package insights

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
)

// Format converts a report into its six series, in artifact order.
func Format(r coverage.Report, m Meta) []Series {
	return []Series{
		CoverageSeries(r.Coverage, m),
		ControlsToComponentsSeries(r.ControlsToComponents, r.ControlComponentCounts, r.Coverage, m),
		ComponentsToControlsSeries(r.ComponentsToControls, r.ComponentControlCounts, m),
		CheckCoverageSeries(r.CheckCoverage, m),
		ReuseSeries(r.Reuse, m),
		ImplementationSeries(r.Implementation, m),
	}
}

// CoverageSeries is the covered/not covered split.
func CoverageSeries(c coverage.CoverageSummary, m Meta) Series {
	s := Series{
		Artifact: coverage.MetricControlsCoverage,
		Title:    m.controls() + " Coverage",
		Kind:     KindPie,
		Points: []Point{
			{Label: m.controls() + " Covered", Value: float64(c.Covered), Class: ClassGood},
			{Label: m.controls() + " Not Covered", Value: float64(c.Uncovered), Class: ClassOther},
		},
	}
	m.headings(&s)
	return s
}

// ControlsToComponentsSeries is the histogram of covered controls by
// component count, with the per-control counts as detail.
func ControlsToComponentsSeries(buckets []coverage.Bucket, counts []coverage.ControlCount, c coverage.CoverageSummary, m Meta) Series {
	s := Series{
		Artifact: coverage.MetricControlsToComponents,
		Title:    m.controls() + " by Number of Components",
		Kind:     KindHistogram,
		XLabel:   "Number of Components",
		YLabel:   fmt.Sprintf("%s: %d covered of %d in catalog", m.controls(), c.Covered, c.Total),
		Points:   bucketPoints(buckets),
	}
	ids := make([]string, 0, len(counts))
	byID := make(map[string]int, len(counts))
	for _, cc := range counts {
		ids = append(ids, cc.ControlID)
		byID[cc.ControlID] = cc.Components
	}
	catalog.SortControlIDs(ids)
	for _, id := range ids {
		s.Detail = append(s.Detail, Point{Label: id, Value: float64(byID[id])})
	}
	m.headings(&s)
	return s
}

// ComponentsToControlsSeries is the histogram of components by covered
// control count, with the per-component counts as detail.
func ComponentsToControlsSeries(buckets []coverage.Bucket, counts []coverage.ComponentCount, m Meta) Series {
	// Components without covered controls stay in the detail but not in
	// the histogram or its count.
	plotted := 0
	for _, b := range buckets {
		plotted += b.Count
	}
	s := Series{
		Artifact: coverage.MetricComponentsToControls,
		Title:    "Components by Number of " + m.controls(),
		Kind:     KindHistogram,
		XLabel:   "Number of " + m.controls(),
		YLabel:   fmt.Sprintf("Components: %d", plotted),
		Points:   bucketPoints(buckets),
	}
	for _, cc := range counts {
		s.Detail = append(s.Detail, Point{Label: cc.Title, Value: float64(cc.Controls)})
	}
	SortPoints(s.Detail)
	m.headings(&s)
	return s
}

// CheckCoverageSeries is the per-component check coverage table. Points
// below 100 percent are marked warn.
func CheckCoverageSeries(list []coverage.ComponentPercentage, m Meta) Series {
	s := Series{
		Artifact: coverage.MetricComponentCheckCoverage,
		Title:    "Component Check Coverage",
		Kind:     KindBar,
		Unit:     UnitPercent,
		XLabel:   "Percentage of " + m.controls() + " with assessment checks",
		YLabel:   fmt.Sprintf("Components: %d", len(list)),
	}
	for _, cp := range list {
		p := Point{Label: cp.Title}
		switch {
		case !cp.Percentage.Applicable:
			p.NotApplicable = true
			p.Class = ClassOther
		case cp.Percentage.Value < 100:
			p.Value = cp.Percentage.Value
			p.Class = ClassWarn
		default:
			p.Value = cp.Percentage.Value
			p.Class = ClassGood
		}
		s.Points = append(s.Points, p)
	}
	SortPoints(s.Points)
	m.headings(&s)
	return s
}

// Reuse labels, in display order.
const (
	LabelRules        = "Rules"
	LabelUniqueChecks = "Assessment Checks (unique)"
	LabelReusedChecks = "Assessment Checks (re-used)"
)

// ReuseSeries is the rules and checks counts. Categories keep a fixed order.
func ReuseSeries(rc coverage.ReuseCounts, m Meta) Series {
	s := Series{
		Artifact: coverage.MetricRulesChecksCounts,
		Title:    "Rules and Assessment Checks",
		Kind:     KindBar,
		XLabel:   "Count",
		Points: []Point{
			{Label: LabelRules, Value: float64(rc.TotalRules)},
			{Label: LabelUniqueChecks, Value: float64(rc.UniqueChecks)},
			{Label: LabelReusedChecks, Value: float64(rc.ReusedChecks)},
		},
	}
	m.headings(&s)
	return s
}

// Implementation labels.
const (
	LabelImplementationExists  = "Implementation Exists"
	LabelImplementationMissing = "Implementation Missing"
)

// ImplementationSeries is the implementation exists/missing split. Empty
// slices are dropped; with no rules both slices are not applicable.
func ImplementationSeries(impl coverage.ImplementationSummary, m Meta) Series {
	s := Series{
		Artifact: coverage.MetricImplementationsExist,
		Title:    "Rule Implementation Status",
		Kind:     KindPie,
	}
	if impl.TotalRules == 0 {
		s.Points = []Point{
			{Label: LabelImplementationExists, NotApplicable: true, Class: ClassGood},
			{Label: LabelImplementationMissing, NotApplicable: true, Class: ClassOther},
		}
		m.headings(&s)
		return s
	}
	if impl.With > 0 {
		s.Points = append(s.Points, Point{Label: LabelImplementationExists, Value: float64(impl.With), Class: ClassGood})
	}
	if impl.Without > 0 {
		s.Points = append(s.Points, Point{Label: LabelImplementationMissing, Value: float64(impl.Without), Class: ClassOther})
	}
	m.headings(&s)
	return s
}

func bucketPoints(buckets []coverage.Bucket) []Point {
	sorted := make([]coverage.Bucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})
	out := make([]Point, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, Point{Label: strconv.Itoa(b.Value), Value: float64(b.Count)})
	}
	return out
}
