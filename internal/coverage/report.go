package coverage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ethanolivertroy/compdef-insights/internal/graph"
)

// Report is the full metric set of one run.
type Report struct {
	Coverage               CoverageSummary           `json:"coverage"`
	ControlsToComponents   []Bucket                  `json:"controls_to_components"`
	ControlComponentCounts []ControlCount            `json:"control_component_counts"`
	ComponentsToControls   []Bucket                  `json:"components_to_controls"`
	ComponentControlCounts []ComponentCount          `json:"component_control_counts"`
	CheckCoverage          []ComponentPercentage     `json:"check_coverage"`
	Reuse                  ReuseCounts               `json:"reuse"`
	Implementation         ImplementationSummary     `json:"implementation"`
	Anomalies              []graph.Anomaly           `json:"anomalies"`
	Warnings               []EmptyDenominatorWarning `json:"warnings"`
}

// Compute runs every query in turn.
func (a *Aggregator) Compute() Report {
	r := Report{
		Coverage:               a.ControlCoverage(),
		ControlsToComponents:   a.ControlsToComponents(),
		ControlComponentCounts: a.ControlComponentCounts(),
		ComponentsToControls:   a.ComponentsToControls(),
		ComponentControlCounts: a.ComponentControlCounts(),
		CheckCoverage:          a.ComponentCheckCoverage(),
		Reuse:                  a.RuleCheckCounts(),
		Implementation:         a.ImplementationExistence(),
	}
	a.finish(&r)
	return r
}

// ComputeConcurrent runs the queries in parallel. The result equals
// Compute's.
func (a *Aggregator) ComputeConcurrent(ctx context.Context) (Report, error) {
	var r Report
	eg, ctx := errgroup.WithContext(ctx)
	run := func(f func()) {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f()
			return nil
		})
	}

	run(func() { r.Coverage = a.ControlCoverage() })
	run(func() {
		r.ControlComponentCounts = a.ControlComponentCounts()
		r.ControlsToComponents = a.ControlsToComponents()
	})
	run(func() {
		r.ComponentControlCounts = a.ComponentControlCounts()
		r.ComponentsToControls = a.ComponentsToControls()
	})
	run(func() { r.CheckCoverage = a.ComponentCheckCoverage() })
	run(func() { r.Reuse = a.RuleCheckCounts() })
	run(func() { r.Implementation = a.ImplementationExistence() })

	if err := eg.Wait(); err != nil {
		return Report{}, err
	}
	a.finish(&r)
	return r, nil
}

func (a *Aggregator) finish(r *Report) {
	r.Anomalies = a.g.Anomalies()
	r.Warnings = nil
	for _, cp := range r.CheckCoverage {
		if !cp.Percentage.Applicable {
			r.Warnings = append(r.Warnings, EmptyDenominatorWarning{
				Metric:  MetricComponentCheckCoverage,
				Subject: cp.Title,
			})
		}
	}
	if !r.Implementation.PercentWith.Applicable {
		r.Warnings = append(r.Warnings, EmptyDenominatorWarning{
			Metric:  MetricImplementationsExist,
			Subject: "definition",
		})
	}
}
