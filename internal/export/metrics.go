package export

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
)

const metricsNamespace = "compdef"

// Registry builds a registry holding the report as gauges.
func Registry(r coverage.Report, definition string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"definition": definition}

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	gauge("controls_total", "Controls in the catalog.", float64(r.Coverage.Total))
	gauge("controls_covered", "Controls referenced by at least one rule.", float64(r.Coverage.Covered))
	gauge("controls_uncovered", "Controls without rules.", float64(r.Coverage.Uncovered))
	gauge("rules_total", "Rules in the component definition.", float64(r.Reuse.TotalRules))
	gauge("rule_check_edges", "Rule to check mappings.", float64(r.Reuse.TotalEdges))
	gauge("checks_unique", "Distinct assessment checks.", float64(r.Reuse.UniqueChecks))
	gauge("checks_reused", "Check references beyond each check's first use.", float64(r.Reuse.ReusedChecks))
	gauge("rules_with_implementation", "Rules with a recorded implementation.", float64(r.Implementation.With))

	checkCoverage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "component_check_coverage_percent",
		Help:        "Percentage of a component's rules with at least one check.",
		ConstLabels: labels,
	}, []string{"component"})
	for _, cp := range r.CheckCoverage {
		if cp.Percentage.Applicable {
			checkCoverage.WithLabelValues(cp.Title).Set(cp.Percentage.Value)
		}
	}
	reg.MustRegister(checkCoverage)

	componentControls := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "component_controls_covered",
		Help:        "Covered controls reached by a component.",
		ConstLabels: labels,
	}, []string{"component"})
	for _, cc := range r.ComponentControlCounts {
		componentControls.WithLabelValues(cc.Title).Set(float64(cc.Controls))
	}
	reg.MustRegister(componentControls)

	anomalies := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "anomalies",
		Help:        "Unresolved references by kind.",
		ConstLabels: labels,
	}, []string{"kind"})
	for _, a := range r.Anomalies {
		anomalies.WithLabelValues(a.Kind.String()).Inc()
	}
	reg.MustRegister(anomalies)

	return reg
}

// WriteMetrics writes the report in the Prometheus text format.
func WriteMetrics(path string, r coverage.Report, definition string) error {
	return prometheus.WriteToTextfile(path, Registry(r, definition))
}
