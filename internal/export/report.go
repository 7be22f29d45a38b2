package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
	"github.com/ethanolivertroy/compdef-insights/internal/insights"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// Fixed names of the report side files.
const (
	AnomaliesFile = "anomalies.json"
	MetricsFile   = "coverage.prom"
	SummaryFile   = "summary.md"
)

// Options configure WriteReport.
type Options struct {
	Formats    []Format
	Chart      render.Options
	Definition string
	Metrics    bool
}

// WriteReport creates dir and writes every series in every format, plus the
// anomaly list, the summary and optionally the metrics file. It stops at the
// first failure.
func WriteReport(r coverage.Report, series []insights.Series, dir string, opts Options) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}

	var results []Result
	for _, s := range series {
		for _, f := range opts.Formats {
			res := Series(s, f, dir, opts.Chart)
			if res.Err != nil {
				return results, res.Err
			}
			log.WithFields(log.Fields{"file": res.FilePath, "points": res.Count}).Debug("Wrote artifact")
			results = append(results, res)
		}
	}

	anomaliesPath := filepath.Join(dir, AnomaliesFile)
	if err := writeJSON(anomaliesPath, anomalyDocument(r)); err != nil {
		return results, errors.Wrapf(err, "writing %s", anomaliesPath)
	}
	results = append(results, Result{FilePath: anomaliesPath, Count: len(r.Anomalies) + len(r.Warnings)})

	summaryPath := filepath.Join(dir, SummaryFile)
	if err := writeString(summaryPath, Summary(r, series, opts.Definition)); err != nil {
		return results, errors.Wrapf(err, "writing %s", summaryPath)
	}
	results = append(results, Result{FilePath: summaryPath, Count: len(series)})

	if opts.Metrics {
		metricsPath := filepath.Join(dir, MetricsFile)
		if err := WriteMetrics(metricsPath, r, opts.Definition); err != nil {
			return results, errors.Wrapf(err, "writing %s", metricsPath)
		}
		results = append(results, Result{FilePath: metricsPath})
	}
	return results, nil
}

type anomalyFile struct {
	Anomalies []anomalyEntry                     `json:"anomalies"`
	Warnings  []coverage.EmptyDenominatorWarning `json:"warnings"`
}

type anomalyEntry struct {
	graph.Anomaly
	Message string `json:"message"`
}

func anomalyDocument(r coverage.Report) anomalyFile {
	doc := anomalyFile{
		Anomalies: make([]anomalyEntry, 0, len(r.Anomalies)),
		Warnings:  r.Warnings,
	}
	if doc.Warnings == nil {
		doc.Warnings = []coverage.EmptyDenominatorWarning{}
	}
	for _, a := range r.Anomalies {
		doc.Anomalies = append(doc.Anomalies, anomalyEntry{Anomaly: a, Message: a.String()})
	}
	return doc
}

// Summary renders the whole report as one markdown document.
func Summary(r coverage.Report, series []insights.Series, definition string) string {
	var b strings.Builder

	b.WriteString("# Component Definition Insights\n\n")
	if definition != "" {
		b.WriteString(fmt.Sprintf("**Definition:** %s\n\n", definition))
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- **Controls covered:** %d of %d (%s)\n",
		r.Coverage.Covered, r.Coverage.Total, coverage.Percent(r.Coverage.Covered, r.Coverage.Total)))
	b.WriteString(fmt.Sprintf("- **Rules:** %d\n", r.Reuse.TotalRules))
	b.WriteString(fmt.Sprintf("- **Assessment checks:** %d unique, %d re-used\n", r.Reuse.UniqueChecks, r.Reuse.ReusedChecks))
	b.WriteString(fmt.Sprintf("- **Rules with implementation:** %d (%s)\n", r.Implementation.With, r.Implementation.PercentWith))
	b.WriteString(fmt.Sprintf("- **Anomalies:** %d\n\n", len(r.Anomalies)))

	for _, s := range series {
		b.WriteString(fmt.Sprintf("## %s\n\n", s.Title))
		b.WriteString(fmt.Sprintf("`%s`\n\n", s.Artifact))
		table(&b, s.Points, true)
		b.WriteString("\n")
	}

	if len(r.Anomalies) > 0 || len(r.Warnings) > 0 {
		b.WriteString("## Data Quality\n\n")
		for _, a := range r.Anomalies {
			b.WriteString(fmt.Sprintf("- %s\n", a))
		}
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
		b.WriteString("\n")
	}
	return b.String()
}
