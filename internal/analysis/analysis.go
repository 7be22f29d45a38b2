// Package analysis runs the load, index, graph, aggregate and format steps
// for one component definition.
package analysis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
	"github.com/ethanolivertroy/compdef-insights/internal/insights"
	"github.com/ethanolivertroy/compdef-insights/internal/oscal"
)

// Options select the inputs of a run.
type Options struct {
	BasePath   string
	FilePath   string
	Policy     graph.ReferencePolicy
	Concurrent bool
}

// Result is everything derived from one workspace. It is read-only.
type Result struct {
	Workspace  *oscal.Workspace
	Index      *catalog.Index
	Graph      *graph.Graph
	Aggregator *coverage.Aggregator
	Report     coverage.Report
	Meta       insights.Meta
	Series     []insights.Series
	Elapsed    time.Duration
}

// Run loads the workspace and analyzes it.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	ws, err := oscal.NewLoader(opts.BasePath).Load(opts.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "loading workspace")
	}
	res, err := Analyze(ctx, ws, opts)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Analyze builds the index and graph of a loaded workspace and computes the
// report. Structural errors abort before any metric is computed.
func Analyze(ctx context.Context, ws *oscal.Workspace, opts Options) (*Result, error) {
	idx, err := catalog.New(ws.Catalogs...)
	if err != nil {
		return nil, errors.Wrap(err, "indexing catalog")
	}
	g, err := graph.Build(ws.Definition, idx, graph.WithReferencePolicy(opts.Policy))
	if err != nil {
		return nil, errors.Wrap(err, "building relationship graph")
	}

	agg := coverage.New(g, idx)
	var report coverage.Report
	if opts.Concurrent {
		report, err = agg.ComputeConcurrent(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "computing coverage")
		}
	} else {
		report = agg.Compute()
	}

	for _, a := range report.Anomalies {
		log.WithFields(log.Fields{
			"kind":     a.Kind.String(),
			"excluded": a.Excluded,
		}).Warn(a.String())
	}
	for _, w := range report.Warnings {
		log.Warn(w.String())
	}

	meta := insights.MetaFor(ws.Definition, idx.Len())
	log.WithFields(log.Fields{
		"controls":   report.Coverage.Total,
		"covered":    report.Coverage.Covered,
		"components": len(g.Components()),
		"rules":      report.Reuse.TotalRules,
	}).Info("Analyzed component definition")

	return &Result{
		Workspace:  ws,
		Index:      idx,
		Graph:      g,
		Aggregator: agg,
		Report:     report,
		Meta:       meta,
		Series:     insights.Format(report, meta),
	}, nil
}

// SeriesByArtifact returns the series with the given artifact name.
func (r *Result) SeriesByArtifact(artifact string) (insights.Series, bool) {
	for _, s := range r.Series {
		if s.Artifact == artifact {
			return s, true
		}
	}
	return insights.Series{}, false
}
