package agent

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/catalog"
	"github.com/ethanolivertroy/compdef-insights/internal/coverage"
	"github.com/ethanolivertroy/compdef-insights/internal/export"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

const defaultLimit = 20

// Toolset answers tool calls from one analysis result. The result is
// read-only, so a Toolset is safe for concurrent calls.
type Toolset struct {
	res       *analysis.Result
	exportDir string
}

// NewToolset returns tools over res. Exports go under exportDir, or
// ~/.compdef-insights-exports when it is empty.
func NewToolset(res *analysis.Result, exportDir string) *Toolset {
	return &Toolset{res: res, exportDir: exportDir}
}

func (t *Toolset) outputDir() string {
	if t.exportDir != "" {
		return t.exportDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".compdef-insights-exports")
}

// --- Tool Input/Output Types ---

// SummaryParams for get_coverage_summary tool
type SummaryParams struct{}

// SummaryResult for get_coverage_summary tool
type SummaryResult struct {
	Definition            string `json:"definition"`
	Version               string `json:"version,omitempty"`
	CatalogControls       int    `json:"catalog_controls"`
	CoveredControls       int    `json:"covered_controls"`
	UncoveredControls     int    `json:"uncovered_controls"`
	CoveredPercent        string `json:"covered_percent"`
	Components            int    `json:"components"`
	Rules                 int    `json:"rules"`
	RuleCheckEdges        int    `json:"rule_check_edges"`
	UniqueChecks          int    `json:"unique_checks"`
	ReusedChecks          int    `json:"reused_checks"`
	ImplementationPercent string `json:"rules_with_implementation_percent"`
	Anomalies             int    `json:"anomalies"`
}

// ControlParams for get_control_details tool
type ControlParams struct {
	ControlID string `json:"control_id" jsonschema:"Control ID as written in the catalog (e.g., ac-2, ac-2.1)"`
}

// ControlResult for get_control_details tool
type ControlResult struct {
	Found   bool                   `json:"found"`
	Control analysis.ControlDetail `json:"control,omitempty"`
}

// UncoveredParams for list_uncovered_controls tool
type UncoveredParams struct {
	Family string `json:"family,omitempty" jsonschema:"Only controls of this family prefix (e.g., ac, au)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default 20)"`
}

// ControlSummary is a condensed view of a catalog control.
type ControlSummary struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// UncoveredResult for list_uncovered_controls tool
type UncoveredResult struct {
	Count    int              `json:"count"`
	Total    int              `json:"total"`
	Controls []ControlSummary `json:"controls"`
}

// ComponentParams for get_component_coverage tool
type ComponentParams struct {
	Component string `json:"component,omitempty" jsonschema:"Component title or uuid; empty lists every component"`
}

// ComponentSummary describes one component.
type ComponentSummary struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Rules           int      `json:"rules"`
	RulesWithChecks int      `json:"rules_with_checks"`
	CheckCoverage   string   `json:"check_coverage"`
	CoveredControls int      `json:"covered_controls"`
	Controls        []string `json:"controls,omitempty"`
}

// ComponentResult for get_component_coverage tool
type ComponentResult struct {
	Found      bool               `json:"found"`
	Components []ComponentSummary `json:"components"`
}

// RuleParams for get_rule_details tool
type RuleParams struct {
	RuleID string `json:"rule_id" jsonschema:"Rule ID as it appears in Rule_Id props"`
}

// RuleResult for get_rule_details tool
type RuleResult struct {
	Found    bool                `json:"found"`
	Rule     analysis.RuleDetail `json:"rule,omitempty"`
	Controls []string            `json:"controls,omitempty"`
}

// AnomalyParams for list_anomalies tool
type AnomalyParams struct {
	Kind string `json:"kind,omitempty" jsonschema:"Filter: unresolved-control, unresolved-rule or orphan-check"`
}

// AnomalySummary is one data-quality finding.
type AnomalySummary struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Excluded bool   `json:"excluded"`
}

// AnomalyResult for list_anomalies tool
type AnomalyResult struct {
	Count     int              `json:"count"`
	Anomalies []AnomalySummary `json:"anomalies"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// ExportParams for export_report tool
type ExportParams struct {
	Formats string `json:"formats,omitempty" jsonschema:"Comma separated formats: txt, json, csv, md, yaml (default: all)"`
}

// ExportResult for export_report tool
type ExportResult struct {
	Success   bool     `json:"success"`
	Directory string   `json:"directory,omitempty"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// --- Tool Implementations ---

func (t *Toolset) coverageSummary(ctx tool.Context, params SummaryParams) (SummaryResult, error) {
	r := t.res.Report
	return SummaryResult{
		Definition:            t.res.Workspace.Definition.Title,
		Version:               t.res.Meta.Version,
		CatalogControls:       r.Coverage.Total,
		CoveredControls:       r.Coverage.Covered,
		UncoveredControls:     r.Coverage.Uncovered,
		CoveredPercent:        coverage.Percent(r.Coverage.Covered, r.Coverage.Total).String(),
		Components:            len(t.res.Graph.Components()),
		Rules:                 r.Reuse.TotalRules,
		RuleCheckEdges:        r.Reuse.TotalEdges,
		UniqueChecks:          r.Reuse.UniqueChecks,
		ReusedChecks:          r.Reuse.ReusedChecks,
		ImplementationPercent: r.Implementation.PercentWith.String(),
		Anomalies:             len(r.Anomalies),
	}, nil
}

func (t *Toolset) controlDetails(ctx tool.Context, params ControlParams) (ControlResult, error) {
	id := strings.ToLower(strings.TrimSpace(params.ControlID))
	if id == "" {
		return ControlResult{}, errors.New("control_id is required")
	}
	d := t.res.Control(id)
	if !d.InCatalog && len(d.Rules) == 0 {
		return ControlResult{Found: false}, nil
	}
	return ControlResult{Found: true, Control: d}, nil
}

func (t *Toolset) uncoveredControls(ctx tool.Context, params UncoveredParams) (UncoveredResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	family := strings.ToLower(strings.TrimSpace(params.Family))

	var matched []string
	for _, id := range t.res.Aggregator.UncoveredControls() {
		if family == "" || strings.ToLower(catalog.Family(id)) == family {
			matched = append(matched, id)
		}
	}

	out := UncoveredResult{Total: len(matched)}
	for _, id := range matched {
		if len(out.Controls) >= limit {
			break
		}
		out.Controls = append(out.Controls, ControlSummary{ID: id, Title: t.res.Index.Title(id)})
	}
	out.Count = len(out.Controls)
	return out, nil
}

func (t *Toolset) componentCoverage(ctx tool.Context, params ComponentParams) (ComponentResult, error) {
	controls := make(map[string]int)
	for _, c := range t.res.Report.ComponentControlCounts {
		controls[c.ComponentID] = c.Controls
	}

	name := strings.TrimSpace(params.Component)
	var out ComponentResult
	for _, p := range t.res.Report.CheckCoverage {
		if name != "" && !strings.EqualFold(p.Title, name) && p.ComponentID != name {
			continue
		}
		s := ComponentSummary{
			ID:              p.ComponentID,
			Title:           p.Title,
			Rules:           p.Rules,
			RulesWithChecks: p.RulesWithChecks,
			CheckCoverage:   p.Percentage.String(),
			CoveredControls: controls[p.ComponentID],
		}
		if name != "" {
			s.Controls = t.res.Graph.ComponentControls(p.ComponentID)
			catalog.SortControlIDs(s.Controls)
		}
		out.Components = append(out.Components, s)
	}
	out.Found = len(out.Components) > 0
	return out, nil
}

func (t *Toolset) ruleDetails(ctx tool.Context, params RuleParams) (RuleResult, error) {
	id := strings.TrimSpace(params.RuleID)
	if id == "" {
		return RuleResult{}, errors.New("rule_id is required")
	}
	rules := t.res.Graph.Rules()
	i := sort.SearchStrings(rules, id)
	if i == len(rules) || rules[i] != id {
		return RuleResult{Found: false}, nil
	}
	return RuleResult{
		Found:    true,
		Rule:     t.res.Rule(id),
		Controls: t.res.RuleControls(id),
	}, nil
}

func (t *Toolset) anomalies(ctx tool.Context, params AnomalyParams) (AnomalyResult, error) {
	kind := strings.ToLower(strings.TrimSpace(params.Kind))
	var out AnomalyResult
	for _, a := range t.res.Report.Anomalies {
		if kind != "" && a.Kind.String() != kind {
			continue
		}
		out.Anomalies = append(out.Anomalies, AnomalySummary{
			Kind:     a.Kind.String(),
			Message:  a.String(),
			Excluded: a.Excluded,
		})
	}
	for _, w := range t.res.Report.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	out.Count = len(out.Anomalies)
	return out, nil
}

func (t *Toolset) exportReport(ctx tool.Context, params ExportParams) (ExportResult, error) {
	formats := export.AllFormats
	if params.Formats != "" {
		parsed, err := export.ParseFormats(strings.Split(params.Formats, ","))
		if err != nil {
			return ExportResult{Success: false, Error: err.Error()}, nil
		}
		formats = parsed
	}

	dir := t.outputDir()
	results, err := export.WriteReport(t.res.Report, t.res.Series, dir, export.Options{
		Formats:    formats,
		Chart:      render.DefaultOptions,
		Definition: t.res.Meta.Name,
		Metrics:    true,
	})
	if err != nil {
		return ExportResult{Success: false, Error: err.Error()}, nil
	}

	out := ExportResult{Success: true, Directory: dir}
	for _, r := range results {
		out.Files = append(out.Files, filepath.Base(r.FilePath))
	}
	return out, nil
}

// Tools returns the ADK function tools of the toolset.
func (t *Toolset) Tools() ([]tool.Tool, error) {
	var tools []tool.Tool
	add := func(tl tool.Tool, err error) error {
		if err != nil {
			return err
		}
		tools = append(tools, tl)
		return nil
	}

	steps := []func() error{
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "get_coverage_summary",
				Description: "Summarise catalog coverage, rule to check reuse and implementation presence for the loaded component definition",
			}, t.coverageSummary))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "get_control_details",
				Description: "Get the rules, checks and components that cover one catalog control",
			}, t.controlDetails))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "list_uncovered_controls",
				Description: "List catalog controls that no rule covers, optionally filtered by family",
			}, t.uncoveredControls))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "get_component_coverage",
				Description: "Get rule counts, check coverage percentage and covered controls per component",
			}, t.componentCoverage))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "get_rule_details",
				Description: "Get the checks, components and controls of one rule",
			}, t.ruleDetails))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "get_family_coverage",
				Description: "Get coverage split by NIST 800-53 control family",
			}, t.familyCoverage))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "list_anomalies",
				Description: "List unresolved control or rule references and orphan checks found in the component definition",
			}, t.anomalies))
		},
		func() error {
			return add(functiontool.New(functiontool.Config{
				Name:        "export_report",
				Description: "Write the six coverage charts and data files in the requested formats",
			}, t.exportReport))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, errors.Wrap(err, "creating tool")
		}
	}
	return tools, nil
}
