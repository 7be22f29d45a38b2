package cmd

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/export"
)

func newReportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"generate", "gen"},
		Short:   "Write the coverage charts and data files",
		Long: `Loads the component definition and its catalogs, computes the six coverage
metrics and writes one file per metric and format to the output path, plus
anomalies.json, summary.md and (with --metrics) coverage.prom.`,
		Example: `  compdef-insights report -b ./workspace -f component-definitions/acme/component-definition.json
  compdef-insights report -b . -f compdef.yaml --format json,csv --policy fail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runReport(cmd.Context(), cfg, cmd)
		},
	}
	cmd.Flags().StringSliceVar(&cfg.Formats, "format", cfg.Formats, "Output formats: txt, json, csv, md, yaml")
	cmd.Flags().BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "Also write a Prometheus textfile")
	return cmd
}

func runReport(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := AnalysisOptions(cfg)
	if err != nil {
		return err
	}
	formats, err := cfg.ExportFormats()
	if err != nil {
		return err
	}

	log.WithField("config", cfg.String()).Debug("Generating report")
	res, err := analysis.Run(ctx, opts)
	if err != nil {
		return err
	}

	results, err := export.WriteReport(res.Report, res.Series, cfg.OutputPath, export.Options{
		Formats:    formats,
		Chart:      ChartOptions(cfg),
		Definition: res.Meta.Name,
		Metrics:    cfg.Metrics,
	})
	if err != nil {
		return err
	}

	c := res.Report.Coverage
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Definition", "Controls", "Covered", "Uncovered", "Anomalies", "Files"})
	table.Append([]string{
		res.Meta.Name,
		fmt.Sprint(c.Total),
		fmt.Sprint(c.Covered),
		fmt.Sprint(c.Uncovered),
		fmt.Sprint(len(res.Report.Anomalies)),
		fmt.Sprint(len(results)),
	})
	table.Render()

	log.WithFields(log.Fields{
		"output":  cfg.OutputPath,
		"files":   len(results),
		"elapsed": res.Elapsed,
	}).Info("Report written")
	return nil
}
