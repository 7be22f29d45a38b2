// Package cmd holds the compdef-insights command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/render"
)

// NewRootCmd builds the command tree over cfg. Flags default to the values
// already in cfg and overwrite them when set. run is the default action.
func NewRootCmd(cfg *config.Config, run func(cfg *config.Config) error) *cobra.Command {
	root := &cobra.Command{
		Use:   "compdef-insights",
		Short: "Coverage insights for OSCAL component definitions",
		Long: `compdef-insights computes control coverage metrics for an OSCAL component
definition against the catalog (or profile) its implementations reference,
and renders them as charts and data files.

Without a subcommand it opens the interactive coverage browser.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.ConfigureLogging(cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.BasePath, "base-path", "b", cfg.BasePath, "Root of the trestle workspace")
	flags.StringVarP(&cfg.FilePath, "file-path", "f", cfg.FilePath, "Component definition, relative to the base path")
	flags.StringVarP(&cfg.OutputPath, "output-path", "o", cfg.OutputPath, "Directory receiving exported files")
	flags.StringVar(&cfg.ReferencePolicy, "policy", cfg.ReferencePolicy, "Unresolved reference policy: exclude, include or fail")
	flags.BoolVar(&cfg.Concurrent, "concurrent", cfg.Concurrent, "Compute the metrics in parallel")
	flags.IntVar(&cfg.ChartWidth, "chart-width", cfg.ChartWidth, "Chart width in cells")
	flags.IntVar(&cfg.ChartHeight, "chart-height", cfg.ChartHeight, "Chart height in cells")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn or error")
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, "Browser theme: default, dracula, catppuccin or nord")

	root.AddCommand(
		newReportCmd(cfg),
		newAgentCmd(cfg),
		newServeCmd(cfg),
		VersionCmd,
	)
	return root
}

// AnalysisOptions maps the configuration onto analysis options.
func AnalysisOptions(cfg *config.Config) (analysis.Options, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		BasePath:   cfg.BasePath,
		FilePath:   cfg.FilePath,
		Policy:     policy,
		Concurrent: cfg.Concurrent,
	}, nil
}

// ChartOptions maps the configuration onto file chart options.
func ChartOptions(cfg *config.Config) render.Options {
	opts := render.DefaultOptions
	opts.Width = cfg.ChartWidth
	opts.Height = cfg.ChartHeight
	return opts
}
