package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/llm"
	"github.com/ethanolivertroy/compdef-insights/internal/server"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the coverage assistant over A2A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return RunServe(cfg, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", server.DefaultPort, "Port for the A2A server")
	return cmd
}

// RunServe analyzes the workspace and serves the coverage agent until
// SIGINT or SIGTERM.
func RunServe(cfg *config.Config, port int) error {
	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, err := AnalysisOptions(cfg)
	if err != nil {
		return err
	}
	res, err := analysis.Run(ctx, opts)
	if err != nil {
		return err
	}

	return server.RunA2AServer(ctx, server.A2AConfig{
		Port:      port,
		ExportDir: cfg.OutputPath,
		LLMConfig: llmCfg,
	}, res)
}
