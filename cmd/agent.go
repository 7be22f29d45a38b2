package cmd

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/compdef-insights/internal/agent"
	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/chat"
	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/llm"
)

func newAgentCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "agent [question...]",
		Short: "Ask the coverage assistant about the component definition",
		Long: `Without arguments opens an interactive chat. With arguments, asks a single
question and prints the answer.`,
		Example: `  compdef-insights agent -f compdef.json
  compdef-insights agent -f compdef.json "which AC controls are not covered?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return RunAgent(cmd.Context(), cfg, args)
		},
	}
}

// RunAgent runs the agent mode - interactive TUI if no args, one-shot if query provided
func RunAgent(ctx context.Context, cfg *config.Config, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		if llmCfg.Provider == llm.ProviderGemini {
			return errors.Wrap(err, "LLM configuration error\n\nFor Gemini, set:\n  export GEMINI_API_KEY=your-api-key\n\nFor Ollama (local), set:\n  export LLM_PROVIDER=ollama")
		}
		return errors.Wrap(err, "LLM configuration error")
	}

	opts, err := AnalysisOptions(cfg)
	if err != nil {
		return err
	}
	res, err := analysis.Run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Initializing coverage assistant (%s/%s)...\n", llmCfg.Provider, llmCfg.Model)
	coverageAgent, err := agent.NewWithConfig(ctx, llmCfg, res, cfg.OutputPath)
	if err != nil {
		return errors.Wrap(err, "failed to initialize agent")
	}

	if len(args) > 0 {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return errors.New("query cannot be empty")
		}
		fmt.Printf("Query: %s\n\n", query)
		response, err := coverageAgent.Query(ctx, query)
		if err != nil {
			return errors.Wrap(err, "query failed")
		}
		fmt.Println(response)
		return nil
	}

	p := tea.NewProgram(chat.NewModel(ctx, coverageAgent), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
