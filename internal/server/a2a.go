// Package server exposes the coverage agent over the A2A protocol.
package server

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/web"
	"google.golang.org/adk/cmd/launcher/web/a2a"
	"google.golang.org/adk/session"

	"github.com/ethanolivertroy/compdef-insights/internal/agent"
	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/llm"
)

// DefaultPort of the A2A server.
const DefaultPort = 8001

// A2AConfig holds configuration for the A2A server.
type A2AConfig struct {
	Port      int
	ExportDir string
	LLMConfig llm.Config
}

// RunA2AServer serves the coverage agent for res until ctx is done.
func RunA2AServer(ctx context.Context, cfg A2AConfig, res *analysis.Result) error {
	if err := cfg.LLMConfig.Validate(); err != nil {
		return errors.Wrap(err, "invalid LLM config")
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}

	coverageAgent, err := agent.NewWithConfig(ctx, cfg.LLMConfig, res, cfg.ExportDir)
	if err != nil {
		return errors.Wrap(err, "creating coverage agent")
	}

	webLauncher := web.NewLauncher(a2a.NewLauncher())
	if _, err := webLauncher.Parse([]string{"--port", strconv.Itoa(cfg.Port)}); err != nil {
		return errors.Wrap(err, "parsing launcher args")
	}

	log.WithFields(log.Fields{
		"port":       cfg.Port,
		"definition": res.Meta.Name,
		"provider":   cfg.LLMConfig.Provider,
		"model":      cfg.LLMConfig.Model,
	}).Info("A2A server starting")
	log.Infof("Agent card: http://localhost:%d/.well-known/agent-card.json", cfg.Port)
	log.Infof("A2A endpoint: http://localhost:%d/a2a", cfg.Port)

	return webLauncher.Run(ctx, &launcher.Config{
		AgentLoader:    adkagent.NewSingleLoader(coverageAgent.Agent()),
		SessionService: session.InMemoryService(),
	})
}
