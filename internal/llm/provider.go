// Package llm selects the language model behind the coverage assistant.
package llm

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/adk/model"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOllama = "ollama"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultOllamaModel = "llama3.2"
	defaultOllamaURL   = "http://localhost:11434"
)

// Config holds LLM configuration. Keys are read without a prefix so the
// usual provider variables (GEMINI_API_KEY, OLLAMA_URL) work unchanged.
type Config struct {
	Provider       string `envconfig:"LLM_PROVIDER" default:"gemini"`
	Model          string `envconfig:"LLM_MODEL"`
	APIKey         string `envconfig:"GEMINI_API_KEY"`
	VertexProject  string `envconfig:"VERTEX_PROJECT"`
	VertexLocation string `envconfig:"VERTEX_LOCATION"`
	OllamaURL      string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
}

// ConfigFromEnv reads the LLM configuration from the environment.
func ConfigFromEnv() Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.WithError(err).Warn("Invalid LLM environment, using defaults")
		cfg = Config{Provider: ProviderGemini, OllamaURL: defaultOllamaURL}
	}
	if cfg.Model == "" {
		cfg.Model = cfg.defaultModel()
	}
	return cfg
}

func (c Config) defaultModel() string {
	if c.Provider == ProviderOllama {
		return defaultOllamaModel
	}
	return defaultGeminiModel
}

// NewModel creates an ADK-compatible model based on the config.
func NewModel(ctx context.Context, cfg Config) (model.LLM, error) {
	log.WithFields(log.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
	}).Debug("Creating LLM")
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiModel(ctx, cfg)
	case ProviderVertex:
		return NewVertexModel(ctx, cfg)
	case ProviderOllama:
		return NewOllamaModel(ctx, cfg)
	default:
		return nil, errors.Errorf("unknown LLM provider: %s (supported: gemini, vertex, ollama)", cfg.Provider)
	}
}

// Validate checks if the config is usable for the selected provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, "":
		if c.APIKey == "" {
			return errors.New("GEMINI_API_KEY environment variable is required for Gemini provider")
		}
	case ProviderVertex:
		if c.VertexProject == "" {
			return errors.New("VERTEX_PROJECT environment variable is required for Vertex AI provider")
		}
		if c.VertexLocation == "" {
			return errors.New("VERTEX_LOCATION environment variable is required for Vertex AI provider")
		}
	case ProviderOllama:
		if c.OllamaURL == "" {
			return errors.New("OLLAMA_URL is required for Ollama provider")
		}
	default:
		return errors.Errorf("unknown LLM provider: %s", c.Provider)
	}
	return nil
}

// SetupHelp returns short setup instructions for the provider.
func (c Config) SetupHelp() string {
	switch c.Provider {
	case ProviderGemini, "":
		return "Set GEMINI_API_KEY\nto enable"
	case ProviderVertex:
		return "Set VERTEX_PROJECT\nand VERTEX_LOCATION"
	case ProviderOllama:
		return "Start Ollama:\n  ollama serve"
	default:
		return "Configure LLM_PROVIDER\nand credentials"
	}
}
