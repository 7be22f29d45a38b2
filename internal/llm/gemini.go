package llm

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// NewGeminiModel creates an ADK Gemini model.
func NewGeminiModel(ctx context.Context, cfg Config) (model.LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for Gemini provider")
	}
	return newGemini(ctx, cfg, &genai.ClientConfig{APIKey: cfg.APIKey})
}

// NewVertexModel creates an ADK model on the Vertex AI backend. It needs
// Application Default Credentials.
func NewVertexModel(ctx context.Context, cfg Config) (model.LLM, error) {
	if cfg.VertexProject == "" || cfg.VertexLocation == "" {
		return nil, errors.New("VERTEX_PROJECT and VERTEX_LOCATION are required for Vertex AI provider")
	}
	return newGemini(ctx, cfg, &genai.ClientConfig{
		Project:  cfg.VertexProject,
		Location: cfg.VertexLocation,
		Backend:  genai.BackendVertexAI,
	})
}

func newGemini(ctx context.Context, cfg Config, cc *genai.ClientConfig) (model.LLM, error) {
	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}
	m, err := gemini.NewModel(ctx, name, cc)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s model %s", cfg.Provider, name)
	}
	return m, nil
}
