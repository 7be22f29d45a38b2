package llm

import (
	"context"
	"iter"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

var errStopped = errors.New("iteration stopped")

// OllamaModel adapts a local Ollama server to the ADK model.LLM interface.
type OllamaModel struct {
	client    *api.Client
	modelName string
}

// NewOllamaModel creates a model backed by the Ollama chat API.
func NewOllamaModel(ctx context.Context, cfg Config) (model.LLM, error) {
	raw := cfg.OllamaURL
	if raw == "" {
		raw = defaultOllamaURL
	}
	name := cfg.Model
	if name == "" {
		name = defaultOllamaModel
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid OLLAMA_URL")
	}
	log.WithField("url", u.String()).Debug("Using Ollama server")

	return &OllamaModel{
		client:    api.NewClient(u, http.DefaultClient),
		modelName: name,
	}, nil
}

// Name returns the model name
func (m *OllamaModel) Name() string {
	return m.modelName
}

// GenerateContent implements the ADK model.LLM interface.
func (m *OllamaModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		chatReq := &api.ChatRequest{
			Model:    m.modelName,
			Messages: convertToOllamaMessages(req.Contents),
			Stream:   &stream,
		}
		if len(req.Tools) > 0 {
			chatReq.Tools = convertToOllamaTools(req.Tools)
		}

		if stream {
			m.stream(ctx, chatReq, yield)
			return
		}
		m.single(ctx, chatReq, yield)
	}
}

func (m *OllamaModel) stream(ctx context.Context, req *api.ChatRequest, yield func(*model.LLMResponse, error) bool) {
	err := m.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			if !yield(textResponse(resp.Message.Content, !resp.Done, resp.Done), nil) {
				return errStopped
			}
		}
		if len(resp.Message.ToolCalls) > 0 {
			out := convertToolCallsToResponse(resp.Message.ToolCalls)
			out.TurnComplete = resp.Done
			if !yield(out, nil) {
				return errStopped
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopped) {
		yield(nil, errors.Wrap(err, "ollama chat"))
	}
}

func (m *OllamaModel) single(ctx context.Context, req *api.ChatRequest, yield func(*model.LLMResponse, error) bool) {
	var final api.ChatResponse
	err := m.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		yield(nil, errors.Wrap(err, "ollama chat"))
		return
	}

	out := textResponse(final.Message.Content, false, true)
	if len(final.Message.ToolCalls) > 0 {
		out = convertToolCallsToResponse(final.Message.ToolCalls)
		out.TurnComplete = true
	}
	yield(out, nil)
}

func textResponse(text string, partial, complete bool) *model.LLMResponse {
	return &model.LLMResponse{
		Content: &genai.Content{
			Role:  "model",
			Parts: []*genai.Part{genai.NewPartFromText(text)},
		},
		Partial:      partial,
		TurnComplete: complete,
	}
}

// convertToOllamaMessages converts genai.Content to Ollama messages
func convertToOllamaMessages(contents []*genai.Content) []api.Message {
	var messages []api.Message

	for _, content := range contents {
		role := content.Role
		// Map genai roles to Ollama roles
		switch role {
		case "user":
			role = "user"
		case "model":
			role = "assistant"
		}

		var text string
		var toolCalls []api.ToolCall

		for _, part := range content.Parts {
			if part.Text != "" {
				text += part.Text
			}
			if part.FunctionCall != nil {
				toolCalls = append(toolCalls, api.ToolCall{
					Function: api.ToolCallFunction{
						Name:      part.FunctionCall.Name,
						Arguments: convertArgsToMap(part.FunctionCall.Args),
					},
				})
			}
		}

		msg := api.Message{
			Role:      role,
			Content:   text,
			ToolCalls: toolCalls,
		}

		messages = append(messages, msg)
	}

	return messages
}

// convertArgsToMap converts function call args
func convertArgsToMap(args map[string]any) api.ToolCallFunctionArguments {
	result := make(api.ToolCallFunctionArguments)
	for k, v := range args {
		result[k] = v
	}
	return result
}

// convertToOllamaTools converts ADK tools to Ollama tools
func convertToOllamaTools(tools map[string]any) []api.Tool {
	var ollamaTools []api.Tool

	for name, tool := range tools {
		// Try to extract tool description and parameters
		toolMap, ok := tool.(map[string]any)
		if !ok {
			continue
		}

		description, _ := toolMap["description"].(string)
		parameters, _ := toolMap["parameters"].(map[string]any)

		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        name,
				Description: description,
				Parameters: api.ToolFunctionParameters{
					Type:       "object",
					Properties: convertParameters(parameters),
				},
			},
		})
	}

	return ollamaTools
}

// convertParameters converts tool parameters to Ollama ToolProperty map
func convertParameters(params map[string]any) map[string]api.ToolProperty {
	result := make(map[string]api.ToolProperty)

	props, ok := params["properties"].(map[string]any)
	if !ok {
		return result
	}

	for name, prop := range props {
		propMap, ok := prop.(map[string]any)
		if !ok {
			continue
		}

		p := api.ToolProperty{
			Type:        api.PropertyType{"string"},
			Description: "",
		}

		if t, ok := propMap["type"].(string); ok {
			p.Type = api.PropertyType{t}
		}
		if d, ok := propMap["description"].(string); ok {
			p.Description = d
		}

		result[name] = p
	}

	return result
}

// convertToolCallsToResponse converts Ollama tool calls to ADK response
func convertToolCallsToResponse(toolCalls []api.ToolCall) *model.LLMResponse {
	var parts []*genai.Part

	for _, tc := range toolCalls {
		args := make(map[string]any)
		for k, v := range tc.Function.Arguments {
			args[k] = v
		}

		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	return &model.LLMResponse{
		Content: &genai.Content{
			Role:  "model",
			Parts: parts,
		},
	}
}
