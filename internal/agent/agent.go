// Package agent wires the coverage tools into an ADK LLM agent.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/ethanolivertroy/compdef-insights/internal/analysis"
	"github.com/ethanolivertroy/compdef-insights/internal/llm"
)

const appName = "compdef-insights"

// SystemInstruction for the coverage assistant.
const SystemInstruction = `You are a compliance engineer who answers questions about one OSCAL component definition and the catalog it implements.

Be action-oriented:
- Call a tool before answering any question about controls, rules, checks, or components
- Do NOT ask clarifying questions if a reasonable assumption exists
- If a lookup returns nothing, say so briefly and suggest a related query

Examples:
- "how covered are we?" → get_coverage_summary() immediately
- "tell me about ac-2" → get_control_details(control_id="ac-2") immediately
- "what is missing in audit?" → list_uncovered_controls(family="au") immediately
- "which components lack checks?" → get_component_coverage() immediately

Your tools:
- get_coverage_summary: catalog size, covered controls, reuse and implementation totals
- get_control_details: rules, checks, and components behind one control
- list_uncovered_controls: controls with no rule, optionally by family
- get_component_coverage: per-component rule counts and check coverage
- get_rule_details: checks, components, and controls of one rule
- get_family_coverage: coverage split by control family
- list_anomalies: unresolved references and orphan checks found while loading
- export_report: write the coverage charts and data files

When presenting results:
- Lead with the numbers, keep explanations brief
- Report N/A percentages as not applicable, never as zero
- Use markdown tables for lists of controls or components`

// EventKind classifies streaming events.
type EventKind int

const (
	EventText EventKind = iota
	EventToolStart
	EventToolDone
	EventDone
	EventError
)

// AgentEvent is one step of a streamed chat turn.
type AgentEvent struct {
	Kind     EventKind
	Text     string
	ToolName string
	Params   map[string]any
	Err      error
}

// CoverageAgent wraps the ADK agent with a chat session over one analysis.
type CoverageAgent struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	// Session tracking for multi-turn conversations
	userID     string
	sessionID  string
	hasSession bool
}

// New creates an agent with the LLM config from the environment.
func New(ctx context.Context, res *analysis.Result, exportDir string) (*CoverageAgent, error) {
	return NewWithConfig(ctx, llm.ConfigFromEnv(), res, exportDir)
}

// NewWithConfig creates an agent answering from res.
func NewWithConfig(ctx context.Context, cfg llm.Config, res *analysis.Result, exportDir string) (*CoverageAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating LLM model")
	}

	tools, err := NewToolset(res, exportDir).Tools()
	if err != nil {
		return nil, errors.Wrap(err, "creating tools")
	}

	a, err := llmagent.New(llmagent.Config{
		Name:        "coverage_agent",
		Description: "Compliance assistant answering coverage questions about an OSCAL component definition",
		Model:       m,
		Instruction: SystemInstruction,
		Tools:       tools,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating agent")
	}

	sessionSvc := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          a,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating runner")
	}

	log.WithFields(log.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
		"tools":    len(tools),
	}).Debug("Coverage agent ready")

	return &CoverageAgent{
		agent:          a,
		runner:         r,
		sessionService: sessionSvc,
	}, nil
}

// Agent returns the underlying ADK agent for use with launchers.
func (a *CoverageAgent) Agent() agent.Agent {
	return a.agent
}

// Query answers one question in a fresh session.
func (a *CoverageAgent) Query(ctx context.Context, query string) (string, error) {
	resp, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    "user",
		SessionID: fmt.Sprintf("query-%d", time.Now().UnixNano()),
	})
	if err != nil {
		return "", errors.Wrap(err, "creating session")
	}
	return a.collect(ctx, resp.Session.UserID(), resp.Session.ID(), query)
}

// Chat answers within a persistent session. The first call creates the
// session.
func (a *CoverageAgent) Chat(ctx context.Context, query string) (string, error) {
	if err := a.ensureSession(ctx); err != nil {
		return "", err
	}
	return a.collect(ctx, a.userID, a.sessionID, query)
}

// ChatStream runs one chat turn and sends its events to ch, closing ch when
// the turn ends.
func (a *CoverageAgent) ChatStream(ctx context.Context, query string, ch chan<- AgentEvent) {
	defer close(ch)

	if err := a.ensureSession(ctx); err != nil {
		ch <- AgentEvent{Kind: EventError, Err: err}
		return
	}

	cfg := agent.RunConfig{StreamingMode: agent.StreamingModeSSE}
	streamed := false
	for event, err := range a.runner.Run(ctx, a.userID, a.sessionID, userMessage(query), cfg) {
		if err != nil {
			ch <- AgentEvent{Kind: EventError, Err: errors.Wrap(err, "agent error")}
			return
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			switch {
			case part.FunctionCall != nil:
				ch <- AgentEvent{Kind: EventToolStart, ToolName: part.FunctionCall.Name, Params: part.FunctionCall.Args}
			case part.FunctionResponse != nil:
				ch <- AgentEvent{Kind: EventToolDone, ToolName: part.FunctionResponse.Name}
			case part.Text != "":
				// The final event of a streamed response repeats its partials.
				if event.Partial || !streamed {
					ch <- AgentEvent{Kind: EventText, Text: part.Text}
				}
			}
		}
		streamed = event.Partial
	}
	ch <- AgentEvent{Kind: EventDone}
}

// ClearSession drops the chat session; the next Chat starts fresh.
func (a *CoverageAgent) ClearSession() {
	a.hasSession = false
	a.userID = ""
	a.sessionID = ""
}

func (a *CoverageAgent) ensureSession(ctx context.Context) error {
	if a.hasSession {
		return nil
	}
	resp, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    "chat-user",
		SessionID: fmt.Sprintf("chat-%d", time.Now().UnixNano()),
	})
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	a.userID = resp.Session.UserID()
	a.sessionID = resp.Session.ID()
	a.hasSession = true
	return nil
}

func (a *CoverageAgent) collect(ctx context.Context, userID, sessionID, query string) (string, error) {
	var response strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, userMessage(query), agent.RunConfig{}) {
		if err != nil {
			return "", errors.Wrap(err, "agent error")
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part.Text != "" {
				response.WriteString(part.Text)
			}
		}
	}
	return response.String(), nil
}

func userMessage(query string) *genai.Content {
	return &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(query)},
	}
}
