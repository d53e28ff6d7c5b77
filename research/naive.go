package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/log"
)

// DefaultMaxIterations bounds the naive agent's model calls.
const DefaultMaxIterations = 10

const maxIterationsMessage = "Maximum iterations reached. Please try a simpler query."

// NaiveState is the message history of a naive agent run.
type NaiveState struct {
	Messages   []llms.MessageContent
	Iterations int
}

// NaiveAgent hands the whole task to the model in one prompt and lets it call
// the search tool as it sees fit. Nothing is tracked between steps except the
// conversation itself.
type NaiveAgent struct {
	model         llms.Model
	tools         map[string]tools.Tool
	toolDefs      []llms.Tool
	maxIterations int
	temperature   float64
	logger        log.Logger

	runnable *graph.StateRunnable[NaiveState]
}

// NaiveOption configures a NaiveAgent.
type NaiveOption func(*NaiveAgent)

// WithMaxIterations sets the model call bound.
func WithMaxIterations(n int) NaiveOption {
	return func(a *NaiveAgent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithNaiveLogger sets the logger.
func WithNaiveLogger(l log.Logger) NaiveOption {
	return func(a *NaiveAgent) { a.logger = l }
}

// NewNaiveAgent builds the agent/tools loop.
func NewNaiveAgent(model llms.Model, searchTools []tools.Tool, opts ...NaiveOption) (*NaiveAgent, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}

	a := &NaiveAgent{
		model:         model,
		tools:         make(map[string]tools.Tool, len(searchTools)),
		maxIterations: DefaultMaxIterations,
	}
	for _, t := range searchTools {
		a.tools[t.Name()] = t
		a.toolDefs = append(a.toolDefs, toolDefinition(t))
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger)

	g := graph.NewStateGraph[NaiveState]()
	g.AddNode("agent", "Model decides to search or answer", a.agentNode)
	g.AddNode("tools", "Execute requested tool calls", a.toolsNode)
	g.SetEntryPoint("agent")
	g.AddConditionalEdge("agent", func(_ context.Context, s NaiveState) string {
		if len(s.Messages) > 0 && len(toolCalls(s.Messages[len(s.Messages)-1])) > 0 {
			return "tools"
		}
		return graph.END
	})
	g.AddEdge("tools", "agent")
	g.SetMaxSteps(2*a.maxIterations + 1)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile naive agent: %w", err)
	}
	a.runnable = runnable
	return a, nil
}

// Research asks the model to research topic end to end.
func (a *NaiveAgent) Research(ctx context.Context, topic string) (*NaiveResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	a.logger.Info("naive agent researching: %s", topic)

	initial := NaiveState{Messages: []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, naiveSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(naiveUserPrompt, topic)),
	}}

	state, err := a.runnable.Invoke(ctx, initial)
	if err != nil {
		return nil, err
	}

	return &NaiveResult{
		Topic:  topic,
		Output: messageText(state.Messages[len(state.Messages)-1]),
		Method: MethodNaive,
	}, nil
}

func (a *NaiveAgent) agentNode(ctx context.Context, state NaiveState) (NaiveState, error) {
	if state.Iterations >= a.maxIterations {
		state.Messages = append(state.Messages, llms.TextParts(llms.ChatMessageTypeAI, maxIterationsMessage))
		return state, nil
	}

	opts := []llms.CallOption{llms.WithTemperature(a.temperature)}
	if len(a.toolDefs) > 0 {
		opts = append(opts, llms.WithTools(a.toolDefs))
	}

	resp, err := a.model.GenerateContent(ctx, state.Messages, opts...)
	if err != nil {
		return state, err
	}
	if len(resp.Choices) == 0 {
		return state, errors.New("no response from model")
	}
	choice := resp.Choices[0]

	msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		msg.Parts = append(msg.Parts, tc)
	}

	state.Messages = append(state.Messages, msg)
	state.Iterations++
	return state, nil
}

func (a *NaiveAgent) toolsNode(ctx context.Context, state NaiveState) (NaiveState, error) {
	last := state.Messages[len(state.Messages)-1]

	for _, tc := range toolCalls(last) {
		if tc.FunctionCall == nil {
			continue
		}
		name := tc.FunctionCall.Name
		input := toolInput(tc.FunctionCall.Arguments)
		a.logger.Debug("tool call %s(%s)", name, input)

		var out string
		t, ok := a.tools[name]
		if !ok {
			out = fmt.Sprintf("Error: unknown tool %s", name)
		} else if res, err := t.Call(ctx, input); err != nil {
			out = fmt.Sprintf("Error: %v", err)
		} else {
			out = res
		}

		state.Messages = append(state.Messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: tc.ID,
				Name:       name,
				Content:    out,
			}},
		})
	}
	return state, nil
}

func toolDefinition(t tools.Tool) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"input": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required":             []string{"input"},
				"additionalProperties": false,
			},
		},
	}
}

// toolInput pulls "input" (or "query") out of the call arguments, falling back
// to the raw string.
func toolInput(arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err == nil {
		for _, key := range []string{"input", "query"} {
			if v, ok := args[key].(string); ok {
				return v
			}
		}
	}
	return arguments
}

func toolCalls(msg llms.MessageContent) []llms.ToolCall {
	if msg.Role != llms.ChatMessageTypeAI {
		return nil
	}
	var calls []llms.ToolCall
	for _, part := range msg.Parts {
		if tc, ok := part.(llms.ToolCall); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

func messageText(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if tp, ok := part.(llms.TextContent); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}
