// Package backend adapts the Anthropic Messages API to the engine's
// transport contract: it converts history and tool descriptors into wire
// params, opens a streaming request, and exposes the server-sent events as
// the engine's stream event vocabulary.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/petasbytes/converse-agent/internal/engine"
	"github.com/petasbytes/converse-agent/internal/telemetry"
	"github.com/petasbytes/converse-agent/internal/windowing"
)

// DefaultModel is used when no model is configured.
const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// DefaultMaxTokens caps the response length when unconfigured.
const DefaultMaxTokens = 1024

// Options configures one Client.
type Options struct {
	// Model is the model identifier; empty selects DefaultModel.
	Model string
	// MaxTokens caps response generation; 0 selects DefaultMaxTokens.
	MaxTokens int
	// TokenBudget, when positive, trims the outbound history to a
	// pair-safe window whose estimated cost fits the budget.
	TokenBudget int
}

// Client implements engine.Backend over the Anthropic streaming API.
type Client struct {
	api  anthropic.Client
	opts Options
}

// New builds a client. The API key comes from the environment; extra
// request options (base URL, custom HTTP client) pass through to the SDK.
func New(opts Options, reqOpts ...option.RequestOption) *Client {
	return &Client{api: anthropic.NewClient(reqOpts...), opts: opts}
}

// Send opens one streaming request over the given history and tools.
func (c *Client) Send(ctx context.Context, history []engine.Message, tools []engine.ToolDescriptor) (engine.Stream, error) {
	window := history
	if c.opts.TokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(history, c.opts.TokenBudget, windowing.HeuristicCounter{})
		telemetry.Emit("window_prepared", map[string]any{
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		if stats.OverBudgetNewest {
			return nil, fmt.Errorf("windowing: newest group exceeds token budget %d; raise the budget or shrink tool output", c.opts.TokenBudget)
		}
	}

	params, err := c.buildParams(window, tools)
	if err != nil {
		return nil, err
	}
	if telemetry.PersistPayloadsEnabled() {
		if b, err := json.Marshal(params); err == nil {
			telemetry.Emit("api_request", map[string]any{"payload": json.RawMessage(b)})
		}
	}

	raw := c.api.Messages.NewStreaming(ctx, params)
	if err := raw.Err(); err != nil {
		return nil, err
	}
	return &eventStream{raw: raw}, nil
}

func (c *Client) buildParams(history []engine.Message, tools []engine.ToolDescriptor) (anthropic.MessageNewParams, error) {
	model := anthropic.Model(c.opts.Model)
	if c.opts.Model == "" {
		model = DefaultModel
	}
	maxTokens := c.opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		wire, err := toMessageParam(m)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		// Empty-content messages (the synthetic continuation) never go on
		// the wire; the API rejects messages without content.
		if len(wire.Content) == 0 {
			continue
		}
		msgs = append(msgs, wire)
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if len(tools) > 0 {
		wireTools, err := toToolParams(tools)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		params.Tools = wireTools
	}
	return params, nil
}

func toMessageParam(m engine.Message) (anthropic.MessageParam, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Kind {
		case engine.BlockText:
			if b.Text == "" {
				continue
			}
			blocks = append(blocks, anthropic.NewTextBlock(b.Text))
		case engine.BlockToolUse:
			blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			}})
		case engine.BlockToolResult:
			blocks = append(blocks, anthropic.NewToolResultBlock(b.ID, string(b.Payload), false))
		default:
			return anthropic.MessageParam{}, fmt.Errorf("unsupported block kind %v", b.Kind)
		}
	}
	role := anthropic.MessageParamRoleUser
	if m.Role == engine.RoleAssistant {
		role = anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParam{Role: role, Content: blocks}, nil
}

func toToolParams(tools []engine.ToolDescriptor) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema struct {
			Properties json.RawMessage `json:"properties"`
			Required   []string        `json:"required"`
		}
		if len(t.InputSchema) > 0 {
			if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
				return nil, fmt.Errorf("tool %s: invalid input schema: %w", t.Name, err)
			}
		}
		in := anthropic.ToolInputSchemaParam{Type: "object"}
		if len(schema.Properties) > 0 {
			in.Properties = schema.Properties
		}
		if len(schema.Required) > 0 {
			in.Required = schema.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: in,
		}})
	}
	return out, nil
}

// eventStream adapts the SDK's SSE stream to the engine's event contract.
// SDK events with no engine counterpart (message_start, ping, usage deltas)
// are skipped rather than surfaced.
type eventStream struct {
	raw *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *eventStream) Recv() (engine.StreamEvent, error) {
	for s.raw.Next() {
		ev := s.raw.Current()
		switch e := ev.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			switch cb := e.ContentBlock.AsAny().(type) {
			case anthropic.ToolUseBlock:
				return engine.StartToolUse(cb.ID, cb.Name), nil
			case anthropic.TextBlock:
				return engine.StartText(), nil
			}
		case anthropic.ContentBlockDeltaEvent:
			switch d := e.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				return engine.TextDeltaEvent(d.Text), nil
			case anthropic.InputJSONDelta:
				return engine.InputDeltaEvent(d.PartialJSON), nil
			}
		case anthropic.ContentBlockStopEvent:
			return engine.StopEvent(), nil
		case anthropic.MessageStopEvent:
			return engine.StreamEvent{}, io.EOF
		}
	}
	if err := s.raw.Err(); err != nil {
		return engine.StreamEvent{}, err
	}
	return engine.StreamEvent{}, io.EOF
}
