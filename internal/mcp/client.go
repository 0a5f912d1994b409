package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/sjson"

	"github.com/petasbytes/converse-agent/internal/engine"
	"github.com/petasbytes/converse-agent/internal/telemetry"
)

// clientName identifies this agent in the MCP handshake.
const clientName = "converse-agent"

const clientVersion = "0.1.0"

// Client is a connection to one stdio MCP server. It implements
// engine.ToolInvoker over the server's tool catalog.
type Client struct {
	name string
	mc   *client.Client
}

// Connect launches the configured server process and performs the MCP
// initialize handshake. Only stdio transports are supported.
func Connect(ctx context.Context, name string, sc ServerConfig, workspace string) (*Client, error) {
	if sc.Type != "" && sc.Type != "stdio" {
		return nil, fmt.Errorf("server %s: unsupported transport %q (stdio only)", name, sc.Type)
	}
	env, err := sc.ResolveEnv(workspace)
	if err != nil {
		return nil, fmt.Errorf("server %s: %w", name, err)
	}

	mc, err := client.NewStdioMCPClient(sc.ResolveCommand(workspace), env, sc.ResolveArgs(workspace)...)
	if err != nil {
		return nil, fmt.Errorf("server %s: start: %w", name, err)
	}

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpgo.Implementation{Name: clientName, Version: clientVersion}
	if _, err := mc.Initialize(ctx, initReq); err != nil {
		mc.Close()
		return nil, fmt.Errorf("server %s: initialize: %w", name, err)
	}

	telemetry.Emit("mcp_connected", map[string]any{"server": name})
	return &Client{name: name, mc: mc}, nil
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.name }

// List enumerates the server's tools as engine descriptors.
func (c *Client) List(ctx context.Context) ([]engine.ToolDescriptor, error) {
	res, err := c.mc.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("server %s: list tools: %w", c.name, err)
	}
	out := make([]engine.ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("server %s: tool %s: schema: %w", c.name, t.Name, err)
		}
		out = append(out, engine.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return out, nil
}

// Invoke executes one tool and returns its result as JSON. A server-side
// failure (protocol error or an is_error result) comes back as a
// *engine.ToolExecutionError so the caller can feed it to the model as a
// recoverable result.
func (c *Client) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	if len(args) > 0 {
		var m map[string]any
		if err := json.Unmarshal(args, &m); err != nil {
			return nil, &engine.ToolExecutionError{Name: name, Detail: fmt.Sprintf("invalid arguments: %v", err)}
		}
		req.Params.Arguments = m
	}

	res, err := c.mc.CallTool(ctx, req)
	if err != nil {
		return nil, &engine.ToolExecutionError{Name: name, Detail: err.Error()}
	}

	text := joinTextContent(res.Content)
	if res.IsError {
		return nil, &engine.ToolExecutionError{Name: name, Detail: text}
	}
	return textToPayload(text), nil
}

// Close terminates the server process. Safe on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	telemetry.Emit("mcp_disconnected", map[string]any{"server": c.name})
	return c.mc.Close()
}

func joinTextContent(content []mcpgo.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(mcpgo.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// textToPayload keeps a JSON document as-is and wraps plain text in a
// {"text": ...} envelope so the result payload is always valid JSON.
func textToPayload(text string) json.RawMessage {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := sjson.SetBytes([]byte(`{}`), "text", text)
	return wrapped
}
