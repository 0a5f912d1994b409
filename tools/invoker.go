package tools

import (
	"context"
	"encoding/json"

	"github.com/tidwall/sjson"

	"github.com/petasbytes/converse-agent/internal/engine"
)

// LocalInvoker exposes in-process tool definitions through the engine's
// provider contract. It is the built-in counterpart to an external MCP
// server connection.
type LocalInvoker struct {
	defs []ToolDefinition
}

// NewLocalInvoker wraps the given definitions; with none given it wraps
// the full Registry.
func NewLocalInvoker(defs ...ToolDefinition) *LocalInvoker {
	if len(defs) == 0 {
		defs = Registry()
	}
	return &LocalInvoker{defs: defs}
}

// List enumerates the wrapped definitions as engine descriptors.
func (l *LocalInvoker) List(ctx context.Context) ([]engine.ToolDescriptor, error) {
	out := make([]engine.ToolDescriptor, 0, len(l.defs))
	for _, d := range l.defs {
		out = append(out, engine.ToolDescriptor{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return out, nil
}

// Invoke runs one tool by name. Unknown names return a
// *engine.ToolNotFoundError; handler failures return a
// *engine.ToolExecutionError. Both are recoverable for the caller.
func (l *LocalInvoker) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	var def *ToolDefinition
	for i := range l.defs {
		if l.defs[i].Name == name {
			def = &l.defs[i]
			break
		}
	}
	if def == nil {
		return nil, &engine.ToolNotFoundError{Name: name}
	}

	out, err := def.Function(args)
	if err != nil {
		return nil, &engine.ToolExecutionError{Name: name, Detail: err.Error()}
	}
	if json.Valid([]byte(out)) {
		return json.RawMessage(out), nil
	}
	// Plain-text results are wrapped so payloads are always valid JSON.
	wrapped, _ := sjson.SetBytes([]byte(`{}`), "text", out)
	return wrapped, nil
}
