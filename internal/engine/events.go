package engine

import (
	"context"
	"encoding/json"
)

// EventKind discriminates the StreamEvent variants.
type EventKind string

const (
	// EventStart opens a content block. Start carries the block kind and,
	// for tool_use blocks, the invocation id and tool name.
	EventStart EventKind = "start"
	// EventDelta carries an incremental fragment: either assistant text or
	// a piece of a tool call's JSON-encoded arguments.
	EventDelta EventKind = "delta"
	// EventStop closes the currently open block.
	EventStop EventKind = "stop"
)

// StartInfo describes the block opened by an EventStart.
type StartInfo struct {
	Kind BlockKind
	ID   string // tool_use only
	Name string // tool_use only
}

// StreamEvent is one incremental unit of a model response stream. Exactly
// one of the payload fields is meaningful for a given Kind; a Start event
// with a nil Start is tolerated and ignored (reserved block kinds).
type StreamEvent struct {
	Kind       EventKind
	Start      *StartInfo
	TextDelta  string // EventDelta: text fragment
	InputDelta string // EventDelta: tool argument fragment
}

// StartText builds the event opening a text block.
func StartText() StreamEvent {
	return StreamEvent{Kind: EventStart, Start: &StartInfo{Kind: BlockText}}
}

// StartToolUse builds the event opening a tool invocation block.
func StartToolUse(id, name string) StreamEvent {
	return StreamEvent{Kind: EventStart, Start: &StartInfo{Kind: BlockToolUse, ID: id, Name: name}}
}

// TextDeltaEvent builds a text fragment event.
func TextDeltaEvent(text string) StreamEvent {
	return StreamEvent{Kind: EventDelta, TextDelta: text}
}

// InputDeltaEvent builds a tool argument fragment event.
func InputDeltaEvent(fragment string) StreamEvent {
	return StreamEvent{Kind: EventDelta, InputDelta: fragment}
}

// StopEvent builds the event closing the open block.
func StopEvent() StreamEvent {
	return StreamEvent{Kind: EventStop}
}

// Stream yields the events of one model response in arrival order.
// Recv returns io.EOF after the final event; any other error means the
// transport failed mid-stream.
type Stream interface {
	Recv() (StreamEvent, error)
}

// Backend is the model-backend handle. Send issues one completion request
// over the given history snapshot and returns the response stream, or an
// error if the request could not be issued. The tool catalog may be empty.
type Backend interface {
	Send(ctx context.Context, history []Message, tools []ToolDescriptor) (Stream, error)
}

// ToolInvoker is the capability interface over an external tool provider.
type ToolInvoker interface {
	// List enumerates the tools the provider advertises.
	List(ctx context.Context) ([]ToolDescriptor, error)
	// Invoke executes one tool by name with JSON-encoded arguments and
	// returns its JSON result. Failures are *ToolNotFoundError,
	// *ToolExecutionError, or ErrNoProvider.
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}
