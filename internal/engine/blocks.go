package engine

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockKind discriminates the ContentBlock variants. The set is closed:
// switches over it should handle every constant so new variants surface
// at compile time.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// ContentBlock is one unit of message content: a text span, a tool
// invocation requested by the assistant, or the result of executing one.
// Kind selects which of the remaining fields are meaningful.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`

	// BlockText
	Text string `json:"text,omitempty"`

	// BlockToolUse and BlockToolResult share ID; Name and Input belong to
	// tool_use, Payload to tool_result.
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// ToolUseBlock builds a tool invocation block. Input must be valid JSON.
func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Kind: BlockToolUse, ID: id, Name: name, Input: input}
}

// ToolResultBlock builds a tool result block carrying an arbitrary JSON payload.
func ToolResultBlock(id string, payload json.RawMessage) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ID: id, Payload: payload}
}

// IsToolUse reports whether the block is a tool invocation.
func (b ContentBlock) IsToolUse() bool { return b.Kind == BlockToolUse }

// Message is one entry in the conversation history. Messages are immutable
// once appended; the history only ever removes them whole (rollback).
type Message struct {
	Role   Role           `json:"role"`
	Blocks []ContentBlock `json:"blocks"`
}

// ToolDescriptor describes one callable tool as advertised by a provider.
// InputSchema is a JSON Schema object for the tool's arguments.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}
