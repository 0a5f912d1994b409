package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/converse-agent/internal/engine"
	"github.com/petasbytes/converse-agent/internal/windowing"
)

// Text block constructor
func T(text string) engine.ContentBlock {
	return engine.TextBlock(text)
}

// Tool-use block constructor (empty input; grouping ignores payload size)
func TU(id string) engine.ContentBlock {
	return engine.ToolUseBlock(id, "tool", nil)
}

// Tool-result (no payload) - used by grouping tests where payload length is irrelevant
func TR(id string) engine.ContentBlock {
	return engine.ToolResultBlock(id, nil)
}

// Tool-result (string payload) - preferred in counter tests for deterministic sizing
func TRPayload(id, s string) engine.ContentBlock {
	return engine.ToolResultBlock(id, json.RawMessage(s))
}

// Assistant message constructor
func Asst(blocks ...engine.ContentBlock) engine.Message {
	return engine.Message{Role: engine.RoleAssistant, Blocks: blocks}
}

// User message constructor
func User(blocks ...engine.ContentBlock) engine.Message {
	return engine.Message{Role: engine.RoleUser, Blocks: blocks}
}

// Intervening returns a message that simply breaks adjacency between
// assistant(tool_use) and the expected next user(tool_result).
func Intervening(text string) engine.Message {
	return engine.Message{Role: engine.RoleAssistant, Blocks: []engine.ContentBlock{T(text)}}
}

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
