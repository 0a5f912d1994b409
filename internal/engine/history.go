package engine

import "encoding/json"

// History is the ordered, mutable log of conversation messages. It is
// exclusively owned by the orchestrator for the duration of a turn; the
// engine does not support overlapping turns on one history, so there is
// no internal locking.
//
// Invariant: read left to right the log alternates User and Assistant,
// except that a tool-result message is User-role and is expected to be
// immediately followed by another Assistant message.
type History struct {
	msgs []Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// AppendUser appends a user message carrying a single text block.
func (h *History) AppendUser(text string) {
	h.msgs = append(h.msgs, Message{Role: RoleUser, Blocks: []ContentBlock{TextBlock(text)}})
}

// AppendAssistant appends an assistant message with the given blocks.
// Returns ErrEmptyAssistantMessage when blocks is empty.
func (h *History) AppendAssistant(blocks []ContentBlock) error {
	if len(blocks) == 0 {
		return ErrEmptyAssistantMessage
	}
	h.msgs = append(h.msgs, Message{Role: RoleAssistant, Blocks: blocks})
	return nil
}

// AppendToolResult appends a user-role message carrying a single tool
// result. The backend protocol models tool results as a continuation of
// the user turn, not a new assistant act.
func (h *History) AppendToolResult(id string, payload json.RawMessage) {
	h.msgs = append(h.msgs, Message{Role: RoleUser, Blocks: []ContentBlock{ToolResultBlock(id, payload)}})
}

// RollbackLastIfUser removes the last message iff its role is User and
// reports whether a removal occurred. Removing only a trailing user
// message preserves the alternation invariant after a failed exchange.
func (h *History) RollbackLastIfUser() bool {
	if len(h.msgs) == 0 {
		return false
	}
	if h.msgs[len(h.msgs)-1].Role != RoleUser {
		return false
	}
	h.msgs = h.msgs[:len(h.msgs)-1]
	return true
}

// Snapshot returns a copy of the message sequence for building an
// outbound request. Mutating the returned slice does not affect the log.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len returns the number of messages in the log.
func (h *History) Len() int { return len(h.msgs) }
