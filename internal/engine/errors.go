package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyAssistantMessage rejects an assistant append with no content
// blocks. A reply with zero blocks means the exchange produced nothing to
// record; committing it would leave a hollow assistant turn in the history.
var ErrEmptyAssistantMessage = errors.New("assistant message must carry at least one content block")

// ErrNoProvider is returned by tool operations when no provider is attached.
var ErrNoProvider = errors.New("no tool provider attached")

// ErrToolRoundLimit aborts a turn whose tool-call chain exceeded the
// configured bound. The turn is reported as failed but the history stays
// well formed; the conversation can continue.
var ErrToolRoundLimit = errors.New("tool round limit reached")

// ToolInputError reports a tool invocation whose streamed argument
// fragments never assembled into valid JSON. The decode is aborted: a
// malformed tool call cannot be safely guessed at.
type ToolInputError struct {
	ID   string
	Name string
	Raw  string // the accumulated fragment buffer
	Err  error
}

func (e *ToolInputError) Error() string {
	return fmt.Sprintf("tool input for %s (id %s) is not valid JSON: %v", e.Name, e.ID, e.Err)
}

func (e *ToolInputError) Unwrap() error { return e.Err }

// ToolNotFoundError reports an invocation of a tool the provider does not
// advertise.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// ToolExecutionError reports a provider-side tool failure. The orchestrator
// treats it as recoverable: the detail is fed back to the model as a
// structured error payload instead of aborting the turn.
type ToolExecutionError struct {
	Name   string
	Detail string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Name, e.Detail)
}
