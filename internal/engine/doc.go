// Package engine implements the conversation turn engine: streaming
// response decoding, the mutable rollback-capable history, and the
// orchestrator that chains tool rounds.
//
// Invariants:
//   - history alternates user and assistant messages; tool results are
//     user-role and are always followed by another assistant message.
//   - rollback removes only a trailing user message, keeping the
//     alternation intact after a failed exchange.
//   - the progress indicator is cancelled before any streamed content is
//     echoed to the shared sink.
//
// Flow:
//
//	user(text) -> assistant(text | tool_use) -> user(tool_result) -> assistant(text)
package engine
