package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/converse-agent/internal/engine"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m engine.Message) int
	CountGroup(g Group, all []engine.Message) int
}

// HeuristicCounter is the current default deterministic estimator.
// Rules:
// - text blocks: rune count of the text
// - tool_use blocks: rune count of the raw input JSON
// - tool_result blocks: rune count of the raw payload JSON
// Each block adds a small fixed overhead to account for minimal formatting.
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m engine.Message) int {
	total := 0
	for _, blk := range m.Blocks {
		total += countBlock(blk)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []engine.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(blk engine.ContentBlock) int {
	switch blk.Kind {
	case engine.BlockText:
		return utf8.RuneCountInString(blk.Text) + blockOverhead
	case engine.BlockToolUse:
		return utf8.RuneCountInString(string(blk.Input)) + blockOverhead
	case engine.BlockToolResult:
		return utf8.RuneCountInString(string(blk.Payload)) + blockOverhead
	}
	// Unknown kinds contribute overhead only in this minimal heuristic.
	return blockOverhead
}
