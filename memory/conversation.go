package memory

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/converse-agent/internal/engine"
)

// Entry is the persisted view of one conversation message.
// Only text survives persistence; tool blocks are transient.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// Load reads a transcript. A missing file is not an error; it yields nil.
func Load(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save writes the transcript, replacing any previous contents. The parent
// directory is created when absent so a fresh workspace saves cleanly.
func Save(path string, entries []Entry) error {
	b, err := json.MarshalIndent(entries, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// FromHistory projects a history snapshot onto persistable entries.
// Tool-only messages (tool_use without text, tool results, the synthetic
// continuation) produce no entry.
func FromHistory(msgs []engine.Message) []Entry {
	var out []Entry
	for _, m := range msgs {
		var parts []string
		for _, b := range m.Blocks {
			if b.Kind == engine.BlockText && b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, Entry{Role: string(m.Role), Text: strings.Join(parts, "\n")})
	}
	return out
}

// Seed replays entries into a fresh history so a new session resumes the
// previous conversation. Entries with unknown roles or empty text are
// skipped; a leading assistant entry is skipped to keep alternation.
func Seed(entries []Entry) *engine.History {
	h := engine.NewHistory()
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		switch engine.Role(e.Role) {
		case engine.RoleUser:
			h.AppendUser(e.Text)
		case engine.RoleAssistant:
			if h.Len() == 0 {
				continue
			}
			h.AppendAssistant([]engine.ContentBlock{engine.TextBlock(e.Text)})
		}
	}
	return h
}
