package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	eventsDir  = ".agent"
	eventsFile = "events.jsonl"
)

// Emit appends one JSON line to .agent/events.jsonl when observation is
// enabled, stamping the record with the event name and an RFC3339Nano
// timestamp. Emission failures are reported to stderr and otherwise
// ignored; telemetry never aborts a turn.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Copy before stamping so the caller's map is not mutated.
	record := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		record[k] = v
	}
	record["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	record["event"] = name

	line, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}
	if err := appendLine(filepath.Join(eventsDir, eventsFile), line); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
	}
}

func appendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
