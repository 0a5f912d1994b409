package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// pendingToolCall accumulates the JSON argument fragments of one tool
// invocation between its Start and Stop events. It never enters the
// history; it is consumed when the block closes.
type pendingToolCall struct {
	id    string
	name  string
	input strings.Builder
}

// Decoder assembles one finite event stream into an ordered list of
// content blocks, preserving arrival order across interleaved text and
// tool-use blocks. It is purely sequential over a single stream and is
// re-created per turn.
type Decoder struct {
	text    strings.Builder
	pending *pendingToolCall
	blocks  []ContentBlock

	// OnText, when set, is called with each text fragment as it arrives.
	// The caller uses it to echo streamed text to the output sink.
	OnText func(string)
}

// NewDecoder returns a decoder with empty state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed applies one stream event to the decoder state.
func (d *Decoder) Feed(ev StreamEvent) error {
	switch ev.Kind {
	case EventStart:
		// Only tool_use starts carry state; other kinds are reserved.
		if ev.Start == nil || ev.Start.Kind != BlockToolUse {
			return nil
		}
		if d.pending != nil {
			return fmt.Errorf("tool_use %q started while %q is still open", ev.Start.ID, d.pending.id)
		}
		d.pending = &pendingToolCall{id: ev.Start.ID, name: ev.Start.Name}
		return nil

	case EventDelta:
		if ev.TextDelta != "" {
			d.text.WriteString(ev.TextDelta)
			if d.OnText != nil {
				d.OnText(ev.TextDelta)
			}
		}
		if ev.InputDelta != "" {
			if d.pending == nil {
				return fmt.Errorf("tool input fragment with no open tool_use block")
			}
			d.pending.input.WriteString(ev.InputDelta)
		}
		return nil

	case EventStop:
		return d.flush(false)
	}
	// Unknown kinds are ignored for forward compatibility.
	return nil
}

// Finish flushes residual state after the stream ends and returns the
// decoded blocks. Streams may omit a terminal Stop, so trailing text is
// flushed here; a residual pending tool call with an empty buffer is
// dropped, while a non-empty invalid buffer fails the decode.
func (d *Decoder) Finish() ([]ContentBlock, error) {
	if err := d.flush(true); err != nil {
		return nil, err
	}
	return d.blocks, nil
}

// flush closes the open block(s): accumulated text becomes a Text block,
// and a pending tool call has its argument buffer parsed as JSON. atEOF
// relaxes the rules for a pending call that never received input.
func (d *Decoder) flush(atEOF bool) error {
	if d.text.Len() > 0 {
		d.blocks = append(d.blocks, TextBlock(d.text.String()))
		d.text.Reset()
	}
	if d.pending == nil {
		return nil
	}
	p := d.pending
	raw := p.input.String()
	if atEOF && raw == "" {
		d.pending = nil
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return &ToolInputError{ID: p.id, Name: p.name, Raw: raw, Err: err}
	}
	d.blocks = append(d.blocks, ToolUseBlock(p.id, p.name, json.RawMessage(raw)))
	d.pending = nil
	return nil
}
