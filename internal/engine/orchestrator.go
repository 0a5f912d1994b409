package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/sjson"

	"github.com/petasbytes/converse-agent/internal/progress"
	"github.com/petasbytes/converse-agent/internal/telemetry"
)

// Config carries the orchestrator knobs.
type Config struct {
	// MaxToolRounds bounds the tool-call chain within one submission.
	// 0 means unbounded; exceeding a positive bound aborts the turn with
	// ErrToolRoundLimit.
	MaxToolRounds int
	// ProgressInterval is the indicator tick interval (0 = default).
	ProgressInterval time.Duration
}

// Orchestrator drives one conversation: it sends requests, decodes the
// response stream while a progress indicator runs, commits decoded blocks
// to the history, executes requested tools, and loops with tool results
// until a turn yields only text.
//
// The orchestrator is the history's single writer; it processes one
// submission at a time.
type Orchestrator struct {
	backend Backend
	invoker ToolInvoker // nil when no provider is attached
	history *History
	sink    io.Writer
	cfg     Config
}

// New wires an orchestrator. invoker may be nil; sink may be nil to
// discard streamed output.
func New(backend Backend, invoker ToolInvoker, history *History, sink io.Writer, cfg Config) *Orchestrator {
	if history == nil {
		history = NewHistory()
	}
	if sink == nil {
		sink = io.Discard
	}
	return &Orchestrator{
		backend: backend,
		invoker: invoker,
		history: history,
		sink:    sink,
		cfg:     cfg,
	}
}

// History returns the conversation log owned by this orchestrator.
func (o *Orchestrator) History() *History { return o.history }

// SetInvoker swaps the tool provider. Only call between submissions.
func (o *Orchestrator) SetInvoker(inv ToolInvoker) { o.invoker = inv }

// Invoker returns the attached tool provider, or nil.
func (o *Orchestrator) Invoker() ToolInvoker { return o.invoker }

// Submit runs one full user turn: append the input, then loop through
// model responses and tool rounds until the model stops requesting tools.
// On failure the last unanswered user message (the input itself, or the
// synthetic continuation placeholder) is rolled back so the history stays
// alternating; committed tool results are never rolled back. The
// round-limit abort is the one failure that skips the rollback: it ends
// with the cancelled tool results it just appended, which must stay.
func (o *Orchestrator) Submit(ctx context.Context, input string) error {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}
	telemetry.EmitLocalFeatures(ctx, input)
	telemetry.Emit("turn_start", map[string]any{"turn_id": turnID})

	o.history.AppendUser(input)
	if err := o.run(ctx); err != nil {
		if !errors.Is(err, ErrToolRoundLimit) {
			o.history.RollbackLastIfUser()
		}
		telemetry.Emit("turn_failed", map[string]any{"turn_id": turnID, "error": err.Error()})
		return err
	}
	telemetry.Emit("turn_complete", map[string]any{"turn_id": turnID})
	return nil
}

// run is the explicit continuation loop. Each iteration issues one request
// over the full history snapshot and decodes one response. A response
// containing tool_use blocks triggers sequential tool execution, a
// tool-result append per call, and another iteration; a text-only
// response completes the turn.
func (o *Orchestrator) run(ctx context.Context) error {
	placeholder := false

	for round := 0; ; round++ {
		tools := o.listTools(ctx)

		ind := progress.Start(o.sink, o.cfg.ProgressInterval)
		stream, err := o.backend.Send(ctx, o.history.Snapshot(), tools)
		if err != nil {
			ind.Stop()
			return fmt.Errorf("backend send: %w", err)
		}

		blocks, err := o.decode(stream, ind)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			return ErrEmptyAssistantMessage
		}

		// The synthetic empty continuation has served as the request
		// placeholder; discard it before committing the reply so the
		// history never retains an empty user turn.
		if placeholder {
			o.history.RollbackLastIfUser()
			placeholder = false
		}
		if err := o.history.AppendAssistant(blocks); err != nil {
			return err
		}
		if hasText(blocks) {
			fmt.Fprintln(o.sink)
		}

		var toolUses []ContentBlock
		for _, b := range blocks {
			if b.IsToolUse() {
				toolUses = append(toolUses, b)
			}
		}
		if len(toolUses) == 0 || o.invoker == nil {
			return nil
		}
		if o.cfg.MaxToolRounds > 0 && round+1 > o.cfg.MaxToolRounds {
			// Every committed tool_use must still be answered: the backend
			// rejects any later request whose history carries a tool_use
			// without a matching tool_result.
			for _, tu := range toolUses {
				payload, _ := sjson.SetBytes([]byte(`{}`), "error", "tool round limit reached; call not executed")
				o.history.AppendToolResult(tu.ID, payload)
			}
			return ErrToolRoundLimit
		}

		// Sequential, in decoded order: the model expects results in the
		// same left-to-right order it requested the calls.
		for _, tu := range toolUses {
			payload := o.invokeTool(ctx, tu)
			o.history.AppendToolResult(tu.ID, payload)
		}

		// Resume the model over the updated history.
		o.history.AppendUser("")
		placeholder = true
	}
}

// listTools fetches the provider catalog for the outbound request. A
// listing failure is reported but does not abort the turn; the request
// simply goes out without tools.
func (o *Orchestrator) listTools(ctx context.Context) []ToolDescriptor {
	if o.invoker == nil {
		return nil
	}
	tools, err := o.invoker.List(ctx)
	if err != nil {
		telemetry.Emit("tool_list_failed", map[string]any{"error": err.Error()})
		fmt.Fprintf(o.sink, "[warn] tool listing failed: %v\n", err)
		return nil
	}
	return tools
}

// decode drives the decoder over one response stream, cancelling the
// indicator on the first inbound event (or on stream close when no event
// ever arrives). The indicator is stopped before any text is echoed to
// the sink, which is the ordering the shared sink depends on.
func (o *Orchestrator) decode(stream Stream, ind *progress.Indicator) ([]ContentBlock, error) {
	dec := NewDecoder()
	dec.OnText = func(s string) {
		io.WriteString(o.sink, s)
	}

	first := true
	for {
		ev, err := stream.Recv()
		if err != nil {
			ind.Stop()
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("stream: %w", err)
		}
		if first {
			ind.Stop()
			first = false
		}
		if err := dec.Feed(ev); err != nil {
			return nil, err
		}
	}
	return dec.Finish()
}

// invokeTool executes one tool call and always produces a payload: a
// provider failure is converted into a structured error document and fed
// back to the model, letting it decide how to react.
func (o *Orchestrator) invokeTool(ctx context.Context, tu ContentBlock) []byte {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	fmt.Fprintf(o.sink, "[tool] running %s...\n", tu.Name)

	start := time.Now()
	payload, err := o.invoker.Invoke(ctx, tu.Name, tu.Input)
	if err != nil {
		telemetry.Emit("tool_exec", map[string]any{
			"turn_id":     turnID,
			"tool_name":   tu.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
		fmt.Fprintf(o.sink, "[tool] %s failed: %v\n", tu.Name, err)
		errPayload, _ := sjson.SetBytes([]byte(`{}`), "error", err.Error())
		return errPayload
	}
	telemetry.Emit("tool_exec", map[string]any{
		"turn_id":     turnID,
		"tool_name":   tu.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"output_size": len(payload),
		"error":       nil,
	})
	fmt.Fprintf(o.sink, "[tool] %s done\n", tu.Name)
	return payload
}

func hasText(blocks []ContentBlock) bool {
	for _, b := range blocks {
		if b.Kind == BlockText {
			return true
		}
	}
	return false
}
