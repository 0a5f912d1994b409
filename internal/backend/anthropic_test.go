package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/converse-agent/internal/backend"
	"github.com/petasbytes/converse-agent/internal/engine"
)

// fakeTransport captures the outbound request body and replays a canned
// SSE response.
type fakeTransport struct {
	body     []byte
	response string
	status   int
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		f.body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       io.NopCloser(strings.NewReader(f.response)),
		Request:    req,
	}, nil
}

func sse(events ...[2]string) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString("event: " + ev[0] + "\n")
		b.WriteString("data: " + ev[1] + "\n\n")
	}
	return b.String()
}

func newClient(opts backend.Options, ft *fakeTransport) *backend.Client {
	return backend.New(opts,
		option.WithAPIKey("test-key"),
		option.WithHTTPClient(&http.Client{Transport: ft}),
	)
}

func drain(t *testing.T, s engine.Stream) []engine.StreamEvent {
	t.Helper()
	var out []engine.StreamEvent
	for {
		ev, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		out = append(out, ev)
	}
}

func TestSend_TextStream(t *testing.T) {
	ft := &fakeTransport{response: sse(
		[2]string{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)}
	c := newClient(backend.Options{Model: "test-model"}, ft)

	history := []engine.Message{{Role: engine.RoleUser, Blocks: []engine.ContentBlock{engine.TextBlock("hi")}}}
	stream, err := c.Send(context.Background(), history, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	events := drain(t, stream)

	want := []engine.StreamEvent{
		engine.StartText(),
		engine.TextDeltaEvent("Hel"),
		engine.TextDeltaEvent("lo"),
		engine.StopEvent(),
	}
	if len(events) != len(want) {
		t.Fatalf("event count: got=%d want=%d (%+v)", len(events), len(want), events)
	}
	for i := range want {
		if events[i].Kind != want[i].Kind || events[i].TextDelta != want[i].TextDelta {
			t.Fatalf("event %d mismatch: got=%+v want=%+v", i, events[i], want[i])
		}
	}
}

func TestSend_ToolUseStream_DecodesEndToEnd(t *testing.T) {
	ft := &fakeTransport{response: sse(
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"read_file","input":{}}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"path\":"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"a.txt\"}"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)}
	c := newClient(backend.Options{}, ft)

	history := []engine.Message{{Role: engine.RoleUser, Blocks: []engine.ContentBlock{engine.TextBlock("read it")}}}
	stream, err := c.Send(context.Background(), history, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	dec := engine.NewDecoder()
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if err := dec.Feed(ev); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	blocks, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(blocks) != 1 || !blocks[0].IsToolUse() {
		t.Fatalf("expected one tool_use block, got %+v", blocks)
	}
	if blocks[0].ID != "toolu_1" || blocks[0].Name != "read_file" {
		t.Fatalf("unexpected tool identity: %+v", blocks[0])
	}
	if got := gjson.GetBytes(blocks[0].Input, "path").String(); got != "a.txt" {
		t.Fatalf("input path: got=%q", got)
	}
}

func TestSend_RequestBody_SkipsEmptyTextAndCarriesTools(t *testing.T) {
	ft := &fakeTransport{response: sse(
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"ok"}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)}
	c := newClient(backend.Options{Model: "test-model", MaxTokens: 256}, ft)

	history := []engine.Message{
		{Role: engine.RoleUser, Blocks: []engine.ContentBlock{engine.TextBlock("list files")}},
		{Role: engine.RoleAssistant, Blocks: []engine.ContentBlock{
			engine.ToolUseBlock("toolu_1", "list_files", json.RawMessage(`{}`)),
		}},
		{Role: engine.RoleUser, Blocks: []engine.ContentBlock{
			engine.ToolResultBlock("toolu_1", json.RawMessage(`{"files":["a.txt"]}`)),
		}},
		// Synthetic continuation: must not reach the wire.
		{Role: engine.RoleUser, Blocks: []engine.ContentBlock{engine.TextBlock("")}},
	}
	tools := []engine.ToolDescriptor{{
		Name:        "list_files",
		Description: "List files under a directory.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
	}}

	stream, err := c.Send(context.Background(), history, tools)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	drain(t, stream)

	body := ft.body
	if gjson.GetBytes(body, "model").String() != "test-model" {
		t.Fatalf("model: %s", gjson.GetBytes(body, "model").String())
	}
	if gjson.GetBytes(body, "max_tokens").Int() != 256 {
		t.Fatalf("max_tokens: %d", gjson.GetBytes(body, "max_tokens").Int())
	}
	if n := gjson.GetBytes(body, "messages.#").Int(); n != 3 {
		t.Fatalf("messages on wire: got=%d want=3 (%s)", n, gjson.GetBytes(body, "messages").Raw)
	}
	if role := gjson.GetBytes(body, "messages.2.role").String(); role != "user" {
		t.Fatalf("last wire message role: %s", role)
	}
	if typ := gjson.GetBytes(body, "messages.2.content.0.type").String(); typ != "tool_result" {
		t.Fatalf("last wire block type: %s", typ)
	}
	if name := gjson.GetBytes(body, "tools.0.name").String(); name != "list_files" {
		t.Fatalf("tool name: %s", name)
	}
	if req := gjson.GetBytes(body, "tools.0.input_schema.required.0").String(); req != "path" {
		t.Fatalf("tool required: %s", req)
	}
}

func TestSend_WindowBudget_NewestGroupTooLarge(t *testing.T) {
	ft := &fakeTransport{response: sse([2]string{"message_stop", `{"type":"message_stop"}`})}
	c := newClient(backend.Options{TokenBudget: 3}, ft)

	history := []engine.Message{{Role: engine.RoleUser, Blocks: []engine.ContentBlock{engine.TextBlock("this is far too long")}}}
	if _, err := c.Send(context.Background(), history, nil); err == nil {
		t.Fatal("expected windowing error, got nil")
	}
}
