package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ShayCichocki/podium/internal/debate"
)

// messagesServer fakes the Messages endpoint. Streaming requests get an SSE
// body built from chunks; blocking requests get a single message.
type messagesServer struct {
	t      *testing.T
	chunks []string
	status int

	lastBody map[string]any
}

func (m *messagesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		m.t.Errorf("decode request: %v", err)
	}
	m.lastBody = req

	if m.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`)
		return
	}

	if stream, _ := req["stream"].(bool); stream {
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent := func(name, data string) {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
		}
		writeEvent("message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-5-20250929","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":1}}}`)
		writeEvent("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		for _, c := range m.chunks {
			data, _ := json.Marshal(map[string]any{
				"type":  "content_block_delta",
				"index": 0,
				"delta": map[string]string{"type": "text_delta", "text": c},
			})
			writeEvent("content_block_delta", string(data))
		}
		writeEvent("content_block_stop", `{"type":"content_block_stop","index":0}`)
		writeEvent("message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":9}}`)
		writeEvent("message_stop", `{"type":"message_stop"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"id":            "msg_2",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-sonnet-4-5-20250929",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]string{{"type": "text", "text": strings.Join(m.chunks, "")}},
		"usage":         map[string]int{"input_tokens": 20, "output_tokens": 5},
	}
	json.NewEncoder(w).Encode(resp)
}

func newTestAgent(t *testing.T, srv *messagesServer) (*Agent, *Client) {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := NewClient(ClientConfig{
		APIKey: "test-key",
		Options: []option.RequestOption{
			option.WithBaseURL(ts.URL + "/"),
			option.WithMaxRetries(0),
		},
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	agent := NewAgent(client, debate.Participant{
		Name:         "Pro",
		Role:         "arguing FOR the topic",
		SystemPrompt: "You argue for things.",
		Temperature:  0.7,
	})
	return agent, client
}

func TestAgent_Respond(t *testing.T) {
	srv := &messagesServer{t: t, chunks: []string{"Cats ", "are ", "great."}}
	agent, client := newTestAgent(t, srv)

	got, err := agent.Respond(context.Background(), "DEBATE TOPIC: Cats\n\n", "Deliver your opening statement.")
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if got != "Cats are great." {
		t.Errorf("Respond = %q, want %q", got, "Cats are great.")
	}

	if in, out := client.Tracker().Total(); in != 20 || out != 5 {
		t.Errorf("tracked tokens = %d/%d, want 20/5", in, out)
	}

	if temp, _ := srv.lastBody["temperature"].(float64); temp != 0.7 {
		t.Errorf("temperature = %v, want 0.7", srv.lastBody["temperature"])
	}
	if mt, _ := srv.lastBody["max_tokens"].(float64); mt != DefaultMaxTokens {
		t.Errorf("max_tokens = %v, want %d", srv.lastBody["max_tokens"], DefaultMaxTokens)
	}
	raw, _ := json.Marshal(srv.lastBody["messages"])
	for _, want := range []string{
		"Current debate transcript:",
		"Your instruction for this turn:",
		"Respond in character as Pro, the arguing FOR the topic in this debate.",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("user message missing %q: %s", want, raw)
		}
	}
	sys, _ := json.Marshal(srv.lastBody["system"])
	if !strings.Contains(string(sys), "You argue for things.") {
		t.Errorf("system = %s, want persona prompt", sys)
	}
}

func TestAgent_StreamRespond(t *testing.T) {
	srv := &messagesServer{t: t, chunks: []string{"One ", "two ", "three."}}
	agent, client := newTestAgent(t, srv)

	stream, err := agent.StreamRespond(context.Background(), "DEBATE TOPIC: Numbers\n\n", "Count.")
	if err != nil {
		t.Fatalf("StreamRespond error: %v", err)
	}
	defer stream.Close()

	var frags []string
	for stream.Next() {
		frags = append(frags, stream.Fragment())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if strings.Join(frags, "|") != "One |two |three." {
		t.Errorf("fragments = %q", frags)
	}
	if in, out := client.Tracker().Total(); in != 12 || out != 9 {
		t.Errorf("tracked tokens = %d/%d, want 12/9", in, out)
	}
	if client.Tracker().Calls() != 1 {
		t.Errorf("Calls = %d, want 1", client.Tracker().Calls())
	}
}

func TestAgent_StreamThroughBridge(t *testing.T) {
	srv := &messagesServer{t: t, chunks: []string{"a", "b", "c"}}
	agent, _ := newTestAgent(t, srv)

	stream, err := agent.StreamRespond(context.Background(), "", "go")
	if err != nil {
		t.Fatalf("StreamRespond error: %v", err)
	}
	got, err := debate.NewBridge(1).Collect(context.Background(), stream)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if got != "abc" {
		t.Errorf("Collect = %q, want abc", got)
	}
}

func TestAgent_RespondError(t *testing.T) {
	srv := &messagesServer{t: t, status: http.StatusBadRequest}
	agent, client := newTestAgent(t, srv)

	if _, err := agent.Respond(context.Background(), "", "go"); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if client.Tracker().Calls() != 0 {
		t.Error("failed calls should not be tracked")
	}
}

func TestFactory_NewAgent(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	a, err := NewFactory(client).NewAgent(debate.Participant{Name: "Judge"})
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}
	if a.(*Agent).Participant().Name != "Judge" {
		t.Error("agent should carry its participant")
	}

	if _, err := NewFactory(nil).NewAgent(debate.Participant{Name: "Pro"}); err == nil {
		t.Error("expected error without a client")
	}
}
