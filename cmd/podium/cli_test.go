package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"github.com/ShayCichocki/podium/internal/config"
	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/server"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestOrchestratorConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Debate.RebuttalRounds = 3
	cfg.Debate.WordBudget = 150
	cfg.Debate.Streaming = false

	got := orchestratorConfig(cfg, nil)
	if got.RebuttalRounds != 3 {
		t.Errorf("RebuttalRounds = %d, want 3", got.RebuttalRounds)
	}
	if got.VoteTimeout != cfg.Debate.VoteTimeout {
		t.Errorf("VoteTimeout = %s, want %s", got.VoteTimeout, cfg.Debate.VoteTimeout)
	}
	if got.WordBudget != 150 {
		t.Errorf("WordBudget = %d, want 150", got.WordBudget)
	}
	if got.Streaming {
		t.Error("Streaming should follow the config")
	}
	if got.Archiver != nil {
		t.Error("nil archiver should stay nil")
	}
}

func TestRegistryConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Capacity = 7
	cfg.Registry.SessionTTL = 90 * time.Second

	got := registryConfig(cfg)
	if got.Capacity != 7 || got.SessionTTL != 90*time.Second {
		t.Errorf("registryConfig = %+v", got)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("PODIUM_ANTHROPIC_API_KEY", "")

	_, err := newClient(config.Default())
	if !errors.Is(err, config.ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{base: "http://localhost:8000", want: "ws://localhost:8000/ws/debates/abc"},
		{base: "http://localhost:8000/", want: "ws://localhost:8000/ws/debates/abc"},
		{base: "https://debates.example.com/podium", want: "wss://debates.example.com/podium/ws/debates/abc"},
		{base: "ws://127.0.0.1:9000", want: "ws://127.0.0.1:9000/ws/debates/abc"},
		{base: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := websocketURL(tt.base, "abc")
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("websocketURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("websocketURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	r := strings.NewReader(" con \nleftover")
	line, err := readLine(r)
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "con" {
		t.Errorf("line = %q, want con", line)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "leftover" {
		t.Errorf("consumed past the newline, rest = %q", rest)
	}

	line, err = readLine(strings.NewReader("pro"))
	if err != nil || line != "pro" {
		t.Errorf("readLine at EOF = %q, %v", line, err)
	}
	if _, err := readLine(strings.NewReader("")); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a much longer topic", 10); got != "a much ..." {
		t.Errorf("truncate = %q", got)
	}
}

func TestPlainPrinter(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	p := newPlainPrinter(&buf)

	for _, payload := range []debate.Payload{
		debate.DebateStarted{Topic: "Tabs or spaces", ProStyle: "academic", ConStyle: "humorous"},
		debate.PhaseChanged{Phase: debate.PhaseRebuttal, Round: 1},
		debate.MessageStarted{Speaker: debate.SpeakerPro},
		debate.MessageChunk{Speaker: debate.SpeakerPro, Chunk: "Tabs "},
		debate.MessageChunk{Speaker: debate.SpeakerPro, Chunk: "align."},
		debate.MessageCompleted{Speaker: debate.SpeakerPro, Content: "Tabs align."},
		debate.MessageStarted{Speaker: debate.SpeakerCon},
		debate.MessageCompleted{Speaker: debate.SpeakerCon, Content: "Spaces render."},
		debate.VoteReceived{Vote: debate.VoteTie, Message: "Audience vote: TIE", TimedOut: true},
		debate.DebateCompleted{Scoring: "PRO 7/10\n"},
	} {
		p.Print(debate.Event{DebateID: "d-1", Payload: payload})
	}

	out := buf.String()
	for _, want := range []string{
		"DEBATE TOPIC: Tabs or spaces\n",
		"--- REBUTTAL 1 ---\n",
		"[PRO]: Tabs align.\n\n",
		"[CON]: Spaces render.\n\n",
		"No vote received in time.",
		"[AUDIENCE]: Audience vote: TIE\n",
		"ARGUMENT SCORES\nPRO 7/10\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Tabs align.") != 1 {
		t.Errorf("streamed content printed twice:\n%s", out)
	}
}

func TestConfigLines(t *testing.T) {
	lines := configLines(config.Default())

	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Fatalf("lines not sorted: %q before %q", lines[i-1], lines[i])
		}
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "debate.rebuttal_rounds: 2") {
		t.Errorf("missing rebuttal rounds:\n%s", joined)
	}
	if strings.Contains(joined, "api_key") {
		t.Error("api key must not be listed")
	}
}

func TestOptionalStyle(t *testing.T) {
	if optionalStyle("") != nil {
		t.Error("unset flag should be left out of the request")
	}
	if got := optionalStyle("academic"); got == nil || *got != "academic" {
		t.Errorf("optionalStyle(academic) = %v", got)
	}

	body, err := json.Marshal(server.CreateDebateRequest{Topic: "Cats", ProStyle: optionalStyle("")})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "pro_style") {
		t.Errorf("body = %s, want pro_style omitted", body)
	}
}

func TestCreateRemoteDebate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/debates" {
			http.NotFound(w, r)
			return
		}
		var req server.CreateDebateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ProStyle != nil && *req.ProStyle == "bogus" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"unknown style: bogus"}`))
			return
		}
		json.NewEncoder(w).Encode(server.CreateDebateResponse{
			DebateID: "d-42", Topic: req.Topic, ProStyle: "passionate", ConStyle: "passionate",
		})
	}))
	defer srv.Close()

	got, err := createRemoteDebate(srv.URL+"/", server.CreateDebateRequest{Topic: "Cats"})
	if err != nil {
		t.Fatalf("createRemoteDebate: %v", err)
	}
	if got.DebateID != "d-42" || got.Topic != "Cats" {
		t.Errorf("response = %+v", got)
	}

	_, err = createRemoteDebate(srv.URL, server.CreateDebateRequest{Topic: "Cats", ProStyle: optionalStyle("bogus")})
	if err == nil || !strings.Contains(err.Error(), "unknown style: bogus") {
		t.Errorf("err = %v, want server detail", err)
	}
}

func TestRemoteConn(t *testing.T) {
	votes := make(chan server.InboundMessage, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(debate.Event{DebateID: "d-1", Payload: debate.VoteRequired{Prompt: "Who?"}})

		var msg server.InboundMessage
		if err := conn.ReadJSON(&msg); err == nil {
			votes <- msg
		}
		conn.WriteJSON(debate.Event{DebateID: "d-1", Payload: debate.VoteReceived{Vote: debate.VotePro, Message: "PRO"}})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	target, err := websocketURL(srv.URL, "d-1")
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	rc := newRemoteConn(conn)
	defer rc.Close()

	first := <-rc.Events()
	if first.Type() != debate.EventVoteRequired {
		t.Fatalf("first event = %s", first.Type())
	}
	rc.Vote(debate.VotePro)

	select {
	case msg := <-votes:
		if msg.Type != "vote" || msg.Vote != "PRO" {
			t.Errorf("inbound = %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("vote never reached the server")
	}

	second := <-rc.Events()
	if second.Type() != debate.EventVoteReceived {
		t.Errorf("second event = %s", second.Type())
	}
	if _, ok := <-rc.Events(); ok {
		t.Error("events should close after the close frame")
	}
}
