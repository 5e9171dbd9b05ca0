package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/podium/internal/debate"
)

func ev(p debate.Payload) EventMsg {
	return EventMsg{Event: debate.Event{DebateID: "d-1", Payload: p}}
}

func newSizedView(vote VoteFunc) *DebateView {
	m := NewDebateView(make(chan debate.Event), vote)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 200})
	return m
}

func TestDebateView_StreamedTurn(t *testing.T) {
	m := newSizedView(nil)

	m.Update(ev(debate.DebateStarted{Topic: "Cats are better than dogs", ProStyle: "passionate", ConStyle: "academic"}))
	m.Update(ev(debate.PhaseChanged{Phase: debate.PhaseOpeningPro}))
	m.Update(ev(debate.MessageStarted{Speaker: debate.SpeakerPro}))
	m.Update(ev(debate.MessageChunk{Speaker: debate.SpeakerPro, Chunk: "Cats "}))
	m.Update(ev(debate.MessageChunk{Speaker: debate.SpeakerPro, Chunk: "purr."}))

	view := m.View()
	if !strings.Contains(view, "Cats are better than dogs") {
		t.Error("topic missing from header")
	}
	if !strings.Contains(view, "opening_pro") {
		t.Error("phase missing from header")
	}
	if !strings.Contains(view, "Cats purr.") {
		t.Errorf("streamed content missing:\n%s", view)
	}
	if len(m.Transcript()) != 0 {
		t.Error("unfinished turn reported in transcript")
	}

	m.Update(ev(debate.MessageCompleted{Speaker: debate.SpeakerPro, Content: "Cats purr.", Label: "Opening Statement"}))
	entries := m.Transcript()
	if len(entries) != 1 {
		t.Fatalf("len(Transcript) = %d, want 1", len(entries))
	}
	if entries[0].Speaker != debate.SpeakerPro || entries[0].Content != "Cats purr." {
		t.Errorf("entry = %+v", entries[0])
	}
	if !strings.Contains(m.View(), "Opening Statement") {
		t.Error("label missing from completed card")
	}
}

func TestDebateView_CompleteWithoutChunks(t *testing.T) {
	m := newSizedView(nil)

	m.Update(ev(debate.MessageStarted{Speaker: debate.SpeakerModerator}))
	m.Update(ev(debate.MessageCompleted{Speaker: debate.SpeakerModerator, Content: "Welcome."}))
	m.Update(ev(debate.MessageCompleted{Speaker: debate.SpeakerJudge, Content: "PRO wins."}))

	entries := m.Transcript()
	if len(entries) != 2 {
		t.Fatalf("len(Transcript) = %d, want 2", len(entries))
	}
	if entries[1].Speaker != debate.SpeakerJudge {
		t.Errorf("second speaker = %v, want JUDGE", entries[1].Speaker)
	}
}

func TestDebateView_Vote(t *testing.T) {
	var got []debate.Vote
	m := newSizedView(func(v debate.Vote) { got = append(got, v) })

	// Keys do nothing until a vote is requested.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if len(got) != 0 {
		t.Fatalf("vote sent before vote_required: %v", got)
	}

	m.Update(ev(debate.VoteRequired{Prompt: "Who is winning so far?", Message: "Who is winning so far?"}))
	if !m.Voting() {
		t.Fatal("expected voting state")
	}
	if !strings.Contains(m.View(), "Who is winning so far?") {
		t.Error("vote prompt missing from footer")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if len(got) != 1 || got[0] != debate.VoteCon {
		t.Errorf("votes = %v, want [CON]", got)
	}
	if m.Voting() {
		t.Error("still voting after a vote was cast")
	}

	m.Update(ev(debate.VoteReceived{Vote: debate.VoteCon, Message: debate.AudienceMessage(debate.VoteCon)}))
	entries := m.Transcript()
	if len(entries) != 1 || entries[0].Speaker != debate.SpeakerAudience {
		t.Errorf("audience entry = %+v", entries)
	}
}

func TestDebateView_VoteTimedOut(t *testing.T) {
	m := newSizedView(func(debate.Vote) { t.Error("vote func called after timeout") })

	m.Update(ev(debate.VoteRequired{Prompt: "Who is winning so far?"}))
	m.Update(ev(debate.VoteReceived{Vote: debate.VoteTie, Message: "Audience vote: TIE is winning.", TimedOut: true}))
	if m.Voting() {
		t.Error("voting state survived vote_received")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
}

func TestDebateView_Completed(t *testing.T) {
	m := newSizedView(nil)

	m.Update(ev(debate.DebateCompleted{Scoring: "PRO 8/10"}))
	if !m.Completed() {
		t.Fatal("Completed = false")
	}
	view := m.View()
	if !strings.Contains(view, "ARGUMENT SCORES") || !strings.Contains(view, "PRO 8/10") {
		t.Errorf("scores missing:\n%s", view)
	}
	if !strings.Contains(view, "Debate complete.") {
		t.Error("completion footer missing")
	}
}

func TestDebateView_Failed(t *testing.T) {
	m := newSizedView(nil)

	m.Update(ev(debate.MessageStarted{Speaker: debate.SpeakerCon}))
	m.Update(ev(debate.Failed{Message: "agent unavailable"}))
	if m.Failure() != "agent unavailable" {
		t.Errorf("Failure = %q", m.Failure())
	}
	if !strings.Contains(m.View(), "Debate failed: agent unavailable") {
		t.Error("failure footer missing")
	}
}

func TestDebateView_StreamClosed(t *testing.T) {
	m := newSizedView(nil)

	m.Update(StreamClosedMsg{})
	if !strings.Contains(m.View(), "Connection closed.") {
		t.Error("closed footer missing")
	}
}

func TestDebateView_Quit(t *testing.T) {
	m := newSizedView(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan debate.Event, 1)
	ch <- debate.Event{DebateID: "d-1", Payload: debate.PhaseChanged{Phase: debate.PhaseVerdict}}

	msg := waitForEvent(ch)()
	got, ok := msg.(EventMsg)
	if !ok {
		t.Fatalf("msg = %T, want EventMsg", msg)
	}
	if got.Event.Type() != debate.EventPhaseChange {
		t.Errorf("type = %s", got.Event.Type())
	}

	close(ch)
	if _, ok := waitForEvent(ch)().(StreamClosedMsg); !ok {
		t.Error("closed channel should yield StreamClosedMsg")
	}
}

func TestSpeakerColor(t *testing.T) {
	if SpeakerColor(debate.SpeakerPro) == SpeakerColor(debate.SpeakerCon) {
		t.Error("PRO and CON share a color")
	}
	if SpeakerColor(debate.Speaker(99)) == "" {
		t.Error("unknown speaker has no fallback color")
	}
}
