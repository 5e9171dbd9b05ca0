package debate

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTranscript_AppendOnly(t *testing.T) {
	tr := NewTranscript("Cats vs dogs")
	tr.Append(Entry{Speaker: SpeakerModerator, Content: "Welcome.", Phase: PhaseIntroduction})

	snapshot := tr.Entries()
	tr.Append(Entry{Speaker: SpeakerPro, Content: "Cats.", Phase: PhaseOpeningPro})

	if len(snapshot) != 1 {
		t.Errorf("earlier snapshot changed length to %d", len(snapshot))
	}
	if tr.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tr.Len())
	}
	last, ok := tr.Last()
	if !ok || last.Speaker != SpeakerPro {
		t.Errorf("Last = %+v, %v; want PRO entry", last, ok)
	}

	// Mutating a returned copy must not touch the log.
	entries := tr.Entries()
	entries[0].Content = "edited"
	if tr.Entries()[0].Content != "Welcome." {
		t.Error("Entries returned a shared slice")
	}
}

func TestTranscript_Render(t *testing.T) {
	tr := NewTranscript("Remote work")
	if got, want := tr.Render(), "DEBATE TOPIC: Remote work\n\n"; got != want {
		t.Errorf("empty Render = %q, want %q", got, want)
	}

	tr.Append(Entry{Speaker: SpeakerModerator, Content: "Hello."})
	tr.Append(Entry{Speaker: SpeakerAudience, Content: "Audience vote: PRO is winning."})

	want := "DEBATE TOPIC: Remote work\n\n[MODERATOR]: Hello.\n\n[AUDIENCE]: Audience vote: PRO is winning.\n\n"
	if got := tr.Render(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestParseVote(t *testing.T) {
	tests := []struct {
		in      string
		want    Vote
		wantErr bool
	}{
		{"PRO", VotePro, false},
		{"con", VoteCon, false},
		{" Tie ", VoteTie, false},
		{"maybe", VoteTie, true},
		{"", VoteTie, true},
	}
	for _, tt := range tests {
		got, err := ParseVote(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVote(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidVote) {
			t.Errorf("ParseVote(%q) error = %v, want ErrInvalidVote", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseVote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEntry_JSON(t *testing.T) {
	b, err := json.Marshal(Entry{Speaker: SpeakerScoring, Content: "x", Phase: PhaseRebuttal})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"speaker":"SCORING","content":"x","phase":"rebuttal"}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}

	if _, err := json.Marshal(Entry{Speaker: Speaker(42)}); err == nil {
		t.Error("expected error marshalling an unknown speaker")
	}
	var e Entry
	if err := json.Unmarshal([]byte(`{"speaker":"NOBODY","content":"","phase":"vote"}`), &e); err == nil {
		t.Error("expected error decoding an unknown speaker")
	}
}

func TestIsClientError(t *testing.T) {
	if !IsClientError(ErrInvalidPersona) {
		t.Error("ErrInvalidPersona should be a client error")
	}
	if IsClientError(errAgentDown) {
		t.Error("agent failure should not be a client error")
	}
}
