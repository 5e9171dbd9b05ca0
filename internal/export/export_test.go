package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/podium/internal/debate"
)

func sampleDoc() Document {
	vote := debate.VotePro
	return Document{
		Topic: "Remote work beats the office",
		Entries: []debate.Entry{
			{Speaker: debate.SpeakerModerator, Phase: debate.PhaseIntroduction, Content: "Welcome to tonight's debate."},
			{Speaker: debate.SpeakerPro, Phase: debate.PhaseOpeningPro, Content: "No commute."},
			{Speaker: debate.SpeakerCon, Phase: debate.PhaseOpeningCon, Content: "<script>alert(1)</script> Hallway chats."},
		},
		Vote:    &vote,
		Scoring: "PRO: 8/10\nCON: 6/10\n",
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleDoc())

	if !strings.HasPrefix(got, "DEBATE TOPIC: Remote work beats the office\n\n") {
		t.Errorf("missing topic header:\n%s", got)
	}
	if !strings.Contains(got, "[PRO]: No commute.\n\n") {
		t.Errorf("missing PRO entry:\n%s", got)
	}
	if strings.Index(got, "[MODERATOR]") > strings.Index(got, "[CON]") {
		t.Error("entries out of order")
	}
	if !strings.HasSuffix(got, "## Argument Scores\n\nPRO: 8/10\nCON: 6/10\n") {
		t.Errorf("missing scores section:\n%s", got)
	}
}

func TestMarkdown_NoScoring(t *testing.T) {
	doc := sampleDoc()
	doc.Scoring = ""
	if strings.Contains(Markdown(doc), "Argument Scores") {
		t.Error("scores section rendered without scoring")
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML(sampleDoc())
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(got, "<title>Remote work beats the office</title>") {
		t.Errorf("missing title:\n%s", got)
	}
	if !strings.Contains(got, "<h2") || !strings.Contains(got, "Argument Scores") {
		t.Errorf("scores heading not rendered:\n%s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html passed through:\n%s", got)
	}
	if !strings.Contains(got, "<strong>PRO</strong>") || !strings.Contains(got, "No commute.") {
		t.Errorf("missing PRO entry:\n%s", got)
	}
	if !strings.Contains(got, "<h1>Remote work beats the office</h1>") {
		t.Errorf("missing topic heading:\n%s", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Cats vs dogs", "debate_Cats_vs_dogs.md"},
		{"Should AI be regulated by governments worldwide", "debate_Should_AI_be_regulated_by_gove.md"},
		{"a/b", "debate_a_b.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.topic); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	path, err := Save(dir, sampleDoc())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "debate_Remote_work_beats_the_office.md" {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != Markdown(sampleDoc()) {
		t.Error("saved content differs from Markdown()")
	}
}

func TestFromRecord(t *testing.T) {
	rec := debate.Record{Topic: "t", Scoring: "s", Transcript: sampleDoc().Entries}
	doc := FromRecord(rec)
	if doc.Topic != "t" || doc.Scoring != "s" || len(doc.Entries) != 3 {
		t.Errorf("FromRecord = %+v", doc)
	}
}
