package persona

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/podium/internal/debate"
)

func TestCatalog_Names(t *testing.T) {
	got := strings.Join(New().Names(), ",")
	if got != "passionate,aggressive,academic,humorous" {
		t.Errorf("Names = %s", got)
	}
}

func TestCatalog_Cast(t *testing.T) {
	c := New()
	cast, err := c.Cast("humorous", "academic")
	if err != nil {
		t.Fatalf("Cast error: %v", err)
	}

	if cast.ProStyle != "humorous" || cast.ConStyle != "academic" {
		t.Errorf("styles = %s/%s", cast.ProStyle, cast.ConStyle)
	}
	if !strings.HasPrefix(cast.Pro.SystemPrompt, "You are a witty debater arguing IN FAVOR") {
		t.Errorf("pro prompt = %q", cast.Pro.SystemPrompt)
	}
	if !strings.HasPrefix(cast.Con.SystemPrompt, "You are a scholarly debater arguing AGAINST") {
		t.Errorf("con prompt = %q", cast.Con.SystemPrompt)
	}
	for _, p := range []debate.Participant{cast.Pro, cast.Con} {
		if !strings.HasSuffix(p.SystemPrompt, DebaterRules) {
			t.Errorf("%s prompt missing shared rules", p.Name)
		}
		if p.Temperature != DefaultDebaterTemperature {
			t.Errorf("%s temperature = %v, want %v", p.Name, p.Temperature, DefaultDebaterTemperature)
		}
	}
	if cast.Judge.SystemPrompt != JudgePrompt || cast.Judge.Temperature != DefaultJudgeTemperature {
		t.Errorf("judge = %+v", cast.Judge)
	}
	if cast.Judge.Role != "moderator and judge" {
		t.Errorf("judge role = %q", cast.Judge.Role)
	}
}

func TestCatalog_CastDefaultsEmptyStyle(t *testing.T) {
	cast, err := New().Cast("", "")
	if err != nil {
		t.Fatalf("Cast error: %v", err)
	}
	if cast.ProStyle != DefaultStyle || cast.ConStyle != DefaultStyle {
		t.Errorf("styles = %s/%s, want %s", cast.ProStyle, cast.ConStyle, DefaultStyle)
	}
}

func TestCatalog_CastInvalid(t *testing.T) {
	c := New()
	tests := []struct{ pro, con, field string }{
		{"sarcastic", "academic", "pro_style"},
		{"academic", "Academic", "con_style"},
	}
	for _, tt := range tests {
		_, err := c.Cast(tt.pro, tt.con)
		if !errors.Is(err, debate.ErrInvalidPersona) {
			t.Errorf("Cast(%q, %q) error = %v, want ErrInvalidPersona", tt.pro, tt.con, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.field) {
			t.Errorf("error %q does not name %s", err, tt.field)
		}
	}
}

func TestCatalog_SetTemperatures(t *testing.T) {
	c := New()
	c.SetTemperatures(1.0, 0.1)
	cast, _ := c.Cast("academic", "academic")
	if cast.Pro.Temperature != 1.0 || cast.Judge.Temperature != 0.1 {
		t.Errorf("temperatures = %v/%v", cast.Pro.Temperature, cast.Judge.Temperature)
	}
}

func writeOverrides(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
}

func TestCatalog_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeOverrides(t, path, `
judge: |
  You are a strict judge.
styles:
  academic:
    description: Footnotes everywhere
    pro: |
      You cite everything in favor.
  telepathic:
    description: Should be ignored
`)

	c := New()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	s, _ := c.Lookup("academic")
	if s.Description != "Footnotes everywhere" {
		t.Errorf("description = %q", s.Description)
	}
	if s.Pro != "You cite everything in favor.\n" {
		t.Errorf("pro = %q", s.Pro)
	}
	if !strings.HasPrefix(s.Con, "You are a scholarly debater arguing AGAINST") {
		t.Error("con text should keep the built-in when not overridden")
	}
	if _, ok := c.Lookup("telepathic"); ok {
		t.Error("unknown style should not be added")
	}
	if len(c.Names()) != 4 {
		t.Errorf("Names = %v, want the four built-in styles", c.Names())
	}
	if c.Judge() != "You are a strict judge.\n" {
		t.Errorf("judge = %q", c.Judge())
	}
}

func TestCatalog_LoadFileMissingRestoresDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeOverrides(t, path, "styles:\n  humorous:\n    description: Dad jokes\n")

	c := New()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	os.Remove(path)
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile on missing file error: %v", err)
	}
	s, _ := c.Lookup("humorous")
	if s.Description != "Witty with satire, clever analogies, and entertaining delivery" {
		t.Errorf("description = %q, want built-in", s.Description)
	}
}

func TestCatalog_LoadFileInvalidKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeOverrides(t, path, "styles:\n  humorous:\n    description: Puns\n")
	c := New()
	c.LoadFile(path)

	writeOverrides(t, path, "styles: [not, a, map")
	if err := c.LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
	if s, _ := c.Lookup("humorous"); s.Description != "Puns" {
		t.Errorf("description = %q, want previous override kept", s.Description)
	}
}

func TestWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := PathIn(dir)

	c := New()
	w, err := Watch(c, path)
	if err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	defer w.Close()

	writeOverrides(t, path, "styles:\n  aggressive:\n    description: Shouting\n")

	deadline := time.After(5 * time.Second)
	for {
		if s, _ := c.Lookup("aggressive"); s.Description == "Shouting" {
			return
		}
		select {
		case <-w.reloaded:
		case <-deadline:
			t.Fatal("catalog was not reloaded after the file changed")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
