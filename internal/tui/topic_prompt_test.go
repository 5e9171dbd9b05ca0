package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewTopicPrompt(t *testing.T) {
	p := NewTopicPrompt()

	if p.width != 80 {
		t.Errorf("Default width = %d, want 80", p.width)
	}
	if !p.input.Focused() {
		t.Error("prompt should start focused")
	}
}

func TestTopicPrompt_SetWidth(t *testing.T) {
	p := NewTopicPrompt()
	p.SetWidth(120)

	if p.width != 120 {
		t.Errorf("width = %d, want 120", p.width)
	}
	if p.input.Width != 116 {
		t.Errorf("input width = %d, want 116", p.input.Width)
	}
}

func TestTopicPrompt_EnterWithInput(t *testing.T) {
	p := NewTopicPrompt()
	p.input.SetValue("  Pineapple on pizza  ")

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command after enter")
	}
	if p.Topic() != "Pineapple on pizza" {
		t.Errorf("Topic = %q, want trimmed input", p.Topic())
	}
	if p.Cancelled() {
		t.Error("prompt should not be cancelled")
	}
}

func TestTopicPrompt_EnterEmptyUsesDefault(t *testing.T) {
	p := NewTopicPrompt()

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Topic() != DefaultTopic {
		t.Errorf("Topic = %q, want default", p.Topic())
	}
}

func TestTopicPrompt_Escape(t *testing.T) {
	p := NewTopicPrompt()
	p.input.SetValue("half typed")

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !p.Cancelled() {
		t.Error("Cancelled should be true after esc")
	}
	if p.Topic() != "" {
		t.Errorf("Topic = %q, want empty", p.Topic())
	}
}

func TestTopicPrompt_Typing(t *testing.T) {
	p := NewTopicPrompt()

	for _, r := range "cats" {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if p.input.Value() != "cats" {
		t.Errorf("input = %q, want cats", p.input.Value())
	}
}
