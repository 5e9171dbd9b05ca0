package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultTopic is used when the prompt is submitted empty.
const DefaultTopic = "Should artificial intelligence be regulated by governments?"

// TopicSubmittedMsg is sent when the user submits a topic.
type TopicSubmittedMsg struct {
	Topic string
}

// TopicPrompt is a one-line input asking for the debate topic.
type TopicPrompt struct {
	input     textinput.Model
	width     int
	topic     string
	cancelled bool
}

// NewTopicPrompt creates a focused prompt.
func NewTopicPrompt() *TopicPrompt {
	ti := textinput.New()
	ti.Placeholder = DefaultTopic
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	return &TopicPrompt{
		input: ti,
		width: 80,
	}
}

// SetWidth sets the width of the prompt box.
func (p *TopicPrompt) SetWidth(width int) {
	p.width = width
	p.input.Width = width - 4 // prompt and padding
}

// Init implements tea.Model.
func (p *TopicPrompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p *TopicPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetWidth(msg.Width)
		return p, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			p.topic = strings.TrimSpace(p.input.Value())
			if p.topic == "" {
				p.topic = DefaultTopic
			}
			topic := p.topic
			return p, tea.Sequence(
				func() tea.Msg { return TopicSubmittedMsg{Topic: topic} },
				tea.Quit,
			)
		case tea.KeyCtrlC, tea.KeyEsc:
			p.cancelled = true
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View implements tea.Model.
func (p *TopicPrompt) View() string {
	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))

	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(p.width - 2)

	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).
		Render("enter to start (empty for the default topic) • esc to cancel")

	return headingStyle.Render("Enter debate topic") + "\n" +
		boxStyle.Render(promptStyle.Render("> ")+p.input.View()) + "\n" + hint + "\n"
}

// Topic returns the submitted topic, or "" if nothing was submitted.
func (p *TopicPrompt) Topic() string {
	return p.topic
}

// Cancelled reports whether the user left without submitting.
func (p *TopicPrompt) Cancelled() bool {
	return p.cancelled
}

// AskTopic runs the prompt inline and returns the chosen topic. ok is false
// when the user cancelled.
func AskTopic() (topic string, ok bool, err error) {
	p := NewTopicPrompt()
	if _, err := tea.NewProgram(p).Run(); err != nil {
		return "", false, err
	}
	if p.Cancelled() {
		return "", false, nil
	}
	return p.Topic(), true, nil
}
