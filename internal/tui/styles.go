package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/podium/internal/debate"
)

// speakerColors mirrors the web client: PRO green, CON red, the moderator
// blue and the judge yellow.
var speakerColors = map[debate.Speaker]lipgloss.Color{
	debate.SpeakerPro:       lipgloss.Color("34"),
	debate.SpeakerCon:       lipgloss.Color("196"),
	debate.SpeakerModerator: lipgloss.Color("39"),
	debate.SpeakerJudge:     lipgloss.Color("214"),
	debate.SpeakerAudience:  lipgloss.Color("205"),
	debate.SpeakerScoring:   lipgloss.Color("141"),
}

// SpeakerColor returns the color used for a speaker's cards.
func SpeakerColor(s debate.Speaker) lipgloss.Color {
	if c, ok := speakerColors[s]; ok {
		return c
	}
	return lipgloss.Color("252")
}

type styles struct {
	title    lipgloss.Style
	topic    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	phase    lipgloss.Style
	footer   lipgloss.Style
	key      lipgloss.Style
	errorMsg lipgloss.Style
	done     lipgloss.Style
	divider  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),

		topic: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),

		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		phase: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("214")).
			Bold(true).
			Padding(0, 1),

		errorMsg: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		done: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),

		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")),
	}
}

// card renders one turn as a bordered block in the speaker's color.
func card(s debate.Speaker, title, body string, width int) string {
	color := SpeakerColor(s)
	header := lipgloss.NewStyle().Bold(true).Foreground(color).Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
	if width > 4 {
		box = box.Width(width - 2)
	}
	return box.Render(header + "\n" + body)
}
