package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/podium/internal/debate"
)

var speakerColors = map[debate.Speaker]*color.Color{
	debate.SpeakerPro:       color.New(color.FgGreen, color.Bold),
	debate.SpeakerCon:       color.New(color.FgRed, color.Bold),
	debate.SpeakerModerator: color.New(color.FgBlue, color.Bold),
	debate.SpeakerJudge:     color.New(color.FgYellow, color.Bold),
	debate.SpeakerAudience:  color.New(color.FgMagenta, color.Bold),
	debate.SpeakerScoring:   color.New(color.FgCyan, color.Bold),
}

func speakerLabel(s debate.Speaker) string {
	label := "[" + s.String() + "]:"
	if c, ok := speakerColors[s]; ok {
		return c.Sprint(label)
	}
	return label
}

// plainPrinter writes debate events as text in the transcript layout.
type plainPrinter struct {
	w io.Writer
	// streamed is true once a chunk of the current turn has been printed.
	streamed bool
}

func newPlainPrinter(w io.Writer) *plainPrinter {
	return &plainPrinter{w: w}
}

// Print writes one event.
func (p *plainPrinter) Print(ev debate.Event) {
	switch e := ev.Payload.(type) {
	case debate.DebateStarted:
		fmt.Fprintf(p.w, "%s %s\n", color.New(color.Bold).Sprint("DEBATE TOPIC:"), e.Topic)
		fmt.Fprintf(p.w, "PRO: %s  CON: %s\n\n", e.ProStyle, e.ConStyle)

	case debate.PhaseChanged:
		name := strings.ToUpper(strings.ReplaceAll(e.Phase.String(), "_", " "))
		if e.Phase == debate.PhaseRebuttal && e.Round > 0 {
			name = fmt.Sprintf("%s %d", name, e.Round)
		}
		fmt.Fprintf(p.w, "%s\n", color.New(color.Faint).Sprintf("--- %s ---", name))

	case debate.MessageStarted:
		p.streamed = false
		fmt.Fprintf(p.w, "%s ", speakerLabel(e.Speaker))

	case debate.MessageChunk:
		p.streamed = true
		fmt.Fprint(p.w, e.Chunk)

	case debate.MessageCompleted:
		if !p.streamed {
			fmt.Fprint(p.w, e.Content)
		}
		p.streamed = false
		fmt.Fprint(p.w, "\n\n")

	case debate.VoteRequired:
		fmt.Fprintf(p.w, "%s %s (pro/con/tie): ", color.New(color.FgMagenta, color.Bold).Sprint("VOTE:"), e.Prompt)

	case debate.VoteReceived:
		if e.TimedOut {
			fmt.Fprintln(p.w, color.YellowString("\nNo vote received in time."))
		}
		fmt.Fprintf(p.w, "%s %s\n\n", speakerLabel(debate.SpeakerAudience), e.Message)

	case debate.DebateCompleted:
		if e.Scoring != "" {
			fmt.Fprintf(p.w, "%s\n%s\n\n", color.New(color.FgCyan, color.Bold).Sprint("ARGUMENT SCORES"), strings.TrimSpace(e.Scoring))
		}

	case debate.Failed:
		if p.streamed {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintf(p.w, "%s %s\n", color.RedString("Error:"), e.Message)
	}
}
