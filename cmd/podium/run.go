package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/export"
	"github.com/ShayCichocki/podium/internal/tui"
)

var (
	runPlain    bool
	runSaveDir  string
	runProStyle string
	runConStyle string
	runRounds   int
)

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Run a debate in this terminal",
	Long: `Run a debate locally and watch it stream.

Without a topic, prompts for one. By default the debate is shown in a
full-screen viewer where p, c and t cast the audience vote; --plain
prints the debate as colored text and reads the vote from stdin.

Styles (--pro, --con): passionate, aggressive, academic, humorous.
Use --save to write the transcript as markdown when the debate ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDebate,
}

func init() {
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Print the debate as text instead of the full-screen viewer")
	runCmd.Flags().StringVar(&runSaveDir, "save", "", "Directory to save the markdown transcript in")
	runCmd.Flags().StringVar(&runProStyle, "pro", "", "PRO debater style (default passionate)")
	runCmd.Flags().StringVar(&runConStyle, "con", "", "CON debater style (default passionate)")
	runCmd.Flags().IntVar(&runRounds, "rounds", -1, "Rebuttal rounds (overrides debate.rebuttal_rounds)")
}

func runDebate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runRounds >= 0 {
		cfg.Debate.RebuttalRounds = runRounds
	}

	topic := ""
	if len(args) > 0 {
		topic = strings.TrimSpace(args[0])
	}
	if topic == "" {
		if runPlain {
			topic = tui.DefaultTopic
		} else {
			var ok bool
			topic, ok, err = tui.AskTopic()
			if err != nil {
				return fmt.Errorf("topic prompt: %w", err)
			}
			if !ok {
				return nil
			}
		}
	}

	eng, err := newEngine(cfg, engineOptions{capacity: 1})
	if err != nil {
		return err
	}
	defer eng.Close()

	sess, err := eng.registry.Create(topic, runProStyle, runConStyle)
	if err != nil {
		return err
	}
	defer eng.registry.Remove(sess.ID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nReceived interrupt, stopping debate...")
			cancel()
		case <-ctx.Done():
		}
	}()

	events, err := eng.orchestrator.Run(ctx, sess)
	if err != nil {
		return err
	}

	if runPlain {
		p := newPlainPrinter(os.Stdout)
		for ev := range events {
			p.Print(ev)
			if _, ok := ev.Payload.(debate.VoteRequired); ok {
				go readVote(os.Stdin, sess)
			}
		}
	} else {
		// Log lines would tear the full-screen view.
		originalOutput := log.Writer()
		log.SetOutput(io.Discard)
		view := tui.NewDebateView(events, func(v debate.Vote) { sess.SubmitVote(v) })
		err := tui.Run(view)
		log.SetOutput(originalOutput)
		// Quitting early abandons the debate; drain so the run can finish.
		cancel()
		for range events {
		}
		if err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
	}

	rec := sess.Record()
	switch rec.Status {
	case debate.SessionCompleted:
		printStatus("✓", "Debate complete", color.FgGreen)
	case debate.SessionFailed:
		printStatus("✗", "Debate failed: "+rec.Failure, color.FgRed)
	default:
		printStatus("⚠", "Debate stopped", color.FgYellow)
	}
	printStatus("•", "Usage: "+eng.client.Tracker().Snapshot().String(), color.FgCyan)
	if eng.archive != nil && rec.Status != debate.SessionPending {
		printStatus("•", "Archived as "+rec.ID, color.FgCyan)
	}

	if runSaveDir != "" && len(rec.Transcript) > 0 {
		path, err := export.Save(runSaveDir, export.FromRecord(rec))
		if err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		printStatus("✓", "Transcript saved to "+path, color.FgGreen)
	}
	if rec.Status == debate.SessionFailed {
		return fmt.Errorf("debate failed: %s", rec.Failure)
	}
	return nil
}

// readVote reads one line from r and submits it as the audience vote.
// Anything unrecognised counts as TIE.
func readVote(r io.Reader, sess *debate.Session) {
	line, err := readLine(r)
	if err != nil {
		return
	}
	v, err := debate.ParseVote(line)
	if err != nil {
		fmt.Printf("%s %q, counting it as %s\n", color.YellowString("Unrecognised vote"), line, v)
	}
	sess.SubmitVote(v)
}

// readLine reads up to a newline one byte at a time so nothing past the
// line is consumed.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSpace(b.String()), nil
			}
			b.WriteByte(buf[0])
		}
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return strings.TrimSpace(b.String()), nil
			}
			return "", err
		}
	}
}
