package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/export"
	"github.com/ShayCichocki/podium/internal/state"
)

var (
	historyLimit  int
	historyStatus string
	historyFormat string
	historyPurge  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived debates",
	Long: `Browse debates recorded in the archive.

Subcommands:
  list             List recent debates
  show <id>        Print a debate's transcript
  delete <id>      Remove a debate from the archive
  purge --older-than DURATION
                   Remove debates created before now minus DURATION`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent debates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(db *state.DB) error {
			debates, err := db.ListDebates(historyLimit, debate.SessionStatus(historyStatus))
			if err != nil {
				return err
			}
			if len(debates) == 0 {
				fmt.Println("No archived debates.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tVOTE\tENTRIES\tTOPIC")
			for _, d := range debates {
				vote := "-"
				if d.Vote != nil {
					vote = d.Vote.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					d.ID, d.CreatedAt.Local().Format("2006-01-02 15:04"), d.Status, vote, d.Entries, truncate(d.Topic, 60))
			}
			return tw.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a debate's transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(db *state.DB) error {
			d, err := db.GetDebate(args[0])
			if err != nil {
				return err
			}
			doc := export.Document{Topic: d.Topic, Entries: d.Transcript, Vote: d.Vote, Scoring: d.Scoring}
			switch historyFormat {
			case "md", "markdown":
				fmt.Print(export.Markdown(doc))
			case "html":
				out, err := export.HTML(doc)
				if err != nil {
					return err
				}
				fmt.Print(out)
			default:
				return fmt.Errorf("unknown format %q: must be md or html", historyFormat)
			}
			if d.Failure != "" {
				fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Failed:"), d.Failure)
			}
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a debate from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(db *state.DB) error {
			if err := db.DeleteDebate(args[0]); err != nil {
				return err
			}
			printStatus("✓", "Deleted "+args[0], color.FgGreen)
			return nil
		})
	},
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove old debates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyPurge <= 0 {
			return errors.New("--older-than must be positive")
		}
		return withArchive(func(db *state.DB) error {
			n, err := db.PurgeOlderThan(historyPurge)
			if err != nil {
				return err
			}
			printStatus("✓", fmt.Sprintf("Removed %d debate(s)", n), color.FgGreen)
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of debates to list (0 for all)")
	historyListCmd.Flags().StringVar(&historyStatus, "status", "", "Only list debates with this status")
	historyShowCmd.Flags().StringVar(&historyFormat, "format", "md", "Output format: md or html")
	historyPurgeCmd.Flags().DurationVar(&historyPurge, "older-than", 0, "Age of the debates to remove, e.g. 720h")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyPurgeCmd)
}

// withArchive opens the configured archive for the duration of fn.
func withArchive(fn func(db *state.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := state.OpenArchive(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

