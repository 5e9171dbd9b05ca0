package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "Streamed multi-agent debates",
	Long: `Podium stages a structured debate between two AI agents arguing opposite
sides of a topic, moderated and judged by a third.

The debate streams phase by phase: introduction, opening statements,
rebuttal rounds, an audience vote, closing statements, a verdict and a
per-argument scoring pass.

Run a debate locally with 'podium run', or start the HTTP and websocket
server with 'podium serve' and follow a debate with 'podium watch'.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/podium/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the file named by --config, or the usual search path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}
