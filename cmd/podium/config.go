package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/config"
	"github.com/ShayCichocki/podium/internal/state"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View or modify Podium configuration.

Configuration is stored at ~/.config/podium/config.yaml
Project-specific overrides can be placed in .podium.yaml
Environment variables use the PODIUM_ prefix, e.g. PODIUM_DEBATE_REBUTTAL_ROUNDS.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		displayAllConfig(cfg)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config, personas and archive locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
		project := config.GetProjectConfigPath()
		if project == "" {
			project = "(none)"
		}
		fmt.Printf("project config: %s\n", project)
		fmt.Printf("personas:       %s\n", cfg.PersonasDir())
		archive := cfg.Archive.Path
		if archive == "" {
			archive = state.DefaultPath()
		}
		fmt.Printf("archive:        %s\n", archive)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the Anthropic API key in the user config",
	Long: `Store the Anthropic API key in the user config file.

Without an argument the key is read from stdin. ANTHROPIC_API_KEY and
PODIUM_ANTHROPIC_API_KEY still take precedence over the stored key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) > 0 {
			key = args[0]
		} else {
			fmt.Print("Anthropic API key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = line
		}
		if err := config.SetAPIKey(key); err != nil {
			return err
		}
		printStatus("✓", "API key saved to "+config.GetUserConfigPath(), color.FgGreen)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetKeyCmd)
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, src := config.ResolveAPIKey(cfg)
	fmt.Printf("anthropic.api_key: %s (%s)\n", config.MaskAPIKey(key), src)

	for _, line := range configLines(cfg) {
		fmt.Println(line)
	}
}

// configLines renders every setting but the API key as sorted key: value
// lines.
func configLines(cfg *config.Config) []string {
	values := map[string]any{
		"anthropic.model":             cfg.Anthropic.Model,
		"anthropic.max_tokens":        cfg.Anthropic.MaxTokens,
		"anthropic.use_bedrock":       cfg.Anthropic.UseBedrock,
		"anthropic.aws_region":        cfg.Anthropic.AWSRegion,
		"anthropic.aws_profile":       cfg.Anthropic.AWSProfile,
		"debate.rebuttal_rounds":      cfg.Debate.RebuttalRounds,
		"debate.vote_timeout":         cfg.Debate.VoteTimeout,
		"debate.word_budget":          cfg.Debate.WordBudget,
		"debate.streaming":            cfg.Debate.Streaming,
		"debate.bridge_buffer":        cfg.Debate.BridgeBuffer,
		"debate.temperature_debaters": cfg.Debate.TemperatureDebaters,
		"debate.temperature_judge":    cfg.Debate.TemperatureJudge,
		"server.addr":                 cfg.Server.Addr,
		"server.allowed_origins":      strings.Join(cfg.Server.AllowedOrigins, ","),
		"server.read_limit":           cfg.Server.ReadLimit,
		"registry.capacity":           cfg.Registry.Capacity,
		"registry.session_ttl":        cfg.Registry.SessionTTL,
		"registry.sweep_interval":     cfg.Registry.SweepInterval,
		"archive.enabled":             cfg.Archive.Enabled,
		"archive.path":                cfg.Archive.Path,
		"personas.dir":                cfg.Personas.Dir,
		"personas.watch":              cfg.Personas.Watch,
		"log.file":                    cfg.Log.File,
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, values[k]))
	}
	return lines
}
