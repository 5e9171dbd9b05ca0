package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/config"
	"github.com/ShayCichocki/podium/internal/persona"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List debater styles",
	Long: `List the debater styles available for --pro and --con, including any
description overrides from personas.yaml in the personas directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return listStyles(cfg)
	},
}

func listStyles(cfg *config.Config) error {
	catalog := persona.New()
	if err := catalog.LoadFile(persona.PathIn(cfg.PersonasDir())); err != nil {
		return err
	}
	bold := color.New(color.Bold)
	for _, s := range catalog.Styles() {
		marker := " "
		if s.Name == persona.DefaultStyle {
			marker = "*"
		}
		fmt.Printf("%s %-12s %s\n", marker, bold.Sprint(s.Name), s.Description)
	}
	return nil
}
