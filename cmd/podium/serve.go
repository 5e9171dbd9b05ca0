package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/server"
)

var (
	serveAddr         string
	serveNoArchive    bool
	serveShutdownWait time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	Long: `Start the debate server.

Clients create a debate with POST /api/debates, then open
/ws/debates/{id} to start it and receive its events. Votes are sent
over the websocket as {"type": "vote", "vote": "PRO"} or with
POST /api/debates/{id}/vote.

Finished debates are archived unless archive.enabled is false.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveNoArchive, "no-archive", false, "Do not archive finished debates")
	serveCmd.Flags().DurationVar(&serveShutdownWait, "shutdown-timeout", 10*time.Second, "How long to wait for open streams on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveNoArchive {
		cfg.Archive.Enabled = false
	}

	eng, err := newEngine(cfg, engineOptions{watchPersonas: cfg.Personas.Watch})
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.registry.Janitor(ctx, cfg.Registry.SweepInterval)

	deps := server.Deps{
		Registry:     eng.registry,
		Orchestrator: eng.orchestrator,
		Catalog:      eng.catalog,
		Tokens:       eng.client.Tracker(),
		DebugLog:     eng.debugLog,
	}
	if eng.archive != nil {
		deps.Archive = eng.archive
	}
	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadLimit:      cfg.Server.ReadLimit,
	}, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printStatus("✓", fmt.Sprintf("Listening on %s", cfg.Server.Addr), color.FgGreen)
	if eng.archive != nil {
		printStatus("✓", fmt.Sprintf("Archiving to %s", eng.archive.Path()), color.FgGreen)
	} else {
		printStatus("⚠", "Archive disabled", color.FgYellow)
	}
	if eng.watcher != nil {
		printStatus("✓", "Watching persona overrides", color.FgGreen)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-sigCh:
		log.Println("[serve] received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serveShutdownWait)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	printStatus("✓", "Server stopped", color.FgGreen)
	return nil
}
