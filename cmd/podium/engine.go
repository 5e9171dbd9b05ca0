package main

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/podium/internal/api"
	"github.com/ShayCichocki/podium/internal/config"
	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/persona"
	"github.com/ShayCichocki/podium/internal/state"
)

// engine bundles everything a debate needs to run in this process.
type engine struct {
	cfg          *config.Config
	client       *api.Client
	catalog      *persona.Catalog
	watcher      *persona.Watcher
	registry     *debate.Registry
	orchestrator *debate.Orchestrator
	archive      *state.DB
	debugLog     *debate.DebugLogger
}

type engineOptions struct {
	// watchPersonas keeps the catalog in sync with the override file.
	watchPersonas bool
	// capacity overrides registry.capacity when positive.
	capacity int
}

// newEngine wires the API client, persona catalog, archive and engine from
// cfg. Close releases what it opened.
func newEngine(cfg *config.Config, opts engineOptions) (_ *engine, err error) {
	e := &engine{cfg: cfg}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	e.debugLog, err = debate.NewDebugLogger(cfg.Log.File)
	if err != nil {
		return nil, err
	}
	debate.SetDebugLogger(e.debugLog)

	e.client, err = newClient(cfg)
	if err != nil {
		return nil, err
	}

	e.catalog = persona.New()
	e.catalog.SetTemperatures(cfg.Debate.TemperatureDebaters, cfg.Debate.TemperatureJudge)
	overrides := persona.PathIn(cfg.PersonasDir())
	if opts.watchPersonas {
		e.watcher, err = persona.Watch(e.catalog, overrides)
	} else {
		err = e.catalog.LoadFile(overrides)
	}
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	var archiver debate.Archiver
	if cfg.Archive.Enabled {
		e.archive, err = state.OpenArchive(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		archiver = e.archive
	}

	regCfg := registryConfig(cfg)
	if opts.capacity > 0 {
		regCfg.Capacity = opts.capacity
	}
	e.registry = debate.NewRegistry(e.catalog, api.NewFactory(e.client), regCfg)
	e.orchestrator = debate.NewOrchestrator(orchestratorConfig(cfg, archiver))
	return e, nil
}

// Close stops the persona watcher and closes the archive and debug log.
func (e *engine) Close() error {
	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.archive != nil {
		errs = append(errs, e.archive.Close())
	}
	if e.debugLog != nil {
		debate.SetDebugLogger(nil)
		errs = append(errs, e.debugLog.Close())
	}
	return errors.Join(errs...)
}

// newClient creates the Anthropic client. Bedrock uses AWS credentials and
// needs no API key.
func newClient(cfg *config.Config) (*api.Client, error) {
	key, _ := config.ResolveAPIKey(cfg)
	if key == "" && !cfg.Anthropic.UseBedrock {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or run 'podium config set-key'", config.ErrNoAPIKey)
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		APIKey:        key,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

func registryConfig(cfg *config.Config) debate.RegistryConfig {
	return debate.RegistryConfig{
		Capacity:   cfg.Registry.Capacity,
		SessionTTL: cfg.Registry.SessionTTL,
	}
}

// orchestratorConfig maps the debate section onto the engine. archiver may
// be nil.
func orchestratorConfig(cfg *config.Config, archiver debate.Archiver) debate.OrchestratorConfig {
	return debate.OrchestratorConfig{
		RebuttalRounds: cfg.Debate.RebuttalRounds,
		VoteTimeout:    cfg.Debate.VoteTimeout,
		WordBudget:     cfg.Debate.WordBudget,
		Streaming:      cfg.Debate.Streaming,
		BridgeBuffer:   cfg.Debate.BridgeBuffer,
		Archiver:       archiver,
	}
}
