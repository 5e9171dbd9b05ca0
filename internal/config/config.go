// Package config handles configuration loading and management for Podium.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Podium.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Debate    DebateConfig    `mapstructure:"debate"`
	Server    ServerConfig    `mapstructure:"server"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Personas  PersonasConfig  `mapstructure:"personas"`
	Log       LogConfig       `mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// DebateConfig holds the engine settings shared by every debate.
type DebateConfig struct {
	RebuttalRounds      int           `mapstructure:"rebuttal_rounds"`
	VoteTimeout         time.Duration `mapstructure:"vote_timeout"`
	WordBudget          int           `mapstructure:"word_budget"`
	Streaming           bool          `mapstructure:"streaming"`
	BridgeBuffer        int           `mapstructure:"bridge_buffer"`
	TemperatureDebaters float64       `mapstructure:"temperature_debaters"`
	TemperatureJudge    float64       `mapstructure:"temperature_judge"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// ReadLimit caps inbound websocket messages, in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
}

// RegistryConfig bounds the live session registry.
type RegistryConfig struct {
	Capacity      int           `mapstructure:"capacity"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ArchiveConfig controls the finished-debate archive.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path is the sqlite file. Empty means the XDG data directory.
	Path string `mapstructure:"path"`
}

// PersonasConfig locates the persona override file.
type PersonasConfig struct {
	// Dir holds personas.yaml. Empty means the user config directory.
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

// LogConfig holds debug logging settings.
type LogConfig struct {
	// File receives verbose engine tracing. Empty disables it.
	File string `mapstructure:"file"`
}

// projectConfigName is the project-level override file.
const projectConfigName = ".podium.yaml"

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, PODIUM_*)
// 2. Project config (.podium.yaml in current directory or parent)
// 3. User config (~/.config/podium/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// newViper returns a viper with defaults and environment bindings applied.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("podium")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "PODIUM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Archive.Path = expandEnv(cfg.Archive.Path)
	cfg.Personas.Dir = expandEnv(cfg.Personas.Dir)
	cfg.Log.File = expandEnv(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Debate.RebuttalRounds < 0:
		return fmt.Errorf("debate.rebuttal_rounds must be >= 0, got %d", c.Debate.RebuttalRounds)
	case c.Debate.VoteTimeout <= 0:
		return fmt.Errorf("debate.vote_timeout must be positive, got %s", c.Debate.VoteTimeout)
	case c.Debate.WordBudget < 0:
		return fmt.Errorf("debate.word_budget must be >= 0, got %d", c.Debate.WordBudget)
	case c.Debate.TemperatureDebaters < 0 || c.Debate.TemperatureDebaters > 1:
		return fmt.Errorf("debate.temperature_debaters must be in [0, 1], got %v", c.Debate.TemperatureDebaters)
	case c.Debate.TemperatureJudge < 0 || c.Debate.TemperatureJudge > 1:
		return fmt.Errorf("debate.temperature_judge must be in [0, 1], got %v", c.Debate.TemperatureJudge)
	case c.Anthropic.MaxTokens <= 0:
		return fmt.Errorf("anthropic.max_tokens must be positive, got %d", c.Anthropic.MaxTokens)
	case c.Registry.Capacity <= 0:
		return fmt.Errorf("registry.capacity must be positive, got %d", c.Registry.Capacity)
	}
	return nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(GetUserConfigPath())
	for key, value := range cfg.settings() {
		v.Set(key, value)
	}
	return v.WriteConfig()
}

// SetUserValue updates a single key in the user config file, keeping every
// other key already written there.
func SetUserValue(key string, value any) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := GetUserConfigPath()
	v := viper.New()
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading user config: %w", err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing user config: %w", err)
	}
	return os.Chmod(path, 0600)
}

// settings flattens the config into viper keys.
func (c *Config) settings() map[string]any {
	return map[string]any{
		"anthropic.api_key":           c.Anthropic.APIKey,
		"anthropic.model":             c.Anthropic.Model,
		"anthropic.max_tokens":        c.Anthropic.MaxTokens,
		"anthropic.use_bedrock":       c.Anthropic.UseBedrock,
		"anthropic.aws_region":        c.Anthropic.AWSRegion,
		"anthropic.aws_profile":       c.Anthropic.AWSProfile,
		"debate.rebuttal_rounds":      c.Debate.RebuttalRounds,
		"debate.vote_timeout":         c.Debate.VoteTimeout.String(),
		"debate.word_budget":          c.Debate.WordBudget,
		"debate.streaming":            c.Debate.Streaming,
		"debate.bridge_buffer":        c.Debate.BridgeBuffer,
		"debate.temperature_debaters": c.Debate.TemperatureDebaters,
		"debate.temperature_judge":    c.Debate.TemperatureJudge,
		"server.addr":                 c.Server.Addr,
		"server.allowed_origins":      c.Server.AllowedOrigins,
		"server.read_limit":           c.Server.ReadLimit,
		"registry.capacity":           c.Registry.Capacity,
		"registry.session_ttl":        c.Registry.SessionTTL.String(),
		"registry.sweep_interval":     c.Registry.SweepInterval.String(),
		"archive.enabled":             c.Archive.Enabled,
		"archive.path":                c.Archive.Path,
		"personas.dir":                c.Personas.Dir,
		"personas.watch":              c.Personas.Watch,
		"log.file":                    c.Log.File,
	}
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// PersonasDir returns the configured personas directory, defaulting to the
// user config directory.
func (c *Config) PersonasDir() string {
	if c.Personas.Dir != "" {
		return c.Personas.Dir
	}
	return getUserConfigDir()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	for key, value := range d.settings() {
		v.SetDefault(key, value)
	}
}

// getUserConfigDir returns the XDG config directory for Podium.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "podium")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "podium")
	}
	return filepath.Join(home, ".config", "podium")
}

// findProjectConfig searches for .podium.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, projectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
		},
		Debate: DebateConfig{
			RebuttalRounds:      2,
			VoteTimeout:         5 * time.Minute,
			Streaming:           true,
			BridgeBuffer:        64,
			TemperatureDebaters: 0.7,
			TemperatureJudge:    0.3,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:5173"},
			ReadLimit:      4096,
		},
		Registry: RegistryConfig{
			Capacity:      256,
			SessionTTL:    time.Hour,
			SweepInterval: time.Minute,
		},
		Archive: ArchiveConfig{
			Enabled: true,
		},
	}
}
