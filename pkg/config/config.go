package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultHidePatterns are the nuisance messages hidden out of the box.
var DefaultHidePatterns = []string{
	"Foundry Virtual Tabletop requires a minimum screen resolution",
	"not displayed because the game Canvas is disabled",
}

// Config holds all configuration for hush
type Config struct {
	// Newline-delimited regular expressions; matching notifications are hidden
	HideNotificationPatterns string `yaml:"hide_notification_patterns" env:"HUSH_HIDE_NOTIFICATION_PATTERNS"`

	// Delay between a settings change and the full reload
	ReloadDelay time.Duration `yaml:"reload_delay" env:"HUSH_RELOAD_DELAY"`

	// Logging
	LogLevel string `yaml:"log_level" env:"HUSH_LOG_LEVEL"`

	// Behavior flags
	Quiet bool `yaml:"quiet" env:"HUSH_QUIET"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HideNotificationPatterns: strings.Join(DefaultHidePatterns, "\n"),
		ReloadDelay:              100 * time.Millisecond,
		LogLevel:                 "info",
	}
}

// LoadFrom loads configuration from the given file and the environment.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile loads the defaults overlaid with the file at path, ignoring the
// environment. It is what edits are saved on top of, so overrides that only
// apply to this run never end up in the file.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Path returns the config file path
func Path() string {
	// Check for explicit config path
	if path := os.Getenv("HUSH_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hush", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "hush", "config.yaml")
	}

	return ""
}

// Save writes cfg to path as YAML, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("no config path")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to a temp file and rename so watchers never see a partial file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if patterns, ok := os.LookupEnv("HUSH_HIDE_NOTIFICATION_PATTERNS"); ok {
		// Allow literal \n so a multi-line value fits in one variable
		cfg.HideNotificationPatterns = strings.ReplaceAll(patterns, `\n`, "\n")
	}

	if delay := os.Getenv("HUSH_RELOAD_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid HUSH_RELOAD_DELAY: %w", err)
		}
		cfg.ReloadDelay = d
	}

	if level := os.Getenv("HUSH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if quiet := os.Getenv("HUSH_QUIET"); quiet != "" {
		switch quiet {
		case "true", "1", "yes":
			cfg.Quiet = true
		case "false", "0", "no":
			cfg.Quiet = false
		default:
			return fmt.Errorf("invalid HUSH_QUIET value: %q (use true/false)", quiet)
		}
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.ReloadDelay < 0 {
		return fmt.Errorf("reload_delay must be non-negative")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}
