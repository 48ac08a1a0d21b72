package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"HUSH_CONFIG",
	"HUSH_HIDE_NOTIFICATION_PATTERNS",
	"HUSH_RELOAD_DELAY",
	"HUSH_LOG_LEVEL",
	"HUSH_QUIET",
}

// clearEnv unsets every hush variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	lines := strings.Split(cfg.HideNotificationPatterns, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 default patterns but got %d", len(lines))
	}
	if lines[0] != "Foundry Virtual Tabletop requires a minimum screen resolution" {
		t.Errorf("unexpected first default pattern %q", lines[0])
	}
	if cfg.ReloadDelay != 100*time.Millisecond {
		t.Errorf("expected ReloadDelay to be 100ms but got %v", cfg.ReloadDelay)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel to be info but got %s", cfg.LogLevel)
	}
	if cfg.Quiet {
		t.Error("expected Quiet to be false by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
		wantErr   bool
	}{
		{
			name: "valid environment variables",
			envVars: map[string]string{
				"HUSH_HIDE_NOTIFICATION_PATTERNS": `disk space low\n^Deprecated`,
				"HUSH_RELOAD_DELAY":               "250ms",
				"HUSH_LOG_LEVEL":                  "debug",
				"HUSH_QUIET":                      "yes",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.HideNotificationPatterns != "disk space low\n^Deprecated" {
					t.Errorf("unexpected patterns %q", cfg.HideNotificationPatterns)
				}
				if cfg.ReloadDelay != 250*time.Millisecond {
					t.Errorf("expected ReloadDelay to be 250ms but got %v", cfg.ReloadDelay)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("expected LogLevel to be debug but got %s", cfg.LogLevel)
				}
				if !cfg.Quiet {
					t.Error("expected Quiet to be true")
				}
			},
		},
		{
			name: "empty patterns disable filtering",
			envVars: map[string]string{
				"HUSH_HIDE_NOTIFICATION_PATTERNS": "",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.HideNotificationPatterns != "" {
					t.Errorf("expected empty patterns but got %q", cfg.HideNotificationPatterns)
				}
			},
		},
		{
			name:    "invalid delay",
			envVars: map[string]string{"HUSH_RELOAD_DELAY": "soon"},
			wantErr: true,
		},
		{
			name:    "negative delay",
			envVars: map[string]string{"HUSH_RELOAD_DELAY": "-1s"},
			wantErr: true,
		},
		{
			name:    "invalid quiet value",
			envVars: map[string]string{"HUSH_QUIET": "maybe"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			envVars: map[string]string{"HUSH_LOG_LEVEL": "chatty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		checkFunc func(*testing.T, *Config)
		wantErr   bool
	}{
		{
			name: "valid config file",
			content: `
hide_notification_patterns: |
  disk space low
  [unbalanced
reload_delay: 2s
log_level: warn
quiet: true
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.HideNotificationPatterns != "disk space low\n[unbalanced\n" {
					t.Errorf("unexpected patterns %q", cfg.HideNotificationPatterns)
				}
				if cfg.ReloadDelay != 2*time.Second {
					t.Errorf("expected ReloadDelay to be 2s but got %v", cfg.ReloadDelay)
				}
				if cfg.LogLevel != "warn" {
					t.Errorf("expected LogLevel to be warn but got %s", cfg.LogLevel)
				}
				if !cfg.Quiet {
					t.Error("expected Quiet to be true")
				}
			},
		},
		{
			name:    "partial file keeps defaults",
			content: "log_level: debug\n",
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.HideNotificationPatterns != DefaultConfig().HideNotificationPatterns {
					t.Errorf("expected default patterns but got %q", cfg.HideNotificationPatterns)
				}
			},
		},
		{
			name:    "invalid yaml",
			content: "invalid: yaml: content:\n  bad indentation",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.checkFunc(t, cfg)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUSH_LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected env to win, got %s", cfg.LogLevel)
	}
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUSH_LOG_LEVEL", "error")
	t.Setenv("HUSH_HIDE_NOTIFICATION_PATTERNS", "from env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected the file's level, got %s", cfg.LogLevel)
	}
	if cfg.HideNotificationPatterns != strings.Join(DefaultHidePatterns, "\n") {
		t.Errorf("expected default patterns, got %q", cfg.HideNotificationPatterns)
	}

	// A missing file is just the defaults
	cfg, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default level, got %s", cfg.LogLevel)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.HideNotificationPatterns = "one\ntwo"
	cfg.ReloadDelay = 3 * time.Second

	if err := Save(path, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be gone")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.HideNotificationPatterns != "one\ntwo" {
		t.Errorf("unexpected patterns %q", loaded.HideNotificationPatterns)
	}
	if loaded.ReloadDelay != 3*time.Second {
		t.Errorf("expected ReloadDelay 3s but got %v", loaded.ReloadDelay)
	}
}

func TestSave_NoPath(t *testing.T) {
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestPath(t *testing.T) {
	clearEnv(t)

	t.Setenv("HUSH_CONFIG", "/explicit/config.yaml")
	if got := Path(); got != "/explicit/config.yaml" {
		t.Errorf("expected explicit path but got %s", got)
	}

	_ = os.Unsetenv("HUSH_CONFIG")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := Path(); got != filepath.Join("/xdg", "hush", "config.yaml") {
		t.Errorf("expected XDG path but got %s", got)
	}
}
