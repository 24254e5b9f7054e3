// Package config loads runtime settings: built-in defaults, then an
// optional yaml file, then NEURALMON_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flush policies for writing mutated month state back to the store.
const (
	FlushImmediate = "immediate"
	FlushDebounced = "debounced"
	FlushManual    = "manual"
)

type Config struct {
	// DataDir holds the store files and session records.
	DataDir string `yaml:"data_dir"`
	// Backend selects the store: "sqlite" (default) or "doc", the
	// key-value document layout compatible with exported browser data.
	Backend string `yaml:"backend"`
	// PasswordMode selects the credential verifier: "plain" keeps the
	// original demo behavior, "bcrypt" stores salted hashes.
	PasswordMode string `yaml:"password_mode"`
	// FlushPolicy is immediate, debounced, or manual. Immediate is the
	// default; debounced reproduces the original 1-second trailing
	// write-back including its data-loss window on abrupt exit.
	FlushPolicy string `yaml:"flush_policy"`
	DebounceMs  int    `yaml:"debounce_ms"`
	// WeekStart is "monday" or "sunday" and controls the calendar grid
	// layout. The daily goals table is always Sunday-first.
	WeekStart string `yaml:"week_start"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
}

func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:      filepath.Join(home, ".neuralmon"),
		Backend:      "sqlite",
		PasswordMode: "plain",
		FlushPolicy:  FlushImmediate,
		DebounceMs:   1000,
		WeekStart:    "monday",
		LogLevel:     "info",
	}
}

// Load reads path when it exists (a missing file is not an error) and
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg = FromEnv(cfg)
	return cfg, cfg.Validate()
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("NEURALMON_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("NEURALMON_BACKEND"); ok {
		cfg.Backend = v
	}
	if v, ok := getEnvString("NEURALMON_PASSWORD_MODE"); ok {
		cfg.PasswordMode = v
	}
	if v, ok := getEnvString("NEURALMON_FLUSH_POLICY"); ok {
		cfg.FlushPolicy = v
	}
	if v, ok := getEnvInt("NEURALMON_DEBOUNCE_MS"); ok && v > 0 {
		cfg.DebounceMs = v
	}
	if v, ok := getEnvString("NEURALMON_WEEK_START"); ok {
		cfg.WeekStart = v
	}
	if v, ok := getEnvString("NEURALMON_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("NEURALMON_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Backend {
	case "sqlite", "doc":
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	switch c.PasswordMode {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("config: unknown password mode %q", c.PasswordMode)
	}
	switch c.FlushPolicy {
	case FlushImmediate, FlushDebounced, FlushManual:
	default:
		return fmt.Errorf("config: unknown flush policy %q", c.FlushPolicy)
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		return fmt.Errorf("config: unknown week start %q", c.WeekStart)
	}
	if c.DebounceMs <= 0 {
		return fmt.Errorf("config: debounce_ms must be positive, got %d", c.DebounceMs)
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
