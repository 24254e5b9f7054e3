package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FlushPolicy != FlushImmediate {
		t.Fatalf("default flush policy = %q, want immediate", cfg.FlushPolicy)
	}
	if cfg.DebounceMs != 1000 {
		t.Fatalf("default debounce = %d, want 1000", cfg.DebounceMs)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "backend: doc\nflush_policy: debounced\ndebounce_ms: 250\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "doc" || cfg.FlushPolicy != FlushDebounced || cfg.DebounceMs != 250 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Fatalf("unexpected backend: %q", cfg.Backend)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEURALMON_BACKEND", "doc")
	t.Setenv("NEURALMON_FLUSH_POLICY", "manual")
	t.Setenv("NEURALMON_DEBOUNCE_MS", "500")
	t.Setenv("NEURALMON_PASSWORD_MODE", "bcrypt")
	t.Setenv("NEURALMON_WEEK_START", "sunday")

	cfg := FromEnv(Default())
	if cfg.Backend != "doc" || cfg.FlushPolicy != FlushManual || cfg.DebounceMs != 500 || cfg.PasswordMode != "bcrypt" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.WeekStart != "sunday" {
		t.Fatalf("week start override not applied: %q", cfg.WeekStart)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg = Default()
	cfg.FlushPolicy = "eventually"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown flush policy")
	}
}
