package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Game.Duration != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigDecodesGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[game]
duration = "15s"
score-policy = "hits"
start-policy = "immediate"

[stats]
top = 5

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.Duration == nil || cfg.Game.Duration.Duration != 15*time.Second {
		t.Fatalf("unexpected duration: %+v", cfg.Game.Duration)
	}
	if cfg.Game.ScorePolicy == nil || *cfg.Game.ScorePolicy != "hits" {
		t.Fatalf("unexpected score policy")
	}
	if cfg.Game.StartPolicy == nil || *cfg.Game.StartPolicy != "immediate" {
		t.Fatalf("unexpected start policy")
	}
	if cfg.Stats.Top == nil || *cfg.Stats.Top != 5 {
		t.Fatalf("unexpected stats top")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nduration = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultDBPathOverride(t *testing.T) {
	t.Setenv("ARROWS_DB", "/tmp/custom.db")
	if got := DefaultDBPath(); got != "/tmp/custom.db" {
		t.Fatalf("expected override, got %s", got)
	}
	t.Setenv("ARROWS_DB", "")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultDBPath(); got != filepath.Join("/data", "arrows", "arrows.db") {
		t.Fatalf("unexpected default db path: %s", got)
	}
}
