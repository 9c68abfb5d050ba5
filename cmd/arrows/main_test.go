package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hrca/arrows/internal/config"
	"github.com/hrca/arrows/internal/model"
	"github.com/hrca/arrows/internal/session"
	"github.com/hrca/arrows/internal/store"
)

func TestSessionConfig(t *testing.T) {
	cfg, err := sessionConfig(model.Config{
		Duration:    5 * time.Second,
		ScorePolicy: "HITS",
		StartPolicy: "immediate",
		Seed:        3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Score != session.ScoreHits || cfg.Start != session.StartImmediate || cfg.Seed != 3 {
		t.Fatalf("unexpected session config: %+v", cfg)
	}

	bad := []model.Config{
		{Duration: 0, ScorePolicy: "net", StartPolicy: "first-tap"},
		{Duration: time.Second, ScorePolicy: "best", StartPolicy: "first-tap"},
		{Duration: time.Second, ScorePolicy: "net", StartPolicy: "later"},
	}
	for _, c := range bad {
		if _, err := sessionConfig(c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}

func TestStatsConfig(t *testing.T) {
	cfg, err := statsConfig("2026-01-02", 5, 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Day() != 2 || cfg.Last != 5 || cfg.Top != 10 {
		t.Fatalf("unexpected stats config: %+v", cfg)
	}
	if _, err := statsConfig("01/02/2026", 0, 1, 1); err == nil {
		t.Fatalf("expected since error")
	}
	if _, err := statsConfig("", -1, 1, 1); err == nil {
		t.Fatalf("expected last error")
	}
	if _, err := statsConfig("", 0, 0, 1); err == nil {
		t.Fatalf("expected window error")
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var policy string
	var dur time.Duration
	cmd.Flags().StringVar(&policy, "score-policy", "net", "")
	cmd.Flags().DurationVar(&dur, "duration", time.Second, "")
	if err := cmd.Flags().Set("score-policy", "hits"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	filePolicy := "net"
	applyStringConfig(cmd, "score-policy", &policy, &filePolicy)
	if policy != "hits" {
		t.Fatalf("flag should win over config, got %q", policy)
	}
	applyDurationConfig(cmd, "duration", &dur, &config.Duration{Duration: 30 * time.Second})
	if dur != 30*time.Second {
		t.Fatalf("config should apply to unset flag, got %s", dur)
	}
	applyDurationConfig(cmd, "duration", &dur, nil)
	if dur != 30*time.Second {
		t.Fatalf("nil config must not change the value, got %s", dur)
	}
}

func TestResolveLogLevel(t *testing.T) {
	file := "warn"
	if got := resolveLogLevel("debug", true, "error", &file); got != "debug" {
		t.Fatalf("expected flag level, got %q", got)
	}
	if got := resolveLogLevel("info", false, "error", &file); got != "error" {
		t.Fatalf("expected env level, got %q", got)
	}
	if got := resolveLogLevel("info", false, "", &file); got != "warn" {
		t.Fatalf("expected file level, got %q", got)
	}
	if got := resolveLogLevel("info", false, " ", nil); got != "info" {
		t.Fatalf("expected default level, got %q", got)
	}
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() {
		closeLogging()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	path := filepath.Join(t.TempDir(), "state", "arrows.log")
	if err := setupLogging("debug", path); err != nil {
		t.Fatalf("setup logging: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", zerolog.GlobalLevel())
	}
	if err := setupLogging("loud", path); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if !strings.Contains(defaultConfigTemplate(), "[game]") {
		t.Fatalf("expected game section")
	}
}

func TestLoadResume(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "arrows.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	if rs := loadResume(ctx, st, false); rs != nil {
		t.Fatalf("expected no resume state, got %+v", rs)
	}
	if err := st.SaveResume(ctx, model.ResumeState{SessionUUID: "abc", Hits: 2, RemainingMs: 4000}); err != nil {
		t.Fatalf("save resume: %v", err)
	}
	rs := loadResume(ctx, st, false)
	if rs == nil || rs.SessionUUID != "abc" || rs.Hits != 2 {
		t.Fatalf("unexpected resume state: %+v", rs)
	}
	if rs := loadResume(ctx, st, true); rs != nil {
		t.Fatalf("fresh start must ignore resume state")
	}
	if rs := loadResume(ctx, st, false); rs != nil {
		t.Fatalf("fresh start must clear resume state, got %+v", rs)
	}
}
