package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hrca/arrows/internal/model"
)

type fakeSource struct {
	sessions []model.SessionRecord
	board    []model.LeaderboardEntry
	err      error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	f.lastCfg = cfg
	return f.sessions, f.err
}

func (f *fakeSource) TopScores(_ context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n < len(f.board) {
		return f.board[:n], f.err
	}
	return f.board, f.err
}

func sampleSource() *fakeSource {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	for i, score := range []int{3, 8, 5} {
		src.sessions = append(src.sessions, model.SessionRecord{
			ID:          int64(i + 1),
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			EndedAt:     base.Add(time.Duration(i)*time.Hour + 10*time.Second),
			DurationMs:  10000,
			Hits:        score,
			Misses:      0,
			Score:       score,
			ScorePolicy: "net",
		})
	}
	src.board = []model.LeaderboardEntry{
		{Rank: 1, Score: 8, SubmittedAt: base},
		{Rank: 2, Score: 5, SubmittedAt: base},
	}
	return src
}

func TestModelTabs(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 2, Top: 10})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if out := m.View(); !strings.Contains(out, "Best score") {
		t.Fatalf("expected overview cards, got:\n%s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	rows := m.history.Rows()
	if len(rows) != 3 || rows[0][3] != "5" {
		t.Fatalf("expected newest session first, got %v", rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "Submitted") {
		t.Fatalf("expected leaderboard table, got:\n%s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap, got %d", m.activeTab)
	}
}

func TestModelLoadError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	m := NewModel(src, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	out := m.View()
	if !strings.Contains(out, "Failed to load stats.") || !strings.Contains(out, "boom") {
		t.Fatalf("expected error output, got:\n%s", out)
	}
}

func TestFilterApply(t *testing.T) {
	src := sampleSource()
	m := NewModel(src, model.StatsConfig{CurveWindow: 1, Top: 10})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("2")
	m.filterInputs[3].SetValue("1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close, error %q", m.filterError)
	}
	if src.lastCfg.Last != 2 || m.cfg.Top != 1 {
		t.Fatalf("unexpected config after filter: %+v", m.cfg)
	}
	if len(m.report.Leaderboard) != 1 {
		t.Fatalf("expected top 1 leaderboard, got %d", len(m.report.Leaderboard))
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[0].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := prevCurveWindow(12); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit: %q", out)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
