package stats

import (
	"context"
	"io"

	"github.com/hrca/arrows/internal/model"
)

// Source provides the data a report is built from.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error)
	TopScores(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions    []model.SessionRecord
	Summary     Summary
	Best        []model.SessionRecord
	Leaderboard []model.LeaderboardEntry
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	top := cfg.Top
	if top <= 0 {
		top = 10
	}
	board, err := src.TopScores(ctx, top)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:    sessions,
		Summary:     Summarize(sessions),
		Best:        BestSessions(sessions, top),
		Leaderboard: board,
	}, nil
}

// Render writes the plain-text form of the report.
func (r Report) Render(w io.Writer, window int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, window); err != nil {
		return err
	}
	if err := RenderHistory(w, r.Sessions); err != nil {
		return err
	}
	return RenderLeaderboard(w, r.Leaderboard)
}
