// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/hrca/arrows/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and hits per second for a session.
func SessionMetrics(hits, misses int, durationMs int64) (accuracy, hitsPerSecond float64) {
	if taps := hits + misses; taps > 0 {
		accuracy = float64(hits) / float64(taps)
	}
	if durationMs > 0 {
		hitsPerSecond = float64(hits) / (float64(durationMs) / 1000.0)
	}
	return accuracy, hitsPerSecond
}

// Summary aggregates a set of sessions.
type Summary struct {
	Sessions  int
	BestScore int
	AvgScore  float64
	AvgAcc    float64
	AvgRate   float64
	TotalHits int
}

// Summarize computes a Summary over sessions.
func Summarize(sessions []model.SessionRecord) Summary {
	if len(sessions) == 0 {
		return Summary{}
	}
	sum := Summary{Sessions: len(sessions), BestScore: math.MinInt}
	var totalScore, totalAcc, totalRate float64
	for _, s := range sessions {
		acc, rate := SessionMetrics(s.Hits, s.Misses, s.DurationMs)
		totalScore += float64(s.Score)
		totalAcc += acc
		totalRate += rate
		sum.TotalHits += s.Hits
		if s.Score > sum.BestScore {
			sum.BestScore = s.Score
		}
	}
	count := float64(len(sessions))
	sum.AvgScore = totalScore / count
	sum.AvgAcc = totalAcc / count
	sum.AvgRate = totalRate / count
	return sum
}

// BestSessions returns the n highest-scoring sessions, most recent first on ties.
func BestSessions(sessions []model.SessionRecord, n int) []model.SessionRecord {
	if n <= 0 || len(sessions) == 0 {
		return nil
	}
	out := append([]model.SessionRecord(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].EndedAt.After(out[j].EndedAt)
		}
		return out[i].Score > out[j].Score
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := i + 1
		if den > window {
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(last)))
		idx = max(0, min(idx, last))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.Score)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Best score: %d", sum.BestScore),
		fmt.Sprintf("Avg score: %.2f", sum.AvgScore),
		fmt.Sprintf("Avg accuracy: %.2f%%", sum.AvgAcc*100),
		fmt.Sprintf("Avg hits/s: %.2f", sum.AvgRate),
		fmt.Sprintf("Trend: %s", Sparkline(scores)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per session, oldest first.
func RenderHistory(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		return nil
	}
	headers := []string{"Ended", "Hits", "Misses", "Score", "Accuracy", "Policy"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, HistoryRow(s))
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats a session as table cells.
func HistoryRow(s model.SessionRecord) []string {
	acc, _ := SessionMetrics(s.Hits, s.Misses, s.DurationMs)
	return []string{
		s.EndedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", s.Hits),
		fmt.Sprintf("%d", s.Misses),
		fmt.Sprintf("%d", s.Score),
		fmt.Sprintf("%.1f%%", acc*100),
		s.ScorePolicy,
	}
}

// RenderLeaderboard prints ranked leaderboard entries.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Leaderboard is empty.")
		return err
	}
	headers := []string{"#", "Score", "Submitted"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			fmt.Sprintf("%d", e.Score),
			e.SubmittedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	if _, err := fmt.Fprintln(w, "Leaderboard"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints score and accuracy curves.
func RenderCurves(w io.Writer, sessions []model.SessionRecord, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints score and accuracy curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionRecord, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	scores := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Hits, s.Misses, s.DurationMs)
		scores[i] = float64(s.Score)
		accs[i] = acc * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "Score", Values: MovingAverage(scores, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}, width, height, useColor)
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}
