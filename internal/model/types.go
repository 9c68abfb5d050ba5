// Package model defines shared data structures.
package model

import "time"

// Config defines play settings after merging file config and flags.
type Config struct {
	Duration    time.Duration
	ScorePolicy string
	StartPolicy string
	Seed        int64
	Fresh       bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// SessionRecord captures a finished session.
type SessionRecord struct {
	ID          int64
	UUID        string
	StartedAt   time.Time
	EndedAt     time.Time
	DurationMs  int64
	Hits        int
	Misses      int
	Score       int
	ScorePolicy string
	StartPolicy string
}

// QueuedScore is a score waiting for leaderboard submission.
type QueuedScore struct {
	Index    int64
	Score    int
	QueuedAt time.Time
}

// ResumeState is a session interrupted before it finished.
type ResumeState struct {
	SessionUUID string
	StartedAt   time.Time
	SavedAt     time.Time
	Hits        int
	Misses      int
	RemainingMs int64
}

// LeaderboardEntry is a submitted score.
type LeaderboardEntry struct {
	Rank        int
	Score       int
	SubmittedAt time.Time
}
