// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hrca/arrows/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoResume is returned by LoadResume when no interrupted session is stored.
var ErrNoResume = errors.New("no interrupted session")

// Store wraps SQLite access for sessions, the score queue and the leaderboard.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			score INTEGER NOT NULL,
			score_policy TEXT NOT NULL,
			start_policy TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS score_queue (
			idx INTEGER PRIMARY KEY AUTOINCREMENT,
			score INTEGER NOT NULL,
			queued_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS resume_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			session_uuid TEXT NOT NULL,
			started_at TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			remaining_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			id INTEGER PRIMARY KEY,
			score INTEGER NOT NULL,
			submitted_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (uuid, started_at, ended_at, duration_ms, hits, misses, score, score_policy, start_policy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.DurationMs,
		rec.Hits,
		rec.Misses,
		rec.Score,
		rec.ScorePolicy,
		rec.StartPolicy,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns finished sessions filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, uuid, started_at, ended_at, duration_ms, hits, misses, score, score_policy, start_policy
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.UUID, &startedAt, &endedAt, &rec.DurationMs, &rec.Hits, &rec.Misses, &rec.Score, &rec.ScorePolicy, &rec.StartPolicy); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// Enqueue appends a score to the submission queue and returns its index.
func (s *Store) Enqueue(ctx context.Context, score int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO score_queue (score, queued_at) VALUES (?, ?)`,
		score, s.now().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DrainAll returns every queued score in insertion order without removing it.
func (s *Store) DrainAll(ctx context.Context) ([]model.QueuedScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, score, queued_at FROM score_queue ORDER BY idx ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.QueuedScore
	for rows.Next() {
		var q model.QueuedScore
		var queuedAt string
		if err := rows.Scan(&q.Index, &q.Score, &queuedAt); err != nil {
			return nil, err
		}
		if q.QueuedAt, err = time.Parse(time.RFC3339Nano, queuedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveUpTo removes queued scores with index <= idx.
func (s *Store) RemoveUpTo(ctx context.Context, idx int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM score_queue WHERE idx <= ?`, idx)
	return err
}

// SaveResume stores the interrupted session, replacing any previous one.
func (s *Store) SaveResume(ctx context.Context, st model.ResumeState) error {
	savedAt := st.SavedAt
	if savedAt.IsZero() {
		savedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resume_state (id, session_uuid, started_at, saved_at, hits, misses, remaining_ms)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			session_uuid = excluded.session_uuid,
			started_at = excluded.started_at,
			saved_at = excluded.saved_at,
			hits = excluded.hits,
			misses = excluded.misses,
			remaining_ms = excluded.remaining_ms`,
		st.SessionUUID,
		st.StartedAt.Format(time.RFC3339Nano),
		savedAt.Format(time.RFC3339Nano),
		st.Hits,
		st.Misses,
		st.RemainingMs,
	)
	return err
}

// LoadResume returns the interrupted session or ErrNoResume.
func (s *Store) LoadResume(ctx context.Context) (model.ResumeState, error) {
	var st model.ResumeState
	var startedAt, savedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_uuid, started_at, saved_at, hits, misses, remaining_ms FROM resume_state WHERE id = 1`).
		Scan(&st.SessionUUID, &startedAt, &savedAt, &st.Hits, &st.Misses, &st.RemainingMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ResumeState{}, ErrNoResume
	}
	if err != nil {
		return model.ResumeState{}, err
	}
	if st.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.ResumeState{}, err
	}
	if st.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return model.ResumeState{}, err
	}
	return st, nil
}

// ClearResume removes the interrupted session, if any.
func (s *Store) ClearResume(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM resume_state WHERE id = 1`)
	return err
}

// InsertLeaderboard records a submitted score.
func (s *Store) InsertLeaderboard(ctx context.Context, score int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (score, submitted_at) VALUES (?, ?)`,
		score, s.now().Format(time.RFC3339Nano))
	return err
}

// TopScores returns the n best submitted scores, ranked from 1.
func (s *Store) TopScores(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT score, submitted_at FROM leaderboard ORDER BY score DESC, submitted_at ASC, id ASC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		var submittedAt string
		if err := rows.Scan(&entry.Score, &submittedAt); err != nil {
			return nil, err
		}
		if entry.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return nil, err
		}
		entry.Rank = len(out) + 1
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
