// Package leaderboard submits queued scores to a leaderboard.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hrca/arrows/internal/model"
)

// Queue is the pending-score queue.
type Queue interface {
	DrainAll(ctx context.Context) ([]model.QueuedScore, error)
	RemoveUpTo(ctx context.Context, idx int64) error
}

// Submitter posts a single score.
type Submitter interface {
	Submit(ctx context.Context, score int) error
}

// Flush submits queued scores in order and removes the ones that were
// accepted. It stops at the first failure so the rest stay queued for the
// next attempt. It returns the number of submitted scores.
func Flush(ctx context.Context, q Queue, sub Submitter) (int, error) {
	pending, err := q.DrainAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read score queue: %w", err)
	}
	submitted := 0
	var lastIdx int64
	var submitErr error
	for _, entry := range pending {
		if err := sub.Submit(ctx, entry.Score); err != nil {
			submitErr = fmt.Errorf("failed to submit score %d: %w", entry.Score, err)
			break
		}
		lastIdx = entry.Index
		submitted++
	}
	if submitted > 0 {
		if err := q.RemoveUpTo(ctx, lastIdx); err != nil {
			return submitted, fmt.Errorf("failed to dequeue submitted scores: %w", err)
		}
		log.Info().Int("submitted", submitted).Int("pending", len(pending)-submitted).Msg("flushed score queue")
	}
	return submitted, submitErr
}

// Recorder stores submitted scores.
type Recorder interface {
	InsertLeaderboard(ctx context.Context, score int) error
}

// Local is a Submitter backed by the local leaderboard table.
type Local struct {
	rec Recorder
}

// NewLocal returns a Submitter that records into rec.
func NewLocal(rec Recorder) *Local {
	return &Local{rec: rec}
}

// Submit implements Submitter.
func (l *Local) Submit(ctx context.Context, score int) error {
	return l.rec.InsertLeaderboard(ctx, score)
}
