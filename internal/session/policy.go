package session

import (
	"fmt"
	"strings"
)

// ScorePolicy selects how the final score is derived from the counters.
type ScorePolicy string

const (
	// ScoreHits counts hits only.
	ScoreHits ScorePolicy = "hits"
	// ScoreNet subtracts misses from hits and may go negative.
	ScoreNet ScorePolicy = "net"
)

// StartPolicy selects when the countdown begins.
type StartPolicy string

const (
	// StartImmediate starts the countdown on the first Resume.
	StartImmediate StartPolicy = "immediate"
	// StartOnFirstTap keeps the session idle until the first tap.
	StartOnFirstTap StartPolicy = "first-tap"
)

// Score applies the policy to the counters.
func (p ScorePolicy) Score(hits, misses int) int {
	if p == ScoreHits {
		return hits
	}
	return hits - misses
}

// ParseScorePolicy parses "hits" or "net".
func ParseScorePolicy(s string) (ScorePolicy, error) {
	switch ScorePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ScoreHits:
		return ScoreHits, nil
	case ScoreNet:
		return ScoreNet, nil
	default:
		return "", fmt.Errorf("unknown score policy %q (use hits or net)", s)
	}
}

// ParseStartPolicy parses "immediate" or "first-tap".
func ParseStartPolicy(s string) (StartPolicy, error) {
	switch StartPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case StartImmediate:
		return StartImmediate, nil
	case StartOnFirstTap:
		return StartOnFirstTap, nil
	default:
		return "", fmt.Errorf("unknown start policy %q (use immediate or first-tap)", s)
	}
}
