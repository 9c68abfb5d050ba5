// Package session implements the countdown and scoring state machine of a
// single play-through.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hrca/arrows/internal/grid"
)

// TickPeriod is the interval between display ticks.
const TickPeriod = time.Second

// DefaultDuration is the length of a session.
const DefaultDuration = 10 * time.Second

// ErrInvalidSnapshot is returned when restoring from a snapshot with negative fields.
var ErrInvalidSnapshot = errors.New("invalid session snapshot")

// State is a controller state.
type State int

// Controller states.
const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config defines session settings.
type Config struct {
	Duration time.Duration
	Score    ScorePolicy
	Start    StartPolicy
	// Seed seeds the grid; zero seeds from the clock.
	Seed int64
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if _, err := ParseScorePolicy(string(c.Score)); err != nil {
		return err
	}
	if _, err := ParseStartPolicy(string(c.Start)); err != nil {
		return err
	}
	return nil
}

// Result is the outcome of a finished session.
type Result struct {
	Score  int
	Hits   int
	Misses int
	Policy ScorePolicy
}

// Snapshot is the resumable part of a session.
type Snapshot struct {
	Hits        int   `json:"hits"`
	Misses      int   `json:"misses"`
	RemainingMs int64 `json:"remainingMs"`
}

// Controller owns the countdown, the counters and the grid of one session.
// It is not safe for concurrent use; all calls and scheduler callbacks must
// happen on one goroutine.
type Controller struct {
	cfg      Config
	clock    Clock
	sched    Scheduler
	listener Listener
	board    *grid.Board

	state     State
	hits      int
	misses    int
	remaining time.Duration
	expiresAt time.Time
	result    Result
}

// New returns an idle controller with the full duration remaining.
func New(cfg Config, clock Clock, sched Scheduler, listener Listener) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Validate accepts any case; keep the canonical values.
	cfg.Score, _ = ParseScorePolicy(string(cfg.Score))
	cfg.Start, _ = ParseStartPolicy(string(cfg.Start))
	c := &Controller{
		cfg:       cfg,
		clock:     clock,
		sched:     sched,
		listener:  listener,
		state:     Idle,
		remaining: cfg.Duration,
	}
	if c.listener == nil {
		c.listener = ListenerFuncs{}
	}
	if cfg.Seed != 0 {
		c.board = grid.NewWithSeed(cfg.Seed)
	} else {
		c.board = grid.New()
	}
	return c, nil
}

// Restore rebuilds a controller from a snapshot. The result is Paused, or
// Idle when no tap has been recorded; it never resumes ticking by itself.
// Remaining time above the configured duration is clamped to it.
func Restore(cfg Config, snap Snapshot, clock Clock, sched Scheduler, listener Listener) (*Controller, error) {
	if snap.Hits < 0 || snap.Misses < 0 || snap.RemainingMs < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidSnapshot, snap)
	}
	c, err := New(cfg, clock, sched, listener)
	if err != nil {
		return nil, err
	}
	c.hits = snap.Hits
	c.misses = snap.Misses
	c.remaining = min(time.Duration(snap.RemainingMs)*time.Millisecond, c.cfg.Duration)
	if c.hits != 0 || c.misses != 0 {
		c.state = Paused
	}
	return c, nil
}

// Resume starts or continues the countdown. It is a no-op when running or
// finished, and when idle under the first-tap start policy.
func (c *Controller) Resume() {
	switch c.state {
	case Paused:
		c.start()
	case Idle:
		if c.cfg.Start == StartImmediate {
			c.start()
		}
	}
}

// Pause stops the countdown and keeps the remaining time. It is a no-op
// unless running.
func (c *Controller) Pause() {
	if c.state != Running {
		return
	}
	c.sched.Cancel()
	rem := c.liveRemaining()
	if rem <= 0 {
		c.finish()
		return
	}
	c.remaining = rem
	c.state = Paused
}

// Tap resolves a tap on the cell at index. accepted is false when the
// session is paused or finished, or when the countdown has already run out.
// An out-of-range index panics.
func (c *Controller) Tap(index int) (hit, accepted bool) {
	c.board.At(index)
	switch c.state {
	case Paused, Finished:
		return false, false
	case Idle:
		c.start()
		if c.state != Running {
			return false, false
		}
	case Running:
		if c.liveRemaining() <= 0 {
			c.finish()
			return false, false
		}
	}
	hit = c.board.ResolveTap(index)
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.listener.OnOutcome(hit)
	return hit, true
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Hits returns the number of target taps.
func (c *Controller) Hits() int {
	return c.hits
}

// Misses returns the number of non-target taps.
func (c *Controller) Misses() int {
	return c.misses
}

// Score derives the score from the counters using the configured policy.
func (c *Controller) Score() int {
	return c.cfg.Score.Score(c.hits, c.misses)
}

// Result returns the final result; ok is false until the session finishes.
func (c *Controller) Result() (Result, bool) {
	return c.result, c.state == Finished
}

// Remaining returns the time left, computed from the clock while running.
func (c *Controller) Remaining() time.Duration {
	if c.state == Running {
		return c.liveRemaining()
	}
	return c.remaining
}

// RemainingSeconds returns the remaining time rounded up to whole seconds.
func (c *Controller) RemainingSeconds() int {
	rem := c.Remaining()
	if rem <= 0 {
		return 0
	}
	return int((rem + time.Second - 1) / time.Second)
}

// Cells returns the current grid.
func (c *Controller) Cells() grid.Grid {
	return c.board.Cells()
}

// Config returns the session config.
func (c *Controller) Config() Config {
	return c.cfg
}

// Snapshot captures the counters and the remaining time.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Hits:        c.hits,
		Misses:      c.misses,
		RemainingMs: c.Remaining().Milliseconds(),
	}
}

func (c *Controller) start() {
	c.state = Running
	c.expiresAt = c.clock.Now().Add(c.remaining)
	if c.remaining <= 0 {
		c.finish()
		return
	}
	c.listener.OnTick(c.remaining)
	c.scheduleTick()
}

func (c *Controller) scheduleTick() {
	next := TickPeriod
	if rem := c.liveRemaining(); rem < next {
		next = rem
	}
	c.sched.Schedule(next, c.tick)
}

func (c *Controller) tick() {
	if c.state != Running {
		return
	}
	rem := c.liveRemaining()
	if rem <= 0 {
		c.finish()
		return
	}
	c.listener.OnTick(rem)
	c.scheduleTick()
}

// liveRemaining never increases while running, even if the clock steps back.
func (c *Controller) liveRemaining() time.Duration {
	rem := c.expiresAt.Sub(c.clock.Now())
	if rem < 0 {
		rem = 0
	}
	if rem > c.remaining {
		rem = c.remaining
	}
	c.remaining = rem
	return rem
}

func (c *Controller) finish() {
	if c.state == Finished {
		return
	}
	c.sched.Cancel()
	c.state = Finished
	c.remaining = 0
	c.result = Result{
		Score:  c.Score(),
		Hits:   c.hits,
		Misses: c.misses,
		Policy: c.cfg.Score,
	}
	c.listener.OnFinished(c.result)
}
