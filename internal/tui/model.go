// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hrca/arrows/internal/grid"
	"github.com/hrca/arrows/internal/model"
	"github.com/hrca/arrows/internal/session"
)

// Persister stores finished and interrupted sessions.
type Persister interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error)
	Enqueue(ctx context.Context, score int) (int64, error)
	SaveResume(ctx context.Context, st model.ResumeState) error
	ClearResume(ctx context.Context) error
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeHit
	outcomeMiss
)

// Model implements the Bubble Tea game UI.
type Model struct {
	config session.Config
	store  Persister
	clock  session.Clock
	sched  *teaScheduler
	ctrl   *session.Controller

	sessionID string
	startedAt time.Time
	restored  bool
	// userPaused is set by the pause key; focus changes do not clear it.
	userPaused bool

	cursor int
	last   outcome
	result *session.Result

	width  int
	height int
	keys   keyMap
	help   help.Model
}

// NewModel constructs a game model. A non-nil resume restores an interrupted
// session, which starts paused.
func NewModel(cfg session.Config, store Persister, clock session.Clock, resume *model.ResumeState) (*Model, error) {
	m := &Model{
		config: cfg,
		store:  store,
		clock:  clock,
		sched:  &teaScheduler{},
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	if resume == nil {
		if err := m.newSession(); err != nil {
			return nil, err
		}
		return m, nil
	}
	snap := session.Snapshot{Hits: resume.Hits, Misses: resume.Misses, RemainingMs: resume.RemainingMs}
	ctrl, err := session.Restore(cfg, snap, clock, m.sched, m.listener())
	if err != nil {
		return nil, err
	}
	m.ctrl = ctrl
	m.sessionID = resume.SessionUUID
	m.startedAt = resume.StartedAt
	m.restored = ctrl.State() == session.Paused
	m.userPaused = m.restored
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if !m.restored {
		m.ctrl.Resume()
	}
	return m.sched.cmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.sched.fire(msg)
		return m, m.sched.cmd()
	case tea.BlurMsg:
		m.ctrl.Pause()
		return m, m.sched.cmd()
	case tea.FocusMsg:
		if !m.userPaused {
			m.ctrl.Resume()
		}
		return m, m.sched.cmd()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.suspend()
			return m, tea.Quit
		}
		m.handleKey(msg)
		return m, m.sched.cmd()
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	if m.ctrl.State() == session.Finished {
		if key.Matches(msg, m.keys.Restart) {
			if err := m.newSession(); err != nil {
				log.Error().Err(err).Msg("failed to start session")
				return
			}
			m.ctrl.Resume()
		}
		return
	}
	switch {
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.Tap):
		m.tap(m.cursor)
	case key.Matches(msg, m.keys.Cells):
		if idx, ok := cellForKey(msg.String()); ok {
			m.cursor = idx
			m.tap(idx)
		}
	}
}

func (m *Model) tap(idx int) {
	if _, accepted := m.ctrl.Tap(idx); !accepted {
		log.Debug().Int("cell", idx).Str("state", m.ctrl.State().String()).Msg("tap ignored")
	}
}

func (m *Model) togglePause() {
	if m.ctrl.State() == session.Paused {
		m.userPaused = false
		m.restored = false
		m.ctrl.Resume()
		return
	}
	if m.ctrl.State() == session.Running {
		m.userPaused = true
		m.ctrl.Pause()
	}
}

func (m *Model) moveCursor(dRow, dCol int) {
	row := m.cursor / grid.Size
	col := m.cursor % grid.Size
	row = (row + dRow + grid.Size) % grid.Size
	col = (col + dCol + grid.Size) % grid.Size
	m.cursor = grid.Index(row, col)
}

func (m *Model) newSession() error {
	m.sched.Cancel()
	ctrl, err := session.New(m.config, m.clock, m.sched, m.listener())
	if err != nil {
		return err
	}
	m.ctrl = ctrl
	m.sessionID = uuid.NewString()
	m.startedAt = time.Time{}
	m.restored = false
	m.userPaused = false
	m.last = outcomeNone
	m.result = nil
	return nil
}

func (m *Model) listener() session.Listener {
	return session.ListenerFuncs{
		Outcome: func(hit bool) {
			if hit {
				m.last = outcomeHit
			} else {
				m.last = outcomeMiss
			}
		},
		Tick: func(time.Duration) {
			if m.startedAt.IsZero() {
				m.startedAt = m.clock.Now()
			}
		},
		Finished: m.finishSession,
	}
}

func (m *Model) finishSession(res session.Result) {
	endedAt := m.clock.Now()
	m.result = &res
	if m.startedAt.IsZero() {
		m.startedAt = endedAt
	}
	rec := model.SessionRecord{
		UUID:        m.sessionID,
		StartedAt:   m.startedAt,
		EndedAt:     endedAt,
		DurationMs:  m.config.Duration.Milliseconds(),
		Hits:        res.Hits,
		Misses:      res.Misses,
		Score:       res.Score,
		ScorePolicy: string(res.Policy),
		StartPolicy: string(m.ctrl.Config().Start),
	}
	ctx := context.Background()
	if _, err := m.store.InsertSession(ctx, rec); err != nil {
		log.Error().Err(err).Str("session", m.sessionID).Msg("failed to save session")
	}
	if _, err := m.store.Enqueue(ctx, res.Score); err != nil {
		log.Error().Err(err).Int("score", res.Score).Msg("failed to queue score")
	}
	if err := m.store.ClearResume(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear resume state")
	}
	log.Info().
		Str("session", m.sessionID).
		Int("score", res.Score).
		Int("hits", res.Hits).
		Int("misses", res.Misses).
		Msg("session finished")
}

// suspend stores an unfinished session so the next launch can pick it up.
func (m *Model) suspend() {
	m.ctrl.Pause()
	ctx := context.Background()
	if m.ctrl.State() != session.Paused {
		if m.ctrl.State() == session.Idle {
			if err := m.store.ClearResume(ctx); err != nil {
				log.Error().Err(err).Msg("failed to clear resume state")
			}
		}
		return
	}
	snap := m.ctrl.Snapshot()
	st := model.ResumeState{
		SessionUUID: m.sessionID,
		StartedAt:   m.startedAt,
		SavedAt:     m.clock.Now(),
		Hits:        snap.Hits,
		Misses:      snap.Misses,
		RemainingMs: snap.RemainingMs,
	}
	if err := m.store.SaveResume(ctx, st); err != nil {
		log.Error().Err(err).Msg("failed to save resume state")
		return
	}
	log.Info().Str("session", m.sessionID).Int64("remaining_ms", snap.RemainingMs).Msg("session suspended")
}
