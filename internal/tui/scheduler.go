package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg fires a scheduled callback. gen identifies the schedule it belongs to.
type tickMsg struct {
	gen int
}

// teaScheduler implements session.Scheduler on top of tea.Tick so callbacks
// run inside Update. Only the latest schedule is live; older ticks are dropped.
type teaScheduler struct {
	gen     int
	fn      func()
	delay   time.Duration
	pending bool
}

func (s *teaScheduler) Schedule(d time.Duration, fn func()) {
	s.gen++
	s.fn = fn
	s.delay = d
	s.pending = true
}

func (s *teaScheduler) Cancel() {
	s.gen++
	s.fn = nil
	s.pending = false
}

// cmd returns the tick command for a schedule made since the last call.
func (s *teaScheduler) cmd() tea.Cmd {
	if !s.pending {
		return nil
	}
	s.pending = false
	gen := s.gen
	return tea.Tick(s.delay, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *teaScheduler) fire(msg tickMsg) {
	if msg.gen != s.gen || s.fn == nil {
		return
	}
	fn := s.fn
	s.fn = nil
	fn()
}
