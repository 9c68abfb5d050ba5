package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hrca/arrows/internal/grid"
	"github.com/hrca/arrows/internal/session"
)

// glyphWidth fixes the cell content width; arrows are ambiguous-width runes.
const glyphWidth = 2

var (
	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3A3A3A")).
			Padding(0, 1)
	cursorCellStyle = cellStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A"))
	dimCellStyle    = cellStyle.Copy().Foreground(lipgloss.Color("#5A5A5A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hitStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	missStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.result != nil {
		content = m.renderResult()
	} else {
		content = lipgloss.JoinVertical(lipgloss.Center,
			m.renderHeader(),
			"",
			m.renderGrid(),
			"",
			m.renderStatus(),
		)
	}
	footer := footerStyle.Render(m.help.View(m.keys))
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	secs := m.ctrl.RemainingSeconds()
	return headerStyle.Render(fmt.Sprintf("%2ds   Hits %d   Misses %d   Score %d",
		secs, m.ctrl.Hits(), m.ctrl.Misses(), m.ctrl.Score()))
}

func (m *Model) renderGrid() string {
	cells := m.ctrl.Cells()
	dim := m.ctrl.State() == session.Paused
	rows := make([]string, 0, grid.Size)
	for r := 0; r < grid.Size; r++ {
		row := make([]string, 0, grid.Size)
		for c := 0; c < grid.Size; c++ {
			idx := grid.Index(r, c)
			row = append(row, renderCell(cells[idx], idx == m.cursor, dim))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(sym grid.Symbol, cursor, dim bool) string {
	text := runewidth.FillRight(sym.Glyph(), glyphWidth)
	switch {
	case dim:
		return dimCellStyle.Render(text)
	case cursor:
		return cursorCellStyle.Render(text)
	default:
		return cellStyle.Render(text)
	}
}

func (m *Model) renderStatus() string {
	switch m.ctrl.State() {
	case session.Idle:
		return noticeStyle.Render("Tap the " + grid.Target.Glyph() + " to start")
	case session.Paused:
		if m.restored {
			return noticeStyle.Render("Session restored · press p to continue")
		}
		return noticeStyle.Render("Paused · press p to continue")
	}
	switch m.last {
	case outcomeHit:
		return hitStyle.Render("Hit")
	case outcomeMiss:
		return missStyle.Render("Miss")
	default:
		return ""
	}
}

func (m *Model) renderResult() string {
	res := m.result
	lines := []string{
		headerStyle.Render(fmt.Sprintf("Score %d", res.Score)),
		"",
		fmt.Sprintf("Hits %d   Misses %d", res.Hits, res.Misses),
		footerStyle.Render(fmt.Sprintf("Scoring: %s", res.Policy)),
		"",
		noticeStyle.Render(strings.Join([]string{"n: new game", "esc: quit"}, "  ")),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}
