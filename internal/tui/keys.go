package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// cellKeys maps keyboard positions to grid cells, row by row.
const cellKeys = "1234qwerasdfzxcv"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Tap     key.Binding
	Cells   key.Binding
	Pause   key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Tap:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "tap")),
		Cells:   key.NewBinding(key.WithKeys(strings.Split(cellKeys, "")...), key.WithHelp("1-4 q-r a-f z-v", "tap cell")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Restart: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new game")),
		Quit:    key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cells, k.Tap, k.Pause, k.Restart, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Cells, k.Tap},
		{k.Pause, k.Restart, k.Quit},
	}
}

func cellForKey(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	idx := strings.Index(cellKeys, s)
	return idx, idx >= 0
}
