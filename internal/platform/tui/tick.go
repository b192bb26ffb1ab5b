// Package tui is the terminal front end: the Bubble Tea match screen, the
// SSH lobby, match history and the Wish server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg triggers one render frame. The simulation clock decides how
// many ticks the frame runs.
type FrameMsg time.Time

// frameCmd schedules the next frame at the given rate.
func frameCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 30
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
