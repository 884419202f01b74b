package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wavescope/internal/track"
)

type tickMsg time.Time
type playbackEndedMsg struct{}
type loadStatusMsg track.LoadStatus
type exportDoneMsg struct {
	path string
	err  error
}

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForLoad(ch <-chan track.LoadStatus) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return loadStatusMsg(s)
	}
}
