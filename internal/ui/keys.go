package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(playing bool) string {
	s := "←/→ scroll  +/- zoom  0 fit  f follow  space play  s export"
	if playing {
		s += "  ,/. seek  ↑/↓ volume"
	}
	s += "  q quit"
	return s
}
