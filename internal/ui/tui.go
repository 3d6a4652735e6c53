// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the node monitor
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the monitor TUI. The returned channel receives a QuitMsg when
// the user asks to exit.
func Run() (*tea.Program, chan QuitMsg, error) {
	quitChan := make(chan QuitMsg, 1)
	p := tea.NewProgram(NewModel(quitChan), tea.WithAltScreen())
	return p, quitChan, nil
}
