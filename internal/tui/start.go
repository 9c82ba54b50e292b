package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the interactive scan screen. With an initial URL the scan
// begins immediately; otherwise the input form is shown.
func Start(client scanner, initialURL, category string) error {
	model := NewModel(client, initialURL, category)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
