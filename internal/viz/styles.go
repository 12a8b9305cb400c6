package viz

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles.
var (
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		MarginBottom(1)

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(14)

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2)

	Graph = lipgloss.NewStyle().
		Foreground(lipgloss.Color("49")).
		Padding(1, 0)

	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))
)
