package tui

import (
	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7D56F4") // Purple accent
	secondaryColor = lipgloss.Color("#6C6C6C") // Gray for secondary text
	successColor   = lipgloss.Color("#73F59F") // Green for completed tasks
	warnColor      = lipgloss.Color("#F5C542") // Amber for in-progress tasks
	errorColor     = lipgloss.Color("#FF6B6B") // Red for errors

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SubtleStyle for hints and secondary text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SelectedStyle for the task under the cursor
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// BoxStyle for the task panel
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	// ErrorStyle for failed updates
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	completedStyle  = lipgloss.NewStyle().Foreground(successColor)
	inProgressStyle = lipgloss.NewStyle().Foreground(warnColor).Bold(true)
	cancelledStyle  = lipgloss.NewStyle().Foreground(secondaryColor).Strikethrough(true)
)

// statusStyle returns the style a task line is drawn with.
func statusStyle(s plans.TaskStatus) lipgloss.Style {
	switch s {
	case plans.TaskCompleted:
		return completedStyle
	case plans.TaskInProgress:
		return inProgressStyle
	case plans.TaskCancelled:
		return cancelledStyle
	default:
		return lipgloss.NewStyle()
	}
}
