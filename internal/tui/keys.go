package tui

import (
	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds every binding of the plan view. It implements help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Pending    key.Binding
	InProgress key.Binding
	Completed  key.Binding
	Cancelled  key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Pending: key.NewBinding(
			key.WithKeys("p", "1"),
			key.WithHelp("p", "pending"),
		),
		InProgress: key.NewBinding(
			key.WithKeys("s", "2"),
			key.WithHelp("s", "start"),
		),
		Completed: key.NewBinding(
			key.WithKeys("d", "3", "enter"),
			key.WithHelp("d", "done"),
		),
		Cancelled: key.NewBinding(
			key.WithKeys("x", "4"),
			key.WithHelp("x", "cancel"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// statusFor returns the task status bound to msg, if any.
func (k keyMap) statusFor(msg tea.KeyMsg) (plans.TaskStatus, bool) {
	switch {
	case key.Matches(msg, k.Pending):
		return plans.TaskPending, true
	case key.Matches(msg, k.InProgress):
		return plans.TaskInProgress, true
	case key.Matches(msg, k.Completed):
		return plans.TaskCompleted, true
	case key.Matches(msg, k.Cancelled):
		return plans.TaskCancelled, true
	}
	return "", false
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.InProgress, k.Completed, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Pending, k.InProgress, k.Completed, k.Cancelled},
		{k.Reload, k.Help, k.Quit},
	}
}
