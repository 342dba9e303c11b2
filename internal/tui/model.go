// Package tui is the terminal view of the active plan.
//
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the active plan, the cursor and the last notice
// 2. Update: watcher states, key presses and write results
// 3. View: renders the plan, a progress bar and key help
//
// The view never polls. It listens to the watcher and redraws when the
// active plan changes on disk. Status changes made here go through the
// repository, with the watcher told first so the write is not echoed back
// as an external edit.
package tui

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/HendryAvila/planmcp/internal/watcher"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxProgressWidth = 60

// Source is the watcher side the view depends on.
type Source interface {
	Subscribe() (<-chan watcher.State, func())
	SetUpdatingFromUI(updating bool)
	ReloadNow()
}

// Updater writes task status changes.
type Updater interface {
	UpdateTaskStatus(planID, taskID string, status plans.TaskStatus) (*plans.Plan, error)
}

// --- Messages ---

// stateMsg carries a watcher snapshot.
type stateMsg watcher.State

// sourceClosedMsg is sent once the subscription channel is closed.
type sourceClosedMsg struct{}

// taskUpdatedMsg reports a successful write made from this view.
type taskUpdatedMsg struct {
	plan   *plans.Plan
	taskID string
	status plans.TaskStatus
}

// updateFailedMsg reports a failed write made from this view.
type updateFailedMsg struct {
	err error
}

// Model is the bubbletea model for the plan view.
type Model struct {
	source   Source
	updater  Updater
	plansDir string

	updates     <-chan watcher.State
	unsubscribe func()

	plan    *plans.Plan
	reloads uint64
	cursor  int
	notice  string
	err     error

	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
}

// New subscribes to source and returns the initial model. Close must be
// called once the program exits.
func New(source Source, updater Updater, plansDir string) Model {
	updates, unsubscribe := source.Subscribe()
	return Model{
		source:      source,
		updater:     updater,
		plansDir:    plansDir,
		updates:     updates,
		unsubscribe: unsubscribe,
		keys:        defaultKeyMap(),
		help:        help.New(),
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Close ends the watcher subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Plan returns the plan currently displayed, or nil.
func (m Model) Plan() *plans.Plan { return m.plan }

// Cursor returns the index of the selected task.
func (m Model) Cursor() int { return m.cursor }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForState(m.updates)
}

// waitForState blocks on the next watcher state.
func waitForState(updates <-chan watcher.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return sourceClosedMsg{}
		}
		return stateMsg(st)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-4, 10), maxProgressWidth)
		return m, nil

	case stateMsg:
		m.reloads = msg.Reloads
		m.setPlan(msg.Plan)
		return m, waitForState(m.updates)

	case sourceClosedMsg:
		return m, nil

	case taskUpdatedMsg:
		m.setPlan(msg.plan)
		m.err = nil
		m.notice = fmt.Sprintf("%s → %s", msg.taskID, msg.status)
		return m, nil

	case updateFailedMsg:
		m.err = msg.err
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.notice = "reloading"
		return m, reloadCmd(m.source)
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.plan != nil && m.cursor < len(m.plan.Tasks)-1 {
			m.cursor++
		}
		return m, nil
	}

	if status, ok := m.keys.statusFor(msg); ok {
		if m.plan == nil || len(m.plan.Tasks) == 0 {
			return m, nil
		}
		task := m.plan.Tasks[m.cursor]
		if task.Status == status {
			return m, nil
		}
		return m, setStatusCmd(m.source, m.updater, m.plan.ID, task.ID, status)
	}
	return m, nil
}

// setPlan replaces the displayed plan and keeps the cursor in range.
func (m *Model) setPlan(p *plans.Plan) {
	m.plan = p
	if p == nil || len(p.Tasks) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(p.Tasks) {
		m.cursor = len(p.Tasks) - 1
	}
}

// setStatusCmd arms the watcher latch and writes the new status. The latch
// is disarmed again if nothing was written.
func setStatusCmd(source Source, updater Updater, planID, taskID string, status plans.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		source.SetUpdatingFromUI(true)
		updated, err := updater.UpdateTaskStatus(planID, taskID, status)
		if err != nil {
			source.SetUpdatingFromUI(false)
			return updateFailedMsg{err: err}
		}
		return taskUpdatedMsg{plan: updated, taskID: taskID, status: status}
	}
}

func reloadCmd(source Source) tea.Cmd {
	return func() tea.Msg {
		source.ReloadNow()
		return nil
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("planmcp"))
	b.WriteString("\n")

	if m.plan == nil {
		b.WriteString("No active plan.\n")
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("Watching %s. Create a plan with the create_plan tool.", m.plansDir)))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	p := m.plan
	b.WriteString(SelectedStyle.Render(p.Name))
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %s · %s · reload %d", p.ID, p.Status, m.reloads)))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.progress.ViewAs(p.Progress()))
	fmt.Fprintf(&b, "  %d/%d\n", p.CompletedCount(), len(p.Tasks))

	lines := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		lines[i] = m.renderTask(i, t)
	}
	b.WriteString(BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
	case m.notice != "":
		b.WriteString(SubtleStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTask(i int, t plans.Task) string {
	cursor := "  "
	if i == m.cursor {
		cursor = SelectedStyle.Render("› ")
	}
	line := fmt.Sprintf("[%s] %s  %s", t.Status.Checkbox(), t.ID, t.Title)
	return cursor + statusStyle(t.Status).Render(line)
}
