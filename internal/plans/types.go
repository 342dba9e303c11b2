// Package plans holds the task-plan domain: the Plan/Task model, the
// markdown codec that persists a plan as one file, and the Repository
// that owns the plans directory.
//
// Layout follows the same split as the rest of the server:
// - types.go: model, status enum, helpers
// - codec.go: pure Encode/Decode between Plan and markdown
// - repository.go: create/list/update/activate/delete over a filestore.Store
// - errors.go: sentinel and parse errors
package plans

import (
	"fmt"
	"time"
)

// --- Task status enum ---

// TaskStatus is the lifecycle state of a single task. The string value is
// the raw form written in parentheses on each task line.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskCancelled}

var validStatuses = map[TaskStatus]bool{
	TaskPending:    true,
	TaskInProgress: true,
	TaskCompleted:  true,
	TaskCancelled:  true,
}

// ParseTaskStatus converts a raw value into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !validStatuses[s] {
		return "", fmt.Errorf("%w: unknown task status %q: must be one of: pending, in_progress, completed, cancelled", ErrInvalidInput, raw)
	}
	return s, nil
}

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	return validStatuses[s]
}

// Checkbox returns the symbol written between the brackets of a task line.
// It is a visual hint only; the parenthesised status is authoritative.
func (s TaskStatus) Checkbox() string {
	switch s {
	case TaskCompleted:
		return "x"
	case TaskInProgress:
		return "→"
	case TaskCancelled:
		return "c"
	default:
		return " "
	}
}

// statusFromCheckbox is the fallback used when a task line carries no
// recognised parenthesised status.
func statusFromCheckbox(symbol string) TaskStatus {
	switch symbol {
	case "x", "X":
		return TaskCompleted
	case "→":
		return TaskInProgress
	case "c":
		return TaskCancelled
	default:
		return TaskPending
	}
}

// --- Plan status labels ---

// Plan status is an opaque label. These are the two values the server writes.
const (
	PlanStatusInProgress = "In progress"
	PlanStatusCompleted  = "Completed"
)

// --- Core data structures ---

// Task is a titled unit of work inside a Plan.
type Task struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
	Order  int        `json:"order"`
}

// Plan is a named, timestamped list of tasks persisted as one markdown file.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	Tasks       []Task    `json:"tasks"`
	FilePath    string    `json:"file_path"`
}

// Clone returns a deep copy so callers can mutate tasks freely.
func (p Plan) Clone() Plan {
	out := p
	out.Tasks = make([]Task, len(p.Tasks))
	copy(out.Tasks, p.Tasks)
	return out
}

// FindTask returns the index of the task with the given ID, or -1.
func (p Plan) FindTask(taskID string) int {
	for i, t := range p.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// CompletedCount returns how many tasks are completed.
func (p Plan) CompletedCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Status == TaskCompleted {
			n++
		}
	}
	return n
}

// Progress is the completed fraction in [0, 1]. An empty plan has no progress.
func (p Plan) Progress() float64 {
	if len(p.Tasks) == 0 {
		return 0
	}
	return float64(p.CompletedCount()) / float64(len(p.Tasks))
}

// IsCompleted reports whether the plan has tasks and all of them are completed.
func (p Plan) IsCompleted() bool {
	return len(p.Tasks) > 0 && p.CompletedCount() == len(p.Tasks)
}

// InProgressTasks returns the tasks currently being worked on.
func (p Plan) InProgressTasks() []Task {
	var out []Task
	for _, t := range p.Tasks {
		if t.Status == TaskInProgress {
			out = append(out, t)
		}
	}
	return out
}
