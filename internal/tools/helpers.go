// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives its dependencies through its
// constructor and exposes Definition (for registration) and Handle
// (compatible with mcp-go's CallToolRequest signature).
//
// Design principles:
// - SRP: each file = one tool
// - DIP: plan tools depend on plans.Service, not on the repository
// - user mistakes become tool errors; infrastructure failures become Go errors
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// planError turns a plans error into a tool result. Domain errors (bad
// input, unknown plan or task, unparseable file) are shown to the caller;
// anything else is returned as a Go error.
func planError(action string, err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, plans.ErrInvalidInput),
		errors.Is(err, plans.ErrNotFound),
		errors.Is(err, plans.ErrParse):
		return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", action, err)), nil
	default:
		return nil, fmt.Errorf("%s: %w", action, err)
	}
}

// statusIcon is the glyph shown in front of a task in tool output.
func statusIcon(s plans.TaskStatus) string {
	switch s {
	case plans.TaskCompleted:
		return "✓"
	case plans.TaskInProgress:
		return "→"
	case plans.TaskCancelled:
		return "✗"
	default:
		return " "
	}
}

// formatTask renders one task the way it appears in the plan file.
func formatTask(t plans.Task) string {
	return fmt.Sprintf("- [%s] %s: %s (%s)", t.Status.Checkbox(), t.ID, t.Title, t.Status)
}

// formatTaskList renders every task, prefixed by its status icon when
// detailed is set.
func formatTaskList(p plans.Plan, detailed bool) string {
	var b strings.Builder
	for _, t := range p.Tasks {
		if detailed {
			fmt.Fprintf(&b, "  %s %s\n", statusIcon(t.Status), formatTask(t))
		} else {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", t.Status.Checkbox(), t.ID, t.Title)
		}
	}
	return b.String()
}

// formatProgress renders "40% (2/5 completed)".
func formatProgress(p plans.Plan) string {
	return fmt.Sprintf("%d%% (%d/%d completed)", int(p.Progress()*100), p.CompletedCount(), len(p.Tasks))
}

func taskIDs(p plans.Plan) string {
	ids := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.ID
	}
	return strings.Join(ids, ", ")
}

func statusNames() []string {
	names := make([]string, len(plans.TaskStatuses))
	for i, s := range plans.TaskStatuses {
		names[i] = string(s)
	}
	return names
}
