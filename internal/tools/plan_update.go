package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateTaskStatusTool handles the update_task_status MCP tool.
type UpdateTaskStatusTool struct {
	svc plans.Service
}

// NewUpdateTaskStatusTool creates an UpdateTaskStatusTool backed by svc.
func NewUpdateTaskStatusTool(svc plans.Service) *UpdateTaskStatusTool {
	return &UpdateTaskStatusTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task_status",
		mcp.WithDescription(
			"Change the status of one task and save the plan file. "+
				"Targets the active plan unless `plan_id` is given. "+
				"When every task is completed the plan is marked Completed. "+
				"Task IDs come from create_plan or get_current_plan.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID, e.g. task-2"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status"),
			mcp.Enum(statusNames()...),
		),
		mcp.WithString("plan_id",
			mcp.Description("Plan to update. Defaults to the active plan."),
		),
	)
}

// Handle processes the update_task_status tool call.
func (t *UpdateTaskStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := strings.TrimSpace(req.GetString("task_id", ""))
	rawStatus := strings.TrimSpace(req.GetString("status", ""))
	planID := strings.TrimSpace(req.GetString("plan_id", ""))

	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required."), nil
	}
	if rawStatus == "" {
		return mcp.NewToolResultError("'status' is required."), nil
	}

	status, err := plans.ParseTaskStatus(rawStatus)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Invalid status %q. Valid values: %s", rawStatus, strings.Join(statusNames(), ", "),
		)), nil
	}

	var current *plans.Plan
	if planID == "" {
		current, err = t.svc.GetActivePlan()
		if err != nil {
			return planError("loading active plan", err)
		}
		if current == nil {
			return mcp.NewToolResultError("No active plan. Create one with `create_plan` first."), nil
		}
	} else {
		current, err = t.svc.GetPlan(planID)
		if err != nil {
			return planError("loading plan", err)
		}
	}

	idx := current.FindTask(taskID)
	if idx < 0 {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Task %q not found in plan %q. Available tasks: %s", taskID, current.Name, taskIDs(*current),
		)), nil
	}
	previous := current.Tasks[idx].Status

	updated, err := t.svc.UpdateTaskStatus(current.ID, taskID, status)
	if err != nil {
		return planError("updating task status", err)
	}

	var list strings.Builder
	for _, task := range updated.Tasks {
		marker := " "
		if task.ID == taskID {
			marker = "→"
		}
		fmt.Fprintf(&list, "%s %s\n", marker, formatTask(task))
	}

	response := fmt.Sprintf(
		"# Task status updated\n\n"+
			"**Plan:** %s\n"+
			"**Task:** %s\n"+
			"**Old status:** %s\n"+
			"**New status:** %s\n"+
			"**Plan status:** %s\n\n"+
			"## All tasks\n\n"+
			"%s\n"+
			"**Progress:** %s\n",
		updated.Name, updated.Tasks[idx].Title, previous, status, updated.Status,
		list.String(), formatProgress(*updated),
	)
	return mcp.NewToolResultText(response), nil
}
