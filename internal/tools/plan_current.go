package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetCurrentPlanTool handles the get_current_plan MCP tool.
type GetCurrentPlanTool struct {
	svc plans.Service
}

// NewGetCurrentPlanTool creates a GetCurrentPlanTool backed by svc.
func NewGetCurrentPlanTool(svc plans.Service) *GetCurrentPlanTool {
	return &GetCurrentPlanTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *GetCurrentPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("get_current_plan",
		mcp.WithDescription(
			"Show the active plan: ID, name, description, every task with its status, "+
				"progress, and the backing file. Use it to look up task IDs before calling "+
				"update_task_status. Reports when there is no active plan.",
		),
		mcp.WithBoolean("include_details",
			mcp.Description("Include status icons, file path, in-progress summary and usage hints (default true)"),
		),
	)
}

// Handle processes the get_current_plan tool call.
func (t *GetCurrentPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	detailed := req.GetBool("include_details", true)

	plan, err := t.svc.GetActivePlan()
	if err != nil {
		return planError("loading active plan", err)
	}
	if plan == nil {
		return mcp.NewToolResultText(
			"No active plan.\n\n" +
				"Create one with `create_plan`:\n" +
				"- plan_name: plan name\n" +
				"- description: what the plan is for\n" +
				"- tasks: array of task titles\n",
		), nil
	}

	return mcp.NewToolResultText(renderPlan(*plan, detailed)), nil
}

// renderPlan formats a plan as markdown. The short form omits icons, file
// path and hints.
func renderPlan(plan plans.Plan, detailed bool) string {
	var b strings.Builder

	b.WriteString("# Active plan\n\n")
	fmt.Fprintf(&b, "**ID:** `%s`\n", plan.ID)
	fmt.Fprintf(&b, "**Name:** %s\n", plan.Name)
	fmt.Fprintf(&b, "**Description:** %s\n", plan.Description)
	if detailed {
		fmt.Fprintf(&b, "**Created:** %s\n", plan.CreatedAt.Format(plans.TimestampLayout))
		fmt.Fprintf(&b, "**Status:** %s\n", plan.Status)
		fmt.Fprintf(&b, "**File:** `%s`\n", plan.FilePath)
	}
	fmt.Fprintf(&b, "**Progress:** %s\n\n", formatProgress(plan))

	b.WriteString("## Tasks\n\n")
	b.WriteString(formatTaskList(plan, detailed))

	if !detailed {
		return b.String()
	}

	if working := plan.InProgressTasks(); len(working) > 0 {
		b.WriteString("\n## In progress\n\n")
		for _, task := range working {
			fmt.Fprintf(&b, "  → %s: %s\n", task.ID, task.Title)
		}
	}

	b.WriteString("\nTo change a task: `update_task_status(task_id=\"<task id>\", status=\"<new status>\")`\n")
	return b.String()
}
