package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreatePlanTool handles the create_plan MCP tool.
type CreatePlanTool struct {
	svc plans.Service
}

// NewCreatePlanTool creates a CreatePlanTool backed by svc.
func NewCreatePlanTool(svc plans.Service) *CreatePlanTool {
	return &CreatePlanTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *CreatePlanTool) Definition() mcp.Tool {
	return mcp.NewTool("create_plan",
		mcp.WithDescription(
			"Create a new task plan and save it as a markdown file in the plans directory. "+
				"The new plan becomes the active plan; every other plan is deactivated. "+
				"Use this to structure multi-step work before starting it. "+
				"Returns the plan ID, file path and the generated task IDs (task-1, task-2, ...).",
		),
		mcp.WithString("plan_name",
			mcp.Required(),
			mcp.Description("Plan name"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the plan is for and what done looks like"),
		),
		mcp.WithArray("tasks",
			mcp.Required(),
			mcp.Description("Task titles in execution order (at least one)"),
			mcp.WithStringItems(),
		),
	)
}

// Handle processes the create_plan tool call.
func (t *CreatePlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("plan_name", "")
	description := req.GetString("description", "")
	tasks := req.GetStringSlice("tasks", nil)

	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'plan_name' is required."), nil
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultError("'tasks' is required and must contain at least one task."), nil
	}

	plan, err := t.svc.CreatePlan(name, description, tasks)
	if err != nil {
		return planError("creating plan", err)
	}

	response := fmt.Sprintf(
		"# Plan created\n\n"+
			"**ID:** `%s`\n"+
			"**Name:** %s\n"+
			"**Description:** %s\n"+
			"**Created:** %s\n"+
			"**Status:** %s\n"+
			"**File:** `%s`\n\n"+
			"## Tasks (%d)\n\n"+
			"%s\n"+
			"**Progress:** %s\n",
		plan.ID, plan.Name, plan.Description,
		plan.CreatedAt.Format(plans.TimestampLayout), plan.Status, plan.FilePath,
		len(plan.Tasks), formatTaskList(*plan, false), formatProgress(*plan),
	)
	return mcp.NewToolResultText(response), nil
}
