package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// SetActivePlanTool handles the set_active_plan MCP tool.
type SetActivePlanTool struct {
	svc plans.Service
}

// NewSetActivePlanTool creates a SetActivePlanTool backed by svc.
func NewSetActivePlanTool(svc plans.Service) *SetActivePlanTool {
	return &SetActivePlanTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *SetActivePlanTool) Definition() mcp.Tool {
	return mcp.NewTool("set_active_plan",
		mcp.WithDescription(
			"Make the given plan the active plan. Every other plan is deactivated. "+
				"Use list_plans to find plan IDs.",
		),
		mcp.WithString("plan_id",
			mcp.Required(),
			mcp.Description("ID of the plan to activate"),
		),
	)
}

// Handle processes the set_active_plan tool call.
func (t *SetActivePlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID := strings.TrimSpace(req.GetString("plan_id", ""))
	if planID == "" {
		return mcp.NewToolResultError("'plan_id' is required."), nil
	}

	plan, err := t.svc.SetActivePlan(planID)
	if err != nil {
		return planError("activating plan", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Plan `%s` (%s) is now active.\n\n**Progress:** %s\n",
		plan.ID, plan.Name, formatProgress(*plan),
	)), nil
}
