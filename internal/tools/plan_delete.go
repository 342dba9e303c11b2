package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// DeletePlanTool handles the delete_plan MCP tool.
type DeletePlanTool struct {
	svc plans.Service
}

// NewDeletePlanTool creates a DeletePlanTool backed by svc.
func NewDeletePlanTool(svc plans.Service) *DeletePlanTool {
	return &DeletePlanTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *DeletePlanTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_plan",
		mcp.WithDescription(
			"Delete a plan's markdown file. Deleting the active plan leaves no plan active. "+
				"Requires confirm=true.",
		),
		mcp.WithString("plan_id",
			mcp.Required(),
			mcp.Description("ID of the plan to delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Must be true. Guards against accidental deletion."),
		),
	)
}

// Handle processes the delete_plan tool call.
func (t *DeletePlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID := strings.TrimSpace(req.GetString("plan_id", ""))
	if planID == "" {
		return mcp.NewToolResultError("'plan_id' is required."), nil
	}
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError("Refusing to delete without confirm=true."), nil
	}

	if err := t.svc.DeletePlan(planID); err != nil {
		return planError("deleting plan", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Plan `%s` deleted.", planID)), nil
}
