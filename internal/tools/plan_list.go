package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListPlansTool handles the list_plans MCP tool.
type ListPlansTool struct {
	svc plans.Service
}

// NewListPlansTool creates a ListPlansTool backed by svc.
func NewListPlansTool(svc plans.Service) *ListPlansTool {
	return &ListPlansTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListPlansTool) Definition() mcp.Tool {
	return mcp.NewTool("list_plans",
		mcp.WithDescription(
			"List every plan in the plans directory with its ID, status, progress and "+
				"whether it is the active plan. Files that cannot be parsed are skipped.",
		),
	)
}

// Handle processes the list_plans tool call.
func (t *ListPlansTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := t.svc.ListAllPlans()
	if err != nil {
		return planError("listing plans", err)
	}
	if len(all) == 0 {
		return mcp.NewToolResultText("No plans found. Create one with `create_plan`."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Plans (%d)\n\n", len(all))
	b.WriteString("| | ID | Name | Status | Progress | Created |\n")
	b.WriteString("|---|----|------|--------|----------|---------|\n")
	for _, p := range all {
		marker := ""
		if p.IsActive {
			marker = "★"
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s | %s |\n",
			marker, p.ID, p.Name, p.Status, formatProgress(p), p.CreatedAt.Format(plans.TimestampLayout))
	}
	b.WriteString("\n★ = active plan\n")

	return mcp.NewToolResultText(b.String()), nil
}
