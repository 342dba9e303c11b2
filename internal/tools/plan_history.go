package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planmcp/internal/journal"
	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryReader is the read side of the journal.
type HistoryReader interface {
	History(planID string, limit int) ([]journal.Event, error)
	CountByKind(planID string) (map[journal.Kind]int, error)
}

// summaryKinds is the order of the per-kind totals line.
var summaryKinds = []journal.Kind{
	journal.KindCreated,
	journal.KindStatusChange,
	journal.KindActivated,
	journal.KindDeleted,
}

// PlanHistoryTool handles the plan_history MCP tool.
type PlanHistoryTool struct {
	history HistoryReader
}

// NewPlanHistoryTool creates a PlanHistoryTool reading from history.
func NewPlanHistoryTool(history HistoryReader) *PlanHistoryTool {
	return &PlanHistoryTool{history: history}
}

// Definition returns the MCP tool definition for registration.
func (t *PlanHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_history",
		mcp.WithDescription(
			"Show recent plan activity, newest first: plan creation, activation, deletion "+
				"and every task status change with its old and new status.",
		),
		mcp.WithString("plan_id",
			mcp.Description("Only show events for this plan. Omit for all plans."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events (default 20)"),
		),
	)
}

// Handle processes the plan_history tool call.
func (t *PlanHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID := strings.TrimSpace(req.GetString("plan_id", ""))
	limit := int(req.GetFloat("limit", 20))
	if limit <= 0 {
		return mcp.NewToolResultError("'limit' must be positive."), nil
	}

	events, err := t.history.History(planID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading plan history: %w", err)
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No plan activity recorded yet."), nil
	}

	counts, err := t.history.CountByKind(planID)
	if err != nil {
		return nil, fmt.Errorf("counting plan history: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Plan history (%d)\n\n", len(events))
	b.WriteString(summarizeCounts(counts))
	b.WriteString("\n\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- %s `%s` %s: %s (%d/%d)\n",
			e.CreatedAt, e.PlanID, e.PlanName, describeEvent(e), e.Completed, e.Total)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func describeEvent(e journal.Event) string {
	switch e.Kind {
	case journal.KindStatusChange:
		return fmt.Sprintf("%s %s → %s", e.TaskID, e.FromStatus, e.ToStatus)
	case journal.KindCreated:
		return "created"
	case journal.KindActivated:
		return "activated"
	case journal.KindDeleted:
		return "deleted"
	default:
		return string(e.Kind)
	}
}

// summarizeCounts renders all-time totals, e.g. "Totals: created 1, status_changed 2".
func summarizeCounts(counts map[journal.Kind]int) string {
	parts := make([]string, 0, len(summaryKinds))
	for _, k := range summaryKinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", k, n))
		}
	}
	return "Totals: " + strings.Join(parts, ", ")
}
