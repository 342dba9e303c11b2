package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the plan-status MCP prompt.
// It instructs the AI to read and present the active plan.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-status",
		mcp.WithPromptDescription(
			"Check the active task plan: progress, what is in flight, "+
				"and what to do next.",
		),
	)
}

// Handle processes the plan-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Active Plan Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `get_current_plan` to check my active plan.\n\n" +
						"Then:\n" +
						"1. Show the progress and every task with its status\n" +
						"2. Call out tasks that are in progress\n" +
						"3. Suggest the next pending task to pick up\n" +
						"4. If there is no active plan, run `list_plans` and offer to activate one",
				),
			},
		},
	}, nil
}
