// Package prompts implements MCP prompt handlers for task plans.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the plan-start MCP prompt.
// It guides the AI to break a goal into a plan and work through it.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-start",
		mcp.WithPromptDescription(
			"Turn a goal into a task plan and start working through it, "+
				"updating task status as you go.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What you want to get done"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("max_tasks",
			mcp.ArgumentDescription("Upper bound on the number of tasks. Default: 7"),
		),
	)
}

// Handle processes the plan-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := ""
	maxTasks := "7"
	if args := req.Params.Arguments; args != nil {
		goal = strings.TrimSpace(args["goal"])
		if m, ok := args["max_tasks"]; ok && strings.TrimSpace(m) != "" {
			maxTasks = strings.TrimSpace(m)
		}
	}
	if goal == "" {
		return nil, fmt.Errorf("argument 'goal' is required")
	}

	return &mcp.GetPromptResult{
		Description: "Plan and execute: " + goal,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"My goal: %s\n\n"+
						"1. Break it into at most %s concrete, ordered tasks\n"+
						"2. Call `create_plan` with a short name, a one-paragraph description and the task titles\n"+
						"3. Before starting each task call `update_task_status` with `in_progress`; "+
						"when it is done call it again with `completed` (or `cancelled` if it no longer applies)\n"+
						"4. Finish with `get_current_plan` and summarise what was done",
					goal, maxTasks,
				)),
			},
		},
	}, nil
}
