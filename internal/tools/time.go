package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// timeNow is a package-level var for testability.
var timeNow = time.Now

// GetTimeTool handles the get_time MCP tool.
type GetTimeTool struct{}

// NewGetTimeTool creates a GetTimeTool.
func NewGetTimeTool() *GetTimeTool {
	return &GetTimeTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("get_time",
		mcp.WithDescription("Return the current local date and time of the server."),
		mcp.WithString("timezone",
			mcp.Description("IANA zone name such as Europe/Berlin. Defaults to the server's local zone."),
		),
	)
}

// Handle processes the get_time tool call.
func (t *GetTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := timeNow()

	if zone := req.GetString("timezone", ""); zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown timezone %q: %v", zone, err)), nil
		}
		now = now.In(loc)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Current time: %s (%s)", now.Format("2006-01-02 15:04:05"), now.Location())), nil
}
