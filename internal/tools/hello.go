package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// HelloTool handles the hello MCP tool. It is a liveness check for clients.
type HelloTool struct {
	serverName string
}

// NewHelloTool creates a HelloTool that greets as serverName.
func NewHelloTool(serverName string) *HelloTool {
	return &HelloTool{serverName: serverName}
}

// Definition returns the MCP tool definition for registration.
func (t *HelloTool) Definition() mcp.Tool {
	return mcp.NewTool("hello",
		mcp.WithDescription("Return a greeting from the server. Useful to check the connection."),
		mcp.WithString("name",
			mcp.Description("Who to greet"),
		),
	)
}

// Handle processes the hello tool call.
func (t *HelloTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		name = "World"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Hello %s from %s!", strings.ToUpper(name), t.serverName)), nil
}

// EchoTool handles the echo MCP tool.
type EchoTool struct{}

// NewEchoTool creates an EchoTool.
func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *EchoTool) Definition() mcp.Tool {
	return mcp.NewTool("echo",
		mcp.WithDescription("Return the given text unchanged."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to echo back"),
		),
	)
}

// Handle processes the echo tool call.
func (t *EchoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("'text' is required."), nil
	}
	return mcp.NewToolResultText(text), nil
}
