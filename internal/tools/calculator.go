package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// CalculatorTool handles the calculator MCP tool.
type CalculatorTool struct{}

// NewCalculatorTool creates a CalculatorTool.
func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *CalculatorTool) Definition() mcp.Tool {
	return mcp.NewTool("calculator",
		mcp.WithDescription("Apply a basic arithmetic operation to two numbers."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("add", "subtract", "multiply", "divide"),
		),
		mcp.WithNumber("a",
			mcp.Required(),
			mcp.Description("Left operand"),
		),
		mcp.WithNumber("b",
			mcp.Required(),
			mcp.Description("Right operand"),
		),
	)
}

// Handle processes the calculator tool call.
func (t *CalculatorTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op := req.GetString("operation", "")
	a, err := req.RequireFloat("a")
	if err != nil {
		return mcp.NewToolResultError("'a' must be a number."), nil
	}
	b, err := req.RequireFloat("b")
	if err != nil {
		return mcp.NewToolResultError("'b' must be a number."), nil
	}

	var result float64
	switch op {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return mcp.NewToolResultError("Division by zero."), nil
		}
		result = a / b
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Unknown operation %q. Valid: add, subtract, multiply, divide", op)), nil
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return mcp.NewToolResultError("Result is not a finite number."), nil
	}
	return mcp.NewToolResultText(strconv.FormatFloat(result, 'g', -1, 64)), nil
}
