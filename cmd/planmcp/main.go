// planmcp: Task-plan MCP server
//
// An MCP server that lets AI coding tools keep a task plan as markdown
// files in the project, plus a terminal view that follows the active plan
// while the agent works.
//
// Usage:
//
//	planmcp serve    # Start MCP server (stdio transport)
//	planmcp ui       # Watch the active plan in the terminal
//	planmcp plans    # List plans
//	planmcp init     # Write .planmcp/config.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
