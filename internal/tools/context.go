package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultContextDocument is served when get_context is called without a
// document name.
const DefaultContextDocument = "data-domain-layer"

// ContextTool handles the get_context MCP tool. It serves markdown
// reference documents (code generation rules, project conventions) from
// the prompts directory.
type ContextTool struct {
	files filestore.Store
	dir   string
}

// NewContextTool creates a ContextTool reading documents from dir.
func NewContextTool(files filestore.Store, dir string) *ContextTool {
	return &ContextTool{files: files, dir: dir}
}

// Definition returns the MCP tool definition for registration.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_context",
		mcp.WithDescription(
			"Return a reference document from the project's prompts directory, such as the rules "+
				"and examples for generating data and domain layers and their tests. "+
				"Call it before generating a new service from an API contract, JSON schema or docs.",
		),
		mcp.WithString("document",
			mcp.Description("Document name without the .md extension (default \""+DefaultContextDocument+"\")"),
		),
		mcp.WithString("service_name",
			mcp.Description("Service or feature the code is for. The rules use 'x' as a placeholder for it."),
		),
	)
}

// Handle processes the get_context tool call.
func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := strings.TrimSuffix(strings.TrimSpace(req.GetString("document", "")), ".md")
	if doc == "" {
		doc = DefaultContextDocument
	}
	if strings.ContainsAny(doc, `/\`) || strings.HasPrefix(doc, ".") {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid document name %q: use a file name from the prompts directory.", doc)), nil
	}

	content, err := t.files.ReadFile(filepath.Join(t.dir, doc+".md"))
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Context document %q not found in %s. Available: %s", doc, t.dir, t.available())), nil
		}
		return nil, fmt.Errorf("reading context document: %w", err)
	}

	serviceName := strings.TrimSpace(req.GetString("service_name", ""))
	return mcp.NewToolResultText(contextIntro(doc, serviceName) + content), nil
}

// available lists the document names in the prompts directory.
func (t *ContextTool) available() string {
	paths, err := t.files.ListFiles(t.dir)
	if err != nil {
		return "none"
	}
	var names []string
	for _, p := range paths {
		if name, ok := strings.CutSuffix(filepath.Base(p), ".md"); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func contextIntro(doc, serviceName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Context: %s\n", doc)
	if serviceName != "" {
		fmt.Fprintf(&b, "Service: %s\n\n", serviceName)
		fmt.Fprintf(&b, "The rules below use 'x' for the service name. Here 'x' is '%s'.\n", serviceName)
	} else {
		b.WriteString("\nThe rules below use 'x' for the service name. Replace it with the name of the service you are generating.\n")
	}
	b.WriteString("\n---\n\n")
	return b.String()
}
