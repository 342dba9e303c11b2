package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/mark3labs/mcp-go/mcp"
)

func newContextTool(t *testing.T, docs map[string]string) (*ContextTool, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "prompts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewContextTool(filestore.NewOSStore(), dir), dir
}

func TestContextTool_DefaultDocument(t *testing.T) {
	tool, _ := newContextTool(t, map[string]string{
		"data-domain-layer.md": "Create xRepository and xDto.\n",
	})

	result := callTool(t, tool.Handle, nil)
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}
	text := getResultText(result)
	for _, want := range []string{
		"# Context: data-domain-layer",
		"Replace it with the name of the service",
		"---\n\nCreate xRepository and xDto.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Service:") {
		t.Errorf("no service name was given:\n%s", text)
	}
}

func TestContextTool_ServiceName(t *testing.T) {
	tool, _ := newContextTool(t, map[string]string{
		"view.md": "Screens for x.\n",
	})

	text := getResultText(callTool(t, tool.Handle, map[string]interface{}{
		"document":     "view.md",
		"service_name": "  Payments ",
	}))
	for _, want := range []string{"# Context: view", "Service: Payments", "Here 'x' is 'Payments'.", "Screens for x."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q:\n%s", want, text)
		}
	}
}

func TestContextTool_UnknownDocument(t *testing.T) {
	tool, _ := newContextTool(t, map[string]string{
		"data-domain-layer.md": "a",
		"view.md":              "b",
		"notes.txt":            "c",
	})

	result := callTool(t, tool.Handle, map[string]interface{}{"document": "tests"})
	if !isErrorResult(result) {
		t.Fatal("missing document should be a tool error")
	}
	if text := getResultText(result); !strings.Contains(text, "Available: data-domain-layer, view") {
		t.Errorf("error should list documents: %s", text)
	}
}

func TestContextTool_MissingDirectory(t *testing.T) {
	tool := NewContextTool(filestore.NewOSStore(), filepath.Join(t.TempDir(), "absent"))

	result := callTool(t, tool.Handle, nil)
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "Available: none") {
		t.Errorf("result = %s", getResultText(result))
	}
}

func TestContextTool_RejectsPaths(t *testing.T) {
	tool, _ := newContextTool(t, nil)

	for _, doc := range []string{"../secret", "sub/doc", `sub\doc`, ".env"} {
		t.Run(doc, func(t *testing.T) {
			if !isErrorResult(callTool(t, tool.Handle, map[string]interface{}{"document": doc})) {
				t.Errorf("document %q should be rejected", doc)
			}
		})
	}
}

// unreadableStore fails every read with a non-domain error.
type unreadableStore struct {
	*filestore.OSStore
}

func (unreadableStore) ReadFile(string) (string, error) { return "", errDisk }

func TestContextTool_ReadFailure(t *testing.T) {
	tool := NewContextTool(unreadableStore{filestore.NewOSStore()}, t.TempDir())

	req := mcp.CallToolRequest{}
	_, err := tool.Handle(context.Background(), req)
	if !errors.Is(err, errDisk) {
		t.Errorf("err = %v, want errDisk", err)
	}
}
