// Package resources implements MCP resource handlers for task plans.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (plan://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ActiveURI = "plan://active"
	ListURI   = "plan://plans"
)

// ActiveSource is the watcher view of the active plan.
type ActiveSource interface {
	CurrentPlan() *plans.Plan
	ReloadCount() uint64
}

// Lister lists every plan on disk.
type Lister interface {
	ListAllPlans() ([]plans.Plan, error)
}

// Handler manages plan resource endpoints.
type Handler struct {
	active ActiveSource
	plans  Lister
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(active ActiveSource, lister Lister) *Handler {
	return &Handler{active: active, plans: lister}
}

// ActiveResource returns the MCP resource definition for the active plan.
func (h *Handler) ActiveResource() mcp.Resource {
	return mcp.NewResource(
		ActiveURI,
		"Active Plan",
		mcp.WithResourceDescription("The active task plan as last loaded by the file watcher, or null"),
		mcp.WithMIMEType("application/json"),
	)
}

// activeView is the JSON shape of plan://active.
type activeView struct {
	Plan     *plans.Plan `json:"plan"`
	Progress float64     `json:"progress"`
	Reloads  uint64      `json:"reloads"`
}

// HandleActive returns the watcher's current plan as JSON.
func (h *Handler) HandleActive(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	view := activeView{
		Plan:    h.active.CurrentPlan(),
		Reloads: h.active.ReloadCount(),
	}
	if view.Plan != nil {
		view.Progress = view.Plan.Progress()
	}
	return jsonResource(req.Params.URI, view)
}

// ListResource returns the MCP resource definition for the plan list.
func (h *Handler) ListResource() mcp.Resource {
	return mcp.NewResource(
		ListURI,
		"All Plans",
		mcp.WithResourceDescription("Every plan in the plans directory"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleList returns every plan as JSON.
func (h *Handler) HandleList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	all, err := h.plans.ListAllPlans()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, all)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
