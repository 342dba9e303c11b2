// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/HendryAvila/planmcp/internal/config"
	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/HendryAvila/planmcp/internal/journal"
	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/HendryAvila/planmcp/internal/prompts"
	"github.com/HendryAvila/planmcp/internal/resources"
	"github.com/HendryAvila/planmcp/internal/tools"
	"github.com/HendryAvila/planmcp/internal/watcher"
	"github.com/mark3labs/mcp-go/server"
)

// Name is the MCP server name reported to clients.
const Name = "planmcp"

// Version is set at build time via ldflags.
var Version = "dev"

// App holds the shared plan components. The MCP server and the terminal
// UI are both built on top of one App.
type App struct {
	Repo    *plans.Repository
	Journal *journal.Store // nil when the journal is disabled or failed to open
	Watcher *watcher.Watcher

	Files      filestore.Store
	PromptsDir string
}

// NewApp creates the repository, the optional journal and a started
// watcher for cfg.
//
// With suppressOwnWrites set, every repository write is announced to the
// watcher first, so this process does not reload on its own writes.
func NewApp(cfg config.Config, suppressOwnWrites bool) (*App, error) {
	files := filestore.NewOSStore()
	repo := plans.NewRepository(files, cfg.PlansDir)

	// The journal is an independent subsystem: if it fails to initialize,
	// plan tools keep working without history.
	observers := []plans.Observer{tools.LogObserver{}}
	var store *journal.Store
	if cfg.JournalEnabled {
		s, err := journal.New(journal.Config{DataDir: cfg.DataDir})
		if err != nil {
			log.Printf("WARNING: journal disabled: %v", err)
		} else {
			store = s
			observers = append(observers, s)
		}
	}
	repo.SetObserver(tools.NewObservers(observers...))

	w := watcher.New(cfg.PlansDir, repo,
		watcher.WithPollInterval(cfg.PollInterval),
		watcher.WithSuppressDelay(cfg.SuppressDelay),
	)
	if suppressOwnWrites {
		repo.SetWriteHook(w.ExpectWrite)
	}

	if err := w.Start(); err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("starting plan watcher: %w", err)
	}

	return &App{Repo: repo, Journal: store, Watcher: w, Files: files, PromptsDir: cfg.PromptsDir}, nil
}

// Close stops the watcher and closes the journal. It is safe to call more
// than once.
func (a *App) Close() {
	if err := a.Watcher.Stop(); err != nil {
		log.Printf("WARNING: watcher stop: %v", err)
	}
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			log.Printf("WARNING: journal close: %v", err)
		}
		a.Journal = nil
	}
}

// New creates an App for cfg and an MCP server with all tools, prompts
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function stops forwarding watcher updates, stops
// the watcher and closes the journal. It must be called on shutdown
// (typically via defer) and is always non-nil.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	app, err := NewApp(cfg, false)
	if err != nil {
		return nil, noop, err
	}

	s := NewMCPServer(app)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardUpdates(ctx, app.Watcher, s)
	}()

	cleanup := func() {
		cancel()
		<-done
		app.Close()
	}
	return s, cleanup, nil
}

// NewMCPServer registers every tool, prompt and resource backed by app.
func NewMCPServer(app *App) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register plan tools ---

	createPlan := tools.NewCreatePlanTool(app.Repo)
	s.AddTool(createPlan.Definition(), createPlan.Handle)

	currentPlan := tools.NewGetCurrentPlanTool(app.Repo)
	s.AddTool(currentPlan.Definition(), currentPlan.Handle)

	updateTask := tools.NewUpdateTaskStatusTool(app.Repo)
	s.AddTool(updateTask.Definition(), updateTask.Handle)

	listPlans := tools.NewListPlansTool(app.Repo)
	s.AddTool(listPlans.Definition(), listPlans.Handle)

	setActive := tools.NewSetActivePlanTool(app.Repo)
	s.AddTool(setActive.Definition(), setActive.Handle)

	deletePlan := tools.NewDeletePlanTool(app.Repo)
	s.AddTool(deletePlan.Definition(), deletePlan.Handle)

	// plan_history needs the journal; without it the tool is not offered.
	if app.Journal != nil {
		history := tools.NewPlanHistoryTool(app.Journal)
		s.AddTool(history.Definition(), history.Handle)
	}

	// --- Register utility tools ---

	hello := tools.NewHelloTool(Name)
	s.AddTool(hello.Definition(), hello.Handle)

	echo := tools.NewEchoTool()
	s.AddTool(echo.Definition(), echo.Handle)

	getTime := tools.NewGetTimeTool()
	s.AddTool(getTime.Definition(), getTime.Handle)

	calculator := tools.NewCalculatorTool()
	s.AddTool(calculator.Definition(), calculator.Handle)

	systemInfo := tools.NewSystemInfoTool()
	s.AddTool(systemInfo.Definition(), systemInfo.Handle)

	// --- Register context documents ---

	if app.PromptsDir != "" {
		contextDocs := tools.NewContextTool(app.Files, app.PromptsDir)
		s.AddTool(contextDocs.Definition(), contextDocs.Handle)
	}

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(app.Watcher, app.Repo)
	s.AddResource(resourceHandler.ActiveResource(), resourceHandler.HandleActive)
	s.AddResource(resourceHandler.ListResource(), resourceHandler.HandleList)

	return s
}

// notifier is the slice of *server.MCPServer used to push resource updates.
type notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// forwardUpdates tells connected clients that plan://active changed each
// time the watcher reloads, until ctx is done.
func forwardUpdates(ctx context.Context, w *watcher.Watcher, n notifier) {
	updates, unsubscribe := w.Subscribe()
	defer unsubscribe()

	// The first state is the one loaded at startup; clients read it on demand.
	var last uint64
	select {
	case st := <-updates:
		last = st.Reloads
	case <-ctx.Done():
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if st.Reloads == last {
				continue
			}
			last = st.Reloads
			n.SendNotificationToAllClients("notifications/resources/updated", map[string]any{
				"uri": resources.ActiveURI,
			})
			n.SendNotificationToAllClients("notifications/resources/updated", map[string]any{
				"uri": resources.ListURI,
			})
		}
	}
}

// noop is the cleanup returned when New fails.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the plan tools.
func serverInstructions() string {
	return `You have access to planmcp, a task-plan server. Plans are markdown files
in the project's plans directory; exactly one plan at a time is active.

## WHEN TO USE PLANS

Create a plan when the user asks for work with three or more distinct
steps, or asks you to plan before coding. Skip plans for one-off
questions and single edits.

## WORKFLOW

1. Call get_current_plan first. If a plan is active and matches the work,
   continue it instead of creating a new one.
2. Otherwise call create_plan with a name, a description of what done
   looks like, and task titles in execution order. Task IDs are
   task-1, task-2, ... in that order.
3. Before starting a task, call update_task_status(status="in_progress").
   Keep at most one task in progress.
4. When a task is done call update_task_status(status="completed"). Use
   "cancelled" for tasks that are no longer needed. When every task is
   completed the plan is marked Completed.
5. Use list_plans and set_active_plan to switch between plans, and
   plan_history to see what changed and when.

## NOTES

- The user may edit plan files by hand or from the terminal UI. Always
  re-read the plan with get_current_plan instead of relying on memory.
- delete_plan requires confirm=true. Ask the user before deleting.
- The plan://active resource always holds the active plan as JSON.

## CONTEXT DOCUMENTS

get_context returns a markdown document from the project's prompts
directory (default data-domain-layer). Call it before generating code
for a new service and pass service_name so the 'x' placeholder in the
rules is resolved.

## UTILITY TOOLS

hello, echo, get_time, calculator and system_info are simple helpers for
connection checks and quick lookups.`
}
