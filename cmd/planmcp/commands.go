package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HendryAvila/planmcp/internal/config"
	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/HendryAvila/planmcp/internal/logging"
	"github.com/HendryAvila/planmcp/internal/plans"
	planserver "github.com/HendryAvila/planmcp/internal/server"
	"github.com/HendryAvila/planmcp/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command and override the config file
// and environment.
type globalFlags struct {
	project       string
	plansDir      string
	promptsDir    string
	dataDir       string
	pollInterval  time.Duration
	suppressDelay time.Duration
	noJournal     bool
}

func newRootCmd() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:           "planmcp",
		Short:         "Task-plan MCP server backed by markdown files",
		Long:          `planmcp keeps task plans as markdown files in your project and serves them to AI coding tools over MCP.`,
		Version:       planserver.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.project, "project", "", "project directory (default: current directory)")
	pf.StringVar(&gf.plansDir, "plans-dir", "", "plans directory, relative to the project")
	pf.StringVar(&gf.promptsDir, "prompts-dir", "", "directory of context documents served by get_context")
	pf.StringVar(&gf.dataDir, "data-dir", "", "directory for the journal and logs")
	pf.DurationVar(&gf.pollInterval, "poll-interval", 0, "how often the watcher re-checks its directory watch")
	pf.DurationVar(&gf.suppressDelay, "suppress-delay", 0, "how long a file stays muted after a write from the UI")
	pf.BoolVar(&gf.noJournal, "no-journal", false, "disable the SQLite plan history")

	root.AddCommand(
		newServeCmd(&gf),
		newUICmd(&gf),
		newPlansCmd(&gf),
		newInitCmd(&gf),
		newVersionCmd(),
	)
	return root
}

// projectDir returns the absolute project directory.
func (gf *globalFlags) projectDir() (string, error) {
	if gf.project != "" {
		return config.ResolvePath(mustGetwd(), gf.project), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

// load resolves the configuration and applies flags the user set.
func (gf *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	project, err := gf.projectDir()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(project)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("plans-dir") {
		cfg.PlansDir = config.ResolvePath(project, gf.plansDir)
	}
	if flags.Changed("prompts-dir") {
		cfg.PromptsDir = config.ResolvePath(project, gf.promptsDir)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = config.ResolvePath(project, gf.dataDir)
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = gf.pollInterval
	}
	if flags.Changed("suppress-delay") {
		cfg.SuppressDelay = gf.suppressDelay
	}
	if gf.noJournal {
		cfg.JournalEnabled = false
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// --- serve ---

func newServeCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.load(cmd)
			if err != nil {
				return err
			}
			// stdout carries the MCP protocol; logs go to stderr.
			log.SetOutput(os.Stderr)
			log.SetPrefix("planmcp: ")
			return runServe(cfg)
		},
	}
}

func runServe(cfg config.Config) error {
	s, cleanup, err := planserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	log.Printf("serving plans from %s", cfg.PlansDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.ServeStdio(s) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// --- ui ---

func newUICmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Show the active plan in the terminal and follow changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.load(cmd)
			if err != nil {
				return err
			}
			return runUI(cfg)
		},
	}
}

func runUI(cfg config.Config) error {
	// The UI owns the screen, so logs go to a file.
	logger, err := logging.New(cfg.DataDir)
	if err != nil {
		return err
	}
	defer logger.Close()
	log.SetOutput(logger)
	log.SetFlags(0)
	defer log.SetOutput(os.Stderr)

	app, err := planserver.NewApp(cfg, true)
	if err != nil {
		return err
	}
	defer app.Close()

	model := tui.New(app.Watcher, app.Repo, cfg.PlansDir)
	defer model.Close()

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

// --- plans ---

func newPlansCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List every plan in the plans directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.load(cmd)
			if err != nil {
				return err
			}
			log.SetOutput(cmd.ErrOrStderr())
			repo := plans.NewRepository(filestore.NewOSStore(), cfg.PlansDir)
			return printPlans(cmd.OutOrStdout(), repo, time.Now())
		},
	}
}

// printPlans writes one line per plan, the active one starred.
func printPlans(w io.Writer, lister interface{ ListAllPlans() ([]plans.Plan, error) }, now time.Time) error {
	all, err := lister.ListAllPlans()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "No plans found.")
		return nil
	}
	for _, p := range all {
		marker := " "
		if p.IsActive {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-16s %-30s %3d/%-3d %-12s %s\n",
			marker, p.ID, p.Name, p.CompletedCount(), len(p.Tasks), p.Status,
			humanize.RelTime(p.CreatedAt, now, "ago", "from now"))
	}
	return nil
}

// --- init ---

func newInitCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example .planmcp/config.yaml and create the plans and prompts directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := gf.projectDir()
			if err != nil {
				return err
			}
			path, err := config.WriteExample(project)
			if err != nil {
				return err
			}
			cfg, err := gf.load(cmd)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.PlansDir, 0o755); err != nil {
				return fmt.Errorf("creating plans directory: %w", err)
			}
			if err := os.MkdirAll(cfg.PromptsDir, 0o755); err != nil {
				return fmt.Errorf("creating prompts directory: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Config:", path)
			fmt.Fprintln(out, "Plans: ", cfg.PlansDir)
			fmt.Fprintln(out, "Prompts:", cfg.PromptsDir)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Add `planmcp serve` to your MCP client configuration")
			fmt.Fprintln(out, "  2. Run `planmcp ui` in a terminal to follow the active plan")
			fmt.Fprintln(out, "  3. Put context documents (e.g. data-domain-layer.md) in the prompts directory")
			return nil
		},
	}
}

// --- version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planmcp v%s\n", planserver.Version)
		},
	}
}
