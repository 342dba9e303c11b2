package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/planmcp/internal/config"
	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/spf13/cobra"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "planmcp v") {
		t.Errorf("version output = %q", out)
	}
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--project", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.ConfigDir, config.ConfigFile)); err != nil {
		t.Errorf("config file missing: %v", err)
	}
	plansDir := filepath.Join(dir, config.DefaultPlansDir)
	if info, err := os.Stat(plansDir); err != nil || !info.IsDir() {
		t.Errorf("plans dir missing: %v", err)
	}
	if !strings.Contains(out, plansDir) {
		t.Errorf("output should name the plans dir:\n%s", out)
	}
	promptsDir := filepath.Join(dir, config.DefaultPromptsDir)
	if info, err := os.Stat(promptsDir); err != nil || !info.IsDir() {
		t.Errorf("prompts dir missing: %v", err)
	}
}

func TestPlansCmd(t *testing.T) {
	dir := t.TempDir()
	plansDir := filepath.Join(dir, "work")

	out, err := execute(t, "plans", "--project", dir, "--plans-dir", "work")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No plans found") {
		t.Errorf("empty output = %q", out)
	}

	repo := plans.NewRepository(filestore.NewOSStore(), plansDir)
	first, err := repo.CreatePlan("First", "", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpdateTaskStatus(first.ID, "task-1", plans.TaskCompleted); err != nil {
		t.Fatal(err)
	}

	out, err = execute(t, "plans", "--project", dir, "--plans-dir", "work")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* "+first.ID) || !strings.Contains(out, "1/2") {
		t.Errorf("plans output:\n%s", out)
	}
}

func TestPrintPlans_RelativeTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	lister := staticLister{{
		ID: "plan-1", Name: "Old", Status: plans.PlanStatusCompleted,
		CreatedAt: now.Add(-3 * time.Hour),
		Tasks:     []plans.Task{{ID: "task-1", Status: plans.TaskCompleted}},
	}}

	var out bytes.Buffer
	if err := printPlans(&out, lister, now); err != nil {
		t.Fatal(err)
	}
	line := out.String()
	if !strings.HasPrefix(line, "  plan-1") {
		t.Errorf("inactive plan should not be starred: %q", line)
	}
	if !strings.Contains(line, "3 hours ago") {
		t.Errorf("missing relative time: %q", line)
	}
}

type staticLister []plans.Plan

func (s staticLister) ListAllPlans() ([]plans.Plan, error) { return s, nil }

func TestLoad_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, config.ConfigDir), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "plans_dir: from-yaml\npoll_interval: 5s\njournal: true\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigDir, config.ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var got config.Config
	root := newRootCmd()
	probe := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			gf := globalFlagsFrom(t, cmd)
			var err error
			got, err = gf.load(cmd)
			return err
		},
	}
	root.AddCommand(probe)
	root.SetArgs([]string{"probe", "--project", dir, "--poll-interval", "250ms", "--prompts-dir", "rules", "--no-journal"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	if got.PlansDir != filepath.Join(dir, "from-yaml") {
		t.Errorf("PlansDir = %q, want value from YAML", got.PlansDir)
	}
	if got.PromptsDir != filepath.Join(dir, "rules") {
		t.Errorf("PromptsDir = %q, want flag value", got.PromptsDir)
	}
	if got.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %s, want flag value", got.PollInterval)
	}
	if got.JournalEnabled {
		t.Error("--no-journal should disable the journal")
	}
}

func TestLoad_RejectsInvalidFlag(t *testing.T) {
	_, err := execute(t, "plans", "--project", t.TempDir(), "--poll-interval=-1s")
	if err == nil || !strings.Contains(err.Error(), "poll_interval") {
		t.Errorf("err = %v, want poll_interval validation error", err)
	}
}

// globalFlagsFrom rebuilds globalFlags from a parsed command.
func globalFlagsFrom(t *testing.T, cmd *cobra.Command) *globalFlags {
	t.Helper()
	f := cmd.Flags()
	gf := &globalFlags{}
	var err error
	if gf.project, err = f.GetString("project"); err != nil {
		t.Fatal(err)
	}
	gf.plansDir, _ = f.GetString("plans-dir")
	gf.promptsDir, _ = f.GetString("prompts-dir")
	gf.dataDir, _ = f.GetString("data-dir")
	gf.pollInterval, _ = f.GetDuration("poll-interval")
	gf.suppressDelay, _ = f.GetDuration("suppress-delay")
	gf.noJournal, _ = f.GetBool("no-journal")
	return gf
}
