package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	orig := userHomeDir
	userHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { userHomeDir = orig })
	return home
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvPlansDir, EnvPromptsDir, EnvDataDir, EnvPollInterval, EnvSuppressDelay, EnvJournal} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := fakeHome(t)
	project := t.TempDir()

	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PlansDir != filepath.Join(project, ".cursor", "plans") {
		t.Errorf("PlansDir = %s", cfg.PlansDir)
	}
	if cfg.PromptsDir != filepath.Join(project, ".planmcp", "prompts") {
		t.Errorf("PromptsDir = %s", cfg.PromptsDir)
	}
	if cfg.DataDir != filepath.Join(home, ".planmcp") {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %s, want 1s", cfg.PollInterval)
	}
	if cfg.SuppressDelay != 100*time.Millisecond {
		t.Errorf("SuppressDelay = %s, want 100ms", cfg.SuppressDelay)
	}
	if !cfg.JournalEnabled {
		t.Error("journal should be enabled by default")
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	home := fakeHome(t)
	project := t.TempDir()
	writeConfig(t, project, "plans_dir: docs/plans\nprompts_dir: docs/rules\ndata_dir: ~/state\npoll_interval: 250ms\njournal: false\n")

	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlansDir != filepath.Join(project, "docs", "plans") {
		t.Errorf("PlansDir = %s", cfg.PlansDir)
	}
	if cfg.PromptsDir != filepath.Join(project, "docs", "rules") {
		t.Errorf("PromptsDir = %s", cfg.PromptsDir)
	}
	if cfg.DataDir != filepath.Join(home, "state") {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.SuppressDelay != 100*time.Millisecond {
		t.Errorf("absent key should keep default, got %s", cfg.SuppressDelay)
	}
	if cfg.JournalEnabled {
		t.Error("journal should be disabled by yaml")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	home := fakeHome(t)
	project := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	writeConfig(t, project, "plans_dir: docs/plans\nsuppress_delay: 1s\n")

	t.Setenv(EnvPlansDir, abs)
	t.Setenv(EnvSuppressDelay, "50ms")
	t.Setenv(EnvPromptsDir, "~/rules")
	t.Setenv(EnvJournal, "off")

	_, err := Load(project)
	if err == nil || !strings.Contains(err.Error(), EnvJournal) {
		t.Fatalf("expected %s parse error, got %v", EnvJournal, err)
	}

	t.Setenv(EnvJournal, "false")
	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlansDir != abs {
		t.Errorf("PlansDir = %s, want %s", cfg.PlansDir, abs)
	}
	if cfg.SuppressDelay != 50*time.Millisecond {
		t.Errorf("SuppressDelay = %s", cfg.SuppressDelay)
	}
	if cfg.PromptsDir != filepath.Join(home, "rules") {
		t.Errorf("PromptsDir = %s", cfg.PromptsDir)
	}
	if cfg.JournalEnabled {
		t.Error("journal should be disabled by env")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	fakeHome(t)
	project := t.TempDir()

	// godotenv never overrides variables that are already set, so unset
	// the one under test; t.Setenv above restores it afterwards.
	os.Unsetenv(EnvPollInterval)
	t.Cleanup(func() { os.Unsetenv(EnvPollInterval) })

	if err := os.WriteFile(filepath.Join(project, ".env"), []byte(EnvPollInterval+"=3s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %s, want 3s", cfg.PollInterval)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "plans_dir: [unterminated\n"},
		{name: "bad yaml duration", yaml: "poll_interval: soon\n"},
		{name: "zero poll interval", yaml: "poll_interval: 0s\n"},
		{name: "negative suppress", yaml: "suppress_delay: -1s\n"},
		{name: "bad env duration", env: map[string]string{EnvPollInterval: "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			fakeHome(t)
			project := t.TempDir()
			if tt.yaml != "" {
				writeConfig(t, project, tt.yaml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(project); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{PlansDir: "p", DataDir: "d", PollInterval: time.Second, JournalEnabled: true}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noData := base
	noData.DataDir = ""
	if err := noData.Validate(); err == nil {
		t.Error("empty data dir with journal enabled should fail")
	}
	noData.JournalEnabled = false
	if err := noData.Validate(); err != nil {
		t.Errorf("empty data dir without journal should pass: %v", err)
	}

	noPlans := base
	noPlans.PlansDir = " "
	if err := noPlans.Validate(); err == nil {
		t.Error("blank plans dir should fail")
	}
}

func TestWriteExample(t *testing.T) {
	clearEnv(t)
	fakeHome(t)
	project := t.TempDir()

	path, err := WriteExample(project)
	if err != nil {
		t.Fatalf("WriteExample: %v", err)
	}
	if path != filepath.Join(project, ConfigDir, ConfigFile) {
		t.Errorf("path = %s", path)
	}

	// The example must load cleanly and reproduce the defaults.
	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	if cfg != Default(project) {
		t.Errorf("example config = %+v, want defaults %+v", cfg, Default(project))
	}

	// A second call leaves an edited file alone.
	if err := os.WriteFile(path, []byte("journal: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteExample(project); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "journal: false\n" {
		t.Errorf("existing config overwritten: %q", data)
	}
}
