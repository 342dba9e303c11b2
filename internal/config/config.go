// Package config resolves where plans live and how the watcher behaves.
//
// Sources, lowest precedence first:
//  1. built-in defaults
//  2. <project>/.planmcp/config.yaml
//  3. environment (PLANMCP_*), after loading <project>/.env if present
//
// Command-line flags are applied on top by cmd/planmcp.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir holds per-project settings.
	ConfigDir = ".planmcp"
	// ConfigFile is the YAML file inside ConfigDir.
	ConfigFile = "config.yaml"
	// DefaultPlansDir is relative to the project directory.
	DefaultPlansDir = ".cursor/plans"
	// DefaultPromptsDir holds the context documents served by get_context.
	DefaultPromptsDir = ".planmcp/prompts"
)

// Environment variable names.
const (
	EnvPlansDir      = "PLANMCP_PLANS_DIR"
	EnvPromptsDir    = "PLANMCP_PROMPTS_DIR"
	EnvDataDir       = "PLANMCP_DATA_DIR"
	EnvPollInterval  = "PLANMCP_POLL_INTERVAL"
	EnvSuppressDelay = "PLANMCP_SUPPRESS_DELAY"
	EnvJournal       = "PLANMCP_JOURNAL"
)

// Config is the resolved runtime configuration.
type Config struct {
	PlansDir       string
	PromptsDir     string
	DataDir        string
	PollInterval   time.Duration
	SuppressDelay  time.Duration
	JournalEnabled bool
}

// fileConfig mirrors Config with pointer fields so absent keys keep the
// lower-precedence value.
type fileConfig struct {
	PlansDir      *string `yaml:"plans_dir"`
	PromptsDir    *string `yaml:"prompts_dir"`
	DataDir       *string `yaml:"data_dir"`
	PollInterval  *string `yaml:"poll_interval"`
	SuppressDelay *string `yaml:"suppress_delay"`
	Journal       *bool   `yaml:"journal"`
}

// userHomeDir is a package-level var for testability.
var userHomeDir = os.UserHomeDir

// Default returns the built-in configuration for projectDir.
func Default(projectDir string) Config {
	dataDir := filepath.Join(projectDir, ConfigDir)
	if home, err := userHomeDir(); err == nil && home != "" {
		dataDir = filepath.Join(home, ".planmcp")
	}
	return Config{
		PlansDir:       filepath.Join(projectDir, DefaultPlansDir),
		PromptsDir:     filepath.Join(projectDir, DefaultPromptsDir),
		DataDir:        dataDir,
		PollInterval:   time.Second,
		SuppressDelay:  100 * time.Millisecond,
		JournalEnabled: true,
	}
}

// Load resolves the configuration for projectDir. A missing config file or
// .env file is not an error.
func Load(projectDir string) (Config, error) {
	cfg := Default(projectDir)

	if err := cfg.applyFile(filepath.Join(projectDir, ConfigDir, ConfigFile), projectDir); err != nil {
		return Config{}, err
	}

	envPath := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", envPath, err)
		}
	}

	if err := cfg.applyEnv(projectDir); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the watcher and repository cannot use.
func (c Config) Validate() error {
	if strings.TrimSpace(c.PlansDir) == "" {
		return fmt.Errorf("config: plans_dir is empty")
	}
	if c.JournalEnabled && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data_dir is empty but the journal is enabled")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.SuppressDelay < 0 {
		return fmt.Errorf("config: suppress_delay must not be negative, got %s", c.SuppressDelay)
	}
	return nil
}

func (c *Config) applyFile(path, projectDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}

	if fc.PlansDir != nil {
		c.PlansDir = ResolvePath(projectDir, *fc.PlansDir)
	}
	if fc.PromptsDir != nil {
		c.PromptsDir = ResolvePath(projectDir, *fc.PromptsDir)
	}
	if fc.DataDir != nil {
		c.DataDir = ResolvePath(projectDir, *fc.DataDir)
	}
	if fc.PollInterval != nil {
		d, err := time.ParseDuration(*fc.PollInterval)
		if err != nil {
			return fmt.Errorf("config: %s: poll_interval: %w", path, err)
		}
		c.PollInterval = d
	}
	if fc.SuppressDelay != nil {
		d, err := time.ParseDuration(*fc.SuppressDelay)
		if err != nil {
			return fmt.Errorf("config: %s: suppress_delay: %w", path, err)
		}
		c.SuppressDelay = d
	}
	if fc.Journal != nil {
		c.JournalEnabled = *fc.Journal
	}
	return nil
}

func (c *Config) applyEnv(projectDir string) error {
	if v := strings.TrimSpace(os.Getenv(EnvPlansDir)); v != "" {
		c.PlansDir = ResolvePath(projectDir, v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPromptsDir)); v != "" {
		c.PromptsDir = ResolvePath(projectDir, v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = ResolvePath(projectDir, v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPollInterval)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvPollInterval, err)
		}
		c.PollInterval = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvSuppressDelay)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSuppressDelay, err)
		}
		c.SuppressDelay = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournal)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvJournal, err)
		}
		c.JournalEnabled = b
	}
	return nil
}

// ResolvePath expands a leading ~ and anchors relative paths at projectDir.
func ResolvePath(projectDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := userHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(projectDir, p)
	}
	return filepath.Clean(p)
}

// WriteExample writes a commented config.yaml into projectDir if none
// exists and returns its path.
func WriteExample(projectDir string) (string, error) {
	dir := filepath.Join(projectDir, ConfigDir)
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create %s: %w", dir, err)
	}

	example := `# planmcp configuration
plans_dir: ` + DefaultPlansDir + `
prompts_dir: ` + DefaultPromptsDir + `
# data_dir: ~/.planmcp
poll_interval: 1s
suppress_delay: 100ms
journal: true
`
	if err := os.WriteFile(path, []byte(example), 0o644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
