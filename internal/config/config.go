package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	SpecPath    string `yaml:"spec_path"`

	// Runner settings
	RunnerBin    string `yaml:"runner_bin"`
	RunnerConfig string `yaml:"runner_config"`
	Reporters    string `yaml:"reporters"`
	TimeoutMs    int    `yaml:"timeout_ms"`

	// Coverage settings
	CoverageDir string   `yaml:"coverage_dir"`
	SourceRoots []string `yaml:"source_roots"`

	// Output settings
	OutputJSONFile string `yaml:"output_file"`
	OutputJSONDir  string `yaml:"output_dir"`

	// Provisioning settings
	Workers        int    `yaml:"workers"`
	DatabasePrefix string `yaml:"database_prefix"`
	SeedCommand    string `yaml:"seed_command"`

	// Paths to ignore when scanning for spec files
	PathsToIgnore []string `yaml:"paths_to_ignore"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	SpecPath    string
	NameFilter  string
	NodeID      string
	CoverageDir string
	TimeoutMs   int
	Workers     int
	NoCoverage  bool
	OpenResults bool
	Generated   bool
	ShowTests   bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SpecPath:       DefaultSpecPath,
		RunnerBin:      DefaultRunnerBin,
		RunnerConfig:   DefaultRunnerConfig,
		Reporters:      DefaultReporters,
		TimeoutMs:      DefaultTimeoutMs,
		CoverageDir:    DefaultCoverageDir,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Workers:        DefaultWorkers,
		SeedCommand:    DefaultSeedCommand,
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	cfg.SourceRoots = make([]string, len(DefaultSourceRoots))
	copy(cfg.SourceRoots, DefaultSourceRoots)
	return cfg
}

// Load creates a config, merges the project config file if one exists,
// and applies flag overrides.
func Load(flags Flags) *Config {
	cfg := New()
	_ = cfg.MergeFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile))
	cfg.Apply(flags)
	return cfg
}

// Apply stores flags and applies their overrides.
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.TimeoutMs > 0 {
		c.TimeoutMs = flags.TimeoutMs
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.CoverageDir != "" {
		c.CoverageDir = flags.CoverageDir
	}
}

// GetSpecPath returns the spec path, using the flag if provided.
func (c *Config) GetSpecPath() string {
	if c.Flags.SpecPath != "" {
		if filepath.IsAbs(c.Flags.SpecPath) {
			return c.Flags.SpecPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.SpecPath)
	}
	return filepath.Join(c.ProjectPath, c.SpecPath)
}

// GetOutputPath returns the full path to the output JSON file (under the
// project so run and results use the same file). Resolves to an absolute
// path so both commands read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetCoverageDir returns the directory the runner workers write coverage
// artifacts into.
func (c *Config) GetCoverageDir() string {
	if filepath.IsAbs(c.CoverageDir) {
		return c.CoverageDir
	}
	return filepath.Join(c.ProjectPath, c.CoverageDir)
}

// Timeout returns the run timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RunnerCommand builds the single shell command for one spec file: runner
// binary, relative test path, explicit config, and the dual reporter
// selection so the human-readable and JSON streams come from one
// invocation.
func (c *Config) RunnerCommand(specFile string) string {
	rel := specFile
	if r, err := filepath.Rel(c.ProjectPath, specFile); err == nil && !filepath.IsAbs(r) {
		rel = r
	}
	return fmt.Sprintf("%s test %s --config=%s --reporter=%s",
		c.RunnerBin, rel, c.RunnerConfig, c.Reporters)
}

// GetDatabaseName returns the database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	prefix := c.DatabasePrefix
	if prefix == "" {
		prefix = os.Getenv("DB_DATABASE_PREFIX")
	}
	if prefix == "" {
		prefix = "testing"
	}
	return fmt.Sprintf("%s_%d", prefix, workerID)
}

// ProjectEnv reads the project's .env file and returns its entries as
// KEY=VALUE pairs for the runner process. A missing file is fine; the
// inherited environment is used alone.
func (c *Config) ProjectEnv() []string {
	values, err := godotenv.Read(filepath.Join(c.ProjectPath, ".env"))
	if err != nil {
		return nil
	}
	env := make([]string, 0, len(values))
	for k, v := range values {
		env = append(env, k+"="+v)
	}
	return env
}
