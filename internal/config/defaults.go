package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSpecPath is where generated spec files live, relative to the project
	DefaultSpecPath = "tests"
	// DefaultConfigFile is the optional project config file name
	DefaultConfigFile = "pwtp.yaml"
	// DefaultRunnerBin is the external test runner invocation
	DefaultRunnerBin = "npx playwright"
	// DefaultRunnerConfig is the runner's config file path
	DefaultRunnerConfig = "playwright.config.ts"
	// DefaultReporters selects one human-readable and one JSON reporter
	DefaultReporters = "list,json"
	// DefaultTimeoutMs is the per-run timeout in milliseconds
	DefaultTimeoutMs = 120000
	// DefaultCoverageDir is where runner workers write coverage artifacts
	DefaultCoverageDir = "coverage"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultWorkers is the default number of runner workers to provision for
	DefaultWorkers = 4
	// DefaultSeedCommand resets and seeds one worker database
	DefaultSeedCommand = "npm run db:seed"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning
// for spec files
var DefaultPathsToIgnore = []string{
	"node_modules",
	".next",
	"dist",
	"build",
	"coverage",
	"test-results",
	"playwright-report",
	"storage",
}

// DefaultSourceRoots are the top-level directories user source lives under
var DefaultSourceRoots = []string{
	"frontend",
	"backend",
	"src",
}
