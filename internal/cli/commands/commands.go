package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pwtp/internal/cli"
	"pwtp/internal/config"
	"pwtp/internal/coverage"
	"pwtp/internal/definition"
	"pwtp/internal/discovery"
	"pwtp/internal/envprep"
	"pwtp/internal/execution"
	"pwtp/internal/pipeline"
	"pwtp/internal/storage"
	"pwtp/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run       *RunCommand
	Parse     *ParseCommand
	Coverage  *CoverageCommand
	Results   *ResultsCommand
	Provision *ProvisionCommand
	List      *ListCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	parser := definition.NewParser()
	// The runner's own progress lines are folded into the captured
	// transcript; the bar on stderr is the live surface.
	executor := execution.NewExecutor(io.Discard)
	decoder := coverage.NewPathDecoder(cfg.SourceRoots)
	merger := coverage.NewMerger(decoder, logger)
	pipe := pipeline.New(cfg, executor, merger, logger)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, parser)
	viewer := ui.NewFailureViewer(jsonStorage)
	dbManager := envprep.NewDatabaseManager(cfg)
	seeder := envprep.NewSeeder(cfg, dbManager)

	return &Commands{
		Run:       NewRunCommand(cfg, scanner, filter, pipe, jsonStorage, formatter, viewer),
		Parse:     NewParseCommand(cfg, parser),
		Coverage:  NewCoverageCommand(cfg, merger),
		Results:   NewResultsCommand(cfg, jsonStorage, formatter, viewer),
		Provision: NewProvisionCommand(cfg, seeder),
		List:      NewListCommand(cfg, scanner, filter, formatter, jsonStorage),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Apply(flags.ToConfigFlags())
		return nil
	}

	runCmd := &cobra.Command{
		Use:     "run [spec-file|dir]",
		Short:   "Run generated spec files through the verification pipeline",
		Long:    "Parse test definitions, execute the runner, correlate results and attach coverage",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.NodeID, "node", "n", "", "Node ID the spec file belongs to")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter spec files by name pattern (supports wildcards, e.g. '*checkout*')")
	runCmd.Flags().IntVarP(&flags.TimeoutMs, "timeout", "t", 0, "Per-run timeout in milliseconds")
	runCmd.Flags().StringVar(&flags.CoverageDir, "coverage-dir", "", "Directory the runner workers write coverage shards into")
	runCmd.Flags().BoolVar(&flags.NoCoverage, "no-coverage", false, "Skip coverage merging and blast radius extraction")
	runCmd.Flags().BoolVar(&flags.OpenResults, "results", false, "Open the failure viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	parseCmd := &cobra.Command{
		Use:     "parse <spec-file>",
		Short:   "Print the test definitions recovered from a spec file",
		Long:    "Parse a generated spec file and print its features and tests as JSON",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Parse.Execute,
		PreRunE: applyFlags,
	}
	parseCmd.Flags().StringVarP(&flags.NodeID, "node", "n", "", "Node ID to stamp onto parsed features")
	parseCmd.Flags().BoolVar(&flags.Generated, "generated-code", false, "Print the preserved implementation code instead of definitions")
	rootCmd.AddCommand(parseCmd)

	coverageCmd := &cobra.Command{
		Use:     "coverage [dir]",
		Short:   "Merge coverage shards and print the blast radius",
		Long:    "Merge per-worker coverage artifacts and print decoded source files, inferred backend files and per-test traces",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Coverage.Execute,
		PreRunE: applyFlags,
	}
	rootCmd.AddCommand(coverageCmd)

	resultsCmd := &cobra.Command{
		Use:     "results",
		Short:   "View the last run's failures interactively",
		Long:    "Display failures from the last persisted run in an interactive viewer",
		RunE:    c.Results.Execute,
		PreRunE: applyFlags,
	}
	resultsCmd.Flags().BoolVar(&flags.ShowTests, "summary", false, "Print the summary table instead of opening the viewer")
	rootCmd.AddCommand(resultsCmd)

	provisionCmd := &cobra.Command{
		Use:     "provision",
		Short:   "Prepare per-worker test databases",
		Long:    "Ensure an isolated MySQL database exists for each runner worker and seed it",
		RunE:    c.Provision.Execute,
		PreRunE: applyFlags,
	}
	provisionCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of worker databases to provision")
	rootCmd.AddCommand(provisionCmd)

	listCmd := &cobra.Command{
		Use:     "list [dir]",
		Short:   "List discovered spec files",
		Long:    "Scan for generated spec files without executing them",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter spec files by name pattern")
	listCmd.Flags().BoolVarP(&flags.ShowTests, "tests", "c", false, "Expand spec files into their features and tests")
	rootCmd.AddCommand(listCmd)
}
