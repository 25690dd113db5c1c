package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/discovery"
	"pwtp/internal/domain"
	"pwtp/internal/pipeline"
	"pwtp/internal/storage"
	"pwtp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	pipeline  *pipeline.Pipeline
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    *ui.FailureViewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	pipe *pipeline.Pipeline,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer *ui.FailureViewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		pipeline:  pipe,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	target, specs, err := rc.resolveSpecs(args)
	if err != nil {
		return err
	}
	specs = rc.filter.FilterByName(specs, rc.config.Flags.NameFilter)
	if len(specs) == 0 {
		color.Yellow("No spec files to run")
		return nil
	}

	// Ctrl+C aborts the in-flight runner gracefully; partial results are
	// still persisted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	node := domain.Node{ID: rc.config.Flags.NodeID}
	bar := ui.NewProgressBar(len(specs))

	var results []domain.TestResult
	var timedOut bool
	var duration time.Duration
	passedFiles, failedFiles := 0, 0

	for _, spec := range specs {
		summary, err := rc.pipeline.Run(ctx, node, spec)
		if err != nil {
			return err
		}

		results = append(results, summary.Results...)
		timedOut = timedOut || summary.TimedOut
		duration += summary.Duration

		if fileFailed(summary.Results) {
			failedFiles++
		} else {
			passedFiles++
		}
		bar.Update(passedFiles, failedFiles)

		if ctx.Err() != nil {
			break
		}
	}
	bar.Finish()

	output, err := rc.storage.Save(node, target, results, timedOut, duration)
	if err != nil {
		return fmt.Errorf("save run results: %w", err)
	}

	rc.formatter.PrintSummary(output)

	if rc.config.Flags.OpenResults && output.Meta.FailedTests > 0 {
		return rc.viewer.View(output)
	}
	return nil
}

// resolveSpecs turns the optional positional argument into the list of
// spec files to run: a single file, a directory to scan, or the
// configured spec path.
func (rc *RunCommand) resolveSpecs(args []string) (string, []string, error) {
	target := rc.config.GetSpecPath()
	if len(args) > 0 {
		target = args[0]
	}

	info, err := os.Stat(target)
	if err != nil {
		return target, nil, fmt.Errorf("resolve spec path %s: %w", target, err)
	}
	if !info.IsDir() {
		return target, []string{target}, nil
	}

	specs, err := rc.scanner.Scan(target)
	if err != nil {
		return target, nil, err
	}
	return target, specs, nil
}

func fileFailed(results []domain.TestResult) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
