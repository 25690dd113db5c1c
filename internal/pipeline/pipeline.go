// Package pipeline wires the verification flow end to end: parse the
// node's declarative test definitions, execute the external runner,
// correlate its output back to the definitions, and attach coverage to
// the results. Everything downstream of a successful spawn becomes a
// structured result, never a crash, so upstream automation always has
// data to act on.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pwtp/internal/config"
	"pwtp/internal/coverage"
	"pwtp/internal/definition"
	"pwtp/internal/domain"
	"pwtp/internal/execution"
	"pwtp/internal/report"
)

// RunSummary is the outcome of one pipeline invocation.
type RunSummary struct {
	Results  []domain.TestResult
	Features []domain.Feature
	TimedOut bool
	Duration time.Duration
}

// Pipeline runs the parse → execute → correlate → attribute flow for one
// node at a time.
type Pipeline struct {
	cfg        *config.Config
	parser     *definition.Parser
	executor   *execution.Executor
	correlator *report.Correlator
	merger     *coverage.Merger
	logger     *slog.Logger
}

// New creates a Pipeline around the given executor and merger.
func New(cfg *config.Config, executor *execution.Executor, merger *coverage.Merger, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		parser:     definition.NewParser(),
		executor:   executor,
		correlator: report.NewCorrelator(),
		merger:     merger,
		logger:     logger,
	}
}

// Cancel aborts the in-flight runner process, if any.
func (p *Pipeline) Cancel() {
	p.executor.Cancel()
}

// Run executes the spec file for node and returns ordered results. Only a
// caller error (starting a run while one is active) surfaces as an error;
// every other failure mode is converted into results.
func (p *Pipeline) Run(ctx context.Context, node domain.Node, specFile string) (*RunSummary, error) {
	features := p.parser.ParseFile(specFile, node.ID).Features
	summary := &RunSummary{Features: features}

	start := time.Now()
	execResult, err := p.executor.Run(ctx,
		p.cfg.RunnerCommand(specFile),
		p.cfg.ProjectPath,
		p.cfg.Timeout(),
		p.cfg.ProjectEnv(),
	)
	summary.Duration = time.Since(start)

	if err != nil {
		if errors.Is(err, execution.ErrRunInProgress) {
			return nil, err
		}
		// Spawn-level failure: fail every known test with the message so
		// the repair loop sees what went wrong.
		p.logger.Error("runner process failed to start", "spec", specFile, "err", err)
		summary.Results = p.correlator.FailAll(features, err.Error())
		return summary, nil
	}
	summary.TimedOut = execResult.TimedOut

	rep, ok := report.Extract(execResult.Stdout)
	if !ok || (!rep.HasSuites() && len(rep.Errors) > 0) {
		// Either the JSON document could not be isolated, or the runner
		// could not even load the spec file. One synthetic result carries
		// the entire diagnostic transcript.
		summary.Results = []domain.TestResult{
			report.SyntheticFailure(p.transcript(execResult, rep)),
		}
		return summary, nil
	}

	summary.Results = p.correlator.Correlate(rep, features)
	p.attachCoverage(summary.Results)
	return summary, nil
}

// attachCoverage merges whatever coverage artifacts the runner workers
// wrote and attaches the blast radius to every result.
func (p *Pipeline) attachCoverage(results []domain.TestResult) {
	if p.merger == nil || p.cfg.Flags.NoCoverage {
		return
	}
	data := p.merger.MergeAndExtract(p.cfg.GetCoverageDir())
	if len(data.SourceFiles) == 0 && len(data.TestTraces) == 0 {
		return
	}
	for i := range results {
		results[i].Coverage = data
	}
}

// transcript combines everything captured during the run: the progress
// lines, stderr, and any load-time error messages from the partial
// report.
func (p *Pipeline) transcript(execResult *execution.Result, rep *report.Report) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(execResult.Stdout))
	if s := strings.TrimSpace(execResult.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	if rep != nil {
		for _, msg := range rep.LoadErrorMessages() {
			b.WriteString("\n")
			b.WriteString(msg)
		}
	}
	return b.String()
}
