package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pwtp/internal/config"
	"pwtp/internal/definition"
	"pwtp/internal/domain"
)

// Formatter formats and displays run output
type Formatter struct {
	config *config.Config
	parser *definition.Parser
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, parser *definition.Parser) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
	}
}

// PrintMetaStats reads the last run output from the JSON results file and
// displays it.
func (f *Formatter) PrintMetaStats() error {
	data, err := os.ReadFile(f.config.GetOutputPath())
	if err != nil {
		return fmt.Errorf("read results file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return fmt.Errorf("parse results: %w", err)
	}
	f.PrintSummary(&output)
	return nil
}

// PrintSummary renders the per-test result table, a verdict line, and the
// blast radius of the run when coverage was collected.
func (f *Formatter) PrintSummary(output *domain.RunOutput) {
	meta := output.Meta

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	title := fmt.Sprintf("Run Results (%s)", meta.Duration)
	if meta.NodeID != "" {
		title = fmt.Sprintf("Run Results — node %s (%s)", meta.NodeID, meta.Duration)
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Test", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, r := range output.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		t.AppendRow(table.Row{i + 1, r.Test.Title, status, firstLine(r.Error)})
	}
	t.AppendFooter(table.Row{"", "TOTAL", fmt.Sprintf("%d/%d", meta.PassedTests, meta.TotalTests), ""})

	if meta.FailedTests == 0 {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	t.Render()

	fmt.Println()
	switch {
	case meta.TimedOut:
		color.Red("✗ Run timed out after %s", meta.Duration)
	case meta.FailedTests == 0:
		color.Green("✓ All %d test(s) passed", meta.TotalTests)
	default:
		color.Red("✗ %d of %d test(s) failed", meta.FailedTests, meta.TotalTests)
	}

	f.printBlastRadius(output)
}

// printBlastRadius shows the source files the run touched and the backend
// files inferred from observed API traffic. All results of a run share one
// merged coverage document, so the first one that has it is enough.
func (f *Formatter) printBlastRadius(output *domain.RunOutput) {
	var cov *domain.CoverageData
	for _, r := range output.Results {
		if r.Coverage != nil {
			cov = r.Coverage
			break
		}
	}
	if cov == nil || (len(cov.SourceFiles) == 0 && len(cov.InferredBackendFiles) == 0) {
		return
	}

	fmt.Println()
	color.Cyan("Blast radius:")
	for _, file := range cov.SourceFiles {
		fmt.Printf("  %s\n", file)
	}
	if len(cov.InferredBackendFiles) > 0 {
		color.Cyan("Inferred backend files:")
		for _, file := range cov.InferredBackendFiles {
			fmt.Printf("  %s %s\n", color.YellowString("?"), file)
		}
	}
}

// normalizedPathForKey returns a path key for matching against the failed
// set from the last run (same logic as the commands package).
func normalizedPathForKey(projectPath, path string) string {
	p := path
	if projectPath != "" {
		if rel, err := filepath.Rel(projectPath, path); err == nil && rel != ".." && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return strings.ToLower(filepath.ToSlash(p))
}

// PrintSpecList prints the discovered spec files, optionally expanded into
// their features and tests. failedPaths is optional; files in this set are
// marked with [F] in red (from last run).
func (f *Formatter) PrintSpecList(specs []string, showTests bool, failedPaths map[string]struct{}) {
	color.Green("Found %d spec file(s):\n", len(specs))

	for i, spec := range specs {
		relPath, err := filepath.Rel(f.config.ProjectPath, spec)
		if err != nil {
			relPath = spec
		}

		failMarker := ""
		if len(failedPaths) > 0 {
			if _, ok := failedPaths[normalizedPathForKey(f.config.ProjectPath, spec)]; ok {
				failMarker = " " + color.RedString("[F]")
			}
		}

		isLastFile := i == len(specs)-1
		if isLastFile {
			color.Cyan("└── %s%s", relPath, failMarker)
		} else {
			color.Cyan("├── %s%s", relPath, failMarker)
		}

		if !showTests {
			continue
		}

		filePrefix := "│   "
		if isLastFile {
			filePrefix = "    "
		}

		features := f.parser.ParseFile(spec, "").Features
		if len(features) == 0 {
			fmt.Printf("%s└── %s\n", filePrefix, color.RedString("(no tests found)"))
			continue
		}
		for j, feature := range features {
			isLastFeature := j == len(features)-1
			connector := "├── "
			childPrefix := filePrefix + "│   "
			if isLastFeature {
				connector = "└── "
				childPrefix = filePrefix + "    "
			}
			fmt.Printf("%s%s%s\n", filePrefix, connector, color.YellowString(feature.Description))
			for k, test := range feature.Tests {
				caseConnector := "├── "
				if k == len(feature.Tests)-1 {
					caseConnector = "└── "
				}
				fmt.Printf("%s%s%s\n", childPrefix, caseConnector, test.Title)
			}
		}

		if i < len(specs)-1 {
			fmt.Println()
		}
	}
}

// firstLine trims a (possibly multiline) excerpt down to its first line
// for the table view; the viewer shows the rest.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
