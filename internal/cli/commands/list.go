package commands

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/discovery"
	"pwtp/internal/storage"
	"pwtp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	dir := lc.config.GetSpecPath()
	if len(args) > 0 {
		dir = args[0]
	}

	specs, err := lc.scanner.Scan(dir)
	if err != nil {
		return err
	}
	specs = lc.filter.FilterByName(specs, lc.config.Flags.NameFilter)
	if len(specs) == 0 {
		color.Yellow("No spec files found")
		return nil
	}

	lc.formatter.PrintSpecList(specs, lc.config.Flags.ShowTests, lc.failedFromLastRun())
	return nil
}

// failedFromLastRun marks spec files that failed in the last persisted
// run. A missing results file just means no marks.
func (lc *ListCommand) failedFromLastRun() map[string]struct{} {
	output, err := lc.storage.Load()
	if err != nil || output.Meta.FailedTests == 0 {
		return nil
	}
	key := normalizedPathKey(lc.config.ProjectPath, output.Meta.SpecFile)
	if key == "" {
		return nil
	}
	return map[string]struct{}{key: {}}
}

// normalizedPathKey mirrors the formatter's path normalization.
func normalizedPathKey(projectPath, path string) string {
	p := path
	if projectPath != "" {
		if rel, err := filepath.Rel(projectPath, path); err == nil && rel != ".." && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return strings.ToLower(filepath.ToSlash(p))
}
