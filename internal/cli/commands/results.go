package commands

import (
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/storage"
	"pwtp/internal/ui"
)

// ResultsCommand handles the results command
type ResultsCommand struct {
	config    *config.Config
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    *ui.FailureViewer
}

// NewResultsCommand creates a new ResultsCommand
func NewResultsCommand(cfg *config.Config, st storage.Storage, formatter *ui.Formatter, viewer *ui.FailureViewer) *ResultsCommand {
	return &ResultsCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *ResultsCommand) Execute(cmd *cobra.Command, args []string) error {
	if rc.config.Flags.ShowTests {
		return rc.formatter.PrintMetaStats()
	}

	output, err := rc.storage.Load()
	if err != nil {
		return err
	}
	return rc.viewer.View(output)
}
