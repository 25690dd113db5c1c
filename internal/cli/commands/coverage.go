package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/coverage"
)

// CoverageCommand handles the coverage command
type CoverageCommand struct {
	config *config.Config
	merger *coverage.Merger
}

// NewCoverageCommand creates a new CoverageCommand
func NewCoverageCommand(cfg *config.Config, merger *coverage.Merger) *CoverageCommand {
	return &CoverageCommand{
		config: cfg,
		merger: merger,
	}
}

// Execute runs the command
func (cc *CoverageCommand) Execute(cmd *cobra.Command, args []string) error {
	dir := cc.config.GetCoverageDir()
	if len(args) > 0 {
		dir = args[0]
	}

	data := cc.merger.MergeAndExtract(dir)
	if len(data.SourceFiles) == 0 && len(data.TestTraces) == 0 {
		color.Yellow("No coverage artifacts found in %s", dir)
		return nil
	}

	color.Cyan("Source files (%d):", len(data.SourceFiles))
	for _, file := range data.SourceFiles {
		fmt.Printf("  %s\n", file)
	}

	if len(data.InferredBackendFiles) > 0 {
		color.Cyan("\nInferred backend files (%d):", len(data.InferredBackendFiles))
		for _, file := range data.InferredBackendFiles {
			fmt.Printf("  %s\n", file)
		}
	}

	if len(data.TestTraces) > 0 {
		titles := make([]string, 0, len(data.TestTraces))
		for title := range data.TestTraces {
			titles = append(titles, title)
		}
		sort.Strings(titles)

		color.Cyan("\nPer-test traces (%d):", len(titles))
		for _, title := range titles {
			trace := data.TestTraces[title]
			color.Yellow("  %s", title)
			for _, req := range trace.APIRequests {
				fmt.Printf("    %s %s → %d\n", req.Method, req.URL, req.Status)
			}
			for _, url := range trace.PageURLs {
				fmt.Printf("    page: %s\n", url)
			}
		}
	}

	return nil
}
