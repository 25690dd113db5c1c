package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/definition"
)

// ParseCommand handles the parse command
type ParseCommand struct {
	config *config.Config
	parser *definition.Parser
}

// NewParseCommand creates a new ParseCommand
func NewParseCommand(cfg *config.Config, parser *definition.Parser) *ParseCommand {
	return &ParseCommand{
		config: cfg,
		parser: parser,
	}
}

// Execute runs the command
func (pc *ParseCommand) Execute(cmd *cobra.Command, args []string) error {
	path := args[0]

	if pc.config.Flags.Generated {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read spec file: %w", err)
		}
		fmt.Print(pc.parser.ExtractGeneratedCode(string(content)))
		return nil
	}

	result := pc.parser.ParseFile(path, pc.config.Flags.NodeID)
	if len(result.Features) == 0 {
		color.Yellow("No test definitions found in %s", path)
		return nil
	}

	data, err := json.MarshalIndent(result.Features, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal definitions: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
