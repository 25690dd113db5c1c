package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pwtp/internal/cli"
	"pwtp/internal/cli/commands"
	"pwtp/internal/config"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "pwtp",
		Short:   "Playwright test pipeline",
		Long:    `Verification pipeline for generated Playwright spec files: recovers test definitions from source, executes the runner, correlates reported outcomes back to the definitions, and extracts the coverage blast radius.`,
		Version: version,
	}

	// Config from defaults plus the optional project pwtp.yaml; flag
	// overrides are applied per command once cobra has parsed them.
	cfg := config.New()
	_ = cfg.MergeFile(filepath.Join(cfg.ProjectPath, config.DefaultConfigFile))

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
