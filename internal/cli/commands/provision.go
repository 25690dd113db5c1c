package commands

import (
	"github.com/spf13/cobra"

	"pwtp/internal/config"
	"pwtp/internal/envprep"
)

// ProvisionCommand handles the provision command
type ProvisionCommand struct {
	config      *config.Config
	provisioner envprep.Provisioner
}

// NewProvisionCommand creates a new ProvisionCommand
func NewProvisionCommand(cfg *config.Config, provisioner envprep.Provisioner) *ProvisionCommand {
	return &ProvisionCommand{
		config:      cfg,
		provisioner: provisioner,
	}
}

// Execute runs the command
func (pc *ProvisionCommand) Execute(cmd *cobra.Command, args []string) error {
	return pc.provisioner.Run(pc.config.Workers)
}
