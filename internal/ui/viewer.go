package ui

import "pwtp/internal/domain"

// Viewer displays run results in an interactive TUI
type Viewer interface {
	View(output *domain.RunOutput) error
}
