package storage

import (
	"time"

	"pwtp/internal/config"
	"pwtp/internal/domain"
)

// Storage persists and loads run outputs (e.g. for the results viewer).
type Storage interface {
	Save(node domain.Node, specFile string, results []domain.TestResult, timedOut bool, duration time.Duration) (*domain.RunOutput, error)
	Load() (*domain.RunOutput, error)
	// SaveOutput writes the full output back (e.g. after marking failures
	// as resolved in the viewer).
	SaveOutput(output *domain.RunOutput) error
}

// JSONStorage stores run outputs in a JSON file under the configured
// output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output
// JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
