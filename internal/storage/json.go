package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pwtp/internal/domain"
)

// Save assembles the run output for one pipeline invocation and writes it
// to the configured JSON output file.
func (s *JSONStorage) Save(node domain.Node, specFile string, results []domain.TestResult, timedOut bool, duration time.Duration) (*domain.RunOutput, error) {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	output := &domain.RunOutput{
		Meta: domain.RunMeta{
			RunID:           uuid.New().String(),
			NodeID:          node.ID,
			SpecFile:        specFile,
			TotalTests:      len(results),
			PassedTests:     passed,
			FailedTests:     len(results) - passed,
			TimedOut:        timedOut,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Results: results,
	}

	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last run output from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.RunOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
