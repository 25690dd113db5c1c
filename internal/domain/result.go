package domain

// TestResult represents one correlated test outcome. Error is a trimmed
// human-scannable excerpt; FullError carries the untruncated message and
// stack. Passed derives solely from the runner's reported status for the
// matched entry.
type TestResult struct {
	Test         Test          `json:"test"`
	Passed       bool          `json:"passed"`
	Error        string        `json:"error,omitempty"`
	FullError    string        `json:"full_error,omitempty"`
	ActualResult any           `json:"actual_result,omitempty"`
	Coverage     *CoverageData `json:"coverage,omitempty"`
	Resolved     bool          `json:"resolved,omitempty"` // Track if failure is marked as reviewed
}

// RunMeta contains metadata about one pipeline run.
type RunMeta struct {
	RunID           string  `json:"run_id"`
	NodeID          string  `json:"node_id,omitempty"`
	SpecFile        string  `json:"spec_file"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	TimedOut        bool    `json:"timed_out"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the complete persisted output of one run.
type RunOutput struct {
	Meta    RunMeta      `json:"meta"`
	Results []TestResult `json:"results"`
}
