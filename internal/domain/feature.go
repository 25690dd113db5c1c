package domain

import "time"

// Feature represents one named group of tests recovered from a generated
// spec file. Features are immutable once parsed; SortOrder is parse order.
type Feature struct {
	ID          string `json:"id"`
	NodeID      string `json:"node_id"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	Tests       []Test `json:"tests"`
}

// Test represents a single declarative test inside a feature. Input and
// ExpectedResult are recovered from literal object assignments in source;
// nil means the constant was absent or unparseable, which is not an error.
type Test struct {
	ID             string    `json:"id"`
	FeatureID      string    `json:"feature_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Input          any       `json:"input,omitempty"`
	ExpectedResult any       `json:"expected_result,omitempty"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

// Node is the unit of work the host supplies to the pipeline. Storage and
// lifecycle of nodes belong to the host; only these fields are consumed here.
type Node struct {
	ID           string
	WorkflowID   string
	Title        string
	Dependencies []string
}
