package domain

// CoverageData is the blast radius attached to a test result: which source
// files were executed during the run, which backend files the captured API
// traffic points at, and the lightweight per-test traces. SourceFiles has
// set semantics; it is built fresh per invocation and never persisted by
// the coverage subsystem itself.
type CoverageData struct {
	SourceFiles          []string             `json:"source_files"`
	InferredBackendFiles []string             `json:"inferred_backend_files,omitempty"`
	TestTraces           map[string]TestTrace `json:"test_traces,omitempty"`
}

// TestTrace is the small per-test record a runner worker writes alongside
// the heavyweight instrumentation data.
type TestTrace struct {
	APIRequests []APIRequest `json:"apiRequests,omitempty"`
	ConsoleLogs []string     `json:"consoleLogs,omitempty"`
	PageURLs    []string     `json:"pageUrls,omitempty"`
}

// APIRequest is one captured HTTP call made by the app under test.
type APIRequest struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
	Status int    `json:"status"`
}
