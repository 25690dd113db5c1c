// Package report isolates the runner's embedded JSON document from its
// combined stdout stream, walks the nested suite tree into ordered
// outcomes, and correlates those outcomes with parsed test definitions.
package report

// Report is the runner's JSON reporter document. Suites nest to arbitrary
// depth (file, outer group, inner group); Errors carries load-time
// failures such as syntax or import errors in the spec file.
type Report struct {
	Suites []Suite       `json:"suites"`
	Errors []RunnerError `json:"errors"`
}

// Suite is one grouping node in the runner's tree.
type Suite struct {
	Title  string  `json:"title"`
	File   string  `json:"file,omitempty"`
	Suites []Suite `json:"suites,omitempty"`
	Specs  []Spec  `json:"specs,omitempty"`
}

// Spec is a leaf test identity. Its Tests entries are the per-project
// attempt groups, each carrying the retry results.
type Spec struct {
	Title string     `json:"title"`
	OK    bool       `json:"ok"`
	Tests []SpecTest `json:"tests,omitempty"`
}

// SpecTest groups the attempts of one spec.
type SpecTest struct {
	Status  string    `json:"status,omitempty"`
	Results []Attempt `json:"results,omitempty"`
}

// Attempt is one execution of a spec.
type Attempt struct {
	Status string       `json:"status"`
	Error  *RunnerError `json:"error,omitempty"`
}

// RunnerError is an error payload anywhere in the document.
type RunnerError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// HasSuites reports whether any suite data is present, at any depth.
func (r *Report) HasSuites() bool {
	return len(r.Suites) > 0
}

// LoadErrorMessages returns the messages of all load-time errors.
func (r *Report) LoadErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}
