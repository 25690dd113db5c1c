package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"pwtp/internal/domain"
)

// Outcome is one atomic result flattened out of the runner's suite tree.
type Outcome struct {
	Title     string
	Status    string
	ErrorMsg  string
	ErrorFull string
}

// Correlator zips the runner's flattened outcomes against parsed test
// definitions. Both sides share the same ordering contract: left-to-right,
// depth-first, feature order then test order within feature.
type Correlator struct{}

// NewCorrelator creates a new Correlator.
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// FlattenOutcomes walks the suite tree depth-first collecting every leaf
// spec, then flat-maps each spec's attempt entries so the resulting list
// corresponds 1:1, in order, to leaf specs.
func (c *Correlator) FlattenOutcomes(r *Report) []Outcome {
	var outcomes []Outcome
	for _, spec := range collectSpecs(r.Suites) {
		if len(spec.Tests) == 0 {
			status := "failed"
			if spec.OK {
				status = "passed"
			}
			outcomes = append(outcomes, Outcome{Title: spec.Title, Status: status})
			continue
		}
		for _, st := range spec.Tests {
			outcomes = append(outcomes, specOutcome(spec, st))
		}
	}
	return outcomes
}

// Correlate produces the ordered TestResult list for a run. With
// definitions present the outcomes are zipped positionally against the
// flattened Feature→Test ordering; without definitions each outcome gets a
// synthetic Test built from the runner's own label.
func (c *Correlator) Correlate(r *Report, features []domain.Feature) []domain.TestResult {
	outcomes := c.FlattenOutcomes(r)
	defs := flattenTests(features)

	if len(defs) == 0 {
		results := make([]domain.TestResult, 0, len(outcomes))
		for i, o := range outcomes {
			results = append(results, outcomeResult(syntheticTest(o.Title, i), o))
		}
		return results
	}

	results := make([]domain.TestResult, 0, len(defs))
	for i, def := range defs {
		if i < len(outcomes) {
			results = append(results, outcomeResult(def, outcomes[i]))
			continue
		}
		// The runner reported fewer outcomes than definitions exist;
		// surface the gap as a failure rather than dropping the test.
		results = append(results, domain.TestResult{
			Test:      def,
			Passed:    false,
			Error:     "no result reported by the test runner",
			FullError: "no result reported by the test runner",
		})
	}
	for i := len(defs); i < len(outcomes); i++ {
		results = append(results, outcomeResult(syntheticTest(outcomes[i].Title, i), outcomes[i]))
	}
	return results
}

// FailAll marks every known test failed with the given message. Last
// resort for process-level exceptions: the caller always receives results,
// never a crash.
func (c *Correlator) FailAll(features []domain.Feature, message string) []domain.TestResult {
	defs := flattenTests(features)
	if len(defs) == 0 {
		return []domain.TestResult{SyntheticFailure(message)}
	}
	results := make([]domain.TestResult, 0, len(defs))
	for _, def := range defs {
		results = append(results, domain.TestResult{
			Test:      def,
			Passed:    false,
			Error:     message,
			FullError: message,
		})
	}
	return results
}

// SyntheticFailure fabricates the single pipeline-level failure result.
// The transcript goes into both error fields so a downstream repair loop
// has full context without re-running anything.
func SyntheticFailure(transcript string) domain.TestResult {
	return domain.TestResult{
		Test:      syntheticTest("Test run failed", 0),
		Passed:    false,
		Error:     transcript,
		FullError: transcript,
	}
}

func collectSpecs(suites []Suite) []Spec {
	var specs []Spec
	for _, s := range suites {
		specs = append(specs, s.Specs...)
		specs = append(specs, collectSpecs(s.Suites)...)
	}
	return specs
}

func flattenTests(features []domain.Feature) []domain.Test {
	var defs []domain.Test
	for _, f := range features {
		defs = append(defs, f.Tests...)
	}
	return defs
}

// specOutcome reduces one attempt group to a single outcome: the last
// attempt decides the status, the first attempt with an error supplies the
// diagnostics.
func specOutcome(spec Spec, st SpecTest) Outcome {
	o := Outcome{Title: spec.Title, Status: st.Status}
	if n := len(st.Results); n > 0 {
		o.Status = st.Results[n-1].Status
	}
	for _, attempt := range st.Results {
		if attempt.Error != nil {
			o.ErrorMsg = attempt.Error.Message
			o.ErrorFull = strings.TrimSpace(attempt.Error.Message + "\n" + attempt.Error.Stack)
			break
		}
	}
	return o
}

func outcomeResult(def domain.Test, o Outcome) domain.TestResult {
	result := domain.TestResult{
		Test:   def,
		Passed: passedStatus(o.Status),
	}
	if !result.Passed {
		result.Error = TrimErrorExcerpt(o.ErrorMsg)
		result.FullError = o.ErrorFull
		if result.Error == "" {
			result.Error = o.ErrorMsg
		}
		if result.Error == "" {
			result.Error = "test " + o.Status
		}
		if result.FullError == "" {
			result.FullError = result.Error
		}
	}
	return result
}

// passedStatus maps the runner's attempt statuses; "expected" is the
// aggregate form some reporter versions emit at the test level.
func passedStatus(status string) bool {
	switch status {
	case "passed", "expected":
		return true
	}
	return false
}

func syntheticTest(title string, order int) domain.Test {
	return domain.Test{
		ID:        uuid.NewString(),
		Title:     title,
		SortOrder: order,
		CreatedAt: time.Now().UTC(),
	}
}
