package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pwtp/internal/config"
	"pwtp/internal/coverage"
	"pwtp/internal/domain"
	"pwtp/internal/execution"
)

const pipelineSpec = `import { test, expect } from '@playwright/test';

test.describe('Node node-1', () => {
  test.describe('Cart', () => {
    test('adds an item', async ({ page }) => {
      await expect(page).toBeTruthy();
    });
    test('removes an item', async ({ page }) => {
      await expect(page).toBeTruthy();
    });
  });
});
`

// flatSpec has no inner grouping construct, so no definitions are
// recovered and correlation must fall back to the runner's own titles.
const flatSpec = `import { test, expect } from '@playwright/test';

test.describe('Cart', () => {
  test('adds an item', async ({ page }) => {
    await expect(page).toBeTruthy();
  });
  test('removes an item', async ({ page }) => {
    await expect(page).toBeTruthy();
  });
});
`

const reporterDocument = `{
  "suites": [
    {
      "title": "node.spec.ts",
      "suites": [
        {
          "title": "Cart",
          "specs": [
            {"title": "adds an item", "ok": true, "tests": [{"status": "expected", "results": [{"status": "passed"}]}]},
            {"title": "removes an item", "ok": false, "tests": [{"status": "unexpected", "results": [{"status": "failed", "error": {"message": "Error: expect(received).toBe(expected)"}}]}]}
          ]
        }
      ]
    }
  ],
  "errors": []
}`

// newTestPipeline builds a pipeline over a throwaway project directory
// whose "runner" is a shell script echoing canned output.
func newTestPipeline(t *testing.T, script string) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()

	specFile := filepath.Join(dir, "node.spec.ts")
	if err := os.WriteFile(specFile, []byte(pipelineSpec), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "runner.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.ProjectPath = dir
	cfg.RunnerBin = "sh runner.sh"
	cfg.TimeoutMs = 15000
	cfg.Flags.NoCoverage = true

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	executor := execution.NewExecutor(io.Discard)
	merger := coverage.NewMerger(coverage.NewPathDecoder(nil), logger)
	return New(cfg, executor, merger, logger), specFile
}

func TestPipeline_Run(t *testing.T) {
	script := "#!/bin/sh\necho 'Running 2 tests using 1 worker'\ncat <<'EOF'\n" + reporterDocument + "\nEOF\n"
	p, specFile := newTestPipeline(t, script)

	summary, err := p.Run(context.Background(), domain.Node{ID: "node-1"}, specFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}
	if !summary.Results[0].Passed {
		t.Errorf("first result should pass: %+v", summary.Results[0])
	}
	if summary.Results[1].Passed || summary.Results[1].Error == "" {
		t.Errorf("second result should fail with an error: %+v", summary.Results[1])
	}
	if summary.Results[0].Test.Title != "adds an item" {
		t.Errorf("result not matched to its definition: %q", summary.Results[0].Test.Title)
	}
	// The parsed definitions, not runner-title fallbacks, must carry the
	// outcomes: fallback tests have no feature attached.
	if len(summary.Features) != 1 {
		t.Fatalf("expected 1 parsed feature, got %d", len(summary.Features))
	}
	for _, r := range summary.Results {
		if r.Test.FeatureID == "" {
			t.Errorf("result %q not backed by a parsed definition", r.Test.Title)
		}
	}
	if summary.TimedOut {
		t.Error("run should not report a timeout")
	}
}

func TestPipeline_Run_NoDefinitionsUsesRunnerTitles(t *testing.T) {
	script := "#!/bin/sh\necho 'Running 2 tests using 1 worker'\ncat <<'EOF'\n" + reporterDocument + "\nEOF\n"
	p, specFile := newTestPipeline(t, script)
	if err := os.WriteFile(specFile, []byte(flatSpec), 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := p.Run(context.Background(), domain.Node{ID: "node-1"}, specFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Features) != 0 {
		t.Fatalf("expected no parsed features, got %d", len(summary.Features))
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results from runner labels, got %d", len(summary.Results))
	}
	if summary.Results[0].Test.Title != "adds an item" || summary.Results[1].Test.Title != "removes an item" {
		t.Errorf("runner titles not carried through: %+v", summary.Results)
	}
	for _, r := range summary.Results {
		if r.Test.FeatureID != "" {
			t.Errorf("fallback test unexpectedly attached to a feature: %+v", r.Test)
		}
	}
}

func TestPipeline_Run_NoReportProducesSyntheticFailure(t *testing.T) {
	script := "#!/bin/sh\necho 'Running 2 tests'\necho 'worker crashed' >&2\nexit 1\n"
	p, specFile := newTestPipeline(t, script)

	summary, err := p.Run(context.Background(), domain.Node{ID: "node-1"}, specFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("expected one synthetic result, got %d", len(summary.Results))
	}
	r := summary.Results[0]
	if r.Passed {
		t.Error("synthetic result must be a failure")
	}
	if !strings.Contains(r.FullError, "Running 2 tests") || !strings.Contains(r.FullError, "worker crashed") {
		t.Errorf("transcript should carry stdout and stderr, got %q", r.FullError)
	}
}

func TestPipeline_Run_LoadErrorsWithoutSuites(t *testing.T) {
	doc := `{"suites": [], "errors": [{"message": "SyntaxError: unexpected token"}]}`
	script := "#!/bin/sh\necho 'Error: loading spec failed'\ncat <<'EOF'\n" + doc + "\nEOF\n"
	p, specFile := newTestPipeline(t, script)

	summary, err := p.Run(context.Background(), domain.Node{ID: "node-1"}, specFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("expected one synthetic result, got %d", len(summary.Results))
	}
	if !strings.Contains(summary.Results[0].FullError, "SyntaxError: unexpected token") {
		t.Errorf("load error message missing from transcript: %q", summary.Results[0].FullError)
	}
}

func TestPipeline_Run_SpawnFailureFailsAllDefinitions(t *testing.T) {
	p, specFile := newTestPipeline(t, "#!/bin/sh\n")
	p.cfg.ProjectPath = filepath.Join(p.cfg.ProjectPath, "does-not-exist")

	summary, err := p.Run(context.Background(), domain.Node{ID: "node-1"}, specFile)
	if err != nil {
		t.Fatalf("spawn failures must not surface as errors: %v", err)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected a failed result per definition, got %d", len(summary.Results))
	}
	for _, r := range summary.Results {
		if r.Passed || r.Error == "" {
			t.Errorf("expected failed result with message, got %+v", r)
		}
	}
}
