package definition

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleSpec = `// Generated by the verification pipeline.
// Do not edit the describe blocks by hand.
import { test, expect } from '@playwright/test';

function login(page) {
  return page.goto('/login');
}

test.describe('Checkout node', () => {
  test.describe('Cart', () => {
    test('adds an item', async ({ page }) => {
      const input = { sku: 'A-1', qty: 2 };
      const expectedResult = { total: 19.98, ok: true };
      await page.goto('/cart');
    });

    test('removes an item', () => {
      const input = { sku: 'A-1' };
      expect(true).toBe(true);
    });
  });

  test.describe('Fixtures only', () => {
    const setup = { seeded: true };
  });

  test.describe('Payment', () => {
    test('declines a bad card', async ({ page, request }) => {
      const expectedResult = { declined: true };
    });
  });
});
`

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	result := parser.Parse(sampleSpec, "node-7")
	if len(result.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(result.Features))
	}

	cart := result.Features[0]
	if cart.Description != "Cart" {
		t.Errorf("expected first feature Cart, got %q", cart.Description)
	}
	if cart.NodeID != "node-7" {
		t.Errorf("expected node id carried onto feature, got %q", cart.NodeID)
	}
	if cart.SortOrder != 0 {
		t.Errorf("expected sort order 0, got %d", cart.SortOrder)
	}
	if len(cart.Tests) != 2 {
		t.Fatalf("expected 2 tests in Cart, got %d", len(cart.Tests))
	}

	first := cart.Tests[0]
	if first.Title != "adds an item" {
		t.Errorf("unexpected first test title %q", first.Title)
	}
	wantInput := map[string]any{"sku": "A-1", "qty": float64(2)}
	if !reflect.DeepEqual(first.Input, wantInput) {
		t.Errorf("expected input %v, got %v", wantInput, first.Input)
	}
	wantExpected := map[string]any{"total": 19.98, "ok": true}
	if !reflect.DeepEqual(first.ExpectedResult, wantExpected) {
		t.Errorf("expected expectedResult %v, got %v", wantExpected, first.ExpectedResult)
	}
	if first.FeatureID != cart.ID {
		t.Error("test not linked to its feature")
	}

	second := cart.Tests[1]
	if second.Title != "removes an item" {
		t.Errorf("unexpected second test title %q", second.Title)
	}
	if second.SortOrder != 1 {
		t.Errorf("expected sort order 1, got %d", second.SortOrder)
	}
	if second.ExpectedResult != nil {
		t.Errorf("expected nil expectedResult, got %v", second.ExpectedResult)
	}

	payment := result.Features[1]
	if payment.Description != "Payment" {
		t.Errorf("expected second feature Payment, got %q", payment.Description)
	}
	if payment.SortOrder != 1 {
		t.Errorf("expected Payment sort order 1, got %d", payment.SortOrder)
	}
	if len(payment.Tests) != 1 {
		t.Fatalf("expected 1 test in Payment, got %d", len(payment.Tests))
	}
	if payment.Tests[0].Input != nil {
		t.Errorf("expected nil input, got %v", payment.Tests[0].Input)
	}
}

func TestParser_Parse_DiscardsGroupsWithoutTests(t *testing.T) {
	parser := NewParser()

	result := parser.Parse(sampleSpec, "")
	for _, f := range result.Features {
		if f.Description == "Fixtures only" {
			t.Error("fixture-only block must not become a feature")
		}
	}
}

func TestParser_Parse_BareDescribeForm(t *testing.T) {
	src := `describe('Auth', () => { describe('Login', () => { test('succeeds', () => { const input = {u:1}; const expectedResult = {ok:true}; }); }); });`

	result := NewParser().Parse(src, "")
	if len(result.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(result.Features))
	}
	feature := result.Features[0]
	if feature.Description != "Login" {
		t.Errorf("expected feature Login, got %q", feature.Description)
	}
	if len(feature.Tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(feature.Tests))
	}
	test := feature.Tests[0]
	if test.Title != "succeeds" {
		t.Errorf("expected test title succeeds, got %q", test.Title)
	}
	if !reflect.DeepEqual(test.Input, map[string]any{"u": float64(1)}) {
		t.Errorf("unexpected input %v", test.Input)
	}
	if !reflect.DeepEqual(test.ExpectedResult, map[string]any{"ok": true}) {
		t.Errorf("unexpected expectedResult %v", test.ExpectedResult)
	}
}

func TestParser_Parse_Degenerate(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		src  string
	}{
		{"empty source", ""},
		{"no outer construct", "const x = 1;\nfunction y() {}\n"},
		{"unbalanced outer body", "test.describe('X', () => { test('a', () => {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.src, "")
			if len(result.Features) != 0 {
				t.Errorf("expected no features, got %d", len(result.Features))
			}
		})
	}
}

func TestParser_Parse_TitleRoundTrip(t *testing.T) {
	// Titles must come back byte-for-byte, without trimming or unescaping.
	src := `test.describe('outer', () => {
  test.describe('  Feature with  spaces  ', () => {
    test("double \"quoted\" title", () => {});
    test('trailing space ', () => {});
  });
});`

	result := NewParser().Parse(src, "")
	if len(result.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(result.Features))
	}
	if result.Features[0].Description != "  Feature with  spaces  " {
		t.Errorf("feature title altered: %q", result.Features[0].Description)
	}
	titles := []string{}
	for _, test := range result.Features[0].Tests {
		titles = append(titles, test.Title)
	}
	want := []string{`double \"quoted\" title`, "trailing space "}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("expected titles %q, got %q", want, titles)
	}
}

func TestParser_ParseFile_Missing(t *testing.T) {
	result := NewParser().ParseFile("/non/existent/spec.ts", "")
	if len(result.Features) != 0 {
		t.Errorf("missing file must parse to empty, got %d features", len(result.Features))
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.spec.ts")
	if err := os.WriteFile(path, []byte(sampleSpec), 0644); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	result := NewParser().ParseFile(path, "n1")
	if len(result.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(result.Features))
	}
}

func TestParser_ExtractGeneratedCode(t *testing.T) {
	parser := NewParser()

	code := parser.ExtractGeneratedCode(sampleSpec)
	if code == "" {
		t.Fatal("expected preserved implementation code")
	}
	if want := "function login(page)"; !strings.Contains(code, want) {
		t.Errorf("expected code to contain %q, got %q", want, code)
	}
	if strings.Contains(code, "Generated by the verification pipeline") {
		t.Error("leading comment lines must be skipped")
	}
	if strings.Contains(code, "test.describe") {
		t.Error("generated code must stop before the first grouping construct")
	}

	t.Run("no construct", func(t *testing.T) {
		if got := parser.ExtractGeneratedCode("const a = 1;"); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestParser_ParseTests_SortOrderContiguousAfterSkippedBody(t *testing.T) {
	parser := NewParser()

	// The first test's body never balances (truncated source), so it is
	// skipped; the surviving test must still get parse order 0, not 1.
	body := "test('broken', () => { const bad = {;\ntest('survivor', () => { done(); });"

	tests := parser.parseTests(body, "feature-1")
	if len(tests) != 1 {
		t.Fatalf("expected 1 recovered test, got %d", len(tests))
	}
	if tests[0].Title != "survivor" {
		t.Errorf("expected the balanced test to survive, got %q", tests[0].Title)
	}
	if tests[0].SortOrder != 0 {
		t.Errorf("expected contiguous sort order 0, got %d", tests[0].SortOrder)
	}
}
