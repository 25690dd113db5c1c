package report

import (
	"strings"
	"testing"
)

func TestTrimErrorExcerpt(t *testing.T) {
	raw := strings.Join([]string{
		"Error: expect(received).toBe(expected) // Object.is equality",
		"cart total should include tax",
		"",
		"Expected: 19.98",
		"Received: 18.50",
		"",
		"  14 |     const total = await cart.total();",
		"> 15 |     expect(total).toBe(expected.total);",
		"     |                   ^",
		"  16 |   });",
		"",
		"    at Cart.total (/app/frontend/cart.ts:40:11)",
		"    at /app/tests/node.spec.ts:15:19",
	}, "\n")

	got := TrimErrorExcerpt(raw)

	for _, want := range []string{
		"Error: expect(received).toBe(expected)",
		"cart total should include tax",
		"Expected: 19.98",
		"Received: 18.50",
		"expect(total).toBe(expected.total)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("excerpt missing %q:\n%s", want, got)
		}
	}

	for _, reject := range []string{
		"at Cart.total",
		"const total = await cart.total()",
		"^",
		"16 |",
	} {
		if strings.Contains(got, reject) {
			t.Errorf("excerpt must drop %q:\n%s", reject, got)
		}
	}

	if strings.Contains(got, "\n\n") {
		t.Error("blank lines must not survive")
	}
}

func TestTrimErrorExcerpt_CustomMessageNotExpectedLine(t *testing.T) {
	raw := "Error: assertion failed\nExpected: true\nReceived: false"

	got := TrimErrorExcerpt(raw)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	// The Expected line must be kept via its own rule, not swallowed as a
	// custom message.
	if lines[1] != "Expected: true" {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestTrimErrorExcerpt_Degenerate(t *testing.T) {
	if got := TrimErrorExcerpt(""); got != "" {
		t.Errorf("empty input must stay empty, got %q", got)
	}
	if got := TrimErrorExcerpt("\n\n  \n"); got != "" {
		t.Errorf("all-blank input must stay empty, got %q", got)
	}
}
