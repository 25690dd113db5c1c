package report

import (
	"regexp"
	"strings"
)

// Raw assertion failures arrive as multi-line dumps: the error marker, a
// possible custom message, Expected/Received lines, source context with
// line-number gutters, caret underlines, and a stack. TrimErrorExcerpt
// keeps only the lines a human scans first; the untruncated message and
// stack always travel separately in FullError.

var (
	errorMarkerRe    = regexp.MustCompile(`^\s*(Error|AssertionError|TypeError|TimeoutError)\b.*:`)
	expectedLineRe   = regexp.MustCompile(`^\s*(Expected|Received)\b.*:`)
	sourceGutterRe   = regexp.MustCompile(`^\s*>?\s*\d+\s*\|`)
	stackFrameRe     = regexp.MustCompile(`^\s*at\s`)
	caretUnderlineRe = regexp.MustCompile(`^\s*[|\s]*[\^~]+\s*$`)
	assertionCallRe  = regexp.MustCompile(`expect\s*\(`)
)

// TrimErrorExcerpt reduces a raw failure message to its human-scannable
// core. Lines that are blank, source-context gutters, stack frames or
// caret decorations are dropped; error-marker lines (plus the immediately
// following custom-message line when it is not an Expected/Received line),
// Expected:/Received: lines and assertion-call lines survive.
func TrimErrorExcerpt(raw string) string {
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	var kept []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case stackFrameRe.MatchString(line):
			continue
		case caretUnderlineRe.MatchString(line):
			continue
		case assertionCallRe.MatchString(line) && !errorMarkerRe.MatchString(line):
			// Assertion calls survive even inside source-context gutters;
			// the gutter decoration itself does not.
			kept = append(kept, strings.TrimSpace(sourceGutterRe.ReplaceAllString(line, "")))
		case sourceGutterRe.MatchString(line):
			continue
		case errorMarkerRe.MatchString(line):
			kept = append(kept, trimmed)
			// A custom assertion message, if any, rides on the next line.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if next != "" && !expectedLineRe.MatchString(next) &&
					!sourceGutterRe.MatchString(lines[i+1]) && !stackFrameRe.MatchString(lines[i+1]) {
					kept = append(kept, next)
					i++
				}
			}
		case expectedLineRe.MatchString(line):
			kept = append(kept, trimmed)
		}
	}

	return strings.Join(kept, "\n")
}
