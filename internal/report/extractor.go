package report

import (
	"encoding/json"
	"strings"
)

// Extract isolates the single embedded JSON document from the runner's
// combined stdout, which interleaves a human-readable progress transcript
// with the machine-readable report. The document starts at the first
// newline immediately followed by '{' and ends at the last '}' in the
// stream. Extract is total: it never panics, and on any failure it
// returns (nil, false) so the caller can fall back to a synthetic result.
func Extract(rawStdout string) (*Report, bool) {
	start := strings.Index(rawStdout, "\n{")
	switch {
	case start >= 0:
		start++ // skip the newline
	case strings.HasPrefix(rawStdout, "{"):
		// No progress transcript at all; the document is the stream.
		start = 0
	default:
		return nil, false
	}

	end := strings.LastIndex(rawStdout, "}")
	if end < start {
		return nil, false
	}

	var r Report
	if err := json.Unmarshal([]byte(rawStdout[start:end+1]), &r); err != nil {
		return nil, false
	}
	return &r, true
}
