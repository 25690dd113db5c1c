package coverage

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"pwtp/internal/domain"
)

// Three generations of coverage output are supported, most specific
// first: per-worker shard files (parallel-safe), the single-file legacy
// format, and the summary-table legacy format.
const (
	shardPattern      = "coverage-worker-*.json"
	legacySingleFile  = "coverage.json"
	legacySummaryFile = "coverage-summary.json"
)

// shardDocument is the v1 per-worker shape. jsCoverage entries are the
// heavyweight raw instrumentation data; only URL and hit counts are
// declared here so the rest is dropped during unmarshalling.
type shardDocument struct {
	TestTraces map[string]domain.TestTrace `json:"testTraces"`
	JSCoverage []instrumentationEntry      `json:"jsCoverage"`
}

type instrumentationEntry struct {
	URL       string                `json:"url"`
	Functions []instrumentationFunc `json:"functions"`
}

type instrumentationFunc struct {
	Ranges []instrumentationRange `json:"ranges"`
}

type instrumentationRange struct {
	Count int `json:"count"`
}

// summaryEntry is the statement-percentage legacy map value.
type summaryEntry struct {
	Statements struct {
		Pct float64 `json:"pct"`
	} `json:"statements"`
}

// Merger reads coverage artifacts from a directory in a single pass per
// file, retaining only per-test traces and the set of executed source
// file paths. Raw instrumentation arrays are never concatenated across
// shards, so peak memory stays bounded regardless of worker count.
type Merger struct {
	decoder *PathDecoder
	logger  *slog.Logger
}

// NewMerger creates a Merger using the given decoder. A nil logger
// disables the skip notes.
func NewMerger(decoder *PathDecoder, logger *slog.Logger) *Merger {
	if decoder == nil {
		decoder = NewPathDecoder(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Merger{decoder: decoder, logger: logger}
}

// MergeAndExtract merges whatever coverage artifacts exist under
// coverageDir. Partially-written or unparseable files are skipped with a
// log note, never aborting the merge; a directory with no artifacts
// yields empty data.
func (m *Merger) MergeAndExtract(coverageDir string) *domain.CoverageData {
	data := &domain.CoverageData{
		TestTraces: make(map[string]domain.TestTrace),
	}
	files := make(map[string]bool)

	shards, err := doublestar.FilepathGlob(filepath.Join(coverageDir, shardPattern))
	if err == nil && len(shards) > 0 {
		sort.Strings(shards)
		for _, shard := range shards {
			m.mergeShard(shard, data, files)
		}
		return m.finish(data, files)
	}

	single := filepath.Join(coverageDir, legacySingleFile)
	if _, err := os.Stat(single); err == nil {
		m.mergeShard(single, data, files)
		return m.finish(data, files)
	}

	summary := filepath.Join(coverageDir, legacySummaryFile)
	if _, err := os.Stat(summary); err == nil {
		m.mergeSummary(summary, files)
	}
	return m.finish(data, files)
}

// mergeShard reads one shard exactly once. Trace maps merge with
// last-writer-wins semantics; instrumentation entries contribute only
// their decoded path, and only when some function range was actually hit.
func (m *Merger) mergeShard(path string, data *domain.CoverageData, files map[string]bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("skipping unreadable coverage file", "path", path, "err", err)
		return
	}

	var doc shardDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// The legacy single-file format may be a bare instrumentation
		// array.
		var entries []instrumentationEntry
		if err2 := json.Unmarshal(raw, &entries); err2 != nil {
			m.logger.Warn("skipping unparseable coverage file", "path", path, "err", err)
			return
		}
		doc = shardDocument{JSCoverage: entries}
	}

	for title, trace := range doc.TestTraces {
		data.TestTraces[title] = trace
	}

	for _, entry := range doc.JSCoverage {
		if !entryExecuted(entry) {
			continue
		}
		if path := m.decoder.Decode(entry.URL); path != "" && IsUserSourceFile(path) {
			files[path] = true
		}
	}
}

// mergeSummary handles the statement-percentage table keyed by file path,
// with the reserved total row skipped.
func (m *Merger) mergeSummary(path string, files map[string]bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("skipping unreadable coverage summary", "path", path, "err", err)
		return
	}

	var table map[string]summaryEntry
	if err := json.Unmarshal(raw, &table); err != nil {
		m.logger.Warn("skipping unparseable coverage summary", "path", path, "err", err)
		return
	}

	for file, entry := range table {
		if file == "total" || entry.Statements.Pct <= 0 {
			continue
		}
		if decoded := m.decoder.Decode(file); decoded != "" && IsUserSourceFile(decoded) {
			files[decoded] = true
		}
	}
}

func (m *Merger) finish(data *domain.CoverageData, files map[string]bool) *domain.CoverageData {
	data.SourceFiles = make([]string, 0, len(files))
	for f := range files {
		data.SourceFiles = append(data.SourceFiles, f)
	}
	sort.Strings(data.SourceFiles)
	data.InferredBackendFiles = InferBackendFiles(data.TestTraces)
	return data
}

// entryExecuted reports whether at least one function range recorded a
// nonzero hit count; zero-coverage entries never reach path decoding.
func entryExecuted(entry instrumentationEntry) bool {
	for _, fn := range entry.Functions {
		for _, r := range fn.Ranges {
			if r.Count > 0 {
				return true
			}
		}
	}
	return false
}
