package coverage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const shardOne = `{
  "testTraces": {
    "adds an item": {
      "apiRequests": [{"url": "http://localhost:3000/api/cart/add", "status": 200}],
      "pageUrls": ["http://localhost:3000/cart"]
    }
  },
  "jsCoverage": [
    {
      "url": "http://localhost:3000/_next/static/chunks/frontend_app_page_tsx_abc123._.js",
      "functions": [{"ranges": [{"count": 1}, {"count": 0}]}]
    },
    {
      "url": "http://localhost:3000/node_modules/react-dom/client.js",
      "functions": [{"ranges": [{"count": 42}]}]
    },
    {
      "url": "http://localhost:3000/_next/static/chunks/frontend_lib_unused_ts_ffffff._.js",
      "functions": [{"ranges": [{"count": 0}]}]
    }
  ]
}`

const shardThree = `{
  "testTraces": {
    "adds an item": {
      "apiRequests": [{"url": "http://localhost:3000/api/cart/add", "status": 201}]
    },
    "removes an item": {
      "apiRequests": [{"url": "http://localhost:3000/api/auth/login", "status": 200}]
    }
  },
  "jsCoverage": [
    {
      "url": "http://localhost:3000/_next/static/chunks/frontend_app_cart_page_tsx_0c0ffee._.js",
      "functions": [{"ranges": [{"count": 3}]}]
    }
  ]
}`

func TestMerger_MergeAndExtract_Shards(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-worker-1.json", shardOne)
	writeFile(t, dir, "coverage-worker-3.json", shardThree)
	// Shards take precedence over both legacy formats.
	writeFile(t, dir, "coverage.json", `{"testTraces": {"legacy": {}}, "jsCoverage": []}`)
	writeFile(t, dir, "coverage-summary.json", `{"total": {}, "frontend/ignored.ts": {"statements": {"pct": 50}}}`)

	data := NewMerger(nil, nil).MergeAndExtract(dir)

	wantFiles := []string{"frontend/app/cart/page.tsx", "frontend/app/page.tsx"}
	if !reflect.DeepEqual(data.SourceFiles, wantFiles) {
		t.Errorf("expected source files %v, got %v", wantFiles, data.SourceFiles)
	}

	if _, ok := data.TestTraces["legacy"]; ok {
		t.Error("legacy file must be ignored when shards exist")
	}
	if len(data.TestTraces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(data.TestTraces))
	}
	// Later shard wins the key collision.
	if got := data.TestTraces["adds an item"].APIRequests[0].Status; got != 201 {
		t.Errorf("expected last writer to win, got status %d", got)
	}
}

func TestMerger_MergeAndExtract_ZeroCoverageEntriesSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-worker-1.json", shardOne)

	data := NewMerger(nil, nil).MergeAndExtract(dir)
	for _, f := range data.SourceFiles {
		if f == "frontend/lib/unused.ts" {
			t.Error("zero-coverage entry must not be attributed")
		}
	}
}

func TestMerger_MergeAndExtract_CorruptShardSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-worker-1.json", shardOne)
	writeFile(t, dir, "coverage-worker-2.json", `{"testTraces": {truncated`)

	data := NewMerger(nil, nil).MergeAndExtract(dir)
	if len(data.SourceFiles) == 0 {
		t.Error("corrupt shard must not abort the merge")
	}
}

func TestMerger_MergeAndExtract_LegacySingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage.json", shardOne)

	data := NewMerger(nil, nil).MergeAndExtract(dir)
	if len(data.SourceFiles) != 1 || data.SourceFiles[0] != "frontend/app/page.tsx" {
		t.Errorf("unexpected source files %v", data.SourceFiles)
	}
}

func TestMerger_MergeAndExtract_LegacyBareArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage.json", `[
  {"url": "http://localhost:3000/chunks/frontend_app_page_tsx_abc123._.js", "functions": [{"ranges": [{"count": 1}]}]}
]`)

	data := NewMerger(nil, nil).MergeAndExtract(dir)
	if len(data.SourceFiles) != 1 || data.SourceFiles[0] != "frontend/app/page.tsx" {
		t.Errorf("unexpected source files %v", data.SourceFiles)
	}
}

func TestMerger_MergeAndExtract_LegacySummary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-summary.json", `{
  "total": {"statements": {"pct": 80}},
  "frontend/app/page.tsx": {"statements": {"pct": 66.6}},
  "frontend/lib/cold.ts": {"statements": {"pct": 0}},
  "node_modules/react/index.js": {"statements": {"pct": 12}}
}`)

	data := NewMerger(nil, nil).MergeAndExtract(dir)
	want := []string{"frontend/app/page.tsx"}
	if !reflect.DeepEqual(data.SourceFiles, want) {
		t.Errorf("expected %v, got %v", want, data.SourceFiles)
	}
}

func TestMerger_MergeAndExtract_EmptyDir(t *testing.T) {
	data := NewMerger(nil, nil).MergeAndExtract(t.TempDir())
	if len(data.SourceFiles) != 0 || len(data.TestTraces) != 0 {
		t.Errorf("expected empty data, got %+v", data)
	}
}

func TestMerger_MergeAndExtract_BackendInference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-worker-1.json", shardThree)

	data := NewMerger(nil, nil).MergeAndExtract(dir)

	want := []string{
		"backend/controllers/authController.js",
		"backend/controllers/authController.ts",
		"backend/controllers/cartController.js",
		"backend/controllers/cartController.ts",
		"backend/routes/auth.js",
		"backend/routes/auth.ts",
		"backend/routes/cart.js",
		"backend/routes/cart.ts",
	}
	if !reflect.DeepEqual(data.InferredBackendFiles, want) {
		t.Errorf("expected %v, got %v", want, data.InferredBackendFiles)
	}
}
