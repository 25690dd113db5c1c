// Package coverage merges sharded runner coverage output into a single
// blast radius: the set of repository-relative source files a run
// executed, the lightweight per-test traces, and the backend files the
// captured API traffic implies.
package coverage

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultSourceRoots are the top-level repository directories user source
// lives under; the SSR heuristic keys off them.
var DefaultSourceRoots = []string{"frontend", "backend", "src"}

var (
	// Bundler chunk names encode a path with underscores as separators
	// plus a trailing extension-and-hash marker:
	// frontend_app_page_tsx_abc123._.js -> frontend/app/page.tsx
	chunkWithHashRe = regexp.MustCompile(`^(.+)_(tsx|ts|jsx|js|mjs|css)_[0-9a-zA-Z]+\._\.js$`)
	// Alternate chunk form without the inline hash.
	chunkNoHashRe = regexp.MustCompile(`^(.+)_(tsx|ts|jsx|js|mjs|css)\._\.js$`)

	trailingFileRe = regexp.MustCompile(`([\w.-]+\.(?:tsx|ts|jsx|js|mjs|cjs))$`)

	sourceExtensions = map[string]bool{
		".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	}
	blockedDirs = map[string]bool{
		"node_modules": true, ".next": true, "dist": true, "build": true,
		"coverage": true, "vendor": true, "test-results": true,
	}
)

// PathDecoder turns one coverage URL into a best-effort canonical
// repository-relative source path. Decoding is deterministic and
// idempotent on already-decoded simple paths.
type PathDecoder struct {
	sourceRoots []string
}

// NewPathDecoder creates a PathDecoder. Empty roots fall back to
// DefaultSourceRoots.
func NewPathDecoder(sourceRoots []string) *PathDecoder {
	if len(sourceRoots) == 0 {
		sourceRoots = DefaultSourceRoots
	}
	return &PathDecoder{sourceRoots: sourceRoots}
}

// Decode applies the decoding heuristics in order; the first match wins.
// It returns "" when the URL names framework or build artifacts rather
// than user source.
func (d *PathDecoder) Decode(rawURL string) string {
	decoded := rawURL
	if u, err := url.PathUnescape(rawURL); err == nil {
		decoded = u
	}

	if isFrameworkArtifact(decoded) {
		return ""
	}

	// Chunk-name patterns apply to the last path segment.
	segment := decoded
	if idx := strings.LastIndexAny(segment, "/\\"); idx >= 0 {
		segment = segment[idx+1:]
	}
	if m := chunkWithHashRe.FindStringSubmatch(segment); m != nil {
		return underscorePath(m[1], m[2])
	}
	if m := chunkNoHashRe.FindStringSubmatch(segment); m != nil {
		return underscorePath(m[1], m[2])
	}

	if path, rejected, ok := d.serverRenderPath(decoded); ok {
		return path
	} else if rejected {
		return ""
	}

	if path, rejected, ok := urlPath(decoded); ok {
		return path
	} else if rejected {
		return ""
	}

	if m := trailingFileRe.FindStringSubmatch(decoded); m != nil {
		return m[1]
	}

	return ""
}

// IsUserSourceFile gates inclusion in the merged set independent of which
// decoder branch matched: recognized source extension, no blocked
// directory anywhere in the path.
func IsUserSourceFile(path string) bool {
	if path == "" {
		return false
	}
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 || !sourceExtensions[path[dot:]] {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		if blockedDirs[part] {
			return false
		}
	}
	return true
}

// isFrameworkArtifact rejects vendor directories, known non-source
// internal segments and browser-extension schemes outright.
func isFrameworkArtifact(decoded string) bool {
	if strings.HasPrefix(decoded, "chrome-extension://") || strings.HasPrefix(decoded, "moz-extension://") {
		return true
	}
	for _, marker := range []string{"node_modules", "webpack-internal", "__nextjs", "[turbopack]"} {
		if strings.Contains(decoded, marker) {
			return true
		}
	}
	return false
}

// underscorePath rebuilds a path from an underscore-encoded chunk base,
// preserving dashes and dots inside each component.
func underscorePath(base, ext string) string {
	return strings.ReplaceAll(base, "_", "/") + "." + ext
}

// serverRenderPath handles server-side-render paths: possibly absolute,
// possibly backslash-delimited, with a known top-level source directory
// somewhere inside. Paths under the server-internal build directory are
// rejected terminally so later fallbacks cannot resurrect them as bare
// filenames.
func (d *PathDecoder) serverRenderPath(decoded string) (path string, rejected, ok bool) {
	normalized := strings.ReplaceAll(decoded, "\\", "/")
	if strings.Contains(normalized, "/.next/") || strings.HasPrefix(normalized, ".next/") {
		return "", true, false
	}
	for _, root := range d.sourceRoots {
		if strings.HasPrefix(normalized, root+"/") {
			return normalized, false, true
		}
		if idx := strings.Index(normalized, "/"+root+"/"); idx >= 0 {
			return normalized[idx+1:], false, true
		}
	}
	return "", false, false
}

// urlPath is the standard URL fallback: parse, reject internal framework
// prefixes, return the path without its leading slash. rejected
// distinguishes "this is framework internals, stop" from "not a URL,
// keep trying".
func urlPath(decoded string) (path string, rejected, ok bool) {
	u, err := url.Parse(decoded)
	if err != nil || u.Scheme == "" || u.Path == "" {
		return "", false, false
	}
	for _, prefix := range []string{"/_next/", "/__next", "/@vite"} {
		if strings.HasPrefix(u.Path, prefix) {
			return "", true, false
		}
	}
	return strings.TrimPrefix(u.Path, "/"), false, true
}
