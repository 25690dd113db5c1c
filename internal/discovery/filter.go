package discovery

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter filters spec files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters spec files by name pattern. Plain wildcards match
// against the base name ("*checkout*"); patterns containing a path
// separator or ** match against the whole path with doublestar semantics
// ("tests/**/auth*.spec.ts").
func (f *Filter) FilterByName(specs []string, pattern string) []string {
	if pattern == "" {
		return specs
	}

	var filtered []string

	pathPattern := strings.ContainsAny(pattern, "/") || strings.Contains(pattern, "**")

	for _, spec := range specs {
		if pathPattern {
			if ok, err := doublestar.Match(pattern, filepath.ToSlash(spec)); err == nil && ok {
				filtered = append(filtered, spec)
			}
			continue
		}

		name := filepath.Base(spec)

		// Try to match using filepath.Match (supports * and ? wildcards)
		matched, err := filepath.Match(pattern, name)
		if err == nil && matched {
			filtered = append(filtered, spec)
			continue
		}

		// If the pattern contains wildcards but didn't match as a whole,
		// fall back to substring matching of the non-wildcard parts, so
		// "*checkout*" style patterns behave the way people expect.
		if strings.Contains(pattern, "*") {
			if substringParts(name, pattern) {
				filtered = append(filtered, spec)
			}
			continue
		}

		// No wildcards: simple contains check
		if strings.Contains(name, pattern) {
			filtered = append(filtered, spec)
		}
	}

	return filtered
}

// substringParts reports whether every non-empty part of a *-separated
// pattern occurs in name.
func substringParts(name, pattern string) bool {
	parts := strings.Split(pattern, "*")
	nonEmpty := false
	for _, part := range parts {
		if part == "" {
			continue
		}
		nonEmpty = true
		if !strings.Contains(name, part) {
			return false
		}
	}
	return nonEmpty
}
