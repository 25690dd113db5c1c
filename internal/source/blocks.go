// Package source provides brace-balanced substring extraction from
// semi-structured source text. Regexes can locate a construct's header but
// cannot recover a body with arbitrarily nested braces; the balance scan
// here is the primitive both the definition parser and ad-hoc body
// extraction build on.
package source

import "strings"

// Block is one balanced body recovered from source text. Body excludes the
// opening and closing braces; Start and End are byte offsets of the body
// within the scanned text.
type Block struct {
	Body  string
	Start int
	End   int
}

// ExtractBlock scans text from openBrace (the offset of a '{') and returns
// the balanced body between that brace and its matching '}'. The scan
// starts at balance 1, increments on '{' and decrements on '}'. Returns
// false when openBrace does not point at a brace or the text ends before
// the balance returns to zero.
func ExtractBlock(text string, openBrace int) (Block, bool) {
	if openBrace < 0 || openBrace >= len(text) || text[openBrace] != '{' {
		return Block{}, false
	}

	depth := 1
	start := openBrace + 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return Block{Body: text[start:i], Start: start, End: i}, true
			}
		}
	}

	return Block{}, false
}

// ExtractBlockAfter locates the first '{' at or after offset and extracts
// its balanced body. Convenience for callers that matched a construct
// header and only know where the header ends.
func ExtractBlockAfter(text string, offset int) (Block, bool) {
	if offset < 0 || offset > len(text) {
		return Block{}, false
	}
	idx := strings.IndexByte(text[offset:], '{')
	if idx < 0 {
		return Block{}, false
	}
	return ExtractBlock(text, offset+idx)
}
