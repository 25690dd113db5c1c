// Package definition recovers structured feature/test entities from
// generated Playwright spec files. The grammar is semi-structured source
// text, not JSON, so construct headers are located with regexes and bodies
// are recovered with the brace-balance scan from internal/source.
package definition

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"pwtp/internal/domain"
	"pwtp/internal/source"
)

var (
	// Outer and inner grouping constructs share the same header shape:
	// test.describe('Title', () => { ... }) with an optional async arrow.
	// Playwright specs use test.describe; the bare describe form shows up
	// in older generated files and is accepted too.
	describeRe = regexp.MustCompile(`(?:test\.)?describe\(\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")\s*,\s*(?:async\s*)?\(\s*\)\s*=>\s*\{`)

	// Leaf test calls come in two variants: a synchronous literal arrow
	// and the async handler with a destructured fixtures argument.
	testSyncRe  = regexp.MustCompile(`(?:^|[^.\w])test\(\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")\s*,\s*\(\s*\)\s*=>\s*\{`)
	testAsyncRe = regexp.MustCompile(`(?:^|[^.\w])test\(\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")\s*,\s*async\s*\(\s*\{[^}]*\}\s*\)\s*=>\s*\{`)

	// Any leaf test call at all; used to discard grouping blocks that hold
	// only fixtures or setup.
	anyTestCallRe = regexp.MustCompile(`(?:^|[^.\w])test\(\s*['"]`)

	commentLineRe = regexp.MustCompile(`^\s*(//|/\*|\*)`)
)

// ParseResult is the ordered output of one parse.
type ParseResult struct {
	Features []domain.Feature
}

// Parser recovers test definitions from spec source text.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses the spec file at path. A missing file is the normal
// state before first generation and yields an empty result, not an error.
func (p *Parser) ParseFile(path, nodeID string) *ParseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return &ParseResult{}
	}
	return p.Parse(string(content), nodeID)
}

// Parse recovers the ordered feature list from sourceText. Grouping blocks
// that contain no leaf test call are discarded; unparseable input or
// expectedResult literals leave the field nil. Parse never fails: no outer
// construct means an empty feature list.
func (p *Parser) Parse(sourceText, nodeID string) *ParseResult {
	outer, ok := p.outerBody(sourceText)
	if !ok {
		return &ParseResult{}
	}

	var features []domain.Feature
	for _, raw := range p.groupBlocks(outer) {
		if !anyTestCallRe.MatchString(raw.body) {
			continue
		}

		feature := domain.Feature{
			ID:          uuid.NewString(),
			NodeID:      nodeID,
			Description: raw.title,
			SortOrder:   len(features),
		}
		feature.Tests = p.parseTests(raw.body, feature.ID)
		features = append(features, feature)
	}

	return &ParseResult{Features: features}
}

// ExtractGeneratedCode returns all source text preceding the first grouping
// construct: the implementation code a regeneration must preserve. Leading
// comment lines are skipped.
func (p *Parser) ExtractGeneratedCode(sourceText string) string {
	loc := describeRe.FindStringIndex(sourceText)
	if loc == nil {
		return ""
	}

	head := sourceText[:loc[0]]
	lines := strings.Split(head, "\n")
	for len(lines) > 0 && (strings.TrimSpace(lines[0]) == "" || commentLineRe.MatchString(lines[0])) {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// outerBody locates the single outermost describe construct and recovers
// its balanced body.
func (p *Parser) outerBody(text string) (string, bool) {
	loc := describeRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	// The header regex ends on the construct's opening brace.
	block, ok := source.ExtractBlockAfter(text, loc[1]-1)
	if !ok {
		return "", false
	}
	return block.Body, true
}

type groupBlock struct {
	title string
	body  string
}

// groupBlocks matches inner grouping constructs in order and brace-balances
// each body so nested braces cannot truncate it.
func (p *Parser) groupBlocks(body string) []groupBlock {
	var blocks []groupBlock
	offset := 0
	for {
		loc := describeRe.FindStringSubmatchIndex(body[offset:])
		if loc == nil {
			return blocks
		}

		title := quotedGroup(body[offset:], loc)
		block, ok := source.ExtractBlockAfter(body, offset+loc[1]-1)
		if !ok {
			return blocks
		}
		blocks = append(blocks, groupBlock{title: title, body: block.Body})
		offset = block.End + 1
	}
}

// parseTests extracts leaf test blocks from one feature body, in source
// order across both call variants.
func (p *Parser) parseTests(body, featureID string) []domain.Test {
	type match struct {
		start int
		brace int
		title string
	}

	var found []match
	for _, re := range []*regexp.Regexp{testSyncRe, testAsyncRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(body, -1) {
			found = append(found, match{
				start: loc[0],
				brace: loc[1] - 1,
				title: quotedGroup(body, loc),
			})
		}
	}
	// Source order, whichever variant matched.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j-1].start > found[j].start; j-- {
			found[j-1], found[j] = found[j], found[j-1]
		}
	}

	tests := make([]domain.Test, 0, len(found))
	for _, m := range found {
		block, ok := source.ExtractBlock(body, m.brace)
		if !ok {
			continue
		}
		tests = append(tests, domain.Test{
			ID:             uuid.NewString(),
			FeatureID:      featureID,
			Title:          m.title,
			Input:          extractConstLiteral(block.Body, "input"),
			ExpectedResult: extractConstLiteral(block.Body, "expectedResult"),
			SortOrder:      len(tests),
			CreatedAt:      time.Now().UTC(),
		})
	}
	return tests
}

// quotedGroup returns whichever quote-variant capture group matched.
func quotedGroup(text string, loc []int) string {
	if loc[2] >= 0 {
		return text[loc[2]:loc[3]]
	}
	if len(loc) >= 6 && loc[4] >= 0 {
		return text[loc[4]:loc[5]]
	}
	return ""
}
