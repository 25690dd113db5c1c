package definition

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pwtp/internal/source"
)

// Generated tests declare their payloads as `const input = {...};` and
// `const expectedResult = {...};`. The literal is a JS object literal, not
// strict JSON, so it is normalized before unmarshalling. Any failure along
// the way yields nil: an absent payload is not an error.

func extractConstLiteral(body, name string) any {
	re := regexp.MustCompile(`const\s+` + regexp.QuoteMeta(name) + `\s*=\s*\{`)
	loc := re.FindStringIndex(body)
	if loc == nil {
		return nil
	}

	block, ok := source.ExtractBlock(body, loc[1]-1)
	if !ok {
		return nil
	}

	var value any
	if err := json.Unmarshal([]byte(normalizeObjectLiteral("{"+block.Body+"}")), &value); err != nil {
		return nil
	}
	return value
}

// normalizeObjectLiteral converts a JS object literal into parseable JSON:
// single-quoted strings become double-quoted, bare identifier keys are
// quoted, trailing commas are dropped. The scan tracks string state so
// content inside strings is never rewritten.
func normalizeObjectLiteral(literal string) string {
	var out strings.Builder
	out.Grow(len(literal) + 16)

	i := 0
	for i < len(literal) {
		c := literal[i]

		switch {
		case c == '\'' || c == '"':
			str, next := scanString(literal, i)
			out.WriteString(str)
			i = next

		case isIdentStart(c):
			j := i + 1
			for j < len(literal) && isIdentPart(literal[j]) {
				j++
			}
			ident := literal[i:j]

			// Identifier followed by ':' is a bare key.
			k := j
			for k < len(literal) && (literal[k] == ' ' || literal[k] == '\t' || literal[k] == '\n' || literal[k] == '\r') {
				k++
			}
			if k < len(literal) && literal[k] == ':' {
				fmt.Fprintf(&out, "%q", ident)
			} else {
				out.WriteString(ident)
			}
			i = j

		case c == ',':
			// Drop a comma that would trail before a closing bracket.
			k := i + 1
			for k < len(literal) && (literal[k] == ' ' || literal[k] == '\t' || literal[k] == '\n' || literal[k] == '\r') {
				k++
			}
			if k < len(literal) && (literal[k] == '}' || literal[k] == ']') {
				i++
				continue
			}
			out.WriteByte(c)
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

// scanString consumes one quoted string starting at literal[start] and
// returns its JSON form plus the offset past the closing quote.
func scanString(literal string, start int) (string, int) {
	quote := literal[start]
	var out strings.Builder
	out.WriteByte('"')

	i := start + 1
	for i < len(literal) {
		c := literal[i]
		switch {
		case c == '\\' && i+1 < len(literal):
			esc := literal[i+1]
			if esc == '\'' {
				// \' is not a JSON escape.
				out.WriteByte('\'')
			} else {
				out.WriteByte('\\')
				out.WriteByte(esc)
			}
			i += 2
		case c == quote:
			out.WriteByte('"')
			return out.String(), i + 1
		case c == '"' && quote == '\'':
			out.WriteString(`\"`)
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}

	// Unterminated string; emit what we have so the JSON parse fails
	// cleanly downstream.
	out.WriteByte('"')
	return out.String(), i
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
