// Package format pretty-prints converted SQL. The formatter is deliberately
// conservative: it uppercases keywords and starts major clauses on their own
// line, and never reorders, inserts, or removes tokens. Conversion
// correctness must not depend on it.
package format

import (
	"strings"
)

// keywords are uppercased wherever they appear outside string literals.
var keywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "AND": {}, "OR": {}, "NOT": {},
	"IN": {}, "EXISTS": {}, "ON": {}, "AS": {}, "BY": {}, "GROUP": {},
	"ORDER": {}, "HAVING": {}, "JOIN": {}, "INNER": {}, "LEFT": {},
	"RIGHT": {}, "FULL": {}, "OUTER": {}, "CROSS": {}, "UNION": {},
	"ALL": {}, "DISTINCT": {}, "VALUES": {}, "INSERT": {}, "INTO": {},
	"UPDATE": {}, "SET": {}, "DELETE": {}, "BETWEEN": {}, "LIKE": {},
	"IS": {}, "NULL": {}, "CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {},
	"END": {}, "OVER": {}, "PARTITION": {}, "WITHIN": {}, "TOP": {},
	"ASC": {}, "DESC": {}, "WITH": {},
}

// clauseStarts get a line of their own when they appear at the top
// parenthesis level.
var clauseStarts = map[string]struct{}{
	"FROM": {}, "WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {},
	"UNION": {},
}

// Format normalizes keyword case and breaks major clauses onto new lines.
// Already-formatted input passes through unchanged apart from keyword case.
func Format(sql string) string {
	if sql == "" {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 16)

	depth := 0
	i := 0
	for i < len(sql) {
		c := sql[i]

		switch {
		case c == '\'':
			end := strings.IndexByte(sql[i+1:], '\'')
			if end < 0 {
				// Unterminated literal: keep the rest verbatim.
				b.WriteString(sql[i:])
				i = len(sql)
				continue
			}
			b.WriteString(sql[i : i+end+2])
			i += end + 2

		case c == '(':
			depth++
			b.WriteByte(c)
			i++

		case c == ')':
			depth--
			b.WriteByte(c)
			i++

		case isWordStart(c):
			start := i
			for i < len(sql) && isWordPart(sql[i]) {
				i++
			}
			word := sql[start:i]
			upper := strings.ToUpper(word)

			if _, clause := clauseStarts[upper]; clause && depth == 0 {
				breakLine(&b)
			}
			if _, kw := keywords[upper]; kw {
				b.WriteString(upper)
			} else {
				b.WriteString(word)
			}

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}

// breakLine ends the current line before a clause keyword, trimming any
// trailing spaces already written so no line ends in whitespace.
func breakLine(b *strings.Builder) {
	s := b.String()
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	if end == 0 {
		b.Reset()
		return
	}
	if s[end-1] == '\n' {
		if end != len(s) {
			trimmed := s[:end]
			b.Reset()
			b.WriteString(trimmed)
		}
		return
	}
	trimmed := s[:end]
	b.Reset()
	b.WriteString(trimmed)
	b.WriteByte('\n')
}
