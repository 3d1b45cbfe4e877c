package convert

import (
	"errors"
	"strings"
)

// tokenKind discriminates the token variants the structural pass walks.
// Adding a new kind is a compile-time-checked change in convertToken.
type tokenKind int

const (
	tokenFunction tokenKind = iota
	tokenIdentifier
	tokenParen
	tokenOther
)

// token is one structural element of a statement. Function and Paren tokens
// carry the verbatim inner text between their parentheses.
type token struct {
	kind  tokenKind
	text  string // verbatim source slice
	name  string // function name, tokenFunction only
	inner string // text between the parens, tokenFunction and tokenParen
}

// errUnbalanced reports a statement whose parentheses do not balance.
var errUnbalanced = errors.New("unbalanced parentheses")

// sqlKeywords are names that read like function calls when followed by a
// parenthesis but are SQL keywords (WHERE (a=1), IN (...), VALUES (...)).
var sqlKeywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "AND": {}, "OR": {}, "NOT": {},
	"IN": {}, "EXISTS": {}, "ON": {}, "AS": {}, "BY": {}, "GROUP": {},
	"ORDER": {}, "HAVING": {}, "JOIN": {}, "INNER": {}, "OUTER": {},
	"CROSS": {}, "UNION": {}, "ALL": {}, "DISTINCT": {}, "VALUES": {},
	"INSERT": {}, "INTO": {}, "UPDATE": {}, "SET": {}, "DELETE": {},
	"BETWEEN": {}, "LIKE": {}, "IS": {}, "NULL": {}, "CASE": {},
	"WHEN": {}, "THEN": {}, "ELSE": {}, "END": {}, "OVER": {},
	"WITHIN": {}, "TOP": {}, "ANY": {}, "SOME": {},
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// tokenize splits a statement into function calls, identifiers,
// parenthesized groups, and opaque runs. Single-quoted literals never open
// or close groups. Returns errUnbalanced when any group fails to close or a
// stray closing parenthesis appears.
func tokenize(text string) ([]token, error) {
	var tokens []token
	var other strings.Builder

	flushOther := func() {
		if other.Len() > 0 {
			tokens = append(tokens, token{kind: tokenOther, text: other.String()})
			other.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]

		switch {
		case c == '\'':
			end, ok := scanString(text, i)
			if !ok {
				// Unterminated literal: keep the rest verbatim.
				other.WriteString(text[i:])
				i = len(text)
				continue
			}
			other.WriteString(text[i : end+1])
			i = end + 1

		case isIdentStart(c):
			start := i
			for i < len(text) && isIdentPart(text[i]) {
				i++
			}
			name := text[start:i]

			// Lookahead for a call: optional whitespace then '('.
			j := i
			for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			_, keyword := sqlKeywords[strings.ToUpper(name)]
			if j < len(text) && text[j] == '(' && !keyword {
				end, err := scanGroup(text, j)
				if err != nil {
					return nil, err
				}
				flushOther()
				tokens = append(tokens, token{
					kind:  tokenFunction,
					text:  text[start : end+1],
					name:  name,
					inner: text[j+1 : end],
				})
				i = end + 1
				continue
			}
			flushOther()
			tokens = append(tokens, token{kind: tokenIdentifier, text: name})

		case c == '(':
			end, err := scanGroup(text, i)
			if err != nil {
				return nil, err
			}
			flushOther()
			tokens = append(tokens, token{
				kind:  tokenParen,
				text:  text[i : end+1],
				inner: text[i+1 : end],
			})
			i = end + 1

		case c == ')':
			return nil, errUnbalanced

		default:
			other.WriteByte(c)
			i++
		}
	}
	flushOther()
	return tokens, nil
}

// scanString returns the index of the closing quote of the literal opening
// at text[start].
func scanString(text string, start int) (int, bool) {
	for i := start + 1; i < len(text); i++ {
		if text[i] == '\'' {
			return i, true
		}
	}
	return 0, false
}

// scanGroup returns the index of the parenthesis matching text[open]. The
// scan is iterative, so arbitrarily deep nesting cannot overflow the stack.
func scanGroup(text string, open int) (int, error) {
	depth := 0
	i := open
	for i < len(text) {
		switch text[i] {
		case '\'':
			end, ok := scanString(text, i)
			if !ok {
				return 0, errUnbalanced
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
		i++
	}
	return 0, errUnbalanced
}
