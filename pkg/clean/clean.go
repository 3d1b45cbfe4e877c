// Package clean normalizes raw SQL text before conversion: line endings,
// whitespace, comment extraction, and statement splitting. The conversion
// pipeline accepts raw text too, but hygiene is this package's job.
package clean

import (
	"errors"
	"strings"
)

// ErrUnbalanced reports input whose parentheses do not balance; such input is
// passed through to conversion, which returns it unmodified with a flag.
var ErrUnbalanced = errors.New("unbalanced parentheses")

// ErrUnterminatedComment reports a /* block comment without a closing */.
var ErrUnterminatedComment = errors.New("unterminated block comment")

// Comment is one extracted comment with the 1-based line it started on.
type Comment struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Prepared is the result of cleaning one raw input.
type Prepared struct {
	Original   string
	Cleaned    string
	Valid      bool
	Err        error
	Comments   []Comment
	Statements []string
}

// Prepare cleans raw SQL: strips comments, normalizes line endings and
// trailing whitespace, drops blank lines, splits on top-level semicolons,
// and validates parenthesis balance. The cleaned text is returned even when
// validation fails so the caller can still show it.
func Prepare(raw string) Prepared {
	p := Prepared{Original: raw, Valid: true}

	stripped, comments, err := stripComments(normalizeNewlines(raw))
	p.Comments = comments
	if err != nil {
		p.Valid = false
		p.Err = err
	}

	p.Cleaned = normalizeWhitespace(stripped)
	p.Statements = SplitStatements(p.Cleaned)

	if p.Err == nil {
		if err := checkBalance(p.Cleaned); err != nil {
			p.Valid = false
			p.Err = err
		}
	}
	return p
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// stripComments removes -- line comments and /* */ block comments, recording
// each with its starting line. Comment markers inside single-quoted literals
// are text, not comments.
func stripComments(s string) (string, []Comment, error) {
	var b strings.Builder
	var comments []Comment
	b.Grow(len(s))

	line := 1
	i := 0
	for i < len(s) {
		c := s[i]

		switch {
		case c == '\n':
			line++
			b.WriteByte(c)
			i++

		case c == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				b.WriteString(s[i:])
				i = len(s)
				continue
			}
			literal := s[i : i+end+2]
			line += strings.Count(literal, "\n")
			b.WriteString(literal)
			i += end + 2

		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			comments = append(comments, Comment{Line: line, Text: strings.TrimSpace(s[i : i+end])})
			i += end

		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				comments = append(comments, Comment{Line: line, Text: strings.TrimSpace(s[i:])})
				return b.String(), comments, ErrUnterminatedComment
			}
			body := s[i : i+end+4]
			comments = append(comments, Comment{Line: line, Text: strings.TrimSpace(body)})
			line += strings.Count(body, "\n")
			// A block comment reads as a token separator, not as nothing.
			b.WriteByte(' ')
			i += end + 4

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), comments, nil
}

// normalizeWhitespace trims trailing whitespace per line and drops lines left
// empty after comment stripping.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// SplitStatements splits cleaned text on semicolons outside single-quoted
// literals. Empty statements between consecutive semicolons are dropped; the
// semicolons themselves are not part of the returned statements.
func SplitStatements(s string) []string {
	var stmts []string
	var b strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(b.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		b.Reset()
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				b.WriteString(s[i:])
				i = len(s)
				continue
			}
			b.WriteString(s[i : i+end+2])
			i += end + 2
		case ';':
			flush()
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts
}

// checkBalance verifies parentheses balance outside string literals.
func checkBalance(s string) error {
	depth := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil
			}
			i += end + 1
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return ErrUnbalanced
			}
		}
		i++
	}
	if depth != 0 {
		return ErrUnbalanced
	}
	return nil
}
