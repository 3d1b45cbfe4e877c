package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareStripsLineComments(t *testing.T) {
	p := Prepare("SELECT a -- pick a\nFROM t")

	assert.True(t, p.Valid)
	assert.Equal(t, "SELECT a\nFROM t", p.Cleaned)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, 1, p.Comments[0].Line)
	assert.Equal(t, "-- pick a", p.Comments[0].Text)
}

func TestPrepareStripsBlockComments(t *testing.T) {
	p := Prepare("SELECT a /* the\ncolumn */ FROM t")

	assert.True(t, p.Valid)
	// The comment reads as a separator, leaving its surrounding spaces.
	assert.Equal(t, "SELECT a   FROM t", p.Cleaned)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, 1, p.Comments[0].Line)
	assert.Contains(t, p.Comments[0].Text, "the")
}

func TestPrepareCommentMarkersInLiterals(t *testing.T) {
	p := Prepare("SELECT 'a -- b' FROM t")

	assert.True(t, p.Valid)
	assert.Equal(t, "SELECT 'a -- b' FROM t", p.Cleaned)
	assert.Empty(t, p.Comments)
}

func TestPrepareNormalizesWhitespace(t *testing.T) {
	p := Prepare("SELECT a  \r\n\r\nFROM t\t\n")

	assert.True(t, p.Valid)
	assert.Equal(t, "SELECT a\nFROM t", p.Cleaned)
}

func TestPrepareUnbalanced(t *testing.T) {
	p := Prepare("SELECT UPPER(name FROM t")

	assert.False(t, p.Valid)
	assert.ErrorIs(t, p.Err, ErrUnbalanced)
	// Cleaned text is still returned.
	assert.Equal(t, "SELECT UPPER(name FROM t", p.Cleaned)
}

func TestPrepareUnterminatedBlockComment(t *testing.T) {
	p := Prepare("SELECT a /* oops")

	assert.False(t, p.Valid)
	assert.ErrorIs(t, p.Err, ErrUnterminatedComment)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "SELECT 1", []string{"SELECT 1"}},
		{"two", "SELECT 1; SELECT 2", []string{"SELECT 1", "SELECT 2"}},
		{"trailing semicolon", "SELECT 1;", []string{"SELECT 1"}},
		{"empty between", "SELECT 1;;SELECT 2", []string{"SELECT 1", "SELECT 2"}},
		{"semicolon in literal", "SELECT 'a;b'", []string{"SELECT 'a;b'"}},
		{"blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.in))
		})
	}
}

func TestPrepareStatements(t *testing.T) {
	p := Prepare("SELECT 1;\nSELECT 2;")

	require.Len(t, p.Statements, 2)
	assert.Equal(t, "SELECT 1", p.Statements[0])
	assert.Equal(t, "SELECT 2", p.Statements[1])
}

func TestPrepareKeepsOriginal(t *testing.T) {
	raw := "SELECT a -- c\nFROM t"
	p := Prepare(raw)
	assert.Equal(t, raw, p.Original)
}
