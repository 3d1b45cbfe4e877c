package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(tokens []token) []tokenKind {
	kinds := make([]tokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.kind
	}
	return kinds
}

func TestTokenizeFunctionCall(t *testing.T) {
	tokens, err := tokenize("SUM(amount)")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, tokenFunction, tokens[0].kind)
	assert.Equal(t, "SUM", tokens[0].name)
	assert.Equal(t, "amount", tokens[0].inner)
	assert.Equal(t, "SUM(amount)", tokens[0].text)
}

func TestTokenizeKeywordsAreNotCalls(t *testing.T) {
	// WHERE (a = 1) must read as keyword + group, not a WHERE() call.
	tokens, err := tokenize("WHERE (a = 1)")
	require.NoError(t, err)

	assert.Equal(t, []tokenKind{tokenIdentifier, tokenOther, tokenParen}, kindsOf(tokens))
	assert.Equal(t, "WHERE", tokens[0].text)
	assert.Equal(t, "a = 1", tokens[2].inner)
}

func TestTokenizeNestedCalls(t *testing.T) {
	tokens, err := tokenize("SUM(LEN(name))")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "SUM", tokens[0].name)
	assert.Equal(t, "LEN(name)", tokens[0].inner)
}

func TestTokenizeQuotedParens(t *testing.T) {
	// Parens inside string literals never open or close groups.
	tokens, err := tokenize("CHARINDEX('(', name)")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "CHARINDEX", tokens[0].name)
	assert.Equal(t, "'(', name", tokens[0].inner)
}

func TestTokenizeWhitespaceBeforeParen(t *testing.T) {
	tokens, err := tokenize("COUNT (id)")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, tokenFunction, tokens[0].kind)
	assert.Equal(t, "COUNT", tokens[0].name)
}

func TestTokenizeUnbalanced(t *testing.T) {
	for _, in := range []string{
		"UPPER(name",
		"SELECT a) FROM t",
		"f(g(x)",
	} {
		_, err := tokenize(in)
		assert.ErrorIs(t, err, errUnbalanced, in)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	// Concatenating token text must reproduce the input.
	inputs := []string{
		"SELECT a, SUM(b) FROM t WHERE (c = 'x(y)') GROUP BY a",
		"IIF(ISNULL(x) > 0, 'yes', 'no')",
		"plain text without calls",
	}
	for _, in := range inputs {
		tokens, err := tokenize(in)
		require.NoError(t, err, in)
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(tok.text)
		}
		assert.Equal(t, in, b.String())
	}
}
