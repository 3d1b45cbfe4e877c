package mapping

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryDate, "DATE"},
		{CategoryString, "STRING"},
		{CategoryAggregate, "AGGREGATE"},
		{CategoryLogical, "LOGICAL"},
		{CategoryMathematical, "MATHEMATICAL"},
		{CategoryOther, "OTHER"},
		{Category(99), "OTHER"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestLookup(t *testing.T) {
	tbl := NewTable()

	tests := []struct {
		name       string
		wantTarget string
		wantOK     bool
	}{
		{"NOW", "GETDATE", true},
		{"now", "GETDATE", true}, // case insensitive
		{"Length", "LEN", true},
		{"SUBSTR", "SUBSTRING", true},
		{"ZN", "ISNULL", true},
		{"LN", "LOG", true},
		{"LOG", "LOG10", true},
		{"CUSTOM_FUNC", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tbl.Lookup(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantTarget, m.Target)
			}
		})
	}
}

func TestRequiresSpecial(t *testing.T) {
	tbl := NewTable()

	tests := []struct {
		name string
		want bool
	}{
		{"MEDIAN", true},
		{"SPLIT", true},
		{"IF", true},
		{"STR", true},
		{"INT", true},
		{"FLOAT", true},
		{"DATE", true},
		{"TODAY", true},
		{"CONTAINS", true},
		{"NOW", false},
		{"SUM", false},
		{"UNKNOWN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.RequiresSpecial(tt.name))
		})
	}
}

func TestIdentityMappingsArePresent(t *testing.T) {
	// Same-name functions still need entries so they count as conversions
	// rather than unsupported.
	tbl := NewTable()
	for _, name := range []string{"SUM", "AVG", "COUNT", "MIN", "MAX", "ABS", "UPPER", "LOWER", "DATEADD", "DATEDIFF"} {
		m, ok := tbl.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, m.Target, name)
		assert.False(t, m.Special, name)
	}
}

func TestTargetBuiltin(t *testing.T) {
	tbl := NewTable()

	assert.True(t, tbl.TargetBuiltin("GETDATE"))
	assert.True(t, tbl.TargetBuiltin("getdate"))
	assert.True(t, tbl.TargetBuiltin("IIF"))
	assert.True(t, tbl.TargetBuiltin("CHARINDEX"))
	assert.True(t, tbl.TargetBuiltin("CAST"))
	assert.False(t, tbl.TargetBuiltin("NOW"))
	assert.False(t, tbl.TargetBuiltin("CUSTOM_FUNC"))
}

func TestAllNamesSorted(t *testing.T) {
	tbl := NewTable()
	names := tbl.AllNames()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "MEDIAN")
	assert.Contains(t, names, "ZN")
}

func TestStats(t *testing.T) {
	tbl := NewTable()
	stats := tbl.Stats()

	assert.Equal(t, len(tbl.AllNames()), stats.Total)
	assert.Greater(t, stats.SpecialHandling, 0)

	sum := 0
	for _, n := range stats.PerCategory {
		sum += n
	}
	assert.Equal(t, stats.Total, sum)
}
