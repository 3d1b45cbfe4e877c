// Package mapping defines the Tableau → Microsoft Fabric function mapping table.
//
// The table is the single source of truth consulted by both conversion passes
// (the regex rewrite engine and the structural fallback converter). It is
// immutable after construction and safe for concurrent read-only use.
package mapping

import (
	"sort"
	"strings"
)

// Category classifies a function for conversion metrics.
type Category int

const (
	// CategoryDate covers date/time functions (NOW, DATEADD, MAKEDATE, ...).
	CategoryDate Category = iota
	// CategoryString covers string functions (SUBSTR, LENGTH, CONTAINS, ...).
	CategoryString
	// CategoryAggregate covers aggregate functions (SUM, MEDIAN, STDEV, ...).
	CategoryAggregate
	// CategoryLogical covers logical functions (IF, IFNULL, ZN, ...).
	CategoryLogical
	// CategoryMathematical covers math functions (ABS, LN, LOG, ...).
	CategoryMathematical
	// CategoryOther covers everything else, including type-cast helpers.
	CategoryOther
)

// String returns the metrics key for the category.
func (c Category) String() string {
	switch c {
	case CategoryDate:
		return "DATE"
	case CategoryString:
		return "STRING"
	case CategoryAggregate:
		return "AGGREGATE"
	case CategoryLogical:
		return "LOGICAL"
	case CategoryMathematical:
		return "MATHEMATICAL"
	default:
		return "OTHER"
	}
}

// Categories returns all categories in stable display order.
func Categories() []Category {
	return []Category{
		CategoryDate,
		CategoryString,
		CategoryAggregate,
		CategoryLogical,
		CategoryMathematical,
		CategoryOther,
	}
}

// Mapping describes how a single source function converts.
type Mapping struct {
	// Target is the Fabric function name, or a full expression template for
	// functions like TODAY (CAST(GETDATE() AS DATE)).
	Target string
	// Special marks functions that need more than a one-to-one name
	// substitution: argument reshaping, a templated expression, or refusal.
	Special bool
	// Category is used for per-category conversion counts.
	Category Category
}

// Table is the case-insensitive source → target function table.
type Table struct {
	entries  map[string]Mapping
	builtins map[string]struct{}
}

// Stats summarizes the table contents.
type Stats struct {
	Total           int
	PerCategory     map[Category]int
	SpecialHandling int
}

// NewTable constructs the default Tableau → Fabric table.
func NewTable() *Table {
	t := &Table{
		entries:  make(map[string]Mapping),
		builtins: make(map[string]struct{}),
	}

	add := func(name, target string, special bool, cat Category) {
		t.entries[strings.ToUpper(name)] = Mapping{Target: target, Special: special, Category: cat}
	}

	// Date functions. DATEADD/DATEDIFF share names across dialects but
	// parameter order may differ; they convert as identity renames.
	add("DATEADD", "DATEADD", false, CategoryDate)
	add("DATEDIFF", "DATEDIFF", false, CategoryDate)
	add("DATEPART", "DATEPART", false, CategoryDate)
	add("DATENAME", "DATENAME", false, CategoryDate)
	add("NOW", "GETDATE", false, CategoryDate)
	add("TODAY", "CAST(GETDATE() AS DATE)", true, CategoryDate)
	add("YEAR", "YEAR", false, CategoryDate)
	add("MONTH", "MONTH", false, CategoryDate)
	add("DAY", "DAY", false, CategoryDate)
	add("MAKEDATE", "DATEFROMPARTS", false, CategoryDate)
	add("MAKEDATETIME", "DATETIMEFROMPARTS", false, CategoryDate)

	// String functions.
	add("LEN", "LEN", false, CategoryString)
	add("LENGTH", "LEN", false, CategoryString)
	add("SUBSTR", "SUBSTRING", false, CategoryString)
	add("CONTAINS", "CHARINDEX", true, CategoryString)
	add("LEFT", "LEFT", false, CategoryString)
	add("RIGHT", "RIGHT", false, CategoryString)
	add("TRIM", "TRIM", false, CategoryString)
	add("LTRIM", "LTRIM", false, CategoryString)
	add("RTRIM", "RTRIM", false, CategoryString)
	add("UPPER", "UPPER", false, CategoryString)
	add("LOWER", "LOWER", false, CategoryString)
	add("REPLACE", "REPLACE", false, CategoryString)
	add("SPLIT", "STRING_SPLIT", true, CategoryString)
	add("FIND", "CHARINDEX", true, CategoryString)
	add("STARTSWITH", "CHARINDEX", true, CategoryString)
	add("ENDSWITH", "CHARINDEX", true, CategoryString)

	// Aggregate functions.
	add("SUM", "SUM", false, CategoryAggregate)
	add("AVG", "AVG", false, CategoryAggregate)
	add("COUNT", "COUNT", false, CategoryAggregate)
	add("MIN", "MIN", false, CategoryAggregate)
	add("MAX", "MAX", false, CategoryAggregate)
	add("STDEV", "STDEV", false, CategoryAggregate)
	add("STDEVP", "STDEVP", false, CategoryAggregate)
	add("VAR", "VAR", false, CategoryAggregate)
	add("VARP", "VARP", false, CategoryAggregate)
	add("MEDIAN", "PERCENTILE_CONT(0.5)", true, CategoryAggregate)
	add("PERCENTILE_CONT", "PERCENTILE_CONT", true, CategoryAggregate)

	// Logical functions.
	add("IF", "IIF", true, CategoryLogical)
	add("IFNULL", "ISNULL", false, CategoryLogical)
	add("ISNULL", "ISNULL", false, CategoryLogical)
	add("ZN", "ISNULL", false, CategoryLogical)

	// Type conversion helpers. All need CAST reshaping.
	add("STR", "CAST", true, CategoryOther)
	add("INT", "CAST", true, CategoryOther)
	add("FLOAT", "CAST", true, CategoryOther)
	add("DATE", "CAST", true, CategoryOther)

	// Mathematical functions. Tableau LN is the natural log and LOG is
	// base 10, so they land on LOG and LOG10 respectively.
	add("ABS", "ABS", false, CategoryMathematical)
	add("ROUND", "ROUND", false, CategoryMathematical)
	add("CEILING", "CEILING", false, CategoryMathematical)
	add("FLOOR", "FLOOR", false, CategoryMathematical)
	add("SQRT", "SQRT", false, CategoryMathematical)
	add("POWER", "POWER", false, CategoryMathematical)
	add("EXP", "EXP", false, CategoryMathematical)
	add("LN", "LOG", false, CategoryMathematical)
	add("LOG", "LOG10", false, CategoryMathematical)

	// Functions native to the target dialect. The structural pass must not
	// flag these as unsupported: they appear in already-converted text and
	// in queries written directly against Fabric.
	for _, name := range []string{
		"IIF", "GETDATE", "DATEFROMPARTS", "DATETIMEFROMPARTS",
		"LEN", "SUBSTRING", "CHARINDEX", "LOG", "LOG10", "ISNULL",
		"TRIM", "LTRIM", "RTRIM", "YEAR", "MONTH", "DAY",
		"SUM", "AVG", "COUNT", "MIN", "MAX",
		"STDEV", "STDEVP", "VAR", "VARP",
		"CAST", "LEFT", "RIGHT", "UPPER", "LOWER", "REPLACE",
		"ABS", "ROUND", "CEILING", "FLOOR", "SQRT", "POWER", "EXP",
		"DATEADD", "DATEDIFF", "DATEPART", "DATENAME",
		"PERCENTILE_CONT", "STRING_SPLIT",
	} {
		t.builtins[name] = struct{}{}
	}

	return t
}

// Lookup returns the mapping for a source function name, case-insensitively.
// An empty name is simply not found.
func (t *Table) Lookup(name string) (Mapping, bool) {
	if name == "" {
		return Mapping{}, false
	}
	m, ok := t.entries[strings.ToUpper(name)]
	return m, ok
}

// IsMapped reports whether the function has any mapping defined.
func (t *Table) IsMapped(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// RequiresSpecial reports whether the function needs special handling beyond
// a simple name substitution.
func (t *Table) RequiresSpecial(name string) bool {
	m, ok := t.Lookup(name)
	return ok && m.Special
}

// TargetBuiltin reports whether the name is a function native to the target
// dialect.
func (t *Table) TargetBuiltin(name string) bool {
	_, ok := t.builtins[strings.ToUpper(name)]
	return ok
}

// AllNames returns every mapped source function name, sorted.
func (t *Table) AllNames() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns summary statistics about the table.
func (t *Table) Stats() Stats {
	s := Stats{PerCategory: make(map[Category]int)}
	for _, m := range t.entries {
		s.Total++
		s.PerCategory[m.Category]++
		if m.Special {
			s.SpecialHandling++
		}
	}
	return s
}
