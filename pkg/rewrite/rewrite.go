// Package rewrite implements the ordered, regex-based rewrite engine that
// converts Tableau calculation syntax to Microsoft Fabric T-SQL.
//
// Rules are conservative: when an automatic rewrite would be ambiguous the
// rule leaves the input untouched and records a flag for manual review.
// Rules are pure: Apply returns the rewritten text plus a list of side
// effects (category counts and flags) that the caller applies to its ledger,
// so no mutation happens during text scanning.
package rewrite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fabricshift/fabricshift/pkg/mapping"
)

// Flag reasons shared with the line attribution pass. The attribution pass
// keys its re-scan patterns off these exact strings.
const (
	ReasonMedian     = "MEDIAN requires PERCENTILE_CONT(0.5) WITHIN GROUP rewrite"
	ReasonSplitIndex = "SPLIT with index != 1 requires manual rewrite"
	ReasonLOD        = "level-of-detail expressions {FIXED/INCLUDE/EXCLUDE} are not supported"
)

// CastReviewReason is the flag reason for a type-cast helper whose argument
// could not be isolated safely.
func CastReviewReason(fn string) string {
	return fn + " conversion requires manual review"
}

// UnsupportedReason is the flag reason for a function absent from the
// mapping table.
func UnsupportedReason(fn string) string {
	return fn + " function not supported"
}

// EffectKind discriminates rule side effects.
type EffectKind int

const (
	// EffectCount increments a per-category conversion counter.
	EffectCount EffectKind = iota
	// EffectFlag records a (line, reason) item for manual review. Rules
	// operate on the whole query string, so Line is the 0 sentinel and the
	// attribution pass derives real line numbers later.
	EffectFlag
)

// Effect is a single side effect produced by a rule.
type Effect struct {
	Kind     EffectKind
	Category mapping.Category // EffectCount
	Line     int              // EffectFlag
	Reason   string           // EffectFlag
}

func countEffect(cat mapping.Category) Effect {
	return Effect{Kind: EffectCount, Category: cat}
}

func flagEffect(reason string) Effect {
	return Effect{Kind: EffectFlag, Line: 0, Reason: reason}
}

// Precompiled patterns. All function matches are word-boundary anchored so a
// rewrite of LOG cannot corrupt an identifier like LOGIN.
var (
	reComment      = regexp.MustCompile(`//`)
	reTrue         = regexp.MustCompile(`(?i)\bTRUE\b`)
	reFalse        = regexp.MustCompile(`(?i)\bFALSE\b`)
	reBracketIdent = regexp.MustCompile(`\[([^\]]+)\]`)

	reIf           = regexp.MustCompile(`(?i)\bIF\s*\(`)
	reIfnull       = regexp.MustCompile(`(?i)\bIFNULL\s*\(`)
	reNow          = regexp.MustCompile(`(?i)\bNOW\s*\(\s*\)`)
	reToday        = regexp.MustCompile(`(?i)\bTODAY\s*\(\s*\)`)
	reLength       = regexp.MustCompile(`(?i)\bLENGTH\s*\(`)
	reSubstr       = regexp.MustCompile(`(?i)\bSUBSTR\s*\(`)
	reMakedate     = regexp.MustCompile(`(?i)\bMAKEDATE\s*\(`)
	reMakedatetime = regexp.MustCompile(`(?i)\bMAKEDATETIME\s*\(`)
	reZn           = regexp.MustCompile(`(?i)\bZN\s*\(`)
	reLog          = regexp.MustCompile(`(?i)\bLOG\s*\(`)
	reLn           = regexp.MustCompile(`(?i)\bLN\s*\(`)

	reSplit      = regexp.MustCompile(`(?i)\bSPLIT\s*\(\s*([^,]+?)\s*,\s*'([^']*)'\s*,\s*(\d+)\s*\)`)
	reStartswith = regexp.MustCompile(`(?i)\bSTARTSWITH\s*\(\s*([^,]+?)\s*,\s*'([^']*)'\s*\)`)
	reEndswith   = regexp.MustCompile(`(?i)\bENDSWITH\s*\(\s*([^,]+?)\s*,\s*'([^']*)'\s*\)`)
	reContains   = regexp.MustCompile(`(?i)\bCONTAINS\s*\(\s*([^,]+?)\s*,\s*'([^']*)'\s*(?:,\s*[^\)]*)?\)`)
	reFind       = regexp.MustCompile(`(?i)\bFIND\s*\(\s*([^,]+?)\s*,\s*'([^']*)'\s*\)`)

	reMedian = regexp.MustCompile(`(?i)\bMEDIAN\s*\(`)
	reLOD    = regexp.MustCompile(`(?i)\{\s*(FIXED|INCLUDE|EXCLUDE)\b`)

	castPatterns = map[string]*regexp.Regexp{
		"INT":   regexp.MustCompile(`(?i)\bINT\s*\(`),
		"STR":   regexp.MustCompile(`(?i)\bSTR\s*\(`),
		"FLOAT": regexp.MustCompile(`(?i)\bFLOAT\s*\(`),
		"DATE":  regexp.MustCompile(`(?i)\bDATE\s*\(`),
	}
)

// DefaultVarcharLen is the VARCHAR width used for STR() when none is
// configured.
const DefaultVarcharLen = 20

type rule struct {
	name  string
	apply func(text string) (string, []Effect)
}

// Engine applies the fixed, ordered rule list.
type Engine struct {
	varcharLen int
	rules      []rule
}

// Option configures an Engine.
type Option func(*Engine)

// WithVarcharLen sets the VARCHAR width for STR() rewrites.
func WithVarcharLen(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.varcharLen = n
		}
	}
}

// NewEngine constructs the engine with the fixed rule order: syntactic
// normalization first (comment style, boolean literals, bracketed
// identifiers), then one-token function renames, then parameterized rewrites
// that consume argument text, then flag-only detections.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{varcharLen: DefaultVarcharLen}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = []rule{
		{"comment-style", normalizeRule(reComment, "--")},
		{"true-literal", normalizeRule(reTrue, "1")},
		{"false-literal", normalizeRule(reFalse, "0")},
		{"if", renameRule(reIf, "IIF(", mapping.CategoryLogical)},
		{"ifnull", renameRule(reIfnull, "ISNULL(", mapping.CategoryLogical)},
		{"zn", renameRule(reZn, "ISNULL(", mapping.CategoryLogical)},
		{"now", renameRule(reNow, "GETDATE()", mapping.CategoryDate)},
		{"today", renameRule(reToday, "CAST(GETDATE() AS DATE)", mapping.CategoryDate)},
		{"length", renameRule(reLength, "LEN(", mapping.CategoryString)},
		{"substr", renameRule(reSubstr, "SUBSTRING(", mapping.CategoryString)},
		{"makedate", renameRule(reMakedate, "DATEFROMPARTS(", mapping.CategoryDate)},
		{"makedatetime", renameRule(reMakedatetime, "DATETIMEFROMPARTS(", mapping.CategoryDate)},
		// LOG (Tableau base-10) must rewrite before LN: LN produces LOG(,
		// which the LOG rule would otherwise immediately turn into LOG10(.
		{"log", renameRule(reLog, "LOG10(", mapping.CategoryMathematical)},
		{"ln", renameRule(reLn, "LOG(", mapping.CategoryMathematical)},
		{"bracket-idents", normalizeTemplateRule(reBracketIdent, "$1")},
		{"cast-int", e.castRule("INT", func() string { return "INT" })},
		{"cast-str", e.castRule("STR", func() string { return "VARCHAR(" + strconv.Itoa(e.varcharLen) + ")" })},
		{"cast-float", e.castRule("FLOAT", func() string { return "FLOAT" })},
		{"cast-date", e.castRule("DATE", func() string { return "DATE" })},
		{"split", splitRule},
		{"startswith", twoArgRule(reStartswith, func(value, lit string) string {
			return "CHARINDEX('" + lit + "', " + value + ") = 1"
		})},
		{"endswith", twoArgRule(reEndswith, func(value, lit string) string {
			return "RIGHT(" + value + ", LEN('" + lit + "')) = '" + lit + "'"
		})},
		{"contains", twoArgRule(reContains, func(value, lit string) string {
			return "CHARINDEX('" + lit + "', " + value + ") > 0"
		})},
		{"find", twoArgRule(reFind, func(value, lit string) string {
			return "CHARINDEX('" + lit + "', " + value + ")"
		})},
		{"median", detectRule(reMedian, ReasonMedian)},
		{"lod", detectRule(reLOD, ReasonLOD)},
	}
	return e
}

// Apply runs every rule in order and returns the rewritten text plus the
// accumulated side effects.
func (e *Engine) Apply(text string) (string, []Effect) {
	if text == "" {
		return text, nil
	}
	var effects []Effect
	for _, r := range e.rules {
		var ruleEffects []Effect
		text, ruleEffects = r.apply(text)
		effects = append(effects, ruleEffects...)
	}
	return text, effects
}

// normalizeRule is an unconditional, uncounted substitution.
func normalizeRule(re *regexp.Regexp, replacement string) func(string) (string, []Effect) {
	return func(text string) (string, []Effect) {
		return re.ReplaceAllLiteralString(text, replacement), nil
	}
}

// normalizeTemplateRule is like normalizeRule but the replacement may
// reference capture groups.
func normalizeTemplateRule(re *regexp.Regexp, template string) func(string) (string, []Effect) {
	return func(text string) (string, []Effect) {
		return re.ReplaceAllString(text, template), nil
	}
}

// renameRule substitutes a function name and counts one conversion per
// occurrence.
func renameRule(re *regexp.Regexp, replacement string, cat mapping.Category) func(string) (string, []Effect) {
	return func(text string) (string, []Effect) {
		n := len(re.FindAllStringIndex(text, -1))
		if n == 0 {
			return text, nil
		}
		effects := make([]Effect, n)
		for i := range effects {
			effects[i] = countEffect(cat)
		}
		return re.ReplaceAllLiteralString(text, replacement), effects
	}
}

// twoArgRule rewrites FN(value, 'literal') shapes. These are safe rewrites
// and are not flagged.
func twoArgRule(re *regexp.Regexp, build func(value, lit string) string) func(string) (string, []Effect) {
	return func(text string) (string, []Effect) {
		var effects []Effect
		out := re.ReplaceAllStringFunc(text, func(match string) string {
			groups := re.FindStringSubmatch(match)
			if groups == nil {
				return match
			}
			effects = append(effects, countEffect(mapping.CategoryString))
			return build(strings.TrimSpace(groups[1]), groups[2])
		})
		return out, effects
	}
}

// splitRule rewrites SPLIT(value, 'delim', 1) to a SUBSTRING/CHARINDEX pair.
// Any other index is left untouched and flagged: the engine never guesses at
// multi-token extraction semantics.
func splitRule(text string) (string, []Effect) {
	var effects []Effect
	out := reSplit.ReplaceAllStringFunc(text, func(match string) string {
		groups := reSplit.FindStringSubmatch(match)
		if groups == nil {
			return match
		}
		value := strings.TrimSpace(groups[1])
		delim := groups[2]
		if strings.TrimSpace(groups[3]) == "1" {
			effects = append(effects, countEffect(mapping.CategoryString))
			return "SUBSTRING(" + value + ", 1, CHARINDEX('" + delim + "', " + value + ") - 1)"
		}
		effects = append(effects, flagEffect(ReasonSplitIndex))
		return match
	})
	return out, effects
}

// detectRule flags every statement containing the pattern without rewriting.
func detectRule(re *regexp.Regexp, reason string) func(string) (string, []Effect) {
	return func(text string) (string, []Effect) {
		if !re.MatchString(text) {
			return text, nil
		}
		return text, []Effect{flagEffect(reason)}
	}
}

// castRule rewrites the type helpers STR/INT/FLOAT/DATE to CAST expressions.
// The single argument is isolated by balanced-parenthesis matching; if no
// balanced close exists, or the call carries more than one top-level
// argument, the rule fails closed: original text preserved plus a flag.
func (e *Engine) castRule(fn string, sqlType func() string) func(string) (string, []Effect) {
	re := castPatterns[fn]
	return func(text string) (string, []Effect) {
		var effects []Effect
		var b strings.Builder
		pos := 0
		for pos < len(text) {
			loc := re.FindStringIndex(text[pos:])
			if loc == nil {
				b.WriteString(text[pos:])
				break
			}
			start, open := pos+loc[0], pos+loc[1]-1
			arg, end, ok := isolateArgument(text, open)
			if !ok {
				effects = append(effects, flagEffect(CastReviewReason(fn)))
				b.WriteString(text[pos : pos+loc[1]])
				pos += loc[1]
				continue
			}
			b.WriteString(text[pos:start])
			b.WriteString("CAST(")
			b.WriteString(strings.TrimSpace(arg))
			b.WriteString(" AS ")
			b.WriteString(sqlType())
			b.WriteString(")")
			pos = end + 1
			effects = append(effects, countEffect(mapping.CategoryOther))
		}
		return b.String(), effects
	}
}

// isolateArgument scans from the opening parenthesis at text[open] and
// returns the enclosed argument when it is a single, balanced expression.
// Single-quoted literals are opaque to the scan. ok is false when the group
// never closes or a top-level comma splits the argument.
func isolateArgument(text string, open int) (arg string, end int, ok bool) {
	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], i, true
			}
		case ',':
			if depth == 1 {
				return "", 0, false
			}
		}
	}
	return "", 0, false
}

