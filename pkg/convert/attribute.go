package convert

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fabricshift/fabricshift/pkg/rewrite"
)

// specialReasonPatterns maps the flag reasons raised without a line number to
// the pattern that locates the construct in source text.
var specialReasonPatterns = map[string]*regexp.Regexp{
	rewrite.ReasonMedian:              regexp.MustCompile(`(?i)\bMEDIAN\s*\(`),
	rewrite.ReasonSplitIndex:          regexp.MustCompile(`(?i)\bSPLIT\s*\(`),
	rewrite.ReasonLOD:                 regexp.MustCompile(`(?i)\{\s*(FIXED|INCLUDE|EXCLUDE)\b`),
	rewrite.CastReviewReason("STR"):   regexp.MustCompile(`(?i)\bSTR\s*\(`),
	rewrite.CastReviewReason("INT"):   regexp.MustCompile(`(?i)\bINT\s*\(`),
	rewrite.CastReviewReason("FLOAT"): regexp.MustCompile(`(?i)\bFLOAT\s*\(`),
	rewrite.CastReviewReason("DATE"):  regexp.MustCompile(`(?i)\bDATE\s*\(`),
}

// attributeLines derives line numbers for flags raised against the whole
// query string. Rewriting reshapes the text, so the scan runs over the
// original, pre-rewrite input: every distinct unsupported function name and
// every distinct special-handling reason already recorded is re-searched
// line by line with a word-boundary pattern.
//
// Entries carrying a valid (>0) line number are kept as-is. Sentinel (line 0)
// entries are replaced by the derived entries; a sentinel whose reason yields
// no derived line survives unchanged rather than being dropped. The result is
// deduplicated by exact (line, reason) pair in first-seen order.
//
// This is a best-effort heuristic: a name that also appears inside an
// unrelated identifier on another line can over-match. Word-boundary
// anchoring bounds that risk, it does not eliminate it.
func attributeLines(original string, m *Metrics) []Flag {
	if original == "" {
		return dedupeFlags(m.FlaggedLines)
	}
	lines := strings.Split(original, "\n")

	var derived []Flag

	// Unsupported functions, scanned in sorted order for determinism.
	unsupported := m.UnsupportedFunctions()
	sort.Strings(unsupported)
	for _, fn := range unsupported {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(fn) + `\s*\(`)
		if err != nil {
			continue
		}
		reason := rewrite.UnsupportedReason(fn)
		for idx, line := range lines {
			if re.MatchString(line) {
				derived = append(derived, Flag{Line: idx + 1, Reason: reason})
			}
		}
	}

	// Special-handling reasons recorded without line info.
	derivedReasons := make(map[string]bool)
	for _, f := range m.FlaggedLines {
		re, ok := specialReasonPatterns[f.Reason]
		if !ok || derivedReasons[f.Reason] {
			continue
		}
		derivedReasons[f.Reason] = true
		for idx, line := range lines {
			if re.MatchString(line) {
				derived = append(derived, Flag{Line: idx + 1, Reason: f.Reason})
			}
		}
	}

	// Keep attributed entries first, then derived ones, then any sentinel
	// whose reason produced no derived line.
	var merged []Flag
	for _, f := range m.FlaggedLines {
		if f.Line > 0 {
			merged = append(merged, f)
		}
	}
	merged = append(merged, derived...)
	for _, f := range m.FlaggedLines {
		if f.Line == 0 && !reasonDerived(derived, f.Reason) {
			merged = append(merged, f)
		}
	}
	return dedupeFlags(merged)
}

func reasonDerived(derived []Flag, reason string) bool {
	for _, f := range derived {
		if f.Reason == reason {
			return true
		}
	}
	return false
}

func dedupeFlags(flags []Flag) []Flag {
	seen := make(map[Flag]struct{}, len(flags))
	var out []Flag
	for _, f := range flags {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
