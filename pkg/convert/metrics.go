package convert

import (
	"github.com/fabricshift/fabricshift/pkg/mapping"
)

// Flag marks a construct the engine deliberately did not auto-rewrite.
// Line 0 is the "unknown line" sentinel replaced by the attribution pass.
type Flag struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Metrics is the mutable ledger for a single conversion call. A fresh
// instance is allocated per call and never reused, so state from one query
// cannot contaminate the next.
type Metrics struct {
	TotalStatements       int
	SuccessfulConversions int
	FlaggedStatements     int
	FunctionConversions   map[mapping.Category]int
	FlaggedLines          []Flag

	unsupportedOrder []string
	unsupportedSeen  map[string]struct{}
}

// NewMetrics returns an empty ledger.
func NewMetrics() *Metrics {
	return &Metrics{
		FunctionConversions: make(map[mapping.Category]int),
		unsupportedSeen:     make(map[string]struct{}),
	}
}

// AddFlag records a flagged statement needing manual review.
func (m *Metrics) AddFlag(line int, reason string) {
	m.FlaggedStatements++
	m.FlaggedLines = append(m.FlaggedLines, Flag{Line: line, Reason: reason})
}

// AddConversion records one converted function in its category.
func (m *Metrics) AddConversion(cat mapping.Category) {
	m.FunctionConversions[cat]++
}

// AddUnsupported records a function name absent from the mapping table.
// Duplicates are ignored; first-seen order is preserved.
func (m *Metrics) AddUnsupported(name string) {
	if _, seen := m.unsupportedSeen[name]; seen {
		return
	}
	m.unsupportedSeen[name] = struct{}{}
	m.unsupportedOrder = append(m.unsupportedOrder, name)
}

// UnsupportedFunctions returns the recorded names in first-seen order.
func (m *Metrics) UnsupportedFunctions() []string {
	out := make([]string, len(m.unsupportedOrder))
	copy(out, m.unsupportedOrder)
	return out
}

// Clean reports whether nothing was flagged and no unsupported function was
// seen. Successful conversion is derived from this at the moment the call
// completes, never set independently.
func (m *Metrics) Clean() bool {
	return len(m.FlaggedLines) == 0 && len(m.unsupportedOrder) == 0
}

// SuccessRate returns successfulConversions/totalStatements as a percentage,
// 0 when no statements were processed.
func (m *Metrics) SuccessRate() float64 {
	if m.TotalStatements == 0 {
		return 0
	}
	return float64(m.SuccessfulConversions) / float64(m.TotalStatements) * 100
}

// Snapshot is the serialized form of the ledger handed to display
// collaborators (CLI report, HTTP API).
type Snapshot struct {
	TotalStatements       int            `json:"total_statements"`
	SuccessfulConversions int            `json:"successful_conversions"`
	FlaggedStatements     int            `json:"flagged_statements"`
	SuccessRate           float64        `json:"success_rate"`
	FunctionConversions   map[string]int `json:"function_conversions"`
	FlaggedLines          []Flag         `json:"flagged_lines"`
	UnsupportedFunctions  []string       `json:"unsupported_functions"`
}

// Snapshot returns a copy of the ledger safe to serialize and retain.
func (m *Metrics) Snapshot() Snapshot {
	conversions := make(map[string]int, len(mapping.Categories()))
	for _, cat := range mapping.Categories() {
		conversions[cat.String()] = m.FunctionConversions[cat]
	}
	flags := make([]Flag, len(m.FlaggedLines))
	copy(flags, m.FlaggedLines)
	return Snapshot{
		TotalStatements:       m.TotalStatements,
		SuccessfulConversions: m.SuccessfulConversions,
		FlaggedStatements:     m.FlaggedStatements,
		SuccessRate:           m.SuccessRate(),
		FunctionConversions:   conversions,
		FlaggedLines:          flags,
		UnsupportedFunctions:  m.UnsupportedFunctions(),
	}
}
