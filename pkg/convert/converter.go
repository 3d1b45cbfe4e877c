// Package convert orchestrates the Tableau → Fabric conversion pipeline:
// the regex rewrite pass, the structural fallback pass over function tokens,
// pretty-printing, and line attribution for review flags.
package convert

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fabricshift/fabricshift/pkg/format"
	"github.com/fabricshift/fabricshift/pkg/mapping"
	"github.com/fabricshift/fabricshift/pkg/rewrite"
)

// maxParenDepth bounds recursion into nested parenthesized groups so a
// pathological query with thousands of nested parens cannot exhaust the
// stack.
const maxParenDepth = 128

const reasonUnbalanced = "unbalanced parentheses: statement requires manual review"
const reasonTooDeep = "parenthesis nesting too deep for automatic conversion"

// Result is the three-output contract of a conversion call.
type Result struct {
	SQL     string
	Metrics *Metrics
	Flags   []Flag
}

// Converter runs the conversion pipeline. The mapping table is shared by
// reference and never mutated, so a single Converter is safe for concurrent
// use; every call allocates its own ledger.
type Converter struct {
	table  *mapping.Table
	engine *rewrite.Engine
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the structured logger. Logging is off by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEngine replaces the default rewrite engine, e.g. to change the STR()
// VARCHAR width.
func WithEngine(engine *rewrite.Engine) Option {
	return func(c *Converter) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// New creates a Converter over the given mapping table.
func New(table *mapping.Table, opts ...Option) *Converter {
	c := &Converter{
		table:  table,
		engine: rewrite.NewEngine(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert rewrites a single query from Tableau calculation syntax to Fabric
// T-SQL. Every failure path returns the three-output contract; nothing
// panics across this boundary. Ambiguous constructs are flagged rather than
// guessed, with original text preserved at the site.
func (c *Converter) Convert(query string) Result {
	metrics := NewMetrics()
	if strings.TrimSpace(query) == "" {
		return Result{SQL: "", Metrics: metrics}
	}
	metrics.TotalStatements = 1

	// Pass 1: ordered regex rewrites over the whole string.
	text, effects := c.engine.Apply(query)
	applyEffects(metrics, effects)

	// Pass 2: token walk over the partially-rewritten text for residual
	// function calls the regex pass did not touch.
	frag, err := c.convertStatement(text, metrics)
	if err != nil {
		// Structural failure: the caller gets the input back unchanged with
		// a single sentinel flag. No line attribution - there is no reliable
		// pattern to re-scan for.
		metrics.AddFlag(0, reasonUnbalanced)
		c.logger.Debug("structural failure", "err", err)
		return Result{SQL: query, Metrics: metrics, Flags: metrics.FlaggedLines}
	}

	converted := format.Format(frag.Text)

	// Flags were raised against the whole string; re-anchor them to lines of
	// the original input. Both passes can flag the same construct, so the
	// statement counter is recomputed from the deduplicated set.
	metrics.FlaggedLines = attributeLines(query, metrics)
	if len(metrics.FlaggedLines) > 0 {
		metrics.FlaggedStatements = 1
	} else {
		metrics.FlaggedStatements = 0
	}

	// Derived fact: a call converted successfully only when nothing was
	// flagged and no unsupported function was seen.
	if metrics.Clean() {
		metrics.SuccessfulConversions = 1
	}

	c.logger.Debug("conversion complete",
		"flags", len(metrics.FlaggedLines),
		"unsupported", len(metrics.UnsupportedFunctions()),
		"converted", frag.Converted)

	return Result{SQL: converted, Metrics: metrics, Flags: metrics.FlaggedLines}
}

// convertStatement pre-scans for unsupported functions, then rewrites the
// statement's function tokens. Detection is decoupled from rewriting so a
// function is flagged as unsupported even if a later rename happens to match
// its text.
func (c *Converter) convertStatement(text string, metrics *Metrics) (Fragment, error) {
	if err := c.scanFunctions(text, metrics, 0); err != nil {
		return Fragment{}, err
	}
	return c.convertText(text, metrics, 0)
}

// scanFunctions recursively records every function name absent from both the
// mapping table and the target dialect's builtins.
func (c *Converter) scanFunctions(text string, metrics *Metrics, depth int) error {
	if depth > maxParenDepth {
		return nil
	}
	tokens, err := tokenize(text)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		switch tok.kind {
		case tokenFunction:
			if !c.table.IsMapped(tok.name) && !c.table.TargetBuiltin(tok.name) {
				metrics.AddUnsupported(tok.name)
				metrics.AddFlag(0, rewrite.UnsupportedReason(tok.name))
			}
			if err := c.scanFunctions(tok.inner, metrics, depth+1); err != nil {
				return err
			}
		case tokenParen:
			if err := c.scanFunctions(tok.inner, metrics, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// convertText walks the statement's tokens and combines the converted
// fragments left to right.
func (c *Converter) convertText(text string, metrics *Metrics, depth int) (Fragment, error) {
	if depth > maxParenDepth {
		metrics.AddFlag(0, reasonTooDeep)
		return Fragment{Text: text, Converted: false}, nil
	}
	tokens, err := tokenize(text)
	if err != nil {
		return Fragment{}, err
	}
	frags := make([]Fragment, 0, len(tokens))
	for _, tok := range tokens {
		frag, err := c.convertToken(tok, metrics, depth)
		if err != nil {
			return Fragment{}, err
		}
		frags = append(frags, frag)
	}
	return CombineAll(frags), nil
}

// convertToken dispatches on the token variant.
func (c *Converter) convertToken(tok token, metrics *Metrics, depth int) (Fragment, error) {
	switch tok.kind {
	case tokenFunction:
		return c.convertFunction(tok, metrics, depth)
	case tokenParen:
		inner, err := c.convertText(tok.inner, metrics, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		return Fragment{Text: "(" + inner.Text + ")", Converted: inner.Converted}, nil
	case tokenIdentifier, tokenOther:
		return Fragment{Text: tok.text, Converted: true}, nil
	default:
		return Fragment{Text: tok.text, Converted: true}, nil
	}
}

// convertFunction applies the mapping table to one function call. Arguments
// of mapped and builtin functions are converted recursively; unknown and
// refused constructs keep their argument text verbatim.
func (c *Converter) convertFunction(tok token, metrics *Metrics, depth int) (Fragment, error) {
	m, ok := c.table.Lookup(tok.name)
	if !ok {
		if c.table.TargetBuiltin(tok.name) {
			// Already target syntax (GETDATE after a NOW rewrite, or a query
			// written directly against Fabric). Only the arguments still need
			// a look.
			inner, err := c.convertText(tok.inner, metrics, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			return Fragment{Text: tok.name + "(" + inner.Text + ")", Converted: inner.Converted}, nil
		}
		// Unknown construct: preserved verbatim, never dropped or corrupted.
		// The pre-scan already flagged it.
		metrics.AddUnsupported(tok.name)
		return Fragment{Text: tok.text, Converted: false}, nil
	}

	metrics.AddConversion(m.Category)

	if m.Special {
		return c.convertSpecial(tok, m, metrics), nil
	}

	// Simple mapping: rename plus recursive conversion of the arguments.
	inner, err := c.convertText(tok.inner, metrics, depth+1)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Text: m.Target + "(" + inner.Text + ")", Converted: inner.Converted}, nil
}

// convertSpecial handles functions whose conversion needs more than a name
// substitution. The policy mirrors the regex pass so both passes agree.
func (c *Converter) convertSpecial(tok token, m mapping.Mapping, metrics *Metrics) Fragment {
	switch strings.ToUpper(tok.name) {
	case "MEDIAN":
		// A valid ordered-set aggregate needs the enclosing ORDER BY or
		// partition context, which this pass does not reconstruct.
		metrics.AddFlag(0, rewrite.ReasonMedian)
		return Fragment{Text: tok.text, Converted: false}

	case "TODAY":
		return Fragment{Text: m.Target, Converted: true}

	case "SPLIT":
		// Only SPLIT(value, 'delim', 1) converts mechanically, and the regex
		// pass owns that shape. Anything left over is preserved verbatim; a
		// STRING_SPLIT rename would silently change semantics.
		metrics.AddFlag(0, rewrite.ReasonSplitIndex)
		return Fragment{Text: tok.text, Converted: false}

	case "STR", "INT", "FLOAT", "DATE":
		// Normally consumed by the regex pass; reaching here means argument
		// isolation failed there too.
		metrics.AddFlag(0, rewrite.CastReviewReason(strings.ToUpper(tok.name)))
		return Fragment{Text: tok.text, Converted: false}

	default:
		// IF, CONTAINS, STARTSWITH, ENDSWITH, PERCENTILE_CONT: the regex
		// pass owns their argument reshaping; any residual occurrence gets
		// the plain rename.
		return Fragment{Text: m.Target + tok.text[len(tok.name):], Converted: true}
	}
}

func applyEffects(metrics *Metrics, effects []rewrite.Effect) {
	for _, ef := range effects {
		switch ef.Kind {
		case rewrite.EffectCount:
			metrics.AddConversion(ef.Category)
		case rewrite.EffectFlag:
			metrics.AddFlag(ef.Line, ef.Reason)
		}
	}
}
