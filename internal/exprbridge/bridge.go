// Package exprbridge defines the interface PostProcessor uses to evaluate
// !if/!elseif expressions and FEATURE_FLAG/FIXED_AT_BUILD PCD values,
// together with a default implementation. Full expression-grammar
// evaluation lives outside the core parser; this package only defines the
// surface the core demands of it.
package exprbridge

import (
	"fmt"

	govaluate "gopkg.in/Knetic/govaluate.v3"
)

// Outcome models the tagged result an expression evaluation produces:
// unknown symbol, warning expression, and bad expression each get their
// own OutcomeKind rather than a distinct error/exception type, so the
// caller can switch on one value instead of doing type assertions.
type Outcome struct {
	Kind  OutcomeKind
	Value bool
	// Symbol is set when Kind == SymbolMissing.
	Symbol string
	// Message carries the warning or hard-error text.
	Message string
}

type OutcomeKind int

const (
	Ok OutcomeKind = iota
	SymbolMissing
	Warning
	Hard
)

// Bridge is the interface PostProcessor calls against. A caller that does
// not need full expression semantics (e.g. a test fixture) can supply a
// stub implementation.
type Bridge interface {
	// Eval evaluates expr against the given symbol table (already merged
	// by macro-environment precedence) and returns a tagged Outcome.
	Eval(expr string, symbols map[string]string) Outcome
}

// Default is a govaluate-backed Bridge. Symbol lookups that miss produce
// OutcomeKind SymbolMissing rather than failing Eval outright, mirroring
// the original's distinction between "undefined macro" (often tolerated as
// false) and a genuinely malformed expression.
type Default struct{}

func NewDefault() *Default { return &Default{} }

func (d *Default) Eval(expr string, symbols map[string]string) Outcome {
	params := make(map[string]interface{}, len(symbols))
	for k, v := range symbols {
		params[k] = coerce(v)
	}

	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return Outcome{Kind: Hard, Message: fmt.Sprintf("bad expression %q: %v", expr, err)}
	}

	for _, v := range evaluable.Vars() {
		if _, ok := symbols[v]; !ok {
			// govaluate only lexes lowercase true/false as booleans, so the
			// TRUE/True/FALSE/False spellings arrive here as variables.
			if b, isBool := coerce(v).(bool); isBool {
				params[v] = b
				continue
			}
			return Outcome{Kind: SymbolMissing, Symbol: v, Message: fmt.Sprintf("undefined symbol %q in %q", v, expr)}
		}
	}

	result, err := evaluable.Evaluate(params)
	if err != nil {
		return Outcome{Kind: Hard, Message: fmt.Sprintf("failed to evaluate %q: %v", expr, err)}
	}

	switch v := result.(type) {
	case bool:
		return Outcome{Kind: Ok, Value: v}
	case float64:
		return Outcome{Kind: Ok, Value: v != 0}
	default:
		return Outcome{Kind: Warning, Message: fmt.Sprintf("expression %q did not reduce to a boolean (got %T)", expr, result)}
	}
}

// coerce attempts numeric/bool parsing of a raw macro value the way the
// build system treats PCD literals, falling back to the raw string so
// comparisons against string constants still work.
func coerce(v string) interface{} {
	switch v {
	case "TRUE", "True", "true":
		return true
	case "FALSE", "False", "false":
		return false
	}
	var i int64
	var f float64
	if _, err := fmt.Sscanf(v, "%d", &i); err == nil && fmt.Sprintf("%d", i) == v {
		return float64(i)
	}
	if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
		return f
	}
	return v
}
