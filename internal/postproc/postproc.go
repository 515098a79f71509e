// Package postproc implements the second phase of the two-phase pipeline:
// resolving a RawParser table's conditional directives, include records,
// and override cascades into a final, directive-free view.
//
// Directive evaluation walks a stack of open !if/!ifdef/!ifndef frames,
// each carrying whether its own branch matched and whether any earlier
// branch in the same chain already matched (for !elseif/!else).
package postproc

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/debug"
	"github.com/standardbeagle/edk2meta/internal/exprbridge"
	"github.com/standardbeagle/edk2meta/internal/metrics"
	"github.com/standardbeagle/edk2meta/internal/pcdvalue"
	"github.com/standardbeagle/edk2meta/internal/scope"
	"github.com/standardbeagle/edk2meta/internal/store"
	"github.com/standardbeagle/edk2meta/internal/types"
)

// Includer resolves a !include target into an already-postprocessed record
// set, carrying out its own cycle detection. internal/factory supplies the
// real implementation; tests can stub it.
type Includer interface {
	Resolve(path string, fromItem types.RecordID) ([]store.Record, error)
}

type frame struct {
	kind      types.Model
	satisfied bool
	anyTaken  bool
}

// Processor runs one raw table through directive resolution.
type Processor struct {
	file     types.FileID
	env      *scope.Environment
	macros   *scope.Index
	bridge   exprbridge.Bridge
	includer Includer
	counters *metrics.Counters
}

// New builds a Processor. bridge may be nil, in which case NewDefault() is
// used (govaluate-backed).
func New(file types.FileID, env *scope.Environment, macros *scope.Index, bridge exprbridge.Bridge, includer Includer) *Processor {
	if bridge == nil {
		bridge = exprbridge.NewDefault()
	}
	return &Processor{file: file, env: env, macros: macros, bridge: bridge, includer: includer}
}

// SetCounters attaches parse-event counters a caller wants incremented as
// this Processor walks its directive stack. Optional: a nil Processor
// counters field is simply skipped.
func (pp *Processor) SetCounters(c *metrics.Counters) {
	pp.counters = c
}

// Resolve walks raw in source order, evaluating the directive stack, and
// returns a fresh table holding only the records that survive: directive
// and include records are consumed, not carried forward, and records
// inside a false branch are dropped entirely. No CONDITIONAL_*/INCLUDE
// model survives into the resolved store.
//
// Resolve is idempotent: running it twice over the same raw input (there
// being no directive records left the second time) yields an identical
// table, since re-expanding already-expanded value fields and re-resolving
// an already-resolved PCD value leave them unchanged.
func (pp *Processor) Resolve(raw []store.Record) ([]store.Record, []string, error) {
	out := make([]store.Record, 0, len(raw))
	var warnings []string
	var stack []frame

	active := func() bool {
		for _, f := range stack {
			if !f.satisfied {
				return false
			}
		}
		return true
	}
	parentActive := func() bool {
		if len(stack) == 0 {
			return true
		}
		for _, f := range stack[:len(stack)-1] {
			if !f.satisfied {
				return false
			}
		}
		return true
	}

	for _, r := range raw {
		switch r.Model {
		case types.ModelConditionalIf, types.ModelConditionalIfdef, types.ModelConditionalIfndef:
			satisfied := false
			if parentActive() {
				var diag string
				satisfied, diag = pp.evalCondition(r.Model, r.Value1)
				if diag != "" {
					warnings = append(warnings, fmt.Sprintf("line %d: %s", r.StartLine, diag))
				}
			}
			stack = append(stack, frame{kind: r.Model, satisfied: satisfied, anyTaken: satisfied})
			debug.LogPostproc("line %d: opened %s, satisfied=%v, depth=%d", r.StartLine, r.Model, satisfied, len(stack))
			continue

		case types.ModelConditionalElseif:
			if len(stack) == 0 {
				return nil, warnings, fmt.Errorf("!elseif with no open !if at line %d", r.StartLine)
			}
			top := &stack[len(stack)-1]
			satisfied := false
			if parentActive() && !top.anyTaken {
				var diag string
				satisfied, diag = pp.evalCondition(types.ModelConditionalIf, r.Value1)
				if diag != "" {
					warnings = append(warnings, fmt.Sprintf("line %d: %s", r.StartLine, diag))
				}
			}
			top.satisfied = satisfied
			top.anyTaken = top.anyTaken || satisfied
			continue

		case types.ModelConditionalElse:
			if len(stack) == 0 {
				return nil, warnings, fmt.Errorf("!else with no open !if at line %d", r.StartLine)
			}
			top := &stack[len(stack)-1]
			top.satisfied = parentActive() && !top.anyTaken
			top.anyTaken = true
			continue

		case types.ModelConditionalEndif:
			if len(stack) == 0 {
				return nil, warnings, fmt.Errorf("!endif with no open !if at line %d", r.StartLine)
			}
			stack = stack[:len(stack)-1]
			debug.LogPostproc("line %d: closed conditional, depth=%d", r.StartLine, len(stack))
			continue

		case types.ModelInclude:
			if !active() {
				continue
			}
			path := pp.env.ExpandRecursive(r.Value1)
			if pp.includer == nil {
				return nil, warnings, fmt.Errorf("!include %q at line %d: no includer configured", path, r.StartLine)
			}
			included, err := pp.includer.Resolve(path, r.ID)
			if err != nil {
				return nil, warnings, fmt.Errorf("!include %q at line %d: %w", path, r.StartLine, err)
			}
			debug.LogPostproc("line %d: spliced %d records from !include %q", r.StartLine, len(included), path)
			out = append(out, included...)
			continue

		case types.ModelErrorStatement:
			if active() {
				return nil, warnings, fmt.Errorf("!error at line %d: %s", r.StartLine, r.Value1)
			}
			continue
		}

		if !active() {
			continue
		}
		resolved, diag := pp.resolveRecord(r)
		if diag != "" {
			warnings = append(warnings, fmt.Sprintf("line %d: %s", r.StartLine, diag))
		}
		out = append(out, resolved)
	}

	if len(stack) != 0 {
		return nil, warnings, fmt.Errorf("unterminated conditional block(s): %d still open at end of file", len(stack))
	}

	out = applyOverrides(out)
	return out, warnings, nil
}

// resolveRecord substitutes $(NAME) tokens in a surviving record's value
// fields using the merged macro environment. Raw parsing defers this for
// dialect-D (DSC) records, since a value's correct expansion can depend on
// which !if branch actually fired; by the time a record reaches here its
// governing conditionals have already been resolved, so this is the first
// point where expansion is safe. For dialects that already expand inline at
// parse time, re-expanding is a no-op. ModelPcd gets its own handling, since
// a PCD value also carries a datum type and, for FEATURE_FLAG/FIXED_AT_BUILD,
// an expression to evaluate rather than a literal to substitute.
func (pp *Processor) resolveRecord(r store.Record) (store.Record, string) {
	if r.Model == types.ModelPcd {
		return pp.resolvePcd(r)
	}
	r.Value1 = pp.env.ExpandRecursive(r.Value1)
	r.Value2 = pp.env.ExpandRecursive(r.Value2)
	r.Value3 = pp.env.ExpandRecursive(r.Value3)
	return r, ""
}

// resolvePcd expands a PCD record's value tail, then, for a category whose
// shape pcdvalue understands (FEATURE_FLAG and the FIXED_AT_BUILD-like
// default group), re-analyzes the expanded tail to recover its Value/
// DatumType/Size fields. FEATURE_FLAG and FIXED_AT_BUILD values are
// expression-valued: the expanded value is evaluated through the bridge
// rather than taken as a literal; the boolean result replaces the literal
// only for a BOOLEAN-typed value (every FEATURE_FLAG counts as BOOLEAN). For
// a numeric (UINT*) datum type the result is normalized (textual bools to
// "1"/"0"). When a datum type is known the value is checked against it; a
// PCD with no stated datum type is not checked. On success the value is
// recorded in Symbols under the PCD's short name so later !if/!ifdef tests and
// expansions see the resolved value. DYNAMIC_VPD/HII categories, and any PCD
// whose category wasn't known at parse time, only get the macro expansion.
func (pp *Processor) resolvePcd(r store.Record) (store.Record, string) {
	r.Value1 = pp.env.ExpandRecursive(r.Value1)
	r.Value2 = pp.env.ExpandRecursive(r.Value2)
	r.Value3 = pp.env.ExpandRecursive(r.Value3)

	cat := pcdvalue.ParseCategory(r.Category)
	if cat == pcdvalue.CategoryUnknown {
		return r, ""
	}
	if cat != pcdvalue.CategoryFeatureFlag && !cat.IsDefaultLike() {
		return r, ""
	}

	result, err := pcdvalue.Analyze(r.Value3, cat)
	if err != nil {
		return r, fmt.Sprintf("PCD %s.%s: %s", r.Value1, r.Value2, err)
	}

	datumType := result.DatumType
	if cat == pcdvalue.CategoryFeatureFlag {
		datumType = "BOOLEAN"
	}

	value := result.Value
	if cat.IsExpressionValued() {
		outcome := pp.bridge.Eval(value, pp.env.Snapshot())
		switch outcome.Kind {
		case exprbridge.Ok:
			// A number also reduces to Ok (nonzero/zero), so only a
			// BOOLEAN-typed value takes the TRUE/FALSE result; a plain
			// numeric FIXED_AT_BUILD constant keeps its literal.
			if datumType == "BOOLEAN" {
				value = "FALSE"
				if outcome.Value {
					value = "TRUE"
				}
			}
		case exprbridge.SymbolMissing, exprbridge.Hard:
			return r, fmt.Sprintf("PCD %s.%s: %s", r.Value1, r.Value2, outcome.Message)
		default:
			// Warning: the expanded value reduced to neither a boolean nor a
			// number (e.g. a quoted string), so fall back to the literal
			// rather than treat it as an error.
		}
	}

	if strings.HasPrefix(datumType, "UINT") {
		value = pcdvalue.NormalizeBool(value)
	}
	if datumType != "" {
		if err := pcdvalue.ValidateDatum(datumType, value); err != nil {
			return r, fmt.Sprintf("PCD %s.%s: %s", r.Value1, r.Value2, err)
		}
	}

	pp.env.DefineSymbol(r.Value2, value)

	fields := append([]string{value}, result.Raw[1:]...)
	r.Value3 = strings.Join(fields, "|")
	return r, ""
}

// evalCondition resolves !if/!ifdef/!ifndef against the macro environment.
// !ifdef/!ifndef only test definedness; !if (and !elseif, tagged as
// ModelConditionalIf by the caller) delegates to the expression bridge.
//
// A SymbolMissing, Warning, or Hard outcome from the bridge is all treated
// as false, silently skipping a branch whose condition can't be evaluated
// rather than aborting the whole parse; the second return value carries a
// one-line diagnostic for the caller to surface as a warning instead of
// losing the reason outright.
func (pp *Processor) evalCondition(kind types.Model, expr string) (bool, string) {
	if pp.counters != nil {
		pp.counters.AddDirectiveEval()
	}
	switch kind {
	case types.ModelConditionalIfdef:
		return pp.env.Has(expr), ""
	case types.ModelConditionalIfndef:
		return !pp.env.Has(expr), ""
	default:
		outcome := pp.bridge.Eval(pp.env.ExpandRecursive(expr), pp.env.Snapshot())
		switch outcome.Kind {
		case exprbridge.Ok:
			return outcome.Value, ""
		case exprbridge.SymbolMissing:
			if pp.counters != nil {
				pp.counters.AddWarning()
			}
			return false, fmt.Sprintf("%s, treating as false", outcome.Message)
		case exprbridge.Warning:
			if pp.counters != nil {
				pp.counters.AddWarning()
			}
			return false, fmt.Sprintf("%s, treating as false", outcome.Message)
		default:
			if pp.counters != nil {
				pp.counters.AddWarning()
			}
			return false, fmt.Sprintf("%s, treating as false", outcome.Message)
		}
	}
}

// applyOverrides implements the component-override pass: when two
// COMPONENT records share the same path under the same scope triple, only
// the later one (by source order) stays enabled, and its earlier sibling
// and all of that sibling's sub-section children are disabled. It runs as
// a distinct step after directive resolution rather than inline during
// parsing.
func applyOverrides(records []store.Record) []store.Record {
	type key struct {
		path  string
		scope types.ScopeTriple
	}
	last := map[key]types.RecordID{}
	for _, r := range records {
		if r.Model != types.ModelComponent {
			continue
		}
		k := key{path: r.Value1, scope: types.ScopeTriple{Arch: r.Scope1, ModuleType: r.Scope2, Store: r.Scope3}}
		last[k] = r.ID
	}

	disabled := map[types.RecordID]bool{}
	for _, r := range records {
		if r.Model != types.ModelComponent {
			continue
		}
		k := key{path: r.Value1, scope: types.ScopeTriple{Arch: r.Scope1, ModuleType: r.Scope2, Store: r.Scope3}}
		if last[k] != r.ID {
			disabled[r.ID] = true
		}
	}
	if len(disabled) == 0 {
		return records
	}

	out := make([]store.Record, 0, len(records))
	for _, r := range records {
		if disabled[r.ID] || disabled[r.BelongsToItem] {
			r.Enabled = false
		}
		out = append(out, r)
	}
	return out
}
