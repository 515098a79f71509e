// Package scope computes which macros are visible at a given point in a
// platform description file, given the active section type and the set of
// scope triples declared by the current section header: a macro defined in
// a wide scope (e.g. COMMON arch) must be visible in a narrower scope (e.g.
// X64), but never the reverse.
package scope

import (
	"strings"

	"github.com/standardbeagle/edk2meta/internal/types"
)

// SectionKey identifies one entry of the SectionMacros layer: the section
// type the macros were declared under, plus the tuple of scope triples that
// were active at the DEFINE line.
type SectionKey struct {
	SectionType string
	Triples     []types.ScopeTriple
}

// Index is the SectionMacros layer: every DEFINE seen so far inside
// non-header sections, keyed by the scope context it was declared in.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	key    SectionKey
	macros map[string]string
}

// NewIndex returns an empty SectionMacros index.
func NewIndex() *Index {
	return &Index{}
}

// Define records a macro under the given section type and active triples,
// merging into any existing entry with an identical key.
func (idx *Index) Define(sectionType string, triples []types.ScopeTriple, name, value string) {
	key := SectionKey{SectionType: strings.ToUpper(sectionType), Triples: triples}
	for i := range idx.entries {
		if sameKey(idx.entries[i].key, key) {
			idx.entries[i].macros[name] = value
			return
		}
	}
	idx.entries = append(idx.entries, indexEntry{key: key, macros: map[string]string{name: value}})
}

func sameKey(a, b SectionKey) bool {
	if a.SectionType != b.SectionType || len(a.Triples) != len(b.Triples) {
		return false
	}
	for _, t := range a.Triples {
		if !containsTriple(b.Triples, t) {
			return false
		}
	}
	return true
}

func containsTriple(list []types.ScopeTriple, t types.ScopeTriple) bool {
	for _, o := range list {
		if o.Equal(t) {
			return true
		}
	}
	return false
}

// specificity levels, ordered widest to narrowest for merge purposes.
type level int

const (
	levelNone level = iota
	levelCommonCommon
	levelCommonSpecific
	levelMostSpecific
)

// classify implements the three-rule applicability test: most-specific
// exact match, then common-specific wildcard match, then common-common
// all-wildcard match.
func classify(key SectionKey, active []types.ScopeTriple) level {
	if len(key.Triples) == 0 {
		return levelNone
	}

	// Rule 1: most specific — key contains every active triple exactly.
	mostSpecific := true
	for _, a := range active {
		if !containsTriple(key.Triples, a) {
			mostSpecific = false
			break
		}
	}
	if mostSpecific {
		return levelMostSpecific
	}

	// Rule 2: common-specific — for every active triple, the key contains
	// that triple, or its arch-wildcarded form, or its module-wildcarded
	// form.
	commonSpecific := true
	for _, a := range active {
		archWild := types.ScopeTriple{Arch: types.ScopeCommon, ModuleType: a.ModuleType, Store: types.ScopeCommon}
		modWild := types.ScopeTriple{Arch: a.Arch, ModuleType: types.ScopeCommon, Store: types.ScopeCommon}
		if !containsTriple(key.Triples, a) && !containsTriple(key.Triples, archWild) && !containsTriple(key.Triples, modWild) {
			commonSpecific = false
			break
		}
	}
	if commonSpecific {
		return levelCommonSpecific
	}

	// Rule 3: common-common — key contains the all-wildcard triple.
	if containsTriple(key.Triples, types.CommonTriple) {
		return levelCommonCommon
	}

	return levelNone
}

// Resolve merges every applicable entry for sectionType/active, in order
// common-common < common-specific < most-specific (later layers override
// earlier ones within the same level, and within a level insertion order
// is preserved — the SectionMacros index itself is append-only in source
// order, so this mirrors a linear walk of the original's dict).
func (idx *Index) Resolve(sectionType string, active []types.ScopeTriple) map[string]string {
	sectionType = strings.ToUpper(sectionType)
	buckets := map[level]map[string]string{
		levelCommonCommon:   {},
		levelCommonSpecific: {},
		levelMostSpecific:   {},
	}

	for _, e := range idx.entries {
		if e.key.SectionType != sectionType {
			continue
		}
		lv := classify(e.key, active)
		if lv == levelNone {
			continue
		}
		for k, v := range e.macros {
			buckets[lv][k] = v
		}
	}

	merged := map[string]string{}
	for _, lv := range []level{levelCommonCommon, levelCommonSpecific, levelMostSpecific} {
		for k, v := range buckets[lv] {
			merged[k] = v
		}
	}
	return merged
}
