package rawparser

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/types"
)

// Header is the parsed form of a '[...]' line: a section name plus every
// scope triple declared for it.
type Header struct {
	Name    string
	Triples []types.ScopeTriple
}

// parseSectionHeader implements the section-header grammar shared by all
// three dialects:
//
//	'[' name ('.' arch ('.' mod-type ('.' default-store)?)?)? (',' ...)* ']'
//
// Each comma-separated clause names the same section but a different scope
// triple; mixing COMMON with a non-COMMON value in the same dimension
// across clauses is an error (e.g. "[Foo.COMMON, Foo.IA32]" mixes arch).
func parseSectionHeader(line string) (Header, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return Header{}, fmt.Errorf("not a section header: %q", line)
	}
	inner := line[1 : len(line)-1]
	clauses := splitTopLevelComma(inner)
	if len(clauses) == 0 {
		return Header{}, fmt.Errorf("empty section header")
	}

	var name string
	var triples []types.ScopeTriple
	var sawArch, sawMod, sawStore bool
	var archCommon, modCommon, storeCommon *bool

	for i, clause := range clauses {
		parts := strings.Split(strings.TrimSpace(clause), ".")
		clauseName := strings.TrimSpace(parts[0])
		if i == 0 {
			name = clauseName
		} else if !strings.EqualFold(clauseName, name) {
			return Header{}, fmt.Errorf("section header mixes names %q and %q", name, clauseName)
		}

		arch, mod, store := types.ScopeCommon, types.ScopeCommon, types.ScopeCommon
		if len(parts) > 1 {
			arch = strings.ToUpper(strings.TrimSpace(parts[1]))
			sawArch = true
		}
		if len(parts) > 2 {
			mod = strings.ToUpper(strings.TrimSpace(parts[2]))
			sawMod = true
		}
		if len(parts) > 3 {
			store = strings.ToUpper(strings.TrimSpace(parts[3]))
			sawStore = true
		}

		if err := checkCommonMix(&archCommon, arch, "arch"); err != nil {
			return Header{}, err
		}
		if err := checkCommonMix(&modCommon, mod, "module-type"); err != nil {
			return Header{}, err
		}
		if err := checkCommonMix(&storeCommon, store, "default-store"); err != nil {
			return Header{}, err
		}

		triples = append(triples, types.ScopeTriple{Arch: arch, ModuleType: mod, Store: store})
	}

	_ = sawArch
	_ = sawMod
	_ = sawStore

	return Header{Name: name, Triples: triples}, nil
}

// checkCommonMix records whether COMMON has been seen for a dimension and
// errors if a later clause supplies a non-COMMON value for that same
// dimension (or vice versa).
func checkCommonMix(seen **bool, value, dimension string) error {
	isCommon := value == types.ScopeCommon
	if *seen == nil {
		*seen = &isCommon
		return nil
	}
	if **seen != isCommon {
		return fmt.Errorf("section header mixes COMMON and non-COMMON %s values", dimension)
	}
	return nil
}

// splitTopLevelComma splits on ',' without needing string/paren awareness —
// section header clauses never contain quoted text or parens.
func splitTopLevelComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
