package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/edk2meta/internal/types"
)

func TestResolveMostSpecificOverridesCommonCommon(t *testing.T) {
	idx := NewIndex()
	idx.Define("PCDSFIXEDATBUILD", []types.ScopeTriple{types.CommonTriple}, "FOO", "common-value")
	idx.Define("PCDSFIXEDATBUILD", []types.ScopeTriple{{Arch: "IA32", ModuleType: types.ScopeCommon, Store: types.ScopeCommon}}, "FOO", "ia32-value")

	active := []types.ScopeTriple{{Arch: "IA32", ModuleType: types.ScopeCommon, Store: types.ScopeCommon}}
	merged := idx.Resolve("PCDSFIXEDATBUILD", active)
	assert.Equal(t, "ia32-value", merged["FOO"])
}

func TestResolveCommonSpecificAppliesArchWildcard(t *testing.T) {
	idx := NewIndex()
	idx.Define("PCDSFIXEDATBUILD", []types.ScopeTriple{{Arch: types.ScopeCommon, ModuleType: "DXE_DRIVER", Store: types.ScopeCommon}}, "FOO", "common-dxe")

	active := []types.ScopeTriple{{Arch: "IA32", ModuleType: "DXE_DRIVER", Store: types.ScopeCommon}}
	merged := idx.Resolve("PCDSFIXEDATBUILD", active)
	assert.Equal(t, "common-dxe", merged["FOO"], "an arch-wildcarded entry should still apply to a narrower active scope sharing its module type")
}

func TestResolveIgnoresUnrelatedSectionType(t *testing.T) {
	idx := NewIndex()
	idx.Define("PCDSFIXEDATBUILD", []types.ScopeTriple{types.CommonTriple}, "FOO", "value")

	merged := idx.Resolve("PCDSDYNAMICDEFAULT", []types.ScopeTriple{types.CommonTriple})
	assert.Empty(t, merged)
}

func TestResolveIgnoresInapplicableNarrowerScope(t *testing.T) {
	idx := NewIndex()
	idx.Define("PCDSFIXEDATBUILD", []types.ScopeTriple{{Arch: "X64", ModuleType: types.ScopeCommon, Store: types.ScopeCommon}}, "FOO", "x64-only")

	active := []types.ScopeTriple{{Arch: "IA32", ModuleType: types.ScopeCommon, Store: types.ScopeCommon}}
	merged := idx.Resolve("PCDSFIXEDATBUILD", active)
	assert.Empty(t, merged, "a macro scoped to X64 must not leak into an IA32 active scope")
}

func TestDefineMergesIntoExistingKey(t *testing.T) {
	idx := NewIndex()
	triples := []types.ScopeTriple{types.CommonTriple}
	idx.Define("PCDSFIXEDATBUILD", triples, "FOO", "1")
	idx.Define("PCDSFIXEDATBUILD", triples, "BAR", "2")

	merged := idx.Resolve("PCDSFIXEDATBUILD", triples)
	assert.Equal(t, "1", merged["FOO"])
	assert.Equal(t, "2", merged["BAR"])
	assert.Len(t, idx.entries, 1, "defining a second macro under an identical key should merge, not append a new entry")
}
