package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupPrecedenceNarrowestWins(t *testing.T) {
	env := NewEnvironment(map[string]string{"NAME": "global"}, map[string]string{"NAME": "cmdline"})
	v, ok := env.Lookup("NAME")
	assert.True(t, ok)
	assert.Equal(t, "cmdline", v, "CommandLine should win over Global")

	env.DefineFileLocal("NAME", "filelocal")
	v, _ = env.Lookup("NAME")
	assert.Equal(t, "filelocal", v, "FileLocal should win over CommandLine")

	env.SetSectionMacros(map[string]string{"NAME": "section"})
	v, _ = env.Lookup("NAME")
	assert.Equal(t, "section", v, "Section should win over FileLocal")

	env.DefineSymbol("NAME", "symbol")
	v, _ = env.Lookup("NAME")
	assert.Equal(t, "symbol", v, "Symbols should win over everything else")
}

func TestHasReportsDefinedness(t *testing.T) {
	env := NewEnvironment(nil, nil)
	assert.False(t, env.Has("FOO"))
	env.DefineFileLocal("FOO", "bar")
	assert.True(t, env.Has("FOO"))
}

func TestExpandSubstitutesKnownMacrosLeavesUnknown(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.DefineFileLocal("NAME", "World")
	got := env.Expand("Hello, $(NAME)! $(UNKNOWN) remains.")
	assert.Equal(t, "Hello, World! $(UNKNOWN) remains.", got)
}

func TestExpandRecursiveFollowsChainedMacros(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.DefineFileLocal("A", "$(B)")
	env.DefineFileLocal("B", "$(C)")
	env.DefineFileLocal("C", "final")
	assert.Equal(t, "final", env.ExpandRecursive("$(A)"))
}

func TestExpandRecursiveBoundsOnCycle(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.DefineFileLocal("A", "$(B)")
	env.DefineFileLocal("B", "$(A)")
	assert.NotPanics(t, func() { env.ExpandRecursive("$(A)") })
}

func TestSnapshotFlattensAllLayers(t *testing.T) {
	env := NewEnvironment(map[string]string{"G": "g"}, map[string]string{"C": "c"})
	env.DefineFileLocal("F", "f")
	env.SetSectionMacros(map[string]string{"S": "s"})
	env.DefineSymbol("SYM", "sym")

	snap := env.Snapshot()
	assert.Equal(t, "g", snap["G"])
	assert.Equal(t, "c", snap["C"])
	assert.Equal(t, "f", snap["F"])
	assert.Equal(t, "s", snap["S"])
	assert.Equal(t, "sym", snap["SYM"])
}
