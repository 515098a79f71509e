package rawparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/edk2meta/internal/scope"
	"github.com/standardbeagle/edk2meta/internal/types"
)

func newTestParser(t *testing.T, dialect types.Dialect) *Parser {
	t.Helper()
	env := scope.NewEnvironment(nil, nil)
	return New(dialect, types.FileID(1), "Test."+dialect.String(), env, types.InvalidID, false)
}

func TestParseHeaderAndDefine(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[Defines]
  PLATFORM_NAME = TestPlatform
  DEFINE FOO = bar
`
	require.NoError(t, p.Parse([]byte(src)))

	rows := p.Table().GetRaw()
	var sawHeader, sawDefine bool
	for _, r := range rows {
		if r.Model == types.ModelHeader && r.Value1 == "PLATFORM_NAME" {
			sawHeader = true
			assert.Equal(t, "TestPlatform", r.Value2)
		}
		if r.Model == types.ModelDefine && r.Value1 == "FOO" {
			sawDefine = true
			assert.Equal(t, "bar", r.Value2)
		}
	}
	assert.True(t, sawHeader, "expected a HEADER record for PLATFORM_NAME")
	assert.True(t, sawDefine, "expected a DEFINE record for FOO")
}

// A section header declaring n scope triples yields exactly n records for
// the one source line underneath it.
func TestScopePropagationMultipleTriples(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[PcdsFixedAtBuild.IA32, PcdsFixedAtBuild.X64]
  gEfiMdePkgTokenSpaceGuid.PcdDebugPropertyMask|0x0F
`
	require.NoError(t, p.Parse([]byte(src)))

	var pcdRows int
	var sawIA32, sawX64 bool
	for _, r := range p.Table().GetRaw() {
		if r.Model == types.ModelPcd {
			pcdRows++
			switch r.Scope1 {
			case "IA32":
				sawIA32 = true
			case "X64":
				sawX64 = true
			}
		}
	}
	assert.Equal(t, 2, pcdRows)
	assert.True(t, sawIA32)
	assert.True(t, sawX64)
}

func TestSectionHeaderMixingCommonIsRejected(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := "[PcdsFixedAtBuild.COMMON, PcdsFixedAtBuild.IA32]\n"
	err := p.Parse([]byte(src))
	assert.Error(t, err)
}

func TestUnknownSectionIsFatal(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	err := p.Parse([]byte("[NotARealSection]\n"))
	assert.Error(t, err)
}

// A comment immediately preceding a record attaches to that record; a
// trailing, unattached comment becomes COMMENT_TAIL once a section has been
// seen.
func TestCommentAttachmentAndTail(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[Defines]
  # leading comment
  PLATFORM_NAME = TestPlatform
  # trailing comment
`
	require.NoError(t, p.Parse([]byte(src)))

	rows := p.Table().GetRaw()
	var headerID types.RecordID = types.InvalidID
	var attached, tail int
	for _, r := range rows {
		if r.Model == types.ModelHeader {
			headerID = r.ID
		}
	}
	require.NotEqual(t, types.InvalidID, headerID)
	for _, r := range rows {
		if r.Model == types.ModelComment && r.BelongsToItem == headerID {
			attached++
			assert.Equal(t, "leading comment", r.Value1)
		}
		if r.Model == types.ModelCommentTail {
			tail++
			assert.Equal(t, "trailing comment", r.Value1)
		}
	}
	assert.Equal(t, 1, attached)
	assert.Equal(t, 1, tail)
}

// A comments-only file (no section header ever seen) tags its comments
// COMMENT_HEADER rather than COMMENT_TAIL.
func TestCommentsOnlyFileTaggedHeader(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	require.NoError(t, p.Parse([]byte("# just a comment\n# and another\n")))

	rows := p.Table().GetRaw()
	var headerComments int
	for _, r := range rows {
		if r.Model == types.ModelCommentHeader {
			headerComments++
		}
	}
	assert.Equal(t, 2, headerComments)
}

func TestRecordIDsAreMonotonic(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[Defines]
  A = 1
  B = 2
  C = 3
`
	require.NoError(t, p.Parse([]byte(src)))
	rows := p.Table().GetRaw()
	var last types.RecordID = -2
	for _, r := range rows {
		if r.ID == -1 {
			continue // end-of-table sentinel
		}
		assert.Greater(t, int64(r.ID), int64(last))
		last = r.ID
	}
}

func TestDirectivesAreDialectDscOnly(t *testing.T) {
	p := newTestParser(t, types.DialectInf)
	err := p.Parse([]byte("!include Foo.fdf\n"))
	assert.Error(t, err)
}

func TestIncludeDirectiveRequiresPath(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	err := p.Parse([]byte("[Defines]\n!include\n"))
	assert.Error(t, err)
}

func TestIfDirectiveEmitsConditionalRecord(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[Defines]
!if $(TARGET) == "DEBUG"
  PLATFORM_NAME = Debug
!endif
`
	require.NoError(t, p.Parse([]byte(src)))

	var sawIf, sawEndif bool
	for _, r := range p.Table().GetRaw() {
		if r.Model == types.ModelConditionalIf {
			sawIf = true
			assert.Equal(t, `$(TARGET) == "DEBUG"`, r.Value1)
		}
		if r.Model == types.ModelConditionalEndif {
			sawEndif = true
		}
	}
	assert.True(t, sawIf)
	assert.True(t, sawEndif)
}

func TestComponentSubsectionOwnership(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	src := `[Components]
  MdeModulePkg/Core/Dxe/DxeMain.inf {
    [LibraryClasses]
      PcdLib|MdePkg/Library/BasePcdLibNull/BasePcdLibNull.inf
  }
`
	require.NoError(t, p.Parse([]byte(src)))

	rows := p.Table().GetRaw()
	var componentID types.RecordID = types.InvalidID
	for _, r := range rows {
		if r.Model == types.ModelComponent {
			componentID = r.ID
		}
	}
	require.NotEqual(t, types.InvalidID, componentID)

	var sawOwnedPath bool
	for _, r := range rows {
		if r.Model == types.ModelPath && r.BelongsToItem == componentID {
			sawOwnedPath = true
		}
	}
	assert.True(t, sawOwnedPath, "expected the library class line to belong to its owning component")
}

func TestVersionFieldValidation(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	err := p.Parse([]byte("[Defines]\n  DSC_SPECIFICATION = 0x00010005\n"))
	assert.NoError(t, err)

	p2 := newTestParser(t, types.DialectDsc)
	err = p2.Parse([]byte("[Defines]\n  DSC_SPECIFICATION = not-a-version\n"))
	assert.Error(t, err)
}

func TestEndOfTableSentinel(t *testing.T) {
	p := newTestParser(t, types.DialectDsc)
	require.NoError(t, p.Parse([]byte("[Defines]\n  A = 1\n")))
	assert.True(t, p.Table().IsIntegrity())
}

// Parse is idempotent in the sense that running the same content through a
// fresh Parser twice yields the same record shape.
func TestParseIsIdempotentAcrossFreshParsers(t *testing.T) {
	src := []byte("[Defines]\n  PLATFORM_NAME = TestPlatform\n")

	p1 := newTestParser(t, types.DialectDsc)
	require.NoError(t, p1.Parse(src))
	p2 := newTestParser(t, types.DialectDsc)
	require.NoError(t, p2.Parse(src))

	rows1 := p1.Table().GetRaw()
	rows2 := p2.Table().GetRaw()
	require.Equal(t, len(rows1), len(rows2))
	for i := range rows1 {
		assert.Equal(t, rows1[i].Model, rows2[i].Model)
		assert.Equal(t, rows1[i].Value1, rows2[i].Value1)
		assert.Equal(t, rows1[i].Value2, rows2[i].Value2)
	}
}
