package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/edk2meta/internal/idcodec"
	"github.com/standardbeagle/edk2meta/internal/store"
	"github.com/standardbeagle/edk2meta/internal/types"
)

func TestModelFromName(t *testing.T) {
	cases := []struct {
		in    string
		want  types.Model
		found bool
	}{
		{"PCD", types.ModelPcd, true},
		{"pcd", types.ModelPcd, true},
		{"component", types.ModelComponent, true},
		{"LIBRARY_CLASS", types.ModelLibraryClass, true},
		{"not-a-model", types.ModelUnknown, false},
	}
	for _, c := range cases {
		got, ok := modelFromName(c.in)
		assert.Equal(t, c.found, ok, c.in)
		if c.found {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestToRecordView(t *testing.T) {
	r := store.Record{
		ID:            types.NewRecordID(1, 5),
		Model:         types.ModelPcd,
		Value1:        "gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel",
		Value2:        "0x80000000",
		Scope1:        "X64",
		Scope2:        types.ScopeCommon,
		BelongsToItem: types.InvalidID,
		FromItem:      types.InvalidID,
		StartLine:     10,
		EndLine:       10,
		Enabled:       true,
	}
	v := toRecordView(r)
	assert.Equal(t, "PCD", v.Model)
	assert.Equal(t, "gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel", v.Value1)
	assert.Equal(t, "X64", v.Scope1)
	assert.Empty(t, v.BelongsToItem)
	assert.Empty(t, v.FromItem)
}

func TestSuggestModelName(t *testing.T) {
	assert.Equal(t, "COMPONENT", suggestModelName("COMPONANT"))
	assert.Equal(t, "", suggestModelName("QQQQQQQQQQ"))
}

func TestQueryByID(t *testing.T) {
	table := store.New(1)
	id := table.Insert(store.InsertParams{
		Model:     types.ModelComponent,
		Value1:    "MdeModulePkg/Core/Dxe/DxeMain.inf",
		Scope1:    types.ScopeCommon,
		StartLine: 3,
		Enabled:   true,
	})

	err := queryByID(table, idcodec.EncodeRecordID(id))
	assert.NoError(t, err)
}
