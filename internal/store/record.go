// Package store implements RecordStore: the in-memory, insertion-ordered,
// per-file table of parsed Records, queryable by (model, arch, module-type,
// default-store).
package store

import (
	"github.com/standardbeagle/edk2meta/internal/types"
)

// Record is the universal parsed unit shared by all three dialects.
type Record struct {
	ID     types.RecordID
	Model  types.Model
	Value1 string
	Value2 string
	Value3 string

	Scope1 string // arch
	Scope2 string // module-type / platform
	Scope3 string // default-store (dialect D only)

	// Category carries a ModelPcd record's PCD category (e.g.
	// "FIXED_AT_BUILD"), as classified from the section it was parsed
	// under. Empty when the category wasn't known at parse time (any
	// non-PCD record, or a PCD parsed outside a categorized section).
	Category string

	BelongsToItem types.RecordID // parent record id, or InvalidID
	FromItem      types.RecordID // !include directive id that pulled this in, or InvalidID

	StartLine int
	EndLine   int

	// Condition and Included mirror the original DscLine's trailing fields:
	// Condition records the directive expression active when the record was
	// emitted (debugging aid); Included records the literal !include path
	// text for INCLUDE-model records.
	Condition string
	Included  string
	Comment   string

	Enabled bool
}

// dummyRecord is the end-of-table sentinel: ID < 0, never visible to
// queries. Its presence marks a table as fully populated.
func dummyRecord() Record {
	return Record{
		ID:            -1,
		Model:         types.ModelUnknown,
		BelongsToItem: types.InvalidID,
		FromItem:      types.InvalidID,
		StartLine:     -1,
		EndLine:       -1,
		Enabled:       false,
	}
}
