package store

import (
	"strings"

	"github.com/standardbeagle/edk2meta/internal/idcodec"
	"github.com/standardbeagle/edk2meta/internal/types"
)

// Table is a RecordStore for a single file. The three dialects shape their
// records differently (INF and DEC use two scope fields, DSC uses all
// three scope fields plus FromItem); all three are served by this one
// implementation, since the shapes differ only in which Insert/Query
// parameters a dialect's parser actually supplies, not in the underlying
// table mechanics.
type Table struct {
	file    types.FileID
	counter int64
	rows    []Record
	ended   bool
}

// New creates an empty table scoped to one file's id block.
func New(file types.FileID) *Table {
	return &Table{file: file}
}

// FromRecords rebuilds a queryable Table from an already-resolved record
// slice, such as a factory.ParseResult's Records. cmd/edk2meta's query
// subcommand uses this to run Query/ByID against a file it only has the
// flat, post-directive-resolution record list for.
func FromRecords(file types.FileID, records []Record) *Table {
	t := &Table{file: file}
	for _, r := range records {
		t.Append(r)
	}
	return t
}

// InsertParams carries every field a dialect's parser may supply for one
// record: Model, Value1-3, Scope1-3, BelongsToItem, FromItem, StartLine,
// EndLine, Condition, Included, Comment, Enabled.
type InsertParams struct {
	Model         types.Model
	Value1        string
	Value2        string
	Value3        string
	Scope1        string
	Scope2        string
	Scope3        string
	Category      string
	BelongsToItem types.RecordID
	FromItem      types.RecordID
	StartLine     int
	EndLine       int
	Condition     string
	Included      string
	Comment       string
	Enabled       bool
}

// Insert appends a new record and returns its id. Ids increase strictly
// within the table.
func (t *Table) Insert(p InsertParams) types.RecordID {
	t.counter++
	id := types.NewRecordID(t.file, t.counter)

	scope1 := normalize(p.Scope1, types.ScopeCommon)
	scope2 := normalize(p.Scope2, types.ScopeCommon)
	scope3 := normalize(p.Scope3, types.ScopeCommon)

	belongs := p.BelongsToItem
	if belongs == 0 {
		belongs = types.InvalidID
	}
	from := p.FromItem
	if from == 0 {
		from = types.InvalidID
	}

	t.rows = append(t.rows, Record{
		ID:            id,
		Model:         p.Model,
		Value1:        strings.TrimSpace(p.Value1),
		Value2:        strings.TrimSpace(p.Value2),
		Value3:        strings.TrimSpace(p.Value3),
		Scope1:        scope1,
		Scope2:        scope2,
		Scope3:        scope3,
		Category:      p.Category,
		BelongsToItem: belongs,
		FromItem:      from,
		StartLine:     p.StartLine,
		EndLine:       p.EndLine,
		Condition:     strings.TrimSpace(p.Condition),
		Included:      strings.TrimSpace(p.Included),
		Comment:       strings.TrimSpace(p.Comment),
		Enabled:       p.Enabled,
	})
	return id
}

func normalize(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SetEndFlag appends the never-visible sentinel marking the table complete.
func (t *Table) SetEndFlag() {
	t.rows = append(t.rows, dummyRecord())
	t.ended = true
}

// IsIntegrity reports whether the table's last row is the end sentinel.
func (t *Table) IsIntegrity() bool {
	if len(t.rows) == 0 {
		return false
	}
	return t.rows[len(t.rows)-1].ID < 0
}

// GetAll returns every live (id >= 0, enabled) record in insertion order.
func (t *Table) GetAll() []Record {
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if r.ID >= 0 && r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// GetRaw returns every row including disabled and non-enabled ones, but
// still excluding the sentinel. Used by post-processing, which must see
// disabled directive context to evaluate it.
func (t *Table) GetRaw() []Record {
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if r.ID >= 0 {
			out = append(out, r)
		}
	}
	return out
}

// ByID finds a row by id, enabled or disabled; ok is false if absent or it's
// the sentinel.
func (t *Table) ByID(id types.RecordID) (Record, bool) {
	for _, r := range t.rows {
		if r.ID == id && r.ID >= 0 {
			return r, true
		}
	}
	return Record{}, false
}

// Query is the shared query API every dialect's table serves:
//
//	scope1 matches if record.Scope1 == COMMON or == filter
//	scope2 matches if record.Scope2 in {COMMON,DEFAULT} or == filter,
//	  and additionally a filter with a "." separator also matches the
//	  record whose Scope2 is "COMMON" + the suffix after the first "."
//	scope3, belongsTo, fromItem are exact-match filters when non-nil
//
// A nil/empty filter argument (scope1=="" or scope1==COMMON) skips that
// filter entirely, rather than narrowing results to COMMON-only rows.
type Query struct {
	Model         types.Model
	Scope1        string
	Scope2        string
	Scope3        string
	BelongsToItem *types.RecordID
	FromItem      *types.RecordID
	// RequireNoParent, when true and BelongsToItem is nil, restricts results
	// to top-level records (BelongsToItem < 0), so a whole-of-section query
	// does not pick up sub-section overrides it wasn't asked for.
	RequireNoParent bool
}

func (t *Table) Query(q Query) []Record {
	var out []Record
	for _, r := range t.rows {
		if r.ID < 0 || !r.Enabled {
			continue
		}
		if r.Model != q.Model {
			continue
		}
		if q.Scope1 != "" && q.Scope1 != types.ScopeCommon {
			if r.Scope1 != types.ScopeCommon && r.Scope1 != strings.ToUpper(q.Scope1) {
				continue
			}
		}
		if q.Scope2 != "" && q.Scope2 != types.ScopeCommon {
			scope2 := strings.ToUpper(q.Scope2)
			allowed := r.Scope2 == types.ScopeCommon || r.Scope2 == types.ScopeDefault || r.Scope2 == scope2
			if !allowed {
				if dot := strings.IndexByte(scope2, '.'); dot >= 0 {
					derived := types.ScopeCommon + scope2[dot:]
					allowed = r.Scope2 == derived
				}
			}
			if !allowed {
				continue
			}
		}
		if q.Scope3 != "" && q.Scope3 != types.ScopeCommon {
			if r.Scope3 != types.ScopeCommon && r.Scope3 != strings.ToUpper(q.Scope3) {
				continue
			}
		}
		if q.BelongsToItem != nil {
			if r.BelongsToItem != *q.BelongsToItem {
				continue
			}
		} else if q.RequireNoParent {
			if r.BelongsToItem >= 0 {
				continue
			}
		}
		if q.FromItem != nil && r.FromItem != *q.FromItem {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DisableComponent sets Enabled = false on the record with id and on every
// record whose BelongsToItem == id, matching PlatformTable.DisableComponent.
func (t *Table) DisableComponent(id types.RecordID) {
	for i := range t.rows {
		if t.rows[i].ID == id || t.rows[i].BelongsToItem == id {
			t.rows[i].Enabled = false
		}
	}
}

// Append inserts an already-built record, preserving its id, instead of
// assigning a new one. PostProcessor uses this when splicing resolved
// records — including ones pulled in from an !include target's own table —
// into the output table, where ids must remain stable references.
func (t *Table) Append(r Record) {
	t.rows = append(t.rows, r)
}

// SetEnabled flips the Enabled flag of a single record by id, leaving its
// dependents untouched (unlike DisableComponent's cascade).
func (t *Table) SetEnabled(id types.RecordID, enabled bool) {
	for i := range t.rows {
		if t.rows[i].ID == id {
			t.rows[i].Enabled = enabled
			return
		}
	}
}

// NextID previews the id the next Insert call will return, without
// mutating the counter. Used by RawParser to pre-link a directive record
// before the body it guards is parsed.
func (t *Table) NextID() types.RecordID {
	return types.NewRecordID(t.file, t.counter+1)
}

// RecordGetter adapts a Table to idcodec.RecordGetter, so a query command
// can wrap a Table in an idcodec.RecordLookup and get typed not-found/
// disabled errors instead of re-deriving them from ByID's (Record, bool)
// result.
type RecordGetter struct {
	Table *Table
}

func (g RecordGetter) ByID(id types.RecordID) (interface{}, bool, bool) {
	r, ok := g.Table.ByID(id)
	if !ok {
		return nil, false, false
	}
	return r, r.Enabled, true
}

var _ idcodec.RecordGetter = RecordGetter{}


