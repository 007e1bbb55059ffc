// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"fmt"

	"github.com/cockroachdb/cilmeta/internal/base"
)

// Handle identifies a row independently of its position. A handle's row
// index is tentative until the store is stamped; sorting reorders rows but
// every handle follows its row. Columns that reference rows hold handles, so
// cross-references survive sorting.
type Handle struct {
	table base.TableID
	row   uint32
}

// Table returns the table the handle's row belongs to.
func (h *Handle) Table() base.TableID { return h.table }

// Row returns the row's 1-based index: final after stamping, tentative
// before.
func (h *Handle) Row() uint32 { return h.row }

// Token returns the row's metadata token.
func (h *Handle) Token() base.Token { return base.MakeToken(h.table, h.row) }

func (h *Handle) String() string {
	return fmt.Sprintf("%s:%d", h.table, h.row)
}

// Value is one column value of a row: a raw number, heap offset or file
// index, or a reference to a row through its handle. At write time a
// reference resolves to the handle's stamped index.
type Value struct {
	raw uint32
	ref *Handle
}

// RawVal returns a Value holding a plain number or heap offset.
func RawVal(v uint32) Value { return Value{raw: v} }

// RefVal returns a Value referencing the row behind h. A nil handle denotes
// "none" and resolves to 0.
func RefVal(h *Handle) Value { return Value{ref: h} }

// Raw returns the value's raw payload. For reference values this is the raw
// file form before resolution; use Resolved for the wire value.
func (v Value) Raw() uint32 { return v.raw }

// Ref returns the referenced handle, or nil.
func (v Value) Ref() *Handle { return v.ref }

// Row is one table row: a column-value vector in schema order.
type Row []Value

// U32 returns the raw value of column i.
func (r Row) U32(i int) uint32 { return r[i].raw }

// Ref returns the handle referenced by column i, or nil.
func (r Row) Ref(i int) *Handle { return r[i].ref }

// SetRaw replaces the raw value of column i. Blob columns are patched this
// way during the signature pass, after rows are stamped.
func (r Row) SetRaw(i int, v uint32) { r[i] = Value{raw: v} }

// SetRef replaces column i with a row reference.
func (r Row) SetRef(i int, h *Handle) { r[i] = Value{ref: h} }

// Resolved returns the wire value of column i of a row in table id: raw for
// plain columns, the stamped row index for table references, and the packed
// coded form for coded references.
func Resolved(id base.TableID, r Row, i int) uint32 {
	col := &schemas[id][i]
	switch col.Kind {
	case ColTable, ColList:
		if h := r[i].ref; h != nil {
			return h.row
		}
	case ColCoded:
		if h := r[i].ref; h != nil {
			return col.Coded.Encode(h.table, h.row)
		}
	}
	return r[i].raw
}

type tableData struct {
	rows    []Row
	handles []*Handle
}

// Store holds the rows of every metadata table of one #~ stream.
type Store struct {
	tables [base.NumTableIDs]tableData
	frozen bool
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Add appends a row to table id and returns its handle. The handle's index
// is tentative until SortAndStamp runs. Add panics on a frozen store or a table
// without a row codec; both are programmer errors.
func (s *Store) Add(id base.TableID, r Row) *Handle {
	if s.frozen {
		panic("cilmeta: row added after finalize")
	}
	if schemas[id] == nil {
		panic(fmt.Sprintf("cilmeta: no row format for %s", id))
	}
	if len(r) != len(schemas[id]) {
		panic(fmt.Sprintf("cilmeta: %s row has %d columns, want %d",
			id, len(r), len(schemas[id])))
	}
	t := &s.tables[id]
	h := &Handle{table: id, row: uint32(len(t.rows)) + 1}
	t.rows = append(t.rows, r)
	t.handles = append(t.handles, h)
	return h
}

// Len returns the number of rows in table id.
func (s *Store) Len(id base.TableID) int { return len(s.tables[id].rows) }

// Row returns the row at the 1-based index idx of table id.
func (s *Store) Row(id base.TableID, idx uint32) Row {
	return s.tables[id].rows[idx-1]
}

// Handle returns the handle of the row at the 1-based index idx, or nil when
// the index is out of range. Index 0 denotes "none" and returns nil.
func (s *Store) Handle(id base.TableID, idx uint32) *Handle {
	t := &s.tables[id]
	if idx == 0 || idx > uint32(len(t.handles)) {
		return nil
	}
	return t.handles[idx-1]
}

// RowCounts returns the per-table row counts.
func (s *Store) RowCounts() [base.NumTableIDs]uint32 {
	var counts [base.NumTableIDs]uint32
	for id := range s.tables {
		counts[id] = uint32(len(s.tables[id].rows))
	}
	return counts
}

// ValidMask returns the header bitmask of present tables.
func (s *Store) ValidMask() uint64 {
	var mask uint64
	for id := range s.tables {
		if len(s.tables[id].rows) > 0 {
			mask |= 1 << uint(id)
		}
	}
	return mask
}

// Freeze forbids further row insertion.
func (s *Store) Freeze() { s.frozen = true }
