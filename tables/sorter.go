// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"sort"

	"github.com/cockroachdb/cilmeta/internal/base"
)

// sortKeys gives, per sort-required table, the column indices of the sort
// key in significance order. All keys are single-column except GenericParam,
// which sorts by (Owner, Number).
var sortKeys = [base.NumTableIDs][]int{
	base.TableInterfaceImpl:          {InterfaceImplClass},
	base.TableConstant:               {ConstantParent},
	base.TableCustomAttribute:        {CustomAttributeParent},
	base.TableFieldMarshal:           {FieldMarshalParent},
	base.TableDeclSecurity:           {DeclSecurityParent},
	base.TableClassLayout:            {ClassLayoutParent},
	base.TableFieldLayout:            {FieldLayoutField},
	base.TableEventMap:               {EventMapParent},
	base.TablePropertyMap:            {PropertyMapParent},
	base.TableMethodSemantics:        {MethodSemanticsMethod},
	base.TableMethodImpl:             {MethodImplClass},
	base.TableImplMap:                {ImplMapMemberForwarded},
	base.TableFieldRVA:               {FieldRVAField},
	base.TableNestedClass:            {NestedClassNested},
	base.TableGenericParam:           {GenericParamOwner, GenericParamNumber},
	base.TableGenericParamConstraint: {GenericParamConstraintOwner},
}

// sortOrder is the order tables are sorted in. A sorted table's key may
// reference rows of another sorted table (a custom attribute can hang off an
// interface impl or a generic param; a constraint's owner is a generic
// param), so tables whose rows appear in other tables' keys sort first.
var sortOrder = []base.TableID{
	base.TableGenericParam,
	base.TableInterfaceImpl,
	base.TableClassLayout,
	base.TableFieldLayout,
	base.TableEventMap,
	base.TablePropertyMap,
	base.TableMethodSemantics,
	base.TableMethodImpl,
	base.TableImplMap,
	base.TableFieldRVA,
	base.TableNestedClass,
	base.TableGenericParamConstraint,
	base.TableDeclSecurity,
	base.TableFieldMarshal,
	base.TableConstant,
	base.TableCustomAttribute,
}

// sortKeyValue computes the comparable key of one key column. Coded columns
// order by (tag, row): a Field parent sorts before a Param parent of the
// same row number, and row number dominates within a tag.
func sortKeyValue(id base.TableID, r Row, i int) uint64 {
	col := &schemas[id][i]
	switch col.Kind {
	case ColCoded:
		var tag, row uint32
		if h := r[i].ref; h != nil {
			tag, _ = col.Coded.Tag(h.table)
			row = h.row
		} else if raw := r[i].raw; raw != 0 {
			tag = raw & (1<<col.Coded.TagBits() - 1)
			row = raw >> col.Coded.TagBits()
		}
		return uint64(tag)<<32 | uint64(row)
	case ColTable:
		if h := r[i].ref; h != nil {
			return uint64(h.row)
		}
	}
	return uint64(r[i].raw)
}

// SortAndStamp orders every sort-required table by its primary key and then
// assigns every row of every table its final 1-based index. Unsorted tables
// keep insertion order; sorted tables break ties by insertion order. After
// SortAndStamp, handle indices and tokens are stable for the lifetime of the
// store.
func (s *Store) SortAndStamp() {
	// Unsorted tables stamp first: sorted tables' keys reference their rows.
	for id := range s.tables {
		if !base.TableID(id).SortRequired() {
			s.stamp(base.TableID(id))
		}
	}
	for _, id := range sortOrder {
		s.sortTable(id)
		s.stamp(id)
	}
	s.frozen = true
}

// sortTable reorders rows of id into key order. A row's handle moves with
// it, so references into the table stay valid; only emission order changes.
func (s *Store) sortTable(id base.TableID) {
	t := &s.tables[id]
	keyCols := sortKeys[id]
	n := len(t.rows)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		i, j := perm[a], perm[b]
		for _, c := range keyCols {
			ki := sortKeyValue(id, t.rows[i], c)
			kj := sortKeyValue(id, t.rows[j], c)
			if ki != kj {
				return ki < kj
			}
		}
		return false
	})
	rows := make([]Row, n)
	handles := make([]*Handle, n)
	for newIdx, oldIdx := range perm {
		rows[newIdx] = t.rows[oldIdx]
		handles[newIdx] = t.handles[oldIdx]
	}
	t.rows, t.handles = rows, handles
}

// stamp rewrites the handles of table id to their final positions.
func (s *Store) stamp(id base.TableID) {
	t := &s.tables[id]
	for i, h := range t.handles {
		h.row = uint32(i) + 1
	}
}
