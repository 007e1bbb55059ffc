// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import "github.com/cockroachdb/cilmeta/internal/base"

// Layout fixes the width of every variable-width column of the stream. It is
// computed once, after all rows and heap entries exist; every size decision
// must be fixed before any row byte is written because rows reference each
// other. The same computation sizes columns on the read path, from the row
// counts and heap-size flags of the header.
type Layout struct {
	StringsWide bool
	GUIDWide    bool
	BlobWide    bool
	RowCounts   [base.NumTableIDs]uint32

	tableWide [base.NumTableIDs]bool
	codedWide [base.NumCodedKinds]bool
}

// wideTableThreshold is the row count above which simple table indices
// require 4 bytes.
const wideTableThreshold = 0xFFFF

// PlanLayout computes column widths from per-table row counts and the three
// heap-size flags.
func PlanLayout(
	counts [base.NumTableIDs]uint32, stringsWide, guidWide, blobWide bool,
) *Layout {
	l := &Layout{
		StringsWide: stringsWide,
		GUIDWide:    guidWide,
		BlobWide:    blobWide,
		RowCounts:   counts,
	}
	for id, n := range counts {
		l.tableWide[id] = n > wideTableThreshold
	}
	for k := base.CodedKind(0); k < base.NumCodedKinds; k++ {
		limit := uint32(1) << (16 - k.TagBits())
		for _, m := range k.Members() {
			if m != base.InvalidTableID && counts[m] > limit {
				l.codedWide[k] = true
				break
			}
		}
	}
	return l
}

// HeapSizes returns the header flags byte encoding the three heap widths.
func (l *Layout) HeapSizes() uint8 {
	var f uint8
	if l.StringsWide {
		f |= 0x01
	}
	if l.GUIDWide {
		f |= 0x02
	}
	if l.BlobWide {
		f |= 0x04
	}
	return f
}

func width(wide bool) int {
	if wide {
		return 4
	}
	return 2
}

// StringsIndexSize returns the byte width of a #Strings index.
func (l *Layout) StringsIndexSize() int { return width(l.StringsWide) }

// GUIDIndexSize returns the byte width of a #GUID index.
func (l *Layout) GUIDIndexSize() int { return width(l.GUIDWide) }

// BlobIndexSize returns the byte width of a #Blob index.
func (l *Layout) BlobIndexSize() int { return width(l.BlobWide) }

// TableIndexSize returns the byte width of a simple index into table id.
func (l *Layout) TableIndexSize(id base.TableID) int {
	return width(l.tableWide[id])
}

// CodedIndexSize returns the byte width of a coded index of family k.
func (l *Layout) CodedIndexSize(k base.CodedKind) int {
	return width(l.codedWide[k])
}

// ColumnSize returns the byte width of col under the layout.
func (l *Layout) ColumnSize(col *Column) int {
	switch col.Kind {
	case ColU8:
		return 1
	case ColU16:
		return 2
	case ColU32:
		return 4
	case ColStrings:
		return l.StringsIndexSize()
	case ColGUID:
		return l.GUIDIndexSize()
	case ColBlob:
		return l.BlobIndexSize()
	case ColTable, ColList:
		return l.TableIndexSize(col.Table)
	default:
		return l.CodedIndexSize(col.Coded)
	}
}

// RowSize returns the byte width of one row of table id.
func (l *Layout) RowSize(id base.TableID) int {
	var n int
	for i := range schemas[id] {
		n += l.ColumnSize(&schemas[id][i])
	}
	return n
}

// StreamSize returns the byte size of the #~ stream under the layout: the
// 24-byte fixed header, one row count per present table, and the rows.
func (l *Layout) StreamSize() int {
	n := 24
	for id, count := range l.RowCounts {
		if count > 0 {
			n += 4 + int(count)*l.RowSize(base.TableID(id))
		}
	}
	return n
}
