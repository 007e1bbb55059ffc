// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"encoding/binary"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/errors"
)

// Header is the parsed fixed header of a #~ stream.
type Header struct {
	MajorVersion uint8
	MinorVersion uint8
	HeapSizes    uint8
	Valid        uint64
	Sorted       uint64
}

// ReadStream parses a #~ stream into a store of raw rows: every column holds
// its file value, references unresolved. A resolution pass (ResolveRefs)
// turns raw indices into handles. The returned layout is derived from the
// header exactly as the writer derived it, so both sides agree on every
// column width.
func ReadStream(data []byte) (*Store, *Layout, Header, error) {
	var hdr Header
	if len(data) < 24 {
		return nil, nil, hdr, errors.Mark(
			errors.Newf("cilmeta: #~ stream of %d bytes, want at least 24",
				len(data)),
			base.ErrShortRead)
	}
	hdr.MajorVersion = data[4]
	hdr.MinorVersion = data[5]
	hdr.HeapSizes = data[6]
	hdr.Valid = binary.LittleEndian.Uint64(data[8:])
	hdr.Sorted = binary.LittleEndian.Uint64(data[16:])

	var counts [base.NumTableIDs]uint32
	pos := 24
	for id := 0; id < base.NumTableIDs; id++ {
		if hdr.Valid&(1<<uint(id)) == 0 {
			continue
		}
		if !base.TableID(id).KnownRowFormat() {
			return nil, nil, hdr, errors.Mark(
				errors.Newf("cilmeta: valid mask names %s", base.TableID(id)),
				base.ErrUnsupportedTable)
		}
		if pos+4 > len(data) {
			return nil, nil, hdr, errors.Mark(
				errors.Newf("cilmeta: #~ stream truncated in row counts"),
				base.ErrShortRead)
		}
		counts[id] = binary.LittleEndian.Uint32(data[pos:])
		pos += 4
	}

	l := PlanLayout(counts,
		hdr.HeapSizes&0x01 != 0, hdr.HeapSizes&0x02 != 0,
		hdr.HeapSizes&0x04 != 0)

	s := NewStore()
	for id := 0; id < base.NumTableIDs; id++ {
		n := int(counts[id])
		if n == 0 {
			continue
		}
		rowSize := l.RowSize(base.TableID(id))
		if pos+n*rowSize > len(data) {
			return nil, nil, hdr, errors.Mark(
				errors.Newf("cilmeta: #~ stream truncated in %s rows",
					base.TableID(id)),
				base.ErrShortRead)
		}
		for i := 0; i < n; i++ {
			r := parseRow(data[pos:], l, base.TableID(id))
			s.Add(base.TableID(id), r)
			pos += rowSize
		}
	}
	return s, l, hdr, nil
}

func parseRow(data []byte, l *Layout, id base.TableID) Row {
	r := make(Row, len(schemas[id]))
	pos := 0
	for i := range schemas[id] {
		var v uint32
		switch l.ColumnSize(&schemas[id][i]) {
		case 1:
			v = uint32(data[pos])
			pos++
		case 2:
			v = uint32(binary.LittleEndian.Uint16(data[pos:]))
			pos += 2
		default:
			v = binary.LittleEndian.Uint32(data[pos:])
			pos += 4
		}
		r[i] = RawVal(v)
	}
	return r
}

// ResolveOptions controls the resolution pass over raw rows.
type ResolveOptions struct {
	// SkipCorrupt makes resolution log and zero a corrupt column instead of
	// failing, a lenient mode for tool-chain introspection.
	SkipCorrupt bool
	Logger      base.Logger
}

// ResolveRefs dereferences every table and coded index of every row into a
// handle, validating bounds. List columns stay raw; their range semantics
// need the neighboring row and are applied by the descriptor resolver.
func (s *Store) ResolveRefs(opts ResolveOptions) error {
	logger := base.NoopLoggerIfNil(opts.Logger)
	for id := 0; id < base.NumTableIDs; id++ {
		schema := schemas[id]
		for ri, r := range s.tables[id].rows {
			for ci := range schema {
				err := s.resolveColumn(base.TableID(id), r, ci)
				if err == nil {
					continue
				}
				err = base.RowErrorf(err, base.TableID(id), uint32(ri)+1,
					schema[ci].Name)
				if !opts.SkipCorrupt {
					return err
				}
				logger.Errorf("cilmeta: skipping corrupt column: %v", err)
				r.SetRaw(ci, 0)
			}
		}
	}
	return nil
}

func (s *Store) resolveColumn(id base.TableID, r Row, ci int) error {
	col := &schemas[id][ci]
	raw := r[ci].raw
	switch col.Kind {
	case ColTable:
		if raw == 0 {
			return nil
		}
		h := s.Handle(col.Table, raw)
		if h == nil {
			return base.CorruptIndexErrorf(
				"cilmeta: index %d exceeds %s row count %d",
				raw, col.Table, s.Len(col.Table))
		}
		r.SetRef(ci, h)
	case ColList:
		if raw < 1 || raw > uint32(s.Len(col.Table))+1 {
			return base.CorruptIndexErrorf(
				"cilmeta: list index %d outside %s range [1, %d]",
				raw, col.Table, s.Len(col.Table)+1)
		}
	case ColCoded:
		if raw == 0 {
			return nil
		}
		target, row, err := col.Coded.Decode(raw)
		if err != nil {
			return err
		}
		if row == 0 {
			return nil
		}
		h := s.Handle(target, row)
		if h == nil {
			return base.CorruptIndexErrorf(
				"cilmeta: %s index %d exceeds %s row count %d",
				col.Coded, row, target, s.Len(target))
		}
		r.SetRef(ci, h)
	}
	return nil
}
