// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"encoding/binary"

	"github.com/cockroachdb/cilmeta/internal/base"
)

// Stream header versioning.
const (
	streamMajorVersion = 2
	streamMinorVersion = 0
)

// WriteStream serializes the #~ stream: the header, the per-present-table
// row counts, then every present table's rows in catalogue order using the
// planned widths. The store must be sorted and stamped.
func WriteStream(s *Store, l *Layout) []byte {
	buf := make([]byte, 0, l.StreamSize())

	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = append(buf, streamMajorVersion, streamMinorVersion)
	buf = append(buf, l.HeapSizes(), 1)
	buf = binary.LittleEndian.AppendUint64(buf, s.ValidMask())
	buf = binary.LittleEndian.AppendUint64(buf, base.SortedTableMask)
	for id := range s.tables {
		if n := len(s.tables[id].rows); n > 0 {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
		}
	}
	for id := range s.tables {
		for _, r := range s.tables[id].rows {
			buf = appendRow(buf, l, base.TableID(id), r)
		}
	}
	return buf
}

func appendRow(buf []byte, l *Layout, id base.TableID, r Row) []byte {
	for i := range schemas[id] {
		v := Resolved(id, r, i)
		switch l.ColumnSize(&schemas[id][i]) {
		case 1:
			buf = append(buf, byte(v))
		case 2:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		default:
			buf = binary.LittleEndian.AppendUint32(buf, v)
		}
	}
	return buf
}
