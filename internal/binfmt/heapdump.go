// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package binfmt

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// StringsHeap formats a #Strings heap entry by entry: NUL-terminated UTF-8
// strings, with the reserved empty string at offset zero. Alignment padding
// at the end of the heap renders as empty entries.
func StringsHeap(data []byte) string {
	f := New(data)
	for f.More() {
		rem := data[f.Offset():]
		n := bytes.IndexByte(rem, 0)
		if n < 0 {
			f.HexBytesln(len(rem), "unterminated entry")
			break
		}
		if f.Offset() == 0 {
			f.HexBytesln(n+1, "reserved empty string")
			continue
		}
		f.HexBytesln(n+1, "%q", rem[:n])
	}
	return f.String()
}

// UserStringsHeap formats a #US heap entry by entry: a compressed length
// covering the UTF-16LE payload plus a one-byte terminator that flags
// strings needing special handling at load time.
func UserStringsHeap(data []byte) string {
	f := New(data)
	if f.More() && data[0] == 0 {
		f.HexBytesln(1, "reserved entry")
	}
	for f.More() {
		off := f.Offset()
		n := int(f.CompressedUint("entry at %d", off))
		if n == 0 {
			continue
		}
		if n > f.Remaining() {
			f.HexBytesln(f.Remaining(), "truncated entry")
			break
		}
		payload := data[f.Offset() : f.Offset()+n-1]
		term := data[f.Offset()+n-1]
		units := make([]uint16, len(payload)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(payload[2*i:])
		}
		f.HexBytesln(n-1, "%q", string(utf16.Decode(units)))
		f.HexBytesln(1, "terminator %d", term)
	}
	return f.String()
}

// BlobHeap formats a #Blob heap entry by entry: a compressed length followed
// by that many opaque bytes, with the reserved empty blob at offset zero.
func BlobHeap(data []byte) string {
	f := New(data)
	if f.More() && data[0] == 0 {
		f.HexBytesln(1, "reserved empty blob")
	}
	for f.More() {
		off := f.Offset()
		n := int(f.CompressedUint("blob at %d", off))
		if n == 0 {
			continue
		}
		if n > f.Remaining() {
			f.HexBytesln(f.Remaining(), "truncated entry")
			break
		}
		f.HexBytesln(n, "")
	}
	return f.String()
}

// GUIDHeap formats a #GUID heap as 16-byte slots. Rows reference slots by
// 1-based ordinal, not byte offset.
func GUIDHeap(data []byte) string {
	f := New(data)
	for i := 1; f.Remaining() >= 16; i++ {
		g := data[f.Offset():]
		f.HexBytesln(16, "guid %d {%08x-%04x-%04x-%04x-%012x}", i,
			binary.LittleEndian.Uint32(g),
			binary.LittleEndian.Uint16(g[4:]),
			binary.LittleEndian.Uint16(g[6:]),
			binary.BigEndian.Uint16(g[8:]),
			g[10:16])
	}
	if f.More() {
		f.HexBytesln(f.Remaining(), "trailing bytes")
	}
	return f.String()
}
