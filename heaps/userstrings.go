// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package heaps

import (
	"unicode/utf16"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
	"github.com/cockroachdb/swiss"
)

// UserStrings is the #US heap: length-prefixed UTF-16LE strings consumed by
// ldstr. Each entry carries a trailing terminator byte that flags strings
// needing special handling at load time. Entry 0 is reserved.
type UserStrings struct {
	buf    []byte
	intern *swiss.Map[string, uint32]
	frozen bool
}

// NewUserStrings returns a #US heap holding only the reserved entry.
func NewUserStrings() *UserStrings {
	return &UserStrings{
		buf:    []byte{0},
		intern: swiss.New[string, uint32](16),
	}
}

// Append interns s and returns its heap offset.
func (h *UserStrings) Append(s string) (uint32, error) {
	if off, ok := h.intern.Get(s); ok {
		return off, nil
	}
	mustBeMutable(h.frozen)
	units := utf16.Encode([]rune(s))
	off := uint32(len(h.buf))
	var err error
	h.buf, err = cint.AppendUint(h.buf, uint32(len(units)*2+1))
	if err != nil {
		return 0, err
	}
	term := byte(0)
	for _, u := range units {
		h.buf = append(h.buf, byte(u), byte(u>>8))
		if specialUserStringUnit(u) {
			term = 1
		}
	}
	h.buf = append(h.buf, term)
	h.intern.Put(s, off)
	return off, nil
}

// specialUserStringUnit reports whether a UTF-16 code unit forces the entry's
// terminator byte to 1: any unit with a non-zero high byte, and a fixed set
// of low-byte units.
func specialUserStringUnit(u uint16) bool {
	if u >= 0x100 {
		return true
	}
	switch {
	case u >= 0x01 && u <= 0x08:
		return true
	case u >= 0x0E && u <= 0x1F:
		return true
	case u == 0x27 || u == 0x2D || u == 0x7F:
		return true
	}
	return false
}

// Lookup decodes the entry at off.
func (h *UserStrings) Lookup(off uint32) (string, error) {
	if off == 0 || off >= uint32(len(h.buf)) {
		return "", base.CorruptIndexErrorf(
			"cilmeta: #US offset %d beyond heap size %d", off, len(h.buf))
	}
	n, ln, err := cint.Uint(h.buf[off:])
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	start := off + uint32(ln)
	if uint64(start)+uint64(n) > uint64(len(h.buf)) {
		return "", base.CorruptBlobErrorf(
			"cilmeta: #US entry at %d of length %d exceeds heap size %d",
			off, n, len(h.buf))
	}
	units := make([]uint16, (n-1)/2)
	for i := range units {
		units[i] = uint16(h.buf[start+uint32(2*i)]) |
			uint16(h.buf[start+uint32(2*i)+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

// Size returns the heap's byte size.
func (h *UserStrings) Size() uint32 { return uint32(len(h.buf)) }

// Bytes returns the raw heap contents.
func (h *UserStrings) Bytes() []byte { return h.buf }

// SetBytes installs raw heap contents read from an image.
func (h *UserStrings) SetBytes(b []byte) {
	h.buf = b
	h.frozen = true
}
