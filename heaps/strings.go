// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package heaps

import (
	"bytes"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/swiss"
)

// Strings is the #Strings heap: null-terminated UTF-8 strings, interned by
// exact byte equality. The first byte is the reserved empty string.
type Strings struct {
	buf    []byte
	intern *swiss.Map[string, uint32]
	frozen bool
}

// NewStrings returns a #Strings heap holding only the reserved zero byte.
func NewStrings() *Strings {
	return &Strings{
		buf:    []byte{0},
		intern: swiss.New[string, uint32](16),
	}
}

// Append interns s and returns its heap offset. The empty string maps to the
// reserved offset 0.
func (h *Strings) Append(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := h.intern.Get(s); ok {
		return off
	}
	mustBeMutable(h.frozen)
	off := uint32(len(h.buf))
	h.buf = append(h.buf, s...)
	h.buf = append(h.buf, 0)
	h.intern.Put(s, off)
	return off
}

// Lookup returns the string starting at off.
func (h *Strings) Lookup(off uint32) (string, error) {
	if off >= uint32(len(h.buf)) {
		return "", base.CorruptIndexErrorf(
			"cilmeta: #Strings offset %d beyond heap size %d", off, len(h.buf))
	}
	end := bytes.IndexByte(h.buf[off:], 0)
	if end < 0 {
		return "", base.CorruptIndexErrorf(
			"cilmeta: #Strings entry at %d is unterminated", off)
	}
	return string(h.buf[off : off+uint32(end)]), nil
}

// Size returns the heap's byte size.
func (h *Strings) Size() uint32 { return uint32(len(h.buf)) }

// Wide reports whether indices into the heap require 4 bytes.
func (h *Strings) Wide() bool { return h.Size() > wideThreshold }

// Bytes returns the raw heap contents.
func (h *Strings) Bytes() []byte { return h.buf }

// SetBytes installs raw heap contents read from an image. Interning is not
// rebuilt; a heap populated this way serves lookups only.
func (h *Strings) SetBytes(b []byte) {
	h.buf = b
	h.frozen = true
}
