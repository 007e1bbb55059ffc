// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package heaps

import "github.com/cockroachdb/cilmeta/internal/base"

// GUID is the #GUID heap: fixed 16-byte records addressed by 1-based index.
type GUID struct {
	buf    []byte
	frozen bool
}

// NewGUID returns an empty #GUID heap.
func NewGUID() *GUID {
	return &GUID{}
}

// Append stores g and returns its 1-based index.
func (h *GUID) Append(g [16]byte) uint32 {
	mustBeMutable(h.frozen)
	h.buf = append(h.buf, g[:]...)
	return uint32(len(h.buf) / 16)
}

// Lookup returns the record at the 1-based index idx.
func (h *GUID) Lookup(idx uint32) ([16]byte, error) {
	var g [16]byte
	if idx == 0 || idx*16 > uint32(len(h.buf)) {
		return g, base.CorruptIndexErrorf(
			"cilmeta: #GUID index %d beyond %d records", idx, len(h.buf)/16)
	}
	copy(g[:], h.buf[(idx-1)*16:])
	return g, nil
}

// Size returns the heap's byte size.
func (h *GUID) Size() uint32 { return uint32(len(h.buf)) }

// Wide reports whether indices into the heap require 4 bytes.
func (h *GUID) Wide() bool { return h.Size() > wideThreshold }

// Bytes returns the raw heap contents.
func (h *GUID) Bytes() []byte { return h.buf }

// SetBytes installs raw heap contents read from an image.
func (h *GUID) SetBytes(b []byte) {
	h.buf = b
	h.frozen = true
}
