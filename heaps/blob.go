// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package heaps

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
	"github.com/cockroachdb/swiss"
)

// Blob is the #Blob heap: length-prefixed opaque byte records, deduplicated
// by content. Entry 0 is the reserved empty blob.
type Blob struct {
	buf []byte
	// dedup maps a content hash to the offsets of all entries with that
	// hash. Hits are verified byte-for-byte before reuse.
	dedup  *swiss.Map[uint64, []uint32]
	frozen bool
}

// NewBlob returns a #Blob heap holding only the reserved empty entry.
func NewBlob() *Blob {
	return &Blob{
		buf:   []byte{0},
		dedup: swiss.New[uint64, []uint32](16),
	}
}

// Append stores b and returns its heap offset, reusing the offset of an
// existing entry with equal contents.
func (h *Blob) Append(b []byte) (uint32, error) {
	if len(b) == 0 {
		return 0, nil
	}
	sum := xxhash.Sum64(b)
	offs, _ := h.dedup.Get(sum)
	for _, off := range offs {
		if prev, err := h.Lookup(off); err == nil && bytes.Equal(prev, b) {
			return off, nil
		}
	}
	mustBeMutable(h.frozen)
	off := uint32(len(h.buf))
	var err error
	h.buf, err = cint.AppendUint(h.buf, uint32(len(b)))
	if err != nil {
		return 0, err
	}
	h.buf = append(h.buf, b...)
	h.dedup.Put(sum, append(offs, off))
	return off, nil
}

// Lookup returns the contents of the entry at off. The returned slice
// aliases the heap and must not be mutated.
func (h *Blob) Lookup(off uint32) ([]byte, error) {
	if off >= uint32(len(h.buf)) {
		return nil, base.CorruptIndexErrorf(
			"cilmeta: #Blob offset %d beyond heap size %d", off, len(h.buf))
	}
	n, ln, err := cint.Uint(h.buf[off:])
	if err != nil {
		return nil, err
	}
	start := off + uint32(ln)
	if uint64(start)+uint64(n) > uint64(len(h.buf)) {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: #Blob entry at %d of length %d exceeds heap size %d",
			off, n, len(h.buf))
	}
	return h.buf[start : start+n : start+n], nil
}

// Size returns the heap's byte size.
func (h *Blob) Size() uint32 { return uint32(len(h.buf)) }

// Wide reports whether indices into the heap require 4 bytes.
func (h *Blob) Wide() bool { return h.Size() > wideThreshold }

// Bytes returns the raw heap contents.
func (h *Blob) Bytes() []byte { return h.buf }

// SetBytes installs raw heap contents read from an image. Dedup state is not
// rebuilt; a heap populated this way serves lookups only.
func (h *Blob) SetBytes(b []byte) {
	h.buf = b
	h.frozen = true
}
