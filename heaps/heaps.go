// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package heaps implements the four auxiliary heaps of a CLI metadata
// section: #Strings, #US, #Blob and #GUID. Heaps are append-only; offsets
// are stable from the moment they are returned and 0 denotes "absent"
// (except in #GUID, which is 1-based). Once frozen, any append panics:
// mutation after finalization is a programmer error.
package heaps

// wideThreshold is the heap size above which indices into the heap must be
// emitted as 4 bytes.
const wideThreshold = 0xFFFF

// Heaps bundles the four heaps of one metadata section.
type Heaps struct {
	Strings     *Strings
	UserStrings *UserStrings
	Blob        *Blob
	GUID        *GUID
}

// New returns an empty set of heaps, each holding only its reserved entry.
func New() *Heaps {
	return &Heaps{
		Strings:     NewStrings(),
		UserStrings: NewUserStrings(),
		Blob:        NewBlob(),
		GUID:        NewGUID(),
	}
}

// HeapSizes returns the heap-size flags byte of the #~ header: bit 0 for a
// wide #Strings, bit 1 for a wide #GUID, bit 2 for a wide #Blob.
func (h *Heaps) HeapSizes() uint8 {
	var f uint8
	if h.Strings.Wide() {
		f |= 0x01
	}
	if h.GUID.Wide() {
		f |= 0x02
	}
	if h.Blob.Wide() {
		f |= 0x04
	}
	return f
}

// Freeze marks all four heaps immutable.
func (h *Heaps) Freeze() {
	h.Strings.frozen = true
	h.UserStrings.frozen = true
	h.Blob.frozen = true
	h.GUID.frozen = true
}

func mustBeMutable(frozen bool) {
	if frozen {
		panic("cilmeta: heap append after finalize")
	}
}
