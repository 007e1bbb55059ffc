// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package heaps

import (
	"strings"
	"testing"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestStringsIntern(t *testing.T) {
	h := NewStrings()
	require.Equal(t, uint32(0), h.Append(""))
	require.Equal(t, uint32(1), h.Size())

	a := h.Append("m.dll")
	require.Equal(t, uint32(1), a)
	require.Equal(t, uint32(1+6), h.Size())

	b := h.Append("C")
	require.Equal(t, uint32(7), b)

	// Interned: equal keys return equal offsets without growth.
	size := h.Size()
	require.Equal(t, a, h.Append("m.dll"))
	require.Equal(t, b, h.Append("C"))
	require.Equal(t, size, h.Size())

	s, err := h.Lookup(a)
	require.NoError(t, err)
	require.Equal(t, "m.dll", s)
	s, err = h.Lookup(0)
	require.NoError(t, err)
	require.Equal(t, "", s)

	_, err = h.Lookup(h.Size())
	require.True(t, errors.Is(err, base.ErrCorruptIndex))
}

func TestStringsWide(t *testing.T) {
	h := NewStrings()
	require.False(t, h.Wide())
	// Cross the 2-byte index boundary.
	for i := 0; !h.Wide(); i++ {
		h.Append(strings.Repeat("x", 512) + string(rune('a'+i%26)) +
			string(rune('0'+i/26%10)) + string(rune('0'+i/260)))
	}
	require.Greater(t, h.Size(), uint32(0xFFFF))
}

func TestUserStrings(t *testing.T) {
	h := NewUserStrings()
	off, err := h.Append("hi")
	require.NoError(t, err)
	require.Equal(t, uint32(1), off)
	// compressed_length(5) | 'h' 0 'i' 0 | terminator 0
	require.Equal(t, []byte{0, 5, 'h', 0, 'i', 0, 0}, h.Bytes())

	s, err := h.Lookup(off)
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	// Interned.
	off2, err := h.Append("hi")
	require.NoError(t, err)
	require.Equal(t, off, off2)
}

func TestUserStringsTerminator(t *testing.T) {
	testCases := []struct {
		s    string
		term byte
	}{
		{"abc", 0},
		{"aéc", 0},   // 0xE9: high byte zero, not in the special set
		{"tab\there", 0},  // 0x09 is not in the special set
		{"bell\x07", 1},   // 0x01..0x08
		{"esc\x1b", 1},    // 0x0E..0x1F
		{"don't", 1},      // 0x27
		{"a-b", 1},        // 0x2D
		{"del\x7f", 1},    // 0x7F
		{"\U0001F600", 1}, // surrogate pair
	}
	for _, tc := range testCases {
		h := NewUserStrings()
		off, err := h.Append(tc.s)
		require.NoError(t, err)
		require.Equal(t, tc.term, h.Bytes()[h.Size()-1], "string %q", tc.s)
		s, err := h.Lookup(off)
		require.NoError(t, err)
		require.Equal(t, tc.s, s)
	}
}

func TestBlobDedup(t *testing.T) {
	h := NewBlob()
	blob := []byte{1, 2, 3, 4, 5}
	a, err := h.Append(blob)
	require.NoError(t, err)
	require.Equal(t, uint32(1), a)
	require.Equal(t, uint32(1+1+5), h.Size())

	b, err := h.Append([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, a, b)
	// The heap grew only by len_prefix + 5 in total.
	require.Equal(t, uint32(1+1+5), h.Size())

	got, err := h.Lookup(a)
	require.NoError(t, err)
	require.Equal(t, blob, got)

	empty, err := h.Append(nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0), empty)
}

func TestBlobLookupCorrupt(t *testing.T) {
	h := NewBlob()
	off, err := h.Append([]byte{9, 9})
	require.NoError(t, err)

	_, err = h.Lookup(h.Size())
	require.True(t, errors.Is(err, base.ErrCorruptIndex))

	// Truncate mid-entry: length prefix survives, payload does not.
	h.SetBytes(h.Bytes()[:off+1])
	_, err = h.Lookup(off)
	require.True(t, errors.Is(err, base.ErrCorruptBlob))
}

func TestGUID(t *testing.T) {
	h := NewGUID()
	var g1, g2 [16]byte
	g1[0], g2[0] = 0xAA, 0xBB
	require.Equal(t, uint32(1), h.Append(g1))
	require.Equal(t, uint32(2), h.Append(g2))
	require.Equal(t, uint32(32), h.Size())

	got, err := h.Lookup(2)
	require.NoError(t, err)
	require.Equal(t, g2, got)

	_, err = h.Lookup(0)
	require.True(t, errors.Is(err, base.ErrCorruptIndex))
	_, err = h.Lookup(3)
	require.True(t, errors.Is(err, base.ErrCorruptIndex))
}

func TestHeapSizesFlags(t *testing.T) {
	h := New()
	require.Equal(t, uint8(0), h.HeapSizes())
	h.Blob.SetBytes(make([]byte, 0x10001))
	require.Equal(t, uint8(0x04), h.HeapSizes())
	h.GUID.SetBytes(make([]byte, 0x10010))
	require.Equal(t, uint8(0x06), h.HeapSizes())
	h.Strings.SetBytes(make([]byte, 0x10001))
	require.Equal(t, uint8(0x07), h.HeapSizes())
}

func TestFreeze(t *testing.T) {
	h := New()
	h.Strings.Append("kept")
	h.Freeze()
	// Interned lookups still succeed after freeze.
	require.Equal(t, uint32(1), h.Strings.Append("kept"))
	require.Panics(t, func() { h.Strings.Append("new") })
	require.Panics(t, func() { h.GUID.Append([16]byte{}) })
}
