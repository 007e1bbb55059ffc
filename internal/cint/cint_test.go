// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cint

import (
	"testing"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestUintEncoding(t *testing.T) {
	testCases := []struct {
		v        uint32
		expected []byte
	}{
		{0x00, []byte{0x00}},
		{0x03, []byte{0x03}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x80}},
		{0x2E57, []byte{0xAE, 0x57}},
		{0x3FFF, []byte{0xBF, 0xFF}},
		{0x4000, []byte{0xC0, 0x00, 0x40, 0x00}},
		{0x1FFFFFFF, []byte{0xDF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range testCases {
		got, err := AppendUint(nil, tc.v)
		require.NoError(t, err)
		require.Equal(t, tc.expected, got, "encode %#x", tc.v)

		v, n, err := Uint(got)
		require.NoError(t, err)
		require.Equal(t, tc.v, v)
		require.Equal(t, len(tc.expected), n)

		size, err := SizeUint(tc.v)
		require.NoError(t, err)
		require.Equal(t, len(tc.expected), size)
	}
}

func TestUintTooLarge(t *testing.T) {
	_, err := AppendUint(nil, 0x20000000)
	require.True(t, errors.Is(err, base.ErrSignatureTooLarge))
	_, err = SizeUint(0xFFFFFFFF)
	require.True(t, errors.Is(err, base.ErrSignatureTooLarge))
}

func TestUintRoundTrip(t *testing.T) {
	// Exhaustive around the width boundaries, sparse in between.
	var vals []uint32
	for _, center := range []uint32{0, 0x80, 0x4000, 0x1FFFFFFF} {
		for d := -300; d <= 300; d++ {
			v := int64(center) + int64(d)
			if v >= 0 && v <= MaxUint {
				vals = append(vals, uint32(v))
			}
		}
	}
	for v := uint32(0); v <= MaxUint-65521; v += 65521 {
		vals = append(vals, v)
	}
	for _, v := range vals {
		b, err := AppendUint(nil, v)
		require.NoError(t, err)
		got, n, err := Uint(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(b), n)
	}
}

func TestUintCorrupt(t *testing.T) {
	for _, b := range [][]byte{
		nil,
		{0x80},
		{0xC0, 0x00},
		{0xC0, 0x00, 0x40},
		{0xE0, 0x00, 0x00, 0x00},
	} {
		_, _, err := Uint(b)
		require.True(t, errors.Is(err, base.ErrCorruptBlob), "input %x", b)
	}
}

func TestIntEncoding(t *testing.T) {
	testCases := []struct {
		v        int32
		expected []byte
	}{
		{3, []byte{0x06}},
		{-3, []byte{0x7B}},
		{64, []byte{0x80, 0x80}},
		{-1, []byte{0x7F}},
		{-64, []byte{0x01}},
		{-65, []byte{0xBF, 0x7F}},
		{8191, []byte{0xBF, 0xFE}},
		{-8192, []byte{0x80, 0x01}},
		{268435455, []byte{0xDF, 0xFF, 0xFF, 0xFE}},
		{-268435456, []byte{0xC0, 0x00, 0x00, 0x01}},
	}
	for _, tc := range testCases {
		got, err := AppendInt(nil, tc.v)
		require.NoError(t, err)
		require.Equal(t, tc.expected, got, "encode %d", tc.v)

		v, n, err := Int(got)
		require.NoError(t, err)
		require.Equal(t, tc.v, v)
		require.Equal(t, len(tc.expected), n)
	}
}

func TestIntRoundTrip(t *testing.T) {
	for v := int32(-0x2100); v <= 0x2100; v++ {
		b, err := AppendInt(nil, v)
		require.NoError(t, err)
		got, _, err := Int(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}
