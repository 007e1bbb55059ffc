// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package cint implements the compressed integer encoding used in signature
// blobs and blob-heap length prefixes. Unsigned values occupy one byte below
// 0x80, two bytes below 0x4000 and four bytes below 0x20000000; larger values
// are unrepresentable. Signed values place the sign bit in bit 0 of the
// left-shifted magnitude before compression.
package cint

import "github.com/cockroachdb/cilmeta/internal/base"

// MaxUint is the largest value representable by the compressed-unsigned
// encoding.
const MaxUint = 0x1FFFFFFF

// SizeUint returns the encoded byte length of v, or an ErrSignatureTooLarge
// error when v exceeds MaxUint.
func SizeUint(v uint32) (int, error) {
	switch {
	case v < 0x80:
		return 1, nil
	case v < 0x4000:
		return 2, nil
	case v <= MaxUint:
		return 4, nil
	}
	return 0, base.ErrSignatureTooLarge
}

// AppendUint appends the compressed form of v to dst.
func AppendUint(dst []byte, v uint32) ([]byte, error) {
	switch {
	case v < 0x80:
		return append(dst, byte(v)), nil
	case v < 0x4000:
		return append(dst, byte(v>>8)|0x80, byte(v)), nil
	case v <= MaxUint:
		return append(dst,
			byte(v>>24)|0xC0, byte(v>>16), byte(v>>8), byte(v)), nil
	}
	return dst, base.ErrSignatureTooLarge
}

// Uint decodes a compressed unsigned integer from the front of b, returning
// the value and the number of bytes consumed.
func Uint(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, base.CorruptBlobErrorf("cilmeta: empty compressed integer")
	}
	switch {
	case b[0]&0x80 == 0:
		return uint32(b[0]), 1, nil
	case b[0]&0x40 == 0:
		if len(b) < 2 {
			return 0, 0, base.CorruptBlobErrorf(
				"cilmeta: truncated 2-byte compressed integer")
		}
		return uint32(b[0]&0x3F)<<8 | uint32(b[1]), 2, nil
	case b[0]&0x20 == 0:
		if len(b) < 4 {
			return 0, 0, base.CorruptBlobErrorf(
				"cilmeta: truncated 4-byte compressed integer")
		}
		return uint32(b[0]&0x1F)<<24 | uint32(b[1])<<16 |
			uint32(b[2])<<8 | uint32(b[3]), 4, nil
	}
	return 0, 0, base.CorruptBlobErrorf(
		"cilmeta: invalid compressed integer prefix 0x%02X", b[0])
}

// Signed-range limits per encoded width.
const (
	minInt1, maxInt1 = -0x40, 0x3F
	minInt2, maxInt2 = -0x2000, 0x1FFF
	minInt4, maxInt4 = -0x10000000, 0x0FFFFFFF
)

// AppendInt appends the compressed form of the signed value v to dst, using
// the narrowest width whose signed range contains v.
func AppendInt(dst []byte, v int32) ([]byte, error) {
	rotate := func(mask uint32) uint32 {
		return (uint32(v)<<1 | uint32(v)>>31) & mask
	}
	switch {
	case v >= minInt1 && v <= maxInt1:
		return append(dst, byte(rotate(0x7F))), nil
	case v >= minInt2 && v <= maxInt2:
		x := rotate(0x3FFF)
		return append(dst, byte(x>>8)|0x80, byte(x)), nil
	case v >= minInt4 && v <= maxInt4:
		x := rotate(0x1FFFFFFF)
		return append(dst,
			byte(x>>24)|0xC0, byte(x>>16), byte(x>>8), byte(x)), nil
	}
	return dst, base.ErrSignatureTooLarge
}

// Int decodes a compressed signed integer from the front of b.
func Int(b []byte) (int32, int, error) {
	x, n, err := Uint(b)
	if err != nil {
		return 0, 0, err
	}
	v := int32(x >> 1)
	if x&1 != 0 {
		switch n {
		case 1:
			v |= ^int32(0) << 6
		case 2:
			v |= ^int32(0) << 13
		default:
			v |= ^int32(0) << 28
		}
	}
	return v, n, nil
}
