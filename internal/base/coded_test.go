// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodedEncodeDecode(t *testing.T) {
	for k := CodedKind(0); k < NumCodedKinds; k++ {
		for _, id := range k.Members() {
			if id == InvalidTableID {
				continue
			}
			for _, row := range []uint32{1, 2, 0xFFFF, 1 << 20} {
				raw := k.Encode(id, row)
				gotID, gotRow, err := k.Decode(raw)
				require.NoError(t, err)
				require.Equal(t, id, gotID, "%s", k)
				require.Equal(t, row, gotRow, "%s", k)
			}
		}
	}
}

func TestCodedDecodeUnassignedTag(t *testing.T) {
	// CustomAttributeType reserves tags 0, 1 and 4.
	for _, raw := range []uint32{(1 << 3) | 0, (1 << 3) | 1, (1 << 3) | 4} {
		_, _, err := CustomAttributeType.Decode(raw)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrCorruptIndex)
	}
	id, row, err := CustomAttributeType.Decode((7 << 3) | 2)
	require.NoError(t, err)
	require.Equal(t, TableMethodDef, id)
	require.Equal(t, uint32(7), row)
}

func TestCodedEncodeNonMemberPanics(t *testing.T) {
	require.Panics(t, func() { HasFieldMarshal.Encode(TableTypeDef, 1) })
}

func TestCodedKnownValues(t *testing.T) {
	// TypeDefOrRef uses 2 tag bits: TypeDef=0, TypeRef=1, TypeSpec=2.
	require.Equal(t, uint8(2), TypeDefOrRef.TagBits())
	require.Equal(t, uint32(5), TypeDefOrRef.Encode(TableTypeRef, 1))
	require.Equal(t, uint32(0x0A), TypeDefOrRef.Encode(TableTypeSpec, 2))
}

func TestTokenRoundTrip(t *testing.T) {
	tok := MakeToken(TableTypeDef, 0x123456)
	require.Equal(t, Token(0x02123456), tok)
	require.Equal(t, TableTypeDef, tok.Table())
	require.Equal(t, uint32(0x123456), tok.Row())

	us := UserStringToken(0x42)
	require.Equal(t, Token(0x70000042), us)
}
