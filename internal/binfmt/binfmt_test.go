// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package binfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatterCompressedUint(t *testing.T) {
	f := New([]byte{0x03, 0xAE, 0x57})
	f.CompressedUint("value a")
	f.CompressedUint("value b")
	require.False(t, f.More())
	require.Equal(t,
		"0-1: x 03   # cuint(3): value a\n"+
			"1-3: x ae57 # cuint(11863): value b\n",
		f.String())
}

func TestFormatterLine(t *testing.T) {
	f := New([]byte{0x42, 0x53, 0x4A, 0x42})
	f.Line(4).Append("x ").HexBytes(4).Done("magic")
	require.Equal(t, 4, f.Offset())
	require.Equal(t, "0-4: x 42534a42 # magic\n", f.String())
}
