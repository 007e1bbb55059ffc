// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// Token is a 32-bit metadata token: the table ID in the high byte and a
// 1-based row index in the low 24 bits. The zero Token denotes "no value".
type Token uint32

// MakeToken constructs a token from a table ID and a 1-based row index.
func MakeToken(id TableID, row uint32) Token {
	return Token(uint32(id)<<24 | row&0xFFFFFF)
}

// UserStringToken constructs a 0x70-prefixed token addressing the #US heap,
// as consumed by ldstr. off is a #US heap offset.
func UserStringToken(off uint32) Token {
	return Token(0x70<<24 | off&0xFFFFFF)
}

// Table returns the table ID in the token's high byte.
func (t Token) Table() TableID { return TableID(t >> 24) }

// Row returns the 1-based row index in the token's low 24 bits.
func (t Token) Row() uint32 { return uint32(t) & 0xFFFFFF }

// IsNil reports whether the token denotes "no value".
func (t Token) IsNil() bool { return t == 0 }

func (t Token) String() string {
	if t.IsNil() {
		return "Token(nil)"
	}
	return fmt.Sprintf("%s:%d", t.Table(), t.Row())
}

// SafeFormat implements redact.SafeFormatter.
func (t Token) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(t.String()))
}
