// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// The error kinds of the engine. Each is a marker; errors constructed by the
// helpers below are matched with errors.Is.
var (
	// ErrCorruptIndex marks a raw row index, coded-index tag, or heap offset
	// that is out of range for its target.
	ErrCorruptIndex = errors.New("cilmeta: corrupt index")
	// ErrCorruptBlob marks a malformed compressed integer or a blob whose
	// length exceeds the heap.
	ErrCorruptBlob = errors.New("cilmeta: corrupt blob")
	// ErrUnsupportedTable marks a Valid-mask bit for a table the engine has
	// no row codec for.
	ErrUnsupportedTable = errors.New("cilmeta: unsupported table")
	// ErrShortRead marks a truncated input.
	ErrShortRead = errors.New("cilmeta: short read")
	// ErrShortWrite marks a truncated output.
	ErrShortWrite = errors.New("cilmeta: short write")
	// ErrInvalidState marks a mutation attempted after finalization began, or
	// a repeated finalize.
	ErrInvalidState = errors.New("cilmeta: invalid state")
	// ErrDescriptorConflict marks a duplicate class or member where the
	// contract forbids duplicates.
	ErrDescriptorConflict = errors.New("cilmeta: descriptor conflict")
	// ErrSignatureTooLarge marks a value outside the compressed-unsigned
	// range [0, 0x1FFFFFFF].
	ErrSignatureTooLarge = errors.New("cilmeta: signature too large")
	// ErrUnresolved marks a descriptor reference that could not be bound
	// during resolution.
	ErrUnresolved = errors.New("cilmeta: unresolved reference")
)

// CorruptIndexErrorf formats an error marked as ErrCorruptIndex.
func CorruptIndexErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruptIndex)
}

// CorruptBlobErrorf formats an error marked as ErrCorruptBlob.
func CorruptBlobErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruptBlob)
}

// InvalidStateErrorf formats an error marked as ErrInvalidState.
func InvalidStateErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidState)
}

// UnresolvedErrorf formats an error marked as ErrUnresolved.
func UnresolvedErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnresolved)
}

// RowErrorf wraps err with the table, row and column it was detected in.
// Reader diagnostics are built exclusively through it so that lenient-mode
// logging has a uniform shape.
func RowErrorf(err error, id TableID, row uint32, column string) error {
	return errors.Wrapf(err, "table %s row %d column %s", id, row, column)
}
