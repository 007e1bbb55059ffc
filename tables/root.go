// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"encoding/binary"

	"github.com/cockroachdb/cilmeta/heaps"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/errors"
)

// Metadata root framing. The root frames the #~ stream and the four heaps
// inside the CLI header's Metadata directory entry.
const (
	// RootSignature is the magic opening the metadata root ("BSJB").
	RootSignature = 0x424A5342

	rootMajorVersion = 1
	rootMinorVersion = 1

	// DefaultVersion is the runtime version string written when the caller
	// specifies none.
	DefaultVersion = "v4.0.30319"
)

// streamNames is the emission order of the five streams. All five are always
// written, empty or not.
var streamNames = []string{"#~", "#Strings", "#US", "#GUID", "#Blob"}

func align4(n int) int { return (n + 3) &^ 3 }

// WriteRoot frames the table stream and heaps into a metadata root.
func WriteRoot(tableStream []byte, h *heaps.Heaps, version string) []byte {
	if version == "" {
		version = DefaultVersion
	}
	verLen := align4(len(version) + 1)

	payloads := [][]byte{
		tableStream, h.Strings.Bytes(), h.UserStrings.Bytes(),
		h.GUID.Bytes(), h.Blob.Bytes(),
	}

	// Header, then one directory entry per stream, then the stream bytes,
	// each 4-byte aligned.
	headerSize := 16 + verLen + 4
	for _, name := range streamNames {
		headerSize += 8 + align4(len(name)+1)
	}

	size := headerSize
	offsets := make([]int, len(payloads))
	for i, p := range payloads {
		offsets[i] = size
		size += align4(len(p))
	}

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, RootSignature)
	buf = binary.LittleEndian.AppendUint16(buf, rootMajorVersion)
	buf = binary.LittleEndian.AppendUint16(buf, rootMinorVersion)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(verLen))
	buf = append(buf, version...)
	buf = appendZeros(buf, verLen-len(version))
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(streamNames)))
	for i, name := range streamNames {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(offsets[i]))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payloads[i])))
		buf = append(buf, name...)
		buf = appendZeros(buf, align4(len(name)+1)-len(name))
	}
	for _, p := range payloads {
		buf = append(buf, p...)
		buf = appendZeros(buf, align4(len(p))-len(p))
	}
	return buf
}

func appendZeros(buf []byte, n int) []byte {
	return append(buf, make([]byte, n)...)
}

// Root is a parsed metadata root: the table stream bytes, the heaps (views
// over the input buffer) and the version string.
type Root struct {
	Version     string
	TableStream []byte
	Heaps       *heaps.Heaps
}

// ReadRoot parses a metadata root. Heap contents alias data; the buffer must
// stay valid for the lifetime of any descriptor that defers blob decoding.
// Streams with unrecognized names (such as #Pdb) are ignored.
func ReadRoot(data []byte) (*Root, error) {
	if len(data) < 20 {
		return nil, errors.Mark(
			errors.Newf("cilmeta: metadata root of %d bytes", len(data)),
			base.ErrShortRead)
	}
	if sig := binary.LittleEndian.Uint32(data); sig != RootSignature {
		return nil, base.CorruptIndexErrorf(
			"cilmeta: metadata root signature 0x%08X", sig)
	}
	verLen := int(binary.LittleEndian.Uint32(data[12:]))
	if 16+verLen+4 > len(data) {
		return nil, errors.Mark(
			errors.Newf("cilmeta: metadata root truncated in version string"),
			base.ErrShortRead)
	}
	version := string(trimNul(data[16 : 16+verLen]))
	pos := 16 + verLen + 2
	numStreams := int(binary.LittleEndian.Uint16(data[pos:]))
	pos += 2

	r := &Root{Version: version, Heaps: heaps.New()}
	seenTables := false
	for i := 0; i < numStreams; i++ {
		if pos+8 > len(data) {
			return nil, errors.Mark(
				errors.Newf("cilmeta: metadata root truncated in stream directory"),
				base.ErrShortRead)
		}
		off := binary.LittleEndian.Uint32(data[pos:])
		size := binary.LittleEndian.Uint32(data[pos+4:])
		pos += 8
		nameStart := pos
		for pos < len(data) && data[pos] != 0 {
			pos++
		}
		if pos == len(data) {
			return nil, errors.Mark(
				errors.Newf("cilmeta: unterminated stream name"),
				base.ErrShortRead)
		}
		name := string(data[nameStart:pos])
		pos = nameStart + align4(pos-nameStart+1)

		if uint64(off)+uint64(size) > uint64(len(data)) {
			return nil, errors.Mark(
				errors.Newf("cilmeta: stream %s [%d, %d) exceeds root size %d",
					name, off, uint64(off)+uint64(size), len(data)),
				base.ErrShortRead)
		}
		body := data[off : off+size]
		switch name {
		case "#~":
			r.TableStream = body
			seenTables = true
		case "#Strings":
			r.Heaps.Strings.SetBytes(body)
		case "#US":
			r.Heaps.UserStrings.SetBytes(body)
		case "#GUID":
			r.Heaps.GUID.SetBytes(body)
		case "#Blob":
			r.Heaps.Blob.SetBytes(body)
		}
	}
	if !seenTables {
		return nil, base.CorruptIndexErrorf(
			"cilmeta: metadata root carries no #~ stream")
	}
	return r, nil
}

func trimNul(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
