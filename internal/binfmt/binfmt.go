// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package binfmt formats metadata images as annotated hex dumps: the
// physical root header and the contents of the four heaps.
package binfmt

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/cilmeta/internal/cint"
)

// bytesPerLine caps how many bytes a single annotated line covers. Longer
// spans wrap onto continuation lines that carry no comment.
const bytesPerLine = 16

// Formatter annotates a binary buffer as a sequence of lines, each covering
// a byte range and carrying an optional comment. Rendering is deferred to
// String, which aligns all comments past the widest line body.
type Formatter struct {
	data []byte
	off  int
	// offsetWidth is the number of decimal digits needed for the largest
	// offset in data; line prefixes are zero-padded to it.
	offsetWidth int
	lines       []annotatedLine
}

type annotatedLine struct {
	start, end int
	body       string
	comment    string
}

// New constructs a Formatter over data, positioned at offset zero.
func New(data []byte) *Formatter {
	w := 1
	for v := len(data) - 1; v >= 10; v /= 10 {
		w++
	}
	return &Formatter{data: data, offsetWidth: w}
}

// More reports whether the formatter's position is before the end of data.
func (f *Formatter) More() bool { return f.off < len(f.data) }

// Remaining returns the number of unformatted bytes.
func (f *Formatter) Remaining() int { return len(f.data) - f.off }

// Offset returns the current position within data.
func (f *Formatter) Offset() int { return f.off }

// PeekUint decodes a little-endian unsigned integer of the given byte width
// at the current position without advancing.
func (f *Formatter) PeekUint(w int) uint64 {
	d := f.data[f.off:]
	switch w {
	case 1:
		return uint64(d[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(d))
	case 4:
		return uint64(binary.LittleEndian.Uint32(d))
	case 8:
		return binary.LittleEndian.Uint64(d)
	default:
		panic(fmt.Sprintf("unsupported width %d", w))
	}
}

// HexBytesln formats the next n bytes as hex, annotated with the formatted
// comment. Spans wider than bytesPerLine wrap; only the first line carries
// the comment.
func (f *Formatter) HexBytesln(n int, format string, args ...interface{}) {
	comment := fmt.Sprintf(format, args...)
	for n > 0 {
		c := min(n, bytesPerLine)
		f.hexLine(c, comment)
		comment = ""
		n -= c
	}
}

// HexTextln formats the next n bytes as hex, annotated with an ASCII
// rendering in which non-printable bytes appear as dots.
func (f *Formatter) HexTextln(n int) {
	for n > 0 {
		c := min(n, bytesPerLine)
		f.hexLine(c, asciiPreview(f.data[f.off:f.off+c]))
		n -= c
	}
}

// CompressedUint formats an ECMA-335 compressed unsigned integer at the
// current position, annotating it with the decoded value followed by the
// formatted comment, and returns the value. A byte that does not start a
// valid compressed integer formats as a single flagged line.
func (f *Formatter) CompressedUint(format string, args ...interface{}) uint32 {
	v, n, err := cint.Uint(f.data[f.off:])
	if err != nil {
		f.hexLine(1, fmt.Sprintf("invalid compressed uint: %s", err))
		return 0
	}
	f.hexLine(n, fmt.Sprintf("cuint(%d): %s", v, fmt.Sprintf(format, args...)))
	return v
}

func (f *Formatter) hexLine(n int, comment string) {
	f.lines = append(f.lines, annotatedLine{
		start:   f.off,
		end:     f.off + n,
		body:    "x " + hex.EncodeToString(f.data[f.off:f.off+n]),
		comment: comment,
	})
	f.off += n
}

// Line starts a manually assembled line covering the next n bytes. The
// returned Line accumulates body text through Append and HexBytes and is
// committed by Done.
func (f *Formatter) Line(n int) Line {
	return Line{f: f, start: f.off, end: f.off + n}
}

// String renders the accumulated lines. Each line is prefixed with its byte
// range; comments are aligned past the widest body.
func (f *Formatter) String() string {
	width := 0
	for i := range f.lines {
		width = max(width, len(f.lines[i].body))
	}
	var sb strings.Builder
	for _, l := range f.lines {
		fmt.Fprintf(&sb, "%0*d-%0*d: ",
			f.offsetWidth, l.start, f.offsetWidth, l.end)
		if l.comment == "" {
			sb.WriteString(l.body)
		} else {
			fmt.Fprintf(&sb, "%-*s # %s", width, l.body, l.comment)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Line accumulates one annotated line. Its methods return the updated Line
// to permit chaining.
type Line struct {
	f          *Formatter
	start, end int
	body       string
}

// Append appends literal text to the line's body.
func (l Line) Append(s string) Line {
	l.body += s
	return l
}

// HexBytes appends the next n bytes as hex and advances the formatter.
func (l Line) HexBytes(n int) Line {
	l.body += hex.EncodeToString(l.f.data[l.f.off : l.f.off+n])
	l.f.off += n
	return l
}

// Done commits the line with the formatted comment.
func (l Line) Done(format string, args ...interface{}) {
	l.f.lines = append(l.f.lines, annotatedLine{
		start:   l.start,
		end:     l.end,
		body:    l.body,
		comment: fmt.Sprintf(format, args...),
	})
}

func asciiPreview(b []byte) string {
	s := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x20 && c < 0x7F {
			s[i] = c
		} else {
			s[i] = '.'
		}
	}
	return string(s)
}
