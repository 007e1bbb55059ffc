// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
	"github.com/cockroachdb/errors"
)

// CustomAttrProlog is the 16-bit prolog opening every custom-attribute value
// blob.
const CustomAttrProlog = 0x0001

// CAArg is one fixed or named argument of a custom-attribute value. Elem
// selects the variant: integral kinds use I, R4/R8 use F, STRING uses Str
// (with Null distinguishing the null string from the empty one).
type CAArg struct {
	Elem ElementType
	I    uint64
	F    float64
	Str  string
	Null bool
}

// CANamedKind distinguishes field and property named arguments.
type CANamedKind uint8

const (
	CANamedField    CANamedKind = 0x53
	CANamedProperty CANamedKind = 0x54
)

// CANamedArg is a named argument trailing the fixed arguments.
type CANamedArg struct {
	Kind CANamedKind
	Name string
	Arg  CAArg
}

// CustomAttrValue is a decoded custom-attribute value blob. Decoding
// requires the constructor signature, so the reader keeps values opaque and
// decodes on demand.
type CustomAttrValue struct {
	Fixed []CAArg
	Named []CANamedArg
}

func appendCAArg(buf []byte, a *CAArg) ([]byte, error) {
	switch a.Elem {
	case ElemBoolean, ElemI1, ElemU1:
		return append(buf, byte(a.I)), nil
	case ElemChar, ElemI2, ElemU2:
		return binary.LittleEndian.AppendUint16(buf, uint16(a.I)), nil
	case ElemI4, ElemU4:
		return binary.LittleEndian.AppendUint32(buf, uint32(a.I)), nil
	case ElemI8, ElemU8:
		return binary.LittleEndian.AppendUint64(buf, a.I), nil
	case ElemR4:
		return binary.LittleEndian.AppendUint32(buf,
			math.Float32bits(float32(a.F))), nil
	case ElemR8:
		return binary.LittleEndian.AppendUint64(buf,
			math.Float64bits(a.F)), nil
	case ElemString:
		return appendSerString(buf, a.Str, a.Null)
	}
	return nil, errors.Newf(
		"cilmeta: %s is not a custom-attribute argument type", a.Elem)
}

// appendSerString appends a SerString: 0xFF for null, else compressed length
// and UTF-8 bytes.
func appendSerString(buf []byte, s string, null bool) ([]byte, error) {
	if null {
		return append(buf, 0xFF), nil
	}
	buf, err := cint.AppendUint(buf, uint32(len(s)))
	if err != nil {
		return nil, err
	}
	return append(buf, s...), nil
}

// EncodeCustomAttr serializes a custom-attribute value blob: the prolog, the
// fixed arguments in constructor order, the named-argument count and the
// named arguments.
func EncodeCustomAttr(v *CustomAttrValue) ([]byte, error) {
	buf := binary.LittleEndian.AppendUint16(nil, CustomAttrProlog)
	var err error
	for i := range v.Fixed {
		if buf, err = appendCAArg(buf, &v.Fixed[i]); err != nil {
			return nil, err
		}
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(v.Named)))
	for i := range v.Named {
		na := &v.Named[i]
		buf = append(buf, byte(na.Kind), byte(na.Arg.Elem))
		if buf, err = appendSerString(buf, na.Name, false); err != nil {
			return nil, err
		}
		if buf, err = appendCAArg(buf, &na.Arg); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

type caDecoder struct {
	b   []byte
	pos int
}

func (d *caDecoder) need(n int) error {
	if d.pos+n > len(d.b) {
		return base.CorruptBlobErrorf(
			"cilmeta: custom-attribute value truncated at offset %d", d.pos)
	}
	return nil
}

func (d *caDecoder) arg(elem ElementType) (CAArg, error) {
	a := CAArg{Elem: elem}
	switch elem {
	case ElemBoolean, ElemI1, ElemU1:
		if err := d.need(1); err != nil {
			return a, err
		}
		a.I = uint64(d.b[d.pos])
		d.pos++
	case ElemChar, ElemI2, ElemU2:
		if err := d.need(2); err != nil {
			return a, err
		}
		a.I = uint64(binary.LittleEndian.Uint16(d.b[d.pos:]))
		d.pos += 2
	case ElemI4, ElemU4:
		if err := d.need(4); err != nil {
			return a, err
		}
		a.I = uint64(binary.LittleEndian.Uint32(d.b[d.pos:]))
		d.pos += 4
	case ElemI8, ElemU8:
		if err := d.need(8); err != nil {
			return a, err
		}
		a.I = binary.LittleEndian.Uint64(d.b[d.pos:])
		d.pos += 8
	case ElemR4:
		if err := d.need(4); err != nil {
			return a, err
		}
		a.F = float64(math.Float32frombits(
			binary.LittleEndian.Uint32(d.b[d.pos:])))
		d.pos += 4
	case ElemR8:
		if err := d.need(8); err != nil {
			return a, err
		}
		a.F = math.Float64frombits(binary.LittleEndian.Uint64(d.b[d.pos:]))
		d.pos += 8
	case ElemString:
		s, null, err := d.serString()
		if err != nil {
			return a, err
		}
		a.Str, a.Null = s, null
	default:
		return a, base.CorruptBlobErrorf(
			"cilmeta: %s is not a custom-attribute argument type", elem)
	}
	return a, nil
}

func (d *caDecoder) serString() (string, bool, error) {
	if err := d.need(1); err != nil {
		return "", false, err
	}
	if d.b[d.pos] == 0xFF {
		d.pos++
		return "", true, nil
	}
	n, ln, err := cint.Uint(d.b[d.pos:])
	if err != nil {
		return "", false, err
	}
	d.pos += ln
	if err := d.need(int(n)); err != nil {
		return "", false, err
	}
	s := string(d.b[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, false, nil
}

// DecodeCustomAttr decodes a custom-attribute value blob. fixed gives the
// element types of the constructor's parameters in order.
func DecodeCustomAttr(blob []byte, fixed []ElementType) (*CustomAttrValue, error) {
	d := &caDecoder{b: blob}
	if err := d.need(2); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint16(blob) != CustomAttrProlog {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: custom-attribute value prolog is 0x%04X",
			binary.LittleEndian.Uint16(blob))
	}
	d.pos = 2
	v := &CustomAttrValue{}
	for _, elem := range fixed {
		a, err := d.arg(elem)
		if err != nil {
			return nil, err
		}
		v.Fixed = append(v.Fixed, a)
	}
	if err := d.need(2); err != nil {
		return nil, err
	}
	numNamed := binary.LittleEndian.Uint16(d.b[d.pos:])
	d.pos += 2
	for i := 0; i < int(numNamed); i++ {
		if err := d.need(2); err != nil {
			return nil, err
		}
		kind := CANamedKind(d.b[d.pos])
		if kind != CANamedField && kind != CANamedProperty {
			return nil, base.CorruptBlobErrorf(
				"cilmeta: named-argument kind 0x%02X", uint8(kind))
		}
		elem := ElementType(d.b[d.pos+1])
		d.pos += 2
		name, _, err := d.serString()
		if err != nil {
			return nil, err
		}
		a, err := d.arg(elem)
		if err != nil {
			return nil, err
		}
		v.Named = append(v.Named, CANamedArg{Kind: kind, Name: name, Arg: a})
	}
	return v, nil
}
