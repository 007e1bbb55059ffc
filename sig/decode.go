// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
)

// Decoder is a single-pass state machine over a signature blob.
type Decoder struct {
	b   []byte
	pos int
}

// NewDecoder returns a decoder over blob.
func NewDecoder(blob []byte) *Decoder {
	return &Decoder{b: blob}
}

// Remaining returns the number of undecoded bytes.
func (d *Decoder) Remaining() int { return len(d.b) - d.pos }

func (d *Decoder) byte() (byte, error) {
	if d.pos >= len(d.b) {
		return 0, base.CorruptBlobErrorf(
			"cilmeta: signature truncated at offset %d", d.pos)
	}
	b := d.b[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) peek() (byte, error) {
	if d.pos >= len(d.b) {
		return 0, base.CorruptBlobErrorf(
			"cilmeta: signature truncated at offset %d", d.pos)
	}
	return d.b[d.pos], nil
}

func (d *Decoder) uint() (uint32, error) {
	v, n, err := cint.Uint(d.b[d.pos:])
	d.pos += n
	return v, err
}

func (d *Decoder) int() (int32, error) {
	v, n, err := cint.Int(d.b[d.pos:])
	d.pos += n
	return v, err
}

// typeDefOrRef reads a compressed TypeDefOrRef coded index and returns it as
// a token.
func (d *Decoder) typeDefOrRef() (base.Token, error) {
	raw, err := d.uint()
	if err != nil {
		return 0, err
	}
	id, row, err := base.TypeDefOrRef.Decode(raw)
	if err != nil {
		return 0, err
	}
	return base.MakeToken(id, row), nil
}

// mods consumes any run of CMOD_REQD/CMOD_OPT prefixes.
func (d *Decoder) mods() ([]CustomMod, error) {
	var mods []CustomMod
	for {
		b, err := d.peek()
		if err != nil || (ElementType(b) != ElemCModReqd && ElementType(b) != ElemCModOpt) {
			return mods, nil
		}
		d.pos++
		tok, err := d.typeDefOrRef()
		if err != nil {
			return nil, err
		}
		mods = append(mods, CustomMod{
			Optional: ElementType(b) == ElemCModOpt,
			Class:    tok,
		})
	}
}

func (d *Decoder) typ() (Type, error) {
	var t Type
	var err error
	if t.Mods, err = d.mods(); err != nil {
		return t, err
	}
	b, err := d.byte()
	if err != nil {
		return t, err
	}
	t.Kind = ElementType(b)
	switch t.Kind {
	case ElemValueType, ElemClass:
		t.Class, err = d.typeDefOrRef()
	case ElemPtr, ElemSZArray:
		var elem Type
		if elem, err = d.typ(); err == nil {
			t.Elem = &elem
		}
	case ElemArray:
		var elem Type
		if elem, err = d.typ(); err != nil {
			return t, err
		}
		t.Elem = &elem
		t.Shape, err = d.arrayShape()
	case ElemVar, ElemMVar:
		t.Num, err = d.uint()
	case ElemGenericInst:
		err = d.genericInst(&t)
	case ElemFnPtr:
		t.Fn, err = d.method()
	default:
		if !t.Kind.IsPrimitive() {
			return t, base.CorruptBlobErrorf(
				"cilmeta: unexpected type code %s at offset %d",
				t.Kind, d.pos-1)
		}
	}
	return t, err
}

func (d *Decoder) arrayShape() (*ArrayShape, error) {
	var s ArrayShape
	var err error
	if s.Rank, err = d.uint(); err != nil {
		return nil, err
	}
	numSizes, err := d.uint()
	if err != nil {
		return nil, err
	}
	if numSizes > s.Rank {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: array shape with %d sizes for rank %d", numSizes, s.Rank)
	}
	for i := uint32(0); i < numSizes; i++ {
		v, err := d.uint()
		if err != nil {
			return nil, err
		}
		s.Sizes = append(s.Sizes, v)
	}
	numLo, err := d.uint()
	if err != nil {
		return nil, err
	}
	if numLo > s.Rank {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: array shape with %d lower bounds for rank %d", numLo, s.Rank)
	}
	for i := uint32(0); i < numLo; i++ {
		v, err := d.int()
		if err != nil {
			return nil, err
		}
		s.LoBounds = append(s.LoBounds, v)
	}
	return &s, nil
}

func (d *Decoder) genericInst(t *Type) error {
	b, err := d.byte()
	if err != nil {
		return err
	}
	k := ElementType(b)
	if k != ElemClass && k != ElemValueType {
		return base.CorruptBlobErrorf(
			"cilmeta: GENERICINST template code %s at offset %d", k, d.pos-1)
	}
	tok, err := d.typeDefOrRef()
	if err != nil {
		return err
	}
	t.Elem = &Type{Kind: k, Class: tok}
	argc, err := d.uint()
	if err != nil {
		return err
	}
	t.Args = make([]Type, 0, argc)
	for i := uint32(0); i < argc; i++ {
		arg, err := d.typ()
		if err != nil {
			return err
		}
		t.Args = append(t.Args, arg)
	}
	return nil
}

// param decodes a parameter or return-type position.
func (d *Decoder) param() (Param, error) {
	var p Param
	var err error
	if p.Mods, err = d.mods(); err != nil {
		return p, err
	}
	b, err := d.peek()
	if err != nil {
		return p, err
	}
	switch ElementType(b) {
	case ElemTypedByRef:
		d.pos++
		p.TypedByRef = true
		return p, nil
	case ElemByRef:
		d.pos++
		p.ByRef = true
	}
	p.Type, err = d.typ()
	return p, err
}

func (d *Decoder) method() (*MethodSig, error) {
	cc, err := d.byte()
	if err != nil {
		return nil, err
	}
	m := &MethodSig{CallConv: cc, SentinelAt: -1}
	if cc&CallConvGeneric != 0 {
		if m.GenParamCount, err = d.uint(); err != nil {
			return nil, err
		}
	}
	count, err := d.uint()
	if err != nil {
		return nil, err
	}
	if m.Ret, err = d.param(); err != nil {
		return nil, err
	}
	m.Params = make([]Param, 0, count)
	for i := uint32(0); i < count; i++ {
		if b, err := d.peek(); err == nil && ElementType(b) == ElemSentinel {
			d.pos++
			m.SentinelAt = int(i)
		}
		p, err := d.param()
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, p)
	}
	return m, nil
}

// DecodeMethod decodes a method signature blob.
func DecodeMethod(blob []byte) (*MethodSig, error) {
	return NewDecoder(blob).method()
}

// DecodeField decodes a field signature blob.
func DecodeField(blob []byte) (*FieldSig, error) {
	d := NewDecoder(blob)
	cc, err := d.byte()
	if err != nil {
		return nil, err
	}
	if cc&CallConvMask != CallConvField {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: field signature starts with 0x%02X", cc)
	}
	var f FieldSig
	if f.Mods, err = d.mods(); err != nil {
		return nil, err
	}
	f.Type, err = d.typ()
	return &f, err
}

// DecodeLocals decodes a local-variable signature blob.
func DecodeLocals(blob []byte) (*LocalVarSig, error) {
	d := NewDecoder(blob)
	cc, err := d.byte()
	if err != nil {
		return nil, err
	}
	if cc != CallConvLocalSig {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: local signature starts with 0x%02X", cc)
	}
	count, err := d.uint()
	if err != nil {
		return nil, err
	}
	l := &LocalVarSig{Locals: make([]LocalVar, 0, count)}
	for i := uint32(0); i < count; i++ {
		var v LocalVar
		b, err := d.peek()
		if err != nil {
			return nil, err
		}
		if ElementType(b) == ElemTypedByRef {
			d.pos++
			v.TypedByRef = true
			l.Locals = append(l.Locals, v)
			continue
		}
		if v.Mods, err = d.mods(); err != nil {
			return nil, err
		}
		if b, err = d.peek(); err == nil && ElementType(b) == ElemPinned {
			d.pos++
			v.Pinned = true
		}
		if b, err = d.peek(); err == nil && ElementType(b) == ElemByRef {
			d.pos++
			v.ByRef = true
		}
		if v.Type, err = d.typ(); err != nil {
			return nil, err
		}
		l.Locals = append(l.Locals, v)
	}
	return l, nil
}

// DecodeProperty decodes a property signature blob.
func DecodeProperty(blob []byte) (*PropertySig, error) {
	d := NewDecoder(blob)
	cc, err := d.byte()
	if err != nil {
		return nil, err
	}
	if cc&CallConvMask != CallConvProperty {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: property signature starts with 0x%02X", cc)
	}
	p := &PropertySig{HasThis: cc&CallConvHasThis != 0}
	count, err := d.uint()
	if err != nil {
		return nil, err
	}
	if p.Mods, err = d.mods(); err != nil {
		return nil, err
	}
	if p.Ret, err = d.typ(); err != nil {
		return nil, err
	}
	p.Params = make([]Param, 0, count)
	for i := uint32(0); i < count; i++ {
		prm, err := d.param()
		if err != nil {
			return nil, err
		}
		p.Params = append(p.Params, prm)
	}
	return p, nil
}

// DecodeTypeSpec decodes a TypeSpec blob.
func DecodeTypeSpec(blob []byte) (*TypeSpecSig, error) {
	d := NewDecoder(blob)
	t, err := d.typ()
	if err != nil {
		return nil, err
	}
	return &TypeSpecSig{Type: t}, nil
}

// DecodeMethodSpec decodes a MethodSpec instantiation blob.
func DecodeMethodSpec(blob []byte) (*MethodSpecSig, error) {
	d := NewDecoder(blob)
	cc, err := d.byte()
	if err != nil {
		return nil, err
	}
	if cc != CallConvGenericInst {
		return nil, base.CorruptBlobErrorf(
			"cilmeta: method instantiation starts with 0x%02X", cc)
	}
	argc, err := d.uint()
	if err != nil {
		return nil, err
	}
	m := &MethodSpecSig{Args: make([]Type, 0, argc)}
	for i := uint32(0); i < argc; i++ {
		t, err := d.typ()
		if err != nil {
			return nil, err
		}
		m.Args = append(m.Args, t)
	}
	return m, nil
}
