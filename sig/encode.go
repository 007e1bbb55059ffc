// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
	"github.com/cockroachdb/errors"
)

// Encoder serializes signatures into their blob form. The first error
// encountered latches; subsequent appends are no-ops.
type Encoder struct {
	buf []byte
	err error
}

// Bytes returns the encoded blob, or the latched error.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

func (e *Encoder) byte(b byte) {
	if e.err == nil {
		e.buf = append(e.buf, b)
	}
}

func (e *Encoder) uint(v uint32) {
	if e.err == nil {
		e.buf, e.err = cint.AppendUint(e.buf, v)
	}
}

func (e *Encoder) int(v int32) {
	if e.err == nil {
		e.buf, e.err = cint.AppendInt(e.buf, v)
	}
}

// typeDefOrRef writes the compressed TypeDefOrRef coded index for tok.
func (e *Encoder) typeDefOrRef(tok base.Token) {
	if e.err != nil {
		return
	}
	if _, ok := base.TypeDefOrRef.Tag(tok.Table()); !ok {
		e.err = errors.Newf(
			"cilmeta: %s cannot appear in a signature type position", tok)
		return
	}
	e.uint(base.TypeDefOrRef.Encode(tok.Table(), tok.Row()))
}

func (e *Encoder) mods(mods []CustomMod) {
	for _, m := range mods {
		if m.Optional {
			e.byte(byte(ElemCModOpt))
		} else {
			e.byte(byte(ElemCModReqd))
		}
		e.typeDefOrRef(m.Class)
	}
}

func (e *Encoder) typ(t *Type) {
	if e.err != nil {
		return
	}
	e.mods(t.Mods)
	switch t.Kind {
	case ElemValueType, ElemClass:
		e.byte(byte(t.Kind))
		e.typeDefOrRef(t.Class)
	case ElemPtr, ElemSZArray:
		e.byte(byte(t.Kind))
		e.typ(t.Elem)
	case ElemArray:
		e.byte(byte(ElemArray))
		e.typ(t.Elem)
		e.uint(t.Shape.Rank)
		e.uint(uint32(len(t.Shape.Sizes)))
		for _, s := range t.Shape.Sizes {
			e.uint(s)
		}
		e.uint(uint32(len(t.Shape.LoBounds)))
		for _, lb := range t.Shape.LoBounds {
			e.int(lb)
		}
	case ElemVar, ElemMVar:
		e.byte(byte(t.Kind))
		e.uint(t.Num)
	case ElemGenericInst:
		e.byte(byte(ElemGenericInst))
		if t.Elem.Kind != ElemClass && t.Elem.Kind != ElemValueType {
			e.err = errors.Newf(
				"cilmeta: GENERICINST template must be CLASS or VALUETYPE, got %s",
				t.Elem.Kind)
			return
		}
		e.byte(byte(t.Elem.Kind))
		e.typeDefOrRef(t.Elem.Class)
		e.uint(uint32(len(t.Args)))
		for i := range t.Args {
			e.typ(&t.Args[i])
		}
	case ElemFnPtr:
		e.byte(byte(ElemFnPtr))
		e.method(t.Fn)
	default:
		if !t.Kind.IsPrimitive() {
			e.err = errors.Newf(
				"cilmeta: cannot encode type code %s", t.Kind)
			return
		}
		e.byte(byte(t.Kind))
	}
}

// param encodes a parameter or return-type position.
func (e *Encoder) param(p *Param) {
	e.mods(p.Mods)
	switch {
	case p.TypedByRef:
		e.byte(byte(ElemTypedByRef))
	case p.ByRef:
		e.byte(byte(ElemByRef))
		e.typ(&p.Type)
	default:
		e.typ(&p.Type)
	}
}

func (e *Encoder) method(m *MethodSig) {
	e.byte(m.CallConv)
	if m.CallConv&CallConvGeneric != 0 {
		e.uint(m.GenParamCount)
	}
	e.uint(uint32(len(m.Params)))
	e.param(&m.Ret)
	for i := range m.Params {
		if i == m.SentinelAt {
			e.byte(byte(ElemSentinel))
		}
		e.param(&m.Params[i])
	}
}

// EncodeMethod serializes a method signature blob.
func EncodeMethod(m *MethodSig) ([]byte, error) {
	var e Encoder
	e.method(m)
	return e.Bytes()
}

// EncodeField serializes a field signature blob.
func EncodeField(f *FieldSig) ([]byte, error) {
	var e Encoder
	e.byte(CallConvField)
	e.mods(f.Mods)
	e.typ(&f.Type)
	return e.Bytes()
}

// EncodeLocals serializes a local-variable signature blob.
func EncodeLocals(l *LocalVarSig) ([]byte, error) {
	var e Encoder
	e.byte(CallConvLocalSig)
	e.uint(uint32(len(l.Locals)))
	for i := range l.Locals {
		v := &l.Locals[i]
		if v.TypedByRef {
			e.byte(byte(ElemTypedByRef))
			continue
		}
		e.mods(v.Mods)
		if v.Pinned {
			e.byte(byte(ElemPinned))
		}
		if v.ByRef {
			e.byte(byte(ElemByRef))
		}
		e.typ(&v.Type)
	}
	return e.Bytes()
}

// EncodeProperty serializes a property signature blob.
func EncodeProperty(p *PropertySig) ([]byte, error) {
	var e Encoder
	cc := byte(CallConvProperty)
	if p.HasThis {
		cc |= CallConvHasThis
	}
	e.byte(cc)
	e.uint(uint32(len(p.Params)))
	e.mods(p.Mods)
	e.typ(&p.Ret)
	for i := range p.Params {
		e.param(&p.Params[i])
	}
	return e.Bytes()
}

// EncodeTypeSpec serializes a TypeSpec blob.
func EncodeTypeSpec(t *TypeSpecSig) ([]byte, error) {
	var e Encoder
	e.typ(&t.Type)
	return e.Bytes()
}

// EncodeMethodSpec serializes a MethodSpec instantiation blob.
func EncodeMethodSpec(m *MethodSpecSig) ([]byte, error) {
	var e Encoder
	e.byte(CallConvGenericInst)
	e.uint(uint32(len(m.Args)))
	for i := range m.Args {
		e.typ(&m.Args[i])
	}
	return e.Bytes()
}
