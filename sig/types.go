// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/cilmeta/internal/base"
)

// Type is the decoded form of an encoded type within a signature. It is a
// tagged variant: Kind selects which of the payload fields are meaningful.
//
//	primitives            no payload
//	VALUETYPE, CLASS      Class
//	PTR, SZARRAY          Mods, Elem (PTR may point at VOID)
//	ARRAY                 Elem, Shape
//	VAR, MVAR             Num
//	GENERICINST           Elem (the template, VALUETYPE or CLASS), Args
//	FNPTR                 Fn
type Type struct {
	Kind  ElementType
	Mods  []CustomMod
	Class base.Token
	Elem  *Type
	Num   uint32
	Shape *ArrayShape
	Args  []Type
	Fn    *MethodSig
}

// CustomMod is a modreq/modopt modifier attached to a type position.
type CustomMod struct {
	Optional bool
	Class    base.Token
}

// ArrayShape is the full-rank shape of an ELEMENT_TYPE_ARRAY: rank, the
// sized dimensions and the explicit lower bounds.
type ArrayShape struct {
	Rank     uint32
	Sizes    []uint32
	LoBounds []int32
}

// Primitive returns the Type for a self-contained type code.
func Primitive(e ElementType) Type { return Type{Kind: e} }

// ClassType returns a CLASS type referencing tok.
func ClassType(tok base.Token) Type {
	return Type{Kind: ElemClass, Class: tok}
}

// ValueType returns a VALUETYPE type referencing tok.
func ValueType(tok base.Token) Type {
	return Type{Kind: ElemValueType, Class: tok}
}

// SZArrayOf returns a single-dimensional, zero-based array of elem.
func SZArrayOf(elem Type) Type {
	return Type{Kind: ElemSZArray, Elem: &elem}
}

// PointerTo returns an unmanaged pointer to elem.
func PointerTo(elem Type) Type {
	return Type{Kind: ElemPtr, Elem: &elem}
}

// GenericInst returns an instantiation of the template type with args.
func GenericInst(template Type, args ...Type) Type {
	return Type{Kind: ElemGenericInst, Elem: &template, Args: args}
}

// Var returns the generic type parameter with the given number.
func Var(n uint32) Type { return Type{Kind: ElemVar, Num: n} }

// MVar returns the generic method parameter with the given number.
func MVar(n uint32) Type { return Type{Kind: ElemMVar, Num: n} }

func (t Type) String() string {
	switch t.Kind {
	case ElemValueType, ElemClass:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Class)
	case ElemPtr:
		return "PTR " + t.Elem.String()
	case ElemSZArray:
		return t.Elem.String() + "[]"
	case ElemArray:
		return fmt.Sprintf("%s[rank %d]", t.Elem, t.Shape.Rank)
	case ElemVar, ElemMVar:
		return fmt.Sprintf("%s!%d", t.Kind, t.Num)
	case ElemGenericInst:
		args := make([]string, len(t.Args))
		for i := range t.Args {
			args[i] = t.Args[i].String()
		}
		return fmt.Sprintf("%s<%s>", t.Elem, strings.Join(args, ", "))
	case ElemFnPtr:
		return "FNPTR"
	default:
		return t.Kind.String()
	}
}

// Param is one parameter position of a method or property signature.
type Param struct {
	Mods       []CustomMod
	ByRef      bool
	TypedByRef bool
	Type       Type
}

// MethodSig is a method (or standalone method-ref) signature.
type MethodSig struct {
	// CallConv packs the calling-convention kind with the HASTHIS,
	// EXPLICITTHIS and GENERIC flags.
	CallConv      uint8
	GenParamCount uint32
	Ret           Param
	Params        []Param
	// SentinelAt is the parameter index before which the vararg SENTINEL
	// marker is emitted, or -1 when the signature has none.
	SentinelAt int
}

// NewMethodSig returns a sentinel-free method signature.
func NewMethodSig(callConv uint8, ret Param, params ...Param) *MethodSig {
	return &MethodSig{
		CallConv:   callConv,
		Ret:        ret,
		Params:     params,
		SentinelAt: -1,
	}
}

// FieldSig is a field signature.
type FieldSig struct {
	Mods []CustomMod
	Type Type
}

// LocalVar is one slot of a local-variable signature.
type LocalVar struct {
	Mods       []CustomMod
	Pinned     bool
	ByRef      bool
	TypedByRef bool
	Type       Type
}

// LocalVarSig is a local-variable signature.
type LocalVarSig struct {
	Locals []LocalVar
}

// PropertySig is a property signature.
type PropertySig struct {
	HasThis bool
	Mods    []CustomMod
	Ret     Type
	Params  []Param
}

// MethodSpecSig is the instantiation blob of a MethodSpec row.
type MethodSpecSig struct {
	Args []Type
}

// TypeSpecSig is the blob of a TypeSpec row: a bare encoded type.
type TypeSpecSig struct {
	Type Type
}
