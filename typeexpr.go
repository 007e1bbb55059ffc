// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/sig"
)

// TypeExpr is a type position in a signature under construction. It mirrors
// the decoded signature type, but class positions hold descriptors instead of
// tokens: the token is not known until Finalize stamps the graph. Kind
// selects which payload fields are meaningful, with the same correspondence
// as the decoded form.
type TypeExpr struct {
	Kind  sig.ElementType
	Mods  []ModExpr
	Class TypeRefOrDef
	Elem  *TypeExpr
	Num   uint32
	Shape *sig.ArrayShape
	Args  []TypeExpr
	Fn    *MethodSigExpr
}

// ModExpr is a modreq/modopt modifier attached to a type position.
type ModExpr struct {
	Optional bool
	Class    TypeRefOrDef
}

// PrimitiveType returns the expression for a self-contained type code.
func PrimitiveType(e sig.ElementType) TypeExpr { return TypeExpr{Kind: e} }

// ClassOf returns a CLASS expression referencing t.
func ClassOf(t TypeRefOrDef) TypeExpr {
	return TypeExpr{Kind: sig.ElemClass, Class: t}
}

// ValueTypeOf returns a VALUETYPE expression referencing t.
func ValueTypeOf(t TypeRefOrDef) TypeExpr {
	return TypeExpr{Kind: sig.ElemValueType, Class: t}
}

// SZArray returns a single-dimensional, zero-based array of elem.
func SZArray(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: sig.ElemSZArray, Elem: &elem}
}

// Pointer returns an unmanaged pointer to elem.
func Pointer(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: sig.ElemPtr, Elem: &elem}
}

// ArrayOf returns a full-rank array of elem with the given shape.
func ArrayOf(elem TypeExpr, shape sig.ArrayShape) TypeExpr {
	return TypeExpr{Kind: sig.ElemArray, Elem: &elem, Shape: &shape}
}

// GenericInstOf returns an instantiation of the template expression, which
// must be a CLASS or VALUETYPE, with args.
func GenericInstOf(template TypeExpr, args ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: sig.ElemGenericInst, Elem: &template, Args: args}
}

// GenericVar returns the generic type parameter with the given number.
func GenericVar(n uint32) TypeExpr {
	return TypeExpr{Kind: sig.ElemVar, Num: n}
}

// GenericMVar returns the generic method parameter with the given number.
func GenericMVar(n uint32) TypeExpr {
	return TypeExpr{Kind: sig.ElemMVar, Num: n}
}

// FnPtrTo returns a function-pointer expression over m.
func FnPtrTo(m *MethodSigExpr) TypeExpr {
	return TypeExpr{Kind: sig.ElemFnPtr, Fn: m}
}

// ParamExpr is one parameter position of a method or property signature
// under construction.
type ParamExpr struct {
	Mods       []ModExpr
	ByRef      bool
	TypedByRef bool
	Type       TypeExpr
}

// ByRefParam returns a by-reference parameter of t.
func ByRefParam(t TypeExpr) ParamExpr { return ParamExpr{ByRef: true, Type: t} }

// ValueParam returns a by-value parameter of t.
func ValueParam(t TypeExpr) ParamExpr { return ParamExpr{Type: t} }

// MethodSigExpr is a method signature under construction.
type MethodSigExpr struct {
	CallConv      uint8
	GenParamCount uint32
	Ret           ParamExpr
	Params        []ParamExpr
	// SentinelAt is the parameter index before which the vararg SENTINEL
	// marker sits, or -1 for none.
	SentinelAt int
}

// NewMethodSigExpr returns a sentinel-free method signature expression.
func NewMethodSigExpr(callConv uint8, ret ParamExpr, params ...ParamExpr) *MethodSigExpr {
	return &MethodSigExpr{
		CallConv:   callConv,
		Ret:        ret,
		Params:     params,
		SentinelAt: -1,
	}
}

// FieldSigExpr is a field signature under construction.
type FieldSigExpr struct {
	Mods []ModExpr
	Type TypeExpr
}

// NewFieldSigExpr returns a field signature expression of t.
func NewFieldSigExpr(t TypeExpr) *FieldSigExpr {
	return &FieldSigExpr{Type: t}
}

// LocalVarExpr is one slot of a local-variable signature under construction.
type LocalVarExpr struct {
	Mods       []ModExpr
	Pinned     bool
	ByRef      bool
	TypedByRef bool
	Type       TypeExpr
}

// LocalVarSigExpr is a local-variable signature under construction.
type LocalVarSigExpr struct {
	Locals []LocalVarExpr
}

// PropertySigExpr is a property signature under construction.
type PropertySigExpr struct {
	HasThis bool
	Mods    []ModExpr
	Ret     TypeExpr
	Params  []ParamExpr
}

// walkTypeExpr visits every descriptor referenced from t, recursing through
// element types, modifiers, generic arguments and function-pointer
// signatures. The builder uses it to pull signature-only referents (TypeRefs
// and nested TypeSpecs never mentioned by a row) into the table graph.
func walkTypeExpr(t *TypeExpr, visit func(TypeRefOrDef)) {
	if t == nil {
		return
	}
	if t.Class != nil {
		visit(t.Class)
	}
	for i := range t.Mods {
		if t.Mods[i].Class != nil {
			visit(t.Mods[i].Class)
		}
	}
	walkTypeExpr(t.Elem, visit)
	for i := range t.Args {
		walkTypeExpr(&t.Args[i], visit)
	}
	if t.Fn != nil {
		walkMethodSigExpr(t.Fn, visit)
	}
}

func walkParamExpr(p *ParamExpr, visit func(TypeRefOrDef)) {
	for i := range p.Mods {
		if p.Mods[i].Class != nil {
			visit(p.Mods[i].Class)
		}
	}
	walkTypeExpr(&p.Type, visit)
}

func walkMethodSigExpr(m *MethodSigExpr, visit func(TypeRefOrDef)) {
	if m == nil {
		return
	}
	walkParamExpr(&m.Ret, visit)
	for i := range m.Params {
		walkParamExpr(&m.Params[i], visit)
	}
}

func walkFieldSigExpr(f *FieldSigExpr, visit func(TypeRefOrDef)) {
	if f == nil {
		return
	}
	for i := range f.Mods {
		if f.Mods[i].Class != nil {
			visit(f.Mods[i].Class)
		}
	}
	walkTypeExpr(&f.Type, visit)
}

func walkLocalVarSigExpr(l *LocalVarSigExpr, visit func(TypeRefOrDef)) {
	if l == nil {
		return
	}
	for i := range l.Locals {
		lv := &l.Locals[i]
		for j := range lv.Mods {
			if lv.Mods[j].Class != nil {
				visit(lv.Mods[j].Class)
			}
		}
		walkTypeExpr(&lv.Type, visit)
	}
}

func walkPropertySigExpr(p *PropertySigExpr, visit func(TypeRefOrDef)) {
	if p == nil {
		return
	}
	for i := range p.Mods {
		if p.Mods[i].Class != nil {
			visit(p.Mods[i].Class)
		}
	}
	walkTypeExpr(&p.Ret, visit)
	for i := range p.Params {
		walkParamExpr(&p.Params[i], visit)
	}
}

// exprToken returns the stamped token of a class position. Encoding before
// the referent has a row is an Unresolved error, not a corruption: the graph
// was built inconsistently.
func exprToken(d TypeRefOrDef) (base.Token, error) {
	h := d.state().handle
	if h == nil || h.Row() == 0 {
		return 0, base.UnresolvedErrorf(
			"cilmeta: signature references a descriptor outside the graph")
	}
	return h.Token(), nil
}

// resolveType lowers a type expression to its encodable form, substituting
// stamped tokens for descriptor references. Valid only after SortAndStamp.
func resolveType(t *TypeExpr) (sig.Type, error) {
	out := sig.Type{Kind: t.Kind, Num: t.Num, Shape: t.Shape}
	var err error
	if out.Mods, err = resolveMods(t.Mods); err != nil {
		return sig.Type{}, err
	}
	if t.Class != nil {
		if out.Class, err = exprToken(t.Class); err != nil {
			return sig.Type{}, err
		}
	}
	if t.Elem != nil {
		elem, err := resolveType(t.Elem)
		if err != nil {
			return sig.Type{}, err
		}
		out.Elem = &elem
	}
	if len(t.Args) > 0 {
		out.Args = make([]sig.Type, len(t.Args))
		for i := range t.Args {
			if out.Args[i], err = resolveType(&t.Args[i]); err != nil {
				return sig.Type{}, err
			}
		}
	}
	if t.Fn != nil {
		if out.Fn, err = resolveMethodSig(t.Fn); err != nil {
			return sig.Type{}, err
		}
	}
	return out, nil
}

func resolveMods(mods []ModExpr) ([]sig.CustomMod, error) {
	if len(mods) == 0 {
		return nil, nil
	}
	out := make([]sig.CustomMod, len(mods))
	for i := range mods {
		tok, err := exprToken(mods[i].Class)
		if err != nil {
			return nil, err
		}
		out[i] = sig.CustomMod{Optional: mods[i].Optional, Class: tok}
	}
	return out, nil
}

func resolveParam(p *ParamExpr) (sig.Param, error) {
	mods, err := resolveMods(p.Mods)
	if err != nil {
		return sig.Param{}, err
	}
	t, err := resolveType(&p.Type)
	if err != nil {
		return sig.Param{}, err
	}
	return sig.Param{
		Mods: mods, ByRef: p.ByRef, TypedByRef: p.TypedByRef, Type: t,
	}, nil
}

func resolveMethodSig(m *MethodSigExpr) (*sig.MethodSig, error) {
	out := &sig.MethodSig{
		CallConv:      m.CallConv,
		GenParamCount: m.GenParamCount,
		SentinelAt:    m.SentinelAt,
	}
	var err error
	if out.Ret, err = resolveParam(&m.Ret); err != nil {
		return nil, err
	}
	if len(m.Params) > 0 {
		out.Params = make([]sig.Param, len(m.Params))
		for i := range m.Params {
			if out.Params[i], err = resolveParam(&m.Params[i]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func resolveFieldSig(f *FieldSigExpr) (*sig.FieldSig, error) {
	mods, err := resolveMods(f.Mods)
	if err != nil {
		return nil, err
	}
	t, err := resolveType(&f.Type)
	if err != nil {
		return nil, err
	}
	return &sig.FieldSig{Mods: mods, Type: t}, nil
}

func resolveLocalVarSig(l *LocalVarSigExpr) (*sig.LocalVarSig, error) {
	out := &sig.LocalVarSig{Locals: make([]sig.LocalVar, len(l.Locals))}
	for i := range l.Locals {
		lv := &l.Locals[i]
		mods, err := resolveMods(lv.Mods)
		if err != nil {
			return nil, err
		}
		t, err := resolveType(&lv.Type)
		if err != nil {
			return nil, err
		}
		out.Locals[i] = sig.LocalVar{
			Mods: mods, Pinned: lv.Pinned, ByRef: lv.ByRef,
			TypedByRef: lv.TypedByRef, Type: t,
		}
	}
	return out, nil
}

func resolvePropertySig(p *PropertySigExpr) (*sig.PropertySig, error) {
	mods, err := resolveMods(p.Mods)
	if err != nil {
		return nil, err
	}
	ret, err := resolveType(&p.Ret)
	if err != nil {
		return nil, err
	}
	out := &sig.PropertySig{HasThis: p.HasThis, Mods: mods, Ret: ret}
	if len(p.Params) > 0 {
		out.Params = make([]sig.Param, len(p.Params))
		for i := range p.Params {
			if out.Params[i], err = resolveParam(&p.Params[i]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
