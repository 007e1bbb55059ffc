// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"testing"

	"github.com/cockroachdb/cilmeta/sig"
	"github.com/stretchr/testify/require"
)

var testMvid = [16]byte{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
}

func i4Field() *FieldSigExpr {
	return NewFieldSigExpr(PrimitiveType(sig.ElemI4))
}

func TestFinalizeRequiresModule(t *testing.T) {
	r := NewRoot(nil)
	err := r.Finalize()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestFinalizeIsOneShot(t *testing.T) {
	r := NewRoot(nil)
	_, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)
	require.NoError(t, r.Finalize())

	err = r.Finalize()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMutateAfterFinalizePanics(t *testing.T) {
	r := NewRoot(nil)
	m, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)
	require.NoError(t, r.Finalize())

	require.Panics(t, func() { _, _ = m.NewType("A", "B", 0) })
	require.Panics(t, func() { _, _ = r.UserString("s") })
	require.Panics(t, func() { r.AssemblyRef("x", [4]uint16{}, nil) })
}

func TestDescriptorConflicts(t *testing.T) {
	r := NewRoot(nil)
	m, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)

	_, err = r.NewModule("n.dll", testMvid)
	require.ErrorIs(t, err, ErrDescriptorConflict)

	_, err = r.NewAssembly("lib", [4]uint16{1, 0, 0, 0})
	require.NoError(t, err)
	_, err = r.NewAssembly("lib2", [4]uint16{1, 0, 0, 0})
	require.ErrorIs(t, err, ErrDescriptorConflict)

	td, err := m.NewType("Acme", "Point", 0x00100001)
	require.NoError(t, err)
	_, err = m.NewType("Acme", "Point", 0)
	require.ErrorIs(t, err, ErrDescriptorConflict)

	_, err = td.NewField("x", 0x0006, i4Field())
	require.NoError(t, err)
	_, err = td.NewField("x", 0x0006, i4Field())
	require.ErrorIs(t, err, ErrDescriptorConflict)

	// Methods overload freely; only fields, events and properties enforce
	// name uniqueness.
	sigExpr := NewMethodSigExpr(sig.CallConvHasThis,
		ValueParam(PrimitiveType(sig.ElemVoid)))
	td.NewMethod("Reset", 0x0086, sigExpr)
	td.NewMethod("Reset", 0x0086, sigExpr)
}

func TestTokenStamping(t *testing.T) {
	r := NewRoot(nil)
	m, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)

	t1, err := m.NewType("Acme", "A", 0x00100001)
	require.NoError(t, err)
	t2, err := m.NewType("Acme", "B", 0x00100001)
	require.NoError(t, err)

	f1, err := t1.NewField("x", 0x0006, i4Field())
	require.NoError(t, err)
	f2, err := t1.NewField("y", 0x0006, i4Field())
	require.NoError(t, err)
	f3, err := t2.NewField("z", 0x0006, i4Field())
	require.NoError(t, err)

	meth := t2.NewMethod("Get", 0x0086, NewMethodSigExpr(
		sig.CallConvHasThis, ValueParam(PrimitiveType(sig.ElemI4))))

	// Tokens are zero before Finalize stamps rows.
	require.Equal(t, Token(0), t1.Token())
	require.NoError(t, r.Finalize())

	require.Equal(t, Token(0x00000001), m.Token())
	require.Equal(t, Token(0x02000001), t1.Token())
	require.Equal(t, Token(0x02000002), t2.Token())
	require.Equal(t, Token(0x04000001), f1.Token())
	require.Equal(t, Token(0x04000002), f2.Token())
	require.Equal(t, Token(0x04000003), f3.Token())
	require.Equal(t, Token(0x06000001), meth.Token())
}

func TestBlobDedup(t *testing.T) {
	r := NewRoot(nil)
	m, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)
	td, err := m.NewType("Acme", "A", 0x00100001)
	require.NoError(t, err)

	f1, err := td.NewField("x", 0x0006, i4Field())
	require.NoError(t, err)
	f2, err := td.NewField("y", 0x0006, i4Field())
	require.NoError(t, err)
	f3, err := td.NewField("s", 0x0006,
		NewFieldSigExpr(PrimitiveType(sig.ElemString)))
	require.NoError(t, err)
	require.NoError(t, r.Finalize())

	require.NotZero(t, f1.BlobOffset())
	require.Equal(t, f1.BlobOffset(), f2.BlobOffset())
	require.NotEqual(t, f1.BlobOffset(), f3.BlobOffset())
}

func TestUserStringToken(t *testing.T) {
	r := NewRoot(nil)
	_, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)

	tok1, err := r.UserString("hello")
	require.NoError(t, err)
	require.Equal(t, uint32(0x70), uint32(tok1)>>24)
	require.NotZero(t, uint32(tok1)&0x00FFFFFF)

	// The #US heap interns, so repeated strings share a token.
	tok2, err := r.UserString("hello")
	require.NoError(t, err)
	require.Equal(t, tok1, tok2)

	tok3, err := r.UserString("world")
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok3)
}

func TestEmptyModuleRoundTrip(t *testing.T) {
	r := NewRoot(nil)
	_, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)
	require.NoError(t, r.Finalize())

	img, err := r.Write()
	require.NoError(t, err)

	rt, err := Read(img, nil)
	require.NoError(t, err)
	require.Nil(t, rt.Assembly())
	require.Equal(t, "m.dll", rt.Module().Name)
	require.Equal(t, testMvid, rt.Module().Mvid)
	require.Empty(t, rt.Module().Types())
	require.NoError(t, Equivalent(r, rt))
}

func TestWriteBeforeFinalize(t *testing.T) {
	r := NewRoot(nil)
	_, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)

	_, err = r.Write()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidState)
}

// buildSampleAssembly constructs a module exercising the full descriptor
// surface: manifest, external references, members with constants and
// marshalling, properties, events, generics, nesting and attributes.
func buildSampleAssembly(t *testing.T) *Root {
	r := NewRoot(nil)

	a, err := r.NewAssembly("Acme.Geometry", [4]uint16{1, 2, 3, 4})
	require.NoError(t, err)
	a.HashAlgID = 0x8004
	m, err := r.NewModule("Acme.Geometry.dll", testMvid)
	require.NoError(t, err)

	mscorlib := r.AssemblyRef("mscorlib", [4]uint16{4, 0, 0, 0},
		[]byte{0xB7, 0x7A, 0x5C, 0x56, 0x19, 0x34, 0xE0, 0x89})
	object := r.TypeRef(mscorlib, "System", "Object")
	valueType := r.TypeRef(mscorlib, "System", "ValueType")
	handler := r.TypeRef(mscorlib, "System", "EventHandler")
	disposable := r.TypeRef(mscorlib, "System", "IDisposable")

	point, err := m.NewType("Acme", "Point", 0x00100109)
	require.NoError(t, err)
	point.Extends = valueType
	point.SetLayout(4, 8)

	x, err := point.NewField("x", 0x0001, i4Field())
	require.NoError(t, err)
	x.SetOffset(0)
	y, err := point.NewField("y", 0x0001, i4Field())
	require.NoError(t, err)
	y.SetOffset(4)
	origin, err := point.NewField("origin", 0x8056, i4Field())
	require.NoError(t, err)
	origin.SetConstant(I4Const(0))

	add := point.NewMethod("Add", 0x0086, NewMethodSigExpr(
		sig.CallConvHasThis,
		ValueParam(ValueTypeOf(point)),
		ValueParam(ValueTypeOf(point))))
	add.NewParam(1, "other", 0)

	getX := point.NewMethod("get_X", 0x0886, NewMethodSigExpr(
		sig.CallConvHasThis, ValueParam(PrimitiveType(sig.ElemI4))))
	px, err := point.NewProperty("X", 0, &PropertySigExpr{
		HasThis: true,
		Ret:     PrimitiveType(sig.ElemI4),
	})
	require.NoError(t, err)
	px.AddSemantic(SemGetter, getX)

	shape, err := m.NewType("Acme", "Shape", 0x00100001)
	require.NoError(t, err)
	shape.Extends = object
	shape.AddInterface(disposable)

	name, err := shape.NewField("name", 0x0001,
		NewFieldSigExpr(PrimitiveType(sig.ElemString)))
	require.NoError(t, err)
	name.SetMarshal(sig.MarshalSpec{Kind: sig.NativeLPWStr})

	addOn := shape.NewMethod("add_Moved", 0x0886, NewMethodSigExpr(
		sig.CallConvHasThis,
		ValueParam(PrimitiveType(sig.ElemVoid)),
		ValueParam(ClassOf(handler))))
	addOn.NewParam(1, "value", 0)
	removeOn := shape.NewMethod("remove_Moved", 0x0886, NewMethodSigExpr(
		sig.CallConvHasThis,
		ValueParam(PrimitiveType(sig.ElemVoid)),
		ValueParam(ClassOf(handler))))
	removeOn.NewParam(1, "value", 0)
	moved, err := shape.NewEvent("Moved", 0, handler)
	require.NoError(t, err)
	moved.AddSemantic(SemAddOn, addOn)
	moved.AddSemantic(SemRemoveOn, removeOn)

	cache, err := shape.NewNestedType("Cache", 0x00100003)
	require.NoError(t, err)
	cache.Extends = object

	list, err := m.NewType("Acme", "Bag`1", 0x00100001)
	require.NoError(t, err)
	list.Extends = object
	gp := list.NewGenericParam(0, "T", 0)
	gp.AddConstraint(object)
	list.NewMethod("Head", 0x0086, NewMethodSigExpr(
		sig.CallConvHasThis, ValueParam(GenericVar(0))))

	attrCtor := r.NewMethodRef(object, ".ctor", NewMethodSigExpr(
		sig.CallConvHasThis, ValueParam(PrimitiveType(sig.ElemVoid))))
	r.NewRawCustomAttribute(point, attrCtor, []byte{0x01, 0x00, 0x00, 0x00})

	return r
}

func TestAssemblyRoundTrip(t *testing.T) {
	r := buildSampleAssembly(t)
	require.NoError(t, r.Finalize())
	img, err := r.Write()
	require.NoError(t, err)

	rt, err := Read(img, nil)
	require.NoError(t, err)
	require.NoError(t, Equivalent(r, rt))

	a := rt.Assembly()
	require.NotNil(t, a)
	require.Equal(t, "Acme.Geometry", a.Name)
	require.Equal(t, [4]uint16{1, 2, 3, 4}, a.Version)
	require.Equal(t, uint32(0x8004), a.HashAlgID)

	m := rt.Module()
	require.Len(t, m.Types(), 4)

	point := m.FindType("Acme", "Point")
	require.NotNil(t, point)
	packing, size, ok := point.Layout()
	require.True(t, ok)
	require.Equal(t, uint16(4), packing)
	require.Equal(t, uint32(8), size)

	// The constant survives with its kind and little-endian payload.
	origin := point.Fields()[2]
	require.Equal(t, "origin", origin.Name)
	c := origin.Constant()
	require.NotNil(t, c)
	require.Equal(t, sig.ElemI4, c.Kind)
	require.Equal(t, []byte{0, 0, 0, 0}, c.Value)

	off, ok := point.Fields()[0].Offset()
	require.True(t, ok)
	require.Equal(t, uint32(0), off)

	shape := m.FindType("Acme", "Shape")
	require.NotNil(t, shape)
	require.Len(t, shape.Interfaces(), 1)
	require.Len(t, shape.NestedTypes(), 1)
	require.Equal(t, "Acme.Shape+Cache", shape.NestedTypes()[0].FullName())

	ms := shape.Fields()[0].Marshal()
	require.NotNil(t, ms)
	require.Equal(t, sig.NativeLPWStr, ms.Kind)

	require.Len(t, shape.Events(), 1)
	ev := shape.Events()[0]
	require.Equal(t, "Moved", ev.Name)
	require.Len(t, ev.Semantics(), 2)

	bag := m.FindType("Acme", "Bag`1")
	require.NotNil(t, bag)
	require.Len(t, bag.GenericParams(), 1)
	require.Equal(t, "T", bag.GenericParams()[0].Name)
	require.Len(t, bag.GenericParams()[0].Constraints(), 1)

	require.Len(t, point.CustomAttributes(), 1)
}

func TestReadRoundTripTwice(t *testing.T) {
	r := buildSampleAssembly(t)
	require.NoError(t, r.Finalize())
	img, err := r.Write()
	require.NoError(t, err)

	rt, err := Read(img, nil)
	require.NoError(t, err)

	// A read root is past finalization and writes without further setup.
	// The second generation still compares equivalent to the original.
	img2, err := rt.Write()
	require.NoError(t, err)
	rt2, err := Read(img2, nil)
	require.NoError(t, err)
	require.NoError(t, Equivalent(r, rt2))
}

func TestReadCorruptImage(t *testing.T) {
	r := NewRoot(nil)
	_, err := r.NewModule("m.dll", testMvid)
	require.NoError(t, err)
	require.NoError(t, r.Finalize())
	img, err := r.Write()
	require.NoError(t, err)

	_, err = Read(img[:8], nil)
	require.Error(t, err)

	bad := append([]byte(nil), img...)
	bad[0] ^= 0xFF
	_, err = Read(bad, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCorruptIndex)
}
