// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/cockroachdb/cilmeta/sig"
)

// Field is a field defined on a type.
type Field struct {
	rowState
	attrHolder
	Flags uint16
	Name  string
	// Sig is the field's signature, set on the build path.
	Sig *FieldSigExpr

	parent   *TypeDef
	constant *Constant
	marshal  *sig.MarshalSpec
	offset   *uint32
	rva      *uint32

	blobRef
	decoded *sig.FieldSig
}

// NewField declares a field on t. Declaring the same field name twice is a
// DescriptorConflict.
func (t *TypeDef) NewField(name string, flags uint16, s *FieldSigExpr) (*Field, error) {
	t.module.root.mustBuild("add field")
	if err := t.internMember("field", name); err != nil {
		return nil, err
	}
	f := &Field{Flags: flags, Name: name, Sig: s, parent: t}
	t.fields = append(t.fields, f)
	return f, nil
}

// Parent returns the declaring type.
func (f *Field) Parent() *TypeDef { return f.parent }

// SetConstant attaches a compile-time default value.
func (f *Field) SetConstant(c Constant) {
	f.parent.module.root.mustBuild("set constant")
	c.parent = f
	f.constant = &c
}

// Constant returns the attached default value, or nil.
func (f *Field) Constant() *Constant { return f.constant }

// SetMarshal attaches a native marshalling descriptor.
func (f *Field) SetMarshal(m sig.MarshalSpec) {
	f.parent.module.root.mustBuild("set field marshal")
	f.marshal = &m
}

// Marshal returns the attached marshalling descriptor, or nil.
func (f *Field) Marshal() *sig.MarshalSpec { return f.marshal }

// SetOffset pins the field's byte offset within an explicit-layout type.
func (f *Field) SetOffset(offset uint32) {
	f.parent.module.root.mustBuild("set field offset")
	f.offset = &offset
}

// Offset returns the pinned layout offset, reporting false when none is set.
func (f *Field) Offset() (uint32, bool) {
	if f.offset == nil {
		return 0, false
	}
	return *f.offset, true
}

// SetRVA maps the field onto initialized data at the given image address.
func (f *Field) SetRVA(rva uint32) {
	f.parent.module.root.mustBuild("set field rva")
	f.rva = &rva
}

// RVA returns the mapped data address, reporting false when none is set.
func (f *Field) RVA() (uint32, bool) {
	if f.rva == nil {
		return 0, false
	}
	return *f.rva, true
}

// Signature decodes the field's signature blob. On a read Root decoding is
// deferred to the first call and cached.
func (f *Field) Signature() (*sig.FieldSig, error) {
	if f.decoded != nil {
		return f.decoded, nil
	}
	blob, err := f.lookup()
	if err != nil {
		return nil, err
	}
	f.decoded, err = sig.DecodeField(blob)
	return f.decoded, err
}

// Method is a method defined on a type. Methods overload freely; no name
// uniqueness is enforced.
type Method struct {
	rowState
	attrHolder
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      string
	// Sig is the method's signature, set on the build path.
	Sig *MethodSigExpr

	parent        *TypeDef
	params        []*Param
	genericParams []*GenericParam
	pinvoke       *ImplMap
	security      []*DeclSecurity

	blobRef
	decoded *sig.MethodSig
}

// NewMethod declares a method on t.
func (t *TypeDef) NewMethod(name string, flags uint16, s *MethodSigExpr) *Method {
	t.module.root.mustBuild("add method")
	m := &Method{Flags: flags, Name: name, Sig: s, parent: t}
	t.methods = append(t.methods, m)
	return m
}

// Parent returns the declaring type.
func (m *Method) Parent() *TypeDef { return m.parent }

// Params returns the method's named parameter rows in declaration order.
func (m *Method) Params() []*Param { return m.params }

// GenericParams returns the method's generic parameters.
func (m *Method) GenericParams() []*GenericParam { return m.genericParams }

// NewParam names the parameter at the given sequence position. Sequence 0 is
// the return value; 1 is the first argument.
func (m *Method) NewParam(sequence uint16, name string, flags uint16) *Param {
	m.parent.module.root.mustBuild("add param")
	p := &Param{Flags: flags, Sequence: sequence, Name: name, method: m}
	m.params = append(m.params, p)
	return p
}

// SetPInvoke marks the method as a platform-invoke forward to importName in
// scope.
func (m *Method) SetPInvoke(flags uint16, importName string, scope *ModuleRef) {
	m.parent.module.root.mustBuild("set pinvoke")
	m.pinvoke = &ImplMap{
		MappingFlags: flags, ImportName: importName, Scope: scope, method: m,
	}
}

// PInvoke returns the platform-invoke mapping, or nil.
func (m *Method) PInvoke() *ImplMap { return m.pinvoke }

// Signature decodes the method's signature blob. On a read Root decoding is
// deferred to the first call and cached.
func (m *Method) Signature() (*sig.MethodSig, error) {
	if m.decoded != nil {
		return m.decoded, nil
	}
	blob, err := m.lookup()
	if err != nil {
		return nil, err
	}
	m.decoded, err = sig.DecodeMethod(blob)
	return m.decoded, err
}

// Param is a named parameter position of a method.
type Param struct {
	rowState
	attrHolder
	Flags    uint16
	Sequence uint16
	Name     string

	method   *Method
	constant *Constant
	marshal  *sig.MarshalSpec
}

// Method returns the declaring method.
func (p *Param) Method() *Method { return p.method }

// SetConstant attaches a compile-time default value.
func (p *Param) SetConstant(c Constant) {
	p.method.parent.module.root.mustBuild("set constant")
	c.parent = p
	p.constant = &c
}

// Constant returns the attached default value, or nil.
func (p *Param) Constant() *Constant { return p.constant }

// SetMarshal attaches a native marshalling descriptor.
func (p *Param) SetMarshal(m sig.MarshalSpec) {
	p.method.parent.module.root.mustBuild("set param marshal")
	p.marshal = &m
}

// Marshal returns the attached marshalling descriptor, or nil.
func (p *Param) Marshal() *sig.MarshalSpec { return p.marshal }

// ImplMap is a platform-invoke mapping from a method to an unmanaged import.
type ImplMap struct {
	rowState
	MappingFlags uint16
	ImportName   string
	Scope        *ModuleRef

	method *Method
}

// Constant is a compile-time default value: the element-type kind and the
// little-endian value bytes written to #Blob.
type Constant struct {
	rowState
	Kind  sig.ElementType
	Value []byte

	parent rowStater
}

// BoolConst returns a BOOLEAN constant.
func BoolConst(v bool) Constant {
	b := byte(0)
	if v {
		b = 1
	}
	return Constant{Kind: sig.ElemBoolean, Value: []byte{b}}
}

// CharConst returns a CHAR constant.
func CharConst(v uint16) Constant {
	return Constant{Kind: sig.ElemChar, Value: le16(uint64(v))}
}

// I1Const returns an I1 constant.
func I1Const(v int8) Constant {
	return Constant{Kind: sig.ElemI1, Value: []byte{byte(v)}}
}

// U1Const returns a U1 constant.
func U1Const(v uint8) Constant {
	return Constant{Kind: sig.ElemU1, Value: []byte{v}}
}

// I2Const returns an I2 constant.
func I2Const(v int16) Constant {
	return Constant{Kind: sig.ElemI2, Value: le16(uint64(uint16(v)))}
}

// U2Const returns a U2 constant.
func U2Const(v uint16) Constant {
	return Constant{Kind: sig.ElemU2, Value: le16(uint64(v))}
}

// I4Const returns an I4 constant.
func I4Const(v int32) Constant {
	return Constant{Kind: sig.ElemI4, Value: le32(uint64(uint32(v)))}
}

// U4Const returns a U4 constant.
func U4Const(v uint32) Constant {
	return Constant{Kind: sig.ElemU4, Value: le32(uint64(v))}
}

// I8Const returns an I8 constant.
func I8Const(v int64) Constant {
	return Constant{Kind: sig.ElemI8, Value: le64(uint64(v))}
}

// U8Const returns a U8 constant.
func U8Const(v uint64) Constant {
	return Constant{Kind: sig.ElemU8, Value: le64(v)}
}

// R4Const returns an R4 constant.
func R4Const(v float32) Constant {
	return Constant{Kind: sig.ElemR4, Value: le32(uint64(math.Float32bits(v)))}
}

// R8Const returns an R8 constant.
func R8Const(v float64) Constant {
	return Constant{Kind: sig.ElemR8, Value: le64(math.Float64bits(v))}
}

// StringConst returns a STRING constant; the value bytes are UTF-16LE.
func StringConst(s string) Constant {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2*len(units))
	for _, u := range units {
		buf = binary.LittleEndian.AppendUint16(buf, u)
	}
	return Constant{Kind: sig.ElemString, Value: buf}
}

// NullConst returns the null reference constant: CLASS kind with a four-byte
// zero payload.
func NullConst() Constant {
	return Constant{Kind: sig.ElemClass, Value: []byte{0, 0, 0, 0}}
}

func le16(v uint64) []byte {
	return binary.LittleEndian.AppendUint16(nil, uint16(v))
}

func le32(v uint64) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
