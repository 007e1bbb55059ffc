// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "fmt"

// CodedKind identifies one of the coded-index families of the #~ stream. A
// coded index packs the tag of a member table into the low bits of a 1-based
// row index; the tag width is fixed per family.
type CodedKind uint8

const (
	TypeDefOrRef CodedKind = iota
	HasConstant
	HasCustomAttribute
	HasFieldMarshal
	HasDeclSecurity
	MemberRefParent
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	CustomAttributeType
	ResolutionScope
	TypeOrMethodDef

	NumCodedKinds
)

// InvalidTableID marks an unassigned tag slot within a coded family.
const InvalidTableID TableID = 0xFF

type codedFamily struct {
	name    string
	tagBits uint8
	// members is indexed by tag value. InvalidTableID slots are tags the
	// format reserves but never assigns (CustomAttributeType tags 0, 1, 4).
	members []TableID
}

var codedFamilies = [NumCodedKinds]codedFamily{
	TypeDefOrRef: {"TypeDefOrRef", 2, []TableID{
		TableTypeDef, TableTypeRef, TableTypeSpec}},
	HasConstant: {"HasConstant", 2, []TableID{
		TableField, TableParam, TableProperty}},
	HasCustomAttribute: {"HasCustomAttribute", 5, []TableID{
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
		TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
		TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
		TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec}},
	HasFieldMarshal: {"HasFieldMarshal", 1, []TableID{
		TableField, TableParam}},
	HasDeclSecurity: {"HasDeclSecurity", 2, []TableID{
		TableTypeDef, TableMethodDef, TableAssembly}},
	MemberRefParent: {"MemberRefParent", 3, []TableID{
		TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef,
		TableTypeSpec}},
	HasSemantics: {"HasSemantics", 1, []TableID{
		TableEvent, TableProperty}},
	MethodDefOrRef: {"MethodDefOrRef", 1, []TableID{
		TableMethodDef, TableMemberRef}},
	MemberForwarded: {"MemberForwarded", 1, []TableID{
		TableField, TableMethodDef}},
	Implementation: {"Implementation", 2, []TableID{
		TableFile, TableAssemblyRef, TableExportedType}},
	CustomAttributeType: {"CustomAttributeType", 3, []TableID{
		InvalidTableID, InvalidTableID, TableMethodDef, TableMemberRef,
		InvalidTableID}},
	ResolutionScope: {"ResolutionScope", 2, []TableID{
		TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef}},
	TypeOrMethodDef: {"TypeOrMethodDef", 1, []TableID{
		TableTypeDef, TableMethodDef}},
}

func (k CodedKind) String() string { return codedFamilies[k].name }

// TagBits returns the number of low bits the family reserves for the tag.
func (k CodedKind) TagBits() uint8 { return codedFamilies[k].tagBits }

// Members returns the family's tag-ordered member tables. The slice is shared
// and must not be mutated.
func (k CodedKind) Members() []TableID { return codedFamilies[k].members }

// Tag returns the family tag of id, or false if id is not a member.
func (k CodedKind) Tag(id TableID) (uint32, bool) {
	for tag, m := range codedFamilies[k].members {
		if m == id {
			return uint32(tag), true
		}
	}
	return 0, false
}

// Encode packs a member table and 1-based row index into the family's raw
// coded form. Encode panics if id is not a member of the family; callers
// hand it table IDs produced by the catalogue, never file input.
func (k CodedKind) Encode(id TableID, row uint32) uint32 {
	tag, ok := k.Tag(id)
	if !ok {
		panic(fmt.Sprintf("cilmeta: %s cannot encode %s", k, id))
	}
	return row<<codedFamilies[k].tagBits | tag
}

// Decode splits a raw coded index into its member table and row index. It
// returns a CorruptIndex error if the tag is unassigned within the family.
func (k CodedKind) Decode(raw uint32) (TableID, uint32, error) {
	f := &codedFamilies[k]
	tag := raw & (1<<f.tagBits - 1)
	row := raw >> f.tagBits
	if tag >= uint32(len(f.members)) || f.members[tag] == InvalidTableID {
		return 0, 0, CorruptIndexErrorf(
			"cilmeta: %s tag %d out of range", k, tag)
	}
	return f.members[tag], row, nil
}
