// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tables implements the #~ table stream: the fixed catalogue of
// metadata tables, the row store, the index planner that sizes every column,
// the sorter, and the stream writer and reader. Rows are column-value
// vectors; cross-table references are carried as handles so that sorting a
// table does not invalidate rows that point into it.
package tables

import "github.com/cockroachdb/cilmeta/internal/base"

// ColKind classifies a column of a table row and determines its wire width.
type ColKind uint8

const (
	// ColU8, ColU16 and ColU32 are fixed-width little-endian integers.
	ColU8 ColKind = iota
	ColU16
	ColU32
	// ColStrings, ColGUID and ColBlob are heap indices; 2 or 4 bytes
	// depending on the heap's size.
	ColStrings
	ColGUID
	ColBlob
	// ColTable is a 1-based row index into a single target table; 2 or 4
	// bytes depending on that table's row count.
	ColTable
	// ColList is a row index marking the first row of a contiguous child
	// run in the target table. A value of size(target)+1 is the empty-run
	// sentinel. Width rules match ColTable.
	ColList
	// ColCoded is a coded index: a row index with the member-table tag
	// packed into the low bits. Width depends on the family's tag bits and
	// the row counts of its member tables.
	ColCoded
)

// Column describes one column of a table's row format.
type Column struct {
	Name  string
	Kind  ColKind
	Table base.TableID  // target of ColTable and ColList
	Coded base.CodedKind // family of ColCoded
}

func u8(name string) Column   { return Column{Name: name, Kind: ColU8} }
func u16(name string) Column  { return Column{Name: name, Kind: ColU16} }
func u32(name string) Column  { return Column{Name: name, Kind: ColU32} }
func str(name string) Column  { return Column{Name: name, Kind: ColStrings} }
func guid(name string) Column { return Column{Name: name, Kind: ColGUID} }
func blob(name string) Column { return Column{Name: name, Kind: ColBlob} }

func tbl(name string, id base.TableID) Column {
	return Column{Name: name, Kind: ColTable, Table: id}
}

func list(name string, id base.TableID) Column {
	return Column{Name: name, Kind: ColList, Table: id}
}

func coded(name string, k base.CodedKind) Column {
	return Column{Name: name, Kind: ColCoded, Coded: k}
}

// schemas is the row format catalogue, indexed by table ID. Tables without a
// row codec (pointer indirection, EnC) have a nil schema.
var schemas = [base.NumTableIDs][]Column{
	base.TableModule: {
		u16("Generation"), str("Name"), guid("Mvid"),
		guid("EncId"), guid("EncBaseId"),
	},
	base.TableTypeRef: {
		coded("ResolutionScope", base.ResolutionScope),
		str("Name"), str("Namespace"),
	},
	base.TableTypeDef: {
		u32("Flags"), str("Name"), str("Namespace"),
		coded("Extends", base.TypeDefOrRef),
		list("FieldList", base.TableField),
		list("MethodList", base.TableMethodDef),
	},
	base.TableField: {
		u16("Flags"), str("Name"), blob("Signature"),
	},
	base.TableMethodDef: {
		u32("RVA"), u16("ImplFlags"), u16("Flags"),
		str("Name"), blob("Signature"),
		list("ParamList", base.TableParam),
	},
	base.TableParam: {
		u16("Flags"), u16("Sequence"), str("Name"),
	},
	base.TableInterfaceImpl: {
		tbl("Class", base.TableTypeDef),
		coded("Interface", base.TypeDefOrRef),
	},
	base.TableMemberRef: {
		coded("Class", base.MemberRefParent),
		str("Name"), blob("Signature"),
	},
	base.TableConstant: {
		u8("Type"), u8("Padding"),
		coded("Parent", base.HasConstant), blob("Value"),
	},
	base.TableCustomAttribute: {
		coded("Parent", base.HasCustomAttribute),
		coded("Type", base.CustomAttributeType), blob("Value"),
	},
	base.TableFieldMarshal: {
		coded("Parent", base.HasFieldMarshal), blob("NativeType"),
	},
	base.TableDeclSecurity: {
		u16("Action"), coded("Parent", base.HasDeclSecurity),
		blob("PermissionSet"),
	},
	base.TableClassLayout: {
		u16("PackingSize"), u32("ClassSize"), tbl("Parent", base.TableTypeDef),
	},
	base.TableFieldLayout: {
		u32("Offset"), tbl("Field", base.TableField),
	},
	base.TableStandAloneSig: {
		blob("Signature"),
	},
	base.TableEventMap: {
		tbl("Parent", base.TableTypeDef), list("EventList", base.TableEvent),
	},
	base.TableEvent: {
		u16("EventFlags"), str("Name"),
		coded("EventType", base.TypeDefOrRef),
	},
	base.TablePropertyMap: {
		tbl("Parent", base.TableTypeDef),
		list("PropertyList", base.TableProperty),
	},
	base.TableProperty: {
		u16("Flags"), str("Name"), blob("Type"),
	},
	base.TableMethodSemantics: {
		u16("Semantics"), tbl("Method", base.TableMethodDef),
		coded("Association", base.HasSemantics),
	},
	base.TableMethodImpl: {
		tbl("Class", base.TableTypeDef),
		coded("MethodBody", base.MethodDefOrRef),
		coded("MethodDeclaration", base.MethodDefOrRef),
	},
	base.TableModuleRef: {
		str("Name"),
	},
	base.TableTypeSpec: {
		blob("Signature"),
	},
	base.TableImplMap: {
		u16("MappingFlags"),
		coded("MemberForwarded", base.MemberForwarded),
		str("ImportName"), tbl("ImportScope", base.TableModuleRef),
	},
	base.TableFieldRVA: {
		u32("RVA"), tbl("Field", base.TableField),
	},
	base.TableAssembly: {
		u32("HashAlgId"),
		u16("MajorVersion"), u16("MinorVersion"),
		u16("BuildNumber"), u16("RevisionNumber"),
		u32("Flags"), blob("PublicKey"), str("Name"), str("Culture"),
	},
	base.TableAssemblyProcessor: {
		u32("Processor"),
	},
	base.TableAssemblyOS: {
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
	},
	base.TableAssemblyRef: {
		u16("MajorVersion"), u16("MinorVersion"),
		u16("BuildNumber"), u16("RevisionNumber"),
		u32("Flags"), blob("PublicKeyOrToken"), str("Name"), str("Culture"),
		blob("HashValue"),
	},
	base.TableAssemblyRefProcessor: {
		u32("Processor"), tbl("AssemblyRef", base.TableAssemblyRef),
	},
	base.TableAssemblyRefOS: {
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
		tbl("AssemblyRef", base.TableAssemblyRef),
	},
	base.TableFile: {
		u32("Flags"), str("Name"), blob("HashValue"),
	},
	base.TableExportedType: {
		u32("Flags"), u32("TypeDefId"), str("TypeName"), str("TypeNamespace"),
		coded("Implementation", base.Implementation),
	},
	base.TableManifestResource: {
		u32("Offset"), u32("Flags"), str("Name"),
		coded("Implementation", base.Implementation),
	},
	base.TableNestedClass: {
		tbl("NestedClass", base.TableTypeDef),
		tbl("EnclosingClass", base.TableTypeDef),
	},
	base.TableGenericParam: {
		u16("Number"), u16("Flags"),
		coded("Owner", base.TypeOrMethodDef), str("Name"),
	},
	base.TableMethodSpec: {
		coded("Method", base.MethodDefOrRef), blob("Instantiation"),
	},
	base.TableGenericParamConstraint: {
		tbl("Owner", base.TableGenericParam),
		coded("Constraint", base.TypeDefOrRef),
	},
}

// Columns returns the row format of id, or nil when the engine has no row
// codec for it. The slice is shared and must not be mutated.
func Columns(id base.TableID) []Column {
	if id >= base.NumTableIDs {
		return nil
	}
	return schemas[id]
}

// Column index constants, one block per table, in schema order.

// Module columns.
const (
	ModuleGeneration = iota
	ModuleName
	ModuleMvid
	ModuleEncID
	ModuleEncBaseID
)

// TypeRef columns.
const (
	TypeRefResolutionScope = iota
	TypeRefName
	TypeRefNamespace
)

// TypeDef columns.
const (
	TypeDefFlags = iota
	TypeDefName
	TypeDefNamespace
	TypeDefExtends
	TypeDefFieldList
	TypeDefMethodList
)

// Field columns.
const (
	FieldFlags = iota
	FieldName
	FieldSignature
)

// MethodDef columns.
const (
	MethodDefRVA = iota
	MethodDefImplFlags
	MethodDefFlags
	MethodDefName
	MethodDefSignature
	MethodDefParamList
)

// Param columns.
const (
	ParamFlags = iota
	ParamSequence
	ParamName
)

// InterfaceImpl columns.
const (
	InterfaceImplClass = iota
	InterfaceImplInterface
)

// MemberRef columns.
const (
	MemberRefClass = iota
	MemberRefName
	MemberRefSignature
)

// Constant columns.
const (
	ConstantType = iota
	ConstantPadding
	ConstantParent
	ConstantValue
)

// CustomAttribute columns.
const (
	CustomAttributeParent = iota
	CustomAttributeType
	CustomAttributeValue
)

// FieldMarshal columns.
const (
	FieldMarshalParent = iota
	FieldMarshalNativeType
)

// DeclSecurity columns.
const (
	DeclSecurityAction = iota
	DeclSecurityParent
	DeclSecurityPermissionSet
)

// ClassLayout columns.
const (
	ClassLayoutPackingSize = iota
	ClassLayoutClassSize
	ClassLayoutParent
)

// FieldLayout columns.
const (
	FieldLayoutOffset = iota
	FieldLayoutField
)

// StandAloneSig columns.
const (
	StandAloneSigSignature = iota
)

// EventMap columns.
const (
	EventMapParent = iota
	EventMapEventList
)

// Event columns.
const (
	EventFlags = iota
	EventName
	EventType
)

// PropertyMap columns.
const (
	PropertyMapParent = iota
	PropertyMapPropertyList
)

// Property columns.
const (
	PropertyFlags = iota
	PropertyName
	PropertySignature
)

// MethodSemantics columns.
const (
	MethodSemanticsSemantics = iota
	MethodSemanticsMethod
	MethodSemanticsAssociation
)

// MethodImpl columns.
const (
	MethodImplClass = iota
	MethodImplBody
	MethodImplDeclaration
)

// ModuleRef columns.
const (
	ModuleRefName = iota
)

// TypeSpec columns.
const (
	TypeSpecSignature = iota
)

// ImplMap columns.
const (
	ImplMapMappingFlags = iota
	ImplMapMemberForwarded
	ImplMapImportName
	ImplMapImportScope
)

// FieldRVA columns.
const (
	FieldRVARVA = iota
	FieldRVAField
)

// Assembly columns.
const (
	AssemblyHashAlgID = iota
	AssemblyMajorVersion
	AssemblyMinorVersion
	AssemblyBuildNumber
	AssemblyRevisionNumber
	AssemblyFlags
	AssemblyPublicKey
	AssemblyName
	AssemblyCulture
)

// AssemblyProcessor columns.
const (
	AssemblyProcessorProcessor = iota
)

// AssemblyOS columns.
const (
	AssemblyOSPlatformID = iota
	AssemblyOSMajorVersion
	AssemblyOSMinorVersion
)

// AssemblyRef columns.
const (
	AssemblyRefMajorVersion = iota
	AssemblyRefMinorVersion
	AssemblyRefBuildNumber
	AssemblyRefRevisionNumber
	AssemblyRefFlags
	AssemblyRefPublicKeyOrToken
	AssemblyRefName
	AssemblyRefCulture
	AssemblyRefHashValue
)

// AssemblyRefProcessor columns.
const (
	AssemblyRefProcessorProcessor = iota
	AssemblyRefProcessorRef
)

// AssemblyRefOS columns.
const (
	AssemblyRefOSPlatformID = iota
	AssemblyRefOSMajorVersion
	AssemblyRefOSMinorVersion
	AssemblyRefOSRef
)

// File columns.
const (
	FileFlags = iota
	FileName
	FileHashValue
)

// ExportedType columns.
const (
	ExportedTypeFlags = iota
	ExportedTypeTypeDefID
	ExportedTypeName
	ExportedTypeNamespace
	ExportedTypeImplementation
)

// ManifestResource columns.
const (
	ManifestResourceOffset = iota
	ManifestResourceFlags
	ManifestResourceName
	ManifestResourceImplementation
)

// NestedClass columns.
const (
	NestedClassNested = iota
	NestedClassEnclosing
)

// GenericParam columns.
const (
	GenericParamNumber = iota
	GenericParamFlags
	GenericParamOwner
	GenericParamName
)

// MethodSpec columns.
const (
	MethodSpecMethod = iota
	MethodSpecInstantiation
)

// GenericParamConstraint columns.
const (
	GenericParamConstraintOwner = iota
	GenericParamConstraintConstraint
)
