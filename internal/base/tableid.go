// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base holds the table catalogue, token and coded-index arithmetic,
// and the error taxonomy shared by the metadata packages.
package base

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// TableID identifies one of the metadata tables of the #~ stream. The IDs are
// part of the file format and must not be changed. They are not contiguous;
// unassigned values between 0x00 and 0x2C are reserved by the format.
type TableID uint8

const (
	TableModule                 TableID = 0x00
	TableTypeRef                TableID = 0x01
	TableTypeDef                TableID = 0x02
	TableFieldPtr               TableID = 0x03
	TableField                  TableID = 0x04
	TableMethodPtr              TableID = 0x05
	TableMethodDef              TableID = 0x06
	TableParamPtr               TableID = 0x07
	TableParam                  TableID = 0x08
	TableInterfaceImpl          TableID = 0x09
	TableMemberRef              TableID = 0x0A
	TableConstant               TableID = 0x0B
	TableCustomAttribute        TableID = 0x0C
	TableFieldMarshal           TableID = 0x0D
	TableDeclSecurity           TableID = 0x0E
	TableClassLayout            TableID = 0x0F
	TableFieldLayout            TableID = 0x10
	TableStandAloneSig          TableID = 0x11
	TableEventMap               TableID = 0x12
	TableEventPtr               TableID = 0x13
	TableEvent                  TableID = 0x14
	TablePropertyMap            TableID = 0x15
	TablePropertyPtr            TableID = 0x16
	TableProperty               TableID = 0x17
	TableMethodSemantics        TableID = 0x18
	TableMethodImpl             TableID = 0x19
	TableModuleRef              TableID = 0x1A
	TableTypeSpec               TableID = 0x1B
	TableImplMap                TableID = 0x1C
	TableFieldRVA               TableID = 0x1D
	TableEncLog                 TableID = 0x1E
	TableEncMap                 TableID = 0x1F
	TableAssembly               TableID = 0x20
	TableAssemblyProcessor      TableID = 0x21
	TableAssemblyOS             TableID = 0x22
	TableAssemblyRef            TableID = 0x23
	TableAssemblyRefProcessor   TableID = 0x24
	TableAssemblyRefOS          TableID = 0x25
	TableFile                   TableID = 0x26
	TableExportedType           TableID = 0x27
	TableManifestResource       TableID = 0x28
	TableNestedClass            TableID = 0x29
	TableGenericParam           TableID = 0x2A
	TableMethodSpec             TableID = 0x2B
	TableGenericParamConstraint TableID = 0x2C

	// NumTableIDs bounds the table ID space addressable by the Valid and
	// Sorted bitmasks of the stream header.
	NumTableIDs = 64

	// MaxTableID is the largest table ID the engine knows how to decode.
	MaxTableID = TableGenericParamConstraint
)

var tableNames = [NumTableIDs]string{
	TableModule:                 "Module",
	TableTypeRef:                "TypeRef",
	TableTypeDef:                "TypeDef",
	TableFieldPtr:               "FieldPtr",
	TableField:                  "Field",
	TableMethodPtr:              "MethodPtr",
	TableMethodDef:              "MethodDef",
	TableParamPtr:               "ParamPtr",
	TableParam:                  "Param",
	TableInterfaceImpl:          "InterfaceImpl",
	TableMemberRef:              "MemberRef",
	TableConstant:               "Constant",
	TableCustomAttribute:        "CustomAttribute",
	TableFieldMarshal:           "FieldMarshal",
	TableDeclSecurity:           "DeclSecurity",
	TableClassLayout:            "ClassLayout",
	TableFieldLayout:            "FieldLayout",
	TableStandAloneSig:          "StandAloneSig",
	TableEventMap:               "EventMap",
	TableEventPtr:               "EventPtr",
	TableEvent:                  "Event",
	TablePropertyMap:            "PropertyMap",
	TablePropertyPtr:            "PropertyPtr",
	TableProperty:               "Property",
	TableMethodSemantics:        "MethodSemantics",
	TableMethodImpl:             "MethodImpl",
	TableModuleRef:              "ModuleRef",
	TableTypeSpec:               "TypeSpec",
	TableImplMap:                "ImplMap",
	TableFieldRVA:               "FieldRVA",
	TableEncLog:                 "EncLog",
	TableEncMap:                 "EncMap",
	TableAssembly:               "Assembly",
	TableAssemblyProcessor:      "AssemblyProcessor",
	TableAssemblyOS:             "AssemblyOS",
	TableAssemblyRef:            "AssemblyRef",
	TableAssemblyRefProcessor:   "AssemblyRefProcessor",
	TableAssemblyRefOS:          "AssemblyRefOS",
	TableFile:                   "File",
	TableExportedType:           "ExportedType",
	TableManifestResource:       "ManifestResource",
	TableNestedClass:            "NestedClass",
	TableGenericParam:           "GenericParam",
	TableMethodSpec:             "MethodSpec",
	TableGenericParamConstraint: "GenericParamConstraint",
}

// Known reports whether id names a table the engine recognizes. Pointer
// indirection tables and the EnC log tables are recognized by ID but carry no
// row codec; KnownRowFormat distinguishes them.
func (id TableID) Known() bool {
	return id < NumTableIDs && tableNames[id] != ""
}

// KnownRowFormat reports whether the engine has a row codec for id. The
// builder never emits indirection or EnC tables and the reader rejects
// images that populate them.
func (id TableID) KnownRowFormat() bool {
	switch id {
	case TableFieldPtr, TableMethodPtr, TableParamPtr, TableEventPtr,
		TablePropertyPtr, TableEncLog, TableEncMap:
		return false
	}
	return id.Known()
}

func (id TableID) String() string {
	if id < NumTableIDs && tableNames[id] != "" {
		return tableNames[id]
	}
	return fmt.Sprintf("Table(0x%02X)", uint8(id))
}

// SafeFormat implements redact.SafeFormatter.
func (id TableID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(id.String()))
}

// SortedTableMask is the fixed Sorted bitmask written in the #~ header: one
// bit per sort-required table, set whether or not the table has rows.
const SortedTableMask uint64 = 0x000016003325FA00

// SortRequired reports whether the format requires rows of id to be emitted
// in ascending primary-key order.
func (id TableID) SortRequired() bool {
	return SortedTableMask&(1<<uint(id)) != 0
}
