// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sig encodes and decodes the signature blobs of CLI metadata:
// field, method, local-variable, property and standalone signatures, type
// trees, marshalling descriptors and custom-attribute values. Encoders
// produce the exact byte form stored in the #Blob heap; decoders are
// single-pass state machines over that form. Class references inside
// signatures are carried as metadata tokens and converted to and from the
// compressed TypeDefOrRef coded form at the blob boundary.
package sig

import "fmt"

// ElementType is a type code within a signature blob. The values are part of
// the file format.
type ElementType uint8

const (
	ElemEnd         ElementType = 0x00
	ElemVoid        ElementType = 0x01
	ElemBoolean     ElementType = 0x02
	ElemChar        ElementType = 0x03
	ElemI1          ElementType = 0x04
	ElemU1          ElementType = 0x05
	ElemI2          ElementType = 0x06
	ElemU2          ElementType = 0x07
	ElemI4          ElementType = 0x08
	ElemU4          ElementType = 0x09
	ElemI8          ElementType = 0x0A
	ElemU8          ElementType = 0x0B
	ElemR4          ElementType = 0x0C
	ElemR8          ElementType = 0x0D
	ElemString      ElementType = 0x0E
	ElemPtr         ElementType = 0x0F
	ElemByRef       ElementType = 0x10
	ElemValueType   ElementType = 0x11
	ElemClass       ElementType = 0x12
	ElemVar         ElementType = 0x13
	ElemArray       ElementType = 0x14
	ElemGenericInst ElementType = 0x15
	ElemTypedByRef  ElementType = 0x16
	ElemI           ElementType = 0x18
	ElemU           ElementType = 0x19
	ElemFnPtr       ElementType = 0x1B
	ElemObject      ElementType = 0x1C
	ElemSZArray     ElementType = 0x1D
	ElemMVar        ElementType = 0x1E
	ElemCModReqd    ElementType = 0x1F
	ElemCModOpt     ElementType = 0x20
	ElemInternal    ElementType = 0x21
	ElemModifier    ElementType = 0x40
	ElemSentinel    ElementType = 0x41
	ElemPinned      ElementType = 0x45
)

var elemNames = map[ElementType]string{
	ElemEnd: "END", ElemVoid: "VOID", ElemBoolean: "BOOLEAN",
	ElemChar: "CHAR", ElemI1: "I1", ElemU1: "U1", ElemI2: "I2",
	ElemU2: "U2", ElemI4: "I4", ElemU4: "U4", ElemI8: "I8", ElemU8: "U8",
	ElemR4: "R4", ElemR8: "R8", ElemString: "STRING", ElemPtr: "PTR",
	ElemByRef: "BYREF", ElemValueType: "VALUETYPE", ElemClass: "CLASS",
	ElemVar: "VAR", ElemArray: "ARRAY", ElemGenericInst: "GENERICINST",
	ElemTypedByRef: "TYPEDBYREF", ElemI: "I", ElemU: "U",
	ElemFnPtr: "FNPTR", ElemObject: "OBJECT", ElemSZArray: "SZARRAY",
	ElemMVar: "MVAR", ElemCModReqd: "CMOD_REQD", ElemCModOpt: "CMOD_OPT",
	ElemInternal: "INTERNAL", ElemSentinel: "SENTINEL", ElemPinned: "PINNED",
}

func (e ElementType) String() string {
	if s, ok := elemNames[e]; ok {
		return s
	}
	return fmt.Sprintf("ELEMENT_TYPE(0x%02X)", uint8(e))
}

// IsPrimitive reports whether e is a self-contained type code with no
// payload following it.
func (e ElementType) IsPrimitive() bool {
	switch e {
	case ElemVoid, ElemBoolean, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2,
		ElemI4, ElemU4, ElemI8, ElemU8, ElemR4, ElemR8, ElemString,
		ElemTypedByRef, ElemI, ElemU, ElemObject:
		return true
	}
	return false
}

// Calling-convention byte of a method signature: the low nibble selects the
// kind, the high bits are flags.
const (
	CallConvDefault  = 0x00
	CallConvC        = 0x01
	CallConvStdCall  = 0x02
	CallConvThisCall = 0x03
	CallConvFastCall = 0x04
	CallConvVarArg   = 0x05
	CallConvField    = 0x06
	CallConvLocalSig = 0x07
	CallConvProperty = 0x08
	// CallConvGenericInst opens a MethodSpec instantiation blob.
	CallConvGenericInst = 0x0A
	CallConvMask        = 0x0F

	CallConvGeneric      = 0x10
	CallConvHasThis      = 0x20
	CallConvExplicitThis = 0x40
)

// NativeType is a marshalling descriptor kind. The values are part of the
// file format.
type NativeType uint8

const (
	NativeBoolean        NativeType = 0x02
	NativeI1             NativeType = 0x03
	NativeU1             NativeType = 0x04
	NativeI2             NativeType = 0x05
	NativeU2             NativeType = 0x06
	NativeI4             NativeType = 0x07
	NativeU4             NativeType = 0x08
	NativeI8             NativeType = 0x09
	NativeU8             NativeType = 0x0A
	NativeR4             NativeType = 0x0B
	NativeR8             NativeType = 0x0C
	NativeCurrency       NativeType = 0x0F
	NativeBStr           NativeType = 0x13
	NativeLPStr          NativeType = 0x14
	NativeLPWStr         NativeType = 0x15
	NativeLPTStr         NativeType = 0x16
	NativeFixedSysString NativeType = 0x17
	NativeIUnknown       NativeType = 0x19
	NativeIDispatch      NativeType = 0x1A
	NativeStruct         NativeType = 0x1B
	NativeInterface      NativeType = 0x1C
	NativeSafeArray      NativeType = 0x1D
	NativeFixedArray     NativeType = 0x1E
	NativeInt            NativeType = 0x1F
	NativeUInt           NativeType = 0x20
	NativeByValStr       NativeType = 0x22
	NativeAnsiBStr       NativeType = 0x23
	NativeTBStr          NativeType = 0x24
	NativeVariantBool    NativeType = 0x25
	NativeFunc           NativeType = 0x26
	NativeAsAny          NativeType = 0x28
	NativeArray          NativeType = 0x2A
	NativeLPStruct       NativeType = 0x2B
	NativeCustomMarshal  NativeType = 0x2C
	NativeError          NativeType = 0x2D
	NativeMax            NativeType = 0x50
)
