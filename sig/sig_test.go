// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"testing"

	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/stretchr/testify/require"
)

func typeRefTok(row uint32) base.Token {
	return base.MakeToken(base.TableTypeRef, row)
}

func TestEncodeFieldBytes(t *testing.T) {
	testCases := []struct {
		name     string
		sig      FieldSig
		expected []byte
	}{
		{
			name:     "i4",
			sig:      FieldSig{Type: Primitive(ElemI4)},
			expected: []byte{0x06, 0x08},
		},
		{
			name:     "string",
			sig:      FieldSig{Type: Primitive(ElemString)},
			expected: []byte{0x06, 0x0E},
		},
		{
			// TypeRef row 1 carries TypeDefOrRef tag 1: (1<<2)|1 = 5.
			name:     "class",
			sig:      FieldSig{Type: ClassType(typeRefTok(1))},
			expected: []byte{0x06, 0x12, 0x05},
		},
		{
			name:     "szarray of u1",
			sig:      FieldSig{Type: SZArrayOf(Primitive(ElemU1))},
			expected: []byte{0x06, 0x1D, 0x05},
		},
		{
			name: "modreq volatile",
			sig: FieldSig{
				Mods: []CustomMod{{Optional: false, Class: typeRefTok(2)}},
				Type: Primitive(ElemI4),
			},
			expected: []byte{0x06, 0x1F, 0x09, 0x08},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blob, err := EncodeField(&tc.sig)
			require.NoError(t, err)
			require.Equal(t, tc.expected, blob)
		})
	}
}

func TestEncodeMethodBytes(t *testing.T) {
	testCases := []struct {
		name     string
		sig      *MethodSig
		expected []byte
	}{
		{
			name:     "static void()",
			sig:      NewMethodSig(CallConvDefault, Param{Type: Primitive(ElemVoid)}),
			expected: []byte{0x00, 0x00, 0x01},
		},
		{
			name: "instance i4(string)",
			sig: NewMethodSig(CallConvDefault|CallConvHasThis,
				Param{Type: Primitive(ElemI4)},
				Param{Type: Primitive(ElemString)}),
			expected: []byte{0x20, 0x01, 0x08, 0x0E},
		},
		{
			name: "generic one param",
			sig: &MethodSig{
				CallConv:      CallConvDefault | CallConvGeneric,
				GenParamCount: 1,
				Ret:           Param{Type: MVar(0)},
				Params:        []Param{{Type: MVar(0)}},
				SentinelAt:    -1,
			},
			expected: []byte{0x10, 0x01, 0x01, 0x1E, 0x00, 0x1E, 0x00},
		},
		{
			name: "vararg with sentinel",
			sig: &MethodSig{
				CallConv: CallConvVarArg,
				Ret:      Param{Type: Primitive(ElemVoid)},
				Params: []Param{
					{Type: Primitive(ElemI4)},
					{Type: Primitive(ElemObject)},
				},
				SentinelAt: 1,
			},
			expected: []byte{0x05, 0x02, 0x01, 0x08, 0x41, 0x1C},
		},
		{
			name: "byref param",
			sig: NewMethodSig(CallConvDefault,
				Param{Type: Primitive(ElemVoid)},
				Param{ByRef: true, Type: Primitive(ElemI4)}),
			expected: []byte{0x00, 0x01, 0x01, 0x10, 0x08},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blob, err := EncodeMethod(tc.sig)
			require.NoError(t, err)
			require.Equal(t, tc.expected, blob)
		})
	}
}

// reencode decodes then re-encodes a blob with the given codec pair and
// requires byte equality, which sidesteps nil-versus-empty slice differences
// between hand-built and decoded forms.
func reencodeMethod(t *testing.T, blob []byte) {
	t.Helper()
	m, err := DecodeMethod(blob)
	require.NoError(t, err)
	out, err := EncodeMethod(m)
	require.NoError(t, err)
	require.Equal(t, blob, out)
}

func TestMethodRoundTrip(t *testing.T) {
	sigs := []*MethodSig{
		NewMethodSig(CallConvDefault, Param{Type: Primitive(ElemVoid)}),
		NewMethodSig(CallConvDefault|CallConvHasThis|CallConvExplicitThis,
			Param{Type: ClassType(typeRefTok(7))},
			Param{Type: SZArrayOf(Primitive(ElemString))},
			Param{TypedByRef: true}),
		NewMethodSig(CallConvStdCall,
			Param{Type: Primitive(ElemU8)},
			Param{Type: PointerTo(Primitive(ElemVoid))}),
		{
			CallConv:      CallConvDefault | CallConvGeneric | CallConvHasThis,
			GenParamCount: 2,
			Ret:           Param{Type: GenericInst(ClassType(typeRefTok(3)), Var(0), MVar(1))},
			Params:        []Param{{Type: Var(1)}},
			SentinelAt:    -1,
		},
	}
	for _, s := range sigs {
		blob, err := EncodeMethod(s)
		require.NoError(t, err)
		reencodeMethod(t, blob)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	sigs := []FieldSig{
		{Type: Primitive(ElemR8)},
		{Type: ValueType(base.MakeToken(base.TableTypeDef, 4))},
		{
			Mods: []CustomMod{
				{Optional: true, Class: typeRefTok(1)},
				{Optional: false, Class: typeRefTok(2)},
			},
			Type: SZArrayOf(ClassType(typeRefTok(3))),
		},
	}
	for _, s := range sigs {
		blob, err := EncodeField(&s)
		require.NoError(t, err)
		decoded, err := DecodeField(blob)
		require.NoError(t, err)
		out, err := EncodeField(decoded)
		require.NoError(t, err)
		require.Equal(t, blob, out)
	}
}

func TestLocalsRoundTrip(t *testing.T) {
	l := &LocalVarSig{
		Locals: []LocalVar{
			{Type: Primitive(ElemI4)},
			{Pinned: true, Type: SZArrayOf(Primitive(ElemU1))},
			{ByRef: true, Type: Primitive(ElemObject)},
			{TypedByRef: true},
		},
	}
	blob, err := EncodeLocals(l)
	require.NoError(t, err)
	require.Equal(t, byte(CallConvLocalSig), blob[0])
	decoded, err := DecodeLocals(blob)
	require.NoError(t, err)
	require.Len(t, decoded.Locals, 4)
	require.True(t, decoded.Locals[1].Pinned)
	require.True(t, decoded.Locals[2].ByRef)
	require.True(t, decoded.Locals[3].TypedByRef)
	out, err := EncodeLocals(decoded)
	require.NoError(t, err)
	require.Equal(t, blob, out)
}

func TestPropertyRoundTrip(t *testing.T) {
	p := &PropertySig{
		HasThis: true,
		Ret:     Primitive(ElemString),
		Params:  []Param{{Type: Primitive(ElemI4)}},
	}
	blob, err := EncodeProperty(p)
	require.NoError(t, err)
	require.Equal(t, byte(CallConvProperty|CallConvHasThis), blob[0])
	decoded, err := DecodeProperty(blob)
	require.NoError(t, err)
	require.True(t, decoded.HasThis)
	require.Equal(t, Primitive(ElemString), decoded.Ret)
	out, err := EncodeProperty(decoded)
	require.NoError(t, err)
	require.Equal(t, blob, out)
}

func TestTypeSpecRoundTrip(t *testing.T) {
	specs := []TypeSpecSig{
		{Type: SZArrayOf(Primitive(ElemI4))},
		{Type: GenericInst(ValueType(typeRefTok(9)), Primitive(ElemI4), Primitive(ElemI8))},
		{Type: Type{
			Kind: ElemArray,
			Elem: &Type{Kind: ElemR4},
			Shape: &ArrayShape{
				Rank:     2,
				Sizes:    []uint32{3, 4},
				LoBounds: []int32{0, -1},
			},
		}},
		{Type: Type{Kind: ElemFnPtr, Fn: NewMethodSig(CallConvC,
			Param{Type: Primitive(ElemI4)},
			Param{Type: Primitive(ElemI4)})}},
	}
	for _, s := range specs {
		blob, err := EncodeTypeSpec(&s)
		require.NoError(t, err)
		decoded, err := DecodeTypeSpec(blob)
		require.NoError(t, err)
		out, err := EncodeTypeSpec(decoded)
		require.NoError(t, err)
		require.Equal(t, blob, out)
	}
}

func TestMethodSpecRoundTrip(t *testing.T) {
	m := &MethodSpecSig{Args: []Type{Primitive(ElemI4), SZArrayOf(Primitive(ElemString))}}
	blob, err := EncodeMethodSpec(m)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0A, 0x02, 0x08, 0x1D, 0x0E}, blob)
	decoded, err := DecodeMethodSpec(blob)
	require.NoError(t, err)
	require.Len(t, decoded.Args, 2)
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := DecodeField([]byte{0x06})
	require.Error(t, err)
	require.ErrorIs(t, err, base.ErrCorruptBlob)

	// A method-sig leading byte is not a field signature.
	_, err = DecodeField([]byte{0x20, 0x00, 0x01})
	require.Error(t, err)

	// Truncated mid-param.
	_, err = DecodeMethod([]byte{0x00, 0x02, 0x01, 0x08})
	require.Error(t, err)

	// END is not a type code.
	_, err = DecodeTypeSpec([]byte{0x00})
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	specs := []MarshalSpec{
		{Kind: NativeLPWStr},
		{Kind: NativeFixedSysString, FixedSize: 64, HasFixedSize: true},
		{
			Kind: NativeFixedArray, FixedSize: 8, HasFixedSize: true,
			Elem: NativeU1, HasElem: true,
		},
		{
			Kind: NativeArray, Elem: NativeI4, HasElem: true,
			ParamNum: 1, HasParamNum: true, NumElem: 10, HasNumElem: true,
		},
		{Kind: NativeSafeArray, VariantType: 8, HasVariantType: true},
		{
			Kind:          NativeCustomMarshal,
			MarshalerType: "My.Marshaler, MyAssembly",
			MarshalCookie: "cookie",
		},
	}
	for _, m := range specs {
		blob, err := EncodeMarshal(&m)
		require.NoError(t, err)
		decoded, err := DecodeMarshal(blob)
		require.NoError(t, err)
		out, err := EncodeMarshal(decoded)
		require.NoError(t, err)
		require.Equal(t, blob, out)
	}
}

func TestMarshalSimpleBytes(t *testing.T) {
	blob, err := EncodeMarshal(&MarshalSpec{Kind: NativeLPStr})
	require.NoError(t, err)
	require.Equal(t, []byte{0x14}, blob)
}

func TestCustomAttrRoundTrip(t *testing.T) {
	v := &CustomAttrValue{
		Fixed: []CAArg{
			{Elem: ElemI4, I: 42},
			{Elem: ElemString, Str: "hello"},
			{Elem: ElemBoolean, I: 1},
		},
		Named: []CANamedArg{
			{
				Kind: CANamedProperty,
				Name: "Level",
				Arg:  CAArg{Elem: ElemI4, I: 3},
			},
			{
				Kind: CANamedField,
				Name: "Tag",
				Arg:  CAArg{Elem: ElemString, Null: true},
			},
		},
	}
	blob, err := EncodeCustomAttr(v)
	require.NoError(t, err)
	// Prolog.
	require.Equal(t, []byte{0x01, 0x00}, blob[:2])

	decoded, err := DecodeCustomAttr(blob, []ElementType{ElemI4, ElemString, ElemBoolean})
	require.NoError(t, err)
	require.Equal(t, uint64(42), decoded.Fixed[0].I)
	require.Equal(t, "hello", decoded.Fixed[1].Str)
	require.Len(t, decoded.Named, 2)
	require.Equal(t, "Level", decoded.Named[0].Name)
	require.True(t, decoded.Named[1].Arg.Null)

	out, err := EncodeCustomAttr(decoded)
	require.NoError(t, err)
	require.Equal(t, blob, out)
}

func TestCustomAttrBadProlog(t *testing.T) {
	_, err := DecodeCustomAttr([]byte{0x02, 0x00, 0x00, 0x00}, nil)
	require.Error(t, err)
}
