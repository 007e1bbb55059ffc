// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sig

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/cint"
)

// MarshalSpec is a decoded FieldMarshal descriptor. Kind selects which of
// the optional payload fields are meaningful; the Has* flags record which
// optional trailing values were present, since the format permits them to be
// omitted from the tail.
type MarshalSpec struct {
	Kind NativeType

	// FixedSysString, FixedArray: the fixed byte or element count.
	FixedSize    uint32
	HasFixedSize bool

	// FixedArray, Array: the native element type.
	Elem    NativeType
	HasElem bool

	// Array: the index of the parameter holding the runtime element count,
	// and the constant element count.
	ParamNum    uint32
	HasParamNum bool
	NumElem     uint32
	HasNumElem  bool

	// SafeArray: the variant type of the elements.
	VariantType    uint32
	HasVariantType bool

	// CustomMarshaler: the four length-prefixed strings of the descriptor.
	// The first two are retained verbatim even though current runtimes
	// ignore them.
	Guid           string
	UnmanagedType  string
	MarshalerType  string
	MarshalCookie  string
}

// EncodeMarshal serializes a marshalling descriptor blob.
func EncodeMarshal(m *MarshalSpec) ([]byte, error) {
	buf := []byte{byte(m.Kind)}
	var err error
	appendUint := func(v uint32) {
		if err == nil {
			buf, err = cint.AppendUint(buf, v)
		}
	}
	appendStr := func(s string) {
		appendUint(uint32(len(s)))
		if err == nil {
			buf = append(buf, s...)
		}
	}
	switch m.Kind {
	case NativeFixedSysString:
		if m.HasFixedSize {
			appendUint(m.FixedSize)
		}
	case NativeFixedArray:
		if m.HasFixedSize {
			appendUint(m.FixedSize)
			if m.HasElem {
				appendUint(uint32(m.Elem))
			}
		}
	case NativeSafeArray:
		if m.HasVariantType {
			appendUint(m.VariantType)
		}
	case NativeArray:
		if m.HasElem {
			appendUint(uint32(m.Elem))
			if m.HasParamNum {
				appendUint(m.ParamNum)
				if m.HasNumElem {
					appendUint(m.NumElem)
				}
			}
		}
	case NativeCustomMarshal:
		appendStr(m.Guid)
		appendStr(m.UnmanagedType)
		appendStr(m.MarshalerType)
		appendStr(m.MarshalCookie)
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeMarshal decodes a marshalling descriptor blob.
func DecodeMarshal(blob []byte) (*MarshalSpec, error) {
	if len(blob) == 0 {
		return nil, base.CorruptBlobErrorf("cilmeta: empty marshal descriptor")
	}
	m := &MarshalSpec{Kind: NativeType(blob[0])}
	d := blob[1:]
	next := func() (uint32, bool, error) {
		if len(d) == 0 {
			return 0, false, nil
		}
		v, n, err := cint.Uint(d)
		if err != nil {
			return 0, false, err
		}
		d = d[n:]
		return v, true, nil
	}
	nextStr := func() (string, error) {
		n, ok, err := next()
		if err != nil || !ok {
			return "", err
		}
		if uint64(n) > uint64(len(d)) {
			return "", base.CorruptBlobErrorf(
				"cilmeta: marshal descriptor string of length %d exceeds blob", n)
		}
		s := string(d[:n])
		d = d[n:]
		return s, nil
	}

	var err error
	switch m.Kind {
	case NativeFixedSysString:
		m.FixedSize, m.HasFixedSize, err = next()
	case NativeFixedArray:
		if m.FixedSize, m.HasFixedSize, err = next(); err == nil && m.HasFixedSize {
			var v uint32
			if v, m.HasElem, err = next(); m.HasElem {
				m.Elem = NativeType(v)
			}
		}
	case NativeSafeArray:
		m.VariantType, m.HasVariantType, err = next()
	case NativeArray:
		var v uint32
		if v, m.HasElem, err = next(); err == nil && m.HasElem {
			m.Elem = NativeType(v)
			if m.ParamNum, m.HasParamNum, err = next(); err == nil && m.HasParamNum {
				m.NumElem, m.HasNumElem, err = next()
			}
		}
	case NativeCustomMarshal:
		if m.Guid, err = nextStr(); err != nil {
			break
		}
		if m.UnmanagedType, err = nextStr(); err != nil {
			break
		}
		if m.MarshalerType, err = nextStr(); err != nil {
			break
		}
		m.MarshalCookie, err = nextStr()
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
