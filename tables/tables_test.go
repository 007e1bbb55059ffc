// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tables

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/cilmeta/heaps"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/stretchr/testify/require"
)

func TestSortFieldMarshalByTagThenRow(t *testing.T) {
	s := NewStore()
	f1 := s.Add(base.TableField, Row{RawVal(0), RawVal(0), RawVal(0)})
	f2 := s.Add(base.TableField, Row{RawVal(0), RawVal(0), RawVal(0)})
	p1 := s.Add(base.TableParam, Row{RawVal(0), RawVal(1), RawVal(0)})

	// Insertion order deliberately scrambles the key order: a Param parent
	// first, then the Field parents in reverse. Field carries the lower
	// HasFieldMarshal tag, so both Field rows sort ahead of the Param row
	// regardless of row number.
	s.Add(base.TableFieldMarshal, Row{RefVal(p1), RawVal(0)})
	s.Add(base.TableFieldMarshal, Row{RefVal(f2), RawVal(0)})
	s.Add(base.TableFieldMarshal, Row{RefVal(f1), RawVal(0)})

	s.SortAndStamp()

	require.Equal(t, f1, s.Row(base.TableFieldMarshal, 1).Ref(FieldMarshalParent))
	require.Equal(t, f2, s.Row(base.TableFieldMarshal, 2).Ref(FieldMarshalParent))
	require.Equal(t, p1, s.Row(base.TableFieldMarshal, 3).Ref(FieldMarshalParent))
}

func TestSortGenericParamByOwnerThenNumber(t *testing.T) {
	s := NewStore()
	t1 := s.Add(base.TableTypeDef, Row{
		RawVal(0), RawVal(0), RawVal(0), RawVal(0), RawVal(1), RawVal(1),
	})
	t2 := s.Add(base.TableTypeDef, Row{
		RawVal(0), RawVal(0), RawVal(0), RawVal(0), RawVal(1), RawVal(1),
	})

	// (owner, number) pairs inserted out of order.
	s.Add(base.TableGenericParam, Row{RawVal(1), RawVal(0), RefVal(t2), RawVal(0)})
	s.Add(base.TableGenericParam, Row{RawVal(0), RawVal(0), RefVal(t2), RawVal(0)})
	s.Add(base.TableGenericParam, Row{RawVal(0), RawVal(0), RefVal(t1), RawVal(0)})

	s.SortAndStamp()

	got := make([][2]uint32, 3)
	for i := uint32(1); i <= 3; i++ {
		r := s.Row(base.TableGenericParam, i)
		got[i-1] = [2]uint32{r.Ref(GenericParamOwner).Row(), r.U32(GenericParamNumber)}
	}
	require.Equal(t, [][2]uint32{{1, 0}, {2, 0}, {2, 1}}, got)
}

func TestSortPreservesHandleIdentity(t *testing.T) {
	s := NewStore()
	t1 := s.Add(base.TableTypeDef, Row{
		RawVal(0), RawVal(0), RawVal(0), RawVal(0), RawVal(1), RawVal(1),
	})
	t2 := s.Add(base.TableTypeDef, Row{
		RawVal(0), RawVal(0), RawVal(0), RawVal(0), RawVal(1), RawVal(1),
	})
	n2 := s.Add(base.TableNestedClass, Row{RefVal(t2), RefVal(t1)})
	n1 := s.Add(base.TableNestedClass, Row{RefVal(t1), RefVal(t2)})

	s.SortAndStamp()

	// The rows swapped positions but each handle still names its own row.
	require.Equal(t, uint32(1), n1.Row())
	require.Equal(t, uint32(2), n2.Row())
	require.Equal(t, t1, s.Row(base.TableNestedClass, 1).Ref(NestedClassNested))
	require.Equal(t, t2, s.Row(base.TableNestedClass, 2).Ref(NestedClassNested))
}

func TestPlanLayoutWidths(t *testing.T) {
	var counts [base.NumTableIDs]uint32
	counts[base.TableTypeDef] = 100
	l := PlanLayout(counts, false, false, false)
	require.Equal(t, 2, l.TableIndexSize(base.TableTypeDef))
	require.Equal(t, 2, l.CodedIndexSize(base.TypeDefOrRef))
	require.Equal(t, 2, l.StringsIndexSize())
	require.Equal(t, uint8(0), l.HeapSizes())

	// A table index widens past 0xFFFF rows. The TypeDefOrRef coded index,
	// with its 2 tag bits, widens earlier, past 1<<14 rows.
	counts[base.TableTypeDef] = 1<<14 + 1
	l = PlanLayout(counts, false, false, false)
	require.Equal(t, 2, l.TableIndexSize(base.TableTypeDef))
	require.Equal(t, 4, l.CodedIndexSize(base.TypeDefOrRef))

	counts[base.TableTypeDef] = 1<<16 + 1
	l = PlanLayout(counts, true, false, true)
	require.Equal(t, 4, l.TableIndexSize(base.TypeDefOrRef.Members()[0]))
	require.Equal(t, 4, l.TableIndexSize(base.TableTypeDef))
	require.Equal(t, 4, l.StringsIndexSize())
	require.Equal(t, 2, l.GUIDIndexSize())
	require.Equal(t, 4, l.BlobIndexSize())
	require.Equal(t, uint8(0x05), l.HeapSizes())
}

func TestWriteStreamEmptyModule(t *testing.T) {
	s := NewStore()
	s.Add(base.TableModule, Row{
		RawVal(0), RawVal(1), RawVal(1), RawVal(0), RawVal(0),
	})
	s.SortAndStamp()
	l := PlanLayout(s.RowCounts(), false, false, false)

	data := WriteStream(s, l)
	// 24-byte header, one 4-byte row count, one 10-byte Module row.
	require.Len(t, data, 38)
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data))
	require.Equal(t, uint8(2), data[4])
	require.Equal(t, uint8(0), data[5])
	require.Equal(t, uint8(0), data[6])
	require.Equal(t, uint8(1), data[7])
	require.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[8:]))
	require.Equal(t, base.SortedTableMask, binary.LittleEndian.Uint64(data[16:]))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[24:]))
	// Generation 0, Name 1, Mvid 1, EncId 0, EncBaseId 0, all narrow.
	require.Equal(t,
		[]byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00},
		data[28:])
}

func TestStreamRoundTrip(t *testing.T) {
	s := NewStore()
	s.Add(base.TableModule, Row{
		RawVal(0), RawVal(1), RawVal(1), RawVal(0), RawVal(0),
	})
	f1 := s.Add(base.TableField, Row{RawVal(0x0016), RawVal(10), RawVal(1)})
	s.Add(base.TableField, Row{RawVal(0x0011), RawVal(20), RawVal(4)})
	s.Add(base.TableTypeDef, Row{
		RawVal(0x00100001), RawVal(30), RawVal(40), RawVal(0),
		RawVal(1), RawVal(1),
	})
	s.Add(base.TableFieldLayout, Row{RawVal(8), RefVal(f1)})
	s.SortAndStamp()
	l := PlanLayout(s.RowCounts(), false, false, false)
	data := WriteStream(s, l)

	s2, l2, hdr, err := ReadStream(data)
	require.NoError(t, err)
	require.Equal(t, uint8(2), hdr.MajorVersion)
	require.Equal(t, s.ValidMask(), hdr.Valid)
	require.Equal(t, l.RowCounts, l2.RowCounts)
	require.NoError(t, s2.ResolveRefs(ResolveOptions{}))

	require.Equal(t, 2, s2.Len(base.TableField))
	require.Equal(t, 1, s2.Len(base.TableTypeDef))
	tdRow := s2.Row(base.TableTypeDef, 1)
	require.Equal(t, uint32(0x00100001), tdRow.U32(TypeDefFlags))
	require.Equal(t, uint32(1), tdRow.U32(TypeDefFieldList))

	flRow := s2.Row(base.TableFieldLayout, 1)
	require.Equal(t, base.TableField, flRow.Ref(FieldLayoutField).Table())
	require.Equal(t, uint32(1), flRow.Ref(FieldLayoutField).Row())
}

func TestResolveRefsCorruptIndex(t *testing.T) {
	s := NewStore()
	s.Add(base.TableModule, Row{
		RawVal(0), RawVal(1), RawVal(1), RawVal(0), RawVal(0),
	})
	// FieldLayout names Field row 7 of an empty Field table.
	s.Add(base.TableFieldLayout, Row{RawVal(8), RawVal(7)})
	s.SortAndStamp()

	err := s.ResolveRefs(ResolveOptions{})
	require.Error(t, err)
	require.ErrorIs(t, err, base.ErrCorruptIndex)

	// Lenient mode zeroes the column and continues.
	require.NoError(t, s.ResolveRefs(ResolveOptions{SkipCorrupt: true}))
	require.Equal(t, uint32(0), s.Row(base.TableFieldLayout, 1).U32(FieldLayoutField))
}

func TestRootRoundTrip(t *testing.T) {
	s := NewStore()
	s.Add(base.TableModule, Row{
		RawVal(0), RawVal(1), RawVal(1), RawVal(0), RawVal(0),
	})
	s.SortAndStamp()
	l := PlanLayout(s.RowCounts(), false, false, false)
	stream := WriteStream(s, l)

	h := heaps.New()
	h.Strings.Append("m")
	h.GUID.Append([16]byte{1})
	h.Freeze()
	img := WriteRoot(stream, h, DefaultVersion)
	require.Equal(t, uint32(RootSignature), binary.LittleEndian.Uint32(img))

	mr, err := ReadRoot(img)
	require.NoError(t, err)
	require.Equal(t, DefaultVersion, mr.Version)
	require.Equal(t, stream, mr.TableStream)
	require.Equal(t, h.Strings.Bytes(), mr.Heaps.Strings.Bytes())
	require.Equal(t, h.GUID.Bytes(), mr.Heaps.GUID.Bytes())
}

func TestReadRootBadSignature(t *testing.T) {
	img := make([]byte, 32)
	_, err := ReadRoot(img)
	require.Error(t, err)
	require.ErrorIs(t, err, base.ErrCorruptIndex)
}
