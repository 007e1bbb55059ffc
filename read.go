// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/sig"
	"github.com/cockroachdb/cilmeta/tables"
)

// Read parses a metadata section into a Root. The returned Root is in the
// written state: its graph is complete and immutable, tokens are final, and
// WriteStream and Write re-serialize it. Unless EagerBlobDecode is set,
// descriptors defer signature decoding. The Root's heaps alias data, so data
// must stay valid for the Root's lifetime.
func Read(data []byte, opts *Options) (*Root, error) {
	o := opts.EnsureDefaults()
	mr, err := tables.ReadRoot(data)
	if err != nil {
		return nil, err
	}
	store, layout, _, err := tables.ReadStream(mr.TableStream)
	if err != nil {
		return nil, err
	}
	err = store.ResolveRefs(tables.ResolveOptions{
		SkipCorrupt: o.SkipCorrupt, Logger: o.Logger,
	})
	if err != nil {
		return nil, err
	}
	store.Freeze()

	r := &Root{
		opts:              o,
		state:             stateWritten,
		heaps:             mr.Heaps,
		store:             store,
		layout:            layout,
		image:             data,
		assemblyRefIntern: make(map[string]*AssemblyRef),
		moduleRefIntern:   make(map[string]*ModuleRef),
		typeRefIntern:     make(map[typeRefKey]*TypeRef),
	}
	if mr.Version != "" {
		r.opts.Version = mr.Version
	}
	res := &resolver{
		r:      r,
		store:  store,
		skip:   o.SkipCorrupt,
		logger: base.NoopLoggerIfNil(o.Logger),
		descs:  make(map[*tables.Handle]rowStater),
	}
	if err := res.run(); err != nil {
		return nil, err
	}
	if o.EagerBlobDecode {
		if err := res.eagerDecode(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// resolver turns the resolved row store into the descriptor graph: shells
// first, then cross-references, then containment ranges, then attachments.
type resolver struct {
	r      *Root
	store  *tables.Store
	skip   bool
	logger Logger
	descs  map[*tables.Handle]rowStater

	typeRefs      []*TypeRef
	typeDefs      []*TypeDef
	fields        []*Field
	methods       []*Method
	params        []*Param
	events        []*Event
	properties    []*Property
	genericParams []*GenericParam
}

func (res *resolver) run() error {
	if err := res.resolveModule(); err != nil {
		return err
	}
	if err := res.buildShells(); err != nil {
		return err
	}
	if err := res.wireRefs(); err != nil {
		return err
	}
	if err := res.wireRanges(); err != nil {
		return err
	}
	if err := res.wireAttachments(); err != nil {
		return err
	}
	if err := res.wireManifest(); err != nil {
		return err
	}
	return res.wireCustomAttributes()
}

// corrupt wraps err with its row coordinates. In lenient mode the error is
// logged and swallowed; the caller skips the row.
func (res *resolver) corrupt(err error, id base.TableID, ri int, col string) error {
	err = base.RowErrorf(err, id, uint32(ri)+1, col)
	if res.skip {
		res.logger.Errorf("cilmeta: skipping corrupt row: %v", err)
		return nil
	}
	return err
}

// shell registers a descriptor for its row.
func (res *resolver) shell(id base.TableID, ri int, d rowStater) {
	st := d.state()
	st.handle = res.store.Handle(id, uint32(ri)+1)
	st.row = res.store.Row(id, uint32(ri)+1)
	res.descs[st.handle] = d
}

// desc returns the descriptor owning the referenced row, or nil for a null
// reference.
func (res *resolver) desc(r tables.Row, col int) rowStater {
	h := r.Ref(col)
	if h == nil {
		return nil
	}
	return res.descs[h]
}

func (res *resolver) str(r tables.Row, col int) (string, error) {
	return res.r.heaps.Strings.Lookup(r.U32(col))
}

func (res *resolver) blobBytes(r tables.Row, col int) ([]byte, error) {
	off := r.U32(col)
	if off == 0 {
		return nil, nil
	}
	return res.r.heaps.Blob.Lookup(off)
}

func (res *resolver) guid(r tables.Row, col int) ([16]byte, error) {
	idx := r.U32(col)
	if idx == 0 {
		return [16]byte{}, nil
	}
	return res.r.heaps.GUID.Lookup(idx)
}

func (res *resolver) resolveModule() error {
	n := res.store.Len(base.TableModule)
	if n != 1 {
		err := base.CorruptIndexErrorf("cilmeta: %d module rows, want 1", n)
		if !res.skip || n == 0 {
			return err
		}
		res.logger.Errorf("cilmeta: %v", err)
	}
	row := res.store.Row(base.TableModule, 1)
	name, err := res.str(row, tables.ModuleName)
	if err != nil {
		if err = res.corrupt(err, base.TableModule, 0, "Name"); err != nil {
			return err
		}
	}
	mvid, err := res.guid(row, tables.ModuleMvid)
	if err != nil {
		if err = res.corrupt(err, base.TableModule, 0, "Mvid"); err != nil {
			return err
		}
	}
	m := &Module{
		Name:       name,
		Mvid:       mvid,
		Generation: uint16(row.U32(tables.ModuleGeneration)),
		root:       res.r,
		typeIntern: make(map[typeDefKey]*TypeDef),
	}
	m.EncID, _ = res.guid(row, tables.ModuleEncID)
	m.EncBaseID, _ = res.guid(row, tables.ModuleEncBaseID)
	res.shell(base.TableModule, 0, m)
	res.r.module = m
	return nil
}

// buildShells materializes a descriptor per row for every table whose rows
// the graph exposes as descriptors, decoding names and scalars but leaving
// cross-references for the wire passes.
func (res *resolver) buildShells() error {
	blobHeap := res.r.heaps.Blob

	for ri, n := 0, res.store.Len(base.TableTypeRef); ri < n; ri++ {
		row := res.store.Row(base.TableTypeRef, uint32(ri)+1)
		name, err := res.str(row, tables.TypeRefName)
		if err != nil {
			if err = res.corrupt(err, base.TableTypeRef, ri, "Name"); err != nil {
				return err
			}
		}
		ns, err := res.str(row, tables.TypeRefNamespace)
		if err != nil {
			if err = res.corrupt(err, base.TableTypeRef, ri, "Namespace"); err != nil {
				return err
			}
		}
		tr := &TypeRef{Name: name, Namespace: ns}
		res.shell(base.TableTypeRef, ri, tr)
		res.typeRefs = append(res.typeRefs, tr)
	}
	res.r.typeRefs = res.typeRefs

	for ri, n := 0, res.store.Len(base.TableTypeDef); ri < n; ri++ {
		row := res.store.Row(base.TableTypeDef, uint32(ri)+1)
		name, err := res.str(row, tables.TypeDefName)
		if err != nil {
			if err = res.corrupt(err, base.TableTypeDef, ri, "Name"); err != nil {
				return err
			}
		}
		ns, err := res.str(row, tables.TypeDefNamespace)
		if err != nil {
			if err = res.corrupt(err, base.TableTypeDef, ri, "Namespace"); err != nil {
				return err
			}
		}
		t := &TypeDef{
			Flags:     row.U32(tables.TypeDefFlags),
			Namespace: ns,
			Name:      name,
			module:    res.r.module,
		}
		res.shell(base.TableTypeDef, ri, t)
		res.typeDefs = append(res.typeDefs, t)
		res.r.module.types = append(res.r.module.types, t)
	}

	for ri, n := 0, res.store.Len(base.TableField); ri < n; ri++ {
		row := res.store.Row(base.TableField, uint32(ri)+1)
		name, err := res.str(row, tables.FieldName)
		if err != nil {
			if err = res.corrupt(err, base.TableField, ri, "Name"); err != nil {
				return err
			}
		}
		f := &Field{
			Flags: uint16(row.U32(tables.FieldFlags)),
			Name:  name,
		}
		f.set(blobHeap, row.U32(tables.FieldSignature))
		res.shell(base.TableField, ri, f)
		res.fields = append(res.fields, f)
	}

	for ri, n := 0, res.store.Len(base.TableMethodDef); ri < n; ri++ {
		row := res.store.Row(base.TableMethodDef, uint32(ri)+1)
		name, err := res.str(row, tables.MethodDefName)
		if err != nil {
			if err = res.corrupt(err, base.TableMethodDef, ri, "Name"); err != nil {
				return err
			}
		}
		m := &Method{
			RVA:       row.U32(tables.MethodDefRVA),
			ImplFlags: uint16(row.U32(tables.MethodDefImplFlags)),
			Flags:     uint16(row.U32(tables.MethodDefFlags)),
			Name:      name,
		}
		m.set(blobHeap, row.U32(tables.MethodDefSignature))
		res.shell(base.TableMethodDef, ri, m)
		res.methods = append(res.methods, m)
	}

	for ri, n := 0, res.store.Len(base.TableParam); ri < n; ri++ {
		row := res.store.Row(base.TableParam, uint32(ri)+1)
		name, err := res.str(row, tables.ParamName)
		if err != nil {
			if err = res.corrupt(err, base.TableParam, ri, "Name"); err != nil {
				return err
			}
		}
		p := &Param{
			Flags:    uint16(row.U32(tables.ParamFlags)),
			Sequence: uint16(row.U32(tables.ParamSequence)),
			Name:     name,
		}
		res.shell(base.TableParam, ri, p)
		res.params = append(res.params, p)
	}

	for ri, n := 0, res.store.Len(base.TableModuleRef); ri < n; ri++ {
		row := res.store.Row(base.TableModuleRef, uint32(ri)+1)
		name, err := res.str(row, tables.ModuleRefName)
		if err != nil {
			if err = res.corrupt(err, base.TableModuleRef, ri, "Name"); err != nil {
				return err
			}
		}
		mr := &ModuleRef{Name: name}
		res.shell(base.TableModuleRef, ri, mr)
		res.r.moduleRefs = append(res.r.moduleRefs, mr)
		res.r.moduleRefIntern[name] = mr
	}

	for ri, n := 0, res.store.Len(base.TableAssemblyRef); ri < n; ri++ {
		row := res.store.Row(base.TableAssemblyRef, uint32(ri)+1)
		name, err := res.str(row, tables.AssemblyRefName)
		if err != nil {
			if err = res.corrupt(err, base.TableAssemblyRef, ri, "Name"); err != nil {
				return err
			}
		}
		culture, err := res.str(row, tables.AssemblyRefCulture)
		if err != nil {
			if err = res.corrupt(err, base.TableAssemblyRef, ri, "Culture"); err != nil {
				return err
			}
		}
		pk, err := res.blobBytes(row, tables.AssemblyRefPublicKeyOrToken)
		if err != nil {
			if err = res.corrupt(err, base.TableAssemblyRef, ri, "PublicKeyOrToken"); err != nil {
				return err
			}
		}
		hash, err := res.blobBytes(row, tables.AssemblyRefHashValue)
		if err != nil {
			if err = res.corrupt(err, base.TableAssemblyRef, ri, "HashValue"); err != nil {
				return err
			}
		}
		ar := &AssemblyRef{
			Name:    name,
			Culture: culture,
			Version: [4]uint16{
				uint16(row.U32(tables.AssemblyRefMajorVersion)),
				uint16(row.U32(tables.AssemblyRefMinorVersion)),
				uint16(row.U32(tables.AssemblyRefBuildNumber)),
				uint16(row.U32(tables.AssemblyRefRevisionNumber)),
			},
			Flags:            row.U32(tables.AssemblyRefFlags),
			PublicKeyOrToken: pk,
			Hash:             hash,
		}
		res.shell(base.TableAssemblyRef, ri, ar)
		res.r.assemblyRefs = append(res.r.assemblyRefs, ar)
		res.r.assemblyRefIntern[name] = ar
	}

	for ri, n := 0, res.store.Len(base.TableTypeSpec); ri < n; ri++ {
		row := res.store.Row(base.TableTypeSpec, uint32(ri)+1)
		ts := &TypeSpec{}
		ts.set(blobHeap, row.U32(tables.TypeSpecSignature))
		res.shell(base.TableTypeSpec, ri, ts)
		res.r.typeSpecs = append(res.r.typeSpecs, ts)
	}

	for ri, n := 0, res.store.Len(base.TableMemberRef); ri < n; ri++ {
		row := res.store.Row(base.TableMemberRef, uint32(ri)+1)
		name, err := res.str(row, tables.MemberRefName)
		if err != nil {
			if err = res.corrupt(err, base.TableMemberRef, ri, "Name"); err != nil {
				return err
			}
		}
		mr := &MemberRef{Name: name}
		mr.set(blobHeap, row.U32(tables.MemberRefSignature))
		res.shell(base.TableMemberRef, ri, mr)
		res.r.memberRefs = append(res.r.memberRefs, mr)
	}

	for ri, n := 0, res.store.Len(base.TableMethodSpec); ri < n; ri++ {
		row := res.store.Row(base.TableMethodSpec, uint32(ri)+1)
		ms := &MethodSpec{}
		ms.set(blobHeap, row.U32(tables.MethodSpecInstantiation))
		res.shell(base.TableMethodSpec, ri, ms)
		res.r.methodSpecs = append(res.r.methodSpecs, ms)
	}

	for ri, n := 0, res.store.Len(base.TableStandAloneSig); ri < n; ri++ {
		row := res.store.Row(base.TableStandAloneSig, uint32(ri)+1)
		ss := &StandAloneSig{}
		ss.set(blobHeap, row.U32(tables.StandAloneSigSignature))
		res.shell(base.TableStandAloneSig, ri, ss)
		res.r.standAloneSigs = append(res.r.standAloneSigs, ss)
	}

	for ri, n := 0, res.store.Len(base.TableFile); ri < n; ri++ {
		row := res.store.Row(base.TableFile, uint32(ri)+1)
		name, err := res.str(row, tables.FileName)
		if err != nil {
			if err = res.corrupt(err, base.TableFile, ri, "Name"); err != nil {
				return err
			}
		}
		hash, err := res.blobBytes(row, tables.FileHashValue)
		if err != nil {
			if err = res.corrupt(err, base.TableFile, ri, "HashValue"); err != nil {
				return err
			}
		}
		f := &File{Flags: row.U32(tables.FileFlags), Name: name, Hash: hash}
		res.shell(base.TableFile, ri, f)
		res.r.files = append(res.r.files, f)
	}

	for ri, n := 0, res.store.Len(base.TableExportedType); ri < n; ri++ {
		row := res.store.Row(base.TableExportedType, uint32(ri)+1)
		name, err := res.str(row, tables.ExportedTypeName)
		if err != nil {
			if err = res.corrupt(err, base.TableExportedType, ri, "TypeName"); err != nil {
				return err
			}
		}
		ns, err := res.str(row, tables.ExportedTypeNamespace)
		if err != nil {
			if err = res.corrupt(err, base.TableExportedType, ri, "TypeNamespace"); err != nil {
				return err
			}
		}
		et := &ExportedType{
			Flags:     row.U32(tables.ExportedTypeFlags),
			TypeDefID: row.U32(tables.ExportedTypeTypeDefID),
			Namespace: ns,
			Name:      name,
		}
		res.shell(base.TableExportedType, ri, et)
		res.r.exportedTypes = append(res.r.exportedTypes, et)
	}

	for ri, n := 0, res.store.Len(base.TableEvent); ri < n; ri++ {
		row := res.store.Row(base.TableEvent, uint32(ri)+1)
		name, err := res.str(row, tables.EventName)
		if err != nil {
			if err = res.corrupt(err, base.TableEvent, ri, "Name"); err != nil {
				return err
			}
		}
		e := &Event{Flags: uint16(row.U32(tables.EventFlags)), Name: name}
		res.shell(base.TableEvent, ri, e)
		res.events = append(res.events, e)
	}

	for ri, n := 0, res.store.Len(base.TableProperty); ri < n; ri++ {
		row := res.store.Row(base.TableProperty, uint32(ri)+1)
		name, err := res.str(row, tables.PropertyName)
		if err != nil {
			if err = res.corrupt(err, base.TableProperty, ri, "Name"); err != nil {
				return err
			}
		}
		p := &Property{Flags: uint16(row.U32(tables.PropertyFlags)), Name: name}
		p.set(blobHeap, row.U32(tables.PropertySignature))
		res.shell(base.TableProperty, ri, p)
		res.properties = append(res.properties, p)
	}

	for ri, n := 0, res.store.Len(base.TableGenericParam); ri < n; ri++ {
		row := res.store.Row(base.TableGenericParam, uint32(ri)+1)
		name, err := res.str(row, tables.GenericParamName)
		if err != nil {
			if err = res.corrupt(err, base.TableGenericParam, ri, "Name"); err != nil {
				return err
			}
		}
		gp := &GenericParam{
			Number: uint16(row.U32(tables.GenericParamNumber)),
			Flags:  uint16(row.U32(tables.GenericParamFlags)),
			Name:   name,
			root:   res.r,
		}
		res.shell(base.TableGenericParam, ri, gp)
		res.genericParams = append(res.genericParams, gp)
	}

	if res.store.Len(base.TableAssembly) > 0 {
		row := res.store.Row(base.TableAssembly, 1)
		name, err := res.str(row, tables.AssemblyName)
		if err != nil {
			if err = res.corrupt(err, base.TableAssembly, 0, "Name"); err != nil {
				return err
			}
		}
		culture, err := res.str(row, tables.AssemblyCulture)
		if err != nil {
			if err = res.corrupt(err, base.TableAssembly, 0, "Culture"); err != nil {
				return err
			}
		}
		pk, err := res.blobBytes(row, tables.AssemblyPublicKey)
		if err != nil {
			if err = res.corrupt(err, base.TableAssembly, 0, "PublicKey"); err != nil {
				return err
			}
		}
		a := &Assembly{
			HashAlgID: row.U32(tables.AssemblyHashAlgID),
			Version: [4]uint16{
				uint16(row.U32(tables.AssemblyMajorVersion)),
				uint16(row.U32(tables.AssemblyMinorVersion)),
				uint16(row.U32(tables.AssemblyBuildNumber)),
				uint16(row.U32(tables.AssemblyRevisionNumber)),
			},
			Flags:     row.U32(tables.AssemblyFlags),
			PublicKey: pk,
			Name:      name,
			Culture:   culture,
			root:      res.r,
		}
		res.shell(base.TableAssembly, 0, a)
		res.r.assembly = a
	}
	return nil
}

// wireRefs installs the descriptor-typed cross-references that shells left
// nil.
func (res *resolver) wireRefs() error {
	for ri, tr := range res.typeRefs {
		row := tr.row
		d := res.desc(row, tables.TypeRefResolutionScope)
		if d != nil {
			scope, ok := d.(ResolutionScope)
			if !ok {
				err := base.CorruptIndexErrorf("cilmeta: resolution scope of unexpected kind")
				if err = res.corrupt(err, base.TableTypeRef, ri, "ResolutionScope"); err != nil {
					return err
				}
				continue
			}
			tr.Scope = scope
		}
		res.r.typeRefIntern[typeRefKey{
			scope: tr.Scope, namespace: tr.Namespace, name: tr.Name,
		}] = tr
	}
	for ri, t := range res.typeDefs {
		d := res.desc(t.row, tables.TypeDefExtends)
		if d == nil {
			continue
		}
		ext, ok := d.(TypeRefOrDef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: extends of unexpected kind")
			if err = res.corrupt(err, base.TableTypeDef, ri, "Extends"); err != nil {
				return err
			}
			continue
		}
		t.Extends = ext
	}
	for ri, e := range res.events {
		d := res.desc(e.row, tables.EventType)
		if d == nil {
			continue
		}
		et, ok := d.(TypeRefOrDef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: event type of unexpected kind")
			if err = res.corrupt(err, base.TableEvent, ri, "EventType"); err != nil {
				return err
			}
			continue
		}
		e.Type = et
	}
	for ri, mr := range res.r.memberRefs {
		d := res.desc(mr.row, tables.MemberRefClass)
		if d == nil {
			continue
		}
		parent, ok := d.(MemberRefParent)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: member ref parent of unexpected kind")
			if err = res.corrupt(err, base.TableMemberRef, ri, "Class"); err != nil {
				return err
			}
			continue
		}
		mr.Parent = parent
	}
	for ri, ms := range res.r.methodSpecs {
		d := res.desc(ms.row, tables.MethodSpecMethod)
		if d == nil {
			continue
		}
		m, ok := d.(MethodRefOrDef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: method spec target of unexpected kind")
			if err = res.corrupt(err, base.TableMethodSpec, ri, "Method"); err != nil {
				return err
			}
			continue
		}
		ms.Method = m
	}
	for ri, et := range res.r.exportedTypes {
		d := res.desc(et.row, tables.ExportedTypeImplementation)
		if d == nil {
			continue
		}
		impl, ok := d.(Implementation)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: implementation of unexpected kind")
			if err = res.corrupt(err, base.TableExportedType, ri, "Implementation"); err != nil {
				return err
			}
			continue
		}
		et.Impl = impl
	}
	return nil
}

// childRange returns the child rows [start, end) owned by parent row ri,
// where starts[ri] is the raw range column and the table holds total rows.
func childRange(starts []uint32, ri int, total int) (uint32, uint32, bool) {
	start := starts[ri]
	end := uint32(total) + 1
	if ri+1 < len(starts) {
		end = starts[ri+1]
	}
	if start < 1 || end < start || end > uint32(total)+1 {
		return 0, 0, false
	}
	return start, end, true
}

// wireRanges applies the containment range columns: fields and methods into
// their types, params into their methods, events and properties into their
// map rows' types.
func (res *resolver) wireRanges() error {
	fieldStarts := make([]uint32, len(res.typeDefs))
	methodStarts := make([]uint32, len(res.typeDefs))
	for ri, t := range res.typeDefs {
		fieldStarts[ri] = t.row.U32(tables.TypeDefFieldList)
		methodStarts[ri] = t.row.U32(tables.TypeDefMethodList)
	}
	for ri, t := range res.typeDefs {
		s, e, ok := childRange(fieldStarts, ri, len(res.fields))
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: field range out of order")
			if err = res.corrupt(err, base.TableTypeDef, ri, "FieldList"); err != nil {
				return err
			}
			continue
		}
		for i := s; i < e; i++ {
			f := res.fields[i-1]
			f.parent = t
			t.fields = append(t.fields, f)
		}
		s, e, ok = childRange(methodStarts, ri, len(res.methods))
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: method range out of order")
			if err = res.corrupt(err, base.TableTypeDef, ri, "MethodList"); err != nil {
				return err
			}
			continue
		}
		for i := s; i < e; i++ {
			m := res.methods[i-1]
			m.parent = t
			t.methods = append(t.methods, m)
		}
	}

	paramStarts := make([]uint32, len(res.methods))
	for ri, m := range res.methods {
		paramStarts[ri] = m.row.U32(tables.MethodDefParamList)
	}
	for ri, m := range res.methods {
		s, e, ok := childRange(paramStarts, ri, len(res.params))
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: param range out of order")
			if err = res.corrupt(err, base.TableMethodDef, ri, "ParamList"); err != nil {
				return err
			}
			continue
		}
		for i := s; i < e; i++ {
			p := res.params[i-1]
			p.method = m
			m.params = append(m.params, p)
		}
	}

	if err := res.wireMapRanges(
		base.TableEventMap, tables.EventMapParent, tables.EventMapEventList,
		len(res.events),
		func(t *TypeDef, i uint32) {
			e := res.events[i-1]
			e.parent = t
			t.events = append(t.events, e)
		},
	); err != nil {
		return err
	}
	return res.wireMapRanges(
		base.TablePropertyMap, tables.PropertyMapParent,
		tables.PropertyMapPropertyList, len(res.properties),
		func(t *TypeDef, i uint32) {
			p := res.properties[i-1]
			p.parent = t
			t.properties = append(t.properties, p)
		},
	)
}

func (res *resolver) wireMapRanges(
	id base.TableID, parentCol, listCol int, total int,
	assign func(*TypeDef, uint32),
) error {
	n := res.store.Len(id)
	if n == 0 {
		return nil
	}
	starts := make([]uint32, n)
	for ri := 0; ri < n; ri++ {
		starts[ri] = res.store.Row(id, uint32(ri)+1).U32(listCol)
	}
	for ri := 0; ri < n; ri++ {
		row := res.store.Row(id, uint32(ri)+1)
		t, ok := res.descs[row.Ref(parentCol)].(*TypeDef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: map parent is not a type")
			if err = res.corrupt(err, id, ri, "Parent"); err != nil {
				return err
			}
			continue
		}
		s, e, ok := childRange(starts, ri, total)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: map range out of order")
			if err = res.corrupt(err, id, ri, "List"); err != nil {
				return err
			}
			continue
		}
		for i := s; i < e; i++ {
			assign(t, i)
		}
	}
	return nil
}

func (res *resolver) wireAttachments() error {
	for ri, n := 0, res.store.Len(base.TableInterfaceImpl); ri < n; ri++ {
		row := res.store.Row(base.TableInterfaceImpl, uint32(ri)+1)
		t, ok := res.descs[row.Ref(tables.InterfaceImplClass)].(*TypeDef)
		iface, ok2 := res.desc(row, tables.InterfaceImplInterface).(TypeRefOrDef)
		if !ok || !ok2 {
			err := base.CorruptIndexErrorf("cilmeta: interface impl references of unexpected kind")
			if err = res.corrupt(err, base.TableInterfaceImpl, ri, "Class"); err != nil {
				return err
			}
			continue
		}
		ii := &InterfaceImpl{Class: t, Interface: iface}
		res.shell(base.TableInterfaceImpl, ri, ii)
		t.interfaces = append(t.interfaces, ii)
	}

	for ri, n := 0, res.store.Len(base.TableNestedClass); ri < n; ri++ {
		row := res.store.Row(base.TableNestedClass, uint32(ri)+1)
		nested, ok := res.descs[row.Ref(tables.NestedClassNested)].(*TypeDef)
		encl, ok2 := res.descs[row.Ref(tables.NestedClassEnclosing)].(*TypeDef)
		if !ok || !ok2 {
			err := base.CorruptIndexErrorf("cilmeta: nested class references of unexpected kind")
			if err = res.corrupt(err, base.TableNestedClass, ri, "NestedClass"); err != nil {
				return err
			}
			continue
		}
		nested.enclosing = encl
		encl.nested = append(encl.nested, nested)
	}
	for _, t := range res.typeDefs {
		res.r.module.typeIntern[typeDefKey{
			enclosing: t.enclosing, namespace: t.Namespace, name: t.Name,
		}] = t
	}

	for ri, n := 0, res.store.Len(base.TableClassLayout); ri < n; ri++ {
		row := res.store.Row(base.TableClassLayout, uint32(ri)+1)
		t, ok := res.descs[row.Ref(tables.ClassLayoutParent)].(*TypeDef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: class layout parent is not a type")
			if err = res.corrupt(err, base.TableClassLayout, ri, "Parent"); err != nil {
				return err
			}
			continue
		}
		t.layout = &classLayout{
			packingSize: uint16(row.U32(tables.ClassLayoutPackingSize)),
			classSize:   row.U32(tables.ClassLayoutClassSize),
		}
	}

	for ri, n := 0, res.store.Len(base.TableFieldLayout); ri < n; ri++ {
		row := res.store.Row(base.TableFieldLayout, uint32(ri)+1)
		f, ok := res.descs[row.Ref(tables.FieldLayoutField)].(*Field)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: field layout target is not a field")
			if err = res.corrupt(err, base.TableFieldLayout, ri, "Field"); err != nil {
				return err
			}
			continue
		}
		off := row.U32(tables.FieldLayoutOffset)
		f.offset = &off
	}

	for ri, n := 0, res.store.Len(base.TableFieldRVA); ri < n; ri++ {
		row := res.store.Row(base.TableFieldRVA, uint32(ri)+1)
		f, ok := res.descs[row.Ref(tables.FieldRVAField)].(*Field)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: field rva target is not a field")
			if err = res.corrupt(err, base.TableFieldRVA, ri, "Field"); err != nil {
				return err
			}
			continue
		}
		rva := row.U32(tables.FieldRVARVA)
		f.rva = &rva
	}

	for ri, n := 0, res.store.Len(base.TableFieldMarshal); ri < n; ri++ {
		row := res.store.Row(base.TableFieldMarshal, uint32(ri)+1)
		blob, err := res.blobBytes(row, tables.FieldMarshalNativeType)
		if err == nil {
			var spec *sig.MarshalSpec
			spec, err = sig.DecodeMarshal(blob)
			if err == nil {
				switch p := res.desc(row, tables.FieldMarshalParent).(type) {
				case *Field:
					p.marshal = spec
				case *Param:
					p.marshal = spec
				default:
					err = base.CorruptIndexErrorf("cilmeta: marshal parent of unexpected kind")
				}
			}
		}
		if err != nil {
			if err = res.corrupt(err, base.TableFieldMarshal, ri, "NativeType"); err != nil {
				return err
			}
		}
	}

	for ri, n := 0, res.store.Len(base.TableConstant); ri < n; ri++ {
		row := res.store.Row(base.TableConstant, uint32(ri)+1)
		value, err := res.blobBytes(row, tables.ConstantValue)
		if err == nil {
			c := &Constant{
				Kind:  sig.ElementType(row.U32(tables.ConstantType)),
				Value: value,
			}
			res.shell(base.TableConstant, ri, c)
			switch p := res.desc(row, tables.ConstantParent).(type) {
			case *Field:
				c.parent, p.constant = p, c
			case *Param:
				c.parent, p.constant = p, c
			case *Property:
				c.parent, p.constant = p, c
			default:
				err = base.CorruptIndexErrorf("cilmeta: constant parent of unexpected kind")
			}
		}
		if err != nil {
			if err = res.corrupt(err, base.TableConstant, ri, "Parent"); err != nil {
				return err
			}
		}
	}

	for ri, n := 0, res.store.Len(base.TableImplMap); ri < n; ri++ {
		row := res.store.Row(base.TableImplMap, uint32(ri)+1)
		name, err := res.str(row, tables.ImplMapImportName)
		if err != nil {
			if err = res.corrupt(err, base.TableImplMap, ri, "ImportName"); err != nil {
				return err
			}
			continue
		}
		m, ok := res.desc(row, tables.ImplMapMemberForwarded).(*Method)
		scope, _ := res.descs[row.Ref(tables.ImplMapImportScope)].(*ModuleRef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: pinvoke target is not a method")
			if err = res.corrupt(err, base.TableImplMap, ri, "MemberForwarded"); err != nil {
				return err
			}
			continue
		}
		pm := &ImplMap{
			MappingFlags: uint16(row.U32(tables.ImplMapMappingFlags)),
			ImportName:   name,
			Scope:        scope,
			method:       m,
		}
		res.shell(base.TableImplMap, ri, pm)
		m.pinvoke = pm
	}

	for ri, n := 0, res.store.Len(base.TableDeclSecurity); ri < n; ri++ {
		row := res.store.Row(base.TableDeclSecurity, uint32(ri)+1)
		perm, err := res.blobBytes(row, tables.DeclSecurityPermissionSet)
		if err != nil {
			if err = res.corrupt(err, base.TableDeclSecurity, ri, "PermissionSet"); err != nil {
				return err
			}
			continue
		}
		ds := &DeclSecurity{
			Action:        uint16(row.U32(tables.DeclSecurityAction)),
			PermissionSet: perm,
		}
		res.shell(base.TableDeclSecurity, ri, ds)
		switch p := res.desc(row, tables.DeclSecurityParent).(type) {
		case *TypeDef:
			ds.parent = p
			p.security = append(p.security, ds)
		case *Method:
			ds.parent = p
			p.security = append(p.security, ds)
		case *Assembly:
			ds.parent = p
			p.security = append(p.security, ds)
		default:
			err := base.CorruptIndexErrorf("cilmeta: security parent of unexpected kind")
			if err = res.corrupt(err, base.TableDeclSecurity, ri, "Parent"); err != nil {
				return err
			}
		}
	}

	for ri, n := 0, res.store.Len(base.TableMethodSemantics); ri < n; ri++ {
		row := res.store.Row(base.TableMethodSemantics, uint32(ri)+1)
		m, ok := res.descs[row.Ref(tables.MethodSemanticsMethod)].(*Method)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: semantics method missing")
			if err = res.corrupt(err, base.TableMethodSemantics, ri, "Method"); err != nil {
				return err
			}
			continue
		}
		s := &MethodSemantic{
			Semantics: uint16(row.U32(tables.MethodSemanticsSemantics)),
			Method:    m,
		}
		res.shell(base.TableMethodSemantics, ri, s)
		switch assoc := res.desc(row, tables.MethodSemanticsAssociation).(type) {
		case *Event:
			s.assoc = assoc
			assoc.semantics = append(assoc.semantics, s)
		case *Property:
			s.assoc = assoc
			assoc.semantics = append(assoc.semantics, s)
		default:
			err := base.CorruptIndexErrorf("cilmeta: semantics association of unexpected kind")
			if err = res.corrupt(err, base.TableMethodSemantics, ri, "Association"); err != nil {
				return err
			}
		}
	}

	for ri, n := 0, res.store.Len(base.TableMethodImpl); ri < n; ri++ {
		row := res.store.Row(base.TableMethodImpl, uint32(ri)+1)
		t, ok := res.descs[row.Ref(tables.MethodImplClass)].(*TypeDef)
		body, ok2 := res.desc(row, tables.MethodImplBody).(MethodRefOrDef)
		decl, ok3 := res.desc(row, tables.MethodImplDeclaration).(MethodRefOrDef)
		if !ok || !ok2 || !ok3 {
			err := base.CorruptIndexErrorf("cilmeta: method impl references of unexpected kind")
			if err = res.corrupt(err, base.TableMethodImpl, ri, "Class"); err != nil {
				return err
			}
			continue
		}
		mi := &MethodImpl{Class: t, Body: body, Declaration: decl}
		res.shell(base.TableMethodImpl, ri, mi)
		t.overrides = append(t.overrides, mi)
	}

	for ri, gp := range res.genericParams {
		switch owner := res.desc(gp.row, tables.GenericParamOwner).(type) {
		case *TypeDef:
			gp.owner = owner
			owner.genericParams = append(owner.genericParams, gp)
		case *Method:
			gp.owner = owner
			owner.genericParams = append(owner.genericParams, gp)
		default:
			err := base.CorruptIndexErrorf("cilmeta: generic param owner of unexpected kind")
			if err = res.corrupt(err, base.TableGenericParam, ri, "Owner"); err != nil {
				return err
			}
		}
	}

	for ri, n := 0, res.store.Len(base.TableGenericParamConstraint); ri < n; ri++ {
		row := res.store.Row(base.TableGenericParamConstraint, uint32(ri)+1)
		gp, ok := res.descs[row.Ref(tables.GenericParamConstraintOwner)].(*GenericParam)
		c, ok2 := res.desc(row, tables.GenericParamConstraintConstraint).(TypeRefOrDef)
		if !ok || !ok2 {
			err := base.CorruptIndexErrorf("cilmeta: constraint references of unexpected kind")
			if err = res.corrupt(err, base.TableGenericParamConstraint, ri, "Owner"); err != nil {
				return err
			}
			continue
		}
		gc := &GenericParamConstraint{Owner: gp, Constraint: c}
		res.shell(base.TableGenericParamConstraint, ri, gc)
		gp.constraints = append(gp.constraints, gc)
	}
	return nil
}

func (res *resolver) wireManifest() error {
	for ri, n := 0, res.store.Len(base.TableAssemblyProcessor); ri < n; ri++ {
		row := res.store.Row(base.TableAssemblyProcessor, uint32(ri)+1)
		p := &AssemblyProcessor{Processor: row.U32(tables.AssemblyProcessorProcessor)}
		res.shell(base.TableAssemblyProcessor, ri, p)
		res.r.asmProcessors = append(res.r.asmProcessors, p)
	}
	for ri, n := 0, res.store.Len(base.TableAssemblyOS); ri < n; ri++ {
		row := res.store.Row(base.TableAssemblyOS, uint32(ri)+1)
		o := &AssemblyOS{
			PlatformID:   row.U32(tables.AssemblyOSPlatformID),
			MajorVersion: row.U32(tables.AssemblyOSMajorVersion),
			MinorVersion: row.U32(tables.AssemblyOSMinorVersion),
		}
		res.shell(base.TableAssemblyOS, ri, o)
		res.r.asmOSes = append(res.r.asmOSes, o)
	}
	for ri, n := 0, res.store.Len(base.TableAssemblyRefProcessor); ri < n; ri++ {
		row := res.store.Row(base.TableAssemblyRefProcessor, uint32(ri)+1)
		ar, ok := res.descs[row.Ref(tables.AssemblyRefProcessorRef)].(*AssemblyRef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: processor restriction references no assembly ref")
			if err = res.corrupt(err, base.TableAssemblyRefProcessor, ri, "AssemblyRef"); err != nil {
				return err
			}
			continue
		}
		p := &AssemblyRefProcessor{
			Processor: row.U32(tables.AssemblyRefProcessorProcessor),
			Ref:       ar,
		}
		res.shell(base.TableAssemblyRefProcessor, ri, p)
		res.r.asmRefProcessors = append(res.r.asmRefProcessors, p)
	}
	for ri, n := 0, res.store.Len(base.TableAssemblyRefOS); ri < n; ri++ {
		row := res.store.Row(base.TableAssemblyRefOS, uint32(ri)+1)
		ar, ok := res.descs[row.Ref(tables.AssemblyRefOSRef)].(*AssemblyRef)
		if !ok {
			err := base.CorruptIndexErrorf("cilmeta: os restriction references no assembly ref")
			if err = res.corrupt(err, base.TableAssemblyRefOS, ri, "AssemblyRef"); err != nil {
				return err
			}
			continue
		}
		o := &AssemblyRefOS{
			PlatformID:   row.U32(tables.AssemblyRefOSPlatformID),
			MajorVersion: row.U32(tables.AssemblyRefOSMajorVersion),
			MinorVersion: row.U32(tables.AssemblyRefOSMinorVersion),
			Ref:          ar,
		}
		res.shell(base.TableAssemblyRefOS, ri, o)
		res.r.asmRefOSes = append(res.r.asmRefOSes, o)
	}
	for ri, n := 0, res.store.Len(base.TableManifestResource); ri < n; ri++ {
		row := res.store.Row(base.TableManifestResource, uint32(ri)+1)
		name, err := res.str(row, tables.ManifestResourceName)
		if err != nil {
			if err = res.corrupt(err, base.TableManifestResource, ri, "Name"); err != nil {
				return err
			}
			continue
		}
		mr := &ManifestResource{
			Offset: row.U32(tables.ManifestResourceOffset),
			Flags:  row.U32(tables.ManifestResourceFlags),
			Name:   name,
		}
		if d := res.desc(row, tables.ManifestResourceImplementation); d != nil {
			impl, ok := d.(Implementation)
			if !ok {
				err := base.CorruptIndexErrorf("cilmeta: implementation of unexpected kind")
				if err = res.corrupt(err, base.TableManifestResource, ri, "Implementation"); err != nil {
					return err
				}
				continue
			}
			mr.Impl = impl
		}
		res.shell(base.TableManifestResource, ri, mr)
		res.r.resources = append(res.r.resources, mr)
	}
	return nil
}

func (res *resolver) wireCustomAttributes() error {
	for ri, n := 0, res.store.Len(base.TableCustomAttribute); ri < n; ri++ {
		row := res.store.Row(base.TableCustomAttribute, uint32(ri)+1)
		parent, ok := res.desc(row, tables.CustomAttributeParent).(AttributeTarget)
		ctor, ok2 := res.desc(row, tables.CustomAttributeType).(MethodRefOrDef)
		if !ok || !ok2 {
			err := base.CorruptIndexErrorf("cilmeta: attribute references of unexpected kind")
			if err = res.corrupt(err, base.TableCustomAttribute, ri, "Parent"); err != nil {
				return err
			}
			continue
		}
		ca := &CustomAttribute{Ctor: ctor}
		ca.set(res.r.heaps.Blob, row.U32(tables.CustomAttributeValue))
		res.shell(base.TableCustomAttribute, ri, ca)
		parent.holder().attrs = append(parent.holder().attrs, ca)
		res.r.customAttrs = append(res.r.customAttrs,
			attachedAttr{parent: parent, attr: ca})
	}
	return nil
}

// eagerDecode forces every deferred signature blob through its decoder, so
// signature errors surface at read time.
func (res *resolver) eagerDecode() error {
	decode := func(id base.TableID, ri int, col string, err error) error {
		if err == nil {
			return nil
		}
		return res.corrupt(err, id, ri, col)
	}
	for ri, f := range res.fields {
		_, err := f.Signature()
		if err = decode(base.TableField, ri, "Signature", err); err != nil {
			return err
		}
	}
	for ri, m := range res.methods {
		_, err := m.Signature()
		if err = decode(base.TableMethodDef, ri, "Signature", err); err != nil {
			return err
		}
	}
	for ri, p := range res.properties {
		_, err := p.Signature()
		if err = decode(base.TableProperty, ri, "Type", err); err != nil {
			return err
		}
	}
	for ri, ts := range res.r.typeSpecs {
		_, err := ts.Signature()
		if err = decode(base.TableTypeSpec, ri, "Signature", err); err != nil {
			return err
		}
	}
	for ri, ms := range res.r.methodSpecs {
		_, err := ms.Instantiation()
		if err = decode(base.TableMethodSpec, ri, "Instantiation", err); err != nil {
			return err
		}
	}
	for ri, mr := range res.r.memberRefs {
		blob, err := mr.lookup()
		if err == nil {
			if len(blob) > 0 && blob[0]&sig.CallConvMask == sig.CallConvField {
				_, err = mr.FieldSignature()
			} else {
				_, err = mr.MethodSignature()
			}
		}
		if err = decode(base.TableMemberRef, ri, "Signature", err); err != nil {
			return err
		}
	}
	for ri, ss := range res.r.standAloneSigs {
		blob, err := ss.lookup()
		if err == nil && len(blob) > 0 &&
			blob[0]&sig.CallConvMask == sig.CallConvLocalSig {
			_, err = ss.LocalsSignature()
		}
		if err = decode(base.TableStandAloneSig, ri, "Signature", err); err != nil {
			return err
		}
	}
	return nil
}
