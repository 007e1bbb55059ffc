// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/sig"
	"github.com/cockroachdb/cilmeta/tables"
)

// builder runs the two Finalize sweeps. buildTables normalizes the
// descriptor graph into store rows, leaving blob columns zero. After the
// store is sorted and stamped, buildSignatures encodes every signature
// against the now-final tokens and patches the blob columns in place.
type builder struct {
	root *Root
	err  error
}

func raw(v uint32) tables.Value   { return tables.RawVal(v) }
func raw16(v uint16) tables.Value { return tables.RawVal(uint32(v)) }

func (b *builder) str(s string) tables.Value {
	return raw(b.root.heaps.Strings.Append(s))
}

func (b *builder) guid(g [16]byte) tables.Value {
	if g == ([16]byte{}) {
		return raw(0)
	}
	return raw(b.root.heaps.GUID.Append(g))
}

func (b *builder) blob(p []byte) (tables.Value, error) {
	if len(p) == 0 {
		return raw(0), nil
	}
	off, err := b.root.heaps.Blob.Append(p)
	if err != nil {
		return raw(0), err
	}
	return raw(off), nil
}

// add inserts a row and wires the owning descriptor to it.
func (b *builder) add(id base.TableID, d rowStater, vals ...tables.Value) {
	r := tables.Row(vals)
	h := b.root.store.Add(id, r)
	st := d.state()
	st.handle, st.row, st.done = h, r, true
}

// addAnon inserts a row no descriptor owns, such as a layout or range row
// derived from an attachment.
func (b *builder) addAnon(id base.TableID, vals ...tables.Value) {
	b.root.store.Add(id, tables.Row(vals))
}

func ref(d rowStater) tables.Value {
	if d == nil {
		return raw(0)
	}
	return tables.RefVal(d.state().handle)
}

func (b *builder) buildTables() error {
	m := b.root.module

	b.add(base.TableModule, m,
		raw16(m.Generation), b.str(m.Name),
		raw(b.root.heaps.GUID.Append(m.Mvid)),
		b.guid(m.EncID), b.guid(m.EncBaseID))

	if err := b.buildAssembly(); err != nil {
		return err
	}
	b.buildTypeDefRows()
	b.buildMemberRows()
	if err := b.patchExtends(); err != nil {
		return err
	}
	if err := b.buildAttachments(); err != nil {
		return err
	}
	if err := b.buildRegistries(); err != nil {
		return err
	}
	if err := b.sweepSignatureReferents(); err != nil {
		return err
	}
	return b.buildCustomAttributes()
}

func (b *builder) buildAssembly() error {
	a := b.root.assembly
	if a != nil {
		pk, err := b.blob(a.PublicKey)
		if err != nil {
			return err
		}
		b.add(base.TableAssembly, a,
			raw(a.HashAlgID),
			raw16(a.Version[0]), raw16(a.Version[1]),
			raw16(a.Version[2]), raw16(a.Version[3]),
			raw(a.Flags), pk, b.str(a.Name), b.str(a.Culture))
	}
	for _, p := range b.root.asmProcessors {
		b.add(base.TableAssemblyProcessor, p, raw(p.Processor))
	}
	for _, o := range b.root.asmOSes {
		b.add(base.TableAssemblyOS, o,
			raw(o.PlatformID), raw(o.MajorVersion), raw(o.MinorVersion))
	}
	return nil
}

// buildTypeDefRows inserts every TypeDef row in declaration order with its
// child-range starts accumulated. Extends stays null until every possible
// referent has a row.
func (b *builder) buildTypeDefRows() {
	fieldNext, methodNext := uint32(1), uint32(1)
	for _, t := range b.root.module.types {
		b.add(base.TableTypeDef, t,
			raw(t.Flags), b.str(t.Name), b.str(t.Namespace),
			raw(0), raw(fieldNext), raw(methodNext))
		fieldNext += uint32(len(t.fields))
		methodNext += uint32(len(t.methods))
	}
}

// buildMemberRows inserts Field, MethodDef and Param rows. Children land in
// the order their parents were declared, which is what makes the range
// columns contiguous.
func (b *builder) buildMemberRows() {
	paramNext := uint32(1)
	for _, t := range b.root.module.types {
		for _, f := range t.fields {
			b.add(base.TableField, f,
				raw16(f.Flags), b.str(f.Name), raw(0))
		}
		for _, mm := range t.methods {
			b.add(base.TableMethodDef, mm,
				raw(mm.RVA), raw16(mm.ImplFlags), raw16(mm.Flags),
				b.str(mm.Name), raw(0), raw(paramNext))
			paramNext += uint32(len(mm.params))
			for _, p := range mm.params {
				b.add(base.TableParam, p,
					raw16(p.Flags), raw16(p.Sequence), b.str(p.Name))
			}
		}
	}
}

func (b *builder) patchExtends() error {
	for _, t := range b.root.module.types {
		if t.Extends == nil {
			continue
		}
		if err := b.ensureType(t.Extends); err != nil {
			return err
		}
		t.row.SetRef(tables.TypeDefExtends, refHandle(t.Extends))
	}
	return nil
}

func (b *builder) buildAttachments() error {
	eventNext, propNext := uint32(1), uint32(1)
	for _, t := range b.root.module.types {
		if t.enclosing != nil {
			b.addAnon(base.TableNestedClass, ref(t), ref(t.enclosing))
		}
		if t.layout != nil {
			b.addAnon(base.TableClassLayout,
				raw16(t.layout.packingSize), raw(t.layout.classSize), ref(t))
		}
		for _, ii := range t.interfaces {
			if err := b.ensureType(ii.Interface); err != nil {
				return err
			}
			b.add(base.TableInterfaceImpl, ii, ref(t), ref(ii.Interface))
		}
		for _, mi := range t.overrides {
			if err := b.ensureMember(mi.Body); err != nil {
				return err
			}
			if err := b.ensureMember(mi.Declaration); err != nil {
				return err
			}
			b.add(base.TableMethodImpl, mi,
				ref(t), ref(mi.Body), ref(mi.Declaration))
		}
		if err := b.buildSecurity(t.security); err != nil {
			return err
		}
		for _, f := range t.fields {
			if err := b.buildFieldAttachments(f); err != nil {
				return err
			}
		}
		for _, mm := range t.methods {
			if err := b.buildMethodAttachments(mm); err != nil {
				return err
			}
		}
		if len(t.events) > 0 {
			b.addAnon(base.TableEventMap, ref(t), raw(eventNext))
			eventNext += uint32(len(t.events))
			for _, e := range t.events {
				if err := b.ensureType(e.Type); err != nil {
					return err
				}
				b.add(base.TableEvent, e,
					raw16(e.Flags), b.str(e.Name), ref(e.Type))
			}
		}
		if len(t.properties) > 0 {
			b.addAnon(base.TablePropertyMap, ref(t), raw(propNext))
			propNext += uint32(len(t.properties))
			for _, p := range t.properties {
				b.add(base.TableProperty, p,
					raw16(p.Flags), b.str(p.Name), raw(0))
			}
		}
		for _, e := range t.events {
			for _, s := range e.semantics {
				b.add(base.TableMethodSemantics, s,
					raw16(s.Semantics), ref(s.Method), ref(e))
			}
		}
		for _, p := range t.properties {
			if p.constant != nil {
				if err := b.buildConstant(p.constant); err != nil {
					return err
				}
			}
			for _, s := range p.semantics {
				b.add(base.TableMethodSemantics, s,
					raw16(s.Semantics), ref(s.Method), ref(p))
			}
		}
		if err := b.buildGenericParams(t.genericParams); err != nil {
			return err
		}
		for _, mm := range t.methods {
			if err := b.buildGenericParams(mm.genericParams); err != nil {
				return err
			}
		}
	}
	if a := b.root.assembly; a != nil {
		if err := b.buildSecurity(a.security); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildFieldAttachments(f *Field) error {
	if f.offset != nil {
		b.addAnon(base.TableFieldLayout, raw(*f.offset), ref(f))
	}
	if f.rva != nil {
		b.addAnon(base.TableFieldRVA, raw(*f.rva), ref(f))
	}
	if f.marshal != nil {
		if err := b.buildMarshal(f, f.marshal); err != nil {
			return err
		}
	}
	if f.constant != nil {
		return b.buildConstant(f.constant)
	}
	return nil
}

func (b *builder) buildMethodAttachments(m *Method) error {
	if pm := m.pinvoke; pm != nil {
		if err := b.ensureModuleRef(pm.Scope); err != nil {
			return err
		}
		b.add(base.TableImplMap, pm,
			raw16(pm.MappingFlags), ref(m), b.str(pm.ImportName), ref(pm.Scope))
	}
	if err := b.buildSecurity(m.security); err != nil {
		return err
	}
	for _, p := range m.params {
		if p.marshal != nil {
			if err := b.buildMarshal(p, p.marshal); err != nil {
				return err
			}
		}
		if p.constant != nil {
			if err := b.buildConstant(p.constant); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) buildMarshal(parent rowStater, m *sig.MarshalSpec) error {
	enc, err := sig.EncodeMarshal(m)
	if err != nil {
		return err
	}
	v, err := b.blob(enc)
	if err != nil {
		return err
	}
	b.addAnon(base.TableFieldMarshal, ref(parent), v)
	return nil
}

func (b *builder) buildConstant(c *Constant) error {
	v, err := b.blob(c.Value)
	if err != nil {
		return err
	}
	b.add(base.TableConstant, c,
		raw(uint32(c.Kind)), raw(0), ref(c.parent), v)
	return nil
}

func (b *builder) buildSecurity(sets []*DeclSecurity) error {
	for _, ds := range sets {
		v, err := b.blob(ds.PermissionSet)
		if err != nil {
			return err
		}
		b.add(base.TableDeclSecurity, ds,
			raw16(ds.Action), ref(ds.parent), v)
	}
	return nil
}

func (b *builder) buildGenericParams(params []*GenericParam) error {
	for _, gp := range params {
		b.add(base.TableGenericParam, gp,
			raw16(gp.Number), raw16(gp.Flags), ref(gp.owner), b.str(gp.Name))
		for _, gc := range gp.constraints {
			if err := b.ensureType(gc.Constraint); err != nil {
				return err
			}
			b.add(base.TableGenericParamConstraint, gc,
				ref(gp), ref(gc.Constraint))
		}
	}
	return nil
}

// buildRegistries sweeps the external-scope registries so every descriptor
// the client created has a row, referenced from elsewhere or not.
func (b *builder) buildRegistries() error {
	for _, tr := range b.root.typeRefs {
		if err := b.ensureTypeRef(tr); err != nil {
			return err
		}
	}
	for _, mr := range b.root.moduleRefs {
		if err := b.ensureModuleRef(mr); err != nil {
			return err
		}
	}
	for _, ar := range b.root.assemblyRefs {
		if err := b.ensureAssemblyRef(ar); err != nil {
			return err
		}
	}
	for _, ts := range b.root.typeSpecs {
		if err := b.ensureTypeSpec(ts); err != nil {
			return err
		}
	}
	for _, mr := range b.root.memberRefs {
		if err := b.ensureMemberRef(mr); err != nil {
			return err
		}
	}
	for _, ms := range b.root.methodSpecs {
		if err := b.ensureMethodSpec(ms); err != nil {
			return err
		}
	}
	for _, ss := range b.root.standAloneSigs {
		if ss.done {
			continue
		}
		b.walkStandAloneSig(ss)
		if b.err != nil {
			return b.err
		}
		b.add(base.TableStandAloneSig, ss, raw(0))
	}
	for _, p := range b.root.asmRefProcessors {
		if err := b.ensureAssemblyRef(p.Ref); err != nil {
			return err
		}
		b.add(base.TableAssemblyRefProcessor, p, raw(p.Processor), ref(p.Ref))
	}
	for _, o := range b.root.asmRefOSes {
		if err := b.ensureAssemblyRef(o.Ref); err != nil {
			return err
		}
		b.add(base.TableAssemblyRefOS, o,
			raw(o.PlatformID), raw(o.MajorVersion), raw(o.MinorVersion),
			ref(o.Ref))
	}
	for _, f := range b.root.files {
		if err := b.ensureFile(f); err != nil {
			return err
		}
	}
	for _, et := range b.root.exportedTypes {
		if err := b.ensureExportedType(et); err != nil {
			return err
		}
	}
	for _, res := range b.root.resources {
		if err := b.ensureImpl(res.Impl); err != nil {
			return err
		}
		b.add(base.TableManifestResource, res,
			raw(res.Offset), raw(res.Flags), b.str(res.Name), ref(res.Impl))
	}
	return nil
}

// sweepSignatureReferents walks every signature expression owned by the
// module's members and pulls signature-only referents into the table graph
// before row numbers are fixed.
func (b *builder) sweepSignatureReferents() error {
	for _, t := range b.root.module.types {
		for _, f := range t.fields {
			walkFieldSigExpr(f.Sig, b.visitType)
		}
		for _, mm := range t.methods {
			walkMethodSigExpr(mm.Sig, b.visitType)
		}
		for _, p := range t.properties {
			walkPropertySigExpr(p.Sig, b.visitType)
		}
	}
	return b.err
}

func (b *builder) walkStandAloneSig(ss *StandAloneSig) {
	walkLocalVarSigExpr(ss.Locals, b.visitType)
	walkMethodSigExpr(ss.Method, b.visitType)
}

func (b *builder) visitType(d TypeRefOrDef) {
	if b.err == nil {
		b.err = b.ensureType(d)
	}
}

func (b *builder) buildCustomAttributes() error {
	for _, aa := range b.root.customAttrs {
		if err := b.ensureMember(aa.attr.Ctor); err != nil {
			return err
		}
		b.add(base.TableCustomAttribute, aa.attr,
			ref(aa.parent), ref(aa.attr.Ctor), raw(0))
	}
	return nil
}

// Ensure functions give ref-side descriptors their rows on first demand. The
// done flag breaks cycles: a TypeSpec's instantiation can reach back through
// a TypeRef whose scope is still being built.

func (b *builder) ensureType(d TypeRefOrDef) error {
	switch t := d.(type) {
	case *TypeDef:
		if t.handle == nil {
			return base.UnresolvedErrorf(
				"cilmeta: type %s belongs to a different root", t.FullName())
		}
		return nil
	case *TypeRef:
		return b.ensureTypeRef(t)
	case *TypeSpec:
		return b.ensureTypeSpec(t)
	default:
		return base.UnresolvedErrorf("cilmeta: unknown type referent")
	}
}

func (b *builder) ensureScope(s ResolutionScope) error {
	switch sc := s.(type) {
	case nil:
		return nil
	case *Module:
		return nil
	case *ModuleRef:
		return b.ensureModuleRef(sc)
	case *AssemblyRef:
		return b.ensureAssemblyRef(sc)
	case *TypeRef:
		return b.ensureTypeRef(sc)
	default:
		return base.UnresolvedErrorf("cilmeta: unknown resolution scope")
	}
}

func (b *builder) ensureTypeRef(tr *TypeRef) error {
	if tr.done {
		return nil
	}
	tr.done = true
	if err := b.ensureScope(tr.Scope); err != nil {
		return err
	}
	r := tables.Row{ref(tr.Scope), b.str(tr.Name), b.str(tr.Namespace)}
	tr.handle = b.root.store.Add(base.TableTypeRef, r)
	tr.row = r
	return nil
}

func (b *builder) ensureModuleRef(mr *ModuleRef) error {
	if mr == nil || mr.done {
		return nil
	}
	b.add(base.TableModuleRef, mr, b.str(mr.Name))
	return nil
}

func (b *builder) ensureAssemblyRef(ar *AssemblyRef) error {
	if ar.done {
		return nil
	}
	pk, err := b.blob(ar.PublicKeyOrToken)
	if err != nil {
		return err
	}
	hash, err := b.blob(ar.Hash)
	if err != nil {
		return err
	}
	b.add(base.TableAssemblyRef, ar,
		raw16(ar.Version[0]), raw16(ar.Version[1]),
		raw16(ar.Version[2]), raw16(ar.Version[3]),
		raw(ar.Flags), pk, b.str(ar.Name), b.str(ar.Culture), hash)
	return nil
}

func (b *builder) ensureTypeSpec(ts *TypeSpec) error {
	if ts.done {
		return nil
	}
	ts.done = true
	walkTypeExpr(ts.Sig, b.visitType)
	if b.err != nil {
		return b.err
	}
	r := tables.Row{raw(0)}
	ts.handle = b.root.store.Add(base.TableTypeSpec, r)
	ts.row = r
	return nil
}

func (b *builder) ensureMember(m MethodRefOrDef) error {
	switch mm := m.(type) {
	case *Method:
		if mm.handle == nil {
			return base.UnresolvedErrorf(
				"cilmeta: method %s belongs to a different root", mm.Name)
		}
		return nil
	case *MemberRef:
		return b.ensureMemberRef(mm)
	default:
		return base.UnresolvedErrorf("cilmeta: unknown method referent")
	}
}

func (b *builder) ensureMemberRefParent(p MemberRefParent) error {
	switch pp := p.(type) {
	case *TypeDef:
		return b.ensureType(pp)
	case *TypeRef:
		return b.ensureTypeRef(pp)
	case *ModuleRef:
		return b.ensureModuleRef(pp)
	case *Method:
		return b.ensureMember(pp)
	case *TypeSpec:
		return b.ensureTypeSpec(pp)
	default:
		return base.UnresolvedErrorf("cilmeta: unknown member ref parent")
	}
}

func (b *builder) ensureMemberRef(mr *MemberRef) error {
	if mr.done {
		return nil
	}
	mr.done = true
	if err := b.ensureMemberRefParent(mr.Parent); err != nil {
		return err
	}
	walkMethodSigExpr(mr.MethodSig, b.visitType)
	walkFieldSigExpr(mr.FieldSig, b.visitType)
	if b.err != nil {
		return b.err
	}
	r := tables.Row{ref(mr.Parent), b.str(mr.Name), raw(0)}
	mr.handle = b.root.store.Add(base.TableMemberRef, r)
	mr.row = r
	return nil
}

func (b *builder) ensureMethodSpec(ms *MethodSpec) error {
	if ms.done {
		return nil
	}
	ms.done = true
	if err := b.ensureMember(ms.Method); err != nil {
		return err
	}
	for i := range ms.Args {
		walkTypeExpr(&ms.Args[i], b.visitType)
	}
	if b.err != nil {
		return b.err
	}
	r := tables.Row{ref(ms.Method), raw(0)}
	ms.handle = b.root.store.Add(base.TableMethodSpec, r)
	ms.row = r
	return nil
}

func (b *builder) ensureImpl(i Implementation) error {
	switch impl := i.(type) {
	case nil:
		return nil
	case *File:
		return b.ensureFile(impl)
	case *AssemblyRef:
		return b.ensureAssemblyRef(impl)
	case *ExportedType:
		return b.ensureExportedType(impl)
	default:
		return base.UnresolvedErrorf("cilmeta: unknown implementation referent")
	}
}

func (b *builder) ensureFile(f *File) error {
	if f.done {
		return nil
	}
	hash, err := b.blob(f.Hash)
	if err != nil {
		return err
	}
	b.add(base.TableFile, f, raw(f.Flags), b.str(f.Name), hash)
	return nil
}

func (b *builder) ensureExportedType(et *ExportedType) error {
	if et.done {
		return nil
	}
	et.done = true
	if err := b.ensureImpl(et.Impl); err != nil {
		return err
	}
	r := tables.Row{
		raw(et.Flags), raw(et.TypeDefID),
		b.str(et.Name), b.str(et.Namespace), ref(et.Impl),
	}
	et.handle = b.root.store.Add(base.TableExportedType, r)
	et.row = r
	return nil
}

// buildSignatures runs after SortAndStamp: tokens are final, so class
// positions inside signatures can be encoded. Each encoded blob is appended
// to #Blob and the owning row's blob column patched in place.
func (b *builder) buildSignatures() error {
	for _, t := range b.root.module.types {
		for _, f := range t.fields {
			if f.Sig == nil {
				return base.InvalidStateErrorf(
					"cilmeta: field %s.%s has no signature", t.FullName(), f.Name)
			}
			fs, err := resolveFieldSig(f.Sig)
			if err != nil {
				return err
			}
			enc, err := sig.EncodeField(fs)
			if err != nil {
				return err
			}
			if err := b.patchBlob(&f.blobRef, f.row, tables.FieldSignature, enc); err != nil {
				return err
			}
		}
		for _, mm := range t.methods {
			if mm.Sig == nil {
				return base.InvalidStateErrorf(
					"cilmeta: method %s.%s has no signature", t.FullName(), mm.Name)
			}
			msig, err := resolveMethodSig(mm.Sig)
			if err != nil {
				return err
			}
			enc, err := sig.EncodeMethod(msig)
			if err != nil {
				return err
			}
			if err := b.patchBlob(&mm.blobRef, mm.row, tables.MethodDefSignature, enc); err != nil {
				return err
			}
		}
		for _, p := range t.properties {
			if p.Sig == nil {
				return base.InvalidStateErrorf(
					"cilmeta: property %s.%s has no signature", t.FullName(), p.Name)
			}
			ps, err := resolvePropertySig(p.Sig)
			if err != nil {
				return err
			}
			enc, err := sig.EncodeProperty(ps)
			if err != nil {
				return err
			}
			if err := b.patchBlob(&p.blobRef, p.row, tables.PropertySignature, enc); err != nil {
				return err
			}
		}
	}
	for _, ts := range b.root.typeSpecs {
		t, err := resolveType(ts.Sig)
		if err != nil {
			return err
		}
		enc, err := sig.EncodeTypeSpec(&sig.TypeSpecSig{Type: t})
		if err != nil {
			return err
		}
		if err := b.patchBlob(&ts.blobRef, ts.row, tables.TypeSpecSignature, enc); err != nil {
			return err
		}
	}
	for _, mr := range b.root.memberRefs {
		enc, err := b.encodeMemberRefSig(mr)
		if err != nil {
			return err
		}
		if err := b.patchBlob(&mr.blobRef, mr.row, tables.MemberRefSignature, enc); err != nil {
			return err
		}
	}
	for _, ms := range b.root.methodSpecs {
		args := make([]sig.Type, len(ms.Args))
		for i := range ms.Args {
			var err error
			if args[i], err = resolveType(&ms.Args[i]); err != nil {
				return err
			}
		}
		enc, err := sig.EncodeMethodSpec(&sig.MethodSpecSig{Args: args})
		if err != nil {
			return err
		}
		if err := b.patchBlob(&ms.blobRef, ms.row, tables.MethodSpecInstantiation, enc); err != nil {
			return err
		}
	}
	for _, ss := range b.root.standAloneSigs {
		enc, err := b.encodeStandAloneSig(ss)
		if err != nil {
			return err
		}
		if err := b.patchBlob(&ss.blobRef, ss.row, tables.StandAloneSigSignature, enc); err != nil {
			return err
		}
	}
	for _, aa := range b.root.customAttrs {
		enc, err := b.encodeCustomAttr(aa.attr)
		if err != nil {
			return err
		}
		if err := b.patchBlob(&aa.attr.blobRef, aa.attr.row, tables.CustomAttributeValue, enc); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) encodeMemberRefSig(mr *MemberRef) ([]byte, error) {
	switch {
	case mr.MethodSig != nil:
		ms, err := resolveMethodSig(mr.MethodSig)
		if err != nil {
			return nil, err
		}
		return sig.EncodeMethod(ms)
	case mr.FieldSig != nil:
		fs, err := resolveFieldSig(mr.FieldSig)
		if err != nil {
			return nil, err
		}
		return sig.EncodeField(fs)
	default:
		return nil, base.InvalidStateErrorf(
			"cilmeta: member ref %q has no signature", mr.Name)
	}
}

func (b *builder) encodeStandAloneSig(ss *StandAloneSig) ([]byte, error) {
	switch {
	case ss.Locals != nil:
		ls, err := resolveLocalVarSig(ss.Locals)
		if err != nil {
			return nil, err
		}
		return sig.EncodeLocals(ls)
	case ss.Method != nil:
		ms, err := resolveMethodSig(ss.Method)
		if err != nil {
			return nil, err
		}
		return sig.EncodeMethod(ms)
	default:
		return nil, base.InvalidStateErrorf(
			"cilmeta: standalone signature row has no signature")
	}
}

func (b *builder) encodeCustomAttr(ca *CustomAttribute) ([]byte, error) {
	if ca.Raw != nil {
		return ca.Raw, nil
	}
	return sig.EncodeCustomAttr(ca.Value)
}

func (b *builder) patchBlob(
	br *blobRef, r tables.Row, col int, enc []byte,
) error {
	off, err := b.root.heaps.Blob.Append(enc)
	if err != nil {
		return err
	}
	r.SetRaw(col, off)
	br.set(b.root.heaps.Blob, off)
	return nil
}
