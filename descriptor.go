// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"github.com/cockroachdb/cilmeta/heaps"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/sig"
	"github.com/cockroachdb/cilmeta/tables"
)

// rowState is the build state every row-backed descriptor carries: its
// handle and row in the table store, and the one-shot done flag that breaks
// cycles during the row-building walk.
type rowState struct {
	handle *tables.Handle
	row    tables.Row
	done   bool
}

// rowStater is implemented by every row-backed descriptor.
type rowStater interface {
	state() *rowState
}

func (s *rowState) state() *rowState { return s }

// Token returns the descriptor's metadata token. Tokens are stable after
// Finalize; before it the token is zero or tentative.
func (s *rowState) Token() Token {
	if s.handle == nil {
		return 0
	}
	return s.handle.Token()
}

// attrHolder carries a descriptor's custom attributes.
type attrHolder struct {
	attrs []*CustomAttribute
}

// CustomAttributes returns the attached attributes in attachment order.
func (h *attrHolder) CustomAttributes() []*CustomAttribute { return h.attrs }

func (h *attrHolder) holder() *attrHolder { return h }

// ResolutionScope is a scope a TypeRef resolves against: the current module,
// a module reference, an assembly reference, or an enclosing TypeRef for
// nested types.
type ResolutionScope interface {
	rowStater
	isResolutionScope()
}

func (*Module) isResolutionScope()      {}
func (*ModuleRef) isResolutionScope()   {}
func (*AssemblyRef) isResolutionScope() {}
func (*TypeRef) isResolutionScope()     {}

// TypeRefOrDef is a class usable in a type position: a TypeDef, TypeRef or
// TypeSpec.
type TypeRefOrDef interface {
	rowStater
	isTypeRefOrDef()
}

func (*TypeDef) isTypeRefOrDef()  {}
func (*TypeRef) isTypeRefOrDef()  {}
func (*TypeSpec) isTypeRefOrDef() {}

// MethodRefOrDef is a method usable where the format accepts MethodDefOrRef:
// a method definition or a member reference.
type MethodRefOrDef interface {
	rowStater
	isMethodRefOrDef()
}

func (*Method) isMethodRefOrDef()    {}
func (*MemberRef) isMethodRefOrDef() {}

// MemberRefParent is a parent a MemberRef hangs off.
type MemberRefParent interface {
	rowStater
	isMemberRefParent()
}

func (*TypeDef) isMemberRefParent()   {}
func (*TypeRef) isMemberRefParent()   {}
func (*ModuleRef) isMemberRefParent() {}
func (*Method) isMemberRefParent()    {}
func (*TypeSpec) isMemberRefParent()  {}

// Implementation locates an exported type or resource: a file of the
// assembly, another assembly, or another exported type.
type Implementation interface {
	rowStater
	isImplementation()
}

func (*File) isImplementation()         {}
func (*AssemblyRef) isImplementation()  {}
func (*ExportedType) isImplementation() {}

// refHandle returns the handle of a possibly-nil descriptor.
func refHandle(d rowStater) *tables.Handle {
	if d == nil {
		return nil
	}
	return d.state().handle
}

// TypeRef references a type in another scope. TypeRefs are interned by
// (scope, namespace, name): one referent, one identity per Root.
type TypeRef struct {
	rowState
	attrHolder
	Scope     ResolutionScope
	Namespace string
	Name      string
}

// TypeRef interns a reference to the named type in scope.
func (r *Root) TypeRef(scope ResolutionScope, namespace, name string) *TypeRef {
	r.mustBuild("add type reference")
	key := typeRefKey{scope: scope, namespace: namespace, name: name}
	if tr, ok := r.typeRefIntern[key]; ok {
		return tr
	}
	tr := &TypeRef{Scope: scope, Namespace: namespace, Name: name}
	r.typeRefIntern[key] = tr
	r.typeRefs = append(r.typeRefs, tr)
	return tr
}

// TypeRefs returns every type reference of the root.
func (r *Root) TypeRefs() []*TypeRef { return r.typeRefs }

// ModuleRef references another module by name, interned.
type ModuleRef struct {
	rowState
	attrHolder
	Name string
}

// ModuleRef interns a reference to the named module.
func (r *Root) ModuleRef(name string) *ModuleRef {
	r.mustBuild("add module reference")
	if mr, ok := r.moduleRefIntern[name]; ok {
		return mr
	}
	mr := &ModuleRef{Name: name}
	r.moduleRefIntern[name] = mr
	r.moduleRefs = append(r.moduleRefs, mr)
	return mr
}

// ModuleRefs returns every module reference of the root.
func (r *Root) ModuleRefs() []*ModuleRef { return r.moduleRefs }

// AssemblyRef references another assembly. Interned by name: the common case
// of one mscorlib referent per build resolves to a single row.
type AssemblyRef struct {
	rowState
	attrHolder
	Name             string
	Culture          string
	Version          [4]uint16
	Flags            uint32
	PublicKeyOrToken []byte
	Hash             []byte
}

// AssemblyRef interns a reference to the named assembly. The first call for
// a name fixes its version and key material.
func (r *Root) AssemblyRef(
	name string, version [4]uint16, publicKeyOrToken []byte,
) *AssemblyRef {
	r.mustBuild("add assembly reference")
	if ar, ok := r.assemblyRefIntern[name]; ok {
		return ar
	}
	ar := &AssemblyRef{
		Name: name, Version: version, PublicKeyOrToken: publicKeyOrToken,
	}
	r.assemblyRefIntern[name] = ar
	r.assemblyRefs = append(r.assemblyRefs, ar)
	return ar
}

// AssemblyRefs returns every assembly reference of the root.
func (r *Root) AssemblyRefs() []*AssemblyRef { return r.assemblyRefs }

// TypeSpec is a constructed type (instantiation, array, pointer, generic
// parameter) referenced through a signature blob.
type TypeSpec struct {
	rowState
	attrHolder
	// Sig is the constructed type, set on the build path.
	Sig *TypeExpr

	blobRef
	decoded *sig.TypeSpecSig
}

// NewTypeSpec adds a constructed type.
func (r *Root) NewTypeSpec(t TypeExpr) *TypeSpec {
	r.mustBuild("add type spec")
	ts := &TypeSpec{Sig: &t}
	r.typeSpecs = append(r.typeSpecs, ts)
	return ts
}

// TypeSpecs returns every type spec of the root.
func (r *Root) TypeSpecs() []*TypeSpec { return r.typeSpecs }

// Signature decodes the constructed type's blob. On a read Root decoding is
// deferred to the first call and cached.
func (ts *TypeSpec) Signature() (*sig.TypeSpecSig, error) {
	if ts.decoded != nil {
		return ts.decoded, nil
	}
	blob, err := ts.lookup()
	if err != nil {
		return nil, err
	}
	ts.decoded, err = sig.DecodeTypeSpec(blob)
	return ts.decoded, err
}

// MemberRef references a field or method of another type or module.
type MemberRef struct {
	rowState
	attrHolder
	Parent MemberRefParent
	Name   string
	// Exactly one of MethodSig and FieldSig is set on the build path.
	MethodSig *MethodSigExpr
	FieldSig  *FieldSigExpr

	blobRef
	decodedMethod *sig.MethodSig
	decodedField  *sig.FieldSig
}

// NewMethodRef adds a reference to a method of parent.
func (r *Root) NewMethodRef(
	parent MemberRefParent, name string, s *MethodSigExpr,
) *MemberRef {
	r.mustBuild("add member reference")
	mr := &MemberRef{Parent: parent, Name: name, MethodSig: s}
	r.memberRefs = append(r.memberRefs, mr)
	return mr
}

// NewFieldRef adds a reference to a field of parent.
func (r *Root) NewFieldRef(
	parent MemberRefParent, name string, s *FieldSigExpr,
) *MemberRef {
	r.mustBuild("add member reference")
	mr := &MemberRef{Parent: parent, Name: name, FieldSig: s}
	r.memberRefs = append(r.memberRefs, mr)
	return mr
}

// MemberRefs returns every member reference of the root.
func (r *Root) MemberRefs() []*MemberRef { return r.memberRefs }

// MethodSignature decodes the referenced method's signature blob.
func (mr *MemberRef) MethodSignature() (*sig.MethodSig, error) {
	if mr.decodedMethod != nil {
		return mr.decodedMethod, nil
	}
	blob, err := mr.lookup()
	if err != nil {
		return nil, err
	}
	mr.decodedMethod, err = sig.DecodeMethod(blob)
	return mr.decodedMethod, err
}

// FieldSignature decodes the referenced field's signature blob.
func (mr *MemberRef) FieldSignature() (*sig.FieldSig, error) {
	if mr.decodedField != nil {
		return mr.decodedField, nil
	}
	blob, err := mr.lookup()
	if err != nil {
		return nil, err
	}
	mr.decodedField, err = sig.DecodeField(blob)
	return mr.decodedField, err
}

// MethodSpec instantiates a generic method.
type MethodSpec struct {
	rowState
	attrHolder
	Method MethodRefOrDef
	Args   []TypeExpr

	blobRef
	decoded *sig.MethodSpecSig
}

// NewMethodSpec adds an instantiation of a generic method.
func (r *Root) NewMethodSpec(m MethodRefOrDef, args ...TypeExpr) *MethodSpec {
	r.mustBuild("add method spec")
	ms := &MethodSpec{Method: m, Args: args}
	r.methodSpecs = append(r.methodSpecs, ms)
	return ms
}

// MethodSpecs returns every method spec of the root.
func (r *Root) MethodSpecs() []*MethodSpec { return r.methodSpecs }

// Instantiation decodes the method instantiation blob.
func (ms *MethodSpec) Instantiation() (*sig.MethodSpecSig, error) {
	if ms.decoded != nil {
		return ms.decoded, nil
	}
	blob, err := ms.lookup()
	if err != nil {
		return nil, err
	}
	ms.decoded, err = sig.DecodeMethodSpec(blob)
	return ms.decoded, err
}

// StandAloneSig is a free-standing signature row: a method body's locals, or
// an indirect-call signature.
type StandAloneSig struct {
	rowState
	attrHolder
	// Exactly one of Locals and Method is set on the build path.
	Locals *LocalVarSigExpr
	Method *MethodSigExpr

	blobRef
	decodedLocals *sig.LocalVarSig
}

// NewLocalsSig adds a local-variable signature row.
func (r *Root) NewLocalsSig(locals *LocalVarSigExpr) *StandAloneSig {
	r.mustBuild("add standalone signature")
	ss := &StandAloneSig{Locals: locals}
	r.standAloneSigs = append(r.standAloneSigs, ss)
	return ss
}

// NewIndirectCallSig adds a call-site signature row for calli.
func (r *Root) NewIndirectCallSig(m *MethodSigExpr) *StandAloneSig {
	r.mustBuild("add standalone signature")
	ss := &StandAloneSig{Method: m}
	r.standAloneSigs = append(r.standAloneSigs, ss)
	return ss
}

// StandAloneSigs returns every standalone signature of the root.
func (r *Root) StandAloneSigs() []*StandAloneSig { return r.standAloneSigs }

// LocalsSignature decodes the row's blob as a local-variable signature.
func (ss *StandAloneSig) LocalsSignature() (*sig.LocalVarSig, error) {
	if ss.decodedLocals != nil {
		return ss.decodedLocals, nil
	}
	blob, err := ss.lookup()
	if err != nil {
		return nil, err
	}
	ss.decodedLocals, err = sig.DecodeLocals(blob)
	return ss.decodedLocals, err
}

// blobRef defers a blob to its heap offset: the descriptor remembers which
// heap it came from and decodes on first access.
type blobRef struct {
	heap *heaps.Blob
	off  uint32
}

func (b *blobRef) lookup() ([]byte, error) {
	if b.heap == nil {
		return nil, base.CorruptBlobErrorf("cilmeta: descriptor has no blob")
	}
	return b.heap.Lookup(b.off)
}

func (b *blobRef) set(heap *heaps.Blob, off uint32) {
	b.heap, b.off = heap, off
}

// BlobOffset returns the descriptor's raw #Blob offset, for collaborators
// that address blobs directly. Valid after Finalize or on a read Root.
func (b *blobRef) BlobOffset() uint32 { return b.off }
