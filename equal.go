// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import (
	"bytes"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
)

// Equivalent reports whether two roots describe the same metadata. It
// compares the logical content (assembly manifest, type graph, members,
// signatures) rather than physical layout, so a root read back from its own
// serialized image compares equivalent to the original. The returned error
// names the first divergence found.
func Equivalent(a, b *Root) error {
	if err := equivAssembly(a.assembly, b.assembly); err != nil {
		return err
	}
	switch {
	case a.module == nil && b.module == nil:
		return nil
	case a.module == nil || b.module == nil:
		return errors.Errorf("cilmeta: module present in one root only")
	}
	return equivModule(a.module, b.module)
}

func equivAssembly(a, b *Assembly) error {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil || b == nil:
		return errors.Errorf("cilmeta: assembly present in one root only")
	}
	if a.Name != b.Name || a.Culture != b.Culture {
		return errors.Errorf("cilmeta: assembly %q/%q vs %q/%q",
			a.Name, a.Culture, b.Name, b.Culture)
	}
	if a.Version != b.Version || a.Flags != b.Flags || a.HashAlgID != b.HashAlgID {
		return errors.Errorf("cilmeta: assembly %q manifest fields differ", a.Name)
	}
	if !bytes.Equal(a.PublicKey, b.PublicKey) {
		return errors.Errorf("cilmeta: assembly %q public key differs", a.Name)
	}
	return nil
}

func equivModule(a, b *Module) error {
	if a.Name != b.Name {
		return errors.Errorf("cilmeta: module %q vs %q", a.Name, b.Name)
	}
	if a.Mvid != b.Mvid {
		return errors.Errorf("cilmeta: module %q mvid differs", a.Name)
	}
	if len(a.types) != len(b.types) {
		return errors.Errorf("cilmeta: module %q has %d types vs %d",
			a.Name, len(a.types), len(b.types))
	}
	for i := range a.types {
		if err := equivType(a.types[i], b.types[i]); err != nil {
			return err
		}
	}
	return nil
}

func equivType(a, b *TypeDef) error {
	if a.Namespace != b.Namespace || a.Name != b.Name {
		return errors.Errorf("cilmeta: type %s vs %s", a.FullName(), b.FullName())
	}
	if a.Flags != b.Flags {
		return errors.Errorf("cilmeta: type %s flags %#x vs %#x",
			a.FullName(), a.Flags, b.Flags)
	}
	if err := equivTypeRef(a.Extends, b.Extends); err != nil {
		return errors.Wrapf(err, "cilmeta: type %s extends", a.FullName())
	}
	if len(a.fields) != len(b.fields) {
		return errors.Errorf("cilmeta: type %s has %d fields vs %d",
			a.FullName(), len(a.fields), len(b.fields))
	}
	for i := range a.fields {
		if err := equivField(a.fields[i], b.fields[i]); err != nil {
			return err
		}
	}
	if len(a.methods) != len(b.methods) {
		return errors.Errorf("cilmeta: type %s has %d methods vs %d",
			a.FullName(), len(a.methods), len(b.methods))
	}
	for i := range a.methods {
		if err := equivMethod(a.methods[i], b.methods[i]); err != nil {
			return err
		}
	}
	if len(a.properties) != len(b.properties) {
		return errors.Errorf("cilmeta: type %s has %d properties vs %d",
			a.FullName(), len(a.properties), len(b.properties))
	}
	for i := range a.properties {
		pa, pb := a.properties[i], b.properties[i]
		if pa.Name != pb.Name || pa.Flags != pb.Flags {
			return errors.Errorf("cilmeta: property %s.%s differs",
				a.FullName(), pa.Name)
		}
	}
	if len(a.events) != len(b.events) {
		return errors.Errorf("cilmeta: type %s has %d events vs %d",
			a.FullName(), len(a.events), len(b.events))
	}
	for i := range a.events {
		ea, eb := a.events[i], b.events[i]
		if ea.Name != eb.Name || ea.Flags != eb.Flags {
			return errors.Errorf("cilmeta: event %s.%s differs",
				a.FullName(), ea.Name)
		}
	}
	return nil
}

func equivField(a, b *Field) error {
	if a.Name != b.Name || a.Flags != b.Flags {
		return errors.Errorf("cilmeta: field %s.%s differs",
			a.parent.FullName(), a.Name)
	}
	sa, err := a.Signature()
	if err != nil {
		return err
	}
	sb, err := b.Signature()
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(sa, sb) {
		return errors.Errorf("cilmeta: field %s.%s signature: %s",
			a.parent.FullName(), a.Name, sigDiff(sa, sb))
	}
	return nil
}

func equivMethod(a, b *Method) error {
	if a.Name != b.Name || a.Flags != b.Flags || a.ImplFlags != b.ImplFlags {
		return errors.Errorf("cilmeta: method %s.%s differs",
			a.parent.FullName(), a.Name)
	}
	if len(a.params) != len(b.params) {
		return errors.Errorf("cilmeta: method %s.%s has %d params vs %d",
			a.parent.FullName(), a.Name, len(a.params), len(b.params))
	}
	for i := range a.params {
		pa, pb := a.params[i], b.params[i]
		if pa.Name != pb.Name || pa.Flags != pb.Flags || pa.Sequence != pb.Sequence {
			return errors.Errorf("cilmeta: param %s.%s #%d differs",
				a.parent.FullName(), a.Name, pa.Sequence)
		}
	}
	sa, err := a.Signature()
	if err != nil {
		return err
	}
	sb, err := b.Signature()
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(sa, sb) {
		return errors.Errorf("cilmeta: method %s.%s signature: %s",
			a.parent.FullName(), a.Name, sigDiff(sa, sb))
	}
	return nil
}

// equivTypeRef compares extends edges by the name of the referent, which is
// stable across a write/read cycle while descriptor identity is not.
func equivTypeRef(a, b TypeRefOrDef) error {
	na, nb := typeRefName(a), typeRefName(b)
	if na != nb {
		return errors.Errorf("%q vs %q", na, nb)
	}
	return nil
}

func typeRefName(t TypeRefOrDef) string {
	switch t := t.(type) {
	case nil:
		return ""
	case *TypeDef:
		return t.FullName()
	case *TypeRef:
		return fullName(t.Namespace, t.Name)
	case *TypeSpec:
		return "<typespec>"
	default:
		return "<unknown>"
	}
}

// sigDiff renders the divergence between two decoded signatures. Signature
// structs are acyclic so pretty-printing them is safe.
func sigDiff(a, b any) string {
	diffs := pretty.Diff(a, b)
	if len(diffs) == 0 {
		return "<none>"
	}
	return diffs[0]
}
