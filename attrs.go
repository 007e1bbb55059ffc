// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import "github.com/cockroachdb/cilmeta/sig"

// AttributeTarget is any descriptor custom attributes attach to.
type AttributeTarget interface {
	rowStater
	holder() *attrHolder
}

// CustomAttribute attaches an attribute instance to a descriptor. Exactly
// one of Value and Raw carries the argument blob on the build path: Value is
// encoded against the constructor at Finalize, Raw is written verbatim.
type CustomAttribute struct {
	rowState
	Ctor  MethodRefOrDef
	Value *sig.CustomAttrValue
	Raw   []byte

	blobRef
}

// NewCustomAttribute attaches an attribute to parent, with its arguments
// encoded from value.
func (r *Root) NewCustomAttribute(
	parent AttributeTarget, ctor MethodRefOrDef, value sig.CustomAttrValue,
) *CustomAttribute {
	r.mustBuild("add custom attribute")
	ca := &CustomAttribute{Ctor: ctor, Value: &value}
	r.attach(parent, ca)
	return ca
}

// NewRawCustomAttribute attaches an attribute to parent with a pre-encoded
// argument blob.
func (r *Root) NewRawCustomAttribute(
	parent AttributeTarget, ctor MethodRefOrDef, blob []byte,
) *CustomAttribute {
	r.mustBuild("add custom attribute")
	ca := &CustomAttribute{Ctor: ctor, Raw: blob}
	r.attach(parent, ca)
	return ca
}

func (r *Root) attach(parent AttributeTarget, ca *CustomAttribute) {
	parent.holder().attrs = append(parent.holder().attrs, ca)
	r.customAttrs = append(r.customAttrs, attachedAttr{parent: parent, attr: ca})
}

// Arguments decodes the attribute's argument blob. The constructor's fixed
// parameter types drive the decode; pass the element types of the ctor
// signature's parameters in order.
func (ca *CustomAttribute) Arguments(fixed []sig.ElementType) (*sig.CustomAttrValue, error) {
	if ca.Value != nil {
		return ca.Value, nil
	}
	blob, err := ca.lookup()
	if err != nil {
		return nil, err
	}
	return sig.DecodeCustomAttr(blob, fixed)
}

// DeclSecurity attaches a declarative-security permission set to a type,
// method or the assembly.
type DeclSecurity struct {
	rowState
	attrHolder
	Action        uint16
	PermissionSet []byte

	parent rowStater
}

// AddSecurity attaches a permission set to the type.
func (t *TypeDef) AddSecurity(action uint16, permissionSet []byte) *DeclSecurity {
	t.module.root.mustBuild("add decl security")
	ds := &DeclSecurity{Action: action, PermissionSet: permissionSet, parent: t}
	t.security = append(t.security, ds)
	return ds
}

// AddSecurity attaches a permission set to the method.
func (m *Method) AddSecurity(action uint16, permissionSet []byte) *DeclSecurity {
	m.parent.module.root.mustBuild("add decl security")
	ds := &DeclSecurity{Action: action, PermissionSet: permissionSet, parent: m}
	m.security = append(m.security, ds)
	return ds
}

// AddSecurity attaches a permission set to the assembly.
func (a *Assembly) AddSecurity(action uint16, permissionSet []byte) *DeclSecurity {
	a.root.mustBuild("add decl security")
	ds := &DeclSecurity{Action: action, PermissionSet: permissionSet, parent: a}
	a.security = append(a.security, ds)
	return ds
}

// GenericParam declares one generic parameter of a type or method.
type GenericParam struct {
	rowState
	attrHolder
	Number uint16
	Flags  uint16
	Name   string

	owner       rowStater
	constraints []*GenericParamConstraint
	root        *Root
}

// NewGenericParam declares the type's generic parameter at position number.
func (t *TypeDef) NewGenericParam(number uint16, name string, flags uint16) *GenericParam {
	t.module.root.mustBuild("add generic param")
	gp := &GenericParam{
		Number: number, Flags: flags, Name: name,
		owner: t, root: t.module.root,
	}
	t.genericParams = append(t.genericParams, gp)
	return gp
}

// NewGenericParam declares the method's generic parameter at position
// number.
func (m *Method) NewGenericParam(number uint16, name string, flags uint16) *GenericParam {
	m.parent.module.root.mustBuild("add generic param")
	gp := &GenericParam{
		Number: number, Flags: flags, Name: name,
		owner: m, root: m.parent.module.root,
	}
	m.genericParams = append(m.genericParams, gp)
	return gp
}

// Constraints returns the parameter's type constraints.
func (gp *GenericParam) Constraints() []*GenericParamConstraint {
	return gp.constraints
}

// AddConstraint constrains the parameter to derive from or implement c.
func (gp *GenericParam) AddConstraint(c TypeRefOrDef) *GenericParamConstraint {
	gp.root.mustBuild("add generic param constraint")
	gc := &GenericParamConstraint{Owner: gp, Constraint: c}
	gp.constraints = append(gp.constraints, gc)
	return gc
}

// GenericParamConstraint constrains a generic parameter to a type.
type GenericParamConstraint struct {
	rowState
	attrHolder
	Owner      *GenericParam
	Constraint TypeRefOrDef
}
