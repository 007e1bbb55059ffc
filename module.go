// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

// Module is the module descriptor, row 1 of the Module table. A Root owns
// exactly one.
type Module struct {
	rowState
	attrHolder
	Name       string
	Mvid       [16]byte
	Generation uint16

	// EncID and EncBaseID are the edit-and-continue GUIDs; zero means
	// absent, which is the common case.
	EncID     [16]byte
	EncBaseID [16]byte

	root  *Root
	types []*TypeDef

	typeIntern map[typeDefKey]*TypeDef
}

type typeDefKey struct {
	enclosing *TypeDef
	namespace string
	name      string
}

// NewModule sets the root's module. A Root holds exactly one module; a second
// call is a DescriptorConflict.
func (r *Root) NewModule(name string, mvid [16]byte) (*Module, error) {
	r.mustBuild("add module")
	if r.module != nil {
		return nil, conflictErrorf("cilmeta: root already has module %q",
			r.module.Name)
	}
	m := &Module{
		Name:       name,
		Mvid:       mvid,
		root:       r,
		typeIntern: make(map[typeDefKey]*TypeDef),
	}
	r.module = m
	return m, nil
}

// Types returns the module's type definitions in declaration order. Nested
// types appear after their enclosing type's declaration point.
func (m *Module) Types() []*TypeDef { return m.types }

// FindType returns the declared top-level type, or nil.
func (m *Module) FindType(namespace, name string) *TypeDef {
	return m.typeIntern[typeDefKey{namespace: namespace, name: name}]
}

// NewType declares a top-level type. Declaring the same (namespace, name)
// twice is a DescriptorConflict.
func (m *Module) NewType(namespace, name string, flags uint32) (*TypeDef, error) {
	return m.declareType(nil, namespace, name, flags)
}

func (m *Module) declareType(
	enclosing *TypeDef, namespace, name string, flags uint32,
) (*TypeDef, error) {
	m.root.mustBuild("add type")
	key := typeDefKey{enclosing: enclosing, namespace: namespace, name: name}
	if _, ok := m.typeIntern[key]; ok {
		if enclosing != nil {
			return nil, conflictErrorf(
				"cilmeta: type %q already nested in %s", name, enclosing.FullName())
		}
		return nil, conflictErrorf("cilmeta: type %s already declared",
			fullName(namespace, name))
	}
	t := &TypeDef{
		Flags:     flags,
		Namespace: namespace,
		Name:      name,
		module:    m,
		enclosing: enclosing,
	}
	m.typeIntern[key] = t
	m.types = append(m.types, t)
	if enclosing != nil {
		enclosing.nested = append(enclosing.nested, t)
	}
	return t, nil
}

// TypeDef is a type defined in the module: its flags, base type, members and
// the attachments that hang off a type (layout, interfaces, generic
// parameters, overrides).
type TypeDef struct {
	rowState
	attrHolder
	Flags     uint32
	Namespace string
	Name      string

	// Extends is the base type, nil for interfaces and for the module
	// type.
	Extends TypeRefOrDef

	module    *Module
	enclosing *TypeDef
	nested    []*TypeDef

	fields     []*Field
	methods    []*Method
	interfaces []*InterfaceImpl
	overrides  []*MethodImpl

	layout *classLayout

	events     []*Event
	properties []*Property

	genericParams []*GenericParam
	security      []*DeclSecurity

	memberIntern map[string]struct{}
}

type classLayout struct {
	packingSize uint16
	classSize   uint32
}

// FullName returns the dotted, nesting-qualified name for diagnostics.
func (t *TypeDef) FullName() string {
	if t.enclosing != nil {
		return t.enclosing.FullName() + "+" + t.Name
	}
	return fullName(t.Namespace, t.Name)
}

func fullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// NewNestedType declares a type nested in t. Nested types have no namespace
// of their own; the enclosing type provides the scope.
func (t *TypeDef) NewNestedType(name string, flags uint32) (*TypeDef, error) {
	return t.module.declareType(t, "", name, flags)
}

// Enclosing returns the enclosing type, or nil for top-level types.
func (t *TypeDef) Enclosing() *TypeDef { return t.enclosing }

// NestedTypes returns the types nested in t, in declaration order.
func (t *TypeDef) NestedTypes() []*TypeDef { return t.nested }

// Fields returns the type's fields in declaration order.
func (t *TypeDef) Fields() []*Field { return t.fields }

// Methods returns the type's methods in declaration order.
func (t *TypeDef) Methods() []*Method { return t.methods }

// Interfaces returns the type's interface implementations.
func (t *TypeDef) Interfaces() []*InterfaceImpl { return t.interfaces }

// Overrides returns the type's explicit method overrides.
func (t *TypeDef) Overrides() []*MethodImpl { return t.overrides }

// Events returns the type's events in declaration order.
func (t *TypeDef) Events() []*Event { return t.events }

// Properties returns the type's properties in declaration order.
func (t *TypeDef) Properties() []*Property { return t.properties }

// GenericParams returns the type's generic parameters.
func (t *TypeDef) GenericParams() []*GenericParam { return t.genericParams }

// AddInterface records that t implements iface.
func (t *TypeDef) AddInterface(iface TypeRefOrDef) *InterfaceImpl {
	t.module.root.mustBuild("add interface impl")
	ii := &InterfaceImpl{Class: t, Interface: iface}
	t.interfaces = append(t.interfaces, ii)
	return ii
}

// SetLayout pins the type's explicit layout: packing granularity and total
// size. Zero for either means "runtime default" for that dimension.
func (t *TypeDef) SetLayout(packingSize uint16, classSize uint32) {
	t.module.root.mustBuild("set class layout")
	t.layout = &classLayout{packingSize: packingSize, classSize: classSize}
}

// Layout returns the explicit layout, reporting false when none is pinned.
func (t *TypeDef) Layout() (packingSize uint16, classSize uint32, ok bool) {
	if t.layout == nil {
		return 0, 0, false
	}
	return t.layout.packingSize, t.layout.classSize, true
}

// NewOverride records an explicit override: body implements declaration on
// this type.
func (t *TypeDef) NewOverride(body, declaration MethodRefOrDef) *MethodImpl {
	t.module.root.mustBuild("add method impl")
	mi := &MethodImpl{Class: t, Body: body, Declaration: declaration}
	t.overrides = append(t.overrides, mi)
	return mi
}

func (t *TypeDef) internMember(kind, name string) error {
	if t.memberIntern == nil {
		t.memberIntern = make(map[string]struct{})
	}
	key := kind + "\x00" + name
	if _, ok := t.memberIntern[key]; ok {
		return conflictErrorf("cilmeta: %s %q already declared on %s",
			kind, name, t.FullName())
	}
	t.memberIntern[key] = struct{}{}
	return nil
}

// InterfaceImpl records one interface implemented by a class.
type InterfaceImpl struct {
	rowState
	attrHolder
	Class     *TypeDef
	Interface TypeRefOrDef
}

// MethodImpl records an explicit override: Body provides the implementation
// for Declaration on Class.
type MethodImpl struct {
	rowState
	Class       *TypeDef
	Body        MethodRefOrDef
	Declaration MethodRefOrDef
}
