// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

import "github.com/cockroachdb/cilmeta/sig"

// Method-semantics roles, the Semantics column of a MethodSemantics row.
const (
	SemSetter   uint16 = 0x0001
	SemGetter   uint16 = 0x0002
	SemOther    uint16 = 0x0004
	SemAddOn    uint16 = 0x0008
	SemRemoveOn uint16 = 0x0010
	SemFire     uint16 = 0x0020
)

// Event is an event declared on a type.
type Event struct {
	rowState
	attrHolder
	Flags uint16
	Name  string
	// Type is the delegate type of the event.
	Type TypeRefOrDef

	parent    *TypeDef
	semantics []*MethodSemantic
}

// NewEvent declares an event on t. Declaring the same event name twice is a
// DescriptorConflict.
func (t *TypeDef) NewEvent(
	name string, flags uint16, eventType TypeRefOrDef,
) (*Event, error) {
	t.module.root.mustBuild("add event")
	if err := t.internMember("event", name); err != nil {
		return nil, err
	}
	e := &Event{Flags: flags, Name: name, Type: eventType, parent: t}
	t.events = append(t.events, e)
	return e, nil
}

// Parent returns the declaring type.
func (e *Event) Parent() *TypeDef { return e.parent }

// Semantics returns the event's accessor associations.
func (e *Event) Semantics() []*MethodSemantic { return e.semantics }

// AddSemantic associates an accessor method with the event. Role is one of
// the Sem constants, typically SemAddOn, SemRemoveOn or SemFire.
func (e *Event) AddSemantic(role uint16, m *Method) *MethodSemantic {
	e.parent.module.root.mustBuild("add method semantic")
	s := &MethodSemantic{Semantics: role, Method: m, assoc: e}
	e.semantics = append(e.semantics, s)
	return s
}

// Property is a property declared on a type.
type Property struct {
	rowState
	attrHolder
	Flags uint16
	Name  string
	// Sig is the property's signature, set on the build path.
	Sig *PropertySigExpr

	parent    *TypeDef
	constant  *Constant
	semantics []*MethodSemantic

	blobRef
	decoded *sig.PropertySig
}

// NewProperty declares a property on t. Declaring the same property name
// twice is a DescriptorConflict.
func (t *TypeDef) NewProperty(
	name string, flags uint16, s *PropertySigExpr,
) (*Property, error) {
	t.module.root.mustBuild("add property")
	if err := t.internMember("property", name); err != nil {
		return nil, err
	}
	p := &Property{Flags: flags, Name: name, Sig: s, parent: t}
	t.properties = append(t.properties, p)
	return p, nil
}

// Parent returns the declaring type.
func (p *Property) Parent() *TypeDef { return p.parent }

// Semantics returns the property's accessor associations.
func (p *Property) Semantics() []*MethodSemantic { return p.semantics }

// AddSemantic associates an accessor method with the property. Role is one
// of the Sem constants, typically SemGetter or SemSetter.
func (p *Property) AddSemantic(role uint16, m *Method) *MethodSemantic {
	p.parent.module.root.mustBuild("add method semantic")
	s := &MethodSemantic{Semantics: role, Method: m, assoc: p}
	p.semantics = append(p.semantics, s)
	return s
}

// SetConstant attaches a compile-time default value.
func (p *Property) SetConstant(c Constant) {
	p.parent.module.root.mustBuild("set constant")
	c.parent = p
	p.constant = &c
}

// Constant returns the attached default value, or nil.
func (p *Property) Constant() *Constant { return p.constant }

// Signature decodes the property's signature blob. On a read Root decoding
// is deferred to the first call and cached.
func (p *Property) Signature() (*sig.PropertySig, error) {
	if p.decoded != nil {
		return p.decoded, nil
	}
	blob, err := p.lookup()
	if err != nil {
		return nil, err
	}
	p.decoded, err = sig.DecodeProperty(blob)
	return p.decoded, err
}

// MethodSemantic associates an accessor method with an event or property.
type MethodSemantic struct {
	rowState
	Semantics uint16
	Method    *Method

	// assoc is the owning event or property.
	assoc rowStater
}
