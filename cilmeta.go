// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package cilmeta reads, constructs and writes ECMA-335 CLI metadata: the #~
// table stream, its four sibling heaps and the metadata root that frames
// them. Client code builds a graph of descriptors (modules, types, members,
// signatures, attributes) under a Root, finalizes it once, and writes a
// byte-exact metadata section; Read parses a section back into the same
// graph.
//
// A Root moves through three states: building (descriptors and heaps
// mutable), finalized (rows sorted, widths planned, tokens stamped) and
// written. Transitions are one-way; mutating descriptors after Finalize is a
// programmer error.
package cilmeta

import (
	"github.com/cockroachdb/cilmeta/heaps"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/tables"
	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the engine, matched with errors.Is.
var (
	ErrCorruptIndex       = base.ErrCorruptIndex
	ErrCorruptBlob        = base.ErrCorruptBlob
	ErrUnsupportedTable   = base.ErrUnsupportedTable
	ErrShortRead          = base.ErrShortRead
	ErrShortWrite         = base.ErrShortWrite
	ErrInvalidState       = base.ErrInvalidState
	ErrDescriptorConflict = base.ErrDescriptorConflict
	ErrSignatureTooLarge  = base.ErrSignatureTooLarge
	ErrUnresolved         = base.ErrUnresolved
)

// Logger is the interface log messages are written to.
type Logger = base.Logger

// Token re-exports the metadata token type.
type Token = base.Token

// Options configures a Root for building or reading.
type Options struct {
	// Logger receives diagnostics from the lenient read path. If nil,
	// logging is disabled.
	Logger Logger

	// Version is the runtime version string of the metadata root. Empty
	// means "v4.0.30319".
	Version string

	// SkipCorrupt makes the reader log and skip corrupt rows and blobs
	// instead of failing, for tool-chain introspection of damaged images.
	SkipCorrupt bool

	// EagerBlobDecode makes the reader decode every signature blob up
	// front instead of on first access. The root still references the
	// input buffer: its heaps alias it, and blob-valued fields such as
	// constant values and public keys are slices of it.
	EagerBlobDecode bool
}

// EnsureDefaults fills unset options with their defaults, returning a copy.
func (o *Options) EnsureDefaults() Options {
	var v Options
	if o != nil {
		v = *o
	}
	if v.Version == "" {
		v.Version = tables.DefaultVersion
	}
	return v
}

type engineState uint8

const (
	stateBuilding engineState = iota
	stateFinalized
	stateWritten
)

// Root is the container owning one metadata section: the module and its
// types, the assembly manifest, the external-reference registries, the four
// heaps and the table store.
type Root struct {
	opts  Options
	state engineState

	heaps  *heaps.Heaps
	store  *tables.Store
	layout *tables.Layout

	module   *Module
	assembly *Assembly

	// External-scope registries. Each referent has one identity per Root;
	// the intern maps enforce it on the build path.
	assemblyRefs   []*AssemblyRef
	moduleRefs     []*ModuleRef
	typeRefs       []*TypeRef
	typeSpecs      []*TypeSpec
	memberRefs     []*MemberRef
	methodSpecs    []*MethodSpec
	standAloneSigs []*StandAloneSig
	files          []*File
	exportedTypes  []*ExportedType
	resources      []*ManifestResource

	assemblyRefIntern map[string]*AssemblyRef
	moduleRefIntern   map[string]*ModuleRef
	typeRefIntern     map[typeRefKey]*TypeRef

	asmProcessors    []*AssemblyProcessor
	asmOSes          []*AssemblyOS
	asmRefProcessors []*AssemblyRefProcessor
	asmRefOSes       []*AssemblyRefOS

	// customAttrs collects every attached attribute with its parent, in
	// attachment order, for the row-building sweep.
	customAttrs []attachedAttr

	// image is the input buffer of a read Root. It backs lazily decoded
	// blobs and must outlive any descriptor that defers decoding.
	image []byte
}

type typeRefKey struct {
	scope     ResolutionScope
	namespace string
	name      string
}

type attachedAttr struct {
	parent rowStater
	attr   *CustomAttribute
}

// NewRoot returns an empty Root in the building state.
func NewRoot(opts *Options) *Root {
	return &Root{
		opts:              opts.EnsureDefaults(),
		heaps:             heaps.New(),
		store:             tables.NewStore(),
		assemblyRefIntern: make(map[string]*AssemblyRef),
		moduleRefIntern:   make(map[string]*ModuleRef),
		typeRefIntern:     make(map[typeRefKey]*TypeRef),
	}
}

// Heaps exposes the four heaps. Offsets handed out by the heaps are stable
// for the Root's lifetime.
func (r *Root) Heaps() *heaps.Heaps { return r.heaps }

// Module returns the root's module, or nil before NewModule.
func (r *Root) Module() *Module { return r.module }

// Assembly returns the assembly manifest, or nil when the module is not an
// assembly.
func (r *Root) Assembly() *Assembly { return r.assembly }

// UserString interns s in the #US heap and returns the 0x70-prefixed token
// that ldstr consumes.
func (r *Root) UserString(s string) (Token, error) {
	r.mustBuild("append user string")
	off, err := r.heaps.UserStrings.Append(s)
	if err != nil {
		return 0, err
	}
	return base.UserStringToken(off), nil
}

// mustBuild panics unless the Root is still building. Descriptor mutation
// after Finalize is a programmer error, signalled synchronously.
func (r *Root) mustBuild(op string) {
	if r.state != stateBuilding {
		panic("cilmeta: " + op + " after finalize")
	}
}

// Finalize commits the graph: rows are built, sort-required tables sorted,
// tokens stamped and signature blobs encoded. Finalize is one-shot; calling
// it twice is an InvalidState error. After a successful Finalize every
// descriptor's token is stable for the Root's lifetime.
func (r *Root) Finalize() error {
	if r.state != stateBuilding {
		return base.InvalidStateErrorf("cilmeta: finalize on a finalized root")
	}
	if r.module == nil {
		return base.InvalidStateErrorf("cilmeta: finalize with no module")
	}
	b := &builder{root: r}
	if err := b.buildTables(); err != nil {
		return err
	}
	r.store.SortAndStamp()
	if err := b.buildSignatures(); err != nil {
		return err
	}
	r.heaps.Freeze()
	r.layout = tables.PlanLayout(r.store.RowCounts(),
		r.heaps.Strings.Wide(), r.heaps.GUID.Wide(), r.heaps.Blob.Wide())
	r.state = stateFinalized
	return nil
}

// Layout exposes the planned column widths. Valid after Finalize.
func (r *Root) Layout() *tables.Layout { return r.layout }

// Store exposes the underlying table store. Valid after Finalize; rows are
// frozen.
func (r *Root) Store() *tables.Store { return r.store }

// WriteStream serializes the #~ stream alone.
func (r *Root) WriteStream() ([]byte, error) {
	if r.state == stateBuilding {
		return nil, base.InvalidStateErrorf(
			"cilmeta: write before finalize")
	}
	return tables.WriteStream(r.store, r.layout), nil
}

// Write serializes the full metadata root: the BSJB header, the stream
// directory, the #~ stream and the four heaps.
func (r *Root) Write() ([]byte, error) {
	stream, err := r.WriteStream()
	if err != nil {
		return nil, err
	}
	out := tables.WriteRoot(stream, r.heaps, r.opts.Version)
	r.state = stateWritten
	return out, nil
}

func conflictErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), base.ErrDescriptorConflict)
}
