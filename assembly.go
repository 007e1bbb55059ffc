// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cilmeta

// Assembly is the assembly manifest, present when the module is an assembly
// rather than a bare netmodule.
type Assembly struct {
	rowState
	attrHolder
	HashAlgID uint32
	Version   [4]uint16
	Flags     uint32
	PublicKey []byte
	Name      string
	Culture   string

	root     *Root
	security []*DeclSecurity
}

// NewAssembly declares the assembly manifest. A Root holds at most one; a
// second call is a DescriptorConflict.
func (r *Root) NewAssembly(name string, version [4]uint16) (*Assembly, error) {
	r.mustBuild("add assembly")
	if r.assembly != nil {
		return nil, conflictErrorf("cilmeta: root already has assembly %q",
			r.assembly.Name)
	}
	a := &Assembly{Name: name, Version: version, root: r}
	r.assembly = a
	return a, nil
}

// AssemblyProcessor restricts the assembly to a processor architecture.
type AssemblyProcessor struct {
	rowState
	Processor uint32
}

// AddAssemblyProcessor records a processor restriction on the assembly.
func (r *Root) AddAssemblyProcessor(processor uint32) *AssemblyProcessor {
	r.mustBuild("add assembly processor")
	p := &AssemblyProcessor{Processor: processor}
	r.asmProcessors = append(r.asmProcessors, p)
	return p
}

// AssemblyOS restricts the assembly to an operating system.
type AssemblyOS struct {
	rowState
	PlatformID   uint32
	MajorVersion uint32
	MinorVersion uint32
}

// AddAssemblyOS records an operating-system restriction on the assembly.
func (r *Root) AddAssemblyOS(platformID, major, minor uint32) *AssemblyOS {
	r.mustBuild("add assembly os")
	o := &AssemblyOS{PlatformID: platformID, MajorVersion: major, MinorVersion: minor}
	r.asmOSes = append(r.asmOSes, o)
	return o
}

// AssemblyRefProcessor restricts a referenced assembly to a processor
// architecture.
type AssemblyRefProcessor struct {
	rowState
	Processor uint32
	Ref       *AssemblyRef
}

// AddProcessor records a processor restriction on the referenced assembly.
func (ar *AssemblyRef) AddProcessor(r *Root, processor uint32) *AssemblyRefProcessor {
	r.mustBuild("add assembly ref processor")
	p := &AssemblyRefProcessor{Processor: processor, Ref: ar}
	r.asmRefProcessors = append(r.asmRefProcessors, p)
	return p
}

// AssemblyRefOS restricts a referenced assembly to an operating system.
type AssemblyRefOS struct {
	rowState
	PlatformID   uint32
	MajorVersion uint32
	MinorVersion uint32
	Ref          *AssemblyRef
}

// AddOS records an operating-system restriction on the referenced assembly.
func (ar *AssemblyRef) AddOS(
	r *Root, platformID, major, minor uint32,
) *AssemblyRefOS {
	r.mustBuild("add assembly ref os")
	o := &AssemblyRefOS{
		PlatformID: platformID, MajorVersion: major, MinorVersion: minor, Ref: ar,
	}
	r.asmRefOSes = append(r.asmRefOSes, o)
	return o
}

// File names another file of a multi-file assembly, with its content hash.
type File struct {
	rowState
	attrHolder
	Flags uint32
	Name  string
	Hash  []byte
}

// NewFile records a file of the assembly.
func (r *Root) NewFile(name string, flags uint32, hash []byte) *File {
	r.mustBuild("add file")
	f := &File{Flags: flags, Name: name, Hash: hash}
	r.files = append(r.files, f)
	return f
}

// Files returns the assembly's file records.
func (r *Root) Files() []*File { return r.files }

// ExportedType re-exports a type defined in another file or assembly of the
// manifest.
type ExportedType struct {
	rowState
	attrHolder
	Flags     uint32
	TypeDefID uint32
	Namespace string
	Name      string
	Impl      Implementation
}

// NewExportedType records a type exported from elsewhere in the manifest.
// TypeDefID is a hint, the TypeDef row index in the defining module, or 0.
func (r *Root) NewExportedType(
	namespace, name string, flags, typeDefID uint32, impl Implementation,
) *ExportedType {
	r.mustBuild("add exported type")
	et := &ExportedType{
		Flags: flags, TypeDefID: typeDefID,
		Namespace: namespace, Name: name, Impl: impl,
	}
	r.exportedTypes = append(r.exportedTypes, et)
	return et
}

// ExportedTypes returns the manifest's exported types.
func (r *Root) ExportedTypes() []*ExportedType { return r.exportedTypes }

// ManifestResource names a resource of the assembly. A nil Impl means the
// resource bytes live in the current file at Offset.
type ManifestResource struct {
	rowState
	attrHolder
	Offset uint32
	Flags  uint32
	Name   string
	Impl   Implementation
}

// NewResource records a manifest resource.
func (r *Root) NewResource(
	name string, flags, offset uint32, impl Implementation,
) *ManifestResource {
	r.mustBuild("add resource")
	mr := &ManifestResource{Offset: offset, Flags: flags, Name: name, Impl: impl}
	r.resources = append(r.resources, mr)
	return mr
}

// Resources returns the manifest's resources.
func (r *Root) Resources() []*ManifestResource { return r.resources }
