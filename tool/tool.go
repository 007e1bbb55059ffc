// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the introspection commands of the cilmeta CLI.
package tool

import (
	"github.com/spf13/cobra"
)

// T is the container for all of the introspection tools.
type T struct {
	Commands []*cobra.Command
	meta     *metaT
}

// New creates a new introspection tool.
func New() *T {
	t := &T{}
	t.meta = newMeta()
	t.Commands = []*cobra.Command{
		t.meta.Dump,
		t.meta.Heaps,
		t.meta.Layout,
	}
	return t
}
