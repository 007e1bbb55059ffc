// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/cilmeta"
	"github.com/cockroachdb/cilmeta/internal/base"
	"github.com/cockroachdb/cilmeta/internal/binfmt"
	"github.com/cockroachdb/cilmeta/tables"
	"github.com/cockroachdb/crlib/crstrings"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// metaT implements metadata-image tools, including both configuration state
// and the commands themselves.
type metaT struct {
	Dump   *cobra.Command
	Heaps  *cobra.Command
	Layout *cobra.Command

	verbose bool
	lenient bool
	hex     bool
}

func newMeta() *metaT {
	m := &metaT{}

	m.Dump = &cobra.Command{
		Use:   "dump <file>",
		Short: "print metadata contents",
		Long: `
Print the structure of a metadata image: the physical root header followed by
the logical assembly, module, type and member hierarchy.
`,
		Args: cobra.ExactArgs(1),
		Run:  m.runDump,
	}
	m.Heaps = &cobra.Command{
		Use:   "heaps <file>",
		Short: "print heap sizes",
		Long: `
Print the size and index width of the four heaps of a metadata image.
`,
		Args: cobra.ExactArgs(1),
		Run:  m.runHeaps,
	}
	m.Layout = &cobra.Command{
		Use:   "layout <file>",
		Short: "print table stream layout",
		Long: `
Print per-table row counts, row sizes and the total bytes each table occupies
in the #~ stream.
`,
		Args: cobra.ExactArgs(1),
		Run:  m.runLayout,
	}

	m.Dump.Flags().BoolVarP(
		&m.verbose, "verbose", "v", false, "include member signatures")
	m.Dump.Flags().BoolVar(
		&m.lenient, "lenient", false, "skip corrupt rows instead of failing")
	m.Heaps.Flags().BoolVar(
		&m.hex, "hex", false, "include a hex dump of each heap")
	return m
}

func (m *metaT) load(path string) (*cilmeta.Root, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := cilmeta.Read(data, &cilmeta.Options{SkipCorrupt: m.lenient})
	if err != nil {
		return nil, nil, err
	}
	return r, data, nil
}

func (m *metaT) runDump(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	r, data, err := m.load(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	fmt.Fprint(stdout, annotateRoot(data))
	fmt.Fprintln(stdout)
	m.dumpLogical(stdout, r)
}

// annotateRoot formats the metadata root header and stream directory with
// per-field comments. The data has already been validated by the reader.
func annotateRoot(data []byte) string {
	f := binfmt.New(data)
	f.HexBytesln(4, "signature")
	f.HexBytesln(2, "major version %d", f.PeekUint(2))
	f.HexBytesln(2, "minor version %d", f.PeekUint(2))
	f.HexBytesln(4, "reserved")
	verLen := int(f.PeekUint(4))
	f.HexBytesln(4, "version length %d", verLen)
	f.HexTextln(verLen)
	f.HexBytesln(2, "flags")
	numStreams := int(f.PeekUint(2))
	f.HexBytesln(2, "%d streams", numStreams)
	for i := 0; i < numStreams && f.Remaining() >= 8; i++ {
		off := f.PeekUint(4)
		f.HexBytesln(4, "stream %d offset %d", i, off)
		size := f.PeekUint(4)
		f.HexBytesln(4, "stream %d size %d", i, size)
		name := data[f.Offset():]
		n := bytes.IndexByte(name, 0)
		if n < 0 {
			break
		}
		f.HexTextln((n + 4) &^ 3)
	}
	return f.String()
}

func (m *metaT) dumpLogical(w io.Writer, r *cilmeta.Root) {
	if a := r.Assembly(); a != nil {
		fmt.Fprintf(w, "assembly %s%s %d.%d.%d.%d\n",
			a.Name, crstrings.If(a.Culture != "", " ["+a.Culture+"]"),
			a.Version[0], a.Version[1], a.Version[2], a.Version[3])
	}
	mod := r.Module()
	if mod == nil {
		return
	}
	fmt.Fprintf(w, "module %s mvid=%x\n", mod.Name, mod.Mvid)
	for _, t := range mod.Types() {
		fmt.Fprintf(w, "  type %s (%s)\n", t.FullName(), t.Token())
		for _, fl := range t.Fields() {
			suffix := ""
			if m.verbose {
				suffix = fieldSigString(fl)
			}
			fmt.Fprintf(w, "    field %s (%s)%s\n", fl.Name, fl.Token(), suffix)
		}
		for _, meth := range t.Methods() {
			suffix := ""
			if m.verbose {
				suffix = methodSigString(meth)
			}
			fmt.Fprintf(w, "    method %s (%s)%s\n", meth.Name, meth.Token(), suffix)
		}
		for _, p := range t.Properties() {
			fmt.Fprintf(w, "    property %s (%s)\n", p.Name, p.Token())
		}
		for _, e := range t.Events() {
			fmt.Fprintf(w, "    event %s (%s)\n", e.Name, e.Token())
		}
	}
}

// Signature decoding failures surface inline rather than aborting the dump.

func fieldSigString(f *cilmeta.Field) string {
	s, err := f.Signature()
	if err != nil {
		return fmt.Sprintf(" <signature error: %s>", err)
	}
	return " " + s.Type.String()
}

func methodSigString(m *cilmeta.Method) string {
	s, err := m.Signature()
	if err != nil {
		return fmt.Sprintf(" <signature error: %s>", err)
	}
	params := make([]string, len(s.Params))
	for i := range s.Params {
		params[i] = s.Params[i].Type.String()
	}
	return fmt.Sprintf(" %s(%s)", s.Ret.Type.String(), strings.Join(params, ", "))
}

func (m *metaT) runHeaps(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	r, _, err := m.load(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	h := r.Heaps()
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Heap", "Bytes", "Index"})
	for _, row := range []struct {
		name string
		size uint32
		wide bool
	}{
		{"#Strings", h.Strings.Size(), h.Strings.Wide()},
		{"#US", h.UserStrings.Size(), false},
		{"#Blob", h.Blob.Size(), h.Blob.Wide()},
		{"#GUID", h.GUID.Size(), h.GUID.Wide()},
	} {
		tbl.Append([]string{
			row.name,
			fmt.Sprintf("%d", row.size),
			widthName(row.wide),
		})
	}
	tbl.Render()

	if m.hex {
		for _, heap := range []struct {
			name string
			dump func([]byte) string
			data []byte
		}{
			{"#Strings", binfmt.StringsHeap, h.Strings.Bytes()},
			{"#US", binfmt.UserStringsHeap, h.UserStrings.Bytes()},
			{"#Blob", binfmt.BlobHeap, h.Blob.Bytes()},
			{"#GUID", binfmt.GUIDHeap, h.GUID.Bytes()},
		} {
			fmt.Fprintf(stdout, "\n%s:\n", heap.name)
			fmt.Fprint(stdout, heap.dump(heap.data))
		}
	}
}

func (m *metaT) runLayout(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	r, _, err := m.load(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	l := r.Layout()
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Table", "ID", "Rows", "Row bytes", "Bytes"})
	for id := base.TableID(0); id < base.NumTableIDs; id++ {
		n := l.RowCounts[id]
		if n == 0 || tables.Columns(id) == nil {
			continue
		}
		rowSize := l.RowSize(id)
		tbl.Append([]string{
			id.String(),
			fmt.Sprintf("0x%02X", uint8(id)),
			fmt.Sprintf("%d", n),
			fmt.Sprintf("%d", rowSize),
			fmt.Sprintf("%d", int(n)*rowSize),
		})
	}
	tbl.Render()
	fmt.Fprintf(stdout, "stream size: %d heap flags: 0x%02X\n",
		l.StreamSize(), l.HeapSizes())
}

func widthName(wide bool) string {
	if wide {
		return "4-byte"
	}
	return "2-byte"
}
