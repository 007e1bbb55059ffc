// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package binfmt

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

func TestHeapDump(t *testing.T) {
	datadriven.RunTest(t, "testdata/heap_dump", func(t *testing.T, td *datadriven.TestData) string {
		data, err := hex.DecodeString(strings.Join(strings.Fields(td.Input), ""))
		if err != nil {
			return err.Error()
		}
		switch td.Cmd {
		case "strings":
			return StringsHeap(data)
		case "us":
			return UserStringsHeap(data)
		case "blob":
			return BlobHeap(data)
		case "guid":
			return GUIDHeap(data)
		default:
			return fmt.Sprintf("unknown command %q", td.Cmd)
		}
	})
}
