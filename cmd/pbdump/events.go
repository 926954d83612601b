// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/callback"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <wire-bytes-file>",
		Short: "Dump raw tag/value events off wire bytes with no schema at all",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(args[0])
		},
	}
	return cmd
}

// guessHandler drives [callback.Parser] with no schema: it declares
// every field's kind from its wire type alone (spec §4.E leaves this
// decision entirely to the caller), the same heuristic protoscope-style
// tools use when dumping a message they don't have a descriptor for.
type guessHandler struct {
	depth int
}

func kindForWireType(wt wire.Type) callback.Kind {
	switch wt {
	case wire.Varint:
		return protoreflect.Int64Kind
	case wire.Fixed32:
		return protoreflect.Fixed32Kind
	case wire.Fixed64:
		return protoreflect.Fixed64Kind
	case wire.Delimited:
		return protoreflect.BytesKind
	case wire.StartGroup:
		return protoreflect.GroupKind
	default:
		return callback.Skip
	}
}

func (h *guessHandler) TagCB(num protowire.Number, wt wire.Type) (callback.Kind, any) {
	fmt.Printf("%stag(%d, %v)\n", strings.Repeat("  ", h.depth), num, wt)
	return kindForWireType(wt), num
}

func (h *guessHandler) ValueCB(v stream.Value, cookie any) {
	// Int64Kind values land in v.Int; Fixed32Kind/Fixed64Kind land in
	// v.Uint (see interpretFixed32Kind/interpretFixed64Kind's default
	// cases) — exactly one of the two is ever populated here since
	// kindForWireType only ever declares one of those three kinds.
	n := v.Int
	if v.Uint != 0 {
		n = int64(v.Uint)
	}
	fmt.Printf("%svalue(%d) = %d\n", strings.Repeat("  ", h.depth), cookie, n)
}

func (h *guessHandler) StrCB(s *zc.Str, cookie any) {
	fmt.Printf("%sstr(%d) = %q\n", strings.Repeat("  ", h.depth), cookie, s.Bytes())
}

func (h *guessHandler) SubmsgStartCB(cookie any) {
	fmt.Printf("%ssubmsg_start(%d)\n", strings.Repeat("  ", h.depth), cookie)
	h.depth++
}

func (h *guessHandler) SubmsgEndCB(cookie any) {
	h.depth--
	fmt.Printf("%ssubmsg_end(%d)\n", strings.Repeat("  ", h.depth), cookie)
}

func runEvents(wirePath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(wirePath)
	if err != nil {
		return err
	}

	h := &guessHandler{}
	p := callback.NewParser(h, cfg.MaxDepth)
	consumed, ok := p.Parse(data)
	if !ok {
		return p.Status()
	}
	if consumed != len(data) {
		return fmt.Errorf("pbdump: trailing %d byte(s) after a truncated element", len(data)-consumed)
	}
	printInvocation("events", wirePath)
	return nil
}
