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
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/decoder"
	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/stream"
)

var (
	decodeSchemaPath string
	decodeMessage    string
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <wire-bytes-file>",
		Short: "Decode wire bytes against a schema and print a field/value tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0])
		},
	}
	cmd.Flags().StringVar(&decodeSchemaPath, "schema", "", "path to a FileDescriptorSet (required)")
	cmd.Flags().StringVar(&decodeMessage, "message", "", "fully-qualified name of the message to decode as (required)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func runDecode(wirePath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	ctx, err := loadSchema(decodeSchemaPath)
	if err != nil {
		return err
	}
	msg, ok := ctx.LookupMessage(decodeMessage)
	if !ok {
		return fmt.Errorf("pbdump: no such message %q in %s", decodeMessage, decodeSchemaPath)
	}
	wireBytes, err := os.ReadFile(wirePath)
	if err != nil {
		return err
	}

	d := decoder.New(stream.NewSliceSrc(wireBytes), msg, cfg.MaxDepth)
	if err := printTree(d, 0); err != nil {
		return err
	}
	if !d.Status().OK() {
		return d.Status()
	}
	printInvocation("decode", "--schema", decodeSchemaPath, "--message", decodeMessage, wirePath)
	return nil
}

// printTree walks everything in the current message scope of src,
// printing one line per field, recursing into submessages and groups.
// It touches src only through [stream.Src], never decoder internals —
// the same boundary a DOM builder or pretty-printer would observe.
func printTree(src stream.Src, depth int) error {
	indent := strings.Repeat("  ", depth)
	for {
		fd := src.GetDef()
		if fd == nil {
			if !src.Status().OK() {
				return src.Status()
			}
			return nil
		}

		switch fd.Kind() {
		case protoreflect.MessageKind, protoreflect.GroupKind:
			fmt.Printf("%s%d: %s {\n", indent, fd.Number(), fieldLabel(fd))
			if !src.StartMsg() {
				return src.Status()
			}
			if err := printTree(src, depth+1); err != nil {
				return err
			}
			if !src.EndMsg() {
				return src.Status()
			}
			fmt.Printf("%s}\n", indent)

		case protoreflect.StringKind, protoreflect.BytesKind:
			str, ok := src.GetStr()
			if !ok {
				return src.Status()
			}
			fmt.Printf("%s%d: %s = %q\n", indent, fd.Number(), fieldLabel(fd), str.Bytes())

		default:
			v, ok := src.GetVal()
			if !ok {
				return src.Status()
			}
			fmt.Printf("%s%d: %s = %s\n", indent, fd.Number(), fieldLabel(fd), formatValue(fd, v))
		}
	}
}

func fieldLabel(fd desc.Field) string {
	if fd.Name() == "" {
		return fmt.Sprintf("<%v>", fd.Kind())
	}
	return fd.Name()
}

func formatValue(fd desc.Field, v stream.Value) string {
	switch fd.Kind() {
	case protoreflect.FloatKind:
		return fmt.Sprintf("%v", v.Float32)
	case protoreflect.DoubleKind:
		return fmt.Sprintf("%v", v.Float64)
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed32Kind, protoreflect.Fixed64Kind:
		return fmt.Sprintf("%d", v.Uint)
	case protoreflect.BoolKind:
		return fmt.Sprintf("%t", v.Int != 0)
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}
