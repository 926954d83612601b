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

	"github.com/spf13/cobra"

	"github.com/bufbuild/pbcore/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <descriptor-set-file>",
		Short: "Load a FileDescriptorSet and list its messages and fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(args[0])
		},
	}
	return cmd
}

func loadSchema(path string) (*schema.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ctx := schema.NewContext()
	if !ctx.AddDescriptorSet(data) {
		return nil, ctx.Status()
	}
	if !ctx.Seal() {
		return nil, ctx.Status()
	}
	return ctx, nil
}

func runSchema(path string) error {
	ctx, err := loadSchema(path)
	if err != nil {
		return err
	}
	for _, m := range ctx.Messages() {
		fmt.Printf("message %s\n", m.FullName())
		for _, f := range m.FieldList() {
			target := ""
			if msg := f.MessageDescriptor(); msg != nil {
				target = " -> " + msg.FullName()
			} else if en := f.EnumDescriptor(); en != nil {
				target = " -> " + en.FullName()
			}
			fmt.Printf("  %d: %s %s %s%s\n", f.Number(), f.Cardinality(), f.Kind(), f.Name(), target)
		}
	}
	printInvocation("schema", path)
	return nil
}
