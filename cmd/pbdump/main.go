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

// Command pbdump is a thin outer consumer of the core: it decodes a
// protobuf-wire message against a loaded schema (or, with no schema,
// against wire-type-guessed kinds) and prints its event trace.
//
// It is explicitly NOT part of the core (spec §1 excludes "the
// command-line descriptor compiler" and any CLI from the engine proper)
// — it decodes through [stream.Src], the same interface a DOM builder or
// pretty-printer would use, and also uses [schema.Context] to load
// descriptors and [callback.Parser] for its event trace, per spec §1's "described only
// via the interfaces they consume from the core."
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var cfgPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pbdump",
		Short:         "Decode protobuf wire bytes against a schema, with no code generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML file of decoder knobs (max_depth, unaligned_reads)")
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newEventsCmd())
	return root
}
