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

	"al.essio.dev/pkg/shellescape"
)

// printInvocation echoes a copy-pasteable, shell-quoted rerun of the
// command that just ran, to stderr, after the decoded output on stdout.
// Handy when piping pbdump's output somewhere and wanting to rerun the
// exact same decode later without scrolling back through shell history.
func printInvocation(subcommand string, args ...string) {
	parts := append([]string{"pbdump", subcommand}, args...)
	if cfgPath != "" {
		parts = append(parts, "--config", cfgPath)
	}
	fmt.Fprintln(os.Stderr, "#", shellescape.QuoteCommand(parts))
}
