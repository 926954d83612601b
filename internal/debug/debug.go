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

//go:build debug

// Package debug includes debugging helpers: invariant assertions and
// goroutine-tagged tracing. It is compiled in only under the "debug" build
// tag, so release builds pay nothing for it.
package debug

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/timandy/routine"
)

// Enabled is true if the binary was built with the debug tag.
const Enabled = true

var (
	pattern  *regexp.Regexp
	nocolor  = flag.Bool("pbcore.nocapture", false, "suppresses debug log output")
)

func init() {
	flag.Func("pbcore.filter", "regexp to filter debug logs by", func(s string) (err error) {
		pattern, err = regexp.Compile(s)
		return err
	})
}

// Assert panics with a formatted message if cond is false.
//
// An assertion failure means a caller violated an internal contract the
// type system can't express, e.g. "getdef must precede getval", not a
// user-facing error.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("pbcore: internal assertion failed: "+format, args...))
	}
}

// Log prints a goroutine-tagged trace line to stderr, filtered by the
// -pbcore.filter flag if set; -pbcore.nocapture suppresses it entirely.
func Log(operation, format string, args ...any) {
	line := fmt.Sprintf("[g%04d] %s: "+format, append([]any{routine.Goid(), operation}, args...)...)
	if pattern != nil && !pattern.MatchString(line) {
		return
	}
	if !*nocolor {
		fmt.Fprintln(os.Stderr, line)
	}
}
