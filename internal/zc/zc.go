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

// Package zc implements component A of the core: a reference-counted byte
// string that can own its buffer, alias memory borrowed from some other
// owner (typically the decoder's input buffer), or point at
// process-lifetime static data.
//
// This plays the role the teacher's zero-copy [Range] plays for hyperpb's
// specialized, single-source-buffer parser, widened to the full
// ownership/refcount discipline the spec requires: a bare offset/length
// pair is enough when every string in a message aliases the same input
// slice, but not when a string may be owned, aliased from an arbitrary
// source, or static.
package zc

import (
	"fmt"
	"sync/atomic"

	"github.com/bufbuild/pbcore/internal/debug"
)

// Mode is the ownership mode of a [String].
type Mode int

const (
	// Owned strings own their buffer; Release frees it once the refcount
	// hits zero.
	Owned Mode = iota
	// Alias strings borrow their buffer from an external source (usually
	// the decoder's input slice) for as long as the refcount is positive.
	Alias
	// Static strings point at process-lifetime memory (e.g. a schema
	// default baked into the binary); Release never frees them.
	Static
)

// String implements [fmt.Stringer].
func (m Mode) String() string {
	switch m {
	case Owned:
		return "owned"
	case Alias:
		return "alias"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Str is a reference-counted byte blob with three ownership modes. The
// zero value is an unusable placeholder; use [NewOwned], [NewAlias], or
// [NewStatic] to get a usable value, or [Str.Recycle] to reset one already
// held.
//
// Invariants (spec §4.A): an Owned or Alias string must have a positive
// refcount to be read; its buffer must be valid for Len() bytes; its mode
// changes only via Recycle (which resets length to 0 and refcount to 1),
// ResetAlias, or Append.
//
// Named Str rather than String to avoid colliding with the Bytes/String
// accessor methods below.
type Str struct {
	buf  []byte // buf[:len] is the valid prefix; cap(buf) is retained across Recycle for Owned strings.
	len  int
	mode Mode
	refs atomic.Int32
}

// NewOwned allocates a new owned string with the given capacity and a
// refcount of 1.
func NewOwned(capacity int) *Str {
	s := &Str{buf: make([]byte, 0, capacity), mode: Owned}
	s.refs.Store(1)
	return s
}

// NewAlias wraps foreign memory without copying it. The caller promises
// buf outlives every holder of the returned string.
func NewAlias(buf []byte) *Str {
	s := &Str{buf: buf, len: len(buf), mode: Alias}
	s.refs.Store(1)
	return s
}

// NewStatic wraps process-lifetime memory. Acquire/Release are no-ops on
// its refcount, and Recycle on a static string simply detaches it.
func NewStatic(buf []byte) *Str {
	return &Str{buf: buf, len: len(buf), mode: Static}
}

// Len returns the number of valid bytes in the string.
func (s *Str) Len() int { return s.len }

// Mode returns the string's current ownership mode.
func (s *Str) Mode() Mode { return s.mode }

// Bytes returns the valid prefix of the string's buffer. The returned
// slice is only valid while the string holds a positive refcount (or is
// Static); callers that need to keep bytes past a Release must copy them
// out first.
func (s *Str) Bytes() []byte {
	debug.Assert(s.mode == Static || s.refs.Load() > 0,
		"zc: read of a string with a non-positive refcount")
	return s.buf[:s.len]
}

// Acquire increments the refcount. Safe to call concurrently (spec §5:
// "atomic increment/decrement if [strings are] shared").
func (s *Str) Acquire() {
	if s.mode == Static {
		return
	}
	s.refs.Add(1)
}

// Release decrements the refcount, freeing the owned buffer once it
// reaches zero. Releasing an already-zero, non-static string indicates a
// caller bug and asserts in debug builds.
func (s *Str) Release() {
	if s.mode == Static {
		return
	}
	n := s.refs.Add(-1)
	debug.Assert(n >= 0, "zc: refcount underflow")
	if n == 0 && s.mode == Owned {
		s.buf = nil
		s.len = 0
	}
}

// ResetAlias turns s into an alias of buf with a fresh refcount of 1,
// discarding whatever s held before. Used by bytesrc implementations to
// hand out a recycled string pointed at new input without allocating a
// new *Str (and without the atomic refcount field ever being struct-copied).
func (s *Str) ResetAlias(buf []byte) {
	s.buf = buf
	s.len = len(buf)
	s.mode = Alias
	s.refs.Store(1)
}

// Recycle is the caller's promise that no other holder of s exists: it
// resets length to 0 and refcount to 1, retaining the owned buffer's
// capacity for reuse. Recycling an aliasing or static string drops the
// foreign reference and turns it into an empty owned string, since there
// is no capacity to retain from borrowed memory.
func (s *Str) Recycle() {
	switch s.mode {
	case Owned:
		s.buf = s.buf[:0]
	default:
		s.buf = nil
		s.mode = Owned
	}
	s.len = 0
	s.refs.Store(1)
}

// Append concatenates bytes onto the string in place, copying an aliased
// or static buffer into owned storage first — the "append on an alias
// promotes it to owned" contract from spec §4.A.
func (s *Str) Append(p []byte) {
	if s.mode != Owned {
		owned := make([]byte, s.len, s.len+len(p))
		copy(owned, s.buf[:s.len])
		s.buf = owned
		s.mode = Owned
	}
	if s.len+len(p) > cap(s.buf) {
		grown := make([]byte, s.len, 2*(s.len+len(p)))
		copy(grown, s.buf[:s.len])
		s.buf = grown
	}
	s.buf = s.buf[:s.len+len(p)]
	copy(s.buf[s.len:], p)
	s.len += len(p)
}

// Format implements [fmt.Formatter], printing the length-plus-pointer
// sigil the spec calls out for formatted output of a string.
func (s *Str) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "%s{len=%d, ptr=%p}", s.mode, s.len, s.buf)
}
