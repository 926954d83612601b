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

// Package stream defines component C of the core: the four polymorphic
// stream contracts (src, sink, bytesrc, bytesink) that the wire decoder
// (D) implements and that any consumer (a DOM builder, a pretty-printer,
// another sink) drains or drives.
//
// The spec's Design Notes call these out as a natural fit for
// interfaces-not-inheritance: "a vtable of function pointers plus a
// shared status/eof header embedded by every implementation" becomes a Go
// interface, with each implementation keeping its own status, matching how the teacher's
// reflect.go exposes [protoreflect.Message] as the consumer-facing
// contract over its internal parser state.
package stream

import (
	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/status"
)

// Value is the union of scalar results a [Src] can produce from getval,
// tagged by the field's declared Kind so callers don't need a type switch
// keyed on the Go type alone (enums and int32 are both represented as
// int32, for instance).
type Value struct {
	Int     int64   // int32, int64, sint32, sint64, sfixed32, sfixed64, enum, bool (0/1)
	Uint    uint64  // uint32, uint64, fixed32, fixed64
	Float64 float64 // double
	Float32 float32 // float
}

// Src is the pull interface: "getdef must be called before each value."
//
// Contracts (spec §4.C):
//   - GetDef must be called before each value; it returns the descriptor
//     of the next field, or nil at the end of the current message scope.
//   - StartMsg is valid only immediately after a GetDef that returned a
//     submessage or group field.
//   - EndMsg may be called early to skip the remainder of a submessage;
//     the implementation must then advance past it.
//   - EOF follows C feof semantics: it is only meaningful after a read
//     has failed at end of stream, and is cleared by EndMsg when leaving
//     a submessage scope.
type Src interface {
	// GetDef returns the next field's descriptor, or nil if the current
	// message scope (top-level or submessage) has been exhausted.
	GetDef() desc.Field

	// GetVal fetches the scalar value following the most recent GetDef.
	// Only valid when that field's expected wire type is VARINT, 64BIT,
	// or 32BIT.
	GetVal() (Value, bool)

	// GetStr fetches the length-delimited value following the most
	// recent GetDef, for string/bytes fields. Packed-primitive spans are
	// not served here: their elements come one at a time through GetVal.
	// The returned string may alias the src's input buffer; callers that
	// need to retain it past the next pull must Acquire it.
	GetStr() (*zc.Str, bool)

	// SkipVal discards the value following the most recent GetDef without
	// decoding it.
	SkipVal() bool

	// StartMsg descends into the submessage or group field most recently
	// returned by GetDef.
	StartMsg() bool

	// EndMsg exits the current submessage scope, advancing past any
	// unconsumed fields within it.
	EndMsg() bool

	// EOF reports whether the last read failed at end of input. Must not
	// be used predictively — call a read first.
	EOF() bool

	// Status returns the status of the last failing operation, or a
	// status with Code == status.OK if none has failed.
	Status() *status.Status
}

// Sink is the push interface, the mirror image of Src.
type Sink interface {
	// PutDef announces the descriptor of the next field to be written.
	PutDef(f desc.Field) bool

	// PutVal writes a scalar value for the field most recently announced
	// via PutDef.
	PutVal(v Value) bool

	// PutStr writes a length-delimited value — including, for a
	// submessage field, a pre-serialized blob passed directly instead of
	// opening a nested StartMsg/EndMsg scope.
	PutStr(s *zc.Str) bool

	// StartMsg opens a nested submessage or group scope for the field
	// most recently announced via PutDef.
	StartMsg() bool

	// EndMsg closes the innermost open submessage or group scope.
	EndMsg() bool

	Status() *status.Status
}

// ByteSrc is the pull-bytes interface that backs a [Src] implementation
// (the wire decoder pulls its input through one of these).
type ByteSrc interface {
	// Get fills str, which must have been passed through [zc.Str.Recycle]
	// by the caller, with exactly minLen bytes and returns true, or
	// returns false and sets EOF if fewer than minLen bytes remain.
	Get(str *zc.Str, minLen int) bool

	// Append concatenates exactly the next n bytes onto str in place,
	// growing it rather than replacing it, for callers accumulating a
	// value incrementally. Returns false and sets EOF if fewer than n
	// bytes remain.
	Append(str *zc.Str, n int) bool

	EOF() bool
	Status() *status.Status
}

// ByteSink is the push-bytes interface.
type ByteSink interface {
	// Put writes as many bytes from str as it can, returning how many
	// were actually consumed; a short write requires the caller to retry
	// with the remainder.
	Put(str *zc.Str) (n int, ok bool)

	Status() *status.Status
}
