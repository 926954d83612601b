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

// Package desc declares the minimal descriptor interfaces shared between
// the schema model (component B, package schema) and the wire decoder
// (component D, package decoder).
//
// Splitting these out of package schema breaks what would otherwise be an
// import cycle: the decoder needs to look fields up by number on whatever
// descriptor it's handed, and the schema loader's parse pass (package
// schema) bootstraps itself by running the decoder over a
// FileDescriptorSet using hand-built descriptors for descriptor.proto
// itself. package schema implements these interfaces structurally, the
// same way a type satisfies [google.golang.org/protobuf/reflect/protoreflect.FieldDescriptor]
// without that package importing its implementations.
package desc

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Field is a field descriptor, as consumed by the wire decoder: enough to
// parse a value off the wire and hand it to a caller. See
// schema.Field for the concrete implementation.
type Field interface {
	// Number is the field's number in its containing message.
	Number() protowire.Number

	// Name is the field's declared (not JSON) name.
	Name() string

	// Kind is the field's declared scalar/message/group/enum type.
	Kind() protoreflect.Kind

	// Cardinality is optional/required/repeated.
	Cardinality() protoreflect.Cardinality

	// WireType is the wire type this field is expected to arrive as,
	// derived from Kind. Packed-repeated primitive fields additionally
	// accept BytesType on the wire even though WireType reports their
	// scalar wire type; the decoder checks IsPackable for that case.
	WireType() protowire.Type

	// IsPackable reports whether this field may additionally appear as a
	// single BytesType-delimited span of concatenated base encodings.
	IsPackable() bool

	// Message returns the target message descriptor for a message- or
	// group-kind field, else nil.
	Message() Message

	// Enum returns the target enum descriptor for an enum-kind field,
	// else nil.
	Enum() Enum
}

// Message is a message descriptor, as consumed by the wire decoder.
type Message interface {
	// FullName is the dotted, package-qualified message name.
	FullName() string

	// ByNumber looks up a field by wire number, the fast path the
	// decoder uses for every tag it reads. Returns nil for unknown
	// fields, which the decoder then skips.
	ByNumber(protowire.Number) Field

	// Fields returns every field in declaration order.
	Fields() []Field
}

// Enum is an enum descriptor.
type Enum interface {
	FullName() string
	ValueByNumber(int32) (string, bool)
	ValueByName(string) (int32, bool)
	Default() int32
}
