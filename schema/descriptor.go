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

// Package schema implements component B: typed descriptors for messages,
// fields, and enums, plus the [Context] symbol table that binds field
// numbers to types at parse time.
//
// This plays the role the teacher's internal/tdp package (Type, Field,
// Aux) plays for hyperpb, generalized from "descriptors paired with a
// specialized parser program" down to "descriptors the generic wire
// decoder (package decoder) can walk directly" — the spec's core scope
// excludes hyperpb's per-type JIT specialization (a "reflection-free
// generated accessor", which is an explicit non-goal).
package schema

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/status"
)

// Field is an immutable (once sealed) field descriptor: spec §3's "Field
// descriptor". It implements [desc.Field].
type Field struct {
	number protowire.Number
	name   string
	label  protoreflect.Cardinality
	kind   protoreflect.Kind
	message *Message
	enum    *Enum
	offset  int
	bit     int
}

var (
	_ desc.Field = (*Field)(nil)
	_ desc.Message = (*Message)(nil)
	_ desc.Enum = (*Enum)(nil)
)

// Number returns the field's number within its containing message.
func (f *Field) Number() protowire.Number { return f.number }

// Name returns the field's declared name.
func (f *Field) Name() string { return f.name }

// Kind returns the field's declared scalar/message/group/enum type.
func (f *Field) Kind() protoreflect.Kind { return f.kind }

// Cardinality returns optional/required/repeated.
func (f *Field) Cardinality() protoreflect.Cardinality { return f.label }

// WireType returns the wire type this field is expected to arrive as,
// derived from Kind per spec §3 ("expected wire type (derived from
// declared type)").
func (f *Field) WireType() protowire.Type { return WireTypeFor(f.kind) }

// IsPackable reports whether a packed-repeated encoding (a single
// DELIMITED span of concatenated base encodings) is additionally
// acceptable for this field, per spec §4.D: "accept a mismatch only when
// the wire type is DELIMITED and the field is primitive-repeated". Only
// fields whose own wire type is VARINT, 32BIT, or 64BIT qualify: string,
// bytes, message, and group fields are already DELIMITED (or
// START_GROUP) on the wire and are never packed.
func (f *Field) IsPackable() bool {
	if f.label != protoreflect.Repeated {
		return false
	}
	switch f.WireType() {
	case protowire.VarintType, protowire.Fixed32Type, protowire.Fixed64Type:
		return true
	default:
		return false
	}
}

// Message returns the target message descriptor for a message- or
// group-kind field, else nil.
func (f *Field) Message() desc.Message {
	if f.message == nil {
		return nil
	}
	return f.message
}

// Enum returns the target enum descriptor for an enum-kind field, else
// nil.
func (f *Field) Enum() desc.Enum {
	if f.enum == nil {
		return nil
	}
	return f.enum
}

// MessageDescriptor is like Message but returns the concrete type, for
// callers within this module that need more than [desc.Message] offers
// (e.g. the seal pass).
func (f *Field) MessageDescriptor() *Message { return f.message }

// EnumDescriptor is the concrete-typed counterpart to Enum.
func (f *Field) EnumDescriptor() *Enum { return f.enum }

// Offset returns the field's byte offset within its message's layout.
func (f *Field) Offset() int { return f.offset }

// Bit returns the field's bit-index in its message's presence bitmap, or
// -1 for repeated fields (which use length rather than presence).
func (f *Field) Bit() int { return f.bit }

// Format implements [fmt.Formatter].
func (f *Field) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, "%s(%d, %v)", f.name, f.number, f.kind)
}

// WireTypeFor derives a field's expected wire type from its declared
// type, per spec §3/§6.
func WireTypeFor(k protoreflect.Kind) protowire.Type {
	switch k {
	case protoreflect.Int32Kind, protoreflect.Int64Kind,
		protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.BoolKind, protoreflect.EnumKind:
		return protowire.VarintType
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind:
		return protowire.BytesType
	case protoreflect.GroupKind:
		return protowire.StartGroupType
	default:
		return protowire.VarintType
	}
}

// Message is an immutable (once sealed) message descriptor: spec §3's
// "Message descriptor". It implements [desc.Message].
type Message struct {
	fullName string
	fields   []*Field
	byNumber map[protowire.Number]*Field

	// numBits is the number of bits in the presence bitmap (one per
	// optional/required field).
	numBits int

	// size is the total instance size in bytes a compiled layout for this
	// message would need — descriptor metadata only; this repo's core
	// does not allocate message instances (that DOM layer is out of
	// scope per spec §1), but the spec requires the layout to exist on
	// the descriptor regardless.
	size uint32

	sealed bool
}

// NewMessage creates an empty, unsealed message descriptor. Fields are
// added with [Message.addField] during the parse pass; [Message.seal]
// locks it down.
func NewMessage(fullName string) *Message {
	return &Message{fullName: fullName, byNumber: make(map[protowire.Number]*Field)}
}

// NewField builds a field descriptor directly, for callers assembling a
// [Message] programmatically rather than via [Context.AddDescriptorSet]
// (the load.go path). Use [Field.SetMessage]/[Field.SetEnum] to bind a
// message- or enum-kind field to its target descriptor before adding it
// to a [Message] with [Message.AddField].
func NewField(number protowire.Number, name string, kind protoreflect.Kind, cardinality protoreflect.Cardinality) *Field {
	return &Field{number: number, name: name, kind: kind, label: cardinality}
}

// SetMessage binds a message- or group-kind field to its target
// descriptor.
func (f *Field) SetMessage(m *Message) { f.message = m }

// SetEnum binds an enum-kind field to its target descriptor.
func (f *Field) SetEnum(e *Enum) { f.enum = e }

// AddField appends a field descriptor to m, the exported counterpart to
// addField for programmatic construction outside the load.go path.
func (m *Message) AddField(f *Field) *status.Status { return m.addField(f) }

// Seal locks m's layout, the exported counterpart to seal.
func (m *Message) Seal() { m.seal() }

// AddValue records one enum value, the exported counterpart to addValue.
func (e *Enum) AddValue(name string, n int32) { e.addValue(name, n) }

// FullName returns the message's fully-qualified dotted name.
func (m *Message) FullName() string { return m.fullName }

// ByNumber is the fast field-number lookup the decoder uses for every tag
// it reads. Returns nil for unknown fields.
func (m *Message) ByNumber(n protowire.Number) desc.Field {
	f, ok := m.byNumber[n]
	if !ok {
		return nil
	}
	return f
}

// FieldByNumber is like ByNumber but returns the concrete type.
func (m *Message) FieldByNumber(n protowire.Number) *Field { return m.byNumber[n] }

// Fields returns every field in declaration order. Callers must not
// mutate the returned slice.
func (m *Message) Fields() []desc.Field {
	out := make([]desc.Field, len(m.fields))
	for i, f := range m.fields {
		out[i] = f
	}
	return out
}

// FieldList is like Fields but returns the concrete type.
func (m *Message) FieldList() []*Field { return m.fields }

// NumBits returns the presence-bitmap size computed at seal time.
func (m *Message) NumBits() int { return m.numBits }

// Size returns the computed total instance size, rounded to pointer
// alignment.
func (m *Message) Size() uint32 { return m.size }

// Format implements [fmt.Formatter].
func (m *Message) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, "message %s{%d fields}", m.fullName, len(m.fields))
}

// addField appends a field descriptor during the parse pass. It is a
// programmer error to call this after sealing.
func (m *Message) addField(f *Field) *status.Status {
	if m.sealed {
		return status.New(status.MalformedDescriptor, "message %q is already sealed", m.fullName)
	}
	if _, dup := m.byNumber[f.number]; dup {
		return status.New(status.DuplicateSymbol, "duplicate field number %d in %q", f.number, m.fullName)
	}
	m.fields = append(m.fields, f)
	m.byNumber[f.number] = f
	return nil
}

// seal computes this message's presence-bitmap and byte-offset layout.
// Fields are laid out in declaration order, each in a slot of its natural
// size at natural alignment (8 bytes for 64-bit scalars and message,
// string and bytes fields; 4 bytes otherwise), and every non-repeated
// field gets one presence bit. This mirrors
// the "scalar fields at natural alignment, set-bitmap at the end, total
// size rounded to pointer alignment" algorithm from spec §4.B, simplified
// since nothing in this repo's core allocates an instance from this
// layout (see size doc comment above).
func (m *Message) seal() {
	if m.sealed {
		return
	}

	var bit int
	var offset uint32
	for _, f := range m.fields {
		align := fieldAlign(f.kind)
		offset = (offset + align - 1) &^ (align - 1)
		f.offset = int(offset)
		offset += align

		if f.label != protoreflect.Repeated {
			f.bit = bit
			bit++
		} else {
			f.bit = -1
		}
	}

	m.numBits = bit
	bitBytes := uint32((bit + 7) / 8)
	total := offset + bitBytes
	const ptrAlign = 8
	m.size = (total + ptrAlign - 1) &^ (ptrAlign - 1)
	m.sealed = true
}

func fieldAlign(k protoreflect.Kind) uint32 {
	switch k {
	case protoreflect.DoubleKind, protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind,
		protoreflect.Int64Kind, protoreflect.Uint64Kind, protoreflect.Sint64Kind,
		protoreflect.MessageKind, protoreflect.StringKind, protoreflect.BytesKind:
		return 8
	default:
		return 4
	}
}

// Enum is an enum descriptor: a bidirectional mapping between symbolic
// name and int32 value, plus a default. It implements [desc.Enum].
type Enum struct {
	fullName    string
	nameToValue map[string]int32
	valueToName map[int32]string
	defaultVal  int32
}

// NewEnum creates an empty enum descriptor.
func NewEnum(fullName string) *Enum {
	return &Enum{
		fullName:    fullName,
		nameToValue: make(map[string]int32),
		valueToName: make(map[int32]string),
	}
}

// FullName returns the enum's fully-qualified dotted name.
func (e *Enum) FullName() string { return e.fullName }

// ValueByNumber looks up the symbolic name for a value.
func (e *Enum) ValueByNumber(n int32) (string, bool) {
	name, ok := e.valueToName[n]
	return name, ok
}

// ValueByName looks up the int32 value for a symbolic name.
func (e *Enum) ValueByName(name string) (int32, bool) {
	n, ok := e.nameToValue[name]
	return n, ok
}

// Default returns the enum's default value (the first value declared,
// per proto2 semantics).
func (e *Enum) Default() int32 { return e.defaultVal }

// addValue records one enum value during the parse pass.
func (e *Enum) addValue(name string, n int32) {
	if len(e.nameToValue) == 0 {
		e.defaultVal = n
	}
	e.nameToValue[name] = n
	e.valueToName[n] = name
}

// Format implements [fmt.Formatter].
func (e *Enum) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, "enum %s{%d values}", e.fullName, len(e.nameToValue))
}
