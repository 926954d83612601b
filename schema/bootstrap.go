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

package schema

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// bootstrap.go is the compiled-in descriptor of descriptor.proto itself,
// spec §4.B's "bootstrap descriptor of FileDescriptorProto... compiled
// into the binary... so the engine can parse its own schema format with
// no external input".
//
// Rather than shipping a byte array and running it through the generic
// decoder at init time (which would need a descriptor for
// FileDescriptorProto to decode a descriptor for FileDescriptorProto —
// solvable, but only by special-casing the same handful of messages this
// file already special-cases), these are built directly as *Message/*Field
// values. Doing so still exercises the real wire decoder (package
// decoder) to parse any actual FileDescriptorSet payload handed to
// [Context.AddDescriptorSet]: only the bootstrap schema itself is
// hand-built rather than self-decoded. Field numbers below match the
// public descriptor.proto exactly, so real protoc-compiled
// FileDescriptorSet bytes decode correctly against them.
//
// Only the subset of descriptor.proto this engine actually interprets is
// modeled: message/field/enum shape, names, numbers, labels, types, and
// type_name cross-references. Options, extension ranges, oneofs, and
// reserved ranges are not represented as fields here, so they are simply
// skipped as unknown fields by the decoder wherever they appear in real
// descriptor bytes — consistent with spec §4.D's "unknown field numbers
// cause skipval semantics".
func newField(num int32, name string, kind protoreflect.Kind, repeated bool) *Field {
	label := protoreflect.Optional
	if repeated {
		label = protoreflect.Repeated
	}
	return &Field{number: protowire.Number(num), name: name, kind: kind, label: label}
}

func buildEnumValueDescriptorProto() *Message {
	m := NewMessage("google.protobuf.EnumValueDescriptorProto")
	_ = m.addField(newField(1, "name", protoreflect.StringKind, false))
	_ = m.addField(newField(2, "number", protoreflect.Int32Kind, false))
	m.seal()
	return m
}

func buildEnumDescriptorProto(value *Message) *Message {
	m := NewMessage("google.protobuf.EnumDescriptorProto")
	_ = m.addField(newField(1, "name", protoreflect.StringKind, false))
	valueField := newField(2, "value", protoreflect.MessageKind, true)
	valueField.message = value
	_ = m.addField(valueField)
	m.seal()
	return m
}

func buildFieldDescriptorProto() *Message {
	m := NewMessage("google.protobuf.FieldDescriptorProto")
	_ = m.addField(newField(1, "name", protoreflect.StringKind, false))
	_ = m.addField(newField(3, "number", protoreflect.Int32Kind, false))
	_ = m.addField(newField(4, "label", protoreflect.Int32Kind, false))
	_ = m.addField(newField(5, "type", protoreflect.Int32Kind, false))
	_ = m.addField(newField(6, "type_name", protoreflect.StringKind, false))
	m.seal()
	return m
}

func buildDescriptorProto(field, enum *Message) *Message {
	m := NewMessage("google.protobuf.DescriptorProto")
	_ = m.addField(newField(1, "name", protoreflect.StringKind, false))

	fieldField := newField(2, "field", protoreflect.MessageKind, true)
	fieldField.message = field
	_ = m.addField(fieldField)

	nestedField := newField(3, "nested_type", protoreflect.MessageKind, true)
	nestedField.message = m // self-reference: DescriptorProto nests DescriptorProto
	_ = m.addField(nestedField)

	enumField := newField(4, "enum_type", protoreflect.MessageKind, true)
	enumField.message = enum
	_ = m.addField(enumField)

	m.seal()
	return m
}

func buildFileDescriptorProto(msg, enum *Message) *Message {
	m := NewMessage("google.protobuf.FileDescriptorProto")
	_ = m.addField(newField(1, "name", protoreflect.StringKind, false))
	_ = m.addField(newField(2, "package", protoreflect.StringKind, false))

	msgField := newField(4, "message_type", protoreflect.MessageKind, true)
	msgField.message = msg
	_ = m.addField(msgField)

	enumField := newField(5, "enum_type", protoreflect.MessageKind, true)
	enumField.message = enum
	_ = m.addField(enumField)

	m.seal()
	return m
}

func buildFileDescriptorSet(file *Message) *Message {
	m := NewMessage("google.protobuf.FileDescriptorSet")
	fileField := newField(1, "file", protoreflect.MessageKind, true)
	fileField.message = file
	_ = m.addField(fileField)
	m.seal()
	return m
}

// bootstrapFileDescriptorSet is the root of the compiled-in descriptor
// graph above: the one descriptor load.go's parse pass hands to
// decoder.New to walk a real FileDescriptorSet payload's bytes.
var bootstrapFileDescriptorSet = buildFileDescriptorSet(buildFileDescriptorProto(buildDescriptorProto(buildFieldDescriptorProto(), buildEnumDescriptorProto(buildEnumValueDescriptorProto())), buildEnumDescriptorProto(buildEnumValueDescriptorProto())))

// FieldDescriptorProto.Label values (descriptor.proto), used when
// interpreting the "label" int32 decoded off the wire during the parse
// pass.
const (
	labelOptional = 1
	labelRequired = 2
	labelRepeated = 3
)

// FieldDescriptorProto.Type values (descriptor.proto) — all 18 protobuf
// scalar/message/group/enum types named in spec §3.
const (
	typeDouble   = 1
	typeFloat    = 2
	typeInt64    = 3
	typeUint64   = 4
	typeInt32    = 5
	typeFixed64  = 6
	typeFixed32  = 7
	typeBool     = 8
	typeString   = 9
	typeGroup    = 10
	typeMessage  = 11
	typeBytes    = 12
	typeUint32   = 13
	typeEnum     = 14
	typeSfixed32 = 15
	typeSfixed64 = 16
	typeSint32   = 17
	typeSint64   = 18
)

// kindFromWireType maps a descriptor.proto FieldDescriptorProto.Type enum
// value to the corresponding [protoreflect.Kind].
func kindFromWireType(t int32) protoreflect.Kind {
	switch t {
	case typeDouble:
		return protoreflect.DoubleKind
	case typeFloat:
		return protoreflect.FloatKind
	case typeInt64:
		return protoreflect.Int64Kind
	case typeUint64:
		return protoreflect.Uint64Kind
	case typeInt32:
		return protoreflect.Int32Kind
	case typeFixed64:
		return protoreflect.Fixed64Kind
	case typeFixed32:
		return protoreflect.Fixed32Kind
	case typeBool:
		return protoreflect.BoolKind
	case typeString:
		return protoreflect.StringKind
	case typeGroup:
		return protoreflect.GroupKind
	case typeMessage:
		return protoreflect.MessageKind
	case typeBytes:
		return protoreflect.BytesKind
	case typeUint32:
		return protoreflect.Uint32Kind
	case typeEnum:
		return protoreflect.EnumKind
	case typeSfixed32:
		return protoreflect.Sfixed32Kind
	case typeSfixed64:
		return protoreflect.Sfixed64Kind
	case typeSint32:
		return protoreflect.Sint32Kind
	case typeSint64:
		return protoreflect.Sint64Kind
	default:
		return protoreflect.Int32Kind
	}
}

// cardinalityFromLabel maps a descriptor.proto FieldDescriptorProto.Label
// enum value to the corresponding [protoreflect.Cardinality].
func cardinalityFromLabel(l int32) protoreflect.Cardinality {
	switch l {
	case labelRequired:
		return protoreflect.Required
	case labelRepeated:
		return protoreflect.Repeated
	default:
		return protoreflect.Optional
	}
}
