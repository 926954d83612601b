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
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/decoder"
	"github.com/bufbuild/pbcore/status"
	"github.com/bufbuild/pbcore/stream"
)

// load.go is the parse pass of spec §4.B: it walks a FileDescriptorSet's
// wire bytes against the bootstrap descriptors from bootstrap.go, using
// the real wire decoder (package decoder) — the same component that
// later decodes application data — to decode the engine's own schema
// format. Only message/field/enum shape is captured; options, ranges,
// and oneofs fall through the decoder's unknown-field skip path.

// rawFileDescriptorSet is the parsed, not-yet-sealed result of decoding
// one FileDescriptorSet.
type rawFileDescriptorSet struct {
	files []*rawFile
}

// rawFile is the parsed, not-yet-sealed result of decoding one
// FileDescriptorProto: its top-level messages and enums, plus every
// cross-reference (field type_name) those messages' fields recorded for
// the seal pass to resolve.
type rawFile struct {
	messages    []*Message
	enums       []*Enum
	pendingRefs []pendingRef
}

// decodeFileDescriptorSet runs the parse pass over one FileDescriptorSet
// payload, reporting failure on st per spec §4.B ("malformed descriptor
// bytes -> MALFORMED_DESCRIPTOR").
func decodeFileDescriptorSet(data []byte, st *status.Status) (*rawFileDescriptorSet, bool) {
	bsrc := stream.NewSliceSrc(data)
	src := decoder.New(bsrc, bootstrapFileDescriptorSet, decoder.DefaultMaxDepth)

	result := &rawFileDescriptorSet{}
	for {
		fd := src.GetDef()
		if fd == nil {
			break
		}
		// bootstrapFileDescriptorSet declares only one field ("file"),
		// so any fd reaching here is a FileDescriptorProto entry.
		if !src.StartMsg() {
			return failDecode(st, src)
		}
		file, ok := parseFileDescriptorProto(src, st)
		if !ok {
			return failDecode(st, src)
		}
		if !src.EndMsg() {
			return failDecode(st, src)
		}
		result.files = append(result.files, file)
	}
	if !src.Status().OK() {
		return failDecode(st, src)
	}
	return result, true
}

func failDecode(st *status.Status, src stream.Src) (*rawFileDescriptorSet, bool) {
	if s := src.Status(); !s.OK() {
		st.SetAt(status.MalformedDescriptor, s.Offset, "%v: %s", s.Code, s.Message)
	} else if st.OK() {
		st.Set(status.MalformedDescriptor, "malformed descriptor bytes")
	}
	return nil, false
}

// parseFileDescriptorProto decodes one FileDescriptorProto entry: its
// package name, and the top-level messages/enums it declares.
func parseFileDescriptorProto(src stream.Src, st *status.Status) (*rawFile, bool) {
	file := &rawFile{}
	var pkg string

	for {
		fd := src.GetDef()
		if fd == nil {
			break
		}
		switch fd.Number() {
		case 1: // name (the .proto filename) — not needed for symbol resolution.
			if !src.SkipVal() {
				st.Set(status.MalformedDescriptor, "failed to skip file name")
				return nil, false
			}
		case 2: // package
			str, ok := src.GetStr()
			if !ok {
				st.Set(status.MalformedDescriptor, "failed to read package name")
				return nil, false
			}
			pkg = string(str.Bytes())
			str.Release()
		case 4: // message_type
			if !src.StartMsg() {
				return nil, false
			}
			msgs, nestedEnums, refs, ok := parseDescriptorProto(src, st, pkg)
			if !ok {
				return nil, false
			}
			if !src.EndMsg() {
				return nil, false
			}
			file.messages = append(file.messages, msgs...)
			file.enums = append(file.enums, nestedEnums...)
			file.pendingRefs = append(file.pendingRefs, refs...)
		case 5: // enum_type
			if !src.StartMsg() {
				return nil, false
			}
			e, ok := parseEnumDescriptorProto(src, st, pkg)
			if !ok {
				return nil, false
			}
			if !src.EndMsg() {
				return nil, false
			}
			file.enums = append(file.enums, e)
		default:
			if !src.SkipVal() {
				return nil, false
			}
		}
	}
	return file, true
}

// parseDescriptorProto decodes one DescriptorProto (message declaration),
// recursively decoding any nested_type and enum_type entries. The symbol
// table built by [Context] is flat (spec §4.B: "context_lookup(ctx,
// pkg.Msg")" addresses any nesting depth by full name), so rather than
// threading nested declarations through Message itself, this returns
// every message found at or below this one, flattened, with the message
// itself first; nested enums are flattened the same way. fullName is
// qualified against parentName (the package, or the enclosing message's
// full name for a nested type).
//
// Relies on protoc's encoder always emitting DescriptorProto fields in
// ascending field-number order, so name (field 1) is always decoded
// before nested_type/enum_type (fields 3/4) need it to build a qualified
// name.
func parseDescriptorProto(src stream.Src, st *status.Status, parentName string) (msgs []*Message, enums []*Enum, refs []pendingRef, ok bool) {
	var name string
	var fields []*Field

	for {
		fd := src.GetDef()
		if fd == nil {
			break
		}
		switch fd.Number() {
		case 1: // name
			str, sok := src.GetStr()
			if !sok {
				st.Set(status.MalformedDescriptor, "failed to read message name")
				return nil, nil, nil, false
			}
			name = string(str.Bytes())
			str.Release()
		case 2: // field
			if !src.StartMsg() {
				return nil, nil, nil, false
			}
			f, ref, fok := parseFieldDescriptorProto(src, st)
			if !fok {
				return nil, nil, nil, false
			}
			if !src.EndMsg() {
				return nil, nil, nil, false
			}
			fields = append(fields, f)
			if ref != nil {
				refs = append(refs, *ref)
			}
		case 3: // nested_type
			if !src.StartMsg() {
				return nil, nil, nil, false
			}
			nmsgs, nenums, nrefs, nok := parseDescriptorProto(src, st, qualify(parentName, name))
			if !nok {
				return nil, nil, nil, false
			}
			if !src.EndMsg() {
				return nil, nil, nil, false
			}
			msgs = append(msgs, nmsgs...)
			enums = append(enums, nenums...)
			refs = append(refs, nrefs...)
		case 4: // enum_type
			if !src.StartMsg() {
				return nil, nil, nil, false
			}
			e, eok := parseEnumDescriptorProto(src, st, qualify(parentName, name))
			if !eok {
				return nil, nil, nil, false
			}
			if !src.EndMsg() {
				return nil, nil, nil, false
			}
			enums = append(enums, e)
		default:
			if !src.SkipVal() {
				return nil, nil, nil, false
			}
		}
	}

	m := NewMessage(qualify(parentName, name))
	for _, f := range fields {
		if s := m.addField(f); s != nil {
			*st = *s
			return nil, nil, nil, false
		}
	}
	return append([]*Message{m}, msgs...), enums, refs, true
}

// parseFieldDescriptorProto decodes one FieldDescriptorProto. If the
// field's type references a message or enum by name, the returned
// pendingRef must be resolved during the seal pass.
func parseFieldDescriptorProto(src stream.Src, st *status.Status) (*Field, *pendingRef, bool) {
	f := &Field{}
	var typ, label int32
	var typeName string

	for {
		fd := src.GetDef()
		if fd == nil {
			break
		}
		switch fd.Number() {
		case 1: // name
			str, ok := src.GetStr()
			if !ok {
				st.Set(status.MalformedDescriptor, "failed to read field name")
				return nil, nil, false
			}
			f.name = string(str.Bytes())
			str.Release()
		case 3: // number
			v, ok := src.GetVal()
			if !ok {
				return nil, nil, false
			}
			f.number = protowire.Number(v.Int)
		case 4: // label
			v, ok := src.GetVal()
			if !ok {
				return nil, nil, false
			}
			label = int32(v.Int)
		case 5: // type
			v, ok := src.GetVal()
			if !ok {
				return nil, nil, false
			}
			typ = int32(v.Int)
		case 6: // type_name
			str, ok := src.GetStr()
			if !ok {
				st.Set(status.MalformedDescriptor, "failed to read type_name")
				return nil, nil, false
			}
			typeName = strings.TrimPrefix(string(str.Bytes()), ".")
			str.Release()
		default:
			if !src.SkipVal() {
				return nil, nil, false
			}
		}
	}

	f.kind = kindFromWireType(typ)
	f.label = cardinalityFromLabel(label)

	var ref *pendingRef
	switch f.kind {
	case protoreflect.MessageKind, protoreflect.GroupKind, protoreflect.EnumKind:
		if typeName != "" {
			ref = &pendingRef{field: f, typeName: typeName}
		}
	}
	return f, ref, true
}

// parseEnumDescriptorProto decodes one EnumDescriptorProto.
func parseEnumDescriptorProto(src stream.Src, st *status.Status, parentName string) (*Enum, bool) {
	var name string
	type rawValue struct {
		name string
		num  int32
	}
	var values []rawValue

	for {
		fd := src.GetDef()
		if fd == nil {
			break
		}
		switch fd.Number() {
		case 1: // name
			str, ok := src.GetStr()
			if !ok {
				st.Set(status.MalformedDescriptor, "failed to read enum name")
				return nil, false
			}
			name = string(str.Bytes())
			str.Release()
		case 2: // value
			if !src.StartMsg() {
				return nil, false
			}
			var vname string
			var vnum int32
			for {
				vfd := src.GetDef()
				if vfd == nil {
					break
				}
				switch vfd.Number() {
				case 1:
					str, ok := src.GetStr()
					if !ok {
						st.Set(status.MalformedDescriptor, "failed to read enum value name")
						return nil, false
					}
					vname = string(str.Bytes())
					str.Release()
				case 2:
					v, ok := src.GetVal()
					if !ok {
						return nil, false
					}
					vnum = int32(v.Int)
				default:
					if !src.SkipVal() {
						return nil, false
					}
				}
			}
			if !src.EndMsg() {
				return nil, false
			}
			values = append(values, rawValue{vname, vnum})
		default:
			if !src.SkipVal() {
				return nil, false
			}
		}
	}

	e := NewEnum(qualify(parentName, name))
	for _, v := range values {
		e.addValue(v.name, v.num)
	}
	return e, true
}

// qualify builds a dotted fully-qualified name from a parent scope
// (package or enclosing message) and a leaf name.
func qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
