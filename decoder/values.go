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

package decoder

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// interpretVarint sign-interprets a raw varint according to fd's declared
// type, per spec §4.D: "sign-interpret according to declared type...
// signed types using zig-zag for sint32/sint64."
func interpretVarint(fd desc.Field, raw uint64) stream.Value {
	switch fd.Kind() {
	case protoreflect.Sint32Kind:
		return stream.Value{Int: int64(wire.ZigZagDecode32(uint32(raw)))}
	case protoreflect.Sint64Kind:
		return stream.Value{Int: wire.ZigZagDecode64(raw)}
	case protoreflect.Int32Kind:
		return stream.Value{Int: int64(int32(raw))}
	case protoreflect.Int64Kind:
		return stream.Value{Int: int64(raw)}
	case protoreflect.Uint32Kind:
		return stream.Value{Uint: uint64(uint32(raw))}
	case protoreflect.Uint64Kind:
		return stream.Value{Uint: raw}
	case protoreflect.BoolKind:
		v := int64(0)
		if raw != 0 {
			v = 1
		}
		return stream.Value{Int: v}
	case protoreflect.EnumKind:
		return stream.Value{Int: int64(int32(raw))}
	default:
		return stream.Value{Int: int64(raw)}
	}
}

// interpretFixed32 interprets a little-endian 32-bit value per fd's
// declared type: fixed32, sfixed32, or float.
func interpretFixed32(fd desc.Field, raw uint32) stream.Value {
	switch fd.Kind() {
	case protoreflect.FloatKind:
		return stream.Value{Float32: math.Float32frombits(raw)}
	case protoreflect.Sfixed32Kind:
		return stream.Value{Int: int64(int32(raw))}
	default: // Fixed32Kind
		return stream.Value{Uint: uint64(raw)}
	}
}

// interpretFixed64 interprets a little-endian 64-bit value per fd's
// declared type: fixed64, sfixed64, or double.
func interpretFixed64(fd desc.Field, raw uint64) stream.Value {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		return stream.Value{Float64: math.Float64frombits(raw)}
	case protoreflect.Sfixed64Kind:
		return stream.Value{Int: int64(raw)}
	default: // Fixed64Kind
		return stream.Value{Uint: raw}
	}
}
