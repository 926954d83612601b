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

package callback

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// interpretVarintKind, interpretFixed32Kind, and interpretFixed64Kind are
// [decoder]'s interpretVarint/interpretFixed32/interpretFixed64, keyed on
// a bare [Kind] rather than a [desc.Field] since the callback parser has
// no descriptor to ask — only the Kind a Handler declared from TagCB.
func interpretVarintKind(k Kind, raw uint64) stream.Value {
	switch k {
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

func interpretFixed32Kind(k Kind, raw uint32) stream.Value {
	switch k {
	case protoreflect.FloatKind:
		return stream.Value{Float32: math.Float32frombits(raw)}
	case protoreflect.Sfixed32Kind:
		return stream.Value{Int: int64(int32(raw))}
	default: // Fixed32Kind
		return stream.Value{Uint: uint64(raw)}
	}
}

func interpretFixed64Kind(k Kind, raw uint64) stream.Value {
	switch k {
	case protoreflect.DoubleKind:
		return stream.Value{Float64: math.Float64frombits(raw)}
	case protoreflect.Sfixed64Kind:
		return stream.Value{Int: int64(raw)}
	default: // Fixed64Kind
		return stream.Value{Uint: raw}
	}
}
