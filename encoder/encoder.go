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

// Package encoder implements the push half of component C (spec §4.C's
// "sink"): a [stream.Sink] that serializes the typed-value events it is
// handed back into protobuf wire bytes on a [stream.ByteSink].
//
// The spec names sink only as the mirror image of src and otherwise
// leaves its implementation to "whatever" consumes the core (§1: "a
// message-to-text pretty-printer... described only via the interfaces it
// consumes from the core"); this package is that missing concrete
// implementation, needed to exercise spec §8's round-trip property
// (decode(encode(x)) ≡ x) and to give [stream.StreamData] something to
// pump a [decoder.Decoder] into.
package encoder

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/status"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// frame is one entry of the encoder's submessage stack: an accumulating
// buffer plus the field/group number it will be framed under once
// closed. Unlike the decoder's [stack.Stack] (which tracks where a
// submessage ends) an encoder frame doesn't know its length until
// EndMsg, so it buffers the submessage's serialized bytes and only
// copies them into the parent frame when it closes: length-delimited for
// a message, or followed by the END_GROUP tag for a group (whose
// START_GROUP tag StartMsg already wrote into the parent).
type frame struct {
	buf    []byte
	group  bool
	number wire.Number
}

// Encoder is a [stream.Sink] that serializes PutDef/PutVal/PutStr/
// StartMsg/EndMsg events into wire bytes, per spec §4.C.
//
// frames[0] is the top-level message's buffer; [Encoder.Flush] drains it
// to the underlying [stream.ByteSink] once every opened submessage has
// been closed.
type Encoder struct {
	sink    stream.ByteSink
	frames  []frame
	pending desc.Field // field announced by the most recent PutDef, awaited by PutVal/PutStr/StartMsg
	st      status.Status
}

var _ stream.Sink = (*Encoder)(nil)

// New creates an Encoder that will eventually flush to sink.
func New(sink stream.ByteSink) *Encoder {
	return &Encoder{sink: sink, frames: []frame{{}}}
}

// Status implements [stream.Sink].
func (e *Encoder) Status() *status.Status { return &e.st }

func (e *Encoder) top() *frame { return &e.frames[len(e.frames)-1] }

// PutDef implements [stream.Sink]: it announces the field the next
// PutVal/PutStr/StartMsg call writes a value for.
func (e *Encoder) PutDef(f desc.Field) bool {
	e.pending = f
	return true
}

// PutVal implements [stream.Sink] for scalar (non-string, non-message)
// fields, writing a fresh tag plus the encoded value every call — so a
// sequence of same-field PutVal calls (how [stream.StreamData] drains a
// packed-repeated span from a [stream.Src]) round-trips to semantically
// equivalent, if non-packed, repeated fields on the wire.
func (e *Encoder) PutVal(v stream.Value) bool {
	f := e.pending
	if f == nil {
		e.st.Set(status.BadWireType, "PutVal without a preceding PutDef")
		return false
	}
	e.pending = nil

	top := e.top()
	switch f.WireType() {
	case wire.Varint:
		raw := encodeVarintKind(f.Kind(), v)
		top.buf = wire.AppendTag(top.buf, f.Number(), wire.Varint)
		top.buf = wire.AppendVarint(top.buf, raw)
	case wire.Fixed32:
		raw := encodeFixed32Kind(f.Kind(), v)
		top.buf = wire.AppendTag(top.buf, f.Number(), wire.Fixed32)
		top.buf = wire.AppendFixed32(top.buf, raw)
	case wire.Fixed64:
		raw := encodeFixed64Kind(f.Kind(), v)
		top.buf = wire.AppendTag(top.buf, f.Number(), wire.Fixed64)
		top.buf = wire.AppendFixed64(top.buf, raw)
	default:
		e.st.Set(status.BadWireType, "PutVal called for non-scalar field %v", f.Kind())
		return false
	}
	return true
}

// PutStr implements [stream.Sink], writing a length-delimited field —
// string, bytes, or (per spec §4.C: "the caller may instead pass a
// pre-serialized blob via putstr") a submessage passed as an already
// encoded span instead of opening a StartMsg/EndMsg scope.
func (e *Encoder) PutStr(s *zc.Str) bool {
	f := e.pending
	if f == nil {
		e.st.Set(status.BadWireType, "PutStr without a preceding PutDef")
		return false
	}
	e.pending = nil

	top := e.top()
	top.buf = wire.AppendTag(top.buf, f.Number(), wire.Delimited)
	top.buf = wire.AppendBytes(top.buf, s.Bytes())
	return true
}

// StartMsg implements [stream.Sink]: it opens a nested frame for the
// message or group field most recently announced via PutDef.
func (e *Encoder) StartMsg() bool {
	f := e.pending
	if f == nil {
		e.st.Set(status.BadWireType, "StartMsg without a preceding PutDef")
		return false
	}
	e.pending = nil

	switch f.Kind() {
	case protoreflect.GroupKind:
		// Groups frame themselves on the wire via their own START_GROUP/
		// END_GROUP tags, so the opening tag goes straight into the
		// parent buffer now rather than waiting for EndMsg.
		e.top().buf = wire.AppendTag(e.top().buf, f.Number(), wire.StartGroup)
		e.frames = append(e.frames, frame{group: true, number: f.Number()})
	case protoreflect.MessageKind:
		e.frames = append(e.frames, frame{number: f.Number()})
	default:
		e.st.Set(status.BadWireType, "StartMsg on non-message field %v", f.Kind())
		return false
	}
	return true
}

// EndMsg implements [stream.Sink]: it closes the innermost open frame,
// writing its contents with their length-delimited framing (or followed
// by a matching END_GROUP tag) into what is now the top frame.
func (e *Encoder) EndMsg() bool {
	if len(e.frames) <= 1 {
		e.st.Set(status.BadWireType, "EndMsg without an open submessage")
		return false
	}
	closed := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	parent := e.top()

	if closed.group {
		parent.buf = append(parent.buf, closed.buf...)
		parent.buf = wire.AppendTag(parent.buf, closed.number, wire.EndGroup)
		return true
	}
	parent.buf = wire.AppendTag(parent.buf, closed.number, wire.Delimited)
	parent.buf = wire.AppendBytes(parent.buf, closed.buf)
	return true
}

// Flush drains the fully-assembled top-level message to the underlying
// [stream.ByteSink], retrying short writes per spec §4.C: "put(str)
// returns bytes consumed (possibly fewer than supplied, requiring a
// retry)." It is an error to call Flush with an open (unclosed) frame.
func (e *Encoder) Flush() bool {
	if len(e.frames) != 1 {
		e.st.Set(status.BadWireType, "Flush with %d unterminated submessage(s)", len(e.frames)-1)
		return false
	}
	remaining := e.frames[0].buf
	for len(remaining) > 0 {
		var chunk zc.Str
		chunk.ResetAlias(remaining)
		n, ok := e.sink.Put(&chunk)
		if !ok {
			if st := e.sink.Status(); !st.OK() {
				e.st = *st
			}
			return false
		}
		if n <= 0 {
			e.st.Set(status.PrematureEOF, "sink accepted 0 bytes")
			return false
		}
		remaining = remaining[n:]
	}
	e.frames[0].buf = e.frames[0].buf[:0]
	return true
}

// encodeVarintKind, encodeFixed32Kind, and encodeFixed64Kind are the
// inverse of decoder's interpretVarint/interpretFixed32/interpretFixed64:
// given a [stream.Value] tagged by kind, recover the raw wire encoding.
func encodeVarintKind(k protoreflect.Kind, v stream.Value) uint64 {
	switch k {
	case protoreflect.Sint32Kind:
		return uint64(wire.ZigZagEncode32(int32(v.Int)))
	case protoreflect.Sint64Kind:
		return wire.ZigZagEncode64(v.Int)
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind:
		return v.Uint
	default: // int32, int64, bool, enum: already sign-extended into v.Int
		return uint64(v.Int)
	}
}

func encodeFixed32Kind(k protoreflect.Kind, v stream.Value) uint32 {
	switch k {
	case protoreflect.FloatKind:
		return math.Float32bits(v.Float32)
	case protoreflect.Sfixed32Kind:
		return uint32(v.Int)
	default: // fixed32
		return uint32(v.Uint)
	}
}

func encodeFixed64Kind(k protoreflect.Kind, v stream.Value) uint64 {
	switch k {
	case protoreflect.DoubleKind:
		return math.Float64bits(v.Float64)
	case protoreflect.Sfixed64Kind:
		return uint64(v.Int)
	default: // fixed64
		return v.Uint
	}
}
