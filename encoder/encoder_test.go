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

package encoder_test

import (
	"bytes"
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/decoder"
	"github.com/bufbuild/pbcore/encoder"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/schema"
	"github.com/bufbuild/pbcore/stream"
)

func compile(t *testing.T, text string) []byte {
	t.Helper()
	s := protoscope.NewScanner(text)
	data, err := s.Exec()
	require.NoError(t, err)
	return data
}

// TestEncodeScalarAndString builds a message by hand through the Sink
// interface and confirms the decoder reads back what was written.
func TestEncodeScalarAndString(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	a := schema.NewField(1, "a", protoreflect.Int32Kind, protoreflect.Optional)
	b := schema.NewField(2, "b", protoreflect.StringKind, protoreflect.Optional)
	require.Nil(t, msg.AddField(a))
	require.Nil(t, msg.AddField(b))
	msg.Seal()

	var out bytes.Buffer
	enc := encoder.New(stream.NewWriterSink(&out))
	require.True(t, enc.PutDef(a))
	require.True(t, enc.PutVal(stream.Value{Int: 150}))
	require.True(t, enc.PutDef(b))
	hello := zc.NewAlias([]byte("hello"))
	require.True(t, enc.PutStr(hello))
	require.True(t, enc.Flush())

	d := decoder.New(stream.NewSliceSrc(out.Bytes()), msg, decoder.DefaultMaxDepth)

	fd := d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(1), int32(fd.Number()))
	v, ok := d.GetVal()
	require.True(t, ok, d.Status().Error())
	require.EqualValues(t, 150, v.Int)

	fd = d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(2), int32(fd.Number()))
	gotStr, ok := d.GetStr()
	require.True(t, ok, d.Status().Error())
	require.Equal(t, "hello", string(gotStr.Bytes()))

	require.Nil(t, d.GetDef())
	require.True(t, d.Status().OK())
}

// TestRoundTripNestedViaStreamData decodes a nested message with
// [decoder.Decoder], pumps it through [stream.StreamData] into an
// [encoder.Encoder], and confirms decoding the re-serialized bytes
// produces the same values: spec §8's "decode(encode(x, M), M) ≡ x."
func TestRoundTripNestedViaStreamData(t *testing.T) {
	t.Parallel()

	inner := schema.NewMessage("test.Inner")
	x := schema.NewField(1, "x", protoreflect.Int32Kind, protoreflect.Optional)
	require.Nil(t, inner.AddField(x))
	inner.Seal()

	outer := schema.NewMessage("test.Outer")
	innerField := schema.NewField(3, "inner", protoreflect.MessageKind, protoreflect.Optional)
	innerField.SetMessage(inner)
	name := schema.NewField(1, "name", protoreflect.StringKind, protoreflect.Optional)
	require.Nil(t, outer.AddField(name))
	require.Nil(t, outer.AddField(innerField))
	outer.Seal()

	original := compile(t, `1: {"widget"} 3: {1: 99}`)

	src := decoder.New(stream.NewSliceSrc(original), outer, decoder.DefaultMaxDepth)
	var out bytes.Buffer
	sink := encoder.New(stream.NewWriterSink(&out))
	require.True(t, stream.StreamData(src, sink), src.Status().Error())
	require.True(t, sink.Flush())

	d := decoder.New(stream.NewSliceSrc(out.Bytes()), outer, decoder.DefaultMaxDepth)

	fd := d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(1), int32(fd.Number()))
	nameStr, ok := d.GetStr()
	require.True(t, ok, d.Status().Error())
	require.Equal(t, "widget", string(nameStr.Bytes()))

	fd = d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(3), int32(fd.Number()))
	require.True(t, d.StartMsg())

	innerFd := d.GetDef()
	require.NotNil(t, innerFd)
	v, ok := d.GetVal()
	require.True(t, ok, d.Status().Error())
	require.EqualValues(t, 99, v.Int)
	require.Nil(t, d.GetDef())
	require.True(t, d.EndMsg())

	require.Nil(t, d.GetDef())
	require.True(t, d.Status().OK())
}

// TestRoundTripPackedBecomesUnpacked confirms that a packed-repeated
// field pumped through StreamData/Encoder round-trips to the same
// values even though the encoder always emits one tag per element: spec
// §8 only requires value equivalence "modulo field ordering," and
// non-packed repeated scalars are a standard-compliant wire encoding of
// the same logical field.
func TestRoundTripPackedBecomesUnpacked(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	nums := schema.NewField(4, "nums", protoreflect.Int32Kind, protoreflect.Repeated)
	require.Nil(t, msg.AddField(nums))
	msg.Seal()

	original := compile(t, `4: {3 270 86942}`)

	src := decoder.New(stream.NewSliceSrc(original), msg, decoder.DefaultMaxDepth)
	var out bytes.Buffer
	sink := encoder.New(stream.NewWriterSink(&out))
	require.True(t, stream.StreamData(src, sink), src.Status().Error())
	require.True(t, sink.Flush())

	d := decoder.New(stream.NewSliceSrc(out.Bytes()), msg, decoder.DefaultMaxDepth)
	var got []int64
	for {
		fd := d.GetDef()
		if fd == nil {
			break
		}
		v, ok := d.GetVal()
		require.True(t, ok, d.Status().Error())
		got = append(got, v.Int)
	}
	require.True(t, d.Status().OK())
	require.Equal(t, []int64{3, 270, 86942}, got)
}
