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

package decoder_test

import (
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/decoder"
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

func TestDecodeScalarAndString(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	a := schema.NewField(1, "a", protoreflect.Int32Kind, protoreflect.Optional)
	b := schema.NewField(2, "b", protoreflect.StringKind, protoreflect.Optional)
	require.Nil(t, msg.AddField(a))
	require.Nil(t, msg.AddField(b))
	msg.Seal()

	data := compile(t, `1: 42 2: {"hello"}`)

	d := decoder.New(stream.NewSliceSrc(data), msg, decoder.DefaultMaxDepth)

	fd := d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(1), int32(fd.Number()))
	v, ok := d.GetVal()
	require.True(t, ok, d.Status().Error())
	require.EqualValues(t, 42, v.Int)

	fd = d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(2), int32(fd.Number()))
	str, ok := d.GetStr()
	require.True(t, ok, d.Status().Error())
	require.Equal(t, "hello", string(str.Bytes()))

	require.Nil(t, d.GetDef())
	require.True(t, d.Status().OK())
}

func TestDecodePackedRepeated(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	nums := schema.NewField(3, "nums", protoreflect.Uint32Kind, protoreflect.Repeated)
	require.Nil(t, msg.AddField(nums))
	msg.Seal()

	data := compile(t, `3: {1 2 3}`)

	d := decoder.New(stream.NewSliceSrc(data), msg, decoder.DefaultMaxDepth)

	var got []uint64
	for {
		fd := d.GetDef()
		if fd == nil {
			break
		}
		v, ok := d.GetVal()
		require.True(t, ok, d.Status().Error())
		got = append(got, v.Uint)
	}
	require.True(t, d.Status().OK())
	require.Equal(t, []uint64{1, 2, 3}, got)
}

func TestDecodeNestedMessage(t *testing.T) {
	t.Parallel()

	inner := schema.NewMessage("test.Inner")
	x := schema.NewField(1, "x", protoreflect.Int32Kind, protoreflect.Optional)
	require.Nil(t, inner.AddField(x))
	inner.Seal()

	outer := schema.NewMessage("test.Outer")
	innerField := schema.NewField(1, "inner", protoreflect.MessageKind, protoreflect.Optional)
	innerField.SetMessage(inner)
	require.Nil(t, outer.AddField(innerField))
	outer.Seal()

	data := compile(t, `1: {1: 7}`)

	d := decoder.New(stream.NewSliceSrc(data), outer, decoder.DefaultMaxDepth)

	fd := d.GetDef()
	require.NotNil(t, fd)
	require.True(t, d.StartMsg())

	innerFd := d.GetDef()
	require.NotNil(t, innerFd)
	v, ok := d.GetVal()
	require.True(t, ok)
	require.EqualValues(t, 7, v.Int)
	require.Nil(t, d.GetDef())

	require.True(t, d.EndMsg())
	require.Nil(t, d.GetDef())
	require.True(t, d.Status().OK())
}

func TestDecodeTruncatedVarintIsPrematureEOF(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	a := schema.NewField(1, "a", protoreflect.Int32Kind, protoreflect.Optional)
	require.Nil(t, msg.AddField(a))
	msg.Seal()

	full := compile(t, `1: 300`)
	truncated := full[:len(full)-1]

	d := decoder.New(stream.NewSliceSrc(truncated), msg, decoder.DefaultMaxDepth)
	fd := d.GetDef()
	require.NotNil(t, fd)
	_, ok := d.GetVal()
	require.False(t, ok)
	require.False(t, d.Status().OK())
}

func TestDecodeUnknownFieldIsSkipped(t *testing.T) {
	t.Parallel()

	msg := schema.NewMessage("test.M")
	a := schema.NewField(2, "a", protoreflect.Int32Kind, protoreflect.Optional)
	require.Nil(t, msg.AddField(a))
	msg.Seal()

	// Field 1 is not declared on msg; the decoder must skip it and still
	// surface field 2.
	data := compile(t, `1: {"unused"} 2: 9`)

	d := decoder.New(stream.NewSliceSrc(data), msg, decoder.DefaultMaxDepth)
	fd := d.GetDef()
	require.NotNil(t, fd)
	require.Equal(t, int32(2), int32(fd.Number()))
	v, ok := d.GetVal()
	require.True(t, ok, d.Status().Error())
	require.EqualValues(t, 9, v.Int)
}
