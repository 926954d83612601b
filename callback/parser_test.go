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

package callback_test

import (
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/callback"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// recorder is a [callback.Handler] that logs every callback fired, for
// assertions against an expected event sequence.
type recorder struct {
	declare func(num protowire.Number, wt wire.Type) (callback.Kind, any)

	values []stream.Value
	strs   []string
	starts []any
	ends   []any
}

func (r *recorder) TagCB(num protowire.Number, wt wire.Type) (callback.Kind, any) {
	return r.declare(num, wt)
}

func (r *recorder) ValueCB(v stream.Value, cookie any) { r.values = append(r.values, v) }

func (r *recorder) StrCB(s *zc.Str, cookie any) { r.strs = append(r.strs, string(s.Bytes())) }

func (r *recorder) SubmsgStartCB(cookie any) { r.starts = append(r.starts, cookie) }

func (r *recorder) SubmsgEndCB(cookie any) { r.ends = append(r.ends, cookie) }

var _ callback.Handler = (*recorder)(nil)

func compile(t *testing.T, text string) []byte {
	t.Helper()
	s := protoscope.NewScanner(text)
	data, err := s.Exec()
	require.NoError(t, err)
	return data
}

func TestParserScalarsAndString(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		switch num {
		case 1:
			return protoreflect.Int32Kind, "a"
		case 2:
			return protoreflect.StringKind, "b"
		default:
			return callback.Skip, nil
		}
	}}

	data := compile(t, `1: 42 2: {"hi"}`)
	p := callback.NewParser(h, 64)
	n, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n)

	require.Len(t, h.values, 1)
	require.EqualValues(t, 42, h.values[0].Int)
	require.Equal(t, []string{"hi"}, h.strs)
}

func TestParserResumesAcrossTwoCalls(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		return protoreflect.Int32Kind, nil
	}}

	data := compile(t, `1: 300`)
	require.Greater(t, len(data), 2, "fixture must span more than one varint byte to exercise resumability")

	p := callback.NewParser(h, 64)

	// Feed only the first two bytes: the tag plus the first, continuation
	// bearing byte of the multi-byte varint. No complete element is
	// available yet, so nothing should be consumed or reported.
	n1, ok := p.Parse(data[:2])
	require.True(t, ok, p.Status().Error())
	require.Equal(t, 0, n1)
	require.Empty(t, h.values)

	// The caller re-presents the unconsumed prefix with the rest of the
	// stream appended, per the resumability contract.
	n2, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n2)
	require.Len(t, h.values, 1)
	require.EqualValues(t, 300, h.values[0].Int)
}

func TestParserPackedRepeated(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		return protoreflect.Uint32Kind, nil
	}}

	data := compile(t, `3: {10 20 30}`)
	p := callback.NewParser(h, 64)
	n, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n)

	require.Len(t, h.values, 3)
	require.EqualValues(t, 10, h.values[0].Uint)
	require.EqualValues(t, 20, h.values[1].Uint)
	require.EqualValues(t, 30, h.values[2].Uint)
}

func TestParserNestedMessage(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		switch num {
		case 1:
			return protoreflect.MessageKind, "inner"
		case 2:
			return protoreflect.Int32Kind, "x"
		default:
			return callback.Skip, nil
		}
	}}

	data := compile(t, `1: {2: 7}`)
	p := callback.NewParser(h, 64)
	n, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n)

	require.Equal(t, []any{"inner"}, h.starts)
	require.Equal(t, []any{"inner"}, h.ends)
	require.Len(t, h.values, 1)
	require.EqualValues(t, 7, h.values[0].Int)
}

func TestParserSkippedFieldsOfEachWireType(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		if num == 9 {
			return protoreflect.Int32Kind, nil
		}
		return callback.Skip, nil
	}}

	var data []byte
	data = protowire.AppendTag(data, 1, protowire.VarintType)
	data = protowire.AppendVarint(data, 5)
	data = protowire.AppendTag(data, 2, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("skip me"))
	data = protowire.AppendTag(data, 3, protowire.Fixed32Type)
	data = protowire.AppendFixed32(data, 7)
	data = protowire.AppendTag(data, 4, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 9)
	data = protowire.AppendTag(data, 9, protowire.VarintType)
	data = protowire.AppendVarint(data, 99)

	p := callback.NewParser(h, 64)
	n, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n)

	require.Len(t, h.values, 1)
	require.EqualValues(t, 99, h.values[0].Int)
	require.Empty(t, h.strs)
}

func TestParserEndGroupFieldNumberMismatchIsHardError(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		return protoreflect.GroupKind, "g"
	}}

	var data []byte
	data = protowire.AppendTag(data, 5, protowire.StartGroupType)
	data = protowire.AppendTag(data, 6, protowire.EndGroupType)

	p := callback.NewParser(h, 64)
	_, ok := p.Parse(data)
	require.False(t, ok)
	require.False(t, p.Status().OK())
}

func TestParserGroupRoundTrip(t *testing.T) {
	t.Parallel()

	h := &recorder{declare: func(num protowire.Number, wt wire.Type) (callback.Kind, any) {
		switch num {
		case 5:
			return protoreflect.GroupKind, "g"
		case 1:
			return protoreflect.Int32Kind, "x"
		default:
			return callback.Skip, nil
		}
	}}

	var data []byte
	data = protowire.AppendTag(data, 5, protowire.StartGroupType)
	data = protowire.AppendTag(data, 1, protowire.VarintType)
	data = protowire.AppendVarint(data, 11)
	data = protowire.AppendTag(data, 5, protowire.EndGroupType)

	p := callback.NewParser(h, 64)
	n, ok := p.Parse(data)
	require.True(t, ok, p.Status().Error())
	require.Equal(t, len(data), n)
	require.Equal(t, []any{"g"}, h.starts)
	require.Equal(t, []any{"g"}, h.ends)
	require.Len(t, h.values, 1)
	require.EqualValues(t, 11, h.values[0].Int)
}
