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

package stream_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/stream"
)

func TestSliceSrcGetExactLength(t *testing.T) {
	t.Parallel()

	src := stream.NewSliceSrc([]byte("hello world"))

	var s zc.Str
	require.True(t, src.Get(&s, 5))
	require.Equal(t, "hello", string(s.Bytes()))

	s.Recycle()
	require.True(t, src.Get(&s, 1))
	require.Equal(t, " ", string(s.Bytes()))
}

func TestSliceSrcGetPastEndFailsCleanly(t *testing.T) {
	t.Parallel()

	src := stream.NewSliceSrc([]byte("abc"))

	var s zc.Str
	require.False(t, src.Get(&s, 10))
	require.True(t, src.EOF())

	// A subsequent in-range call must still work: a failed over-read must
	// not have silently advanced the cursor or consumed partial bytes.
	require.True(t, src.Get(&s, 3))
	require.Equal(t, "abc", string(s.Bytes()))
}

func TestSliceSrcAppendAccumulates(t *testing.T) {
	t.Parallel()

	src := stream.NewSliceSrc([]byte("abcdef"))

	var s zc.Str
	s.Recycle()
	require.True(t, src.Append(&s, 2))
	require.True(t, src.Append(&s, 2))
	require.Equal(t, "abcd", string(s.Bytes()))

	require.False(t, src.Append(&s, 100))
	require.True(t, src.EOF())
}

func TestWriterSinkPutWritesThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := stream.NewWriterSink(&buf)

	s := zc.NewAlias([]byte("payload"))
	n, ok := sink.Put(s)
	require.True(t, ok)
	require.Equal(t, len("payload"), n)
	require.Equal(t, "payload", buf.String())
}
