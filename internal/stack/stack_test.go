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

package stack_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/pbcore/internal/stack"
	"github.com/bufbuild/pbcore/status"
)

func TestPushPopDepth(t *testing.T) {
	t.Parallel()

	s := stack.New[int](4)
	require.Equal(t, 0, s.Depth())

	var st status.Status
	f, ok := s.Push(10, 1, false, &st)
	require.True(t, ok)
	require.True(t, st.OK())
	f.Data = 42
	require.Equal(t, 1, s.Depth())
	require.Equal(t, 42, s.Top().Data)

	s.Pop()
	require.Equal(t, 0, s.Depth())
}

func TestNestingOverflow(t *testing.T) {
	t.Parallel()

	s := stack.New[struct{}](2)
	var st status.Status

	_, ok := s.Push(0, 0, false, &st)
	require.True(t, ok)
	_, ok = s.Push(0, 0, false, &st)
	require.True(t, ok)

	_, ok = s.Push(0, 0, false, &st)
	require.False(t, ok)
	require.Equal(t, status.NestingOverflow, st.Code)
}

func TestReuseAcrossReset(t *testing.T) {
	t.Parallel()

	s := stack.New[int](4)
	var st status.Status

	f, _ := s.Push(5, 0, false, &st)
	f.Data = 7
	s.Reset()
	require.Equal(t, 0, s.Depth())

	f2, ok := s.Push(1, 0, false, &st)
	require.True(t, ok)
	require.Equal(t, 0, f2.Data, "a freshly pushed frame must not leak the previous occupant's data")
}

func TestFramesOutermostFirst(t *testing.T) {
	t.Parallel()

	s := stack.New[int](4)
	var st status.Status
	for i := 1; i <= 3; i++ {
		f, ok := s.Push(0, int32(i), false, &st)
		require.True(t, ok)
		f.Data = i
	}

	frames := s.Frames()
	require.Len(t, frames, 3)
	require.Equal(t, []int{1, 2, 3}, []int{frames[0].Data, frames[1].Data, frames[2].Data})
}
