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

package zc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/pbcore/internal/zc"
)

func TestAliasPromotesToOwnedOnAppend(t *testing.T) {
	t.Parallel()

	src := []byte("hello")
	s := zc.NewAlias(src)
	require.Equal(t, zc.Alias, s.Mode())

	s.Append([]byte(" world"))
	require.Equal(t, zc.Owned, s.Mode())
	require.Equal(t, "hello world", string(s.Bytes()))

	// Mutating src must not affect the now-owned copy.
	src[0] = 'H'
	require.Equal(t, "hello world", string(s.Bytes()))
}

func TestRecycleRetainsOwnedCapacity(t *testing.T) {
	t.Parallel()

	s := zc.NewOwned(16)
	s.Append([]byte("abc"))
	require.Equal(t, 3, s.Len())

	s.Recycle()
	require.Equal(t, 0, s.Len())
	require.Equal(t, zc.Owned, s.Mode())

	s.Append([]byte("xy"))
	require.Equal(t, "xy", string(s.Bytes()))
}

func TestRecycleDetachesAlias(t *testing.T) {
	t.Parallel()

	s := zc.NewAlias([]byte("borrowed"))
	s.Recycle()
	require.Equal(t, zc.Owned, s.Mode())
	require.Equal(t, 0, s.Len())
}

func TestStaticReleaseIsNoop(t *testing.T) {
	t.Parallel()

	s := zc.NewStatic([]byte("const"))
	s.Release()
	s.Release()
	require.Equal(t, "const", string(s.Bytes()))
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	t.Parallel()

	s := zc.NewOwned(4)
	s.Append([]byte("z"))
	s.Acquire()
	s.Release()
	// Still alive: one more Release is needed to free it, and Bytes must
	// not panic before that.
	require.Equal(t, "z", string(s.Bytes()))
	s.Release()
}
