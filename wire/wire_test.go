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

package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/pbcore/wire"
)

func TestZigZagRoundTrip32(t *testing.T) {
	t.Parallel()

	for _, v := range []int32{0, 1, -1, 2, -2, 2147483647, -2147483648} {
		require.Equal(t, v, wire.ZigZagDecode32(wire.ZigZagEncode32(v)), "v=%d", v)
	}
}

func TestZigZagRoundTrip64(t *testing.T) {
	t.Parallel()

	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		require.Equal(t, v, wire.ZigZagDecode64(wire.ZigZagEncode64(v)))
	}
}

func TestZigZagKnownValues(t *testing.T) {
	t.Parallel()

	// Canonical table from the protobuf encoding spec.
	require.Equal(t, uint32(0), wire.ZigZagEncode32(0))
	require.Equal(t, uint32(1), wire.ZigZagEncode32(-1))
	require.Equal(t, uint32(2), wire.ZigZagEncode32(1))
	require.Equal(t, uint32(3), wire.ZigZagEncode32(-2))
}

func TestTagRoundTrip(t *testing.T) {
	t.Parallel()

	tag := wire.EncodeTag(7, wire.Delimited)
	num, typ := wire.DecodeTag(tag)
	require.Equal(t, wire.Number(7), num)
	require.Equal(t, wire.Delimited, typ)
}

func TestIsTruncated(t *testing.T) {
	t.Parallel()

	// An empty buffer is the canonical "ran out of input" case.
	_, n := wire.ConsumeVarint(nil)
	require.True(t, wire.IsTruncated(n))

	// A 10-byte varint that never terminates is malformed, not truncated:
	// protowire reports ErrOverflow, the other kind of negative count.
	overflowing := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	_, n = wire.ConsumeVarint(overflowing)
	require.False(t, wire.IsTruncated(n))
}
