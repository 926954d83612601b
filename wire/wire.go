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

// Package wire holds the low-level tag/varint/zigzag primitives shared by
// the wire decoder (component D) and the callback parser (component E).
//
// Tag and varint encoding are delegated to
// [google.golang.org/protobuf/encoding/protowire], the same package the
// teacher uses in internal/tdp/tag.go and parse.go, rather than
// reimplementing base-128 varint math by hand.
package wire

import (
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Type re-exports protowire's wire-type enum so callers of this package
// never need to import protowire directly.
type Type = protowire.Type

// Number re-exports protowire's field-number type.
type Number = protowire.Number

// The six wire types defined in spec §6.
const (
	Varint     = protowire.VarintType
	Fixed64    = protowire.Fixed64Type
	Delimited  = protowire.BytesType
	StartGroup = protowire.StartGroupType
	EndGroup   = protowire.EndGroupType
	Fixed32    = protowire.Fixed32Type
)

// DecodeTag splits a raw tag varint into a field number and wire type.
func DecodeTag(tag uint64) (Number, Type) {
	return protowire.DecodeTag(tag)
}

// EncodeTag packs a field number and wire type into a raw tag varint.
func EncodeTag(n Number, t Type) uint64 {
	return protowire.EncodeTag(n, t)
}

// ConsumeVarint parses a varint at the start of b, returning its decoded
// value and the number of bytes consumed, or a negative count on error
// (protowire's convention: -1 means "ran out of input", a more negative
// value encodes a different protowire.ParseError).
func ConsumeVarint(b []byte) (v uint64, n int) {
	return protowire.ConsumeVarint(b)
}

// ConsumeTag parses a tag varint at the start of b.
func ConsumeTag(b []byte) (Number, Type, int) {
	return protowire.ConsumeTag(b)
}

// ConsumeFixed32/ConsumeFixed64 parse little-endian fixed-width values.
func ConsumeFixed32(b []byte) (uint32, int) { return protowire.ConsumeFixed32(b) }
func ConsumeFixed64(b []byte) (uint64, int) { return protowire.ConsumeFixed64(b) }

// ZigZagDecode32/64 undo zig-zag encoding for sint32/sint64 fields:
// (n >> 1) ^ -(n & 1), per spec §6.
func ZigZagDecode32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

func ZigZagDecode64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ZigZagEncode32/64 are the inverse of the above, used by the encoder to
// write sint32/sint64 values.
func ZigZagEncode32(v int32) uint32 {
	return (uint32(v) << 1) ^ uint32(v>>31)
}

func ZigZagEncode64(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// IsTruncated reports whether a negative consume-count returned by the
// Consume* functions above indicates the input simply ran out, as opposed
// to being malformed in some other way (bad field number, varint
// overflow, ...). A truncated read means "come back with more bytes"; any
// other negative count is a hard parse failure.
func IsTruncated(n int) bool {
	return n < 0 && protowire.ParseError(n) == io.ErrUnexpectedEOF
}

// AppendTag, AppendVarint, AppendFixed32, AppendFixed64, and AppendBytes
// are the write-side counterparts of the Consume* functions above, used
// by [encoder.Encoder] (spec §4.C's sink) to serialize exactly the
// encodings the wire decoder parses.
func AppendTag(b []byte, n Number, t Type) []byte {
	return protowire.AppendTag(b, n, t)
}

func AppendVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

func AppendFixed32(b []byte, v uint32) []byte {
	return protowire.AppendFixed32(b, v)
}

func AppendFixed64(b []byte, v uint64) []byte {
	return protowire.AppendFixed64(b, v)
}

func AppendBytes(b []byte, v []byte) []byte {
	return protowire.AppendBytes(b, v)
}
