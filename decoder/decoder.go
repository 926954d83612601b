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

// Package decoder implements component D: a pull-based wire decoder that
// produces a [stream.Src] over a [stream.ByteSrc], walking an arbitrary
// message described by a [desc.Message].
//
// This generalizes the teacher's internal/tdp decode loop (parse.go,
// field_*.go), which is specialized per wire type and per Go field layout
// by a compile step, down to one generic loop driven by descriptor
// lookups instead of generated code — the spec's explicit non-goal is
// "reflection-free generated accessors" (hyperpb's whole reason for
// being), so this package is the part of the teacher's design that is
// deliberately NOT carried forward in its specialized form.
package decoder

import (
	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/internal/debug"
	"github.com/bufbuild/pbcore/internal/stack"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/status"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// DefaultMaxDepth is the default maximum submessage nesting depth (spec
// §6: "maximum submessage nesting depth, default 64").
const DefaultMaxDepth = 64

// maxVarintBytes is the longest a base-128 varint may legally be (spec
// §4.D: "up to 10 bytes").
const maxVarintBytes = 10

// frameData is the per-submessage-frame bookkeeping the decoder's stack
// carries: which message descriptor was in scope before this frame was
// entered, restored on exit.
type frameData struct {
	msg desc.Message
}

// Decoder is a [stream.Src] that pulls tagged values out of a
// [stream.ByteSrc] by walking message descriptors, per spec §4.D.
type Decoder struct {
	src stream.ByteSrc
	st  status.Status

	frames *stack.Stack[frameData]
	msg    desc.Message // descriptor in scope at the current depth
	pos    int          // logical byte offset consumed so far

	cur     desc.Field // field returned by the most recent GetDef
	curWire wire.Type  // wire type the tag actually carried

	// packedEnd, when non-zero, is the byte offset at which the current
	// packed-primitive span ends; while positive, GetDef/GetVal re-read
	// cur rather than pulling a new tag.
	packedEnd int

	buf zc.Str // one-byte scratch string recycled for every varint/tag byte
	eof bool
}

var _ stream.Src = (*Decoder)(nil)

// New creates a decoder that reads tagged values for msg out of src,
// enforcing maxDepth nested submessages/groups (spec §6; pass
// [DefaultMaxDepth] for the spec's default of 64).
func New(src stream.ByteSrc, msg desc.Message, maxDepth int) *Decoder {
	return &Decoder{
		src:    src,
		msg:    msg,
		frames: stack.New[frameData](maxDepth),
	}
}

// Status implements [stream.Src].
func (d *Decoder) Status() *status.Status { return &d.st }

// EOF implements [stream.Src].
func (d *Decoder) EOF() bool { return d.eof }

// atSubmsgEnd reports whether pos has reached the innermost open frame's
// end_offset, meaning the current submessage scope is exhausted (spec
// §4.D: "when the byte offset equals the top frame's end_offset, the
// decoder pops the frame and returns end of submessage").
func (d *Decoder) atSubmsgEnd() bool {
	top := d.frames.Top()
	return top != nil && !top.Group && d.pos >= top.EndOffset
}

// readByte pulls exactly one byte from src, advancing pos. Returns false
// on clean end of stream (without touching st) so callers at a legal
// stream boundary can distinguish that from a real failure.
func (d *Decoder) readByte() (byte, bool) {
	d.buf.Recycle()
	if !d.src.Get(&d.buf, 1) {
		d.eof = d.src.EOF()
		if !d.eof {
			if st := d.src.Status(); !st.OK() {
				d.st = *st
			}
		}
		return 0, false
	}
	d.eof = false
	b := d.buf.Bytes()[0]
	d.pos++
	return b, true
}

// readVarint decodes a base-128 little-endian varint one byte at a time,
// per spec §4.D ("up to 10 bytes; the high bit is the continuation
// bit"). n reports how many bytes were consumed before failure, so a
// caller at a legal message boundary can tell a clean end of stream
// (n == 0) apart from a truncation mid-varint (n > 0).
func (d *Decoder) readVarint() (v uint64, n int, ok bool) {
	for n = 0; n < maxVarintBytes; n++ {
		b, got := d.readByte()
		if !got {
			return 0, n, false
		}
		v |= uint64(b&0x7f) << (7 * uint(n))
		if b&0x80 == 0 {
			return v, n + 1, true
		}
	}
	d.st.SetAt(status.UnterminatedVarint, d.pos, "varint exceeds %d bytes", maxVarintBytes)
	return 0, n, false
}

// mustVarint reads a varint where any failure to do so (even before the
// first byte) means the input is truncated, since a varint is expected
// here by the grammar.
func (d *Decoder) mustVarint(what string) (uint64, bool) {
	v, _, ok := d.readVarint()
	if !ok && d.st.OK() {
		d.st.SetAt(status.PrematureEOF, d.pos, "truncated %s", what)
	}
	return v, ok
}

// readExact fills str with exactly n bytes, owned (copied) rather than
// aliased, since the caller may need to retain it past further reads.
func (d *Decoder) readExact(str *zc.Str, n int) bool {
	str.Recycle()
	if !d.src.Append(str, n) {
		d.eof = d.src.EOF()
		if !d.eof {
			if st := d.src.Status(); !st.OK() {
				d.st = *st
			}
		}
		return false
	}
	d.eof = false
	d.pos += n
	return true
}

// GetDef implements [stream.Src].
func (d *Decoder) GetDef() desc.Field {
	if !d.st.OK() {
		return nil
	}

	if d.packedEnd > 0 && d.pos < d.packedEnd {
		return d.cur
	}
	d.packedEnd = 0

	if d.atSubmsgEnd() {
		return nil
	}

	tagVal, n, ok := d.readVarint()
	if !ok {
		if n == 0 && d.frames.Depth() == 0 && d.src.EOF() {
			return nil
		}
		if d.st.OK() {
			d.st.SetAt(status.PrematureEOF, d.pos, "truncated tag")
		}
		return nil
	}
	num, wt := wire.DecodeTag(tagVal)

	if wt == wire.EndGroup {
		top := d.frames.Top()
		if top == nil || !top.Group || int32(num) != top.FieldNumber {
			d.st.SetAt(status.GroupMismatch, d.pos, "unmatched END_GROUP for field %d", num)
			return nil
		}
		// The group's contents end here. The frame stays open until the
		// caller's EndMsg, as for a length-delimited submessage: it becomes
		// a bounded frame ending at this position, so GetDef keeps
		// reporting end of scope and EndMsg pops it without skipping.
		top.Group = false
		top.EndOffset = d.pos
		return nil
	}

	fd := d.msg.ByNumber(num)
	if fd == nil {
		if !d.skipByWireType(wt) {
			return nil
		}
		return d.GetDef()
	}

	if !d.wireTypeOK(fd, wt) {
		d.st.SetAt(status.BadWireType, d.pos, "field %d: wire type %v incompatible with declared type", num, wt)
		return nil
	}

	if wt == wire.Delimited && fd.IsPackable() {
		// A packed-repeated primitive span: a single DELIMITED-framed
		// blob containing back-to-back base encodings of the field's
		// declared (non-delimited) wire type, per spec §4.D.
		length, ok := d.mustVarint("packed length")
		if !ok {
			return nil
		}
		d.packedEnd = d.pos + int(length)
		d.cur = fd
		d.curWire = fd.WireType()
		if d.pos >= d.packedEnd {
			// Zero-length packed span: nothing to iterate.
			d.packedEnd = 0
			return d.GetDef()
		}
		return fd
	}

	d.cur = fd
	d.curWire = wt
	debug.Log("decoder.GetDef", "field=%d wire=%v pos=%d", num, wt, d.pos)
	return fd
}

// wireTypeOK implements spec §4.D's type-compatibility rule: the wire
// type must equal the field's expected wire type, except a DELIMITED
// span is additionally accepted for a packable field (packed-repeated
// primitive), and groups must match START_GROUP exactly.
func (d *Decoder) wireTypeOK(fd desc.Field, wt wire.Type) bool {
	if wt == fd.WireType() {
		return true
	}
	return wt == wire.Delimited && fd.IsPackable()
}

// skipByWireType discards the value following an unknown field number,
// per spec §4.D: "unknown field numbers cause skipval semantics: the
// value is consumed per its wire type and discarded."
func (d *Decoder) skipByWireType(wt wire.Type) bool {
	switch wt {
	case wire.Varint:
		_, ok := d.mustVarint("varint")
		return ok
	case wire.Fixed64:
		return d.skipFixed(8)
	case wire.Fixed32:
		return d.skipFixed(4)
	case wire.Delimited:
		return d.skipDelimited()
	case wire.StartGroup:
		return d.skipGroup()
	default:
		d.st.SetAt(status.BadWireType, d.pos, "unsupported wire type %v", wt)
		return false
	}
}

func (d *Decoder) skipFixed(n int) bool {
	var scratch zc.Str
	if !d.readExact(&scratch, n) {
		if d.st.OK() {
			d.st.SetAt(status.PrematureEOF, d.pos, "truncated fixed%d value", n*8)
		}
		return false
	}
	return true
}

func (d *Decoder) skipDelimited() bool {
	length, ok := d.mustVarint("length varint")
	if !ok {
		return false
	}
	var scratch zc.Str
	if !d.readExact(&scratch, int(length)) {
		if d.st.OK() {
			d.st.SetAt(status.PrematureEOF, d.pos, "truncated delimited value of length %d", length)
		}
		return false
	}
	return true
}

// skipGroup discards an unknown group's contents up to the END_GROUP that
// balances its START_GROUP. Nesting is tracked by depth only; the field
// numbers on the END_GROUP tags are not compared.
func (d *Decoder) skipGroup() bool {
	depth := 1
	for depth > 0 {
		tagVal, ok := d.mustVarint("tag in skipped group")
		if !ok {
			return false
		}
		_, wt := wire.DecodeTag(tagVal)
		switch wt {
		case wire.EndGroup:
			depth--
		case wire.StartGroup:
			depth++
		default:
			if !d.skipByWireType(wt) {
				return false
			}
		}
	}
	return true
}

// SkipVal implements [stream.Src].
func (d *Decoder) SkipVal() bool {
	if d.cur == nil {
		d.st.Set(status.BadWireType, "SkipVal without a preceding GetDef")
		return false
	}
	defer func() { d.cur = nil }()
	return d.skipByWireType(d.curWire)
}

// GetVal implements [stream.Src].
func (d *Decoder) GetVal() (stream.Value, bool) {
	if d.cur == nil {
		d.st.Set(status.BadWireType, "GetVal without a preceding GetDef")
		return stream.Value{}, false
	}

	// Mid-packed-span reads leave cur in place so the next GetDef can
	// report the same field again; any other read is one-shot.
	if d.packedEnd == 0 {
		defer func() { d.cur = nil }()
	}

	var v stream.Value
	var ok bool
	switch d.curWire {
	case wire.Varint:
		v, ok = d.getVarintVal()
	case wire.Fixed64:
		v, ok = d.getFixedVal(8)
	case wire.Fixed32:
		v, ok = d.getFixedVal(4)
	default:
		d.st.SetAt(status.BadWireType, d.pos, "GetVal called for non-scalar wire type %v", d.curWire)
		return stream.Value{}, false
	}

	if ok && d.packedEnd > 0 && d.pos >= d.packedEnd {
		d.packedEnd = 0
		d.cur = nil
	}
	return v, ok
}

func (d *Decoder) getVarintVal() (stream.Value, bool) {
	raw, ok := d.mustVarint("varint value")
	if !ok {
		return stream.Value{}, false
	}
	return interpretVarint(d.cur, raw), true
}

func (d *Decoder) getFixedVal(n int) (stream.Value, bool) {
	var scratch zc.Str
	if !d.readExact(&scratch, n) {
		if d.st.OK() {
			d.st.SetAt(status.PrematureEOF, d.pos, "truncated fixed%d value", n*8)
		}
		return stream.Value{}, false
	}
	if n == 4 {
		raw, _ := wire.ConsumeFixed32(scratch.Bytes())
		return interpretFixed32(d.cur, raw), true
	}
	raw, _ := wire.ConsumeFixed64(scratch.Bytes())
	return interpretFixed64(d.cur, raw), true
}

// GetStr implements [stream.Src].
func (d *Decoder) GetStr() (*zc.Str, bool) {
	if d.cur == nil {
		d.st.Set(status.BadWireType, "GetStr without a preceding GetDef")
		return nil, false
	}

	if d.curWire != wire.Delimited {
		d.st.SetAt(status.BadWireType, d.pos, "GetStr called for non-delimited wire type %v", d.curWire)
		d.cur = nil
		return nil, false
	}
	d.cur = nil

	length, ok := d.mustVarint("length varint")
	if !ok {
		return nil, false
	}

	out := zc.NewOwned(int(length))
	if !d.readExact(out, int(length)) {
		if d.st.OK() {
			d.st.SetAt(status.PrematureEOF, d.pos, "truncated delimited value of length %d", length)
		}
		return nil, false
	}
	return out, true
}

// StartMsg implements [stream.Src].
func (d *Decoder) StartMsg() bool {
	if d.cur == nil {
		d.st.Set(status.BadWireType, "StartMsg without a preceding GetDef")
		return false
	}
	fd := d.cur
	wt := d.curWire
	d.cur = nil

	switch wt {
	case wire.StartGroup:
		_, ok := d.frames.Push(stack.GroupSentinel, int32(fd.Number()), true, &d.st)
		if !ok {
			return false
		}
		top := d.frames.Top()
		top.Data = frameData{msg: d.msg}
		d.msg = fd.Message()
		return true

	case wire.Delimited:
		length, ok := d.mustVarint("submessage length")
		if !ok {
			return false
		}

		endOffset := d.pos + int(length)
		if top := d.frames.Top(); top != nil && !top.Group && endOffset > top.EndOffset {
			d.st.SetAt(status.SubmsgExceedsParent, d.pos, "submessage of length %d exceeds parent bounds", length)
			return false
		}

		_, pushed := d.frames.Push(endOffset, int32(fd.Number()), false, &d.st)
		if !pushed {
			return false
		}
		top := d.frames.Top()
		top.Data = frameData{msg: d.msg}
		d.msg = fd.Message()
		return true

	default:
		d.st.SetAt(status.BadWireType, d.pos, "StartMsg on non-message field")
		return false
	}
}

// EndMsg implements [stream.Src]. It may be called early (before GetDef
// returns nil) to abandon the remainder of a submessage, per spec §4.C:
// "endmsg may be called early to skip the remainder."
func (d *Decoder) EndMsg() bool {
	top := d.frames.Top()
	if top == nil {
		d.st.Set(status.BadWireType, "EndMsg without an open submessage")
		return false
	}

	if top.Group {
		if !d.skipToMatchingEndGroup(top.FieldNumber) {
			return false
		}
	} else if d.pos < top.EndOffset {
		if !d.skipToOffset(top.EndOffset) {
			return false
		}
	}

	parent := top.Data.msg
	d.frames.Pop()
	d.msg = parent
	d.eof = false
	d.cur = nil
	return true
}

// skipToOffset discards bytes (by skipping whole wire elements, not raw
// bytes, since unknown-length elements may straddle the remainder) until
// pos reaches target.
func (d *Decoder) skipToOffset(target int) bool {
	for d.pos < target {
		tagVal, ok := d.mustVarint("tag while skipping to submessage end")
		if !ok {
			return false
		}
		_, wt := wire.DecodeTag(tagVal)
		if !d.skipByWireType(wt) {
			return false
		}
	}
	return true
}

func (d *Decoder) skipToMatchingEndGroup(fieldNumber int32) bool {
	depth := 1
	for depth > 0 {
		tagVal, ok := d.mustVarint("tag while skipping group")
		if !ok {
			return false
		}
		num, wt := wire.DecodeTag(tagVal)
		switch wt {
		case wire.EndGroup:
			depth--
			if depth == 0 && int32(num) != fieldNumber {
				d.st.SetAt(status.GroupMismatch, d.pos, "unmatched END_GROUP for field %d", num)
				return false
			}
		case wire.StartGroup:
			depth++
		default:
			if !d.skipByWireType(wt) {
				return false
			}
		}
	}
	return true
}
