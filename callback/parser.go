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

package callback

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/internal/stack"
	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/schema"
	"github.com/bufbuild/pbcore/status"
	"github.com/bufbuild/pbcore/wire"
)

// frameState is the per-frame user data threaded through this parser's
// [stack.Stack], distinct from the decoder's frameData since here the
// "parent descriptor" concept doesn't exist — only the cookie the
// matching TagCB handed back for the submessage/group field. The frame's
// end offset and group-ness already live in [stack.Frame] itself.
type frameState struct {
	cookie any
}

// Parser is the callback-driven, resumable counterpart to [decoder.Decoder]
// (spec §4.E). Unlike the decoder, it carries no schema: the caller
// supplies each field's declared type on demand via [Handler.TagCB].
type Parser struct {
	h      Handler
	frames *stack.Stack[frameState]
	pos    int // absolute bytes consumed across the lifetime of this Parser; while a value is decoded, the absolute offset of that value
	st     status.Status
}

// NewParser builds a callback parser, the moral equivalent of spec
// §4.E's parse_init. maxDepth bounds submessage/group nesting exactly as
// it does for [decoder.New].
func NewParser(h Handler, maxDepth int) *Parser {
	return &Parser{h: h, frames: stack.New[frameState](maxDepth)}
}

// Status returns the status of the last failing operation.
func (p *Parser) Status() *status.Status { return &p.st }

// Reset rewinds a Parser to its initial state so it can be reused for an
// unrelated stream, the equivalent of spec §4.E's parse_reset. There is no
// parse_free counterpart: Go's garbage collector reclaims the frame stack
// when the Parser itself becomes unreachable.
func (p *Parser) Reset() {
	p.frames.Reset()
	p.pos = 0
	p.st.Reset()
}

// Depth returns the number of submessage/group scopes currently open.
func (p *Parser) Depth() int { return p.frames.Depth() }

// Parse decodes as many complete wire elements as buf holds, invoking
// Handler callbacks for each, and returns how many leading bytes of buf
// were consumed.
//
// A return value less than len(buf) means buf ended mid-element — a tag,
// length prefix, or value was cut short. Per spec §4.E ("parse is fully
// resumable... the caller re-invokes with more data appended"), the
// caller must retain the unconsumed suffix, append however many more
// bytes it has, and call Parse again with that combined buffer; a
// Parser never buffers unconsumed bytes itself.
func (p *Parser) Parse(buf []byte) (consumed int, ok bool) {
	base := p.pos
	i := 0
parseLoop:
	for {
		for p.closeFramesAt(base + i) {
		}

		if i >= len(buf) {
			break
		}

		start := i
		num, wt, n := wire.ConsumeTag(buf[i:])
		if n < 0 {
			if wire.IsTruncated(n) {
				break
			}
			p.st.SetAt(status.BadWireType, base+i, "malformed tag")
			return start, false
		}
		i += n

		if wt == wire.EndGroup {
			top := p.frames.Top()
			if top == nil || !top.Group || top.FieldNumber != int32(num) {
				p.st.SetAt(status.GroupMismatch, base+i, "unmatched END_GROUP for field %d", num)
				return start, false
			}
			cookie := top.Data.cookie
			p.frames.Pop()
			p.h.SubmsgEndCB(cookie)
			continue
		}

		kind, cookie := p.h.TagCB(num, wt)

		// The step helpers read p.pos as the absolute offset of buf[i].
		p.pos = base + i
		n2, res := p.step(buf[i:], num, wt, kind, cookie)
		switch res {
		case stepTruncated:
			i = start
			break parseLoop
		case stepError:
			return start, false
		}
		i += n2
	}
	p.pos = base + i
	return i, p.st.OK()
}

// closeFramesAt pops every innermost length-delimited (non-group) frame
// whose end has been reached at absolute position pos, invoking
// SubmsgEndCB for each. Returns true if it closed a frame, so callers can
// loop until no more close.
func (p *Parser) closeFramesAt(pos int) bool {
	top := p.frames.Top()
	if top == nil || top.Group || top.EndOffset != pos {
		return false
	}
	cookie := top.Data.cookie
	p.frames.Pop()
	p.h.SubmsgEndCB(cookie)
	return true
}

type stepResult int

const (
	stepOK stepResult = iota
	stepTruncated
	stepError
)

// step decodes the value following a tag already consumed from buf (buf
// starts right after the tag), dispatching on the declared kind the
// handler returned from TagCB. It returns the number of bytes consumed
// from buf (not counting the tag) and whether that succeeded outright,
// ran out of input (the caller must retry with more data), or hit a hard
// parse error.
func (p *Parser) step(buf []byte, num wire.Number, wt wire.Type, kind Kind, cookie any) (int, stepResult) {
	if kind == Skip {
		return skipByWireType(buf, wt, p.pos, &p.st)
	}

	if kind == protoreflect.MessageKind || kind == protoreflect.GroupKind {
		return p.startSubmsg(buf, wt, kind, num, cookie)
	}

	want := schema.WireTypeFor(kind)
	switch {
	case wt == want:
		return p.scalarValue(buf, kind, wt, cookie)
	case wt == wire.Delimited && want != wire.Delimited && want != wire.StartGroup:
		return p.packedValues(buf, kind, cookie)
	default:
		p.st.SetAt(status.BadWireType, p.pos, "field %d: wire type %v incompatible with declared kind %v", num, wt, kind)
		return 0, stepError
	}
}

// startSubmsg opens a new frame for a message or group field.
func (p *Parser) startSubmsg(buf []byte, wt wire.Type, kind Kind, num wire.Number, cookie any) (int, stepResult) {
	if wt == wire.StartGroup {
		if kind != protoreflect.GroupKind {
			p.st.SetAt(status.BadWireType, p.pos, "START_GROUP tag but declared kind %v", kind)
			return 0, stepError
		}
		f, ok := p.frames.Push(stack.GroupSentinel, int32(num), true, &p.st)
		if !ok {
			return 0, stepError
		}
		f.Data = frameState{cookie: cookie}
		p.h.SubmsgStartCB(cookie)
		return 0, stepOK
	}
	if wt != wire.Delimited {
		p.st.SetAt(status.BadWireType, p.pos, "message field requires DELIMITED or START_GROUP, got %v", wt)
		return 0, stepError
	}

	length, n, res := consumeLen(buf, p.pos, &p.st)
	if res != stepOK {
		return 0, res
	}
	f, ok := p.frames.Push(p.pos+n+int(length), int32(num), false, &p.st)
	if !ok {
		return 0, stepError
	}
	f.Data = frameState{cookie: cookie}
	p.h.SubmsgStartCB(cookie)
	return n, stepOK
}

// scalarValue decodes a single, non-packed scalar or string/bytes value
// whose wire type matches its declared kind exactly.
func (p *Parser) scalarValue(buf []byte, kind Kind, wt wire.Type, cookie any) (int, stepResult) {
	switch wt {
	case wire.Varint:
		raw, n := wire.ConsumeVarint(buf)
		if n < 0 {
			if wire.IsTruncated(n) {
				return 0, stepTruncated
			}
			p.st.SetAt(status.UnterminatedVarint, p.pos, "malformed varint")
			return 0, stepError
		}
		p.h.ValueCB(interpretVarintKind(kind, raw), cookie)
		return n, stepOK
	case wire.Fixed32:
		if len(buf) < 4 {
			return 0, stepTruncated
		}
		raw, n := wire.ConsumeFixed32(buf)
		p.h.ValueCB(interpretFixed32Kind(kind, raw), cookie)
		return n, stepOK
	case wire.Fixed64:
		if len(buf) < 8 {
			return 0, stepTruncated
		}
		raw, n := wire.ConsumeFixed64(buf)
		p.h.ValueCB(interpretFixed64Kind(kind, raw), cookie)
		return n, stepOK
	case wire.Delimited:
		length, n, res := consumeLen(buf, p.pos, &p.st)
		if res != stepOK {
			return 0, res
		}
		total := n + int(length)
		if len(buf) < total {
			return 0, stepTruncated
		}
		var str zc.Str
		str.ResetAlias(buf[n:total])
		p.h.StrCB(&str, cookie)
		return total, stepOK
	default:
		p.st.SetAt(status.BadWireType, p.pos, "unsupported wire type %v for scalar field", wt)
		return 0, stepError
	}
}

// packedValues decodes a packed-repeated span: a single DELIMITED blob of
// concatenated base encodings for a scalar kind, invoking ValueCB once
// per element. The whole span must already be present in buf — there is
// no partial-element resumability within a packed span, only before it.
func (p *Parser) packedValues(buf []byte, kind Kind, cookie any) (int, stepResult) {
	length, n, res := consumeLen(buf, p.pos, &p.st)
	if res != stepOK {
		return 0, res
	}
	total := n + int(length)
	if len(buf) < total {
		return 0, stepTruncated
	}
	payload := buf[n:total]
	want := schema.WireTypeFor(kind)
	j := 0
	for j < len(payload) {
		switch want {
		case wire.Varint:
			raw, m := wire.ConsumeVarint(payload[j:])
			if m < 0 {
				p.st.SetAt(status.UnterminatedVarint, p.pos+n+j, "malformed packed varint element")
				return 0, stepError
			}
			p.h.ValueCB(interpretVarintKind(kind, raw), cookie)
			j += m
		case wire.Fixed32:
			if len(payload)-j < 4 {
				p.st.SetAt(status.PrematureEOF, p.pos+n+j, "packed span truncated mid-element")
				return 0, stepError
			}
			raw, m := wire.ConsumeFixed32(payload[j:])
			p.h.ValueCB(interpretFixed32Kind(kind, raw), cookie)
			j += m
		case wire.Fixed64:
			if len(payload)-j < 8 {
				p.st.SetAt(status.PrematureEOF, p.pos+n+j, "packed span truncated mid-element")
				return 0, stepError
			}
			raw, m := wire.ConsumeFixed64(payload[j:])
			p.h.ValueCB(interpretFixed64Kind(kind, raw), cookie)
			j += m
		default:
			p.st.SetAt(status.BadWireType, p.pos, "kind %v cannot be packed", kind)
			return 0, stepError
		}
	}
	return total, stepOK
}

// consumeLen reads the length prefix of a DELIMITED value at pos (the
// absolute offset buf[0] corresponds to, used only for status reporting).
func consumeLen(buf []byte, pos int, st *status.Status) (length uint64, n int, res stepResult) {
	length, n = wire.ConsumeVarint(buf)
	if n < 0 {
		if wire.IsTruncated(n) {
			return 0, 0, stepTruncated
		}
		st.SetAt(status.UnterminatedVarint, pos, "malformed length prefix")
		return 0, 0, stepError
	}
	return length, n, stepOK
}

// skipByWireType discards a value of the given wire type without
// decoding it, for a field TagCB declined via [Skip]. A START_GROUP
// value is not skipped: it is reported as BAD_WIRE_TYPE. It mirrors
// [decoder.Decoder]'s skip logic but operates on an in-memory slice
// rather than a pull source, since an undeclared field's bytes must
// already be present to determine their extent.
func skipByWireType(buf []byte, wt wire.Type, pos int, st *status.Status) (int, stepResult) {
	switch wt {
	case wire.Varint:
		_, n := wire.ConsumeVarint(buf)
		if n < 0 {
			if wire.IsTruncated(n) {
				return 0, stepTruncated
			}
			st.SetAt(status.UnterminatedVarint, pos, "malformed varint")
			return 0, stepError
		}
		return n, stepOK
	case wire.Fixed32:
		if len(buf) < 4 {
			return 0, stepTruncated
		}
		return 4, stepOK
	case wire.Fixed64:
		if len(buf) < 8 {
			return 0, stepTruncated
		}
		return 8, stepOK
	case wire.Delimited:
		length, n, res := consumeLen(buf, pos, st)
		if res != stepOK {
			return 0, res
		}
		total := n + int(length)
		if len(buf) < total {
			return 0, stepTruncated
		}
		return total, stepOK
	case wire.StartGroup:
		st.SetAt(status.BadWireType, pos, "skipping an undeclared group field is not supported")
		return 0, stepError
	default:
		st.SetAt(status.BadWireType, pos, "unknown wire type %v", wt)
		return 0, stepError
	}
}
