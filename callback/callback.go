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

// Package callback implements component E: a one-shot, fully resumable
// variant of the wire decoder (package decoder) that drives a caller's
// callbacks directly off raw tags instead of a compiled [desc.Message].
//
// Where package decoder needs a schema to know a field's declared type,
// callback asks the caller once per tag (TagCB) and lets it decide the
// type and whether to descend at all — the inversion-of-control style
// the teacher uses for its own low-level tag walker in
// internal/prettyasm and internal/tools, generalized here into a public,
// resumable API per spec §4.E.
package callback

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/stream"
	"github.com/bufbuild/pbcore/wire"
)

// Kind is the declared type a [Handler] hands back from TagCB. The zero
// value is the sentinel "skip this field" return spec §4.E calls out:
// "the client... return[s] the declared type... or... a sentinel zero."
// protoreflect.Kind's own values all start at 1, so its zero value is
// already exactly that sentinel.
type Kind = protoreflect.Kind

// Skip is the sentinel Kind value meaning "don't parse this field";
// TagCB should return it to decline a field, in which case the parser
// consumes and discards the value per its wire type. A declined
// START_GROUP field is not skipped: Parse fails with BAD_WIRE_TYPE.
const Skip Kind = 0

// Handler receives the callback protocol of spec §4.E, in the order
// decoded: TagCB for each tag other than END_GROUP, then ValueCB (once
// per element), StrCB or SubmsgStartCB for its value (nothing for a
// skipped field), and SubmsgEndCB when a message or group scope closes.
type Handler interface {
	// TagCB is called for each tag other than END_GROUP. A tag whose value
	// was cut short at the end of the buffer is reported again when Parse
	// is re-invoked with more data. It returns the field's declared type
	// (driving how the parser decodes the following value) and an
	// opaque cookie threaded through to the matching Value/Str/Submsg
	// callback. Returning [Skip] discards the value per its wire type
	// without any further callback; for a START_GROUP field, Parse fails
	// with BAD_WIRE_TYPE instead.
	TagCB(num protowire.Number, wt wire.Type) (Kind, any)

	// ValueCB fires once per scalar value; for a packed-repeated span,
	// once per packed element.
	ValueCB(v stream.Value, cookie any)

	// StrCB fires once per length-delimited string/bytes value. The
	// string aliases the input buffer passed to [Parser.Parse] and is
	// only valid until that call returns.
	StrCB(s *zc.Str, cookie any)

	// SubmsgStartCB / SubmsgEndCB bracket a message or group field whose
	// TagCB returned [protoreflect.MessageKind] or
	// [protoreflect.GroupKind].
	SubmsgStartCB(cookie any)
	SubmsgEndCB(cookie any)
}
