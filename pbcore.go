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

package pbcore

import (
	"github.com/bufbuild/pbcore/callback"
	"github.com/bufbuild/pbcore/decoder"
	"github.com/bufbuild/pbcore/schema"
	"github.com/bufbuild/pbcore/stream"
)

// These aliases let a caller that only needs the common path — load a
// descriptor set, decode a message against it — import a single package
// instead of reaching into schema/decoder/stream/callback directly. Callers
// doing anything more specific (building descriptors programmatically,
// writing a custom [stream.Sink]) still import the subpackage they need.
type (
	// Context is schema's symbol table: spec §4.B.
	Context = schema.Context

	// Message and Field are schema's descriptor types: spec §3.
	Message = schema.Message
	Field   = schema.Field
	Enum    = schema.Enum

	// Decoder is the schema-driven pull decoder: spec §4.D.
	Decoder = decoder.Decoder

	// Parser is the schema-free, resumable callback decoder: spec §4.E.
	Parser  = callback.Parser
	Handler = callback.Handler

	// Src and Value are the pull-stream contract that Decoder implements;
	// Parser reports values to a Handler instead.
	Src   = stream.Src
	Value = stream.Value
)

// NewContext creates an empty schema symbol table.
func NewContext() *Context { return schema.NewContext() }

// NewDecoder creates a decoder that reads tagged values for msg out of src,
// enforcing maxDepth nested submessages/groups.
func NewDecoder(src stream.ByteSrc, msg *Message, maxDepth int) *Decoder {
	return decoder.New(src, msg, maxDepth)
}

// NewParser creates a schema-free callback parser.
func NewParser(h Handler, maxDepth int) *Parser {
	return callback.NewParser(h, maxDepth)
}

// NewSliceSrc wraps an in-memory byte slice as a [stream.ByteSrc].
func NewSliceSrc(buf []byte) stream.ByteSrc { return stream.NewSliceSrc(buf) }
