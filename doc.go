// Copyright 2020-2025 Buf Technologies, Inc.
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

// Package pbcore is a minimal, reflection-driven protobuf wire engine: a
// streaming codec plus a schema substrate, with no code generation and no
// per-type specialization step.
//
// A [schema.Context] loads FileDescriptorSet bytes into typed [schema.Message]
// and [schema.Field] descriptors. A [decoder.Decoder] walks an input byte
// stream against one such descriptor, producing a pull-based [stream.Src] of
// tagged values. A [callback.Parser] offers the same wire walk without a
// schema at all: the caller declares each field's type on the fly and is
// handed events through a small callback interface, and the parse is fully
// resumable across partial buffers.
//
// # Support status
//
// This package deliberately does not implement a compiled, reflection-free
// accessor layer: every field read goes through a descriptor lookup rather
// than generated code. It also does not implement maps (they decode as
// repeated key/value submessages) or unknown-field preservation (unknown
// fields are skipped, not retained for re-serialization).
package pbcore
