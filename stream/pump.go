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

package stream

import "google.golang.org/protobuf/reflect/protoreflect"

// StreamData pumps src into sink until EOF or error, propagating
// submessage nesting: a submessage/group field pulled from src is mirrored
// by a StartMsg/EndMsg bracket pushed into sink, per spec §4.C.
func StreamData(src Src, sink Sink) bool {
	for {
		fd := src.GetDef()
		if fd == nil {
			return src.Status().OK()
		}
		if !sink.PutDef(fd) {
			return false
		}

		switch fd.Kind() {
		case protoreflect.MessageKind, protoreflect.GroupKind:
			if !src.StartMsg() || !sink.StartMsg() {
				return false
			}
			if !StreamData(src, sink) {
				return false
			}
			if !src.EndMsg() || !sink.EndMsg() {
				return false
			}
		case protoreflect.StringKind, protoreflect.BytesKind:
			str, ok := src.GetStr()
			if !ok {
				return false
			}
			if !sink.PutStr(str) {
				return false
			}

		default:
			// Scalar kinds, including each element of a packed-repeated
			// span: GetDef keeps re-returning fd for the span's duration,
			// so this case runs once per packed element too.
			v, ok := src.GetVal()
			if !ok {
				return false
			}
			if !sink.PutVal(v) {
				return false
			}
		}
	}
}
