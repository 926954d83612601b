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

import (
	"io"

	"github.com/bufbuild/pbcore/internal/zc"
	"github.com/bufbuild/pbcore/status"
)

// sliceSrc is a [ByteSrc] over an in-memory byte slice, the common case
// (a whole message already read into memory). A [zc.Str] filled by Get
// aliases the slice directly; Append copies the bytes into the caller's
// string.
type sliceSrc struct {
	buf []byte
	pos int
	eof bool
	st  status.Status
}

// NewSliceSrc builds a [ByteSrc] that serves bytes out of buf. Strings
// filled by Get alias buf for as long as they are held; Append copies.
func NewSliceSrc(buf []byte) ByteSrc {
	return &sliceSrc{buf: buf}
}

func (s *sliceSrc) Get(str *zc.Str, minLen int) bool {
	if minLen == 0 {
		str.ResetAlias(s.buf[s.pos:s.pos])
		return true
	}
	end := s.pos + minLen
	if end > len(s.buf) {
		s.eof = true
		return false
	}
	str.ResetAlias(s.buf[s.pos:end])
	s.pos = end
	return true
}

func (s *sliceSrc) Append(str *zc.Str, n int) bool {
	if n == 0 {
		return true
	}
	end := s.pos + n
	if end > len(s.buf) {
		s.eof = true
		return false
	}
	str.Append(s.buf[s.pos:end])
	s.pos = end
	return true
}

func (s *sliceSrc) EOF() bool             { return s.eof }
func (s *sliceSrc) Status() *status.Status { return &s.st }

// writerSink is a [ByteSink] that forwards Put calls to an [io.Writer].
type writerSink struct {
	w  io.Writer
	st status.Status
}

// NewWriterSink builds a [ByteSink] that writes through to w.
func NewWriterSink(w io.Writer) ByteSink {
	return &writerSink{w: w}
}

func (s *writerSink) Put(str *zc.Str) (int, bool) {
	n, err := s.w.Write(str.Bytes())
	if err != nil {
		s.st.Set(status.PrematureEOF, "write failed: %v", err)
		return n, false
	}
	return n, true
}

func (s *writerSink) Status() *status.Status { return &s.st }
