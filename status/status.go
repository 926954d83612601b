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

// Package status defines the error surface shared by every fallible
// operation in pbcore: a closed code enum plus a human-readable message,
// attached to the object the operation was called on rather than thrown.
package status

import (
	"errors"
	"fmt"
)

// Code is the closed set of failure reasons a pbcore operation can report.
type Code int

const (
	// OK indicates success. The zero value, so a zero Status is "no error".
	OK Code = iota
	OutOfMemory
	UnterminatedVarint
	BadWireType
	NestingOverflow
	SubmsgExceedsParent
	GroupMismatch
	PrematureEOF
	BadRef
	DuplicateSymbol
	MalformedDescriptor
)

var names = [...]string{
	OK:                   "OK",
	OutOfMemory:          "OUT_OF_MEMORY",
	UnterminatedVarint:   "UNTERMINATED_VARINT",
	BadWireType:          "BAD_WIRE_TYPE",
	NestingOverflow:      "NESTING_OVERFLOW",
	SubmsgExceedsParent:  "SUBMSG_EXCEEDS_PARENT",
	GroupMismatch:        "GROUP_MISMATCH",
	PrematureEOF:         "PREMATURE_EOF",
	BadRef:               "BAD_REF",
	DuplicateSymbol:      "DUPLICATE_SYMBOL",
	MalformedDescriptor:  "MALFORMED_DESCRIPTOR",
}

// String implements [fmt.Stringer].
func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(names) {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return names[c]
}

// Status is the value form of an error: a code plus a message plus the
// byte offset at which it was detected, where applicable. The zero Status
// is OK.
//
// Status implements error, so it composes with errors.Is/As, but pbcore's
// own operations prefer to check a Status directly rather than unwrap an
// error chain, matching the "errors are values, not exceptions" design in
// the spec: every fallible operation sets a Status on the object it was
// called on instead of panicking or returning a sentinel.
type Status struct {
	Code    Code
	Message string
	Offset  int
}

// OK reports whether this status represents success.
func (s *Status) OK() bool { return s == nil || s.Code == OK }

// Error implements the error interface.
func (s *Status) Error() string {
	if s == nil || s.Code == OK {
		return "OK"
	}
	if s.Offset != 0 {
		return fmt.Sprintf("pbcore: %v at offset %d: %s", s.Code, s.Offset, s.Message)
	}
	return fmt.Sprintf("pbcore: %v: %s", s.Code, s.Message)
}

// Is allows errors.Is(err, status.OutOfMemory) to work by comparing codes,
// using a sentinel *Status with only Code set.
func (s *Status) Is(target error) bool {
	var t *Status
	if errors.As(target, &t) {
		return s.Code == t.Code
	}
	return false
}

// Set overwrites a status in place with the given code and formatted
// message. It is the method every component uses to report failure on its
// "self" object, mirroring the spec's "status object of the call" model.
func (s *Status) Set(code Code, format string, args ...any) {
	s.Code = code
	s.Message = fmt.Sprintf(format, args...)
}

// SetAt is like Set but also records the byte offset the failure was
// detected at, used throughout the wire decoder and callback parser.
func (s *Status) SetAt(code Code, offset int, format string, args ...any) {
	s.Set(code, format, args...)
	s.Offset = offset
}

// Reset clears a status back to OK, e.g. between unrelated parses of the
// same reused state object.
func (s *Status) Reset() {
	*s = Status{}
}

// New builds a standalone *Status, useful for returning a Status as an
// error value directly (e.g. from the schema loader).
func New(code Code, format string, args ...any) *Status {
	s := &Status{}
	s.Set(code, format, args...)
	return s
}

// Sentinel code comparators for errors.Is, e.g.:
//
//	if errors.Is(err, status.ErrPrematureEOF) { ... }
var (
	ErrOutOfMemory          = &Status{Code: OutOfMemory}
	ErrUnterminatedVarint   = &Status{Code: UnterminatedVarint}
	ErrBadWireType          = &Status{Code: BadWireType}
	ErrNestingOverflow      = &Status{Code: NestingOverflow}
	ErrSubmsgExceedsParent  = &Status{Code: SubmsgExceedsParent}
	ErrGroupMismatch        = &Status{Code: GroupMismatch}
	ErrPrematureEOF         = &Status{Code: PrematureEOF}
	ErrBadRef               = &Status{Code: BadRef}
	ErrDuplicateSymbol      = &Status{Code: DuplicateSymbol}
	ErrMalformedDescriptor  = &Status{Code: MalformedDescriptor}
)
