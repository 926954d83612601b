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

package schema

import (
	"sync"

	deepcopy "github.com/tiendc/go-deepcopy"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/pbcore/desc"
	"github.com/bufbuild/pbcore/status"
)

// Context is the symbol table from spec §4.B: the set of message and enum
// descriptors loaded from one or more FileDescriptorSets, indexed by
// fully-qualified name.
//
// A Context is unsealed (and unsafe to share) while descriptor sets are
// still being added; [Context.Seal] locks it and makes it safe to share
// read-only across goroutines, per spec §5: "a schema context is
// read-only after seal and may be shared across threads."
type Context struct {
	mu       sync.Mutex
	messages map[string]*Message
	enums    map[string]*Enum

	// pendingRefs records every unresolved type_name this context has
	// parsed, so Seal can resolve them all at once without re-walking
	// every message's field list.
	pendingRefs []pendingRef

	sealed bool
	st     status.Status
}

// pendingRef is one field whose message/enum target was recorded as a
// dotted name during the parse pass and still needs resolving.
type pendingRef struct {
	field    *Field
	typeName string
}

// NewContext creates an empty, unsealed context.
func NewContext() *Context {
	return &Context{
		messages: make(map[string]*Message),
		enums:    make(map[string]*Enum),
	}
}

// Status returns the status of the last failing operation on this
// context.
func (c *Context) Status() *status.Status { return &c.st }

// AddDescriptorSet runs the parse pass (spec §4.B step 1) over one
// FileDescriptorSet's wire bytes, decoding it against the compiled-in
// bootstrap descriptor and registering every message/field/enum it
// declares. It does not resolve type_name references or compute layouts;
// call [Context.Seal] once all descriptor sets have been added.
func (c *Context) AddDescriptorSet(data []byte) bool {
	if c.sealed {
		c.st.Set(status.MalformedDescriptor, "context is already sealed")
		return false
	}

	fileSet, ok := decodeFileDescriptorSet(data, &c.st)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, file := range fileSet.files {
		if !c.registerFile(file) {
			return false
		}
	}
	return true
}

// AddDescriptorSets adds several descriptor sets concurrently using an
// errgroup, mirroring the teacher's use of golang.org/x/sync/errgroup in
// internal/tools for fanning independent work out and collecting the
// first error. Safe because the parallel work touches no shared state: the
// wire decode of each set's bytes runs in parallel, and once all have
// finished the symbol-table inserts run one after another under c.mu.
func (c *Context) AddDescriptorSets(datas [][]byte) bool {
	if c.sealed {
		c.st.Set(status.MalformedDescriptor, "context is already sealed")
		return false
	}

	var g errgroup.Group
	parsed := make([]*rawFileDescriptorSet, len(datas))
	for i, data := range datas {
		i, data := i, data
		g.Go(func() error {
			var st status.Status
			fileSet, ok := decodeFileDescriptorSet(data, &st)
			if !ok {
				return &st
			}
			parsed[i] = fileSet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		st := err.(*status.Status)
		c.st = *st
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fileSet := range parsed {
		for _, file := range fileSet.files {
			if !c.registerFile(file) {
				return false
			}
		}
	}
	return true
}

// registerFile installs the messages and enums of one parsed file into
// the symbol table, rejecting duplicate fully-qualified names.
func (c *Context) registerFile(file *rawFile) bool {
	for _, m := range file.messages {
		if _, dup := c.messages[m.FullName()]; dup {
			c.st.Set(status.DuplicateSymbol, "duplicate message %q", m.FullName())
			return false
		}
		c.messages[m.FullName()] = m
	}
	for _, e := range file.enums {
		if _, dup := c.enums[e.FullName()]; dup {
			c.st.Set(status.DuplicateSymbol, "duplicate enum %q", e.FullName())
			return false
		}
		c.enums[e.FullName()] = e
	}
	c.pendingRefs = append(c.pendingRefs, file.pendingRefs...)
	return true
}

// LookupMessage finds a message descriptor by fully-qualified name.
func (c *Context) LookupMessage(name string) (*Message, bool) {
	m, ok := c.messages[name]
	return m, ok
}

// Messages returns every message descriptor this context has loaded, in
// no particular order. Used by consumers (e.g. cmd/pbdump's schema
// subcommand) that need to enumerate a whole descriptor set rather than
// look up one name at a time.
func (c *Context) Messages() []*Message {
	out := make([]*Message, 0, len(c.messages))
	for _, m := range c.messages {
		out = append(out, m)
	}
	return out
}

// LookupEnum finds an enum descriptor by fully-qualified name.
func (c *Context) LookupEnum(name string) (*Enum, bool) {
	e, ok := c.enums[name]
	return e, ok
}

// Lookup finds either a message or an enum by fully-qualified name,
// returning it through the desc leaf interfaces for callers outside this
// package (spec §4.B: "context_lookup(ctx, "pkg.Msg")").
func (c *Context) Lookup(name string) (any, bool) {
	if m, ok := c.messages[name]; ok {
		return desc.Message(m), true
	}
	if e, ok := c.enums[name]; ok {
		return desc.Enum(e), true
	}
	return nil, false
}

// Seal runs the seal pass (spec §4.B step 2): resolves every pending
// type_name reference to a direct message/enum pointer, then computes
// each message's field layout and fast lookup table. A context must be
// sealed before it is used to decode data or shared across goroutines.
func (c *Context) Seal() bool {
	if c.sealed {
		return true
	}

	for _, ref := range c.pendingRefs {
		if m, ok := c.messages[ref.typeName]; ok {
			ref.field.message = m
			continue
		}
		if e, ok := c.enums[ref.typeName]; ok {
			ref.field.enum = e
			continue
		}
		c.st.Set(status.BadRef, "unresolved type reference %q", ref.typeName)
		return false
	}

	for _, m := range c.messages {
		m.seal()
	}

	c.pendingRefs = nil
	c.sealed = true
	return true
}

// Sealed reports whether Seal has completed successfully.
func (c *Context) Sealed() bool { return c.sealed }

// Clone deep-copies a sealed context so a caller can, for instance, hand
// out independent copies to concurrent workers that each want to mutate
// bookkeeping fields without touching the original (descriptors
// themselves are immutable once sealed, but Clone is provided for
// callers that layer mutable caches on top of *Message/*Field). Uses
// github.com/tiendc/go-deepcopy, the same reflection-based deep-copy
// library the teacher pulls in for internal/prototest fixture cloning.
func (c *Context) Clone() (*Context, error) {
	clone := NewContext()
	if err := deepcopy.Copy(&clone.messages, &c.messages); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&clone.enums, &c.enums); err != nil {
		return nil, err
	}
	clone.sealed = c.sealed
	return clone, nil
}
