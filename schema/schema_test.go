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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/pbcore/schema"
)

// buildFDS is the oracle this package's tests decode against: a real
// FileDescriptorSet built with descriptorpb and marshaled with the
// reference proto implementation rather than this repo's own encoder,
// so a passing test is evidence this repo's wire
// decoder (package decoder) correctly parses bytes nobody here produced.
func buildFDS(t *testing.T) []byte {
	t.Helper()

	label := func(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }
	typ := func(ty descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return &ty }
	str := func(s string) *string { return &s }
	num := func(n int32) *int32 { return &n }

	fds := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			{
				Name:    str("test.proto"),
				Package: str("test"),
				MessageType: []*descriptorpb.DescriptorProto{
					{
						Name: str("Inner"),
						Field: []*descriptorpb.FieldDescriptorProto{
							{Name: str("value"), Number: num(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT32)},
						},
					},
					{
						Name: str("Outer"),
						Field: []*descriptorpb.FieldDescriptorProto{
							{Name: str("id"), Number: num(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT64)},
							{Name: str("name"), Number: num(2), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
							{Name: str("tags"), Number: num(3), Label: label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_UINT32)},
							{Name: str("inner"), Number: num(4), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), TypeName: str(".test.Inner")},
							{Name: str("color"), Number: num(5), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_ENUM), TypeName: str(".test.Color")},
						},
					},
				},
				EnumType: []*descriptorpb.EnumDescriptorProto{
					{
						Name: str("Color"),
						Value: []*descriptorpb.EnumValueDescriptorProto{
							{Name: str("RED"), Number: num(0)},
							{Name: str("GREEN"), Number: num(1)},
						},
					},
				},
			},
		},
	}

	data, err := proto.Marshal(fds)
	require.NoError(t, err)
	return data
}

func TestAddDescriptorSetResolvesReferences(t *testing.T) {
	t.Parallel()

	ctx := schema.NewContext()
	require.True(t, ctx.AddDescriptorSet(buildFDS(t)), ctx.Status().Error())
	require.True(t, ctx.Seal(), ctx.Status().Error())

	outer, ok := ctx.LookupMessage("test.Outer")
	require.True(t, ok)

	inner := outer.FieldByNumber(4)
	require.NotNil(t, inner)
	require.Equal(t, protoreflect.MessageKind, inner.Kind())
	require.NotNil(t, inner.MessageDescriptor())
	require.Equal(t, "test.Inner", inner.MessageDescriptor().FullName())

	color := outer.FieldByNumber(5)
	require.NotNil(t, color)
	require.Equal(t, protoreflect.EnumKind, color.Kind())
	require.NotNil(t, color.EnumDescriptor())
	name, ok := color.EnumDescriptor().ValueByNumber(1)
	require.True(t, ok)
	require.Equal(t, "GREEN", name)

	tags := outer.FieldByNumber(3)
	require.NotNil(t, tags)
	require.Equal(t, protoreflect.Repeated, tags.Cardinality())
	require.True(t, tags.IsPackable())
}

func TestLookupOfUndeclaredMessageFails(t *testing.T) {
	t.Parallel()

	ctx := schema.NewContext()
	require.True(t, ctx.AddDescriptorSet(buildFDS(t)))

	_, ok := ctx.LookupMessage("test.DoesNotExist")
	require.False(t, ok)
}

func TestDuplicateSymbolRejected(t *testing.T) {
	t.Parallel()

	data := buildFDS(t)
	ctx := schema.NewContext()
	require.True(t, ctx.AddDescriptorSet(data))
	require.False(t, ctx.AddDescriptorSet(data), "re-adding the same file must be rejected as a duplicate symbol")
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	ctx := schema.NewContext()
	require.True(t, ctx.AddDescriptorSet(buildFDS(t)))
	require.True(t, ctx.Seal())

	clone, err := ctx.Clone()
	require.NoError(t, err)

	orig, ok := ctx.LookupMessage("test.Outer")
	require.True(t, ok)
	cloned, ok := clone.LookupMessage("test.Outer")
	require.True(t, ok)
	require.NotSame(t, orig, cloned)
}
