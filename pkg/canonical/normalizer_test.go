package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func strPtr(s string) *string { return proto.String(s) }

func label(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label {
	return &l
}

func typ(t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type {
	return &t
}

func simpleFile(syntax string) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("test.proto"),
		Syntax:  strPtr(syntax),
		Package: strPtr("test.v1"),
	}
}

func TestNormalize_NilDescriptor(t *testing.T) {
	_, err := Normalize(nil)
	require.Error(t, err)
	assert.IsType(t, &NormalizeError{}, err)
}

func TestNormalize_SyntaxDefaultsToProto2(t *testing.T) {
	file, err := Normalize(&descriptorpb.FileDescriptorProto{Name: strPtr("test.proto")})
	require.NoError(t, err)
	assert.Equal(t, "proto2", file.Syntax)
}

func TestNormalize_JSONNameDefault(t *testing.T) {
	desc := simpleFile("proto3")
	desc.MessageType = []*descriptorpb.DescriptorProto{{
		Name: strPtr("User"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:   strPtr("user_name"),
				Number: proto.Int32(1),
				Type:   typ(descriptorpb.FieldDescriptorProto_TYPE_STRING),
				Label:  label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
			},
			{
				Name:     strPtr("explicit"),
				Number:   proto.Int32(2),
				Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_STRING),
				Label:    label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
				JsonName: strPtr("chosenName"),
			},
		},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	msg := file.Messages[0]
	assert.Equal(t, "test.v1.User", msg.QualifiedName)
	assert.Equal(t, "userName", msg.Fields[0].JSONName)
	assert.Equal(t, "chosenName", msg.Fields[1].JSONName)
}

func TestNormalize_FieldsSortedByNumber(t *testing.T) {
	desc := simpleFile("proto3")
	desc.MessageType = []*descriptorpb.DescriptorProto{{
		Name: strPtr("T"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{Name: strPtr("b"), Number: proto.Int32(3), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT32), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)},
			{Name: strPtr("a"), Number: proto.Int32(1), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT32), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)},
		},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	fields := file.Messages[0].Fields
	assert.Equal(t, int32(1), fields[0].Number)
	assert.Equal(t, int32(3), fields[1].Number)
}

func TestNormalize_ReservedRangesMerged(t *testing.T) {
	desc := simpleFile("proto3")
	desc.MessageType = []*descriptorpb.DescriptorProto{{
		Name: strPtr("T"),
		ReservedRange: []*descriptorpb.DescriptorProto_ReservedRange{
			{Start: proto.Int32(10), End: proto.Int32(12)},
			{Start: proto.Int32(2), End: proto.Int32(3)},
			{Start: proto.Int32(3), End: proto.Int32(5)},
			{Start: proto.Int32(4), End: proto.Int32(6)},
		},
		ReservedName: []string{"zz", "aa"},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	msg := file.Messages[0]
	require.Len(t, msg.ReservedRanges, 2)
	assert.Equal(t, ReservedRange{Start: 2, End: 6}, msg.ReservedRanges[0])
	assert.Equal(t, ReservedRange{Start: 10, End: 12}, msg.ReservedRanges[1])
	assert.Equal(t, []string{"aa", "zz"}, msg.ReservedNames)
}

func TestNormalize_EnumReservedRangesInclusiveEnd(t *testing.T) {
	desc := simpleFile("proto3")
	desc.EnumType = []*descriptorpb.EnumDescriptorProto{{
		Name: strPtr("E"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			{Name: strPtr("E_UNSPECIFIED"), Number: proto.Int32(0)},
		},
		ReservedRange: []*descriptorpb.EnumDescriptorProto_EnumReservedRange{
			{Start: proto.Int32(5), End: proto.Int32(7)},
		},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	require.Len(t, file.Enums[0].ReservedRanges, 1)
	// Inclusive [5, 7] becomes half-open [5, 8).
	assert.Equal(t, ReservedRange{Start: 5, End: 8}, file.Enums[0].ReservedRanges[0])
}

func TestNormalize_EnumClosedness(t *testing.T) {
	for _, tc := range []struct {
		syntax string
		closed bool
	}{
		{"proto2", true},
		{"proto3", false},
	} {
		desc := simpleFile(tc.syntax)
		desc.EnumType = []*descriptorpb.EnumDescriptorProto{{
			Name:  strPtr("E"),
			Value: []*descriptorpb.EnumValueDescriptorProto{{Name: strPtr("A"), Number: proto.Int32(0)}},
		}}
		file, err := Normalize(desc)
		require.NoError(t, err)
		assert.Equal(t, tc.closed, file.Enums[0].IsClosed, tc.syntax)
	}
}

func TestNormalize_EditionsEnumFeatureInheritance(t *testing.T) {
	closed := descriptorpb.FeatureSet_CLOSED
	edition := descriptorpb.Edition_EDITION_2023
	desc := &descriptorpb.FileDescriptorProto{
		Name:    strPtr("test.proto"),
		Syntax:  strPtr("editions"),
		Edition: &edition,
		Options: &descriptorpb.FileOptions{
			Features: &descriptorpb.FeatureSet{EnumType: &closed},
		},
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name:  strPtr("E"),
			Value: []*descriptorpb.EnumValueDescriptorProto{{Name: strPtr("A"), Number: proto.Int32(0)}},
		}},
	}

	file, err := Normalize(desc)
	require.NoError(t, err)
	assert.Equal(t, "editions", file.Syntax)
	assert.Equal(t, "2023", file.Edition)
	assert.True(t, file.Enums[0].IsClosed)
}

func TestNormalize_OptionDefaultCollapsing(t *testing.T) {
	desc := simpleFile("proto3")
	desc.Options = &descriptorpb.FileOptions{
		OptimizeFor:    descriptorpb.FileOptions_SPEED.Enum(),
		CcEnableArenas: proto.Bool(true),
	}

	file, err := Normalize(desc)
	require.NoError(t, err)
	assert.Empty(t, file.Options.OptimizeFor)
	assert.Nil(t, file.Options.CcEnableArenas)

	// The non-default values survive.
	desc.Options = &descriptorpb.FileOptions{
		OptimizeFor:    descriptorpb.FileOptions_LITE_RUNTIME.Enum(),
		CcEnableArenas: proto.Bool(false),
	}
	file, err = Normalize(desc)
	require.NoError(t, err)
	assert.Equal(t, "LITE_RUNTIME", file.Options.OptimizeFor)
	require.NotNil(t, file.Options.CcEnableArenas)
	assert.False(t, *file.Options.CcEnableArenas)
}

func TestNormalize_Proto3Cardinality(t *testing.T) {
	oneofIdx := int32(0)
	desc := simpleFile("proto3")
	desc.MessageType = []*descriptorpb.DescriptorProto{{
		Name: strPtr("T"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{Name: strPtr("plain"), Number: proto.Int32(1), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)},
			{Name: strPtr("explicit"), Number: proto.Int32(2), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Proto3Optional: proto.Bool(true), OneofIndex: &oneofIdx},
			{Name: strPtr("many"), Number: proto.Int32(3), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED)},
		},
		OneofDecl: []*descriptorpb.OneofDescriptorProto{{Name: strPtr("_explicit")}},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	msg := file.Messages[0]
	assert.Equal(t, CardinalitySingular, msg.Fields[0].Cardinality)
	assert.Equal(t, CardinalityOptional, msg.Fields[1].Cardinality)
	assert.True(t, msg.Fields[1].SyntheticOneof)
	assert.Empty(t, msg.Fields[1].Oneof)
	assert.Equal(t, CardinalityRepeated, msg.Fields[2].Cardinality)
	// The synthetic oneof does not surface as a declared oneof.
	assert.Empty(t, msg.Oneofs)
}

func TestNormalize_MapEntryPreserved(t *testing.T) {
	desc := simpleFile("proto3")
	desc.MessageType = []*descriptorpb.DescriptorProto{{
		Name: strPtr("T"),
		Field: []*descriptorpb.FieldDescriptorProto{{
			Name:     strPtr("labels"),
			Number:   proto.Int32(1),
			Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE),
			Label:    label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED),
			TypeName: strPtr(".test.v1.T.LabelsEntry"),
		}},
		NestedType: []*descriptorpb.DescriptorProto{{
			Name:    strPtr("LabelsEntry"),
			Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
			Field: []*descriptorpb.FieldDescriptorProto{
				{Name: strPtr("key"), Number: proto.Int32(1), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)},
				{Name: strPtr("value"), Number: proto.Int32(2), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT32), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)},
			},
		}},
	}}

	file, err := Normalize(desc)
	require.NoError(t, err)
	msg := file.Messages[0]
	require.Len(t, msg.Messages, 1)
	entry := msg.Messages[0]
	assert.True(t, entry.Options.MapEntry)
	assert.Equal(t, "test.v1.T.LabelsEntry", entry.QualifiedName)
	assert.Equal(t, Type{Kind: KindMessage, Name: "test.v1.T.LabelsEntry"}, msg.Fields[0].Type)
	assert.Equal(t, CardinalityRepeated, msg.Fields[0].Cardinality)
}

func TestLowerCamel(t *testing.T) {
	for input, want := range map[string]string{
		"user_name":   "userName",
		"name":        "name",
		"a_b_c":       "aBC",
		"already_ok_": "alreadyOk",
	} {
		assert.Equal(t, want, lowerCamel(input), input)
	}
}
