package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProto = `syntax = "proto3";

package sample.v1;

message Item {
  string id = 1;
  repeated int32 tags = 2;
}

enum Kind {
  KIND_UNSPECIFIED = 0;
}

service ItemService {
  rpc GetItem(Item) returns (Item);
}
`

func TestParse_Simple(t *testing.T) {
	result, err := Parse("sample.proto", sampleProto)
	require.NoError(t, err)
	require.NotNil(t, result.File)

	assert.Equal(t, "sample.v1", result.File.GetPackage())
	require.Len(t, result.File.GetMessageType(), 1)
	assert.Equal(t, "Item", result.File.GetMessageType()[0].GetName())
	require.Len(t, result.File.GetService(), 1)
	// Type references come back fully qualified.
	method := result.File.GetService()[0].GetMethod()[0]
	assert.Equal(t, ".sample.v1.Item", method.GetInputType())
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("bad.proto", `syntax = "proto3"; message {`)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad.proto", parseErr.Path)
}

func TestParse_UnresolvedReference(t *testing.T) {
	_, err := Parse("dangling.proto", `syntax = "proto3";
message T { Missing m = 1; }`)
	require.Error(t, err)
	assert.IsType(t, &ParseError{}, err)
}

func TestParse_WellKnownImport(t *testing.T) {
	result, err := Parse("wkt.proto", `syntax = "proto3";
import "google/protobuf/timestamp.proto";
message T { google.protobuf.Timestamp at = 1; }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"google/protobuf/timestamp.proto"}, result.File.GetDependency())
}

func TestParseWithImports(t *testing.T) {
	result, err := ParseWithImports("main.proto", `syntax = "proto3";
import "dep.proto";
message T { Dep d = 1; }`, map[string]string{
		"dep.proto": `syntax = "proto3"; message Dep { string id = 1; }`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dep.proto"}, result.File.GetDependency())
}

func TestIndexPositions(t *testing.T) {
	idx := IndexPositions(sampleProto)
	assert.Equal(t, 5, idx.Line("message", "sample.v1.Item"))
	assert.Equal(t, 6, idx.Line("field", "sample.v1.Item.id"))
	assert.Equal(t, 10, idx.Line("enum", "sample.v1.Kind"))
	assert.Equal(t, 14, idx.Line("service", "sample.v1.ItemService"))
	assert.Equal(t, 15, idx.Line("rpc", "sample.v1.ItemService.GetItem"))
	assert.Zero(t, idx.Line("message", "sample.v1.Absent"))

	var nilIndex *PositionIndex
	assert.Zero(t, nilIndex.Line("message", "anything"))
}
