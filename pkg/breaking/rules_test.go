package breaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protosign/pkg/canonical"
	"github.com/platinummonkey/protosign/pkg/parser"
)

func mustFile(t *testing.T, src string) *canonical.File {
	t.Helper()
	result, err := parser.Parse("test.proto", src)
	require.NoError(t, err)
	file, err := canonical.Normalize(result.File)
	require.NoError(t, err)
	return file
}

// runRules evaluates only the named rules over two sources.
func runRules(t *testing.T, prevSrc, currSrc string, ids ...string) []Change {
	t.Helper()
	plan, err := Resolve(Selection{UseRules: ids})
	require.NoError(t, err)
	return plan.Run(mustFile(t, prevSrc), mustFile(t, currSrc), &Context{
		PreviousPath: "prev.proto",
		CurrentPath:  "curr.proto",
	})
}

func ruleIDs(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.RuleID)
	}
	return out
}

const proto3Header = `syntax = "proto3";
package test.v1;
`

func TestFieldNoDelete(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; int32 id = 2; }`
	curr := proto3Header + `message T { string name = 1; }`

	changes := runRules(t, prev, curr, "FIELD_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Equal(t, "FIELD_NO_DELETE", changes[0].RuleID)
	assert.Contains(t, changes[0].Message, `Field 2 with name "id"`)
	assert.Equal(t, "curr.proto", changes[0].CurrentLocation.FilePath)
	require.NotNil(t, changes[0].PreviousLocation)
	assert.Equal(t, "test.v1.T.id", changes[0].PreviousLocation.EntityName)
}

func TestFieldNoDeleteUnlessNumberReserved(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; int32 id = 2; }`
	currReserved := proto3Header + `message T { string name = 1; reserved 2; }`
	currBare := proto3Header + `message T { string name = 1; }`

	assert.Empty(t, runRules(t, prev, currReserved, "FIELD_NO_DELETE_UNLESS_NUMBER_RESERVED"))
	assert.Len(t, runRules(t, prev, currBare, "FIELD_NO_DELETE_UNLESS_NUMBER_RESERVED"), 1)
}

func TestFieldNoDeleteUnlessNameReserved(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; int32 id = 2; }`
	currReserved := proto3Header + `message T { string name = 1; reserved "id"; }`

	assert.Empty(t, runRules(t, prev, currReserved, "FIELD_NO_DELETE_UNLESS_NAME_RESERVED"))
}

func TestFieldSameType(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; }`
	curr := proto3Header + `message T { int64 name = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_TYPE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `changed type from "string" to "int64"`)
}

func TestFieldSameType_MessageReference(t *testing.T) {
	prev := proto3Header + `message A { string x = 1; }
message B { string x = 1; }
message T { A ref = 1; }`
	curr := proto3Header + `message A { string x = 1; }
message B { string x = 1; }
message T { B ref = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_TYPE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `"test.v1.A"`)
	assert.Contains(t, changes[0].Message, `"test.v1.B"`)
}

func TestFieldSameCardinality(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; }`
	curr := proto3Header + `message T { repeated string name = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_CARDINALITY")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "cardinality")
}

func TestFieldSameCardinality_Proto3OptionalEquivalence(t *testing.T) {
	// proto2 optional and proto3 explicit optional are the same
	// cardinality; so are proto3 implicit and explicit presence.
	prev := `syntax = "proto2";
package test.v1;
message T { optional string name = 1; }`
	curr := proto3Header + `message T { optional string name = 1; }`

	assert.Empty(t, runRules(t, prev, curr, "FIELD_SAME_CARDINALITY", "FIELD_SAME_ONEOF"))
}

func TestFieldSameName(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; }`
	curr := proto3Header + `message T { string title = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_NAME")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `changed name from "name" to "title"`)
}

func TestFieldSameJSONName(t *testing.T) {
	prev := proto3Header + `message T { string user_name = 1; }`
	curr := proto3Header + `message T { string user_name = 1 [json_name = "user"]; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_JSON_NAME")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `json_name`)
}

func TestFieldSameOneof(t *testing.T) {
	prev := proto3Header + `message T { oneof choice { string a = 1; } }`
	curr := proto3Header + `message T { string a = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_ONEOF")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "oneof membership")
}

func TestFieldWireCompatibleType(t *testing.T) {
	// int32 to int64 shares a varint group: allowed.
	prev := proto3Header + `message T { int32 n = 1; }`
	curr := proto3Header + `message T { int64 n = 1; }`
	assert.Empty(t, runRules(t, prev, curr, "FIELD_WIRE_COMPATIBLE_TYPE"))

	// int32 to string crosses wire types: breaking.
	curr = proto3Header + `message T { string n = 1; }`
	assert.Len(t, runRules(t, prev, curr, "FIELD_WIRE_COMPATIBLE_TYPE"), 1)

	// string to bytes is allowed, bytes to string is not.
	prev = proto3Header + `message T { string s = 1; }`
	curr = proto3Header + `message T { bytes s = 1; }`
	assert.Empty(t, runRules(t, prev, curr, "FIELD_WIRE_COMPATIBLE_TYPE"))
	assert.Len(t, runRules(t, curr, prev, "FIELD_WIRE_COMPATIBLE_TYPE"), 1)
}

func TestFieldWireJSONCompatibleType(t *testing.T) {
	// int32 to int64 changes the JSON rendering: flagged.
	prev := proto3Header + `message T { int32 n = 1; }`
	curr := proto3Header + `message T { int64 n = 1; }`
	assert.Len(t, runRules(t, prev, curr, "FIELD_WIRE_JSON_COMPATIBLE_TYPE"), 1)

	// int32 to uint32 keeps both wire and JSON shape.
	curr = proto3Header + `message T { uint32 n = 1; }`
	assert.Empty(t, runRules(t, prev, curr, "FIELD_WIRE_JSON_COMPATIBLE_TYPE"))
}

func TestMessageNoDelete(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; }
message Gone { int32 id = 1; }`
	curr := proto3Header + `message T { string name = 1; }`

	changes := runRules(t, prev, curr, "MESSAGE_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `Message "test.v1.Gone" was deleted.`)
}

func TestMessageNoDelete_MapEntryNotReported(t *testing.T) {
	prev := proto3Header + `message T { map<string, int32> labels = 1; }`
	curr := proto3Header + `message T { reserved 1; }`

	changes := runRules(t, prev, curr, "MESSAGE_NO_DELETE")
	assert.Empty(t, changes)
}

func TestMapValueTypeChangeSurfacesAsFieldChange(t *testing.T) {
	prev := proto3Header + `message T { map<string, int32> labels = 1; }`
	curr := proto3Header + `message T { map<string, string> labels = 1; }`

	changes := runRules(t, prev, curr, "FIELD_SAME_TYPE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].CurrentLocation.EntityName, "LabelsEntry")
}

func TestOneofNoDelete(t *testing.T) {
	prev := proto3Header + `message T { oneof choice { string a = 1; int32 b = 2; } }`
	curr := proto3Header + `message T { string a = 1; int32 b = 2; }`

	changes := runRules(t, prev, curr, "ONEOF_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `Oneof "choice" was deleted`)
}

func TestReservedMessageNoDelete(t *testing.T) {
	prev := proto3Header + `message T { reserved 2, 5 to 7; reserved "old_name"; string name = 1; }`

	// Dropping the reservation entirely is flagged.
	curr := proto3Header + `message T { string name = 1; }`
	changes := runRules(t, prev, curr, "RESERVED_MESSAGE_NO_DELETE")
	require.Len(t, changes, 3)

	// Re-occupying the number with a real field is not a deletion.
	curr = proto3Header + `message T { reserved 5 to 7; reserved "old_name"; string name = 1; string x = 2; }`
	assert.Empty(t, runRules(t, prev, curr, "RESERVED_MESSAGE_NO_DELETE"))

	// Narrowing a range is flagged.
	curr = proto3Header + `message T { reserved 2, 5 to 6; reserved "old_name"; string name = 1; }`
	changes = runRules(t, prev, curr, "RESERVED_MESSAGE_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `"7"`)
}

func TestMessageSameRequiredFields(t *testing.T) {
	prev := `syntax = "proto2";
package test.v1;
message T { optional string name = 1; }`
	curr := `syntax = "proto2";
package test.v1;
message T { optional string name = 1; required string id = 2; }`

	changes := runRules(t, prev, curr, "MESSAGE_SAME_REQUIRED_FIELDS")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "added required field 2")
}

func TestEnumValueNoDelete(t *testing.T) {
	prev := proto3Header + `enum E { E_UNSPECIFIED = 0; E_ONE = 1; }`
	curr := proto3Header + `enum E { E_UNSPECIFIED = 0; }`

	changes := runRules(t, prev, curr, "ENUM_VALUE_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `Enum value 1 with name "E_ONE"`)
}

func TestEnumValueNoDeleteUnlessNumberReserved(t *testing.T) {
	prev := proto3Header + `enum E { E_UNSPECIFIED = 0; E_ONE = 1; }`
	curr := proto3Header + `enum E { E_UNSPECIFIED = 0; reserved 1; }`

	assert.Empty(t, runRules(t, prev, curr, "ENUM_VALUE_NO_DELETE_UNLESS_NUMBER_RESERVED"))
}

func TestEnumValueSameName(t *testing.T) {
	prev := proto3Header + `enum E { E_UNSPECIFIED = 0; E_ONE = 1; }`
	curr := proto3Header + `enum E { E_UNSPECIFIED = 0; E_UNO = 1; }`

	changes := runRules(t, prev, curr, "ENUM_VALUE_SAME_NAME")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `changed name from "E_ONE" to "E_UNO"`)
}

func TestEnumSameType(t *testing.T) {
	prev := `syntax = "proto2";
package test.v1;
enum E { A = 0; }`
	curr := proto3Header + `enum E { A = 0; }`

	changes := runRules(t, prev, curr, "ENUM_SAME_TYPE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "closed to open")
}

func TestServiceRules(t *testing.T) {
	base := proto3Header + `message Req { string id = 1; }
message Req2 { string id = 1; }
message Rsp { string id = 1; }
`
	prev := base + `service S { rpc F(Req) returns (Rsp); }`

	t.Run("request type change", func(t *testing.T) {
		curr := base + `service S { rpc F(Req2) returns (Rsp); }`
		changes := runRules(t, prev, curr, "RPC_SAME_REQUEST_TYPE")
		require.Len(t, changes, 1)
		assert.Contains(t, changes[0].Message, "request type")
	})

	t.Run("server streaming change", func(t *testing.T) {
		curr := base + `service S { rpc F(Req) returns (stream Rsp); }`
		changes := runRules(t, prev, curr, "RPC_SAME_SERVER_STREAMING")
		require.Len(t, changes, 1)
		assert.Contains(t, changes[0].Message, "server streaming")
	})

	t.Run("rpc delete", func(t *testing.T) {
		curr := base + `service S { }`
		changes := runRules(t, prev, curr, "RPC_NO_DELETE")
		require.Len(t, changes, 1)
		assert.Contains(t, changes[0].Message, `RPC "F" was deleted`)
	})

	t.Run("service delete", func(t *testing.T) {
		curr := base
		changes := runRules(t, prev, curr, "SERVICE_NO_DELETE")
		require.Len(t, changes, 1)
		assert.Contains(t, changes[0].Message, `Service "test.v1.S" was deleted.`)
	})
}

func TestFileSameOptions(t *testing.T) {
	prev := proto3Header + `option go_package = "example.com/old";
message T { string name = 1; }`
	curr := proto3Header + `option go_package = "example.com/new";
message T { string name = 1; }`

	changes := runRules(t, prev, curr, "FILE_SAME_GO_PACKAGE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `"go_package"`)
}

func TestFileSamePackage(t *testing.T) {
	prev := proto3Header + `message T { string name = 1; }`
	curr := `syntax = "proto3";
package test.v2;
message T { string name = 1; }`

	changes := runRules(t, prev, curr, "FILE_SAME_PACKAGE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "File package changed")
}

func TestFileSameSyntax(t *testing.T) {
	prev := `syntax = "proto2";
package test.v1;
message T { optional string name = 1; }`
	curr := proto3Header + `message T { string name = 1; }`

	changes := runRules(t, prev, curr, "FILE_SAME_SYNTAX")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "syntax")
}

func TestPackageScopedRulesSkipDifferentPackages(t *testing.T) {
	prev := proto3Header + `message Gone { string name = 1; }`
	curr := `syntax = "proto3";
package test.v2;
message Other { string name = 1; }`

	assert.Empty(t, runRules(t, prev, curr, "PACKAGE_MESSAGE_NO_DELETE"))
	assert.Len(t, runRules(t, prev, curr, "MESSAGE_NO_DELETE"), 1)
}

func TestExtensionNoDelete(t *testing.T) {
	prev := `syntax = "proto2";
package test.v1;
message Base { optional string name = 1; extensions 100 to 200; }
extend Base { optional string extra = 100; }`
	curr := `syntax = "proto2";
package test.v1;
message Base { optional string name = 1; extensions 100 to 200; }`

	changes := runRules(t, prev, curr, "EXTENSION_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, `Extension 100 with name "extra"`)
}

func TestExtensionMessageNoDelete(t *testing.T) {
	prev := `syntax = "proto2";
package test.v1;
message Base { optional string name = 1; extensions 100 to 200; }`
	curr := `syntax = "proto2";
package test.v1;
message Base { optional string name = 1; }`

	changes := runRules(t, prev, curr, "EXTENSION_MESSAGE_NO_DELETE")
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Message, "Extension range")
}

func TestChangesAreDeterministicallyOrdered(t *testing.T) {
	prev := proto3Header + `message B { string x = 1; }
message A { string y = 1; }`
	curr := proto3Header + `message Keep { string z = 1; }`

	first := runRules(t, prev, curr, "MESSAGE_NO_DELETE", "PACKAGE_MESSAGE_NO_DELETE")
	second := runRules(t, prev, curr, "MESSAGE_NO_DELETE", "PACKAGE_MESSAGE_NO_DELETE")
	require.Equal(t, first, second)

	// Within a rule, entity-name order.
	require.Len(t, first, 4)
	assert.Equal(t, "MESSAGE_NO_DELETE", first[0].RuleID)
	assert.Equal(t, "PACKAGE_MESSAGE_NO_DELETE", first[2].RuleID)
	assert.Equal(t, "test.v1.A", first[0].PreviousLocation.EntityName)
	assert.Equal(t, "test.v1.B", first[1].PreviousLocation.EntityName)
}
