package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protosign/pkg/breaking"
	"github.com/platinummonkey/protosign/pkg/cache"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(opts...)
	require.NoError(t, err)
	return eng
}

func src(content string) Source {
	return Source{Path: "test.proto", Content: content}
}

const header = `syntax = "proto3";
package demo.v1;
`

func verdictOf(t *testing.T, eng *Engine, prev, curr string) *Result {
	t.Helper()
	result, err := eng.Compare(src(prev), src(curr))
	require.NoError(t, err)
	return result
}

func hitRules(result *Result) map[string]bool {
	out := make(map[string]bool)
	for _, c := range result.Changes {
		out[c.RuleID] = true
	}
	return out
}

func TestCompare_Verdicts(t *testing.T) {
	eng := newEngine(t)

	t.Run("identical is green", func(t *testing.T) {
		source := header + `message T { string name = 1; }`
		result := verdictOf(t, eng, source, source)
		assert.Equal(t, VerdictGreen, result.Verdict)
		assert.Empty(t, result.Changes)
	})

	t.Run("added field is yellow", func(t *testing.T) {
		prev := header + `message T { string name = 1; }`
		curr := header + `message T { string name = 1; int32 id = 2; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictYellow, result.Verdict)
	})

	t.Run("added enum value is yellow", func(t *testing.T) {
		prev := header + `enum E { A = 0; }`
		curr := header + `enum E { A = 0; B = 1; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictYellow, result.Verdict)
	})

	t.Run("added method is yellow", func(t *testing.T) {
		base := header + `message Req { string id = 1; }
message Rsp { string id = 1; }
`
		prev := base + `service S { rpc F(Req) returns (Rsp); }`
		curr := base + `service S { rpc F(Req) returns (Rsp); rpc G(Req) returns (Rsp); }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictYellow, result.Verdict)
	})

	t.Run("type change is red", func(t *testing.T) {
		prev := header + `message T { string name = 1; }`
		curr := header + `message T { int64 name = 1; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictRed, result.Verdict)
		assert.True(t, hitRules(result)["FIELD_SAME_TYPE"])
	})

	t.Run("field delete is red", func(t *testing.T) {
		prev := header + `message T { string name = 1; }`
		curr := header + `message T { }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictRed, result.Verdict)
		assert.True(t, hitRules(result)["FIELD_NO_DELETE"])
	})

	t.Run("enum value delete is red", func(t *testing.T) {
		prev := header + `enum E { A = 0; B = 1; }`
		curr := header + `enum E { A = 0; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictRed, result.Verdict)
		assert.True(t, hitRules(result)["ENUM_VALUE_NO_DELETE"])
	})

	t.Run("rpc request type change is red", func(t *testing.T) {
		base := header + `message Req { string id = 1; }
message Req2 { string id = 1; }
message Rsp { string id = 1; }
`
		prev := base + `service S { rpc F(Req) returns (Rsp); }`
		curr := base + `service S { rpc F(Req2) returns (Rsp); }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictRed, result.Verdict)
		assert.True(t, hitRules(result)["RPC_SAME_REQUEST_TYPE"])
	})

	t.Run("using a previously reserved number is yellow", func(t *testing.T) {
		prev := header + `message T { reserved 2; string name = 1; }`
		curr := header + `message T { string name = 1; string x = 2; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictYellow, result.Verdict)
	})

	t.Run("redundant explicit default is green", func(t *testing.T) {
		prev := `syntax = "proto2";
package demo.v1;
message T { optional string name = 1 [default = ""]; }`
		curr := `syntax = "proto2";
package demo.v1;
message T { optional string name = 1; }`
		result := verdictOf(t, eng, prev, curr)
		assert.Equal(t, VerdictGreen, result.Verdict)
	})
}

func TestFingerprint_CosmeticInsensitivity(t *testing.T) {
	eng := newEngine(t)

	original := header + `// A core entity.
message User {
  string name = 1; // display name
  int32 id = 2;
  repeated string tags = 3;
}

enum Kind {
  KIND_UNSPECIFIED = 0;
  KIND_BASIC = 1;
}

message Group {
  string label = 1;
}
`
	// Declarations reordered, fields permuted, comments stripped,
	// whitespace reshaped.
	cosmetic := `syntax = "proto3";

package demo.v1;

message Group { string label = 1; }

enum Kind {
  KIND_UNSPECIFIED = 0;
  KIND_BASIC = 1;
}

message User {
  repeated string tags = 3;
  int32 id = 2;
  string name = 1;
}
`

	a, err := eng.Fingerprint(src(original))
	require.NoError(t, err)
	b, err := eng.Fingerprint(src(cosmetic))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprint_RedundantDefaultInsensitivity(t *testing.T) {
	eng := newEngine(t)

	plain := header + `message T { repeated int32 xs = 1; }`
	a, err := eng.Fingerprint(src(plain))
	require.NoError(t, err)

	// packed=true is already the proto3 default.
	explicitPacked := header + `message T { repeated int32 xs = 1 [packed = true]; }`
	b, err := eng.Fingerprint(src(explicitPacked))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// optimize_for=SPEED is already the file default.
	withOption := header + `option optimize_for = SPEED;
message T { repeated int32 xs = 1; }`
	c, err := eng.Fingerprint(src(withOption))
	require.NoError(t, err)
	assert.Equal(t, a, c)

	// A non-default value does change the fingerprint.
	unpacked := header + `message T { repeated int32 xs = 1 [packed = false]; }`
	d, err := eng.Fingerprint(src(unpacked))
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestFingerprint_DiffersOnSemanticChange(t *testing.T) {
	eng := newEngine(t)
	a, err := eng.Fingerprint(src(header + `message T { string name = 1; }`))
	require.NoError(t, err)
	b, err := eng.Fingerprint(src(header + `message T { string name = 2; }`))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFingerprint_UsesCache(t *testing.T) {
	fpCache, err := cache.New(8)
	require.NoError(t, err)
	eng := newEngine(t, WithCache(fpCache))

	source := src(header + `message T { string name = 1; }`)
	first, err := eng.Fingerprint(source)
	require.NoError(t, err)
	assert.Equal(t, 1, fpCache.Len())

	second, err := eng.Fingerprint(source)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreaking_DeterministicJSON(t *testing.T) {
	eng := newEngine(t)

	prev := src(header + `message B { string x = 1; int32 y = 2; }
message A { string y = 1; }
enum E { E_A = 0; E_B = 1; }`)
	curr := src(header + `message Keep { string z = 1; }`)

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		report, err := eng.Breaking(prev, curr, breaking.Selection{
			UseCategories: breaking.VerdictCategories,
		})
		require.NoError(t, err)
		data, err := json.Marshal(report)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestBreaking_NoChangesOnIdentical(t *testing.T) {
	eng := newEngine(t)
	source := src(header + `message T { string name = 1; }`)
	report, err := eng.Breaking(source, source, breaking.Selection{
		UseCategories: breaking.VerdictCategories,
	})
	require.NoError(t, err)
	assert.False(t, report.HasChanges())
}

func TestBreaking_ParseErrorAborts(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.Breaking(src("not a proto"), src(header+`message T {}`), breaking.Selection{})
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, StageParse, engineErr.Stage)
}

func TestBreaking_ConfigErrorAborts(t *testing.T) {
	eng := newEngine(t)
	source := src(header + `message T {}`)
	_, err := eng.Breaking(source, source, breaking.Selection{
		UseCategories: []string{"FILE"},
		UseRules:      []string{"FIELD_NO_DELETE"},
	})
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, StageConfig, engineErr.Stage)
}

func TestBreaking_ChangeLocations(t *testing.T) {
	eng := newEngine(t)
	prev := Source{Path: "prev.proto", Content: header + `message T {
  string name = 1;
}`}
	curr := Source{Path: "curr.proto", Content: header + `message T { }`}

	report, err := eng.Breaking(prev, curr, breaking.Selection{UseRules: []string{"FIELD_NO_DELETE"}})
	require.NoError(t, err)
	require.Len(t, report.Changes, 1)
	c := report.Changes[0]
	assert.Equal(t, "curr.proto", c.CurrentLocation.FilePath)
	require.NotNil(t, c.PreviousLocation)
	assert.Equal(t, "prev.proto", c.PreviousLocation.FilePath)
	// The deleted field's line comes from the previous source scan.
	assert.Equal(t, 4, c.PreviousLocation.Line)
}

func TestReadSource_Missing(t *testing.T) {
	_, err := ReadSource("/nonexistent/path.proto")
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, StageIO, engineErr.Stage)
}
