package breaking

import (
	"fmt"
	"sort"
	"sync"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// Categories group rules for coarse-grained selection.
const (
	CategoryFile     = "FILE"
	CategoryPackage  = "PACKAGE"
	CategoryWire     = "WIRE"
	CategoryWireJSON = "WIRE_JSON"
)

// Categories lists every valid category.
var Categories = []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}

// RuleCount is the size of the catalog; the registry self-test fails if
// the table drifts from it.
const RuleCount = 68

// RuleFunc is a pure comparison over a pair of canonical files. Rule
// functions report findings; they never return errors.
type RuleFunc func(prev, curr *canonical.File, ctx *Context) []Change

// Rule is one catalog entry.
type Rule struct {
	ID         string
	Purpose    string
	Categories []string
	// Deprecated rules belong to no category and only run when named
	// explicitly in use_rules.
	Deprecated bool
	Func       RuleFunc
}

var catalog = []Rule{
	{ID: "ENUM_NO_DELETE", Purpose: "enums are not deleted from a file", Categories: []string{CategoryFile}, Func: checkEnumNoDelete},
	{ID: "ENUM_SAME_JSON_FORMAT", Purpose: "enums keep the same JSON format support", Categories: []string{CategoryFile, CategoryPackage, CategoryWireJSON}, Func: checkEnumSameJSONFormat},
	{ID: "ENUM_SAME_TYPE", Purpose: "enums stay open or closed", Categories: []string{CategoryFile, CategoryPackage}, Func: checkEnumSameType},
	{ID: "ENUM_VALUE_NO_DELETE", Purpose: "enum values are not deleted", Categories: []string{CategoryFile, CategoryPackage}, Func: checkEnumValueNoDelete},
	{ID: "ENUM_VALUE_NO_DELETE_UNLESS_NAME_RESERVED", Purpose: "deleted enum value names are reserved", Categories: []string{CategoryWireJSON}, Func: checkEnumValueNoDeleteUnlessNameReserved},
	{ID: "ENUM_VALUE_NO_DELETE_UNLESS_NUMBER_RESERVED", Purpose: "deleted enum value numbers are reserved", Categories: []string{CategoryWire, CategoryWireJSON}, Func: checkEnumValueNoDeleteUnlessNumberReserved},
	{ID: "ENUM_VALUE_SAME_NAME", Purpose: "enum values keep the same name per number", Categories: []string{CategoryFile, CategoryPackage, CategoryWireJSON}, Func: checkEnumValueSameName},
	{ID: "EXTENSION_MESSAGE_NO_DELETE", Purpose: "extension ranges are not deleted from messages", Categories: []string{CategoryFile, CategoryPackage}, Func: checkExtensionMessageNoDelete},
	{ID: "EXTENSION_NO_DELETE", Purpose: "extensions are not deleted", Categories: []string{CategoryFile, CategoryPackage}, Func: checkExtensionNoDelete},
	{ID: "FIELD_NO_DELETE", Purpose: "fields are not deleted from messages", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldNoDelete},
	{ID: "FIELD_NO_DELETE_UNLESS_NAME_RESERVED", Purpose: "deleted field names are reserved", Categories: []string{CategoryWireJSON}, Func: checkFieldNoDeleteUnlessNameReserved},
	{ID: "FIELD_NO_DELETE_UNLESS_NUMBER_RESERVED", Purpose: "deleted field numbers are reserved", Categories: []string{CategoryWire, CategoryWireJSON}, Func: checkFieldNoDeleteUnlessNumberReserved},
	{ID: "FIELD_SAME_CARDINALITY", Purpose: "fields keep the same cardinality", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkFieldSameCardinality},
	{ID: "FIELD_SAME_CPP_STRING_TYPE", Purpose: "fields keep the same C++ string representation", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameCppStringType},
	{ID: "FIELD_SAME_CTYPE", Purpose: "fields keep the same ctype option", Deprecated: true, Func: checkFieldSameCType},
	{ID: "FIELD_SAME_DEFAULT", Purpose: "fields keep the same default value", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameDefault},
	{ID: "FIELD_SAME_JAVA_UTF8_VALIDATION", Purpose: "fields keep the same Java UTF-8 validation", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameJavaUTF8Validation},
	{ID: "FIELD_SAME_JSON_NAME", Purpose: "fields keep the same json_name", Categories: []string{CategoryFile, CategoryPackage, CategoryWireJSON}, Func: checkFieldSameJSONName},
	{ID: "FIELD_SAME_JSTYPE", Purpose: "fields keep the same jstype option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameJSType},
	{ID: "FIELD_SAME_LABEL", Purpose: "fields keep the same label", Deprecated: true, Func: checkFieldSameLabel},
	{ID: "FIELD_SAME_NAME", Purpose: "fields keep the same name", Categories: []string{CategoryFile, CategoryPackage, CategoryWireJSON}, Func: checkFieldSameName},
	{ID: "FIELD_SAME_ONEOF", Purpose: "fields keep the same oneof membership", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkFieldSameOneof},
	{ID: "FIELD_SAME_TYPE", Purpose: "fields keep the same type", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameType},
	{ID: "FIELD_SAME_UTF8_VALIDATION", Purpose: "string fields keep the same UTF-8 validation", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFieldSameUTF8Validation},
	{ID: "FIELD_WIRE_COMPATIBLE_CARDINALITY", Purpose: "field cardinality changes stay wire compatible", Categories: []string{CategoryWire}, Func: checkFieldWireCompatibleCardinality},
	{ID: "FIELD_WIRE_COMPATIBLE_TYPE", Purpose: "field type changes stay wire compatible", Categories: []string{CategoryWire}, Func: checkFieldWireCompatibleType},
	{ID: "FIELD_WIRE_JSON_COMPATIBLE_CARDINALITY", Purpose: "field cardinality changes stay wire and JSON compatible", Categories: []string{CategoryWireJSON}, Func: checkFieldWireJSONCompatibleCardinality},
	{ID: "FIELD_WIRE_JSON_COMPATIBLE_TYPE", Purpose: "field type changes stay wire and JSON compatible", Categories: []string{CategoryWireJSON}, Func: checkFieldWireJSONCompatibleType},
	{ID: "FILE_NO_DELETE", Purpose: "files are not deleted", Categories: []string{CategoryFile}, Func: checkFileNoDelete},
	{ID: "FILE_SAME_CC_ENABLE_ARENAS", Purpose: "files keep the same cc_enable_arenas option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameCcEnableArenas},
	{ID: "FILE_SAME_CC_GENERIC_SERVICES", Purpose: "files keep the same cc_generic_services option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameCcGenericServices},
	{ID: "FILE_SAME_CSHARP_NAMESPACE", Purpose: "files keep the same csharp_namespace option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameCsharpNamespace},
	{ID: "FILE_SAME_GO_PACKAGE", Purpose: "files keep the same go_package option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameGoPackage},
	{ID: "FILE_SAME_JAVA_GENERIC_SERVICES", Purpose: "files keep the same java_generic_services option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameJavaGenericServices},
	{ID: "FILE_SAME_JAVA_MULTIPLE_FILES", Purpose: "files keep the same java_multiple_files option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameJavaMultipleFiles},
	{ID: "FILE_SAME_JAVA_OUTER_CLASSNAME", Purpose: "files keep the same java_outer_classname option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameJavaOuterClassname},
	{ID: "FILE_SAME_JAVA_PACKAGE", Purpose: "files keep the same java_package option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameJavaPackage},
	{ID: "FILE_SAME_JAVA_STRING_CHECK_UTF8", Purpose: "files keep the same java_string_check_utf8 option", Deprecated: true, Func: checkFileSameJavaStringCheckUTF8},
	{ID: "FILE_SAME_OBJC_CLASS_PREFIX", Purpose: "files keep the same objc_class_prefix option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameObjcClassPrefix},
	{ID: "FILE_SAME_OPTIMIZE_FOR", Purpose: "files keep the same optimize_for option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameOptimizeFor},
	{ID: "FILE_SAME_PACKAGE", Purpose: "files keep the same package", Categories: []string{CategoryFile}, Func: checkFileSamePackage},
	{ID: "FILE_SAME_PHP_CLASS_PREFIX", Purpose: "files keep the same php_class_prefix option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSamePhpClassPrefix},
	{ID: "FILE_SAME_PHP_METADATA_NAMESPACE", Purpose: "files keep the same php_metadata_namespace option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSamePhpMetadataNamespace},
	{ID: "FILE_SAME_PHP_NAMESPACE", Purpose: "files keep the same php_namespace option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSamePhpNamespace},
	{ID: "FILE_SAME_PY_GENERIC_SERVICES", Purpose: "files keep the same py_generic_services option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSamePyGenericServices},
	{ID: "FILE_SAME_RUBY_PACKAGE", Purpose: "files keep the same ruby_package option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameRubyPackage},
	{ID: "FILE_SAME_SWIFT_PREFIX", Purpose: "files keep the same swift_prefix option", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameSwiftPrefix},
	{ID: "FILE_SAME_SYNTAX", Purpose: "files keep the same syntax", Categories: []string{CategoryFile, CategoryPackage}, Func: checkFileSameSyntax},
	{ID: "MESSAGE_NO_DELETE", Purpose: "messages are not deleted from a file", Categories: []string{CategoryFile}, Func: checkMessageNoDelete},
	{ID: "MESSAGE_NO_REMOVE_STANDARD_DESCRIPTOR_ACCESSOR", Purpose: "messages do not disable the standard descriptor accessor", Categories: []string{CategoryFile, CategoryPackage}, Func: checkMessageNoRemoveStandardDescriptorAccessor},
	{ID: "MESSAGE_SAME_JSON_FORMAT", Purpose: "messages keep the same JSON format support", Categories: []string{CategoryFile, CategoryPackage, CategoryWireJSON}, Func: checkMessageSameJSONFormat},
	{ID: "MESSAGE_SAME_MESSAGE_SET_WIRE_FORMAT", Purpose: "messages keep the same message_set_wire_format option", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkMessageSameMessageSetWireFormat},
	{ID: "MESSAGE_SAME_REQUIRED_FIELDS", Purpose: "messages keep the same set of required fields", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkMessageSameRequiredFields},
	{ID: "ONEOF_NO_DELETE", Purpose: "oneofs are not deleted from messages", Categories: []string{CategoryFile, CategoryPackage}, Func: checkOneofNoDelete},
	{ID: "PACKAGE_ENUM_NO_DELETE", Purpose: "enums are not deleted from a package", Categories: []string{CategoryPackage}, Func: checkPackageEnumNoDelete},
	{ID: "PACKAGE_EXTENSION_NO_DELETE", Purpose: "extensions are not deleted from a package", Categories: []string{CategoryPackage}, Func: checkPackageExtensionNoDelete},
	{ID: "PACKAGE_MESSAGE_NO_DELETE", Purpose: "messages are not deleted from a package", Categories: []string{CategoryPackage}, Func: checkPackageMessageNoDelete},
	{ID: "PACKAGE_NO_DELETE", Purpose: "packages are not deleted", Categories: []string{CategoryPackage}, Func: checkPackageNoDelete},
	{ID: "PACKAGE_SERVICE_NO_DELETE", Purpose: "services are not deleted from a package", Categories: []string{CategoryPackage}, Func: checkPackageServiceNoDelete},
	{ID: "RESERVED_ENUM_NO_DELETE", Purpose: "reserved ranges and names are not deleted from enums", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkReservedEnumNoDelete},
	{ID: "RESERVED_MESSAGE_NO_DELETE", Purpose: "reserved ranges and names are not deleted from messages", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkReservedMessageNoDelete},
	{ID: "RPC_NO_DELETE", Purpose: "RPCs are not deleted from services", Categories: []string{CategoryFile, CategoryPackage}, Func: checkRPCNoDelete},
	{ID: "RPC_SAME_CLIENT_STREAMING", Purpose: "RPCs keep the same client streaming", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkRPCSameClientStreaming},
	{ID: "RPC_SAME_IDEMPOTENCY_LEVEL", Purpose: "RPCs keep the same idempotency level", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkRPCSameIdempotencyLevel},
	{ID: "RPC_SAME_REQUEST_TYPE", Purpose: "RPCs keep the same request type", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkRPCSameRequestType},
	{ID: "RPC_SAME_RESPONSE_TYPE", Purpose: "RPCs keep the same response type", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkRPCSameResponseType},
	{ID: "RPC_SAME_SERVER_STREAMING", Purpose: "RPCs keep the same server streaming", Categories: []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}, Func: checkRPCSameServerStreaming},
	{ID: "SERVICE_NO_DELETE", Purpose: "services are not deleted from a file", Categories: []string{CategoryFile}, Func: checkServiceNoDelete},
}

var rulesByID = func() map[string]Rule {
	byID := make(map[string]Rule, len(catalog))
	for _, r := range catalog {
		byID[r.ID] = r
	}
	return byID
}()

// All returns the catalog ordered by rule id.
func All() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByID looks up a rule.
func ByID(id string) (Rule, bool) {
	r, ok := rulesByID[id]
	return r, ok
}

// IsKnown reports whether id names a catalog rule.
func IsKnown(id string) bool {
	_, ok := rulesByID[id]
	return ok
}

var (
	verifyState struct {
		once sync.Once
		err  error
	}
)

// verifyOnce runs the registry self-test before the first evaluation.
func verifyOnce() error {
	verifyState.once.Do(func() {
		verifyState.err = Verify()
	})
	return verifyState.err
}

// Verify is the registry self-test: unique non-empty ids, the expected
// count, valid categories, and a function for every entry. It runs once
// before the first evaluation and on demand from tests.
func Verify() error {
	if len(catalog) != RuleCount {
		return fmt.Errorf("rule catalog has %d entries, expected %d", len(catalog), RuleCount)
	}
	seen := make(map[string]bool, len(catalog))
	valid := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		valid[c] = true
	}
	for _, r := range catalog {
		if r.ID == "" {
			return fmt.Errorf("rule with empty id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Func == nil {
			return fmt.Errorf("rule %q has no function", r.ID)
		}
		if r.Deprecated && len(r.Categories) > 0 {
			return fmt.Errorf("deprecated rule %q must not carry categories", r.ID)
		}
		if !r.Deprecated && len(r.Categories) == 0 {
			return fmt.Errorf("rule %q has no categories", r.ID)
		}
		for _, c := range r.Categories {
			if !valid[c] {
				return fmt.Errorf("rule %q has unknown category %q", r.ID, c)
			}
		}
	}
	return nil
}
