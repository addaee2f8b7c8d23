// Package canonical defines the order-independent, comment-free,
// defaults-normalized representation of a protobuf file. Two files that
// describe the same wire-and-JSON schema normalize to equal values here,
// regardless of declaration order, formatting, or redundant option
// defaults. The canonical tree is the input to both fingerprinting and
// breaking-change evaluation.
package canonical

// File is the canonical form of a single .proto file. All collections
// are sorted by their primary key; serialization order is key order.
type File struct {
	Syntax       string // "proto2", "proto3", or "editions"
	Edition      string // e.g. "2023"; empty unless Syntax is "editions"
	Package      string
	Dependencies []string // import paths, sorted
	Options      FileOptions
	Messages     []*Message   // sorted by qualified name
	Enums        []*Enum      // sorted by qualified name
	Services     []*Service   // sorted by qualified name
	Extensions   []*Extension // sorted by (extendee, number)
}

// Message is a canonical message. Fields are keyed and sorted by number,
// nested declarations by qualified name, oneofs by name.
type Message struct {
	QualifiedName  string
	Fields         []*Field
	Messages       []*Message
	Enums          []*Enum
	Extensions     []*Extension
	Oneofs         []*Oneof
	ReservedRanges []ReservedRange // merged, non-overlapping, sorted by start
	ReservedNames  []string        // sorted
	// ExtensionRanges are the proto2 extension number ranges, merged to
	// the same canonical half-open form as reserved ranges.
	ExtensionRanges []ReservedRange
	Options         MessageOptions
}

// Field is a canonical field. Number is the primary key.
type Field struct {
	Number      int32
	Name        string
	JSONName    string // always set; lowerCamel of Name when unspecified
	Cardinality Cardinality
	Type        Type
	Oneof       string // containing oneof name, empty when none
	// SyntheticOneof marks proto3 optional fields whose oneof exists only
	// to model presence. Rule comparisons treat these as plain optional.
	SyntheticOneof bool
	Options        FieldOptions
}

// Cardinality is the normalized field label.
type Cardinality int

const (
	// CardinalitySingular is a proto3 field without explicit presence.
	CardinalitySingular Cardinality = iota
	CardinalityOptional
	CardinalityRequired
	CardinalityRepeated
)

func (c Cardinality) String() string {
	switch c {
	case CardinalitySingular:
		return "singular"
	case CardinalityOptional:
		return "optional"
	case CardinalityRequired:
		return "required"
	case CardinalityRepeated:
		return "repeated"
	}
	return "unknown"
}

// TypeKind discriminates the field type variant.
type TypeKind int

const (
	KindDouble TypeKind = iota + 1
	KindFloat
	KindInt64
	KindUint64
	KindInt32
	KindFixed64
	KindFixed32
	KindBool
	KindString
	KindGroup
	KindMessage
	KindBytes
	KindUint32
	KindEnum
	KindSfixed32
	KindSfixed64
	KindSint32
	KindSint64
)

var typeKindNames = map[TypeKind]string{
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindInt32:    "int32",
	KindFixed64:  "fixed64",
	KindFixed32:  "fixed32",
	KindBool:     "bool",
	KindString:   "string",
	KindGroup:    "group",
	KindMessage:  "message",
	KindBytes:    "bytes",
	KindUint32:   "uint32",
	KindEnum:     "enum",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Type is a field type descriptor: a scalar kind, or a message, enum, or
// group reference by fully-qualified name.
type Type struct {
	Kind TypeKind
	Name string // qualified name for message/enum/group kinds, else empty
}

func (t Type) String() string {
	switch t.Kind {
	case KindMessage, KindEnum, KindGroup:
		return t.Name
	}
	return t.Kind.String()
}

// Equal reports whether two type descriptors are identical.
func (t Type) Equal(o Type) bool {
	return t.Kind == o.Kind && t.Name == o.Name
}

// ReservedRange is a half-open interval [Start, End) of reserved numbers.
type ReservedRange struct {
	Start int32
	End   int32
}

// Contains reports whether n falls inside the range.
func (r ReservedRange) Contains(n int32) bool {
	return n >= r.Start && n < r.End
}

// Enum is a canonical enum. Values are sorted by (number, name); aliases
// share a number when allow_alias is set.
type Enum struct {
	QualifiedName  string
	Values         []*EnumValue
	ReservedRanges []ReservedRange
	ReservedNames  []string
	AllowAlias     bool
	Deprecated     bool
	// IsClosed reflects the effective enum semantics after editions
	// feature inheritance: proto2 and editions-CLOSED enums reject
	// unknown values, proto3 and editions-OPEN enums keep them.
	IsClosed bool
}

// EnumValue is a canonical enum value keyed by number.
type EnumValue struct {
	Number     int32
	Name       string
	Deprecated bool
}

// Service is a canonical service; methods are sorted by name.
type Service struct {
	QualifiedName string
	Methods       []*Method
	Deprecated    bool
}

// Method is a canonical RPC method.
type Method struct {
	Name             string
	InputType        string // qualified request message name
	OutputType       string // qualified response message name
	ClientStreaming  bool
	ServerStreaming  bool
	IdempotencyLevel string // empty when IDEMPOTENCY_UNKNOWN
	Deprecated       bool
}

// Oneof is a canonical oneof declaration. Synthetic proto3-optional
// oneofs never appear here; they are recorded on the member field.
type Oneof struct {
	Name       string
	Deprecated bool
}

// Extension is a canonical extension field keyed by (extendee, number).
type Extension struct {
	Extendee string // qualified name of the extended message
	Field    *Field
}

// FileOptions carries the semantically meaningful file options. A zero
// value means the option was absent or equal to its protobuf default.
type FileOptions struct {
	JavaPackage         string
	JavaOuterClassname  string
	JavaMultipleFiles   bool
	JavaStringCheckUTF8 bool
	OptimizeFor         string // empty when SPEED (the default)
	GoPackage           string
	CcGenericServices   bool
	JavaGenericServices bool
	PyGenericServices   bool
	// CcEnableArenas defaults to true in descriptor.proto, so absence and
	// an explicit true collapse to nil; only an explicit false survives.
	CcEnableArenas       *bool
	ObjcClassPrefix      string
	CsharpNamespace      string
	SwiftPrefix          string
	PhpClassPrefix       string
	PhpNamespace         string
	PhpMetadataNamespace string
	RubyPackage          string
	Deprecated           bool
	Features             *FeatureSet
}

// FeatureSet is the resolved editions feature set at file level. Empty
// strings mean the feature was not explicitly set at this level;
// effective values are computed by the normalizer's inheritance walk.
type FeatureSet struct {
	FieldPresence         string
	EnumType              string
	RepeatedFieldEncoding string
	UTF8Validation        string
	MessageEncoding       string
	JSONFormat            string
}

// MessageOptions carries the semantically meaningful message options.
type MessageOptions struct {
	MapEntry                     bool
	MessageSetWireFormat         bool
	NoStandardDescriptorAccessor bool
	Deprecated                   bool
}

// FieldOptions carries the semantically meaningful field options, each
// collapsed to its zero value when equal to the protobuf default.
type FieldOptions struct {
	CType  string // empty when STRING (the default)
	JSType string // empty when JS_NORMAL (the default)
	// Packed has explicit presence: nil means unspecified, so the
	// effective packedness follows the syntax default.
	Packed     *bool
	Lazy       bool
	Deprecated bool
	// CppStringType is the effective C++ string representation derived
	// from ctype ("CORD", or empty for the default STRING).
	CppStringType string
	// JavaUTF8Validation is the effective Java-side validation
	// ("VERIFY", or empty for the default).
	JavaUTF8Validation string
	// UTF8Validation is the effective utf8_validation feature after
	// editions inheritance ("VERIFY", "NONE", or empty for non-string
	// fields where it does not apply).
	UTF8Validation string
	// Default is the protobuf-textual default value; empty means no
	// default was specified.
	Default string
}

// MessageByName returns the message with the given qualified name,
// searching nested messages, or nil.
func (f *File) MessageByName(qualified string) *Message {
	return findMessage(f.Messages, qualified)
}

func findMessage(msgs []*Message, qualified string) *Message {
	for _, m := range msgs {
		if m.QualifiedName == qualified {
			return m
		}
		if found := findMessage(m.Messages, qualified); found != nil {
			return found
		}
	}
	return nil
}

// EnumByName returns the enum with the given qualified name, searching
// nested enums, or nil.
func (f *File) EnumByName(qualified string) *Enum {
	if e := findEnum(f.Enums, qualified); e != nil {
		return e
	}
	return findEnumInMessages(f.Messages, qualified)
}

func findEnum(enums []*Enum, qualified string) *Enum {
	for _, e := range enums {
		if e.QualifiedName == qualified {
			return e
		}
	}
	return nil
}

func findEnumInMessages(msgs []*Message, qualified string) *Enum {
	for _, m := range msgs {
		if e := findEnum(m.Enums, qualified); e != nil {
			return e
		}
		if e := findEnumInMessages(m.Messages, qualified); e != nil {
			return e
		}
	}
	return nil
}

// FieldByNumber returns the field with the given number, or nil.
func (m *Message) FieldByNumber(number int32) *Field {
	for _, f := range m.Fields {
		if f.Number == number {
			return f
		}
	}
	return nil
}

// OneofByName returns the oneof with the given name, or nil.
func (m *Message) OneofByName(name string) *Oneof {
	for _, o := range m.Oneofs {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// ReservesNumber reports whether n is covered by the reserved ranges.
func (m *Message) ReservesNumber(n int32) bool {
	for _, r := range m.ReservedRanges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// ReservesName reports whether name is in the reserved-name set.
func (m *Message) ReservesName(name string) bool {
	for _, n := range m.ReservedNames {
		if n == name {
			return true
		}
	}
	return false
}

// ReservesNumber reports whether n is covered by the reserved ranges.
func (e *Enum) ReservesNumber(n int32) bool {
	for _, r := range e.ReservedRanges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// ReservesName reports whether name is in the reserved-name set.
func (e *Enum) ReservesName(name string) bool {
	for _, n := range e.ReservedNames {
		if n == name {
			return true
		}
	}
	return false
}

// ValuesByNumber groups enum values by number; aliases produce more than
// one entry per number.
func (e *Enum) ValuesByNumber() map[int32][]*EnumValue {
	byNumber := make(map[int32][]*EnumValue, len(e.Values))
	for _, v := range e.Values {
		byNumber[v.Number] = append(byNumber[v.Number], v)
	}
	return byNumber
}

// MethodByName returns the method with the given name, or nil.
func (s *Service) MethodByName(name string) *Method {
	for _, m := range s.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
