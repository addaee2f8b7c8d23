package canonical

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// NormalizeError reports a descriptor the normalizer could not interpret.
// Schema validity is the parser's responsibility; this fires only on
// malformed descriptor input: a nil file, an unknown field type, an
// out-of-range oneof index, or an option value it cannot interpret.
type NormalizeError struct {
	Path   string // qualified name of the offending entity
	Reason string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Path, e.Reason)
}

// Normalize converts a resolved FileDescriptorProto into its canonical
// form. The transformation is lossy by design: source locations,
// comments, and declaration order are dropped, option values equal to
// their protobuf defaults are collapsed, and all child sets are sorted
// by their primary keys.
func Normalize(desc *descriptorpb.FileDescriptorProto) (*File, error) {
	if desc == nil {
		return nil, &NormalizeError{Path: "", Reason: "nil file descriptor"}
	}

	n := &normalizer{desc: desc}

	syntax := desc.GetSyntax()
	if syntax == "" {
		syntax = "proto2"
	}
	file := &File{
		Syntax:  syntax,
		Package: desc.GetPackage(),
	}
	if syntax == "editions" {
		file.Edition = strings.TrimPrefix(desc.GetEdition().String(), "EDITION_")
	}

	file.Dependencies = append(file.Dependencies, desc.GetDependency()...)
	sort.Strings(file.Dependencies)

	opts, err := n.fileOptions(desc.GetOptions())
	if err != nil {
		return nil, err
	}
	file.Options = opts
	n.syntax = syntax
	n.fileFeatures = featureSetFromProto(desc.GetOptions().GetFeatures())

	prefix := desc.GetPackage()
	for _, msgDesc := range desc.GetMessageType() {
		msg, err := n.message(msgDesc, prefix, n.fileFeatures)
		if err != nil {
			return nil, err
		}
		file.Messages = append(file.Messages, msg)
	}
	for _, enumDesc := range desc.GetEnumType() {
		enum, err := n.enum(enumDesc, prefix, n.fileFeatures)
		if err != nil {
			return nil, err
		}
		file.Enums = append(file.Enums, enum)
	}
	for _, svcDesc := range desc.GetService() {
		svc, err := n.service(svcDesc, prefix)
		if err != nil {
			return nil, err
		}
		file.Services = append(file.Services, svc)
	}
	for _, extDesc := range desc.GetExtension() {
		ext, err := n.extension(extDesc, prefix)
		if err != nil {
			return nil, err
		}
		file.Extensions = append(file.Extensions, ext)
	}

	sortFile(file)
	return file, nil
}

// normalizer carries the per-file state needed for editions feature
// inheritance during the descriptor walk.
type normalizer struct {
	desc         *descriptorpb.FileDescriptorProto
	syntax       string
	fileFeatures *FeatureSet
}

func (n *normalizer) message(desc *descriptorpb.DescriptorProto, prefix string, inherited *FeatureSet) (*Message, error) {
	qualified := qualify(prefix, desc.GetName())
	features := mergeFeatures(inherited, featureSetFromProto(desc.GetOptions().GetFeatures()))

	msg := &Message{QualifiedName: qualified}
	if opts := desc.GetOptions(); opts != nil {
		msg.Options = MessageOptions{
			MapEntry:                     opts.GetMapEntry(),
			MessageSetWireFormat:         opts.GetMessageSetWireFormat(),
			NoStandardDescriptorAccessor: opts.GetNoStandardDescriptorAccessor(),
			Deprecated:                   opts.GetDeprecated(),
		}
	}

	for _, oneofDesc := range desc.GetOneofDecl() {
		if isSyntheticOneof(desc, oneofDesc) {
			continue
		}
		msg.Oneofs = append(msg.Oneofs, &Oneof{
			Name:       oneofDesc.GetName(),
			Deprecated: false,
		})
	}

	for _, fieldDesc := range desc.GetField() {
		field, err := n.field(fieldDesc, desc, qualified, features)
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, field)
	}

	for _, nestedDesc := range desc.GetNestedType() {
		nested, err := n.message(nestedDesc, qualified, features)
		if err != nil {
			return nil, err
		}
		msg.Messages = append(msg.Messages, nested)
	}
	for _, enumDesc := range desc.GetEnumType() {
		enum, err := n.enum(enumDesc, qualified, features)
		if err != nil {
			return nil, err
		}
		msg.Enums = append(msg.Enums, enum)
	}
	for _, extDesc := range desc.GetExtension() {
		ext, err := n.extension(extDesc, qualified)
		if err != nil {
			return nil, err
		}
		msg.Extensions = append(msg.Extensions, ext)
	}

	ranges := make([]ReservedRange, 0, len(desc.GetReservedRange()))
	for _, r := range desc.GetReservedRange() {
		// DescriptorProto reserved ranges are already half-open.
		ranges = append(ranges, ReservedRange{Start: r.GetStart(), End: r.GetEnd()})
	}
	msg.ReservedRanges = mergeRanges(ranges)
	msg.ReservedNames = append(msg.ReservedNames, desc.GetReservedName()...)
	sort.Strings(msg.ReservedNames)

	extRanges := make([]ReservedRange, 0, len(desc.GetExtensionRange()))
	for _, r := range desc.GetExtensionRange() {
		extRanges = append(extRanges, ReservedRange{Start: r.GetStart(), End: r.GetEnd()})
	}
	msg.ExtensionRanges = mergeRanges(extRanges)

	return msg, nil
}

func (n *normalizer) field(desc *descriptorpb.FieldDescriptorProto, parent *descriptorpb.DescriptorProto, parentName string, features *FeatureSet) (*Field, error) {
	path := parentName + "." + desc.GetName()

	typ, err := fieldType(desc)
	if err != nil {
		return nil, &NormalizeError{Path: path, Reason: err.Error()}
	}

	field := &Field{
		Number:   desc.GetNumber(),
		Name:     desc.GetName(),
		JSONName: desc.GetJsonName(),
		Type:     typ,
	}
	if field.JSONName == "" {
		field.JSONName = lowerCamel(field.Name)
	}

	fieldFeatures := mergeFeatures(features, featureSetFromProto(desc.GetOptions().GetFeatures()))
	field.Cardinality = n.cardinality(desc, fieldFeatures)

	if desc.OneofIndex != nil {
		idx := int(desc.GetOneofIndex())
		if parent == nil || idx >= len(parent.GetOneofDecl()) {
			return nil, &NormalizeError{Path: path, Reason: fmt.Sprintf("oneof index %d out of range", idx)}
		}
		oneof := parent.GetOneofDecl()[idx]
		if isSyntheticOneof(parent, oneof) {
			field.SyntheticOneof = true
		} else {
			field.Oneof = oneof.GetName()
		}
	}

	opts, err := n.fieldOptions(desc, fieldFeatures, path)
	if err != nil {
		return nil, err
	}
	field.Options = opts
	return field, nil
}

// cardinality normalizes the descriptor label. Proto3 fields without
// explicit presence become singular; proto3 optional and editions
// explicit-presence fields become optional; editions LEGACY_REQUIRED
// becomes required.
func (n *normalizer) cardinality(desc *descriptorpb.FieldDescriptorProto, features *FeatureSet) Cardinality {
	switch desc.GetLabel() {
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return CardinalityRepeated
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return CardinalityRequired
	}

	switch n.syntax {
	case "proto2":
		return CardinalityOptional
	case "proto3":
		if desc.GetProto3Optional() || desc.OneofIndex != nil {
			return CardinalityOptional
		}
		return CardinalitySingular
	case "editions":
		presence := "EXPLICIT"
		if features != nil && features.FieldPresence != "" {
			presence = features.FieldPresence
		}
		switch presence {
		case "LEGACY_REQUIRED":
			return CardinalityRequired
		case "IMPLICIT":
			if desc.OneofIndex != nil {
				return CardinalityOptional
			}
			return CardinalitySingular
		default:
			return CardinalityOptional
		}
	}
	return CardinalityOptional
}

func (n *normalizer) fieldOptions(desc *descriptorpb.FieldDescriptorProto, features *FeatureSet, path string) (FieldOptions, error) {
	out := FieldOptions{Default: desc.GetDefaultValue()}

	opts := desc.GetOptions()
	if opts != nil {
		switch opts.GetCtype() {
		case descriptorpb.FieldOptions_STRING:
			// Default, collapsed.
		case descriptorpb.FieldOptions_CORD:
			out.CType = "CORD"
			out.CppStringType = "CORD"
		case descriptorpb.FieldOptions_STRING_PIECE:
			out.CType = "STRING_PIECE"
		default:
			return out, &NormalizeError{Path: path, Reason: fmt.Sprintf("unknown ctype %v", opts.GetCtype())}
		}
		switch opts.GetJstype() {
		case descriptorpb.FieldOptions_JS_NORMAL:
		case descriptorpb.FieldOptions_JS_STRING:
			out.JSType = "JS_STRING"
		case descriptorpb.FieldOptions_JS_NUMBER:
			out.JSType = "JS_NUMBER"
		default:
			return out, &NormalizeError{Path: path, Reason: fmt.Sprintf("unknown jstype %v", opts.GetJstype())}
		}
		if opts.Packed != nil {
			// An explicit packed equal to the syntax default collapses,
			// so redundant annotations do not perturb the fingerprint.
			packed := opts.GetPacked()
			if packed != n.defaultPacked(desc, features) {
				out.Packed = &packed
			}
		}
		out.Lazy = opts.GetLazy()
		out.Deprecated = opts.GetDeprecated()
	}

	// Effective UTF-8 validation applies to string fields only.
	if desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_STRING {
		out.UTF8Validation = n.utf8Validation(features)
		if n.desc.GetOptions().GetJavaStringCheckUtf8() {
			out.JavaUTF8Validation = "VERIFY"
		}
	}
	return out, nil
}

// defaultPacked is the packedness a repeated scalar field gets with no
// explicit option: expanded in proto2, packed in proto3 and editions
// unless the repeated_field_encoding feature says otherwise.
func (n *normalizer) defaultPacked(desc *descriptorpb.FieldDescriptorProto, features *FeatureSet) bool {
	if desc.GetLabel() != descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		return false
	}
	switch desc.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING,
		descriptorpb.FieldDescriptorProto_TYPE_BYTES,
		descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return false
	}
	switch n.syntax {
	case "proto2":
		return false
	case "editions":
		if features != nil && features.RepeatedFieldEncoding == "EXPANDED" {
			return false
		}
		return true
	default:
		return true
	}
}

func (n *normalizer) utf8Validation(features *FeatureSet) string {
	switch n.syntax {
	case "proto3":
		return "VERIFY"
	case "proto2":
		return "NONE"
	}
	if features != nil && features.UTF8Validation != "" {
		return features.UTF8Validation
	}
	return "VERIFY" // edition 2023 default
}

func (n *normalizer) enum(desc *descriptorpb.EnumDescriptorProto, prefix string, inherited *FeatureSet) (*Enum, error) {
	qualified := qualify(prefix, desc.GetName())
	features := mergeFeatures(inherited, featureSetFromProto(desc.GetOptions().GetFeatures()))

	enum := &Enum{
		QualifiedName: qualified,
		AllowAlias:    desc.GetOptions().GetAllowAlias(),
		Deprecated:    desc.GetOptions().GetDeprecated(),
		IsClosed:      n.enumClosed(features),
	}

	for _, valueDesc := range desc.GetValue() {
		enum.Values = append(enum.Values, &EnumValue{
			Number:     valueDesc.GetNumber(),
			Name:       valueDesc.GetName(),
			Deprecated: valueDesc.GetOptions().GetDeprecated(),
		})
	}

	ranges := make([]ReservedRange, 0, len(desc.GetReservedRange()))
	for _, r := range desc.GetReservedRange() {
		// EnumDescriptorProto reserved ranges are inclusive on both ends.
		ranges = append(ranges, ReservedRange{Start: r.GetStart(), End: r.GetEnd() + 1})
	}
	enum.ReservedRanges = mergeRanges(ranges)
	enum.ReservedNames = append(enum.ReservedNames, desc.GetReservedName()...)
	sort.Strings(enum.ReservedNames)

	return enum, nil
}

// enumClosed computes effective enum openness: proto2 enums are closed,
// proto3 enums are open, and editions enums follow the inherited
// enum_type feature (edition 2023 defaults to OPEN).
func (n *normalizer) enumClosed(features *FeatureSet) bool {
	switch n.syntax {
	case "proto2":
		return true
	case "proto3":
		return false
	}
	return features != nil && features.EnumType == "CLOSED"
}

func (n *normalizer) service(desc *descriptorpb.ServiceDescriptorProto, prefix string) (*Service, error) {
	svc := &Service{
		QualifiedName: qualify(prefix, desc.GetName()),
		Deprecated:    desc.GetOptions().GetDeprecated(),
	}
	for _, methodDesc := range desc.GetMethod() {
		method := &Method{
			Name:            methodDesc.GetName(),
			InputType:       strings.TrimPrefix(methodDesc.GetInputType(), "."),
			OutputType:      strings.TrimPrefix(methodDesc.GetOutputType(), "."),
			ClientStreaming: methodDesc.GetClientStreaming(),
			ServerStreaming: methodDesc.GetServerStreaming(),
			Deprecated:      methodDesc.GetOptions().GetDeprecated(),
		}
		switch level := methodDesc.GetOptions().GetIdempotencyLevel(); level {
		case descriptorpb.MethodOptions_IDEMPOTENCY_UNKNOWN:
			// Default, collapsed.
		case descriptorpb.MethodOptions_NO_SIDE_EFFECTS, descriptorpb.MethodOptions_IDEMPOTENT:
			method.IdempotencyLevel = level.String()
		default:
			return nil, &NormalizeError{
				Path:   svc.QualifiedName + "." + method.Name,
				Reason: fmt.Sprintf("unknown idempotency level %v", level),
			}
		}
		svc.Methods = append(svc.Methods, method)
	}
	return svc, nil
}

func (n *normalizer) extension(desc *descriptorpb.FieldDescriptorProto, prefix string) (*Extension, error) {
	field, err := n.field(desc, nil, qualify(prefix, desc.GetName()), n.fileFeatures)
	if err != nil {
		return nil, err
	}
	return &Extension{
		Extendee: strings.TrimPrefix(desc.GetExtendee(), "."),
		Field:    field,
	}, nil
}

func (n *normalizer) fileOptions(opts *descriptorpb.FileOptions) (FileOptions, error) {
	if opts == nil {
		return FileOptions{}, nil
	}
	out := FileOptions{
		JavaPackage:          opts.GetJavaPackage(),
		JavaOuterClassname:   opts.GetJavaOuterClassname(),
		JavaMultipleFiles:    opts.GetJavaMultipleFiles(),
		JavaStringCheckUTF8:  opts.GetJavaStringCheckUtf8(),
		GoPackage:            opts.GetGoPackage(),
		CcGenericServices:    opts.GetCcGenericServices(),
		JavaGenericServices:  opts.GetJavaGenericServices(),
		PyGenericServices:    opts.GetPyGenericServices(),
		ObjcClassPrefix:      opts.GetObjcClassPrefix(),
		CsharpNamespace:      opts.GetCsharpNamespace(),
		SwiftPrefix:          opts.GetSwiftPrefix(),
		PhpClassPrefix:       opts.GetPhpClassPrefix(),
		PhpNamespace:         opts.GetPhpNamespace(),
		PhpMetadataNamespace: opts.GetPhpMetadataNamespace(),
		RubyPackage:          opts.GetRubyPackage(),
		Deprecated:           opts.GetDeprecated(),
	}
	switch mode := opts.GetOptimizeFor(); mode {
	case descriptorpb.FileOptions_SPEED:
		// Default, collapsed.
	case descriptorpb.FileOptions_CODE_SIZE, descriptorpb.FileOptions_LITE_RUNTIME:
		out.OptimizeFor = mode.String()
	default:
		return out, &NormalizeError{Path: "file options", Reason: fmt.Sprintf("unknown optimize_for %v", mode)}
	}
	// cc_enable_arenas defaults to true; keep only an explicit false.
	if opts.CcEnableArenas != nil && !opts.GetCcEnableArenas() {
		enabled := false
		out.CcEnableArenas = &enabled
	}
	out.Features = featureSetFromProto(opts.GetFeatures())
	return out, nil
}

// isSyntheticOneof reports whether the oneof exists only to model proto3
// explicit presence for a single optional field.
func isSyntheticOneof(msg *descriptorpb.DescriptorProto, oneof *descriptorpb.OneofDescriptorProto) bool {
	idx := -1
	for i, o := range msg.GetOneofDecl() {
		if o == oneof {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	var members []*descriptorpb.FieldDescriptorProto
	for _, f := range msg.GetField() {
		if f.OneofIndex != nil && int(f.GetOneofIndex()) == idx {
			members = append(members, f)
		}
	}
	return len(members) == 1 && members[0].GetProto3Optional()
}

func fieldType(desc *descriptorpb.FieldDescriptorProto) (Type, error) {
	ref := strings.TrimPrefix(desc.GetTypeName(), ".")
	switch desc.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return Type{Kind: KindDouble}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return Type{Kind: KindFloat}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return Type{Kind: KindInt64}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return Type{Kind: KindUint64}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return Type{Kind: KindInt32}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return Type{Kind: KindFixed64}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return Type{Kind: KindFixed32}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return Type{Kind: KindBool}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return Type{Kind: KindString}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return Type{Kind: KindGroup, Name: ref}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return Type{Kind: KindMessage, Name: ref}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return Type{Kind: KindBytes}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return Type{Kind: KindUint32}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return Type{Kind: KindEnum, Name: ref}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return Type{Kind: KindSfixed32}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return Type{Kind: KindSfixed64}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return Type{Kind: KindSint32}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return Type{Kind: KindSint64}, nil
	}
	return Type{}, fmt.Errorf("unknown field type %v", desc.GetType())
}

func featureSetFromProto(fs *descriptorpb.FeatureSet) *FeatureSet {
	if fs == nil {
		return nil
	}
	out := &FeatureSet{}
	if fs.FieldPresence != nil {
		out.FieldPresence = fs.GetFieldPresence().String()
	}
	if fs.EnumType != nil {
		out.EnumType = fs.GetEnumType().String()
	}
	if fs.RepeatedFieldEncoding != nil {
		out.RepeatedFieldEncoding = fs.GetRepeatedFieldEncoding().String()
	}
	if fs.Utf8Validation != nil {
		out.UTF8Validation = fs.GetUtf8Validation().String()
	}
	if fs.MessageEncoding != nil {
		out.MessageEncoding = fs.GetMessageEncoding().String()
	}
	if fs.JsonFormat != nil {
		out.JSONFormat = fs.GetJsonFormat().String()
	}
	return out
}

// mergeFeatures overlays child feature settings on the inherited set,
// implementing the file → message → field/enum inheritance chain.
func mergeFeatures(parent, child *FeatureSet) *FeatureSet {
	if child == nil {
		return parent
	}
	if parent == nil {
		return child
	}
	merged := *parent
	if child.FieldPresence != "" {
		merged.FieldPresence = child.FieldPresence
	}
	if child.EnumType != "" {
		merged.EnumType = child.EnumType
	}
	if child.RepeatedFieldEncoding != "" {
		merged.RepeatedFieldEncoding = child.RepeatedFieldEncoding
	}
	if child.UTF8Validation != "" {
		merged.UTF8Validation = child.UTF8Validation
	}
	if child.MessageEncoding != "" {
		merged.MessageEncoding = child.MessageEncoding
	}
	if child.JSONFormat != "" {
		merged.JSONFormat = child.JSONFormat
	}
	return &merged
}

// mergeRanges sorts ranges by start and combines overlapping or adjacent
// intervals into canonical non-overlapping half-open form.
func mergeRanges(ranges []ReservedRange) []ReservedRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
	merged := []ReservedRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// lowerCamel computes the default json_name for a field: underscores are
// dropped and the following letter is capitalized.
func lowerCamel(name string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range name {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sortFile orders every child set by its primary key.
func sortFile(f *File) {
	sortMessages(f.Messages)
	sortEnums(f.Enums)
	sort.Slice(f.Services, func(i, j int) bool {
		return f.Services[i].QualifiedName < f.Services[j].QualifiedName
	})
	for _, s := range f.Services {
		sort.Slice(s.Methods, func(i, j int) bool { return s.Methods[i].Name < s.Methods[j].Name })
	}
	sortExtensions(f.Extensions)
}

func sortMessages(msgs []*Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].QualifiedName < msgs[j].QualifiedName
	})
	for _, m := range msgs {
		sort.Slice(m.Fields, func(i, j int) bool { return m.Fields[i].Number < m.Fields[j].Number })
		sort.Slice(m.Oneofs, func(i, j int) bool { return m.Oneofs[i].Name < m.Oneofs[j].Name })
		sortMessages(m.Messages)
		sortEnums(m.Enums)
		sortExtensions(m.Extensions)
	}
}

func sortEnums(enums []*Enum) {
	sort.Slice(enums, func(i, j int) bool {
		return enums[i].QualifiedName < enums[j].QualifiedName
	})
	for _, e := range enums {
		sort.Slice(e.Values, func(i, j int) bool {
			if e.Values[i].Number != e.Values[j].Number {
				return e.Values[i].Number < e.Values[j].Number
			}
			return e.Values[i].Name < e.Values[j].Name
		})
	}
}

func sortExtensions(exts []*Extension) {
	sort.Slice(exts, func(i, j int) bool {
		if exts[i].Extendee != exts[j].Extendee {
			return exts[i].Extendee < exts[j].Extendee
		}
		return exts[i].Field.Number < exts[j].Field.Number
	})
}
