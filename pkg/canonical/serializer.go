package canonical

import (
	"bytes"
	"encoding/binary"
)

// Section tags keep the encoding a bijection with the value: every
// collection and every optional is introduced by a distinct byte, so no
// two distinct canonical files can share a serialization.
const (
	tagAbsent  byte = 0x00
	tagPresent byte = 0x01

	tagFile      byte = 0x10
	tagMessage   byte = 0x11
	tagField     byte = 0x12
	tagEnum      byte = 0x13
	tagEnumValue byte = 0x14
	tagService   byte = 0x15
	tagMethod    byte = 0x16
	tagOneof     byte = 0x17
	tagExtension byte = 0x18
	tagRange     byte = 0x19
	tagFeatures  byte = 0x1a
)

// Serialize produces the deterministic byte encoding of a canonical
// file. Two canonical values are equal iff their serializations are
// byte-equal. The encoding is stable across releases; changing it is a
// semantic-versioning break because it invalidates stored fingerprints.
func Serialize(f *File) []byte {
	w := &writer{}
	w.byte(tagFile)
	w.string(f.Syntax)
	w.string(f.Edition)
	w.string(f.Package)
	w.stringList(f.Dependencies)
	w.fileOptions(f.Options)
	w.count(len(f.Messages))
	for _, m := range f.Messages {
		w.message(m)
	}
	w.count(len(f.Enums))
	for _, e := range f.Enums {
		w.enum(e)
	}
	w.count(len(f.Services))
	for _, s := range f.Services {
		w.service(s)
	}
	w.count(len(f.Extensions))
	for _, e := range f.Extensions {
		w.extension(e)
	}
	return w.buf.Bytes()
}

// writer accumulates the encoding. Strings are length-prefixed UTF-8,
// integers fixed-width little-endian.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) byte(b byte) {
	w.buf.WriteByte(b)
}

func (w *writer) uint32(v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	w.buf.Write(scratch[:])
}

func (w *writer) int32(v int32) {
	w.uint32(uint32(v))
}

func (w *writer) count(n int) {
	w.uint32(uint32(n))
}

func (w *writer) bool(v bool) {
	if v {
		w.byte(1)
		return
	}
	w.byte(0)
}

func (w *writer) string(s string) {
	w.uint32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) stringList(ss []string) {
	w.count(len(ss))
	for _, s := range ss {
		w.string(s)
	}
}

func (w *writer) optionalBool(v *bool) {
	if v == nil {
		w.byte(tagAbsent)
		return
	}
	w.byte(tagPresent)
	w.bool(*v)
}

func (w *writer) message(m *Message) {
	w.byte(tagMessage)
	w.string(m.QualifiedName)
	w.count(len(m.Fields))
	for _, f := range m.Fields {
		w.field(f)
	}
	w.count(len(m.Oneofs))
	for _, o := range m.Oneofs {
		w.byte(tagOneof)
		w.string(o.Name)
		w.bool(o.Deprecated)
	}
	w.ranges(m.ReservedRanges)
	w.stringList(m.ReservedNames)
	w.ranges(m.ExtensionRanges)
	w.bool(m.Options.MapEntry)
	w.bool(m.Options.MessageSetWireFormat)
	w.bool(m.Options.NoStandardDescriptorAccessor)
	w.bool(m.Options.Deprecated)
	w.count(len(m.Messages))
	for _, nested := range m.Messages {
		w.message(nested)
	}
	w.count(len(m.Enums))
	for _, e := range m.Enums {
		w.enum(e)
	}
	w.count(len(m.Extensions))
	for _, e := range m.Extensions {
		w.extension(e)
	}
}

func (w *writer) field(f *Field) {
	w.byte(tagField)
	w.int32(f.Number)
	w.string(f.Name)
	w.string(f.JSONName)
	w.byte(byte(f.Cardinality))
	w.byte(byte(f.Type.Kind))
	w.string(f.Type.Name)
	w.string(f.Oneof)
	w.bool(f.SyntheticOneof)
	w.string(f.Options.CType)
	w.string(f.Options.JSType)
	w.optionalBool(f.Options.Packed)
	w.bool(f.Options.Lazy)
	w.bool(f.Options.Deprecated)
	w.string(f.Options.CppStringType)
	w.string(f.Options.JavaUTF8Validation)
	w.string(f.Options.UTF8Validation)
	w.string(f.Options.Default)
}

func (w *writer) enum(e *Enum) {
	w.byte(tagEnum)
	w.string(e.QualifiedName)
	w.count(len(e.Values))
	for _, v := range e.Values {
		w.byte(tagEnumValue)
		w.int32(v.Number)
		w.string(v.Name)
		w.bool(v.Deprecated)
	}
	w.ranges(e.ReservedRanges)
	w.stringList(e.ReservedNames)
	w.bool(e.AllowAlias)
	w.bool(e.Deprecated)
	w.bool(e.IsClosed)
}

func (w *writer) service(s *Service) {
	w.byte(tagService)
	w.string(s.QualifiedName)
	w.bool(s.Deprecated)
	w.count(len(s.Methods))
	for _, m := range s.Methods {
		w.byte(tagMethod)
		w.string(m.Name)
		w.string(m.InputType)
		w.string(m.OutputType)
		w.bool(m.ClientStreaming)
		w.bool(m.ServerStreaming)
		w.string(m.IdempotencyLevel)
		w.bool(m.Deprecated)
	}
}

func (w *writer) extension(e *Extension) {
	w.byte(tagExtension)
	w.string(e.Extendee)
	w.field(e.Field)
}

func (w *writer) ranges(rs []ReservedRange) {
	w.count(len(rs))
	for _, r := range rs {
		w.byte(tagRange)
		w.int32(r.Start)
		w.int32(r.End)
	}
}

func (w *writer) fileOptions(o FileOptions) {
	w.string(o.JavaPackage)
	w.string(o.JavaOuterClassname)
	w.bool(o.JavaMultipleFiles)
	w.bool(o.JavaStringCheckUTF8)
	w.string(o.OptimizeFor)
	w.string(o.GoPackage)
	w.bool(o.CcGenericServices)
	w.bool(o.JavaGenericServices)
	w.bool(o.PyGenericServices)
	w.optionalBool(o.CcEnableArenas)
	w.string(o.ObjcClassPrefix)
	w.string(o.CsharpNamespace)
	w.string(o.SwiftPrefix)
	w.string(o.PhpClassPrefix)
	w.string(o.PhpNamespace)
	w.string(o.PhpMetadataNamespace)
	w.string(o.RubyPackage)
	w.bool(o.Deprecated)
	if o.Features == nil {
		w.byte(tagAbsent)
		return
	}
	w.byte(tagFeatures)
	w.string(o.Features.FieldPresence)
	w.string(o.Features.EnumType)
	w.string(o.Features.RepeatedFieldEncoding)
	w.string(o.Features.UTF8Validation)
	w.string(o.Features.MessageEncoding)
	w.string(o.Features.JSONFormat)
}

// Equal reports whether two canonical files are the same value, by way
// of the serialization bijection.
func Equal(a, b *File) bool {
	return bytes.Equal(Serialize(a), Serialize(b))
}
