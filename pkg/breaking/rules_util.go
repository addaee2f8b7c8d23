package breaking

import (
	"fmt"
	"sort"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// sortedKeys returns map keys in ascending order. Every helper that
// walks an entity map iterates this way, so rule output never depends
// on map iteration order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// allMessages flattens the message tree into a map keyed by qualified
// name, nested messages included. Synthesized map-entry messages are
// present too: matching them by name is how changes to a map's key or
// value type surface as field changes.
func allMessages(f *canonical.File) map[string]*canonical.Message {
	out := make(map[string]*canonical.Message)
	var walk func(msgs []*canonical.Message)
	walk = func(msgs []*canonical.Message) {
		for _, m := range msgs {
			out[m.QualifiedName] = m
			walk(m.Messages)
		}
	}
	walk(f.Messages)
	return out
}

// allEnums flattens top-level and nested enums by qualified name.
func allEnums(f *canonical.File) map[string]*canonical.Enum {
	out := make(map[string]*canonical.Enum)
	for _, e := range f.Enums {
		out[e.QualifiedName] = e
	}
	var walk func(msgs []*canonical.Message)
	walk = func(msgs []*canonical.Message) {
		for _, m := range msgs {
			for _, e := range m.Enums {
				out[e.QualifiedName] = e
			}
			walk(m.Messages)
		}
	}
	walk(f.Messages)
	return out
}

func allServices(f *canonical.File) map[string]*canonical.Service {
	out := make(map[string]*canonical.Service, len(f.Services))
	for _, s := range f.Services {
		out[s.QualifiedName] = s
	}
	return out
}

// extensionKey identifies an extension by extendee and number.
type extensionKey struct {
	Extendee string
	Number   int32
}

func (k extensionKey) String() string {
	return fmt.Sprintf("%s#%d", k.Extendee, k.Number)
}

// allExtensions collects file-level and message-level extensions.
func allExtensions(f *canonical.File) map[extensionKey]*canonical.Extension {
	out := make(map[extensionKey]*canonical.Extension)
	add := func(exts []*canonical.Extension) {
		for _, e := range exts {
			out[extensionKey{Extendee: e.Extendee, Number: e.Field.Number}] = e
		}
	}
	add(f.Extensions)
	var walk func(msgs []*canonical.Message)
	walk = func(msgs []*canonical.Message) {
		for _, m := range msgs {
			add(m.Extensions)
			walk(m.Messages)
		}
	}
	walk(f.Messages)
	return out
}

// eachMessagePair invokes fn for every message present on both sides,
// matched by qualified name, in name order.
func eachMessagePair(prev, curr *canonical.File, fn func(p, c *canonical.Message)) {
	prevMsgs := allMessages(prev)
	currMsgs := allMessages(curr)
	for _, name := range sortedKeys(prevMsgs) {
		if c, ok := currMsgs[name]; ok {
			fn(prevMsgs[name], c)
		}
	}
}

// eachEnumPair invokes fn for every enum present on both sides, in name
// order.
func eachEnumPair(prev, curr *canonical.File, fn func(p, c *canonical.Enum)) {
	prevEnums := allEnums(prev)
	currEnums := allEnums(curr)
	for _, name := range sortedKeys(prevEnums) {
		if c, ok := currEnums[name]; ok {
			fn(prevEnums[name], c)
		}
	}
}

// eachFieldPair invokes fn for every field matched by number within a
// message present on both sides, and for every extension matched by
// (extendee, number). parent is the qualified name the change anchors
// to: the containing message, or the extendee for extensions.
func eachFieldPair(prev, curr *canonical.File, fn func(parent string, p, c *canonical.Field)) {
	eachMessagePair(prev, curr, func(pm, cm *canonical.Message) {
		for _, pf := range pm.Fields {
			if cf := cm.FieldByNumber(pf.Number); cf != nil {
				fn(pm.QualifiedName, pf, cf)
			}
		}
	})
	prevExts := allExtensions(prev)
	currExts := allExtensions(curr)
	extKeys := make([]string, 0, len(prevExts))
	byDisplay := make(map[string]extensionKey, len(prevExts))
	for key := range prevExts {
		display := key.String()
		extKeys = append(extKeys, display)
		byDisplay[display] = key
	}
	sort.Strings(extKeys)
	for _, display := range extKeys {
		key := byDisplay[display]
		if ce, ok := currExts[key]; ok {
			pe := prevExts[key]
			fn(pe.Extendee, pe.Field, ce.Field)
		}
	}
}

// eachMethodPair invokes fn for every method matched by name within a
// service present on both sides.
func eachMethodPair(prev, curr *canonical.File, fn func(svc string, p, c *canonical.Method)) {
	prevSvcs := allServices(prev)
	currSvcs := allServices(curr)
	for _, name := range sortedKeys(prevSvcs) {
		cs, ok := currSvcs[name]
		if !ok {
			continue
		}
		for _, pm := range prevSvcs[name].Methods {
			if cm := cs.MethodByName(pm.Name); cm != nil {
				fn(name, pm, cm)
			}
		}
	}
}

// fieldName is how changes refer to a field: the message-qualified name.
func fieldName(parent string, f *canonical.Field) string {
	return parent + "." + f.Name
}

// fieldDescription renders a field the way diagnostics name it.
func fieldDescription(parent string, f *canonical.Field) string {
	return fmt.Sprintf("Field %d with name %q on message %q", f.Number, f.Name, parent)
}

// effectiveCardinality folds proto3 implicit presence into optional so
// that proto2 optional, proto3 singular, and proto3 optional compare
// equal, per the synthetic-oneof equivalence.
func effectiveCardinality(f *canonical.Field) canonical.Cardinality {
	if f.Cardinality == canonical.CardinalitySingular {
		return canonical.CardinalityOptional
	}
	return f.Cardinality
}

// cardinalityDisplay includes effective packedness for repeated fields,
// since packed encoding is part of the wire contract.
func cardinalityDisplay(file *canonical.File, f *canonical.Field) string {
	card := effectiveCardinality(f)
	if card != canonical.CardinalityRepeated {
		return card.String()
	}
	if effectivePacked(file, f) {
		return "repeated packed"
	}
	return "repeated"
}

// effectivePacked resolves packedness: the explicit option when set,
// otherwise the syntax default (packed in proto3 and editions, expanded
// in proto2). Only packable scalar kinds pack.
func effectivePacked(file *canonical.File, f *canonical.Field) bool {
	if !packableKind(f.Type.Kind) {
		return false
	}
	if f.Options.Packed != nil {
		return *f.Options.Packed
	}
	switch file.Syntax {
	case "proto2":
		return false
	case "editions":
		if file.Options.Features != nil && file.Options.Features.RepeatedFieldEncoding == "EXPANDED" {
			return false
		}
		return true
	default:
		return true
	}
}

func packableKind(k canonical.TypeKind) bool {
	switch k {
	case canonical.KindString, canonical.KindBytes, canonical.KindMessage, canonical.KindGroup:
		return false
	}
	return true
}

// fileJSONFormat is the effective JSON format support at file level:
// proto3 and editions files support canonical JSON, proto2 is best
// effort only.
func fileJSONFormat(f *canonical.File) string {
	if f.Syntax == "proto2" {
		return "LEGACY_BEST_EFFORT"
	}
	if f.Syntax == "editions" && f.Options.Features != nil && f.Options.Features.JSONFormat != "" {
		return f.Options.Features.JSONFormat
	}
	return "ALLOW"
}

// displayValue renders an option value for a message, showing absence
// explicitly.
func displayValue(v string) string {
	if v == "" {
		return `""`
	}
	return fmt.Sprintf("%q", v)
}

// uncoveredRanges subtracts cover from each of prev and reports the
// leftover intervals, additionally ignoring the given single numbers
// (field or enum-value occupation counts as coverage).
func uncoveredRanges(prev, cover []canonical.ReservedRange, occupied map[int32]bool) []canonical.ReservedRange {
	var leftover []canonical.ReservedRange
	for _, p := range prev {
		segments := []canonical.ReservedRange{p}
		for _, c := range cover {
			var next []canonical.ReservedRange
			for _, s := range segments {
				if c.End <= s.Start || c.Start >= s.End {
					next = append(next, s)
					continue
				}
				if c.Start > s.Start {
					next = append(next, canonical.ReservedRange{Start: s.Start, End: c.Start})
				}
				if c.End < s.End {
					next = append(next, canonical.ReservedRange{Start: c.End, End: s.End})
				}
			}
			segments = next
		}
		for _, s := range segments {
			occupiedCount := int32(0)
			for n := range occupied {
				if s.Contains(n) {
					occupiedCount++
				}
			}
			if s.End-s.Start > occupiedCount {
				leftover = append(leftover, s)
			}
		}
	}
	return leftover
}

// rangeDisplay renders a half-open range the way reservations print:
// single numbers plainly, larger ranges with an inclusive end.
func rangeDisplay(r canonical.ReservedRange) string {
	if r.End == r.Start+1 {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d to %d", r.Start, r.End-1)
}
