package breaking

import (
	"fmt"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// Wire compatibility groups follow the protobuf field-updating rules:
// kinds in the same group deserialize each other's encoding. string and
// bytes sit in separate groups because string may evolve to bytes but
// not the reverse (bytes are not guaranteed valid UTF-8).
var wireCompatibilityGroup = map[canonical.TypeKind]int{
	canonical.KindInt32:    1,
	canonical.KindInt64:    1,
	canonical.KindUint32:   1,
	canonical.KindUint64:   1,
	canonical.KindBool:     1,
	canonical.KindSint32:   2,
	canonical.KindSint64:   2,
	canonical.KindString:   3,
	canonical.KindBytes:    4,
	canonical.KindFixed32:  5,
	canonical.KindSfixed32: 5,
	canonical.KindFixed64:  6,
	canonical.KindSfixed64: 6,
	canonical.KindDouble:   7,
	canonical.KindFloat:    8,
	canonical.KindGroup:    9,
	canonical.KindMessage:  10,
	canonical.KindEnum:     11,
}

// The wire+JSON groups are the intersection of wire and canonical-JSON
// compatibility: JSON renders 64-bit integers as strings and 32-bit as
// numbers, so the varint group splits.
var wireJSONCompatibilityGroup = map[canonical.TypeKind]int{
	canonical.KindInt32:    1,
	canonical.KindUint32:   1,
	canonical.KindInt64:    2,
	canonical.KindUint64:   2,
	canonical.KindFixed32:  3,
	canonical.KindSfixed32: 3,
	canonical.KindFixed64:  4,
	canonical.KindSfixed64: 4,
	canonical.KindBool:     5,
	canonical.KindSint32:   6,
	canonical.KindSint64:   7,
	canonical.KindString:   8,
	canonical.KindBytes:    9,
	canonical.KindDouble:   10,
	canonical.KindFloat:    11,
	canonical.KindGroup:    12,
	canonical.KindMessage:  13,
	canonical.KindEnum:     14,
}

func checkFieldWireCompatibleType(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		if wireCompatibleType(prev, curr, pf, cf) {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed type from %q to %q, which is not wire compatible.",
			fieldDescription(parent, cf), pf.Type, cf.Type)))
	})
	return changes
}

func wireCompatibleType(prevFile, currFile *canonical.File, pf, cf *canonical.Field) bool {
	if pf.Type.Equal(cf.Type) {
		return true
	}
	// string may become bytes; the reverse loses the UTF-8 guarantee.
	if pf.Type.Kind == canonical.KindString && cf.Type.Kind == canonical.KindBytes {
		return true
	}
	if wireCompatibilityGroup[pf.Type.Kind] != wireCompatibilityGroup[cf.Type.Kind] {
		return false
	}
	switch cf.Type.Kind {
	case canonical.KindMessage, canonical.KindGroup:
		return pf.Type.Name == cf.Type.Name
	case canonical.KindEnum:
		if pf.Type.Name == cf.Type.Name {
			return true
		}
		return enumSupersedes(currFile.EnumByName(cf.Type.Name), prevFile.EnumByName(pf.Type.Name))
	}
	return true
}

// enumSupersedes reports whether every number of the old enum exists in
// the new one, the condition for swapping one enum reference for
// another without losing values on the wire.
func enumSupersedes(next, old *canonical.Enum) bool {
	if next == nil || old == nil {
		return false
	}
	nextNumbers := next.ValuesByNumber()
	for _, v := range old.Values {
		if len(nextNumbers[v.Number]) == 0 {
			return false
		}
	}
	return true
}

func checkFieldWireJSONCompatibleType(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		if wireJSONCompatibleType(pf, cf) {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed type from %q to %q, which is not wire or JSON compatible.",
			fieldDescription(parent, cf), pf.Type, cf.Type)))
	})
	return changes
}

func wireJSONCompatibleType(pf, cf *canonical.Field) bool {
	if pf.Type.Equal(cf.Type) {
		return true
	}
	if wireJSONCompatibilityGroup[pf.Type.Kind] != wireJSONCompatibilityGroup[cf.Type.Kind] {
		return false
	}
	switch cf.Type.Kind {
	case canonical.KindMessage, canonical.KindGroup, canonical.KindEnum:
		// JSON encodes these by name, so the reference must not move.
		return pf.Type.Name == cf.Type.Name
	}
	return true
}

// wireCompatibleCardinality groups presence-only cardinalities together:
// proto2 optional, proto3 implicit, and proto3 optional all encode a
// field at most once.
func wireCompatibleCardinality(a, b canonical.Cardinality) bool {
	normalize := func(c canonical.Cardinality) canonical.Cardinality {
		if c == canonical.CardinalitySingular {
			return canonical.CardinalityOptional
		}
		return c
	}
	return normalize(a) == normalize(b)
}

func checkFieldWireCompatibleCardinality(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		if wireCompatibleCardinality(pf.Cardinality, cf.Cardinality) {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed cardinality from %q to %q, which is not wire compatible.",
			fieldDescription(parent, cf), effectiveCardinality(pf), effectiveCardinality(cf))))
	})
	return changes
}

func checkFieldWireJSONCompatibleCardinality(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		if wireCompatibleCardinality(pf.Cardinality, cf.Cardinality) {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed cardinality from %q to %q, which is not wire or JSON compatible.",
			fieldDescription(parent, cf), effectiveCardinality(pf), effectiveCardinality(cf))))
	})
	return changes
}
