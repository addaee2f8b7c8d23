package breaking

import (
	"fmt"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// fieldDeleteMode selects the reservation escape hatch of the no-delete
// variants.
type fieldDeleteMode int

const (
	fieldDeletePlain fieldDeleteMode = iota
	fieldDeleteUnlessNumberReserved
	fieldDeleteUnlessNameReserved
)

func fieldNoDelete(mode fieldDeleteMode) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		var changes []Change
		eachMessagePair(prev, curr, func(p, c *canonical.Message) {
			for _, pf := range p.Fields {
				if c.FieldByNumber(pf.Number) != nil {
					continue
				}
				switch mode {
				case fieldDeleteUnlessNumberReserved:
					if c.ReservesNumber(pf.Number) {
						continue
					}
				case fieldDeleteUnlessNameReserved:
					if c.ReservesName(pf.Name) {
						continue
					}
				}
				suffix := ""
				switch mode {
				case fieldDeleteUnlessNumberReserved:
					suffix = " without reserving the number"
				case fieldDeleteUnlessNameReserved:
					suffix = " without reserving the name"
				}
				changes = append(changes, changeWithPrevious(
					KindMessage, c.QualifiedName, KindField, fieldName(p.QualifiedName, pf),
					fmt.Sprintf("%s was deleted%s.", fieldDescription(p.QualifiedName, pf), suffix)))
			}
		})
		return changes
	}
}

var (
	checkFieldNoDelete                     = fieldNoDelete(fieldDeletePlain)
	checkFieldNoDeleteUnlessNumberReserved = fieldNoDelete(fieldDeleteUnlessNumberReserved)
	checkFieldNoDeleteUnlessNameReserved   = fieldNoDelete(fieldDeleteUnlessNameReserved)
)

// fieldProperty builds a same-property check over one field attribute.
func fieldProperty(property string, get func(f *canonical.Field) string) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		var changes []Change
		eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
			prevValue, currValue := get(pf), get(cf)
			if prevValue == currValue {
				return
			}
			changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
				"%s changed %s from %s to %s.",
				fieldDescription(parent, cf), property, displayValue(prevValue), displayValue(currValue))))
		})
		return changes
	}
}

var (
	checkFieldSameName               = fieldProperty("name", func(f *canonical.Field) string { return f.Name })
	checkFieldSameJSONName           = fieldProperty("json_name", func(f *canonical.Field) string { return f.JSONName })
	checkFieldSameDefault            = fieldProperty("default value", func(f *canonical.Field) string { return f.Options.Default })
	checkFieldSameCType              = fieldProperty("ctype", func(f *canonical.Field) string { return f.Options.CType })
	checkFieldSameJSType             = fieldProperty("jstype", func(f *canonical.Field) string { return f.Options.JSType })
	checkFieldSameCppStringType      = fieldProperty("C++ string type", func(f *canonical.Field) string { return f.Options.CppStringType })
	checkFieldSameJavaUTF8Validation = fieldProperty("Java UTF-8 validation", func(f *canonical.Field) string { return f.Options.JavaUTF8Validation })
	checkFieldSameUTF8Validation     = fieldProperty("UTF-8 validation", func(f *canonical.Field) string { return f.Options.UTF8Validation })
	checkFieldSameOneof              = fieldProperty("oneof membership", func(f *canonical.Field) string { return oneofDisplay(f) })
)

func checkFieldSameType(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		if pf.Type.Equal(cf.Type) {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed type from %q to %q.", fieldDescription(parent, cf), pf.Type, cf.Type)))
	})
	return changes
}

func checkFieldSameCardinality(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		prevCard, currCard := cardinalityDisplay(prev, pf), cardinalityDisplay(curr, cf)
		if prevCard == currCard {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed cardinality from %q to %q.", fieldDescription(parent, cf), prevCard, currCard)))
	})
	return changes
}

// checkFieldSameLabel is the deprecated descriptor-label comparison kept
// for configurations that still name it. It ignores packedness, unlike
// FIELD_SAME_CARDINALITY.
func checkFieldSameLabel(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachFieldPair(prev, curr, func(parent string, pf, cf *canonical.Field) {
		prevLabel, currLabel := effectiveCardinality(pf), effectiveCardinality(cf)
		if prevLabel == currLabel {
			return
		}
		changes = append(changes, change(KindField, fieldName(parent, cf), fmt.Sprintf(
			"%s changed label from %q to %q.", fieldDescription(parent, cf), prevLabel, currLabel)))
	})
	return changes
}
