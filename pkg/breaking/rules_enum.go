package breaking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

func enumNoDelete(samePackageOnly bool) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		if samePackageOnly && prev.Package != curr.Package {
			return nil
		}
		prevEnums := allEnums(prev)
		currEnums := allEnums(curr)
		var changes []Change
		for _, name := range sortedKeys(prevEnums) {
			if _, ok := currEnums[name]; ok {
				continue
			}
			changes = append(changes, changeWithPrevious(
				KindFile, curr.Package, KindEnum, name,
				fmt.Sprintf("Enum %q was deleted.", name)))
		}
		return changes
	}
}

var (
	checkEnumNoDelete        = enumNoDelete(false)
	checkPackageEnumNoDelete = enumNoDelete(true)
)

func checkEnumSameType(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachEnumPair(prev, curr, func(p, c *canonical.Enum) {
		if p.IsClosed == c.IsClosed {
			return
		}
		changes = append(changes, change(KindEnum, c.QualifiedName, fmt.Sprintf(
			"Enum %q changed from %s to %s.", c.QualifiedName, openClosed(p.IsClosed), openClosed(c.IsClosed))))
	})
	return changes
}

func openClosed(closed bool) string {
	if closed {
		return "closed"
	}
	return "open"
}

func checkEnumSameJSONFormat(prev, curr *canonical.File, ctx *Context) []Change {
	prevFormat, currFormat := fileJSONFormat(prev), fileJSONFormat(curr)
	if prevFormat == currFormat {
		return nil
	}
	var changes []Change
	eachEnumPair(prev, curr, func(p, c *canonical.Enum) {
		changes = append(changes, change(KindEnum, c.QualifiedName, fmt.Sprintf(
			"Enum %q JSON format support changed from %q to %q.", c.QualifiedName, prevFormat, currFormat)))
	})
	return changes
}

// enumValueDeleteMode mirrors the field no-delete variants.
type enumValueDeleteMode int

const (
	enumValueDeletePlain enumValueDeleteMode = iota
	enumValueDeleteUnlessNumberReserved
	enumValueDeleteUnlessNameReserved
)

func enumValueNoDelete(mode enumValueDeleteMode) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		var changes []Change
		eachEnumPair(prev, curr, func(p, c *canonical.Enum) {
			currByNumber := c.ValuesByNumber()
			prevByNumber := p.ValuesByNumber()
			for _, number := range sortedNumbers(prevByNumber) {
				prevValues := prevByNumber[number]
				if len(currByNumber[number]) > 0 {
					continue
				}
				switch mode {
				case enumValueDeleteUnlessNumberReserved:
					if c.ReservesNumber(number) {
						continue
					}
				case enumValueDeleteUnlessNameReserved:
					allReserved := true
					for _, v := range prevValues {
						if !c.ReservesName(v.Name) {
							allReserved = false
							break
						}
					}
					if allReserved {
						continue
					}
				}
				suffix := ""
				switch mode {
				case enumValueDeleteUnlessNumberReserved:
					suffix = " without reserving the number"
				case enumValueDeleteUnlessNameReserved:
					suffix = " without reserving the name"
				}
				changes = append(changes, changeWithPrevious(
					KindEnum, c.QualifiedName, KindEnumValue,
					c.QualifiedName+"."+prevValues[0].Name,
					fmt.Sprintf("Enum value %d with name %q on enum %q was deleted%s.",
						number, joinValueNames(prevValues), c.QualifiedName, suffix)))
			}
		})
		return changes
	}
}

var (
	checkEnumValueNoDelete                     = enumValueNoDelete(enumValueDeletePlain)
	checkEnumValueNoDeleteUnlessNumberReserved = enumValueNoDelete(enumValueDeleteUnlessNumberReserved)
	checkEnumValueNoDeleteUnlessNameReserved   = enumValueNoDelete(enumValueDeleteUnlessNameReserved)
)

// checkEnumValueSameName compares the alias-aware name set per number.
func checkEnumValueSameName(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachEnumPair(prev, curr, func(p, c *canonical.Enum) {
		currByNumber := c.ValuesByNumber()
		prevByNumber := p.ValuesByNumber()
		for _, number := range sortedNumbers(prevByNumber) {
			prevValues := prevByNumber[number]
			currValues := currByNumber[number]
			if len(currValues) == 0 {
				continue
			}
			prevNames, currNames := joinValueNames(prevValues), joinValueNames(currValues)
			if prevNames == currNames {
				continue
			}
			changes = append(changes, change(KindEnumValue, c.QualifiedName+"."+currValues[0].Name, fmt.Sprintf(
				"Enum value %d on enum %q changed name from %q to %q.",
				number, c.QualifiedName, prevNames, currNames)))
		}
	})
	return changes
}

func sortedNumbers(m map[int32][]*canonical.EnumValue) []int32 {
	numbers := make([]int32, 0, len(m))
	for n := range m {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func joinValueNames(values []*canonical.EnumValue) string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// checkReservedEnumNoDelete mirrors the message variant: previously
// reserved numbers and names must stay reserved or become actual values.
func checkReservedEnumNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachEnumPair(prev, curr, func(p, c *canonical.Enum) {
		occupied := make(map[int32]bool, len(c.Values))
		for _, v := range c.Values {
			occupied[v.Number] = true
		}
		for _, leftover := range uncoveredRanges(p.ReservedRanges, c.ReservedRanges, occupied) {
			changes = append(changes, change(KindEnum, c.QualifiedName, fmt.Sprintf(
				"Previously reserved range %q on enum %q was deleted.", rangeDisplay(leftover), c.QualifiedName)))
		}
		usedNames := make(map[string]bool, len(c.Values))
		for _, v := range c.Values {
			usedNames[v.Name] = true
		}
		for _, name := range p.ReservedNames {
			if !c.ReservesName(name) && !usedNames[name] {
				changes = append(changes, change(KindEnum, c.QualifiedName, fmt.Sprintf(
					"Previously reserved name %q on enum %q was deleted.", name, c.QualifiedName)))
			}
		}
	})
	return changes
}
