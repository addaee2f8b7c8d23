package breaking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

func messageNoDelete(samePackageOnly bool) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		if samePackageOnly && prev.Package != curr.Package {
			return nil
		}
		prevMsgs := allMessages(prev)
		currMsgs := allMessages(curr)
		var changes []Change
		for _, name := range sortedKeys(prevMsgs) {
			if _, ok := currMsgs[name]; ok {
				continue
			}
			// Map entries are synthesized; their deletion is already
			// reported through the map field.
			if prevMsgs[name].Options.MapEntry {
				continue
			}
			changes = append(changes, changeWithPrevious(
				KindFile, curr.Package, KindMessage, name,
				fmt.Sprintf("Message %q was deleted.", name)))
		}
		return changes
	}
}

var (
	checkMessageNoDelete        = messageNoDelete(false)
	checkPackageMessageNoDelete = messageNoDelete(true)
)

func checkMessageNoRemoveStandardDescriptorAccessor(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		if !p.Options.NoStandardDescriptorAccessor && c.Options.NoStandardDescriptorAccessor {
			changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
				"Message %q option \"no_standard_descriptor_accessor\" changed from false to true.", c.QualifiedName)))
		}
	})
	return changes
}

func checkMessageSameMessageSetWireFormat(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		if p.Options.MessageSetWireFormat != c.Options.MessageSetWireFormat {
			changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
				"Message %q option \"message_set_wire_format\" changed from %v to %v.",
				c.QualifiedName, p.Options.MessageSetWireFormat, c.Options.MessageSetWireFormat)))
		}
	})
	return changes
}

func checkMessageSameJSONFormat(prev, curr *canonical.File, ctx *Context) []Change {
	prevFormat, currFormat := fileJSONFormat(prev), fileJSONFormat(curr)
	if prevFormat == currFormat {
		return nil
	}
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
			"Message %q JSON format support changed from %q to %q.", c.QualifiedName, prevFormat, currFormat)))
	})
	return changes
}

func checkMessageSameRequiredFields(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		prevRequired := requiredSet(p)
		currRequired := requiredSet(c)
		for _, f := range c.Fields {
			if currRequired[f.Number] && !prevRequired[f.Number] {
				changes = append(changes, change(KindField, fieldName(c.QualifiedName, f), fmt.Sprintf(
					"Message %q added required field %d.", c.QualifiedName, f.Number)))
			}
		}
		for _, f := range p.Fields {
			if prevRequired[f.Number] && !currRequired[f.Number] {
				changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
					"Message %q removed required field %d.", c.QualifiedName, f.Number)))
			}
		}
	})
	return changes
}

func requiredSet(m *canonical.Message) map[int32]bool {
	out := make(map[int32]bool)
	for _, f := range m.Fields {
		if f.Cardinality == canonical.CardinalityRequired {
			out[f.Number] = true
		}
	}
	return out
}

func checkOneofNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		for _, oneof := range p.Oneofs {
			if c.OneofByName(oneof.Name) == nil {
				changes = append(changes, changeWithPrevious(
					KindMessage, c.QualifiedName, KindOneof, c.QualifiedName+"."+oneof.Name,
					fmt.Sprintf("Oneof %q was deleted from message %q.", oneof.Name, c.QualifiedName)))
			}
		}
	})
	return changes
}

// checkReservedMessageNoDelete requires every previously reserved number
// and name to stay reserved, or be occupied by an actual field:
// re-occupying a reserved number is a deliberate re-use, not a loss of
// the reservation.
func checkReservedMessageNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		occupied := make(map[int32]bool, len(c.Fields))
		for _, f := range c.Fields {
			occupied[f.Number] = true
		}
		for _, leftover := range uncoveredRanges(p.ReservedRanges, c.ReservedRanges, occupied) {
			changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
				"Previously reserved range %q on message %q was deleted.", rangeDisplay(leftover), c.QualifiedName)))
		}
		usedNames := make(map[string]bool, len(c.Fields))
		for _, f := range c.Fields {
			usedNames[f.Name] = true
		}
		for _, name := range p.ReservedNames {
			if !c.ReservesName(name) && !usedNames[name] {
				changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
					"Previously reserved name %q on message %q was deleted.", name, c.QualifiedName)))
			}
		}
	})
	return changes
}

// checkExtensionMessageNoDelete requires extension ranges to stay
// declared on a message once published.
func checkExtensionMessageNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	var changes []Change
	eachMessagePair(prev, curr, func(p, c *canonical.Message) {
		for _, leftover := range uncoveredRanges(p.ExtensionRanges, c.ExtensionRanges, nil) {
			changes = append(changes, change(KindMessage, c.QualifiedName, fmt.Sprintf(
				"Extension range %q on message %q was deleted.", rangeDisplay(leftover), c.QualifiedName)))
		}
	})
	return changes
}

func extensionNoDelete(samePackageOnly bool) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		if samePackageOnly && prev.Package != curr.Package {
			return nil
		}
		prevExts := allExtensions(prev)
		currExts := allExtensions(curr)
		displays := make([]string, 0, len(prevExts))
		byDisplay := make(map[string]extensionKey, len(prevExts))
		for key := range prevExts {
			display := key.String()
			displays = append(displays, display)
			byDisplay[display] = key
		}
		sort.Strings(displays)
		var changes []Change
		for _, display := range displays {
			key := byDisplay[display]
			if _, ok := currExts[key]; ok {
				continue
			}
			ext := prevExts[key]
			name := ext.Extendee + "." + ext.Field.Name
			changes = append(changes, changeWithPrevious(
				KindFile, curr.Package, KindExtension, name,
				fmt.Sprintf("Extension %d with name %q on message %q was deleted.",
					ext.Field.Number, ext.Field.Name, ext.Extendee)))
		}
		return changes
	}
}

var (
	checkExtensionNoDelete        = extensionNoDelete(false)
	checkPackageExtensionNoDelete = extensionNoDelete(true)
)

// oneofDisplay names a field's oneof for diagnostics; synthetic oneofs
// read as absence.
func oneofDisplay(f *canonical.Field) string {
	if f.Oneof == "" {
		return "(none)"
	}
	return strings.TrimSpace(f.Oneof)
}
