// Package breaking evaluates backward-compatibility rules over pairs of
// canonical protobuf files. The rule catalog mirrors the Buf breaking
// catalog; each rule is a pure function that emits located change
// records and never fails.
package breaking

import (
	"sort"

	"github.com/platinummonkey/protosign/pkg/parser"
)

// Change is one diagnostic emitted by a rule.
type Change struct {
	RuleID           string    `json:"rule_id"`
	Categories       []string  `json:"categories"`
	Message          string    `json:"message"`
	PreviousLocation *Location `json:"previous_location,omitempty"`
	CurrentLocation  Location  `json:"current_location"`
}

// Location identifies the entity a change is anchored to. Line is
// 1-based and zero when the parser supplied no position.
type Location struct {
	FilePath   string `json:"file_path"`
	EntityKind string `json:"entity_kind"`
	EntityName string `json:"entity_name"`
	Line       int    `json:"line,omitempty"`
}

// Entity kinds used in locations.
const (
	KindFile      = "file"
	KindMessage   = "message"
	KindField     = "field"
	KindEnum      = "enum"
	KindEnumValue = "enum_value"
	KindService   = "service"
	KindRPC       = "rpc"
	KindOneof     = "oneof"
	KindExtension = "extension"
)

// Context carries the file-pair metadata rules need to locate their
// findings. Rules read it; they never mutate it.
type Context struct {
	PreviousPath      string
	CurrentPath       string
	PreviousPositions *parser.PositionIndex
	CurrentPositions  *parser.PositionIndex
}

// sortChanges applies the deterministic total ordering
// (rule id, current entity name, line), with the previous entity and
// message as tie-breakers so equal anchors still order stably.
func sortChanges(changes []Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.CurrentLocation.EntityName != b.CurrentLocation.EntityName {
			return a.CurrentLocation.EntityName < b.CurrentLocation.EntityName
		}
		if a.CurrentLocation.Line != b.CurrentLocation.Line {
			return a.CurrentLocation.Line < b.CurrentLocation.Line
		}
		if (a.PreviousLocation != nil) != (b.PreviousLocation != nil) {
			return b.PreviousLocation != nil
		}
		if a.PreviousLocation != nil && a.PreviousLocation.EntityName != b.PreviousLocation.EntityName {
			return a.PreviousLocation.EntityName < b.PreviousLocation.EntityName
		}
		return a.Message < b.Message
	})
}

// change is the shorthand rule bodies use: kind/name of the current
// anchor plus the message. The runner completes paths, lines, rule id,
// and categories.
func change(kind, name, message string) Change {
	return Change{
		Message:         message,
		CurrentLocation: Location{EntityKind: kind, EntityName: name},
	}
}

// changeWithPrevious also anchors the previous side, used by no-delete
// rules whose subject only exists in the previous file.
func changeWithPrevious(kind, name, prevKind, prevName, message string) Change {
	c := change(kind, name, message)
	c.PreviousLocation = &Location{EntityKind: prevKind, EntityName: prevName}
	return c
}
