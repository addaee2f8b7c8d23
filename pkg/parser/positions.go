package parser

import "strings"

// PositionIndex maps declaration names to 1-based line numbers, built
// from a plain scan of the source. It exists only to anchor diagnostics;
// lookups that miss simply leave the position unset.
type PositionIndex struct {
	messages map[string]int
	enums    map[string]int
	services map[string]int
	fields   map[string]int
	oneofs   map[string]int
	values   map[string]int
}

// IndexPositions scans proto source and records the line of each
// declaration by its short name.
func IndexPositions(content string) *PositionIndex {
	idx := &PositionIndex{
		messages: make(map[string]int),
		enums:    make(map[string]int),
		services: make(map[string]int),
		fields:   make(map[string]int),
		oneofs:   make(map[string]int),
		values:   make(map[string]int),
	}

	for i, line := range strings.Split(content, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "message "):
			idx.record(idx.messages, trimmed, lineNum)
		case strings.HasPrefix(trimmed, "enum "):
			idx.record(idx.enums, trimmed, lineNum)
		case strings.HasPrefix(trimmed, "service "):
			idx.record(idx.services, trimmed, lineNum)
		case strings.HasPrefix(trimmed, "oneof "):
			idx.record(idx.oneofs, trimmed, lineNum)
		case strings.HasPrefix(trimmed, "rpc "):
			name := trimmed[len("rpc "):]
			if cut := strings.IndexAny(name, "( "); cut > 0 {
				name = name[:cut]
			}
			if _, seen := idx.fields[name]; !seen {
				idx.fields[name] = lineNum
			}
		case strings.Contains(trimmed, "=") && strings.HasSuffix(trimmed, ";"):
			// Field and enum-value declarations: "type name = number;".
			parts := strings.Fields(trimmed)
			for j, part := range parts {
				if part == "=" && j > 0 {
					name := parts[j-1]
					if _, seen := idx.fields[name]; !seen {
						idx.fields[name] = lineNum
					}
					if _, seen := idx.values[name]; !seen {
						idx.values[name] = lineNum
					}
					break
				}
			}
		}
	}
	return idx
}

func (p *PositionIndex) record(m map[string]int, decl string, line int) {
	parts := strings.Fields(decl)
	if len(parts) < 2 {
		return
	}
	name := strings.TrimSuffix(parts[1], "{")
	if _, seen := m[name]; !seen {
		m[name] = line
	}
}

// Line returns the recorded line for an entity, looked up by the last
// segment of its qualified name. Zero means unknown.
func (p *PositionIndex) Line(kind, qualifiedName string) int {
	if p == nil {
		return 0
	}
	name := qualifiedName
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	switch kind {
	case "message":
		return p.messages[name]
	case "enum":
		return p.enums[name]
	case "service":
		return p.services[name]
	case "oneof":
		return p.oneofs[name]
	case "enum_value":
		return p.values[name]
	case "field", "rpc", "extension":
		return p.fields[name]
	}
	return 0
}
