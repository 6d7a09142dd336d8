package sdkgen

import (
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

const fileHeader = "// Auto Generated file, do not modify\n"

const indentUnit = "  "

// finishFile ends src with exactly one newline.
func finishFile(src string) string {
	return strings.TrimRight(src, "\n") + "\n"
}

// tsMember is one member of an object type.
type tsMember struct {
	Name     string
	Optional bool
	Nullable bool
	Type     string    // rendered type, unused when Inline is set
	Inline   *tsObject // anonymous object type
}

// tsObject is an object type literal.
type tsObject struct {
	Members []tsMember
}

func (o *tsObject) Add(m tsMember) { o.Members = append(o.Members, m) }

func (o *tsObject) Has(name string) bool {
	for _, m := range o.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (o *tsObject) AllOptional() bool {
	for _, m := range o.Members {
		if !m.Optional {
			return false
		}
	}
	return true
}

func (o *tsObject) Names() []string {
	names := make([]string, len(o.Members))
	for i, m := range o.Members {
		names[i] = m.Name
	}
	return names
}

func (o *tsObject) write(sb *strings.Builder, depth int) {
	sb.WriteString("{\n")
	pad := strings.Repeat(indentUnit, depth+1)
	for _, m := range o.Members {
		sb.WriteString(pad)
		sb.WriteString(tsPropertyKey(m.Name))
		if m.Optional {
			sb.WriteString("?: ")
		} else {
			sb.WriteString(": ")
		}
		if m.Inline != nil {
			m.Inline.write(sb, depth+1)
		} else {
			sb.WriteString(m.Type)
		}
		if m.Nullable {
			sb.WriteString(" | null")
		}
		sb.WriteString(";\n")
	}
	sb.WriteString(strings.Repeat(indentUnit, depth))
	sb.WriteString("}")
}

// writeInterface emits "export interface name { ... }".
func writeInterface(sb *strings.Builder, name string, obj *tsObject) {
	sb.WriteString("export interface ")
	sb.WriteString(name)
	sb.WriteString(" ")
	obj.write(sb, 0)
	sb.WriteString("\n")
}

// writeEnum emits the value table and its derived type. The derived type is
// the union of values when any element carries a raw literal, otherwise the
// union of keys.
func writeEnum(sb *strings.Builder, name string, elements []EnumElement) {
	sb.WriteString("export const ")
	sb.WriteString(name)
	sb.WriteString(" = {\n")
	anyRaw := false
	for _, el := range elements {
		sb.WriteString(indentUnit)
		sb.WriteString(tsString(el.Key))
		sb.WriteString(": ")
		if el.Raw != nil {
			anyRaw = true
			sb.WriteString(*el.Raw)
		} else {
			sb.WriteString(tsString(el.Key))
		}
		sb.WriteString(",\n")
	}
	sb.WriteString("} as const;\n\n")
	if anyRaw {
		sb.WriteString("export type " + name + " = typeof " + name + "[keyof typeof " + name + "];\n")
	} else {
		sb.WriteString("export type " + name + " = keyof typeof " + name + ";\n")
	}
}

// tsEntry is one key/value pair of an object literal expression.
type tsEntry struct {
	Key   string
	Value string
}

// writeObjectLiteral emits "{ key: value, ... }" at the given depth.
func writeObjectLiteral(sb *strings.Builder, entries []tsEntry, depth int) {
	sb.WriteString("{\n")
	pad := strings.Repeat(indentUnit, depth+1)
	for _, e := range entries {
		sb.WriteString(pad)
		sb.WriteString(tsPropertyKey(e.Key))
		sb.WriteString(": ")
		sb.WriteString(e.Value)
		sb.WriteString(",\n")
	}
	sb.WriteString(strings.Repeat(indentUnit, depth))
	sb.WriteString("}")
}

// importLine renders one named import. symbols are emitted in the given order.
func importLine(symbols []string, from string) string {
	return "import { " + strings.Join(symbols, ", ") + " } from " + tsString(from) + ";\n"
}

// tsPropertyKey returns a properly quoted TypeScript property key.
// Valid identifiers are returned as-is, while names containing spaces
// or other non-identifier characters are double-quoted.
func tsPropertyKey(name string) string {
	if len(name) == 0 {
		return `""`
	}
	for i, r := range name {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$') {
				return tsString(name)
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$') {
				return tsString(name)
			}
		}
	}
	return name
}

// tsString quotes s as a string literal. JSON string syntax is a subset of
// TypeScript's.
func tsString(s string) string {
	b, err := jsontext.AppendQuote(nil, s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}
