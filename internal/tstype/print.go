package tstype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const indentUnit = "  "

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Print renders t as TypeScript source. Object members go on their own lines,
// indented two spaces per level of nesting.
func Print(t Type) string {
	var b strings.Builder
	write(&b, t, 0)
	return b.String()
}

// printAt renders t as if it started at the given indentation depth.
func printAt(t Type, depth int) string {
	var b strings.Builder
	write(&b, t, depth)
	return b.String()
}

func write(b *strings.Builder, t Type, depth int) {
	switch n := t.(type) {
	case Keyword:
		b.WriteString(string(n))

	case *Literal:
		b.WriteString(literal(n.Value))

	case *TypeLiteral:
		if len(n.Properties) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, p := range n.Properties {
			b.WriteString(strings.Repeat(indentUnit, depth+1))
			b.WriteString(propertyName(p.Name))
			if p.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			write(b, p.Type, depth+1)
			b.WriteString(";\n")
		}
		b.WriteString(strings.Repeat(indentUnit, depth))
		b.WriteByte('}')

	case *ArrayOf:
		switch n.Elem.(type) {
		case *Union, *Intersection:
			b.WriteByte('(')
			write(b, n.Elem, depth)
			b.WriteByte(')')
		default:
			write(b, n.Elem, depth)
		}
		b.WriteString("[]")

	case *Union:
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			write(b, m, depth)
		}

	case *Intersection:
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(" & ")
			}
			if _, isUnion := m.(*Union); isUnion {
				b.WriteByte('(')
				write(b, m, depth)
				b.WriteByte(')')
				continue
			}
			write(b, m, depth)
		}

	case *TypeRef:
		b.WriteString(n.Name)
		if len(n.Args) == 0 {
			return
		}
		b.WriteByte('<')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, a, depth)
		}
		b.WriteByte('>')

	default:
		panic(fmt.Sprintf("tstype: unexpected type %T", t))
	}
}

func literal(v any) string {
	switch lit := v.(type) {
	case string:
		return strconv.Quote(lit)
	case float64:
		return strconv.FormatFloat(lit, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(lit)
	}
	panic(fmt.Sprintf("tstype: unsupported literal %T", v))
}

func propertyName(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}
