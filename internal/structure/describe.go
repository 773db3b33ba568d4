package structure

import (
	"fmt"
	"strconv"
	"strings"
)

// Describe renders s as indented text for diagnostics. Each lazy node is
// expanded at most once; later occurrences print its alias only.
func Describe(s Structure) string {
	var b strings.Builder
	d := describer{expanded: map[string]bool{}}
	d.write(&b, s, 0)
	return b.String()
}

type describer struct {
	expanded map[string]bool
}

func (d *describer) write(b *strings.Builder, s Structure, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := s.(type) {
	case *Unknown:
		fmt.Fprintf(b, "%sUnknown\n", indent)
	case *Null:
		fmt.Fprintf(b, "%sNull%s\n", indent, flags(false, n.CanBeOptional))
	case *Boolean:
		lit := ""
		if n.Value != nil {
			lit = " " + strconv.FormatBool(*n.Value)
		}
		fmt.Fprintf(b, "%sBoolean%s%s\n", indent, lit, flags(n.CanBeNull, n.CanBeOptional))
	case *Number:
		lit := ""
		if n.Value != nil {
			lit = " " + strconv.FormatFloat(*n.Value, 'g', -1, 64)
		}
		fmt.Fprintf(b, "%sNumber%s%s\n", indent, lit, flags(n.CanBeNull, n.CanBeOptional))
	case *String:
		lit := ""
		if n.Value != nil {
			lit = " " + strconv.Quote(*n.Value)
		}
		fmt.Fprintf(b, "%sString%s%s\n", indent, lit, flags(n.CanBeNull, n.CanBeOptional))
	case *Reference:
		fmt.Fprintf(b, "%sReference -> %s%s\n", indent, n.To, flags(n.CanBeNull, n.CanBeOptional))
	case *Object:
		fmt.Fprintf(b, "%sObject\n", indent)
		for _, key := range n.SortedKeys() {
			attr := n.Attributes[key]
			marker := ""
			if attr.Optional {
				marker = "?"
			}
			fmt.Fprintf(b, "%s  .%s%s\n", indent, key, marker)
			d.write(b, attr.Value, depth+2)
		}
	case *Array:
		fmt.Fprintf(b, "%sArray\n", indent)
		d.write(b, n.Of, depth+1)
	case *And:
		fmt.Fprintf(b, "%sAnd\n", indent)
		for _, c := range n.Children {
			d.write(b, c, depth+1)
		}
	case *Or:
		fmt.Fprintf(b, "%sOr\n", indent)
		for _, c := range n.Children {
			d.write(b, c, depth+1)
		}
	case *Lazy:
		id := n.Hash()
		name := AliasName(id)
		if d.expanded[id] {
			fmt.Fprintf(b, "%sLazy %s (see above)\n", indent, name)
			return
		}
		d.expanded[id] = true
		fmt.Fprintf(b, "%sLazy %s %s\n", indent, name, strings.Join(n.HashInput, "/"))
		d.write(b, n.Force(), depth+1)
	default:
		fmt.Fprintf(b, "%s<nil>\n", indent)
	}
}

func flags(canBeNull, canBeOptional bool) string {
	var parts []string
	if canBeNull {
		parts = append(parts, "null")
	}
	if canBeOptional {
		parts = append(parts, "optional")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
