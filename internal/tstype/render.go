package tstype

import (
	"maps"
	"slices"
	"strings"
)

const header = `/// <reference types="@sanity-codegen/types" />`

const queryMapDoc = `/**
 * A keyed type of all the codegen'ed queries. This type is used for
 * TypeScript meta programming purposes only.
 */`

// RenderDeclarations renders the declaration file for a generation run.
//
// Query types come first, then alias types, each sorted by name, followed by
// the QueryMap type keyed by query name. All of them live in the
// Sanity.Queries namespace, so aliases are referenced by bare name.
func RenderDeclarations(queries, references map[string]Type) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\ndeclare namespace Sanity {\n")
	b.WriteString(indentUnit + "namespace Queries {\n")

	queryNames := slices.Sorted(maps.Keys(queries))
	writeAliases(&b, queryNames, queries)
	if len(queryNames) > 0 {
		b.WriteByte('\n')
	}

	refNames := slices.Sorted(maps.Keys(references))
	writeAliases(&b, refNames, references)
	if len(refNames) > 0 {
		b.WriteByte('\n')
	}

	body := indentUnit + indentUnit
	for _, line := range strings.Split(queryMapDoc, "\n") {
		b.WriteString(body + line + "\n")
	}
	if len(queryNames) == 0 {
		b.WriteString(body + "type QueryMap = {};\n")
	} else {
		b.WriteString(body + "type QueryMap = {\n")
		for _, name := range queryNames {
			b.WriteString(body + indentUnit + name + ": " + name + ";\n")
		}
		b.WriteString(body + "};\n")
	}

	b.WriteString(indentUnit + "}\n")
	b.WriteString("}\n")
	return b.String()
}

func writeAliases(b *strings.Builder, names []string, types map[string]Type) {
	for _, name := range names {
		b.WriteString(indentUnit + indentUnit + "type " + name + " = ")
		b.WriteString(printAt(types[name], 2))
		b.WriteString(";\n")
	}
}
