package pluck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest reads a YAML file mapping query keys to query text:
//
//	PostTitles: '*[_type == "post"]{title}'
//	AuthorNames: |
//	  *[_type == "author"].name
//
// Queries come back in file order with the line of their key.
func Manifest(path string) ([]Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(path, data)
}

// ParseManifest parses manifest data, reporting positions against path.
func ParseManifest(path string, data []byte) ([]Query, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &Error{File: path, Line: doc.Line, Column: doc.Column, Message: "manifest must be a mapping of query keys to queries"}
	}

	m := doc.Content[0]
	queries := make([]Query, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i], m.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, &Error{File: path, Line: value.Line, Column: value.Column, Message: fmt.Sprintf("query %q must be a string", key.Value)}
		}
		queries = append(queries, Query{
			Key:  key.Value,
			Text: value.Value,
			File: path,
			Line: key.Line,
		})
	}
	return queries, nil
}
