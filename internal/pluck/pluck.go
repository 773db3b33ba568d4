// Package pluck finds GROQ queries in TypeScript and JavaScript sources.
//
// A query is a call of the form
//
//	query('PostTitles', groq`*[_type == "post"]{title}`)
//	client.query('PostTitles', groq`...`)
//
// whose key is a string literal and whose template has no substitutions.
// Sources are parsed with tree-sitter, so queries inside comments or strings
// are never picked up.
package pluck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Names of the call and tag that mark a query.
const (
	queryFunc = "query"
	groqTag   = "groq"
)

// Query is a query found in a source file.
type Query struct {
	Key  string
	Text string
	File string
	Line int
}

// Source returns "file:line".
func (q Query) Source() string {
	return fmt.Sprintf("%s:%d", q.File, q.Line)
}

// Error reports a query call that cannot be extracted statically.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Supported reports whether path has an extension pluck can parse.
func Supported(path string) bool {
	return language(path) != nil
}

func language(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	}
	return nil
}

// File reads and scans one source file.
func File(ctx context.Context, path string) ([]Query, []error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("read source: %w", err)}
	}
	return Source(ctx, path, content)
}

// Source scans content, reporting positions against path. The language is
// chosen from the extension of path.
func Source(ctx context.Context, path string, content []byte) ([]Query, []error) {
	lang := language(path)
	if lang == nil {
		return nil, []error{&Error{File: path, Line: 1, Column: 1, Message: "unsupported source language"}}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, []error{fmt.Errorf("parse %s: %w", path, err)}
	}
	defer tree.Close()

	s := &scanner{path: path, content: content}
	s.walk(tree.RootNode())
	return s.queries, s.errs
}

type scanner struct {
	path    string
	content []byte
	queries []Query
	errs    []error
}

func (s *scanner) walk(node *sitter.Node) {
	if node.Type() == "call_expression" && s.isQueryCall(node) {
		s.extract(node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		s.walk(node.NamedChild(i))
	}
}

func (s *scanner) text(node *sitter.Node) string {
	return node.Content(s.content)
}

// isQueryCall matches `query(...)` and `<anything>.query(...)`.
func (s *scanner) isQueryCall(call *sitter.Node) bool {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	switch fn.Type() {
	case "identifier":
		return s.text(fn) == queryFunc
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		return prop != nil && s.text(prop) == queryFunc
	}
	return false
}

func (s *scanner) extract(call *sitter.Node) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" || args.NamedChildCount() < 2 {
		return
	}
	keyNode, tagged := args.NamedChild(0), args.NamedChild(1)

	// Calls to an unrelated query() take anything but a groq template.
	template, ok := s.groqTemplate(tagged)
	if !ok {
		return
	}

	key, ok := s.stringLiteral(keyNode)
	if !ok {
		s.fail(keyNode, "query key must be a string literal")
		return
	}
	text, ok := s.templateText(template)
	if !ok {
		s.fail(template, fmt.Sprintf("query %q uses template substitutions and cannot be extracted", key))
		return
	}

	s.queries = append(s.queries, Query{
		Key:  key,
		Text: text,
		File: s.path,
		Line: int(call.StartPoint().Row) + 1,
	})
}

// groqTemplate returns the template of a groq`...` tagged template.
func (s *scanner) groqTemplate(node *sitter.Node) (*sitter.Node, bool) {
	if node.Type() != "call_expression" {
		return nil, false
	}
	tag := node.ChildByFieldName("function")
	template := node.ChildByFieldName("arguments")
	if tag == nil || template == nil || template.Type() != "template_string" {
		return nil, false
	}
	return template, s.text(tag) == groqTag
}

func (s *scanner) stringLiteral(node *sitter.Node) (string, bool) {
	switch node.Type() {
	case "string":
		raw := s.text(node)
		if len(raw) < 2 {
			return "", false
		}
		return raw[1 : len(raw)-1], true
	case "template_string":
		return s.templateText(node)
	}
	return "", false
}

// templateText returns the cooked text of a template without substitutions.
func (s *scanner) templateText(template *sitter.Node) (string, bool) {
	for i := 0; i < int(template.NamedChildCount()); i++ {
		if template.NamedChild(i).Type() == "template_substitution" {
			return "", false
		}
	}
	raw := s.text(template)
	raw = strings.TrimPrefix(raw, "`")
	raw = strings.TrimSuffix(raw, "`")
	return unescapeTemplate(raw), true
}

var templateEscapes = strings.NewReplacer("\\`", "`", "\\$", "$", "\\\\", "\\")

func unescapeTemplate(raw string) string {
	return templateEscapes.Replace(raw)
}

func (s *scanner) fail(node *sitter.Node, message string) {
	p := node.StartPoint()
	s.errs = append(s.errs, &Error{
		File:    s.path,
		Line:    int(p.Row) + 1,
		Column:  int(p.Column) + 1,
		Message: message,
	})
}
