// Package groq parses GROQ query text into an abstract syntax tree.
//
// The parser covers the query subset that matters for result-shape inference:
// document sets, filters, projections, traversals, dereferences, pipe functions,
// literals and operators. It does not evaluate anything.
package groq

// Node is a GROQ expression.
//
// This is a sealed interface - only types in this package implement it.
type Node interface {
	groqNode() // Marker method - seals interface to this package
}

// Everything is the document set `*`.
type Everything struct{}

// This is `@`, the value currently in scope.
type This struct{}

// Parent is `^` (Levels 1), `^.^` (Levels 2) and so on.
type Parent struct {
	Levels int
}

// Parameter is a `$name` query parameter.
type Parameter struct {
	Name string
}

// Value is a literal. Value holds a string, float64, bool or nil.
type Value struct {
	Value any
}

// AccessAttribute is `base.name`. A nil Base means the attribute is read from
// the value in scope, as in a bare identifier.
type AccessAttribute struct {
	Base Node
	Name string
}

// AccessElement is `base[index]` with a constant integer index.
type AccessElement struct {
	Base  Node
	Index int
}

// Slice is `base[left..right]` or `base[left...right]`.
type Slice struct {
	Base      Node
	Left      int
	Right     int
	Inclusive bool
}

// Filter is `base[expr]` where expr is not a constant index or range.
type Filter struct {
	Base Node
	Expr Node
}

// Projection is `base{...}`.
type Projection struct {
	Base Node
	Expr *Object
}

// Deref is `base->`.
type Deref struct {
	Base Node
}

// ArrayCoerce is `base[]`.
type ArrayCoerce struct {
	Base Node
}

// Group is a parenthesized expression.
type Group struct {
	Base Node
}

// Object is an object literal `{...}`.
type Object struct {
	Attributes []ObjectAttribute
}

// ObjectAttribute is one entry of an Object.
//
// This is a sealed interface - only types in this package implement it.
type ObjectAttribute interface {
	objectAttribute()
}

// ObjectAttributeValue is `"name": value`, or a bare expression whose name is
// inferred (`title`, `author->`, `author->{name}`).
type ObjectAttributeValue struct {
	Name  string
	Value Node
}

// ObjectSplat is `...` (Value is This) or `...expr`.
type ObjectSplat struct {
	Value Node
}

// ObjectConditionalSplat is `condition => {...}`.
type ObjectConditionalSplat struct {
	Condition Node
	Value     *Object
}

// Array is an array literal.
type Array struct {
	Elements []ArrayElement
}

// ArrayElement is one entry of an Array. IsSplat marks `...expr`.
type ArrayElement struct {
	Value   Node
	IsSplat bool
}

// OpCall is a binary comparison or arithmetic operator.
type OpCall struct {
	Op    string
	Left  Node
	Right Node
}

// And is `left && right`.
type And struct {
	Left  Node
	Right Node
}

// Or is `left || right`.
type Or struct {
	Left  Node
	Right Node
}

// Not is `!base`.
type Not struct {
	Base Node
}

// Neg is `-base`.
type Neg struct {
	Base Node
}

// Pos is `+base`.
type Pos struct {
	Base Node
}

// FuncCall is `name(args)` or `namespace::name(args)`. Namespace defaults to
// "global".
type FuncCall struct {
	Namespace string
	Name      string
	Args      []Node
}

// PipeFuncCall is `base | name(args)`.
type PipeFuncCall struct {
	Base Node
	Name string
	Args []Node
}

// Asc is `base asc` inside order().
type Asc struct {
	Base Node
}

// Desc is `base desc` inside order().
type Desc struct {
	Base Node
}

// Pair is `left => right`, used by select().
type Pair struct {
	Left  Node
	Right Node
}

// Range is `left..right` or `left...right` outside of a slice.
type Range struct {
	Left      Node
	Right     Node
	Inclusive bool
}

// InRange is `base in left..right`.
type InRange struct {
	Base      Node
	Left      Node
	Right     Node
	Inclusive bool
}

func (*Everything) groqNode()      {}
func (*This) groqNode()            {}
func (*Parent) groqNode()          {}
func (*Parameter) groqNode()       {}
func (*Value) groqNode()           {}
func (*AccessAttribute) groqNode() {}
func (*AccessElement) groqNode()   {}
func (*Slice) groqNode()           {}
func (*Filter) groqNode()          {}
func (*Projection) groqNode()      {}
func (*Deref) groqNode()           {}
func (*ArrayCoerce) groqNode()     {}
func (*Group) groqNode()           {}
func (*Object) groqNode()          {}
func (*Array) groqNode()           {}
func (*OpCall) groqNode()          {}
func (*And) groqNode()             {}
func (*Or) groqNode()              {}
func (*Not) groqNode()             {}
func (*Neg) groqNode()             {}
func (*Pos) groqNode()             {}
func (*FuncCall) groqNode()        {}
func (*PipeFuncCall) groqNode()    {}
func (*Asc) groqNode()             {}
func (*Desc) groqNode()            {}
func (*Pair) groqNode()            {}
func (*Range) groqNode()           {}
func (*InRange) groqNode()         {}

func (*ObjectAttributeValue) objectAttribute()   {}
func (*ObjectSplat) objectAttribute()            {}
func (*ObjectConditionalSplat) objectAttribute() {}
