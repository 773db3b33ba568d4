package interpret

import (
	"github.com/roach88/groqgen/internal/groq"
	"github.com/roach88/groqgen/internal/structure"
)

// resultKind is the fixed result shape of a function.
type resultKind int

const (
	resultNumber resultKind = iota + 1
	resultBoolean
	resultString
)

// fixedResults maps namespace::name to functions whose result shape does not
// depend on their arguments.
var fixedResults = map[string]resultKind{
	"global::count":      resultNumber,
	"global::length":     resultNumber,
	"global::round":      resultNumber,
	"math::sum":          resultNumber,
	"math::avg":          resultNumber,
	"math::min":          resultNumber,
	"math::max":          resultNumber,
	"global::defined":    resultBoolean,
	"global::references": resultBoolean,
	"global::boolean":    resultBoolean,
	"string::startsWith": resultBoolean,
	"global::lower":      resultString,
	"global::upper":      resultString,
	"global::string":     resultString,
	"global::now":        resultString,
	"global::dateTime":   resultString,
	"global::identity":   resultString,
	"pt::text":           resultString,
	"array::join":        resultString,
	"sanity::projectId":  resultString,
	"sanity::dataset":    resultString,
}

func (in *Interpreter) call(n *groq.FuncCall, scopes Scopes) structure.Structure {
	key := n.Namespace + "::" + n.Name
	switch fixedResults[key] {
	case resultNumber:
		return &structure.Number{}
	case resultBoolean:
		return &structure.Boolean{}
	case resultString:
		return &structure.String{}
	}

	switch key {
	case "global::coalesce":
		if len(n.Args) == 0 {
			return &structure.Null{}
		}
		values := make([]structure.Structure, len(n.Args))
		for i, arg := range n.Args {
			values[i] = in.Interpret(arg, scopes)
		}
		return union(values)

	case "global::select":
		return in.selectCall(n.Args, scopes)

	case "array::compact", "array::unique":
		if len(n.Args) == 1 {
			return keepArray(in.Interpret(n.Args[0], scopes))
		}
	}

	in.logger.Debug("unsupported function", "name", key)
	return &structure.Unknown{}
}

// selectCall types select(cond => value, ..., fallback). Without a fallback
// the result can be null.
func (in *Interpreter) selectCall(args []groq.Node, scopes Scopes) structure.Structure {
	var values []structure.Structure
	hasFallback := false
	for i, arg := range args {
		if pair, ok := arg.(*groq.Pair); ok {
			values = append(values, in.Interpret(pair.Right, scopes))
			continue
		}
		if i == len(args)-1 {
			values = append(values, in.Interpret(arg, scopes))
			hasFallback = true
			continue
		}
		return &structure.Unknown{}
	}
	if !hasFallback {
		values = append(values, &structure.Null{})
	}
	return union(values)
}

func (in *Interpreter) operator(n *groq.OpCall, scopes Scopes) structure.Structure {
	switch n.Op {
	case "==", "!=", "<", "<=", ">", ">=", "in", "match":
		return &structure.Boolean{}
	case "-", "*", "/", "%", "**":
		return &structure.Number{}
	case "+":
		return plus(in.Interpret(n.Left, scopes), in.Interpret(n.Right, scopes))
	}
	in.logger.Debug("unsupported operator", "op", n.Op)
	return &structure.Unknown{}
}

// plus types `+` on strings, numbers, arrays and objects.
func plus(left, right structure.Structure) structure.Structure {
	l, r := structure.Resolve(left), structure.Resolve(right)
	switch lv := l.(type) {
	case *structure.String:
		if _, ok := r.(*structure.String); ok {
			return &structure.String{}
		}
	case *structure.Number:
		if _, ok := r.(*structure.Number); ok {
			return &structure.Number{}
		}
	case *structure.Array:
		if rv, ok := r.(*structure.Array); ok {
			return &structure.Array{Of: &structure.Or{Children: []structure.Structure{lv.Of, rv.Of}}}
		}
	case *structure.Object:
		if rv, ok := r.(*structure.Object); ok {
			attrs := make(map[string]structure.Attribute, len(lv.Attributes)+len(rv.Attributes))
			for k, a := range lv.Attributes {
				attrs[k] = a
			}
			for k, a := range rv.Attributes {
				attrs[k] = a
			}
			return &structure.Object{Attributes: attrs}
		}
	}
	return &structure.Unknown{}
}
