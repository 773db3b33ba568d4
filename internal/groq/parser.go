package groq

import (
	"fmt"
	"math"
	"strconv"
)

// Binding powers, lowest first.
const (
	bpNone    = 0
	bpPipe    = 10
	bpPair    = 15
	bpOr      = 20
	bpAnd     = 30
	bpCompare = 40
	bpRange   = 45
	bpSum     = 50
	bpProduct = 60
	bpPrefix  = 70
	bpPower   = 80
	bpNot     = 90
	bpPostfix = 100
)

// Parse parses a complete GROQ query.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	node, err := p.expr(bpNone)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, p.errorf(tok, "unexpected %s after end of query", describe(tok))
	}
	return node, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or when the query is known to be valid.
func MustParse(src string) Node {
	node, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return node
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) take() token {
	tok := p.toks[p.i]
	if tok.typ != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) match(typ tokenType) bool {
	if p.peek().typ == typ {
		p.i++
		return true
	}
	return false
}

func (p *parser) need(typ tokenType, what string) (token, error) {
	tok := p.peek()
	if tok.typ != typ {
		return token{}, p.errorf(tok, "expected %s, found %s", what, describe(tok))
	}
	p.i++
	return tok, nil
}

func (p *parser) errorf(tok token, format string, args ...any) *ParseError {
	return &ParseError{Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func describe(tok token) string {
	switch tok.typ {
	case tokEOF:
		return "end of query"
	case tokString:
		return strconv.Quote(tok.text)
	case tokParam:
		return "$" + tok.text
	default:
		return "'" + tok.text + "'"
	}
}

// lbp returns the left binding power of tok in infix or postfix position.
func lbp(tok token) (int, bool) {
	switch tok.typ {
	case tokPipe:
		return bpPipe, true
	case tokFatArrow:
		return bpPair, true
	case tokOrOr:
		return bpOr, true
	case tokAndAnd:
		return bpAnd, true
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
		return bpCompare, true
	case tokDotDot, tokEllipsis:
		return bpRange, true
	case tokPlus, tokMinus:
		return bpSum, true
	case tokStar, tokSlash, tokPercent:
		return bpProduct, true
	case tokStarStar:
		return bpPower, true
	case tokDot, tokLBracket, tokLBrace, tokArrow:
		return bpPostfix, true
	case tokIdent:
		switch tok.text {
		case "in", "match":
			return bpCompare, true
		case "asc", "desc":
			return bpPipe + 1, true
		}
	}
	return 0, false
}

// expr parses an expression whose operators bind tighter than minBP.
func (p *parser) expr(minBP int) (Node, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		bp, ok := lbp(op)
		if !ok || bp < minBP {
			return left, nil
		}
		left, err = p.infix(left, op, bp)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) prefix() (Node, error) {
	tok := p.take()
	switch tok.typ {
	case tokStar:
		return &Everything{}, nil
	case tokAt:
		return &This{}, nil
	case tokCaret:
		levels := 1
		for p.peek().typ == tokDot && p.peekAt(1).typ == tokCaret {
			p.i += 2
			levels++
		}
		return &Parent{Levels: levels}, nil
	case tokParam:
		return &Parameter{Name: tok.text}, nil
	case tokString:
		return &Value{Value: tok.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %s", tok.text)
		}
		return &Value{Value: f}, nil
	case tokIdent:
		return p.identifier(tok)
	case tokLParen:
		inner, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return &Group{Base: inner}, nil
	case tokLBracket:
		return p.array()
	case tokLBrace:
		obj, err := p.object()
		if err != nil {
			return nil, err
		}
		return obj, nil
	case tokBang:
		base, err := p.expr(bpNot)
		if err != nil {
			return nil, err
		}
		return &Not{Base: base}, nil
	case tokMinus:
		base, err := p.expr(bpPrefix)
		if err != nil {
			return nil, err
		}
		return &Neg{Base: base}, nil
	case tokPlus:
		base, err := p.expr(bpPrefix)
		if err != nil {
			return nil, err
		}
		return &Pos{Base: base}, nil
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *parser) identifier(tok token) (Node, error) {
	switch tok.text {
	case "true":
		return &Value{Value: true}, nil
	case "false":
		return &Value{Value: false}, nil
	case "null":
		return &Value{Value: nil}, nil
	}

	if p.peek().typ == tokColonCol {
		p.i++
		name, err := p.need(tokIdent, "function name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(tokLParen, "'('"); err != nil {
			return nil, err
		}
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		return &FuncCall{Namespace: tok.text, Name: name.text, Args: args}, nil
	}

	if p.match(tokLParen) {
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		return &FuncCall{Namespace: "global", Name: tok.text, Args: args}, nil
	}

	return &AccessAttribute{Name: tok.text}, nil
}

// arguments parses a call argument list after its opening parenthesis.
func (p *parser) arguments() ([]Node, error) {
	var args []Node
	for !p.match(tokRParen) {
		arg, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(tokComma) {
			if _, err := p.need(tokRParen, "',' or ')'"); err != nil {
				return nil, err
			}
			break
		}
	}
	return args, nil
}

func (p *parser) infix(left Node, op token, bp int) (Node, error) {
	switch op.typ {
	case tokDot:
		p.i++
		name, err := p.need(tokIdent, "attribute name")
		if err != nil {
			return nil, err
		}
		return &AccessAttribute{Base: left, Name: name.text}, nil

	case tokArrow:
		p.i++
		deref := &Deref{Base: left}
		if name := p.peek(); name.typ == tokIdent && !isOperatorWord(name.text) {
			p.i++
			return &AccessAttribute{Base: deref, Name: name.text}, nil
		}
		return deref, nil

	case tokLBrace:
		p.i++
		obj, err := p.object()
		if err != nil {
			return nil, err
		}
		return &Projection{Base: left, Expr: obj}, nil

	case tokLBracket:
		p.i++
		return p.bracket(left)

	case tokPipe:
		p.i++
		name, err := p.need(tokIdent, "pipe function name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(tokLParen, "'('"); err != nil {
			return nil, err
		}
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		return &PipeFuncCall{Base: left, Name: name.text, Args: args}, nil

	case tokIdent:
		p.i++
		switch op.text {
		case "asc":
			return &Asc{Base: left}, nil
		case "desc":
			return &Desc{Base: left}, nil
		case "in":
			right, err := p.expr(bp + 1)
			if err != nil {
				return nil, err
			}
			if r, ok := right.(*Range); ok {
				return &InRange{Base: left, Left: r.Left, Right: r.Right, Inclusive: r.Inclusive}, nil
			}
			return &OpCall{Op: "in", Left: left, Right: right}, nil
		default:
			right, err := p.expr(bp + 1)
			if err != nil {
				return nil, err
			}
			return &OpCall{Op: op.text, Left: left, Right: right}, nil
		}
	}

	p.i++
	next := bp + 1
	if op.typ == tokStarStar || op.typ == tokFatArrow {
		next = bp
	}
	right, err := p.expr(next)
	if err != nil {
		return nil, err
	}

	switch op.typ {
	case tokFatArrow:
		return &Pair{Left: left, Right: right}, nil
	case tokOrOr:
		return &Or{Left: left, Right: right}, nil
	case tokAndAnd:
		return &And{Left: left, Right: right}, nil
	case tokDotDot:
		return &Range{Left: left, Right: right, Inclusive: true}, nil
	case tokEllipsis:
		return &Range{Left: left, Right: right, Inclusive: false}, nil
	default:
		return &OpCall{Op: op.text, Left: left, Right: right}, nil
	}
}

func isOperatorWord(s string) bool {
	switch s {
	case "in", "match", "asc", "desc":
		return true
	}
	return false
}

// bracket parses the inside of `base[...]` after the opening bracket.
func (p *parser) bracket(base Node) (Node, error) {
	if p.match(tokRBracket) {
		return &ArrayCoerce{Base: base}, nil
	}
	start := p.peek()
	inner, err := p.expr(bpNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(tokRBracket, "']'"); err != nil {
		return nil, err
	}

	if idx, ok := constantInt(inner); ok {
		return &AccessElement{Base: base, Index: idx}, nil
	}
	if r, ok := inner.(*Range); ok {
		left, lok := constantInt(r.Left)
		right, rok := constantInt(r.Right)
		if !lok || !rok {
			return nil, p.errorf(start, "slice bounds must be integer literals")
		}
		return &Slice{Base: base, Left: left, Right: right, Inclusive: r.Inclusive}, nil
	}
	if v, ok := inner.(*Value); ok {
		if name, isString := v.Value.(string); isString {
			return &AccessAttribute{Base: base, Name: name}, nil
		}
	}
	return &Filter{Base: base, Expr: inner}, nil
}

// constantInt reports the value of an integer literal, possibly negated.
func constantInt(n Node) (int, bool) {
	switch v := n.(type) {
	case *Value:
		f, ok := v.Value.(float64)
		if !ok || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case *Neg:
		i, ok := constantInt(v.Base)
		return -i, ok
	}
	return 0, false
}

// array parses an array literal after its opening bracket.
func (p *parser) array() (Node, error) {
	arr := &Array{}
	for !p.match(tokRBracket) {
		splat := p.match(tokEllipsis)
		value, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, ArrayElement{Value: value, IsSplat: splat})
		if !p.match(tokComma) {
			if _, err := p.need(tokRBracket, "',' or ']'"); err != nil {
				return nil, err
			}
			break
		}
	}
	return arr, nil
}

// object parses an object literal after its opening brace.
func (p *parser) object() (*Object, error) {
	obj := &Object{}
	for !p.match(tokRBrace) {
		attr, err := p.objectAttribute()
		if err != nil {
			return nil, err
		}
		obj.Attributes = append(obj.Attributes, attr)
		if !p.match(tokComma) {
			if _, err := p.need(tokRBrace, "',' or '}'"); err != nil {
				return nil, err
			}
			break
		}
	}
	return obj, nil
}

func (p *parser) objectAttribute() (ObjectAttribute, error) {
	if p.match(tokEllipsis) {
		switch p.peek().typ {
		case tokComma, tokRBrace:
			return &ObjectSplat{Value: &This{}}, nil
		}
		value, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		return &ObjectSplat{Value: value}, nil
	}

	start := p.peek()
	// Stop below `=>` so a conditional splat keeps its condition intact.
	expr, err := p.expr(bpPair + 1)
	if err != nil {
		return nil, err
	}

	switch {
	case p.match(tokFatArrow):
		if _, err := p.need(tokLBrace, "'{' after '=>' in object"); err != nil {
			return nil, err
		}
		value, err := p.object()
		if err != nil {
			return nil, err
		}
		return &ObjectConditionalSplat{Condition: expr, Value: value}, nil

	case p.match(tokColon):
		name, ok := attributeKey(expr)
		if !ok {
			return nil, p.errorf(start, "object key must be a string")
		}
		value, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		return &ObjectAttributeValue{Name: name, Value: value}, nil
	}

	name, ok := InferName(expr)
	if !ok {
		return nil, p.errorf(start, "cannot infer an attribute name for this expression; use \"name\": expression")
	}
	return &ObjectAttributeValue{Name: name, Value: expr}, nil
}

func attributeKey(n Node) (string, bool) {
	switch v := n.(type) {
	case *Value:
		s, ok := v.Value.(string)
		return s, ok
	case *AccessAttribute:
		if v.Base == nil {
			return v.Name, true
		}
	}
	return "", false
}

// InferName returns the attribute name GROQ assigns to a bare projection
// expression such as `title`, `author->`, `author->{name}` or `tags[]`.
func InferName(n Node) (string, bool) {
	switch v := n.(type) {
	case *AccessAttribute:
		return v.Name, true
	case *Deref:
		return InferName(v.Base)
	case *Projection:
		return InferName(v.Base)
	case *ArrayCoerce:
		return InferName(v.Base)
	case *Filter:
		return InferName(v.Base)
	case *Slice:
		return InferName(v.Base)
	case *AccessElement:
		return InferName(v.Base)
	}
	return "", false
}
