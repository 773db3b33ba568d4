package groq

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// tokenType is the kind of a lexical token.
type tokenType int

const (
	tokEOF tokenType = iota

	tokIdent  // title, _type, order
	tokString // "post", 'post'
	tokNumber // 1, 2.5, 1e3
	tokParam  // $slug

	tokStar     // *
	tokAt       // @
	tokCaret    // ^
	tokDot      // .
	tokDotDot   // ..
	tokEllipsis // ...
	tokComma    // ,
	tokColon    // :
	tokColonCol // ::
	tokLParen   // (
	tokRParen   // )
	tokLBracket // [
	tokRBracket // ]
	tokLBrace   // {
	tokRBrace   // }
	tokArrow    // ->
	tokFatArrow // =>
	tokPipe     // |
	tokOrOr     // ||
	tokAndAnd   // &&
	tokBang     // !
	tokEq       // ==
	tokNeq      // !=
	tokLt       // <
	tokLte      // <=
	tokGt       // >
	tokGte      // >=
	tokPlus     // +
	tokMinus    // -
	tokSlash    // /
	tokPercent  // %
	tokStarStar // **
)

// token is a lexical token. Text holds the decoded value for strings and
// parameters, and the raw lexeme otherwise.
type token struct {
	typ  tokenType
	text string
	pos  Position
}

// Position locates a token in the query text. Line and Column are 1-based;
// Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// punctuation maps operator lexemes to token types, longest first per prefix.
var punctuation = []struct {
	lexeme string
	typ    tokenType
}{
	{"...", tokEllipsis},
	{"..", tokDotDot},
	{"::", tokColonCol},
	{"->", tokArrow},
	{"=>", tokFatArrow},
	{"||", tokOrOr},
	{"&&", tokAndAnd},
	{"==", tokEq},
	{"!=", tokNeq},
	{"<=", tokLte},
	{">=", tokGte},
	{"**", tokStarStar},
	{"*", tokStar},
	{"@", tokAt},
	{"^", tokCaret},
	{".", tokDot},
	{",", tokComma},
	{":", tokColon},
	{"(", tokLParen},
	{")", tokRParen},
	{"[", tokLBracket},
	{"]", tokRBracket},
	{"{", tokLBrace},
	{"}", tokRBrace},
	{"|", tokPipe},
	{"!", tokBang},
	{"<", tokLt},
	{">", tokGt},
	{"+", tokPlus},
	{"-", tokMinus},
	{"/", tokSlash},
	{"%", tokPercent},
}

type lexer struct {
	src  string
	cur  int
	line int
	col  int
}

// tokenize scans the whole query. The returned slice always ends with tokEOF.
func tokenize(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) position() Position {
	return Position{Offset: l.cur, Line: l.line, Column: l.col}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.cur < len(l.src); {
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		l.cur += size
		i += size
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}

func (l *lexer) skipTrivia() {
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance(1)
		case strings.HasPrefix(l.src[l.cur:], "//"):
			for l.cur < len(l.src) && l.src[l.cur] != '\n' {
				l.advance(1)
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipTrivia()
	start := l.position()
	if l.cur >= len(l.src) {
		return token{typ: tokEOF, pos: start}, nil
	}

	c := l.src[l.cur]
	switch {
	case isIdentStart(c):
		end := l.cur + 1
		for end < len(l.src) && isIdentPart(l.src[end]) {
			end++
		}
		text := l.src[l.cur:end]
		l.advance(end - l.cur)
		return token{typ: tokIdent, text: text, pos: start}, nil

	case c == '$':
		end := l.cur + 1
		for end < len(l.src) && isIdentPart(l.src[end]) {
			end++
		}
		if end == l.cur+1 {
			return token{}, &ParseError{Pos: start, Message: "expected parameter name after '$'"}
		}
		text := l.src[l.cur+1 : end]
		l.advance(end - l.cur)
		return token{typ: tokParam, text: text, pos: start}, nil

	case isDigit(c):
		return l.number(start)

	case c == '"' || c == '\'':
		return l.quoted(start, c)
	}

	for _, p := range punctuation {
		if strings.HasPrefix(l.src[l.cur:], p.lexeme) {
			l.advance(len(p.lexeme))
			return token{typ: p.typ, text: p.lexeme, pos: start}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	return token{}, &ParseError{Pos: start, Message: "unexpected character " + strconv.QuoteRune(r)}
}

func (l *lexer) number(start Position) (token, error) {
	end := l.cur
	for end < len(l.src) && isDigit(l.src[end]) {
		end++
	}
	// A fraction needs a digit after the dot, otherwise `1..5` would lex as `1.` `.5`.
	if end+1 < len(l.src) && l.src[end] == '.' && isDigit(l.src[end+1]) {
		end++
		for end < len(l.src) && isDigit(l.src[end]) {
			end++
		}
	}
	if end < len(l.src) && (l.src[end] == 'e' || l.src[end] == 'E') {
		exp := end + 1
		if exp < len(l.src) && (l.src[exp] == '+' || l.src[exp] == '-') {
			exp++
		}
		if exp < len(l.src) && isDigit(l.src[exp]) {
			end = exp
			for end < len(l.src) && isDigit(l.src[end]) {
				end++
			}
		}
	}
	text := l.src[l.cur:end]
	l.advance(end - l.cur)
	return token{typ: tokNumber, text: text, pos: start}, nil
}

func (l *lexer) quoted(start Position, quote byte) (token, error) {
	var b strings.Builder
	l.advance(1)
	for {
		if l.cur >= len(l.src) {
			return token{}, &ParseError{Pos: start, Message: "unterminated string"}
		}
		c := l.src[l.cur]
		if c == quote {
			l.advance(1)
			return token{typ: tokString, text: b.String(), pos: start}, nil
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(l.src[l.cur:])
			b.WriteRune(r)
			l.advance(size)
			continue
		}

		escPos := l.position()
		if l.cur+1 >= len(l.src) {
			return token{}, &ParseError{Pos: start, Message: "unterminated string"}
		}
		esc := l.src[l.cur+1]
		switch esc {
		case '"', '\'', '\\', '/':
			b.WriteByte(esc)
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if l.cur+6 > len(l.src) {
				return token{}, &ParseError{Pos: escPos, Message: "invalid unicode escape"}
			}
			code, err := strconv.ParseUint(l.src[l.cur+2:l.cur+6], 16, 32)
			if err != nil {
				return token{}, &ParseError{Pos: escPos, Message: "invalid unicode escape"}
			}
			b.WriteRune(rune(code))
			l.advance(6)
			continue
		default:
			return token{}, &ParseError{Pos: escPos, Message: "invalid escape sequence \\" + string(esc)}
		}
		l.advance(2)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
