// Package parser turns rule source text into an ast.Expr.
//
// Precedence, lowest first:
//
//	||
//	&&
//	== !=
//	< <= > >= matches
//	?|
//	+ -
//	* / %
//	^            (right associative)
//	! - +        (unary)
//	.f  .f()  |> (postfix)
//
// let, guard, if and fn are prefix forms whose body extends as far to the
// right as possible.
package parser

import (
	"strconv"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/internal/iso8601"
)

// maxDepth bounds recursion on pathological input.
const maxDepth = 512

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	toks  []Token
	pos   int
	depth int
}

// Parse lexes and parses source. The error, if any, is a *diag.Diagnostic.
func Parse(source string) (ast.Expr, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses tokens produced by Tokenize.
func ParseTokens(toks []Token) (ast.Expr, error) {
	if len(toks) == 0 || toks[len(toks)-1].Type != TokenEOF {
		toks = append(toks, Token{Type: TokenEOF})
	}
	p := &Parser{toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != TokenEOF {
		return nil, p.errorf(t, "expected end of input, found %s", t)
	}
	return e, nil
}

func (p *Parser) peek() Token {
	return p.toks[p.pos]
}

func (p *Parser) next() Token {
	t := p.toks[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) accept(tt TokenType) (Token, bool) {
	if p.peek().Type == tt {
		return p.next(), true
	}
	return Token{}, false
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	t := p.peek()
	if t.Type != tt {
		return t, p.errorf(t, "expected %s, found %s", tt, t)
	}
	return p.next(), nil
}

func (p *Parser) errorf(t Token, format string, args ...interface{}) *diag.Diagnostic {
	return diag.New(diag.ParseError, diag.UnexpectedToken, t.Span, format, args...)
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(p.peek(), "expression nested too deeply")
	}
	return p.parseBinary(1)
}

// binaryOps maps a precedence level to the tokens parsed at that level.
var binaryOps = map[int]map[TokenType]ast.Op{
	1: {TokenOr: ast.Or},
	2: {TokenAnd: ast.And},
	3: {TokenEqual: ast.Eq, TokenNotEqual: ast.Ne},
	4: {TokenLess: ast.Lt, TokenLessEqual: ast.Le, TokenGreater: ast.Gt, TokenGreaterEqual: ast.Ge},
	5: {TokenAlt: ast.Alt},
	6: {TokenPlus: ast.Add, TokenMinus: ast.Sub},
	7: {TokenMult: ast.Mul, TokenDiv: ast.Div, TokenMod: ast.Mod},
}

// parseBinary parses left-associative operators at level and above.
func (p *Parser) parseBinary(level int) (ast.Expr, error) {
	if level > 7 {
		return p.parsePower()
	}
	x, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if level == 4 && t.Type == TokenMatches {
			p.next()
			y, err := p.parseBinary(level + 1)
			if err != nil {
				return nil, err
			}
			x = &ast.Call{Name: "matches", NameLoc: t.Span, Args: []ast.Expr{x, y}, Infix: true, Loc: x.Span().To(y.Span())}
			continue
		}
		op, ok := binaryOps[level][t.Type]
		if !ok {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: op, X: x, Y: y, OpLoc: t.Span}
	}
}

func (p *Parser) parsePower() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if t, ok := p.accept(TokenCaret); ok {
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxDepth {
			return nil, p.errorf(t, "expression nested too deeply")
		}
		y, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: ast.Pow, X: x, Y: y, OpLoc: t.Span}, nil
	}
	return x, nil
}

var unaryOps = map[TokenType]ast.Op{
	TokenNot:   ast.Not,
	TokenMinus: ast.Neg,
	TokenPlus:  ast.Plus,
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	t := p.peek()
	op, ok := unaryOps[t.Type]
	if !ok {
		return p.parsePostfix()
	}
	p.next()
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(t, "expression nested too deeply")
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Op: op, X: x, OpLoc: t.Span}, nil
}

// parsePostfix parses field access, method calls and pipelines. Both
// x.f(args) and x |> f(args) become the call f(x, args).
func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch t := p.peek(); t.Type {
		case TokenDot:
			p.next()
			name, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			if p.peek().Type == TokenParenOpen {
				x, err = p.parseCallArgs(name, x)
				if err != nil {
					return nil, err
				}
				continue
			}
			fp, ok := x.(*ast.FieldPath)
			if !ok {
				return nil, p.errorf(name, "field access .%s is only allowed on a field path", name.Text)
			}
			segs := append(append([]ast.Segment(nil), fp.Segments...), ast.Segment{Name: name.Text, Loc: name.Span})
			x = &ast.FieldPath{Segments: segs}

		case TokenPipe:
			p.next()
			name := p.peek()
			if name.Type != TokenIdent && name.Type != TokenMatches {
				return nil, p.errorf(name, "expected function name after '|>', found %s", name)
			}
			p.next()
			if p.peek().Type == TokenParenOpen {
				x, err = p.parseCallArgs(name, x)
				if err != nil {
					return nil, err
				}
				continue
			}
			x = &ast.Call{Name: name.Text, NameLoc: name.Span, Args: []ast.Expr{x}, Piped: true, Loc: x.Span().To(name.Span)}

		default:
			return x, nil
		}
	}
}

// parseCallArgs parses a parenthesized argument list for the function named
// by name. A non-nil piped value becomes the first argument.
func (p *Parser) parseCallArgs(name Token, piped ast.Expr) (ast.Expr, error) {
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if piped != nil {
		args = append(args, piped)
	}
	if p.peek().Type != TokenParenClose {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if _, ok := p.accept(TokenComma); !ok {
				break
			}
		}
	}
	closing, err := p.expect(TokenParenClose)
	if err != nil {
		return nil, err
	}
	start := name.Span
	if piped != nil {
		start = piped.Span()
	}
	return &ast.Call{
		Name:    name.Text,
		NameLoc: name.Span,
		Args:    args,
		Piped:   piped != nil,
		Loc:     start.To(closing.Span),
	}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()
	switch t.Type {
	case TokenInt:
		p.next()
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, diag.New(diag.ParseError, diag.MalformedLiteral, t.Span, "integer literal %s is out of range", t.Text)
		}
		return &ast.IntLit{Value: v, Raw: t.Text, Loc: t.Span}, nil

	case TokenFloat:
		p.next()
		v, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, diag.New(diag.ParseError, diag.MalformedLiteral, t.Span, "float literal %s is out of range", t.Text)
		}
		return &ast.FloatLit{Value: v, Raw: t.Text, Loc: t.Span}, nil

	case TokenString:
		p.next()
		return &ast.StringLit{Value: t.Value, Loc: t.Span}, nil

	case TokenTrue, TokenFalse:
		p.next()
		return &ast.BoolLit{Value: t.Type == TokenTrue, Loc: t.Span}, nil

	case TokenNull:
		p.next()
		return &ast.NullLit{Loc: t.Span}, nil

	case TokenDate:
		p.next()
		v, err := iso8601.ParseDate(t.Value)
		if err != nil {
			return nil, diag.New(diag.ParseError, diag.MalformedLiteral, t.Span, "malformed date literal %s, expected @YYYY-MM-DD", t.Text)
		}
		return &ast.DateLit{Value: v, Raw: t.Value, Loc: t.Span}, nil

	case TokenDateTime:
		p.next()
		v, err := iso8601.ParseDateTime(t.Value)
		if err != nil {
			return nil, diag.New(diag.ParseError, diag.MalformedLiteral, t.Span, "malformed datetime literal %s, expected RFC 3339", t.Text)
		}
		return &ast.DateTimeLit{Value: v, Raw: t.Value, Loc: t.Span}, nil

	case TokenDuration:
		p.next()
		v, err := iso8601.ParseDuration(t.Value)
		if err != nil {
			return nil, diag.New(diag.ParseError, diag.MalformedLiteral, t.Span, "malformed duration literal %s, expected ISO-8601 such as @P1DT2H", t.Text)
		}
		return &ast.DurationLit{Value: v, Raw: t.Value, Loc: t.Span}, nil

	case TokenTemporal:
		p.next()
		kw, _ := ast.LookupKeyword(t.Text)
		loc := t.Span
		if _, ok := p.accept(TokenParenOpen); ok {
			closing, err := p.expect(TokenParenClose)
			if err != nil {
				return nil, p.errorf(closing, "%s takes no arguments", t.Text)
			}
			loc = loc.To(closing.Span)
		}
		return &ast.Temporal{Keyword: kw, Loc: loc}, nil

	case TokenIdent:
		p.next()
		if p.peek().Type == TokenParenOpen {
			return p.parseCallArgs(t, nil)
		}
		return &ast.FieldPath{Segments: []ast.Segment{{Name: t.Text, Loc: t.Span}}}, nil

	case TokenMatches:
		p.next()
		if p.peek().Type != TokenParenOpen {
			return nil, p.errorf(p.peek(), "expected '(' after matches, found %s", p.peek())
		}
		return p.parseCallArgs(t, nil)

	case TokenParenOpen:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return e, nil

	case TokenBracketOpen:
		return p.parseArray()
	case TokenFn:
		return p.parseLambda()
	case TokenLet:
		return p.parseLet()
	case TokenGuard:
		return p.parseGuard()
	case TokenIf:
		return p.parseIf()
	}
	return nil, p.errorf(t, "expected expression, found %s", t)
}

func (p *Parser) parseArray() (ast.Expr, error) {
	open := p.next()
	a := &ast.ArrayLit{}
	if p.peek().Type != TokenBracketClose {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			a.Elems = append(a.Elems, e)
			if _, ok := p.accept(TokenComma); !ok {
				break
			}
		}
	}
	closing, err := p.expect(TokenBracketClose)
	if err != nil {
		return nil, err
	}
	a.Loc = open.Span.To(closing.Span)
	return a, nil
}

// parseLambda parses fn(x ~> body).
func (p *Parser) parseLambda() (ast.Expr, error) {
	fn := p.next()
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}
	param, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenArrow); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(TokenParenClose)
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Param: param.Text, ParamLoc: param.Span, Body: body, Loc: fn.Span.To(closing.Span)}, nil
}

// parseLet parses let name = value in body.
func (p *Parser) parseLet() (ast.Expr, error) {
	let := p.next()
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Let{Name: name.Text, NameLoc: name.Span, Value: value, Body: body, Loc: let.Span.To(body.Span())}, nil
}

// parseGuard parses guard cond in body.
func (p *Parser) parseGuard() (ast.Expr, error) {
	guard := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Guard{Cond: cond, Body: body, Loc: guard.Span.To(body.Span())}, nil
}

// parseIf parses if cond then a else b.
func (p *Parser) parseIf() (ast.Expr, error) {
	ifTok := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenThen); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenElse); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Loc: ifTok.Span.To(els.Span())}, nil
}
