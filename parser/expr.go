package parser

import (
	"strconv"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

// precedence assigns each binary operator token to one of the classes in
// spec.md §4.5, lowest to highest: Or, And, Equality, Comparison, Term,
// Factor. Call/Index/Member binds tighter than all of these and is handled
// in parsePostfix, not in this table. All operators are left-associative.
type precLevel int

const (
	precNone precLevel = iota
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
)

func binPrec(k token.Kind) precLevel {
	switch k {
	case token.OrOr:
		return precOr
	case token.AndAnd:
		return precAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precTerm
	case token.Star, token.Slash, token.Percent:
		return precFactor
	default:
		return precNone
	}
}

func binOp(k token.Kind) ast.BinaryOp {
	switch k {
	case token.OrOr:
		return ast.BinOr
	case token.AndAnd:
		return ast.BinAnd
	case token.EqEq:
		return ast.BinEq
	case token.BangEq:
		return ast.BinNe
	case token.Lt:
		return ast.BinLt
	case token.LtEq:
		return ast.BinLe
	case token.Gt:
		return ast.BinGt
	case token.GtEq:
		return ast.BinGe
	case token.Plus:
		return ast.BinAdd
	case token.Minus:
		return ast.BinSub
	case token.Star:
		return ast.BinMul
	case token.Slash:
		return ast.BinDiv
	case token.Percent:
		return ast.BinMod
	}
	panic("parser: not a binary operator token")
}

// parseExpr parses a full expression via precedence climbing, starting at
// the lowest precedence class (Or).
func (p *parser) parseExpr() ast.Expr {
	return p.parseBinary(precOr)
}

func (p *parser) parseBinary(min precLevel) ast.Expr {
	left := p.parseUnary()
	for {
		prec := binPrec(p.cur().Kind)
		if prec == precNone || prec < min {
			return left
		}
		opTok := p.advance()
		// Left-associative: the recursive call parses at one precedence
		// level higher than the current operator, so a same-precedence
		// operator to the right stops and returns to this loop instead of
		// nesting further right.
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			Base:  ast.NewBase(source.Join(left.Span(), right.Span())),
			Op:    binOp(opTok.Kind),
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case token.Minus:
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Base: ast.NewBase(source.Join(tok.Span, operand.Span())), Op: ast.UnaryNeg, Operand: operand}
	case token.Bang:
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Base: ast.NewBase(source.Join(tok.Span, operand.Span())), Op: ast.UnaryNot, Operand: operand}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any chain of calls,
// indexes, and member accesses — the tightest-binding precedence class.
func (p *parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.LParen:
			p.advance()
			var args []ast.Expr
			for !p.check(token.RParen) && !p.atEOF() {
				args = append(args, p.parseExpr())
				if _, ok := p.match(token.Comma); !ok {
					break
				}
			}
			end := p.expect(token.RParen, "to close call arguments")
			e = &ast.CallExpr{Base: ast.NewBase(source.Join(e.Span(), end.Span)), Callee: e, Args: args}
		case token.LBracket:
			p.advance()
			idx := p.parseExpr()
			end := p.expect(token.RBracket, "to close index expression")
			e = &ast.IndexExpr{Base: ast.NewBase(source.Join(e.Span(), end.Span)), Target: e, Index: idx}
		case token.Dot:
			p.advance()
			nameTok := p.expect(token.Ident, "after '.'")
			e = &ast.MemberExpr{Base: ast.NewBase(source.Join(e.Span(), nameTok.Span)), Target: e, Name: nameTok.Lexeme}
		default:
			return e
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.Number:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			v = 0
		}
		return &ast.NumberLit{Base: ast.NewBase(tok.Span), Value: v}
	case token.String:
		p.advance()
		return &ast.StringLit{Base: ast.NewBase(tok.Span), Value: p.stringValue(tok)}
	case token.True:
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(tok.Span), Value: true}
	case token.False:
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(tok.Span), Value: false}
	case token.Null:
		p.advance()
		return &ast.NullLit{Base: ast.NewBase(tok.Span)}
	case token.Ident:
		p.advance()
		return &ast.Ident{Base: ast.NewBase(tok.Span), Name: tok.Lexeme}
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RParen, "to close grouped expression")
		return &ast.GroupExpr{Base: ast.NewBase(source.Join(tok.Span, end.Span)), Inner: inner}
	case token.LBracket:
		return p.parseArrayLit()
	case token.KwFn:
		return p.parseLambda()
	case token.KwMatch:
		return p.parseMatchExpr()
	default:
		p.errorf(report.ErrUnexpectedToken, tok.Span, "unexpected token %s in expression", tok.Kind)
		p.advance()
		return &ast.NullLit{Base: ast.NewBase(tok.Span)}
	}
}

func (p *parser) parseArrayLit() ast.Expr {
	start := p.advance() // '['
	var elems []ast.Expr
	for !p.check(token.RBracket) && !p.atEOF() {
		elems = append(elems, p.parseExpr())
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end := p.expect(token.RBracket, "to close array literal")
	return &ast.ArrayLit{Base: ast.NewBase(source.Join(start.Span, end.Span)), Elements: elems}
}

func (p *parser) parseLambda() ast.Expr {
	start := p.advance() // 'fn'
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.LParen, "after fn")
	params := p.parseParamList()
	p.expect(token.RParen, "to close parameter list")
	var ret ast.TypeExpr
	if _, ok := p.match(token.Arrow); ok {
		ret = p.parseTypeExpr()
	}
	body := p.parseBlock()
	return &ast.LambdaExpr{
		Base:       ast.NewBase(source.Join(start.Span, body.Span())),
		TypeParams: typeParams,
		Params:     params,
		Return:     ret,
		Body:       body,
	}
}

func (p *parser) parseParamList() []ast.Param {
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEOF() {
		nameTok := p.expect(token.Ident, "parameter name")
		var typ ast.TypeExpr
		if _, ok := p.match(token.Colon); ok {
			typ = p.parseTypeExpr()
		}
		params = append(params, ast.Param{Name: nameTok.Lexeme, Type: typ, Span: nameTok.Span})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	return params
}

func (p *parser) parseMatchExpr() ast.Expr {
	start := p.advance() // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBrace, "to open match body")
	var arms []ast.MatchArm
	for !p.check(token.RBrace) && !p.atEOF() {
		arms = append(arms, p.parseMatchArm())
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end := p.expect(token.RBrace, "to close match body")
	return &ast.MatchExpr{Base: ast.NewBase(source.Join(start.Span, end.Span)), Scrutinee: scrutinee, Arms: arms}
}

func (p *parser) parseMatchArm() ast.MatchArm {
	pat := p.parsePattern()
	var guard ast.Expr
	if _, ok := p.match(token.KwIf); ok {
		guard = p.parseExpr()
	}
	p.expect(token.FatArrow, "in match arm")
	body := p.parseExpr()
	return ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: source.Join(pat.Span(), body.Span())}
}

func (p *parser) parsePattern() ast.Pattern {
	tok := p.cur()
	if tok.Kind == token.Ident && tok.Lexeme == "_" {
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(tok.Span)}
	}
	switch tok.Kind {
	case token.Number, token.String, token.True, token.False, token.Null:
		e := p.parsePrimary()
		return &ast.LiteralPattern{Base: ast.NewBase(e.Span()), Value: e}
	case token.Ident:
		p.advance()
		p.expect(token.Colon, "in type pattern")
		typ := p.parseTypeExpr()
		return &ast.TypePattern{Base: ast.NewBase(source.Join(tok.Span, typ.Span())), Name: tok.Lexeme, Type: typ}
	default:
		p.errorf(report.ErrUnexpectedToken, tok.Span, "unexpected token %s in match pattern", tok.Kind)
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(tok.Span)}
	}
}

// stringValue resolves a String token's decoded (escapes-resolved) text,
// which the lexer computed once and Parse threads into p.strings.
func (p *parser) stringValue(tok token.Token) string {
	if v, ok := p.strings[tok.Span.Start]; ok {
		return v
	}
	return tok.Lexeme
}
