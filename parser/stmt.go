package parser

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

func (p *parser) parseBlock() *ast.Block {
	start := p.expect(token.LBrace, "to open block")
	var items []ast.Item
	for !p.check(token.RBrace) && !p.atEOF() {
		before := p.pos
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
		}
		if p.pos == before {
			p.advance()
		}
	}
	end := p.expect(token.RBrace, "to close block")
	return &ast.Block{Base: ast.NewBase(source.Join(start.Span, end.Span)), Items: items}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseForIn()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		tok := p.advance()
		p.expect(token.Semi, "after break")
		return &ast.BreakStmt{Base: ast.NewBase(tok.Span)}
	case token.KwContinue:
		tok := p.advance()
		p.expect(token.Semi, "after continue")
		return &ast.ContinueStmt{Base: ast.NewBase(tok.Span)}
	case token.KwMatch:
		return p.parseMatchStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseIf() ast.Stmt {
	start := p.advance() // 'if'
	p.expect(token.LParen, "after if")
	cond := p.parseExpr()
	p.expect(token.RParen, "to close if condition")
	then := p.parseBlock()
	stmt := &ast.IfStmt{Base: ast.NewBase(source.Join(start.Span, then.Span())), Cond: cond, Then: then}
	if _, ok := p.match(token.KwElse); ok {
		if p.check(token.KwIf) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
		stmt.Base = ast.NewBase(source.Join(start.Span, stmt.Else.Span()))
	}
	return stmt
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // 'while'
	p.expect(token.LParen, "after while")
	cond := p.parseExpr()
	p.expect(token.RParen, "to close while condition")
	body := p.parseBlock()
	return &ast.WhileStmt{Base: ast.NewBase(source.Join(start.Span, body.Span())), Cond: cond, Body: body}
}

func (p *parser) parseForIn() ast.Stmt {
	start := p.advance() // 'for'
	p.expect(token.LParen, "after for")
	nameTok := p.expect(token.Ident, "loop variable name")
	p.expect(token.KwIn, "in for-in loop")
	iterable := p.parseExpr()
	p.expect(token.RParen, "to close for-in header")
	body := p.parseBlock()
	return &ast.ForInStmt{
		Base:     ast.NewBase(source.Join(start.Span, body.Span())),
		Name:     nameTok.Lexeme,
		Iterable: iterable,
		Body:     body,
	}
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.advance() // 'return'
	var value ast.Expr
	if !p.check(token.Semi) {
		value = p.parseExpr()
	}
	end := p.expect(token.Semi, "after return statement")
	span := start.Span
	if value != nil {
		span = source.Join(start.Span, value.Span())
	} else {
		span = source.Join(start.Span, end.Span)
	}
	return &ast.ReturnStmt{Base: ast.NewBase(span), Value: value}
}

func (p *parser) parseMatchStmt() ast.Stmt {
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
	return &ast.MatchStmt{Base: ast.NewBase(source.Join(start.Span, end.Span)), Scrutinee: scrutinee, Arms: arms}
}

// parseExprOrAssignStmt parses an expression, then checks whether it is
// followed by an assignment operator or ++/--, per spec.md §4.5: "first
// parsing an expression, then checking for an assignment operator; if
// present, the expression must be a valid lvalue". Anything else becomes a
// plain expression statement.
func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur().Span
	e := p.parseExpr()

	switch {
	case p.cur().Kind.IsAssignOp():
		op := p.advance()
		p.requireLValue(e)
		rhs := p.parseExpr()
		end := p.expect(token.Semi, "after assignment")
		_ = end
		return &ast.AssignStmt{
			Base:   ast.NewBase(source.Join(start, rhs.Span())),
			Target: e,
			Op:     assignOpFor(op.Kind),
			Value:  rhs,
		}
	case p.check(token.PlusPlus), p.check(token.MinusMinus):
		op := p.advance()
		p.requireLValue(e)
		p.expect(token.Semi, "after increment/decrement")
		kind := ast.IncOp
		if op.Kind == token.MinusMinus {
			kind = ast.DecOp
		}
		return &ast.IncDecStmt{Base: ast.NewBase(source.Join(start, op.Span)), Target: e, Op: kind}
	default:
		p.expect(token.Semi, "after expression statement")
		return &ast.ExprStmt{Base: ast.NewBase(source.Join(start, e.Span())), X: e}
	}
}

// requireLValue emits AT1007 if e is not one of the lvalue-eligible
// expression forms (identifier, index, or member), per spec.md §4.5.
func (p *parser) requireLValue(e ast.Expr) {
	switch e.(type) {
	case *ast.Ident, *ast.IndexExpr, *ast.MemberExpr:
		return
	default:
		p.errorf(report.ErrInvalidLValue, e.Span(), "invalid assignment target")
	}
}

func assignOpFor(k token.Kind) ast.AssignOp {
	switch k {
	case token.Eq:
		return ast.AssignSet
	case token.PlusEq:
		return ast.AssignAdd
	case token.MinusEq:
		return ast.AssignSub
	case token.StarEq:
		return ast.AssignMul
	case token.SlashEq:
		return ast.AssignDiv
	case token.PercentEq:
		return ast.AssignMod
	}
	panic("parser: not an assignment operator token")
}
