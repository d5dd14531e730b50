package parser

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

// parseOptionalTypeParams parses `<T, U extends Bound, ...>` if present,
// returning nil otherwise.
func (p *parser) parseOptionalTypeParams() []ast.TypeParam {
	if !p.check(token.Lt) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for !p.check(token.Gt) && !p.atEOF() {
		nameTok := p.expect(token.Ident, "type parameter name")
		var bound ast.TypeExpr
		if _, ok := p.match(token.KwExtends); ok {
			bound = p.parseTypeExpr()
		}
		params = append(params, ast.TypeParam{Name: nameTok.Lexeme, Bound: bound, Span: nameTok.Span})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.Gt, "to close type parameter list")
	return params
}

// parseTypeExpr parses a type annotation. Precedence, loosest to tightest:
// union (|), intersection (&), postfix array ([]), primary (name / generic
// application / function type / structural type).
func (p *parser) parseTypeExpr() ast.TypeExpr {
	return p.parseUnionType()
}

func (p *parser) parseUnionType() ast.TypeExpr {
	first := p.parseIntersectionType()
	if !p.check(token.Pipe) {
		return first
	}
	members := []ast.TypeExpr{first}
	for {
		if _, ok := p.match(token.Pipe); !ok {
			break
		}
		members = append(members, p.parseIntersectionType())
	}
	return &ast.UnionType{
		Base:    ast.NewBase(source.Join(members[0].Span(), members[len(members)-1].Span())),
		Members: members,
	}
}

func (p *parser) parseIntersectionType() ast.TypeExpr {
	first := p.parseArrayTypePostfix()
	if !p.check(token.Amp) {
		return first
	}
	members := []ast.TypeExpr{first}
	for {
		if _, ok := p.match(token.Amp); !ok {
			break
		}
		members = append(members, p.parseArrayTypePostfix())
	}
	return &ast.IntersectionType{
		Base:    ast.NewBase(source.Join(members[0].Span(), members[len(members)-1].Span())),
		Members: members,
	}
}

func (p *parser) parseArrayTypePostfix() ast.TypeExpr {
	t := p.parsePrimaryType()
	for p.check(token.LBracket) && p.peekAt(1).Kind == token.RBracket {
		p.advance()
		end := p.advance()
		t = &ast.ArrayType{Base: ast.NewBase(source.Join(t.Span(), end.Span)), Elem: t}
	}
	return t
}

func (p *parser) parsePrimaryType() ast.TypeExpr {
	tok := p.cur()
	switch tok.Kind {
	case token.LBrace:
		return p.parseStructuralType()
	case token.KwFn:
		return p.parseFunctionType()
	case token.Ident:
		p.advance()
		nt := &ast.NamedType{Base: ast.NewBase(tok.Span), Name: tok.Lexeme}
		if _, ok := p.match(token.Lt); ok {
			var args []ast.TypeExpr
			for !p.check(token.Gt) && !p.atEOF() {
				args = append(args, p.parseTypeExpr())
				if _, ok := p.match(token.Comma); !ok {
					break
				}
			}
			end := p.expect(token.Gt, "to close generic type arguments")
			nt.Args = args
			nt.Base = ast.NewBase(source.Join(tok.Span, end.Span))
		}
		return nt
	default:
		p.errorf(report.ErrUnexpectedToken, tok.Span, "expected a type, found %s", tok.Kind)
		p.advance()
		return &ast.NamedType{Base: ast.NewBase(tok.Span), Name: "unknown"}
	}
}

func (p *parser) parseFunctionType() ast.TypeExpr {
	start := p.advance() // 'fn'
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.LParen, "after fn in function type")
	var params []ast.TypeExpr
	for !p.check(token.RParen) && !p.atEOF() {
		params = append(params, p.parseTypeExpr())
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end := p.expect(token.RParen, "to close function type parameters")
	ft := &ast.FunctionType{Base: ast.NewBase(source.Join(start.Span, end.Span)), TypeParams: typeParams, Params: params}
	if _, ok := p.match(token.Arrow); ok {
		ft.Return = p.parseTypeExpr()
		ft.Base = ast.NewBase(source.Join(start.Span, ft.Return.Span()))
	}
	return ft
}

func (p *parser) parseStructuralType() ast.TypeExpr {
	start := p.advance() // '{'
	var members []ast.StructuralMember
	for !p.check(token.RBrace) && !p.atEOF() {
		nameTok := p.expect(token.Ident, "structural member name")
		member := ast.StructuralMember{Name: nameTok.Lexeme, Span: nameTok.Span}
		if p.check(token.LParen) {
			fn := p.parseFunctionType().(*ast.FunctionType)
			member.Fn = fn
		} else {
			p.expect(token.Colon, "in structural member")
			member.Type = p.parseTypeExpr()
		}
		members = append(members, member)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end := p.expect(token.RBrace, "to close structural type")
	return &ast.StructuralType{Base: ast.NewBase(source.Join(start.Span, end.Span)), Members: members}
}
