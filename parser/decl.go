package parser

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

func (p *parser) parseVarDecl(requireSemi bool) ast.Decl {
	start := p.advance() // 'let' or 'var'
	kind := ast.KindLet
	if start.Kind == token.KwVar {
		kind = ast.KindVar
	}
	nameTok := p.expect(token.Ident, "variable name")
	var typ ast.TypeExpr
	if _, ok := p.match(token.Colon); ok {
		typ = p.parseTypeExpr()
	}
	p.expect(token.Eq, "in variable declaration")
	value := p.parseExpr()
	end := value.Span()
	if requireSemi {
		semi := p.expect(token.Semi, "after variable declaration")
		end = semi.Span
	}
	return &ast.VarDecl{
		Base:  ast.NewBase(source.Join(start.Span, end)),
		Kind:  kind,
		Name:  nameTok.Lexeme,
		Type:  typ,
		Value: value,
		Doc:   p.docFor(start.Span),
	}
}

// parseFuncDecl parses a function declaration, including the predicate
// clause form `fn name(x: T) -> bool is x: Narrowed { ... }` from spec.md
// §4.9: a predicate function's declared return type must be `bool`, and the
// `is` clause names one of its parameters plus the type it narrows to on a
// true result.
func (p *parser) parseFuncDecl() ast.Decl {
	start := p.advance() // 'fn'
	nameTok := p.expect(token.Ident, "function name")
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.LParen, "after function name")
	params := p.parseParamList()
	p.expect(token.RParen, "to close parameter list")

	var ret ast.TypeExpr
	var pred *ast.PredicateClause
	if _, ok := p.match(token.Arrow); ok {
		ret = p.parseTypeExpr()
		if _, ok := p.match(token.KwIs); ok {
			paramTok := p.expect(token.Ident, "predicate parameter name")
			p.expect(token.Colon, "in predicate clause")
			narrowed := p.parseTypeExpr()
			pred = &ast.PredicateClause{ParamName: paramTok.Lexeme, Type: narrowed}
		}
	}

	body := p.parseBlock()
	return &ast.FuncDecl{
		Base:       ast.NewBase(source.Join(start.Span, body.Span())),
		Name:       nameTok.Lexeme,
		TypeParams: typeParams,
		Params:     params,
		Return:     ret,
		Predicate:  pred,
		Body:       body,
		Doc:        p.docFor(start.Span),
	}
}

func (p *parser) parseTypeAliasDecl() ast.Decl {
	start := p.advance() // 'type'
	nameTok := p.expect(token.Ident, "type alias name")
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.Eq, "in type alias")
	value := p.parseTypeExpr()
	end := p.expect(token.Semi, "after type alias")
	return &ast.TypeAliasDecl{
		Base:       ast.NewBase(source.Join(start.Span, end.Span)),
		Name:       nameTok.Lexeme,
		TypeParams: typeParams,
		Value:      value,
		Doc:        p.docFor(start.Span),
	}
}

// parseImportDecl parses `import { a, b, ... } from "path";`. "from" is a
// contextual keyword (not reserved elsewhere), matched by identifier
// lexeme, the same way parsePattern treats "_" as a contextual wildcard.
func (p *parser) parseImportDecl() ast.Decl {
	start := p.advance() // 'import'
	p.expect(token.LBrace, "after import")
	var names []string
	for !p.check(token.RBrace) && !p.atEOF() {
		nameTok := p.expect(token.Ident, "imported name")
		names = append(names, nameTok.Lexeme)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "to close import list")
	if !(p.check(token.Ident) && p.cur().Lexeme == "from") {
		p.errorf(report.ErrExpectedToken, p.cur().Span, "expected 'from' in import declaration, found %s", p.cur().Kind)
	} else {
		p.advance()
	}
	pathTok := p.expect(token.String, "import path")
	end := p.expect(token.Semi, "after import declaration")
	return &ast.ImportDecl{
		Base:  ast.NewBase(source.Join(start.Span, end.Span)),
		Names: names,
		Path:  p.stringValue(pathTok),
	}
}

func (p *parser) parseExportDecl() ast.Decl {
	start := p.advance() // 'export'
	var inner ast.Decl
	switch p.cur().Kind {
	case token.KwFn:
		inner = p.parseFuncDecl()
	case token.KwLet, token.KwVar:
		inner = p.parseVarDecl(true)
	case token.KwType:
		inner = p.parseTypeAliasDecl()
	default:
		p.errorf(report.ErrUnexpectedToken, p.cur().Span, "expected a declaration after 'export', found %s", p.cur().Kind)
		return &ast.ExportDecl{Base: ast.NewBase(start.Span), Inner: nil}
	}
	return &ast.ExportDecl{Base: ast.NewBase(source.Join(start.Span, inner.Span())), Inner: inner}
}
