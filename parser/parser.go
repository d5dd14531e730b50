// Package parser builds Atlas's AST from a token stream: Pratt parsing for
// expressions, recursive descent for statements, with minimal
// synchronization-based error recovery at statement boundaries per
// spec.md §4.5. Structured the way protocompile's experimental/parser
// package splits concerns across files (decl.go, expr.go, type.go here),
// rather than one monolithic grammar file.
package parser

import (
	"fmt"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/lexer"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

// Result is a parse pass's output: the AST (always present, even on error —
// recovery keeps going) plus every diagnostic (lexical and syntactic)
// produced along the way.
type Result struct {
	Program     *ast.Program
	Diagnostics []report.Diagnostic
	// Docs maps a declaration node's span start to its attached doc comment
	// text (empty string if none), mirroring lexer.Result.DocComments.
	Docs map[int]string
}

// Parse lexes and parses an entire file. It never panics on malformed
// input and always terminates (spec.md §8 "parser totality"): synchronization
// guarantees forward progress at every recovery point, and EOF is a hard
// stop everywhere.
func Parse(f *source.File) Result {
	lr := lexer.Lex(f)
	p := &parser{file: f, toks: lr.Tokens, docs: lr.DocComments, strings: lr.StringValues}
	p.diags = append(p.diags, lr.Diagnostics...)

	prog := p.parseProgram()
	docText := map[int]string{}
	for start, d := range lr.DocComments {
		docText[start] = d.Text
	}
	return Result{Program: prog, Diagnostics: p.diags, Docs: docText}
}

type parser struct {
	file  *source.File
	toks  []token.Token
	pos   int
	diags   []report.Diagnostic
	docs    map[int]token.DocComment
	strings map[int]string
}

func (p *parser) cur() token.Token { return p.toks[p.pos] }
func (p *parser) atEOF() bool      { return p.cur().Kind == token.EOF }

func (p *parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[i]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes a token of kind k or emits an AT1006 "expected token"
// diagnostic and returns the current token unconsumed, so callers keep
// making progress rather than looping.
func (p *parser) expect(k token.Kind, context string) token.Token {
	if t, ok := p.match(k); ok {
		return t
	}
	p.errorf(report.ErrExpectedToken, p.cur().Span, "expected %s %s, found %s", k, context, p.cur().Kind)
	return p.cur()
}

func (p *parser) errorf(code report.Code, span source.Span, format string, args ...any) {
	p.diags = append(p.diags, report.New(code, span, fmt.Sprintf(format, args...)))
}

func (p *parser) docFor(span source.Span) string {
	if d, ok := p.docs[span.Start]; ok {
		return d.Text
	}
	return ""
}

// synchronize implements the minimal statement-boundary recovery described
// in spec.md §4.5: advance past tokens until either a semicolon has just
// been crossed or the parser sits on one of the resumption keywords, or EOF
// is reached (a hard stop). It is only ever called once per detected error,
// never at expression granularity.
func (p *parser) synchronize() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.KwFn, token.KwLet, token.KwVar, token.KwIf, token.KwWhile, token.KwFor, token.KwReturn:
			return
		}
		if p.cur().Kind == token.Semi {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) parseProgram() *ast.Program {
	start := p.cur().Span
	var items []ast.Item
	for !p.atEOF() {
		before := p.pos
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
		}
		if p.pos == before {
			// Guard against a stalled parse on adversarial input: force
			// progress so the totality property in spec.md §8 always holds.
			p.advance()
		}
	}
	end := p.cur().Span
	return &ast.Program{Base: ast.NewBase(source.Join(start, end)), Items: items}
}

// parseItem parses one top-level-or-block item (declaration or statement),
// recovering via synchronize() on error so one bad statement never takes
// down the rest of the block (spec.md §4.5, §8 boundary case "missing ;").
func (p *parser) parseItem() ast.Item {
	diagsBefore := len(p.diags)
	item := p.parseItemInner()
	if len(p.diags) > diagsBefore {
		p.synchronize()
	}
	return item
}

func (p *parser) parseItemInner() ast.Item {
	switch p.cur().Kind {
	case token.KwFn:
		return p.parseFuncDecl()
	case token.KwLet, token.KwVar:
		return p.parseVarDecl(true)
	case token.KwType:
		return p.parseTypeAliasDecl()
	case token.KwImport:
		return p.parseImportDecl()
	case token.KwExport:
		return p.parseExportDecl()
	default:
		return p.parseStmt()
	}
}
