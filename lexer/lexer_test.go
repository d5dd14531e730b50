package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/lexer"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestEmptySourceIsOneEOF(t *testing.T) {
	f := source.New("empty.atl", nil)
	res := lexer.Lex(f)
	require.Equal(t, []token.Kind{token.EOF}, kinds(res.Tokens))
	require.Empty(t, res.Diagnostics)
}

func TestArithmeticTokens(t *testing.T) {
	f := source.New("a.atl", []byte("print(1 + 2 * 3);"))
	res := lexer.Lex(f)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []token.Kind{
		token.Ident, token.LParen, token.Number, token.Plus, token.Number,
		token.Star, token.Number, token.RParen, token.Semi, token.EOF,
	}, kinds(res.Tokens))
}

func TestScientificNumberForms(t *testing.T) {
	for _, lit := range []string{"1", "3.14", "1e10", "1.5e-3", "2.5E+10"} {
		f := source.New("n.atl", []byte(lit))
		res := lexer.Lex(f)
		require.Empty(t, res.Diagnostics, "literal %q", lit)
		require.Equal(t, token.Number, res.Tokens[0].Kind)
		require.Equal(t, lit, res.Tokens[0].Lexeme)
	}
}

func TestMalformedExponent(t *testing.T) {
	f := source.New("n.atl", []byte("1e"))
	res := lexer.Lex(f)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, token.Number, res.Tokens[0].Kind)
}

func TestSurrogatePairString(t *testing.T) {
	f := source.New("s.atl", []byte(`"𝄞"`))
	res := lexer.Lex(f)
	require.Empty(t, res.Diagnostics)
	val := res.StringValues[res.Tokens[0].Span.Start]
	require.Equal(t, "𝄞", val)
	require.Equal(t, 1, len([]rune(val)))
}

func TestUnterminatedString(t *testing.T) {
	f := source.New("s.atl", []byte("\"abc\nnext"))
	res := lexer.Lex(f)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, token.Illegal, res.Tokens[0].Kind)
}

func TestDocCommentAttachedToNextToken(t *testing.T) {
	f := source.New("d.atl", []byte("/// doc line\nfn f() {}"))
	res := lexer.Lex(f)
	fnTok := res.Tokens[0]
	require.Equal(t, token.KwFn, fnTok.Kind)
	doc, ok := res.DocComments[fnTok.Span.Start]
	require.True(t, ok)
	require.Equal(t, "doc line", doc.Text)
}

func TestKeywordsRecognized(t *testing.T) {
	f := source.New("k.atl", []byte("fn let var if else while for in return break continue match"))
	res := lexer.Lex(f)
	want := []token.Kind{
		token.KwFn, token.KwLet, token.KwVar, token.KwIf, token.KwElse,
		token.KwWhile, token.KwFor, token.KwIn, token.KwReturn,
		token.KwBreak, token.KwContinue, token.KwMatch, token.EOF,
	}
	require.Equal(t, want, kinds(res.Tokens))
}
