package token

import "github.com/atlas-lang/atlas/source"

// Token is a single lexical element: its kind, the exact source slice it
// was scanned from, and its span. Per spec.md §3, trivia (whitespace and
// comments) is never represented as a Token; doc comments are collected
// separately by the lexer and attached to the following declaration.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

// DocComment is a `///` comment line, retained verbatim (without the
// leading slashes) and attributed to the declaration that immediately
// follows it.
type DocComment struct {
	Text string
	Span source.Span
}
