// Package lexer turns Atlas source text into a token stream. It is a
// hand-written scanner structured the way protocompile's parser/lexer.go
// is: a small rune reader with mark/unread support driving a single Lex
// loop, with numeric and string literal scanning split into their own
// files (lex_number.go-equivalent is number.go, lex_string.go-equivalent is
// string.go here) the same way protocompile keeps lexer concerns apart from
// grammar concerns.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/token"
)

// runeReader is a rewindable cursor over a file's bytes. mark/getMark let
// the lexer capture the exact lexeme text of a token without building a
// separate buffer, the same trick protocompile's runeReader plays.
type runeReader struct {
	data []byte
	pos  int
	mark int
}

func (rr *runeReader) peek() (rune, int) {
	if rr.pos >= len(rr.data) {
		return 0, 0
	}
	r, sz := utf8.DecodeRune(rr.data[rr.pos:])
	return r, sz
}

func (rr *runeReader) advance() (rune, bool) {
	r, sz := rr.peek()
	if sz == 0 {
		return 0, false
	}
	rr.pos += sz
	return r, true
}

func (rr *runeReader) setMark()     { rr.mark = rr.pos }
func (rr *runeReader) lexeme() string { return string(rr.data[rr.mark:rr.pos]) }
func (rr *runeReader) atEOF() bool  { return rr.pos >= len(rr.data) }

// Result is everything a lexer pass produces: the token stream (always
// EOF-terminated per spec.md §4.3), doc comments keyed by the byte offset of
// the token they are attributed to, and any lexical diagnostics.
type Result struct {
	Tokens      []token.Token
	DocComments map[int]token.DocComment // keyed by Span.Start of the following token
	Diagnostics []report.Diagnostic
	// StringValues holds the decoded (escapes resolved) text of every
	// String token, keyed by the token's Span.Start. Lexeme on the token
	// itself remains the raw, quoted source slice.
	StringValues map[int]string
}

// Lex tokenizes an entire file. It never fails: on malformed input it
// records an AT1xxx diagnostic and continues, always terminating the stream
// with a single EOF token, satisfying spec.md's "parser totality" and
// "lexer never fails" contracts.
func Lex(f *source.File) Result {
	l := &lexState{file: f, rr: &runeReader{data: f.Data()}}
	l.run()
	return Result{Tokens: l.tokens, DocComments: l.docs, Diagnostics: l.diags, StringValues: l.strings}
}

type lexState struct {
	file  *source.File
	rr    *runeReader
	tokens []token.Token
	diags []report.Diagnostic

	docs         map[int]token.DocComment
	pendingDocs  []string
	pendingStart int
	havePending  bool

	strings map[int]string
}

func (l *lexState) emit(kind token.Kind, start int) {
	sp := source.Make(l.file, start, l.rr.pos)
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: l.rr.lexeme(), Span: sp})
	l.flushPendingDocs(start)
}

func (l *lexState) flushPendingDocs(nextTokenStart int) {
	if !l.havePending {
		return
	}
	if l.docs == nil {
		l.docs = map[int]token.DocComment{}
	}
	text := ""
	for i, line := range l.pendingDocs {
		if i > 0 {
			text += "\n"
		}
		text += line
	}
	l.docs[nextTokenStart] = token.DocComment{
		Text: text,
		Span: source.Make(l.file, l.pendingStart, nextTokenStart),
	}
	l.pendingDocs = nil
	l.havePending = false
}

func (l *lexState) error(code report.Code, start int, msg string) {
	sp := source.Make(l.file, start, l.rr.pos)
	l.diags = append(l.diags, report.New(code, sp, msg))
}

func (l *lexState) run() {
	for {
		l.skipTriviaExceptDocs()
		l.rr.setMark()
		start := l.rr.pos
		r, ok := l.rr.advance()
		if !ok {
			l.emit(token.EOF, start)
			return
		}

		switch {
		case r == '"':
			l.lexString(start)
		case isDigit(r):
			l.lexNumber(start)
		case isIdentStart(r):
			l.lexIdent(start)
		default:
			l.lexOperator(r, start)
		}
	}
}

// skipTriviaExceptDocs consumes whitespace and ordinary comments, tracking
// `///` runs as pending doc comments. A blank line breaks a run of doc
// comments, matching spec.md's "immediately preceding a declaration" rule.
func (l *lexState) skipTriviaExceptDocs() {
	newlines := 0 // line ends since the last line comment
	for {
		r, sz := l.rr.peek()
		switch {
		case sz == 0:
			return
		case r == ' ' || r == '\t' || r == '\r':
			l.rr.pos += sz
		case r == '\n':
			l.rr.pos += sz
			l.file.AddLine(l.rr.pos)
			newlines++
			if newlines > 1 {
				l.pendingDocs = nil
				l.havePending = false
			}
		case r == '/' && l.peekAt(sz) == '/':
			l.lexLineComment()
			newlines = 0
		case r == '/' && l.peekAt(sz) == '*':
			l.lexBlockComment()
		default:
			return
		}
	}
}

func (l *lexState) peekAt(offset int) rune {
	if l.rr.pos+offset >= len(l.rr.data) {
		return 0
	}
	r, _ := utf8.DecodeRune(l.rr.data[l.rr.pos+offset:])
	return r
}

func (l *lexState) lexLineComment() {
	start := l.rr.pos
	isDoc := l.peekAt(2) == '/' && l.peekAt(3) != '/'
	l.rr.pos += 2 // consume "//"
	var textStart int
	if isDoc {
		l.rr.pos++ // consume third '/'
		textStart = l.rr.pos
	}
	for {
		r, sz := l.rr.peek()
		if sz == 0 || r == '\n' {
			break
		}
		l.rr.pos += sz
	}
	if isDoc {
		text := string(l.rr.data[textStart:l.rr.pos])
		if len(text) > 0 && text[0] == ' ' {
			text = text[1:]
		}
		if !l.havePending {
			l.pendingStart = start
			l.havePending = true
		}
		l.pendingDocs = append(l.pendingDocs, text)
	}
}

func (l *lexState) lexBlockComment() {
	start := l.rr.pos
	l.rr.pos += 2 // consume "/*"
	for {
		r, sz := l.rr.peek()
		if sz == 0 {
			l.error(report.ErrUnterminatedComm, start, "unterminated block comment")
			return
		}
		if r == '*' && l.peekAt(sz) == '/' {
			l.rr.pos += sz + 1
			return
		}
		if r == '\n' {
			l.rr.pos += sz
			l.file.AddLine(l.rr.pos)
			continue
		}
		l.rr.pos += sz
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexState) lexIdent(start int) {
	for {
		r, sz := l.rr.peek()
		if sz == 0 || !isIdentPart(r) {
			break
		}
		l.rr.pos += sz
	}
	text := l.rr.lexeme()
	if kw, ok := token.Lookup(text); ok {
		l.emit(kw, start)
		return
	}
	l.emit(token.Ident, start)
}
