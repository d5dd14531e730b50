package lexer

import (
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/token"
)

// lexOperator handles punctuation and operators, including the
// two-character forms (==, !=, <=, >=, &&, ||, ++, --, ->, =>, and the
// += family). It is table-free by design, like protocompile's hand-rolled
// lexer: each case just peeks ahead for the longest match.
func (l *lexState) lexOperator(r rune, start int) {
	two := func(next rune, twoKind, oneKind token.Kind) {
		if p, sz := l.rr.peek(); sz != 0 && p == next {
			l.rr.pos += sz
			l.emit(twoKind, start)
			return
		}
		l.emit(oneKind, start)
	}

	switch r {
	case '(':
		l.emit(token.LParen, start)
	case ')':
		l.emit(token.RParen, start)
	case '{':
		l.emit(token.LBrace, start)
	case '}':
		l.emit(token.RBrace, start)
	case '[':
		l.emit(token.LBracket, start)
	case ']':
		l.emit(token.RBracket, start)
	case ',':
		l.emit(token.Comma, start)
	case ';':
		l.emit(token.Semi, start)
	case ':':
		l.emit(token.Colon, start)
	case '.':
		l.emit(token.Dot, start)
	case '?':
		l.emit(token.Question, start)
	case '|':
		two('|', token.OrOr, token.Pipe)
	case '&':
		two('&', token.AndAnd, token.Amp)
	case '+':
		if p, sz := l.rr.peek(); sz != 0 && p == '+' {
			l.rr.pos += sz
			l.emit(token.PlusPlus, start)
			return
		}
		two('=', token.PlusEq, token.Plus)
	case '-':
		if p, sz := l.rr.peek(); sz != 0 && p == '-' {
			l.rr.pos += sz
			l.emit(token.MinusMinus, start)
			return
		}
		if p, sz := l.rr.peek(); sz != 0 && p == '>' {
			l.rr.pos += sz
			l.emit(token.Arrow, start)
			return
		}
		two('=', token.MinusEq, token.Minus)
	case '*':
		two('=', token.StarEq, token.Star)
	case '/':
		two('=', token.SlashEq, token.Slash)
	case '%':
		two('=', token.PercentEq, token.Percent)
	case '=':
		if p, sz := l.rr.peek(); sz != 0 && p == '>' {
			l.rr.pos += sz
			l.emit(token.FatArrow, start)
			return
		}
		two('=', token.EqEq, token.Eq)
	case '!':
		two('=', token.BangEq, token.Bang)
	case '<':
		two('=', token.LtEq, token.Lt)
	case '>':
		two('=', token.GtEq, token.Gt)
	default:
		l.error(report.ErrInvalidChar, start, "invalid character "+quoteRune(r))
		l.emit(token.Illegal, start)
	}
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
