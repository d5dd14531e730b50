package lexer

import (
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/token"
)

// lexNumber scans integer, decimal, and scientific numeric literals per
// spec.md §4.3: "1", "3.14", "1e10", "1.5e-3", "2.5E+10". An exponent marker
// with no following digit ("1e") is a malformed-number error, but the
// lexer still emits a Number token so the parser can proceed past it.
func (l *lexState) lexNumber(start int) {
	l.consumeDigits()

	if p, sz := l.rr.peek(); sz != 0 && p == '.' {
		if next := l.peekAt(sz); isDigit(next) {
			l.rr.pos += sz
			l.consumeDigits()
		}
	}

	if p, sz := l.rr.peek(); sz != 0 && (p == 'e' || p == 'E') {
		markerStart := l.rr.pos
		l.rr.pos += sz
		if p2, sz2 := l.rr.peek(); sz2 != 0 && (p2 == '+' || p2 == '-') {
			l.rr.pos += sz2
		}
		digitsStart := l.rr.pos
		l.consumeDigits()
		if l.rr.pos == digitsStart {
			l.error(report.ErrMalformedNumber, markerStart, "exponent has no digits")
		}
	}

	l.emit(token.Number, start)
}

func (l *lexState) consumeDigits() {
	for {
		r, sz := l.rr.peek()
		if sz == 0 || !isDigit(r) {
			return
		}
		l.rr.pos += sz
	}
}
