package report

import (
	"errors"
	"fmt"

	"github.com/atlas-lang/atlas/source"
)

// RuntimeError is a fault raised while executing a typed program (spec.md
// §7 "Runtime errors carry the span of the failing operation plus a message
// and code"). It shares Code with compile-time Diagnostics rather than
// inventing a parallel error taxonomy, mirroring protocompile's
// reporter.ErrorWithPos, which wraps an underlying error with a position
// instead of a distinct runtime-error type.
type RuntimeError struct {
	Code    Code
	Span    source.Span
	Message string
}

// NewRuntimeError builds a RuntimeError at code's default severity family
// (always AT0xxx in practice; callers are expected to pass a runtime code).
func NewRuntimeError(code Code, span source.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Span, e.Message)
}

// Diagnostic renders e as an ordinary error-severity Diagnostic, so an
// embedder can present a runtime error through the same formatting path as
// any other diagnostic (spec.md §6 "Diagnostic output").
func (e *RuntimeError) Diagnostic() Diagnostic {
	return New(e.Code, e.Span, e.Message)
}

// AsRuntimeError reports whether err is a *RuntimeError, unwrapping if
// necessary.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	ok := errors.As(err, &re)
	return re, ok
}
