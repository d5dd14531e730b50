// Package binder attaches a symbol to every identifier reference (spec.md
// §4.7): it builds the scope tree, resolves names, detects redeclarations
// and uses of undeclared names, enforces declaration-before-use for
// variables while hoisting functions, and forbids shadowing of prelude
// names. Modeled on protocompile's linker package in spirit (both turn a
// freestanding AST into a name-resolved one backed by a symbol table), but
// written from scratch for Atlas's scope-tree shape rather than protobuf's
// flat descriptor namespace.
package binder

import (
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/types"
)

// Kind classifies what a Symbol names, per spec.md §3 "Symbol."
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindFunction
	KindBuiltin
	KindTypeAlias
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	case KindTypeAlias:
		return "type alias"
	default:
		return "symbol"
	}
}

// Symbol is `(name, kind, type, mutability, declaration-span)` from spec.md
// §3. Type is left nil by the binder; the checker fills it in once it has
// synthesized or checked the declaration's type, since C8 runs after C7 in
// the data flow (spec.md §2).
type Symbol struct {
	Name     string
	Kind     Kind
	Mutable  bool
	DeclSpan source.Span
	Type     types.Type // nil until the checker fills it in
	Scope    *Scope
}
