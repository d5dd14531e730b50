// Package ast defines Atlas's immutable syntax tree. Nodes are represented
// as tagged variants (one Go type per syntactic form implementing a shared
// interface) rather than a class hierarchy, per spec.md §9 "Polymorphic AST
// nodes" — the same choice protocompile's ast package makes for protobuf
// syntax trees. Every node carries a Span; this is enforced at
// construction time by the parser, never by the type system, since Go has
// no way to make an interface method a required struct field.
package ast

import "github.com/atlas-lang/atlas/source"

// Node is implemented by every AST node: declarations, statements,
// expressions, and type expressions alike.
type Node interface {
	Span() source.Span
	node()
}

// Base is embedded by every concrete node to provide Span() and satisfy the
// node() marker, closing the Node interface to this package the way
// protocompile's ast package closes its own node hierarchy. It is exported
// (unlike a private "base" field would be) purely so the parser package can
// construct node literals directly; nothing outside this package and
// parser is expected to build Base values by hand.
type Base struct {
	At source.Span
}

func (b Base) Span() source.Span { return b.At }
func (Base) node()               {}

// NewBase is a convenience for constructing a Base from a span.
func NewBase(span source.Span) Base { return Base{At: span} }

// Program is the root of a parsed file: an ordered sequence of items.
type Program struct {
	Base
	Items []Item
}

// Item is anything that can appear at top level or inside a block: a
// declaration or a statement. Declarations and statements share the Item
// surface because both can appear in a Block per spec.md §3.
type Item interface {
	Node
	item()
}
