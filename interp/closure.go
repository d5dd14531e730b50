package interp

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

// closure is the interpreter's value.Function payload: a function or
// lambda body plus the environment snapshot captured when it was created
// (see Environment.Snapshot). Two closures are SameFunction only by Go
// pointer identity, matching spec.md §3 "functions by reference identity":
// every evaluation of a lambda expression (in eval) and every hoisting of
// a function declaration (in execItems) allocates a new *closure even for
// syntactically identical bodies.
type closure struct {
	name   string
	params []ast.Param
	body   *ast.Block
	env    *Environment
}

func (c *closure) Name() string { return c.name }
func (c *closure) Arity() int   { return len(c.params) }

// nativeFunction wraps a stdlib.Builtin so it can be stored as an ordinary
// value.Func in the global environment, looked up and called through the
// same CallExpr evaluation path as a user-defined closure (spec.md §4.14:
// builtins are resolved statically and called identically to user
// functions).
type nativeFunction struct {
	b *stdlib.Builtin
}

func (n *nativeFunction) Name() string { return n.b.Name }
func (n *nativeFunction) Arity() int   { return n.b.Arity }
