package vm

import (
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

// vmClosure is the VM's value.Function payload: a compiled function
// prototype plus the free-variable values captured at OpMakeClosure time,
// positionally paired with proto.FreeVars (see compiler.compileFuncValue
// and interp/closure.go's *closure, its tree-walking counterpart). Closure
// capture is by value at creation, never a live stack-slot alias, per
// DESIGN.md's "Closure capture semantics" resolution: the VM has no
// Closure/Upvalue opcode to keep an enclosing frame's locals alive after
// it returns.
type vmClosure struct {
	proto    *bytecode.FuncProto
	freeVars []value.Value
}

func (c *vmClosure) Name() string { return c.proto.Name }
func (c *vmClosure) Arity() int   { return c.proto.Arity }

// nativeFunction wraps a stdlib.Builtin as a value.Function, exactly as
// interp/closure.go's identically named type does, so a first-class
// function value is invoked through the same OpCall path whether it is
// user-defined or a builtin (spec.md §4.14).
type nativeFunction struct {
	b *stdlib.Builtin
}

func (n *nativeFunction) Name() string { return n.b.Name }
func (n *nativeFunction) Arity() int   { return n.b.Arity }
