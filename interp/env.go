package interp

import "github.com/atlas-lang/atlas/value"

// cell is one mutable binding. Indirecting through a pointer lets Assign
// mutate a binding found in an outer Environment without copying it back.
type cell struct{ v value.Value }

// Environment is a runtime scope frame: a name->value map chained to its
// parent, the same shape as binder.Scope (spec.md §3 "Scopes form a tree;
// inner lookups shadow outer") but holding live values instead of compile
// time symbols, since the interpreter walks the tree after binding and
// checking are already done.
type Environment struct {
	parent   *Environment
	vars     map[string]*cell
	isGlobal bool
}

// NewGlobalEnvironment creates the root environment. Unlike any other
// frame, the global frame is never copied by Snapshot: its bindings stay
// live for the life of the run, because the bytecode VM's GetGlobal/
// SetGlobal opcodes address the same persistent table for as long as the
// program executes, so a closure capturing a reference to a global sees
// later mutations exactly as the VM would.
func NewGlobalEnvironment() *Environment {
	return &Environment{vars: map[string]*cell{}, isGlobal: true}
}

// NewEnvironment creates a child of parent, or a fresh root if parent is
// nil.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: map[string]*cell{}}
}

// Declare introduces name in this frame, shadowing any outer binding of the
// same name. The binder has already rejected redeclaration within one
// scope, so this always creates a new cell.
func (e *Environment) Declare(name string, v value.Value) {
	e.vars[name] = &cell{v: v}
}

// Get looks up name in e or any ancestor, innermost first.
func (e *Environment) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			return c.v, true
		}
	}
	return nil, false
}

// Assign mutates the nearest existing binding of name, reporting whether
// one was found. The binder guarantees every assignment target it resolved
// names a declared variable, so a caller only needs the bool to catch
// interpreter bugs, not user error.
func (e *Environment) Assign(name string, v value.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			c.v = v
			return true
		}
	}
	return false
}

// Snapshot flattens e's local (non-global) ancestors into one standalone
// frame with copied cells, innermost bindings winning, and re-parents it
// directly to the enclosing global frame (shared, not copied). A lambda or
// function value captures its defining environment this way at creation
// time: the local variables of whatever call frame it was created in are
// frozen as of that moment (value-capture-at-creation), while references to
// globals stay live.
//
// This mirrors what the bytecode VM can physically do: its compiled
// functions have GetGlobal/SetGlobal for the persistent global table but no
// Closure/Upvalue opcode to keep an enclosing frame's stack slot alive
// after that frame returns, so a nested function can only carry frozen
// copies of the outer locals it referenced at creation time. The
// interpreter adopts the identical rule so both engines agree on this
// observable behavior (spec.md §8 interpreter/VM parity).
func (e *Environment) Snapshot() *Environment {
	flat := map[string]*cell{}
	var global *Environment
	for cur := e; cur != nil; cur = cur.parent {
		if cur.isGlobal {
			global = cur
			break
		}
		for name, c := range cur.vars {
			if _, exists := flat[name]; !exists {
				flat[name] = &cell{v: c.v}
			}
		}
	}
	return &Environment{vars: flat, parent: global}
}
