// Package stdlib is Atlas's C14: a small, fixed set of built-in operations
// resolved statically and callable identically from the interpreter and the
// VM (spec.md §4.14), so neither engine carries its own copy of what
// `print`, `len`, `str`, or an introspection predicate does. Grounded on
// protocompile's wellknownimports package: a fixed, injected, read-only
// registry of things the rest of the compiler looks up by name rather than
// resolves through ordinary scoping.
package stdlib

import (
	"io"
	"sort"

	"github.com/atlas-lang/atlas/security"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

// Context carries the host-mediated collaborators a builtin call may need:
// where `print` writes its output, and the capability gate anything
// effectful must consult. Both engines construct exactly one Context per
// execution and thread it through every builtin call, per spec.md §4.15
// "The interpreter and VM consult the same instance."
type Context struct {
	Output   io.Writer
	Security *security.Context
}

// security returns ctx's capability gate, falling back to deny-all if the
// embedder left it unset, so an effectful builtin never dereferences a nil
// Context (spec.md §6 "Default policy: deny-all security").
func (ctx *Context) security() *security.Context {
	if ctx.Security == nil {
		return security.DenyAll()
	}
	return ctx.Security
}

// Builtin is one prelude function's runtime implementation.
type Builtin struct {
	Name      string
	Arity     int
	Effectful bool
	Call      func(ctx *Context, span source.Span, args []value.Value) (value.Value, error)
}

// registry is the fixed, read-only set of prelude builtins (spec.md §6
// "Prelude"). Populated by init() in core.go, io.go and json.go.
var registry = map[string]*Builtin{}

func register(b *Builtin) { registry[b.Name] = b }

// Lookup returns name's Builtin, or (nil, false) if name is not a prelude
// identifier.
func Lookup(name string) (*Builtin, bool) {
	b, ok := registry[name]
	return b, ok
}

// Names returns every registered builtin name in sorted order, for
// diagnostics and for seeding a binder/VM global table.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
