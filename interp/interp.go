// Package interp is Atlas's C10: a tree-walking evaluator over the typed
// AST (spec.md §4.10), producing the same value.Value model and
// consulting the same stdlib and security.Context as the bytecode VM
// (spec.md §8 interpreter/VM parity). Grounded on protocompile's own
// recursive-descent traversal style (e.g. `walk`'s visitor dispatch over
// a closed node sum), applied here to evaluation instead of static
// analysis.
package interp

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

// defaultMaxFrameDepth bounds call recursion (spec.md §4.13 "a configurable
// maximum frame depth (default high enough for normal recursion; overflow
// yields a runtime error)"). 1024 matches a typical native stack's
// headroom for a tree-walker, whose Go call stack already grows with
// recursion depth.
const defaultMaxFrameDepth = 1024

// Interpreter holds the execution limits and host collaborators spec.md
// §4.10/§4.15 describe: a configurable frame-depth bound, an optional step
// counter for bounded execution (spec.md §7 "Cancellation"), and the
// shared stdlib.Context both engines consult for I/O and capability
// checks.
type Interpreter struct {
	Stdlib        *stdlib.Context
	MaxFrameDepth int
	MaxSteps      int // 0 means unbounded

	frameDepth int
	steps      int
}

// New builds an Interpreter with default limits. Callers may override
// MaxFrameDepth/MaxSteps on the returned value before calling Run.
func New(ctx *stdlib.Context) *Interpreter {
	return &Interpreter{Stdlib: ctx, MaxFrameDepth: defaultMaxFrameDepth}
}

// Run evaluates prog to completion, returning the value of its last
// top-level expression statement (or value.Null{} if the program ends with
// a non-expression item, or is empty), per the `eval` façade's
// `Result<Value, [Diagnostic]>` contract (spec.md §7). Run never recovers
// from a runtime error: the first one short-circuits evaluation and is
// returned to the caller (spec.md §7 "Propagation policy").
func (it *Interpreter) Run(prog *ast.Program) (value.Value, error) {
	global := NewGlobalEnvironment()
	it.installBuiltins(global)

	sig, last, err := it.execItems(prog.Items, global)
	if err != nil {
		return nil, err
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	if last == nil {
		return value.Null{}, nil
	}
	return last, nil
}

func (it *Interpreter) installBuiltins(global *Environment) {
	for _, name := range stdlib.Names() {
		b, _ := stdlib.Lookup(name)
		global.Declare(name, value.Func{Fn: &nativeFunction{b: b}})
	}
}

func (it *Interpreter) step(span source.Span) error {
	if it.MaxSteps <= 0 {
		return nil
	}
	it.steps++
	if it.steps > it.MaxSteps {
		return report.NewRuntimeError(report.ErrStepLimit, span, "execution step limit (%d) exceeded", it.MaxSteps)
	}
	return nil
}
