// Package atlas is the root façade spec.md §6 describes: two functions
// (`Eval`, `Check`) for one-shot use and a `Runtime` for stateful
// multi-statement sessions, wired over the lex→parse→bind→check pipeline
// and the two execution engines (C10's tree-walker, C11→C12→C13's
// compile-optimize-execute path). Grounded on protocompile's own
// `compiler.go`: a thin struct (there, `Compiler`; here, `Runtime`) that
// owns nothing but configuration and delegates every phase to its own
// package, so the façade stays a wiring point rather than gaining its own
// logic.
package atlas

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/petermattis/goid"
	"golang.org/x/sync/semaphore"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/checker"
	"github.com/atlas-lang/atlas/compiler"
	"github.com/atlas-lang/atlas/interp"
	"github.com/atlas-lang/atlas/optimizer"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/security"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
	"github.com/atlas-lang/atlas/vm"
)

// Engine selects which of spec.md §4's two execution paths runs a
// program: C10's tree-walking interpreter, or C11's bytecode compiler
// feeding C12's optimizer into C13's stack machine. Both consult the same
// stdlib.Context and security.Context, so a program's observable behavior
// must agree between them (spec.md §8 "Interpreter ↔ VM parity").
type Engine int

const (
	Interpreter Engine = iota
	VM
)

// Options configures a one-shot Eval call or a Runtime session. A zero
// Options is usable: the tree-walking interpreter, deny-all security
// (spec.md §6 "Default policy: deny-all security"), output discarded.
type Options struct {
	Engine Engine
	// Security is consulted by every effectful stdlib builtin (spec.md
	// §4.15); nil means deny-all.
	Security *security.Context
	// Output receives whatever `print` writes; nil discards it.
	Output io.Writer
	// OptimizerLevel is only consulted when Engine == VM.
	OptimizerLevel optimizer.Level
}

func (o Options) stdlibContext() *stdlib.Context {
	out := o.Output
	if out == nil {
		out = io.Discard
	}
	return &stdlib.Context{Output: out, Security: o.Security}
}

// Check performs lex + parse + bind + type-check only (spec.md §6
// "check(source) → [Diagnostic]") and returns every diagnostic raised
// along the way, in pipeline order (syntax, then binding, then type
// errors), regardless of severity.
func Check(src string) []report.Diagnostic {
	_, diags := checkSource(src, "<input>")
	return diags
}

func checkSource(src, filename string) (*ast.Program, []report.Diagnostic) {
	f := source.New(filename, []byte(src))
	pr := parser.Parse(f)
	var diags []report.Diagnostic
	diags = append(diags, pr.Diagnostics...)
	bound := binder.Bind(pr.Program)
	diags = append(diags, bound.Diagnostics...)
	res := checker.Check(pr.Program, &bound)
	diags = append(diags, res.Diagnostics...)
	return pr.Program, diags
}

func hasError(diags []report.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == report.Error {
			return true
		}
	}
	return false
}

// Eval implements spec.md §6's `eval(source) → Result<Value, [Diagnostic]>`:
// lex, parse, bind, and type-check src, then — only if no diagnostic at
// error severity was raised — run it on opts.Engine. A program rejected at
// check time never reaches execution; its diagnostics come back instead,
// with a nil value and a nil error. A runtime error surviving execution is
// returned as err, kept distinct from the static diagnostics slice per
// spec.md §3's diagnostic/runtime-error split.
func Eval(src string, opts Options) (value.Value, []report.Diagnostic, error) {
	prog, diags := checkSource(src, "<input>")
	if hasError(diags) {
		return nil, diags, nil
	}
	v, err := run(prog, opts)
	return v, diags, err
}

func run(prog *ast.Program, opts Options) (value.Value, error) {
	ctx := opts.stdlibContext()
	if opts.Engine == VM {
		chunk, err := compiler.Compile(prog)
		if err != nil {
			return nil, err
		}
		chunk, _ = optimizer.Optimize(chunk, opts.OptimizerLevel)
		return vm.New(ctx).Run(chunk)
	}
	return interp.New(ctx).Run(prog)
}

// Runtime is a stateful multi-statement session (spec.md §6 "A Runtime
// {mode: Interpreter | VM} permits stateful multi-statement sessions with
// a persistent top-level scope"). Each Exec call's source is appended to
// the session's accumulated program and the whole thing is re-bound,
// re-checked, and re-run from the top: declarations from earlier calls
// stay in scope for later ones, at the cost of re-executing prior
// top-level statements on every call. Neither engine exposes a
// suspend/resume point mid-program, so incremental re-execution is the
// only way to give a REPL-style caller a persistent top-level scope
// without changing either engine's Run contract.
//
// Exec asserts, on every call, that a single Runtime value is only ever
// entered from one goroutine (spec.md §5 "no single Atlas
// instance shared mutably across threads") — mirroring the kind of
// single-goroutine-ownership assertion github.com/petermattis/goid exists
// to make cheap, since Runtime's accumulated-source slice has no locking
// of its own and two concurrent Execs would race on it silently otherwise.
type Runtime struct {
	Options
	sources []string
	owner   int64 // goroutine id of the first Exec call; 0 until claimed
}

// NewRuntime returns a Runtime ready for its first Exec call.
func NewRuntime(opts Options) *Runtime {
	return &Runtime{Options: opts}
}

// checkSingleOwner panics if Exec is called from a goroutine other than
// the one that made this Runtime's first Exec call.
func (r *Runtime) checkSingleOwner() {
	g := goid.Get()
	if r.owner == 0 {
		r.owner = g
		return
	}
	if r.owner != g {
		panic(fmt.Sprintf("atlas: Runtime entered from goroutine %d, but was first used by goroutine %d — a single Runtime must not be shared across goroutines (spec.md §5)", g, r.owner))
	}
}

// Exec appends src to the session and re-evaluates the accumulated
// program, returning the diagnostics of the whole accumulated program (if check-time
// errors were raised, execution is skipped and the accumulated program is
// rolled back to before this call) or its runtime value/error.
func (r *Runtime) Exec(src string) (value.Value, []report.Diagnostic, error) {
	r.checkSingleOwner()

	candidate := append(append([]string(nil), r.sources...), src)
	joined := joinStatements(candidate)

	prog, diags := checkSource(joined, "<session>")
	if hasError(diags) {
		return nil, diags, nil
	}
	r.sources = candidate

	v, err := run(prog, r.Options)
	return v, diags, err
}

// Pool bounds how many Eval calls may run concurrently within one host
// process, mirroring protocompile's own Compiler.MaxParallelism /
// semaphore.Weighted pattern (compiler.go's Compile method) for spec.md
// §5's "a host may run multiple independent compilations or executions in
// parallel" — each call still owns its own lexer/parser/checker/engine;
// Pool only throttles how many run at once, it shares no state between them.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool admitting at most maxParallelism concurrent Eval
// calls. maxParallelism <= 0 defaults to min(runtime.NumCPU(),
// runtime.GOMAXPROCS(-1)), the same default protocompile's Compiler computes
// when MaxParallelism is left unset.
func NewPool(maxParallelism int) *Pool {
	if maxParallelism <= 0 {
		maxParallelism = runtime.GOMAXPROCS(-1)
		if cpus := runtime.NumCPU(); maxParallelism > cpus {
			maxParallelism = cpus
		}
	}
	return &Pool{sem: semaphore.NewWeighted(int64(maxParallelism))}
}

// Eval blocks until a permit is available (or ctx is done), then runs
// Eval(src, opts). Use this instead of the bare Eval function when a host
// spins up many independent evaluations and wants to cap total concurrency.
func (p *Pool) Eval(ctx context.Context, src string, opts Options) (value.Value, []report.Diagnostic, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer p.sem.Release(1)
	return Eval(src, opts)
}

func joinStatements(stmts []string) string {
	out := ""
	for i, s := range stmts {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}
