// Package vm is Atlas's C13: a stack machine executing the bytecode C11
// produces, kept at exact behavioral parity with the tree-walking
// interpreter (spec.md §4.13, §8 "Interpreter ↔ VM parity"). Grounded on
// protocompile's linker/pool.go arena/pooling idiom: pre-sized, reusable
// stacks rather than growing one slice element at a time, applied here to
// the value stack and frame stack instead of a descriptor-interning arena.
package vm

import (
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

// defaultMaxFrameDepth/defaultMaxStackDepth bound recursion and expression
// nesting (spec.md §4.13 "a configurable maximum frame depth... and a
// configurable maximum value-stack depth"). Matches interp.defaultMaxFrameDepth
// so the two engines hit their recursion limit at the same logical depth
// under default configuration.
const (
	defaultMaxFrameDepth = 1024
	defaultMaxStackDepth = 1 << 16
)

// CallFrame is one activation record (spec.md §4.13): the chunk being
// executed, the instruction pointer into that chunk, and the base pointer
// into the shared value stack addressing this call's locals.
type CallFrame struct {
	chunk   *bytecode.Chunk
	ip      int
	basePtr int
}

// VM is a single execution of one compiled program. A fresh VM is created
// per Run; it is not safe to reuse or share across goroutines (spec.md §5
// "no single Atlas instance shared mutably across threads").
type VM struct {
	Stdlib        *stdlib.Context
	MaxFrameDepth int
	MaxStackDepth int
	MaxSteps      int // 0 means unbounded

	stack   []value.Value
	frames  []CallFrame
	globals []value.Value

	steps int

	Profiler *Profiler
}

// New builds a VM with default limits and the fixed global table installed
// (spec.md §4.14's prelude, one slot per stdlib.Names() entry — see
// compiler.globalSlots, which both the compiler and the VM must agree on).
// Callers may override MaxFrameDepth/MaxStackDepth/MaxSteps/Profiler on the
// returned value before calling Run.
func New(ctx *stdlib.Context) *VM {
	names := stdlib.Names()
	globals := make([]value.Value, len(names))
	for i, name := range names {
		b, _ := stdlib.Lookup(name)
		globals[i] = value.Func{Fn: &nativeFunction{b: b}}
	}
	return &VM{
		Stdlib:        ctx,
		MaxFrameDepth: defaultMaxFrameDepth,
		MaxStackDepth: defaultMaxStackDepth,
		globals:       globals,
		stack:         make([]value.Value, 0, 256),
	}
}

// Run executes chunk (the top-level program chunk compiled by
// compiler.Compile) to completion. Per spec.md §8's documented
// interpreter/VM divergence ("Block expressions may differ only in that
// the VM produces null"), Run always returns value.Null{} rather than the
// value of the program's last top-level expression statement: the compiler
// emits OpPop after every top-level ExprStmt (compiler/stmt.go), so no
// expression value survives on the stack for the VM to report.
func (m *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	if err := m.pushFrame(chunk, 0); err != nil {
		return nil, err
	}
	if err := m.dispatch(); err != nil {
		return nil, err
	}
	return value.Null{}, nil
}

func (m *VM) pushFrame(chunk *bytecode.Chunk, argc int) error {
	if len(m.frames) >= m.maxFrameDepth() {
		return report.NewRuntimeError(report.ErrFrameDepth, chunk.SpanAt(0), "maximum call frame depth (%d) exceeded", m.maxFrameDepth())
	}
	base := len(m.stack) - argc
	for i := argc; i < chunk.NumLocals; i++ {
		if err := m.push(value.Null{}); err != nil {
			return err
		}
	}
	m.frames = append(m.frames, CallFrame{chunk: chunk, ip: 0, basePtr: base})
	if m.Profiler != nil {
		m.Profiler.noteFrameDepth(len(m.frames))
	}
	return nil
}

func (m *VM) maxFrameDepth() int {
	if m.MaxFrameDepth <= 0 {
		return defaultMaxFrameDepth
	}
	return m.MaxFrameDepth
}

func (m *VM) maxStackDepth() int {
	if m.MaxStackDepth <= 0 {
		return defaultMaxStackDepth
	}
	return m.MaxStackDepth
}

func (m *VM) push(v value.Value) error {
	if len(m.stack) >= m.maxStackDepth() {
		return report.NewRuntimeError(report.ErrFrameDepth, source.Dummy, "maximum value stack depth (%d) exceeded", m.maxStackDepth())
	}
	m.stack = append(m.stack, v)
	if m.Profiler != nil {
		m.Profiler.noteStackDepth(len(m.stack))
	}
	return nil
}

func (m *VM) pop() value.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *VM) top() value.Value { return m.stack[len(m.stack)-1] }

func (m *VM) step(span source.Span) error {
	if m.MaxSteps <= 0 {
		return nil
	}
	m.steps++
	if m.steps > m.MaxSteps {
		return report.NewRuntimeError(report.ErrStepLimit, span, "execution step limit (%d) exceeded", m.MaxSteps)
	}
	return nil
}
