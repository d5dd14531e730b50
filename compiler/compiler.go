// Package compiler is Atlas's C11: it lowers a checked *ast.Program into a
// linear bytecode.Chunk (instructions, constant pool, one debug span per
// instruction), the input the C13 VM executes (spec.md §4.11). Grounded on
// protocompile's own lowering passes (its options/wellknownimports
// resolution walks a checked AST into a flatter wire form the same way
// this walks a checked AST into a flatter instruction form), adapted here
// from a descriptor-building walk to a code-emitting one.
//
// The compiler assumes prog has already passed the binder and checker: it
// performs no further validation and returns an error, rather than
// panicking, on a shape the checker should have ruled out (mirroring
// interp's ErrInternalInvariant philosophy, but as a plain error return,
// since there is no runtime execution yet to attach a span-bearing
// diagnostic to).
package compiler

import (
	"fmt"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
)

// funcScope tracks one function's (or the top-level program's, treated as
// an implicit "main" function) compile-time local state: its instruction
// chunk, its stack of block-local name->slot scopes, and the break/continue
// patch lists for whichever loop is currently innermost (spec.md §4.11
// "break and continue patch forward jumps after the loop body is
// compiled").
type funcScope struct {
	parent *funcScope
	chunk  *bytecode.Chunk

	scopes   []map[string]int
	nextSlot int

	loopBreaks    [][]int
	loopContinues [][]int
}

func newFuncScope(parent *funcScope) *funcScope {
	fs := &funcScope{parent: parent, chunk: bytecode.NewChunk()}
	fs.pushScope()
	return fs
}

func (fs *funcScope) pushScope() { fs.scopes = append(fs.scopes, map[string]int{}) }
func (fs *funcScope) popScope()  { fs.scopes = fs.scopes[:len(fs.scopes)-1] }

// declare reserves the next slot for name in the innermost scope. Slots
// are never reused across sibling blocks (simpler than a true
// stack-discipline allocator, at the cost of a few wasted stack cells for
// a function with many sequential blocks), matching spec.md §4.11's only
// hard requirement: "Locals are numbered per function by declaration
// order."
func (fs *funcScope) declare(name string) int {
	slot := fs.nextSlot
	fs.nextSlot++
	fs.scopes[len(fs.scopes)-1][name] = slot
	return slot
}

// resolve looks up name within fs's own scope chain only (not fs.parent);
// callers that need to search enclosing functions do so explicitly via
// freeVars, which have already been reserved as fs's own leading locals.
func (fs *funcScope) resolve(name string) (int, bool) {
	for i := len(fs.scopes) - 1; i >= 0; i-- {
		if slot, ok := fs.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// compiler holds the state shared across an entire Compile call: the
// fixed global slot table (stdlib builtins only — see DESIGN.md's
// compiler entry for why user bindings are never true globals) and the
// precomputed closure-capture map, plus whichever funcScope is currently
// being emitted into.
type compiler struct {
	globals map[string]int
	closure map[ast.Node]*closureInfo
	fn      *funcScope
}

// Compile lowers prog into its top-level Chunk ("main"), with every
// nested function/lambda compiled into its own Chunk and stored as a
// *bytecode.FuncProto constant in the chunk that creates it.
func Compile(prog *ast.Program) (*bytecode.Chunk, error) {
	c := &compiler{
		globals: globalSlots(),
		closure: analyzeClosures(prog),
	}
	c.fn = newFuncScope(nil)
	if err := c.compileItems(prog.Items); err != nil {
		return nil, err
	}
	c.fn.chunk.Emit(bytecode.OpHalt, 0, source.Dummy)
	c.fn.chunk.NumLocals = c.fn.nextSlot
	return c.fn.chunk, nil
}

// globalSlots assigns every stdlib builtin a fixed global slot, in
// Names()'s order. A VM installs the matching native function value at
// each of these slots before running any chunk compiled against this
// table (see vm.New).
func globalSlots() map[string]int {
	slots := map[string]int{}
	for i, name := range stdlib.Names() {
		slots[name] = i
	}
	return slots
}

func (c *compiler) errorf(span source.Span, format string, args ...any) error {
	return fmt.Errorf("compiler: %s: %s", span, fmt.Sprintf(format, args...))
}
