package compiler

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
)

// compileItems lowers one block's worth of items, mirroring
// interp.execItems's two-phase shape so top-level mutual recursion works
// the same way in both engines: every FuncDecl's name is reserved (and,
// for a top-level decl, populated) before any item's code runs, then
// every item is compiled in source order, skipping FuncDecls (already
// handled).
func (c *compiler) compileItems(items []ast.Item) error {
	for _, item := range items {
		if fn, ok := asFuncDecl(item); ok {
			c.fn.declare(fn.Name)
		}
	}
	for _, item := range items {
		fn, ok := asFuncDecl(item)
		if !ok {
			continue
		}
		if err := c.compileFuncValue(fn, fn.Params, fn.Body, fn.Name); err != nil {
			return err
		}
		slot, _ := c.fn.resolve(fn.Name)
		c.emitStore(slot, fn.Span())
	}

	for _, item := range items {
		if _, ok := asFuncDecl(item); ok {
			continue // already compiled above
		}
		if err := c.compileItem(item); err != nil {
			return err
		}
		if terminates(item) {
			break // spec.md §4.11: "no instructions for unreachable code after return"
		}
	}
	return nil
}

func asFuncDecl(item ast.Item) (*ast.FuncDecl, bool) {
	fn, ok := unwrapExport(item).(*ast.FuncDecl)
	return fn, ok
}

// terminates reports whether item unconditionally transfers control out of
// its enclosing block, making any sibling item after it dead code. This is
// deliberately conservative (only a bare return/break/continue at this
// exact item-list level counts) rather than full CFG reachability — sound,
// not complete, the same trade-off checker.blockAlwaysReturns makes for
// the same diagnostic (see DESIGN.md).
func terminates(item ast.Item) bool {
	switch unwrapExport(item).(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	default:
		return false
	}
}

func (c *compiler) compileItem(item ast.Item) error {
	switch v := unwrapExport(item).(type) {
	case *ast.VarDecl:
		if err := c.compileExpr(v.Value); err != nil {
			return err
		}
		slot := c.fn.declare(v.Name)
		c.emitStore(slot, v.Span())
		return nil

	case *ast.TypeAliasDecl, *ast.ImportDecl:
		return nil // erased at runtime; see interp.execItem's identical treatment

	case *ast.Block:
		c.fn.pushScope()
		err := c.compileItems(v.Items)
		c.fn.popScope()
		return err

	case *ast.ExprStmt:
		if err := c.compileExpr(v.X); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpPop, 0, v.Span())
		return nil

	case *ast.IfStmt:
		return c.compileIf(v)

	case *ast.WhileStmt:
		return c.compileWhile(v)

	case *ast.ForInStmt:
		return c.compileForIn(v)

	case *ast.ReturnStmt:
		if v.Value != nil {
			if err := c.compileExpr(v.Value); err != nil {
				return err
			}
		} else {
			c.fn.chunk.Emit(bytecode.OpNull, 0, v.Span())
		}
		c.fn.chunk.Emit(bytecode.OpReturn, 0, v.Span())
		return nil

	case *ast.BreakStmt:
		off := c.fn.chunk.Emit(bytecode.OpJump, 0, v.Span())
		top := len(c.fn.loopBreaks) - 1
		c.fn.loopBreaks[top] = append(c.fn.loopBreaks[top], off)
		return nil

	case *ast.ContinueStmt:
		off := c.fn.chunk.Emit(bytecode.OpJump, 0, v.Span())
		top := len(c.fn.loopContinues) - 1
		c.fn.loopContinues[top] = append(c.fn.loopContinues[top], off)
		return nil

	case *ast.AssignStmt:
		return c.compileAssign(v)

	case *ast.IncDecStmt:
		return c.compileIncDec(v)

	case *ast.MatchStmt:
		if err := c.compileMatch(v.Scrutinee, v.Arms, v.Span()); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpPop, 0, v.Span())
		return nil

	default:
		return c.errorf(item.Span(), "unreachable item form %T", v)
	}
}

func (c *compiler) compileIf(v *ast.IfStmt) error {
	if err := c.compileExpr(v.Cond); err != nil {
		return err
	}
	jf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, v.Span())
	c.fn.pushScope()
	err := c.compileItems(v.Then.Items)
	c.fn.popScope()
	if err != nil {
		return err
	}
	if v.Else != nil {
		skipElse := c.fn.chunk.Emit(bytecode.OpJump, 0, v.Span())
		c.fn.chunk.PatchOperand(jf, c.fn.chunk.Len())
		if err := c.compileItem(v.Else); err != nil {
			return err
		}
		c.fn.chunk.PatchOperand(skipElse, c.fn.chunk.Len())
	} else {
		c.fn.chunk.PatchOperand(jf, c.fn.chunk.Len())
	}
	return nil
}

func (c *compiler) compileWhile(v *ast.WhileStmt) error {
	condStart := c.fn.chunk.Len()
	if err := c.compileExpr(v.Cond); err != nil {
		return err
	}
	jf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, v.Span())

	c.fn.loopBreaks = append(c.fn.loopBreaks, nil)
	c.fn.loopContinues = append(c.fn.loopContinues, nil)

	c.fn.pushScope()
	err := c.compileItems(v.Body.Items)
	c.fn.popScope()
	if err != nil {
		return err
	}
	c.fn.chunk.Emit(bytecode.OpJump, condStart, v.Span())

	loopEnd := c.fn.chunk.Len()
	c.fn.chunk.PatchOperand(jf, loopEnd)
	c.patchLoopExits(loopEnd, condStart)
	return nil
}

// compileForIn lowers `for (name in iterable)` into an index-driven while
// loop over the iterable array, reusing the globally registered `len`
// builtin to read the bound each iteration rather than adding a dedicated
// array-length opcode (spec.md §4.14: len is resolved statically and
// called identically to any other function).
func (c *compiler) compileForIn(v *ast.ForInStmt) error {
	c.fn.pushScope()
	defer c.fn.popScope()

	arrSlot := c.fn.declare("$iter_arr")
	idxSlot := c.fn.declare("$iter_idx")

	if err := c.compileExpr(v.Iterable); err != nil {
		return err
	}
	c.emitStore(arrSlot, v.Span())
	c.fn.chunk.Emit(bytecode.OpConst, c.fn.chunk.AddConstant(bytecode.NumberConst(0)), v.Span())
	c.emitStore(idxSlot, v.Span())

	condStart := c.fn.chunk.Len()
	c.emitLoad(idxSlot, v.Span())
	if err := c.emitLenCall(arrSlot, v.Span()); err != nil {
		return err
	}
	c.fn.chunk.Emit(bytecode.OpLt, 0, v.Span())
	jf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, v.Span())

	c.fn.loopBreaks = append(c.fn.loopBreaks, nil)
	c.fn.loopContinues = append(c.fn.loopContinues, nil)

	c.fn.pushScope()
	loopVarSlot := c.fn.declare(v.Name)
	c.emitLoad(arrSlot, v.Span())
	c.emitLoad(idxSlot, v.Span())
	c.fn.chunk.Emit(bytecode.OpGetIndex, 0, v.Span())
	c.emitStore(loopVarSlot, v.Span())

	err := c.compileItems(v.Body.Items)
	c.fn.popScope()
	if err != nil {
		return err
	}

	continueTarget := c.fn.chunk.Len()
	c.emitLoad(idxSlot, v.Span())
	c.fn.chunk.Emit(bytecode.OpConst, c.fn.chunk.AddConstant(bytecode.NumberConst(1)), v.Span())
	c.fn.chunk.Emit(bytecode.OpAdd, 0, v.Span())
	c.emitStore(idxSlot, v.Span())
	c.fn.chunk.Emit(bytecode.OpJump, condStart, v.Span())

	loopEnd := c.fn.chunk.Len()
	c.fn.chunk.PatchOperand(jf, loopEnd)
	c.patchLoopExits(loopEnd, continueTarget)
	return nil
}

func (c *compiler) emitLenCall(arrSlot int, span source.Span) error {
	lenSlot, ok := c.globals["len"]
	if !ok {
		return c.errorf(span, "builtin %q not registered", "len")
	}
	c.fn.chunk.Emit(bytecode.OpGetGlobal, lenSlot, span)
	c.emitLoad(arrSlot, span)
	c.fn.chunk.Emit(bytecode.OpCall, 1, span)
	return nil
}

// patchLoopExits rewrites the innermost loop's pending break targets to
// loopEnd and its pending continue targets to continueTo, then pops that
// loop's patch lists (spec.md §4.11's "two-pass patch lists per loop").
func (c *compiler) patchLoopExits(loopEnd, continueTo int) {
	top := len(c.fn.loopBreaks) - 1
	for _, off := range c.fn.loopBreaks[top] {
		c.fn.chunk.PatchOperand(off, loopEnd)
	}
	for _, off := range c.fn.loopContinues[top] {
		c.fn.chunk.PatchOperand(off, continueTo)
	}
	c.fn.loopBreaks = c.fn.loopBreaks[:top]
	c.fn.loopContinues = c.fn.loopContinues[:top]
}

// emitLoad/emitStore address a name already resolved to a local slot in
// the current function (including its reserved free-variable slots, which
// resolve exactly like any other local — see compileFuncValue).
func (c *compiler) emitLoad(slot int, span source.Span) {
	c.fn.chunk.Emit(bytecode.OpGetLocal, slot, span)
}

func (c *compiler) emitStore(slot int, span source.Span) {
	c.fn.chunk.Emit(bytecode.OpSetLocal, slot, span)
}

func (c *compiler) compileAssign(v *ast.AssignStmt) error {
	switch target := v.Target.(type) {
	case *ast.Ident:
		if v.Op == ast.AssignSet {
			if err := c.compileExpr(v.Value); err != nil {
				return err
			}
		} else {
			if err := c.loadIdent(target); err != nil {
				return err
			}
			if err := c.compileExpr(v.Value); err != nil {
				return err
			}
			c.fn.chunk.Emit(compoundOpcode(v.Op), 0, v.Span())
		}
		return c.storeIdent(target, v.Span())

	case *ast.IndexExpr:
		if v.Op == ast.AssignSet {
			if err := c.compileExpr(target.Target); err != nil {
				return err
			}
			if err := c.compileExpr(target.Index); err != nil {
				return err
			}
			if err := c.compileExpr(v.Value); err != nil {
				return err
			}
			c.fn.chunk.Emit(bytecode.OpSetIndex, 0, v.Span())
			return nil
		}
		// Compound index assignment re-evaluates target/index for the read
		// and again for the write, matching interp.execAssign's identical
		// double evaluation (see assign.go) for VM/interpreter parity.
		if err := c.compileExpr(target.Target); err != nil {
			return err
		}
		if err := c.compileExpr(target.Index); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpGetIndex, 0, v.Span())
		if err := c.compileExpr(v.Value); err != nil {
			return err
		}
		c.fn.chunk.Emit(compoundOpcode(v.Op), 0, v.Span())
		if err := c.compileExpr(target.Target); err != nil {
			return err
		}
		if err := c.compileExpr(target.Index); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpSetIndex, 0, v.Span())
		return nil

	default:
		return c.errorf(v.Span(), "unsupported assignment target %T", target)
	}
}

func compoundOpcode(op ast.AssignOp) bytecode.Opcode {
	switch op {
	case ast.AssignAdd:
		return bytecode.OpAdd
	case ast.AssignSub:
		return bytecode.OpSub
	case ast.AssignMul:
		return bytecode.OpMul
	case ast.AssignDiv:
		return bytecode.OpDiv
	default:
		return bytecode.OpMod
	}
}

func (c *compiler) compileIncDec(v *ast.IncDecStmt) error {
	target, ok := v.Target.(*ast.Ident)
	if !ok {
		return c.errorf(v.Span(), "unsupported increment/decrement target %T", v.Target)
	}
	if err := c.loadIdent(target); err != nil {
		return err
	}
	c.fn.chunk.Emit(bytecode.OpConst, c.fn.chunk.AddConstant(bytecode.NumberConst(1)), v.Span())
	if v.Op == ast.IncOp {
		c.fn.chunk.Emit(bytecode.OpAdd, 0, v.Span())
	} else {
		c.fn.chunk.Emit(bytecode.OpSub, 0, v.Span())
	}
	return c.storeIdent(target, v.Span())
}

func (c *compiler) loadIdent(id *ast.Ident) error {
	if slot, ok := c.fn.resolve(id.Name); ok {
		c.emitLoad(slot, id.Span())
		return nil
	}
	if slot, ok := c.globals[id.Name]; ok {
		c.fn.chunk.Emit(bytecode.OpGetGlobal, slot, id.Span())
		return nil
	}
	return c.errorf(id.Span(), "unresolved identifier %q (closures may only capture from their directly enclosing function scope)", id.Name)
}

func (c *compiler) storeIdent(id *ast.Ident, span source.Span) error {
	if slot, ok := c.fn.resolve(id.Name); ok {
		c.emitStore(slot, span)
		return nil
	}
	if slot, ok := c.globals[id.Name]; ok {
		c.fn.chunk.Emit(bytecode.OpSetGlobal, slot, span)
		return nil
	}
	return c.errorf(span, "unresolved identifier %q", id.Name)
}
