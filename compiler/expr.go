package compiler

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
)

// compileExpr emits code that leaves exactly one value on the stack,
// mirroring interp.eval's left-to-right evaluation order for every
// multi-operand form (spec.md §7).
func (c *compiler) compileExpr(e ast.Expr) error {
	switch v := e.(type) {
	case *ast.NumberLit:
		c.fn.chunk.Emit(bytecode.OpConst, c.fn.chunk.AddConstant(bytecode.NumberConst(v.Value)), v.Span())
		return nil

	case *ast.StringLit:
		c.fn.chunk.Emit(bytecode.OpConst, c.fn.chunk.AddConstant(bytecode.StrConst(v.Value)), v.Span())
		return nil

	case *ast.BoolLit:
		if v.Value {
			c.fn.chunk.Emit(bytecode.OpTrue, 0, v.Span())
		} else {
			c.fn.chunk.Emit(bytecode.OpFalse, 0, v.Span())
		}
		return nil

	case *ast.NullLit:
		c.fn.chunk.Emit(bytecode.OpNull, 0, v.Span())
		return nil

	case *ast.Ident:
		return c.loadIdent(v)

	case *ast.UnaryExpr:
		if err := c.compileExpr(v.Operand); err != nil {
			return err
		}
		if v.Op == ast.UnaryNeg {
			c.fn.chunk.Emit(bytecode.OpNegate, 0, v.Span())
		} else {
			c.fn.chunk.Emit(bytecode.OpNot, 0, v.Span())
		}
		return nil

	case *ast.BinaryExpr:
		return c.compileBinary(v)

	case *ast.CallExpr:
		if err := c.compileExpr(v.Callee); err != nil {
			return err
		}
		for _, a := range v.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.fn.chunk.Emit(bytecode.OpCall, len(v.Args), v.Span())
		return nil

	case *ast.IndexExpr:
		if err := c.compileExpr(v.Target); err != nil {
			return err
		}
		if err := c.compileExpr(v.Index); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpGetIndex, 0, v.Span())
		return nil

	case *ast.MemberExpr:
		if err := c.compileExpr(v.Target); err != nil {
			return err
		}
		idx := c.fn.chunk.AddConstant(bytecode.StrConst(v.Name))
		c.fn.chunk.Emit(bytecode.OpGetMember, idx, v.Span())
		return nil

	case *ast.ArrayLit:
		for _, el := range v.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.fn.chunk.Emit(bytecode.OpNewArray, len(v.Elements), v.Span())
		return nil

	case *ast.GroupExpr:
		return c.compileExpr(v.Inner)

	case *ast.LambdaExpr:
		return c.compileFuncValue(v, v.Params, v.Body, "<lambda>")

	case *ast.MatchExpr:
		return c.compileMatch(v.Scrutinee, v.Arms, v.Span())

	default:
		return c.errorf(e.Span(), "unreachable expression form %T", v)
	}
}

func (c *compiler) compileBinary(v *ast.BinaryExpr) error {
	if v.Op == ast.BinAnd || v.Op == ast.BinOr {
		if err := c.compileExpr(v.Left); err != nil {
			return err
		}
		c.fn.chunk.Emit(bytecode.OpDup, 0, v.Span())
		var shortJump int
		if v.Op == ast.BinAnd {
			shortJump = c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, v.Span())
		} else {
			shortJump = c.fn.chunk.Emit(bytecode.OpJumpIfTrue, 0, v.Span())
		}
		c.fn.chunk.Emit(bytecode.OpPop, 0, v.Span())
		if err := c.compileExpr(v.Right); err != nil {
			return err
		}
		end := c.fn.chunk.Emit(bytecode.OpJump, 0, v.Span())
		c.fn.chunk.PatchOperand(shortJump, c.fn.chunk.Len())
		c.fn.chunk.PatchOperand(end, c.fn.chunk.Len())
		return nil
	}

	if err := c.compileExpr(v.Left); err != nil {
		return err
	}
	if err := c.compileExpr(v.Right); err != nil {
		return err
	}
	c.fn.chunk.Emit(binaryOpcode(v.Op), 0, v.Span())
	return nil
}

func binaryOpcode(op ast.BinaryOp) bytecode.Opcode {
	switch op {
	case ast.BinAdd:
		return bytecode.OpAdd
	case ast.BinSub:
		return bytecode.OpSub
	case ast.BinMul:
		return bytecode.OpMul
	case ast.BinDiv:
		return bytecode.OpDiv
	case ast.BinMod:
		return bytecode.OpMod
	case ast.BinLt:
		return bytecode.OpLt
	case ast.BinLe:
		return bytecode.OpLe
	case ast.BinGt:
		return bytecode.OpGt
	case ast.BinGe:
		return bytecode.OpGe
	case ast.BinEq:
		return bytecode.OpEq
	case ast.BinNe:
		return bytecode.OpNe
	default:
		return bytecode.OpNull
	}
}

// compileFuncValue compiles node's body into its own Chunk (wrapped as a
// FuncProto constant in the enclosing chunk) and emits the code that
// builds its runtime closure value: push each captured free variable's
// current value (in closureInfo order), then OpMakeClosure. The child
// function reserves its free variables as its own leading locals (slots
// 0..len(freeVars)-1) before its params, so references to them inside the
// body resolve exactly like any other local.
func (c *compiler) compileFuncValue(node ast.Node, params []ast.Param, body *ast.Block, name string) error {
	info := c.closure[node]
	var freeVars []string
	if info != nil {
		freeVars = info.freeVars
	}

	for _, fv := range freeVars {
		if err := c.loadFreeVarSource(fv, body.Span()); err != nil {
			return err
		}
	}

	child := newFuncScope(c.fn)
	for _, fv := range freeVars {
		child.declare(fv)
	}
	for _, p := range params {
		child.declare(p.Name)
	}

	parent := c.fn
	c.fn = child
	err := c.compileItems(body.Items)
	c.fn.chunk.Emit(bytecode.OpNull, 0, body.Span())
	c.fn.chunk.Emit(bytecode.OpReturn, 0, body.Span())
	c.fn.chunk.NumLocals = c.fn.nextSlot
	childChunk := c.fn.chunk
	c.fn = parent
	if err != nil {
		return err
	}

	proto := &bytecode.FuncProto{
		Name: name, Arity: len(params), NumLocals: childChunk.NumLocals,
		FreeVars: freeVars, Chunk: childChunk,
	}
	idx := c.fn.chunk.AddConstant(proto)
	c.fn.chunk.Emit(bytecode.OpMakeClosure, idx, body.Span())
	return nil
}

// loadFreeVarSource pushes the current value of a free variable name as
// seen by the function currently being compiled (c.fn, the *enclosing*
// function relative to the closure being built). If name isn't one of
// c.fn's own locals, c.fn must itself have captured it (analyzeClosures
// guarantees this transitively — see closure_analysis.go), so it still
// resolves as one of c.fn's reserved free-variable locals.
func (c *compiler) loadFreeVarSource(name string, span source.Span) error {
	if slot, ok := c.fn.resolve(name); ok {
		c.emitLoad(slot, span)
		return nil
	}
	if slot, ok := c.globals[name]; ok {
		c.fn.chunk.Emit(bytecode.OpGetGlobal, slot, span)
		return nil
	}
	return c.errorf(span, "unresolved captured variable %q", name)
}
