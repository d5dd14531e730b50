package compiler

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
)

// compileMatch lowers a match (expression or statement position — in both,
// ast.MatchArm.Body is an expression, matching interp.evalMatch's single
// evaluation path) into a chain of per-arm tests, each falling through to
// the next arm's test on failure and jumping to the shared end label on
// success. The scrutinee is evaluated once into a hidden local so every
// arm's test and every TypePattern's binding reads the same value.
func (c *compiler) compileMatch(scrutinee ast.Expr, arms []ast.MatchArm, span source.Span) error {
	c.fn.pushScope()
	defer c.fn.popScope()

	scrutSlot := c.fn.declare("$match_scrutinee")
	if err := c.compileExpr(scrutinee); err != nil {
		return err
	}
	c.emitStore(scrutSlot, span)

	var endJumps []int
	for _, arm := range arms {
		c.fn.pushScope()
		nextArm, err := c.compileArmTest(arm, scrutSlot)
		if err != nil {
			c.fn.popScope()
			return err
		}
		if arm.Guard != nil {
			if err := c.compileExpr(arm.Guard); err != nil {
				c.fn.popScope()
				return err
			}
			gjf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, arm.Span)
			nextArm = append(nextArm, gjf)
		}
		if err := c.compileExpr(arm.Body); err != nil {
			c.fn.popScope()
			return err
		}
		c.fn.popScope()
		endJumps = append(endJumps, c.fn.chunk.Emit(bytecode.OpJump, 0, arm.Span))
		for _, off := range nextArm {
			c.fn.chunk.PatchOperand(off, c.fn.chunk.Len())
		}
	}

	// Exhaustiveness is checker-enforced (spec.md §4.8); falling through
	// every arm here should be unreachable for a program that passed the
	// checker. Pushing Null keeps the stack balanced for whatever code
	// follows rather than leaving it short.
	c.fn.chunk.Emit(bytecode.OpNull, 0, span)

	end := c.fn.chunk.Len()
	for _, off := range endJumps {
		c.fn.chunk.PatchOperand(off, end)
	}
	return nil
}

// compileArmTest emits arm's pattern test and, for a TypePattern, binds its
// name. It returns the list of jump offsets to patch to the next arm's
// test (taken when this arm's pattern does not match).
func (c *compiler) compileArmTest(arm ast.MatchArm, scrutSlot int) ([]int, error) {
	switch pat := arm.Pattern.(type) {
	case *ast.WildcardPattern:
		return nil, nil

	case *ast.LiteralPattern:
		c.emitLoad(scrutSlot, arm.Span)
		if err := c.compileExpr(pat.Value); err != nil {
			return nil, err
		}
		c.fn.chunk.Emit(bytecode.OpEq, 0, arm.Span)
		jf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, arm.Span)
		return []int{jf}, nil

	case *ast.TypePattern:
		jumps, err := c.compileTypeTest(pat.Type, scrutSlot, arm.Span)
		if err != nil {
			return nil, err
		}
		slot := c.fn.declare(pat.Name)
		c.emitLoad(scrutSlot, arm.Span)
		c.emitStore(slot, arm.Span)
		return jumps, nil

	default:
		return nil, c.errorf(arm.Span, "unreachable pattern form %T", pat)
	}
}

// compileTypeTest emits code testing the scrutinee's dynamic kind against
// te, returning jump offsets to patch to "test failed" (falling through
// means the test passed). Union members are tried in order (first match
// wins, jumping straight to success); intersection members must all pass.
func (c *compiler) compileTypeTest(te ast.TypeExpr, scrutSlot int, span source.Span) ([]int, error) {
	switch t := te.(type) {
	case *ast.UnionType:
		var succeed []int
		var lastFail []int
		for i, m := range t.Members {
			for _, off := range lastFail {
				c.fn.chunk.PatchOperand(off, c.fn.chunk.Len())
			}
			fails, err := c.compileTypeTest(m, scrutSlot, span)
			if err != nil {
				return nil, err
			}
			if i < len(t.Members)-1 {
				succeed = append(succeed, c.fn.chunk.Emit(bytecode.OpJump, 0, span))
			}
			lastFail = fails
		}
		// A member that matched jumps here, past the remaining members'
		// tests; lastFail (from the final member) is the union's own
		// failure set.
		for _, off := range succeed {
			c.fn.chunk.PatchOperand(off, c.fn.chunk.Len())
		}
		return lastFail, nil

	case *ast.IntersectionType:
		var allFail []int
		for _, m := range t.Members {
			fails, err := c.compileTypeTest(m, scrutSlot, span)
			if err != nil {
				return nil, err
			}
			allFail = append(allFail, fails...)
		}
		return allFail, nil

	default:
		tag, ok := typeTagFor(te)
		if !ok {
			return nil, nil // conservatively always matches; no test emitted
		}
		c.emitLoad(scrutSlot, span)
		c.fn.chunk.Emit(bytecode.OpTypeTest, int(tag), span)
		jf := c.fn.chunk.Emit(bytecode.OpJumpIfFalse, 0, span)
		return []int{jf}, nil
	}
}

// typeTagFor maps a syntactic type shape to the dynamic-kind test
// OpTypeTest understands, mirroring interp.valueMatchesTypeExpr's mapping
// exactly (including its documented conservative "alias names always
// match" simplification — see DESIGN.md).
func typeTagFor(te ast.TypeExpr) (bytecode.TypeTag, bool) {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "number":
			return bytecode.TypeTagNumber, true
		case "string":
			return bytecode.TypeTagString, true
		case "bool":
			return bytecode.TypeTagBool, true
		case "null":
			return bytecode.TypeTagNull, true
		default:
			return bytecode.TypeTagAny, false
		}
	case *ast.ArrayType:
		return bytecode.TypeTagArray, true
	case *ast.FunctionType:
		return bytecode.TypeTagFunction, true
	case *ast.JSONValueType:
		return bytecode.TypeTagJSON, true
	case *ast.StructuralType:
		return bytecode.TypeTagAny, false
	default:
		return bytecode.TypeTagAny, false
	}
}
