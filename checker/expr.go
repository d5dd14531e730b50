package checker

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/types"
)

// synthesize infers e's type in synthesis mode (spec.md §4.8: "used where no
// expected type is available — literals, identifiers, calls whose callee is
// known"). The result is cached in c.exprTy for the compiler/interpreter.
func (c *checker) synthesize(e ast.Expr) types.Type {
	ty := c.synthesizeUncached(e)
	c.exprTy[e] = ty
	return ty
}

func (c *checker) synthesizeUncached(e ast.Expr) types.Type {
	switch v := e.(type) {
	case *ast.NumberLit:
		return types.Number
	case *ast.StringLit:
		return types.String
	case *ast.BoolLit:
		return types.Bool
	case *ast.NullLit:
		return types.Null

	case *ast.Ident:
		sym := c.symbolOf(v)
		if sym == nil {
			return types.Unknown
		}
		c.markUsed(sym)
		return c.typeOfSymbol(sym)

	case *ast.UnaryExpr:
		switch v.Op {
		case ast.UnaryNeg:
			c.check(v.Operand, types.Number)
			return types.Number
		case ast.UnaryNot:
			c.check(v.Operand, types.Bool)
			return types.Bool
		}
		return types.Unknown

	case *ast.BinaryExpr:
		return c.synthesizeBinary(v)

	case *ast.CallExpr:
		return c.synthesizeCall(v)

	case *ast.IndexExpr:
		targetTy := types.Normalize(c.synthesize(v.Target))
		c.check(v.Index, types.Number)
		if arr, ok := targetTy.(types.Array); ok {
			return arr.Elem
		}
		if !isUnknown(targetTy) {
			c.errorf(report.ErrTypeMismatch, v.Target.Span(), "cannot index into %s", targetTy.String())
		}
		return types.Unknown

	case *ast.MemberExpr:
		targetTy := types.Normalize(c.synthesize(v.Target))
		if s, ok := targetTy.(types.Structural); ok {
			if m, found := s.MemberByName(v.Name); found {
				if m.Fn != nil {
					return *m.Fn
				}
				return m.Type
			}
		}
		if !isUnknown(targetTy) {
			c.errorf(report.ErrTypeMismatch, v.Span(), "%s has no member %q", targetTy.String(), v.Name)
		}
		return types.Unknown

	case *ast.ArrayLit:
		if len(v.Elements) == 0 {
			return types.Array{Elem: types.Unknown}
		}
		elem := c.synthesize(v.Elements[0])
		for _, el := range v.Elements[1:] {
			elem = Join(elem, c.synthesize(el))
		}
		return types.Array{Elem: elem}

	case *ast.GroupExpr:
		return c.synthesize(v.Inner)

	case *ast.LambdaExpr:
		return c.synthesizeLambda(v)

	case *ast.MatchExpr:
		return c.synthesizeMatchExpr(v)

	default:
		c.errorf(report.ErrInternalInvariant, e.Span(), "unreachable expression form %T", e)
		return types.Unknown
	}
}

func (c *checker) synthesizeBinary(v *ast.BinaryExpr) types.Type {
	switch v.Op {
	case ast.BinAdd:
		// `+` also concatenates strings, per spec.md §4.5.
		lt := c.synthesize(v.Left)
		if types.Equal(types.Normalize(lt), types.String) {
			c.check(v.Right, types.String)
			return types.String
		}
		if !Assignable(lt, types.Number) {
			c.errorf(report.ErrTypeMismatch, v.Left.Span(), "expected %s, got %s", types.Number.String(), lt.String())
		}
		c.check(v.Right, types.Number)
		return types.Number
	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod:
		c.check(v.Left, types.Number)
		c.check(v.Right, types.Number)
		return types.Number
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		c.check(v.Left, types.Number)
		c.check(v.Right, types.Number)
		return types.Bool
	case ast.BinEq, ast.BinNe:
		lt := c.synthesize(v.Left)
		c.check(v.Right, lt)
		return types.Bool
	case ast.BinAnd, ast.BinOr:
		c.check(v.Left, types.Bool)
		c.check(v.Right, types.Bool)
		return types.Bool
	default:
		return types.Unknown
	}
}

func (c *checker) synthesizeCall(v *ast.CallExpr) types.Type {
	calleeTy := types.Normalize(c.synthesize(v.Callee))
	fn, ok := calleeTy.(types.Function)
	if !ok {
		if !isUnknown(calleeTy) {
			c.errorf(report.ErrTypeMismatch, v.Callee.Span(), "%s is not callable", calleeTy.String())
		}
		for _, a := range v.Args {
			c.synthesize(a)
		}
		return types.Unknown
	}

	if len(fn.Params) != len(v.Args) {
		c.errorf(report.ErrTypeMismatch, v.Span(), "expected %d argument(s), got %d", len(fn.Params), len(v.Args))
	}

	if len(fn.TypeParams) == 0 {
		for i, a := range v.Args {
			if i < len(fn.Params) {
				c.check(a, fn.Params[i])
			} else {
				c.synthesize(a)
			}
		}
		if fn.Return == nil {
			return types.Void
		}
		return fn.Return
	}

	argTypes := make([]types.Type, len(v.Args))
	for i, a := range v.Args {
		argTypes[i] = c.synthesize(a)
	}
	_, ret := c.instantiateCall(fn, argTypes, v.Span())
	return ret
}

func (c *checker) synthesizeLambda(v *ast.LambdaExpr) types.Type {
	fnScope := c.bound.Scopes[v]
	ts := newTypeScope(nil)
	var typeParams []types.TypeParamID
	for _, tp := range v.TypeParams {
		id := c.nextTypeParamID()
		ts.params[tp.Name] = id
		typeParams = append(typeParams, id)
	}
	params := make([]types.Type, len(v.Params))
	for i, p := range v.Params {
		pt := types.Type(types.Unknown)
		if p.Type != nil {
			pt = c.resolveTypeExpr(p.Type, ts)
		}
		params[i] = pt
		if fnScope != nil {
			if sym, ok := fnScope.LookupLocal(p.Name); ok {
				sym.Type = pt
			}
		}
	}
	var ret types.Type = types.Void
	if v.Return != nil {
		ret = c.resolveTypeExpr(v.Return, ts)
	}

	c.returnType = append(c.returnType, ret)
	c.checkBlock(v.Body, fnScope)
	c.returnType = c.returnType[:len(c.returnType)-1]
	if fnScope != nil {
		c.emitUnusedWarnings(fnScope)
	}

	return types.Function{TypeParams: typeParams, Params: params, Return: ret}
}

func (c *checker) synthesizeMatchExpr(v *ast.MatchExpr) types.Type {
	scrutTy := c.synthesize(v.Scrutinee)
	var result types.Type
	first := true
	for _, arm := range v.Arms {
		armTy := c.checkMatchArm(arm, v.Scrutinee, scrutTy)
		if first {
			result = armTy
			first = false
		} else {
			result = Join(result, armTy)
		}
	}
	c.checkExhaustive(v.Scrutinee, scrutTy, v.Arms, v.Span())
	if result == nil {
		return types.Void
	}
	return result
}

// typeOfSymbol returns the narrowed type of sym in the current flow state,
// falling back to its declared type.
func (c *checker) typeOfSymbol(sym *binder.Symbol) types.Type {
	if t, ok := c.flow[sym]; ok {
		return t
	}
	if sym.Type != nil {
		return sym.Type
	}
	return types.Unknown
}

// check verifies e against expected (spec.md §4.8 checking mode), falling
// back to synthesis-then-compare for forms with no special checking rule.
func (c *checker) check(e ast.Expr, expected types.Type) types.Type {
	if arr, ok := e.(*ast.ArrayLit); ok {
		if wantArr, ok := types.Normalize(expected).(types.Array); ok {
			for _, el := range arr.Elements {
				c.check(el, wantArr.Elem)
			}
			c.exprTy[e] = expected
			return expected
		}
	}

	got := c.synthesize(e)
	if !Assignable(got, expected) {
		c.errorf(report.ErrTypeMismatch, e.Span(), "expected %s, got %s", expected.String(), got.String())
	}
	return got
}
