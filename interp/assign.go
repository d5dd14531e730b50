package interp

import (
	"math"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/internal/numeric"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/value"
)

// execAssign implements simple and compound assignment. The binder/parser
// already guarantee Target is one of *ast.Ident, *ast.IndexExpr, or
// *ast.MemberExpr (spec.md §4.5: anything else is rejected at parse time
// with AT1007), so lvalue resolution never needs a default error case for
// an unsupported target shape.
func (it *Interpreter) execAssign(v *ast.AssignStmt, env *Environment) error {
	rhs, err := it.eval(v.Value, env)
	if err != nil {
		return err
	}

	if v.Op != ast.AssignSet {
		current, err := it.eval(v.Target, env)
		if err != nil {
			return err
		}
		rhs, err = it.applyCompound(v, current, rhs)
		if err != nil {
			return err
		}
	}

	return it.store(v.Target, rhs, env)
}

func (it *Interpreter) applyCompound(v *ast.AssignStmt, current, rhs value.Value) (value.Value, error) {
	if v.Op == ast.AssignAdd {
		if cs, ok := current.(value.Str); ok {
			return value.Str(string(cs) + string(rhs.(value.Str))), nil
		}
	}
	l := float64(current.(value.Number))
	r := float64(rhs.(value.Number))
	var result float64
	switch v.Op {
	case ast.AssignAdd:
		result = l + r
	case ast.AssignSub:
		result = l - r
	case ast.AssignMul:
		result = l * r
	case ast.AssignDiv:
		result = l / r
		if !numeric.Finite(result) {
			return nil, report.NewRuntimeError(report.ErrDivByNonFinite, v.Span(), "compound division produced a non-finite result")
		}
		return value.Number(result), nil
	case ast.AssignMod:
		result = math.Mod(l, r)
	}
	if !numeric.Finite(result) {
		return nil, report.NewRuntimeError(report.ErrNonFiniteNumber, v.Span(), "compound assignment produced a non-finite result")
	}
	return value.Number(result), nil
}

// store writes val to the lvalue target.
func (it *Interpreter) store(target ast.Expr, val value.Value, env *Environment) error {
	switch t := target.(type) {
	case *ast.Ident:
		env.Assign(t.Name, val)
		return nil
	case *ast.IndexExpr:
		targetVal, err := it.eval(t.Target, env)
		if err != nil {
			return err
		}
		indexVal, err := it.eval(t.Index, env)
		if err != nil {
			return err
		}
		arr, ok := targetVal.(*value.Array)
		if !ok {
			return report.NewRuntimeError(report.ErrInternalInvariant, t.Span(), "interp: assignment index target is not an array")
		}
		i := int(float64(indexVal.(value.Number)))
		if !arr.Set(i, val) {
			return report.NewRuntimeError(report.ErrIndexOutOfBounds, t.Span(), "index %d out of bounds for array of length %d", i, arr.Len())
		}
		return nil
	case *ast.MemberExpr:
		// JSON is deeply immutable (spec.md §3), so a field can never be
		// assigned through a member lvalue. The parser accepts a member
		// target (AT1007 covers only non-lvalue forms) and the checker does
		// not reject it, so such an assignment reaches here and fails at
		// runtime.
		return report.NewRuntimeError(report.ErrInternalInvariant, t.Span(), "interp: cannot assign to an immutable member")
	default:
		return report.NewRuntimeError(report.ErrInternalInvariant, target.Span(), "interp: unsupported assignment target %T", target)
	}
}

// execIncDec implements `target++`/`target--`.
func (it *Interpreter) execIncDec(v *ast.IncDecStmt, env *Environment) error {
	current, err := it.eval(v.Target, env)
	if err != nil {
		return err
	}
	n := float64(current.(value.Number))
	var result float64
	if v.Op == ast.IncOp {
		result = n + 1
	} else {
		result = n - 1
	}
	if !numeric.Finite(result) {
		return report.NewRuntimeError(report.ErrNonFiniteNumber, v.Span(), "increment/decrement produced a non-finite result")
	}
	return it.store(v.Target, value.Number(result), env)
}
