package interp

import (
	"math"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/internal/numeric"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

// eval evaluates e in env, left-to-right for every multi-operand form
// (spec.md §7 "Ordering... evaluation order is left-to-right for
// arguments, operands, and array elements").
func (it *Interpreter) eval(e ast.Expr, env *Environment) (value.Value, error) {
	if err := it.step(e.Span()); err != nil {
		return nil, err
	}
	switch v := e.(type) {
	case *ast.NumberLit:
		return value.Number(v.Value), nil
	case *ast.StringLit:
		return value.Str(v.Value), nil
	case *ast.BoolLit:
		return value.Bool(v.Value), nil
	case *ast.NullLit:
		return value.Null{}, nil

	case *ast.Ident:
		val, ok := env.Get(v.Name)
		if !ok {
			return nil, report.NewRuntimeError(report.ErrInternalInvariant, v.Span(), "interp: unbound identifier %q", v.Name)
		}
		return val, nil

	case *ast.UnaryExpr:
		return it.evalUnary(v, env)

	case *ast.BinaryExpr:
		return it.evalBinary(v, env)

	case *ast.CallExpr:
		return it.evalCall(v, env)

	case *ast.IndexExpr:
		return it.evalIndex(v, env)

	case *ast.MemberExpr:
		return it.evalMember(v, env)

	case *ast.ArrayLit:
		elems := make([]value.Value, len(v.Elements))
		for i, el := range v.Elements {
			val, err := it.eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = val
		}
		return value.NewArray(elems), nil

	case *ast.GroupExpr:
		return it.eval(v.Inner, env)

	case *ast.LambdaExpr:
		return value.Func{Fn: &closure{name: "<lambda>", params: v.Params, body: v.Body, env: env.Snapshot()}}, nil

	case *ast.MatchExpr:
		return it.evalMatch(v.Scrutinee, v.Arms, env)

	default:
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, e.Span(), "interp: unreachable expression form %T", e)
	}
}

func (it *Interpreter) evalUnary(v *ast.UnaryExpr, env *Environment) (value.Value, error) {
	operand, err := it.eval(v.Operand, env)
	if err != nil {
		return nil, err
	}
	switch v.Op {
	case ast.UnaryNeg:
		n := float64(operand.(value.Number))
		result := -n
		if !numeric.Finite(result) {
			return nil, report.NewRuntimeError(report.ErrNonFiniteNumber, v.Span(), "negation produced a non-finite result")
		}
		return value.Number(result), nil
	case ast.UnaryNot:
		return value.Bool(!bool(operand.(value.Bool))), nil
	default:
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, v.Span(), "interp: unknown unary operator")
	}
}

func (it *Interpreter) evalBinary(v *ast.BinaryExpr, env *Environment) (value.Value, error) {
	// Short-circuit operators evaluate the right operand only when needed
	// (spec.md §4.10).
	if v.Op == ast.BinAnd || v.Op == ast.BinOr {
		left, err := it.eval(v.Left, env)
		if err != nil {
			return nil, err
		}
		lb := bool(left.(value.Bool))
		if v.Op == ast.BinAnd && !lb {
			return value.Bool(false), nil
		}
		if v.Op == ast.BinOr && lb {
			return value.Bool(true), nil
		}
		right, err := it.eval(v.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(bool(right.(value.Bool))), nil
	}

	left, err := it.eval(v.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := it.eval(v.Right, env)
	if err != nil {
		return nil, err
	}

	switch v.Op {
	case ast.BinAdd:
		if ls, ok := left.(value.Str); ok {
			return value.Str(string(ls) + string(right.(value.Str))), nil
		}
		return it.arith(v, float64(left.(value.Number)), float64(right.(value.Number)), '+')
	case ast.BinSub:
		return it.arith(v, float64(left.(value.Number)), float64(right.(value.Number)), '-')
	case ast.BinMul:
		return it.arith(v, float64(left.(value.Number)), float64(right.(value.Number)), '*')
	case ast.BinDiv:
		return it.divide(v, float64(left.(value.Number)), float64(right.(value.Number)))
	case ast.BinMod:
		return it.arith(v, float64(left.(value.Number)), float64(right.(value.Number)), '%')
	case ast.BinLt:
		return value.Bool(float64(left.(value.Number)) < float64(right.(value.Number))), nil
	case ast.BinLe:
		return value.Bool(float64(left.(value.Number)) <= float64(right.(value.Number))), nil
	case ast.BinGt:
		return value.Bool(float64(left.(value.Number)) > float64(right.(value.Number))), nil
	case ast.BinGe:
		return value.Bool(float64(left.(value.Number)) >= float64(right.(value.Number))), nil
	case ast.BinEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.BinNe:
		return value.Bool(!value.Equal(left, right)), nil
	default:
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, v.Span(), "interp: unknown binary operator")
	}
}

func (it *Interpreter) arith(v *ast.BinaryExpr, l, r float64, op byte) (value.Value, error) {
	var result float64
	switch op {
	case '+':
		result = l + r
	case '-':
		result = l - r
	case '*':
		result = l * r
	case '%':
		result = mathMod(l, r)
	}
	if !numeric.Finite(result) {
		return nil, report.NewRuntimeError(report.ErrNonFiniteNumber, v.Span(), "arithmetic produced a non-finite result")
	}
	return value.Number(result), nil
}

func (it *Interpreter) divide(v *ast.BinaryExpr, l, r float64) (value.Value, error) {
	result := l / r
	if !numeric.Finite(result) {
		return nil, report.NewRuntimeError(report.ErrDivByNonFinite, v.Span(), "division produced a non-finite result")
	}
	return value.Number(result), nil
}

// mathMod implements `%` as floating-point remainder, the one arithmetic
// operator Go's built-in `%` does not support on floats.
func mathMod(l, r float64) float64 {
	return math.Mod(l, r)
}

func (it *Interpreter) evalCall(v *ast.CallExpr, env *Environment) (value.Value, error) {
	calleeVal, err := it.eval(v.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(value.Func)
	if !ok {
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, v.Span(), "interp: call target is not a function")
	}
	args := make([]value.Value, len(v.Args))
	for i, a := range v.Args {
		val, err := it.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return it.invoke(fn, args, v.Span())
}

// invoke dispatches a call through whichever payload fn.Fn wraps: a
// user-defined closure (evaluated by walking its body) or a stdlib native
// function (called directly). Both share this one call site so a
// first-class function value is invoked identically regardless of where
// it came from (spec.md §4.14).
func (it *Interpreter) invoke(fn value.Func, args []value.Value, span source.Span) (value.Value, error) {
	switch payload := fn.Fn.(type) {
	case *closure:
		return it.callClosure(payload, args, span)
	case *nativeFunction:
		if it.Stdlib == nil {
			return nil, report.NewRuntimeError(report.ErrInternalInvariant, span, "interp: no stdlib.Context configured for native call %q", payload.b.Name)
		}
		return payload.b.Call(it.Stdlib, span, args)
	default:
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, span, "interp: unrecognized function payload %T", payload)
	}
}

// callClosure pushes a new frame, binds parameters positionally into a
// fresh child of the closure's captured environment, and runs the body
// (spec.md §4.10 "Function calls push a new frame; return unwinds to the
// nearest call site").
func (it *Interpreter) callClosure(c *closure, args []value.Value, span source.Span) (value.Value, error) {
	it.frameDepth++
	defer func() { it.frameDepth-- }()
	if it.frameDepth > it.MaxFrameDepth {
		return nil, report.NewRuntimeError(report.ErrFrameDepth, span, "maximum call frame depth (%d) exceeded", it.MaxFrameDepth)
	}

	callEnv := NewEnvironment(c.env)
	for i, p := range c.params {
		var val value.Value = value.Null{}
		if i < len(args) {
			val = args[i]
		}
		callEnv.Declare(p.Name, val)
	}

	sig, _, err := it.execItems(c.body.Items, callEnv)
	if err != nil {
		return nil, err
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return value.Null{}, nil
}
