package interp

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/value"
)

// evalMatch implements `match` in both expression and statement position
// (ast.MatchArm.Body is always an expression, so a statement-position match
// simply discards the resulting value). Arms are tried in source order;
// the checker has already verified exhaustiveness (spec.md §4.8), so
// falling off the end of arms here indicates a checker/interp disagreement
// rather than a reachable user-facing condition.
func (it *Interpreter) evalMatch(scrutinee ast.Expr, arms []ast.MatchArm, env *Environment) (value.Value, error) {
	scrutVal, err := it.eval(scrutinee, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range arms {
		armEnv := NewEnvironment(env)
		matched, err := it.matchPattern(arm.Pattern, scrutVal, armEnv)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		if arm.Guard != nil {
			guardVal, err := it.eval(arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			if !boolVal(guardVal) {
				continue
			}
		}
		return it.eval(arm.Body, armEnv)
	}
	return nil, report.NewRuntimeError(report.ErrInternalInvariant, scrutinee.Span(), "interp: no match arm matched a supposedly exhaustive match")
}

// matchPattern reports whether scrutVal matches p, binding any name the
// pattern introduces into armEnv.
func (it *Interpreter) matchPattern(p ast.Pattern, scrutVal value.Value, armEnv *Environment) (bool, error) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return true, nil

	case *ast.LiteralPattern:
		litVal, err := it.eval(pat.Value, armEnv)
		if err != nil {
			return false, err
		}
		return value.Equal(litVal, scrutVal), nil

	case *ast.TypePattern:
		if valueMatchesTypeExpr(scrutVal, pat.Type) {
			armEnv.Declare(pat.Name, scrutVal)
			return true, nil
		}
		return false, nil

	default:
		return false, report.NewRuntimeError(report.ErrInternalInvariant, p.Span(), "interp: unreachable pattern form %T", p)
	}
}

// valueMatchesTypeExpr reports whether v's dynamic kind matches the shape
// named by te. Alias names (a bare NamedType referring to a type alias
// rather than a primitive) cannot be resolved without the checker's alias
// table, which the interpreter does not carry; such names conservatively
// match, since the checker has already verified scrutinee/pattern
// compatibility statically and the only thing left to decide at runtime is
// which union member the concrete value actually is.
func valueMatchesTypeExpr(v value.Value, te ast.TypeExpr) bool {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "number":
			return value.KindOf(v) == value.KindNumber
		case "string":
			return value.KindOf(v) == value.KindString
		case "bool":
			return value.KindOf(v) == value.KindBool
		case "null":
			return value.KindOf(v) == value.KindNull
		default:
			return true
		}
	case *ast.ArrayType:
		return value.KindOf(v) == value.KindArray
	case *ast.FunctionType:
		return value.KindOf(v) == value.KindFunction
	case *ast.JSONValueType:
		return value.KindOf(v) == value.KindJSON
	case *ast.StructuralType:
		return value.KindOf(v) == value.KindJSON || value.KindOf(v) == value.KindFunction
	case *ast.UnionType:
		for _, m := range t.Members {
			if valueMatchesTypeExpr(v, m) {
				return true
			}
		}
		return false
	case *ast.IntersectionType:
		for _, m := range t.Members {
			if !valueMatchesTypeExpr(v, m) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
