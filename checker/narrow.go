package checker

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/types"
)

// builtinNarrows maps each prelude introspection predicate (spec.md §6) to
// the type it narrows its single argument to when it returns true.
var builtinNarrows = map[string]types.Type{
	"isString":   types.String,
	"isNumber":   types.Number,
	"isBool":     types.Bool,
	"isNull":     types.Null,
	"isArray":    types.Array{Elem: types.Unknown},
	"isFunction": types.Function{},
	"isObject":   types.JSONValue{},
}

// narrowGuard inspects a boolean-valued condition expression and returns the
// flow deltas it implies for the then-branch and the else-branch, per
// spec.md §4.8 "Flow-sensitive narrowing": a call to a declared predicate
// function (`-> bool is x: T`) or a builtin introspection predicate narrows
// its argument when it's a bare identifier resolved to a symbol (a `let` or
// `var` binding or a parameter alike).
func (c *checker) narrowGuard(cond ast.Expr) (then, els map[*binder.Symbol]types.Type) {
	call, ok := cond.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, nil
	}
	arg, ok := call.Args[0].(*ast.Ident)
	if !ok {
		return nil, nil
	}
	sym := c.symbolOf(arg)
	if sym == nil {
		return nil, nil
	}

	var narrowed types.Type
	if callee, ok := call.Callee.(*ast.Ident); ok {
		if calleeSym := c.symbolOf(callee); calleeSym != nil {
			if pred, ok := c.predicateOf[calleeSym]; ok && pred.ParamName != "" {
				narrowed = c.resolveTypeExpr(pred.Type, newTypeScope(nil))
			}
		}
		if narrowed == nil {
			if t, ok := builtinNarrows[callee.Name]; ok {
				narrowed = t
			}
		}
	}
	if narrowed == nil {
		return nil, nil
	}

	thenDelta := map[*binder.Symbol]types.Type{sym: narrowed}
	elseDelta := map[*binder.Symbol]types.Type{sym: narrowExcluding(c.typeOfSymbol(sym), narrowed)}
	return thenDelta, elseDelta
}

// narrowExcluding removes members assignable to excl from whole, for the
// else-branch of a narrowing guard; if nothing remains distinguishable it
// falls back to whole unchanged (spec.md §4.8 does not require a precise
// complement, only a sound one).
func narrowExcluding(whole, excl types.Type) types.Type {
	union, ok := types.Normalize(whole).(types.Union)
	if !ok {
		return whole
	}
	var remaining []types.Type
	for _, m := range union.Members {
		if !types.Equal(m, excl) {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		return whole
	}
	return types.NewUnion(remaining...)
}

// cloneFlow copies the current narrowing map so a branch can diverge from
// its sibling without mutating the parent's view.
func cloneFlow(flow map[*binder.Symbol]types.Type) map[*binder.Symbol]types.Type {
	out := make(map[*binder.Symbol]types.Type, len(flow))
	for k, v := range flow {
		out[k] = v
	}
	return out
}

// joinFlow merges two branch-exit flow states by taking the union of each
// symbol's type across both branches (spec.md §4.8 "joined as the least
// upper bound"); a symbol narrowed in only one branch reverts to its
// pre-branch type, since the merge point cannot assume that branch ran.
func joinFlow(before, a, b map[*binder.Symbol]types.Type) map[*binder.Symbol]types.Type {
	out := map[*binder.Symbol]types.Type{}
	for sym, preTy := range before {
		out[sym] = preTy
	}
	seen := map[*binder.Symbol]bool{}
	for sym, at := range a {
		bt, inB := b[sym]
		if inB {
			out[sym] = Join(at, bt)
		}
		seen[sym] = true
	}
	return out
}
