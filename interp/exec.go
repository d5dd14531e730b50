package interp

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/value"
)

// execItems runs one block's worth of items in env, mirroring
// binder.bindItems's two-phase shape: function declarations are hoisted
// first (spec.md §3 "Functions are top-level... hoisted before bodies are
// checked so that mutual recursion works"), then every item runs in
// source order. The returned value.Value is the value of the last
// ExprStmt directly in items, used by Run for the program's "block
// expression" result (spec.md §8); it is nil if items is empty or its
// last item is not an expression statement.
func (it *Interpreter) execItems(items []ast.Item, env *Environment) (signal, value.Value, error) {
	for _, item := range items {
		if fn, ok := asFuncDecl(item); ok {
			env.Declare(fn.Name, value.Null{})
		}
	}
	for _, item := range items {
		if fn, ok := asFuncDecl(item); ok {
			env.Assign(fn.Name, value.Func{Fn: &closure{name: fn.Name, params: fn.Params, body: fn.Body, env: env}})
		}
	}

	var last value.Value
	for _, item := range items {
		last = nil
		if es, ok := unwrapExportItem(item).(*ast.ExprStmt); ok {
			if err := it.step(item.Span()); err != nil {
				return noSignal, nil, err
			}
			v, err := it.eval(es.X, env)
			if err != nil {
				return noSignal, nil, err
			}
			last = v
			continue
		}
		sig, err := it.execItem(item, env)
		if err != nil {
			return noSignal, nil, err
		}
		if sig.kind != signalNone {
			return sig, nil, nil
		}
	}
	return noSignal, last, nil
}

func asFuncDecl(item ast.Item) (*ast.FuncDecl, bool) {
	switch v := unwrapExportItem(item).(type) {
	case *ast.FuncDecl:
		return v, true
	default:
		return nil, false
	}
}

func unwrapExportItem(item ast.Item) ast.Item {
	if exp, ok := item.(*ast.ExportDecl); ok && exp.Inner != nil {
		return exp.Inner
	}
	return item
}

// execItem executes one item, which must not be a FuncDecl (those are
// handled by execItems's hoisting pass before any item actually "runs").
func (it *Interpreter) execItem(item ast.Item, env *Environment) (signal, error) {
	if err := it.step(item.Span()); err != nil {
		return noSignal, err
	}
	switch v := unwrapExportItem(item).(type) {
	case *ast.FuncDecl:
		return noSignal, nil // already bound by execItems's hoisting pass

	case *ast.VarDecl:
		val, err := it.eval(v.Value, env)
		if err != nil {
			return noSignal, err
		}
		env.Declare(v.Name, val)
		return noSignal, nil

	case *ast.TypeAliasDecl:
		return noSignal, nil // erased at runtime; only the checker consults it

	case *ast.ImportDecl:
		// Module resolution is an external collaborator (spec.md §1); the
		// core has no loader of its own, so an imported name is bound to
		// null unless a host pre-populates it in the global environment
		// before Run.
		for _, name := range v.Names {
			if _, ok := env.Get(name); !ok {
				env.Declare(name, value.Null{})
			}
		}
		return noSignal, nil

	case *ast.Block:
		child := NewEnvironment(env)
		return it.execBlock(v, child)

	case *ast.ExprStmt:
		_, err := it.eval(v.X, env)
		return noSignal, err

	case *ast.IfStmt:
		return it.execIf(v, env)

	case *ast.WhileStmt:
		return it.execWhile(v, env)

	case *ast.ForInStmt:
		return it.execForIn(v, env)

	case *ast.ReturnStmt:
		var val value.Value = value.Null{}
		if v.Value != nil {
			rv, err := it.eval(v.Value, env)
			if err != nil {
				return noSignal, err
			}
			val = rv
		}
		return signal{kind: signalReturn, value: val}, nil

	case *ast.BreakStmt:
		return signal{kind: signalBreak}, nil

	case *ast.ContinueStmt:
		return signal{kind: signalContinue}, nil

	case *ast.AssignStmt:
		return noSignal, it.execAssign(v, env)

	case *ast.IncDecStmt:
		return noSignal, it.execIncDec(v, env)

	case *ast.MatchStmt:
		_, err := it.evalMatch(v.Scrutinee, v.Arms, env)
		return noSignal, err

	default:
		return noSignal, report.NewRuntimeError(report.ErrInternalInvariant, item.Span(), "interp: unreachable item form %T", v)
	}
}

// execBlock runs b's items in its own child scope env, returning the
// control-flow signal but discarding the block's "last expression" value
// (only the top-level program block's value is observable, per Run).
func (it *Interpreter) execBlock(b *ast.Block, env *Environment) (signal, error) {
	sig, _, err := it.execItems(b.Items, env)
	return sig, err
}

func (it *Interpreter) execIf(v *ast.IfStmt, env *Environment) (signal, error) {
	cond, err := it.eval(v.Cond, env)
	if err != nil {
		return noSignal, err
	}
	if boolVal(cond) {
		return it.execBlock(v.Then, NewEnvironment(env))
	}
	if v.Else != nil {
		return it.execItem(v.Else, env)
	}
	return noSignal, nil
}

func (it *Interpreter) execWhile(v *ast.WhileStmt, env *Environment) (signal, error) {
	for {
		if err := it.step(v.Span()); err != nil {
			return noSignal, err
		}
		cond, err := it.eval(v.Cond, env)
		if err != nil {
			return noSignal, err
		}
		if !boolVal(cond) {
			return noSignal, nil
		}
		sig, err := it.execBlock(v.Body, NewEnvironment(env))
		if err != nil {
			return noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return noSignal, nil
		case signalReturn:
			return sig, nil
		case signalContinue, signalNone:
			// fall through to next iteration
		}
	}
}

func (it *Interpreter) execForIn(v *ast.ForInStmt, env *Environment) (signal, error) {
	iter, err := it.eval(v.Iterable, env)
	if err != nil {
		return noSignal, err
	}
	arr, ok := iter.(*value.Array)
	if !ok {
		return noSignal, report.NewRuntimeError(report.ErrInternalInvariant, v.Iterable.Span(), "interp: for-in over non-array value %s", iter.String())
	}
	// The element count is re-read on every iteration: spec.md makes no
	// guarantee about mutating the array being iterated, and indexing the
	// live slice handles growth or shrinkage without extra bookkeeping
	// since Array.Get bounds-checks.
	for i := 0; i < arr.Len(); i++ {
		if err := it.step(v.Span()); err != nil {
			return noSignal, err
		}
		elem, _ := arr.Get(i)
		loopEnv := NewEnvironment(env)
		loopEnv.Declare(v.Name, elem)
		sig, err := it.execBlock(v.Body, loopEnv)
		if err != nil {
			return noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return noSignal, nil
		case signalReturn:
			return sig, nil
		}
	}
	return noSignal, nil
}

func boolVal(v value.Value) bool {
	b, ok := v.(value.Bool)
	return ok && bool(b)
}
