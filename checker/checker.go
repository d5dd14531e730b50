package checker

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/types"
)

// Result is a completed check pass.
type Result struct {
	Diagnostics []report.Diagnostic
	// ExprTypes records every expression's synthesized or checked type,
	// keyed by node identity, for the compiler and interpreter to query
	// without re-deriving it (e.g. to pick an arithmetic fast path).
	ExprTypes map[ast.Expr]types.Type
	// FuncTypes records each function declaration's resolved signature.
	FuncTypes map[*ast.FuncDecl]types.Function
}

type checker struct {
	bound *binder.Result
	diags []report.Diagnostic

	aliases     map[string]types.Type
	funcSigs    map[*ast.FuncDecl]types.Function
	exprTy      map[ast.Expr]types.Type
	paramBounds map[types.TypeParamID]types.Bound
	// predicateOf maps a function's symbol to its predicate clause
	// (`-> bool is x: T`), consulted by narrowGuard when that function is
	// called as an if/while condition.
	predicateOf map[*binder.Symbol]*ast.PredicateClause

	nextTypeParam types.TypeParamID

	// flow is the current persistent narrowing map (symbol -> narrowed
	// type), copied on branch entry and joined at merges, per spec.md §4.8
	// and §9 "Flow-sensitive state."
	flow map[*binder.Symbol]types.Type

	// loopDepth guards break/continue (AT3005/AT3006); returnType guards
	// return (AT3007) and records the enclosing function's declared return
	// type for checking `return e;`.
	loopDepth  int
	returnType []types.Type

	used map[*binder.Symbol]bool

	// suppress silences errorf while true, used by checkWhile's warm-up pass
	// so a loop body's diagnostics are only recorded once, on the pass whose
	// flow state is final.
	suppress bool
}

// Check type-checks prog against its already-bound scope tree, per spec.md
// §4.8. It never aborts: failures taint the offending subtree with Unknown
// so the remainder of the program is still checked (spec.md §4.8 "Error
// semantics").
func Check(prog *ast.Program, bound *binder.Result) Result {
	c := &checker{
		bound:    bound,
		aliases:     map[string]types.Type{},
		funcSigs:    map[*ast.FuncDecl]types.Function{},
		exprTy:      map[ast.Expr]types.Type{},
		paramBounds: map[types.TypeParamID]types.Bound{},
		predicateOf: map[*binder.Symbol]*ast.PredicateClause{},
		flow:        map[*binder.Symbol]types.Type{},
		used:        map[*binder.Symbol]bool{},
	}

	c.collectAliases(prog.Items)
	c.collectFuncSigs(prog.Items)
	c.checkDuplicateExports(prog.Items)

	for _, item := range prog.Items {
		c.checkItem(item, bound.Global)
	}
	// The global scope's own bindings draw no unused-binding warnings;
	// block scopes nested directly at top level (if/while/for-in bodies,
	// match arms) are still checked here. Function-scope warnings (spec.md
	// §4.8 "emitted at the closing of each function scope") are emitted
	// where each function body finishes checking, in checkFuncDecl and
	// synthesizeLambda.
	for _, child := range bound.Global.Children() {
		if child.Kind != binder.ScopeFunction {
			c.emitUnusedWarnings(child)
		}
	}

	return Result{Diagnostics: c.diags, ExprTypes: c.exprTy, FuncTypes: c.funcSigs}
}

func (c *checker) collectAliases(items []ast.Item) {
	for _, item := range items {
		item = unwrapExport(item)
		if ta, ok := item.(*ast.TypeAliasDecl); ok {
			ts := newTypeScope(nil)
			for _, tp := range ta.TypeParams {
				ts.params[tp.Name] = c.nextTypeParamID()
			}
			c.aliases[ta.Name] = c.resolveTypeExpr(ta.Value, ts)
		}
	}
}

func (c *checker) collectFuncSigs(items []ast.Item) {
	for _, item := range items {
		item = unwrapExport(item)
		if fn, ok := item.(*ast.FuncDecl); ok {
			sig := c.signatureOf(fn)
			c.funcSigs[fn] = sig
			if sym, ok := c.bound.Global.LookupLocal(fn.Name); ok {
				sym.Type = sig
				if fn.Predicate != nil {
					c.predicateOf[sym] = fn.Predicate
				}
			}
		}
	}
}

func (c *checker) signatureOf(fn *ast.FuncDecl) types.Function {
	ts := newTypeScope(nil)
	var typeParams []types.TypeParamID
	for _, tp := range fn.TypeParams {
		id := c.nextTypeParamID()
		ts.params[tp.Name] = id
		typeParams = append(typeParams, id)
		if tp.Bound != nil {
			c.paramBounds[id] = c.resolveBound(tp.Bound, ts)
		}
	}
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		if p.Type != nil {
			params[i] = c.resolveTypeExpr(p.Type, ts)
		} else {
			params[i] = types.Unknown
		}
	}
	var ret types.Type = types.Void
	if fn.Return != nil {
		ret = c.resolveTypeExpr(fn.Return, ts)
	}
	return types.Function{TypeParams: typeParams, Params: params, Return: ret}
}

// resolveBound resolves a `extends Bound` annotation: one of the five
// built-in bound names (spec.md §4.8), or an arbitrary structural type used
// directly as a structural bound.
func (c *checker) resolveBound(te ast.TypeExpr, ts *typeScope) types.Bound {
	if named, ok := te.(*ast.NamedType); ok && len(named.Args) == 0 {
		if b, ok := types.LookupBuiltinBound(named.Name); ok {
			return b
		}
	}
	resolved := c.resolveTypeExpr(te, ts)
	if s, ok := resolved.(types.Structural); ok {
		return types.Bound{Name: resolved.String(), Shape: &s}
	}
	return types.Bound{Name: resolved.String(), Satisfies: func(t types.Type) bool {
		return Assignable(t, resolved)
	}}
}

// checkDuplicateExports raises AT5001 for a name exported more than once at
// top level. Atlas has no module loader of its own (package resolution is
// an external collaborator per spec.md §1), so this is the one AT5xxx check
// the core can perform without one: it only needs the file it already has.
func (c *checker) checkDuplicateExports(items []ast.Item) {
	seen := map[string]ast.Node{}
	for _, item := range items {
		exp, ok := item.(*ast.ExportDecl)
		if !ok || exp.Inner == nil {
			continue
		}
		name, span := exportedName(exp.Inner)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			c.errorf(report.ErrDuplicateExport, span, "%q is already exported", name)
			continue
		}
		seen[name] = exp.Inner
	}
}

func exportedName(d ast.Decl) (string, source.Span) {
	switch v := d.(type) {
	case *ast.FuncDecl:
		return v.Name, v.Span()
	case *ast.VarDecl:
		return v.Name, v.Span()
	case *ast.TypeAliasDecl:
		return v.Name, v.Span()
	default:
		return "", source.Span{}
	}
}

func unwrapExport(item ast.Item) ast.Item {
	if exp, ok := item.(*ast.ExportDecl); ok && exp.Inner != nil {
		return exp.Inner
	}
	return item
}

func (c *checker) symbolOf(id *ast.Ident) *binder.Symbol {
	return c.bound.Resolutions[id]
}

func (c *checker) markUsed(sym *binder.Symbol) {
	if sym != nil {
		c.used[sym] = true
	}
}

// emitUnusedWarnings walks scope and every descendant block scope nested
// directly inside it (if/while/for-in bodies, match arms), stopping at a
// nested function or lambda scope — that scope gets its own call when its
// own FuncDecl/LambdaExpr finishes checking, so descending into it here
// would double-report.
func (c *checker) emitUnusedWarnings(scope *binder.Scope) {
	for _, sym := range scope.Symbols() {
		if sym.Kind == binder.KindBuiltin {
			continue
		}
		if c.used[sym] {
			continue
		}
		switch sym.Kind {
		case binder.KindVariable:
			c.errorf(report.WarnUnusedVariable, sym.DeclSpan, "%q is never used", sym.Name)
		case binder.KindParameter:
			c.errorf(report.WarnUnusedParameter, sym.DeclSpan, "%q is never used", sym.Name)
		case binder.KindFunction:
			c.errorf(report.WarnUnusedFunction, sym.DeclSpan, "%q is never used", sym.Name)
		}
	}
	for _, child := range scope.Children() {
		if child.Kind == binder.ScopeFunction {
			continue
		}
		c.emitUnusedWarnings(child)
	}
}
