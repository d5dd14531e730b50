package compiler

import "github.com/atlas-lang/atlas/ast"

// closureInfo records the ordered list of free-variable names a nested
// function (a *ast.FuncDecl not at the top level, or an *ast.LambdaExpr)
// needs captured from its enclosing function at the moment it is created,
// since the VM has no Closure/Upvalue opcode to alias a stack slot after
// its owning frame returns (the bytecode analog of the interpreter's
// Environment.Snapshot, see interp/env.go and DESIGN.md). Captures thread
// transitively: if a doubly-nested lambda needs a name bound two function
// levels up, the intermediate function also captures it (as one of its own
// reserved leading locals) purely to forward it down.
type closureInfo struct {
	freeVars []string
}

// analyzeClosures walks prog once, returning every nested function/lambda
// node's closureInfo, computed bottom-up via the recursive free-variable
// definition: a name referenced in a function's body that isn't bound
// anywhere within that body is free; a name a nested closure needs that
// isn't bound in the current function either is *also* free for the
// current function, so it gets threaded one level further out.
func analyzeClosures(prog *ast.Program) map[ast.Node]*closureInfo {
	info := map[ast.Node]*closureInfo{}
	bound := declaredNamesIn(prog.Items)
	scanItems(prog.Items, bound, info)
	return info
}

// declaredNamesIn collects every name declared anywhere within items'
// function scope: VarDecl/FuncDecl/ImportDecl names, for-in loop
// variables, and match-statement arm TypePattern bindings (scanItems adds
// a match expression's arm bindings as it reaches them), at any nesting depth
// short of a further nested function/lambda body (those belong to a
// different function scope, analyzed separately). This is deliberately
// conservative (order-insensitive): a name declared later in the body is
// still treated as "bound" everywhere in it, which only ever causes a
// free variable to be miscategorized as already-local in the rare case of
// a name shadowed by a same-named local declared after an outer-scope use
// — see DESIGN.md's closure-analysis entry.
func declaredNamesIn(items []ast.Item) map[string]bool {
	names := map[string]bool{}
	var walkItems func([]ast.Item)
	var walkItem func(ast.Item)

	walkItem = func(item ast.Item) {
		switch v := unwrapExport(item).(type) {
		case *ast.VarDecl:
			names[v.Name] = true
		case *ast.FuncDecl:
			names[v.Name] = true
			// v.Body is a separate function scope; do not recurse into it.
		case *ast.TypeAliasDecl:
			// erased at runtime, irrelevant to value capture
		case *ast.ImportDecl:
			for _, n := range v.Names {
				names[n] = true
			}
		case *ast.Block:
			walkItems(v.Items)
		case *ast.IfStmt:
			walkItem(v.Then)
			if v.Else != nil {
				walkItem(v.Else)
			}
		case *ast.WhileStmt:
			walkItem(v.Body)
		case *ast.ForInStmt:
			names[v.Name] = true
			walkItem(v.Body)
		case *ast.MatchStmt:
			for _, arm := range v.Arms {
				if tp, ok := arm.Pattern.(*ast.TypePattern); ok {
					names[tp.Name] = true
				}
			}
		}
	}
	walkItems = func(items []ast.Item) {
		for _, item := range items {
			walkItem(item)
		}
	}
	walkItems(items)
	return names
}

func unwrapExport(item ast.Item) ast.Item {
	if exp, ok := item.(*ast.ExportDecl); ok && exp.Inner != nil {
		return exp.Inner
	}
	return item
}

// scanItems returns the set of identifier names referenced within items
// that are not in bound, recording a closureInfo for every nested
// function/lambda node it passes through along the way.
func scanItems(items []ast.Item, bound map[string]bool, info map[ast.Node]*closureInfo) map[string]bool {
	free := map[string]bool{}
	merge := func(other map[string]bool) {
		for n := range other {
			if !bound[n] {
				free[n] = true
			}
		}
	}

	var scanItem func(ast.Item)
	var scanExpr func(ast.Expr)

	scanFunc := func(node ast.Node, params []ast.Param, body *ast.Block) {
		ownBound := declaredNamesIn(body.Items)
		for _, p := range params {
			ownBound[p.Name] = true
		}
		child := scanItems(body.Items, ownBound, info)
		info[node] = &closureInfo{freeVars: orderedKeys(child)}
		merge(child)
	}

	scanExpr = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Ident:
			if !bound[v.Name] {
				free[v.Name] = true
			}
		case *ast.UnaryExpr:
			scanExpr(v.Operand)
		case *ast.BinaryExpr:
			scanExpr(v.Left)
			scanExpr(v.Right)
		case *ast.CallExpr:
			scanExpr(v.Callee)
			for _, a := range v.Args {
				scanExpr(a)
			}
		case *ast.IndexExpr:
			scanExpr(v.Target)
			scanExpr(v.Index)
		case *ast.MemberExpr:
			scanExpr(v.Target)
		case *ast.ArrayLit:
			for _, el := range v.Elements {
				scanExpr(el)
			}
		case *ast.GroupExpr:
			scanExpr(v.Inner)
		case *ast.LambdaExpr:
			scanFunc(v, v.Params, v.Body)
		case *ast.MatchExpr:
			scanExpr(v.Scrutinee)
			for _, arm := range v.Arms {
				if tp, ok := arm.Pattern.(*ast.TypePattern); ok {
					bound[tp.Name] = true
				}
				if arm.Guard != nil {
					scanExpr(arm.Guard)
				}
				scanExpr(arm.Body)
			}
		}
	}

	scanItem = func(item ast.Item) {
		switch v := unwrapExport(item).(type) {
		case *ast.VarDecl:
			scanExpr(v.Value)
		case *ast.FuncDecl:
			scanFunc(v, v.Params, v.Body)
		case *ast.TypeAliasDecl, *ast.ImportDecl:
			// nothing to scan
		case *ast.Block:
			for _, it := range v.Items {
				scanItem(it)
			}
		case *ast.ExprStmt:
			scanExpr(v.X)
		case *ast.IfStmt:
			scanExpr(v.Cond)
			scanItem(v.Then)
			if v.Else != nil {
				scanItem(v.Else)
			}
		case *ast.WhileStmt:
			scanExpr(v.Cond)
			scanItem(v.Body)
		case *ast.ForInStmt:
			scanExpr(v.Iterable)
			scanItem(v.Body)
		case *ast.ReturnStmt:
			if v.Value != nil {
				scanExpr(v.Value)
			}
		case *ast.BreakStmt, *ast.ContinueStmt:
		case *ast.AssignStmt:
			scanExpr(v.Target)
			scanExpr(v.Value)
		case *ast.IncDecStmt:
			scanExpr(v.Target)
		case *ast.MatchStmt:
			scanExpr(v.Scrutinee)
			for _, arm := range v.Arms {
				if arm.Guard != nil {
					scanExpr(arm.Guard)
				}
				scanExpr(arm.Body)
			}
		}
	}

	for _, item := range items {
		scanItem(item)
	}
	return free
}

// orderedKeys returns m's keys in an arbitrary but deterministic order.
// Map iteration order would otherwise make capture-push order (and thus
// generated bytecode) nondeterministic between compiles of the same
// source, which would needlessly break golden-output tests.
func orderedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
