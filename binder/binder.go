package binder

import (
	"fmt"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
)

// PreludeNames are the identifiers declared in global scope before any
// user code: every builtin the stdlib package registers. Shadowing one in
// a nested scope is AT1012; redeclaring one at top level is reported as a
// duplicate declaration (AT2008) instead.
var PreludeNames = []string{
	"print", "len", "str", "typeof",
	"isString", "isNumber", "isBool", "isNull", "isArray", "isFunction", "isObject",
	"jsonParse", "jsonStringify", "jsonGet",
	"readFile", "writeFile", "getEnv",
}

// Result is a completed bind pass: the global scope (with the prelude
// already declared), a resolution table from each Ident node to the Symbol
// it names, and any diagnostics raised along the way.
type Result struct {
	Global      *Scope
	Resolutions map[*ast.Ident]*Symbol
	Diagnostics []report.Diagnostic
	// Scopes maps each node that introduces its own scope (*ast.FuncDecl,
	// *ast.LambdaExpr, *ast.Block) to the Scope created for it, so the
	// checker can emit unused-binding warnings "at the closing of each
	// function scope" (spec.md §4.8) rather than only once globally.
	Scopes map[ast.Node]*Scope
}

type binder struct {
	diags  []report.Diagnostic
	resols map[*ast.Ident]*Symbol
	scopes map[ast.Node]*Scope
}

// Bind builds the scope tree for prog and resolves every identifier
// reference, per spec.md §4.7.
func Bind(prog *ast.Program) Result {
	b := &binder{resols: map[*ast.Ident]*Symbol{}, scopes: map[ast.Node]*Scope{}}
	global := newScope(ScopeGlobal, nil)
	for _, name := range PreludeNames {
		global.Declare(&Symbol{Name: name, Kind: KindBuiltin, DeclSpan: source.Span{}})
	}
	b.bindItems(prog.Items, global, true)
	return Result{Global: global, Resolutions: b.resols, Diagnostics: b.diags, Scopes: b.scopes}
}

func (b *binder) errorf(code report.Code, span source.Span, format string, args ...any) {
	b.diags = append(b.diags, report.New(code, span, fmt.Sprintf(format, args...)))
}

// bindItems binds one block's worth of items: it hoists function and type
// alias declarations first (spec.md §3 "Functions are top-level... their
// types are hoisted before bodies are checked so that mutual recursion
// works"), then processes every item in source order, declaring each
// variable only after its initializer has been resolved so that a
// self-referencing initializer is a forward reference, not a use of the
// not-yet-existing binding.
func (b *binder) bindItems(items []ast.Item, scope *Scope, topLevel bool) {
	pendingVars := map[string]source.Span{}
	for _, item := range items {
		switch d := item.(type) {
		case *ast.FuncDecl:
			b.declareHoisted(scope, d.Name, KindFunction, d.Span())
		case *ast.TypeAliasDecl:
			b.declareHoisted(scope, d.Name, KindTypeAlias, d.Span())
		case *ast.ExportDecl:
			if fn, ok := d.Inner.(*ast.FuncDecl); ok {
				b.declareHoisted(scope, fn.Name, KindFunction, fn.Span())
			} else if ta, ok := d.Inner.(*ast.TypeAliasDecl); ok {
				b.declareHoisted(scope, ta.Name, KindTypeAlias, ta.Span())
			}
		case *ast.VarDecl:
			pendingVars[d.Name] = d.Span()
		}
	}

	for _, item := range items {
		b.bindItem(item, scope, pendingVars)
	}
}

func (b *binder) declareHoisted(scope *Scope, name string, kind Kind, span source.Span) {
	if existing, ok := scope.LookupLocal(name); ok {
		b.errorf(report.WarnDuplicateDecl, span, "%q is already declared at this scope (previous declaration at %s)", name, existing.DeclSpan)
		return
	}
	b.checkShadowsPrelude(scope, name, span)
	scope.Declare(&Symbol{Name: name, Kind: kind, DeclSpan: span})
}

func (b *binder) checkShadowsPrelude(scope *Scope, name string, span source.Span) {
	if scope.Kind == ScopeGlobal {
		return // the prelude declarations themselves live here
	}
	for _, p := range PreludeNames {
		if p == name {
			b.errorf(report.ErrShadowPrelude, span, "%q shadows a prelude name", name)
			return
		}
	}
}

func (b *binder) bindItem(item ast.Item, scope *Scope, pendingVars map[string]source.Span) {
	switch v := item.(type) {
	case *ast.VarDecl:
		b.bindExpr(v.Value, scope, pendingVars)
		delete(pendingVars, v.Name)
		if existing, ok := scope.LookupLocal(v.Name); ok {
			b.errorf(report.WarnDuplicateDecl, v.Span(), "%q is already declared at this scope (previous declaration at %s)", v.Name, existing.DeclSpan)
			return
		}
		b.checkShadowsPrelude(scope, v.Name, v.Span())
		scope.Declare(&Symbol{Name: v.Name, Kind: KindVariable, Mutable: v.Kind == ast.KindVar, DeclSpan: v.Span()})

	case *ast.FuncDecl:
		fnScope := newScope(ScopeFunction, scope)
		b.scopes[v] = fnScope
		for _, param := range v.Params {
			b.checkShadowsPrelude(fnScope, param.Name, param.Span)
			fnScope.Declare(&Symbol{Name: param.Name, Kind: KindParameter, Mutable: true, DeclSpan: param.Span})
		}
		b.bindItems(v.Body.Items, fnScope, false)

	case *ast.TypeAliasDecl:
		// Nothing further to resolve: the type expression itself is
		// resolved by the checker against the type-alias namespace.

	case *ast.ImportDecl:
		for _, name := range v.Names {
			b.checkShadowsPrelude(scope, name, v.Span())
			scope.Declare(&Symbol{Name: name, Kind: KindVariable, DeclSpan: v.Span()})
		}

	case *ast.ExportDecl:
		if v.Inner != nil {
			b.bindItem(v.Inner, scope, pendingVars)
		}

	case *ast.Block:
		inner := newScope(ScopeBlock, scope)
		b.scopes[v] = inner
		b.bindItems(v.Items, inner, false)

	case *ast.ExprStmt:
		b.bindExpr(v.X, scope, pendingVars)

	case *ast.IfStmt:
		b.bindExpr(v.Cond, scope, pendingVars)
		b.bindItem(v.Then, scope, pendingVars)
		if v.Else != nil {
			b.bindItem(v.Else, scope, pendingVars)
		}

	case *ast.WhileStmt:
		b.bindExpr(v.Cond, scope, pendingVars)
		b.bindItem(v.Body, scope, pendingVars)

	case *ast.ForInStmt:
		b.bindExpr(v.Iterable, scope, pendingVars)
		loopScope := newScope(ScopeBlock, scope)
		b.scopes[v] = loopScope
		loopScope.Declare(&Symbol{Name: v.Name, Kind: KindVariable, Mutable: true, DeclSpan: v.Span()})
		b.bindItems(v.Body.Items, loopScope, false)

	case *ast.ReturnStmt:
		if v.Value != nil {
			b.bindExpr(v.Value, scope, pendingVars)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// no identifiers to resolve

	case *ast.AssignStmt:
		b.bindExpr(v.Target, scope, pendingVars)
		b.bindExpr(v.Value, scope, pendingVars)

	case *ast.IncDecStmt:
		b.bindExpr(v.Target, scope, pendingVars)

	case *ast.MatchStmt:
		b.bindExpr(v.Scrutinee, scope, pendingVars)
		for _, arm := range v.Arms {
			b.bindMatchArm(arm, scope, pendingVars)
		}
	}
}

func (b *binder) bindMatchArm(arm ast.MatchArm, scope *Scope, pendingVars map[string]source.Span) {
	armScope := newScope(ScopeBlock, scope)
	// arm.Pattern is the only Node belonging to the arm itself, so it
	// doubles as the key for this scope (spec.md §4.7's Scopes side-table is
	// keyed by ast.Node, and MatchArm is a plain struct, not a Node).
	b.scopes[arm.Pattern] = armScope
	if tp, ok := arm.Pattern.(*ast.TypePattern); ok {
		armScope.Declare(&Symbol{Name: tp.Name, Kind: KindVariable, DeclSpan: tp.Span()})
	}
	if arm.Guard != nil {
		b.bindExpr(arm.Guard, armScope, pendingVars)
	}
	b.bindExpr(arm.Body, armScope, pendingVars)
}

// bindExpr resolves every Ident reachable from e. pendingVars holds names
// declared later in the same block-in-progress; a reference to one of them
// is a forward reference (AT3009) rather than an unknown symbol (AT3008).
func (b *binder) bindExpr(e ast.Expr, scope *Scope, pendingVars map[string]source.Span) {
	switch v := e.(type) {
	case *ast.Ident:
		b.resolveIdent(v, scope, pendingVars)
	case *ast.UnaryExpr:
		b.bindExpr(v.Operand, scope, pendingVars)
	case *ast.BinaryExpr:
		b.bindExpr(v.Left, scope, pendingVars)
		b.bindExpr(v.Right, scope, pendingVars)
	case *ast.CallExpr:
		b.bindExpr(v.Callee, scope, pendingVars)
		for _, a := range v.Args {
			b.bindExpr(a, scope, pendingVars)
		}
	case *ast.IndexExpr:
		b.bindExpr(v.Target, scope, pendingVars)
		b.bindExpr(v.Index, scope, pendingVars)
	case *ast.MemberExpr:
		b.bindExpr(v.Target, scope, pendingVars)
	case *ast.ArrayLit:
		for _, el := range v.Elements {
			b.bindExpr(el, scope, pendingVars)
		}
	case *ast.GroupExpr:
		b.bindExpr(v.Inner, scope, pendingVars)
	case *ast.LambdaExpr:
		fnScope := newScope(ScopeFunction, scope)
		b.scopes[v] = fnScope
		for _, param := range v.Params {
			b.checkShadowsPrelude(fnScope, param.Name, param.Span)
			fnScope.Declare(&Symbol{Name: param.Name, Kind: KindParameter, Mutable: true, DeclSpan: param.Span})
		}
		b.bindItems(v.Body.Items, fnScope, false)
	case *ast.MatchExpr:
		b.bindExpr(v.Scrutinee, scope, pendingVars)
		for _, arm := range v.Arms {
			b.bindMatchArm(arm, scope, pendingVars)
		}
	}
}

func (b *binder) resolveIdent(id *ast.Ident, scope *Scope, pendingVars map[string]source.Span) {
	if sym, ok := scope.Lookup(id.Name); ok {
		b.resols[id] = sym
		return
	}
	if declSpan, pending := pendingVars[id.Name]; pending {
		b.errorf(report.ErrForwardReference, id.Span(), "%q is used before its declaration at %s", id.Name, declSpan)
		return
	}
	b.errorf(report.ErrUnknownSymbol, id.Span(), "undeclared name %q", id.Name)
}
