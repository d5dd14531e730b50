package binder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
)

func bind(t *testing.T, src string) binder.Result {
	t.Helper()
	f := source.New("t.atl", []byte(src))
	pr := parser.Parse(f)
	require.Empty(t, pr.Diagnostics, "parse must succeed for bind test fixtures")
	return binder.Bind(pr.Program)
}

func codes(diags []report.Diagnostic) []report.Code {
	out := make([]report.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestResolvesSimpleVariable(t *testing.T) {
	res := bind(t, `let x = 1; print(x);`)
	require.Empty(t, res.Diagnostics)
}

func TestUndeclaredNameIsUnknownSymbol(t *testing.T) {
	res := bind(t, `print(y);`)
	require.Contains(t, codes(res.Diagnostics), report.ErrUnknownSymbol)
}

func TestForwardVariableReferenceIsError(t *testing.T) {
	res := bind(t, `fn f() { print(x); let x = 1; }`)
	require.Contains(t, codes(res.Diagnostics), report.ErrForwardReference)
}

func TestMutualRecursionAmongFunctionsWorks(t *testing.T) {
	res := bind(t, `fn isEven(n: number) -> bool { return isOdd(n); } fn isOdd(n: number) -> bool { return isEven(n); }`)
	require.Empty(t, res.Diagnostics)
}

func TestShadowingPreludeIsError(t *testing.T) {
	res := bind(t, `fn f() { let print = 1; }`)
	require.Contains(t, codes(res.Diagnostics), report.ErrShadowPrelude)
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	res := bind(t, `fn f() { let a = 1; let a = 2; }`)
	require.Contains(t, codes(res.Diagnostics), report.WarnDuplicateDecl)
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	f := source.New("t.atl", []byte(`let x = 1; fn f() { let x = 2; print(x); }`))
	pr := parser.Parse(f)
	require.Empty(t, pr.Diagnostics)
	res := binder.Bind(pr.Program)
	require.Empty(t, res.Diagnostics)

	fn := pr.Program.Items[1].(*ast.FuncDecl)
	printCall := fn.Body.Items[1].(*ast.ExprStmt).X.(*ast.CallExpr)
	argIdent := printCall.Args[0].(*ast.Ident)
	sym := res.Resolutions[argIdent]
	require.NotNil(t, sym)
	require.Equal(t, binder.ScopeFunction, sym.Scope.Kind)
}
