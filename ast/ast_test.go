package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/source"
)

var testFile = source.New("fixture.atl", []byte("0123456789012345678901234567890123456789"))

// sp builds a non-dummy span for test fixtures; the exact offsets don't
// matter, only that every node below carries one.
func sp(start, end int) source.Span {
	return source.Make(testFile, start, end)
}

func TestBaseSpanRoundTrips(t *testing.T) {
	b := ast.NewBase(sp(3, 9))
	require.Equal(t, sp(3, 9), b.Span())
}

// TestEveryItemFormSatisfiesItem is the span-coverage invariant (spec.md §8)
// applied at the type level: every declaration and statement form must
// embed Base and therefore report a real Span, not a zero value.
func TestEveryItemFormSatisfiesItem(t *testing.T) {
	items := []ast.Item{
		&ast.VarDecl{Base: ast.NewBase(sp(0, 10))},
		&ast.FuncDecl{Base: ast.NewBase(sp(0, 20))},
		&ast.TypeAliasDecl{Base: ast.NewBase(sp(0, 5))},
		&ast.ImportDecl{Base: ast.NewBase(sp(0, 12))},
		&ast.ExportDecl{Base: ast.NewBase(sp(0, 15))},
		&ast.Block{Base: ast.NewBase(sp(0, 2))},
		&ast.ExprStmt{Base: ast.NewBase(sp(1, 4))},
		&ast.IfStmt{Base: ast.NewBase(sp(0, 30))},
		&ast.WhileStmt{Base: ast.NewBase(sp(0, 30))},
		&ast.ForInStmt{Base: ast.NewBase(sp(0, 30))},
		&ast.ReturnStmt{Base: ast.NewBase(sp(0, 8))},
		&ast.BreakStmt{Base: ast.NewBase(sp(0, 6))},
		&ast.ContinueStmt{Base: ast.NewBase(sp(0, 9))},
		&ast.AssignStmt{Base: ast.NewBase(sp(0, 7))},
		&ast.IncDecStmt{Base: ast.NewBase(sp(0, 3))},
		&ast.MatchStmt{Base: ast.NewBase(sp(0, 40))},
	}
	for _, it := range items {
		require.NotEqual(t, source.Span{}, it.Span(), "%T must carry a non-zero span", it)
	}
}

func TestEveryExprFormSatisfiesExpr(t *testing.T) {
	exprs := []ast.Expr{
		&ast.NumberLit{Base: ast.NewBase(sp(0, 1))},
		&ast.StringLit{Base: ast.NewBase(sp(0, 3))},
		&ast.BoolLit{Base: ast.NewBase(sp(0, 4))},
		&ast.NullLit{Base: ast.NewBase(sp(0, 4))},
		&ast.Ident{Base: ast.NewBase(sp(0, 1))},
		&ast.UnaryExpr{Base: ast.NewBase(sp(0, 2))},
		&ast.BinaryExpr{Base: ast.NewBase(sp(0, 5))},
		&ast.CallExpr{Base: ast.NewBase(sp(0, 10))},
		&ast.IndexExpr{Base: ast.NewBase(sp(0, 6))},
		&ast.MemberExpr{Base: ast.NewBase(sp(0, 6))},
		&ast.ArrayLit{Base: ast.NewBase(sp(0, 8))},
		&ast.GroupExpr{Base: ast.NewBase(sp(0, 4))},
		&ast.LambdaExpr{Base: ast.NewBase(sp(0, 12))},
		&ast.MatchExpr{Base: ast.NewBase(sp(0, 20))},
	}
	for _, e := range exprs {
		require.NotEqual(t, source.Span{}, e.Span(), "%T must carry a non-zero span", e)
	}
}

func TestPatternFormsSatisfyPattern(t *testing.T) {
	patterns := []ast.Pattern{
		&ast.WildcardPattern{Base: ast.NewBase(sp(0, 1))},
		&ast.LiteralPattern{Base: ast.NewBase(sp(0, 1))},
		&ast.TypePattern{Base: ast.NewBase(sp(0, 5))},
	}
	for _, p := range patterns {
		require.NotEqual(t, source.Span{}, p.Span(), "%T must carry a non-zero span", p)
	}
}

func TestExportDeclWrapsADecl(t *testing.T) {
	inner := &ast.VarDecl{Base: ast.NewBase(sp(7, 17)), Kind: ast.KindLet, Name: "x"}
	export := &ast.ExportDecl{Base: ast.NewBase(sp(0, 17)), Inner: inner}
	require.Same(t, inner, export.Inner)
	require.Equal(t, ast.KindLet, export.Inner.(*ast.VarDecl).Kind)
}

func TestIfStmtElseHoldsEitherBlockOrNestedIf(t *testing.T) {
	block := &ast.Block{Base: ast.NewBase(sp(20, 22))}
	withBlockElse := &ast.IfStmt{Base: ast.NewBase(sp(0, 22)), Else: block}
	require.IsType(t, &ast.Block{}, withBlockElse.Else)

	nested := &ast.IfStmt{Base: ast.NewBase(sp(20, 40))}
	withElseIf := &ast.IfStmt{Base: ast.NewBase(sp(0, 40)), Else: nested}
	require.IsType(t, &ast.IfStmt{}, withElseIf.Else)
}
