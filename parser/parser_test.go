package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/source"
)

func parse(t *testing.T, src string) parser.Result {
	t.Helper()
	f := source.New("t.atl", []byte(src))
	return parser.Parse(f)
}

func TestParseVarDecl(t *testing.T) {
	res := parse(t, `let x: number = 1 + 2;`)
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Program.Items, 1)
	decl, ok := res.Program.Items[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, ast.KindLet, decl.Kind)
	require.Equal(t, "x", decl.Name)
	require.NotNil(t, decl.Type)
	_, ok = decl.Value.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseFuncDeclWithPredicate(t *testing.T) {
	res := parse(t, `fn isString(x: JsonValue) -> bool is x: string { return true; }`)
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Program.Items, 1)
	fn, ok := res.Program.Items[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "isString", fn.Name)
	require.NotNil(t, fn.Predicate)
	require.Equal(t, "x", fn.Predicate.ParamName)
}

func TestParseIfElseIf(t *testing.T) {
	res := parse(t, `fn f() { if (a) { b(); } else if (c) { d(); } else { e(); } }`)
	require.Empty(t, res.Diagnostics)
	fn := res.Program.Items[0].(*ast.FuncDecl)
	ifStmt := fn.Body.Items[0].(*ast.IfStmt)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestParseAssignmentRequiresLValue(t *testing.T) {
	res := parse(t, `fn f() { 1 + 2 = 3; }`)
	require.NotEmpty(t, res.Diagnostics)
}

func TestParseCompoundAssignToMember(t *testing.T) {
	res := parse(t, `fn f() { obj.count += 1; }`)
	require.Empty(t, res.Diagnostics)
	fn := res.Program.Items[0].(*ast.FuncDecl)
	assign := fn.Body.Items[0].(*ast.AssignStmt)
	require.Equal(t, ast.AssignAdd, assign.Op)
	_, ok := assign.Target.(*ast.MemberExpr)
	require.True(t, ok)
}

func TestParseForInAndMatchExpr(t *testing.T) {
	res := parse(t, `fn f() {
		for (item in items) {
			let tag = match item {
				n: number => "num",
				_ => "other",
			};
		}
	}`)
	require.Empty(t, res.Diagnostics)
	fn := res.Program.Items[0].(*ast.FuncDecl)
	forStmt := fn.Body.Items[0].(*ast.ForInStmt)
	require.Equal(t, "item", forStmt.Name)
	let := forStmt.Body.Items[0].(*ast.VarDecl)
	matchExpr := let.Value.(*ast.MatchExpr)
	require.Len(t, matchExpr.Arms, 2)
}

func TestParseTypeAliasUnionAndArray(t *testing.T) {
	res := parse(t, `type Result<T> = T | string[];`)
	require.Empty(t, res.Diagnostics)
	alias := res.Program.Items[0].(*ast.TypeAliasDecl)
	require.Equal(t, "Result", alias.Name)
	require.Len(t, alias.TypeParams, 1)
	union, ok := alias.Value.(*ast.UnionType)
	require.True(t, ok)
	require.Len(t, union.Members, 2)
	_, ok = union.Members[1].(*ast.ArrayType)
	require.True(t, ok)
}

func TestParseImportAndExport(t *testing.T) {
	res := parse(t, `import { a, b } from "./util";
export let shared = 1;`)
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Program.Items, 2)
	imp := res.Program.Items[0].(*ast.ImportDecl)
	require.Equal(t, []string{"a", "b"}, imp.Names)
	require.Equal(t, "./util", imp.Path)
	exp := res.Program.Items[1].(*ast.ExportDecl)
	_, ok := exp.Inner.(*ast.VarDecl)
	require.True(t, ok)
}

func TestParseMissingSemicolonRecoversToNextStatement(t *testing.T) {
	res := parse(t, `fn f() { let a = 1 let b = 2; }`)
	require.NotEmpty(t, res.Diagnostics)
	fn := res.Program.Items[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Items, 2)
}

func TestParseDocCommentAttachedToFuncDecl(t *testing.T) {
	res := parse(t, "/// Adds two numbers.\nfn add(a: number, b: number) -> number { return a + b; }")
	fn := res.Program.Items[0].(*ast.FuncDecl)
	require.Equal(t, "Adds two numbers.", fn.Doc)
}

func TestParserNeverInfiniteLoopsOnGarbageInput(t *testing.T) {
	res := parse(t, `)))}}}{{{[[[`)
	require.NotNil(t, res.Program)
	require.NotEmpty(t, res.Diagnostics)
}
