package ast

// Decl is any declaration node.
type Decl interface {
	Item
	decl()
}

// VarKind distinguishes an immutable `let` binding from a mutable `var`
// binding, which matters throughout the checker: the monomorphism
// restriction (spec.md §4.8) forbids generalizing `var` bindings, and flow
// typing narrows `let` bindings precisely but widens `var` bindings to a
// fixpoint.
type VarKind int

const (
	KindLet VarKind = iota
	KindVar
)

// VarDecl is `let name[: Type] = expr;` or `var name[: Type] = expr;`.
type VarDecl struct {
	Base
	Kind  VarKind
	Name  string
	Type  TypeExpr // nil if unannotated; synthesis mode applies (spec.md §4.8)
	Value Expr
	Doc   string
}

func (*VarDecl) item() {}
func (*VarDecl) decl() {}

// FuncDecl is a top-level function declaration. Functions are hoisted
// before bodies are checked (spec.md §3), so mutual recursion works.
// A predicate function declares `-> bool is x: T`, recorded in Predicate.
type FuncDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	Params     []Param
	Return     TypeExpr
	Predicate  *PredicateClause // non-nil for `-> bool is x: T` declarations
	Body       *Block
	Doc        string
}

func (*FuncDecl) item() {}
func (*FuncDecl) decl() {}

// PredicateClause is the `is x: T` suffix of a predicate function's return
// annotation; it names which parameter is narrowed, and to what type, when
// the function returns true.
type PredicateClause struct {
	ParamName string
	Type      TypeExpr
}

// TypeAliasDecl is `type Name[<T1,...>] = TypeExpr;`.
type TypeAliasDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	Value      TypeExpr
	Doc        string
}

func (*TypeAliasDecl) item() {}
func (*TypeAliasDecl) decl() {}

// ImportDecl is `import { name, ... } from "path";`.
type ImportDecl struct {
	Base
	Names []string
	Path  string
}

func (*ImportDecl) item() {}
func (*ImportDecl) decl() {}

// ExportDecl wraps a declaration exported from the module: `export let
// x = 1;`, `export fn f() {}`, `export type T = ...;`.
type ExportDecl struct {
	Base
	Inner Decl
}

func (*ExportDecl) item() {}
func (*ExportDecl) decl() {}
