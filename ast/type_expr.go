package ast

import "github.com/atlas-lang/atlas/source"

// TypeExpr is a type annotation as written in source. It is distinct from
// the semantic types.Type the checker produces: a TypeExpr is just syntax
// ("number | string"), while a types.Type is the normalized, resolved
// meaning of that syntax.
type TypeExpr interface {
	Node
	typeExpr()
}

// NamedType is a bare name, optionally with generic arguments:
// `number`, `MyAlias`, `Array<number>`.
type NamedType struct {
	Base
	Name string
	Args []TypeExpr // generic alias application Name<T1,...>
}

func (*NamedType) typeExpr() {}

// ArrayType is `T[]`.
type ArrayType struct {
	Base
	Elem TypeExpr
}

func (*ArrayType) typeExpr() {}

// FunctionType is a function type annotation: optional type parameters,
// parameter types, and a return type.
type FunctionType struct {
	Base
	TypeParams []TypeParam
	Params     []TypeExpr
	Return     TypeExpr
}

func (*FunctionType) typeExpr() {}

// UnionType is `A | B | ...`.
type UnionType struct {
	Base
	Members []TypeExpr
}

func (*UnionType) typeExpr() {}

// IntersectionType is `A & B & ...`.
type IntersectionType struct {
	Base
	Members []TypeExpr
}

func (*IntersectionType) typeExpr() {}

// StructuralMember is one named member of a StructuralType: a field
// (Type != nil) or a method signature (Fn != nil).
type StructuralMember struct {
	Name string
	Type TypeExpr      // non-nil for a field member
	Fn   *FunctionType // non-nil for a method member
	Span source.Span
}

// StructuralType is `{ field: T, method(T): U }`.
type StructuralType struct {
	Base
	Members []StructuralMember
}

func (*StructuralType) typeExpr() {}

// JSONValueType names the opaque, deliberately non-primitive-assignable
// `JsonValue` type from spec.md §3.
type JSONValueType struct {
	Base
}

func (*JSONValueType) typeExpr() {}

// TypeParam is a generic type parameter declaration, e.g. `T extends
// Comparable`.
type TypeParam struct {
	Name   string
	Bound  TypeExpr // nil if unconstrained
	Span   source.Span
}
