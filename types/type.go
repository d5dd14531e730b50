// Package types is Atlas's semantic type model (spec.md §3 "Type" and §4.8):
// the normalized, checker-facing representation of a type, as distinct from
// the syntactic ast.TypeExpr it is resolved from. Represented the same way
// ast represents syntax — tagged variants over a closed interface — rather
// than a class hierarchy, per spec.md §9 "Polymorphic AST nodes".
package types

import (
	"sort"
	"strings"
)

// Type is implemented by every semantic type. Equal and Normalize operate
// structurally; no Type value is ever mutated in place (spec.md §9
// "Bidirectional checker": never mutate types in place, always produce new
// types via substitution).
type Type interface {
	typ()
	String() string
}

// Primitive enumerates the built-in scalar kinds from spec.md §3, plus the
// two bottom/top markers `never` and `unknown` the checker needs for error
// recovery and narrowing.
type Primitive int

const (
	Number Primitive = iota
	String
	Bool
	Null
	Void
	Never
	Unknown
)

var primitiveNames = map[Primitive]string{
	Number: "number", String: "string", Bool: "bool", Null: "null",
	Void: "void", Never: "never", Unknown: "unknown",
}

func (p Primitive) typ() {}

func (p Primitive) String() string { return primitiveNames[p] }

// JSONValue is the opaque `JsonValue` type from spec.md §3, deliberately not
// assignable to or from any primitive.
type JSONValue struct{}

func (JSONValue) typ()           {}
func (JSONValue) String() string { return "JsonValue" }

// Array is `T[]`.
type Array struct{ Elem Type }

func (Array) typ()            {}
func (a Array) String() string { return a.Elem.String() + "[]" }

// TypeParamID uniquely identifies a generic type parameter's binder across
// the lifetime of a check; two TypeParamRef values with the same ID refer to
// the same parameter even across different syntactic occurrences.
type TypeParamID int

// TypeParamRef is an occurrence of a bound generic type parameter.
type TypeParamRef struct {
	ID   TypeParamID
	Name string // for diagnostics only; not part of identity
}

func (TypeParamRef) typ()            {}
func (t TypeParamRef) String() string { return t.Name }

// Function is a function type: optional type parameters, parameter types,
// and a return type. TypeParams is non-empty only for a generic function's
// own type, never for an instantiated call site (see Instantiate).
type Function struct {
	TypeParams []TypeParamID
	Params     []Type
	Return     Type
}

func (Function) typ() {}

func (f Function) String() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	if f.Return != nil {
		b.WriteString(f.Return.String())
	} else {
		b.WriteString("void")
	}
	return b.String()
}

// AliasApplication is a generic alias application `Name<T1,...>` prior to
// expansion; the checker expands it against the alias's TypeAliasDecl
// definition during normalization.
type AliasApplication struct {
	Name string
	Args []Type
}

func (AliasApplication) typ() {}

func (a AliasApplication) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return a.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Union is `A | B | ...`; always normalized (flattened, deduplicated, sorted
// by String()) by the New/Normalize constructors below, never built
// directly with duplicate or nested members.
type Union struct{ Members []Type }

func (Union) typ() {}

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// Intersection is `A & B & ...`; same normalization contract as Union.
type Intersection struct{ Members []Type }

func (Intersection) typ() {}

func (x Intersection) String() string {
	parts := make([]string, len(x.Members))
	for i, m := range x.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " & ")
}

// Member is one named member of a Structural type: a field (Type set) or a
// method (Fn set).
type Member struct {
	Name string
	Type Type
	Fn   *Function
}

func (m Member) sigString() string {
	if m.Fn != nil {
		return m.Name + ": " + m.Fn.String()
	}
	return m.Name + ": " + m.Type.String()
}

// Structural is `{ field: T, method(T): U }`, matched by shape: a value of
// type S is assignable to Structural requirement R if S has every member R
// names, with a compatible type (spec.md §4.8 "Structural types unify by
// shared-member compatibility").
type Structural struct{ Members []Member }

func (Structural) typ() {}

func (s Structural) String() string {
	sorted := append([]Member(nil), s.Members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = m.sigString()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// MemberByName finds a named member, or returns (Member{}, false).
func (s Structural) MemberByName(name string) (Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
