// Package checker implements Atlas's bidirectional type checker (spec.md
// §4.8): synthesis and checking modes, constraint-based unification with an
// occurs check, Hindley-Milner rank-1 generics under the value and
// monomorphism restrictions, flow-sensitive narrowing, and match
// exhaustiveness. Grounded on the overall shape of protocompile's
// linker+options validation passes (walk a bound AST, accumulate
// diagnostics via a Handler, never abort on the first error) but the
// unification/narrowing algorithms themselves have no protocompile
// analogue — they are written directly from spec.md §4.8, §9.
package checker

import (
	"fmt"

	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/types"
)

// typeScope resolves a bare name occurring in a type expression: either a
// generic type parameter currently in scope, or a declared type alias.
type typeScope struct {
	params  map[string]types.TypeParamID
	parent  *typeScope
}

func newTypeScope(parent *typeScope) *typeScope {
	return &typeScope{params: map[string]types.TypeParamID{}, parent: parent}
}

func (s *typeScope) lookup(name string) (types.TypeParamID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.params[name]; ok {
			return id, true
		}
	}
	return 0, false
}

var primitiveTypeNames = map[string]types.Primitive{
	"number": types.Number,
	"string": types.String,
	"bool":   types.Bool,
	"null":   types.Null,
	"void":   types.Void,
	"never":  types.Never,
	"unknown": types.Unknown,
}

// resolveTypeExpr converts a syntactic ast.TypeExpr into a semantic
// types.Type, resolving bare names against ts (generic parameters) and then
// c's alias table, and reporting AT3008-class errors for unknown names.
func (c *checker) resolveTypeExpr(te ast.TypeExpr, ts *typeScope) types.Type {
	switch v := te.(type) {
	case *ast.NamedType:
		if v.Name == "JsonValue" {
			return types.JSONValue{}
		}
		if p, ok := primitiveTypeNames[v.Name]; ok {
			return p
		}
		if id, ok := ts.lookup(v.Name); ok {
			return types.TypeParamRef{ID: id, Name: v.Name}
		}
		if alias, ok := c.aliases[v.Name]; ok {
			if len(v.Args) == 0 {
				return alias
			}
			args := make([]types.Type, len(v.Args))
			for i, a := range v.Args {
				args[i] = c.resolveTypeExpr(a, ts)
			}
			return types.AliasApplication{Name: v.Name, Args: args}
		}
		c.errorf(report.ErrUnknownSymbol, v.Span(), "unknown type %q", v.Name)
		return types.Unknown
	case *ast.ArrayType:
		return types.Array{Elem: c.resolveTypeExpr(v.Elem, ts)}
	case *ast.UnionType:
		members := make([]types.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = c.resolveTypeExpr(m, ts)
		}
		return types.NewUnion(members...)
	case *ast.IntersectionType:
		members := make([]types.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = c.resolveTypeExpr(m, ts)
		}
		return types.NewIntersection(members...)
	case *ast.FunctionType:
		inner := newTypeScope(ts)
		var typeParams []types.TypeParamID
		for _, tp := range v.TypeParams {
			id := c.nextTypeParamID()
			inner.params[tp.Name] = id
			typeParams = append(typeParams, id)
		}
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = c.resolveTypeExpr(p, inner)
		}
		var ret types.Type = types.Void
		if v.Return != nil {
			ret = c.resolveTypeExpr(v.Return, inner)
		}
		return types.Function{TypeParams: typeParams, Params: params, Return: ret}
	case *ast.JSONValueType:
		return types.JSONValue{}
	case *ast.StructuralType:
		members := make([]types.Member, len(v.Members))
		for i, m := range v.Members {
			if m.Fn != nil {
				fn := c.resolveTypeExpr(m.Fn, ts).(types.Function)
				members[i] = types.Member{Name: m.Name, Fn: &fn}
			} else {
				members[i] = types.Member{Name: m.Name, Type: c.resolveTypeExpr(m.Type, ts)}
			}
		}
		return types.Structural{Members: members}
	default:
		c.errorf(report.ErrInternalInvariant, te.Span(), "unreachable type expression form %T", te)
		return types.Unknown
	}
}

func (c *checker) nextTypeParamID() types.TypeParamID {
	c.nextTypeParam++
	return c.nextTypeParam
}

func (c *checker) errorf(code report.Code, span source.Span, format string, args ...any) {
	if c.suppress {
		return
	}
	c.diags = append(c.diags, report.New(code, span, fmt.Sprintf(format, args...)))
}
