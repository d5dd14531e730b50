package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/types"
)

func TestUnionFlattensAndDeduplicates(t *testing.T) {
	u := types.NewUnion(
		types.NewUnion(types.Primitive(types.Number), types.Primitive(types.String)),
		types.Primitive(types.String),
	)
	union, ok := u.(types.Union)
	require.True(t, ok)
	require.Len(t, union.Members, 2)
}

func TestUnionOfOneCollapses(t *testing.T) {
	u := types.NewUnion(types.Primitive(types.Number), types.Primitive(types.Number))
	require.Equal(t, types.Primitive(types.Number), u)
}

func TestIntersectionOfDisjointPrimitivesIsNever(t *testing.T) {
	x := types.NewIntersection(types.Primitive(types.Number), types.Primitive(types.String))
	require.Equal(t, types.Primitive(types.Never), x)
}

func TestStructuralEqualityByShape(t *testing.T) {
	a := types.Structural{Members: []types.Member{
		{Name: "x", Type: types.Primitive(types.Number)},
		{Name: "y", Type: types.Primitive(types.String)},
	}}
	b := types.Structural{Members: []types.Member{
		{Name: "y", Type: types.Primitive(types.String)},
		{Name: "x", Type: types.Primitive(types.Number)},
	}}
	require.True(t, types.Equal(a, b))
}

func TestArrayEquality(t *testing.T) {
	require.True(t, types.Equal(types.Array{Elem: types.Primitive(types.Number)}, types.Array{Elem: types.Primitive(types.Number)}))
	require.False(t, types.Equal(types.Array{Elem: types.Primitive(types.Number)}, types.Array{Elem: types.Primitive(types.String)}))
}

func TestOccursCheck(t *testing.T) {
	id := types.TypeParamID(1)
	ref := types.TypeParamRef{ID: id, Name: "T"}
	fn := types.Function{Params: []types.Type{ref}, Return: types.Primitive(types.Void)}
	require.True(t, types.OccursIn(id, fn))
	require.False(t, types.OccursIn(types.TypeParamID(2), fn))
}

func TestApplySubstitution(t *testing.T) {
	id := types.TypeParamID(1)
	ref := types.TypeParamRef{ID: id, Name: "T"}
	sub := types.Substitution{id: types.Primitive(types.Number)}
	result := types.Apply(types.Array{Elem: ref}, sub)
	require.True(t, types.Equal(result, types.Array{Elem: types.Primitive(types.Number)}))
}

func TestBuiltinBounds(t *testing.T) {
	numeric, ok := types.LookupBuiltinBound("Numeric")
	require.True(t, ok)
	require.True(t, numeric.SatisfiedBy(types.Primitive(types.Number)))
	require.False(t, numeric.SatisfiedBy(types.Primitive(types.String)))

	iterable, ok := types.LookupBuiltinBound("Iterable")
	require.True(t, ok)
	require.True(t, iterable.SatisfiedBy(types.Array{Elem: types.Primitive(types.Number)}))
	require.False(t, iterable.SatisfiedBy(types.Primitive(types.Bool)))
}

func TestStructuralBoundRequiresMembers(t *testing.T) {
	bound := types.Bound{Name: "HasLen", Shape: &types.Structural{Members: []types.Member{
		{Name: "length", Type: types.Primitive(types.Number)},
	}}}
	ok := types.Structural{Members: []types.Member{
		{Name: "length", Type: types.Primitive(types.Number)},
		{Name: "extra", Type: types.Primitive(types.Bool)},
	}}
	require.True(t, bound.SatisfiedBy(ok))
	require.False(t, bound.SatisfiedBy(types.Structural{}))
}
