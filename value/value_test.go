package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/value"
)

func TestNaNNeverEqualsItself(t *testing.T) {
	nan := value.Number(math.NaN())
	require.False(t, value.Equal(nan, nan))
}

func TestArrayEqualityIsByReferenceIdentity(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1)})
	b := value.NewArray([]value.Value{value.Number(1)})
	require.False(t, value.Equal(a, b), "distinct arrays with equal contents must not be equal")
	require.True(t, value.Equal(a, a))
}

func TestArrayMutationVisibleThroughAlias(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1), value.Number(2)})
	var alias *value.Array = a
	alias.Set(0, value.Number(99))
	got, ok := a.Get(0)
	require.True(t, ok)
	require.Equal(t, value.Number(99), got)
}

func TestArrayOutOfBounds(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1)})
	_, ok := a.Get(-1)
	require.False(t, ok)
	_, ok = a.Get(5)
	require.False(t, ok)
}

func TestJSONDeepEqualityIgnoresObjectFieldOrder(t *testing.T) {
	a := value.JSONObject([]string{"x", "y"}, []value.JSON{value.JSONNumber(1), value.JSONNumber(2)})
	b := value.JSONObject([]string{"y", "x"}, []value.JSON{value.JSONNumber(2), value.JSONNumber(1)})
	require.True(t, value.JSONDeepEqual(a, b))
}

func TestJSONDepth(t *testing.T) {
	leaf := value.JSONNumber(1)
	nested := value.JSONArray([]value.JSON{value.JSONArray([]value.JSON{leaf})})
	require.Equal(t, 3, nested.Depth())
}

func TestStringAndBoolEqualityByValue(t *testing.T) {
	require.True(t, value.Equal(value.Str("hi"), value.Str("hi")))
	require.False(t, value.Equal(value.Str("hi"), value.Str("bye")))
	require.True(t, value.Equal(value.Bool(true), value.Bool(true)))
}

func TestKindOf(t *testing.T) {
	require.Equal(t, value.KindArray, value.KindOf(value.NewArray(nil)))
	require.Equal(t, value.KindNumber, value.KindOf(value.Number(1)))
}
