package stdlib_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

func call(t *testing.T, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	b, ok := stdlib.Lookup(name)
	require.True(t, ok, "builtin %q not registered", name)
	var out bytes.Buffer
	ctx := &stdlib.Context{Output: &out}
	return b.Call(ctx, source.Dummy, args)
}

func TestPrintWritesToOutput(t *testing.T) {
	b, ok := stdlib.Lookup("print")
	require.True(t, ok)
	var out bytes.Buffer
	_, err := b.Call(&stdlib.Context{Output: &out}, source.Dummy, []value.Value{value.Str("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out.String())
}

func TestLenOnStringAndArray(t *testing.T) {
	v, err := call(t, "len", value.Str("hello"))
	require.NoError(t, err)
	assert.Equal(t, value.Number(5), v)

	v, err = call(t, "len", value.NewArray([]value.Value{value.Number(1), value.Number(2)}))
	require.NoError(t, err)
	assert.Equal(t, value.Number(2), v)

	_, err = call(t, "len", value.Number(1))
	require.Error(t, err)
}

func TestIsPredicates(t *testing.T) {
	v, err := call(t, "isString", value.Str("x"))
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = call(t, "isString", value.Number(1))
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestJSONParseRoundTrips(t *testing.T) {
	v, err := call(t, "jsonParse", value.Str(`{"a": 1, "b": [true, null, "x"]}`))
	require.NoError(t, err)
	obj, ok := v.(value.JSON)
	require.True(t, ok)
	assert.True(t, obj.IsObject())
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	s, err := call(t, "jsonStringify", obj)
	require.NoError(t, err)
	str, ok := s.(value.Str)
	require.True(t, ok)

	v2, err := call(t, "jsonParse", str)
	require.NoError(t, err)
	assert.True(t, value.JSONDeepEqual(obj, v2.(value.JSON)))
}

func TestJSONParseMalformedReportsParseError(t *testing.T) {
	_, err := call(t, "jsonParse", value.Str(`{"a": }`))
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrJSONParse, rerr.Code)
}

func TestJSONParseTooDeepReportsDepthError(t *testing.T) {
	var sb bytes.Buffer
	for i := 0; i < 130; i++ {
		sb.WriteByte('[')
	}
	sb.WriteString("1")
	for i := 0; i < 130; i++ {
		sb.WriteByte(']')
	}
	_, err := call(t, "jsonParse", value.Str(sb.String()))
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrJSONTooDeep, rerr.Code)
}

func TestJSONGetMissingKeyAndTypeMismatch(t *testing.T) {
	obj, err := call(t, "jsonParse", value.Str(`{"a": 1}`))
	require.NoError(t, err)

	_, err = call(t, "jsonGet", obj, value.Str("missing"))
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrJSONKeyNotFound, rerr.Code)

	arr, err := call(t, "jsonParse", value.Str(`[1,2,3]`))
	require.NoError(t, err)
	_, err = call(t, "jsonGet", arr, value.Str("a"))
	require.Error(t, err)
	rerr, ok = report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrJSONTypeMismatch, rerr.Code)
}

func TestJSONStringifyRejectsFunctionValue(t *testing.T) {
	_, err := call(t, "jsonStringify", value.Func{})
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrJSONSerialize, rerr.Code)
}
