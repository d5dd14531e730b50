package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/checker"
	"github.com/atlas-lang/atlas/interp"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

// checkOK parses, binds, and type-checks src, failing the test if any stage
// reports a diagnostic, mirroring checker_test.go's own check helper so the
// programs exercised here are known to be statically well-formed before the
// interpreter ever sees them.
func checkOK(t *testing.T, src string) *source.File {
	t.Helper()
	f := source.New("t.atl", []byte(src))
	pr := parser.Parse(f)
	require.Empty(t, pr.Diagnostics, "parse diagnostics: %v", pr.Diagnostics)
	bound := binder.Bind(pr.Program)
	require.Empty(t, bound.Diagnostics, "bind diagnostics: %v", bound.Diagnostics)
	res := checker.Check(pr.Program, &bound)
	require.Empty(t, res.Diagnostics, "check diagnostics: %v", res.Diagnostics)
	return f
}

func run(t *testing.T, src string, out *bytes.Buffer) (value.Value, error) {
	t.Helper()
	f := checkOK(t, src)
	pr := parser.Parse(f)
	ctx := &stdlib.Context{Output: out}
	return interp.New(ctx).Run(pr.Program)
}

func TestArithmeticAndStringConcat(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		fn add(a: number, b: number) -> number {
			return a + b;
		}
		print("sum=" + str(add(1, 2)));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)
	assert.Equal(t, "sum=3\n", out.String())
}

func TestIfWhileAndShortCircuit(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		fn classify(n: number) -> string {
			if (n > 0 && n < 10) {
				return "small";
			} else {
				return "other";
			}
		}
		var i: number = 0;
		var seen: string = "";
		while (i < 3) {
			seen = seen + classify(i);
			i = i + 1;
		}
		seen;
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Str("othersmallsmall"), v)
}

func TestMutualRecursionAtTopLevel(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		fn isEven(n: number) -> bool {
			if (n == 0) {
				return true;
			}
			return isOdd(n - 1);
		}
		fn isOdd(n: number) -> bool {
			if (n == 0) {
				return false;
			}
			return isEven(n - 1);
		}
		isEven(10);
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestClosureCapturesValueAtCreation(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		fn makeAdder(n: number) -> fn(number) -> number {
			return fn(x: number) -> number {
				return x + n;
			};
		}
		let addFive: fn(number) -> number = makeAdder(5);
		addFive(10);
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Number(15), v)
}

func TestMatchExpressionDispatchesOnTypeAndWildcard(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		fn describe(v: number | string) -> string {
			return match (v) {
				s: string => s,
				_ => "number",
			};
		}
		describe(42);
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Str("number"), v)
}

func TestArrayIndexOutOfBoundsIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := run(t, `
		let xs: number[] = [1, 2, 3];
		xs[-1];
	`, &out)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrIndexOutOfBounds, rerr.Code)
}

func TestDivisionByZeroIsNonFiniteRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := run(t, `
		let x: number = 1 / 0;
		print(str(x));
	`, &out)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrDivByNonFinite, rerr.Code)
}

func TestLenBuiltinCountsArrayElements(t *testing.T) {
	var out bytes.Buffer
	v, err := run(t, `
		let xs: number[] = [1, 2, 3, 4];
		len(xs);
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, value.Number(4), v)
}

func TestUnboundedRecursionHitsFrameDepthLimit(t *testing.T) {
	var out bytes.Buffer
	f := checkOK(t, `
		fn loop(n: number) -> number {
			return loop(n + 1);
		}
		loop(0);
	`)
	pr := parser.Parse(f)
	it := interp.New(&stdlib.Context{Output: &out})
	it.MaxFrameDepth = 50
	_, err := it.Run(pr.Program)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrFrameDepth, rerr.Code)
}

func TestStepLimitBoundsExecution(t *testing.T) {
	var out bytes.Buffer
	f := checkOK(t, `
		var i: number = 0;
		while (true) {
			i = i + 1;
		}
	`)
	pr := parser.Parse(f)
	it := interp.New(&stdlib.Context{Output: &out})
	it.MaxSteps = 100
	_, err := it.Run(pr.Program)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrStepLimit, rerr.Code)
}
