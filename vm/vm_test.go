package vm_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/checker"
	"github.com/atlas-lang/atlas/compiler"
	"github.com/atlas-lang/atlas/interp"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
	"github.com/atlas-lang/atlas/vm"
)

// spanComparer lets cmp.Diff descend into a *report.RuntimeError without
// tripping over source.File's unexported fields: two spans compare equal
// when they name the same file (by pointer — both engines in
// TestInterpreterVMParity parse the same *source.File) and cover the same
// byte range.
var spanComparer = cmp.Comparer(func(a, b source.Span) bool {
	return a.File == b.File && a.Start == b.Start && a.End == b.End
})

// valueComparer lets cmp.Diff compare two value.Value results using
// spec.md §3's own per-kind equality table (value.Equal — arrays and
// functions by reference identity, JSON by deep structural equality)
// instead of cmp's default field-by-field recursion, which has no way to
// know that an array's identity, not its contents, is what spec.md §3
// defines as equal.
var valueComparer = cmp.Comparer(value.Equal)

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

// run compiles and executes src on the VM, returning its observable
// output stream alongside any runtime error (Run's own return value is
// always value.Null{} per the documented VM/interp divergence, so only
// the output stream and the error are interesting here).
func run(t *testing.T, src string, out *bytes.Buffer) error {
	t.Helper()
	f := checkOK(t, src)
	pr := parser.Parse(f)
	chunk, err := compiler.Compile(pr.Program)
	require.NoError(t, err)
	ctx := &stdlib.Context{Output: out}
	_, err = vm.New(ctx).Run(chunk)
	return err
}

func TestArithmeticAndStringConcat(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		fn add(a: number, b: number) -> number {
			return a + b;
		}
		print("sum=" + str(add(1, 2)));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "sum=3\n", out.String())
}

func TestIfWhileAndShortCircuit(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
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
		print(seen);
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "othersmallsmall\n", out.String())
}

func TestMutualRecursionAtTopLevel(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
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
		print(str(isEven(10)));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out.String())
}

func TestClosureCapturesValueAtCreation(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		fn makeAdder(n: number) -> fn(number) -> number {
			return fn(x: number) -> number {
				return x + n;
			};
		}
		let addFive: fn(number) -> number = makeAdder(5);
		print(str(addFive(10)));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "15\n", out.String())
}

func TestMatchExpressionDispatchesOnTypeAndWildcard(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		fn describe(v: number | string) -> string {
			return match (v) {
				s: string => s,
				_ => "number",
			};
		}
		print(describe(42));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "number\n", out.String())
}

func TestArrayMutationVisibleThroughAlias(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		let xs: number[] = [1, 2, 3];
		let ys: number[] = xs;
		ys[0] = 99;
		print(str(xs[0]));
	`, &out)
	require.NoError(t, err)
	assert.Equal(t, "99\n", out.String())
}

func TestArrayIndexOutOfBoundsIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		let xs: number[] = [1, 2, 3];
		print(str(xs[-1]));
	`, &out)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrIndexOutOfBounds, rerr.Code)
}

func TestDivisionByZeroIsNonFiniteRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := run(t, `
		let x: number = 1 / 0;
		print(str(x));
	`, &out)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrDivByNonFinite, rerr.Code)
}

func TestUnboundedRecursionHitsFrameDepthLimit(t *testing.T) {
	f := checkOK(t, `
		fn loop(n: number) -> number {
			return loop(n + 1);
		}
		print(str(loop(0)));
	`)
	pr := parser.Parse(f)
	chunk, err := compiler.Compile(pr.Program)
	require.NoError(t, err)
	var out bytes.Buffer
	m := vm.New(&stdlib.Context{Output: &out})
	m.MaxFrameDepth = 50
	_, err = m.Run(chunk)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrFrameDepth, rerr.Code)
}

func TestStepLimitBoundsExecution(t *testing.T) {
	f := checkOK(t, `
		var i: number = 0;
		while (true) {
			i = i + 1;
		}
	`)
	pr := parser.Parse(f)
	chunk, err := compiler.Compile(pr.Program)
	require.NoError(t, err)
	var out bytes.Buffer
	m := vm.New(&stdlib.Context{Output: &out})
	m.MaxSteps = 100
	_, err = m.Run(chunk)
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrStepLimit, rerr.Code)
}

// TestInterpreterVMParity is the spec's §8 property test in miniature: a
// handful of representative programs are run through both engines and
// their observable output streams, returned values, and runtime-error
// codes diffed with go-cmp — the same `assert.Empty(t, cmp.Diff(a, b,
// opts...))` idiom the teacher's dualcompiler test helper uses to compare
// two compilers' output for the same input.
func TestInterpreterVMParity(t *testing.T) {
	programs := []string{
		`print(1 + 2 * 3);`,
		`print("a" + "b");`,
		`fn fact(n: number) -> number { if (n <= 1) { return 1; } return n * fact(n - 1); } print(str(fact(5)));`,
		`fn f(x: number | string) -> number { if (isString(x)) { return len(x); } return x; } print(str(f("abcd"))); print(str(f(9)));`,
		`let xs: number[] = [1, 2, 3]; xs[1] = 9; print(str(xs[1]));`,
		`let xs: number[] = [1, 2, 3]; print(str(xs[-1]));`,
	}
	for _, src := range programs {
		f := checkOK(t, src)

		var interpOut bytes.Buffer
		prInterp := parser.Parse(f)
		ival, ierr := interp.New(&stdlib.Context{Output: &interpOut}).Run(prInterp.Program)

		var vmOut bytes.Buffer
		prVM := parser.Parse(f)
		chunk, cerr := compiler.Compile(prVM.Program)
		require.NoError(t, cerr)
		vmval, verr := vm.New(&stdlib.Context{Output: &vmOut}).Run(chunk)

		assert.Equal(t, interpOut.String(), vmOut.String(), "program: %s", src)
		assert.Empty(t, cmp.Diff(ival, vmval, valueComparer), "program: %s: returned value", src)

		irerr, iok := report.AsRuntimeError(ierr)
		vrerr, vok := report.AsRuntimeError(verr)
		require.Equal(t, iok, vok, "program: %s: one engine raised a non-RuntimeError fault", src)
		if iok && vok {
			assert.Empty(t, cmp.Diff(irerr, vrerr, spanComparer), "program: %s: runtime error", src)
		} else {
			assert.Equal(t, ierr == nil, verr == nil, "program: %s", src)
		}
	}
}
