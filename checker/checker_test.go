package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/checker"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
)

func check(t *testing.T, src string) checker.Result {
	t.Helper()
	pr := parser.Parse(source.New("t.atl", []byte(src)))
	require.Empty(t, pr.Diagnostics, "parse diagnostics: %v", pr.Diagnostics)
	bound := binder.Bind(pr.Program)
	require.Empty(t, bound.Diagnostics, "bind diagnostics: %v", bound.Diagnostics)
	return checker.Check(pr.Program, &bound)
}

func codes(diags []report.Diagnostic) []report.Code {
	out := make([]report.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestWellTypedFunctionHasNoDiagnostics(t *testing.T) {
	res := check(t, `
		fn add(a: number, b: number) -> number {
			return a + b;
		}
		let x: number = add(1, 2);
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestTypeMismatchOnReturn(t *testing.T) {
	res := check(t, `
		fn f() -> number {
			return "nope";
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrTypeMismatch)
}

func TestNotAllPathsReturn(t *testing.T) {
	res := check(t, `
		fn f(x: bool) -> number {
			if (x) {
				return 1;
			}
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrNotAllPathsReturn)
}

func TestAllPathsReturnViaElse(t *testing.T) {
	res := check(t, `
		fn f(x: bool) -> number {
			if (x) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	assert.NotContains(t, codes(res.Diagnostics), report.ErrNotAllPathsReturn)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	res := check(t, `
		fn f() {
			break;
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrBreakOutsideLoop)
}

func TestBreakInsideWhileIsFine(t *testing.T) {
	res := check(t, `
		fn f() {
			while (true) {
				break;
			}
		}
	`)
	assert.NotContains(t, codes(res.Diagnostics), report.ErrBreakOutsideLoop)
}

func TestReassigningLetBindingIsError(t *testing.T) {
	res := check(t, `
		fn f() {
			let x: number = 1;
			x = 2;
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrAssignImmutable)
}

func TestReassigningVarBindingIsFine(t *testing.T) {
	res := check(t, `
		fn f() {
			var x: number = 1;
			x = 2;
		}
	`)
	assert.NotContains(t, codes(res.Diagnostics), report.ErrAssignImmutable)
}

func TestUnionAssignmentBacktracks(t *testing.T) {
	res := check(t, `
		fn f() -> number | string {
			let x: number | string = "hi";
			return x;
		}
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestGenericIdentityCallInfers(t *testing.T) {
	res := check(t, `
		fn identity<T>(x: T) -> T {
			return x;
		}
		let n: number = identity(1);
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestGenericBoundViolationIsConstraintError(t *testing.T) {
	res := check(t, `
		fn double<T extends Numeric>(x: T) -> T {
			return x;
		}
		let s: string = double("hi");
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrConstraintViolation)
}

func TestPredicateNarrowsThenBranch(t *testing.T) {
	res := check(t, `
		fn isPositive(x: number | string) -> bool is x: number {
			return isNumber(x);
		}
		fn f(x: number | string) -> number {
			if (isPositive(x)) {
				return x;
			}
			return 0;
		}
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestMatchOverUnionRequiresEveryMember(t *testing.T) {
	res := check(t, `
		fn describe(v: number | string) -> string {
			match (v) {
				n: number => str(n),
			}
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrNotExhaustive)
}

func TestMatchOverUnionExhaustiveWithAllMembers(t *testing.T) {
	res := check(t, `
		fn describe(v: number | string) -> string {
			return match (v) {
				n: number => str(n),
				s: string => s,
			};
		}
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestMatchWithWildcardIsAlwaysExhaustive(t *testing.T) {
	res := check(t, `
		fn describe(v: number | string) -> string {
			return match (v) {
				n: number => str(n),
				_ => "other",
			};
		}
	`)
	assert.Empty(t, res.Diagnostics)
}

func TestUnusedVariableWarning(t *testing.T) {
	res := check(t, `
		fn f() {
			let x: number = 1;
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.WarnUnusedVariable)
}

func TestUnusedParameterWarning(t *testing.T) {
	res := check(t, `
		fn f(x: number) {
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.WarnUnusedParameter)
}

func TestIndexingNonArrayIsTypeMismatch(t *testing.T) {
	res := check(t, `
		fn f() {
			let x: number = 1;
			let y: number = x[0];
		}
	`)
	assert.Contains(t, codes(res.Diagnostics), report.ErrTypeMismatch)
}

func TestArrayLiteralElementsJoinIntoUnion(t *testing.T) {
	res := check(t, `
		type NumOrStr = number | string;
		fn f() -> NumOrStr[] {
			let xs: NumOrStr[] = [1, "two", 3];
			return xs;
		}
	`)
	assert.Empty(t, res.Diagnostics)
}
