package optimizer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/binder"
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/checker"
	"github.com/atlas-lang/atlas/compiler"
	"github.com/atlas-lang/atlas/optimizer"
	"github.com/atlas-lang/atlas/parser"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/vm"
)

func compileOK(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	f := source.New("t.atl", []byte(src))
	pr := parser.Parse(f)
	require.Empty(t, pr.Diagnostics)
	bound := binder.Bind(pr.Program)
	require.Empty(t, bound.Diagnostics)
	res := checker.Check(pr.Program, &bound)
	require.Empty(t, res.Diagnostics)
	chunk, err := compiler.Compile(pr.Program)
	require.NoError(t, err)
	return chunk
}

func execute(t *testing.T, chunk *bytecode.Chunk) (string, error) {
	t.Helper()
	var out bytes.Buffer
	_, err := vm.New(&stdlib.Context{Output: &out}).Run(chunk)
	return out.String(), err
}

var programs = []string{
	`print(str(1 + 2 * 3 - 4));`,
	`print("foo" + "bar" + "baz");`,
	`print(str(-(3 + 4)));`,
	`fn f(n: number) -> number {
		if (n > 0) {
			return n * 2;
		}
		return 0 - n;
	}
	print(str(f(5)) + "," + str(f(-5)));`,
	`var i: number = 0;
	var sum: number = 0;
	while (i < 5) {
		sum = sum + i;
		i = i + 1;
	}
	print(str(sum));`,
	`let xs: number[] = [1 + 1, 2 * 2, 10 / 2];
	print(str(xs[0]) + str(xs[1]) + str(xs[2]));`,
	`fn makeAdder(n: number) -> fn(number) -> number {
		return fn(x: number) -> number { return x + n; };
	}
	print(str(makeAdder(3 + 4)(10)));`,
}

// TestOptimizerPreservesObservableBehavior is spec.md §8's "Optimizer
// correctness" property: execute(optimize(b)) = execute(b) on observable
// output, for every level.
func TestOptimizerPreservesObservableBehavior(t *testing.T) {
	for _, src := range programs {
		chunk := compileOK(t, src)
		baseline, baseErr := execute(t, chunk)

		for _, level := range []optimizer.Level{optimizer.LevelNone, optimizer.LevelFold, optimizer.LevelAll} {
			opt, _ := optimizer.Optimize(chunk, level)
			got, err := execute(t, opt)
			assert.Equal(t, baseErr == nil, err == nil, "level %d, program: %s", level, src)
			assert.Equal(t, baseline, got, "level %d, program: %s", level, src)
		}
	}
}

// TestOptimizerIdempotence is spec.md §8's "Optimizer idempotence":
// optimize(optimize(b)) = optimize(b). Compared via Disassemble since
// Chunk carries an unexported debug-span table.
func TestOptimizerIdempotence(t *testing.T) {
	for _, src := range programs {
		chunk := compileOK(t, src)
		once, _ := optimizer.Optimize(chunk, optimizer.LevelAll)
		twice, _ := optimizer.Optimize(once, optimizer.LevelAll)
		assert.Equal(t,
			bytecode.Disassemble(once, "p"),
			bytecode.Disassemble(twice, "p"),
			"program: %s", src)
	}
}

func TestLevelNoneLeavesByteCountUnchanged(t *testing.T) {
	chunk := compileOK(t, programs[0])
	out, stats := optimizer.Optimize(chunk, optimizer.LevelNone)
	assert.Equal(t, len(chunk.Code), len(out.Code))
	assert.Equal(t, 0, stats.ConstantsFolded)
	assert.Equal(t, 0, stats.DeadInstrs)
	assert.Equal(t, 0, stats.BytesSaved())
}

func TestConstantFoldingShrinksArithmeticChains(t *testing.T) {
	chunk := compileOK(t, `print(str(1 + 2 * 3 - 4));`)
	out, stats := optimizer.Optimize(chunk, optimizer.LevelFold)
	assert.Greater(t, stats.ConstantsFolded, 0)
	assert.Less(t, len(out.Code), len(chunk.Code))
}

func TestDivisionByZeroIsNeverFoldedAway(t *testing.T) {
	chunk := compileOK(t, `print(str(1 / 0));`)
	_, baseErr := execute(t, chunk)
	require.Error(t, baseErr)

	opt, _ := optimizer.Optimize(chunk, optimizer.LevelAll)
	_, err := execute(t, opt)
	require.Error(t, err, "folding a division by zero away would suppress its runtime error")
}

func TestNestedClosureBodyIsOptimizedToo(t *testing.T) {
	chunk := compileOK(t, `
		fn makeAdder(n: number) -> fn(number) -> number {
			return fn(x: number) -> number { return x + n + (1 + 1); };
		}
		print(str(makeAdder(0)(10)));
	`)
	before := bytecode.Disassemble(chunk, "p")
	opt, _ := optimizer.Optimize(chunk, optimizer.LevelFold)
	after := bytecode.Disassemble(opt, "p")
	assert.NotEqual(t, before, after, "nested FuncProto chunk should be optimized recursively too")

	got, err := execute(t, opt)
	require.NoError(t, err)
	assert.Equal(t, "12\n", got)
}
