package atlas_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas"
)

func TestCheckReportsDiagnosticsWithoutExecuting(t *testing.T) {
	diags := atlas.Check(`let x: number = "not a number";`)
	require.NotEmpty(t, diags)
}

func TestCheckAcceptsWellTypedProgram(t *testing.T) {
	diags := atlas.Check(`fn add(a: number, b: number) -> number { return a + b; }`)
	assert.Empty(t, diags)
}

func TestEvalRunsOnInterpreterByDefault(t *testing.T) {
	var out bytes.Buffer
	_, diags, err := atlas.Eval(`print(str(1 + 2));`, atlas.Options{Output: &out})
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())
}

func TestEvalRunsOnVMWhenSelected(t *testing.T) {
	var out bytes.Buffer
	_, diags, err := atlas.Eval(`print(str(1 + 2));`, atlas.Options{Engine: atlas.VM, Output: &out})
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())
}

func TestEvalSkipsExecutionWhenCheckFails(t *testing.T) {
	v, diags, err := atlas.Eval(`let x: number = "nope";`, atlas.Options{})
	assert.NotEmpty(t, diags)
	assert.Nil(t, v)
	assert.NoError(t, err)
}

func TestEvalDeniesEffectfulOperationsByDefault(t *testing.T) {
	_, diags, err := atlas.Eval(`readFile("/etc/passwd");`, atlas.Options{})
	require.Empty(t, diags)
	require.Error(t, err)
}

func TestRuntimeSessionPersistsDeclarationsAcrossExec(t *testing.T) {
	rt := atlas.NewRuntime(atlas.Options{})
	_, diags, err := rt.Exec(`let x: number = 10;`)
	require.Empty(t, diags)
	require.NoError(t, err)

	var out bytes.Buffer
	rt2 := atlas.NewRuntime(atlas.Options{Output: &out})
	_, diags, err = rt2.Exec(`let x: number = 10;`)
	require.Empty(t, diags)
	require.NoError(t, err)
	_, diags, err = rt2.Exec(`print(str(x + 1));`)
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, "11\n", out.String())
}

func TestRuntimeRollsBackSessionStateOnCheckFailure(t *testing.T) {
	rt := atlas.NewRuntime(atlas.Options{})
	_, diags, err := rt.Exec(`let y: number = 1;`)
	require.Empty(t, diags)
	require.NoError(t, err)

	_, badDiags, _ := rt.Exec(`let y: string = 2;`) // redeclaration + type mismatch
	require.NotEmpty(t, badDiags)

	var out bytes.Buffer
	rt.Options.Output = &out
	_, diags, err = rt.Exec(`print(str(y));`)
	require.Empty(t, diags)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
}

func TestInterpreterAndVMAgreeThroughEval(t *testing.T) {
	src := `fn fib(n: number) -> number {
		if (n < 2) {
			return n;
		}
		return fib(n - 1) + fib(n - 2);
	}
	print(str(fib(10)));`

	var interpOut, vmOut bytes.Buffer
	_, d1, e1 := atlas.Eval(src, atlas.Options{Output: &interpOut})
	_, d2, e2 := atlas.Eval(src, atlas.Options{Engine: atlas.VM, Output: &vmOut})
	require.Empty(t, d1)
	require.Empty(t, d2)
	require.NoError(t, e1)
	require.NoError(t, e2)
	assert.Equal(t, interpOut.String(), vmOut.String())
}

func TestPoolBoundsConcurrentEvals(t *testing.T) {
	pool := atlas.NewPool(2)
	var wg sync.WaitGroup
	outs := make([]bytes.Buffer, 8)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, diags, err := pool.Eval(context.Background(), `print(str(1 + 2));`, atlas.Options{Output: &outs[i]})
			assert.Empty(t, diags)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	for i := range outs {
		assert.Equal(t, "3\n", outs[i].String())
	}
}

func TestPoolEvalRespectsCanceledContext(t *testing.T) {
	pool := atlas.NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := pool.Eval(ctx, `print(1);`, atlas.Options{})
	require.Error(t, err)
}

func TestRuntimeExecPanicsWhenSharedAcrossGoroutines(t *testing.T) {
	rt := atlas.NewRuntime(atlas.Options{})
	_, _, err := rt.Exec(`let x: number = 1;`)
	require.NoError(t, err)

	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		_, _, _ = rt.Exec(`let y: number = 2;`)
	}()
	r := <-done
	require.NotNil(t, r, "Exec from a second goroutine must panic")
}
