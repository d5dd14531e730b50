package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
)

func TestConstantDeduplicatesNumbersAndStrings(t *testing.T) {
	c := bytecode.NewChunk()
	i1 := c.AddConstant(bytecode.NumberConst(1))
	i2 := c.AddConstant(bytecode.NumberConst(1))
	i3 := c.AddConstant(bytecode.StrConst("x"))
	i4 := c.AddConstant(bytecode.StrConst("x"))
	assert.Equal(t, i1, i2)
	assert.Equal(t, i3, i4)
	assert.Len(t, c.Constants, 2)
}

func TestFuncProtoConstantsAreNeverDeduplicated(t *testing.T) {
	c := bytecode.NewChunk()
	fp1 := &bytecode.FuncProto{Name: "f", Chunk: bytecode.NewChunk()}
	fp2 := &bytecode.FuncProto{Name: "f", Chunk: bytecode.NewChunk()}
	i1 := c.AddConstant(fp1)
	i2 := c.AddConstant(fp2)
	assert.NotEqual(t, i1, i2)
}

func TestEmitAndReadOperand(t *testing.T) {
	c := bytecode.NewChunk()
	idx := c.AddConstant(bytecode.NumberConst(42))
	off := c.Emit(bytecode.OpConst, idx, source.Dummy)
	assert.Equal(t, 0, off)
	assert.Equal(t, idx, c.ReadOperand(off))
	assert.Len(t, c.Code, 3) // 1 opcode byte + 2 operand bytes
}

func TestPatchOperandRewritesJumpTarget(t *testing.T) {
	c := bytecode.NewChunk()
	jmp := c.Emit(bytecode.OpJump, 0, source.Dummy)
	target := c.Emit(bytecode.OpHalt, 0, source.Dummy)
	c.PatchOperand(jmp, target)
	assert.Equal(t, target, c.ReadOperand(jmp))
}

func TestDisassembleRendersNestedFunctionProtos(t *testing.T) {
	inner := bytecode.NewChunk()
	inner.Emit(bytecode.OpTrue, 0, source.Dummy)
	inner.Emit(bytecode.OpReturn, 0, source.Dummy)

	c := bytecode.NewChunk()
	fpIdx := c.AddConstant(&bytecode.FuncProto{Name: "g", Arity: 0, Chunk: inner})
	c.Emit(bytecode.OpMakeClosure, fpIdx, source.Dummy)
	c.Emit(bytecode.OpHalt, 0, source.Dummy)

	out := bytecode.Disassemble(c, "main")
	assert.Contains(t, out, "MakeClosure")
	assert.Contains(t, out, "fn g")
	assert.Contains(t, out, "True")
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	f := source.New("t.atl", []byte("1 + 2"))
	span := source.Make(f, 0, 5)

	inner := bytecode.NewChunk()
	inner.Emit(bytecode.OpGetLocal, 0, span)
	inner.Emit(bytecode.OpReturn, 0, span)

	c := bytecode.NewChunk()
	numIdx := c.AddConstant(bytecode.NumberConst(3.5))
	strIdx := c.AddConstant(bytecode.StrConst("hello"))
	fnIdx := c.AddConstant(&bytecode.FuncProto{Name: "f", Arity: 1, NumLocals: 1, FreeVars: []string{"n"}, Chunk: inner})
	c.Emit(bytecode.OpConst, numIdx, span)
	c.Emit(bytecode.OpConst, strIdx, span)
	c.Emit(bytecode.OpMakeClosure, fnIdx, span)
	c.Emit(bytecode.OpHalt, 0, span)

	data := bytecode.Marshal(c)
	got, err := bytecode.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, c.Code, got.Code)
	require.Len(t, got.Constants, 3)
	assert.Equal(t, bytecode.NumberConst(3.5), got.Constants[0])
	assert.Equal(t, bytecode.StrConst("hello"), got.Constants[1])
	gotFn, ok := got.Constants[2].(*bytecode.FuncProto)
	require.True(t, ok)
	assert.Equal(t, "f", gotFn.Name)
	assert.Equal(t, []string{"n"}, gotFn.FreeVars)

	gotSpan := got.SpanAt(0)
	assert.Equal(t, "t.atl", gotSpan.File.Name())
	assert.Equal(t, span.Start, gotSpan.Start)
	assert.Equal(t, span.Line, gotSpan.Line)
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	_, err := bytecode.Unmarshal([]byte("not-an-artifact"))
	assert.Error(t, err)
}
