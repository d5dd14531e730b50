package bytecode

import (
	"encoding/binary"

	"github.com/atlas-lang/atlas/source"
	"github.com/tidwall/btree"
)

// Chunk is one function's (or the top-level program's) compiled form: a
// byte-encoded instruction stream, its constant pool, and a debug-span
// table recording the source span each instruction's first byte came from
// (spec.md §4.11). Builder methods live here so the compiler never pokes
// at Code/Constants directly; Chunk owns constant deduplication.
type Chunk struct {
	Code      []byte
	Constants []Constant

	// NumLocals is how many value-stack slots beyond the frame's base
	// pointer this chunk's function needs; the VM reserves this many slots
	// (initialized to Null) when it pushes a call frame for this chunk.
	NumLocals int

	// spans maps an instruction's starting byte offset to the span that
	// produced it. btree.Map (read via SpanAt) gives ordered lookup for
	// Disassemble and for runtime error reporting without a separate
	// sorted-slice binary search.
	spans btree.Map[int, source.Span]

	constIndex map[any]int // dedup table for Number/Str constants only
}

// NewChunk returns an empty, ready-to-emit Chunk.
func NewChunk() *Chunk {
	return &Chunk{constIndex: make(map[any]int)}
}

// AddConstant interns v into the pool, returning its index. Number and
// string constants are deduplicated (spec.md §4.11 "Constants are
// deduplicated into the pool"); FuncProto constants are not, since two
// function literals are never the same constant even when their bodies
// happen to compile identically (spec.md §3 "functions by reference
// identity").
func (c *Chunk) AddConstant(v Constant) int {
	switch v.(type) {
	case NumberConst, StrConst:
		if idx, ok := c.constIndex[v]; ok {
			return idx
		}
		idx := len(c.Constants)
		c.Constants = append(c.Constants, v)
		c.constIndex[v] = idx
		return idx
	default:
		c.Constants = append(c.Constants, v)
		return len(c.Constants) - 1
	}
}

// Emit appends op and its operand bytes (big-endian, width per
// OperandWidth) at the current end of Code, records span for the
// instruction's first byte, and returns that byte's offset.
func (c *Chunk) Emit(op Opcode, operand int, span source.Span) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	switch OperandWidth(op) {
	case 1:
		c.Code = append(c.Code, byte(operand))
	case 2:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(operand))
		c.Code = append(c.Code, buf[:]...)
	}
	c.spans.Set(offset, span)
	return offset
}

// PatchOperand overwrites the u16 operand of the instruction at offset
// (which must be an Opcode with a 2-byte operand, i.e. a Jump family
// instruction) with a new value. Used by if/while/break/continue's
// two-pass forward-jump patching (spec.md §4.11 "break and continue patch
// forward jumps after the loop body is compiled").
func (c *Chunk) PatchOperand(offset int, operand int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(operand))
	copy(c.Code[offset+1:offset+3], buf[:])
}

// ReadOperand decodes the operand at ip (the index of the opcode byte
// itself) per its declared width.
func (c *Chunk) ReadOperand(ip int) int {
	op := Opcode(c.Code[ip])
	switch OperandWidth(op) {
	case 1:
		return int(c.Code[ip+1])
	case 2:
		return int(binary.BigEndian.Uint16(c.Code[ip+1 : ip+3]))
	default:
		return 0
	}
}

// Len returns the number of emitted instruction bytes so far, i.e. the
// offset the next Emit call will use — useful as a back-edge jump target.
func (c *Chunk) Len() int { return len(c.Code) }

// SpanAt returns the span recorded for the instruction whose opcode byte
// starts at offset, or the dummy span if none was recorded there (should
// only happen for a synthetic offset such as one past the end of Code).
func (c *Chunk) SpanAt(offset int) source.Span {
	if sp, ok := c.spans.Get(offset); ok {
		return sp
	}
	return source.Dummy
}
