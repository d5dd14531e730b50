package optimizer

import (
	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/source"
)

// endID is the sentinel jump target meaning "one past the last
// instruction" — the common shape of a forward jump patched to land right
// after a loop or if/else (compiler.Chunk.Len() at patch time).
const endID = -1

// inst is one decoded bytecode instruction, addressed by a stable id
// assigned at decode time and never reused. Passes operate on a working
// list of *inst; jump-family instructions carry a target id (resolved from
// a byte offset at decode time) rather than a raw offset, so passes can
// reorder or drop instructions without hand-patching jump math — offsets
// are only recomputed once, during encode.
type inst struct {
	id      int
	op      bytecode.Opcode
	operand int // slot/global/argc/count/pool-index/TypeTag; meaningless for jumps
	target  int // jump destination id (jump-family opcodes only), or endID
	span    source.Span

	// newConst, when non-nil, is a constant synthesized by a pass (e.g.
	// constant folding) to be interned fresh rather than copied from the
	// source chunk's pool at operand's original index.
	newConst bytecode.Constant
}

func isJump(op bytecode.Opcode) bool {
	switch op {
	case bytecode.OpJump, bytecode.OpJumpIfFalse, bytecode.OpJumpIfTrue:
		return true
	default:
		return false
	}
}

func isPoolRef(op bytecode.Opcode) bool {
	switch op {
	case bytecode.OpConst, bytecode.OpGetMember, bytecode.OpMakeClosure:
		return true
	default:
		return false
	}
}

func isTerminator(op bytecode.Opcode) bool {
	switch op {
	case bytecode.OpReturn, bytecode.OpHalt, bytecode.OpJump:
		return true
	default:
		return false
	}
}

// decode flattens chunk's byte-encoded instruction stream into an ordered
// []*inst, resolving jump-family operands from byte offsets to instruction
// ids up front.
func decode(chunk *bytecode.Chunk) []*inst {
	offsetToID := map[int]int{}
	var insts []*inst
	ip := 0
	for ip < len(chunk.Code) {
		op := bytecode.Opcode(chunk.Code[ip])
		width := bytecode.OperandWidth(op)
		operand := 0
		if width > 0 {
			operand = chunk.ReadOperand(ip)
		}
		id := len(insts)
		offsetToID[ip] = id
		insts = append(insts, &inst{id: id, op: op, operand: operand, span: chunk.SpanAt(ip)})
		ip += 1 + width
	}
	for _, in := range insts {
		if !isJump(in.op) {
			continue
		}
		if tid, ok := offsetToID[in.operand]; ok {
			in.target = tid
		} else {
			in.target = endID
		}
	}
	return insts
}

// targetedIDs returns the set of instruction ids (plus possibly endID)
// that some jump instruction in cur targets. Used by dead-code elimination
// to avoid deleting an instruction some other jump still needs to land on.
func targetedIDs(cur []*inst) map[int]bool {
	out := map[int]bool{}
	for _, in := range cur {
		if isJump(in.op) {
			out[in.target] = true
		}
	}
	return out
}

// encode re-serializes cur (in order) into a fresh Chunk, recursively
// optimizing any referenced FuncProto constants at the given level, and
// resolving jump targets (originally instruction ids) to byte offsets in
// the new stream. deletedAlias maps an id no longer present in cur to the
// id of the instruction that now occupies its logical position, so a jump
// that targeted deleted code still lands correctly; it must map every id
// from 0..origCount-1 (plus endID, mapped to itself).
func encode(cur []*inst, origConsts []bytecode.Constant, numLocals int, level Level, deletedAlias map[int]int) *bytecode.Chunk {
	out := bytecode.NewChunk()
	out.NumLocals = numLocals

	offsetOf := make(map[int]int, len(cur))
	for _, in := range cur {
		var operand int
		switch {
		case isJump(in.op):
			operand = 0 // patched below once all offsets are known
		case isPoolRef(in.op):
			operand = encodeConstRef(out, origConsts, in, level)
		default:
			operand = in.operand
		}
		offsetOf[in.id] = out.Emit(in.op, operand, in.span)
	}

	endOffset := out.Len()
	resolve := func(id int) int {
		id = deletedAlias[id]
		if id == endID {
			return endOffset
		}
		return offsetOf[id]
	}
	for _, in := range cur {
		if !isJump(in.op) {
			continue
		}
		out.PatchOperand(offsetOf[in.id], resolve(in.target))
	}
	return out
}

func encodeConstRef(out *bytecode.Chunk, origConsts []bytecode.Constant, in *inst, level Level) int {
	if in.newConst != nil {
		return out.AddConstant(in.newConst)
	}
	c := origConsts[in.operand]
	if proto, ok := c.(*bytecode.FuncProto); ok {
		optimizedChunk, _ := optimizeChunk(proto.Chunk, level)
		c = &bytecode.FuncProto{
			Name:      proto.Name,
			Arity:     proto.Arity,
			NumLocals: proto.NumLocals,
			FreeVars:  proto.FreeVars,
			Chunk:     optimizedChunk,
		}
	}
	return out.AddConstant(c)
}
