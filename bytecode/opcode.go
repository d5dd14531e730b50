// Package bytecode is Atlas's C11 instruction and artifact format: a linear
// instruction stream over a deduplicated constant pool, with a debug-span
// table mapping each instruction back to the AST node that produced it
// (spec.md §4.11 "A program is (instructions, constant pool, debug
// spans)"). Grounded on protocompile's own low-level wire encodings
// (fixed-width tagged records over a byte buffer) and on the idea behind its
// internal/interval.Map for the debug-span table; the table itself is a
// tidwall/btree map from instruction offsets to source spans (see Chunk).
package bytecode

import "fmt"

// Opcode is a single-byte instruction tag. The representative instruction
// set from spec.md §4.11 is not exhaustive; GetMember, MakeClosure, and
// TypeTest are additions this compiler needs that the spec's list omits
// (struct/JSON member access, lambda closure construction, and match's
// TypePattern runtime test), kept in the same one-byte-opcode,
// fixed-width-operand shape as everything else.
type Opcode byte

const (
	OpConst Opcode = iota
	OpTrue
	OpFalse
	OpNull
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNegate
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot
	OpAnd
	OpOr
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpCall
	OpReturn
	OpNewArray
	OpGetIndex
	OpSetIndex
	OpGetMember
	OpPop
	OpDup
	OpHalt
	OpMakeClosure
	OpTypeTest
)

// operandWidth is the number of operand bytes each opcode carries, 0 when
// an opcode is self-contained. OpCall's argc fits in a single byte (a
// program with more than 255 arguments at one call site is not a case
// worth spending a second operand byte on); every other operand is a u16
// pool/slot/offset index, wide enough for any realistic program without
// a variable-length encoding.
var operandWidth = [...]int{
	OpConst:       2,
	OpTrue:        0,
	OpFalse:       0,
	OpNull:        0,
	OpAdd:         0,
	OpSub:         0,
	OpMul:         0,
	OpDiv:         0,
	OpMod:         0,
	OpNegate:      0,
	OpEq:          0,
	OpNe:          0,
	OpLt:          0,
	OpLe:          0,
	OpGt:          0,
	OpGe:          0,
	OpNot:         0,
	OpAnd:         0,
	OpOr:          0,
	OpGetLocal:    2,
	OpSetLocal:    2,
	OpGetGlobal:   2,
	OpSetGlobal:   2,
	OpJump:        2,
	OpJumpIfFalse: 2,
	OpJumpIfTrue:  2,
	OpCall:        1,
	OpReturn:      0,
	OpNewArray:    2,
	OpGetIndex:    0,
	OpSetIndex:    0,
	OpGetMember:   2,
	OpPop:         0,
	OpDup:         0,
	OpHalt:        0,
	OpMakeClosure: 2,
	OpTypeTest:    2,
}

// OperandWidth returns how many operand bytes follow op in the instruction
// stream.
func OperandWidth(op Opcode) int { return operandWidth[op] }

var opcodeNames = [...]string{
	OpConst: "Const", OpTrue: "True", OpFalse: "False", OpNull: "Null",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpNegate: "Negate", OpEq: "Eq", OpNe: "Ne", OpLt: "Lt", OpLe: "Le",
	OpGt: "Gt", OpGe: "Ge", OpNot: "Not", OpAnd: "And", OpOr: "Or",
	OpGetLocal: "GetLocal", OpSetLocal: "SetLocal",
	OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpJumpIfTrue: "JumpIfTrue",
	OpCall: "Call", OpReturn: "Return", OpNewArray: "NewArray",
	OpGetIndex: "GetIndex", OpSetIndex: "SetIndex", OpGetMember: "GetMember",
	OpPop: "Pop", OpDup: "Dup", OpHalt: "Halt",
	OpMakeClosure: "MakeClosure", OpTypeTest: "TypeTest",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// TypeTag is OpTypeTest's operand: which dynamic value.Kind shape to test
// the top-of-stack value against, for a match arm's TypePattern.
type TypeTag uint16

const (
	TypeTagNumber TypeTag = iota
	TypeTagString
	TypeTagBool
	TypeTagNull
	TypeTagArray
	TypeTagFunction
	TypeTagJSON
	TypeTagAny // always matches; used for unresolvable alias names, see interp.valueMatchesTypeExpr
)
