package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk as human-readable instruction listing, one
// line per instruction, with nested function constants disassembled
// recursively under their own header. Used by the optimizer's tests and by
// debug tooling; never consulted by the VM itself.
func Disassemble(chunk *Chunk, name string) string {
	var b strings.Builder
	disassemble(&b, chunk, name, 0)
	return b.String()
}

func disassemble(b *strings.Builder, chunk *Chunk, name string, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s== %s ==\n", pad, name)
	ip := 0
	for ip < len(chunk.Code) {
		op := Opcode(chunk.Code[ip])
		width := OperandWidth(op)
		fmt.Fprintf(b, "%s%04d  %-12s", pad, ip, op)
		if width > 0 {
			operand := chunk.ReadOperand(ip)
			fmt.Fprintf(b, " %s", operandComment(chunk, op, operand))
		}
		b.WriteByte('\n')
		ip += 1 + width
	}
	for i, c := range chunk.Constants {
		if fp, ok := c.(*FuncProto); ok {
			disassemble(b, fp.Chunk, fmt.Sprintf("%s (const %d, fn %s)", name, i, fp.Name), indent+1)
		}
	}
}

func operandComment(chunk *Chunk, op Opcode, operand int) string {
	switch op {
	case OpConst, OpMakeClosure:
		if operand < len(chunk.Constants) {
			return fmt.Sprintf("%d  ; %v", operand, chunk.Constants[operand])
		}
	case OpGetMember:
		if operand < len(chunk.Constants) {
			return fmt.Sprintf("%d  ; %v", operand, chunk.Constants[operand])
		}
	case OpTypeTest:
		return fmt.Sprintf("%d  ; %v", operand, TypeTag(operand))
	}
	return fmt.Sprintf("%d", operand)
}

func (t TypeTag) String() string {
	switch t {
	case TypeTagNumber:
		return "number"
	case TypeTagString:
		return "string"
	case TypeTagBool:
		return "bool"
	case TypeTagNull:
		return "null"
	case TypeTagArray:
		return "array"
	case TypeTagFunction:
		return "function"
	case TypeTagJSON:
		return "object"
	default:
		return "any"
	}
}

func (n NumberConst) String() string { return fmt.Sprintf("%g", float64(n)) }
func (s StrConst) String() string    { return string(s) }
func (f *FuncProto) String() string  { return "<fn " + f.Name + ">" }
