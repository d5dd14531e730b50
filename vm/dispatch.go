package vm

import (
	"math"

	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/internal/numeric"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

// dispatch is the VM's fetch-decode-execute loop: a static table indexed
// by opcode (spec.md §4.13 "Dispatch is a table indexed by opcode (static
// O(1))"). Go has no first-class computed-goto labels, so a type switch
// over Opcode is the idiomatic stand-in the teacher itself reaches for
// (protocompile's own `ast`/`ir` walkers dispatch on a node's dynamic type
// the same way); see DESIGN.md's vm entry.
func (m *VM) dispatch() error {
	for {
		frame := &m.frames[len(m.frames)-1]
		chunk := frame.chunk
		ip := frame.ip
		op := bytecode.Opcode(chunk.Code[ip])
		span := chunk.SpanAt(ip)
		width := bytecode.OperandWidth(op)
		operand := 0
		if width > 0 {
			operand = chunk.ReadOperand(ip)
		}
		frame.ip = ip + 1 + width

		if err := m.step(span); err != nil {
			return err
		}
		if m.Profiler != nil {
			m.Profiler.noteInstruction(op, ip)
		}

		switch op {
		case bytecode.OpHalt:
			return nil

		case bytecode.OpConst:
			if err := m.push(constantToValue(chunk.Constants[operand])); err != nil {
				return err
			}

		case bytecode.OpTrue:
			if err := m.push(value.Bool(true)); err != nil {
				return err
			}
		case bytecode.OpFalse:
			if err := m.push(value.Bool(false)); err != nil {
				return err
			}
		case bytecode.OpNull:
			if err := m.push(value.Null{}); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := m.execAdd(span); err != nil {
				return err
			}
		case bytecode.OpSub:
			if err := m.execArith(span, '-'); err != nil {
				return err
			}
		case bytecode.OpMul:
			if err := m.execArith(span, '*'); err != nil {
				return err
			}
		case bytecode.OpMod:
			if err := m.execArith(span, '%'); err != nil {
				return err
			}
		case bytecode.OpDiv:
			if err := m.execDiv(span); err != nil {
				return err
			}
		case bytecode.OpNegate:
			if err := m.execNegate(span); err != nil {
				return err
			}

		case bytecode.OpEq:
			b, a := m.pop(), m.pop()
			if err := m.push(value.Bool(value.Equal(a, b))); err != nil {
				return err
			}
		case bytecode.OpNe:
			b, a := m.pop(), m.pop()
			if err := m.push(value.Bool(!value.Equal(a, b))); err != nil {
				return err
			}
		case bytecode.OpLt:
			if err := m.execCompare(span, func(l, r float64) bool { return l < r }); err != nil {
				return err
			}
		case bytecode.OpLe:
			if err := m.execCompare(span, func(l, r float64) bool { return l <= r }); err != nil {
				return err
			}
		case bytecode.OpGt:
			if err := m.execCompare(span, func(l, r float64) bool { return l > r }); err != nil {
				return err
			}
		case bytecode.OpGe:
			if err := m.execCompare(span, func(l, r float64) bool { return l >= r }); err != nil {
				return err
			}

		case bytecode.OpNot:
			b := m.pop().(value.Bool)
			if err := m.push(value.Bool(!bool(b))); err != nil {
				return err
			}
		case bytecode.OpAnd:
			b, a := m.pop().(value.Bool), m.pop().(value.Bool)
			if err := m.push(value.Bool(bool(a) && bool(b))); err != nil {
				return err
			}
		case bytecode.OpOr:
			b, a := m.pop().(value.Bool), m.pop().(value.Bool)
			if err := m.push(value.Bool(bool(a) || bool(b))); err != nil {
				return err
			}

		case bytecode.OpGetLocal:
			if err := m.push(m.stack[frame.basePtr+operand]); err != nil {
				return err
			}
		case bytecode.OpSetLocal:
			m.stack[frame.basePtr+operand] = m.pop()

		case bytecode.OpGetGlobal:
			if err := m.push(m.globals[operand]); err != nil {
				return err
			}
		case bytecode.OpSetGlobal:
			m.globals[operand] = m.pop()

		case bytecode.OpJump:
			frame.ip = operand
		case bytecode.OpJumpIfFalse:
			if !bool(m.pop().(value.Bool)) {
				frame.ip = operand
			}
		case bytecode.OpJumpIfTrue:
			if bool(m.pop().(value.Bool)) {
				frame.ip = operand
			}

		case bytecode.OpCall:
			if err := m.execCall(operand, span); err != nil {
				return err
			}
		case bytecode.OpReturn:
			retVal := m.pop()
			base := frame.basePtr
			m.stack = m.stack[:base]
			m.frames = m.frames[:len(m.frames)-1]
			if err := m.push(retVal); err != nil {
				return err
			}

		case bytecode.OpNewArray:
			elems := make([]value.Value, operand)
			for i := operand - 1; i >= 0; i-- {
				elems[i] = m.pop()
			}
			if err := m.push(value.NewArray(elems)); err != nil {
				return err
			}

		case bytecode.OpGetIndex:
			if err := m.execGetIndex(span); err != nil {
				return err
			}
		case bytecode.OpSetIndex:
			if err := m.execSetIndex(span); err != nil {
				return err
			}
		case bytecode.OpGetMember:
			if err := m.execGetMember(chunk, operand, span); err != nil {
				return err
			}

		case bytecode.OpPop:
			m.pop()
		case bytecode.OpDup:
			if err := m.push(m.top()); err != nil {
				return err
			}

		case bytecode.OpMakeClosure:
			if err := m.execMakeClosure(chunk, operand); err != nil {
				return err
			}

		case bytecode.OpTypeTest:
			v := m.pop()
			if err := m.push(value.Bool(matchesTypeTag(v, bytecode.TypeTag(operand)))); err != nil {
				return err
			}

		default:
			return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: unimplemented opcode %v", op)
		}
	}
}

func constantToValue(c bytecode.Constant) value.Value {
	switch v := c.(type) {
	case bytecode.NumberConst:
		return value.Number(v)
	case bytecode.StrConst:
		return value.Str(v)
	default:
		// *bytecode.FuncProto constants are never loaded via OpConst; they
		// are only ever consumed by OpMakeClosure via execMakeClosure.
		return value.Null{}
	}
}

func (m *VM) execAdd(span source.Span) error {
	b, a := m.pop(), m.pop()
	if as, ok := a.(value.Str); ok {
		return m.push(value.Str(string(as) + string(b.(value.Str))))
	}
	return m.pushArith(span, float64(a.(value.Number)), float64(b.(value.Number)), '+')
}

func (m *VM) execArith(span source.Span, op byte) error {
	b, a := m.pop(), m.pop()
	return m.pushArith(span, float64(a.(value.Number)), float64(b.(value.Number)), op)
}

func (m *VM) pushArith(span source.Span, l, r float64, op byte) error {
	var result float64
	switch op {
	case '+':
		result = l + r
	case '-':
		result = l - r
	case '*':
		result = l * r
	case '%':
		result = math.Mod(l, r)
	}
	if !numeric.Finite(result) {
		return report.NewRuntimeError(report.ErrNonFiniteNumber, span, "arithmetic produced a non-finite result")
	}
	return m.push(value.Number(result))
}

func (m *VM) execDiv(span source.Span) error {
	b, a := m.pop(), m.pop()
	result := float64(a.(value.Number)) / float64(b.(value.Number))
	if !numeric.Finite(result) {
		return report.NewRuntimeError(report.ErrDivByNonFinite, span, "division produced a non-finite result")
	}
	return m.push(value.Number(result))
}

func (m *VM) execNegate(span source.Span) error {
	n := float64(m.pop().(value.Number))
	result := -n
	if !numeric.Finite(result) {
		return report.NewRuntimeError(report.ErrNonFiniteNumber, span, "negation produced a non-finite result")
	}
	return m.push(value.Number(result))
}

func (m *VM) execCompare(span source.Span, cmp func(l, r float64) bool) error {
	b, a := m.pop(), m.pop()
	return m.push(value.Bool(cmp(float64(a.(value.Number)), float64(b.(value.Number)))))
}

func (m *VM) execGetIndex(span source.Span) error {
	indexVal, targetVal := m.pop(), m.pop()
	arr, ok := targetVal.(*value.Array)
	if !ok {
		return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: index target is not an array")
	}
	i := int(float64(indexVal.(value.Number)))
	elem, inBounds := arr.Get(i)
	if !inBounds {
		return report.NewRuntimeError(report.ErrIndexOutOfBounds, span, "index %d out of bounds for array of length %d", i, arr.Len())
	}
	return m.push(elem)
}

// execSetIndex pops value, index, target in that order (the reverse of
// compileAssign's target/index/value push order), matching interp's
// execAssign.IndexExpr semantics exactly. SetIndex is a statement-position
// opcode only: it leaves nothing on the stack (spec.md's grammar has no
// assignment-expression form).
func (m *VM) execSetIndex(span source.Span) error {
	val, indexVal, targetVal := m.pop(), m.pop(), m.pop()
	arr, ok := targetVal.(*value.Array)
	if !ok {
		return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: index assignment target is not an array")
	}
	i := int(float64(indexVal.(value.Number)))
	if !arr.Set(i, val) {
		return report.NewRuntimeError(report.ErrIndexOutOfBounds, span, "index %d out of bounds for array of length %d", i, arr.Len())
	}
	return nil
}

func (m *VM) execGetMember(chunk *bytecode.Chunk, poolIdx int, span source.Span) error {
	name := string(chunk.Constants[poolIdx].(bytecode.StrConst))
	targetVal := m.pop()
	obj, ok := targetVal.(value.JSON)
	if !ok || !obj.IsObject() {
		return report.NewRuntimeError(report.ErrJSONTypeMismatch, span, "member access %q: expected a JSON object, got %s", name, value.KindOf(targetVal))
	}
	field, found := obj.Field(name)
	if !found {
		return report.NewRuntimeError(report.ErrJSONKeyNotFound, span, "member access: key %q not found", name)
	}
	return m.push(field)
}

// execCall implements OpCall argc: the stack holds [..., callee, arg0, ...,
// arg(argc-1)] (spec.md §4.11 "push arguments left-to-right, then Call
// argc"). A native call invokes its Go function directly; a user closure
// pushes its captured free variables ahead of the call arguments (in
// FreeVars order, matching compileFuncValue's local-slot layout) and opens
// a new CallFrame over them.
func (m *VM) execCall(argc int, span source.Span) error {
	calleeIdx := len(m.stack) - argc - 1
	args := append([]value.Value(nil), m.stack[calleeIdx+1:]...)
	calleeVal := m.stack[calleeIdx]
	m.stack = m.stack[:calleeIdx]

	fn, ok := calleeVal.(value.Func)
	if !ok {
		return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: call target is not a function")
	}

	switch payload := fn.Fn.(type) {
	case *nativeFunction:
		if m.Stdlib == nil {
			return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: no stdlib.Context configured for native call %q", payload.b.Name)
		}
		result, err := payload.b.Call(m.Stdlib, span, args)
		if err != nil {
			return err
		}
		return m.push(result)

	case *vmClosure:
		for _, fv := range payload.freeVars {
			if err := m.push(fv); err != nil {
				return err
			}
		}
		for _, a := range args {
			if err := m.push(a); err != nil {
				return err
			}
		}
		return m.pushFrame(payload.proto.Chunk, len(payload.freeVars)+len(args))

	default:
		return report.NewRuntimeError(report.ErrInternalInvariant, span, "vm: unrecognized function payload %T", payload)
	}
}

// execMakeClosure pops proto's free-variable values (pushed in
// FreeVars order immediately before this instruction, see
// compiler.compileFuncValue) and pushes the resulting closure value.
func (m *VM) execMakeClosure(chunk *bytecode.Chunk, poolIdx int) error {
	proto := chunk.Constants[poolIdx].(*bytecode.FuncProto)
	n := len(proto.FreeVars)
	captured := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		captured[i] = m.pop()
	}
	return m.push(value.Func{Fn: &vmClosure{proto: proto, freeVars: captured}})
}

// matchesTypeTag mirrors interp.valueMatchesTypeExpr's mapping exactly
// (compiler.typeTagFor picks TypeTagAny for an unresolvable alias name, the
// same conservative "always matches" simplification).
func matchesTypeTag(v value.Value, tag bytecode.TypeTag) bool {
	switch tag {
	case bytecode.TypeTagNumber:
		return value.KindOf(v) == value.KindNumber
	case bytecode.TypeTagString:
		return value.KindOf(v) == value.KindString
	case bytecode.TypeTagBool:
		return value.KindOf(v) == value.KindBool
	case bytecode.TypeTagNull:
		return value.KindOf(v) == value.KindNull
	case bytecode.TypeTagArray:
		return value.KindOf(v) == value.KindArray
	case bytecode.TypeTagFunction:
		return value.KindOf(v) == value.KindFunction
	case bytecode.TypeTagJSON:
		return value.KindOf(v) == value.KindJSON
	default:
		return true
	}
}
