package optimizer

import (
	"math"

	"github.com/atlas-lang/atlas/bytecode"
	"github.com/atlas-lang/atlas/internal/numeric"
)

// foldConstants implements spec.md §4.12 pass 1: evaluate arithmetic
// between two adjacent constant pushes at compile time and replace the
// triplet with a single constant push. A fold that would itself produce a
// non-finite result (division, mainly) is skipped — removing the
// instruction would silently remove the runtime error it was supposed to
// raise, which is not an optimization, it's a behavior change.
func foldConstants(cur []*inst, mergeAlias map[int]int, consts []bytecode.Constant) ([]*inst, bool) {
	changed := false
	var out []*inst
	for i := 0; i < len(cur); i++ {
		if i+2 < len(cur) {
			a, b, op := cur[i], cur[i+1], cur[i+2]
			if a.op == bytecode.OpConst && b.op == bytecode.OpConst && isFoldableBinOp(op.op) {
				av, aok := numberOf(a, consts)
				bv, bok := numberOf(b, consts)
				if aok && bok {
					if folded, ok := foldArith(av, bv, op.op); ok {
						a.newConst = bytecode.NumberConst(folded)
						mergeAlias[b.id] = a.id
						mergeAlias[op.id] = a.id
						out = append(out, a)
						i += 2
						changed = true
						continue
					}
				}
				as, asok := stringOf(a, consts)
				bs, bsok := stringOf(b, consts)
				if asok && bsok && op.op == bytecode.OpAdd {
					a.newConst = bytecode.StrConst(as + bs)
					mergeAlias[b.id] = a.id
					mergeAlias[op.id] = a.id
					out = append(out, a)
					i += 2
					changed = true
					continue
				}
			}
		}
		if i+1 < len(cur) {
			a, op := cur[i], cur[i+1]
			if a.op == bytecode.OpConst && op.op == bytecode.OpNegate {
				if av, ok := numberOf(a, consts); ok {
					result := -av
					if numeric.Finite(result) {
						a.newConst = bytecode.NumberConst(result)
						mergeAlias[op.id] = a.id
						out = append(out, a)
						i++
						changed = true
						continue
					}
				}
			}
			if (a.op == bytecode.OpTrue || a.op == bytecode.OpFalse) && op.op == bytecode.OpNot {
				negated := &inst{id: a.id, span: a.span}
				if a.op == bytecode.OpTrue {
					negated.op = bytecode.OpFalse
				} else {
					negated.op = bytecode.OpTrue
				}
				mergeAlias[op.id] = a.id
				out = append(out, negated)
				i++
				changed = true
				continue
			}
		}
		out = append(out, cur[i])
	}
	return out, changed
}

func isFoldableBinOp(op bytecode.Opcode) bool {
	switch op {
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		return true
	default:
		return false
	}
}

func numberOf(in *inst, consts []bytecode.Constant) (float64, bool) {
	if in.newConst != nil {
		if n, ok := in.newConst.(bytecode.NumberConst); ok {
			return float64(n), true
		}
		return 0, false
	}
	if n, ok := consts[in.operand].(bytecode.NumberConst); ok {
		return float64(n), true
	}
	return 0, false
}

func stringOf(in *inst, consts []bytecode.Constant) (string, bool) {
	if in.newConst != nil {
		if s, ok := in.newConst.(bytecode.StrConst); ok {
			return string(s), true
		}
		return "", false
	}
	if s, ok := consts[in.operand].(bytecode.StrConst); ok {
		return string(s), true
	}
	return "", false
}

func foldArith(l, r float64, op bytecode.Opcode) (float64, bool) {
	// matches vm.pushArith/vm.execDiv exactly: same operators, same
	// non-finite check, so folding never changes which programs error.
	var result float64
	switch op {
	case bytecode.OpAdd:
		result = l + r
	case bytecode.OpSub:
		result = l - r
	case bytecode.OpMul:
		result = l * r
	case bytecode.OpDiv:
		result = l / r
	case bytecode.OpMod:
		result = math.Mod(l, r)
	}
	if !numeric.Finite(result) {
		return 0, false
	}
	return result, true
}

// peephole implements spec.md §4.12 pass 3: collapse `Dup; Pop` (a value
// duplicated then immediately discarded is a no-op), chain `Jump → Jump`
// into a single direct jump, and remove `Not; Not`.
func peephole(cur []*inst) ([]*inst, bool) {
	changed := false
	var out []*inst
	for i := 0; i < len(cur); i++ {
		if i+1 < len(cur) {
			a, b := cur[i], cur[i+1]
			if a.op == bytecode.OpDup && b.op == bytecode.OpPop {
				changed = true
				i++
				continue
			}
			if a.op == bytecode.OpNot && b.op == bytecode.OpNot {
				changed = true
				i++
				continue
			}
		}
		out = append(out, cur[i])
	}

	byID := make(map[int]*inst, len(out))
	for _, in := range out {
		byID[in.id] = in
	}
	const maxHops = 64
	for _, in := range out {
		if !isJump(in.op) {
			continue
		}
		target := in.target
		for hop := 0; hop < maxHops; hop++ {
			next, ok := byID[target]
			if !ok || next.op != bytecode.OpJump || next.target == target {
				break
			}
			target = next.target
		}
		if target != in.target {
			in.target = target
			changed = true
		}
	}
	return out, changed
}

// deadCode implements spec.md §4.12 pass 2: instructions that immediately
// follow an unconditional terminator (Return, Halt, or an unconditional
// Jump) and that no surviving jump targets are unreachable by construction
// (compileItems already stops emitting after a statement-level return,
// break, or continue, but the bytecode compiler can still produce a terminator
// mid-chunk via short-circuit/jump lowering whose fall-through region nets
// out empty).
func deadCode(cur []*inst) ([]*inst, bool) {
	targeted := targetedIDs(cur)
	changed := false
	var out []*inst
	dead := false
	for _, in := range cur {
		if dead {
			if targeted[in.id] {
				dead = false
			} else {
				changed = true
				continue
			}
		}
		out = append(out, in)
		if isTerminator(in.op) {
			dead = true
		}
	}
	return out, changed
}
