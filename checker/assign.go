package checker

import "github.com/atlas-lang/atlas/types"

// Assignable implements the `Assignable{from,to}` constraint from spec.md
// §4.8: unions try each member and succeed if any branch succeeds
// ("backtracking"), intersections require every member to accept, and
// Unknown is assignable to and from everything for error recovery
// ("Unknown is assignable to and from every type — purely for recovery").
func Assignable(from, to types.Type) bool {
	from, to = types.Normalize(from), types.Normalize(to)

	if isUnknown(from) || isUnknown(to) {
		return true
	}
	if isNever(from) {
		return true // an unreachable value is assignable to anything
	}
	if types.Equal(from, to) {
		return true
	}

	if toUnion, ok := to.(types.Union); ok {
		for _, member := range toUnion.Members {
			if Assignable(from, member) {
				return true
			}
		}
		return false
	}
	if fromUnion, ok := from.(types.Union); ok {
		for _, member := range fromUnion.Members {
			if !Assignable(member, to) {
				return false
			}
		}
		return true
	}

	if toInter, ok := to.(types.Intersection); ok {
		for _, member := range toInter.Members {
			if !Assignable(from, member) {
				return false
			}
		}
		return true
	}
	if fromInter, ok := from.(types.Intersection); ok {
		for _, member := range fromInter.Members {
			if Assignable(member, to) {
				return true
			}
		}
		return false
	}

	switch toV := to.(type) {
	case types.Array:
		fromV, ok := from.(types.Array)
		return ok && Assignable(fromV.Elem, toV.Elem)
	case types.Structural:
		fromV, ok := from.(types.Structural)
		if !ok {
			return false
		}
		for _, want := range toV.Members {
			have, found := fromV.MemberByName(want.Name)
			if !found {
				return false
			}
			if (want.Fn == nil) != (have.Fn == nil) {
				return false
			}
			if want.Fn != nil {
				if !Assignable(*have.Fn, *want.Fn) {
					return false
				}
				continue
			}
			if !Assignable(have.Type, want.Type) {
				return false
			}
		}
		return true
	case types.Function:
		fromV, ok := from.(types.Function)
		if !ok || len(fromV.Params) != len(toV.Params) {
			return false
		}
		for i := range toV.Params {
			// Parameters are contravariant: the supplied function must
			// accept at least as much as required.
			if !Assignable(toV.Params[i], fromV.Params[i]) {
				return false
			}
		}
		if toV.Return == nil {
			return true
		}
		return Assignable(fromV.Return, toV.Return)
	default:
		return false
	}
}

func isUnknown(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p == types.Unknown
}

func isNever(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p == types.Never
}

// Join computes the least-upper-bound union of two branch types, per
// spec.md §4.8 "After an if/else, the types are joined as the least upper
// bound (union) of the branch types."
func Join(a, b types.Type) types.Type {
	return types.NewUnion(a, b)
}
