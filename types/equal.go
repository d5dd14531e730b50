package types

// Equal reports structural equality by shape after normalization, per
// spec.md §3 "Structural equality is by shape after normalization."
func Equal(a, b Type) bool {
	return equalNormalized(Normalize(a), Normalize(b))
}

func equalNormalized(a, b Type) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av == bv
	case JSONValue:
		_, ok := b.(JSONValue)
		return ok
	case Array:
		bv, ok := b.(Array)
		return ok && equalNormalized(av.Elem, bv.Elem)
	case TypeParamRef:
		bv, ok := b.(TypeParamRef)
		return ok && av.ID == bv.ID
	case Function:
		bv, ok := b.(Function)
		if !ok || len(av.Params) != len(bv.Params) || len(av.TypeParams) != len(bv.TypeParams) {
			return false
		}
		for i := range av.Params {
			if !equalNormalized(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return equalOptional(av.Return, bv.Return)
	case AliasApplication:
		bv, ok := b.(AliasApplication)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !equalNormalized(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case Union:
		bv, ok := b.(Union)
		return ok && sameMemberSet(av.Members, bv.Members)
	case Intersection:
		bv, ok := b.(Intersection)
		return ok && sameMemberSet(av.Members, bv.Members)
	case Structural:
		bv, ok := b.(Structural)
		if !ok || len(av.Members) != len(bv.Members) {
			return false
		}
		for _, m := range av.Members {
			other, found := bv.MemberByName(m.Name)
			if !found {
				return false
			}
			if (m.Fn == nil) != (other.Fn == nil) {
				return false
			}
			if m.Fn != nil {
				if !equalNormalized(*m.Fn, *other.Fn) {
					return false
				}
				continue
			}
			if !equalNormalized(m.Type, other.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalOptional(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equalNormalized(a, b)
}

// sameMemberSet compares two already-normalized (deduplicated, order
// irrelevant to meaning) member slices for set equality.
func sameMemberSet(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, am := range a {
		found := false
		for i, bm := range b {
			if used[i] {
				continue
			}
			if equalNormalized(am, bm) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
