package types

import "golang.org/x/exp/slices"

// Normalize flattens nested unions/intersections, deduplicates members, and
// resolves intersections of disjoint primitives to Never, per spec.md §3
// "Normalization flattens nested unions/intersections, deduplicates members,
// and resolves A & B to never for disjoint primitives."
func Normalize(t Type) Type {
	switch v := t.(type) {
	case Union:
		return normalizeUnion(v.Members)
	case Intersection:
		return normalizeIntersection(v.Members)
	case Array:
		return Array{Elem: Normalize(v.Elem)}
	case Function:
		nf := Function{TypeParams: v.TypeParams, Params: make([]Type, len(v.Params))}
		for i, p := range v.Params {
			nf.Params[i] = Normalize(p)
		}
		if v.Return != nil {
			nf.Return = Normalize(v.Return)
		}
		return nf
	case Structural:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			nm := m
			if m.Type != nil {
				nm.Type = Normalize(m.Type)
			}
			members[i] = nm
		}
		return Structural{Members: members}
	default:
		return t
	}
}

// NewUnion builds a normalized Union (or collapses to a single Type if only
// one distinct member survives).
func NewUnion(members ...Type) Type {
	return normalizeUnion(members)
}

func normalizeUnion(members []Type) Type {
	var flat []Type
	for _, m := range members {
		m = Normalize(m)
		if u, ok := m.(Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}
	deduped := dedupe(flat)
	// `never` contributes nothing to a union; drop it unless it's all that's left.
	filtered := deduped[:0]
	for _, m := range deduped {
		if p, ok := m.(Primitive); ok && p == Never && len(deduped) > 1 {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	sortTypes(filtered)
	return Union{Members: filtered}
}

// NewIntersection builds a normalized Intersection.
func NewIntersection(members ...Type) Type {
	return normalizeIntersection(members)
}

func normalizeIntersection(members []Type) Type {
	var flat []Type
	for _, m := range members {
		m = Normalize(m)
		if x, ok := m.(Intersection); ok {
			flat = append(flat, x.Members...)
		} else {
			flat = append(flat, m)
		}
	}
	deduped := dedupe(flat)
	if disjointPrimitives(deduped) {
		return Primitive(Never)
	}
	if len(deduped) == 1 {
		return deduped[0]
	}
	sortTypes(deduped)
	return Intersection{Members: deduped}
}

// disjointPrimitives reports whether deduped contains two or more distinct
// primitive kinds, which makes their intersection uninhabited.
func disjointPrimitives(members []Type) bool {
	seen := map[Primitive]bool{}
	for _, m := range members {
		p, ok := m.(Primitive)
		if !ok {
			return false // a non-primitive member (structural, etc.) may still be inhabited
		}
		seen[p] = true
	}
	return len(seen) > 1
}

// dedupe drops structurally-equal repeats from a union/intersection's
// flattened member list, preserving first-occurrence order (spec.md §3
// "Normalization ... deduplicates members"). Built on golang.org/x/exp/slices
// rather than stdlib slices, matching the pack's own choice of the
// pre-generics-stdlib package for this kind of membership check.
func dedupe(members []Type) []Type {
	var out []Type
	for _, m := range members {
		if !slices.ContainsFunc(out, func(o Type) bool { return Equal(m, o) }) {
			out = append(out, m)
		}
	}
	return out
}

func sortTypes(members []Type) {
	slices.SortFunc(members, func(a, b Type) bool { return a.String() < b.String() })
}
