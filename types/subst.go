package types

// Substitution maps type-parameter IDs to the types they have been unified
// with so far. It is applied before each unification solve to enable
// "delayed" resolution, per spec.md §9 "the substitution is a process-wide
// map maintained by the unification engine and applied before each solve."
type Substitution map[TypeParamID]Type

// Apply replaces every TypeParamRef in t with its binding in sub, if any,
// recursing into compound types. It never mutates t.
func Apply(t Type, sub Substitution) Type {
	if len(sub) == 0 {
		return t
	}
	switch v := t.(type) {
	case TypeParamRef:
		if bound, ok := sub[v.ID]; ok {
			return Apply(bound, sub)
		}
		return v
	case Array:
		return Array{Elem: Apply(v.Elem, sub)}
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Apply(p, sub)
		}
		var ret Type
		if v.Return != nil {
			ret = Apply(v.Return, sub)
		}
		return Function{TypeParams: v.TypeParams, Params: params, Return: ret}
	case AliasApplication:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Apply(a, sub)
		}
		return AliasApplication{Name: v.Name, Args: args}
	case Union:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = Apply(m, sub)
		}
		return NewUnion(members...)
	case Intersection:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = Apply(m, sub)
		}
		return NewIntersection(members...)
	case Structural:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			nm := m
			if m.Fn != nil {
				fn := Apply(*m.Fn, sub).(Function)
				nm.Fn = &fn
			} else {
				nm.Type = Apply(m.Type, sub)
			}
			members[i] = nm
		}
		return Structural{Members: members}
	default:
		return t
	}
}

// OccursIn reports whether the type parameter id appears anywhere inside t,
// used by the unification engine's occurs check (spec.md §4.8 "performs the
// occurs check to reject T = F(T)").
func OccursIn(id TypeParamID, t Type) bool {
	switch v := t.(type) {
	case TypeParamRef:
		return v.ID == id
	case Array:
		return OccursIn(id, v.Elem)
	case Function:
		for _, p := range v.Params {
			if OccursIn(id, p) {
				return true
			}
		}
		return v.Return != nil && OccursIn(id, v.Return)
	case AliasApplication:
		for _, a := range v.Args {
			if OccursIn(id, a) {
				return true
			}
		}
		return false
	case Union:
		for _, m := range v.Members {
			if OccursIn(id, m) {
				return true
			}
		}
		return false
	case Intersection:
		for _, m := range v.Members {
			if OccursIn(id, m) {
				return true
			}
		}
		return false
	case Structural:
		for _, m := range v.Members {
			if m.Fn != nil {
				if OccursIn(id, *m.Fn) {
					return true
				}
				continue
			}
			if OccursIn(id, m.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
