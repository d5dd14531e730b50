package types

// Bound is a constraint a type argument must satisfy, named with `extends`
// in source (spec.md §4.8 "Constraints on type parameters"). The built-in
// bounds are aliases to concrete structural/primitive requirements; a bound
// may also be a user-written Structural type directly.
type Bound struct {
	Name string
	// Satisfies, when non-nil, is the builtin predicate for one of the five
	// named bounds. A user-defined structural bound instead carries Shape.
	Satisfies func(Type) bool
	Shape     *Structural
}

func isNumericOrComparable(t Type) bool {
	p, ok := Normalize(t).(Primitive)
	return ok && (p == Number || p == String)
}

// Builtin bounds from spec.md §4.8: "primitives (Numeric, Comparable,
// Equatable, Serializable, Iterable) are built-in aliases to concrete
// bounds."
var (
	BoundNumeric = Bound{Name: "Numeric", Satisfies: func(t Type) bool {
		p, ok := Normalize(t).(Primitive)
		return ok && p == Number
	}}
	BoundComparable = Bound{Name: "Comparable", Satisfies: isNumericOrComparable}
	BoundEquatable  = Bound{Name: "Equatable", Satisfies: func(t Type) bool {
		switch Normalize(t).(type) {
		case Primitive, Array:
			return true
		default:
			return false
		}
	}}
	BoundSerializable = Bound{Name: "Serializable", Satisfies: func(t Type) bool {
		switch Normalize(t).(type) {
		case Primitive, Array, JSONValue, Structural:
			return true
		default:
			return false
		}
	}}
	BoundIterable = Bound{Name: "Iterable", Satisfies: func(t Type) bool {
		_, ok := Normalize(t).(Array)
		return ok
	}}
)

var builtinBounds = map[string]Bound{
	"Numeric":      BoundNumeric,
	"Comparable":   BoundComparable,
	"Equatable":    BoundEquatable,
	"Serializable": BoundSerializable,
	"Iterable":     BoundIterable,
}

// LookupBuiltinBound resolves one of the five built-in bound names.
func LookupBuiltinBound(name string) (Bound, bool) {
	b, ok := builtinBounds[name]
	return b, ok
}

// SatisfiedBy reports whether t meets bound b: either the builtin predicate,
// or (for a structural bound) that t has every named member with a
// compatible signature, per spec.md §4.8 "structural bounds require the
// argument to have at least the named members with compatible signatures."
func (b Bound) SatisfiedBy(t Type) bool {
	if b.Satisfies != nil {
		return b.Satisfies(t)
	}
	if b.Shape == nil {
		return true
	}
	s, ok := Normalize(t).(Structural)
	if !ok {
		return false
	}
	for _, want := range b.Shape.Members {
		have, found := s.MemberByName(want.Name)
		if !found {
			return false
		}
		if (want.Fn == nil) != (have.Fn == nil) {
			return false
		}
		if want.Fn != nil {
			if !Equal(*want.Fn, *have.Fn) {
				return false
			}
			continue
		}
		if !Equal(want.Type, have.Type) {
			return false
		}
	}
	return true
}
