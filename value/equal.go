package value

// Equal implements spec.md §3's per-kind equality rules: numbers by value
// (NaN ≠ NaN, inherited from float64 semantics), strings and booleans and
// null by value, arrays and functions by reference identity, JsonValue by
// deep structural equality. Values of different dynamic kinds are never
// equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Null:
		_, ok := b.(Null)
		return ok
	case *Array:
		bv, ok := b.(*Array)
		return ok && av == bv
	case JSON:
		bv, ok := b.(JSON)
		return ok && JSONDeepEqual(av, bv)
	case Func:
		bv, ok := b.(Func)
		return ok && SameFunction(av, bv)
	default:
		return false
	}
}
