package value

import "strings"

// Array is the only mutable value kind (spec.md §3): a handle shared by
// reference, so mutation through one alias is visible through every other.
// Go's garbage collector already tracks the liveness a manual refcount
// would, so Array is just a pointer to a slice rather than a hand-rolled
// refcounted cell — sharing-by-reference falls out of ordinary pointer
// semantics (see DESIGN.md for this Open Question's resolution).
type Array struct {
	Elems []Value
}

// NewArray creates a new, independently owned Array handle.
func NewArray(elems []Value) *Array { return &Array{Elems: elems} }

func (*Array) valueKind() Kind { return KindArray }

func (a *Array) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Get returns the element at index i, and whether i was in bounds.
func (a *Array) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.Elems) {
		return nil, false
	}
	return a.Elems[i], true
}

// Set overwrites the element at index i, reporting whether i was in bounds.
// Because Array is always accessed through a shared pointer, the mutation
// is immediately visible to every alias.
func (a *Array) Set(i int, v Value) bool {
	if i < 0 || i >= len(a.Elems) {
		return false
	}
	a.Elems[i] = v
	return true
}

func (a *Array) Len() int { return len(a.Elems) }
