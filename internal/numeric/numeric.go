// Package numeric holds the one predicate both execution engines need to
// agree on bit-for-bit: whether an IEEE 754 double is finite. spec.md §4.10
// promotes any non-finite arithmetic result to a runtime error, and both
// the interpreter and the VM must apply exactly this rule for
// interpreter/VM parity (spec.md §8).
package numeric

import "math"

// Finite reports whether n is neither NaN nor ±Infinity.
func Finite(n float64) bool { return !math.IsNaN(n) && !math.IsInf(n, 0) }
