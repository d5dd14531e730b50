package interp

import "github.com/atlas-lang/atlas/value"

// signalKind distinguishes normal fall-through from the three non-local
// exits spec.md §4.10 names: "`return` unwinds to the nearest call site;
// `break`/`continue` use non-local exits within loop contexts."
type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// signal is exec's control-flow result. value is only meaningful for
// signalReturn.
type signal struct {
	kind  signalKind
	value value.Value
}

var noSignal = signal{kind: signalNone}
