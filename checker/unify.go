package checker

import (
	"fmt"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/types"
)

// unifier accumulates a Substitution while matching declared parameter
// types against call-site argument types, applying the partial
// substitution before each step so that delayed resolution works (spec.md
// §4.8, §9: "Constraints can be simplified lazily by applying the partial
// substitution before the main solve").
type unifier struct {
	sub types.Substitution
	err error
}

// UnifyKind distinguishes the specific failure kinds spec.md §4.8 names.
type UnifyKind int

const (
	UnifyOK UnifyKind = iota
	UnifyMismatch
	UnifyInfiniteType
)

type unifyError struct {
	kind    UnifyKind
	message string
}

func (e *unifyError) Error() string { return e.message }

func newUnifier() *unifier { return &unifier{sub: types.Substitution{}} }

// unify attempts Equal(declared, actual), extending u.sub for any free type
// parameter in declared. It performs the occurs check (spec.md §4.8) to
// reject `T = F(T)`.
func (u *unifier) unify(declared, actual types.Type) {
	if u.err != nil {
		return
	}
	declared = types.Apply(declared, u.sub)
	actual = types.Apply(actual, u.sub)

	if ref, ok := declared.(types.TypeParamRef); ok {
		if types.OccursIn(ref.ID, actual) && !types.Equal(ref, actual) {
			u.err = &unifyError{kind: UnifyInfiniteType, message: fmt.Sprintf("infinite type: %s occurs in %s", ref.Name, actual.String())}
			return
		}
		u.sub[ref.ID] = actual
		return
	}

	switch dv := declared.(type) {
	case types.Array:
		av, ok := actual.(types.Array)
		if !ok {
			u.fail(declared, actual)
			return
		}
		u.unify(dv.Elem, av.Elem)
	case types.Function:
		av, ok := actual.(types.Function)
		if !ok || len(av.Params) != len(dv.Params) {
			u.fail(declared, actual)
			return
		}
		for i := range dv.Params {
			u.unify(dv.Params[i], av.Params[i])
		}
		if dv.Return != nil && av.Return != nil {
			u.unify(dv.Return, av.Return)
		}
	default:
		if !Assignable(actual, declared) {
			u.fail(declared, actual)
		}
	}
}

func (u *unifier) fail(declared, actual types.Type) {
	u.err = &unifyError{kind: UnifyMismatch, message: fmt.Sprintf("cannot unify %s with %s", actual.String(), declared.String())}
}

// instantiateCall infers a substitution for fn's type parameters from the
// synthesized argument types, checks each inferred argument against any
// declared bound, and returns the substitution plus the instantiated return
// type. Per spec.md §4.8 "Call argument: Check against parameter type after
// instantiating generics."
func (c *checker) instantiateCall(fn types.Function, argTypes []types.Type, span source.Span) (types.Substitution, types.Type) {
	u := newUnifier()
	for i, p := range fn.Params {
		if i >= len(argTypes) {
			break
		}
		u.unify(p, argTypes[i])
	}
	if u.err != nil {
		if ue, ok := u.err.(*unifyError); ok && ue.kind == UnifyInfiniteType {
			c.errorf(report.ErrInfiniteType, span, "%s", ue.message)
		} else {
			c.errorf(report.ErrUnsolvable, span, "%s", u.err.Error())
		}
		return u.sub, types.Unknown
	}

	for _, id := range fn.TypeParams {
		bound, ok := c.paramBounds[id]
		if !ok {
			continue
		}
		arg, bound2 := u.sub[id], bound
		if arg == nil {
			continue
		}
		if !bound2.SatisfiedBy(arg) {
			c.errorf(report.ErrConstraintViolation, span, "type argument %s does not satisfy bound %s", arg.String(), bound2.Name)
		}
	}

	ret := fn.Return
	if ret == nil {
		ret = types.Void
	}
	return u.sub, types.Apply(ret, u.sub)
}
