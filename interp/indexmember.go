package interp

import (
	"github.com/atlas-lang/atlas/ast"
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/value"
)

// evalIndex implements `target[index]` (spec.md §4.10 "Array indexing is
// bounds-checked").
func (it *Interpreter) evalIndex(v *ast.IndexExpr, env *Environment) (value.Value, error) {
	targetVal, err := it.eval(v.Target, env)
	if err != nil {
		return nil, err
	}
	indexVal, err := it.eval(v.Index, env)
	if err != nil {
		return nil, err
	}
	arr, ok := targetVal.(*value.Array)
	if !ok {
		return nil, report.NewRuntimeError(report.ErrInternalInvariant, v.Target.Span(), "interp: index target is not an array")
	}
	i := int(float64(indexVal.(value.Number)))
	elem, inBounds := arr.Get(i)
	if !inBounds {
		return nil, report.NewRuntimeError(report.ErrIndexOutOfBounds, v.Span(), "index %d out of bounds for array of length %d", i, arr.Len())
	}
	return elem, nil
}

// evalMember implements `target.name`. The only runtime value with named
// members is a JSON object (spec.md §3's structural types describe field
// and method shapes statically; value.JSON is the one Value kind that
// actually carries named fields at runtime), so member access here is a
// field lookup equivalent to the jsonGet builtin.
func (it *Interpreter) evalMember(v *ast.MemberExpr, env *Environment) (value.Value, error) {
	targetVal, err := it.eval(v.Target, env)
	if err != nil {
		return nil, err
	}
	obj, ok := targetVal.(value.JSON)
	if !ok || !obj.IsObject() {
		return nil, report.NewRuntimeError(report.ErrJSONTypeMismatch, v.Span(), "member access %q: expected a JSON object, got %s", v.Name, value.KindOf(targetVal))
	}
	field, found := obj.Field(v.Name)
	if !found {
		return nil, report.NewRuntimeError(report.ErrJSONKeyNotFound, v.Span(), "member access: key %q not found", v.Name)
	}
	return field, nil
}
