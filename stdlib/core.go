package stdlib

import (
	"fmt"
	"unicode/utf8"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

func argTypeError(span source.Span, name string, want string, got value.Value) error {
	return report.NewRuntimeError(report.ErrBuiltinArgType, span,
		"%s: expected %s, got %s", name, want, value.KindOf(got))
}

func init() {
	register(&Builtin{
		Name: "print", Arity: 1, Effectful: true,
		// print is the one builtin that performs host-mediated I/O
		// (spec.md §4.14); it writes through ctx.Output rather than
		// directly to os.Stdout so embedders control where output goes.
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			if ctx.Output != nil {
				fmt.Fprintln(ctx.Output, args[0].String())
			}
			return value.Null{}, nil
		},
	})

	register(&Builtin{
		Name: "len", Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			switch v := args[0].(type) {
			case value.Str:
				return value.Number(utf8.RuneCountInString(string(v))), nil
			case *value.Array:
				return value.Number(v.Len()), nil
			default:
				return nil, argTypeError(span, "len", "string or array", args[0])
			}
		},
	})

	register(&Builtin{
		Name: "str", Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			switch v := args[0].(type) {
			case value.Number, value.Bool, value.Null:
				return value.Str(v.String()), nil
			default:
				return nil, argTypeError(span, "str", "number, bool, or null", args[0])
			}
		},
	})

	register(&Builtin{
		Name: "typeof", Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			return value.Str(value.KindOf(args[0]).String()), nil
		},
	})

	registerPredicate("isString", value.KindString)
	registerPredicate("isNumber", value.KindNumber)
	registerPredicate("isBool", value.KindBool)
	registerPredicate("isNull", value.KindNull)
	registerPredicate("isArray", value.KindArray)
	registerPredicate("isFunction", value.KindFunction)
	registerPredicate("isObject", value.KindJSON)
}

// registerPredicate wires one of spec.md §4.8's built-in introspection
// predicates: isString, isNumber, isBool, isNull, isArray, isFunction,
// isObject. Each checks a single argument's dynamic Kind; the checker's
// narrowGuard (checker/narrow.go) consults the matching static type when
// the predicate is used as an if/while guard.
func registerPredicate(name string, kind value.Kind) {
	register(&Builtin{
		Name: name, Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			return value.Bool(value.KindOf(args[0]) == kind), nil
		},
	})
}
