package stdlib

import (
	"os"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

// io.go wires the host-mediated, effectful builtins spec.md §4.15
// describes the security gate as existing for: "a capability object
// consulted before any effectful operation (I/O, process, environment,
// network)". Every builtin here calls the matching Context.Security check
// before touching the host, and propagates a denial as the runtime error
// the check already constructs rather than falling back to partial
// execution (spec.md §7 "Security context... do not fall back to partial
// execution").

func init() {
	register(&Builtin{
		Name: "readFile", Arity: 1, Effectful: true,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			path, ok := args[0].(value.Str)
			if !ok {
				return nil, argTypeError(span, "readFile", "string", args[0])
			}
			if err := ctx.security().CheckFilesystemRead(span, string(path)); err != nil {
				return nil, err
			}
			data, err := os.ReadFile(string(path))
			if err != nil {
				return nil, report.NewRuntimeError(report.ErrBuiltinArgType, span, "readFile: %v", err)
			}
			return value.Str(data), nil
		},
	})

	register(&Builtin{
		Name: "writeFile", Arity: 2, Effectful: true,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			path, ok := args[0].(value.Str)
			if !ok {
				return nil, argTypeError(span, "writeFile", "string", args[0])
			}
			content, ok := args[1].(value.Str)
			if !ok {
				return nil, argTypeError(span, "writeFile", "string", args[1])
			}
			if err := ctx.security().CheckFilesystemWrite(span, string(path)); err != nil {
				return nil, err
			}
			if err := os.WriteFile(string(path), []byte(content), 0o644); err != nil {
				return nil, report.NewRuntimeError(report.ErrBuiltinArgType, span, "writeFile: %v", err)
			}
			return value.Null{}, nil
		},
	})

	register(&Builtin{
		Name: "getEnv", Arity: 1, Effectful: true,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			name, ok := args[0].(value.Str)
			if !ok {
				return nil, argTypeError(span, "getEnv", "string", args[0])
			}
			if err := ctx.security().CheckEnvironment(span, string(name)); err != nil {
				return nil, err
			}
			v, found := os.LookupEnv(string(name))
			if !found {
				return value.Null{}, nil
			}
			return value.Str(v), nil
		},
	})
}
