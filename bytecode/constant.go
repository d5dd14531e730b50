package bytecode

// Constant is one entry in a Chunk's constant pool: a number, a string, or
// a function descriptor (spec.md §4.11 "The pool holds numbers, strings,
// and function descriptors"). A closed interface, the same tagged-sum idiom
// value.Value and ast.Expr use, so Chunk.Constants stays a single slice
// without a parallel discriminator.
type Constant interface {
	constant()
}

// NumberConst is a deduplicated numeric literal.
type NumberConst float64

func (NumberConst) constant() {}

// StrConst is a deduplicated string literal, and also used to name a
// GetMember/import symbol so OpGetMember's operand can index the pool
// rather than carry inline variable-length text.
type StrConst string

func (StrConst) constant() {}

// FuncProto is a compiled function's descriptor: its own instruction
// stream plus the metadata the VM needs to set up a call frame. FreeVars
// names, in capture order, the enclosing variables a lambda closes over;
// OpMakeClosure pops that many values (pushed by the compiler immediately
// before it) and pairs them positionally with FreeVars when building the
// runtime closure value (see compiler's free-variable analysis and vm's
// Closure type).
type FuncProto struct {
	Name      string
	Arity     int
	NumLocals int
	FreeVars  []string
	Chunk     *Chunk
}

func (*FuncProto) constant() {}
