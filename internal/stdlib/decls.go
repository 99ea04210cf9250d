// Package stdlib declares the runtime support library Crema programs are
// linked against (spec §6 "Runtime library"): dynamic lists, strings, I/O,
// argv access and math builtins. None of it is implemented here — spec §1
// explicitly treats the runtime as an external collaborator, "linked in at
// build time, only declared to the core" — this package is purely the
// table of external function signatures internal/analyzer injects at the
// head of the root block before analysis (spec §4.2 "Stdlib injection"),
// the same role sentra's internal/stdlib package plays for the VM's
// builtin table, just declarative instead of an actual Go implementation.
package stdlib

import "github.com/ainfosec/crema/internal/types"

// Decl is one external runtime function signature.
type Decl struct {
	Name       string
	ReturnType types.Type
	Params     []types.Type
}

// intList / doubleList / charList are the three list shapes the runtime
// declares retrieve/insert/append triplets for.
var (
	intList    = types.ListOf(types.Int)
	doubleList = types.ListOf(types.Double)
	charList   = types.ListOf(types.Char) // runtime's representation of String (spec §6 str_create)
)

// Declarations returns the fixed table of spec §6 runtime signatures, in
// the order they appear in that table (and so the order they are injected
// at the head of the root block, per spec §4.2).
func Declarations() []Decl {
	return []Decl{
		{"int_list_create", intList, nil},
		{"double_list_create", doubleList, nil},
		{"str_create", charList, nil},

		{"list_length", types.TInt, []types.Type{types.AnyList}}, // generic over list kind; see DESIGN.md

		{"int_list_retrieve", types.TInt, []types.Type{intList, types.TInt}},
		{"double_list_retrieve", types.TDouble, []types.Type{doubleList, types.TInt}},
		{"int_list_insert", types.TVoid, []types.Type{intList, types.TInt, types.TInt}},
		{"int_list_append", types.TVoid, []types.Type{intList, types.TInt}},
		{"double_list_insert", types.TVoid, []types.Type{doubleList, types.TInt, types.TDouble}},
		{"double_list_append", types.TVoid, []types.Type{doubleList, types.TDouble}},

		{"str_retrieve", types.TChar, []types.Type{charList, types.TInt}},
		{"str_insert", types.TVoid, []types.Type{charList, types.TInt, types.TChar}},
		{"str_append", types.TVoid, []types.Type{charList, types.TChar}},

		{"str_print", types.TVoid, []types.Type{charList}},
		{"str_println", types.TVoid, []types.Type{charList}},
		{"int_print", types.TVoid, []types.Type{types.TInt}},
		{"int_println", types.TVoid, []types.Type{types.TInt}},
		{"double_print", types.TVoid, []types.Type{types.TDouble}},
		{"double_println", types.TVoid, []types.Type{types.TDouble}},

		{"prog_arg_count", types.TInt, nil},
		{"prog_argument", charList, []types.Type{types.TInt}},
		{"save_args", types.TVoid, []types.Type{types.TInt, types.TInt}}, // (argc, argv); argv is an opaque pointer, modeled as Int here — see DESIGN.md
		{"crema_seq", intList, []types.Type{types.TInt, types.TInt}},

		{"double_floor", types.TDouble, []types.Type{types.TDouble}},
		{"double_ceiling", types.TDouble, []types.Type{types.TDouble}},
		{"double_round", types.TDouble, []types.Type{types.TDouble}},
		{"double_square", types.TDouble, []types.Type{types.TDouble}},
		{"double_pow", types.TDouble, []types.Type{types.TDouble, types.TDouble}},
		{"double_sin", types.TDouble, []types.Type{types.TDouble}},
		{"double_sqrt", types.TDouble, []types.Type{types.TDouble}},
		{"double_abs", types.TDouble, []types.Type{types.TDouble}},
		{"int_square", types.TInt, []types.Type{types.TInt}},
		{"int_pow", types.TInt, []types.Type{types.TInt, types.TInt}},
		{"int_abs", types.TInt, []types.Type{types.TInt}},
	}
}
