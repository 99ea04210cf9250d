// Package analyzer implements the Crema semantic analyzer (spec §4.3): it
// walks the AST, builds and tears down scopes, resolves identifiers, checks
// types, enforces the no-recursion rule, and annotates expression nodes
// with resolved types, producing an ok/diagnostic-list result.
//
// Grounded on sentra/internal/compiler/hoisting_compiler.go's two-pass
// design (collect function declarations, then compile with them all
// already visible) for the pre-registration pass that lets forward
// references and the whole-program recursion check work, and on
// sentra/internal/compiler/stmt_compiler.go's per-statement-kind dispatch,
// rebuilt here as a type switch per spec §9 rather than a visitor
// interface.
package analyzer

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/symbols"
	"github.com/ainfosec/crema/internal/types"
)

// Context is the analyzer's process-wide-per-compilation-unit state (spec
// §4.3 "Context state"), threaded explicitly through every pass function —
// spec §9: "Make both local values threaded through passes; no hidden
// singletons."
type Context struct {
	Scopes *symbols.Stack
	Tables *symbols.Tables
	Sink   *diagnostics.Sink

	// AtTopLevel is true while analyzing statements that will end up in
	// spec §4.4's synthetic entry function rather than inside a
	// user-defined function body. analyzeFuncDecl clears it for the
	// duration of a function body and restores it afterward. A `return`
	// seen while this is true is exempted from the assignable-to-expected-
	// type check entirely (see analyzeReturn) rather than checked against
	// the root scope's nominal Void expected-return-type, since its value
	// feeds the entry function's exit code, a native-codegen-handoff
	// concern outside this core's type system.
	AtTopLevel bool
}

// NewContext returns a fresh, empty analyzer context.
func NewContext() *Context {
	return &Context{
		Scopes:     symbols.NewStack(),
		Tables:     symbols.NewTables(),
		Sink:       diagnostics.NewSink(),
		AtTopLevel: true,
	}
}

// Analyze is the analyzer's entry point (spec §4.3 "Entry point"). It
// mutates root in place (stdlib declarations are prepended, expression
// nodes get their Type slot filled) and returns whether the compilation
// unit is free of fatal diagnostics.
func Analyze(root *ast.Block) (*Context, bool) {
	ctx := NewContext()

	// 1. Create the root scope, expected-return-type = Void.
	ctx.Scopes.PushFunction(types.TVoid)

	// 2. Inject stdlib declarations at the head of root_block.
	injectStdlib(root)

	// Pre-pass: register every top-level function/record declaration (in
	// source order) before analyzing any body, so forward references and
	// the whole-program recursion check both see the complete call graph.
	// This is the "top-level function table entry is populated ... at
	// register_function call time" note of spec §4.3.
	ctx.preRegisterTopLevel(root)

	// 3. Invoke analyze on each statement of the root block.
	ok := true
	for _, stmt := range root.Stmts {
		if !ctx.analyzeStmt(stmt) {
			ok = false
		}
	}

	// Recursion check runs after every function is registered and its body
	// type-checked, since it walks the already-resolved call graph.
	ctx.checkAllRecursion(root)

	// 4. Assert the scope stack returns to depth 1.
	ctx.Scopes.Pop()
	if ctx.Scopes.Depth() != 0 {
		panic("analyzer: scope stack did not return to depth 0 after root analysis")
	}

	// 5. Return success iff no errors were emitted (warnings are not
	// failures).
	return ctx, ok && !ctx.Sink.HasErrors()
}

// preRegisterTopLevel registers every top-level FuncDecl/RecordDecl into
// the global tables, reporting duplicates. Variable declarations reserve
// against the function namespace too (spec §3 "a reservation check") but
// that check happens when the variable itself is analyzed, since it must
// also check the *current* scope's bindings, not just the global function
// table.
func (ctx *Context) preRegisterTopLevel(root *ast.Block) {
	for _, stmt := range root.Stmts {
		switch n := stmt.(type) {
		case *ast.FuncDecl:
			if !ctx.Tables.RegisterFunction(n) {
				ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, n.Name,
					"duplicate function declaration %q", n.Name)
			}
		case *ast.RecordDecl:
			if !ctx.Tables.RegisterRecord(n) {
				ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, n.Name,
					"duplicate record declaration %q", n.Name)
			}
		}
	}
}

// analyzeStmt dispatches on the statement's concrete type (spec §9: "the
// analyzer ... become[s] a single dispatch on the variant tag").
func (ctx *Context) analyzeStmt(stmt ast.Stmt) bool {
	switch n := stmt.(type) {
	case *ast.Block:
		return ctx.analyzeBlock(n)
	case *ast.VarDecl:
		return ctx.analyzeVarDecl(n)
	case *ast.RecordDecl:
		return ctx.analyzeRecordDeclBody(n)
	case *ast.FuncDecl:
		return ctx.analyzeFuncDecl(n)
	case *ast.AssignScalar:
		return ctx.analyzeAssignScalar(n)
	case *ast.AssignListElt:
		return ctx.analyzeAssignListElt(n)
	case *ast.AssignRecordField:
		return ctx.analyzeAssignRecordField(n)
	case *ast.If:
		return ctx.analyzeIf(n)
	case *ast.Foreach:
		return ctx.analyzeForeach(n)
	case *ast.Return:
		return ctx.analyzeReturn(n)
	case *ast.ExprStmt:
		_, ok := ctx.analyzeExpr(n.Expr)
		return ok
	default:
		panic("analyzer: unknown statement type")
	}
}

// analyzeBlock pushes a fresh scope, analyzes every statement (continuing
// past failures within the block so a single run surfaces as many
// diagnostics as possible, per spec §7 "Failure semantics": "continues with
// the enclosing block's remaining statements where possible, to report
// multiple errors per run"), then pops its scope unconditionally so the
// push/pop invariant of spec §3 always holds.
func (ctx *Context) analyzeBlock(b *ast.Block) bool {
	ctx.Scopes.Push()
	ok := true
	for _, stmt := range b.Stmts {
		if !ctx.analyzeStmt(stmt) {
			ok = false
		}
	}
	ctx.Scopes.Pop()
	return ok
}
