package analyzer

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/types"
)

// analyzeVarDecl implements spec §4.3 "Variable declaration": if the
// declared type is Record, the record must already be registered; the name
// must not collide with an existing binding in the current scope or with a
// function name; if an initializer is present its type must be <= the
// declared type (warning if strictly less) and it must itself analyze.
func (ctx *Context) analyzeVarDecl(n *ast.VarDecl) bool {
	ok := true
	declType := n.DeclaredType
	if declType.Kind == types.Record {
		if _, exists := ctx.Tables.Records[declType.RecordName]; !exists {
			ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, declType.RecordName,
				"undefined record type %q", declType.RecordName)
			ok = false
		}
	}

	if ctx.Tables.IsFunctionName(n.Name) {
		ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, n.Name,
			"variable %q collides with a function of the same name", n.Name)
		ok = false
	} else if _, declared := ctx.Scopes.Declare(n.Name, declType); !declared {
		ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, n.Name,
			"duplicate declaration of %q in this scope", n.Name)
		ok = false
	}

	if n.Init != nil {
		initOk := ctx.checkInitOrAssign(n.Loc, n.Name, declType, n.Init)
		ok = initOk && ok
	}
	return ok
}

// checkInitOrAssign analyzes value and, if it analyzed successfully,
// checks it against target under the assignability rule (spec §4.1): a
// type-mismatch error if not S <= T, a non-fatal up-cast warning if S < T.
// Shared by variable initializers, assignments, return statements,
// arguments and list/record element stores.
func (ctx *Context) checkInitOrAssign(loc diagnostics.Location, subject string, target types.Type, value ast.Expr) bool {
	valType, ok := ctx.analyzeExpr(value)
	if !ok {
		return false
	}
	assignable, warn := types.Assignable(valType, target)
	if !assignable {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, loc, subject,
			"type mismatch for assignment to %s: %s is not assignable to %s", subject, valType, target)
		return false
	}
	if warn {
		ctx.Sink.Warnf(loc, subject, "up-cast from %s to %s", valType, target)
	}
	return true
}

// analyzeRecordDeclBody implements spec §4.3 "Record declaration": checks
// the members for duplicate field names (tracked in a local set of names
// seen so far) and for undefined record-typed fields, inside a temporary
// scope that it pops again. Registration into the global record table
// already happened in the pre-pass (preRegisterTopLevel), so forward
// field-type references resolve the same way function forward references
// do.
func (ctx *Context) analyzeRecordDeclBody(n *ast.RecordDecl) bool {
	ok := true
	ctx.Scopes.Push()
	seen := map[string]bool{}
	for _, m := range n.Members {
		if seen[m.Name] {
			ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, m.Name,
				"duplicate field %q in record %q", m.Name, n.Name)
			ok = false
			continue
		}
		seen[m.Name] = true
		if m.Type.Kind == types.Record {
			if _, exists := ctx.Tables.Records[m.Type.RecordName]; !exists {
				ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, m.Type.RecordName,
					"undefined record type %q for field %q", m.Type.RecordName, m.Name)
				ok = false
			}
		}
	}
	ctx.Scopes.Pop()
	return ok
}

// analyzeFuncDecl implements spec §4.3 "Function declaration": pushes a
// scope with expected-return-type = the declared return type, registers
// each parameter, analyzes the body (skipped for external/stdlib
// declarations, Body == nil), pops. The recursion check itself runs later,
// once over the whole program (checkAllRecursion), since it needs every
// function's body already resolved.
func (ctx *Context) analyzeFuncDecl(n *ast.FuncDecl) bool {
	if n.Body == nil {
		return true // external declaration: nothing to check
	}
	ok := true
	ctx.Scopes.PushFunction(n.ReturnType)
	prevTopLevel := ctx.AtTopLevel
	ctx.AtTopLevel = false
	for _, param := range n.Params {
		if _, declared := ctx.Scopes.Declare(param.Name, param.Type); !declared {
			ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, param.Name,
				"duplicate parameter %q in function %q", param.Name, n.Name)
			ok = false
		}
	}
	if !ctx.analyzeBlock(n.Body) {
		ok = false
	}
	ctx.AtTopLevel = prevTopLevel
	ctx.Scopes.Pop()
	return ok
}

// resolveAssignTarget looks up name as a declared variable, reporting
// "undefined" if it isn't one (spec §4.3 "Assignment ... Target must be a
// declared variable").
func (ctx *Context) resolveAssignTarget(loc diagnostics.Location, name string) (types.Type, bool) {
	b, ok := ctx.Scopes.Lookup(name)
	if !ok {
		ctx.Sink.Errorf(diagnostics.KindUndefinedReference, loc, name, "undefined variable %q", name)
		return types.TInvalid, false
	}
	return b.Type, true
}

func (ctx *Context) analyzeAssignScalar(n *ast.AssignScalar) bool {
	target, ok := ctx.resolveAssignTarget(n.Loc, n.Name)
	if !ok {
		// still analyze the RHS to surface further diagnostics, but the
		// statement as a whole has failed.
		ctx.analyzeExpr(n.Value)
		return false
	}
	return ctx.checkInitOrAssign(n.Loc, n.Name, target, n.Value)
}

// analyzeAssignListElt implements spec §4.3's list-element assignment
// form: the base must be a list-typed variable, the index must be Int or
// UInt, and the value must be assignable to the list's element type.
func (ctx *Context) analyzeAssignListElt(n *ast.AssignListElt) bool {
	target, ok := ctx.resolveAssignTarget(n.Loc, n.Name)
	if !ok {
		ctx.analyzeExpr(n.Index)
		ctx.analyzeExpr(n.Value)
		return false
	}
	ok = true
	if !target.IsList {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Name,
			"list access on non-list variable %q (type %s)", n.Name, target)
		ok = false
	}
	idxType, idxOk := ctx.analyzeExpr(n.Index)
	if idxOk && idxType.Kind != types.Int && idxType.Kind != types.UInt {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Name,
			"list index must be Int or UInt, got %s", idxType)
		ok = false
	}
	elemType := types.Scalar(target.Kind)
	if target.Kind == types.Record {
		elemType = types.RecordType(target.RecordName)
	}
	if !ctx.checkInitOrAssign(n.Loc, n.Name, elemType, n.Value) {
		ok = false
	}
	return ok
}

// analyzeAssignRecordField implements spec §4.3's record-field assignment
// form: the base must be a declared record variable and field must exist
// in that record's member list.
func (ctx *Context) analyzeAssignRecordField(n *ast.AssignRecordField) bool {
	target, ok := ctx.resolveAssignTarget(n.Loc, n.Name)
	if !ok {
		ctx.analyzeExpr(n.Value)
		return false
	}
	if target.Kind != types.Record {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Name,
			"record field access on non-record variable %q (type %s)", n.Name, target)
		ctx.analyzeExpr(n.Value)
		return false
	}
	fieldType, found := ctx.lookupRecordField(target.RecordName, n.Field)
	if !found {
		ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, n.Field,
			"record %q has no field %q", target.RecordName, n.Field)
		ctx.analyzeExpr(n.Value)
		return false
	}
	return ctx.checkInitOrAssign(n.Loc, n.Name+"."+n.Field, fieldType, n.Value)
}

func (ctx *Context) lookupRecordField(recordName, field string) (types.Type, bool) {
	rec, ok := ctx.Tables.Records[recordName]
	if !ok {
		return types.TInvalid, false
	}
	for _, m := range rec.Members {
		if m.Name == field {
			return m.Type, true
		}
	}
	return types.TInvalid, false
}

// analyzeIf implements spec §4.3 "If/elseif/else": the condition must
// evaluate to Bool, Int/UInt, or Double; String, Void and Invalid are
// rejected (scenario 8 of spec §8: `if ("hi") { }` is a type error). Then,
// else-block and else-if are each recursively analyzed regardless of
// whether the condition itself was well-typed, to surface further
// diagnostics in one run.
func (ctx *Context) analyzeIf(n *ast.If) bool {
	ok := true
	condType, condOk := ctx.analyzeExpr(n.Cond)
	if !condOk {
		ok = false
	} else if !conditionCompatible(condType) {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "if",
			"condition cannot evaluate to a boolean: %s", condType)
		ok = false
	}
	if !ctx.analyzeBlock(n.Then) {
		ok = false
	}
	if n.Else != nil {
		if !ctx.analyzeStmt(n.Else) {
			ok = false
		}
	}
	return ok
}

func conditionCompatible(t types.Type) bool {
	if t.IsList {
		return false
	}
	switch t.Kind {
	case types.Bool, types.Int, types.UInt, types.Double:
		return true
	default:
		return false
	}
}

// analyzeForeach implements spec §4.3 "Foreach": the iterated identifier
// must resolve to a list-typed variable; a fresh scope is pushed binding
// the iteration variable to the list's element type; the body is analyzed;
// the scope is popped.
func (ctx *Context) analyzeForeach(n *ast.Foreach) bool {
	listType, ok := ctx.resolveAssignTarget(n.Loc, n.ListName)
	if !ok {
		return false
	}
	if !listType.IsList {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.ListName,
			"foreach requires a list-typed variable, got %s", listType)
		return false
	}
	elemType := types.Scalar(listType.Kind)
	if listType.Kind == types.Record {
		elemType = types.RecordType(listType.RecordName)
	}
	ctx.Scopes.Push()
	if _, declared := ctx.Scopes.Declare(n.IterVar, elemType); !declared {
		ctx.Sink.Errorf(diagnostics.KindDuplicateDeclaration, n.Loc, n.IterVar,
			"duplicate declaration of iteration variable %q", n.IterVar)
	}
	ok = ctx.analyzeBlockStmts(n.Body)
	ctx.Scopes.Pop()
	return ok
}

// analyzeBlockStmts analyzes a block's statements without pushing a new
// scope of its own — used by foreach, whose scope is pushed once to hold
// both the iteration variable and the body's own locals. (A function body,
// by contrast, goes through analyzeBlock and so gets a frame of its own
// above the parameter scope.)
func (ctx *Context) analyzeBlockStmts(b *ast.Block) bool {
	ok := true
	for _, stmt := range b.Stmts {
		if !ctx.analyzeStmt(stmt) {
			ok = false
		}
	}
	return ok
}

// analyzeReturn implements spec §4.3 "Return": the return expression's
// type must be <= the enclosing expected-return-type (warning if strictly
// less).
//
// At top level, the "enclosing function" is the synthetic entry function
// of spec §4.4's module prelude, not the root scope's nominal Void
// expected-return-type — the entry function's value is a native-codegen
// concern this core only hands off (spec §1), so a top-level `return` is
// only required to be well-typed in isolation, not assignable to any one
// declared type (scenario §8.1 returns an Int, scenario §8.3 returns a
// Double after an up-cast, and both are valid top-level exits). A bare
// top-level `return` is likewise accepted as shorthand for the entry
// function's default exit code, unlike a bare return inside a genuinely
// Void-returning user function.
func (ctx *Context) analyzeReturn(n *ast.Return) bool {
	if ctx.AtTopLevel {
		if n.Value == nil {
			return true
		}
		_, ok := ctx.analyzeExpr(n.Value)
		return ok
	}
	expected := ctx.Scopes.ExpectedReturnType()
	if n.Value == nil {
		if expected.Kind != types.Void {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "return",
				"bare return in a function expecting %s", expected)
			return false
		}
		return true
	}
	return ctx.checkInitOrAssign(n.Loc, "return", expected, n.Value)
}
