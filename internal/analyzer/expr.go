package analyzer

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/types"
)

// analyzeExpr dispatches on the expression's concrete type (spec §9's
// variant-tag dispatch, mirrored from analyzeStmt), computes its type,
// stashes it on the node's mutable Type slot via SetExprType so
// internal/emitter never has to re-derive it, and reports whether the
// expression and everything beneath it is well-typed.
func (ctx *Context) analyzeExpr(expr ast.Expr) (types.Type, bool) {
	t, ok := ctx.analyzeExprKind(expr)
	expr.SetExprType(t)
	return t, ok
}

func (ctx *Context) analyzeExprKind(expr ast.Expr) (types.Type, bool) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return types.TInt, true
	case *ast.UIntLit:
		return types.TUInt, true
	case *ast.DoubleLit:
		return types.TDouble, true
	case *ast.BoolLit:
		return types.TBool, true
	case *ast.CharLit:
		return types.TChar, true
	case *ast.StringLit:
		return types.TString, true
	case *ast.ListLit:
		return ctx.analyzeListLit(n)
	case *ast.VariableAccess:
		return ctx.analyzeVariableAccess(n)
	case *ast.ListAccess:
		return ctx.analyzeListAccess(n)
	case *ast.RecordAccess:
		return ctx.analyzeRecordAccess(n)
	case *ast.FunctionCall:
		return ctx.analyzeFunctionCall(n)
	case *ast.BinaryOp:
		return ctx.analyzeBinaryOp(n)
	case *ast.UnaryOp:
		return ctx.analyzeUnaryOp(n)
	default:
		panic("analyzer: unknown expression type")
	}
}

// analyzeListLit implements spec §4.3 "List literal": every element must
// analyze and all must share exactly the same type (no implicit widening
// between elements — Larger is not used here, since e.g. `[1, 2.0]` is
// rejected rather than silently promoted to a double list).
func (ctx *Context) analyzeListLit(n *ast.ListLit) (types.Type, bool) {
	if len(n.Elements) == 0 {
		return types.AnyList, true
	}
	ok := true
	first, firstOk := ctx.analyzeExpr(n.Elements[0])
	if !firstOk {
		ok = false
	}
	for _, elem := range n.Elements[1:] {
		t, elemOk := ctx.analyzeExpr(elem)
		if !elemOk {
			ok = false
			continue
		}
		if !types.Equal(t, first) {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "list literal",
				"list literal elements must share one type: %s vs %s", first, t)
			ok = false
		}
	}
	if !ok {
		return types.TInvalid, false
	}
	if first.Kind == types.Record {
		return types.ListOfRecord(first.RecordName), true
	}
	return types.ListOf(first.Kind), true
}

func (ctx *Context) analyzeVariableAccess(n *ast.VariableAccess) (types.Type, bool) {
	b, ok := ctx.Scopes.Lookup(n.Name)
	if !ok {
		ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, n.Name,
			"undefined variable %q", n.Name)
		return types.TInvalid, false
	}
	return b.Type, true
}

// analyzeListAccess implements spec §4.3 "List access": the base must be
// list-typed and the index must be Int or UInt; result type is the base's
// element type.
func (ctx *Context) analyzeListAccess(n *ast.ListAccess) (types.Type, bool) {
	baseType, baseOk := ctx.analyzeExpr(n.Base)
	idxType, idxOk := ctx.analyzeExpr(n.Index)
	ok := baseOk && idxOk
	if baseOk && !baseType.IsList {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "[]",
			"list access on non-list expression of type %s", baseType)
		ok = false
	}
	if idxOk && idxType.Kind != types.Int && idxType.Kind != types.UInt {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "[]",
			"list index must be Int or UInt, got %s", idxType)
		ok = false
	}
	if !ok || !baseType.IsList {
		return types.TInvalid, false
	}
	if baseType.Kind == types.Record {
		return types.RecordType(baseType.RecordName), true
	}
	return types.Scalar(baseType.Kind), true
}

// analyzeRecordAccess implements spec §4.3 "Record access": the base must
// be record-typed, and Field must name one of its members.
func (ctx *Context) analyzeRecordAccess(n *ast.RecordAccess) (types.Type, bool) {
	baseType, baseOk := ctx.analyzeExpr(n.Base)
	if !baseOk {
		return types.TInvalid, false
	}
	if baseType.Kind != types.Record {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Field,
			"field access on non-record expression of type %s", baseType)
		return types.TInvalid, false
	}
	fieldType, found := ctx.lookupRecordField(baseType.RecordName, n.Field)
	if !found {
		ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, n.Field,
			"record %q has no field %q", baseType.RecordName, n.Field)
		return types.TInvalid, false
	}
	return fieldType, true
}

// analyzeFunctionCall implements spec §4.3 "Function call": Callee must
// name a registered function, the argument count must match, and each
// argument must be assignable to the corresponding parameter type (warning
// on up-cast, same rule as assignment). The call's type is the function's
// declared return type.
func (ctx *Context) analyzeFunctionCall(n *ast.FunctionCall) (types.Type, bool) {
	fn, exists := ctx.Tables.Functions[n.Callee]
	if !exists {
		for _, arg := range n.Args {
			ctx.analyzeExpr(arg)
		}
		ctx.Sink.Errorf(diagnostics.KindUndefinedReference, n.Loc, n.Callee,
			"call to undefined function %q", n.Callee)
		return types.TInvalid, false
	}
	ok := true
	if len(n.Args) != len(fn.Params) {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Callee,
			"function %q expects %d argument(s), got %d", n.Callee, len(fn.Params), len(n.Args))
		ok = false
	}
	count := len(n.Args)
	if len(fn.Params) < count {
		count = len(fn.Params)
	}
	for i := 0; i < count; i++ {
		param := fn.Params[i]
		if types.IsAnyList(param.Type) {
			argType, argOk := ctx.analyzeExpr(n.Args[i])
			if argOk && !argType.IsList {
				ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, n.Callee,
					"argument %d to %q must be a list, got %s", i+1, n.Callee, argType)
				ok = false
			} else if !argOk {
				ok = false
			}
			continue
		}
		if !ctx.checkInitOrAssign(n.Loc, n.Callee, param.Type, n.Args[i]) {
			ok = false
		}
	}
	// Extra arguments beyond the shorter of the two lists are still
	// analyzed, to surface their own diagnostics even though the call is
	// already known to be arity-mismatched.
	for i := count; i < len(n.Args); i++ {
		ctx.analyzeExpr(n.Args[i])
	}
	if !ok {
		return fn.ReturnType, false
	}
	return fn.ReturnType, true
}

// analyzeBinaryOp implements spec §4.1 "Binary operators": comparison and
// logical operators always yield Bool; arithmetic/bitwise operators yield
// Larger(lhs, rhs), which is Invalid (a type-mismatch error) when the two
// operand types are incomparable.
func (ctx *Context) analyzeBinaryOp(n *ast.BinaryOp) (types.Type, bool) {
	lhs, lhsOk := ctx.analyzeExpr(n.Left)
	rhs, rhsOk := ctx.analyzeExpr(n.Right)
	if !lhsOk || !rhsOk {
		return types.TInvalid, false
	}
	if n.Operator.IsComparison() {
		if types.Larger(lhs, rhs).Kind == types.Invalid && !types.Equal(lhs, rhs) {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, string(n.Operator),
				"cannot compare %s and %s", lhs, rhs)
			return types.TInvalid, false
		}
		return types.TBool, true
	}
	if n.Operator.IsLogical() {
		if lhs.Kind != types.Bool || rhs.Kind != types.Bool {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, string(n.Operator),
				"operator %q requires Bool operands, got %s and %s", n.Operator, lhs, rhs)
			return types.TInvalid, false
		}
		return types.TBool, true
	}
	result := types.Larger(lhs, rhs)
	if result.Kind == types.Invalid || result.IsList {
		ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, string(n.Operator),
			"operator %q is not defined between %s and %s", n.Operator, lhs, rhs)
		return types.TInvalid, false
	}
	return result, true
}

// analyzeUnaryOp implements spec §4.1: `!` requires Bool and yields Bool;
// unary `-` requires a non-list operand of kind Int, UInt, Double, Char or
// Bool and yields that same type.
func (ctx *Context) analyzeUnaryOp(n *ast.UnaryOp) (types.Type, bool) {
	operand, ok := ctx.analyzeExpr(n.Operand)
	if !ok {
		return types.TInvalid, false
	}
	switch n.Operator {
	case ast.OpNot:
		if operand.Kind != types.Bool || operand.IsList {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "!",
				"operator \"!\" requires a Bool operand, got %s", operand)
			return types.TInvalid, false
		}
		return types.TBool, true
	case ast.OpNegate:
		if operand.IsList {
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "-",
				"unary \"-\" does not apply to list type %s", operand)
			return types.TInvalid, false
		}
		switch operand.Kind {
		case types.Int, types.UInt, types.Double, types.Char, types.Bool:
			return operand, true
		default:
			ctx.Sink.Errorf(diagnostics.KindTypeMismatch, n.Loc, "-",
				"unary \"-\" does not apply to %s", operand)
			return types.TInvalid, false
		}
	default:
		panic("analyzer: unknown unary operator")
	}
}
