package emitter

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ainfosec/crema/internal/ast"
	ctypes "github.com/ainfosec/crema/internal/types"
)

// emitExpr dispatches on the expression's concrete type and returns the
// IR value it computes to (spec §4.4's per-node emission table).
func (s *State) emitExpr(expr ast.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return constant.NewInt(types.I64, n.Value), nil
	case *ast.UIntLit:
		return constant.NewInt(types.I64, int64(n.Value)), nil
	case *ast.DoubleLit:
		return constant.NewFloat(types.Double, n.Value), nil
	case *ast.BoolLit:
		return constant.NewBool(n.Value), nil
	case *ast.CharLit:
		return constant.NewInt(types.I8, int64(n.Value)), nil
	case *ast.StringLit:
		return s.emitStringLit(n)
	case *ast.ListLit:
		return s.emitListLit(n)
	case *ast.VariableAccess:
		return s.emitVariableAccess(n)
	case *ast.ListAccess:
		return s.emitListAccess(n)
	case *ast.RecordAccess:
		return s.emitRecordAccess(n)
	case *ast.FunctionCall:
		return s.emitFunctionCall(n)
	case *ast.BinaryOp:
		return s.emitBinaryOp(n)
	case *ast.UnaryOp:
		return s.emitUnaryOp(n)
	default:
		return nil, internalf("emitter: unknown expression type %T", expr)
	}
}

// emitStringLit implements spec §4.4 "Literals": "String literals lower
// to a sequence of str_create + str_append of the constituent characters."
func (s *State) emitStringLit(n *ast.StringLit) (value.Value, error) {
	createFn, ok := s.funcs["str_create"]
	if !ok {
		return nil, internalf("emitter: str_create runtime declaration missing")
	}
	appendFn, ok := s.funcs["str_append"]
	if !ok {
		return nil, internalf("emitter: str_append runtime declaration missing")
	}
	handle := s.cur().NewCall(createFn)
	for _, r := range n.Value {
		s.cur().NewCall(appendFn, handle, constant.NewInt(types.I8, int64(r)))
	}
	return handle, nil
}

// emitListLit builds a list literal by creating an empty list of the
// element kind and appending each element's value in order.
func (s *State) emitListLit(n *ast.ListLit) (value.Value, error) {
	elemKind := n.ExprType().Kind
	createFnName := listConstructorFor(elemKind)
	appendFnName := appendFuncFor(elemKind)
	createFn, ok := s.funcs[createFnName]
	if !ok {
		return nil, internalf("emitter: no runtime constructor for list element kind %v", elemKind)
	}
	appendFn, ok := s.funcs[appendFnName]
	if !ok {
		return nil, internalf("emitter: no runtime append function for list element kind %v", elemKind)
	}
	handle := s.cur().NewCall(createFn)
	elemType := ctypes.Scalar(elemKind)
	for _, elem := range n.Elements {
		v, err := s.emitExpr(elem)
		if err != nil {
			return nil, err
		}
		coerced, err := s.coerce(v, elem.ExprType(), elemType)
		if err != nil {
			return nil, err
		}
		s.cur().NewCall(appendFn, handle, coerced)
	}
	return handle, nil
}

func appendFuncFor(k ctypes.Kind) string {
	switch k {
	case ctypes.Double:
		return "double_list_append"
	case ctypes.Char:
		return "str_append"
	default:
		return "int_list_append"
	}
}

// emitVariableAccess implements spec §4.4 "Variable access": a load from
// the resolved slot.
func (s *State) emitVariableAccess(n *ast.VariableAccess) (value.Value, error) {
	b := s.lookup(n.Name)
	if b == nil {
		return nil, internalf("emitter: access to unresolved variable %q", n.Name)
	}
	return s.cur().NewLoad(s.irType(b.Type), b.Storage), nil
}

// emitListAccess implements spec §4.4 "List access": the runtime's
// `*_retrieve` for the element kind with a loaded list handle and index.
func (s *State) emitListAccess(n *ast.ListAccess) (value.Value, error) {
	baseVal, err := s.emitExpr(n.Base)
	if err != nil {
		return nil, err
	}
	idxVal, err := s.emitExpr(n.Index)
	if err != nil {
		return nil, err
	}
	elemKind := n.ExprType().Kind
	fn, ok := s.funcs[retrieveFuncFor(elemKind)]
	if !ok {
		return nil, internalf("emitter: no runtime retrieve function for element kind %v", elemKind)
	}
	return s.cur().NewCall(fn, baseVal, idxVal), nil
}

// emitRecordAccess implements spec §4.4 "Record access": a field address
// via the record layout, then a load.
func (s *State) emitRecordAccess(n *ast.RecordAccess) (value.Value, error) {
	baseVal, err := s.emitExpr(n.Base)
	if err != nil {
		return nil, err
	}
	baseType := n.Base.ExprType()
	idx, _, err := s.fieldIndex(baseType.RecordName, n.Field)
	if err != nil {
		return nil, err
	}
	addr := s.cur().NewGetElementPtr(s.records[baseType.RecordName], baseVal,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(idx)))
	return s.cur().NewLoad(s.irType(n.ExprType()), addr), nil
}

// emitFunctionCall implements spec §4.4 "Function call": look up the IR
// function, emit argument values (coerced to each parameter's type), emit
// the call.
func (s *State) emitFunctionCall(n *ast.FunctionCall) (value.Value, error) {
	fn, ok := s.funcs[n.Callee]
	if !ok {
		return nil, internalf("emitter: call to unresolved function %q", n.Callee)
	}
	var args []value.Value
	for i, argExpr := range n.Args {
		v, err := s.emitExpr(argExpr)
		if err != nil {
			return nil, err
		}
		if i < len(fn.Params) {
			paramType := paramCremaType(fn.Params[i].Typ, argExpr.ExprType())
			coerced, err := s.coerce(v, argExpr.ExprType(), paramType)
			if err != nil {
				return nil, err
			}
			v = coerced
		}
		args = append(args, v)
	}
	return s.cur().NewCall(fn, args...), nil
}

// paramCremaType recovers the Crema-level type of a scalar parameter from
// its already-lowered IR type (the emitter keeps only the IR signature), so
// that emitFunctionCall can coerce an argument the analyzer accepted as an
// up-cast: a Double parameter yields Double, an i64 parameter yields Int
// (or UInt when the argument already is UInt). Every other parameter,
// including lists, strings and records, takes the argument's own analyzed
// type, which makes the coercion an identity.
func paramCremaType(paramIR types.Type, argType ctypes.Type) ctypes.Type {
	if argType.IsList {
		return argType
	}
	switch paramIR {
	case types.Double:
		return ctypes.TDouble
	case types.I64:
		if argType.Kind == ctypes.UInt {
			return argType
		}
		return ctypes.TInt
	}
	return argType
}

// emitBinaryOp implements spec §4.4 "Binary op": compute Larger(lhs, rhs),
// coerce both operands into it, select the typed instruction.
func (s *State) emitBinaryOp(n *ast.BinaryOp) (value.Value, error) {
	lhsType := n.Left.ExprType()
	rhsType := n.Right.ExprType()
	lhsVal, err := s.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	rhsVal, err := s.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}

	if n.Operator.IsLogical() {
		switch n.Operator {
		case ast.OpLogAnd:
			return s.cur().NewAnd(lhsVal, rhsVal), nil
		case ast.OpLogOr:
			return s.cur().NewOr(lhsVal, rhsVal), nil
		}
	}

	target := ctypes.Larger(lhsType, rhsType)
	if target.Kind == ctypes.Invalid {
		target = lhsType // comparison between equal types; Larger(a,a)==a already, this only guards stray incomparable pairs the analyzer should have rejected
	}
	lhsCoerced, err := s.coerce(lhsVal, lhsType, target)
	if err != nil {
		return nil, err
	}
	rhsCoerced, err := s.coerce(rhsVal, rhsType, target)
	if err != nil {
		return nil, err
	}

	isFloat := target.Kind == ctypes.Double
	isUnsigned := target.Kind == ctypes.UInt

	if n.Operator.IsComparison() {
		if isFloat {
			pred, ok := fcmpPredicateFor(n.Operator)
			if !ok {
				return nil, internalf("emitter: unsupported float comparison operator %q", n.Operator)
			}
			return s.cur().NewFCmp(pred, lhsCoerced, rhsCoerced), nil
		}
		pred, ok := icmpPredicateFor(n.Operator, isUnsigned)
		if !ok {
			return nil, internalf("emitter: unsupported integer comparison operator %q", n.Operator)
		}
		return s.cur().NewICmp(pred, lhsCoerced, rhsCoerced), nil
	}

	switch n.Operator {
	case ast.OpAdd:
		if isFloat {
			return s.cur().NewFAdd(lhsCoerced, rhsCoerced), nil
		}
		return s.cur().NewAdd(lhsCoerced, rhsCoerced), nil
	case ast.OpSub:
		if isFloat {
			return s.cur().NewFSub(lhsCoerced, rhsCoerced), nil
		}
		return s.cur().NewSub(lhsCoerced, rhsCoerced), nil
	case ast.OpMul:
		if isFloat {
			return s.cur().NewFMul(lhsCoerced, rhsCoerced), nil
		}
		return s.cur().NewMul(lhsCoerced, rhsCoerced), nil
	case ast.OpDiv:
		if isFloat {
			return s.cur().NewFDiv(lhsCoerced, rhsCoerced), nil
		}
		if isUnsigned {
			return s.cur().NewUDiv(lhsCoerced, rhsCoerced), nil
		}
		return s.cur().NewSDiv(lhsCoerced, rhsCoerced), nil
	case ast.OpMod:
		if isFloat {
			return s.cur().NewFRem(lhsCoerced, rhsCoerced), nil
		}
		if isUnsigned {
			return s.cur().NewURem(lhsCoerced, rhsCoerced), nil
		}
		return s.cur().NewSRem(lhsCoerced, rhsCoerced), nil
	case ast.OpBitAnd:
		return s.cur().NewAnd(lhsCoerced, rhsCoerced), nil
	case ast.OpBitOr:
		return s.cur().NewOr(lhsCoerced, rhsCoerced), nil
	case ast.OpBitXor:
		return s.cur().NewXor(lhsCoerced, rhsCoerced), nil
	default:
		return nil, internalf("emitter: unsupported binary operator %q", n.Operator)
	}
}

func icmpPredicateFor(op ast.BinaryOperator, unsigned bool) (enum.IPred, bool) {
	switch op {
	case ast.OpEq:
		return enum.IPredEQ, true
	case ast.OpNeq:
		return enum.IPredNE, true
	case ast.OpLt:
		if unsigned {
			return enum.IPredULT, true
		}
		return enum.IPredSLT, true
	case ast.OpLe:
		if unsigned {
			return enum.IPredULE, true
		}
		return enum.IPredSLE, true
	case ast.OpGt:
		if unsigned {
			return enum.IPredUGT, true
		}
		return enum.IPredSGT, true
	case ast.OpGe:
		if unsigned {
			return enum.IPredUGE, true
		}
		return enum.IPredSGE, true
	default:
		return 0, false
	}
}

func fcmpPredicateFor(op ast.BinaryOperator) (enum.FPred, bool) {
	switch op {
	case ast.OpEq:
		return enum.FPredOEQ, true
	case ast.OpNeq:
		return enum.FPredONE, true
	case ast.OpLt:
		return enum.FPredOLT, true
	case ast.OpLe:
		return enum.FPredOLE, true
	case ast.OpGt:
		return enum.FPredOGT, true
	case ast.OpGe:
		return enum.FPredOGE, true
	default:
		return 0, false
	}
}

// emitUnaryOp implements spec §4.1/§4.4's two unary forms: `!` (an XOR
// against `true`, the usual LLVM idiom for boolean not) and unary `-`
// (a 0-minus-x subtraction, float or integer depending on operand type).
func (s *State) emitUnaryOp(n *ast.UnaryOp) (value.Value, error) {
	operand, err := s.emitExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case ast.OpNot:
		return s.cur().NewXor(operand, constant.True), nil
	case ast.OpNegate:
		if n.ExprType().Kind == ctypes.Double {
			return s.cur().NewFNeg(operand), nil
		}
		return s.cur().NewSub(constant.NewInt(operand.Type().(*types.IntType), 0), operand), nil
	default:
		return nil, internalf("emitter: unsupported unary operator %q", n.Operator)
	}
}
