package ast

// BinaryOperator enumerates the operator families of spec §3: arithmetic,
// bitwise, logical and comparison. The analyzer decides the result kind
// (Bool for comparison/logical, Larger(lhs,rhs) for arithmetic/bitwise); the
// emitter picks the concrete instruction (spec §4.4's coercion/instruction
// table).
type BinaryOperator string

const (
	OpAdd BinaryOperator = "+"
	OpSub BinaryOperator = "-"
	OpMul BinaryOperator = "*"
	OpDiv BinaryOperator = "/"
	OpMod BinaryOperator = "%"

	OpBitAnd BinaryOperator = "&"
	OpBitOr  BinaryOperator = "|"
	OpBitXor BinaryOperator = "^"

	OpLogAnd BinaryOperator = "&&"
	OpLogOr  BinaryOperator = "||"

	OpEq  BinaryOperator = "="
	OpNeq BinaryOperator = "!="
	OpLt  BinaryOperator = "<"
	OpLe  BinaryOperator = "<="
	OpGt  BinaryOperator = ">"
	OpGe  BinaryOperator = ">="
)

// IsComparison reports whether op is one of the comparison operators, which
// always yield Bool (spec §4.1 "Comparison/logical operators").
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsLogical reports whether op is a logical (&&, ||) operator.
func (op BinaryOperator) IsLogical() bool {
	return op == OpLogAnd || op == OpLogOr
}

// UnaryOperator enumerates the two unary forms spec §3 lists under logical
// and arithmetic operators: `!` (logical not) and unary `-` (negation).
type UnaryOperator string

const (
	OpNot    UnaryOperator = "!"
	OpNegate UnaryOperator = "-"
)

// IntLit is an integer literal.
type IntLit struct {
	ExprBase
	Value int64
}

func (*IntLit) exprNode() {}

// UIntLit is an unsigned-integer literal.
type UIntLit struct {
	ExprBase
	Value uint64
}

func (*UIntLit) exprNode() {}

// DoubleLit is a floating-point literal.
type DoubleLit struct {
	ExprBase
	Value float64
}

func (*DoubleLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	ExprBase
	Value bool
}

func (*BoolLit) exprNode() {}

// CharLit is a single-character literal.
type CharLit struct {
	ExprBase
	Value rune
}

func (*CharLit) exprNode() {}

// StringLit is a string literal, lowered by the emitter to one str_create
// plus a str_append per constituent character (spec §4.4 "Literals").
type StringLit struct {
	ExprBase
	Value string
}

func (*StringLit) exprNode() {}

// ListLit is a list literal: `[e0, e1, ...]`. All elements must have equal
// type (spec §4.3 "List literal"); ExprBase.Type is list-of(element-type),
// filled in by the analyzer.
type ListLit struct {
	ExprBase
	Elements []Expr
}

func (*ListLit) exprNode() {}

// VariableAccess reads a variable binding by name, resolved through the
// enclosing Scope chain (spec §3 "Scope").
type VariableAccess struct {
	ExprBase
	Name string
}

func (*VariableAccess) exprNode() {}

// ListAccess reads one element of a list-typed expression: `base[index]`.
type ListAccess struct {
	ExprBase
	Base  Expr
	Index Expr
}

func (*ListAccess) exprNode() {}

// RecordAccess reads one field of a record-typed expression: `base.field`.
type RecordAccess struct {
	ExprBase
	Base  Expr
	Field string
}

func (*RecordAccess) exprNode() {}

// FunctionCall invokes a top-level function declaration by name with the
// given argument expressions. Crema has no first-class functions (spec §1
// Non-goals), so Callee is always a plain name, never an arbitrary
// expression.
type FunctionCall struct {
	ExprBase
	Callee string
	Args   []Expr
}

func (*FunctionCall) exprNode() {}

// BinaryOp applies a binary operator to two operands.
type BinaryOp struct {
	ExprBase
	Operator BinaryOperator
	Left     Expr
	Right    Expr
}

func (*BinaryOp) exprNode() {}

// UnaryOp applies a unary operator to one operand.
type UnaryOp struct {
	ExprBase
	Operator UnaryOperator
	Operand  Expr
}

func (*UnaryOp) exprNode() {}
