package ast

import "github.com/ainfosec/crema/internal/types"

// VarDecl declares a variable, `name = init` in the current scope.
// Init is nil for a bare declaration with no initializer.
type VarDecl struct {
	StmtBase
	Name        string
	DeclaredType types.Type
	Init        Expr
}

func (*VarDecl) stmtNode() {}

// Field is one member of a record declaration, or one parameter of a
// function declaration — both are "an ordered list of variable bindings"
// per spec §3.
type Field struct {
	Name string
	Type types.Type
}

// RecordDecl declares a named aggregate of typed fields. Member order is
// load-bearing: it defines the IR layout (spec §3 "Record declaration").
type RecordDecl struct {
	StmtBase
	Name    string
	Members []Field
}

func (*RecordDecl) stmtNode() {}

// FuncDecl declares a top-level function. Body == nil denotes an external
// (stdlib) declaration with no user-supplied body (spec §3 "Function
// declaration": "body = ∅ denotes an external declaration").
type FuncDecl struct {
	StmtBase
	Name       string
	ReturnType types.Type
	Params     []Field
	Body       *Block
}

func (*FuncDecl) stmtNode() {}

// AssignScalar assigns to a plain variable: `name = value`.
type AssignScalar struct {
	StmtBase
	Name  string
	Value Expr
}

func (*AssignScalar) stmtNode() {}

// AssignListElt assigns to one element of a list-typed variable:
// `name[index] = value`.
type AssignListElt struct {
	StmtBase
	Name  string
	Index Expr
	Value Expr
}

func (*AssignListElt) stmtNode() {}

// AssignRecordField assigns to one field of a record-typed variable:
// `name.field = value`.
type AssignRecordField struct {
	StmtBase
	Name  string
	Field string
	Value Expr
}

func (*AssignRecordField) stmtNode() {}

// If represents one if/elseif/else chain. Else is nil (no else clause), a
// *Block (a terminal `else { ... }`), or an *If (an `elseif`, chained).
type If struct {
	StmtBase
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block, or *If
}

func (*If) stmtNode() {}

// Foreach iterates a list-typed variable, binding each element in turn to
// IterVar inside a fresh scope (spec §4.3 "Foreach").
type Foreach struct {
	StmtBase
	ListName string
	IterVar  string
	Body     *Block
}

func (*Foreach) stmtNode() {}

// Return returns from the enclosing function. Value is nil for a bare
// `return` in a Void-returning function.
type Return struct {
	StmtBase
	Value Expr
}

func (*Return) stmtNode() {}

// ExprStmt wraps a call expression used as a statement (spec's runtime
// calls like int_println(v) appear this way in scenario 6 of §8).
type ExprStmt struct {
	StmtBase
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
