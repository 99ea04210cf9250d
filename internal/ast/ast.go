// Package ast defines the Crema abstract syntax tree: a tagged-variant tree
// (one Go struct type per node kind, discriminated by a type switch rather
// than a virtual-dispatch hierarchy — see spec §9 "Inheritance hierarchy of
// node kinds") built and owned by a single compilation unit.
//
// Children are owned by value/unique pointer; nothing in this package holds
// a raw cross-tree reference. Cross-references — a variable access to its
// declaration, a call to its callee — are identifier strings, resolved
// through internal/symbols by internal/analyzer and internal/emitter, never
// stored as a pointer into another part of the tree (spec §4.2, §9
// "Pointer graphs and shared mutable AST nodes").
package ast

import (
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/types"
)

// Expr is any Crema expression node. Every expression carries a mutable
// Type slot, filled in by internal/analyzer and read back by
// internal/emitter — spec §4.2: "Expression nodes additionally expose
// type_of(ctx) -> Type and a mutable type slot."
type Expr interface {
	exprNode()
	Pos() diagnostics.Location
	ExprType() types.Type
	SetExprType(types.Type)
}

// ExprBase is embedded by every concrete Expr to supply the common
// position and mutable-type-slot machinery.
type ExprBase struct {
	Loc  diagnostics.Location
	Type types.Type
}

func (b *ExprBase) Pos() diagnostics.Location    { return b.Loc }
func (b *ExprBase) ExprType() types.Type         { return b.Type }
func (b *ExprBase) SetExprType(t types.Type)     { b.Type = t }

// Stmt is any Crema statement node.
type Stmt interface {
	stmtNode()
	Pos() diagnostics.Location
}

// StmtBase is embedded by every concrete Stmt to supply position tracking.
type StmtBase struct {
	Loc diagnostics.Location
}

func (b *StmtBase) Pos() diagnostics.Location { return b.Loc }

// Block is a sequence of statements sharing one lexical scope. It is both
// an AST node in its own right (a function body, an if-arm, a foreach
// body) and the unit the analyzer pushes/pops a Scope around.
type Block struct {
	StmtBase
	Stmts []Stmt
}

func (*Block) stmtNode() {}
