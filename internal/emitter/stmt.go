package emitter

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ainfosec/crema/internal/ast"
	ctypes "github.com/ainfosec/crema/internal/types"
)

// emitStmt dispatches on the statement's concrete type, mirroring
// internal/analyzer's analyzeStmt switch (spec §9's shared "single dispatch
// on the variant tag" design for both passes).
func (s *State) emitStmt(stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.Block:
		return s.emitBlock(n)
	case *ast.VarDecl:
		return s.emitVarDecl(n)
	case *ast.RecordDecl, *ast.FuncDecl:
		return nil // already handled by declareRecords/declareFunctionSignatures/emitUserFunctionBodies
	case *ast.AssignScalar:
		return s.emitAssignScalar(n)
	case *ast.AssignListElt:
		return s.emitAssignListElt(n)
	case *ast.AssignRecordField:
		return s.emitAssignRecordField(n)
	case *ast.If:
		return s.emitIf(n)
	case *ast.Foreach:
		return s.emitForeach(n)
	case *ast.Return:
		return s.emitReturn(n)
	case *ast.ExprStmt:
		_, err := s.emitExpr(n.Expr)
		return err
	default:
		return internalf("emitter: unknown statement type %T", stmt)
	}
}

func (s *State) emitBlock(b *ast.Block) error {
	s.pushScope()
	err := s.emitBlockStmts(b)
	s.popScope()
	return err
}

// emitBlockStmts emits a block's statements without pushing its own
// scope — used for function bodies and foreach bodies, which push one
// shared scope (for parameters or the iteration variable) themselves.
func (s *State) emitBlockStmts(b *ast.Block) error {
	for _, stmt := range b.Stmts {
		if err := s.emitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// emitVarDecl implements spec §4.4 "Variable declaration": a global at
// top level, a stack slot otherwise; runtime-constructed default for an
// uninitialized list/string; the initializer's value (coerced) otherwise.
func (s *State) emitVarDecl(n *ast.VarDecl) error {
	irT := s.irType(n.DeclaredType)
	storage := s.allocateSlot(n.Name, irT)

	switch {
	case n.Init != nil:
		val, err := s.emitExpr(n.Init)
		if err != nil {
			return err
		}
		coerced, err := s.coerce(val, n.Init.ExprType(), n.DeclaredType)
		if err != nil {
			return err
		}
		s.cur().NewStore(coerced, storage)
	case n.DeclaredType.IsList && n.DeclaredType.Kind != ctypes.Record:
		ctor := listConstructorFor(n.DeclaredType.Kind)
		if ctor != "" {
			if fn, ok := s.funcs[ctor]; ok {
				call := s.cur().NewCall(fn)
				s.cur().NewStore(call, storage)
			}
		}
	case n.DeclaredType.Kind == ctypes.String:
		if fn, ok := s.funcs["str_create"]; ok {
			call := s.cur().NewCall(fn)
			s.cur().NewStore(call, storage)
		}
	}

	s.declare(n.Name, &Binding{Type: n.DeclaredType, Storage: storage})
	return nil
}

func listConstructorFor(k ctypes.Kind) string {
	switch k {
	case ctypes.Int, ctypes.UInt, ctypes.Bool:
		return "int_list_create"
	case ctypes.Double:
		return "double_list_create"
	case ctypes.Char:
		return "str_create"
	default:
		return ""
	}
}

// allocateSlot implements the global-vs-stack-slot split of spec §4.4's
// "Variable declaration": a module-level *ir.Global with an undefined
// initializer at top level, an *ir.InstAlloca in the current function's
// entry block otherwise. Both *ir.Global and *ir.InstAlloca are
// pointer-typed value.Value implementations, so the rest of the emitter
// (loads, stores, GEPs) never needs to know which one it's holding.
func (s *State) allocateSlot(name string, irT types.Type) value.Value {
	if s.atTopLevel {
		g := s.Module.NewGlobal(name, irT)
		g.Init = constant.NewUndef(irT)
		return g
	}
	return s.entryBlockOf(s.curFunc).NewAlloca(irT)
}

// entryBlockOf returns a function's first block, the canonical place to
// hoist every stack allocation to (spec §4.4: "a stack slot in the current
// function's entry block"), regardless of which block is currently the
// insertion point when the declaration is reached.
func (s *State) entryBlockOf(fn *ir.Func) *ir.Block {
	return fn.Blocks[0]
}
