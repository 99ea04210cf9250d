package analyzer

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
)

// checkAllRecursion implements spec §4.3's whole-program recursion check:
// Crema forbids a function from (directly or transitively) calling itself.
// Grounded on sentra/internal/compiler/hoisting_compiler.go's
// collectFunctionFromStmt walk: a DFS over the call graph built from every
// registered function's body, started once per function and tracking only
// the functions on the current DFS path (removed again on backtrack), since
// two unrelated functions are allowed to each call a third without that
// being recursion.
func (ctx *Context) checkAllRecursion(root *ast.Block) {
	calls := map[string][]string{}
	for name, fn := range ctx.Tables.Functions {
		if fn.Body == nil {
			calls[name] = nil
			continue
		}
		calls[name] = collectCallsBlock(fn.Body)
	}

	reported := map[string]bool{}
	for _, stmt := range root.Stmts {
		fn, ok := stmt.(*ast.FuncDecl)
		if !ok || fn.Body == nil || reported[fn.Name] {
			continue
		}
		if path, cyclic := findCycle(fn.Name, calls); cyclic {
			reported[fn.Name] = true
			ctx.Sink.Errorf(diagnostics.KindRecursion, fn.Loc, fn.Name,
				"function %q is involved in a recursive call cycle: %s", fn.Name, formatCycle(path))
		}
	}
}

// findCycle runs a DFS from start over the call graph, returning the first
// cycle found that passes back through start.
func findCycle(start string, calls map[string][]string) ([]string, bool) {
	var path []string
	onPath := map[string]bool{}

	var visit func(name string) bool
	visit = func(name string) bool {
		path = append(path, name)
		onPath[name] = true
		for _, callee := range calls[name] {
			if callee == start {
				path = append(path, callee)
				return true
			}
			if onPath[callee] {
				continue // cycle not involving start; not this function's concern
			}
			if _, known := calls[callee]; !known {
				continue // call to an undefined function; reported elsewhere
			}
			if visit(callee) {
				return true
			}
		}
		path = path[:len(path)-1]
		onPath[name] = false
		return false
	}
	found := visit(start)
	return path, found
}

func formatCycle(path []string) string {
	s := ""
	for i, name := range path {
		if i > 0 {
			s += " -> "
		}
		s += name
	}
	return s
}

// collectCallsBlock gathers the callee names of every FunctionCall
// reachable within a block's statements, in source order with duplicates
// preserved (the caller only cares about set membership, via calls[name]
// iteration in findCycle, so order and duplicates are harmless).
func collectCallsBlock(b *ast.Block) []string {
	var out []string
	for _, stmt := range b.Stmts {
		out = append(out, collectCallsStmt(stmt)...)
	}
	return out
}

func collectCallsStmt(stmt ast.Stmt) []string {
	switch n := stmt.(type) {
	case *ast.Block:
		return collectCallsBlock(n)
	case *ast.VarDecl:
		if n.Init != nil {
			return collectCallsExpr(n.Init)
		}
	case *ast.RecordDecl, *ast.FuncDecl:
		// nested/forward declarations don't contribute call edges of their
		// own here; FuncDecl bodies are walked from their own table entry.
		return nil
	case *ast.AssignScalar:
		return collectCallsExpr(n.Value)
	case *ast.AssignListElt:
		return append(collectCallsExpr(n.Index), collectCallsExpr(n.Value)...)
	case *ast.AssignRecordField:
		return collectCallsExpr(n.Value)
	case *ast.If:
		out := collectCallsExpr(n.Cond)
		out = append(out, collectCallsBlock(n.Then)...)
		if n.Else != nil {
			out = append(out, collectCallsStmt(n.Else)...)
		}
		return out
	case *ast.Foreach:
		return collectCallsBlock(n.Body)
	case *ast.Return:
		if n.Value != nil {
			return collectCallsExpr(n.Value)
		}
	case *ast.ExprStmt:
		return collectCallsExpr(n.Expr)
	}
	return nil
}

func collectCallsExpr(expr ast.Expr) []string {
	switch n := expr.(type) {
	case *ast.ListLit:
		var out []string
		for _, e := range n.Elements {
			out = append(out, collectCallsExpr(e)...)
		}
		return out
	case *ast.ListAccess:
		return append(collectCallsExpr(n.Base), collectCallsExpr(n.Index)...)
	case *ast.RecordAccess:
		return collectCallsExpr(n.Base)
	case *ast.FunctionCall:
		out := []string{n.Callee}
		for _, a := range n.Args {
			out = append(out, collectCallsExpr(a)...)
		}
		return out
	case *ast.BinaryOp:
		return append(collectCallsExpr(n.Left), collectCallsExpr(n.Right)...)
	case *ast.UnaryOp:
		return collectCallsExpr(n.Operand)
	default:
		return nil
	}
}
