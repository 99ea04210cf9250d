package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print renders block as Crema-ish source text, for the driver's `-p`
// pretty-printing mode (spec §6 "Driver CLI"). Every node type is handled
// by one type switch rather than a virtual print() method per node, per
// spec §9's preference for tagged variants over a node hierarchy.
func Print(out io.Writer, block *Block) {
	p := &printer{out: out}
	p.block(block, 0)
}

type printer struct {
	out io.Writer
}

func (p *printer) indent(depth int) string { return strings.Repeat("  ", depth) }

func (p *printer) block(b *Block, depth int) {
	for _, s := range b.Stmts {
		p.stmt(s, depth)
	}
}

func (p *printer) stmt(s Stmt, depth int) {
	ind := p.indent(depth)
	switch n := s.(type) {
	case *VarDecl:
		if n.Init != nil {
			fmt.Fprintf(p.out, "%s%s %s = %s\n", ind, typeName(n.DeclaredType), n.Name, p.exprStr(n.Init))
		} else {
			fmt.Fprintf(p.out, "%s%s %s\n", ind, typeName(n.DeclaredType), n.Name)
		}
	case *RecordDecl:
		fmt.Fprintf(p.out, "%sstruct %s {\n", ind, n.Name)
		for _, m := range n.Members {
			fmt.Fprintf(p.out, "%s  %s %s\n", ind, typeName(m.Type), m.Name)
		}
		fmt.Fprintf(p.out, "%s}\n", ind)
	case *FuncDecl:
		params := make([]string, len(n.Params))
		for i, pr := range n.Params {
			params[i] = fmt.Sprintf("%s %s", typeName(pr.Type), pr.Name)
		}
		fmt.Fprintf(p.out, "%sdef %s %s(%s)", ind, typeName(n.ReturnType), n.Name, strings.Join(params, ", "))
		if n.Body == nil {
			fmt.Fprintf(p.out, " extern\n")
			return
		}
		fmt.Fprintf(p.out, " {\n")
		p.block(n.Body, depth+1)
		fmt.Fprintf(p.out, "%s}\n", ind)
	case *AssignScalar:
		fmt.Fprintf(p.out, "%s%s = %s\n", ind, n.Name, p.exprStr(n.Value))
	case *AssignListElt:
		fmt.Fprintf(p.out, "%s%s[%s] = %s\n", ind, n.Name, p.exprStr(n.Index), p.exprStr(n.Value))
	case *AssignRecordField:
		fmt.Fprintf(p.out, "%s%s.%s = %s\n", ind, n.Name, n.Field, p.exprStr(n.Value))
	case *If:
		fmt.Fprintf(p.out, "%sif (%s) {\n", ind, p.exprStr(n.Cond))
		p.block(n.Then, depth+1)
		fmt.Fprintf(p.out, "%s}", ind)
		p.elseClause(n.Else, depth)
	case *Foreach:
		fmt.Fprintf(p.out, "%sforeach (%s as %s) {\n", ind, n.ListName, n.IterVar)
		p.block(n.Body, depth+1)
		fmt.Fprintf(p.out, "%s}\n", ind)
	case *Return:
		if n.Value != nil {
			fmt.Fprintf(p.out, "%sreturn %s\n", ind, p.exprStr(n.Value))
		} else {
			fmt.Fprintf(p.out, "%sreturn\n", ind)
		}
	case *ExprStmt:
		fmt.Fprintf(p.out, "%s%s\n", ind, p.exprStr(n.Expr))
	default:
		fmt.Fprintf(p.out, "%s<unknown stmt %T>\n", ind, n)
	}
}

func (p *printer) elseClause(e Stmt, depth int) {
	ind := p.indent(depth)
	switch n := e.(type) {
	case nil:
		fmt.Fprintf(p.out, "\n")
	case *Block:
		fmt.Fprintf(p.out, " else {\n")
		p.block(n, depth+1)
		fmt.Fprintf(p.out, "%s}\n", ind)
	case *If:
		fmt.Fprintf(p.out, " else if (%s) {\n", p.exprStr(n.Cond))
		p.block(n.Then, depth+1)
		fmt.Fprintf(p.out, "%s}", ind)
		p.elseClause(n.Else, depth)
	}
}

func (p *printer) exprStr(e Expr) string {
	switch n := e.(type) {
	case *IntLit:
		return fmt.Sprintf("%d", n.Value)
	case *UIntLit:
		return fmt.Sprintf("%du", n.Value)
	case *DoubleLit:
		return fmt.Sprintf("%g", n.Value)
	case *BoolLit:
		return fmt.Sprintf("%t", n.Value)
	case *CharLit:
		return fmt.Sprintf("%q", n.Value)
	case *StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *ListLit:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = p.exprStr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *VariableAccess:
		return n.Name
	case *ListAccess:
		return fmt.Sprintf("%s[%s]", p.exprStr(n.Base), p.exprStr(n.Index))
	case *RecordAccess:
		return fmt.Sprintf("%s.%s", p.exprStr(n.Base), n.Field)
	case *FunctionCall:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = p.exprStr(a)
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(parts, ", "))
	case *BinaryOp:
		return fmt.Sprintf("(%s %s %s)", p.exprStr(n.Left), n.Operator, p.exprStr(n.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s%s)", n.Operator, p.exprStr(n.Operand))
	default:
		return fmt.Sprintf("<unknown expr %T>", n)
	}
}

func typeName(t interface{ String() string }) string { return t.String() }
