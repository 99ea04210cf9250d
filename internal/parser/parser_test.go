package parser

import (
	"fmt"
	"testing"

	"github.com/ainfosec/crema/internal/ast"
)

// parseString is a test helper mirroring
// sentra/internal/parser/parser_test.go's parseString: scan then parse,
// returning the resulting statements and any accumulated errors.
func parseString(input string) (block *ast.Block, errs []error) {
	lex := NewLexer(input)
	tokens := lex.ScanTokens()
	errs = append(errs, lex.Errors()...)
	p := NewParser(tokens)
	block = p.Parse()
	errs = append(errs, p.Errors...)
	return
}

func assertParseSuccess(t *testing.T, input, description string) *ast.Block {
	t.Helper()
	block, errs := parseString(input)
	if len(errs) > 0 {
		t.Errorf("%s: parsing failed with errors: %v", description, errs)
		return nil
	}
	return block
}

func assertParseError(t *testing.T, input, description string) {
	t.Helper()
	_, errs := parseString(input)
	if len(errs) == 0 {
		t.Errorf("%s: expected parsing to fail but it succeeded", description)
	}
}

func TestVarDecl(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"int decl with init", "int a = 3", true},
		{"int decl bare", "int a", true},
		{"double decl", "double b = 2.5", true},
		{"bool decl", "bool flag = true", true},
		{"list decl with literal", "int[] xs = [1, 2, 3]", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.shouldPass {
				assertParseSuccess(t, tc.input, tc.name)
			} else {
				assertParseError(t, tc.input, tc.name)
			}
		})
	}
}

func TestScenario1SimpleArithmetic(t *testing.T) {
	block := assertParseSuccess(t, "int a = 3  int b = a + 4  return b", "scenario 1")
	if block == nil {
		return
	}
	if len(block.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.VarDecl); !ok {
		t.Errorf("stmt 0 should be a VarDecl, got %T", block.Stmts[0])
	}
	if _, ok := block.Stmts[2].(*ast.Return); !ok {
		t.Errorf("stmt 2 should be a Return, got %T", block.Stmts[2])
	}
}

func TestScenario4Recursion(t *testing.T) {
	block := assertParseSuccess(t, "def int f() { return f() }", "scenario 4")
	if block == nil {
		return
	}
	fn, ok := block.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected a FuncDecl, got %T", block.Stmts[0])
	}
	if fn.Name != "f" || fn.Body == nil || len(fn.Body.Stmts) != 1 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
}

func TestScenario5RecordAccess(t *testing.T) {
	block := assertParseSuccess(t, "struct Pt { int x  int y }  Pt p  p.x = 5  return p.x", "scenario 5")
	if block == nil {
		return
	}
	if len(block.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d: %v", len(block.Stmts), block.Stmts)
	}
	rec, ok := block.Stmts[0].(*ast.RecordDecl)
	if !ok || rec.Name != "Pt" || len(rec.Members) != 2 {
		t.Fatalf("unexpected record decl: %+v", block.Stmts[0])
	}
	decl, ok := block.Stmts[1].(*ast.VarDecl)
	if !ok || decl.DeclaredType.RecordName != "Pt" {
		t.Fatalf("expected var decl of type Pt, got %+v", block.Stmts[1])
	}
	assign, ok := block.Stmts[2].(*ast.AssignRecordField)
	if !ok || assign.Name != "p" || assign.Field != "x" {
		t.Fatalf("expected record field assignment, got %+v", block.Stmts[2])
	}
}

func TestScenario6Foreach(t *testing.T) {
	block := assertParseSuccess(t, "int[] xs = [1,2,3]  foreach (xs as v) { int_println(v) }", "scenario 6")
	if block == nil {
		return
	}
	fe, ok := block.Stmts[1].(*ast.Foreach)
	if !ok || fe.ListName != "xs" || fe.IterVar != "v" {
		t.Fatalf("expected foreach over xs as v, got %+v", block.Stmts[1])
	}
	if len(fe.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in foreach body, got %d", len(fe.Body.Stmts))
	}
}

func TestScenario8IfStringCondition(t *testing.T) {
	block := assertParseSuccess(t, `if ("hi") { }`, "scenario 8")
	if block == nil {
		return
	}
	ifs, ok := block.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected an If, got %T", block.Stmts[0])
	}
	if _, ok := ifs.Cond.(*ast.StringLit); !ok {
		t.Fatalf("expected string-literal condition, got %T", ifs.Cond)
	}
}

func TestIfElseifElse(t *testing.T) {
	block := assertParseSuccess(t, `
		int a = 1
		if (a) { return 1 } elseif (a) { return 2 } else { return 3 }
	`, "if/elseif/else chain")
	if block == nil {
		return
	}
	top, ok := block.Stmts[1].(*ast.If)
	if !ok {
		t.Fatalf("expected top If, got %T", block.Stmts[1])
	}
	mid, ok := top.Else.(*ast.If)
	if !ok {
		t.Fatalf("expected elseif to parse as a nested If, got %T", top.Else)
	}
	if _, ok := mid.Else.(*ast.Block); !ok {
		t.Fatalf("expected final else to parse as a Block, got %T", mid.Else)
	}
}

func TestListElementAssignment(t *testing.T) {
	block := assertParseSuccess(t, "int[] xs = [1]\nxs[0] = 9", "list element assignment")
	if block == nil {
		return
	}
	assign, ok := block.Stmts[1].(*ast.AssignListElt)
	if !ok || assign.Name != "xs" {
		t.Fatalf("expected list element assignment, got %+v", block.Stmts[1])
	}
}

func TestBinaryOperatorPrecedence(t *testing.T) {
	block := assertParseSuccess(t, "int a = 1 + 2 * 3", "precedence")
	if block == nil {
		return
	}
	decl := block.Stmts[0].(*ast.VarDecl)
	bin, ok := decl.Init.(*ast.BinaryOp)
	if !ok || bin.Operator != ast.OpAdd {
		t.Fatalf("expected top-level '+' , got %+v", decl.Init)
	}
	rhs, ok := bin.Right.(*ast.BinaryOp)
	if !ok || rhs.Operator != ast.OpMul {
		t.Fatalf("expected '*' to bind tighter than '+', got %+v", bin.Right)
	}
}

func TestMalformedInputsFail(t *testing.T) {
	tests := []string{
		"int a = ",
		"if (a {",
		"struct { int x }",
		"def int f( {",
	}
	for _, input := range tests {
		t.Run(fmt.Sprintf("malformed: %s", input), func(t *testing.T) {
			assertParseError(t, input, "malformed input")
		})
	}
}
