package parser

import (
	"fmt"

	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/types"
)

// Parser is a recursive-descent parser over a Lexer's token stream,
// grounded on sentra/internal/parser/parser.go's match/check/consume/advance
// helper set and precedence-climbing binary-expression parser, trimmed to
// Crema's grammar (spec §3's statement/expression table).
type Parser struct {
	tokens  []Token
	current int
	Errors  []error

	// knownRecords tracks record names declared so far, so the statement
	// dispatcher can recognize `RecordName ident` as a variable declaration
	// of record type rather than two back-to-back expression statements.
	knownRecords map[string]bool
}

// NewParser returns a parser over tokens (as produced by Lexer.ScanTokens).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, knownRecords: make(map[string]bool)}
}

// Parse parses the token stream as a sequence of top-level statements and
// returns the root block. Parse errors are collected in p.Errors rather
// than panicking; callers should check len(p.Errors) == 0 before handing
// the result to internal/analyzer.
func (p *Parser) Parse() *ast.Block {
	root := &ast.Block{}
	for !p.isAtEnd() {
		root.Stmts = append(root.Stmts, p.statement())
	}
	return root
}

func (p *Parser) loc() diagnostics.Location {
	t := p.peek()
	return diagnostics.Location{Line: t.Line, Column: t.Column}
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) peekType() TokenType { return p.peek().Type }

func (p *Parser) peekAhead(n int) Token {
	idx := p.current + n
	if idx >= len(p.tokens) {
		return Token{Type: TokEOF}
	}
	return p.tokens[idx]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return Token{}
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool { return p.peekType() == TokEOF }

func (p *Parser) check(t TokenType) bool { return p.peekType() == t }

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t TokenType, msg string) Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf("%s (got %s %q)", msg, p.peekType(), p.peek().Lexeme)
	return p.peek()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.Errors = append(p.Errors, fmt.Errorf("line %d: %s", p.peek().Line, fmt.Sprintf(format, args...)))
	if !p.isAtEnd() {
		p.advance()
	}
}

// isTypeStart reports whether the current token can begin a type name:
// a builtin type keyword, or an identifier already known to be a declared
// record name.
func (p *Parser) isTypeStart() bool {
	switch p.peekType() {
	case TokKwInt, TokKwUInt, TokKwDouble, TokKwChar, TokKwBool, TokKwVoid:
		return true
	case TokIdent:
		return p.knownRecords[p.peek().Lexeme]
	}
	return false
}

func (p *Parser) parseType() types.Type {
	var base types.Type
	switch {
	case p.match(TokKwInt):
		base = types.TInt
	case p.match(TokKwUInt):
		base = types.TUInt
	case p.match(TokKwDouble):
		base = types.TDouble
	case p.match(TokKwChar):
		base = types.TChar
	case p.match(TokKwBool):
		base = types.TBool
	case p.match(TokKwVoid):
		base = types.TVoid
	case p.check(TokIdent):
		name := p.advance().Lexeme
		base = types.RecordType(name)
	default:
		p.errorf("expected a type name")
		return types.TInvalid
	}
	if p.match(TokLBracket) {
		p.consume(TokRBracket, "expected ']' after '[' in list type")
		base.IsList = true
	}
	return base
}

// ---- statements ----

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.check(TokKwStruct):
		return p.recordDecl()
	case p.check(TokKwDef):
		return p.funcDecl()
	case p.check(TokKwReturn):
		return p.returnStmt()
	case p.check(TokKwIf):
		return p.ifStmt()
	case p.check(TokKwForeach):
		return p.foreachStmt()
	case p.isTypeStart() && (p.peekAhead(1).Type == TokIdent ||
		(p.peekAhead(1).Type == TokLBracket && p.peekAhead(2).Type == TokRBracket)):
		return p.varDecl()
	case p.check(TokIdent):
		return p.identLedStmt()
	default:
		loc := p.loc()
		e := p.expression()
		return &ast.ExprStmt{StmtBase: ast.StmtBase{Loc: loc}, Expr: e}
	}
}

func (p *Parser) recordDecl() ast.Stmt {
	loc := p.loc()
	p.advance() // struct
	name := p.consume(TokIdent, "expected record name after 'struct'").Lexeme
	p.consume(TokLBrace, "expected '{' after record name")
	var members []ast.Field
	for !p.check(TokRBrace) && !p.isAtEnd() {
		t := p.parseType()
		fname := p.consume(TokIdent, "expected field name").Lexeme
		members = append(members, ast.Field{Name: fname, Type: t})
	}
	p.consume(TokRBrace, "expected '}' to close record declaration")
	p.knownRecords[name] = true
	return &ast.RecordDecl{StmtBase: ast.StmtBase{Loc: loc}, Name: name, Members: members}
}

func (p *Parser) funcDecl() ast.Stmt {
	loc := p.loc()
	p.advance() // def
	ret := p.parseType()
	name := p.consume(TokIdent, "expected function name").Lexeme
	p.consume(TokLParen, "expected '(' after function name")
	var params []ast.Field
	for !p.check(TokRParen) && !p.isAtEnd() {
		t := p.parseType()
		pname := p.consume(TokIdent, "expected parameter name").Lexeme
		params = append(params, ast.Field{Name: pname, Type: t})
		if !p.match(TokComma) {
			break
		}
	}
	p.consume(TokRParen, "expected ')' after parameter list")
	body := p.block()
	return &ast.FuncDecl{StmtBase: ast.StmtBase{Loc: loc}, Name: name, ReturnType: ret, Params: params, Body: body}
}

func (p *Parser) varDecl() ast.Stmt {
	loc := p.loc()
	t := p.parseType()
	name := p.consume(TokIdent, "expected variable name").Lexeme
	var init ast.Expr
	if p.match(TokAssign) {
		init = p.expression()
	}
	return &ast.VarDecl{StmtBase: ast.StmtBase{Loc: loc}, Name: name, DeclaredType: t, Init: init}
}

// identLedStmt disambiguates the four statement forms that start with a
// bare identifier: scalar assignment, list-element assignment, record-field
// assignment, and a plain expression statement (e.g. a function call used
// for its side effect, as in int_println(v)).
func (p *Parser) identLedStmt() ast.Stmt {
	loc := p.loc()
	saved := p.current
	name := p.advance().Lexeme

	if p.match(TokAssign) {
		value := p.expression()
		return &ast.AssignScalar{StmtBase: ast.StmtBase{Loc: loc}, Name: name, Value: value}
	}
	if p.match(TokLBracket) {
		index := p.expression()
		p.consume(TokRBracket, "expected ']' after list index")
		if p.match(TokAssign) {
			value := p.expression()
			return &ast.AssignListElt{StmtBase: ast.StmtBase{Loc: loc}, Name: name, Index: index, Value: value}
		}
		// Not an assignment after all; rewind and fall through to a plain
		// expression statement (e.g. `xs[0]` used, unusually, as a
		// statement on its own).
		p.current = saved
	} else if p.match(TokDot) {
		field := p.consume(TokIdent, "expected field name after '.'").Lexeme
		if p.match(TokAssign) {
			value := p.expression()
			return &ast.AssignRecordField{StmtBase: ast.StmtBase{Loc: loc}, Name: name, Field: field, Value: value}
		}
		p.current = saved
	} else {
		p.current = saved
	}

	e := p.expression()
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Loc: loc}, Expr: e}
}

func (p *Parser) returnStmt() ast.Stmt {
	loc := p.loc()
	p.advance() // return
	var value ast.Expr
	if !p.check(TokRBrace) && !p.isAtEnd() {
		value = p.expression()
	}
	return &ast.Return{StmtBase: ast.StmtBase{Loc: loc}, Value: value}
}

func (p *Parser) ifStmt() ast.Stmt {
	loc := p.loc()
	p.advance() // if
	p.consume(TokLParen, "expected '(' after 'if'")
	cond := p.expression()
	p.consume(TokRParen, "expected ')' after if condition")
	then := p.block()
	n := &ast.If{StmtBase: ast.StmtBase{Loc: loc}, Cond: cond, Then: then}
	if p.check(TokKwElseif) {
		n.Else = p.elseifChain()
	} else if p.match(TokKwElse) {
		n.Else = p.block()
	}
	return n
}

func (p *Parser) elseifChain() ast.Stmt {
	loc := p.loc()
	p.advance() // elseif
	p.consume(TokLParen, "expected '(' after 'elseif'")
	cond := p.expression()
	p.consume(TokRParen, "expected ')' after elseif condition")
	then := p.block()
	n := &ast.If{StmtBase: ast.StmtBase{Loc: loc}, Cond: cond, Then: then}
	if p.check(TokKwElseif) {
		n.Else = p.elseifChain()
	} else if p.match(TokKwElse) {
		n.Else = p.block()
	}
	return n
}

func (p *Parser) foreachStmt() ast.Stmt {
	loc := p.loc()
	p.advance() // foreach
	p.consume(TokLParen, "expected '(' after 'foreach'")
	listName := p.consume(TokIdent, "expected list variable name").Lexeme
	p.consume(TokKwAs, "expected 'as' in foreach header")
	iterVar := p.consume(TokIdent, "expected iteration variable name").Lexeme
	p.consume(TokRParen, "expected ')' after foreach header")
	body := p.block()
	return &ast.Foreach{StmtBase: ast.StmtBase{Loc: loc}, ListName: listName, IterVar: iterVar, Body: body}
}

func (p *Parser) block() *ast.Block {
	loc := p.loc()
	p.consume(TokLBrace, "expected '{' to start a block")
	b := &ast.Block{StmtBase: ast.StmtBase{Loc: loc}}
	for !p.check(TokRBrace) && !p.isAtEnd() {
		b.Stmts = append(b.Stmts, p.statement())
	}
	p.consume(TokRBrace, "expected '}' to close block")
	return b
}

// ---- expressions ----

// precedence, low to high: || , && , | , ^ , & , == !=, < <= > >=, + -, * / %
func (p *Parser) expression() ast.Expr { return p.logicalOr() }

func (p *Parser) logicalOr() ast.Expr {
	left := p.logicalAnd()
	for p.check(TokOrOr) {
		loc := p.loc()
		p.advance()
		right := p.logicalAnd()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpLogOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Expr {
	left := p.bitwiseOr()
	for p.check(TokAndAnd) {
		loc := p.loc()
		p.advance()
		right := p.bitwiseOr()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpLogAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseOr() ast.Expr {
	left := p.bitwiseXor()
	for p.check(TokPipe) {
		loc := p.loc()
		p.advance()
		right := p.bitwiseXor()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpBitOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseXor() ast.Expr {
	left := p.bitwiseAnd()
	for p.check(TokCaret) {
		loc := p.loc()
		p.advance()
		right := p.bitwiseAnd()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpBitXor, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseAnd() ast.Expr {
	left := p.equality()
	for p.check(TokAmp) {
		loc := p.loc()
		p.advance()
		right := p.equality()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpBitAnd, Left: left, Right: right}
	}
	return left
}

var equalityOps = map[TokenType]ast.BinaryOperator{TokEq: ast.OpEq, TokNeq: ast.OpNeq}
var relationalOps = map[TokenType]ast.BinaryOperator{TokLt: ast.OpLt, TokLe: ast.OpLe, TokGt: ast.OpGt, TokGe: ast.OpGe}
var additiveOps = map[TokenType]ast.BinaryOperator{TokPlus: ast.OpAdd, TokMinus: ast.OpSub}
var multiplicativeOps = map[TokenType]ast.BinaryOperator{TokStar: ast.OpMul, TokSlash: ast.OpDiv, TokPercent: ast.OpMod}

func (p *Parser) equality() ast.Expr {
	left := p.relational()
	for {
		op, ok := equalityOps[p.peekType()]
		if !ok {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.relational()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) relational() ast.Expr {
	left := p.additive()
	for {
		op, ok := relationalOps[p.peekType()]
		if !ok {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.additive()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) additive() ast.Expr {
	left := p.multiplicative()
	for {
		op, ok := additiveOps[p.peekType()]
		if !ok {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.multiplicative()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) multiplicative() ast.Expr {
	left := p.unary()
	for {
		op, ok := multiplicativeOps[p.peekType()]
		if !ok {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.unary()
		left = &ast.BinaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) unary() ast.Expr {
	loc := p.loc()
	if p.match(TokBang) {
		return &ast.UnaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpNot, Operand: p.unary()}
	}
	if p.match(TokMinus) {
		return &ast.UnaryOp{ExprBase: ast.ExprBase{Loc: loc}, Operator: ast.OpNegate, Operand: p.unary()}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	e := p.primary()
	for {
		loc := p.loc()
		switch {
		case p.match(TokLBracket):
			idx := p.expression()
			p.consume(TokRBracket, "expected ']' after list index")
			e = &ast.ListAccess{ExprBase: ast.ExprBase{Loc: loc}, Base: e, Index: idx}
		case p.match(TokDot):
			field := p.consume(TokIdent, "expected field name after '.'").Lexeme
			e = &ast.RecordAccess{ExprBase: ast.ExprBase{Loc: loc}, Base: e, Field: field}
		default:
			return e
		}
	}
}

func (p *Parser) primary() ast.Expr {
	loc := p.loc()
	switch {
	case p.match(TokInt):
		lex := p.previous().Lexeme
		var v int64
		fmt.Sscanf(lex, "%d", &v)
		return &ast.IntLit{ExprBase: ast.ExprBase{Loc: loc}, Value: v}
	case p.match(TokUInt):
		lex := p.previous().Lexeme
		var v uint64
		fmt.Sscanf(lex, "%d", &v)
		return &ast.UIntLit{ExprBase: ast.ExprBase{Loc: loc}, Value: v}
	case p.match(TokDouble):
		lex := p.previous().Lexeme
		v, err := parseDoubleLiteral(lex)
		if err != nil {
			p.Errors = append(p.Errors, fmt.Errorf("line %d: invalid double literal %q: %v", loc.Line, lex, err))
		}
		return &ast.DoubleLit{ExprBase: ast.ExprBase{Loc: loc}, Value: v}
	case p.match(TokTrue):
		return &ast.BoolLit{ExprBase: ast.ExprBase{Loc: loc}, Value: true}
	case p.match(TokFalse):
		return &ast.BoolLit{ExprBase: ast.ExprBase{Loc: loc}, Value: false}
	case p.match(TokChar):
		r := []rune(p.previous().Lexeme)[0]
		return &ast.CharLit{ExprBase: ast.ExprBase{Loc: loc}, Value: r}
	case p.match(TokString):
		return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: p.previous().Lexeme}
	case p.match(TokLBracket):
		var elems []ast.Expr
		for !p.check(TokRBracket) && !p.isAtEnd() {
			elems = append(elems, p.expression())
			if !p.match(TokComma) {
				break
			}
		}
		p.consume(TokRBracket, "expected ']' to close list literal")
		return &ast.ListLit{ExprBase: ast.ExprBase{Loc: loc}, Elements: elems}
	case p.match(TokLParen):
		e := p.expression()
		p.consume(TokRParen, "expected ')' after parenthesized expression")
		return e
	case p.check(TokIdent):
		name := p.advance().Lexeme
		if p.match(TokLParen) {
			var args []ast.Expr
			for !p.check(TokRParen) && !p.isAtEnd() {
				args = append(args, p.expression())
				if !p.match(TokComma) {
					break
				}
			}
			p.consume(TokRParen, "expected ')' after call arguments")
			return &ast.FunctionCall{ExprBase: ast.ExprBase{Loc: loc}, Callee: name, Args: args}
		}
		return &ast.VariableAccess{ExprBase: ast.ExprBase{Loc: loc}, Name: name}
	default:
		p.errorf("expected an expression")
		return &ast.IntLit{ExprBase: ast.ExprBase{Loc: loc}, Value: 0}
	}
}
