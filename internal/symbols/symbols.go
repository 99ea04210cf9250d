// Package symbols implements the Crema symbol-resolution model of spec §3
// and §4.3: a stack of lexical Scopes for variable bindings, plus the
// global function and record tables, which live in disjoint namespaces that
// nonetheless share a reservation check (a variable cannot shadow a
// function name or vice versa).
//
// Kept as a plain value threaded through the analyzer pass (the emitter
// keeps a scope stack of its own) rather than a package-level singleton — spec §9 "Global mutable 'root
// context'": "Make both local values threaded through passes; no hidden
// singletons."
package symbols

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/types"
)

// Binding is a variable binding: the declaration's name and type, and an
// opaque Storage slot. Nothing in this package or the analyzer sets
// Storage; internal/emitter keeps its own Binding type holding IR storage.
type Binding struct {
	Name    string
	Type    types.Type
	Storage interface{}
}

// Scope is one frame of the analyzer's scope stack: a
// mapping from identifier to binding, plus the expected return type for the
// innermost enclosing function (spec §3 "Scope").
type Scope struct {
	vars               map[string]*Binding
	expectedReturnType types.Type
}

func newScope(expectedReturn types.Type) *Scope {
	return &Scope{vars: make(map[string]*Binding), expectedReturnType: expectedReturn}
}

// Stack is the analyzer's scope stack. Lookup walks
// inward-to-outward, i.e. from the top of the stack down.
type Stack struct {
	frames []*Scope
}

// NewStack returns an empty scope stack.
func NewStack() *Stack { return &Stack{} }

// Push creates a new scope whose expected-return-type is inherited from
// the enclosing scope (spec §4.3 "Block. Pushes a fresh scope inheriting
// the enclosing expected-return-type").
func (s *Stack) Push() {
	var expected types.Type
	if len(s.frames) > 0 {
		expected = s.frames[len(s.frames)-1].expectedReturnType
	}
	s.frames = append(s.frames, newScope(expected))
}

// PushFunction creates a new scope with a fresh expected-return-type,
// for a function body (spec §4.3 "Function declaration: Pushes a new
// scope with expected-return-type = declared return type").
func (s *Stack) PushFunction(returnType types.Type) {
	s.frames = append(s.frames, newScope(returnType))
}

// Pop tears down the innermost scope. Every binding declared in it is
// destroyed (spec §3 "Variable binding ... is destroyed when its scope is
// torn down").
func (s *Stack) Pop() {
	if len(s.frames) == 0 {
		panic("symbols: Pop called on empty scope stack")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth returns the current stack depth, used by the analyzer's entry
// point to assert that only the root scope was left at the end of the pass
// (it pops the root scope and then expects depth 0).
func (s *Stack) Depth() int { return len(s.frames) }

// ExpectedReturnType returns the expected return type recorded by the
// innermost scope — spec §3: used by return statements.
func (s *Stack) ExpectedReturnType() types.Type {
	if len(s.frames) == 0 {
		return types.TVoid
	}
	return s.frames[len(s.frames)-1].expectedReturnType
}

// Declare creates a binding for name in the current (innermost) scope. It
// returns false if name is already bound in that scope (a duplicate
// declaration, spec §4.3 "Variable declaration").
func (s *Stack) Declare(name string, t types.Type) (*Binding, bool) {
	top := s.frames[len(s.frames)-1]
	if _, exists := top.vars[name]; exists {
		return nil, false
	}
	b := &Binding{Name: name, Type: t}
	top.vars[name] = b
	return b, true
}

// Lookup walks the scope stack inward-to-outward and returns the nearest
// binding for name, or (nil, false) if none is visible.
func (s *Stack) Lookup(name string) (*Binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Tables holds the global, compilation-unit-wide function and record
// namespaces (spec §3 "Function declaration" / "Record declaration" are
// "registered once in the global function/record table").
type Tables struct {
	Functions map[string]*ast.FuncDecl
	Records   map[string]*ast.RecordDecl
}

// NewTables returns empty global function/record tables.
func NewTables() *Tables {
	return &Tables{
		Functions: make(map[string]*ast.FuncDecl),
		Records:   make(map[string]*ast.RecordDecl),
	}
}

// RegisterFunction adds a function declaration to the global function
// table. It fails only if the name is already registered as a function;
// the record table is not consulted, since functions and records live in
// separate namespaces.
func (t *Tables) RegisterFunction(decl *ast.FuncDecl) bool {
	if _, exists := t.Functions[decl.Name]; exists {
		return false
	}
	t.Functions[decl.Name] = decl
	return true
}

// RegisterRecord adds a record declaration to the global record table. It
// fails if the name is already registered as a record.
func (t *Tables) RegisterRecord(decl *ast.RecordDecl) bool {
	if _, exists := t.Records[decl.Name]; exists {
		return false
	}
	t.Records[decl.Name] = decl
	return true
}

// IsFunctionName reports whether name is already registered as a function,
// used by the variable-declaration reservation check (spec §3: "declaring
// a variable whose name is also a function name ... is an error").
func (t *Tables) IsFunctionName(name string) bool {
	_, ok := t.Functions[name]
	return ok
}
