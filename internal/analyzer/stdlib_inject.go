package analyzer

import (
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/diagnostics"
	"github.com/ainfosec/crema/internal/stdlib"
)

// injectStdlib implements spec §4.2 "Stdlib injection": prepends one
// external FuncDecl (Body == nil) per stdlib.Declarations() entry to the
// head of the root block, ahead of every user statement, so user code can
// call runtime functions and preRegisterTopLevel sees them exactly like any
// other top-level declaration. The injected nodes carry a zero Location —
// a diagnostic naming one (a user redeclaring a stdlib name, say) reports
// against the user's declaration, not the invisible injected one, since
// RegisterFunction rejects whichever declaration comes second.
func injectStdlib(root *ast.Block) {
	decls := stdlib.Declarations()
	injected := make([]ast.Stmt, 0, len(decls)+len(root.Stmts))
	for _, d := range decls {
		params := make([]ast.Field, len(d.Params))
		for i, pt := range d.Params {
			params[i] = ast.Field{Name: "_", Type: pt}
		}
		injected = append(injected, &ast.FuncDecl{
			StmtBase:   ast.StmtBase{Loc: diagnostics.Location{}},
			Name:       d.Name,
			ReturnType: d.ReturnType,
			Params:     params,
			Body:       nil,
		})
	}
	root.Stmts = append(injected, root.Stmts...)
}
