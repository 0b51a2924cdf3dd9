package transformer

import (
	"go/ast"

	"unrecurse/internal/rewriter"
)

// rewriteReturns rewrites the operand of every return statement in the body.
// Function literals keep their own returns: a recursive call inside a
// closure is not in tail position of the enclosing function.
func (t *funcTransformer) rewriteReturns(body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			t.rewriteReturnStmt(n)
			return false
		}
		return true
	})
}

func (t *funcTransformer) rewriteReturnStmt(ret *ast.ReturnStmt) {
	if t.opaque.contains(ret) {
		return
	}
	if len(ret.Results) == 0 {
		ret.Results = []ast.Expr{t.returnUnitCall()}
	} else {
		ret.Results[0] = t.rewriteTailExpr(ret.Results[0])
	}
	t.opaque.add(ret)
}

// rewriteTailStmt rewrites the statement occupying a tail position,
// recursively: the last statement of a block, both branches of a
// conditional, the body of every switch clause. Returns reached here were
// already rewritten by rewriteReturns and are left alone.
func (t *funcTransformer) rewriteTailStmt(stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		t.rewriteReturnStmt(s)
	case *ast.BlockStmt:
		if n := len(s.List); n > 0 {
			s.List[n-1] = t.rewriteTailStmt(s.List[n-1])
		}
	case *ast.IfStmt:
		t.rewriteTailStmt(s.Body)
		if s.Else != nil {
			s.Else = t.rewriteTailStmt(s.Else)
		}
	case *ast.SwitchStmt:
		t.rewriteCaseClauses(s.Body)
	case *ast.TypeSwitchStmt:
		t.rewriteCaseClauses(s.Body)
	case *ast.ExprStmt:
		// Go's version of an implicit trailing expression: in a function
		// with no results, a bare self-call as the final statement is a
		// tail call.
		if t.sig.Unit() {
			if call, ok := s.X.(*ast.CallExpr); ok && t.isSelfCall(call) && !t.opaque.contains(call) {
				ret := &ast.ReturnStmt{Results: []ast.Expr{t.continueCall(call)}}
				t.opaque.add(ret)
				return ret
			}
		}
	}
	return stmt
}

func (t *funcTransformer) rewriteCaseClauses(body *ast.BlockStmt) {
	for _, stmt := range body.List {
		cc, ok := stmt.(*ast.CaseClause)
		if !ok {
			continue
		}
		if n := len(cc.Body); n > 0 {
			cc.Body[n-1] = t.rewriteTailStmt(cc.Body[n-1])
		}
	}
}

// rewriteTailExpr applies the classification rules to an expression in tail
// position: a self-call becomes a Continue carrying the argument tuple,
// anything else, including calls to other functions, becomes a Return
// carrying the final value. Nodes produced by an earlier rewrite are
// returned unchanged.
func (t *funcTransformer) rewriteTailExpr(expr ast.Expr) ast.Expr {
	if t.opaque.contains(expr) {
		return expr
	}
	if call, ok := expr.(*ast.CallExpr); ok && t.isSelfCall(call) {
		return t.continueCall(call)
	}
	return t.returnCall(expr)
}

// isSelfCall matches a direct call on the function's name or a method-style
// call whose selected name equals it. Name equality only.
func (t *funcTransformer) isSelfCall(call *ast.CallExpr) bool {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return fun.Name == t.sig.Name
	case *ast.SelectorExpr:
		return fun.Sel.Name == t.sig.Name
	}
	return false
}

// continueCall builds the Continue action for a self-call. The arguments
// move into a positional state literal in their original order; the receiver
// of a method-style call is dropped, it is captured by the inner closure
// instead.
func (t *funcTransformer) continueCall(call *ast.CallExpr) ast.Expr {
	payload := &ast.CompositeLit{
		Type: ast.NewIdent(t.stateType),
		Elts: call.Args,
	}
	return t.runtimeCall("Continue", payload)
}

func (t *funcTransformer) returnCall(expr ast.Expr) ast.Expr {
	return t.runtimeCall("Return", expr)
}

func (t *funcTransformer) returnUnitCall() ast.Expr {
	return t.runtimeCall("Return", &ast.CompositeLit{Type: t.unitType()})
}

// runtimeCall builds trampoline.<name>[State, Result](arg) and marks the
// call opaque so later traversals pass it through.
func (t *funcTransformer) runtimeCall(name string, arg ast.Expr) ast.Expr {
	call := &ast.CallExpr{
		Fun: &ast.IndexListExpr{
			X: &ast.SelectorExpr{
				X:   ast.NewIdent(rewriter.RuntimePackage),
				Sel: ast.NewIdent(name),
			},
			Indices: []ast.Expr{ast.NewIdent(t.stateType), t.resultType()},
		},
		Args: []ast.Expr{arg},
	}
	t.opaque.add(call)
	return call
}

func (t *funcTransformer) resultType() ast.Expr {
	if t.sig.Unit() {
		return t.unitType()
	}
	return cloneTypeExpr(t.sig.Result)
}

func (t *funcTransformer) unitType() ast.Expr {
	return &ast.SelectorExpr{
		X:   ast.NewIdent(rewriter.RuntimePackage),
		Sel: ast.NewIdent("Unit"),
	}
}
