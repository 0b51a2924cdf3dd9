package transformer

import (
	"go/ast"
	"go/token"
	"strconv"

	"unrecurse/internal/rewriter"
)

// rebuild assembles the rewritten declaration: a local state struct holding
// the parameter tuple, an inner closure returning trampoline.Action whose
// body is the rewritten tree, and an outer loop with the original signature
// that drives the closure: replace the state on Continue, return on Return.
func (t *funcTransformer) rebuild(fn *ast.FuncDecl) *ast.FuncDecl {
	body := fn.Body

	// Every control path of the inner closure must produce an Action. A body
	// with no results may fall off the end, so it gets an explicit terminal
	// return.
	if t.sig.Unit() && needsTrailingReturn(body) {
		ret := &ast.ReturnStmt{Results: []ast.Expr{t.returnUnitCall()}}
		t.opaque.add(ret)
		body.List = append(body.List, ret)
	}

	// One struct field per parameter, original order. Blank parameters get
	// positional placeholder names so the struct stays arity-compatible with
	// the argument tuple of a self-call.
	var fields []*ast.Field
	var initElts []ast.Expr
	var rebindLhs, rebindRhs []ast.Expr
	var discards []ast.Stmt
	for i, param := range t.sig.Params {
		name := param.Name
		if param.Blank() {
			name = t.freshName("p" + strconv.Itoa(i))
		}
		fields = append(fields, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(name)},
			Type:  cloneTypeExpr(param.Type),
		})
		if param.Blank() {
			continue
		}
		initElts = append(initElts, &ast.KeyValueExpr{
			Key:   ast.NewIdent(name),
			Value: ast.NewIdent(param.Name),
		})
		rebindLhs = append(rebindLhs, ast.NewIdent(param.Name))
		rebindRhs = append(rebindRhs, &ast.SelectorExpr{
			X:   ast.NewIdent(t.stateVar),
			Sel: ast.NewIdent(name),
		})
		if !t.inBody[param.Name] {
			discards = append(discards, &ast.AssignStmt{
				Lhs: []ast.Expr{ast.NewIdent("_")},
				Tok: token.ASSIGN,
				Rhs: []ast.Expr{ast.NewIdent(param.Name)},
			})
		}
	}

	structType := &ast.StructType{Fields: &ast.FieldList{List: fields}}
	if len(fields) == 0 {
		// Same-line brace positions so the empty struct prints as struct{}.
		structType.Fields.Opening = fn.Pos()
		structType.Fields.Closing = fn.Pos()
	}
	typeDecl := &ast.DeclStmt{Decl: &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{&ast.TypeSpec{
			Name: ast.NewIdent(t.stateType),
			Type: structType,
		}},
	}}

	// The inner closure re-binds every named parameter from the state
	// fields, then runs the rewritten body. Every body read must see the
	// loop state, so the rebind is unconditional; a parameter the reference
	// analysis found no read of gets a discard so the binding compiles
	// either way.
	innerBody := body
	if len(rebindLhs) > 0 {
		rebind := &ast.AssignStmt{Lhs: rebindLhs, Tok: token.DEFINE, Rhs: rebindRhs}
		pre := append([]ast.Stmt{rebind}, discards...)
		innerBody = &ast.BlockStmt{List: append(pre, body.List...)}
	}
	innerDecl := &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(t.innerVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.FuncLit{
			Type: &ast.FuncType{
				Params: &ast.FieldList{List: []*ast.Field{{
					Names: []*ast.Ident{ast.NewIdent(t.stateVar)},
					Type:  ast.NewIdent(t.stateType),
				}}},
				Results: &ast.FieldList{List: []*ast.Field{{Type: t.actionType()}}},
			},
			Body: innerBody,
		}},
	}

	stateInit := &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(t.stateVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.CompositeLit{
			Type: ast.NewIdent(t.stateType),
			Elts: initElts,
		}},
	}

	onReturn := &ast.ReturnStmt{}
	if !t.sig.Unit() {
		onReturn.Results = []ast.Expr{t.stepCall("Value")}
	}
	loop := &ast.ForStmt{Body: &ast.BlockStmt{List: []ast.Stmt{
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(t.stepVar)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.CallExpr{
				Fun:  ast.NewIdent(t.innerVar),
				Args: []ast.Expr{ast.NewIdent(t.stateVar)},
			}},
		},
		&ast.IfStmt{
			Cond: t.stepCall("IsReturn"),
			Body: &ast.BlockStmt{List: []ast.Stmt{onReturn}},
		},
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(t.stateVar)},
			Tok: token.ASSIGN,
			Rhs: []ast.Expr{t.stepCall("State")},
		},
	}}}

	return &ast.FuncDecl{
		Recv: fn.Recv,
		Name: fn.Name,
		Type: fn.Type,
		Body: &ast.BlockStmt{List: []ast.Stmt{typeDecl, innerDecl, stateInit, loop}},
	}
}

func (t *funcTransformer) actionType() ast.Expr {
	return &ast.IndexListExpr{
		X: &ast.SelectorExpr{
			X:   ast.NewIdent(rewriter.RuntimePackage),
			Sel: ast.NewIdent("Action"),
		},
		Indices: []ast.Expr{ast.NewIdent(t.stateType), t.resultType()},
	}
}

func (t *funcTransformer) stepCall(method string) *ast.CallExpr {
	return &ast.CallExpr{Fun: &ast.SelectorExpr{
		X:   ast.NewIdent(t.stepVar),
		Sel: ast.NewIdent(method),
	}}
}

func needsTrailingReturn(body *ast.BlockStmt) bool {
	n := len(body.List)
	if n == 0 {
		return true
	}
	_, ok := body.List[n-1].(*ast.ReturnStmt)
	return !ok
}

// cloneTypeExpr rebuilds a type expression with fresh, position-free nodes so
// the same written type can appear in the state struct, the Action type
// arguments and the inner closure without node sharing against the original
// signature.
func cloneTypeExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return ast.NewIdent(e.Name)
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneTypeExpr(e.X), Sel: ast.NewIdent(e.Sel.Name)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: cloneTypeExpr(e.X)}
	case *ast.ArrayType:
		return &ast.ArrayType{Len: cloneTypeExpr(e.Len), Elt: cloneTypeExpr(e.Elt)}
	case *ast.MapType:
		return &ast.MapType{Key: cloneTypeExpr(e.Key), Value: cloneTypeExpr(e.Value)}
	case *ast.ChanType:
		return &ast.ChanType{Dir: e.Dir, Value: cloneTypeExpr(e.Value)}
	case *ast.BasicLit:
		return &ast.BasicLit{Kind: e.Kind, Value: e.Value}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneTypeExpr(e.X), Index: cloneTypeExpr(e.Index)}
	case *ast.IndexListExpr:
		indices := make([]ast.Expr, len(e.Indices))
		for i, idx := range e.Indices {
			indices[i] = cloneTypeExpr(idx)
		}
		return &ast.IndexListExpr{X: cloneTypeExpr(e.X), Indices: indices}
	case *ast.FuncType:
		return &ast.FuncType{
			Params:  cloneFieldList(e.Params),
			Results: cloneFieldList(e.Results),
		}
	default:
		return expr
	}
}

func cloneFieldList(list *ast.FieldList) *ast.FieldList {
	if list == nil {
		return nil
	}
	fields := make([]*ast.Field, len(list.List))
	for i, f := range list.List {
		names := make([]*ast.Ident, len(f.Names))
		for j, name := range f.Names {
			names[j] = ast.NewIdent(name.Name)
		}
		if len(names) == 0 {
			names = nil
		}
		fields[i] = &ast.Field{Names: names, Type: cloneTypeExpr(f.Type)}
	}
	return &ast.FieldList{List: fields}
}
