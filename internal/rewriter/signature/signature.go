// Package signature decomposes a Go function declaration into the ordered
// parameter (name, type) pairs and the result type the rebuilder works from.
package signature

import (
	"fmt"
	"go/ast"

	"unrecurse/recerr"
)

// Param is one parameter of the original function. Go has no destructuring
// parameter patterns, so the pattern is always a plain identifier; Blank
// reports the anonymous cases ("_" or a missing name) that cannot be
// referenced in the body.
type Param struct {
	Name string
	Type ast.Expr
}

// Blank reports whether the parameter has no referenceable name.
func (p Param) Blank() bool {
	return p.Name == "" || p.Name == "_"
}

// Signature is the extracted shape of a function declaration. Immutable once
// extracted.
type Signature struct {
	Name   string
	Params []Param
	Result ast.Expr // nil means the function returns nothing
}

// Unit reports whether the function has no result.
func (s *Signature) Unit() bool {
	return s.Result == nil
}

// Extract pulls the parameter list and result type out of a function
// declaration. Grouped parameters like "a, b int" flatten into one Param per
// name, preserving declaration order.
//
// Shapes the loop rewrite cannot express are rejected here: type parameters
// (a local state type cannot reference them), variadic parameters, and
// multiple or named results.
func Extract(fn *ast.FuncDecl) (*Signature, error) {
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		return nil, recerr.NewSemanticError(
			fmt.Sprintf("cannot rewrite %s: type parameters are not supported", fn.Name.Name))
	}

	sig := &Signature{Name: fn.Name.Name}

	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			if _, ok := field.Type.(*ast.Ellipsis); ok {
				return nil, recerr.NewSemanticError(
					fmt.Sprintf("cannot rewrite %s: variadic parameters are not supported", fn.Name.Name))
			}
			if len(field.Names) == 0 {
				sig.Params = append(sig.Params, Param{Name: "_", Type: field.Type})
				continue
			}
			for _, name := range field.Names {
				sig.Params = append(sig.Params, Param{Name: name.Name, Type: field.Type})
			}
		}
	}

	results := fn.Type.Results
	if results == nil || len(results.List) == 0 {
		return sig, nil
	}
	if len(results.List) > 1 || len(results.List[0].Names) > 1 {
		return nil, recerr.NewSemanticError(
			fmt.Sprintf("cannot rewrite %s: multiple return values are not supported", fn.Name.Name))
	}
	if len(results.List[0].Names) == 1 {
		return nil, recerr.NewSemanticError(
			fmt.Sprintf("cannot rewrite %s: named results are not supported", fn.Name.Name))
	}
	sig.Result = results.List[0].Type
	return sig, nil
}
