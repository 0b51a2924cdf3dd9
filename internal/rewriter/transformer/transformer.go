// Package transformer implements the tail-call rewrite: it classifies the
// tail positions of a function body, replaces each with a trampoline Action,
// and rebuilds the declaration around a driving loop.
package transformer

import (
	"fmt"
	"go/ast"
	"strconv"

	"unrecurse/internal/rewriter"
	"unrecurse/internal/rewriter/signature"
	"unrecurse/recerr"
)

type funcTransformer struct {
	sig    *signature.Signature
	opaque opaqueSet

	// used holds every identifier appearing anywhere in the declaration,
	// inBody only those the body can read as values. Generated names must
	// miss the former; the latter decides which parameter rebinds need a
	// discard so a parameter without a visible read does not become an
	// unused local.
	used   map[string]bool
	inBody map[string]bool

	stateType string
	stateVar  string
	innerVar  string
	stepVar   string
}

// NewFuncTransformer creates a new instance of FuncTransformer.
func NewFuncTransformer() rewriter.FuncTransformer {
	return &funcTransformer{}
}

// Transform rewrites a self-tail-recursive function declaration into a loop
// that never grows the stack. Self-recursion is detected purely by name: a
// call whose callee identifier, or whose selector name, equals the function's
// own name is treated as recursive, with no scope resolution; a shadowing
// local or a same-named function from another package is misclassified.
// Recursive calls outside tail position (nested in other call arguments,
// inside function literals, inside loop bodies) are left as ordinary calls
// and keep their stack-growing behavior.
//
// Defer statements move with the body into the per-iteration closure, so
// deferred calls run at the end of each iteration rather than in reverse
// order after the recursion bottoms out.
//
// Transform takes ownership of fn: the returned declaration reuses and
// mutates its body.
func (t *funcTransformer) Transform(fn *ast.FuncDecl) (*ast.FuncDecl, error) {
	if fn.Body == nil {
		return nil, recerr.NewSemanticError(
			fmt.Sprintf("cannot rewrite %s: missing function body", fn.Name.Name))
	}
	sig, err := signature.Extract(fn)
	if err != nil {
		return nil, err
	}

	t.sig = sig
	t.opaque = opaqueSet{}
	t.collectIdents(fn)
	t.stateType = t.freshName(sig.Name + "State")
	t.stateVar = t.freshName("state")
	t.innerVar = t.freshName("inner")
	t.stepVar = t.freshName("a")

	// First pass: every return statement is unconditionally a control-flow
	// exit, so its operand is classified directly. Second pass: the chain of
	// tail statements from the end of the body, which covers the implicit
	// tail of functions with no results. The second pass revisits returns
	// the first pass handled; the opaque set makes that a no-op.
	t.rewriteReturns(fn.Body)
	if n := len(fn.Body.List); n > 0 {
		fn.Body.List[n-1] = t.rewriteTailStmt(fn.Body.List[n-1])
	}

	return t.rebuild(fn), nil
}

func (t *funcTransformer) collectIdents(fn *ast.FuncDecl) {
	t.used = make(map[string]bool)
	t.inBody = make(map[string]bool)
	ast.Inspect(fn, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			t.used[id.Name] = true
		}
		return true
	})
	t.markBodyIdents(fn.Body)
}

// markBodyIdents records identifiers the body can read as values. Selector
// names are field or method names, not references. Composite literal keys
// are references in map and array literals but field names in struct
// literals; when the literal's type is not written out the kind is unknown
// and the key is skipped, which at worst costs a redundant discard.
func (t *funcTransformer) markBodyIdents(node ast.Node) {
	ast.Inspect(node, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			t.markBodyIdents(n.X)
			return false
		case *ast.CompositeLit:
			t.markCompositeLit(n)
			return false
		case *ast.Ident:
			t.inBody[n.Name] = true
		}
		return true
	})
}

func (t *funcTransformer) markCompositeLit(lit *ast.CompositeLit) {
	keysAreValues := false
	if lit.Type != nil {
		switch lit.Type.(type) {
		case *ast.MapType, *ast.ArrayType:
			keysAreValues = true
		}
		t.markBodyIdents(lit.Type)
	}
	for _, elt := range lit.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if keysAreValues {
				t.markBodyIdents(kv.Key)
			}
			t.markBodyIdents(kv.Value)
			continue
		}
		t.markBodyIdents(elt)
	}
}

func (t *funcTransformer) freshName(base string) string {
	name := base
	for i := 2; t.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	t.used[name] = true
	return name
}

var _ rewriter.FuncTransformer = (*funcTransformer)(nil)
