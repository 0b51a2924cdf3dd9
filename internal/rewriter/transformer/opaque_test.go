package transformer

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unrecurse/internal/rewriter/signature"
)

func TestOpaqueSet(t *testing.T) {
	s := opaqueSet{}
	n := ast.NewIdent("x")

	assert.False(t, s.contains(n))
	s.add(n)
	assert.True(t, s.contains(n))
	assert.False(t, s.contains(ast.NewIdent("x")))
}

// The rewrite runs two traversals over the same tree; marked nodes make the
// overlap safe. Running both passes a second time must not change the tree.
func TestRewritePassesAreStable(t *testing.T) {
	src := `package main
func f(n int) int {
	if n == 0 {
		return 0
	}
	return f(n - 1)
}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)
	fn := file.Decls[0].(*ast.FuncDecl)

	tr := &funcTransformer{}
	tr.sig, err = signature.Extract(fn)
	require.NoError(t, err)
	tr.opaque = opaqueSet{}
	tr.collectIdents(fn)
	tr.stateType = tr.freshName(tr.sig.Name + "State")
	tr.stateVar = tr.freshName("state")
	tr.innerVar = tr.freshName("inner")
	tr.stepVar = tr.freshName("a")

	apply := func() string {
		tr.rewriteReturns(fn.Body)
		if n := len(fn.Body.List); n > 0 {
			fn.Body.List[n-1] = tr.rewriteTailStmt(fn.Body.List[n-1])
		}
		var buf bytes.Buffer
		require.NoError(t, format.Node(&buf, fset, fn))
		return buf.String()
	}

	first := apply()
	second := apply()
	assert.Equal(t, first, second)
	assert.Contains(t, first, "trampoline.Continue[fState, int](fState{n - 1})")
	assert.Contains(t, first, "trampoline.Return[fState, int](0)")
}

func TestFreshNameAvoidsCollisions(t *testing.T) {
	src := `package main
func f(state int, inner int) int {
	return state + inner
}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)
	fn := file.Decls[0].(*ast.FuncDecl)

	tr := &funcTransformer{}
	tr.collectIdents(fn)

	assert.Equal(t, "state2", tr.freshName("state"))
	assert.Equal(t, "inner2", tr.freshName("inner"))
	assert.Equal(t, "a", tr.freshName("a"))
	// Registered names never repeat.
	assert.Equal(t, "a2", tr.freshName("a"))
}
