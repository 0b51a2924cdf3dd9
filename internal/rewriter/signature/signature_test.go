package signature_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unrecurse/internal/rewriter/signature"
)

func parseFunc(t *testing.T, src string) *ast.FuncDecl {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", "package main\n"+src, 0)
	require.NoError(t, err)
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			return fn
		}
	}
	t.Fatal("no function declaration in source")
	return nil
}

func typeName(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantParams []string
		wantTypes  []string
		wantResult string
	}{
		{
			name:       "two parameters one result",
			source:     `func sumTo(n int, acc int) int { return acc }`,
			wantParams: []string{"n", "acc"},
			wantTypes:  []string{"int", "int"},
			wantResult: "int",
		},
		{
			name:       "grouped parameters flatten in order",
			source:     `func f(a, b int, s string) bool { return true }`,
			wantParams: []string{"a", "b", "s"},
			wantTypes:  []string{"int", "int", "string"},
			wantResult: "bool",
		},
		{
			name:       "no result means unit",
			source:     `func g(n int) {}`,
			wantParams: []string{"n"},
			wantTypes:  []string{"int"},
			wantResult: "",
		},
		{
			name:       "no parameters",
			source:     `func h() int { return 0 }`,
			wantParams: nil,
			wantTypes:  nil,
			wantResult: "int",
		},
		{
			name:       "blank parameter kept in order",
			source:     `func k(_ int, n int) int { return n }`,
			wantParams: []string{"_", "n"},
			wantTypes:  []string{"int", "int"},
			wantResult: "int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := signature.Extract(parseFunc(t, tt.source))
			assert.NoError(t, err)

			var names, types []string
			for _, p := range sig.Params {
				names = append(names, p.Name)
				types = append(types, typeName(p.Type))
			}
			assert.Equal(t, tt.wantParams, names)
			assert.Equal(t, tt.wantTypes, types)

			if tt.wantResult == "" {
				assert.True(t, sig.Unit())
			} else {
				assert.False(t, sig.Unit())
				assert.Equal(t, tt.wantResult, typeName(sig.Result))
			}
		})
	}
}

func TestExtractRejectsUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			name:    "variadic",
			source:  `func f(xs ...int) int { return 0 }`,
			wantMsg: "variadic parameters are not supported",
		},
		{
			name:    "multiple results",
			source:  `func f(n int) (int, error) { return 0, nil }`,
			wantMsg: "multiple return values are not supported",
		},
		{
			name:    "named result",
			source:  `func f(n int) (r int) { return }`,
			wantMsg: "named results are not supported",
		},
		{
			name:    "type parameters",
			source:  `func f[T any](x T) T { return x }`,
			wantMsg: "type parameters are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signature.Extract(parseFunc(t, tt.source))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
