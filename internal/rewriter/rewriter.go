// Package rewriter wires the parse/transform/generate pipeline that turns
// self-tail-recursive functions in a Go source file into trampolined loops.
package rewriter

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"unrecurse/recerr"
)

// Runtime support package that rewritten code imports.
const (
	RuntimePackage    = "trampoline"
	RuntimeImportPath = "unrecurse/trampoline"
)

// DefaultDirective is the comment directive that opts a function into
// rewriting, written as //unrecurse:rewrite on the line above the
// declaration.
const DefaultDirective = "unrecurse:rewrite"

// SourceParser defines the interface for parsing Go source code.
type SourceParser interface {
	Parse(filename, src string) (*token.FileSet, *ast.File, error)
}

// FuncTransformer rewrites a single self-recursive function declaration into
// its trampolined form.
type FuncTransformer interface {
	Transform(fn *ast.FuncDecl) (*ast.FuncDecl, error)
}

// CodeGenerator generates Go source code from a Go AST file and its FileSet.
type CodeGenerator interface {
	Generate(fset *token.FileSet, file *ast.File) (string, error)
}

// Rewriter defines the high-level interface for rewriting one source file.
type Rewriter interface {
	Rewrite(filename, src string) (string, error)
}

// Option configures a GoRewriter.
type Option func(*GoRewriter)

// WithDirective overrides the comment directive that marks functions for
// rewriting.
func WithDirective(directive string) Option {
	return func(r *GoRewriter) { r.directive = directive }
}

// WithAll makes the rewriter process every self-recursive function it can
// express, marked or not. Functions whose shape the rewrite cannot express
// are skipped silently in this mode; only directive-marked functions report
// errors.
func WithAll(all bool) Option {
	return func(r *GoRewriter) { r.all = all }
}

// GoRewriter orchestrates the rewrite of one Go source file.
type GoRewriter struct {
	parser      SourceParser
	transformer FuncTransformer
	generator   CodeGenerator
	directive   string
	all         bool
}

// NewGoRewriter creates a new instance of GoRewriter with its dependencies.
func NewGoRewriter(parser SourceParser, transformer FuncTransformer, generator CodeGenerator, opts ...Option) *GoRewriter {
	r := &GoRewriter{
		parser:      parser,
		transformer: transformer,
		generator:   generator,
		directive:   DefaultDirective,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite executes the full pipeline: parse the file, transform every marked
// function, add the runtime import when anything was rewritten, and print the
// file back out. The directive is consumed, so rewriting the output again is
// the identity.
func (r *GoRewriter) Rewrite(filename, src string) (string, error) {
	fset, file, err := r.parser.Parse(filename, src)
	if err != nil {
		return "", err
	}

	var errs []error
	rewritten := 0
	for i, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		marked := hasDirective(fn.Doc, r.directive)
		if !marked && !(r.all && SelfRecursive(fn)) {
			continue
		}
		out, err := r.transformer.Transform(fn)
		if err != nil {
			if marked {
				errs = append(errs, positioned(fset, fn, err))
			}
			continue
		}
		r.pruneComments(file, fn)
		file.Decls[i] = out
		rewritten++
	}

	if len(errs) == 1 {
		return "", errs[0]
	}
	if len(errs) > 1 {
		return "", &recerr.MultiError{Errors: errs}
	}

	if rewritten > 0 {
		astutil.AddImport(fset, file, RuntimeImportPath)
	}
	return r.generator.Generate(fset, file)
}

// SelfRecursive reports whether the function body contains a call to the
// function's own name. Name equality is the same heuristic the transformer
// applies: no scope resolution, selector calls match on the selected name.
func SelfRecursive(fn *ast.FuncDecl) bool {
	if fn.Body == nil {
		return false
	}
	found := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return !found
		}
		switch fun := call.Fun.(type) {
		case *ast.Ident:
			if fun.Name == fn.Name.Name {
				found = true
			}
		case *ast.SelectorExpr:
			if fun.Sel.Name == fn.Name.Name {
				found = true
			}
		}
		return !found
	})
	return found
}

// positioned fills the function's source position into semantic errors the
// transformer reports without one.
func positioned(fset *token.FileSet, fn *ast.FuncDecl, err error) error {
	se, ok := err.(*recerr.SemanticError)
	if !ok || se.Line > 0 {
		return err
	}
	pos := fset.Position(fn.Pos())
	if pos.Filename == "" {
		return recerr.NewSemanticErrorAt(pos.Line, pos.Column, se.Msg)
	}
	return recerr.NewSemanticErrorInFile(pos.Filename, pos.Line, pos.Column, se.Msg)
}

func hasDirective(doc *ast.CommentGroup, directive string) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == directive {
			return true
		}
	}
	return false
}

// pruneComments removes the directive line from the function's doc comment
// and drops comments inside the rewritten body, which no longer have stable
// anchors after restructuring.
func (r *GoRewriter) pruneComments(file *ast.File, fn *ast.FuncDecl) {
	var kept []*ast.CommentGroup
	for _, group := range file.Comments {
		if group == fn.Doc {
			var lines []*ast.Comment
			for _, c := range group.List {
				if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == r.directive {
					continue
				}
				lines = append(lines, c)
			}
			if len(lines) == 0 {
				continue
			}
			group.List = lines
			kept = append(kept, group)
			continue
		}
		if group.Pos() >= fn.Pos() && group.End() <= fn.End() {
			continue
		}
		kept = append(kept, group)
	}
	file.Comments = kept
}

var _ Rewriter = (*GoRewriter)(nil)
