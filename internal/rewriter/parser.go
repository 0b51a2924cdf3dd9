package rewriter

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"

	"unrecurse/recerr"
)

type goSourceParser struct{}

// NewGoSourceParser creates a SourceParser backed by the standard library
// parser. Comments are kept so directives survive into the AST.
func NewGoSourceParser() SourceParser {
	return &goSourceParser{}
}

// Parse implements the SourceParser interface.
func (p *goSourceParser) Parse(filename, src string) (*token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			errs := make([]error, 0, len(list))
			for _, e := range list {
				errs = append(errs, recerr.NewSyntaxError(e.Pos.Line, e.Pos.Column, e.Msg))
			}
			if len(errs) == 1 {
				return nil, nil, errs[0]
			}
			return nil, nil, &recerr.MultiError{Errors: errs}
		}
		return nil, nil, err
	}
	return fset, file, nil
}

var _ SourceParser = (*goSourceParser)(nil)
