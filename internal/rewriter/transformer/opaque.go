package transformer

import "go/ast"

// opaqueSet records nodes produced by the rewrite so later traversals pass
// them through untouched. The transformation walks the same tree twice (all
// return statements first, then the tail-statement chain, which reaches
// returns the first pass already handled) and marking keeps the second
// visit a guaranteed no-op. Applying the passes again to an already-marked
// tree changes nothing.
type opaqueSet map[ast.Node]struct{}

func (s opaqueSet) add(n ast.Node) {
	s[n] = struct{}{}
}

func (s opaqueSet) contains(n ast.Node) bool {
	_, ok := s[n]
	return ok
}
