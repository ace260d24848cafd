// Package diagnostics reports the syntax errors recorded in a tree.
package diagnostics

import (
	"fmt"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// Source names the producer of every diagnostic.
const Source = "rholang-lsp"

// nearRunes bounds the source excerpt quoted in a syntax error.
const nearRunes = 40

// Diagnostic is one syntax error. All diagnostics are errors.
type Diagnostic struct {
	Start   syntax.Point
	End     syntax.Point
	Message string
}

// Collect returns one diagnostic per outermost ERROR node and per MISSING
// node, in tree order.
func Collect(tree *syntax.Tree) []Diagnostic {
	var diags []Diagnostic
	collect(tree.Root(), &diags)
	return diags
}

func collect(n syntax.Node, diags *[]Diagnostic) {
	switch {
	case n.IsError():
		*diags = append(*diags, Diagnostic{
			Start:   n.StartPoint(),
			End:     n.EndPoint(),
			Message: fmt.Sprintf("Syntax error near `%s`", excerpt(n.Text())),
		})
	case n.IsMissing():
		*diags = append(*diags, Diagnostic{
			Start:   n.StartPoint(),
			End:     n.EndPoint(),
			Message: fmt.Sprintf("Missing `%s`", n.Type()),
		})
	case n.HasError():
		for i := 0; i < n.ChildCount(); i++ {
			collect(n.Child(i), diags)
		}
	}
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) > nearRunes {
		r = r[:nearRunes]
	}
	return string(r)
}
