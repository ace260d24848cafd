// Package hover describes the node under the cursor.
package hover

import (
	"fmt"
	"strings"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// Hover is the description of one node.
type Hover struct {
	// Markdown holds the node text, its context and any leading comment.
	Markdown string
	Node     syntax.Node
}

// At describes the smallest named node at pos. Between top-level
// statements that is the source file itself.
func At(tree *syntax.Tree, pos syntax.Point) (Hover, bool) {
	n := tree.Root().NamedDescendantForPointRange(pos, pos)
	if n.IsNull() {
		return Hover{}, false
	}

	parts := []string{
		"```rholang\n" + n.Text() + "\n```",
		fmt.Sprintf("**%s** (`%s`)", Context(n), n.Type()),
	}
	if c, ok := LeadingComment(n); ok {
		parts = append(parts, "---\n"+c)
	}
	return Hover{Markdown: strings.Join(parts, "\n\n"), Node: n}, true
}

// Context labels the role n plays in its parent.
func Context(n syntax.Node) string {
	parent := n.Parent()
	switch parent.Kind() {
	case syntax.KindContract:
		if n.FieldInParent() == syntax.FieldName {
			return "contract name"
		}
		return "in contract"
	case syntax.KindNameDecl:
		return "channel declaration (new)"
	case syntax.KindNames:
		gp := parent.Parent()
		switch gp.Kind() {
		case syntax.KindContract:
			return "contract parameter"
		case syntax.KindLinearBind, syntax.KindRepeatedBind, syntax.KindPeekBind:
			return "bound name"
		}
		if gp.IsNull() {
			return "name"
		}
		return "name in " + gp.Type()
	case syntax.KindSend:
		return "send target"
	case syntax.KindEval:
		return "evaluated name"
	case syntax.KindMethod:
		if n.FieldInParent() == syntax.FieldName {
			return "method name"
		}
		return "method target"
	}
	return n.Type()
}

// LeadingComment returns the cleaned text of a comment directly before the
// statement containing n.
func LeadingComment(n syntax.Node) (string, bool) {
	stmt := n
	for p := n.Parent(); !p.IsNull(); p = p.Parent() {
		switch p.Kind() {
		case syntax.KindSourceFile, syntax.KindBlock, syntax.KindPar:
			return commentBefore(stmt)
		}
		stmt = p
	}
	return "", false
}

func commentBefore(stmt syntax.Node) (string, bool) {
	sib := stmt.PrevSibling()
	switch sib.Kind() {
	case syntax.KindLineComment, syntax.KindBlockComment:
	default:
		return "", false
	}
	lines := strings.Split(sib.Text(), "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n"), true
}
