// Package symbols outlines the contracts and channels declared in a tree.
package symbols

import "github.com/a-k-l-sdao/rholang-lsp/internal/syntax"

// Kind is the outline category of a symbol.
type Kind int

const (
	Function Kind = iota
	Variable
)

// Symbol is one outline entry. Node covers the whole declaration and
// Selection its name.
type Symbol struct {
	Name      string
	Detail    string
	Kind      Kind
	Node      syntax.Node
	Selection syntax.Node
	Children  []Symbol
}

// Collect returns the top-level symbols of the tree with nested symbols as
// children of their contract.
func Collect(tree *syntax.Tree) []Symbol {
	return collect(tree.Root(), nil)
}

func collect(n syntax.Node, syms []Symbol) []Symbol {
	switch n.Kind() {
	case syntax.KindContract:
		name := n.ChildByField(syntax.FieldName)
		if name.IsNull() {
			break
		}
		var children []Symbol
		if body := n.ChildByField(syntax.FieldProc); !body.IsNull() {
			children = collect(body, nil)
		}
		return append(syms, Symbol{
			Name:      name.Text(),
			Detail:    "contract",
			Kind:      Function,
			Node:      n,
			Selection: name,
			Children:  children,
		})
	case syntax.KindNew:
		for _, decl := range n.ChildByField(syntax.FieldDecls).ChildrenByField(syntax.FieldDecl) {
			v := decl.Child(0)
			if decl.Kind() != syntax.KindNameDecl || v.Kind() != syntax.KindVar {
				continue
			}
			syms = append(syms, Symbol{
				Name:      v.Text(),
				Detail:    "channel",
				Kind:      Variable,
				Node:      decl,
				Selection: v,
			})
		}
		if body := n.ChildByField(syntax.FieldProc); !body.IsNull() {
			syms = collect(body, syms)
		}
		return syms
	}
	for i := 0; i < n.ChildCount(); i++ {
		syms = collect(n.Child(i), syms)
	}
	return syms
}
