// Package resolver answers definition, reference and rename queries by
// walking the lexical scopes of a single syntax tree.
//
// A definition is found by walking up from the cursor and asking each
// binding construct on the way whether it introduces the name; the first
// (innermost) construct that does wins. References are every occurrence of
// the name inside the block or file enclosing the definition, including
// occurrences under a nested construct that rebinds the same name.
package resolver

import (
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// Edit replaces the text of Node with NewText.
type Edit struct {
	Node    syntax.Node
	NewText string
}

// IdentifierAt returns the identifier under pos, if the smallest named node
// there is one.
func IdentifierAt(tree *syntax.Tree, pos syntax.Point) (syntax.Node, bool) {
	n := tree.Root().NamedDescendantForPointRange(pos, pos)
	if n.IsNull() || n.Kind() != syntax.KindVar {
		return syntax.Node{}, false
	}
	return n, true
}

// Definition returns the identifier that binds the identifier at pos.
func Definition(tree *syntax.Tree, pos syntax.Point) (syntax.Node, bool) {
	cursor, ok := IdentifierAt(tree, pos)
	if !ok {
		return syntax.Node{}, false
	}
	return FindDefinition(cursor, cursor.Text())
}

// FindDefinition walks the ancestors of cursor and returns the binding
// occurrence of name in the innermost construct that introduces it. There
// is no file-level fallback: a name no construct binds is unresolved.
func FindDefinition(cursor syntax.Node, name string) (syntax.Node, bool) {
	for n := cursor.Parent(); !n.IsNull(); n = n.Parent() {
		for _, site := range bindingSites(n) {
			if def, ok := findVar(site, name); ok {
				return def, true
			}
		}
	}
	return syntax.Node{}, false
}

// bindingSites returns the subtrees of n that can introduce names, in the
// order they are searched. Each subtree is searched whole, so a name that
// appears on the channel side of a bind also binds.
func bindingSites(n syntax.Node) []syntax.Node {
	var sites []syntax.Node
	add := func(s syntax.Node) {
		if !s.IsNull() {
			sites = append(sites, s)
		}
	}
	switch n.Kind() {
	case syntax.KindNew:
		add(n.ChildByField(syntax.FieldDecls))
	case syntax.KindContract:
		if name := n.ChildByField(syntax.FieldName); name.Kind() == syntax.KindVar {
			add(name)
		}
		add(n.ChildByField(syntax.FieldFormals))
	case syntax.KindInput:
		add(n.ChildByField(syntax.FieldReceipts))
	case syntax.KindLet:
		add(n.ChildByField(syntax.FieldDecls))
	case syntax.KindCase, syntax.KindBranch:
		add(n.ChildByField(syntax.FieldPattern))
	}
	return sites
}

// findVar returns the first identifier named name in n, in tree order.
func findVar(n syntax.Node, name string) (syntax.Node, bool) {
	if n.Kind() == syntax.KindVar && n.Text() == name {
		return n, true
	}
	for i := 0; i < n.ChildCount(); i++ {
		if found, ok := findVar(n.Child(i), name); ok {
			return found, true
		}
	}
	return syntax.Node{}, false
}

// References returns every occurrence of the identifier at pos within the
// scope of its definition, in document order. An identifier without a
// definition is treated as its own definition.
func References(tree *syntax.Tree, pos syntax.Point) []syntax.Node {
	cursor, ok := IdentifierAt(tree, pos)
	if !ok {
		return nil
	}
	name := cursor.Text()
	def, ok := FindDefinition(cursor, name)
	if !ok {
		def = cursor
	}
	var refs []syntax.Node
	collect(EnclosingScope(def), name, &refs)
	return refs
}

// EnclosingScope returns the nearest block or source file containing n, or
// the root when there is none.
func EnclosingScope(n syntax.Node) syntax.Node {
	for {
		switch n.Kind() {
		case syntax.KindBlock, syntax.KindSourceFile:
			return n
		}
		p := n.Parent()
		if p.IsNull() {
			return n
		}
		n = p
	}
}

func collect(n syntax.Node, name string, refs *[]syntax.Node) {
	if n.Kind() == syntax.KindVar && n.Text() == name {
		*refs = append(*refs, n)
	}
	for i := 0; i < n.ChildCount(); i++ {
		collect(n.Child(i), name, refs)
	}
}

// PrepareRename returns the identifier at pos when it can be renamed.
func PrepareRename(tree *syntax.Tree, pos syntax.Point) (syntax.Node, bool) {
	return IdentifierAt(tree, pos)
}

// Rename returns one edit per reference of the identifier at pos, all
// replacing it with newName. newName is not validated. It returns nil when
// there is nothing to rename.
func Rename(tree *syntax.Tree, pos syntax.Point, newName string) []Edit {
	refs := References(tree, pos)
	if len(refs) == 0 {
		return nil
	}
	edits := make([]Edit, len(refs))
	for i, ref := range refs {
		edits[i] = Edit{Node: ref, NewText: newName}
	}
	return edits
}
