// Package sitteradapter exposes a tree-sitter grammar as a syntax.Parser.
//
// Each parse converts the tree-sitter tree into a syntax.Tree. The
// tree-sitter tree is kept as the native tree of the result so that the
// next parse can reuse it incrementally.
package sitteradapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// Parser wraps a tree-sitter parser for one language.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewParser creates a Parser for lang.
func NewParser(lang *sitter.Language) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Parser{parser: p}
}

// Parse parses src. When old carries a tree-sitter tree and edit is given,
// a copy of that tree is edited and handed to tree-sitter for reuse; old
// itself is left untouched.
func (p *Parser) Parse(ctx context.Context, src []byte, old *syntax.Tree, edit *syntax.InputEdit) (*syntax.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parser == nil {
		return nil, fmt.Errorf("parser is closed")
	}

	var prev *sitter.Tree
	if old != nil && edit != nil {
		if native, ok := old.Native().(*sitter.Tree); ok {
			prev = native.Copy()
			prev.Edit(EditInput(*edit))
		}
	}
	tree, err := p.parser.ParseCtx(ctx, prev, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if tree == nil {
		return nil, syntax.ErrNoTree
	}
	return Convert(tree, src), nil
}

// Close frees the tree-sitter parser.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	return nil
}

// EditInput converts an edit descriptor into tree-sitter coordinates.
func EditInput(e syntax.InputEdit) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  e.StartByte,
		OldEndIndex: e.OldEndByte,
		NewEndIndex: e.NewEndByte,
		StartPoint:  sitter.Point{Row: e.StartPoint.Row, Column: e.StartPoint.Column},
		OldEndPoint: sitter.Point{Row: e.OldEndPoint.Row, Column: e.OldEndPoint.Column},
		NewEndPoint: sitter.Point{Row: e.NewEndPoint.Row, Column: e.NewEndPoint.Column},
	}
}

// Convert copies tree into a syntax.Tree over src, keeping node types,
// field names, and the error and missing flags.
func Convert(tree *sitter.Tree, src []byte) *syntax.Tree {
	b := syntax.NewBuilder(src)
	b.SetNative(tree)
	cursor := sitter.NewTreeCursor(tree.RootNode())
	defer cursor.Close()
	return b.Finish(convertNode(b, cursor))
}

// convertNode converts the cursor's current node and its subtree, leaving
// the cursor where it started.
func convertNode(b *syntax.Builder, cursor *sitter.TreeCursor) syntax.NodeID {
	n := cursor.CurrentNode()
	var children []syntax.Child
	if cursor.GoToFirstChild() {
		for {
			field := syntax.FieldOf(cursor.CurrentFieldName())
			children = append(children, syntax.Child{ID: convertNode(b, cursor), Field: field})
			if !cursor.GoToNextSibling() {
				break
			}
		}
		cursor.GoToParent()
	}
	return b.Foreign(n.Type(), n.IsNamed(), n.IsMissing(), n.StartByte(), n.EndByte(), children)
}
