package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"
)

// Position is a zero-based line and byte column.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Change replaces Range with Text. A nil Range replaces the whole document.
type Change struct {
	Range *Range
	Text  string
}

// Snapshot is a consistent view of a document. Tree may lag Text by one
// edit when the last reparse failed.
type Snapshot struct {
	Text string
	Tree *syntax.Tree
}

// Document owns the text of one open file and its latest syntax tree.
// Edits are serialized; snapshots can be taken concurrently with an edit
// and observe the state either before or after it.
type Document struct {
	parser syntax.Parser

	editMu sync.Mutex

	mu    sync.RWMutex
	text  string
	tree  *syntax.Tree
	stale bool
}

// Open parses text and returns a document for it. It fails when the parser
// cannot produce a tree.
func Open(ctx context.Context, parser syntax.Parser, text string) (*Document, error) {
	tree, err := parser.Parse(ctx, []byte(text), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{parser: parser, text: text, tree: tree}, nil
}

// Snapshot returns the current text and tree.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{Text: d.text, Tree: d.tree}
}

// Text returns the current text.
func (d *Document) Text() string {
	return d.Snapshot().Text
}

// ApplyEdit replaces the text between r.Start and r.End with newText and
// reparses incrementally. Out-of-range columns are clamped to the end of
// their line. When the reparse fails the text is still updated, the
// previous tree is kept and the error is returned.
func (d *Document) ApplyEdit(ctx context.Context, r Range, newText string) error {
	d.editMu.Lock()
	defer d.editMu.Unlock()

	d.mu.RLock()
	old, oldTree, stale := d.text, d.tree, d.stale
	d.mu.RUnlock()

	start := textpos.ByteOffset(old, r.Start.Line, r.Start.Character)
	end := textpos.ByteOffset(old, r.End.Line, r.End.Character)
	if end < start {
		start, end = end, start
	}
	text := old[:start] + newText + old[end:]

	startRow, startCol := textpos.PointAt(old, start)
	oldEndRow, oldEndCol := textpos.PointAt(old, end)
	newEndRow, newEndCol := textpos.Advance(startRow, startCol, newText)
	edit := &syntax.InputEdit{
		StartByte:   start,
		OldEndByte:  end,
		NewEndByte:  start + uint32(len(newText)),
		StartPoint:  syntax.Point{Row: startRow, Column: startCol},
		OldEndPoint: syntax.Point{Row: oldEndRow, Column: oldEndCol},
		NewEndPoint: syntax.Point{Row: newEndRow, Column: newEndCol},
	}
	if stale {
		// The old tree does not describe old, so it cannot be reused.
		oldTree, edit = nil, nil
	}
	return d.reparse(ctx, text, oldTree, edit)
}

// ReplaceAll replaces the whole text and parses it from scratch.
func (d *Document) ReplaceAll(ctx context.Context, text string) error {
	d.editMu.Lock()
	defer d.editMu.Unlock()
	return d.reparse(ctx, text, nil, nil)
}

// Apply applies changes in order.
func (d *Document) Apply(ctx context.Context, changes []Change) error {
	for _, c := range changes {
		var err error
		if c.Range == nil {
			err = d.ReplaceAll(ctx, c.Text)
		} else {
			err = d.ApplyEdit(ctx, *c.Range, c.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) reparse(ctx context.Context, text string, old *syntax.Tree, edit *syntax.InputEdit) error {
	tree, err := d.parser.Parse(ctx, []byte(text), old, edit)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	if err != nil {
		d.stale = true
		return fmt.Errorf("reparse failed, keeping previous tree: %w", err)
	}
	d.tree, d.stale = tree, false
	return nil
}
