package syntax

import (
	"sort"

	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"
)

// Child is a pending edge from a branch to one of its children.
type Child struct {
	ID    NodeID
	Field Field
}

// Builder assembles a Tree bottom-up. Children are always built before the
// branch that holds them.
type Builder struct {
	src    []byte
	nodes  []node
	extras []NodeID
	native any
}

// NewBuilder starts a tree over src.
func NewBuilder(src []byte) *Builder {
	return &Builder{src: src}
}

// Mark records the builder state for a later Reset.
func (b *Builder) Mark() int {
	return len(b.nodes)
}

// Reset discards every node built since mark.
func (b *Builder) Reset(mark int) {
	b.nodes = b.nodes[:mark]
	for len(b.extras) > 0 && int(b.extras[len(b.extras)-1]) >= mark {
		b.extras = b.extras[:len(b.extras)-1]
	}
}

func (b *Builder) add(nd node) NodeID {
	nd.parent = noNode
	b.nodes = append(b.nodes, nd)
	return NodeID(len(b.nodes) - 1)
}

// Leaf adds a childless node over [start, end).
func (b *Builder) Leaf(kind Kind, start, end uint32) NodeID {
	nd := node{kind: kind, named: kind.IsNamed(), start: start, end: end}
	if kind == KindError {
		nd.flags = flagError
	}
	return b.add(nd)
}

// Missing adds a zero-width placeholder for an expected token at offset at.
func (b *Builder) Missing(kind Kind, at uint32) NodeID {
	return b.add(node{kind: kind, named: kind.IsNamed(), start: at, end: at, flags: flagMissing})
}

// Branch adds a node spanning its children. A branch without children is
// zero-width at offset at.
func (b *Builder) Branch(kind Kind, at uint32, children []Child) NodeID {
	nd := node{kind: kind, named: kind.IsNamed(), start: at, end: at}
	if kind == KindError {
		nd.flags = flagError
	}
	if len(children) > 0 {
		nd.start = b.nodes[children[0].ID].start
		nd.end = b.nodes[children[len(children)-1].ID].end
	}
	nd.children = make([]NodeID, len(children))
	nd.fields = make([]Field, len(children))
	for i, c := range children {
		nd.children[i] = c.ID
		nd.fields[i] = c.Field
	}
	return b.add(nd)
}

// Foreign adds a node converted from another parser. typ and named are
// mapped through KindOf; an unknown type keeps its name for Type.
func (b *Builder) Foreign(typ string, named, missing bool, start, end uint32, children []Child) NodeID {
	kind := KindOf(typ, named)
	if typ == "ERROR" {
		kind = KindError
	}
	id := b.Branch(kind, start, children)
	nd := &b.nodes[id]
	nd.start, nd.end = start, end
	nd.named = named
	if kind == KindUnknown {
		nd.typ = typ
	}
	if missing {
		nd.flags |= flagMissing
	}
	return id
}

// Extra adds a node that is attached by position rather than by a parent
// branch, such as a comment. Finish places it under the smallest node that
// contains it.
func (b *Builder) Extra(kind Kind, start, end uint32) NodeID {
	id := b.Leaf(kind, start, end)
	b.extras = append(b.extras, id)
	return id
}

// SetNative records the provider-specific tree the result is derived from.
func (b *Builder) SetNative(v any) {
	b.native = v
}

// Finish links parents, attaches extras, computes positions and error flags
// and returns the finished tree. The root is widened to cover the whole
// source.
func (b *Builder) Finish(root NodeID) *Tree {
	t := &Tree{
		src:    b.src,
		nodes:  b.nodes,
		root:   root,
		lines:  textpos.NewLineIndex(b.src),
		native: b.native,
	}
	extras := b.extras
	b.nodes, b.extras = nil, nil

	r := &t.nodes[root]
	if r.start > 0 {
		r.start = 0
	}
	if r.end < uint32(len(t.src)) {
		r.end = uint32(len(t.src))
	}
	for _, id := range extras {
		t.attach(root, id)
	}
	t.link(root, noNode)
	return t
}

// attach inserts extra under the smallest branch below from that contains it.
func (t *Tree) attach(from, extra NodeID) {
	e := t.nodes[extra]
	cur := from
descend:
	for {
		for _, id := range t.nodes[cur].children {
			c := &t.nodes[id]
			if len(c.children) > 0 && c.start <= e.start && e.end <= c.end {
				cur = id
				continue descend
			}
		}
		break
	}
	p := &t.nodes[cur]
	i := sort.Search(len(p.children), func(i int) bool {
		return t.nodes[p.children[i]].start >= e.start
	})
	p.children = append(p.children, 0)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = extra
	p.fields = append(p.fields, FieldNone)
	copy(p.fields[i+1:], p.fields[i:])
	p.fields[i] = FieldNone
}

// link sets parents and points below id and returns whether the subtree
// holds an error.
func (t *Tree) link(id, parent NodeID) bool {
	nd := &t.nodes[id]
	nd.parent = parent
	row, col := t.lines.Point(nd.start)
	nd.startPt = Point{Row: row, Column: col}
	row, col = t.lines.Point(nd.end)
	nd.endPt = Point{Row: row, Column: col}

	hasError := nd.flags&(flagError|flagMissing) != 0
	for _, c := range nd.children {
		if t.link(c, id) {
			hasError = true
		}
	}
	if hasError {
		t.nodes[id].flags |= flagHasError
	}
	return hasError
}
