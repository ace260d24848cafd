// Package syntax holds the immutable concrete syntax trees the analyses read.
//
// A Tree is an arena of nodes produced once by a Builder. Nodes refer to each
// other by index, so a Tree can be shared by any number of readers while a
// newer snapshot replaces it.
package syntax

import (
	"strconv"
	"strings"

	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"
)

// NodeID indexes a node within its Tree.
type NodeID uint32

const noNode = ^NodeID(0)

// Point is a zero-based row and byte column.
type Point struct {
	Row    uint32
	Column uint32
}

// Less orders points by row, then column.
func (p Point) Less(q Point) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Column < q.Column
}

const (
	flagError uint8 = 1 << iota
	flagMissing
	flagHasError
)

type node struct {
	kind     Kind
	typ      string
	named    bool
	flags    uint8
	start    uint32
	end      uint32
	startPt  Point
	endPt    Point
	parent   NodeID
	children []NodeID
	fields   []Field
}

// Tree is one parse of one source text.
type Tree struct {
	src    []byte
	nodes  []node
	root   NodeID
	lines  *textpos.LineIndex
	native any
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return Node{t: t, id: t.root}
}

// Source returns the text the tree was parsed from. Callers must not modify it.
func (t *Tree) Source() []byte {
	return t.src
}

// Native returns the provider-specific tree backing t, if any.
func (t *Tree) Native() any {
	return t.native
}

// Offset converts a point into a byte offset of the tree's source. Columns
// past the end of a line are clamped to the line end.
func (t *Tree) Offset(p Point) uint32 {
	return textpos.ByteOffset(string(t.src), p.Row, p.Column)
}

// Node is a handle to a node of a Tree. The zero Node is null.
type Node struct {
	t  *Tree
	id NodeID
}

func (n Node) get() *node {
	return &n.t.nodes[n.id]
}

func (n Node) at(id NodeID) Node {
	if id == noNode {
		return Node{}
	}
	return Node{t: n.t, id: id}
}

// IsNull reports whether n refers to no node.
func (n Node) IsNull() bool {
	return n.t == nil
}

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree {
	return n.t
}

// ID returns n's index in its tree.
func (n Node) ID() NodeID {
	return n.id
}

// Kind returns the node's kind, or KindUnknown for the null node.
func (n Node) Kind() Kind {
	if n.IsNull() {
		return KindUnknown
	}
	return n.get().kind
}

// Type returns the provider's type name for n, which for known kinds equals
// Kind().String().
func (n Node) Type() string {
	nd := n.get()
	if nd.typ != "" {
		return nd.typ
	}
	return nd.kind.String()
}

func (n Node) IsNamed() bool {
	return n.get().named
}

// IsError reports whether n is an error-recovery node.
func (n Node) IsError() bool {
	return n.get().flags&flagError != 0
}

// IsMissing reports whether n is a zero-width placeholder for an expected
// token that was absent.
func (n Node) IsMissing() bool {
	return n.get().flags&flagMissing != 0
}

// HasError reports whether n is, or transitively contains, an error or
// missing node.
func (n Node) HasError() bool {
	return n.get().flags&flagHasError != 0
}

func (n Node) StartByte() uint32 {
	return n.get().start
}

func (n Node) EndByte() uint32 {
	return n.get().end
}

func (n Node) StartPoint() Point {
	return n.get().startPt
}

func (n Node) EndPoint() Point {
	return n.get().endPt
}

// Text returns the source text n spans.
func (n Node) Text() string {
	nd := n.get()
	return string(n.t.src[nd.start:nd.end])
}

func (n Node) Parent() Node {
	return n.at(n.get().parent)
}

func (n Node) ChildCount() int {
	return len(n.get().children)
}

func (n Node) Child(i int) Node {
	nd := n.get()
	if i < 0 || i >= len(nd.children) {
		return Node{}
	}
	return n.at(nd.children[i])
}

// FieldOfChild returns the field labelling the i-th child.
func (n Node) FieldOfChild(i int) Field {
	nd := n.get()
	if i < 0 || i >= len(nd.fields) {
		return FieldNone
	}
	return nd.fields[i]
}

func (n Node) NamedChildCount() int {
	var count int
	for _, id := range n.get().children {
		if n.t.nodes[id].named {
			count++
		}
	}
	return count
}

func (n Node) NamedChild(i int) Node {
	for _, id := range n.get().children {
		if !n.t.nodes[id].named {
			continue
		}
		if i == 0 {
			return n.at(id)
		}
		i--
	}
	return Node{}
}

// ChildByField returns the first child labelled f.
func (n Node) ChildByField(f Field) Node {
	nd := n.get()
	for i, cf := range nd.fields {
		if cf == f {
			return n.at(nd.children[i])
		}
	}
	return Node{}
}

// ChildrenByField returns every child labelled f in order.
func (n Node) ChildrenByField(f Field) []Node {
	nd := n.get()
	var out []Node
	for i, cf := range nd.fields {
		if cf == f {
			out = append(out, n.at(nd.children[i]))
		}
	}
	return out
}

// FieldInParent returns the field that labels the edge from n's parent to n.
func (n Node) FieldInParent() Field {
	p := n.Parent()
	if p.IsNull() {
		return FieldNone
	}
	pn := p.get()
	for i, id := range pn.children {
		if id == n.id {
			return pn.fields[i]
		}
	}
	return FieldNone
}

func (n Node) sibling(delta int, named bool) Node {
	p := n.Parent()
	if p.IsNull() {
		return Node{}
	}
	siblings := p.get().children
	idx := -1
	for i, id := range siblings {
		if id == n.id {
			idx = i
			break
		}
	}
	for i := idx + delta; idx >= 0 && i >= 0 && i < len(siblings); i += delta {
		if !named || n.t.nodes[siblings[i]].named {
			return n.at(siblings[i])
		}
	}
	return Node{}
}

func (n Node) PrevSibling() Node      { return n.sibling(-1, false) }
func (n Node) NextSibling() Node      { return n.sibling(1, false) }
func (n Node) PrevNamedSibling() Node { return n.sibling(-1, true) }
func (n Node) NextNamedSibling() Node { return n.sibling(1, true) }

// NamedDescendantForByteRange returns the smallest named node that spans
// [start, end]. A child is entered when it starts at or before start and ends
// after it, so a position just past the last byte of a token does not select
// that token.
func (n Node) NamedDescendantForByteRange(start, end uint32) Node {
	cur, last := n, n
	for descended := true; descended; {
		descended = false
		for _, id := range cur.get().children {
			c := &n.t.nodes[id]
			if c.end < end || c.end <= start {
				continue
			}
			if start < c.start {
				break
			}
			cur = n.at(id)
			if c.named {
				last = cur
			}
			descended = true
			break
		}
	}
	return last
}

// NamedDescendantForPointRange is NamedDescendantForByteRange over points.
func (n Node) NamedDescendantForPointRange(start, end Point) Node {
	return n.NamedDescendantForByteRange(n.t.Offset(start), n.t.Offset(end))
}

// String renders the named structure of n as an S-expression, with field
// labels and MISSING markers.
func (n Node) String() string {
	if n.IsNull() {
		return "<null>"
	}
	var sb strings.Builder
	n.writeSExpr(&sb)
	return sb.String()
}

func (n Node) writeSExpr(sb *strings.Builder) {
	if n.IsMissing() {
		sb.WriteString("(MISSING ")
		if n.IsNamed() {
			sb.WriteString(n.Type())
		} else {
			sb.WriteString(strconv.Quote(n.Type()))
		}
		sb.WriteString(")")
		return
	}
	sb.WriteString("(")
	sb.WriteString(n.Type())
	nd := n.get()
	for i, id := range nd.children {
		c := n.at(id)
		if !c.IsNamed() && !c.IsMissing() {
			continue
		}
		sb.WriteString(" ")
		if f := nd.fields[i]; f != FieldNone {
			sb.WriteString(f.String())
			sb.WriteString(": ")
		}
		c.writeSExpr(sb)
	}
	sb.WriteString(")")
}
