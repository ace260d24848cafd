package server

import (
	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/manager"
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// positions converts between protocol positions and byte-column points of
// one text. Only the utf-16 encoding rewrites columns.
type positions struct {
	utf16 bool
	text  string
}

func newPositions(encoding, text string) positions {
	return positions{utf16: encoding == config.EncodingUTF16, text: text}
}

func (p positions) point(pos protocol.Position) syntax.Point {
	col := pos.Character
	if p.utf16 {
		col = textpos.UTF16ToByteColumn(textpos.LineText(p.text, pos.Line), col)
	}
	return syntax.Point{Row: pos.Line, Column: col}
}

func (p positions) position(pt syntax.Point) protocol.Position {
	col := pt.Column
	if p.utf16 {
		col = textpos.ByteToUTF16Column(textpos.LineText(p.text, pt.Row), col)
	}
	return protocol.Position{Line: pt.Row, Character: col}
}

func (p positions) rangeOf(start, end syntax.Point) protocol.Range {
	return protocol.Range{Start: p.position(start), End: p.position(end)}
}

func (p positions) nodeRange(n syntax.Node) protocol.Range {
	return p.rangeOf(n.StartPoint(), n.EndPoint())
}

// managerRange converts a protocol range into the byte columns documents
// are edited in.
func (p positions) managerRange(r protocol.Range) manager.Range {
	start, end := p.point(r.Start), p.point(r.End)
	return manager.Range{
		Start: manager.Position{Line: start.Row, Character: start.Column},
		End:   manager.Position{Line: end.Row, Character: end.Column},
	}
}
