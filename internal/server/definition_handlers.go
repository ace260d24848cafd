package server

import (
	"log"

	"github.com/a-k-l-sdao/rholang-lsp/internal/hover"
	"github.com/a-k-l-sdao/rholang-lsp/internal/manager"
	"github.com/a-k-l-sdao/rholang-lsp/internal/resolver"
	"github.com/a-k-l-sdao/rholang-lsp/internal/symbols"
	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"
	"github.com/a-k-l-sdao/rholang-lsp/internal/tokens"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// snapshot returns the current state of uri with its position converter.
func (s *Server) snapshot(uri string) (manager.Snapshot, positions, bool) {
	doc, ok := s.manager.Get(uri)
	if !ok {
		log.Printf("Query for unknown document %s", uri)
		return manager.Snapshot{}, positions{}, false
	}
	snap := doc.Snapshot()
	return snap, newPositions(s.config.PositionEncoding, snap.Text), true
}

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	uri := params.TextDocument.URI
	snap, pos, ok := s.snapshot(uri)
	if !ok {
		return nil, nil
	}
	def, ok := resolver.Definition(snap.Tree, pos.point(params.Position))
	if !ok {
		return nil, nil
	}
	return protocol.Location{URI: uri, Range: pos.nodeRange(def)}, nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	snap, pos, ok := s.snapshot(uri)
	if !ok {
		return []protocol.Location{}, nil
	}
	locations := []protocol.Location{}
	for _, ref := range resolver.References(snap.Tree, pos.point(params.Position)) {
		locations = append(locations, protocol.Location{URI: uri, Range: pos.nodeRange(ref)})
	}
	return locations, nil
}

func (s *Server) textDocumentPrepareRename(
	context *glsp.Context,
	params *protocol.PrepareRenameParams,
) (any, error) {
	snap, pos, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	n, ok := resolver.PrepareRename(snap.Tree, pos.point(params.Position))
	if !ok {
		return nil, nil
	}
	return pos.nodeRange(n), nil
}

func (s *Server) textDocumentRename(
	context *glsp.Context,
	params *protocol.RenameParams,
) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI
	snap, pos, ok := s.snapshot(uri)
	if !ok {
		return nil, nil
	}
	edits := resolver.Rename(snap.Tree, pos.point(params.Position), params.NewName)
	if edits == nil {
		return nil, nil
	}
	textEdits := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		textEdits = append(textEdits, protocol.TextEdit{Range: pos.nodeRange(e.Node), NewText: e.NewText})
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: textEdits},
	}, nil
}

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	snap, pos, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	h, ok := hover.At(snap.Tree, pos.point(params.Position))
	if !ok {
		return nil, nil
	}
	r := pos.nodeRange(h.Node)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: h.Markdown},
		Range:    &r,
	}, nil
}

func (s *Server) textDocumentDocumentSymbol(
	context *glsp.Context,
	params *protocol.DocumentSymbolParams,
) (any, error) {
	snap, pos, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return documentSymbols(pos, symbols.Collect(snap.Tree)), nil
}

func documentSymbols(pos positions, syms []symbols.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(syms))
	for _, sym := range syms {
		kind := protocol.SymbolKindVariable
		if sym.Kind == symbols.Function {
			kind = protocol.SymbolKindFunction
		}
		detail := sym.Detail
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         &detail,
			Kind:           kind,
			Range:          pos.nodeRange(sym.Node),
			SelectionRange: pos.nodeRange(sym.Selection),
		}
		if len(sym.Children) > 0 {
			ds.Children = documentSymbols(pos, sym.Children)
		}
		out = append(out, ds)
	}
	return out
}

func (s *Server) textDocumentSemanticTokensFull(
	context *glsp.Context,
	params *protocol.SemanticTokensParams,
) (*protocol.SemanticTokens, error) {
	snap, pos, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	toks := tokens.Collect(snap.Tree)
	if pos.utf16 {
		for i, t := range toks {
			line := textpos.LineText(snap.Text, t.Line)
			start := textpos.ByteToUTF16Column(line, t.Column)
			end := textpos.ByteToUTF16Column(line, t.Column+t.Length)
			toks[i].Column, toks[i].Length = start, end-start
		}
	}
	return &protocol.SemanticTokens{Data: tokens.Encode(toks)}, nil
}
